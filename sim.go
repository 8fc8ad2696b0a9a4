// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pegdrop

import (
	"context"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/pegdrop/errs"
	"github.com/zintix-labs/pegdrop/sdk/drop"
	"github.com/zintix-labs/pegdrop/sdk/fair"
	"github.com/zintix-labs/pegdrop/stats"
)

// simClientSeed 為模擬局固定的 clientSeed；每局的差異來自 nonce。
const simClientSeed = "sim"

// Simulator 以大量對局檢驗落點分布與 RTP。
//
// 第 i 局的組合種子為 CombineSeed(baseSeed, "sim", i)，
// 因此同一個 baseSeed 不論 worker 數量都會得到相同的報表。
type Simulator struct {
	engine   *Engine
	baseSeed string
	workers  int
}

// NewSimulator 建立模擬器；baseSeed 為空時以 crypto/rand 產生。
func NewSimulator(e *Engine, baseSeed string, workers int) (*Simulator, error) {
	if e == nil {
		return nil, errs.NewFatal("engine is required")
	}
	if workers < 1 {
		return nil, errs.InvalidInput("workers must > 0")
	}
	if baseSeed == "" {
		s, err := fair.NewServerSeed()
		if err != nil {
			return nil, err
		}
		baseSeed = s
	}
	return &Simulator{engine: e, baseSeed: baseSeed, workers: workers}, nil
}

// BaseSeed 回傳本次模擬使用的種子，用於重現。
func (s *Simulator) BaseSeed() string {
	return s.baseSeed
}

// Sim 在 dropColumn 上跑 rounds 局並回傳統計報表與用時。
//
// 每個 worker 負責 i ≡ w (mod workers) 的局，各自累積報表，最後合併。
func (s *Simulator) Sim(ctx context.Context, dropColumn int, rounds int, showpb bool) (*stats.BinReport, time.Duration, error) {
	if err := drop.ValidateColumn(dropColumn); err != nil {
		return nil, 0, err
	}
	if rounds < 1 {
		return nil, 0, errs.InvalidInput("round must > 0")
	}
	title := "Drop Column " + strconv.Itoa(dropColumn)
	reps := make([]*stats.BinReport, s.workers)
	for i := range reps {
		r, err := stats.NewBinReport(title, dropColumn)
		if err != nil {
			return nil, 0, err
		}
		reps[i] = r
	}
	errCh := make(chan error, s.workers)

	bar := pb.StartNew(rounds)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	wg := new(sync.WaitGroup)
	wg.Add(s.workers)
	for w := 0; w < s.workers; w++ {
		go func(w int) {
			defer wg.Done()
			rep := reps[w]
			for i, n := w, 0; i < rounds; i, n = i+s.workers, n+1 {
				if n%1024 == 0 && ctx.Err() != nil {
					errCh <- errs.Wrap(ctx.Err(), "simulation canceled")
					return
				}
				combined := fair.CombineSeed(s.baseSeed, simClientSeed, strconv.Itoa(i))
				g, err := s.engine.RunGame(combined, dropColumn)
				if err != nil {
					errCh <- err
					return
				}
				rep.Record(g.BinIndex())
				bar.Increment()
			}
		}(w)
	}
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()
	close(errCh)
	if err := <-errCh; err != nil {
		return nil, used, err
	}

	result, err := stats.Merge(title, reps)
	if err != nil {
		return nil, used, err
	}
	result.Done()
	return result, used, nil
}
