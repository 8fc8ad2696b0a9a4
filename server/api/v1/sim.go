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

package v1

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/zintix-labs/pegdrop"
	"github.com/zintix-labs/pegdrop/errs"
	"github.com/zintix-labs/pegdrop/sdk/drop"
	"github.com/zintix-labs/pegdrop/server/httperr"
	"github.com/zintix-labs/pegdrop/server/svrcfg"
	"github.com/zintix-labs/pegdrop/stats"
)

const (
	maxSimRounds = 200000
	simTimeout   = 8 * time.Second
)

type SimHandler struct {
	engine  *pegdrop.Engine
	workers int
}

func NewSimHandler(sCfg *svrcfg.SvrCfg) (*SimHandler, error) {
	if sCfg == nil || sCfg.Engine == nil {
		return nil, errs.NewFatal("engine is required")
	}
	return &SimHandler{engine: sCfg.Engine, workers: max(1, sCfg.SimWorkers)}, nil
}

// Sim GET /v1/sim?dropColumn=&rounds=&seed=
func (sh *SimHandler) Sim(w http.ResponseWriter, q *http.Request) {
	// 內部結構 不影響外部 也不被外部使用
	type SimResponse struct {
		BaseSeed string           `json:"baseSeed"`
		Stats    *stats.BinReport `json:"stats"`
		UsedTime int64            `json:"used_ms"`
	}

	qs := q.URL.Query()
	col := drop.CenterColumn
	if s := qs.Get("dropColumn"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			httperr.Errs(w, errs.InvalidInput("dropColumn must be an integer"))
			return
		}
		col = n
	}
	rounds, err := strconv.Atoi(qs.Get("rounds"))
	if err != nil {
		httperr.Errs(w, errs.InvalidInput("rounds is required"))
		return
	}
	if rounds < 1 || rounds > maxSimRounds {
		httperr.Errs(w, errs.InvalidInput("rounds must be between 1 to %d", maxSimRounds))
		return
	}

	sim, err := pegdrop.NewSimulator(sh.engine, qs.Get("seed"), sh.workers)
	if err != nil {
		httperr.Errs(w, errs.Wrap(err, "build simulator err"))
		return
	}
	ctx, cancel := context.WithTimeout(q.Context(), simTimeout)
	defer cancel()
	st, used, err := sim.Sim(ctx, col, rounds, false)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	httperr.Write(w, http.StatusOK, SimResponse{BaseSeed: sim.BaseSeed(), Stats: st, UsedTime: used.Milliseconds()})
}
