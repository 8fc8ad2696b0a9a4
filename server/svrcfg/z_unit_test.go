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

package svrcfg

import (
	"log/slog"
	"testing"

	"github.com/zintix-labs/pegdrop"
	"github.com/zintix-labs/pegdrop/round"
	"github.com/zintix-labs/pegdrop/server/logger"
	"github.com/zintix-labs/pegdrop/storage/memstore"
)

func newService(t *testing.T) *round.Service {
	t.Helper()
	svc, err := round.NewService(memstore.New(), pegdrop.Default(), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestVaildFillsDefaults(t *testing.T) {
	sc := &SvrCfg{Rounds: newService(t), SimWorkers: 64}
	if err := sc.Vaild(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sc.Log == nil || sc.Engine == nil {
		t.Fatalf("log and engine should be defaulted")
	}
	if sc.SimWorkers != 8 {
		t.Fatalf("sim workers should be clamped, got %d", sc.SimWorkers)
	}
}

func TestVaildRequiresRounds(t *testing.T) {
	sc := &SvrCfg{Log: slog.New(slog.DiscardHandler)}
	if err := sc.Vaild(); err == nil {
		t.Fatalf("expected missing round service error")
	}
}

func TestVaildRejectsBrokenAsyncHandler(t *testing.T) {
	sc := &SvrCfg{Log: slog.New(&logger.AsyncHandler{}), Rounds: newService(t)}
	if err := sc.Vaild(); err == nil {
		t.Fatalf("expected not-ready handler error")
	}
}
