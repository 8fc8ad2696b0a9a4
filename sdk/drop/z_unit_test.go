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

package drop

import (
	"errors"
	"slices"
	"testing"

	"github.com/zintix-labs/pegdrop/errs"
	"github.com/zintix-labs/pegdrop/sdk/board"
	"github.com/zintix-labs/pegdrop/sdk/core"
)

const vecCombined = "e1dddf77de27d395ea2be2ed49aa2a59bd6bf12ee8d350c16c008abd406c07e0"

// constSource 每次都回傳同一個值
type constSource float64

func (c constSource) Next() float64 { return float64(c) }

func setup(t *testing.T, seed string) (board.PegMap, *core.Xorshift32) {
	t.Helper()
	src, err := core.NewXorshift32(seed)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	return board.Generate(src), src
}

func TestSimulateReferenceCenter(t *testing.T) {
	pm, src := setup(t, vecCombined)
	path, err := Simulate(pm, 6, src)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	want := []bool{true, true, true, false, true, false, true, false, true, false, false, false}
	if !slices.Equal(path.Decisions, want) {
		t.Fatalf("decisions got %v want %v", path.Decisions, want)
	}
	if path.BinIndex != 6 {
		t.Fatalf("bin got %d want 6", path.BinIndex)
	}
	if src.Draws() != board.PegCount+board.Rows || src.Draws() != 90 {
		t.Fatalf("total draws got %d want 90", src.Draws())
	}
}

func TestSimulateColumnShiftsBins(t *testing.T) {
	// 同一個 seed 下不同落點的參考結果
	want := map[int]int{0: 7, 5: 7, 6: 6, 11: 6, 12: 5}
	for col, bin := range want {
		pm, src := setup(t, vecCombined)
		path, err := Simulate(pm, col, src)
		if err != nil {
			t.Fatalf("col %d: %v", col, err)
		}
		if path.BinIndex != bin {
			t.Fatalf("col %d: bin got %d want %d", col, path.BinIndex, bin)
		}
	}
}

func TestSimulateRangeAndConsistency(t *testing.T) {
	seeds := []string{"00000001", "12345678", "87654321", "deadbeef", "ffffffff"}
	for _, s := range seeds {
		for col := MinColumn; col <= MaxColumn; col++ {
			pm, src := setup(t, s)
			path, err := Simulate(pm, col, src)
			if err != nil {
				t.Fatalf("seed %s col %d: %v", s, col, err)
			}
			if len(path.Decisions) != board.Rows {
				t.Fatalf("decisions length %d", len(path.Decisions))
			}
			if path.BinIndex < 0 || path.BinIndex >= Bins {
				t.Fatalf("bin out of range: %d", path.BinIndex)
			}
			if path.RightMoves() != path.BinIndex {
				t.Fatalf("bin %d != right moves %d", path.BinIndex, path.RightMoves())
			}
		}
	}
}

func TestSimulateExtremes(t *testing.T) {
	pm, _ := setup(t, "12345678")
	// 亂數恆為 0：每一步都小於 adjustedBias，全部往左
	left, err := Simulate(pm, 6, constSource(0))
	if err != nil || left.BinIndex != 0 {
		t.Fatalf("all-left got bin %d err %v", left.BinIndex, err)
	}
	// 亂數接近 1：每一步都往右，pegIndex 被 row 夾住仍合法
	right, err := Simulate(pm, 6, constSource(0.999999))
	if err != nil || right.BinIndex != board.Rows {
		t.Fatalf("all-right got bin %d err %v", right.BinIndex, err)
	}
}

func TestSimulateRejectsColumn(t *testing.T) {
	pm, src := setup(t, "12345678")
	for _, col := range []int{-1, 13, 100} {
		if _, err := Simulate(pm, col, src); !errors.Is(err, errs.ErrInvalidInput) {
			t.Fatalf("col %d: expected invalid input, got %v", col, err)
		}
	}
	if src.Draws() != board.PegCount {
		t.Fatalf("rejected columns must not consume draws, got %d", src.Draws())
	}
	if _, err := Simulate(pm[:3], 6, src); err == nil {
		t.Fatalf("expected short map error")
	}
}

func TestAdjustment(t *testing.T) {
	if Adjustment(6) != 0 {
		t.Fatalf("center must not shift")
	}
	if Adjustment(12) != 0.06 || Adjustment(0) != -0.06 {
		t.Fatalf("unexpected edge shifts %v %v", Adjustment(0), Adjustment(12))
	}
}
