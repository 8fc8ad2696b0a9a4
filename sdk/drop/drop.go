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

// Package drop 模擬球從頂端落下、逐列經過 peg map 的路徑。
package drop

import (
	"github.com/zintix-labs/pegdrop/errs"
	"github.com/zintix-labs/pegdrop/sdk/board"
	"github.com/zintix-labs/pegdrop/sdk/core"
)

const (
	// MinColumn / MaxColumn 為玩家可選的落點範圍。
	MinColumn = 0
	MaxColumn = board.Rows
	// CenterColumn = floor(Rows/2)，此落點不產生偏移。
	CenterColumn = board.Rows / 2
	// Bins 為終點桶數。
	Bins = board.Rows + 1

	columnShift = 0.01
)

// GamePath 記錄每一列的決策（true = 往左）與最後落入的桶。
type GamePath struct {
	Decisions []bool `json:"decisions" yaml:"decisions"`
	BinIndex  int    `json:"binIndex"  yaml:"binIndex"`
}

// ValidateColumn 檢查 dropColumn 是否在 [0,12]；超出範圍不做任何夾取，直接回傳 InvalidInput。
func ValidateColumn(dropColumn int) error {
	if dropColumn < MinColumn || dropColumn > MaxColumn {
		return errs.InvalidInput("dropColumn must be %d-%d, got %d", MinColumn, MaxColumn, dropColumn)
	}
	return nil
}

// Adjustment 回傳落點造成的固定偏移 (dropColumn - 6) * 0.01。
func Adjustment(dropColumn int) float64 {
	return float64(float64(dropColumn-CenterColumn) * columnShift)
}

// Simulate 以 src 接續的亂數流走完 Rows 列，恰好消耗 Rows 個值。
//
// 每列：
//
//	pegIndex     = min(rightMoves, row)
//	adjustedBias = clamp(leftBias + adj, 0, 1)
//	goLeft       = next() < adjustedBias
//
// 結果是 (pm, dropColumn, 進入時的 src 狀態) 的純函數。
func Simulate(pm board.PegMap, dropColumn int, src core.Source) (GamePath, error) {
	if err := ValidateColumn(dropColumn); err != nil {
		return GamePath{}, err
	}
	if len(pm) < board.Rows {
		return GamePath{}, errs.InvalidInput("peg map must have %d rows, got %d", board.Rows, len(pm))
	}

	adj := Adjustment(dropColumn)
	rightMoves := 0
	decisions := make([]bool, board.Rows)

	for row := 0; row < board.Rows; row++ {
		pegIndex := min(rightMoves, row)
		if pegIndex >= len(pm[row]) {
			return GamePath{}, errs.InvalidInput("row %d has %d pegs, need index %d", row, len(pm[row]), pegIndex)
		}
		bias := pm[row][pegIndex].LeftBias
		adjusted := clamp01(float64(bias + adj))

		goLeft := src.Next() < adjusted
		decisions[row] = goLeft
		if !goLeft {
			rightMoves++
		}
	}

	return GamePath{Decisions: decisions, BinIndex: rightMoves}, nil
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}

// RightMoves 回傳路徑中往右的次數；對合法路徑等於 BinIndex。
func (p GamePath) RightMoves() int {
	n := 0
	for _, left := range p.Decisions {
		if !left {
			n++
		}
	}
	return n
}
