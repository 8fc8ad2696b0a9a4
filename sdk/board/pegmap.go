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

// Package board 產生三角形的 peg map，並提供跨實作一致的正規化編碼與雜湊。
package board

import (
	"math"

	"github.com/zintix-labs/pegdrop/errs"
	"github.com/zintix-labs/pegdrop/sdk/core"
)

const (
	// Rows 為 peg map 的列數，第 r 列有 r+1 個 peg。
	Rows = 12
	// PegCount 為整張 map 消耗的亂數個數：1+2+...+Rows。
	PegCount = Rows * (Rows + 1) / 2

	// MinBias / MaxBias 為 leftBias 的理論範圍。
	MinBias = 0.4
	MaxBias = 0.6

	biasCenter = 0.5
	biasSpread = 0.2
	biasScale  = 1e6
)

// Peg 單一障礙點。LeftBias 為往左的機率權重，已四捨五入到小數 6 位。
type Peg struct {
	LeftBias float64 `json:"leftBias" yaml:"leftBias"`
}

// PegMap 依列排列的 peg；產生後視為唯讀。
type PegMap [][]Peg

// Generate 從 src 依序取 PegCount 個值建立 PegMap。
//
// 逐列、逐欄取樣，順序是結果的一部分：
//
//	leftBias = round6(0.5 + (r - 0.5) * 0.2)
func Generate(src core.Source) PegMap {
	pm := make(PegMap, Rows)
	for row := 0; row < Rows; row++ {
		pm[row] = make([]Peg, row+1)
		for col := 0; col <= row; col++ {
			pm[row][col] = Peg{LeftBias: LeftBias(src.Next())}
		}
	}
	return pm
}

// LeftBias 把一個 [0,1) 的亂數映射到 leftBias 並四捨五入到小數 6 位。
//
// 顯式 float64 轉型會強制每一步捨入，阻止編譯器在 arm64 等平台融合成 FMA。
// 捨入採 half away from zero；值恆為正，等同 floor(x*1e6 + 0.5)。
func LeftBias(r float64) float64 {
	spread := float64((r - biasCenter) * biasSpread)
	bias := float64(biasCenter + spread)
	return math.Round(float64(bias*biasScale)) / biasScale
}

// Peg 回傳第 row 列第 col 個 peg。
func (pm PegMap) Peg(row, col int) (Peg, bool) {
	if row < 0 || row >= len(pm) || col < 0 || col >= len(pm[row]) {
		return Peg{}, false
	}
	return pm[row][col], true
}

// Validate 檢查形狀（Rows 列、第 r 列 r+1 個）與 leftBias 範圍。
func (pm PegMap) Validate() error {
	if len(pm) != Rows {
		return errs.InvalidInput("peg map must have %d rows, got %d", Rows, len(pm))
	}
	for r, row := range pm {
		if len(row) != r+1 {
			return errs.InvalidInput("row %d must have %d pegs, got %d", r, r+1, len(row))
		}
		for c, p := range row {
			if p.LeftBias < MinBias || p.LeftBias > MaxBias || math.IsNaN(p.LeftBias) {
				return errs.InvalidInput("peg (%d,%d) leftBias %v out of [%v,%v]", r, c, p.LeftBias, MinBias, MaxBias)
			}
		}
	}
	return nil
}

// Equal 逐值比較兩張 map。
func (pm PegMap) Equal(other PegMap) bool {
	if len(pm) != len(other) {
		return false
	}
	for r := range pm {
		if len(pm[r]) != len(other[r]) {
			return false
		}
		for c := range pm[r] {
			if pm[r][c].LeftBias != other[r][c].LeftBias {
				return false
			}
		}
	}
	return true
}
