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

// Package payout 提供終點桶到派彩倍數的固定對照表。
package payout

import (
	"github.com/shopspring/decimal"

	"github.com/zintix-labs/pegdrop/errs"
)

// Fallback 為超出對照表範圍時的倍數（與中央桶相同）。
//
// binIndex 由模擬迴圈保證落在 [0,12]，超出範圍只會在列數改變時發生；
// 此時回傳定義好的倍數而不是失敗。
const Fallback = 0.3

// table 以 6 為中心對稱，從兩端往中央單調不增。
var table = [...]float64{2.0, 1.5, 1.2, 1.0, 0.8, 0.5, 0.3, 0.5, 0.8, 1.0, 1.2, 1.5, 2.0}

// Bins 為對照表長度。
const Bins = len(table)

// Multiplier 回傳 bin 對應的倍數；超出範圍回傳 Fallback。
func Multiplier(bin int) float64 {
	if bin < 0 || bin >= len(table) {
		return Fallback
	}
	return table[bin]
}

// Table 回傳對照表的複本。
func Table() []float64 {
	out := make([]float64, len(table))
	copy(out, table[:])
	return out
}

// Payout 以十進位計算 betCents × Multiplier(bin)，四捨五入到整數分。
func Payout(betCents int64, bin int) (int64, error) {
	if betCents < 0 {
		return 0, errs.InvalidInput("betCents must be >= 0, got %d", betCents)
	}
	amt := decimal.NewFromInt(betCents).Mul(decimal.NewFromFloat(Multiplier(bin)))
	return amt.Round(0).IntPart(), nil
}
