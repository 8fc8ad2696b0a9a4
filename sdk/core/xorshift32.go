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

package core

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/zintix-labs/pegdrop/errs"
)

const (
	// SeedHexLen 為建立狀態時實際讀取的 hex 字元數（4 bytes）。
	SeedHexLen = 8

	xorshiftFloatUnit = 1.0 / (1 << 32)
	snapshotLen       = 12
)

// Xorshift32 為 32-bit 狀態的 xorshift 產生器（13, 17, 5）。
//
// 所有位移都在 uint32 上進行，左移自然截斷、右移為邏輯右移。
type Xorshift32 struct {
	state uint32
	draws int
}

// NewXorshift32 以 seedHex 的前 8 個 hex 字元（big-endian）建立產生器。
//
//   - 少於 8 個字元或含非 hex 字元：回傳 errs.ErrInvalidSeed 類錯誤，不做補位。
//   - 第 8 個字元之後的內容不讀取。
//   - 解析結果為 0 時改為 1（0 是 xorshift 的不動點）。
func NewXorshift32(seedHex string) (*Xorshift32, error) {
	state, err := ParseSeed(seedHex)
	if err != nil {
		return nil, err
	}
	return &Xorshift32{state: state}, nil
}

// ParseSeed 回傳 seedHex 對應的初始狀態（已處理 0 -> 1）。
func ParseSeed(seedHex string) (uint32, error) {
	if len(seedHex) < SeedHexLen {
		return 0, errs.InvalidSeed("seed must have at least %d hex chars, got %d", SeedHexLen, len(seedHex))
	}
	var b [4]byte
	if _, err := hex.Decode(b[:], []byte(seedHex[:SeedHexLen])); err != nil {
		return 0, errs.InvalidSeed("seed prefix %q is not hex", seedHex[:SeedHexLen])
	}
	state := binary.BigEndian.Uint32(b[:])
	if state == 0 {
		state = 1
	}
	return state, nil
}

// Uint32 推進一步並回傳新的狀態值。
func (r *Xorshift32) Uint32() uint32 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	r.draws++
	return x
}

// Next 推進一步並回傳 state / 2^32，範圍 [0,1)。
func (r *Xorshift32) Next() float64 {
	return float64(r.Uint32()) * xorshiftFloatUnit
}

// Draws 回傳已產生的數值個數。
func (r *Xorshift32) Draws() int {
	return r.draws
}

// State 回傳目前的內部狀態。
func (r *Xorshift32) State() uint32 {
	return r.state
}

// Snapshot 取得當下內部狀態：4 bytes state + 8 bytes draws（big-endian）。
func (r *Xorshift32) Snapshot() ([]byte, error) {
	b := make([]byte, 0, snapshotLen)
	b = binary.BigEndian.AppendUint32(b, r.state)
	b = binary.BigEndian.AppendUint64(b, uint64(r.draws))
	return b, nil
}

// Restore 依 Snapshot 的輸出還原狀態。
func (r *Xorshift32) Restore(data []byte) error {
	if len(data) != snapshotLen {
		return errs.InvalidInput("snapshot must be %d bytes, got %d", snapshotLen, len(data))
	}
	state := binary.BigEndian.Uint32(data[:4])
	if state == 0 {
		return errs.InvalidSeed("snapshot state must be non-zero")
	}
	r.state = state
	r.draws = int(binary.BigEndian.Uint64(data[4:]))
	return nil
}
