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

// Package core 提供引擎使用的決定性亂數來源。
//
// 合約：同一個 seed 在任何實作、任何平台上都必須產生 bit-identical 的輸出序列，
// 否則第三方無法重算結果，公平性驗證會在沒有任何錯誤訊息的情況下失效。
package core

// Source 定義引擎取樣所需的最小能力：依序產生 [0,1) 的浮點數。
//
// 每次呼叫都會推進內部狀態（非冪等），呼叫順序即是結果的一部分。
type Source interface {
	Next() float64
}

// Restorable 定義可快照與還原的狀態介面。
type Restorable interface {
	// Snapshot 回傳可用於還原的序列化狀態。
	Snapshot() ([]byte, error)
	// Restore 依序列化狀態還原 PRNG 內部狀態。
	Restore([]byte) error
}

// PRNG 同時具備取樣與狀態保存/還原。
type PRNG interface {
	Source
	Restorable
	// Draws 回傳自建立以來已產生的數值個數。
	Draws() int
}

// Factory 以 seed 字串建立新的 PRNG。
//
// 合約（很重要）：New(seed) 必須是決定性的，且每一局都要擁有自己的實例，
// 不可跨局共享或接續使用。
type Factory interface {
	New(seedHex string) (PRNG, error)
}

// DefaultFactory 建立 Xorshift32。
type DefaultFactory struct{}

func (DefaultFactory) New(seedHex string) (PRNG, error) {
	return NewXorshift32(seedHex)
}

func Default() DefaultFactory {
	return DefaultFactory{}
}
