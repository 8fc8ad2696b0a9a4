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

// Package pegdrop 提供可驗證公平（provably fair）彈珠台引擎的組裝入口與對局入口。
//
// 一局的完整流程：
//  1. 伺服器先公開 commitHex = SHA256Hex(serverSeed + ":" + nonce)。
//  2. 玩家提供 clientSeed 與 dropColumn 後，引擎以
//     combinedSeed = SHA256Hex(serverSeed + ":" + clientSeed + ":" + nonce)
//     建立 xorshift32，先生成 12 列 peg map（78 次抽樣），再模擬掉落（12 次抽樣）。
//  3. 局後公開 serverSeed，任何人都可以用 Verify 重算全部結果。
//
// Engine 本身無狀態、可併發使用；亂數核心由 core.Factory 注入，
// 每一次 RunGame 都是 (combinedSeed, dropColumn) 的純函數。
package pegdrop

import (
	"github.com/zintix-labs/pegdrop/errs"
	"github.com/zintix-labs/pegdrop/sdk/board"
	"github.com/zintix-labs/pegdrop/sdk/core"
)

// Engine 組裝亂數核心工廠與 peg map 雜湊編碼。
type Engine struct {
	cf  core.Factory
	enc board.Encoding
}

var defaultEngine = &Engine{cf: core.Default(), enc: board.DefaultEncoding}

// New 建立 Engine。
//
//   - cf 不能為 nil：沒有 RNG 工廠就無法重現對局。
//   - enc 為空字串時使用 board.DefaultEncoding。
func New(cf core.Factory, enc board.Encoding) (*Engine, error) {
	if cf == nil {
		return nil, errs.NewFatal("core factory is required")
	}
	if enc == "" {
		enc = board.DefaultEncoding
	}
	if _, err := board.ParseEncoding(string(enc)); err != nil {
		return nil, err
	}
	return &Engine{cf: cf, enc: enc}, nil
}

// Default 回傳以 xorshift32 與 pegmap/v1 組成的共用 Engine。
func Default() *Engine {
	return defaultEngine
}

// Encoding 回傳 PegMapHash 使用的編碼。
func (e *Engine) Encoding() board.Encoding {
	return e.enc
}
