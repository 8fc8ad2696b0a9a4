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

// Package fair 實作 commit-reveal 協議中的雜湊串接。
//
// 流程：
//  1. 開局前：由 serverSeed + nonce 算出 commit 並公開（此時 clientSeed 尚未取得）。
//  2. 玩家提供 clientSeed 後：以三者算出 combined seed，作為該局引擎唯一的輸入。
//  3. 揭曉：公開 serverSeed，任何人都可重算 commit 與 combined seed 來驗證。
//
// 欄位以字面 ":" 串接且不跳脫，因此串接結果不是單射（例如 clientSeed 內含 ":"）。
// 這是格式限制：雜湊輸入永遠是「實際串接後的字串」，結果仍是其純函數。
package fair

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/zintix-labs/pegdrop/errs"
)

const (
	// Delimiter 為欄位分隔字元。
	Delimiter = ":"

	serverSeedBytes = 32
	nonceBytes      = 16
)

// Hash 為單向雜湊：輸入字串、輸出固定長度的小寫 hex 字串。
type Hash func(text string) string

// SHA256Hex 是預設的雜湊實作。
func SHA256Hex(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// CreateCommit = hash(serverSeed + ":" + nonce)
func CreateCommit(serverSeed, nonce string) string {
	return CreateCommitWith(SHA256Hex, serverSeed, nonce)
}

// CombineSeed = hash(serverSeed + ":" + clientSeed + ":" + nonce)
func CombineSeed(serverSeed, clientSeed, nonce string) string {
	return CombineSeedWith(SHA256Hex, serverSeed, clientSeed, nonce)
}

func CreateCommitWith(h Hash, serverSeed, nonce string) string {
	return h(serverSeed + Delimiter + nonce)
}

func CombineSeedWith(h Hash, serverSeed, clientSeed, nonce string) string {
	return h(serverSeed + Delimiter + clientSeed + Delimiter + nonce)
}

// NewServerSeed 以 crypto/rand 產生 32 bytes 的 hex serverSeed。
func NewServerSeed() (string, error) {
	return randomHex(serverSeedBytes)
}

// NewNonce 以 crypto/rand 產生 16 bytes 的 hex nonce。
func NewNonce() (string, error) {
	return randomHex(nonceBytes)
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", errs.Wrap(err, "fair: read random bytes failed")
	}
	return hex.EncodeToString(b), nil
}
