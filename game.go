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

package pegdrop

import (
	"github.com/zintix-labs/pegdrop/errs"
	"github.com/zintix-labs/pegdrop/sdk/board"
	"github.com/zintix-labs/pegdrop/sdk/drop"
	"github.com/zintix-labs/pegdrop/sdk/fair"
	"github.com/zintix-labs/pegdrop/sdk/payout"
)

// DrawsPerGame 為一局固定消耗的亂數數量：peg map 78 + 掉落 12。
const DrawsPerGame = board.PegCount + board.Rows

// GameResult 為一局的完整可重算結果。
type GameResult struct {
	PegMap     board.PegMap   `json:"pegMap"     yaml:"pegMap"`
	PegMapHash string         `json:"pegMapHash" yaml:"pegMapHash"`
	Encoding   board.Encoding `json:"encoding"   yaml:"encoding"`
	Path       drop.GamePath  `json:"path"       yaml:"path"`
}

// BinIndex 回傳落入的桶。
func (g *GameResult) BinIndex() int {
	return g.Path.BinIndex
}

// RunGame 以 combinedSeed 建立亂數流，依序生成 peg map、計算雜湊、模擬掉落。
//
// dropColumn 在建立亂數之前就先檢查，錯誤時不消耗任何抽樣。
// peg map 與掉落共用同一條亂數流：peg map 用掉前 78 個值，掉落接續後 12 個。
func (e *Engine) RunGame(combinedSeed string, dropColumn int) (*GameResult, error) {
	if err := drop.ValidateColumn(dropColumn); err != nil {
		return nil, err
	}
	rng, err := e.cf.New(combinedSeed)
	if err != nil {
		return nil, err
	}

	pm := board.Generate(rng)
	hash, err := pm.HashWith(e.enc)
	if err != nil {
		return nil, err
	}
	path, err := drop.Simulate(pm, dropColumn, rng)
	if err != nil {
		return nil, err
	}
	if rng.Draws() != DrawsPerGame {
		return nil, errs.Fatalf("game consumed %d draws, want %d", rng.Draws(), DrawsPerGame)
	}

	return &GameResult{
		PegMap:     pm,
		PegMapHash: hash,
		Encoding:   e.enc,
		Path:       path,
	}, nil
}

// Outcome 為 Play 的結果：承諾、組合種子、對局結果與派彩倍率。
type Outcome struct {
	CommitHex        string      `json:"commitHex"        yaml:"commitHex"`
	CombinedSeed     string      `json:"combinedSeed"     yaml:"combinedSeed"`
	Game             *GameResult `json:"game"             yaml:"game"`
	PayoutMultiplier float64     `json:"payoutMultiplier" yaml:"payoutMultiplier"`
}

// Play 從三個種子直接跑完一局。
func (e *Engine) Play(serverSeed, clientSeed, nonce string, dropColumn int) (*Outcome, error) {
	combined := fair.CombineSeed(serverSeed, clientSeed, nonce)
	g, err := e.RunGame(combined, dropColumn)
	if err != nil {
		return nil, err
	}
	return &Outcome{
		CommitHex:        fair.CreateCommit(serverSeed, nonce),
		CombinedSeed:     combined,
		Game:             g,
		PayoutMultiplier: payout.Multiplier(g.BinIndex()),
	}, nil
}

// RunGame 使用 Default() 執行一局。
func RunGame(combinedSeed string, dropColumn int) (*GameResult, error) {
	return defaultEngine.RunGame(combinedSeed, dropColumn)
}

// Play 使用 Default() 從三個種子跑完一局。
func Play(serverSeed, clientSeed, nonce string, dropColumn int) (*Outcome, error) {
	return defaultEngine.Play(serverSeed, clientSeed, nonce, dropColumn)
}
