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

// Package round 管理一局的承諾、開局與揭露流程，以及結果的持久化介面。
//
// 狀態只能依序前進：CREATED → STARTED → REVEALED。
// serverSeed 直到 REVEALED 才會出現在對外的檢視中。
package round

import (
	"context"
	"time"
)

type Status string

const (
	StatusCreated  Status = "CREATED"
	StatusStarted  Status = "STARTED"
	StatusRevealed Status = "REVEALED"
)

// Valid 回傳是否為已知狀態。
func (s Status) Valid() bool {
	switch s {
	case StatusCreated, StatusStarted, StatusRevealed:
		return true
	default:
		return false
	}
}

// Round 為儲存層保存的完整紀錄（含 serverSeed）。
type Round struct {
	ID         string     `json:"id"`
	Status     Status     `json:"status"`
	CommitHex  string     `json:"commitHex"`
	Nonce      string     `json:"nonce"`
	ServerSeed string     `json:"serverSeed,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	Result     *Result    `json:"result,omitempty"`
	RevealedAt *time.Time `json:"revealedAt,omitempty"`
}

// Result 為 Start 之後寫入的對局資料。
type Result struct {
	ClientSeed       string    `json:"clientSeed"`
	CombinedSeed     string    `json:"combinedSeed"`
	PegMapHash       string    `json:"pegMapHash"`
	Encoding         string    `json:"encoding"`
	Rows             int       `json:"rows"`
	DropColumn       int       `json:"dropColumn"`
	BinIndex         int       `json:"binIndex"`
	PayoutMultiplier float64   `json:"payoutMultiplier"`
	BetCents         int64     `json:"betCents"`
	PayoutCents      int64     `json:"payoutCents"`
	Path             []bool    `json:"path"`
	StartedAt        time.Time `json:"startedAt"`
}

// Clone 深拷貝，儲存層用來避免呼叫端修改內部資料。
func (r *Round) Clone() *Round {
	if r == nil {
		return nil
	}
	c := *r
	if r.Result != nil {
		res := *r.Result
		res.Path = append([]bool(nil), r.Result.Path...)
		c.Result = &res
	}
	if r.RevealedAt != nil {
		t := *r.RevealedAt
		c.RevealedAt = &t
	}
	return &c
}

// Public 回傳對外檢視：未揭露前不含 serverSeed。
func (r *Round) Public() *Round {
	c := r.Clone()
	if c.Status != StatusRevealed {
		c.ServerSeed = ""
	}
	return c
}

// Summary 為列表用的精簡檢視。
type Summary struct {
	ID               string    `json:"id"`
	CreatedAt        time.Time `json:"createdAt"`
	Status           Status    `json:"status"`
	BinIndex         *int      `json:"binIndex"`
	PayoutMultiplier *float64  `json:"payoutMultiplier"`
	BetCents         *int64    `json:"betCents"`
}

func (r *Round) Summary() Summary {
	s := Summary{ID: r.ID, CreatedAt: r.CreatedAt, Status: r.Status}
	if r.Result != nil {
		bin, mult, bet := r.Result.BinIndex, r.Result.PayoutMultiplier, r.Result.BetCents
		s.BinIndex, s.PayoutMultiplier, s.BetCents = &bin, &mult, &bet
	}
	return s
}

// Store 為回合持久化介面。
//
//   - Create：ID 重複回傳 errs.ErrConflict。
//   - Get：不存在回傳 errs.ErrNotFound。
//   - Update：只有目前狀態等於 from 才寫入，否則回傳 errs.ErrConflict；不存在回傳 errs.ErrNotFound。
//   - List：依建立時間新到舊，最多 limit 筆。
type Store interface {
	Create(ctx context.Context, r *Round) error
	Get(ctx context.Context, id string) (*Round, error)
	Update(ctx context.Context, r *Round, from Status) error
	List(ctx context.Context, limit int) ([]*Round, error)
}
