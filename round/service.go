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

package round

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zintix-labs/pegdrop"
	"github.com/zintix-labs/pegdrop/errs"
	"github.com/zintix-labs/pegdrop/sdk/board"
	"github.com/zintix-labs/pegdrop/sdk/drop"
	"github.com/zintix-labs/pegdrop/sdk/fair"
	"github.com/zintix-labs/pegdrop/sdk/payout"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Seeds 產生新局的 serverSeed 與 nonce。
type Seeds func() (serverSeed, nonce string, err error)

// RandomSeeds 以 crypto/rand 產生 32 bytes serverSeed 與 16 bytes nonce。
func RandomSeeds() (string, string, error) {
	s, err := fair.NewServerSeed()
	if err != nil {
		return "", "", err
	}
	n, err := fair.NewNonce()
	if err != nil {
		return "", "", err
	}
	return s, n, nil
}

// Service 串起 Store 與引擎。
type Service struct {
	store  Store
	engine *pegdrop.Engine
	log    *slog.Logger
	seeds  Seeds
	now    func() time.Time
	newID  func() string
	limit  int
}

// Option 調整 Service 的可替換元件（主要給測試用）。
type Option func(*Service)

func WithSeeds(s Seeds) Option { return func(svc *Service) { svc.seeds = s } }

func WithClock(now func() time.Time) Option { return func(svc *Service) { svc.now = now } }

func WithIDs(newID func() string) Option { return func(svc *Service) { svc.newID = newID } }

// WithListLimit 設定 List 未指定 limit 時的預設筆數。
func WithListLimit(n int) Option {
	return func(svc *Service) {
		if n > 0 {
			svc.limit = min(n, MaxListLimit)
		}
	}
}

// NewService 建立 Service；engine 為 nil 時使用 pegdrop.Default()。
func NewService(store Store, engine *pegdrop.Engine, log *slog.Logger, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errs.NewFatal("round store is required")
	}
	if engine == nil {
		engine = pegdrop.Default()
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	svc := &Service{
		store:  store,
		engine: engine,
		log:    log,
		seeds:  RandomSeeds,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
		limit:  DefaultListLimit,
	}
	for _, o := range opts {
		o(svc)
	}
	return svc, nil
}

// Commitment 為 Commit 回給玩家的內容。
type Commitment struct {
	RoundID   string `json:"roundId"`
	CommitHex string `json:"commitHex"`
	Nonce     string `json:"nonce"`
}

// Commit 產生新的 serverSeed / nonce，只公開 commitHex 與 nonce。
func (s *Service) Commit(ctx context.Context) (*Commitment, error) {
	serverSeed, nonce, err := s.seeds()
	if err != nil {
		return nil, errs.Wrap(err, "generate seeds")
	}
	r := &Round{
		ID:         s.newID(),
		Status:     StatusCreated,
		CommitHex:  fair.CreateCommit(serverSeed, nonce),
		Nonce:      nonce,
		ServerSeed: serverSeed,
		CreatedAt:  s.now(),
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "round.commit", slog.String("roundId", r.ID), slog.String("commitHex", r.CommitHex))
	return &Commitment{RoundID: r.ID, CommitHex: r.CommitHex, Nonce: r.Nonce}, nil
}

// StartInput 為玩家開局時提供的資料。
type StartInput struct {
	ClientSeed string `json:"clientSeed"`
	BetCents   int64  `json:"betCents"`
	DropColumn int    `json:"dropColumn"`
}

func (in StartInput) Validate() error {
	if strings.TrimSpace(in.ClientSeed) == "" {
		return errs.InvalidInput("clientSeed is required")
	}
	if in.BetCents < 0 {
		return errs.InvalidInput("betCents must be >= 0, got %d", in.BetCents)
	}
	return drop.ValidateColumn(in.DropColumn)
}

// Started 為 Start 的回應。
type Started struct {
	RoundID          string  `json:"roundId"`
	PegMapHash       string  `json:"pegMapHash"`
	Rows             int     `json:"rows"`
	DropColumn       int     `json:"dropColumn"`
	BinIndex         int     `json:"binIndex"`
	PayoutMultiplier float64 `json:"payoutMultiplier"`
	PayoutCents      int64   `json:"payoutCents"`
	Path             []bool  `json:"path"`
}

// Start 收下 clientSeed 後跑完整局，狀態必須是 CREATED。
func (s *Service) Start(ctx context.Context, id string, in StartInput) (*Started, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusCreated {
		return nil, errs.Conflict("round %s is %s, want %s", id, r.Status, StatusCreated)
	}
	if r.ServerSeed == "" {
		return nil, errs.Fatalf("round %s has no server seed", id)
	}

	out, err := s.engine.Play(r.ServerSeed, in.ClientSeed, r.Nonce, in.DropColumn)
	if err != nil {
		return nil, err
	}
	if out.CommitHex != r.CommitHex {
		return nil, errs.Fatalf("round %s commit does not match stored seeds", id)
	}
	payoutCents, err := payout.Payout(in.BetCents, out.Game.BinIndex())
	if err != nil {
		return nil, err
	}

	r.Status = StatusStarted
	r.Result = &Result{
		ClientSeed:       in.ClientSeed,
		CombinedSeed:     out.CombinedSeed,
		PegMapHash:       out.Game.PegMapHash,
		Encoding:         string(out.Game.Encoding),
		Rows:             board.Rows,
		DropColumn:       in.DropColumn,
		BinIndex:         out.Game.BinIndex(),
		PayoutMultiplier: out.PayoutMultiplier,
		BetCents:         in.BetCents,
		PayoutCents:      payoutCents,
		Path:             out.Game.Path.Decisions,
		StartedAt:        s.now(),
	}
	if err := s.store.Update(ctx, r, StatusCreated); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "round.start",
		slog.String("roundId", r.ID),
		slog.Int("dropColumn", in.DropColumn),
		slog.Int("binIndex", r.Result.BinIndex),
		slog.Float64("payoutMultiplier", r.Result.PayoutMultiplier),
	)
	return &Started{
		RoundID:          r.ID,
		PegMapHash:       r.Result.PegMapHash,
		Rows:             r.Result.Rows,
		DropColumn:       r.Result.DropColumn,
		BinIndex:         r.Result.BinIndex,
		PayoutMultiplier: r.Result.PayoutMultiplier,
		PayoutCents:      r.Result.PayoutCents,
		Path:             r.Result.Path,
	}, nil
}

// Revealed 為 Reveal 的回應。
type Revealed struct {
	RoundID    string `json:"roundId"`
	ServerSeed string `json:"serverSeed"`
	Status     Status `json:"status"`
}

// Reveal 公開 serverSeed；只有 STARTED 的局可以揭露。
func (s *Service) Reveal(ctx context.Context, id string) (*Revealed, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusStarted {
		return nil, errs.Conflict("round %s is %s, want %s", id, r.Status, StatusStarted)
	}
	now := s.now()
	r.Status = StatusRevealed
	r.RevealedAt = &now
	if err := s.store.Update(ctx, r, StatusStarted); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "round.reveal", slog.String("roundId", r.ID))
	return &Revealed{RoundID: r.ID, ServerSeed: r.ServerSeed, Status: r.Status}, nil
}

// Get 回傳對外檢視。
func (s *Service) Get(ctx context.Context, id string) (*Round, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.Public(), nil
}

// List 回傳新到舊的摘要；limit <= 0 使用預設值，上限 MaxListLimit。
func (s *Service) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = s.limit
	}
	limit = min(limit, MaxListLimit)
	rs, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Summary())
	}
	return out, nil
}

// Verify 以揭露後的四個值重算；不需要讀取儲存層。
func (s *Service) Verify(rv pegdrop.Reveal) (*pegdrop.Verification, error) {
	return s.engine.Verify(rv)
}
