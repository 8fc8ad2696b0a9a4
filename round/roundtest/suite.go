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

// Package roundtest 提供 round.Store 實作共用的行為測試。
package roundtest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/zintix-labs/pegdrop/errs"
	"github.com/zintix-labs/pegdrop/round"
)

// base 取整到毫秒，讓以毫秒儲存的實作也能逐欄比對。
var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// NewRound 建立一筆 CREATED 測試資料。
func NewRound(id string, createdAt time.Time) *round.Round {
	return &round.Round{
		ID:         id,
		Status:     round.StatusCreated,
		CommitHex:  "commit-" + id,
		Nonce:      "nonce-" + id,
		ServerSeed: "seed-" + id,
		CreatedAt:  createdAt,
	}
}

// RunStoreSuite 對 newStore 回傳的空 Store 執行所有行為測試。
func RunStoreSuite(t *testing.T, newStore func(t *testing.T) round.Store) {
	t.Run("CreateGet", func(t *testing.T) { testCreateGet(t, newStore(t)) })
	t.Run("Duplicate", func(t *testing.T) { testDuplicate(t, newStore(t)) })
	t.Run("NotFound", func(t *testing.T) { testNotFound(t, newStore(t)) })
	t.Run("UpdateLifecycle", func(t *testing.T) { testUpdateLifecycle(t, newStore(t)) })
	t.Run("UpdateConflict", func(t *testing.T) { testUpdateConflict(t, newStore(t)) })
	t.Run("ListOrder", func(t *testing.T) { testListOrder(t, newStore(t)) })
	t.Run("ConcurrentStart", func(t *testing.T) { testConcurrentStart(t, newStore(t)) })
}

func testCreateGet(t *testing.T, s round.Store) {
	ctx := context.Background()
	r := NewRound("r1", base)
	if err := s.Create(ctx, r); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := s.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != "r1" || got.Status != round.StatusCreated || got.ServerSeed != "seed-r1" || got.Nonce != "nonce-r1" || got.CommitHex != "commit-r1" {
		t.Fatalf("unexpected round: %+v", got)
	}
	if !got.CreatedAt.Equal(base) || got.Result != nil || got.RevealedAt != nil {
		t.Fatalf("unexpected round fields: %+v", got)
	}
	// 回傳值不得與內部共用
	got.Status = round.StatusRevealed
	again, _ := s.Get(ctx, "r1")
	if again.Status != round.StatusCreated {
		t.Fatalf("store leaked internal state")
	}
}

func testDuplicate(t *testing.T, s round.Store) {
	ctx := context.Background()
	if err := s.Create(ctx, NewRound("dup", base)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Create(ctx, NewRound("dup", base)); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func testNotFound(t *testing.T, s round.Store) {
	ctx := context.Background()
	if _, err := s.Get(ctx, "missing"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := s.Update(ctx, NewRound("missing", base), round.StatusCreated); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found on update, got %v", err)
	}
}

func started(r *round.Round) *round.Round {
	c := r.Clone()
	c.Status = round.StatusStarted
	c.Result = &round.Result{
		ClientSeed:       "client",
		CombinedSeed:     "combined",
		PegMapHash:       "hash",
		Encoding:         "pegmap/v1",
		Rows:             12,
		DropColumn:       6,
		BinIndex:         6,
		PayoutMultiplier: 0.3,
		BetCents:         100,
		PayoutCents:      30,
		Path:             []bool{true, true, true, false, true, false, true, false, true, false, false, false},
		StartedAt:        base.Add(time.Second),
	}
	return c
}

func testUpdateLifecycle(t *testing.T, s round.Store) {
	ctx := context.Background()
	r := NewRound("life", base)
	if err := s.Create(ctx, r); err != nil {
		t.Fatalf("create: %v", err)
	}
	st := started(r)
	if err := s.Update(ctx, st, round.StatusCreated); err != nil {
		t.Fatalf("start: %v", err)
	}
	got, _ := s.Get(ctx, "life")
	if got.Status != round.StatusStarted || got.Result == nil {
		t.Fatalf("start not stored: %+v", got)
	}
	res := got.Result
	if res.ClientSeed != "client" || res.BinIndex != 6 || res.PayoutMultiplier != 0.3 || res.PayoutCents != 30 || res.Rows != 12 {
		t.Fatalf("result fields: %+v", res)
	}
	if len(res.Path) != 12 || !res.Path[0] || res.Path[3] {
		t.Fatalf("path not round-tripped: %v", res.Path)
	}
	if !res.StartedAt.Equal(base.Add(time.Second)) {
		t.Fatalf("startedAt got %v", res.StartedAt)
	}

	rv := got.Clone()
	at := base.Add(2 * time.Second)
	rv.Status = round.StatusRevealed
	rv.RevealedAt = &at
	if err := s.Update(ctx, rv, round.StatusStarted); err != nil {
		t.Fatalf("reveal: %v", err)
	}
	got, _ = s.Get(ctx, "life")
	if got.Status != round.StatusRevealed || got.RevealedAt == nil || !got.RevealedAt.Equal(at) {
		t.Fatalf("reveal not stored: %+v", got)
	}
}

func testUpdateConflict(t *testing.T, s round.Store) {
	ctx := context.Background()
	r := NewRound("c1", base)
	if err := s.Create(ctx, r); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Update(ctx, started(r), round.StatusStarted); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	got, _ := s.Get(ctx, "c1")
	if got.Status != round.StatusCreated {
		t.Fatalf("rejected update must not write: %+v", got)
	}
}

func testListOrder(t *testing.T, s round.Store) {
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := s.Create(ctx, NewRound(fmt.Sprintf("l%d", i), base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	// 同一毫秒建立的兩筆，後插入者在前
	_ = s.Create(ctx, NewRound("tie-a", base.Add(10*time.Minute)))
	_ = s.Create(ctx, NewRound("tie-b", base.Add(10*time.Minute)))

	all, err := s.List(ctx, 100)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"tie-b", "tie-a", "l4", "l3", "l2", "l1", "l0"}
	if len(all) != len(want) {
		t.Fatalf("list len got %d want %d", len(all), len(want))
	}
	for i, id := range want {
		if all[i].ID != id {
			t.Fatalf("list[%d] got %s want %s", i, all[i].ID, id)
		}
	}
	top, _ := s.List(ctx, 2)
	if len(top) != 2 || top[0].ID != "tie-b" {
		t.Fatalf("limit not applied: %d", len(top))
	}
}

func testConcurrentStart(t *testing.T, s round.Store) {
	ctx := context.Background()
	r := NewRound("race", base)
	if err := s.Create(ctx, r); err != nil {
		t.Fatalf("create: %v", err)
	}
	const n = 8
	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.Update(ctx, started(r), round.StatusCreated)
		}()
	}
	wg.Wait()
	close(results)
	ok := 0
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, errs.ErrConflict):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("exactly one start should win, got %d", ok)
	}
}
