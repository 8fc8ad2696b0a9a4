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

// Package memstore 是 round.Store 的記憶體實作，用於開發與測試；重啟即遺失。
package memstore

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/zintix-labs/pegdrop/errs"
	"github.com/zintix-labs/pegdrop/round"
)

type entry struct {
	seq int64
	r   *round.Round
}

// Store 以 map 保存回合，seq 保留插入順序。
type Store struct {
	mu   sync.RWMutex
	byID map[string]*entry
	seq  int64
}

func New() *Store {
	return &Store{byID: make(map[string]*entry)}
}

func (s *Store) Create(ctx context.Context, r *round.Round) error {
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "create round")
	}
	if r == nil || r.ID == "" {
		return errs.InvalidInput("round id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[r.ID]; ok {
		return errs.Conflict("round %s already exists", r.ID)
	}
	s.seq++
	s.byID[r.ID] = &entry{seq: s.seq, r: r.Clone()}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*round.Round, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "get round")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byID[id]
	if !ok {
		return nil, errs.NotFound("round %s not found", id)
	}
	return e.r.Clone(), nil
}

func (s *Store) Update(ctx context.Context, r *round.Round, from round.Status) error {
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "update round")
	}
	if r == nil {
		return errs.InvalidInput("round is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byID[r.ID]
	if !ok {
		return errs.NotFound("round %s not found", r.ID)
	}
	if e.r.Status != from {
		return errs.Conflict("round %s is %s, want %s", r.ID, e.r.Status, from)
	}
	e.r = r.Clone()
	return nil
}

func (s *Store) List(ctx context.Context, limit int) ([]*round.Round, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "list rounds")
	}
	s.mu.RLock()
	all := make([]entry, 0, len(s.byID))
	for _, e := range s.byID {
		all = append(all, entry{seq: e.seq, r: e.r.Clone()})
	}
	s.mu.RUnlock()

	slices.SortFunc(all, func(a, b entry) int {
		if c := b.r.CreatedAt.Compare(a.r.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.seq, a.seq)
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	out := make([]*round.Round, len(all))
	for i, e := range all {
		out[i] = e.r
	}
	return out, nil
}
