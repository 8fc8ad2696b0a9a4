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

// Package sqlite 是 round.Store 的 SQLite 實作（modernc.org/sqlite，純 Go、免 cgo）。
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/zintix-labs/pegdrop/errs"
	"github.com/zintix-labs/pegdrop/round"
	"github.com/zintix-labs/pegdrop/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store 將回合保存在 SQLite。時間欄位以 UTC 毫秒儲存。
type Store struct {
	db *sql.DB
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// Open 開啟（或建立）path 的資料庫並套用內嵌 migrations。
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errs.InvalidInput("storage path is required")
	}
	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errs.Wrap(err, "open sqlite db")
	}
	// 單一寫入連線，狀態轉移依賴 UPDATE ... WHERE status = ? 的原子性
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errs.Wrap(err, "ping sqlite db")
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close 關閉資料庫連線。
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

const selectColumns = `id, status, commit_hex, nonce, server_seed, created_at,
       client_seed, combined_seed, peg_map_hash, encoding, row_count, drop_column,
       bin_index, payout_multiplier, bet_cents, payout_cents, path_json,
       started_at, revealed_at`

func (s *Store) Create(ctx context.Context, r *round.Round) error {
	if r == nil || strings.TrimSpace(r.ID) == "" {
		return errs.InvalidInput("round id is required")
	}
	cols, err := resultColumns(r)
	if err != nil {
		return err
	}
	args := append([]any{r.ID, string(r.Status), r.CommitHex, r.Nonce, r.ServerSeed, toMillis(r.CreatedAt)}, cols...)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO rounds (`+selectColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errs.Conflict("round %s already exists", r.ID)
		}
		return errs.Wrap(err, "create round")
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*round.Round, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM rounds WHERE id = ?`, id)
	r, err := scanRound(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("round %s not found", id)
	}
	if err != nil {
		return nil, errs.Wrap(err, "get round")
	}
	return r, nil
}

func (s *Store) Update(ctx context.Context, r *round.Round, from round.Status) error {
	if r == nil {
		return errs.InvalidInput("round is required")
	}
	cols, err := resultColumns(r)
	if err != nil {
		return err
	}
	args := append([]any{string(r.Status)}, cols...)
	args = append(args, r.ID, string(from))
	res, err := s.db.ExecContext(ctx,
		`UPDATE rounds
		    SET status = ?,
		        client_seed = ?, combined_seed = ?, peg_map_hash = ?, encoding = ?,
		        row_count = ?, drop_column = ?, bin_index = ?, payout_multiplier = ?,
		        bet_cents = ?, payout_cents = ?, path_json = ?, started_at = ?, revealed_at = ?
		  WHERE id = ? AND status = ?`,
		args...,
	)
	if err != nil {
		return errs.Wrap(err, "update round")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errs.Wrap(err, "update round")
	}
	if n == 1 {
		return nil
	}

	var current string
	err = s.db.QueryRowContext(ctx, `SELECT status FROM rounds WHERE id = ?`, r.ID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return errs.NotFound("round %s not found", r.ID)
	}
	if err != nil {
		return errs.Wrap(err, "update round")
	}
	return errs.Conflict("round %s is %s, want %s", r.ID, current, from)
}

func (s *Store) List(ctx context.Context, limit int) ([]*round.Round, error) {
	if limit <= 0 {
		limit = round.MaxListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM rounds ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, errs.Wrap(err, "list rounds")
	}
	defer rows.Close()

	out := make([]*round.Round, 0, limit)
	for rows.Next() {
		r, err := scanRound(rows)
		if err != nil {
			return nil, errs.Wrap(err, "scan round")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(err, "list rounds")
	}
	return out, nil
}

// resultColumns 依 selectColumns 的順序回傳 client_seed 之後的 13 個欄位值。
func resultColumns(r *round.Round) ([]any, error) {
	var revealed any
	if r.RevealedAt != nil {
		revealed = toMillis(*r.RevealedAt)
	}
	res := r.Result
	if res == nil {
		return []any{nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, revealed}, nil
	}
	path, err := json.Marshal(res.Path)
	if err != nil {
		return nil, errs.Wrap(err, "encode path")
	}
	return []any{
		res.ClientSeed, res.CombinedSeed, res.PegMapHash, res.Encoding,
		res.Rows, res.DropColumn, res.BinIndex, res.PayoutMultiplier,
		res.BetCents, res.PayoutCents, string(path), toMillis(res.StartedAt),
		revealed,
	}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRound(sc scanner) (*round.Round, error) {
	var (
		r         round.Round
		status    string
		createdAt int64
		client    sql.NullString
		combined  sql.NullString
		pegHash   sql.NullString
		encoding  sql.NullString
		rowsN     sql.NullInt64
		column    sql.NullInt64
		bin       sql.NullInt64
		mult      sql.NullFloat64
		bet       sql.NullInt64
		payout    sql.NullInt64
		pathJSON  sql.NullString
		startedAt sql.NullInt64
		revealed  sql.NullInt64
	)
	if err := sc.Scan(
		&r.ID, &status, &r.CommitHex, &r.Nonce, &r.ServerSeed, &createdAt,
		&client, &combined, &pegHash, &encoding, &rowsN, &column,
		&bin, &mult, &bet, &payout, &pathJSON,
		&startedAt, &revealed,
	); err != nil {
		return nil, err
	}
	r.Status = round.Status(status)
	r.CreatedAt = fromMillis(createdAt)
	if revealed.Valid {
		t := fromMillis(revealed.Int64)
		r.RevealedAt = &t
	}
	if client.Valid {
		res := &round.Result{
			ClientSeed:       client.String,
			CombinedSeed:     combined.String,
			PegMapHash:       pegHash.String,
			Encoding:         encoding.String,
			Rows:             int(rowsN.Int64),
			DropColumn:       int(column.Int64),
			BinIndex:         int(bin.Int64),
			PayoutMultiplier: mult.Float64,
			BetCents:         bet.Int64,
			PayoutCents:      payout.Int64,
			StartedAt:        fromMillis(startedAt.Int64),
		}
		if pathJSON.Valid && pathJSON.String != "" {
			if err := json.Unmarshal([]byte(pathJSON.String), &res.Path); err != nil {
				return nil, err
			}
		}
		r.Result = res
	}
	return &r, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
