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

package v1

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/zintix-labs/pegdrop/errs"
	"github.com/zintix-labs/pegdrop/round"
	"github.com/zintix-labs/pegdrop/server/httperr"
	"github.com/zintix-labs/pegdrop/server/svrcfg"
)

// 開局 body 的上限，clientSeed 之外沒有大欄位。
const maxBodyBytes = 1 << 16

// ============================================================
// ** RoundHandler **
// ============================================================

type RoundHandler struct {
	svc *round.Service
	log *slog.Logger
}

func NewRoundHandler(sCfg *svrcfg.SvrCfg) (*RoundHandler, error) {
	if sCfg == nil || sCfg.Rounds == nil {
		return nil, errs.NewFatal("round service is required")
	}
	return &RoundHandler{svc: sCfg.Rounds, log: sCfg.Log}, nil
}

// Commit POST /v1/rounds/commit
func (h *RoundHandler) Commit(w http.ResponseWriter, q *http.Request) {
	c, err := h.svc.Commit(q.Context())
	if err != nil {
		h.fail(w, "round commit failed", err)
		return
	}
	httperr.Write(w, http.StatusOK, c)
}

// startRequest 的數值欄位以指標接收，才能分辨「沒給」與「給 0」。
type startRequest struct {
	ClientSeed string `json:"clientSeed"`
	BetCents   *int64 `json:"betCents"`
	DropColumn *int   `json:"dropColumn"`
}

func decodeStart(body io.Reader) (round.StartInput, error) {
	req := new(startRequest)
	if err := json.NewDecoder(body).Decode(req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return round.StartInput{}, errs.InvalidInput("request body too large")
		}
		return round.StartInput{}, errs.InvalidInput("invalid json: %v", err)
	}
	if req.ClientSeed == "" || req.BetCents == nil || req.DropColumn == nil {
		return round.StartInput{}, errs.InvalidInput("clientSeed, betCents and dropColumn are required")
	}
	return round.StartInput{ClientSeed: req.ClientSeed, BetCents: *req.BetCents, DropColumn: *req.DropColumn}, nil
}

// Start POST /v1/rounds/{id}/start
func (h *RoundHandler) Start(w http.ResponseWriter, q *http.Request) {
	in, err := decodeStart(http.MaxBytesReader(w, q.Body, maxBodyBytes))
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	st, err := h.svc.Start(q.Context(), chi.URLParam(q, "id"), in)
	if err != nil {
		h.fail(w, "round start failed", err)
		return
	}
	httperr.Write(w, http.StatusOK, st)
}

// Reveal POST /v1/rounds/{id}/reveal
func (h *RoundHandler) Reveal(w http.ResponseWriter, q *http.Request) {
	rv, err := h.svc.Reveal(q.Context(), chi.URLParam(q, "id"))
	if err != nil {
		h.fail(w, "round reveal failed", err)
		return
	}
	httperr.Write(w, http.StatusOK, rv)
}

// Get GET /v1/rounds/{id}
func (h *RoundHandler) Get(w http.ResponseWriter, q *http.Request) {
	r, err := h.svc.Get(q.Context(), chi.URLParam(q, "id"))
	if err != nil {
		h.fail(w, "round get failed", err)
		return
	}
	httperr.Write(w, http.StatusOK, r)
}

// List GET /v1/rounds?limit=
func (h *RoundHandler) List(w http.ResponseWriter, q *http.Request) {
	limit := 0
	if s := q.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			httperr.Errs(w, errs.InvalidInput("limit must be a positive integer"))
			return
		}
		limit = n
	}
	rs, err := h.svc.List(q.Context(), limit)
	if err != nil {
		h.fail(w, "round list failed", err)
		return
	}
	httperr.Write(w, http.StatusOK, rs)
}

func (h *RoundHandler) fail(w http.ResponseWriter, msg string, err error) {
	httperr.Log(h.log, msg, err)
	httperr.Errs(w, err)
}
