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
	"net/http"
	"strconv"
	"strings"

	"github.com/zintix-labs/pegdrop"
	"github.com/zintix-labs/pegdrop/errs"
	"github.com/zintix-labs/pegdrop/server/httperr"
	"github.com/zintix-labs/pegdrop/server/svrcfg"
)

type VerifyHandler struct {
	engine *pegdrop.Engine
}

func NewVerifyHandler(sCfg *svrcfg.SvrCfg) (*VerifyHandler, error) {
	if sCfg == nil || sCfg.Engine == nil {
		return nil, errs.NewFatal("engine is required")
	}
	return &VerifyHandler{engine: sCfg.Engine}, nil
}

// Verify GET /v1/verify?serverSeed=&clientSeed=&nonce=&dropColumn=
//
// 只依賴四個揭露值，不讀取儲存層；任何人都能以相同輸入重算。
func (h *VerifyHandler) Verify(w http.ResponseWriter, q *http.Request) {
	rv, err := parseReveal(q)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	v, err := h.engine.Verify(rv)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	httperr.Write(w, http.StatusOK, v)
}

func parseReveal(q *http.Request) (pegdrop.Reveal, error) {
	qs := q.URL.Query()
	rv := pegdrop.Reveal{
		ServerSeed: qs.Get("serverSeed"),
		ClientSeed: qs.Get("clientSeed"),
		Nonce:      qs.Get("nonce"),
	}
	col := strings.TrimSpace(qs.Get("dropColumn"))
	if rv.ServerSeed == "" || rv.ClientSeed == "" || rv.Nonce == "" || col == "" {
		return rv, errs.InvalidInput("serverSeed, clientSeed, nonce and dropColumn are required")
	}
	n, err := strconv.Atoi(col)
	if err != nil {
		return rv, errs.InvalidInput("dropColumn must be an integer")
	}
	rv.DropColumn = n
	return rv, nil
}
