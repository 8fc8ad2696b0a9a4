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

package api_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/zintix-labs/pegdrop"
	"github.com/zintix-labs/pegdrop/round"
	"github.com/zintix-labs/pegdrop/sdk/board"
	"github.com/zintix-labs/pegdrop/sdk/core"
	"github.com/zintix-labs/pegdrop/server/api"
	"github.com/zintix-labs/pegdrop/server/netsvr"
	"github.com/zintix-labs/pegdrop/server/svrcfg"
	"github.com/zintix-labs/pegdrop/storage/memstore"
)

const (
	vecServerSeed = "b2a5f3f32a4d9c6ee7a8c1d33456677890abcdeffedcba0987654321ffeeddcc"
	vecNonce      = "42"
	vecCommit     = "bb9acdc67f3f18f3345236a01f0e5072596657a9005c7d8a22cff061451a6b34"
	vecCombined   = "e1dddf77de27d395ea2be2ed49aa2a59bd6bf12ee8d350c16c008abd406c07e0"
	vecPegMapHash = "7a02556592bab45c9ee502695ff5ce0a012091500f9304204bf594c5e56aad47"
	vecLegacyHash = "290841ed794b76ff7f82ec9b49817d855529fb6d8fa117c17614e1f16323ee41"
)

func newHandler(t *testing.T) (http.Handler, *bytes.Buffer) {
	t.Helper()
	return newHandlerWith(t, pegdrop.Default())
}

// newHandlerWith 讓 round 服務與 verify 端點共用同一個 engine，與 cmd/svr 的組裝方式相同。
func newHandlerWith(t *testing.T, engine *pegdrop.Engine) (http.Handler, *bytes.Buffer) {
	t.Helper()
	buf := new(bytes.Buffer)
	log := slog.New(slog.NewJSONHandler(buf, nil))
	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ids := 0
	svc, err := round.NewService(memstore.New(), engine, log,
		round.WithSeeds(func() (string, string, error) { return vecServerSeed, vecNonce, nil }),
		round.WithClock(func() time.Time { clock = clock.Add(time.Second); return clock }),
		round.WithIDs(func() string { ids++; return "r" + string(rune('0'+ids)) }),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	sCfg := &svrcfg.SvrCfg{Log: log, Rounds: svc, Engine: engine, SimWorkers: 2}
	if err := sCfg.Vaild(); err != nil {
		t.Fatalf("vaild: %v", err)
	}
	svr := netsvr.NewChiServer(":0")
	if err := api.RegisterRoutes(svr, sCfg); err != nil {
		t.Fatalf("register: %v", err)
	}
	return svr.Handler(), buf
}

func do(t *testing.T, h http.Handler, method, path, body string, out any) int {
	t.Helper()
	var rd *strings.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	var req *http.Request
	if rd != nil {
		req = httptest.NewRequest(method, path, rd)
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code
}

func TestRoundLifecycleOverHTTP(t *testing.T) {
	h, logs := newHandler(t)

	var c round.Commitment
	if code := do(t, h, http.MethodPost, "/v1/rounds/commit", "", &c); code != http.StatusOK {
		t.Fatalf("commit status %d", code)
	}
	if c.RoundID != "r1" || c.CommitHex != vecCommit || c.Nonce != vecNonce {
		t.Fatalf("unexpected commitment %+v", c)
	}

	var pub map[string]any
	do(t, h, http.MethodGet, "/v1/rounds/r1", "", &pub)
	if _, ok := pub["serverSeed"]; ok || pub["status"] != "CREATED" {
		t.Fatalf("server seed must be hidden before reveal: %v", pub)
	}

	var st round.Started
	code := do(t, h, http.MethodPost, "/v1/rounds/r1/start",
		`{"clientSeed":"candidate-hello","betCents":1000,"dropColumn":6}`, &st)
	if code != http.StatusOK {
		t.Fatalf("start status %d", code)
	}
	if st.PegMapHash != vecPegMapHash || st.Rows != 12 || st.BinIndex != 6 || st.PayoutMultiplier != 0.3 || st.PayoutCents != 300 {
		t.Fatalf("unexpected start %+v", st)
	}
	if len(st.Path) != 12 {
		t.Fatalf("path length %d", len(st.Path))
	}

	var errBody map[string]string
	code = do(t, h, http.MethodPost, "/v1/rounds/r1/start",
		`{"clientSeed":"again","betCents":1,"dropColumn":6}`, &errBody)
	if code != http.StatusConflict || errBody["code"] != "conflict" {
		t.Fatalf("second start should conflict, got %d %v", code, errBody)
	}

	var rv round.Revealed
	if code := do(t, h, http.MethodPost, "/v1/rounds/r1/reveal", "", &rv); code != http.StatusOK {
		t.Fatalf("reveal status %d", code)
	}
	if rv.ServerSeed != vecServerSeed || rv.Status != round.StatusRevealed {
		t.Fatalf("unexpected reveal %+v", rv)
	}

	var full round.Round
	do(t, h, http.MethodGet, "/v1/rounds/r1", "", &full)
	if full.ServerSeed != vecServerSeed || full.Result == nil || full.Result.CombinedSeed != vecCombined {
		t.Fatalf("revealed round should expose seeds: %+v", full)
	}

	var v pegdrop.Verification
	q := "/v1/verify?serverSeed=" + rv.ServerSeed + "&clientSeed=candidate-hello&nonce=" + c.Nonce + "&dropColumn=6"
	if code := do(t, h, http.MethodGet, q, "", &v); code != http.StatusOK {
		t.Fatalf("verify status %d", code)
	}
	if v.CommitHex != c.CommitHex || v.CombinedSeed != vecCombined || v.PegMapHash != st.PegMapHash || v.BinIndex != st.BinIndex {
		t.Fatalf("verification does not reproduce round: %+v", v)
	}

	if strings.Contains(logs.String(), vecServerSeed) {
		t.Fatalf("server seed leaked into logs")
	}
	if !strings.Contains(logs.String(), `"msg":"http.access"`) {
		t.Fatalf("access log missing: %s", logs.String())
	}
}

func TestStartValidation(t *testing.T) {
	h, _ := newHandler(t)
	do(t, h, http.MethodPost, "/v1/rounds/commit", "", nil)

	cases := []struct {
		name, body string
		want       int
	}{
		{"bad json", `{"clientSeed":`, http.StatusBadRequest},
		{"missing client seed", `{"betCents":1,"dropColumn":6}`, http.StatusBadRequest},
		{"missing drop column", `{"clientSeed":"a","betCents":1}`, http.StatusBadRequest},
		{"missing bet", `{"clientSeed":"a","dropColumn":6}`, http.StatusBadRequest},
		{"column out of range", `{"clientSeed":"a","betCents":1,"dropColumn":13}`, http.StatusBadRequest},
		{"negative bet", `{"clientSeed":"a","betCents":-1,"dropColumn":0}`, http.StatusBadRequest},
	}
	for _, c := range cases {
		if code := do(t, h, http.MethodPost, "/v1/rounds/r1/start", c.body, nil); code != c.want {
			t.Fatalf("%s: got %d want %d", c.name, code, c.want)
		}
	}
	if code := do(t, h, http.MethodPost, "/v1/rounds/nope/start", `{"clientSeed":"a","betCents":1,"dropColumn":6}`, nil); code != http.StatusNotFound {
		t.Fatalf("unknown round got %d", code)
	}
	if code := do(t, h, http.MethodPost, "/v1/rounds/r1/reveal", "", nil); code != http.StatusConflict {
		t.Fatalf("revealing a CREATED round should conflict, got %d", code)
	}
}

func TestListRounds(t *testing.T) {
	h, _ := newHandler(t)
	for i := 0; i < 3; i++ {
		do(t, h, http.MethodPost, "/v1/rounds/commit", "", nil)
	}
	do(t, h, http.MethodPost, "/v1/rounds/r2/start", `{"clientSeed":"c","betCents":250,"dropColumn":0}`, nil)

	var list []round.Summary
	if code := do(t, h, http.MethodGet, "/v1/rounds?limit=2", "", &list); code != http.StatusOK {
		t.Fatalf("list status %d", code)
	}
	if len(list) != 2 || list[0].ID != "r3" || list[1].ID != "r2" {
		t.Fatalf("expected newest first, got %+v", list)
	}
	if list[0].BinIndex != nil || list[1].BinIndex == nil || *list[1].BetCents != 250 {
		t.Fatalf("summary fields wrong: %+v", list)
	}
	if code := do(t, h, http.MethodGet, "/v1/rounds?limit=abc", "", nil); code != http.StatusBadRequest {
		t.Fatalf("bad limit got %d", code)
	}
	do(t, h, http.MethodGet, "/v1/rounds", "", &list)
	if len(list) != 3 {
		t.Fatalf("default limit should return all 3, got %d", len(list))
	}
}

func TestVerifyMatchesStoredLegacyHash(t *testing.T) {
	e, err := pegdrop.New(core.Default(), board.EncodingLegacyJSON)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	h, _ := newHandlerWith(t, e)

	var c round.Commitment
	do(t, h, http.MethodPost, "/v1/rounds/commit", "", &c)
	var st round.Started
	if code := do(t, h, http.MethodPost, "/v1/rounds/"+c.RoundID+"/start",
		`{"clientSeed":"candidate-hello","betCents":1000,"dropColumn":6}`, &st); code != http.StatusOK {
		t.Fatalf("start status %d", code)
	}
	if st.PegMapHash != vecLegacyHash {
		t.Fatalf("stored hash got %s", st.PegMapHash)
	}

	var v pegdrop.Verification
	q := "/v1/verify?serverSeed=" + vecServerSeed + "&clientSeed=candidate-hello&nonce=" + c.Nonce + "&dropColumn=6"
	if code := do(t, h, http.MethodGet, q, "", &v); code != http.StatusOK {
		t.Fatalf("verify status %d", code)
	}
	if v.Encoding != board.EncodingLegacyJSON || v.PegMapHash != st.PegMapHash {
		t.Fatalf("verify should reproduce the stored hash: %s (%s)", v.PegMapHash, v.Encoding)
	}
	if v.V1PegMapHash != vecPegMapHash || v.LegacyPegMapHash != vecLegacyHash {
		t.Fatalf("per-encoding hashes got %s %s", v.V1PegMapHash, v.LegacyPegMapHash)
	}
}

func TestVerifyParams(t *testing.T) {
	h, _ := newHandler(t)
	cases := []struct {
		q    string
		want int
	}{
		{"", http.StatusBadRequest},
		{"serverSeed=aa&clientSeed=b&nonce=1", http.StatusBadRequest},
		{"serverSeed=aa&clientSeed=b&nonce=1&dropColumn=x", http.StatusBadRequest},
		{"serverSeed=aa&clientSeed=b&nonce=1&dropColumn=13", http.StatusBadRequest},
		{"serverSeed=aa&clientSeed=b&nonce=1&dropColumn=0", http.StatusOK},
	}
	for _, c := range cases {
		if code := do(t, h, http.MethodGet, "/v1/verify?"+c.q, "", nil); code != c.want {
			t.Fatalf("%q: got %d want %d", c.q, code, c.want)
		}
	}
}

func TestSimEndpoint(t *testing.T) {
	h, _ := newHandler(t)
	var resp struct {
		BaseSeed string `json:"baseSeed"`
		Stats    struct {
			Summary struct {
				DropColumn int `json:"DropColumn"`
				Rounds     int `json:"Rounds"`
			} `json:"Summary"`
			Dist struct {
				Collect []int `json:"Collect"`
			} `json:"Dist"`
		} `json:"stats"`
	}
	if code := do(t, h, http.MethodGet, "/v1/sim?dropColumn=3&rounds=256&seed=feedface", "", &resp); code != http.StatusOK {
		t.Fatalf("sim status %d", code)
	}
	if resp.BaseSeed != "feedface" || resp.Stats.Summary.Rounds != 256 || resp.Stats.Summary.DropColumn != 3 {
		t.Fatalf("unexpected sim response %+v", resp)
	}
	total := 0
	for _, n := range resp.Stats.Dist.Collect {
		total += n
	}
	if total != 256 {
		t.Fatalf("histogram total %d", total)
	}
	if code := do(t, h, http.MethodGet, "/v1/sim?rounds=0", "", nil); code != http.StatusBadRequest {
		t.Fatalf("zero rounds got %d", code)
	}
	if code := do(t, h, http.MethodGet, "/v1/sim?rounds=10&dropColumn=-1", "", nil); code != http.StatusBadRequest {
		t.Fatalf("bad column got %d", code)
	}
}
