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
	"strconv"

	"github.com/zintix-labs/pegdrop/errs"
	"github.com/zintix-labs/pegdrop/sdk/board"
	"github.com/zintix-labs/pegdrop/sdk/fair"
)

// Reveal 為局後公開、足以重算整局的四個值。
type Reveal struct {
	ServerSeed string `json:"serverSeed" yaml:"serverSeed"`
	ClientSeed string `json:"clientSeed" yaml:"clientSeed"`
	Nonce      string `json:"nonce"      yaml:"nonce"`
	DropColumn int    `json:"dropColumn" yaml:"dropColumn"`
}

// Verification 為 Reveal 重算出的全部公開欄位。
//
// PegMapHash 為 Encoding 下的雜湊，與同一 Engine 開局時存下的值一致；
// V1PegMapHash / LegacyPegMapHash 固定為各自編碼的雜湊，供比對其他來源的紀錄。
type Verification struct {
	CommitHex        string         `json:"commitHex"        yaml:"commitHex"`
	CombinedSeed     string         `json:"combinedSeed"     yaml:"combinedSeed"`
	PegMapHash       string         `json:"pegMapHash"       yaml:"pegMapHash"`
	V1PegMapHash     string         `json:"v1PegMapHash"     yaml:"v1PegMapHash"`
	LegacyPegMapHash string         `json:"legacyPegMapHash" yaml:"legacyPegMapHash"`
	Encoding         board.Encoding `json:"encoding"         yaml:"encoding"`
	DropColumn       int            `json:"dropColumn"       yaml:"dropColumn"`
	BinIndex         int            `json:"binIndex"         yaml:"binIndex"`
	Decisions        []bool         `json:"decisions"        yaml:"decisions"`
	PayoutMultiplier float64        `json:"payoutMultiplier" yaml:"payoutMultiplier"`
}

// Verify 從 Reveal 重算 commit、combinedSeed、peg map 雜湊（兩種編碼）、路徑與倍率。
func (e *Engine) Verify(rv Reveal) (*Verification, error) {
	if rv.ServerSeed == "" {
		return nil, errs.InvalidInput("serverSeed is required")
	}
	out, err := e.Play(rv.ServerSeed, rv.ClientSeed, rv.Nonce, rv.DropColumn)
	if err != nil {
		return nil, err
	}
	g := out.Game
	v := &Verification{
		CommitHex:        out.CommitHex,
		CombinedSeed:     out.CombinedSeed,
		PegMapHash:       g.PegMapHash,
		V1PegMapHash:     g.PegMap.Hash(),
		LegacyPegMapHash: fair.SHA256Hex(g.PegMap.LegacyJSON()),
		Encoding:         g.Encoding,
		DropColumn:       rv.DropColumn,
		BinIndex:         g.Path.BinIndex,
		Decisions:        g.Path.Decisions,
		PayoutMultiplier: out.PayoutMultiplier,
	}
	return v, nil
}

// Published 為營運方先前公開的紀錄；空字串或 nil 的欄位不比對。
type Published struct {
	CommitHex        string   `json:"commitHex,omitempty"        yaml:"commitHex,omitempty"`
	CombinedSeed     string   `json:"combinedSeed,omitempty"     yaml:"combinedSeed,omitempty"`
	PegMapHash       string   `json:"pegMapHash,omitempty"       yaml:"pegMapHash,omitempty"`
	BinIndex         *int     `json:"binIndex,omitempty"         yaml:"binIndex,omitempty"`
	PayoutMultiplier *float64 `json:"payoutMultiplier,omitempty" yaml:"payoutMultiplier,omitempty"`
}

// Mismatch 描述一個不一致的欄位。
type Mismatch struct {
	Field      string `json:"field"      yaml:"field"`
	Published  string `json:"published"  yaml:"published"`
	Recomputed string `json:"recomputed" yaml:"recomputed"`
}

// AuditReport 為 Audit 的結果。
//
// PegMapEncoding 為與公開雜湊相符的編碼；未比對或皆不相符時為空。
type AuditReport struct {
	Verification   *Verification  `json:"verification"             yaml:"verification"`
	PegMapEncoding board.Encoding `json:"pegMapEncoding,omitempty" yaml:"pegMapEncoding,omitempty"`
	Checked        []string       `json:"checked"                  yaml:"checked"`
	Mismatches     []Mismatch     `json:"mismatches"               yaml:"mismatches"`
	OK             bool           `json:"ok"                       yaml:"ok"`
}

// Audit 重算 Reveal 並與 Published 逐欄比對。
//
// pegMapHash 先比 pegmap/v1，再比 legacy-json，任一相符即通過。
// 回傳的 error 只代表無法重算（例如 dropColumn 非法）；不一致記錄在 AuditReport.Mismatches。
func (e *Engine) Audit(rv Reveal, pub Published) (*AuditReport, error) {
	v, err := e.Verify(rv)
	if err != nil {
		return nil, err
	}
	rep := &AuditReport{
		Verification: v,
		Checked:      make([]string, 0, 5),
		Mismatches:   make([]Mismatch, 0),
	}
	check := func(field, published, recomputed string) {
		rep.Checked = append(rep.Checked, field)
		if published != recomputed {
			rep.Mismatches = append(rep.Mismatches, Mismatch{Field: field, Published: published, Recomputed: recomputed})
		}
	}

	if pub.CommitHex != "" {
		check("commitHex", pub.CommitHex, v.CommitHex)
	}
	if pub.CombinedSeed != "" {
		check("combinedSeed", pub.CombinedSeed, v.CombinedSeed)
	}
	if pub.PegMapHash != "" {
		switch pub.PegMapHash {
		case v.V1PegMapHash:
			rep.PegMapEncoding = board.EncodingV1
			check("pegMapHash", pub.PegMapHash, v.V1PegMapHash)
		case v.LegacyPegMapHash:
			rep.PegMapEncoding = board.EncodingLegacyJSON
			check("pegMapHash", pub.PegMapHash, v.LegacyPegMapHash)
		default:
			check("pegMapHash", pub.PegMapHash, v.PegMapHash)
		}
	}
	if pub.BinIndex != nil {
		check("binIndex", strconv.Itoa(*pub.BinIndex), strconv.Itoa(v.BinIndex))
	}
	if pub.PayoutMultiplier != nil {
		check("payoutMultiplier", formatMultiplier(*pub.PayoutMultiplier), formatMultiplier(v.PayoutMultiplier))
	}

	rep.OK = len(rep.Mismatches) == 0
	return rep, nil
}

func formatMultiplier(m float64) string {
	return strconv.FormatFloat(m, 'f', -1, 64)
}

// Verify 使用 Default() 重算一局。
func Verify(rv Reveal) (*Verification, error) {
	return defaultEngine.Verify(rv)
}

// Audit 使用 Default() 稽核一局。
func Audit(rv Reveal, pub Published) (*AuditReport, error) {
	return defaultEngine.Audit(rv, pub)
}
