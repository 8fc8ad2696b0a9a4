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

package board

import (
	"strconv"
	"strings"

	"github.com/zintix-labs/pegdrop/errs"
	"github.com/zintix-labs/pegdrop/sdk/fair"
)

// Encoding 為 peg map 序列化版本。雜湊前一律先轉成固定的文字格式，不依賴任何通用序列化函式庫。
type Encoding string

const (
	// EncodingV1 格式：
	//
	//	pegmap/v1\n
	//	0.422123\n
	//	0.552503,0.408786\n
	//	...
	//
	// 每列一行、列與欄皆遞增、每個值固定 6 位小數、以 "," 分隔、每行以 "\n" 結尾，無其他空白。
	EncodingV1 Encoding = "pegmap/v1"

	// EncodingLegacyJSON 以通用 JSON 序列化的版面輸出同一張 peg map：
	//
	//	{"0":[{"leftBias":0.422123}],"1":[{"leftBias":0.552503},{"leftBias":0.408786}],...}
	//
	// 數值使用最短可還原的十進位表示（0.46878 而非 0.468780）。
	// 只改變序列化位元組；peg map 本身仍由邏輯右移的 xorshift32 產生，
	// 以算術右移產生的舊紀錄（狀態最高位為 1 後即分歧）無法以此重現。
	EncodingLegacyJSON Encoding = "legacy-json"

	// DefaultEncoding 為新局使用的編碼。
	DefaultEncoding = EncodingV1
)

// ParseEncoding 解析編碼名稱；空字串視為 DefaultEncoding。
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(strings.TrimSpace(s)) {
	case "":
		return DefaultEncoding, nil
	case EncodingV1:
		return EncodingV1, nil
	case EncodingLegacyJSON:
		return EncodingLegacyJSON, nil
	default:
		return "", errs.InvalidInput("unknown peg map encoding %q", s)
	}
}

// Canonical 回傳 EncodingV1 的正規化文字。
func (pm PegMap) Canonical() string {
	var sb strings.Builder
	sb.Grow(len(EncodingV1) + 1 + PegCount*9)
	sb.WriteString(string(EncodingV1))
	sb.WriteByte('\n')
	buf := make([]byte, 0, 16)
	for _, row := range pm {
		for c, p := range row {
			if c > 0 {
				sb.WriteByte(',')
			}
			buf = strconv.AppendFloat(buf[:0], p.LeftBias, 'f', 6, 64)
			sb.Write(buf)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// LegacyJSON 回傳 EncodingLegacyJSON 的位元組內容。
func (pm PegMap) LegacyJSON() string {
	var sb strings.Builder
	buf := make([]byte, 0, 24)
	sb.WriteByte('{')
	for r, row := range pm {
		if r > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('"')
		sb.WriteString(strconv.Itoa(r))
		sb.WriteString(`":[`)
		for c, p := range row {
			if c > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(`{"leftBias":`)
			buf = strconv.AppendFloat(buf[:0], p.LeftBias, 'f', -1, 64)
			sb.Write(buf)
			sb.WriteByte('}')
		}
		sb.WriteByte(']')
	}
	sb.WriteByte('}')
	return sb.String()
}

// Encode 依指定版本序列化。
func (pm PegMap) Encode(enc Encoding) (string, error) {
	switch enc {
	case EncodingV1:
		return pm.Canonical(), nil
	case EncodingLegacyJSON:
		return pm.LegacyJSON(), nil
	default:
		return "", errs.InvalidInput("unknown peg map encoding %q", enc)
	}
}

// Hash 回傳 SHA256Hex(Canonical())。
func (pm PegMap) Hash() string {
	return fair.SHA256Hex(pm.Canonical())
}

// HashWith 以指定版本序列化後再雜湊。
func (pm PegMap) HashWith(enc Encoding) (string, error) {
	text, err := pm.Encode(enc)
	if err != nil {
		return "", err
	}
	return fair.SHA256Hex(text), nil
}
