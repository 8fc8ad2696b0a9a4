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

// Package config 載入服務設定：預設值 → YAML 檔（可選）→ 環境變數 → 驗證。
package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/zintix-labs/pegdrop/errs"
	"github.com/zintix-labs/pegdrop/sdk/board"
	"gopkg.in/yaml.v3"
)

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"

	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Config 為 cmd/svr 的完整設定。
type Config struct {
	Addr        string   `yaml:"addr"         env:"PEGDROP_ADDR"`
	LogMode     string   `yaml:"log_mode"     env:"PEGDROP_LOG_MODE"`
	Encoding    string   `yaml:"encoding"     env:"PEGDROP_ENCODING"`
	Storage     Storage  `yaml:"storage"`
	ListLimit   int      `yaml:"list_limit"   env:"PEGDROP_LIST_LIMIT"`
	CORSOrigins []string `yaml:"cors_origins" env:"PEGDROP_CORS_ORIGINS" envSeparator:","`
}

// Storage 選擇回合儲存後端。
type Storage struct {
	Driver string `yaml:"driver" env:"PEGDROP_STORAGE_DRIVER"`
	Path   string `yaml:"path"   env:"PEGDROP_STORAGE_PATH"`
}

// Default 回傳預設設定：記憶體儲存、開發模式 log、埠 5808。
func Default() Config {
	return Config{
		Addr:      ":5808",
		LogMode:   "dev",
		Encoding:  "pegmap/v1",
		Storage:   Storage{Driver: DriverMemory},
		ListLimit: DefaultListLimit,
	}
}

// Load 依序套用預設值、path 指向的 YAML 檔（path 為空則略過）與環境變數，最後驗證。
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errs.Wrap(err, "read config file")
		}
		if err := Decode(bytes.NewReader(raw), &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode 以 YAML 覆蓋 cfg；未知欄位視為錯誤。
func Decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return errs.InvalidInput("decode config: %v", err)
	}
	return nil
}

// ParseEnv 以環境變數覆蓋已設定的欄位；未設定的變數保留原值。
func ParseEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return errs.InvalidInput("parse env: %v", err)
	}
	return nil
}

// Validate 檢查設定並正規化大小寫與空白。
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errs.InvalidInput("addr is required")
	}
	c.LogMode = strings.ToLower(strings.TrimSpace(c.LogMode))
	switch c.LogMode {
	case "dev", "prod", "silence":
	default:
		return errs.InvalidInput("log_mode must be dev|prod|silence, got %q", c.LogMode)
	}

	enc, err := board.ParseEncoding(c.Encoding)
	if err != nil {
		return err
	}
	c.Encoding = string(enc)

	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return errs.InvalidInput("storage.path is required for sqlite")
		}
	default:
		return errs.InvalidInput("storage.driver must be memory|sqlite, got %q", c.Storage.Driver)
	}

	if c.ListLimit < 1 || c.ListLimit > MaxListLimit {
		return errs.InvalidInput("list_limit must be 1-%d, got %d", MaxListLimit, c.ListLimit)
	}

	origins := c.CORSOrigins[:0]
	for _, o := range c.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.CORSOrigins = origins
	return nil
}
