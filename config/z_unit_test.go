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

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zintix-labs/pegdrop/errs"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "pegdrop.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":5808" || cfg.Storage.Driver != DriverMemory || cfg.ListLimit != DefaultListLimit {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Encoding != "pegmap/v1" || cfg.LogMode != "dev" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	p := writeFile(t, strings.Join([]string{
		"addr: \":9000\"",
		"log_mode: PROD",
		"storage:",
		"  driver: sqlite",
		"  path: /tmp/rounds.db",
		"list_limit: 50",
		"cors_origins: [\"https://a.example\"]",
	}, "\n"))

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.LogMode != "prod" || cfg.Storage.Driver != DriverSQLite || cfg.ListLimit != 50 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "https://a.example" {
		t.Fatalf("cors origins: %v", cfg.CORSOrigins)
	}

	// 環境變數覆蓋檔案，未設定者保留檔案值
	t.Setenv("PEGDROP_ADDR", ":7000")
	t.Setenv("PEGDROP_STORAGE_PATH", "/var/lib/pegdrop.db")
	t.Setenv("PEGDROP_CORS_ORIGINS", "https://b.example, https://c.example")
	cfg, err = Load(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":7000" || cfg.Storage.Path != "/var/lib/pegdrop.db" || cfg.ListLimit != 50 {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://c.example" {
		t.Fatalf("cors origins from env: %v", cfg.CORSOrigins)
	}
}

func TestLoadRejectsUnknownField(t *testing.T) {
	p := writeFile(t, "addr: \":1\"\nunknown: 1\n")
	if _, err := Load(p); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		mod  func(c *Config)
	}{
		{"empty addr", func(c *Config) { c.Addr = " " }},
		{"bad log mode", func(c *Config) { c.LogMode = "loud" }},
		{"bad driver", func(c *Config) { c.Storage.Driver = "postgres" }},
		{"sqlite without path", func(c *Config) { c.Storage.Driver = DriverSQLite }},
		{"zero limit", func(c *Config) { c.ListLimit = 0 }},
		{"limit too big", func(c *Config) { c.ListLimit = MaxListLimit + 1 }},
		{"bad encoding", func(c *Config) { c.Encoding = "pegmap/v0" }},
	}
	for _, tc := range cases {
		cfg := Default()
		tc.mod(&cfg)
		if err := cfg.Validate(); !errors.Is(err, errs.ErrInvalidInput) {
			t.Fatalf("%s: expected invalid input, got %v", tc.name, err)
		}
	}

	cfg := Default()
	cfg.Encoding = ""
	cfg.CORSOrigins = []string{" ", "https://x.example "}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Encoding != "pegmap/v1" || len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "https://x.example" {
		t.Fatalf("normalization failed: %+v", cfg)
	}
}
