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

package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseMode(t *testing.T) {
	cases := map[string]LogMode{"": ModeDev, "dev": ModeDev, "PROD": ModeProd, " silence ": ModeSilence}
	for in, want := range cases {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("%q: got %v err %v", in, got, err)
		}
	}
	if _, err := ParseMode("loud"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestAsyncProdRedactsServerSeed(t *testing.T) {
	var buf bytes.Buffer
	log, ah := NewAsyncTo(&buf, 16, ModeProd)
	log.Info("round.reveal", "roundId", "r1", "serverSeed", "deadbeef")
	ah.Close()

	line := strings.TrimSpace(buf.String())
	var rec map[string]any
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		t.Fatalf("prod mode should write json: %v (%q)", err, line)
	}
	if rec["msg"] != "round.reveal" || rec["roundId"] != "r1" {
		t.Fatalf("unexpected record: %v", rec)
	}
	if rec["serverSeed"] != redacted || strings.Contains(line, "deadbeef") {
		t.Fatalf("server seed leaked: %s", line)
	}
}

func TestAsyncCloseDropsLateRecords(t *testing.T) {
	var buf bytes.Buffer
	log, ah := NewAsyncTo(&buf, 4, ModeDev)
	ah.Close()
	log.Info("late")
	if ah.Dropped() != 1 {
		t.Fatalf("dropped got %d want 1", ah.Dropped())
	}
	if buf.Len() != 0 {
		t.Fatalf("nothing should be written after close")
	}
	if !ah.Ready() {
		t.Fatalf("handler should report ready")
	}
}

func TestSilenceWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	log, ah := NewAsyncTo(&buf, 4, ModeSilence)
	log.Error("boom")
	ah.Close()
	if buf.Len() != 0 {
		t.Fatalf("silence mode wrote %q", buf.String())
	}
}
