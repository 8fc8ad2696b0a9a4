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

package errs

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestSentinelMatchesByCode(t *testing.T) {
	err := InvalidSeed("seed too short: %d", 3)
	if !errors.Is(err, ErrInvalidSeed) {
		t.Fatalf("expected ErrInvalidSeed match: %v", err)
	}
	if errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unexpected ErrInvalidInput match")
	}
	wrapped := Wrap(err, "run game")
	if !errors.Is(wrapped, ErrInvalidSeed) {
		t.Fatalf("wrapped error lost its code")
	}
	if wrapped.ErrLv != Warn || wrapped.Code != CodeInvalidSeed {
		t.Fatalf("wrap should keep level and code, got %v %v", wrapped.ErrLv, wrapped.Code)
	}
}

func TestWrapForeignErrorIsFatal(t *testing.T) {
	w := Wrap(io.ErrUnexpectedEOF, "read")
	if w.ErrLv != Fatal || w.Code != CodeInternal {
		t.Fatalf("foreign cause should be fatal/internal, got %v %v", w.ErrLv, w.Code)
	}
	if !errors.Is(w, io.ErrUnexpectedEOF) {
		t.Fatalf("cause should unwrap")
	}
	if !strings.Contains(w.Error(), "cause:") {
		t.Fatalf("missing cause in message: %s", w.Error())
	}
}

func TestCodeOf(t *testing.T) {
	if CodeOf(nil) != CodeNone {
		t.Fatalf("nil should be CodeNone")
	}
	if CodeOf(NotFound("round %s", "x")) != CodeNotFound {
		t.Fatalf("expected not found")
	}
	if CodeOf(io.EOF) != CodeInternal {
		t.Fatalf("foreign errors are internal")
	}
	if got := NewWithExtra(Log, "m", "ctx").Error(); !strings.Contains(got, "extra: ctx") {
		t.Fatalf("missing extra: %s", got)
	}
}
