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

package fair

import (
	"testing"
)

const (
	vecServerSeed = "b2a5f3f32a4d9c6ee7a8c1d33456677890abcdeffedcba0987654321ffeeddcc"
	vecNonce      = "42"
	vecClientSeed = "candidate-hello"
	vecCommit     = "bb9acdc67f3f18f3345236a01f0e5072596657a9005c7d8a22cff061451a6b34"
	vecCombined   = "e1dddf77de27d395ea2be2ed49aa2a59bd6bf12ee8d350c16c008abd406c07e0"
)

func TestHashChainVector(t *testing.T) {
	if got := CreateCommit(vecServerSeed, vecNonce); got != vecCommit {
		t.Fatalf("commit got %s want %s", got, vecCommit)
	}
	if got := CombineSeed(vecServerSeed, vecClientSeed, vecNonce); got != vecCombined {
		t.Fatalf("combined got %s want %s", got, vecCombined)
	}
}

func TestSHA256HexKnownValue(t *testing.T) {
	// sha256("") 為公開常數
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := SHA256Hex(""); got != want {
		t.Fatalf("got %s want %s", got, want)
	}
	if SHA256Hex("test1") == SHA256Hex("test2") {
		t.Fatalf("distinct inputs must differ")
	}
}

func TestCombineSeedSensitivity(t *testing.T) {
	base := CombineSeed("seed1", "seed2", "seed3")
	if base != CombineSeed("seed1", "seed2", "seed3") {
		t.Fatalf("combine must be deterministic")
	}
	variants := []string{
		CombineSeed("seed1x", "seed2", "seed3"),
		CombineSeed("seed1", "seed2x", "seed3"),
		CombineSeed("seed1", "seed2", "seed4"),
	}
	for i, v := range variants {
		if v == base {
			t.Fatalf("variant %d collided with base", i)
		}
	}
}

func TestDelimiterIsNotEscaped(t *testing.T) {
	// "a:b" + ":" + "c" 與 "a" + ":" + "b:c" 串接後相同，這是文件化的格式限制。
	if CombineSeed("a", "b", "c:d") != CombineSeed("a", "b:c", "d") {
		t.Fatalf("concatenation is expected to be non-injective")
	}
}

func TestCustomHash(t *testing.T) {
	echo := func(s string) string { return s }
	if got := CreateCommitWith(echo, "s", "n"); got != "s:n" {
		t.Fatalf("got %q", got)
	}
	if got := CombineSeedWith(echo, "s", "c", "n"); got != "s:c:n" {
		t.Fatalf("got %q", got)
	}
}

func TestRandomSeeds(t *testing.T) {
	s1, err := NewServerSeed()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s2, _ := NewServerSeed()
	if len(s1) != 64 || s1 == s2 {
		t.Fatalf("unexpected server seeds %q %q", s1, s2)
	}
	n, err := NewNonce()
	if err != nil || len(n) != 32 {
		t.Fatalf("unexpected nonce %q err=%v", n, err)
	}
}
