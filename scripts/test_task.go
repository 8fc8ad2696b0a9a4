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

package main

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// 公開的參考向量：任何實作以這組輸入都應得到相同的 commit / combinedSeed / pegMapHash / bin。
var vectorArgs = []string{
	"run", "./cmd/verify",
	"-server-seed", "b2a5f3f32a4d9c6ee7a8c1d33456677890abcdeffedcba0987654321ffeeddcc",
	"-client-seed", "candidate-hello",
	"-nonce", "42",
	"-column", "6",
	"-commit", "bb9acdc67f3f18f3345236a01f0e5072596657a9005c7d8a22cff061451a6b34",
	"-combined", "e1dddf77de27d395ea2be2ed49aa2a59bd6bf12ee8d350c16c008abd406c07e0",
	"-hash", "7a02556592bab45c9ee502695ff5ce0a012091500f9304204bf594c5e56aad47",
	"-bin", "6",
	"-multiplier", "0.3",
}

func cleanCache() error {
	c := exec.Command("go", "clean", "-testcache")
	c.Stdout, c.Stderr = os.Stdout, os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("go clean -testcache failed: %w", err)
	}
	return nil
}

// streamGo 執行 go 子命令並逐行交給 filter 上色；filter 回傳 false 的行不印。
func streamGo(filter func(line string) bool, args ...string) error {
	cmd := exec.Command("go", args...)
	out, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	// 2>&1：編譯錯誤通常在 stderr
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start go %s: %w", args[0], err)
	}
	sc := bufio.NewScanner(out)
	for sc.Scan() {
		line := sc.Text()
		if !filter(line) {
			continue
		}
		switch {
		case strings.HasPrefix(line, "ok"):
			PrintGreen(line)
		case strings.HasPrefix(line, "FAIL"), strings.Contains(line, "build failed"), strings.Contains(line, "setup failed"):
			PrintRed(line)
		default:
			fmt.Println(line)
		}
	}
	return cmd.Wait()
}

// runTest 只印 ok / FAIL 摘要行。
func runTest() error {
	PrintGreen("running tests")
	if err := cleanCache(); err != nil {
		PrintRed(err.Error())
	}
	err := streamGo(func(line string) bool {
		return strings.HasPrefix(line, "ok") || strings.HasPrefix(line, "FAIL") ||
			strings.Contains(line, "build failed") || strings.Contains(line, "setup failed")
	}, "test", "./...", "-cover", "-count=1")
	if err != nil {
		return fmt.Errorf("tests finished with errors")
	}
	return nil
}

// runTestAll 清 cache 後跑全部套件並顯示 cover。
func runTestAll() error {
	PrintGreen("running tests (all with coverage)")
	if err := cleanCache(); err != nil {
		return err
	}
	c := exec.Command("go", "test", "./...", "-cover")
	c.Stdout, c.Stderr = os.Stdout, os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("tests (with coverage) finished with errors")
	}
	return nil
}

// runTestDetail verbose 測試，略過 "[no test files]"。
func runTestDetail() error {
	PrintGreen("running tests (detail)")
	if err := cleanCache(); err != nil {
		return err
	}
	err := streamGo(func(line string) bool {
		return !strings.Contains(line, "[no test files]")
	}, "test", "./...", "-v", "-count=1")
	if err != nil {
		return fmt.Errorf("tests (detail) finished with errors")
	}
	return nil
}

// runVectors 以 cmd/verify 比對參考向量，exit code 非 0 即失敗。
func runVectors() error {
	PrintGreen("checking reference vectors")
	c := exec.Command("go", vectorArgs...)
	c.Stdout, c.Stderr = os.Stdout, os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("reference vector mismatch: %w", err)
	}
	PrintGreen("reference vectors ok")
	return nil
}
