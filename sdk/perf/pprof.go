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

// Package perf 把一段工作包進 pprof，給 cmd/sim 這類長時間的批次指令使用。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/zintix-labs/pegdrop/errs"
)

// DefaultDir 為 pprof 檔案預設寫入路徑
const DefaultDir = "build/profiling"

// Mode 為支援的 profiling 種類
type Mode string

const (
	ModeNone   Mode = ""
	ModeCPU    Mode = "cpu"
	ModeHeap   Mode = "heap"
	ModeAllocs Mode = "allocs"
)

// ParseMode 解析 -p 旗標。
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeNone, ModeCPU, ModeHeap, ModeAllocs:
		return m, nil
	default:
		return ModeNone, errs.InvalidInput("unknown pprof mode %q (want '', cpu, heap, allocs)", s)
	}
}

// RunPProf 依 mode 執行 exe 並把 profile 寫到 dir；dir 為空時使用 DefaultDir。
// exe 的錯誤優先回傳。
func RunPProf(exe func() error, mode Mode, dir string) error {
	if mode == ModeNone {
		return exe()
	}
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrap(err, "create pprof dir")
	}
	switch mode {
	case ModeCPU:
		return PProfCPU(exe, dir)
	case ModeHeap:
		return PProfHeap(exe, dir)
	case ModeAllocs:
		return PProfAllocs(exe, dir)
	default:
		return exe()
	}
}

// PProfCPU 對 exe 做 CPU profiling，輸出 cpu.pprof。
//
// 可以作性能分析，也可以拿來做構建時給pgo的優化blueprint
func PProfCPU(exe func() error, dir string) error {
	f, err := os.Create(filepath.Join(dir, "cpu.pprof"))
	if err != nil {
		return errs.Wrap(err, "create cpu.pprof")
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return errs.Wrap(err, "start cpu profile")
	}
	defer pprof.StopCPUProfile()

	return exe()
}

// PProfHeap 在 exe() 執行完後寫出一次 Heap Snapshot（in-use memory）。
// 寫出前先 runtime.GC()，讓 live objects 視圖準確。
func PProfHeap(exe func() error, dir string) error {
	runErr := exe()
	runtime.GC()
	if err := writeProfile(filepath.Join(dir, "heap.pprof"), "heap"); err != nil && runErr == nil {
		return err
	}
	return runErr
}

// PProfAllocs 在 exe() 後寫出累積配置 (allocs) Profile，
// 需要搭配 -alloc_space / -alloc_objects 查看。
func PProfAllocs(exe func() error, dir string) error {
	runErr := exe()
	if err := writeProfile(filepath.Join(dir, "allocs.pprof"), "allocs"); err != nil && runErr == nil {
		return err
	}
	return runErr
}

func writeProfile(path, name string) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(err, "create "+filepath.Base(path))
	}
	defer f.Close()
	prof := pprof.Lookup(name)
	if prof == nil {
		return errs.Fatalf("no %s profile", name)
	}
	if err := prof.WriteTo(f, 0); err != nil {
		return errs.Wrap(err, "write "+name+" profile")
	}
	return nil
}
