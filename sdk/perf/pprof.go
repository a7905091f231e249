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

// Package perf 把一段執行包上 pprof，輸出到 build/profiling。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/zintix-labs/quantro/errs"
)

const pprofDir = "build/profiling" // pprof檔案寫入路徑

// RunPProf 依 mode 決定 profiling 種類："" 不做 profiling，cpu / heap / allocs。
// exe 的錯誤原樣回傳；profiling 本身失敗回傳 Fatal。
func RunPProf(exe func() error, mode string) error {
	switch mode {
	case "":
		return exe()
	case "cpu":
		return PProfCPU(exe)
	case "heap":
		return afterRun(exe, "heap.pprof", func(f *os.File) error {
			// 讓快照貼近 live objects
			runtime.GC()
			return pprof.WriteHeapProfile(f)
		})
	case "allocs":
		return afterRun(exe, "allocs.pprof", func(f *os.File) error {
			return pprof.Lookup("allocs").WriteTo(f, 0)
		})
	}
	return errs.Warnf("unknown pprof mode %q (cpu|heap|allocs)", mode)
}

// PProfCPU 執行期間開 CPU profiling；檔案也可以拿來做 PGO 的 default.pgo。
//
// Usage like:
//
//	go run ./cmd/sim -p cpu
func PProfCPU(exe func() error) error {
	f, err := create("cpu.pprof")
	if err != nil {
		return err
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return errs.Wrap(err, "start cpu profile")
	}
	defer pprof.StopCPUProfile()
	return exe()
}

// afterRun exe 結束後寫一次 profile（heap / allocs 是累積值，不需要包住執行期間）
func afterRun(exe func() error, name string, write func(f *os.File) error) error {
	if err := exe(); err != nil {
		return err
	}
	f, err := create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := write(f); err != nil {
		return errs.Wrap(err, "write "+name)
	}
	return nil
}

func create(name string) (*os.File, error) {
	if err := os.MkdirAll(pprofDir, 0o755); err != nil {
		return nil, errs.Wrap(err, "create pprof dir")
	}
	f, err := os.Create(filepath.Join(pprofDir, name))
	if err != nil {
		return nil, errs.Wrap(err, "create "+name)
	}
	return f, nil
}
