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

// go run ./scripts [test|test-all|test-detail|replay]
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./scripts [test|test-all|test-detail|replay]")
		os.Exit(1)
	}
	selectTask(os.Args[1])
}

func selectTask(task string) {
	var ok bool
	switch task {
	case "test":
		ok = runFiltered("running tests", true, "test", "./...", "-cover", "-count=1")
	case "test-all":
		ok = runFiltered("running tests (all with coverage)", false, "test", "./...", "-cover")
	case "test-detail":
		ok = runFiltered("running tests (detail)", false, "test", "./...", "-v", "-count=1")
	case "replay":
		ok = runReplay()
	default:
		warnf("Unknown task: %s", task)
		os.Exit(1)
	}
	if !ok {
		failf("\n%s finished with errors", task)
		os.Exit(1)
	}
}

// runFiltered 清 test cache 後執行 go <args>；quiet 時只印 ok / FAIL / build failed 的行
func runFiltered(title string, quiet bool, args ...string) bool {
	okf("%s", title)
	if err := exec.Command("go", "clean", "-testcache").Run(); err != nil {
		failf("%v", err)
	}

	cmd := exec.Command("go", args...)
	out, err := cmd.StdoutPipe()
	if err != nil {
		failf("%v", err)
		return false
	}
	// 編譯錯誤在 stderr，一起讀
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		failf("Error starting go %s: %v", args[0], err)
		return false
	}

	sc := bufio.NewScanner(out)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.Contains(line, "[no test files]"):
		case strings.HasPrefix(line, "ok"):
			okf("%s", line)
		case strings.HasPrefix(line, "FAIL"),
			strings.Contains(line, "build failed"),
			strings.Contains(line, "setup failed"):
			failf("%s", line)
		case !quiet:
			fmt.Println(line)
		}
	}
	return cmd.Wait() == nil
}

// runReplay 對每個 demo 模式跑一次決定性回放
func runReplay() bool {
	okf("running determinism replay")
	ok := true
	for _, mode := range []string{"1", "2"} {
		cmd := exec.Command("go", "run", "./cmd/sim", "-mode", mode, "-replay", "20000", "-seed", "7")
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			failf("mode %s: %v", mode, err)
			ok = false
		}
	}
	return ok
}
