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

import "fmt"

// ANSI 顏色（Windows 10 之後的 cmd / powershell 也支援）
const (
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiRed    = "\033[31m"
	ansiReset  = "\033[0m"
)

func colorf(color string, format string, a ...any) {
	fmt.Printf("%s%s%s\n", color, fmt.Sprintf(format, a...), ansiReset)
}

func okf(format string, a ...any)   { colorf(ansiGreen, format, a...) }
func warnf(format string, a ...any) { colorf(ansiYellow, format, a...) }
func failf(format string, a ...any) { colorf(ansiRed, format, a...) }
