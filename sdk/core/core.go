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

// Package core 模擬工具使用的亂數來源。
//
// 核心物理（lock / place）不使用這裡的亂數：放置引擎只吃 session seed，
// 這個套件負責在模擬與回放時「產生並派生」那些 seed，以及抽方塊、挑欄位。
package core

// PRNG Core 所需的亂數來源，需同時支援取樣與狀態保存/還原。
type PRNG interface {
	RAND
	Restorable
}

// Restorable 可快照與還原的狀態。回放檢查用它確認兩個 Board 的亂數流同步。
type Restorable interface {
	Snapshot() ([]byte, error)
	Restore([]byte) error
}

// RAND 取樣能力。
type RAND interface {
	// Uint64 回傳非負 uint64 亂數。
	Uint64() uint64
	// Float64 回傳 [0,1) 的浮點亂數。
	Float64() float64
	// UintN 回傳 [0,max) 的 uint 亂數，若 max == 0 回傳 0。
	UintN(uint) uint
	// IntN 回傳 [0,max) 的 int 亂數，若 max <= 0 回傳 -1。
	IntN(int) int
}

// PRNGFactory 以 seed 建立 PRNG。
//
// 相同實作、相同 seed 必須產生相同序列；並行模擬的每台 Machine 都由 Simulator 的 seed 依序派生，
// 所以這裡永遠不需要「不帶 seed」的建構方式。
type PRNGFactory interface {
	New(int64) PRNG
}

// DefaultPRNG 預設工廠（PCG64）
type DefaultPRNG struct{}

func (d *DefaultPRNG) New(seed int64) PRNG {
	return newPCG64WithSeed(seed)
}

func Default() *DefaultPRNG {
	return &DefaultPRNG{}
}

// Core 封裝 PRNG，並提供常用取樣與工具方法。
type Core struct {
	PRNG
}

// New 允許使用外部自實現的 PRNG 建立 Core。
func New(rng PRNG) *Core {
	return &Core{rng}
}

// Session 產生一個放置引擎用的 session seed
func (c *Core) Session() uint32 {
	return uint32(c.Uint64() >> 32)
}

// SpawnColumn 寬度 width 的方塊在 cols 欄盤面上的隨機出生欄（左緣）；放不下回傳 -1
func (c *Core) SpawnColumn(cols int, width int) int {
	if width <= 0 || width > cols {
		return -1
	}
	return c.IntN(cols - width + 1)
}
