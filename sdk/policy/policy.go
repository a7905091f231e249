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

// Package policy 定義方塊之間的互動規則（Interaction Policy）。
//
// 鎖定引擎與放置引擎只透過 Policy 介面詢問兩兩關係，本身不含任何遊戲規則。
// Policy 的實作必須是純函式、可被多個 goroutine 同時呼叫（不持有可變狀態）。
package policy

import (
	"github.com/zintix-labs/quantro/sdk/grid"
	"github.com/zintix-labs/quantro/sdk/qo"
)

// Policy 方塊互動規則。
//
// Separates* 系列的 (a, b) 代表「a 相對於 b」：SeparatesFromWhenAbove(a, b) 詢問 a 位於 b 正上方時是否分離。
// 任一方為 qo.NO 時一律視為分離。
type Policy interface {
	// LocksToFloor piece 的 (r,c) 落在地板列時是否鎖定
	LocksToFloor(p *grid.Grid, r, c int) bool
	// LocksToFromAbove piece 的 (pr,pc) 位於 grid (gr,gc) 正上方時是否鎖定
	LocksToFromAbove(p *grid.Grid, pr, pc int, g *grid.Grid, gr, gc int) bool
	// MergeInto 將 src 的 (sr,sc) 合併進 dst 的 (dr,dc)；無法共存時回傳 errs.ErrMergeConflict
	MergeInto(src *grid.Grid, sr, sc int, dst *grid.Grid, dr, dc int) error
	// MergeIntoKeepsQOrientation 合併是否原樣保留方向碼
	MergeIntoKeepsQOrientation() bool

	SeparatesFromWhenSide(a, b qo.Code) bool
	SeparatesFromWhenAbove(a, b qo.Code) bool
	SeparatesFromWhenBelow(a, b qo.Code) bool
	// SeparatesFromWhenQuantum 同一格、不同平面
	SeparatesFromWhenQuantum(a, b qo.Code) bool
	// SeparatesFromAllSides 此方向碼是否與所有方向分離（不穩定方塊）
	SeparatesFromAllSides(code qo.Code) bool
	// OccludedBy 向上 flood 的遮蔽判斷；pair 是來源位置兩個平面中已標記的方向碼（未標記為 NO）
	OccludedBy(code qo.Code, pair [grid.Planes]qo.Code) bool
	// NeverSeparatesFromSupport 此方向碼是否永遠視為已支撐（不需接地即可靜止）
	NeverSeparatesFromSupport(code qo.Code) bool
}
