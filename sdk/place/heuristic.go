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

// Package place 決定「掉落方塊」要放在哪一欄、哪一個平面。
//
// 所有選擇只依賴盤面高度與 session seed，相同輸入在任何機器上產生相同結果。
package place

import (
	"fmt"

	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/sdk/buf"
	"github.com/zintix-labs/quantro/sdk/grid"
	"github.com/zintix-labs/quantro/sdk/policy"
	"github.com/zintix-labs/quantro/sdk/ptype"
	"github.com/zintix-labs/quantro/sdk/qo"
)

// Engine 放置引擎介面
type Engine interface {
	SetPseudorandom(seed uint32)
	Candidates(g *grid.Grid, kind Kind) []Candidate
	Drop(g *grid.Grid, kinds []Kind, minRow int, out *buf.ChunkList) (int, error)
}

// Settings 一次 Drop 的數量上下限與可用方向碼
type Settings struct {
	// MinBlocks 分類器找不到候選時，以偽亂數補足到這個數量
	MinBlocks int
	// MaxBlocks 一次最多放幾個
	MaxBlocks int
	// PlanesInteract 兩平面是否互相影響（有效高度取較高者）
	PlanesInteract bool
	// Orientations 每個平面可用的方向碼；空的平面使用預設（S0 / S1）
	Orientations [grid.Planes][]qo.Code
}

var defaultOrientations = [grid.Planes][]qo.Code{{qo.S0}, {qo.S1}}

// 偽亂數 salt：分類器種類本身佔用 [0, KindCount)
const (
	saltFallbackCol = KindCount + iota
	saltFallbackPlane
	saltOrientation
)

// Heuristic 以欄位分類器決定掉落位置。非 goroutine-safe，每個 Board 持有一個。
type Heuristic struct {
	pol  policy.Policy
	rows int
	cols int
	set  Settings

	pseudo  Pseudo
	cls     classifier
	heights [grid.Planes][]int
	cands   []Candidate

	// stage 尚未送出的兩列：0 是下面那列，1 是目前列
	stage [2][grid.Planes][]qo.Code
}

var _ Engine = (*Heuristic)(nil)

// New 建立放置引擎；pol 為 nil 或設定不合法時 panic
func New(pol policy.Policy, rows int, cols int, set Settings) *Heuristic {
	if pol == nil {
		panic(errs.NewFatal("placement: nil policy"))
	}
	if rows < 0 || cols < 0 {
		panic(errs.NewFatal(fmt.Sprintf("placement: invalid dims %dx%d", rows, cols)))
	}
	if set.MinBlocks < 0 || set.MaxBlocks < set.MinBlocks {
		panic(errs.NewFatal(fmt.Sprintf("placement: invalid block range [%d,%d]", set.MinBlocks, set.MaxBlocks)))
	}
	for qp := 0; qp < grid.Planes; qp++ {
		if len(set.Orientations[qp]) == 0 {
			set.Orientations[qp] = defaultOrientations[qp]
		}
		for _, c := range set.Orientations[qp] {
			if c == qo.NO || !c.Valid() {
				panic(errs.NewFatal(fmt.Sprintf("placement: invalid orientation %v", c)))
			}
		}
	}
	h := &Heuristic{pol: pol, rows: rows, cols: cols, set: set}
	for qp := 0; qp < grid.Planes; qp++ {
		h.heights[qp] = make([]int, cols)
		h.stage[0][qp] = make([]qo.Code, cols)
		h.stage[1][qp] = make([]qo.Code, cols)
	}
	h.cls.load(&h.heights, set.PlanesInteract)
	return h
}

// SetPseudorandom 設定 session seed；Drop 之前必須呼叫
func (h *Heuristic) SetPseudorandom(seed uint32) { h.pseudo.Set(seed) }

func (h *Heuristic) Settings() Settings { return h.set }

// Candidates 回傳 g 上某種分類器的所有候選。
// 回傳的 slice 屬於引擎內部，下一次呼叫前有效。
func (h *Heuristic) Candidates(g *grid.Grid, kind Kind) []Candidate {
	h.loadHeights(g)
	h.cands = h.cls.classify(kind, h.cands[:0])
	return h.cands
}

func (h *Heuristic) loadHeights(g *grid.Grid) {
	for qp := 0; qp < grid.Planes; qp++ {
		h.heights[qp] = g.Heights(qp, h.heights[qp])
	}
	h.cls.load(&h.heights, h.set.PlanesInteract)
}

// Drop 依 kinds 的順序挑選位置，把掉落方塊以 1x1 Chunk append 到 out。
//
// 方塊送出的列從 max(minRow, 最高欄) 開始；同一列放不下（位置已被佔用、或與暫存中的鄰居相連）
// 就往上一列，超出盤面頂端即停止。回傳實際放置數量。
func (h *Heuristic) Drop(g *grid.Grid, kinds []Kind, minRow int, out *buf.ChunkList) (int, error) {
	if !h.pseudo.Seeded() {
		panic(errs.WrapWithExtra(errs.ErrNotFinalized, "placement", "pseudorandom seed not set"))
	}
	if g.Rows() != h.rows || g.Cols() != h.cols {
		return 0, errs.WrapWithExtra(errs.ErrOutOfRange, "drop blocks",
			fmt.Sprintf("grid %dx%d, engine %dx%d", g.Rows(), g.Cols(), h.rows, h.cols))
	}
	if h.cols == 0 || h.rows == 0 {
		return 0, nil
	}
	h.loadHeights(g)
	h.clearStage()

	emitRow := minRow
	for qp := 0; qp < grid.Planes; qp++ {
		for _, v := range h.heights[qp] {
			emitRow = max(emitRow, v)
		}
	}

	placed := 0
	for i := 0; i < h.set.MaxBlocks; i++ {
		col, qp, ok := h.choose(kinds, i)
		if !ok {
			if placed >= h.set.MinBlocks {
				break
			}
			col = h.pseudo.Pick(&h.heights, i, saltFallbackCol, h.cols)
			qp = h.pseudo.Pick(&h.heights, i, saltFallbackPlane, grid.Planes)
		}
		allowed := h.set.Orientations[qp]
		code := allowed[h.pseudo.Pick(&h.heights, i, saltOrientation+qp, len(allowed))]

		for emitRow < h.rows && !h.fits(col, qp, code) {
			h.shift()
			emitRow++
		}
		if emitRow >= h.rows {
			break
		}
		h.put(col, qp, code)

		ch := out.Next(1, 1)
		for q := 0; q < grid.Planes; q++ {
			if q == qp || code.Spans() {
				ch.Piece.Blocks.Set(q, 0, 0, code)
			}
		}
		ch.Piece.Type = ptype.Drop(code)
		ch.Offset = grid.Offset{X: col, Y: emitRow}

		h.bump(col, qp, code)
		placed++
	}
	return placed, nil
}

func (h *Heuristic) DropBlocksInValleys(g *grid.Grid, minRow int, out *buf.ChunkList) (int, error) {
	return h.Drop(g, []Kind{Valley}, minRow, out)
}

func (h *Heuristic) DropBlocksOnJunctions(g *grid.Grid, minRow int, out *buf.ChunkList) (int, error) {
	return h.Drop(g, []Kind{Junction}, minRow, out)
}

func (h *Heuristic) DropBlocksOnPeaks(g *grid.Grid, minRow int, out *buf.ChunkList) (int, error) {
	return h.Drop(g, []Kind{Peak}, minRow, out)
}

func (h *Heuristic) DropBlocksOnCorners(g *grid.Grid, minRow int, out *buf.ChunkList) (int, error) {
	return h.Drop(g, []Kind{Corner}, minRow, out)
}

// choose 第一個有候選的分類器中，取最高優先權；平手以偽亂數挑一個
func (h *Heuristic) choose(kinds []Kind, ordinal int) (int, int, bool) {
	for _, k := range kinds {
		h.cands = h.cls.classify(k, h.cands[:0])
		if len(h.cands) == 0 {
			continue
		}
		best, ties := h.cands[0].Priority, 0
		for _, c := range h.cands {
			switch {
			case c.Priority > best:
				best, ties = c.Priority, 1
			case c.Priority == best:
				ties++
			}
		}
		pick := h.pseudo.Pick(&h.heights, ordinal, int(k), ties)
		for _, c := range h.cands {
			if c.Priority != best {
				continue
			}
			if pick == 0 {
				return c.Col, c.Plane, true
			}
			pick--
		}
	}
	return 0, 0, false
}

// fits 目前列的 (col, qp) 是否可放 code：位置空著，且與暫存中的左右、下方、同格另一平面都分離
func (h *Heuristic) fits(col int, qp int, code qo.Code) bool {
	cur, below := &h.stage[1], &h.stage[0]
	for q := 0; q < grid.Planes; q++ {
		if q != qp && !code.Spans() {
			// 同格另一平面
			if t := cur[q][col]; t != qo.NO && !h.pol.SeparatesFromWhenQuantum(code, t) {
				return false
			}
			continue
		}
		if cur[q][col] != qo.NO {
			return false
		}
		if col > 0 {
			if t := cur[q][col-1]; t != qo.NO && !h.pol.SeparatesFromWhenSide(code, t) {
				return false
			}
		}
		if col+1 < h.cols {
			if t := cur[q][col+1]; t != qo.NO && !h.pol.SeparatesFromWhenSide(code, t) {
				return false
			}
		}
		if t := below[q][col]; t != qo.NO && !h.pol.SeparatesFromWhenAbove(code, t) {
			return false
		}
	}
	return true
}

func (h *Heuristic) put(col int, qp int, code qo.Code) {
	for q := 0; q < grid.Planes; q++ {
		if q == qp || code.Spans() {
			h.stage[1][q][col] = code
		}
	}
}

// shift 目前列變成下面那列，目前列清空
func (h *Heuristic) shift() {
	h.stage[0], h.stage[1] = h.stage[1], h.stage[0]
	for q := 0; q < grid.Planes; q++ {
		clear(h.stage[1][q])
	}
}

func (h *Heuristic) clearStage() {
	for s := range h.stage {
		for q := 0; q < grid.Planes; q++ {
			clear(h.stage[s][q])
		}
	}
}

// bump 預估方塊落地後的高度：跨平面或平面互相影響時落在兩者較高處
func (h *Heuristic) bump(col int, qp int, code qo.Code) {
	d := max(h.heights[0][col], h.heights[1][col])
	switch {
	case code.Spans():
		for q := 0; q < grid.Planes; q++ {
			h.heights[q][col] = d + 1
		}
	case h.set.PlanesInteract:
		h.heights[qp][col] = d + 1
	default:
		h.heights[qp][col]++
	}
}
