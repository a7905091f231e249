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

package lock

import (
	"fmt"

	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/sdk/buf"
	"github.com/zintix-labs/quantro/sdk/grid"
	"github.com/zintix-labs/quantro/sdk/ptype"
	"github.com/zintix-labs/quantro/sdk/qo"
)

// Unlock 整盤掃描。
//
//  1. 接地：從地板列所有非空格、以及規則上永不與支撐分離的格子出發 flood，標記接地集合。
//  2. 由下往上掃描 row >= 1 的未標記非空格，每個都作為新 component 的種子。
//  3. component 的格子搬進新的 chunk（grid 上歸零），收縮邊界，並把位移寫進 chunk 的 Offset。
//
// 回傳本次新增的 chunk 數；out.Len() 是更新後的總數。
func (e *FloodEngine) Unlock(g *grid.Grid, out *buf.ChunkList) (int, error) {
	e.mustFinalized()
	if err := e.checkDims(g); err != nil {
		return 0, err
	}
	b := &e.fb
	b.resetSizes(g.Rows(), g.Cols())
	b.nextEpoch()

	w := fullWindow(g)
	rows, cols, size := g.Rows(), g.Cols(), g.Size()

	// 1. 接地集合
	b.comp = b.comp[:0]
	if e.restFloor && rows > 0 {
		for qp := 0; qp < grid.Planes; qp++ {
			plane := g.Plane(qp)
			for c := 0; c < cols; c++ {
				idx := qp*size + c
				if plane[c] != qo.NO && !b.marked(idx) {
					e.flood(g, idx, w)
				}
			}
		}
	}
	for qp := 0; qp < grid.Planes; qp++ {
		plane := g.Plane(qp)
		for pos, v := range plane {
			idx := qp*size + pos
			if v != qo.NO && !b.marked(idx) && e.pol.NeverSeparatesFromSupport(v) {
				e.flood(g, idx, w)
			}
		}
	}

	// 2. 其餘未標記的方塊都失去支撐
	start := out.Len()
	first := 1
	if !e.restFloor {
		first = 0
	}
	for r := first; r < rows; r++ {
		for c := 0; c < cols; c++ {
			pos := r*cols + c
			for qp := 0; qp < grid.Planes; qp++ {
				idx := qp*size + pos
				if g.Plane(qp)[pos] == qo.NO || b.marked(idx) {
					continue
				}
				b.comp = b.comp[:0]
				e.flood(g, idx, w)
				ch := e.extract(g, out, true)
				ch.Piece.SetBounds()
				ch.Offset = ch.Piece.TightenBounds()
			}
		}
	}
	return out.Len() - start, nil
}

// UnlockPiece 把 piece（放在 off）拆成連通的子塊。
//
// 與 Unlock 相同的 flood，但只在 piece 自己的陣列與邊界內進行，沒有接地豁免，
// 也不修改 piece（複製而非搬移）。chunk 的 Offset = off + 邊界收縮位移。
func (e *FloodEngine) UnlockPiece(p *grid.Piece, off grid.Offset, out *buf.ChunkList) (int, error) {
	e.mustFinalized()
	if p.Blocks == nil {
		return 0, errs.WrapWithExtra(errs.ErrOutOfRange, "unlock piece", "piece has no blocks")
	}
	g := p.Blocks
	if p.LL.X < 0 || p.LL.Y < 0 || p.UR.X > g.Cols() || p.UR.Y > g.Rows() {
		return 0, errs.WrapWithExtra(errs.ErrOutOfRange, "unlock piece", "bounds outside block array")
	}
	b := &e.fb
	b.resetSizes(g.Rows(), g.Cols())
	b.nextEpoch()

	w := window{rLo: p.LL.Y, rHi: p.UR.Y, cLo: p.LL.X, cHi: p.UR.X}
	cols, size := g.Cols(), g.Size()
	total := p.NumBlocks()

	start := out.Len()
	for r := w.rLo; r < w.rHi; r++ {
		for c := w.cLo; c < w.cHi; c++ {
			pos := r*cols + c
			for qp := 0; qp < grid.Planes; qp++ {
				idx := qp*size + pos
				if g.Plane(qp)[pos] == qo.NO || b.marked(idx) {
					continue
				}
				b.comp = b.comp[:0]
				e.flood(g, idx, w)
				whole := len(b.comp) == total
				ch := e.extract(g, out, false)
				if whole && e.pol.MergeIntoKeepsQOrientation() {
					ch.Piece.Type = p.Type
					ch.Piece.Rotation = p.Rotation
					ch.Piece.DefaultRotation = p.DefaultRotation
				}
				ch.Piece.SetBoundsTo(p.LL, p.UR)
				ch.Offset = off.Add(ch.Piece.TightenBounds())
			}
		}
	}
	return out.Len() - start, nil
}

// UnlockColumnAbove 強制解鎖 col 欄中 row 以上（不含 row）的所有方塊，不論是否有支撐。
//
// 種子只取該欄 row 以上的格子，flood 範圍是 row 以上的所有欄，
// 橫跨該欄的方塊會連同左右相連的部分一起保持形狀成為同一個 chunk；
// 格子從 grid 搬出。row = -1 代表整欄。
func (e *FloodEngine) UnlockColumnAbove(g *grid.Grid, row int, col int, out *buf.ChunkList) (int, error) {
	e.mustFinalized()
	if err := e.checkDims(g); err != nil {
		return 0, err
	}
	if row < -1 || row >= g.Rows() || col < 0 || col >= g.Cols() {
		return 0, errs.WrapWithExtra(errs.ErrOutOfRange, "unlock column", fmt.Sprintf("row=%d col=%d", row, col))
	}
	b := &e.fb
	b.resetSizes(g.Rows(), g.Cols())
	b.nextEpoch()

	w := window{rLo: row + 1, rHi: g.Rows(), cLo: 0, cHi: g.Cols()}
	cols, size := g.Cols(), g.Size()

	start := out.Len()
	for r := row + 1; r < g.Rows(); r++ {
		pos := r*cols + col
		for qp := 0; qp < grid.Planes; qp++ {
			idx := qp*size + pos
			if g.Plane(qp)[pos] == qo.NO || b.marked(idx) {
				continue
			}
			b.comp = b.comp[:0]
			e.flood(g, idx, w)
			ch := e.extract(g, out, true)
			ch.Piece.SetBounds()
			ch.Offset = ch.Piece.TightenBounds()
		}
	}
	return out.Len() - start, nil
}

// extract 把目前 component 複製（move 時同時從 src 歸零）到新的 chunk slot。
// chunk 的方塊陣列與 src 同尺寸、同座標系。
func (e *FloodEngine) extract(src *grid.Grid, out *buf.ChunkList, move bool) *buf.Chunk {
	comp := e.fb.comp
	if len(comp) == 0 {
		panic(errs.ErrEmptyComponent)
	}
	ch := out.Next(src.Rows(), src.Cols())
	dst := ch.Piece.Blocks
	size := src.Size()
	for _, idx := range comp {
		qp, pos := idx/size, idx%size
		sp := src.Plane(qp)
		dst.Plane(qp)[pos] = sp[pos]
		if move {
			sp[pos] = qo.NO
		}
	}
	ch.Piece.Type = e.chunkType(dst, comp, size)
	return ch
}

// chunkType 單一位置（單格或 ST 疊合）記為帶方向碼的 monomino，其餘記為碎塊
func (e *FloodEngine) chunkType(dst *grid.Grid, comp []int, size int) int {
	if e.fragmented {
		return ptype.Encode(ptype.Special, ptype.SpecialFragment, 0)
	}
	pos := comp[0] % size
	for _, idx := range comp[1:] {
		if idx%size != pos {
			return ptype.Encode(ptype.Special, ptype.SpecialFragment, 0)
		}
	}
	qp := comp[0] / size
	return ptype.Encode(ptype.Monomino, ptype.MonominoSingle, int(dst.Plane(qp)[pos]))
}
