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

package ops

import (
	"github.com/zintix-labs/quantro/sdk/grid"
	"github.com/zintix-labs/quantro/sdk/lock"
)

// Collides piece 放在 off 時是否超出盤面左右或地板，或與 grid 同平面的方塊重疊。
// 跨平面方塊 (ST) 兩個平面都要空著；planesInteract 時任一平面有方塊即重疊。
// 超出頂端不算碰撞（新方塊從頂端外進場）。
func Collides(g *grid.Grid, p *grid.Piece, off grid.Offset, planesInteract bool) bool {
	pb := p.Blocks
	for r := p.LL.Y; r < p.UR.Y; r++ {
		for c := p.LL.X; c < p.UR.X; c++ {
			if !pb.Occupied(r, c) {
				continue
			}
			gr, gc := p.GridPos(off, r, c)
			if gr < 0 || gc < 0 || gc >= g.Cols() {
				return true
			}
			if gr >= g.Rows() {
				continue
			}
			if planesInteract {
				if g.Occupied(gr, gc) {
					return true
				}
				continue
			}
			for qp := 0; qp < grid.Planes; qp++ {
				if pb.At(qp, r, c) != 0 && g.At(qp, gr, gc) != 0 {
					return true
				}
			}
		}
	}
	return false
}

// Fall piece 從 off 往下移動，直到引擎判定應鎖定，回傳最後位置。
//
// 盤面外（頂端以上）的格子不參與判斷；最多移動 rows + piece 高度 次。
func Fall(e lock.Engine, g *grid.Grid, p *grid.Piece, off grid.Offset) grid.Offset {
	limit := g.Rows() + p.Blocks.Rows() + 1
	for i := 0; i < limit && !e.ShouldLock(g, p, off); i++ {
		off.Y--
	}
	return off
}
