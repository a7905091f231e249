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
	"github.com/zintix-labs/quantro/sdk/grid"
)

// ShouldLock 對每個與 grid 重疊的非空 piece 格子：
// 落在地板列詢問 LocksToFloor，否則詢問正下方的 grid 格子 LocksToFromAbove。任一成立即鎖定。
func (e *FloodEngine) ShouldLock(g *grid.Grid, p *grid.Piece, off grid.Offset) bool {
	e.mustFinalized()
	pb := p.Blocks
	for r := p.LL.Y; r < p.UR.Y; r++ {
		for c := p.LL.X; c < p.UR.X; c++ {
			if !pb.Occupied(r, c) {
				continue
			}
			gr, gc := p.GridPos(off, r, c)
			if !g.InBounds(gr, gc) {
				continue
			}
			if gr == 0 {
				if e.pol.LocksToFloor(pb, r, c) {
					return true
				}
				continue
			}
			if e.pol.LocksToFromAbove(pb, r, c, g, gr-1, gc) {
				return true
			}
		}
	}
	return false
}

// Lock 逐格交給規則合併。第一個衝突會附上 grid 座標後回傳，
// 已合併的格子不回滾，由呼叫端決定如何處理。
func (e *FloodEngine) Lock(g *grid.Grid, p *grid.Piece, off grid.Offset) error {
	e.mustFinalized()
	pb := p.Blocks
	for r := p.LL.Y; r < p.UR.Y; r++ {
		for c := p.LL.X; c < p.UR.X; c++ {
			if !pb.Occupied(r, c) {
				continue
			}
			gr, gc := p.GridPos(off, r, c)
			if !g.InBounds(gr, gc) {
				continue
			}
			if err := e.pol.MergeInto(pb, r, c, g, gr, gc); err != nil {
				return errs.WrapWithExtra(err, "lock piece", fmt.Sprintf("row=%d col=%d", gr, gc))
			}
		}
	}
	return nil
}
