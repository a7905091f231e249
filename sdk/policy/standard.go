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

package policy

import (
	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/sdk/grid"
	"github.com/zintix-labs/quantro/sdk/qo"
)

// Standard 查表式的預設規則。
//
// 同平面：
//   - 兩個非空格相連；UL 與任何方向都分離；SL 與任何非空鄰居都相連（優先於 UL）。
//
// 跨平面（同一格）：
//   - 只有 ST-ST 與含 SL 的組合相連；interact 模式下除了 UL 以外都相連。
//
// 合併：
//   - 獨立平面：逐平面合併，目的格已有方塊即衝突（ST 兩個平面都要空）。
//   - interact：兩個平面視為同一格，任一平面有方塊即衝突，S0/S1 改為落點平面的顏色。
type Standard struct {
	interact bool

	// true 代表分離
	side    [qo.Count][qo.Count]bool
	above   [qo.Count][qo.Count]bool
	below   [qo.Count][qo.Count]bool
	quantum [qo.Count][qo.Count]bool
}

// NewStandard 建立規則表；planesInteract 為 true 時兩個平面互相影響
func NewStandard(planesInteract bool) *Standard {
	s := &Standard{interact: planesInteract}
	for i := 0; i < qo.Count; i++ {
		for j := 0; j < qo.Count; j++ {
			a, b := qo.Code(i), qo.Code(j)
			sep := separatesSamePlane(a, b)
			s.side[i][j] = sep
			s.above[i][j] = sep
			s.below[i][j] = sep
			s.quantum[i][j] = s.separatesCrossPlane(a, b)
		}
	}
	return s
}

func separatesSamePlane(a, b qo.Code) bool {
	switch {
	case a == qo.NO || b == qo.NO:
		return true
	case a == qo.SL || b == qo.SL:
		return false
	case a == qo.UL || b == qo.UL:
		return true
	}
	return false
}

func (s *Standard) separatesCrossPlane(a, b qo.Code) bool {
	switch {
	case a == qo.NO || b == qo.NO:
		return true
	case a == qo.SL || b == qo.SL:
		return false
	case a == qo.ST && b == qo.ST:
		return false
	case a == qo.UL || b == qo.UL:
		return true
	}
	return !s.interact
}

// PlanesInteract 兩平面是否互相影響
func (s *Standard) PlanesInteract() bool { return s.interact }

func (s *Standard) LocksToFloor(p *grid.Grid, r, c int) bool {
	return p.Occupied(r, c)
}

func (s *Standard) LocksToFromAbove(p *grid.Grid, pr, pc int, g *grid.Grid, gr, gc int) bool {
	if s.interact {
		return p.Occupied(pr, pc) && g.Occupied(gr, gc)
	}
	for qp := 0; qp < grid.Planes; qp++ {
		if p.At(qp, pr, pc) != qo.NO && g.At(qp, gr, gc) != qo.NO {
			return true
		}
	}
	return false
}

func (s *Standard) MergeInto(src *grid.Grid, sr, sc int, dst *grid.Grid, dr, dc int) error {
	if s.interact {
		if src.Occupied(sr, sc) && dst.Occupied(dr, dc) {
			return errs.Conflictf("merge %s/%s into occupied %s/%s",
				src.At(0, sr, sc), src.At(1, sr, sc), dst.At(0, dr, dc), dst.At(1, dr, dc))
		}
	} else {
		for qp := 0; qp < grid.Planes; qp++ {
			a, b := src.At(qp, sr, sc), dst.At(qp, dr, dc)
			if a != qo.NO && b != qo.NO {
				return errs.Conflictf("merge %s into %s on plane %d", a, b, qp)
			}
		}
	}
	for qp := 0; qp < grid.Planes; qp++ {
		a := src.At(qp, sr, sc)
		if a == qo.NO {
			continue
		}
		if s.interact {
			a = recolor(qp, a)
		}
		dst.Set(qp, dr, dc, a)
	}
	return nil
}

func recolor(qp int, c qo.Code) qo.Code {
	if c != qo.S0 && c != qo.S1 {
		return c
	}
	if qp == 0 {
		return qo.S0
	}
	return qo.S1
}

func (s *Standard) MergeIntoKeepsQOrientation() bool { return !s.interact }

func (s *Standard) SeparatesFromWhenSide(a, b qo.Code) bool     { return s.side[a][b] }
func (s *Standard) SeparatesFromWhenAbove(a, b qo.Code) bool    { return s.above[a][b] }
func (s *Standard) SeparatesFromWhenBelow(a, b qo.Code) bool    { return s.below[a][b] }
func (s *Standard) SeparatesFromWhenQuantum(a, b qo.Code) bool  { return s.quantum[a][b] }
func (s *Standard) SeparatesFromAllSides(code qo.Code) bool     { return code == qo.UL }
func (s *Standard) NeverSeparatesFromSupport(code qo.Code) bool { return code == qo.F0 || code == qo.F1 }

// OccludedBy 來源位置兩個平面都已被標記，或其中之一是 ST/SL 時視為遮蔽
func (s *Standard) OccludedBy(code qo.Code, pair [grid.Planes]qo.Code) bool {
	if code == qo.NO {
		return false
	}
	for _, v := range pair {
		if v == qo.ST || v == qo.SL {
			return true
		}
	}
	return pair[0] != qo.NO && pair[1] != qo.NO
}
