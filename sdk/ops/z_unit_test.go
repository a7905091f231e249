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
	"testing"

	"github.com/zintix-labs/quantro/sdk/grid"
	"github.com/zintix-labs/quantro/sdk/lock"
	"github.com/zintix-labs/quantro/sdk/policy"
	"github.com/zintix-labs/quantro/sdk/qo"
)

func fillRow(g *grid.Grid, r int) {
	for c := 0; c < g.Cols(); c++ {
		g.Set(0, r, c, qo.S0)
		g.Set(1, r, c, qo.S1)
	}
}

func TestFullRowsAndClear(t *testing.T) {
	g := grid.NewGrid(5, 3)
	fillRow(g, 0)
	fillRow(g, 2)
	g.Set(0, 1, 1, qo.F0)
	g.Set(1, 3, 2, qo.S1)

	rows := FullRows(g, nil)
	if len(rows) != 2 || rows[0] != 0 || rows[1] != 2 {
		t.Fatalf("unexpected full rows %v", rows)
	}
	if n := ClearRows(g, rows); n != 2 {
		t.Fatalf("expected 2 cleared, got %d", n)
	}
	if g.At(0, 0, 1) != qo.F0 || g.At(1, 1, 2) != qo.S1 {
		t.Fatalf("rows above did not shift down\n%s", g.Render())
	}
	if g.Count() != 2 {
		t.Fatalf("unexpected count %d", g.Count())
	}
	for r := 2; r < 5; r++ {
		for c := 0; c < 3; c++ {
			if g.Occupied(r, c) {
				t.Fatalf("row %d not cleared", r)
			}
		}
	}
	if ClearRows(g, nil) != 0 {
		t.Fatalf("clearing nothing should be a no-op")
	}
}

func square(code qo.Code, qp int) *grid.Piece {
	p := grid.NewPiece(2, 2)
	for r := 0; r < 2; r++ {
		for c := 0; c < 2; c++ {
			p.Blocks.Set(qp, r, c, code)
		}
	}
	return p
}

func TestCollides(t *testing.T) {
	g := grid.NewGrid(6, 4)
	g.Set(1, 0, 0, qo.S1)
	p := square(qo.S0, 0)

	if Collides(g, p, grid.Offset{X: 0, Y: 0}, false) {
		t.Fatalf("plane 0 piece should pass plane 1 block")
	}
	if !Collides(g, p, grid.Offset{X: 0, Y: 0}, true) {
		t.Fatalf("interacting planes should collide")
	}
	if !Collides(g, p, grid.Offset{X: 3, Y: 2}, false) {
		t.Fatalf("right wall should collide")
	}
	if !Collides(g, p, grid.Offset{X: 1, Y: -1}, false) {
		t.Fatalf("floor should collide")
	}
	if Collides(g, p, grid.Offset{X: 1, Y: 5}, false) {
		t.Fatalf("above the top is not a collision")
	}
}

func TestFallStopsOnSupport(t *testing.T) {
	g := grid.NewGrid(8, 4)
	g.Set(0, 0, 1, qo.S0)
	g.Set(0, 1, 1, qo.S0)
	e := lock.New(policy.NewStandard(false), 8, 4)
	e.Finalize()

	off := Fall(e, g, square(qo.S0, 0), grid.Offset{X: 1, Y: 6})
	if off != (grid.Offset{X: 1, Y: 2}) {
		t.Fatalf("expected to rest on the pillar, got %+v", off)
	}
	// 平面 1 的方塊穿過平面 0 的柱子落到地板
	off = Fall(e, g, square(qo.S1, 1), grid.Offset{X: 1, Y: 6})
	if off != (grid.Offset{X: 1, Y: 0}) {
		t.Fatalf("expected to reach the floor, got %+v", off)
	}
}
