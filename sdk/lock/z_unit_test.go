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
	"errors"
	"strings"
	"testing"

	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/sdk/buf"
	"github.com/zintix-labs/quantro/sdk/core"
	"github.com/zintix-labs/quantro/sdk/grid"
	"github.com/zintix-labs/quantro/sdk/policy"
	"github.com/zintix-labs/quantro/sdk/ptype"
	"github.com/zintix-labs/quantro/sdk/qo"
)

// build 以文字建立 Grid：第一個字串是最高列，每列為 "plane0|plane1"
func build(t *testing.T, lines ...string) *grid.Grid {
	t.Helper()
	rows := len(lines)
	cols := strings.Index(lines[0], "|")
	g := grid.NewGrid(rows, cols)
	for i, line := range lines {
		r := rows - 1 - i
		parts := strings.Split(line, "|")
		if len(parts) != grid.Planes {
			t.Fatalf("bad line %q", line)
		}
		for qp, s := range parts {
			for c := 0; c < cols; c++ {
				v, ok := qo.Parse(s[c])
				if !ok {
					t.Fatalf("bad cell %q", s[c])
				}
				g.Set(qp, r, c, v)
			}
		}
	}
	return g
}

func newEngine(pol policy.Policy, g *grid.Grid) *FloodEngine {
	return New(pol, g.Rows(), g.Cols()).Finalize()
}

func TestSquareOnPillar(t *testing.T) {
	cases := []struct {
		name  string
		lines []string
	}{
		{"square on other plane", []string{
			"....|....",
			"....|.bb.",
			"....|.bb.",
			".a..|....",
			".a..|....",
		}},
		{"square over gap", []string{
			"....|....",
			".aa.|....",
			".aa.|....",
			"....|....",
			".a..|....",
		}},
	}
	for _, tc := range cases {
		g := build(t, tc.lines...)
		before := g.Count()
		e := newEngine(policy.NewStandard(false), g)
		out := buf.NewChunkList(4)
		n, err := e.Unlock(g, out)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if n != 1 || out.Len() != 1 {
			t.Fatalf("%s: expected one chunk, got %d", tc.name, n)
		}
		p := out.Piece(0)
		if p.NumBlocks() != 4 {
			t.Fatalf("%s: chunk has %d blocks\n%s", tc.name, p.NumBlocks(), p.Render())
		}
		if out.Offset(0) != (grid.Offset{X: 1, Y: 2}) {
			t.Fatalf("%s: chunk offset %v", tc.name, out.Offset(0))
		}
		if p.UR.Sub(p.LL) != (grid.Offset{X: 2, Y: 2}) {
			t.Fatalf("%s: chunk bounds %v-%v", tc.name, p.LL, p.UR)
		}
		if g.Count()+out.Cells() != before {
			t.Fatalf("%s: cells not conserved", tc.name)
		}
		if g.At(0, 0, 1) != qo.S0 {
			t.Fatalf("%s: pillar must stay\n%s", tc.name, g.Render())
		}
		if !ptype.IsSpecial(p.Type) {
			t.Fatalf("%s: multi-cell chunk must be a fragment, got %d", tc.name, p.Type)
		}
	}
}

func TestChunkOffsetKeepsAbsolutePosition(t *testing.T) {
	g := build(t,
		"..a.|....",
		"..aa|....",
		"....|....",
		"a...|....",
	)
	e := newEngine(policy.NewStandard(false), g)
	out := buf.NewChunkList(2)
	if _, err := e.Unlock(g, out); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	p := out.Piece(0)
	off := out.Offset(0)
	for _, rc := range [][2]int{{3, 2}, {2, 2}, {2, 3}} {
		found := false
		for r := p.LL.Y; r < p.UR.Y; r++ {
			for c := p.LL.X; c < p.UR.X; c++ {
				if p.Blocks.At(0, r, c) == qo.NO {
					continue
				}
				if gr, gc := p.GridPos(off, r, c); gr == rc[0] && gc == rc[1] {
					found = true
				}
			}
		}
		if !found {
			t.Fatalf("cell %v missing from chunk at %v\n%s", rc, off, p.Render())
		}
	}
}

func TestOcclusionKeepsUnstableResting(t *testing.T) {
	pol := policy.NewStandard(false)

	// ST 遮蔽：UL 雖然與所有方向分離，但壓在疊合方塊上時保持靜止
	g := build(t,
		"u...|....",
		"t...|t...",
	)
	out := buf.NewChunkList(2)
	if n, _ := newEngine(pol, g).Unlock(g, out); n != 0 {
		t.Fatalf("occluded UL must rest, got %d chunks", n)
	}

	g = build(t,
		"u...|....",
		"a...|....",
	)
	out.Reset()
	n, _ := newEngine(pol, g).Unlock(g, out)
	if n != 1 || out.Piece(0).NumBlocks() != 1 {
		t.Fatalf("unoccluded UL must separate, got %d chunks", n)
	}
	if !ptype.Is(out.Piece(0).Type, ptype.Monomino, ptype.MonominoSingle) || qo.Code(ptype.Combination(out.Piece(0).Type)) != qo.UL {
		t.Fatalf("single cell chunk type %d", out.Piece(0).Type)
	}
}

func TestFixedBlocksRestInMidAir(t *testing.T) {
	g := build(t,
		".a..|....",
		".f..|....",
		"....|....",
		"....|....",
	)
	out := buf.NewChunkList(2)
	n, err := newEngine(policy.NewStandard(false), g).Unlock(g, out)
	if err != nil || n != 0 {
		t.Fatalf("fixed block and its load must rest: n=%d err=%v", n, err)
	}
}

func randomGrid(seed int64, rows, cols int, codes []qo.Code) *grid.Grid {
	c := core.New(core.Default().New(seed))
	g := grid.NewGrid(rows, cols)
	for r := 0; r < rows; r++ {
		for col := 0; col < cols; col++ {
			for qp := 0; qp < grid.Planes; qp++ {
				if g.At(qp, r, col) != qo.NO || c.IntN(5) < 2 {
					continue
				}
				v := codes[c.IntN(len(codes))]
				if v == qo.ST {
					g.Set(0, r, col, qo.ST)
					g.Set(1, r, col, qo.ST)
					continue
				}
				g.Set(qp, r, col, v)
			}
		}
	}
	return g
}

func TestUnlockConservationAndGroundedness(t *testing.T) {
	pol := policy.NewStandard(false)
	all := []qo.Code{qo.S0, qo.S1, qo.ST, qo.SL, qo.UL, qo.F0, qo.F1}
	out := buf.NewChunkList(8)
	for seed := int64(1); seed <= 40; seed++ {
		g := randomGrid(seed, 12, 8, all)
		e := newEngine(pol, g)
		before := g.Count()
		out.Reset()
		if _, err := e.Unlock(g, out); err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if g.Count()+out.Cells() != before {
			t.Fatalf("seed %d: %d + %d != %d", seed, g.Count(), out.Cells(), before)
		}
		// 剩下的格子就是接地集合：再跑一次不應產生任何 chunk
		again := buf.NewChunkList(1)
		if n, _ := e.Unlock(g, again); n != 0 {
			t.Fatalf("seed %d: %d ungrounded cells left\n%s", seed, n, g.Render())
		}
	}
}

func TestComponentIntegrity(t *testing.T) {
	pol := policy.NewStandard(false)
	// 不含 UL 時規則是對稱的：chunk 之間、chunk 與接地集合之間的相鄰格必須分離
	sym := []qo.Code{qo.S0, qo.S1, qo.ST, qo.SL, qo.F0}
	for seed := int64(100); seed < 130; seed++ {
		g := randomGrid(seed, 10, 6, sym)
		orig := g.Clone()
		e := newEngine(pol, g)
		out := buf.NewChunkList(8)
		if _, err := e.Unlock(g, out); err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}

		// label: 0 = 仍在盤面（接地），i+1 = 第 i 個 chunk
		label := make([]int, grid.Planes*g.Size())
		for i := 0; i < out.Len(); i++ {
			p := out.Piece(i)
			off := out.Offset(i)
			for qp := 0; qp < grid.Planes; qp++ {
				for r := p.LL.Y; r < p.UR.Y; r++ {
					for c := p.LL.X; c < p.UR.X; c++ {
						if p.Blocks.At(qp, r, c) == qo.NO {
							continue
						}
						gr, gc := p.GridPos(off, r, c)
						label[qp*g.Size()+g.Index(gr, gc)] = i + 1
					}
				}
			}
			// 每個 chunk 單獨拆解仍是一塊
			sub := buf.NewChunkList(2)
			if n, _ := e.UnlockPiece(p, off, sub); n != 1 {
				t.Fatalf("seed %d: chunk %d is not connected (%d parts)\n%s", seed, i, n, p.Render())
			}
		}

		lbl := func(qp, r, c int) int { return label[qp*g.Size()+g.Index(r, c)] }
		for qp := 0; qp < grid.Planes; qp++ {
			for r := 0; r < g.Rows(); r++ {
				for c := 0; c < g.Cols(); c++ {
					a := orig.At(qp, r, c)
					if a == qo.NO {
						continue
					}
					if c+1 < g.Cols() {
						if b := orig.At(qp, r, c+1); b != qo.NO && lbl(qp, r, c) != lbl(qp, r, c+1) && !pol.SeparatesFromWhenSide(b, a) {
							t.Fatalf("seed %d: side neighbours split at (%d,%d,%d)", seed, qp, r, c)
						}
					}
					if r+1 < g.Rows() {
						if b := orig.At(qp, r+1, c); b != qo.NO && lbl(qp, r, c) != lbl(qp, r+1, c) && !pol.SeparatesFromWhenAbove(b, a) {
							t.Fatalf("seed %d: vertical neighbours split at (%d,%d,%d)", seed, qp, r, c)
						}
					}
					if qp == 0 {
						if b := orig.At(1, r, c); b != qo.NO && lbl(0, r, c) != lbl(1, r, c) && !pol.SeparatesFromWhenQuantum(b, a) {
							t.Fatalf("seed %d: planes split at (%d,%d)", seed, r, c)
						}
					}
				}
			}
		}
	}
}

func TestUnlockPieceCopiesOut(t *testing.T) {
	p := grid.NewPiece(3, 4)
	p.Type = 123
	p.Blocks.Set(0, 0, 0, qo.S0)
	p.Blocks.Set(0, 1, 0, qo.S0)
	p.Blocks.Set(1, 2, 3, qo.S1)
	p.TightenBounds()
	before := p.Encode()

	e := New(policy.NewStandard(false), 20, 10).Finalize()
	out := buf.NewChunkList(2)
	off := grid.Offset{X: 5, Y: 7}
	n, err := e.UnlockPiece(p, off, out)
	if err != nil || n != 2 {
		t.Fatalf("expected 2 parts, got %d err=%v", n, err)
	}
	if p.Encode() != before {
		t.Fatalf("piece must not change")
	}
	if out.Cells() != 3 {
		t.Fatalf("cells %d", out.Cells())
	}
	// 第一個部分（左下）絕對位置不變
	if out.Offset(0) != off {
		t.Fatalf("first part offset %v", out.Offset(0))
	}
	if out.Offset(1) != (grid.Offset{X: 8, Y: 9}) {
		t.Fatalf("second part offset %v", out.Offset(1))
	}

	// 完整的 piece 保留型別
	whole := grid.NewPiece(2, 2)
	whole.Type = 77
	whole.Blocks.Set(0, 0, 0, qo.S0)
	whole.Blocks.Set(0, 0, 1, qo.S0)
	out.Reset()
	if n, _ := e.UnlockPiece(whole, grid.Offset{}, out); n != 1 || out.Piece(0).Type != 77 {
		t.Fatalf("intact piece must keep its type")
	}
}

func TestUnlockColumnAbove(t *testing.T) {
	g := build(t,
		".a..|....",
		".aa.|....",
		".a..|....",
		".a..|....",
	)
	e := newEngine(policy.NewStandard(false), g)
	out := buf.NewChunkList(2)
	n, err := e.UnlockColumnAbove(g, 0, 1, out)
	if err != nil || n != 1 {
		t.Fatalf("expected one chunk, got %d err=%v", n, err)
	}
	// (2,2) 與欄內方塊相連，跟著一起搬出
	if out.Piece(0).NumBlocks() != 4 || out.Offset(0) != (grid.Offset{X: 1, Y: 1}) {
		t.Fatalf("chunk %v\n%s", out.Offset(0), out.Piece(0).Render())
	}
	if g.At(0, 2, 2) != qo.NO || g.At(0, 0, 1) != qo.S0 || g.At(0, 1, 1) != qo.NO || g.Count() != 1 {
		t.Fatalf("only row 0 stays\n%s", g.Render())
	}

	// 橫向相連的部分不限於該欄，但 row 以下的格子不動
	g = build(t,
		"....|....",
		".aa.|....",
		"..a.|....",
		".a..|....",
	)
	out.Reset()
	if n, _ := e.UnlockColumnAbove(g, 1, 1, out); n != 1 || out.Piece(0).NumBlocks() != 2 {
		t.Fatalf("expected one 2-cell chunk, got %d\n%s", n, g.Render())
	}
	if out.Offset(0) != (grid.Offset{X: 1, Y: 2}) {
		t.Fatalf("offset %v", out.Offset(0))
	}
	if g.At(0, 1, 2) != qo.S0 || g.At(0, 0, 1) != qo.S0 || g.At(0, 2, 2) != qo.NO {
		t.Fatalf("cells at or below row 1 must stay\n%s", g.Render())
	}

	g = build(t,
		".a..|....",
		"....|....",
		".a..|.b..",
		".a..|....",
	)
	out.Reset()
	if n, _ := e.UnlockColumnAbove(g, -1, 1, out); n != 3 {
		t.Fatalf("gap and plane split the column into 3 chunks, got %d", n)
	}
	if g.Count() != 0 {
		t.Fatalf("whole column must move out")
	}
	if _, err := e.UnlockColumnAbove(g, 0, 9, out); !errors.Is(err, errs.ErrOutOfRange) {
		t.Fatalf("expected out of range")
	}
}

func TestShouldLockAndLock(t *testing.T) {
	g := build(t,
		"....|....",
		"....|....",
		"a...|.b..",
	)
	e := newEngine(policy.NewStandard(false), g)
	p := grid.NewPiece(1, 1)
	p.Blocks.Set(0, 0, 0, qo.S0)

	if !e.ShouldLock(g, p, grid.Offset{X: 0, Y: 1}) {
		t.Fatalf("S0 over S0 locks")
	}
	if e.ShouldLock(g, p, grid.Offset{X: 1, Y: 1}) {
		t.Fatalf("S0 over plane-1 block passes through")
	}
	if !e.ShouldLock(g, p, grid.Offset{X: 3, Y: 0}) {
		t.Fatalf("floor locks")
	}
	if err := e.Lock(g, p, grid.Offset{X: 1, Y: 0}); err != nil {
		t.Fatalf("lock onto free plane: %v", err)
	}
	if g.At(0, 0, 1) != qo.S0 {
		t.Fatalf("lock did not merge")
	}
	err := e.Lock(g, p, grid.Offset{X: 0, Y: 0})
	if !errors.Is(err, errs.ErrMergeConflict) {
		t.Fatalf("expected merge conflict, got %v", err)
	}
	if !strings.Contains(err.Error(), "row=0 col=0") {
		t.Fatalf("conflict must carry its position: %v", err)
	}
}

func mustPanicWith(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, target) {
			t.Fatalf("expected panic with %v, got %v", target, r)
		}
	}()
	fn()
}

func TestConfigurationOrder(t *testing.T) {
	g := grid.NewGrid(2, 2)
	e := New(policy.NewStandard(false), 2, 2)
	mustPanicWith(t, errs.ErrNotFinalized, func() { _, _ = e.Unlock(g, buf.NewChunkList(1)) })
	mustPanicWith(t, errs.ErrNotFinalized, func() { e.ShouldLock(g, grid.NewPiece(1, 1), grid.Offset{}) })
	e.SetChunkHint(4).Finalize()
	mustPanicWith(t, errs.ErrFinalized, func() { e.SetRestOnFloor(false) })
	mustPanicWith(t, errs.ErrFinalized, func() { e.Finalize() })

	if _, err := e.Unlock(grid.NewGrid(3, 3), buf.NewChunkList(1)); !errors.Is(err, errs.ErrOutOfRange) {
		t.Fatalf("grid of wrong size must be rejected")
	}
}
