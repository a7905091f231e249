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

package quantro_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/zintix-labs/quantro"
	"github.com/zintix-labs/quantro/corefmt"
	"github.com/zintix-labs/quantro/demo"
	"github.com/zintix-labs/quantro/dto"
	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/sdk/buf"
	"github.com/zintix-labs/quantro/sdk/grid"
	"github.com/zintix-labs/quantro/sdk/qo"
	"github.com/zintix-labs/quantro/spec"
)

func newQuantro(t *testing.T) *quantro.Quantro {
	t.Helper()
	q, err := demo.NewQuantro()
	if err != nil {
		t.Fatalf("new quantro: %v", err)
	}
	return q
}

func newBoard(t *testing.T, q *quantro.Quantro) *quantro.Board {
	t.Helper()
	b, err := q.NewBoard(demo.ModeStandard, 7)
	if err != nil {
		t.Fatalf("new board: %v", err)
	}
	return b
}

func piece(t *testing.T, b *quantro.Board, name string) *grid.Piece {
	t.Helper()
	ps, ok := b.Setting().Piece(name)
	if !ok {
		t.Fatalf("piece %q not found", name)
	}
	return ps.Proto
}

func landAt(t *testing.T, b *quantro.Board, p *grid.Piece, x int) *buf.TickResult {
	t.Helper()
	r, err := b.Land(p, grid.Offset{X: x, Y: b.Grid().Rows() - 2})
	if err != nil {
		t.Fatalf("land at x=%d: %v", x, err)
	}
	return r
}

func TestSummary(t *testing.T) {
	q := newQuantro(t)
	sum, err := q.Summary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(sum) != 2 {
		t.Fatalf("expected 2 modes, got %d", len(sum))
	}
	if _, ok := q.EntryByID(demo.ModeStandard); !ok {
		t.Fatalf("standard mode not registered")
	}
	if _, ok := q.EntryByID(99); ok {
		t.Fatalf("unexpected entry for id 99")
	}
}

func TestLandFillsRow(t *testing.T) {
	q := newQuantro(t)
	b := newBoard(t, q)
	bridge := piece(t, b, "bridge")

	for x := 0; x < 8; x += 2 {
		r := landAt(t, b, bridge, x)
		if !r.Locked || r.RowsCleared != 0 {
			t.Fatalf("x=%d: locked=%v rows=%d", x, r.Locked, r.RowsCleared)
		}
		if b.Grid().At(0, 0, x) != qo.ST || b.Grid().At(1, 0, x+1) != qo.ST {
			t.Fatalf("x=%d: bridge should rest on the floor", x)
		}
	}
	r := landAt(t, b, bridge, 8)
	if r.RowsCleared != 1 {
		t.Fatalf("expected 1 row cleared, got %d", r.RowsCleared)
	}
	if r.Cells != 0 || b.Grid().Count() != 0 {
		t.Fatalf("board should be empty, cells=%d", b.Grid().Count())
	}
}

func TestLandStacks(t *testing.T) {
	q := newQuantro(t)
	b := newBoard(t, q)
	bridge := piece(t, b, "bridge")

	landAt(t, b, bridge, 0)
	r := landAt(t, b, bridge, 1)
	g := b.Grid()
	if !g.Occupied(1, 1) || !g.Occupied(1, 2) {
		t.Fatalf("second bridge should stack on row 1")
	}
	if g.Occupied(0, 2) {
		t.Fatalf("overhang must not fall")
	}
	if r.Cells != 8 {
		t.Fatalf("expected 8 cells, got %d", r.Cells)
	}
}

func TestLandOverlap(t *testing.T) {
	q := newQuantro(t)
	b := newBoard(t, q)
	bridge := piece(t, b, "bridge")
	landAt(t, b, bridge, 0)
	before := b.Snapshot()

	_, err := b.Land(bridge, grid.Offset{X: 0, Y: 0})
	if err == nil {
		t.Fatalf("expected overlap error")
	}
	if !errors.Is(err, errs.ErrMergeConflict) {
		t.Fatalf("expected ErrMergeConflict, got %v", err)
	}
	if string(before) != string(b.Snapshot()) {
		t.Fatalf("board changed after rejected land")
	}
}

func TestClearColumnRemovesWholeShape(t *testing.T) {
	q := newQuantro(t)
	b := newBoard(t, q)
	bridge := piece(t, b, "bridge")
	landAt(t, b, bridge, 0)
	landAt(t, b, bridge, 1)

	r, err := b.ClearColumn(0, 1, false)
	if err != nil {
		t.Fatalf("clear column: %v", err)
	}
	removed := 0
	for _, n := range r.ChunkSizes {
		removed += n
	}
	// 上層橫跨第 1、2 欄的 bridge 整塊移除
	if removed != 4 || r.Cells != 4 {
		t.Fatalf("removed=%d cells=%d", removed, r.Cells)
	}
	g := b.Grid()
	if !g.Occupied(0, 0) || !g.Occupied(0, 1) || g.Occupied(0, 2) {
		t.Fatalf("row 0 must keep only the first bridge")
	}
	for c := 0; c < g.Cols(); c++ {
		if g.Occupied(1, c) {
			t.Fatalf("row 1 col %d should be empty", c)
		}
	}
}

func TestClearColumnFallKeepsCells(t *testing.T) {
	q := newQuantro(t)
	b := newBoard(t, q)
	bridge := piece(t, b, "bridge")
	landAt(t, b, bridge, 0)
	landAt(t, b, bridge, 1)

	r, err := b.ClearColumn(0, 1, true)
	if err != nil {
		t.Fatalf("clear column: %v", err)
	}
	if r.Chunks() == 0 {
		t.Fatalf("disturbed cells should be recorded as chunks")
	}
	if r.Cells != 8 {
		t.Fatalf("expected 8 cells, got %d", r.Cells)
	}
	g := b.Grid()
	if !g.Occupied(1, 1) || !g.Occupied(1, 2) || g.Occupied(0, 2) {
		t.Fatalf("bridge should fall back onto row 1")
	}
}

func TestClearColumnWholeColumn(t *testing.T) {
	q := newQuantro(t)
	b := newBoard(t, q)
	bridge := piece(t, b, "bridge")
	landAt(t, b, bridge, 0)

	r, err := b.ClearColumn(-1, 0, false)
	if err != nil {
		t.Fatalf("clear column: %v", err)
	}
	// bridge 跨出第 0 欄的部分一起移除
	if b.Grid().Occupied(0, 0) || b.Grid().Occupied(0, 1) {
		t.Fatalf("the whole bridge should be cleared")
	}
	if r.Cells != 0 {
		t.Fatalf("expected empty board, got %d cells", r.Cells)
	}
}

func TestReward(t *testing.T) {
	q := newQuantro(t)
	b := newBoard(t, q)
	rs := b.Setting().RewardSetting
	r, err := b.Reward(rs.Kinds, 0)
	if err != nil {
		t.Fatalf("reward: %v", err)
	}
	if r.Action != buf.ActionReward {
		t.Fatalf("unexpected action %q", r.Action)
	}
	if r.Placed < rs.MinBlocks || r.Placed > rs.MaxBlocks {
		t.Fatalf("placed %d outside [%d,%d]", r.Placed, rs.MinBlocks, rs.MaxBlocks)
	}
	if b.Grid().Count() == 0 {
		t.Fatalf("reward should leave blocks on the board")
	}
}

func TestSnapshotRestore(t *testing.T) {
	q := newQuantro(t)
	b := newBoard(t, q)
	landAt(t, b, piece(t, b, "t"), 3)
	snap := b.Snapshot()

	other := newBoard(t, q)
	if err := other.Restore(snap); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !other.Grid().Equal(b.Grid()) {
		t.Fatalf("restored board differs")
	}
}

func TestRestoreRejectsDims(t *testing.T) {
	q := newQuantro(t)
	b := newBoard(t, q)
	landAt(t, b, piece(t, b, "square"), 4)
	before := b.Snapshot()

	if err := b.Restore(corefmt.EncodeGrid(grid.NewGrid(4, 4))); err == nil {
		t.Fatalf("expected dims mismatch error")
	}
	if err := b.Restore([]byte("garbage")); err == nil {
		t.Fatalf("expected decode error")
	}
	if string(before) != string(b.Snapshot()) {
		t.Fatalf("failed restore must leave the board unchanged")
	}
}

func TestSimulatorDeterministic(t *testing.T) {
	q := newQuantro(t)
	run := func() *quantro.Simulator {
		s, err := q.NewSimulatorWithSeed(demo.ModeStandard, 42)
		if err != nil {
			t.Fatalf("new simulator: %v", err)
		}
		return s
	}

	a, _, err := run().Run(2000, false)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	b, _, err := run().Run(2000, false)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !reflect.DeepEqual(a.Summary, b.Summary) {
		t.Fatalf("same seed gave different summaries:\n%+v\n%+v", a.Summary, b.Summary)
	}
	if a.Summary.Ticks != 2000 || a.Summary.Locks == 0 {
		t.Fatalf("unexpected summary %+v", a.Summary)
	}
	if a.Summary.Rewards == 0 {
		t.Fatalf("reward every 8 ticks should fire")
	}

	c, _, err := run().RunMP(500, 3, false)
	if err != nil {
		t.Fatalf("run mp: %v", err)
	}
	d, _, err := run().RunMP(500, 3, false)
	if err != nil {
		t.Fatalf("run mp: %v", err)
	}
	if !reflect.DeepEqual(c.Summary, d.Summary) {
		t.Fatalf("RunMP should not depend on scheduling")
	}
	if c.Summary.Ticks != 1500 {
		t.Fatalf("expected 1500 ticks, got %d", c.Summary.Ticks)
	}
}

func TestSimulatorRejectsTicks(t *testing.T) {
	q := newQuantro(t)
	s, err := q.NewSimulatorWithSeed(demo.ModeStandard, 1)
	if err != nil {
		t.Fatalf("new simulator: %v", err)
	}
	if _, _, err := s.Run(0, false); err == nil {
		t.Fatalf("expected error for zero ticks")
	}
	if _, _, err := s.RunMP(10, 0, false); err == nil {
		t.Fatalf("expected error for zero workers")
	}
}

func TestReplay(t *testing.T) {
	q := newQuantro(t)
	for _, id := range []spec.ModeID{demo.ModeStandard, demo.ModeRetro} {
		r, err := q.NewReplay(id, 7)
		if err != nil {
			t.Fatalf("mode %d new replay: %v", id, err)
		}
		rep, err := r.Run(500)
		if err != nil {
			t.Fatalf("mode %d replay: %v", id, err)
		}
		if rep.Ticks != 500 || rep.Before == "" || rep.After == "" {
			t.Fatalf("mode %d unexpected report %+v", id, rep)
		}

		r2, err := q.NewReplay(id, 7)
		if err != nil {
			t.Fatalf("mode %d new replay: %v", id, err)
		}
		if _, err := r2.RestoreRun(rep.After, 100); err != nil {
			t.Fatalf("mode %d restore run: %v", id, err)
		}
	}
}

func TestRuntimeTick(t *testing.T) {
	q := newQuantro(t)
	rt, err := q.BuildRuntime(1)
	if err != nil {
		t.Fatalf("build runtime: %v", err)
	}
	defer rt.Close()

	req := &dto.TickRequest{ModeID: demo.ModeStandard, Action: buf.ActionLand, PieceName: "bridge", X: 0, Y: 18}
	res, err := rt.Tick(context.Background(), req)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if !res.Locked || res.Cells != 4 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.State.StartB64U == "" || res.State.AfterB64U == "" {
		t.Fatalf("tick state frames required")
	}

	// 續玩：把 after 當作下一次的起始盤面
	req.Board = res.State.AfterB64U
	req.X = 2
	res, err = rt.Tick(context.Background(), req)
	if err != nil {
		t.Fatalf("second tick: %v", err)
	}
	if res.Cells != 8 {
		t.Fatalf("expected 8 cells, got %d", res.Cells)
	}

	bad := &dto.TickRequest{ModeID: demo.ModeStandard, ModeName: "retro", Action: buf.ActionLand, PieceName: "bridge"}
	if _, err := rt.Tick(context.Background(), bad); err == nil {
		t.Fatalf("expected mode name mismatch error")
	}
	missing := &dto.TickRequest{ModeID: 99, Action: buf.ActionLand, PieceName: "bridge"}
	if _, err := rt.Tick(context.Background(), missing); err == nil {
		t.Fatalf("expected unknown mode error")
	}

	rt.Close()
	if _, err := rt.Tick(context.Background(), req); err == nil {
		t.Fatalf("closed runtime should reject ticks")
	}
}
