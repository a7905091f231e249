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

package quantro

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/zintix-labs/quantro/corefmt"
	"github.com/zintix-labs/quantro/dto"
	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/sdk/buf"
	"github.com/zintix-labs/quantro/sdk/grid"
	"github.com/zintix-labs/quantro/sdk/lock"
	"github.com/zintix-labs/quantro/sdk/ops"
	"github.com/zintix-labs/quantro/sdk/place"
	"github.com/zintix-labs/quantro/sdk/policy"
	"github.com/zintix-labs/quantro/sdk/qo"
	"github.com/zintix-labs/quantro/server/logger"
	"github.com/zintix-labs/quantro/spec"
)

// Board 封裝一個遊戲模式的盤面實例。
//
// 你可以把 Board 視為核心物理的「外殼（shell）」：
//   - 對外：提供 Land / ClearColumn / Reward 三種動作（模擬器、HTTP 只操作 Board）。
//   - 對內：持有 Grid、lock 引擎、放置引擎與可重用的 chunk buffer。
//
// 並發語意：
//   - 同一個 Board 不應被多 goroutine 同時操作；公開動作以 mu 保護可重用 buffer。
//   - 要並行請建立多個 Board（BoardPool / Simulator.RunMP）。
//
// Buffer 語意：
//   - Result 每次動作都會被覆寫；需要保留請在下一次動作前複製。
type Board struct {
	modeName string
	modeID   spec.ModeID
	ms       *spec.ModeSetting
	session  uint32

	grid   *grid.Grid
	pol    policy.Policy
	lock   *lock.FloodEngine
	place  *place.Heuristic
	chunks *buf.ChunkList
	drops  *buf.ChunkList
	rows   []int
	order  []int
	tick   int

	Result *buf.TickResult
	log    *slog.Logger
	mu     sync.Mutex
}

// newBoard 依模式設定與 session seed 建立 Board
func newBoard(ms *spec.ModeSetting, reg *policy.Registry, session uint32, log *slog.Logger) (*Board, error) {
	if ms == nil || reg == nil {
		return nil, errs.NewFatal("mode setting and policy registry required")
	}
	pol, err := reg.Build(ms.PolicyKey, ms.PlanesInteract)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewDefaultLogger(logger.ModeSilence)
	}
	bs := &ms.BoardSetting
	rows, cols := bs.Rows, bs.Columns
	hint := bs.ChunkHint
	if hint == 0 {
		hint = cols
	}
	b := &Board{
		modeName: ms.ModeName,
		modeID:   ms.ModeID,
		ms:       ms,
		session:  session,
		grid:     grid.NewGrid(rows, cols),
		pol:      pol,
		chunks:   buf.NewChunkList(hint),
		drops:    buf.NewChunkList(max(ms.RewardSetting.MaxBlocks, 1)),
		rows:     make([]int, 0, rows),
		order:    make([]int, 0, hint),
		Result:   buf.NewTickResult(),
		log:      log.With("mode", ms.ModeName),
	}
	b.lock = lock.New(pol, rows, cols).
		SetChunkHint(hint).
		SetRestOnFloor(bs.RestOnFloor()).
		SetFragmentTypes(bs.FragmentTypes).
		Finalize()
	b.place = place.New(pol, rows, cols, ms.RewardSetting.PlaceSettings(ms.PlanesInteract))
	b.place.SetPseudorandom(session)
	return b, nil
}

func (b *Board) ModeName() string           { return b.modeName }
func (b *Board) ModeID() spec.ModeID        { return b.modeID }
func (b *Board) Setting() *spec.ModeSetting { return b.ms }
func (b *Board) Session() uint32            { return b.session }

// Grid 盤面本身；呼叫端只能讀取
func (b *Board) Grid() *grid.Grid { return b.grid }

// Fits piece 放在 off 是否不與盤面重疊
func (b *Board) Fits(p *grid.Piece, off grid.Offset) bool {
	return !ops.Collides(b.grid, p, off, b.ms.PlanesInteract)
}

// Land 讓 piece 從 off 落下並鎖定，接著消列並連鎖解鎖，直到盤面穩定。
//
// off 與盤面重疊時回傳 ErrMergeConflict 且盤面不變。鎖定衝突時盤面可能已部分合併（不回滾）。
func (b *Board) Land(p *grid.Piece, off grid.Offset) (*buf.TickResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := b.begin(buf.ActionLand)
	if ops.Collides(b.grid, p, off, b.ms.PlanesInteract) {
		return r, errs.WrapWithExtra(errs.ErrMergeConflict, "land", fmt.Sprintf("piece overlaps grid at (%d,%d)", off.X, off.Y))
	}
	off = ops.Fall(b.lock, b.grid, p, off)
	if err := b.lock.Lock(b.grid, p, off); err != nil {
		r.Conflict = true
		return r, err
	}
	r.Locked = true
	err := b.cascade()
	r.Cells = b.grid.Count()
	return r, err
}

// ClearColumn 強制解鎖 col 欄 row 以上（不含 row）的方塊，然後連鎖解鎖。row = -1 代表整欄。
// 與該欄相連的形狀整塊解鎖，大小記在 Result.ChunkSizes。
//
// fall = false 時解鎖的 chunk 直接移除；fall = true 時 chunk 留在原位重新落下鎖定（擾動）。
func (b *Board) ClearColumn(row int, col int, fall bool) (*buf.TickResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := b.begin(buf.ActionClearColumn)
	b.chunks.Reset()
	if _, err := b.lock.UnlockColumnAbove(b.grid, row, col, b.chunks); err != nil {
		return r, err
	}
	r.RecordChunks(b.chunks, 0)
	if fall {
		if _, err := b.settle(b.chunks); err != nil {
			return r, err
		}
	}
	err := b.cascade()
	r.Cells = b.grid.Count()
	return r, err
}

// Reward 依 kinds 的順序以放置引擎投下方塊，方塊落下鎖定後連鎖解鎖。
func (b *Board) Reward(kinds []place.Kind, minRow int) (*buf.TickResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := b.begin(buf.ActionReward)
	b.drops.Reset()
	n, err := b.place.Drop(b.grid, kinds, minRow, b.drops)
	if err != nil {
		return r, err
	}
	r.Placed = n
	if _, err := b.settle(b.drops); err != nil {
		return r, err
	}
	err = b.cascade()
	r.Cells = b.grid.Count()
	return r, err
}

// SetSession 更換放置引擎的 session seed
func (b *Board) SetSession(seed uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session = seed
	b.place.SetPseudorandom(seed)
}

// Apply 執行一個已解析的請求：清空盤面、還原起始盤面、套用 session，再做動作。
// 未指定 kinds 的 reward 使用模式設定。
func (b *Board) Apply(t *dto.Tick) (*buf.TickResult, error) {
	b.Reset()
	if len(t.Start) > 0 {
		if err := b.Restore(t.Start); err != nil {
			return nil, err
		}
	}
	if t.HasSession {
		b.SetSession(t.Session)
	}
	switch t.Action {
	case buf.ActionLand:
		p := t.Piece
		if p == nil {
			ps, ok := b.ms.Piece(t.PieceName)
			if !ok {
				return nil, errs.Warnf("mode %s: unknown piece %q", b.modeName, t.PieceName)
			}
			p = ps.Proto
		}
		return b.Land(p, t.Offset)
	case buf.ActionClearColumn:
		return b.ClearColumn(t.Row, t.Col, t.Fall)
	case buf.ActionReward:
		kinds := t.Kinds
		if len(kinds) == 0 {
			kinds = b.ms.RewardSetting.Kinds
		}
		return b.Reward(kinds, t.MinRow)
	}
	return nil, errs.Warnf("unknown action %q", t.Action)
}

// Candidates 目前盤面上某種分類器的候選（回傳複本）
func (b *Board) Candidates(kind place.Kind) []place.Candidate {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]place.Candidate(nil), b.place.Candidates(b.grid, kind)...)
}

// Reset 清空盤面，tick 歸零
func (b *Board) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.grid.Clear()
	b.tick = 0
}

// topOut 出生位置已被佔用：記一次 TopOut 並清空盤面（tick 繼續累計）
func (b *Board) topOut() *buf.TickResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := b.begin(buf.ActionLand)
	r.TopOut = true
	b.grid.Clear()
	return r
}

// Snapshot 盤面 snapshot frame（corefmt.EncodeGrid）
func (b *Board) Snapshot() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return corefmt.EncodeGrid(b.grid)
}

// Restore 由 snapshot frame 還原盤面；尺寸必須與模式一致，失敗時盤面不變。
func (b *Board) Restore(src []byte) error {
	g, err := corefmt.DecodeGrid(src)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if g.Rows() != b.grid.Rows() || g.Cols() != b.grid.Cols() {
		return errs.WrapWithExtra(errs.ErrOutOfRange, "restore board",
			fmt.Sprintf("snapshot %dx%d, board %dx%d", g.Rows(), g.Cols(), b.grid.Rows(), b.grid.Cols()))
	}
	b.grid.CopyFrom(g)
	return nil
}

func (b *Board) begin(action string) *buf.TickResult {
	b.tick++
	r := b.Result
	r.Reset()
	r.Tick = b.tick
	r.Action = action
	return r
}

// cascade 消列 -> unlock -> 落下鎖定，重複直到沒有消列也沒有脫離的方塊。
// 脫離的方塊全部原地鎖回（沒有移動）時也視為穩定。
func (b *Board) cascade() error {
	r := b.Result
	limit := 4*b.grid.Rows() + 4
	for round := 0; round < limit; round++ {
		b.rows = ops.FullRows(b.grid, b.rows)
		cleared := ops.ClearRows(b.grid, b.rows)
		r.RowsCleared += cleared

		b.chunks.Reset()
		n, err := b.lock.Unlock(b.grid, b.chunks)
		if err != nil {
			return err
		}
		if cleared == 0 && n == 0 {
			return nil
		}
		r.RecordChunks(b.chunks, 0)
		moved, err := b.settle(b.chunks)
		if err != nil {
			return err
		}
		r.Cascades++
		b.log.Debug("cascade", "tick", b.tick, "round", round, "cleared", cleared, "chunks", n, "moved", moved)
		if cleared == 0 && !moved {
			return nil
		}
	}
	b.log.Warn("cascade did not settle", "tick", b.tick, "limit", limit)
	return nil
}

// settle 讓清單中所有 chunk 落下並鎖定，由低到高處理。
//
// 尚未處理的 chunk 先印回盤面當作障礙，輪到自己時再抹除、落下、鎖定；
// 被上方 chunk 暫時擋住的方塊會在下一輪 cascade 的 unlock 再次脫離。
func (b *Board) settle(l *buf.ChunkList) (bool, error) {
	b.order = b.order[:0]
	for i := 0; i < l.Len(); i++ {
		b.order = append(b.order, i)
		b.stamp(l.Piece(i), l.Offset(i), false)
	}
	sort.SliceStable(b.order, func(x, y int) bool {
		return l.Offset(b.order[x]).Y < l.Offset(b.order[y]).Y
	})
	moved := false
	for _, i := range b.order {
		p, start := l.Piece(i), l.Offset(i)
		b.stamp(p, start, true)
		off := ops.Fall(b.lock, b.grid, p, start)
		if off != start {
			moved = true
		}
		l.SetOffset(i, off)
		if err := b.lock.Lock(b.grid, p, off); err != nil {
			b.Result.Conflict = true
			return moved, err
		}
	}
	return moved, nil
}

// stamp 把 piece 的格子原樣寫回盤面（erase 時改為清空），不經過規則合併
func (b *Board) stamp(p *grid.Piece, off grid.Offset, erase bool) {
	pb := p.Blocks
	for r := p.LL.Y; r < p.UR.Y; r++ {
		for c := p.LL.X; c < p.UR.X; c++ {
			gr, gc := p.GridPos(off, r, c)
			if !b.grid.InBounds(gr, gc) {
				continue
			}
			for qp := 0; qp < grid.Planes; qp++ {
				v := pb.At(qp, r, c)
				if v == qo.NO {
					continue
				}
				if erase {
					v = qo.NO
				}
				b.grid.Set(qp, gr, gc, v)
			}
		}
	}
}
