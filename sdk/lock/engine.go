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

// Package lock 鎖定判斷、合併，以及以 flood-fill 找出失去支撐的方塊群（chunk）。
//
// 引擎是單一 goroutine 物件：所有暫存緩衝都掛在引擎上並跨呼叫重用，
// 熱路徑不配置記憶體（容量不足時才成長），也不做任何 I/O。
package lock

import (
	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/sdk/buf"
	"github.com/zintix-labs/quantro/sdk/grid"
	"github.com/zintix-labs/quantro/sdk/policy"
)

// Engine 鎖定引擎
type Engine interface {
	// ShouldLock piece 放在 off 時是否應鎖定（呼叫端保證目前不碰撞）
	ShouldLock(g *grid.Grid, p *grid.Piece, off grid.Offset) bool
	// Lock 將 piece 合併進 grid；遇到第一個衝突即回傳（grid 可能已部分合併）
	Lock(g *grid.Grid, p *grid.Piece, off grid.Offset) error
	// Unlock 整盤掃描：把所有未接地的方塊群搬進 out，回傳新增的 chunk 數
	Unlock(g *grid.Grid, out *buf.ChunkList) (int, error)
	// UnlockPiece 把一個已脫離的 piece 拆成連通的子塊（複製，不修改 piece）
	UnlockPiece(p *grid.Piece, off grid.Offset, out *buf.ChunkList) (int, error)
	// UnlockColumnAbove 強制解鎖 col 欄中 row 以上的所有方塊
	UnlockColumnAbove(g *grid.Grid, row int, col int, out *buf.ChunkList) (int, error)
}

// FloodEngine 以 flood-fill 實作 Engine。
//
// 設定順序：New -> Set* -> Finalize -> 使用。
// Finalize 之前呼叫任何引擎方法、或 Finalize 之後呼叫 Set*，都會 panic（程式錯誤，不可恢復）。
type FloodEngine struct {
	pol        policy.Policy
	rows, cols int
	finalized  bool

	chunkHint  int
	restFloor  bool
	fragmented bool

	fb floodBuf
}

// New 建立引擎。rows/cols 是盤面尺寸，只在建構時讀取一次。
func New(pol policy.Policy, rows int, cols int) *FloodEngine {
	if pol == nil {
		panic(errs.WrapWithExtra(errs.ErrNotFinalized, "lock engine", "nil policy"))
	}
	return &FloodEngine{
		pol:       pol,
		rows:      rows,
		cols:      cols,
		chunkHint: 16,
		restFloor: true,
	}
}

// SetChunkHint 預期單次 unlock 產生的 chunk 數（只影響預先配置）
func (e *FloodEngine) SetChunkHint(n int) *FloodEngine {
	e.mustConfigurable()
	if n > 0 {
		e.chunkHint = n
	}
	return e
}

// SetRestOnFloor 地板列是否作為接地種子（預設 true）。
// 關閉時只有 NeverSeparatesFromSupport 的方塊會靜止，用於「整盤重新落下」的特殊事件。
func (e *FloodEngine) SetRestOnFloor(v bool) *FloodEngine {
	e.mustConfigurable()
	e.restFloor = v
	return e
}

// SetFragmentTypes 為 true 時所有 chunk 一律標成 ptype.SpecialFragment，不推導單格型別
func (e *FloodEngine) SetFragmentTypes(v bool) *FloodEngine {
	e.mustConfigurable()
	e.fragmented = v
	return e
}

// Finalize 完成設定並配置暫存緩衝。只能呼叫一次。
func (e *FloodEngine) Finalize() *FloodEngine {
	e.mustConfigurable()
	if e.rows < 0 || e.cols < 0 {
		panic(errs.WrapWithExtra(errs.ErrOutOfRange, "lock engine", "negative dimension"))
	}
	e.fb.resetSizes(e.rows, e.cols)
	e.finalized = true
	return e
}

// Finalized 是否已完成設定
func (e *FloodEngine) Finalized() bool { return e.finalized }

// Policy 引擎使用的互動規則
func (e *FloodEngine) Policy() policy.Policy { return e.pol }

func (e *FloodEngine) mustConfigurable() {
	if e.finalized {
		panic(errs.ErrFinalized)
	}
}

func (e *FloodEngine) mustFinalized() {
	if !e.finalized {
		panic(errs.ErrNotFinalized)
	}
}

func (e *FloodEngine) checkDims(g *grid.Grid) error {
	if g.Rows() != e.rows || g.Cols() != e.cols {
		return errs.WrapWithExtra(errs.ErrOutOfRange, "lock engine", "grid dimension does not match engine")
	}
	return nil
}

var _ Engine = (*FloodEngine)(nil)
