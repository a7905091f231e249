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
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/quantro/corefmt"
	"github.com/zintix-labs/quantro/dto"
	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/sdk/grid"
	"github.com/zintix-labs/quantro/sdk/place"
	"github.com/zintix-labs/quantro/sdk/policy"
	"github.com/zintix-labs/quantro/spec"
)

// BoardPool 專門管理「某一個模式」的所有 Board 實例。
// 它透過兩個通道管理 Board 生命週期：
//  1. pool：健康且可用的 Board，供 Tick() 借出 / 歸還。
//  2. broken：運作中發生 panic 或 fatal error 的 Board，送往此通道以便後續檢查或丟棄。
//
// 壞掉的 Board 會立即補上一個新的以維持容量。每次請求都會先清空盤面再還原請求帶入的盤面，
// 所以 Board 之間沒有殘留狀態。
type BoardPool struct {
	modeName      string
	modeID        spec.ModeID
	ms            *spec.ModeSetting
	reg           *policy.Registry
	log           *slog.Logger
	seedMaker     *seedMaker
	pool          chan *Board   // 可用 Board
	broken        chan *Board   // 壞掉的 Board
	done          chan struct{} // 關閉訊號：關閉後不再允許借出/歸還/補充
	closeOnce     sync.Once
	poolsize      int
	rebuild       atomic.Int32 // 補充次數
	inflight      atomic.Int32 // 使用中
	panics        atomic.Int32 // panic 次數
	fatals        atomic.Int32 // fatal 次數（Board 狀態不可信）
	closeReason   atomic.Value // string: 關閉原因
	closeInflight atomic.Int32 // 關閉當下 inflight（快照）
	closeAvail    atomic.Int32 // 關閉當下 pool 可用數量（快照）
	closeBroken   atomic.Int32 // 關閉當下 broken backlog（快照）
}

// newBoardPool 建立指定模式的 Board 池，預先建立 n 個 Board（至少 1 個）
func newBoardPool(n int, ms *spec.ModeSetting, reg *policy.Registry, seed int64, log *slog.Logger) (*BoardPool, error) {
	n = max(1, n)
	p := &BoardPool{
		modeName:  ms.ModeName,
		modeID:    ms.ModeID,
		ms:        ms,
		reg:       reg,
		log:       log,
		seedMaker: newSeedMaker(seed),
		pool:      make(chan *Board, n),
		broken:    make(chan *Board, 100),
		done:      make(chan struct{}),
		poolsize:  n,
	}
	p.closeReason.Store("")
	p.closeInflight.Store(-1)
	p.closeAvail.Store(-1)
	p.closeBroken.Store(-1)

	for i := 0; i < n; i++ {
		b, err := p.build()
		if err != nil {
			return nil, err
		}
		p.pool <- b
	}
	return p, nil
}

func (p *BoardPool) build() (*Board, error) {
	return newBoard(p.ms, p.reg, uint32(p.seedMaker.next()), p.log)
}

// Close 進入關閉狀態：之後所有 Tick() 直接回 error
func (p *BoardPool) Close() {
	p.closeWithReason("closed")
}

// Closed 回報池是否已進入關閉狀態。
func (p *BoardPool) Closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// closeWithReason 進入關閉狀態並記錄原因（reason 只會被寫入一次）
func (p *BoardPool) closeWithReason(reason string) {
	p.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		p.closeReason.Store(reason)
		p.closeInflight.Store(p.inflight.Load())
		p.closeAvail.Store(int32(len(p.pool)))
		p.closeBroken.Store(int32(len(p.broken)))
		close(p.done)
	})
}

// isFatalErr 錯誤本身宣告 Fatal 才代表 Board 狀態不可信；請求類錯誤（Warn）不淘汰 Board
func isFatalErr(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := errs.AsErr(err); ok {
		return e.ErrLv == errs.Fatal
	}
	return false
}

// with 借出一個 Board 執行 fn，並依結果歸還或送修
func (p *BoardPool) with(ctx context.Context, fn func(b *Board) error) (err error) {
	var b *Board
	select {
	case <-p.done:
		return errs.NewFatal("board pool closed: " + p.ClosedReason())
	case <-ctx.Done():
		return errs.NewWarn("tick canceled/timeout: " + ctx.Err().Error())
	case b = <-p.pool:
		p.inflight.Add(1)
	}
	if b == nil {
		return errs.NewFatal("board pool got nil board")
	}

	defer func() {
		p.inflight.Add(-1)
		isPanic := false
		if r := recover(); r != nil {
			isPanic = true
			p.panics.Add(1)
			err = errs.NewFatal(fmt.Sprintf("board %s panic : %v", p.modeName, r))
		}
		if p.Closed() {
			return
		}
		if isPanic || isFatalErr(err) {
			if !isPanic {
				p.fatals.Add(1)
			}
			select {
			case p.broken <- b:
			default:
				p.closeWithReason("overwhelmed_by_failures")
				return
			}
			nb, buildErr := p.build()
			p.rebuild.Add(1)
			if buildErr != nil {
				err = errs.NewFatal(fmt.Sprintf("board %s can not build", p.modeName))
				p.closeWithReason("rebuild_failed")
				return
			}
			select {
			case <-p.done:
			case p.pool <- nb:
			}
			return
		}
		select {
		case <-p.done:
		case p.pool <- b:
		}
	}()

	return fn(b)
}

// Tick 執行一次盤面動作並轉成 DTO
func (p *BoardPool) Tick(ctx context.Context, req *dto.TickRequest) (res dto.TickResult, err error) {
	if err := p.valid(req.ModeName, req.ModeID); err != nil {
		return res, err
	}
	t, err := req.Parse()
	if err != nil {
		return res, err
	}
	err = p.with(ctx, func(b *Board) error {
		tr, err := b.Apply(t)
		if err != nil {
			return err
		}
		start := t.Start
		if len(start) == 0 {
			start = emptySnapshot(b)
		}
		res, err = dto.NewTickResultDTO(p.modeName, p.modeID, b.Session(), tr, b.Grid(), start, b.Snapshot())
		return err
	})
	return res, err
}

// Candidates 在請求帶入的盤面上列出某種分類器的候選
func (p *BoardPool) Candidates(ctx context.Context, req *dto.TickRequest, kind place.Kind) (res dto.CandidatesResult, err error) {
	if err := p.valid(req.ModeName, req.ModeID); err != nil {
		return res, err
	}
	start, err := req.StartBoard()
	if err != nil {
		return res, err
	}
	err = p.with(ctx, func(b *Board) error {
		b.Reset()
		if len(start) > 0 {
			if err := b.Restore(start); err != nil {
				return err
			}
		}
		res = dto.CandidatesResult{ModeID: p.modeID, Kind: kind.String(), Candidates: b.Candidates(kind)}
		return nil
	})
	return res, err
}

func (p *BoardPool) valid(name string, id spec.ModeID) error {
	if id != p.modeID {
		return errs.NewWarn("mode id is not matched")
	}
	if name != "" && name != p.modeName {
		return errs.NewWarn("mode name is not matched")
	}
	return nil
}

func (p *BoardPool) PoolSize() int { return p.poolsize }

func (p *BoardPool) Inflight() int { return int(p.inflight.Load()) }

func (p *BoardPool) ReBuild() int { return int(p.rebuild.Load()) }

func (p *BoardPool) ClosedReason() string {
	if v := p.closeReason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// BoardPoolMetrics 拉取式觀測快照；Available / BrokenBacklog 來自 len(chan)，高併發下是近似值。
// Close* 欄位只在關閉時寫入一次，-1 表示尚未關閉。
type BoardPoolMetrics struct {
	ModeName string      `json:"mode_name"`
	ModeID   spec.ModeID `json:"mode_id"`

	PoolSize      int    `json:"pool_size"`
	Available     int    `json:"available"`
	Inflight      int    `json:"inflight"`
	BrokenBacklog int    `json:"broken_backlog"`
	Rebuild       int    `json:"rebuild"`
	Panics        int    `json:"panics"`
	Fatals        int    `json:"fatals"`
	Closed        bool   `json:"closed"`
	CloseReason   string `json:"close_reason"`

	CloseInflight int `json:"close_inflight"`
	CloseAvail    int `json:"close_avail"`
	CloseBroken   int `json:"close_broken"`
}

func (p *BoardPool) Metrics() BoardPoolMetrics {
	return BoardPoolMetrics{
		ModeName:      p.modeName,
		ModeID:        p.modeID,
		PoolSize:      p.poolsize,
		Available:     len(p.pool),
		Inflight:      int(p.inflight.Load()),
		BrokenBacklog: len(p.broken),
		Rebuild:       int(p.rebuild.Load()),
		Panics:        int(p.panics.Load()),
		Fatals:        int(p.fatals.Load()),
		Closed:        p.Closed(),
		CloseReason:   p.ClosedReason(),
		CloseInflight: int(p.closeInflight.Load()),
		CloseAvail:    int(p.closeAvail.Load()),
		CloseBroken:   int(p.closeBroken.Load()),
	}
}

// emptySnapshot 與 b 同尺寸的空盤面 frame
func emptySnapshot(b *Board) []byte {
	return corefmt.EncodeGrid(grid.NewGrid(b.Grid().Rows(), b.Grid().Cols()))
}
