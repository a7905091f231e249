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
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/quantro/dto"
	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/sdk/place"
	"github.com/zintix-labs/quantro/spec"
)

// Runtime 線上服務的資料面：每個模式一個 BoardPool
type Runtime struct {
	q *Quantro

	pools map[spec.ModeID]*BoardPool
	ids   []spec.ModeID // 固定順序，用於觀測/列舉

	// lifecycle
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	reason    atomic.Value // string

	poolSize int
}

func (rt *Runtime) check(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return errs.NewWarn("tick canceled/timeout: " + ctx.Err().Error())
	case <-rt.done:
		rt.closed.Store(true)
		return errs.NewFatal("runtime closed: " + rt.ClosedReason())
	default:
	}
	return nil
}

func (rt *Runtime) pool(id spec.ModeID) (*BoardPool, error) {
	p, ok := rt.pools[id]
	if !ok {
		return nil, errs.NewWarn("mode id not found")
	}
	return p, nil
}

// Tick 交給對應模式的 pool 執行一次盤面動作
func (rt *Runtime) Tick(ctx context.Context, req *dto.TickRequest) (dto.TickResult, error) {
	if err := rt.check(ctx); err != nil {
		return dto.TickResult{}, err
	}
	p, err := rt.pool(req.ModeID)
	if err != nil {
		return dto.TickResult{}, err
	}
	return p.Tick(ctx, req)
}

// Candidates 在請求帶入的盤面上列出候選
func (rt *Runtime) Candidates(ctx context.Context, req *dto.TickRequest, kind place.Kind) (dto.CandidatesResult, error) {
	if err := rt.check(ctx); err != nil {
		return dto.CandidatesResult{}, err
	}
	p, err := rt.pool(req.ModeID)
	if err != nil {
		return dto.CandidatesResult{}, err
	}
	return p.Candidates(ctx, req, kind)
}

// Metrics 依 ids 順序回傳每個 pool 的快照
func (rt *Runtime) Metrics() []BoardPoolMetrics {
	out := make([]BoardPoolMetrics, 0, len(rt.ids))
	for _, id := range rt.ids {
		out = append(out, rt.pools[id].Metrics())
	}
	return out
}

func (rt *Runtime) PoolSize() int { return rt.poolSize }

// Close 關閉 runtime 與所有 pool，可重複呼叫
func (rt *Runtime) Close() {
	rt.closeWithReason("closed")
}

func (rt *Runtime) closeWithReason(reason string) {
	rt.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		rt.reason.Store(reason)
		rt.closed.Store(true)
		close(rt.done)
		for _, id := range rt.ids {
			rt.pools[id].closeWithReason(reason)
		}
	})
}

func (rt *Runtime) Closed() bool {
	return rt.closed.Load()
}

func (rt *Runtime) ClosedReason() string {
	if v := rt.reason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
