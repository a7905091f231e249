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
	"errors"
	"log/slog"

	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/sdk/buf"
	"github.com/zintix-labs/quantro/sdk/core"
	"github.com/zintix-labs/quantro/sdk/grid"
	"github.com/zintix-labs/quantro/sdk/place"
	"github.com/zintix-labs/quantro/sdk/policy"
	"github.com/zintix-labs/quantro/sdk/sampler"
	"github.com/zintix-labs/quantro/spec"
)

// Machine 自動駕駛一個 Board：抽方塊、挑欄位、落下，定期投下獎勵方塊。
//
// 模擬器與回放檢查只操作 Machine；同一個 seed 產生同一串動作與同一個盤面序列。
//
// 並發語意：
//   - Machine 不是 goroutine-safe；並行請建立多台（Simulator.RunMP）。
//   - Step 回傳的 TickResult 是 Board 內部 buffer，下一次 Step 會覆寫。
type Machine struct {
	board    *Board
	core     *core.Core
	bag      *sampler.Bag
	protos   map[int]*grid.Piece
	every    int
	kinds    []place.Kind
	steps    int
	initseed int64
}

// newMachine 以隨機 seed 建立 Machine
func newMachine(ms *spec.ModeSetting, reg *policy.Registry, cf core.PRNGFactory, log *slog.Logger) (*Machine, error) {
	seed, err := core.RandomSeed()
	if err != nil {
		return nil, err
	}
	return newMachineWithSeed(ms, reg, cf, seed, log)
}

// newMachineWithSeed 以指定 seed 建立 Machine。
//
// 建立流程：
//  1. core.New(cf.New(seed)) 建出 PRNG
//  2. 由 PRNG 取 session seed 建 Board（放置引擎的偽亂數只依賴它）
//  3. 依 PieceSettings 的權重建抽方塊的 Bag
func newMachineWithSeed(ms *spec.ModeSetting, reg *policy.Registry, cf core.PRNGFactory, seed int64, log *slog.Logger) (*Machine, error) {
	c := core.New(cf.New(seed))
	b, err := newBoard(ms, reg, c.Session(), log)
	if err != nil {
		return nil, err
	}
	types := make([]int, 0, len(ms.PieceSettings))
	weights := make([]int, 0, len(ms.PieceSettings))
	protos := make(map[int]*grid.Piece, len(ms.PieceSettings))
	for i := range ms.PieceSettings {
		ps := &ms.PieceSettings[i]
		types = append(types, ps.Type)
		weights = append(weights, ps.Weight)
		// 同型別碼的方塊共用第一個出現的形狀，權重相加
		if _, ok := protos[ps.Type]; !ok {
			protos[ps.Type] = ps.Proto
		}
	}
	bag, err := sampler.NewBag(types, weights)
	if err != nil {
		return nil, errs.Wrap(err, ms.ModeName)
	}
	m := &Machine{
		board:    b,
		core:     c,
		bag:      bag,
		protos:   protos,
		initseed: seed,
	}
	if rs := &ms.RewardSetting; rs.Enabled() {
		m.every = rs.Every
		m.kinds = rs.Kinds
	}
	return m, nil
}

func (m *Machine) Board() *Board   { return m.board }
func (m *Machine) InitSeed() int64 { return m.initseed }

// Step 執行一個 tick。
//
// 每 RewardSetting.Every 步是一次 Reward，其餘是抽一個方塊從頂端隨機欄位落下。
// 出生位置被佔用時盤面重置並記為 TopOut。鎖定衝突只記在 TickResult，不回傳錯誤。
func (m *Machine) Step() (*buf.TickResult, error) {
	m.steps++
	var (
		r   *buf.TickResult
		err error
	)
	if m.every > 0 && m.steps%m.every == 0 {
		r, err = m.board.Reward(m.kinds, 0)
	} else {
		r, err = m.land()
	}
	if err != nil && errors.Is(err, errs.ErrMergeConflict) {
		return r, nil
	}
	return r, err
}

func (m *Machine) land() (*buf.TickResult, error) {
	p := m.protos[m.bag.Draw(m.core)]
	g := m.board.Grid()
	w, h := p.UR.X-p.LL.X, p.UR.Y-p.LL.Y
	col := m.core.SpawnColumn(g.Cols(), w)
	off := grid.Offset{X: col, Y: g.Rows() - h}
	if col < 0 || !m.board.Fits(p, off) {
		return m.board.topOut(), nil
	}
	return m.board.Land(p, off)
}

// Snapshot 盤面 + PRNG 狀態；回放時兩台 Machine 逐步比對
func (m *Machine) Snapshot() ([]byte, []byte, error) {
	cs, err := m.core.Snapshot()
	if err != nil {
		return nil, nil, err
	}
	return m.board.Snapshot(), cs, nil
}
