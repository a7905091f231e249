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

// Package quantro 提供雙平面方塊引擎的「組裝入口（assembler）」與「運行入口（runtime entry）」。
//
// Quantro 把三個必需的地基組裝在一起，並提供建立 Board / Machine / Simulator 的入口：
//  1. Catalog：模式目錄，定義有哪些模式、各自對應的設定檔名稱（ConfigName）。
//  2. policy.Registry：規則註冊表，依設定檔的 policy_key 建出方向碼規則。
//  3. PRNGFactory：亂數工廠，模擬與回放的可重現性由它保證。
//
// 設定檔來源一律以 fs.FS 注入，Quantro 本身不綁定檔案路徑。
//
// 典型使用情境：
//   - 後端服務（HTTP）：BuildRuntime 建出每個模式的 BoardPool，請求帶入盤面、回傳動作後的盤面。
//   - 模擬器（sim）：NewSimulator 建立多台 Machine 大量跑盤面，統計消列與連鎖。
//   - 回放檢查（replay）：NewReplay 以同一個 seed 跑兩台 Machine，逐步比對盤面。
package quantro

import (
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/zintix-labs/quantro/catalog"
	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/sdk/core"
	"github.com/zintix-labs/quantro/sdk/policy"
	"github.com/zintix-labs/quantro/server/logger"
	"github.com/zintix-labs/quantro/spec"
)

// Configs 把一或多個設定檔來源（go:embed、os.DirFS 等）打包成 New() 需要的參數。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

// Policies 把一或多個規則註冊表打包成 New() 需要的參數；重複的 Key 在 New() 直接失敗。
func Policies(regs ...*policy.Registry) []*policy.Registry {
	return regs
}

// Quantro 組裝器與運行入口。
//
// 使用流程分成兩階段：
//   - 註冊階段：建立 catalog、合併 registries、檢查重複與缺漏。
//   - 執行階段：Freeze 之後，依模式 ID 建立 Board / Machine / Simulator / Runtime。
//
// Catalog 的 ID 唯一性只保證在同一個 Quantro instance 內。
type Quantro struct {
	cat *catalog.Catalog
	reg *policy.Registry
	cf  core.PRNGFactory
	log *slog.Logger
	sum []catalog.Summary
}

// New 建立一個 Quantro instance（註冊階段）。
//
// cf 不能為 nil；cfgs 與 regs 至少各一個。
func New(cf core.PRNGFactory, cfgs []fs.FS, regs []*policy.Registry) (*Quantro, error) {
	if cf == nil {
		return nil, errs.NewFatal("prng factory required")
	}
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	if len(regs) == 0 {
		return nil, errs.NewFatal("policy registry required")
	}
	cata, err := catalog.New(cfgs...)
	if err != nil {
		return nil, err
	}
	reg, err := policy.MergeRegistry(regs...)
	if err != nil {
		return nil, err
	}
	return &Quantro{
		cat: cata,
		reg: reg,
		cf:  cf,
		log: logger.NewDefaultLogger(logger.ModeSilence),
	}, nil
}

// NewAuto 註冊所有設定檔並 Freeze，直接進入執行階段。
func NewAuto(cf core.PRNGFactory, cfgs []fs.FS, regs []*policy.Registry) (*Quantro, error) {
	q, err := New(cf, cfgs, regs)
	if err != nil {
		return nil, err
	}
	if err := q.RegisterAll(); err != nil {
		return nil, err
	}
	q.Freeze()
	return q, nil
}

// SetLogger 之後建立的 Board 使用 l；nil 表示靜音
func (q *Quantro) SetLogger(l *slog.Logger) {
	if l == nil {
		l = logger.NewDefaultLogger(logger.ModeSilence)
	}
	q.log = l
}

func (q *Quantro) Register(ents ...catalog.Entry) error {
	return q.cat.Register(ents...)
}

// RegisterAll 解析所有設定檔，以檔內的 mode_id / mode_name 一次註冊。
// 任何檔案讀取、解析失敗或 policy_key 未註冊都直接回傳 error，catalog 不變。
func (q *Quantro) RegisterAll() error {
	found, err := q.cat.Scan()
	if err != nil {
		return err
	}
	if len(found) == 0 {
		return errs.NewFatal("no config files found to register")
	}
	ents := make([]catalog.Entry, len(found))
	for i, f := range found {
		if !q.reg.IsExist(f.Setting.PolicyKey) {
			return errs.NewFatal(fmt.Sprintf("policy not registered: policy_key=%s (config=%s)", f.Setting.PolicyKey, f.ConfigName))
		}
		ents[i] = f.Entry
	}
	return q.cat.Register(ents...)
}

func (q *Quantro) Freeze() {
	q.cat.Freeze()
}

func (q *Quantro) EntryByID(id spec.ModeID) (catalog.Entry, bool) {
	return q.cat.GetByID(id)
}

func (q *Quantro) EntryByName(name string) (catalog.Entry, bool) {
	return q.cat.GetByName(name)
}

func (q *Quantro) IDs() []spec.ModeID {
	return q.cat.IDs()
}

func (q *Quantro) All() []catalog.Entry {
	return q.cat.All()
}

// Summary 所有模式的摘要（依 ID 排序），第一次呼叫後快取
func (q *Quantro) Summary() ([]catalog.Summary, error) {
	if !q.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	if q.sum != nil {
		return q.sum, nil
	}
	ids := q.cat.IDs()
	cs := make([]catalog.Summary, 0, len(ids))
	for _, id := range ids {
		ms, err := q.cat.ModeSettingByID(id)
		if err != nil {
			return nil, err
		}
		cs = append(cs, catalog.NewSummary(ms))
	}
	q.sum = cs
	return q.sum, nil
}

// setting 執行階段才允許取設定
func (q *Quantro) setting(id spec.ModeID) (*spec.ModeSetting, error) {
	if !q.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	return q.cat.ModeSettingByID(id)
}

// NewBoard 建立一個空盤面；session 是放置引擎的 seed
func (q *Quantro) NewBoard(id spec.ModeID, session uint32) (*Board, error) {
	ms, err := q.setting(id)
	if err != nil {
		return nil, err
	}
	return newBoard(ms, q.reg, session, q.log)
}

// NewMachine 以 crypto/rand seed 建立 Machine
func (q *Quantro) NewMachine(id spec.ModeID) (*Machine, error) {
	ms, err := q.setting(id)
	if err != nil {
		return nil, err
	}
	return newMachine(ms, q.reg, q.cf, q.log)
}

// NewMachineWithSeed 同一份設定 + 同一個 seed 產生同一串動作
func (q *Quantro) NewMachineWithSeed(id spec.ModeID, seed int64) (*Machine, error) {
	ms, err := q.setting(id)
	if err != nil {
		return nil, err
	}
	return newMachineWithSeed(ms, q.reg, q.cf, seed, q.log)
}

func (q *Quantro) NewSimulator(id spec.ModeID) (*Simulator, error) {
	ms, err := q.setting(id)
	if err != nil {
		return nil, err
	}
	return newSimulator(ms, q.reg, q.cf, q.log)
}

func (q *Quantro) NewSimulatorWithSeed(id spec.ModeID, seed int64) (*Simulator, error) {
	ms, err := q.setting(id)
	if err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(ms, q.reg, q.cf, seed, q.log)
}

// NewSimulatorByYAML 以請求帶入的設定檔模擬；mode_id / mode_name 必須對應到已註冊的模式
func (q *Quantro) NewSimulatorByYAML(raw []byte, seed int64) (*Simulator, error) {
	if !q.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	ms, err := spec.GetModeSettingByYAML(raw)
	if err != nil {
		return nil, errs.Wrap(err, "parse mode setting failed")
	}
	if err := q.validCfg(ms); err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(ms, q.reg, q.cf, seed, q.log)
}

func (q *Quantro) NewSimulatorByJSON(raw []byte, seed int64) (*Simulator, error) {
	if !q.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	ms, err := spec.GetModeSettingByJSON(raw)
	if err != nil {
		return nil, errs.Wrap(err, "parse mode setting failed")
	}
	if err := q.validCfg(ms); err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(ms, q.reg, q.cf, seed, q.log)
}

func (q *Quantro) validCfg(ms *spec.ModeSetting) error {
	ent, ok := q.cat.GetByID(ms.ModeID)
	if !ok {
		return errs.NewWarn("mode id not exist")
	}
	ent2, ok := q.cat.GetByName(ms.ModeName)
	if !ok {
		return errs.NewWarn("mode name not exist")
	}
	if ent.ModeID != ent2.ModeID {
		return errs.NewWarn("mode id is not matched mode name")
	}
	if !q.reg.IsExist(ms.PolicyKey) {
		return errs.NewWarn("policy not exist")
	}
	return nil
}

// NewReplay 建立回放檢查器：兩台同 seed 的 Machine，建立時先確認起點一致
func (q *Quantro) NewReplay(id spec.ModeID, seed int64) (*Replay, error) {
	a, err := q.NewMachineWithSeed(id, seed)
	if err != nil {
		return nil, err
	}
	b, err := q.NewMachineWithSeed(id, seed)
	if err != nil {
		return nil, err
	}
	r := &Replay{a: a, b: b, seed: seed}
	if err := r.compare(0); err != nil {
		return nil, err
	}
	return r, nil
}

// BuildRuntime Freeze catalog，並為每個模式建一個 BoardPool（fail-fast）
func (q *Quantro) BuildRuntime(poolSize int) (*Runtime, error) {
	q.Freeze()

	ids := q.cat.IDs()
	if len(ids) == 0 {
		return nil, errs.NewFatal("no modes registered")
	}
	rt := &Runtime{
		q:        q,
		pools:    make(map[spec.ModeID]*BoardPool, len(ids)),
		ids:      ids,
		done:     make(chan struct{}),
		poolSize: max(1, poolSize),
	}
	rt.reason.Store("")

	for _, id := range ids {
		ms, err := q.cat.ModeSettingByID(id)
		if err != nil {
			return nil, err
		}
		seed, err := core.RandomSeed()
		if err != nil {
			return nil, err
		}
		bp, err := newBoardPool(rt.poolSize, ms, q.reg, seed, q.log)
		if err != nil {
			return nil, err
		}
		rt.pools[id] = bp
	}
	return rt, nil
}
