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
	"bytes"
	"fmt"

	"github.com/zintix-labs/quantro/corefmt"
	"github.com/zintix-labs/quantro/errs"
)

const maxReplayTicks = 100_000

// Replay 決定性檢查器：兩台相同 seed 的 Machine 同步執行，每一步比對盤面與 PRNG 狀態。
//
// 單線（不併發），重點在可審計、可重現。任何一步不一致代表核心物理依賴了
// seed 與盤面以外的狀態（map 迭代順序、共用 buffer 等）。
type Replay struct {
	a    *Machine
	b    *Machine
	seed int64
}

// ReplayReport 一次檢查的結果；Before / After 是盤面 snapshot frame（base64url）
type ReplayReport struct {
	Seed     int64  `json:"seed"`
	Ticks    int    `json:"ticks"`
	Before   string `json:"before_b64u"`
	After    string `json:"after_b64u"`
	Rows     int    `json:"rows_cleared"`
	Cascades int    `json:"cascades"`
	TopOuts  int    `json:"top_outs"`
}

// Run 同步執行 ticks 步；不一致時回傳 Fatal 錯誤，Extra 附上兩邊狀態的 hex
func (r *Replay) Run(ticks int) (ReplayReport, error) {
	if ticks < 1 || ticks > maxReplayTicks {
		return ReplayReport{}, errs.Warnf("ticks must be between 1 and %d", maxReplayTicks)
	}
	rep := ReplayReport{Seed: r.seed, Ticks: ticks}
	before, _, err := r.a.Snapshot()
	if err != nil {
		return rep, err
	}
	rep.Before = corefmt.EncodeBase64URL(before)

	for t := 1; t <= ticks; t++ {
		ra, err := r.a.Step()
		if err != nil {
			return rep, errs.Wrap(err, fmt.Sprintf("replay tick %d", t))
		}
		rep.Rows += ra.RowsCleared
		rep.Cascades += ra.Cascades
		if ra.TopOut {
			rep.TopOuts++
		}
		if _, err := r.b.Step(); err != nil {
			return rep, errs.Wrap(err, fmt.Sprintf("replay tick %d", t))
		}
		if err := r.compare(t); err != nil {
			return rep, err
		}
	}
	after, _, err := r.a.Snapshot()
	if err != nil {
		return rep, err
	}
	rep.After = corefmt.EncodeBase64URL(after)
	return rep, nil
}

// RestoreRun 兩台 Machine 都從 before64 盤面開始（PRNG 狀態不變）再執行 Run
func (r *Replay) RestoreRun(before64 string, ticks int) (ReplayReport, error) {
	snap, err := corefmt.DecodeBase64URL(before64)
	if err != nil {
		return ReplayReport{}, errs.Wrap(err, "decode board snapshot failed")
	}
	if err := r.a.Board().Restore(snap); err != nil {
		return ReplayReport{}, errs.Wrap(err, "restore board failed")
	}
	if err := r.b.Board().Restore(snap); err != nil {
		return ReplayReport{}, errs.Wrap(err, "restore board failed")
	}
	return r.Run(ticks)
}

func (r *Replay) compare(tick int) error {
	ga, ca, err := r.a.Snapshot()
	if err != nil {
		return err
	}
	gb, cb, err := r.b.Snapshot()
	if err != nil {
		return err
	}
	if !bytes.Equal(ga, gb) {
		return errs.NewWithExtra(errs.Fatal, fmt.Sprintf("replay diverged at tick %d: board", tick),
			fmt.Sprintf("a=%s b=%s", corefmt.EncodeHex(ga), corefmt.EncodeHex(gb)))
	}
	if !bytes.Equal(ca, cb) {
		return errs.NewWithExtra(errs.Fatal, fmt.Sprintf("replay diverged at tick %d: prng", tick),
			fmt.Sprintf("a=%s b=%s", corefmt.EncodeHex(ca), corefmt.EncodeHex(cb)))
	}
	return nil
}
