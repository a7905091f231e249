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
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/recorder"
	"github.com/zintix-labs/quantro/sdk/core"
	"github.com/zintix-labs/quantro/sdk/policy"
	"github.com/zintix-labs/quantro/spec"
	"github.com/zintix-labs/quantro/stats"
)

const capPrepare int = 100

// Simulator 以多台 Machine 平行跑盤面，紀錄消列、連鎖與 chunk 大小的統計。
type Simulator struct {
	ModeName  string                   // 模式名稱
	ModeID    spec.ModeID              // 模式 ID
	ms        *spec.ModeSetting        // 模式設定
	reg       *policy.Registry         // 規則註冊表
	cf        core.PRNGFactory         // 亂數生成器
	log       *slog.Logger             // Board 的 logger
	initSeed  int64                    // 初始下的種子
	seedmaker *seedMaker               // 種子生成器
	mBuf      []*Machine               // 併發執行的 Machine
	rBuf      []*recorder.TickRecorder // 併發紀錄員
}

func newSimulator(ms *spec.ModeSetting, reg *policy.Registry, cf core.PRNGFactory, log *slog.Logger) (*Simulator, error) {
	seed, err := core.RandomSeed()
	if err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(ms, reg, cf, seed, log)
}

func newSimulatorWithSeed(ms *spec.ModeSetting, reg *policy.Registry, cf core.PRNGFactory, seed int64, log *slog.Logger) (*Simulator, error) {
	s := &Simulator{
		ModeName:  ms.ModeName,
		ModeID:    ms.ModeID,
		ms:        ms,
		reg:       reg,
		cf:        cf,
		log:       log,
		initSeed:  seed,
		seedmaker: newSeedMaker(seed),
		mBuf:      make([]*Machine, 1, capPrepare),
		rBuf:      make([]*recorder.TickRecorder, 0, capPrepare),
	}
	m, err := newMachineWithSeed(ms, reg, cf, s.initSeed, log)
	if err != nil {
		return nil, err
	}
	s.mBuf[0] = m
	return s, nil
}

func (s *Simulator) InitSeed() int64 { return s.initSeed }

// Run 單線模擬：以一台 Machine 連續跑 ticks 步，回傳統計結果與用時
func (s *Simulator) Run(ticks int, showpb bool) (*stats.StatReport, time.Duration, error) {
	defer s.reset()
	if ticks < 1 {
		return nil, 0, errs.NewWarn("ticks must > 0")
	}
	r := recorder.NewTickRecorder(s.ModeName, s.ModeID)
	s.rBuf = append(s.rBuf, r)
	m := s.mBuf[0]

	bar := pb.StartNew(ticks)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < ticks; i++ {
		tr, err := m.Step()
		if err != nil {
			bar.Finish()
			return nil, 0, errs.WrapWithExtra(err, "sim", s.ModeName)
		}
		r.Record(tr)
		bar.Increment()
	}
	used := time.Since(bar.StartTime())
	bar.Finish()
	return r.Done(), used, nil
}

// RunMP 平行執行 mp 台 Machine，總計 ticks*mp 步，合併統計結果後回傳統計結果與用時。
//
// 第 i 台 Machine 的 seed 是 seedMaker 依序產生的第 i 個值，結果與排程無關。
func (s *Simulator) RunMP(ticks int, mp int, showpb bool) (*stats.StatReport, time.Duration, error) {
	defer s.reset()
	if mp <= 0 {
		return nil, 0, errs.NewWarn("workers must > 0")
	}
	if ticks < 1 {
		return nil, 0, errs.NewWarn("ticks must > 0")
	}
	for len(s.mBuf) < mp {
		m, err := newMachineWithSeed(s.ms, s.reg, s.cf, s.seedmaker.next(), s.log)
		if err != nil {
			return nil, 0, err
		}
		s.mBuf = append(s.mBuf, m)
	}
	for len(s.rBuf) < mp {
		s.rBuf = append(s.rBuf, recorder.NewTickRecorder(s.ModeName, s.ModeID))
	}

	errc := make([]error, mp)
	wg := new(sync.WaitGroup)
	wg.Add(mp)
	bar := pb.StartNew(ticks * mp)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < mp; i++ {
		go func(i int) {
			defer wg.Done()
			m := s.mBuf[i]
			st := s.rBuf[i]
			for t := 0; t < ticks; t++ {
				tr, err := m.Step()
				if err != nil {
					errc[i] = err
					return
				}
				st.Record(tr)
				bar.Increment()
			}
		}(i)
	}
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()
	for _, err := range errc {
		if err != nil {
			return nil, used, errs.WrapWithExtra(err, "sim", s.ModeName)
		}
	}

	st, err := recorder.MergeTickRecorder(s.rBuf[:mp])
	if err != nil {
		return nil, used, err
	}
	return st.Done(), used, nil
}

func (s *Simulator) reset() {
	s.rBuf = s.rBuf[:0]
}

const mask63 = uint64(1<<63) - 1

type seedMaker struct {
	state atomic.Uint64 // always in [0, 2^63)
}

func newSeedMaker(seed int64) *seedMaker {
	s := &seedMaker{}
	s.state.Store(uint64(seed) & mask63)
	return s
}

// next state 走全週期（不重複），再用可逆 mix63 打散。
//
// 可能被多個 goroutine 同時呼叫，state 以 CAS 迴圈推進，每次呼叫取得唯一的下一個 state。
func (s *seedMaker) next() int64 {
	for {
		old := s.state.Load()
		next := (old*6364136223846793005 + 1442695040888963407) & mask63 // full-period LCG mod 2^63
		if s.state.CompareAndSwap(old, next) {
			return int64(mix63(next))
		}
	}
}

// mix63 只用可逆的 bit 操作 + 乘奇數（mod 2^63）
func mix63(x uint64) uint64 {
	x &= mask63
	x ^= x >> 30
	x = (x * 0xBF58476D1CE4E5B9) & mask63
	x ^= x >> 27
	x = (x * 0x94D049BB133111EB) & mask63
	x ^= x >> 31
	return x & mask63
}
