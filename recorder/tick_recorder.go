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
package recorder

import (
	"fmt"

	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/sdk/buf"
	"github.com/zintix-labs/quantro/spec"
	"github.com/zintix-labs/quantro/stats"
)

// TickRecorder 模擬紀錄員
//
// TickRecorder 負責紀錄每次盤面動作的結果，並透過Done輸出統計報表
type TickRecorder struct {
	ModeName string
	ModeID   spec.ModeID
	Basic    *BasicRecord
	Dist     *DistRecord
}

// BasicRecord 基本計數
type BasicRecord struct {
	Ticks       int
	Locks       int
	Conflicts   int
	TopOuts     int
	RowsCleared int
	Cascades    int
	MaxCascade  int
	Chunks      int
	ChunkCells  int
	Rewards     int
	Placed      int
}

// DistRecord 精確直方圖（索引即值），Done 時才彙整成區間
type DistRecord struct {
	SizeHist    []int
	CascadeHist []int
}

func NewTickRecorder(name string, id spec.ModeID) *TickRecorder {
	return &TickRecorder{
		ModeName: name,
		ModeID:   id,
		Basic:    new(BasicRecord),
		Dist: &DistRecord{
			SizeHist:    make([]int, 8),
			CascadeHist: make([]int, 4),
		},
	}
}

// MergeTickRecorder 合併多個 goroutine 的紀錄（同一模式）
func MergeTickRecorder(r []*TickRecorder) (*TickRecorder, error) {
	if len(r) == 0 {
		return nil, errs.NewFatal("merge tick record err : empty recorder list")
	}
	r0 := r[0]
	s := NewTickRecorder(r0.ModeName, r0.ModeID)
	for _, v := range r {
		if v.ModeName != r0.ModeName || v.ModeID != r0.ModeID {
			return s, errs.NewFatal(fmt.Sprintf("merge tick record err : different mode %s(%d)", v.ModeName, v.ModeID))
		}
		b := v.Basic
		s.Basic.Ticks += b.Ticks
		s.Basic.Locks += b.Locks
		s.Basic.Conflicts += b.Conflicts
		s.Basic.TopOuts += b.TopOuts
		s.Basic.RowsCleared += b.RowsCleared
		s.Basic.Cascades += b.Cascades
		s.Basic.MaxCascade = max(s.Basic.MaxCascade, b.MaxCascade)
		s.Basic.Chunks += b.Chunks
		s.Basic.ChunkCells += b.ChunkCells
		s.Basic.Rewards += b.Rewards
		s.Basic.Placed += b.Placed

		// 整合Dist
		s.Dist.SizeHist = addHist(s.Dist.SizeHist, v.Dist.SizeHist)
		s.Dist.CascadeHist = addHist(s.Dist.CascadeHist, v.Dist.CascadeHist)
	}
	return s, nil
}

// Record 以單次 TickResult 更新統計
func (s *TickRecorder) Record(tr *buf.TickResult) {
	b := s.Basic
	b.Ticks++
	if tr.Locked {
		b.Locks++
	}
	if tr.Conflict {
		b.Conflicts++
	}
	if tr.TopOut {
		b.TopOuts++
	}
	if tr.Action == buf.ActionReward {
		b.Rewards++
	}
	b.RowsCleared += tr.RowsCleared
	b.Cascades += tr.Cascades
	b.MaxCascade = max(b.MaxCascade, tr.Cascades)
	b.Placed += tr.Placed
	b.Chunks += tr.Chunks()

	d := s.Dist
	for _, n := range tr.ChunkSizes {
		b.ChunkCells += n
		d.SizeHist = bump(d.SizeHist, n)
	}
	d.CascadeHist = bump(d.CascadeHist, tr.Cascades)
}

func (s *TickRecorder) Done() *stats.StatReport {
	b := s.Basic
	report := &stats.StatReport{
		Summary: &stats.SummaryReport{
			ModeName:    s.ModeName,
			ModeID:      s.ModeID,
			Ticks:       b.Ticks,
			Locks:       b.Locks,
			Conflicts:   b.Conflicts,
			TopOuts:     b.TopOuts,
			RowsCleared: b.RowsCleared,
			Cascades:    b.Cascades,
			MaxCascade:  b.MaxCascade,
			Chunks:      b.Chunks,
			ChunkCells:  b.ChunkCells,
			Rewards:     b.Rewards,
			Placed:      b.Placed,
		},
		Dist: &stats.DistReport{
			SizeHist:    append([]int(nil), s.Dist.SizeHist...),
			CascadeHist: append([]int(nil), s.Dist.CascadeHist...),
		},
	}
	report.Done()
	return report
}

// bump hist[v]++，必要時擴張
func bump(hist []int, v int) []int {
	if v < 0 {
		return hist
	}
	for len(hist) <= v {
		hist = append(hist, 0)
	}
	hist[v]++
	return hist
}

func addHist(dst []int, src []int) []int {
	for len(dst) < len(src) {
		dst = append(dst, 0)
	}
	for i, n := range src {
		dst[i] += n
	}
	return dst
}
