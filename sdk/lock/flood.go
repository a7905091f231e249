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

package lock

import (
	"github.com/zintix-labs/quantro/sdk/grid"
	"github.com/zintix-labs/quantro/sdk/qo"
)

// window flood 允許走到的範圍，[rLo,rHi) x [cLo,cHi)
type window struct {
	rLo, rHi int
	cLo, cHi int
}

func fullWindow(g *grid.Grid) window {
	return window{rLo: 0, rHi: g.Rows(), cLo: 0, cHi: g.Cols()}
}

// floodBuf flood 需要的暫存，跨呼叫重用。
//
// 索引一律是扁平的 qp*size + r*cols + c。
type floodBuf struct {
	// 顯式堆疊（不遞迴）
	stack []int
	// 目前 component 的所有格子
	comp []int

	// mark 記錄格子在「本次呼叫」是否已被標記（接地集合或任何 component）
	// 配合 epoch 使用，避免每次清零
	mark  []uint32
	epoch uint32
}

// resetSizes 只調整容量，不清內容
func (b *floodBuf) resetSizes(rows int, cols int) {
	n := grid.Planes * rows * cols
	if cap(b.mark) < n {
		b.mark = make([]uint32, n)
	} else {
		b.mark = b.mark[:n]
	}
	// 每個格子最多入堆疊一次，容量 n 即足夠；append 仍保留成長的可能
	if cap(b.stack) < n {
		b.stack = make([]int, 0, n)
	}
	if cap(b.comp) < n {
		b.comp = make([]int, 0, n)
	}
}

// nextEpoch 開始一次新的呼叫；epoch 溢位才清一次
func (b *floodBuf) nextEpoch() {
	b.epoch++
	if b.epoch == 0 {
		clear(b.mark[:cap(b.mark)])
		b.epoch = 1
	}
}

func (b *floodBuf) marked(idx int) bool { return b.mark[idx] == b.epoch }

func (b *floodBuf) push(idx int) {
	b.mark[idx] = b.epoch
	b.stack = append(b.stack, idx)
	b.comp = append(b.comp, idx)
}

// markedPair 來源位置 pos 在各平面的方向碼，只保留已標記的格子
func (b *floodBuf) markedPair(planes *[grid.Planes][]qo.Code, pos int, size int) [grid.Planes]qo.Code {
	var pair [grid.Planes]qo.Code
	for qp := 0; qp < grid.Planes; qp++ {
		if b.mark[qp*size+pos] == b.epoch {
			pair[qp] = planes[qp][pos]
		}
	}
	return pair
}

// flood 從 seed 出發，把相連的格子標記並 append 到 comp。
//
// 鄰居（左、右、下、同格另一平面、上）必須在 window 內、未標記、非空，且規則判定兩者不分離。
// 向上多一條規則：目標若與所有方向分離，但被來源位置已標記的方塊遮蔽，仍然相連。
func (e *FloodEngine) flood(g *grid.Grid, seed int, w window) {
	b := &e.fb
	pol := e.pol
	cols := g.Cols()
	size := g.Size()
	planes := [grid.Planes][]qo.Code{g.Plane(0), g.Plane(1)}
	ep := b.epoch

	b.stack = b.stack[:0]
	b.push(seed)

	for len(b.stack) > 0 {
		cur := b.stack[len(b.stack)-1]
		b.stack = b.stack[:len(b.stack)-1]

		qp := cur / size
		pos := cur - qp*size
		r, c := pos/cols, pos%cols
		plane := planes[qp]
		base := qp * size
		a := plane[pos]

		// 左
		if c > w.cLo {
			n := pos - 1
			if t := plane[n]; t != qo.NO && b.mark[base+n] != ep && !pol.SeparatesFromWhenSide(t, a) {
				b.push(base + n)
			}
		}
		// 右
		if c+1 < w.cHi {
			n := pos + 1
			if t := plane[n]; t != qo.NO && b.mark[base+n] != ep && !pol.SeparatesFromWhenSide(t, a) {
				b.push(base + n)
			}
		}
		// 下
		if r > w.rLo {
			n := pos - cols
			if t := plane[n]; t != qo.NO && b.mark[base+n] != ep && !pol.SeparatesFromWhenBelow(t, a) {
				b.push(base + n)
			}
		}
		// 同格另一平面
		for oq := 0; oq < grid.Planes; oq++ {
			if oq == qp {
				continue
			}
			n := oq*size + pos
			if t := planes[oq][pos]; t != qo.NO && b.mark[n] != ep && !pol.SeparatesFromWhenQuantum(t, a) {
				b.push(n)
			}
		}
		// 上
		if r+1 < w.rHi {
			n := pos + cols
			if t := plane[n]; t != qo.NO && b.mark[base+n] != ep {
				if !pol.SeparatesFromWhenAbove(t, a) ||
					(pol.SeparatesFromAllSides(t) && pol.OccludedBy(t, b.markedPair(&planes, pos, size))) {
					b.push(base + n)
				}
			}
		}
	}
}
