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

package place

import (
	"strings"

	"github.com/zintix-labs/quantro/sdk/grid"
)

// Kind 欄位分類器
type Kind uint8

const (
	Valley Kind = iota
	Junction
	Peak
	Corner

	KindCount int = iota
)

var kindNames = [KindCount]string{"valley", "junction", "peak", "corner"}

func (k Kind) String() string {
	if int(k) >= KindCount {
		return "unknown"
	}
	return kindNames[k]
}

// ParseKind 設定檔使用（不分大小寫）
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range kindNames {
		if n == s {
			return Kind(i), true
		}
	}
	return 0, false
}

// Candidate 一個被分類器選中的 (欄, 平面) 與其優先權
type Candidate struct {
	Col      int `json:"col"`
	Plane    int `json:"plane"`
	Priority int `json:"priority"`
}

// classifier 在高度圖上做欄位分類；qual 是 valley 用的暫存，跨呼叫重用。
type classifier struct {
	h        *[grid.Planes][]int
	interact bool
	cols     int
	qual     []bool
}

func (k *classifier) load(h *[grid.Planes][]int, interact bool) {
	k.h = h
	k.interact = interact
	k.cols = len(h[0])
	if cap(k.qual) < k.cols {
		k.qual = make([]bool, k.cols)
	}
	k.qual = k.qual[:k.cols]
}

// dom 兩個平面中較高者
func (k *classifier) dom(c int) int { return max(k.h[0][c], k.h[1][c]) }

// eff 有效高度：平面互相影響時取較高者，否則取自己平面
func (k *classifier) eff(qp int, c int) int {
	if k.interact {
		return k.dom(c)
	}
	return k.h[qp][c]
}

func (k *classifier) classify(kind Kind, dst []Candidate) []Candidate {
	for qp := 0; qp < grid.Planes; qp++ {
		switch kind {
		case Valley:
			dst = k.valleys(qp, dst)
		case Junction:
			dst = k.junctions(qp, dst)
		case Peak:
			dst = k.peaks(qp, dst)
		case Corner:
			dst = k.corners(qp, dst)
		}
	}
	return dst
}

// valleys 局部最低的欄（可跨多個等高欄）。
//
//   - 左右鄰都不低於自己才合格，盤面邊緣視為無限高的牆。
//   - 等高鄰居本身不合格時，自己也不合格（向左右傳播）。
//   - 所有欄都合格時，一個都不算。
//
// 優先權 = 2*max(局部深度, 峽谷深度-寬度) - 寬度；寬的淺谷可以是 0 或負數。
func (k *classifier) valleys(qp int, dst []Candidate) []Candidate {
	cols := k.cols
	if cols == 0 {
		return dst
	}
	q := k.qual
	for c := 0; c < cols; c++ {
		e := k.eff(qp, c)
		q[c] = (c == 0 || k.eff(qp, c-1) >= e) && (c == cols-1 || k.eff(qp, c+1) >= e)
	}
	for c := 1; c < cols; c++ {
		if q[c] && !q[c-1] && k.eff(qp, c-1) == k.eff(qp, c) {
			q[c] = false
		}
	}
	for c := cols - 2; c >= 0; c-- {
		if q[c] && !q[c+1] && k.eff(qp, c+1) == k.eff(qp, c) {
			q[c] = false
		}
	}
	all := true
	for _, v := range q {
		if !v {
			all = false
			break
		}
	}
	if all {
		return dst
	}

	for c := 0; c < cols; {
		if !q[c] {
			c++
			continue
		}
		e := k.eff(qp, c)
		j := c + 1
		for j < cols && q[j] && k.eff(qp, j) == e {
			j++
		}
		w := j - c

		// 局部深度：兩側邊界較低者；牆以另一側代替
		left, right := -1, -1
		if c > 0 {
			left = k.eff(qp, c-1)
		}
		if j < cols {
			right = k.eff(qp, j)
		}
		local := sideMin(left, right) - e

		// 峽谷深度：從邊界往外掃，只要高度不下降就繼續
		canyonL, canyonR := -1, -1
		if c > 0 {
			canyonL = left
			for i := c - 2; i >= 0 && k.eff(qp, i) >= k.eff(qp, i+1); i-- {
				canyonL = k.eff(qp, i)
			}
		}
		if j < cols {
			canyonR = right
			for i := j + 1; i < cols && k.eff(qp, i) >= k.eff(qp, i-1); i++ {
				canyonR = k.eff(qp, i)
			}
		}
		canyon := sideMin(canyonL, canyonR) - e

		prio := 2*max(local, canyon-w) - w
		for x := c; x < j; x++ {
			dst = append(dst, Candidate{Col: x, Plane: qp, Priority: prio})
		}
		c = j
	}
	return dst
}

// sideMin 兩側較低者；-1 代表牆（不存在）
func sideMin(a, b int) int {
	switch {
	case a < 0:
		return b
	case b < 0:
		return a
	}
	return min(a, b)
}

// junctions 本平面（需為較高的平面，平手皆可）與另一平面在左右鄰的接觸不對稱：
// 至少一側只有其中一個平面比自己高，且兩個平面都至少在一側比自己高。
//
// 優先權 = 1000*不對稱側數 + |h0-h1|。
func (k *classifier) junctions(qp int, dst []Candidate) []Candidate {
	oq := 1 - qp
	for c := 0; c < k.cols; c++ {
		if k.h[qp][c] < k.h[oq][c] {
			continue
		}
		y := k.eff(qp, c)
		asym := 0
		thisAny, otherAny := false, false
		for _, n := range [2]int{c - 1, c + 1} {
			if n < 0 || n >= k.cols {
				continue
			}
			t := k.h[qp][n] > y
			o := k.h[oq][n] > y
			if t != o {
				asym++
			}
			thisAny = thisAny || t
			otherAny = otherAny || o
		}
		if asym > 0 && thisAny && otherAny {
			diff := k.h[0][c] - k.h[1][c]
			if diff < 0 {
				diff = -diff
			}
			dst = append(dst, Candidate{Col: c, Plane: qp, Priority: 1000*asym + diff})
		}
	}
	return dst
}

// peaks 兩個平面的左右鄰、以及同欄另一平面都不高於本欄較高者，且至少一個嚴格較低。
// 只在較高的平面上成為候選（平手兩個平面都算）。
//
// 優先權 = 所有存在鄰居的高度差總和。
func (k *classifier) peaks(qp int, dst []Candidate) []Candidate {
	oq := 1 - qp
	for c := 0; c < k.cols; c++ {
		if k.h[qp][c] < k.h[oq][c] {
			continue
		}
		d := k.dom(c)
		ok, lower, prio := true, false, 0
		check := func(v int) {
			if v > d {
				ok = false
				return
			}
			if v < d {
				lower = true
			}
			prio += d - v
		}
		for _, n := range [2]int{c - 1, c + 1} {
			if n < 0 || n >= k.cols {
				continue
			}
			check(k.h[0][n])
			check(k.h[1][n])
		}
		check(k.h[oq][c])
		if ok && lower {
			dst = append(dst, Candidate{Col: c, Plane: qp, Priority: prio})
		}
	}
	return dst
}

// corners 恰好一側（不是兩側）有比自己高的鄰居；盤面邊緣不算。
// 該側兩個平面都比自己高時優先權 2，否則 1。
func (k *classifier) corners(qp int, dst []Candidate) []Candidate {
	for c := 0; c < k.cols; c++ {
		y := k.eff(qp, c)
		count, weight := 0, 0
		for _, n := range [2]int{c - 1, c + 1} {
			if n < 0 || n >= k.cols {
				continue
			}
			b0 := k.h[0][n] > y
			b1 := k.h[1][n] > y
			if !b0 && !b1 {
				continue
			}
			count++
			weight = 1
			if b0 && b1 {
				weight = 2
			}
		}
		if count == 1 {
			dst = append(dst, Candidate{Col: c, Plane: qp, Priority: weight})
		}
	}
	return dst
}

// Classify 純函式版本：直接在高度圖上分類，結果 append 到 dst。
func Classify(kind Kind, heights *[grid.Planes][]int, interact bool, dst []Candidate) []Candidate {
	var k classifier
	k.load(heights, interact)
	return k.classify(kind, dst)
}
