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

// Package grid 提供雙平面方塊陣列（Grid）、方塊組（Piece）與位移（Offset）的幾何模型。
//
// 座標慣例：
//   - row 0 是地板，row 越大越高。
//   - 每個平面都是 rows*cols 的扁平陣列，索引 r*cols + c（與 sdk/ops 的盤面一致）。
//   - 所有平面的 rows/cols 永遠相同。
package grid

import "github.com/zintix-labs/quantro/sdk/qo"

// Planes 平面數量
const Planes = 2

// Grid 雙平面稠密方塊陣列
type Grid struct {
	rows, cols int
	cells      [Planes][]qo.Code
}

// NewGrid 建立 rows x cols 的空白 Grid
func NewGrid(rows int, cols int) *Grid {
	g := &Grid{}
	g.Resize(rows, cols)
	return g
}

func (g *Grid) Rows() int { return g.rows }
func (g *Grid) Cols() int { return g.cols }

// Size 單一平面的格數
func (g *Grid) Size() int { return g.rows * g.cols }

// Index 將 (r,c) 轉為平面內的扁平索引
func (g *Grid) Index(r, c int) int { return r*g.cols + c }

func (g *Grid) At(qp, r, c int) qo.Code { return g.cells[qp][r*g.cols+c] }

func (g *Grid) Set(qp, r, c int, v qo.Code) { g.cells[qp][r*g.cols+c] = v }

// Plane 回傳平面的底層切片（請勿保留引用超過本次呼叫）
func (g *Grid) Plane(qp int) []qo.Code { return g.cells[qp] }

func (g *Grid) InBounds(r, c int) bool {
	return r >= 0 && c >= 0 && r < g.rows && c < g.cols
}

// Occupied 任一平面非空
func (g *Grid) Occupied(r, c int) bool {
	i := r*g.cols + c
	return g.cells[0][i] != qo.NO || g.cells[1][i] != qo.NO
}

// Resize 調整尺寸並清空內容；容量足夠時不重新配置。
func (g *Grid) Resize(rows int, cols int) {
	if rows < 0 || cols < 0 {
		panic("grid: negative dimension")
	}
	n := rows * cols
	for qp := 0; qp < Planes; qp++ {
		if cap(g.cells[qp]) < n {
			g.cells[qp] = make([]qo.Code, n)
			continue
		}
		g.cells[qp] = g.cells[qp][:n]
		clear(g.cells[qp])
	}
	g.rows, g.cols = rows, cols
}

// Clear 清空內容，尺寸不變
func (g *Grid) Clear() {
	for qp := 0; qp < Planes; qp++ {
		clear(g.cells[qp])
	}
}

// Count 兩個平面的非空格總數（ST 在兩個平面各算一次）
func (g *Grid) Count() int {
	n := 0
	for qp := 0; qp < Planes; qp++ {
		for _, v := range g.cells[qp] {
			if v != qo.NO {
				n++
			}
		}
	}
	return n
}

// CopyFrom 深拷貝 src（尺寸跟隨 src）
func (g *Grid) CopyFrom(src *Grid) {
	g.Resize(src.rows, src.cols)
	for qp := 0; qp < Planes; qp++ {
		copy(g.cells[qp], src.cells[qp])
	}
}

// Clone 回傳獨立的新 Grid
func (g *Grid) Clone() *Grid {
	c := &Grid{}
	c.CopyFrom(g)
	return c
}

func (g *Grid) Equal(o *Grid) bool {
	if g.rows != o.rows || g.cols != o.cols {
		return false
	}
	for qp := 0; qp < Planes; qp++ {
		a, b := g.cells[qp], o.cells[qp]
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
	}
	return true
}

// Heights 計算平面 qp 每一欄的高度（最高非空格 row + 1，空欄為 0），寫入 dst 並回傳。
func (g *Grid) Heights(qp int, dst []int) []int {
	if cap(dst) < g.cols {
		dst = make([]int, g.cols)
	}
	dst = dst[:g.cols]
	p := g.cells[qp]
	for c := 0; c < g.cols; c++ {
		h := 0
		for r := g.rows - 1; r >= 0; r-- {
			if p[r*g.cols+c] != qo.NO {
				h = r + 1
				break
			}
		}
		dst[c] = h
	}
	return dst
}

// RowFull 整列在兩個平面都被填滿
func (g *Grid) RowFull(r int) bool {
	base := r * g.cols
	for c := 0; c < g.cols; c++ {
		if g.cells[0][base+c] == qo.NO || g.cells[1][base+c] == qo.NO {
			return false
		}
	}
	return g.cols > 0
}
