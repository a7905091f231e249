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
// Package ops 盤面上的小工具：整列消除、碰撞、落下。
package ops

import "github.com/zintix-labs/quantro/sdk/grid"

// FullRows 回傳所有兩個平面都填滿的列（由下往上），寫入 dst
func FullRows(g *grid.Grid, dst []int) []int {
	dst = dst[:0]
	for r := 0; r < g.Rows(); r++ {
		if g.RowFull(r) {
			dst = append(dst, r)
		}
	}
	return dst
}

// ClearRows 消除 rows 指定的列（需由下往上排序），上方的列往下補，頂端補空列。
// 回傳實際消除的列數；超出範圍或重複的列忽略。
//
//   - g: 盤面 (原地修改)
//   - rows: 消除的列
func ClearRows(g *grid.Grid, rows []int) int {
	if len(rows) == 0 {
		return 0
	}
	cols := g.Cols()
	wp, k, n := 0, 0, 0 // write row, rows 讀取位置, 消除數
	for r := 0; r < g.Rows(); r++ {
		for k < len(rows) && rows[k] < r {
			k++
		}
		if k < len(rows) && rows[k] == r {
			n++
			continue
		}
		if wp != r {
			for qp := 0; qp < grid.Planes; qp++ {
				p := g.Plane(qp)
				copy(p[wp*cols:(wp+1)*cols], p[r*cols:(r+1)*cols])
			}
		}
		wp++
	}
	// 上方剩餘空間補空
	for qp := 0; qp < grid.Planes; qp++ {
		clear(g.Plane(qp)[wp*cols:])
	}
	return n
}
