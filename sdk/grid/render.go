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

package grid

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Render 把 Grid 畫成兩平面並排的文字圖（最高列在上），供日誌與測試失敗訊息使用。
//
//	   q0    q1
//	2  ..a.  ..b.
//	1  .aa.  .tt.
//	0  aaaa  bbbb
func (g *Grid) Render() string {
	rowW := len(strconv.Itoa(max(g.rows-1, 0)))
	colW := max(g.cols, 2)
	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", rowW+2))
	for qp := 0; qp < Planes; qp++ {
		sb.WriteString(runewidth.FillRight("q"+strconv.Itoa(qp), colW))
		if qp+1 < Planes {
			sb.WriteString("  ")
		}
	}
	sb.WriteByte('\n')
	for r := g.rows - 1; r >= 0; r-- {
		sb.WriteString(runewidth.FillLeft(strconv.Itoa(r), rowW))
		sb.WriteString("  ")
		for qp := 0; qp < Planes; qp++ {
			line := make([]byte, 0, g.cols)
			for c := 0; c < g.cols; c++ {
				line = append(line, g.At(qp, r, c).Byte())
			}
			sb.WriteString(runewidth.FillRight(string(line), colW))
			if qp+1 < Planes {
				sb.WriteString("  ")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Render 畫出方塊陣列並附上邊界資訊
func (p *Piece) Render() string {
	var sb strings.Builder
	sb.WriteString("type=")
	sb.WriteString(strconv.Itoa(p.Type))
	sb.WriteString(" ll=(")
	sb.WriteString(strconv.Itoa(p.LL.X))
	sb.WriteByte(',')
	sb.WriteString(strconv.Itoa(p.LL.Y))
	sb.WriteString(") ur=(")
	sb.WriteString(strconv.Itoa(p.UR.X))
	sb.WriteByte(',')
	sb.WriteString(strconv.Itoa(p.UR.Y))
	sb.WriteString(")\n")
	if p.Blocks != nil {
		sb.WriteString(p.Blocks.Render())
	}
	return sb.String()
}
