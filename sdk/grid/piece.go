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
	"math"

	"github.com/zintix-labs/quantro/sdk/qo"
)

// Offset 整數位移。X 為欄（column），Y 為列（row）。純值型別。
type Offset struct {
	X int
	Y int
}

func (o Offset) Add(d Offset) Offset { return Offset{X: o.X + d.X, Y: o.Y + d.Y} }
func (o Offset) Sub(d Offset) Offset { return Offset{X: o.X - d.X, Y: o.Y - d.Y} }

// Piece 一組方塊：自有的方塊陣列 + 邊界框。
//
// 邊界框：
//   - LL（含）是緊的左下角：左欄與底列一定有方塊。
//   - UR（不含）只是外框上限。
//   - 所有非空格都落在 [LL, UR) 之內。
//
// Piece 放在 Offset o 時，格子 (r,c) 對應到 Grid 的 (o.Y + r - LL.Y, o.X + c - LL.X)；
// 也就是說 Offset 是邊界框左下角在 Grid 上的位置。
//
// Type / Rotation / DefaultRotation 對幾何計算不透明，只隨資料搬運。
type Piece struct {
	Type            int
	Rotation        int
	DefaultRotation int
	Blocks          *Grid
	LL              Offset
	UR              Offset
}

// NewPiece 建立 rows x cols 的空 Piece，邊界為整個陣列
func NewPiece(rows int, cols int) *Piece {
	p := &Piece{Blocks: NewGrid(rows, cols)}
	p.SetBounds()
	return p
}

// SetBounds 以整個陣列範圍作為邊界
func (p *Piece) SetBounds() {
	p.LL = Offset{}
	p.UR = Offset{X: p.Blocks.Cols(), Y: p.Blocks.Rows()}
}

// SetBoundsTo 明確指定邊界
func (p *Piece) SetBoundsTo(ll Offset, ur Offset) {
	p.LL = ll
	p.UR = ur
}

// TightenBounds 從四邊往內收縮，直到每一條邊界列/欄都含有方塊；永不擴張。
//
// 回傳 LL 的位移量，呼叫端把它加到成對的 Offset 上即可維持絕對位置不變。
// 空 Piece 收縮成 UR == LL，位移為 0。
func (p *Piece) TightenBounds() Offset {
	old := p.LL
	// UR 只是外框上限，先夾回陣列範圍（只會縮小）
	p.UR.X = min(p.UR.X, p.Blocks.Cols())
	p.UR.Y = min(p.UR.Y, p.Blocks.Rows())

	for p.LL.X < p.UR.X && p.colEmpty(p.LL.X) {
		p.LL.X++
	}
	if p.LL.X >= p.UR.X {
		p.LL = old
		p.UR = old
		return Offset{}
	}
	for p.colEmpty(p.UR.X - 1) {
		p.UR.X--
	}
	for p.rowEmpty(p.LL.Y) {
		p.LL.Y++
	}
	for p.rowEmpty(p.UR.Y - 1) {
		p.UR.Y--
	}
	return p.LL.Sub(old)
}

func (p *Piece) colEmpty(c int) bool {
	for r := p.LL.Y; r < p.UR.Y; r++ {
		if p.Blocks.Occupied(r, c) {
			return false
		}
	}
	return true
}

func (p *Piece) rowEmpty(r int) bool {
	for c := p.LL.X; c < p.UR.X; c++ {
		if p.Blocks.Occupied(r, c) {
			return false
		}
	}
	return true
}

// NumBlocks 邊界內兩個平面的非空格數
func (p *Piece) NumBlocks() int {
	n := 0
	for qp := 0; qp < Planes; qp++ {
		for r := p.LL.Y; r < p.UR.Y; r++ {
			for c := p.LL.X; c < p.UR.X; c++ {
				if p.Blocks.At(qp, r, c) != qo.NO {
					n++
				}
			}
		}
	}
	return n
}

// CenterOfGravity 佔用格座標的平均值，加 0.49 偏向方塊內部後取 floor。
// 空 Piece 回傳 LL。
func (p *Piece) CenterOfGravity() Offset {
	sumX, sumY, n := 0, 0, 0
	for qp := 0; qp < Planes; qp++ {
		for r := p.LL.Y; r < p.UR.Y; r++ {
			for c := p.LL.X; c < p.UR.X; c++ {
				if p.Blocks.At(qp, r, c) != qo.NO {
					sumX += c
					sumY += r
					n++
				}
			}
		}
	}
	if n == 0 {
		return p.LL
	}
	return Offset{
		X: int(math.Floor(float64(sumX)/float64(n) + 0.49)),
		Y: int(math.Floor(float64(sumY)/float64(n) + 0.49)),
	}
}

// GridPos Piece 放在 off 時，格子 (r,c) 在 Grid 上的位置
func (p *Piece) GridPos(off Offset, r int, c int) (int, int) {
	return off.Y + r - p.LL.Y, off.X + c - p.LL.X
}

// Clone 擁有權語意：回傳完全獨立的深拷貝
func (p *Piece) Clone() *Piece {
	c := &Piece{}
	c.CopyFrom(p)
	return c
}

// CopyFrom 深拷貝 src 的所有欄位到 p，重用 p 既有的方塊陣列容量
func (p *Piece) CopyFrom(src *Piece) {
	if p == src {
		return
	}
	if p.Blocks == nil {
		p.Blocks = &Grid{}
	}
	if src.Blocks != nil {
		p.Blocks.CopyFrom(src.Blocks)
	} else {
		p.Blocks.Resize(0, 0)
	}
	p.Type = src.Type
	p.Rotation = src.Rotation
	p.DefaultRotation = src.DefaultRotation
	p.LL = src.LL
	p.UR = src.UR
}

// Adopt 移動語意：p 接手 src 的方塊陣列，src.Blocks 被設為 nil。
// 呼叫後不存在兩個 Piece 共用同一個陣列的情況。
func (p *Piece) Adopt(src *Piece) {
	if p == src {
		return
	}
	*p = *src
	src.Blocks = nil
}

// Swap 交換兩個 Piece 的全部值（包含陣列擁有權），不使用任何共享暫存。
func Swap(a *Piece, b *Piece) {
	*a, *b = *b, *a
}

// Equal 所有欄位與邊界內外的內容完全一致
func (p *Piece) Equal(o *Piece) bool {
	if p.Type != o.Type || p.Rotation != o.Rotation || p.DefaultRotation != o.DefaultRotation {
		return false
	}
	if p.LL != o.LL || p.UR != o.UR {
		return false
	}
	if p.Blocks == nil || o.Blocks == nil {
		return emptyBlocks(p.Blocks) && emptyBlocks(o.Blocks)
	}
	return p.Blocks.Equal(o.Blocks)
}

// emptyBlocks nil 與 0x0 陣列視為相同
func emptyBlocks(g *Grid) bool {
	return g == nil || (g.Rows() == 0 && g.Cols() == 0)
}
