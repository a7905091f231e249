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

package buf

import "github.com/zintix-labs/quantro/sdk/grid"

const capChunkGrow int = 16

// Chunk 一組剛脫離的方塊（Piece）與它在 Grid 上的位置（Offset）。
type Chunk struct {
	Piece  grid.Piece
	Offset grid.Offset
}

// ChunkList 可重用 slot 的 Chunk 清單。
//
// 呼叫端在整個模擬期間持有同一個 ChunkList：
//   - Reset 只把邏輯長度歸零，已配置的 slot 與方塊陣列全部保留。
//   - Next 優先重用舊 slot（陣列容量足夠時不配置）。
//   - 回傳的 *Chunk 在下一次 Reset 之前保持有效（slot 以指標保存，擴容不搬移）。
type ChunkList struct {
	slots []*Chunk
	n     int
}

// NewChunkList 預先配置 capHint 個 slot
func NewChunkList(capHint int) *ChunkList {
	if capHint <= 0 {
		capHint = capChunkGrow
	}
	return &ChunkList{slots: make([]*Chunk, 0, capHint)}
}

// Next 取得下一個 slot：方塊陣列調整為 rows x cols 並清空，邊界為整個陣列，Offset 歸零。
func (l *ChunkList) Next(rows int, cols int) *Chunk {
	if l.n == len(l.slots) {
		l.slots = append(l.slots, &Chunk{Piece: grid.Piece{Blocks: &grid.Grid{}}})
	}
	ch := l.slots[l.n]
	l.n++
	if ch.Piece.Blocks == nil {
		ch.Piece.Blocks = &grid.Grid{}
	}
	ch.Piece.Blocks.Resize(rows, cols)
	ch.Piece.SetBounds()
	ch.Piece.Type = 0
	ch.Piece.Rotation = 0
	ch.Piece.DefaultRotation = 0
	ch.Offset = grid.Offset{}
	return ch
}

// Len 已填入的 slot 數
func (l *ChunkList) Len() int { return l.n }

// Reset 清空邏輯長度，保留容量
func (l *ChunkList) Reset() { l.n = 0 }

// Truncate 退回到前 n 個 slot（n 超出範圍時 panic）
func (l *ChunkList) Truncate(n int) {
	if n < 0 || n > l.n {
		panic("chunk list: truncate out of range")
	}
	l.n = n
}

// At 第 i 個 Chunk
func (l *ChunkList) At(i int) *Chunk {
	if i >= l.n {
		panic("chunk list: index out of range")
	}
	return l.slots[i]
}

func (l *ChunkList) Piece(i int) *grid.Piece { return &l.At(i).Piece }

func (l *ChunkList) Offset(i int) grid.Offset { return l.At(i).Offset }

func (l *ChunkList) SetOffset(i int, o grid.Offset) { l.At(i).Offset = o }

// Cells 所有已填入 Chunk 的非空格總數
func (l *ChunkList) Cells() int {
	n := 0
	for i := 0; i < l.n; i++ {
		n += l.slots[i].Piece.NumBlocks()
	}
	return n
}
