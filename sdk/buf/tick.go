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

const capTickGrow int = 64

// 盤面動作名稱
const (
	ActionLand        = "land"
	ActionClearColumn = "clear_column"
	ActionReward      = "reward"
)

// TickResult 保存一次盤面動作（落下 / 清欄 / 獎勵）的結果摘要。
type TickResult struct {
	Tick        int   // 第幾次動作
	Action      string
	Locked      bool  // 方塊是否成功鎖定
	Conflict    bool  // 鎖定時發生方向碼衝突
	TopOut      bool  // 出生位置已被佔用，盤面重置
	RowsCleared int   // 消除的列數
	Cascades    int   // unlock -> fall -> lock 的輪數
	Placed      int   // 放置引擎投下的方塊數
	ChunkSizes  []int // 本次所有 unlock 產生的 chunk 方塊數
	Cells       int   // 動作結束時盤面的非空格數
}

// NewTickResult 預先配置 ChunkSizes 容量
func NewTickResult() *TickResult {
	return &TickResult{ChunkSizes: make([]int, 0, capTickGrow)}
}

// Reset 重置累積資料，保留已配置的內部切片容量。
func (t *TickResult) Reset() {
	t.Tick = 0
	t.Action = ""
	t.Locked = false
	t.Conflict = false
	t.TopOut = false
	t.RowsCleared = 0
	t.Cascades = 0
	t.Placed = 0
	t.ChunkSizes = t.ChunkSizes[:0]
	t.Cells = 0
}

// RecordChunks 把清單中第 from 個之後的 chunk 大小記錄下來
func (t *TickResult) RecordChunks(l *ChunkList, from int) {
	for i := from; i < l.Len(); i++ {
		t.ChunkSizes = append(t.ChunkSizes, l.Piece(i).NumBlocks())
	}
}

// Chunks 本次產生的 chunk 數
func (t *TickResult) Chunks() int { return len(t.ChunkSizes) }
