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

package dto

import (
	"github.com/zintix-labs/quantro/corefmt"
	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/sdk/buf"
	"github.com/zintix-labs/quantro/sdk/grid"
	"github.com/zintix-labs/quantro/sdk/place"
	"github.com/zintix-labs/quantro/spec"
)

type TickResult struct {
	ModeName    string      `json:"mode"`         // 模式名稱
	ModeID      spec.ModeID `json:"mode_id"`      // 模式編號
	Session     uint32      `json:"session"`      // 放置引擎 session seed
	Tick        int         `json:"tick"`         // Board 上第幾次動作
	Action      string      `json:"action"`       // 動作名稱
	Locked      bool        `json:"locked"`       // 方塊是否成功鎖定
	Conflict    bool        `json:"conflict"`     // 鎖定時方向碼衝突
	TopOut      bool        `json:"top_out"`      // 出生位置被佔用
	RowsCleared int         `json:"rows_cleared"` // 消除列數
	Cascades    int         `json:"cascades"`     // 連鎖輪數
	Placed      int         `json:"placed"`       // 獎勵投下的方塊數
	ChunkSizes  []int       `json:"chunks,omitempty"`
	Cells       int         `json:"cells"` // 動作後盤面非空格數
	Board       BoardView   `json:"board"` // 動作後盤面
	State       TickState   `json:"tick_state"`
}

// TickState 動作前後的盤面 frame；下一次請求把 After 當作 board_b64u 送回即可續玩
type TickState struct {
	StartB64U string `json:"start_b64u"` // 必回
	AfterB64U string `json:"after_b64u"` // 必回
}

// BoardView 可讀的盤面：每個平面一組字串，最高列在前，每格一個方向碼字元
type BoardView struct {
	Rows   int                   `json:"rows"`
	Cols   int                   `json:"cols"`
	Planes [grid.Planes][]string `json:"planes"`
}

// CandidatesResult 分類器候選
type CandidatesResult struct {
	ModeID     spec.ModeID       `json:"mode_id"`
	Kind       string            `json:"kind"`
	Candidates []place.Candidate `json:"candidates"`
}

// NewTickResultDTO 複製 TickResult（Board 的 buffer 會被下一次動作覆寫）並附上盤面
func NewTickResultDTO(name string, id spec.ModeID, session uint32, tr *buf.TickResult, g *grid.Grid, start []byte, after []byte) (TickResult, error) {
	if tr == nil || g == nil {
		return TickResult{}, errs.NewWarn("tick result is nil")
	}
	return TickResult{
		ModeName:    name,
		ModeID:      id,
		Session:     session,
		Tick:        tr.Tick,
		Action:      tr.Action,
		Locked:      tr.Locked,
		Conflict:    tr.Conflict,
		TopOut:      tr.TopOut,
		RowsCleared: tr.RowsCleared,
		Cascades:    tr.Cascades,
		Placed:      tr.Placed,
		ChunkSizes:  append([]int(nil), tr.ChunkSizes...),
		Cells:       tr.Cells,
		Board:       NewBoardView(g),
		State: TickState{
			StartB64U: corefmt.EncodeBase64URL(start),
			AfterB64U: corefmt.EncodeBase64URL(after),
		},
	}, nil
}

func NewBoardView(g *grid.Grid) BoardView {
	v := BoardView{Rows: g.Rows(), Cols: g.Cols()}
	for qp := 0; qp < grid.Planes; qp++ {
		lines := make([]string, 0, g.Rows())
		line := make([]byte, g.Cols())
		for r := g.Rows() - 1; r >= 0; r-- {
			for c := 0; c < g.Cols(); c++ {
				line[c] = g.At(qp, r, c).Byte()
			}
			lines = append(lines, string(line))
		}
		v.Planes[qp] = lines
	}
	return v
}

// DecodeBoard 把 board_b64u 解成可讀盤面
func DecodeBoard(b64u string) (BoardView, error) {
	raw, err := corefmt.DecodeBase64URL(b64u)
	if err != nil {
		return BoardView{}, errs.NewWarn("board snap decode failed " + err.Error())
	}
	g, err := corefmt.DecodeGrid(raw)
	if err != nil {
		return BoardView{}, errs.NewWarn("board snap decode failed " + err.Error())
	}
	return NewBoardView(g), nil
}
