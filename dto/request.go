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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/zintix-labs/quantro/corefmt"
	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/sdk/buf"
	"github.com/zintix-labs/quantro/sdk/grid"
	"github.com/zintix-labs/quantro/sdk/place"
	"github.com/zintix-labs/quantro/spec"
)

// 防止 body 過大
const maxBody = 1 << 20

// TickRequest 一次盤面動作的請求。
//
// 引擎維持純計算器：盤面由請求端帶入（board_b64u，缺省為空盤面），
// 回應帶回動作前後的盤面 frame，請求端自行保存並在下一次送回。
type TickRequest struct {
	UID      string      `json:"uid"`                  // 唯一識別碼
	ModeName string      `json:"mode"`                 // 模式名稱
	ModeID   spec.ModeID `json:"mode_id"`              // 模式編號
	Action   string      `json:"action"`               // land / clear_column / reward
	Board    string      `json:"board_b64u,omitempty"` // 起始盤面 frame（base64url）
	Session  *uint32     `json:"session,omitempty"`    // 放置引擎 session seed；缺省使用 Board 自己的

	// land：Piece（literal）與 PieceName（模式內的方塊名稱）擇一
	Piece     string `json:"piece,omitempty"`
	PieceName string `json:"piece_name,omitempty"`
	X         int    `json:"x"`
	Y         int    `json:"y"`

	// clear_column：row = -1 代表整欄；fall 讓解鎖的方塊重新落下而不是移除
	Row  int  `json:"row"`
	Col  int  `json:"col"`
	Fall bool `json:"fall,omitempty"`

	// reward：kinds 缺省使用模式設定
	Kinds  []string `json:"kinds,omitempty"`
	MinRow int      `json:"min_row"`
}

// Tick 已解析的 TickRequest
type Tick struct {
	Action     string
	Start      []byte
	Session    uint32
	HasSession bool
	Piece      *grid.Piece
	PieceName  string
	Offset     grid.Offset
	Row        int
	Col        int
	Fall       bool
	Kinds      []place.Kind
	MinRow     int
}

// DecodeTickRequest 把 HTTP 請求解碼成 TickRequest。
//
// 支援：
//   - GET：從 query string 讀取（uid/mode/mode_id/action/board_b64u/session/piece/piece_name/x/y/row/col/fall/kinds/min_row），
//     kinds 以逗號分隔。
//   - POST：從 JSON body 反序列化，body 限制 1MiB，未知欄位直接拒絕。
//
// 這裡只做解碼與型別轉換；模式是否存在、方塊是否放得下由上層（Board/Runtime）決定。
func DecodeTickRequest(r *http.Request) (*TickRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	req := new(TickRequest)

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.UID = q.Get("uid")
		req.ModeName = q.Get("mode")
		req.Action = q.Get("action")
		req.Board = q.Get("board_b64u")
		req.Piece = q.Get("piece")
		req.PieceName = q.Get("piece_name")

		if s := q.Get("mode_id"); s != "" {
			u, err := strconv.ParseUint(s, 10, 0)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid mode_id: %v", err))
			}
			req.ModeID = spec.ModeID(u)
		}
		if s := q.Get("session"); s != "" {
			u, err := strconv.ParseUint(s, 10, 32)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid session: %v", err))
			}
			v := uint32(u)
			req.Session = &v
		}
		for _, f := range []struct {
			key string
			dst *int
		}{
			{"x", &req.X}, {"y", &req.Y}, {"row", &req.Row}, {"col", &req.Col}, {"min_row", &req.MinRow},
		} {
			s := q.Get(f.key)
			if s == "" {
				continue
			}
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid %s: %v", f.key, err))
			}
			*f.dst = v
		}
		if s := q.Get("fall"); s != "" {
			v, err := strconv.ParseBool(s)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid fall: %v", err))
			}
			req.Fall = v
		}
		if s := q.Get("kinds"); s != "" {
			req.Kinds = strings.Split(s, ",")
		}
		return req, nil

	case http.MethodPost:
		dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
		dec.DisallowUnknownFields()
		if err := dec.Decode(req); err != nil {
			return nil, errs.NewWarn("invalid json: " + err.Error())
		}
		return req, nil

	default:
		return nil, errs.NewWarn("method not allowed")
	}
}

// Parse 轉成內部 Tick；所有格式錯誤都是 Warn（請求端的問題）
func (tr *TickRequest) Parse() (*Tick, error) {
	t := &Tick{
		Action: tr.Action,
		Offset: grid.Offset{X: tr.X, Y: tr.Y},
		Row:    tr.Row,
		Col:    tr.Col,
		Fall:   tr.Fall,
		MinRow: tr.MinRow,
	}
	start, err := tr.StartBoard()
	if err != nil {
		return nil, err
	}
	t.Start = start
	if tr.Session != nil {
		t.Session, t.HasSession = *tr.Session, true
	}

	switch tr.Action {
	case buf.ActionLand:
		switch {
		case tr.Piece != "" && tr.PieceName != "":
			return nil, errs.NewWarn("piece and piece_name are exclusive")
		case tr.Piece != "":
			p, err := grid.DecodePiece(tr.Piece)
			if err != nil {
				return nil, errs.NewWarn("piece decode failed " + err.Error())
			}
			t.Piece = p
		case tr.PieceName != "":
			t.PieceName = tr.PieceName
		default:
			return nil, errs.NewWarn("land needs piece or piece_name")
		}
	case buf.ActionClearColumn:
		if tr.Row < -1 {
			return nil, errs.NewWarn(fmt.Sprintf("invalid row %d", tr.Row))
		}
	case buf.ActionReward:
		if len(tr.Kinds) > 0 {
			t.Kinds = make([]place.Kind, 0, len(tr.Kinds))
			for _, s := range tr.Kinds {
				k, ok := place.ParseKind(s)
				if !ok {
					return nil, errs.NewWarn(fmt.Sprintf("unknown kind %q", s))
				}
				t.Kinds = append(t.Kinds, k)
			}
		}
	default:
		return nil, errs.NewWarn(fmt.Sprintf("unknown action %q", tr.Action))
	}
	return t, nil
}

// StartBoard 解出 board_b64u；缺省回傳 nil（空盤面）
func (tr *TickRequest) StartBoard() ([]byte, error) {
	if tr.Board == "" {
		return nil, nil
	}
	b, err := corefmt.DecodeBase64URL(tr.Board)
	if err != nil {
		return nil, errs.NewWarn("board snap decode failed " + err.Error())
	}
	return b, nil
}

// SimRequest 模擬請求（POST JSON）
type SimRequest struct {
	ModeID  spec.ModeID `json:"mode_id"`
	Ticks   int         `json:"ticks"`
	Workers int         `json:"workers"`
	Seed    *int64      `json:"seed,omitempty"`
}

// DecodeJSON 以 1MiB 上限與嚴格欄位解碼 POST body 到 out
func DecodeJSON[T any](r *http.Request, out *T) error {
	if r == nil || r.Body == nil {
		return errs.NewWarn("empty body")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return errs.NewWarn("invalid json: " + err.Error())
	}
	return nil
}
