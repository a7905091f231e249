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
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/zintix-labs/quantro/corefmt"
	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/sdk/buf"
	"github.com/zintix-labs/quantro/sdk/grid"
	"github.com/zintix-labs/quantro/sdk/place"
	"github.com/zintix-labs/quantro/sdk/qo"
)

func domino() *grid.Piece {
	p := grid.NewPiece(1, 2)
	p.Blocks.Set(0, 0, 0, qo.S0)
	p.Blocks.Set(0, 0, 1, qo.S0)
	return p
}

func TestDecodeTickRequestGET(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet,
		"/v1/tick?uid=u1&mode=standard&mode_id=1&action=reward&session=99&kinds=valley,peak&min_row=2&x=3&y=4&row=-1&col=5&fall=true", nil)
	req, err := DecodeTickRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.UID != "u1" || req.ModeName != "standard" || req.ModeID != 1 || req.Action != "reward" {
		t.Fatalf("unexpected header fields: %+v", req)
	}
	if req.Session == nil || *req.Session != 99 {
		t.Fatalf("session not decoded: %+v", req.Session)
	}
	if req.X != 3 || req.Y != 4 || req.Row != -1 || req.Col != 5 || req.MinRow != 2 || !req.Fall {
		t.Fatalf("unexpected ints: %+v", req)
	}
	if len(req.Kinds) != 2 || req.Kinds[0] != "valley" || req.Kinds[1] != "peak" {
		t.Fatalf("unexpected kinds: %v", req.Kinds)
	}
}

func TestDecodeTickRequestGETBadInt(t *testing.T) {
	for _, q := range []string{"mode_id=x", "session=-1", "x=a", "min_row=1.5", "fall=maybe"} {
		r := httptest.NewRequest(http.MethodGet, "/v1/tick?"+q, nil)
		_, err := DecodeTickRequest(r)
		e, ok := errs.AsErr(err)
		if !ok || e.ErrLv != errs.Warn {
			t.Fatalf("%s: expected warn, got %v", q, err)
		}
	}
}

func TestDecodeTickRequestPOST(t *testing.T) {
	body, _ := json.Marshal(map[string]any{
		"mode_id":    2,
		"action":     "land",
		"piece_name": "line",
		"x":          4,
		"y":          17,
	})
	r := httptest.NewRequest(http.MethodPost, "/v1/tick", bytes.NewReader(body))
	req, err := DecodeTickRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.ModeID != 2 || req.PieceName != "line" || req.X != 4 || req.Y != 17 {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestDecodeTickRequestRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/v1/tick", bytes.NewBufferString(`{"mode_id":1,"bet":10}`))
	if _, err := DecodeTickRequest(r); err == nil {
		t.Fatalf("expected unknown field error")
	}
	r = httptest.NewRequest(http.MethodPut, "/v1/tick", nil)
	if _, err := DecodeTickRequest(r); err == nil {
		t.Fatalf("expected method error")
	}
}

func TestParseLand(t *testing.T) {
	p := domino()
	req := &TickRequest{Action: buf.ActionLand, Piece: p.Encode(), X: 1, Y: 8}
	tk, err := req.Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tk.Piece == nil || !tk.Piece.Equal(p) {
		t.Fatalf("piece not round-tripped")
	}
	if tk.Offset != (grid.Offset{X: 1, Y: 8}) || tk.Start != nil || tk.HasSession {
		t.Fatalf("unexpected tick: %+v", tk)
	}

	for _, bad := range []*TickRequest{
		{Action: buf.ActionLand},
		{Action: buf.ActionLand, Piece: p.Encode(), PieceName: "line"},
		{Action: buf.ActionLand, Piece: "P9:junk"},
	} {
		if _, err := bad.Parse(); err == nil {
			t.Fatalf("expected error for %+v", bad)
		}
	}
}

func TestParseClearColumnAndReward(t *testing.T) {
	g := grid.NewGrid(4, 3)
	g.Set(0, 0, 1, qo.S0)
	s := uint32(7)
	req := &TickRequest{
		Action:  buf.ActionClearColumn,
		Row:     -1,
		Col:     1,
		Fall:    true,
		Board:   corefmt.EncodeBase64URL(corefmt.EncodeGrid(g)),
		Session: &s,
	}
	tk, err := req.Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !tk.HasSession || tk.Session != 7 || tk.Row != -1 || tk.Col != 1 || !tk.Fall {
		t.Fatalf("unexpected tick: %+v", tk)
	}
	back, err := corefmt.DecodeGrid(tk.Start)
	if err != nil || !back.Equal(g) {
		t.Fatalf("start board not decoded: %v", err)
	}

	if _, err := (&TickRequest{Action: buf.ActionClearColumn, Row: -2}).Parse(); err == nil {
		t.Fatalf("expected row error")
	}

	tk, err = (&TickRequest{Action: buf.ActionReward, Kinds: []string{"corner", "Valley"}}).Parse()
	if err != nil {
		t.Fatalf("parse reward: %v", err)
	}
	if len(tk.Kinds) != 2 || tk.Kinds[0] != place.Corner || tk.Kinds[1] != place.Valley {
		t.Fatalf("unexpected kinds: %v", tk.Kinds)
	}
	if _, err := (&TickRequest{Action: buf.ActionReward, Kinds: []string{"mesa"}}).Parse(); err == nil {
		t.Fatalf("expected kind error")
	}
	if _, err := (&TickRequest{Action: "rotate"}).Parse(); err == nil {
		t.Fatalf("expected action error")
	}
	if _, err := (&TickRequest{Action: buf.ActionReward, Board: "!!"}).Parse(); err == nil {
		t.Fatalf("expected board error")
	}
}

func TestBoardViewAndResult(t *testing.T) {
	g := grid.NewGrid(2, 3)
	g.Set(0, 0, 0, qo.S0)
	g.Set(1, 1, 2, qo.ST)
	v := NewBoardView(g)
	if v.Rows != 2 || v.Cols != 3 {
		t.Fatalf("dims: %+v", v)
	}
	// 最高列在前
	if v.Planes[0][1] != string([]byte{qo.S0.Byte(), qo.NO.Byte(), qo.NO.Byte()}) {
		t.Fatalf("plane 0 rows: %q", v.Planes[0])
	}
	if v.Planes[1][0][2] != qo.ST.Byte() {
		t.Fatalf("plane 1 rows: %q", v.Planes[1])
	}

	frame := corefmt.EncodeGrid(g)
	dv, err := DecodeBoard(corefmt.EncodeBase64URL(frame))
	if err != nil {
		t.Fatalf("decode board: %v", err)
	}
	if !reflect.DeepEqual(dv.Planes, v.Planes) {
		t.Fatalf("decoded view differs")
	}
	if _, err := DecodeBoard("AAAA"); err == nil {
		t.Fatalf("expected decode error")
	}

	tr := buf.NewTickResult()
	tr.Action = buf.ActionLand
	tr.ChunkSizes = append(tr.ChunkSizes, 2, 3)
	res, err := NewTickResultDTO("standard", 1, 5, tr, g, nil, frame)
	if err != nil {
		t.Fatalf("dto: %v", err)
	}
	tr.ChunkSizes[0] = 9
	if res.ChunkSizes[0] != 2 {
		t.Fatalf("chunk sizes must be copied")
	}
	if res.State.AfterB64U == "" || res.Session != 5 {
		t.Fatalf("unexpected result: %+v", res.State)
	}
	if _, err := NewTickResultDTO("standard", 1, 5, nil, g, nil, frame); err == nil {
		t.Fatalf("expected nil result error")
	}
}

func TestDecodeJSON(t *testing.T) {
	var sr SimRequest
	r := httptest.NewRequest(http.MethodPost, "/v1/sim", bytes.NewBufferString(`{"mode_id":1,"ticks":10,"workers":2,"seed":3}`))
	if err := DecodeJSON(r, &sr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sr.ModeID != 1 || sr.Ticks != 10 || sr.Workers != 2 || sr.Seed == nil || *sr.Seed != 3 {
		t.Fatalf("unexpected: %+v", sr)
	}
	r = httptest.NewRequest(http.MethodPost, "/v1/sim", bytes.NewBufferString(`{"round":1}`))
	err := DecodeJSON(r, &sr)
	var e *errs.E
	if !errors.As(err, &e) || e.ErrLv != errs.Warn {
		t.Fatalf("expected warn, got %v", err)
	}
}
