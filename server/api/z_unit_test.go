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

package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/zintix-labs/quantro/catalog"
	"github.com/zintix-labs/quantro/demo"
	"github.com/zintix-labs/quantro/dto"
	"github.com/zintix-labs/quantro/server/logger"
	"github.com/zintix-labs/quantro/server/netsvr"
	"github.com/zintix-labs/quantro/server/svrcfg"
)

func newTestServer(t *testing.T) *netsvr.ChiAdapter {
	t.Helper()
	q, err := demo.NewQuantro()
	if err != nil {
		t.Fatalf("new quantro: %v", err)
	}
	sCfg := &svrcfg.SvrCfg{
		Log:         logger.NewDefaultLogger(logger.ModeSilence),
		BoardPoolSz: 1,
		MaxSimTicks: 10_000,
		Quantro:     q,
	}
	if err := sCfg.Valid(); err != nil {
		t.Fatalf("server config: %v", err)
	}
	svr := netsvr.NewChiServer("")
	closeRoutes, err := RegisterRoutes(svr, sCfg)
	if err != nil {
		t.Fatalf("register routes: %v", err)
	}
	t.Cleanup(closeRoutes)
	return svr
}

func do(svr http.Handler, method string, target string, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	svr.ServeHTTP(rec, req)
	return rec
}

func landQuery(board string, x int, y int) string {
	v := url.Values{}
	v.Set("mode_id", "1")
	v.Set("action", "land")
	v.Set("piece_name", "bridge")
	v.Set("x", strconv.Itoa(x))
	v.Set("y", strconv.Itoa(y))
	if board != "" {
		v.Set("board_b64u", board)
	}
	return "/v1/tick?" + v.Encode()
}

func TestModes(t *testing.T) {
	svr := newTestServer(t)
	rec := do(svr, http.MethodGet, "/v1/modes", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var sum []catalog.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(sum) != 2 {
		t.Fatalf("expected 2 modes, got %d", len(sum))
	}
}

func TestTickFlow(t *testing.T) {
	svr := newTestServer(t)

	rec := do(svr, http.MethodGet, landQuery("", 0, 18), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var res dto.TickResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.Locked || res.Cells != 4 || res.Board.Rows != 20 {
		t.Fatalf("unexpected result %+v", res)
	}

	// 下一次請求帶回 after frame
	body := `{"mode_id":1,"action":"land","piece_name":"bridge","x":2,"y":18,"board_b64u":"` + res.State.AfterB64U + `"}`
	rec = do(svr, http.MethodPost, "/v1/tick", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var next dto.TickResult
	if err := json.Unmarshal(rec.Body.Bytes(), &next); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if next.Cells != 8 || next.State.StartB64U != res.State.AfterB64U {
		t.Fatalf("unexpected chained result %+v", next)
	}

	rec = do(svr, http.MethodGet, landQuery(next.State.AfterB64U, 0, 0), "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("overlap should be 409, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(svr, http.MethodGet, "/v1/decode?board_b64u="+next.State.AfterB64U, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("decode status %d: %s", rec.Code, rec.Body.String())
	}
	var view dto.BoardView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.Rows != 20 || view.Cols != 10 || len(view.Planes[0]) != 20 {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestTickBadRequest(t *testing.T) {
	svr := newTestServer(t)
	cases := []string{
		"/v1/tick?mode_id=1&action=rotate",
		"/v1/tick?mode_id=x&action=land",
		"/v1/tick?mode_id=99&action=land&piece_name=bridge",
		"/v1/tick?mode_id=1&action=land&piece_name=nope",
		"/v1/candidates?mode_id=1&kind=ridge",
	}
	for _, target := range cases {
		rec := do(svr, http.MethodGet, target, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rec.Code)
		}
	}
	rec := do(svr, http.MethodPost, "/v1/tick", `{"mode_id":1,"action":"land","bogus":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field: expected 400, got %d", rec.Code)
	}
}

func TestCandidates(t *testing.T) {
	svr := newTestServer(t)
	rec := do(svr, http.MethodGet, "/v1/candidates?mode_id=1&kind=valley", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var res dto.CandidatesResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Kind != "valley" || res.ModeID != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestSim(t *testing.T) {
	svr := newTestServer(t)
	rec := do(svr, http.MethodGet, "/v1/sim?mode_id=1&ticks=300&workers=2&seed=11", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Seed  int64 `json:"seed"`
		Stats struct {
			Summary struct {
				Ticks int `json:"Ticks"`
			} `json:"Summary"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Seed != 11 || out.Stats.Summary.Ticks != 600 {
		t.Fatalf("unexpected sim output %+v", out)
	}

	rec = do(svr, http.MethodGet, "/v1/sim?mode_id=1&ticks=20000", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("ticks over limit: expected 400, got %d", rec.Code)
	}
	rec = do(svr, http.MethodPost, "/v1/sim", `{"mode_id":1,"ticks":100,"workers":65}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("too many workers: expected 400, got %d", rec.Code)
	}
}

func TestReplay(t *testing.T) {
	svr := newTestServer(t)
	rec := do(svr, http.MethodPost, "/v1/replay", `{"mode_id":2,"ticks":200,"seed":5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var rep struct {
		Seed  int64  `json:"seed"`
		Ticks int    `json:"ticks"`
		After string `json:"after_b64u"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rep.Seed != 5 || rep.Ticks != 200 || rep.After == "" {
		t.Fatalf("unexpected report %+v", rep)
	}
}

func TestMetricsAndCompression(t *testing.T) {
	svr := newTestServer(t)
	rec := do(svr, http.MethodGet, "/v1/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/modes", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	svr.ServeHTTP(w, req)
	if w.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip response, got %q", w.Header().Get("Content-Encoding"))
	}
	gr, err := gzip.NewReader(w.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	var sum []catalog.Summary
	if err := json.NewDecoder(gr).Decode(&sum); err != nil {
		t.Fatalf("decode gzip body: %v", err)
	}
	if len(sum) != 2 {
		t.Fatalf("expected 2 modes, got %d", len(sum))
	}
}
