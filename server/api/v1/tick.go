package v1

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/zintix-labs/quantro"
	"github.com/zintix-labs/quantro/dto"
	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/sdk/place"
	"github.com/zintix-labs/quantro/server/httperr"
	"github.com/zintix-labs/quantro/server/svrcfg"
)

const tickTimeout = 5 * time.Second

func (c *TickHandler) Tick(w http.ResponseWriter, q *http.Request) {
	// 請求方法、結構體校驗
	if q.Method != http.MethodGet && q.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req, err := dto.DecodeTickRequest(q)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	// 請求解析完成，設置超時 context
	ctx, cancel := context.WithTimeout(q.Context(), tickTimeout)
	defer cancel()

	result, err := c.rt.Tick(ctx, req)
	if err != nil {
		httperr.Log(c.log, "tick failed", err)
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, result)
}

// Candidates 只讀：回傳盤面上某種分類器的候選位置，盤面不變
func (c *TickHandler) Candidates(w http.ResponseWriter, q *http.Request) {
	if q.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name := q.URL.Query().Get("kind")
	kind, ok := place.ParseKind(name)
	if !ok {
		httperr.Errs(w, errs.Warnf("unknown kind %q", name))
		return
	}
	req, err := dto.DecodeTickRequest(q)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(q.Context(), tickTimeout)
	defer cancel()

	result, err := c.rt.Candidates(ctx, req, kind)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, result)
}

// Metrics 各模式 BoardPool 的即時狀態
func (c *TickHandler) Metrics(w http.ResponseWriter, q *http.Request) {
	writeJSON(w, c.rt.Metrics())
}

// ============================================================
// ** TickHandler **
// ============================================================

type TickHandler struct {
	rt  *quantro.Runtime
	log *slog.Logger
}

func NewTickHandler(sCfg *svrcfg.SvrCfg) (*TickHandler, error) {
	rt, err := sCfg.Quantro.BuildRuntime(sCfg.BoardPoolSz)
	if err != nil {
		return nil, errs.Wrap(err, "build tick handler error")
	}
	return &TickHandler{rt: rt, log: sCfg.Log}, nil
}

// Close 關閉底層 Runtime
func (c *TickHandler) Close() { c.rt.Close() }

// writeJSON 先編碼到記憶體再寫出，保證不會寫到一半才 error
func writeJSON(w http.ResponseWriter, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		httperr.Errs(w, errs.Wrap(err, "encode response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(append(b, '\n'))
}
