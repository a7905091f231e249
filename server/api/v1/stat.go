package v1

import (
	"net/http"

	"github.com/zintix-labs/quantro/dto"
	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/recorder"
	"github.com/zintix-labs/quantro/sdk/buf"
	"github.com/zintix-labs/quantro/server/httperr"
	"github.com/zintix-labs/quantro/spec"
)

// TickLog 客戶端自行保存的 /v1/tick 回應
type TickLog struct {
	ModeName string           `json:"mode"`
	ModeID   spec.ModeID      `json:"mode_id"`
	Ticks    []dto.TickResult `json:"ticks"`
}

// Stat 把一串 tick 回應重新紀錄成統計報告
func Stat(w http.ResponseWriter, r *http.Request) {
	// Post方法限定
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	// 嘗試解析
	lg := new(TickLog)
	if err := dto.DecodeJSON(r, lg); err != nil {
		httperr.Errs(w, err)
		return
	}
	if len(lg.Ticks) < 1 {
		httperr.Errs(w, errs.NewWarn("ticks must > 0"))
		return
	}

	rec := recorder.NewTickRecorder(lg.ModeName, lg.ModeID)
	tr := buf.NewTickResult()
	for i := range lg.Ticks {
		t := &lg.Ticks[i]
		tr.Reset()
		tr.Tick = t.Tick
		tr.Action = t.Action
		tr.Locked = t.Locked
		tr.Conflict = t.Conflict
		tr.TopOut = t.TopOut
		tr.RowsCleared = t.RowsCleared
		tr.Cascades = t.Cascades
		tr.Placed = t.Placed
		tr.ChunkSizes = append(tr.ChunkSizes, t.ChunkSizes...)
		tr.Cells = t.Cells
		rec.Record(tr)
	}
	writeJSON(w, rec.Done())
}
