package v1

import (
	"net/http"

	"github.com/zintix-labs/quantro/dto"
	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/server/httperr"
)

// Modes 已註冊模式的摘要（依 mode_id 排序）
func (sh *SimHandler) Modes(w http.ResponseWriter, q *http.Request) {
	sum, err := sh.Quantro.Summary()
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, sum)
}

// Decode 把 board_b64u 解成兩個平面的可讀盤面（最上面一列在前）
func Decode(w http.ResponseWriter, q *http.Request) {
	var s string
	switch q.Method {
	case http.MethodGet:
		s = q.URL.Query().Get("board_b64u")
	case http.MethodPost:
		var body struct {
			Board string `json:"board_b64u"`
		}
		if err := dto.DecodeJSON(q, &body); err != nil {
			httperr.Errs(w, err)
			return
		}
		s = body.Board
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s == "" {
		httperr.Errs(w, errs.NewWarn("board_b64u is required"))
		return
	}
	v, err := dto.DecodeBoard(s)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, v)
}
