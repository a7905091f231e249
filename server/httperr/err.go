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

package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/quantro/errs"
)

// Body 錯誤回應：{"status":409,"level":"warn","error":"..."}
type Body struct {
	Status int    `json:"status"`
	Level  string `json:"level,omitempty"`
	Error  string `json:"error"`
}

// StatusCode 依序判斷：context 取消/超時 -> 盤面衝突 -> errs 等級。
//
//	DeadlineExceeded 504, Canceled 408, ErrMergeConflict 409, Warn 400, 其餘 500
func StatusCode(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	case errors.Is(err, errs.ErrMergeConflict):
		// 請求合法，但與帶入的盤面衝突（落點重疊、方向碼無法合併）
		return http.StatusConflict
	}
	if errs.LevelOf(err) == errs.Warn {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Errs 寫出 JSON 錯誤回應；err 為 nil 時不寫任何東西
func Errs(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	b := Body{Status: StatusCode(err), Level: errs.LevelOf(err).String(), Error: err.Error()}
	raw, merr := json.Marshal(b)
	if merr != nil {
		http.Error(w, err.Error(), b.Status)
		return
	}
	h := w.Header()
	h.Del("Content-Length")
	h.Set("Content-Type", "application/json")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(b.Status)
	_, _ = w.Write(append(raw, '\n'))
}

// Log 只記值得注意的錯誤：衝突 / 取消記 Warn，5xx 記 Error，一般 400 不記
func Log(log *slog.Logger, msg string, err error) {
	if err == nil || log == nil {
		return
	}
	switch status := StatusCode(err); {
	case status >= 500:
		log.Error(msg, slog.Int("status", status), slog.Any("err", err))
	case status == http.StatusConflict || status == http.StatusRequestTimeout:
		log.Warn(msg, slog.Int("status", status), slog.Any("err", err))
	}
}
