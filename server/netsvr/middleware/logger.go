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

package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// accessWriter 記下回應狀態碼與實際送出的 bytes
type accessWriter struct {
	http.ResponseWriter
	status  int
	written int
}

func (aw *accessWriter) WriteHeader(code int) {
	if aw.status == 0 {
		aw.status = code
	}
	aw.ResponseWriter.WriteHeader(code)
}

func (aw *accessWriter) Write(b []byte) (int, error) {
	if aw.status == 0 {
		aw.status = http.StatusOK
	}
	n, err := aw.ResponseWriter.Write(b)
	aw.written += n
	return n, err
}

// AccessLog 每個請求一筆 "http.access"。
// 只記外層資訊（status / latency / bytes / req_id / mode_id），盤面與錯誤細節由 handler 記。
// 掛在 Compression 外層，bytes 是壓縮後的大小。
func AccessLog(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if log == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			aw := &accessWriter{ResponseWriter: w}
			next.ServeHTTP(aw, r)

			status := aw.status
			if status == 0 {
				status = http.StatusOK
			}
			lv := slog.LevelInfo
			if status >= 500 {
				lv = slog.LevelError
			} else if status >= 400 {
				lv = slog.LevelWarn
			}
			attrs := make([]slog.Attr, 0, 7)
			attrs = append(attrs,
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Duration("latency", time.Since(start)),
				slog.Int("bytes", aw.written),
			)
			if id := GetReqId(r); id != "" {
				attrs = append(attrs, slog.String("req_id", id))
			}
			if mode := r.URL.Query().Get("mode_id"); mode != "" {
				attrs = append(attrs, slog.String("mode_id", mode))
			}
			log.LogAttrs(r.Context(), lv, "http.access", attrs...)
		})
	}
}
