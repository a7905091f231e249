package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/server/httperr"
)

const RequestIDHeader = "X-Request-Id"

// RequestID 沿用請求帶入的 X-Request-Id，沒有就由 chi 產生；回應時一併帶回
func RequestID(next http.Handler) http.Handler {
	return chimid.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimid.GetReqID(r.Context()); id != "" {
			w.Header().Set(RequestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	}))
}

func GetReqId(r *http.Request) string {
	return chimid.GetReqID(r.Context())
}

// Recover handler panic 時記錄堆疊並回 500 JSON。
// BoardPool 會先攔下盤面運算中的 panic，到這一層的是 handler 本身的問題。
func Recover(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				if log != nil {
					log.LogAttrs(r.Context(), slog.LevelError, "http.panic",
						slog.Any("panic", rec),
						slog.String("path", r.URL.Path),
						slog.String("req_id", GetReqId(r)),
						slog.String("stack", string(debug.Stack())),
					)
				}
				httperr.Errs(w, errs.NewFatal("internal server error"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
