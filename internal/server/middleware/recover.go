package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/shahwaiz14/event-tracker/internal/platform/httpjson"
)

// PanicCounter is incremented for every recovered panic.
type PanicCounter interface {
	Inc()
}

// Recover turns a panic in next into a 500 response and logs the stack.
// panics may be nil.
func Recover(log *slog.Logger, panics PanicCounter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				p := recover()
				if p == nil {
					return
				}
				if p == http.ErrAbortHandler {
					panic(p)
				}
				if panics != nil {
					panics.Inc()
				}
				log.ErrorContext(r.Context(), "recovered from panic",
					slog.Any("panic", p),
					slog.String("stack", string(debug.Stack())),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				httpjson.Write(w, http.StatusInternalServerError, httpjson.ErrorBody{Error: "internal error"})
			}()
			next.ServeHTTP(w, r)
		})
	}
}
