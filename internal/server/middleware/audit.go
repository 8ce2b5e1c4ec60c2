package middleware

import (
	"net/http"
	"strconv"

	"github.com/shahwaiz14/event-tracker/internal/audit"
)

// Audit returns middleware that records an audit entry after each mutating request
// (POST, PUT, PATCH, DELETE). It must run inside RequireAuth so the caller is known;
// requests without a caller are not audited. Writes are best-effort.
func Audit(logger audit.AuditLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)
			if logger == nil || !isMutating(r.Method) {
				return
			}
			userID, ok := GetUserID(r.Context())
			if !ok {
				return
			}
			ar := audit.ParseRoute(r.Method, r.URL.Path)
			logger.LogEvent(r.Context(), userID, ar.Action, ar.Resource, `{"status":`+strconv.Itoa(rec.status)+`}`)
		})
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
