package middleware

import (
	"net/http"
	"strings"

	"github.com/shahwaiz14/event-tracker/internal/apperr"
	"github.com/shahwaiz14/event-tracker/internal/platform/httpjson"
	"github.com/shahwaiz14/event-tracker/internal/security"
)

const bearerPrefix = "bearer "

// AccessValidator resolves a bearer token to the caller it was issued to.
type AccessValidator interface {
	ValidateAccess(token string) (security.Identity, error)
}

// RequireAuth returns middleware that validates the Bearer (access) token from the
// Authorization header and sets the caller identity in the request context.
// Requests without a valid token are rejected with 401 before reaching next.
func RequireAuth(tokens AccessValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r)
			if token == "" || tokens == nil {
				httpjson.WriteError(w, r, apperr.ErrUnauthenticated)
				return
			}
			id, err := tokens.ValidateAccess(token)
			if err != nil {
				httpjson.WriteError(w, r, apperr.ErrUnauthenticated)
				return
			}
			ctx := WithIdentity(r.Context(), id.UserID, id.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearer returns the Bearer token from the Authorization header, or "" if missing or malformed.
func extractBearer(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
