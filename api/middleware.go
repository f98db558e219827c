package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/solo-knight-dev/fyllo-ai/pkg/identity"
)

type ctxKey int

const uidKey ctxKey = iota

// UserID extracts the authenticated uid from the request context.
func UserID(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(uidKey).(string)
	return uid, ok && uid != ""
}

// requireAuth verifies the bearer token and stores the resolved uid in the
// request context.
func requireAuth(verifier identity.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				writeError(w, http.StatusUnauthorized, statusUnauthenticated, "Must be logged in")
				return
			}

			uid, err := verifier.Verify(r.Context(), strings.TrimSpace(token))
			if err != nil {
				writeError(w, http.StatusUnauthorized, statusUnauthenticated, "Must be logged in")
				return
			}

			ctx := context.WithValue(r.Context(), uidKey, uid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
