package api

import (
	"context"
	"net/http"

	"github.com/ignite/crm-dashboard/internal/pkg/httputil"
)

type contextKey string

const userIDKey contextKey = "user_id"

// UserID returns the active user for the request, set by RequireUser.
func UserID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

// RequireUser rejects requests without an X-User-ID header and stores the
// user in the request context. Authentication itself is handled upstream
// (gateway); this service only consumes the identity header. Cross-user
// isolation doesn't depend on any per-request bookkeeping here: the cache
// refuses entries whose owner doesn't match the requesting user, so users
// with interleaved requests each keep their own entries.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			httputil.Error(w, http.StatusUnauthorized, "X-User-ID header required")
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
