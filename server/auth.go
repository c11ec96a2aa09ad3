// ABOUTME: Bearer-token authentication middleware for the JSON API, placing the
// ABOUTME: verified user ID into the request context for handlers.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mealdash/mealdash/core"
	"github.com/mealdash/mealdash/i18n"
)

type contextKey string

const userIDKey contextKey = "mealdash.user_id"

// UserIDFromContext returns the authenticated user's ID placed there by
// AuthMiddleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// WithUserID returns a context carrying an authenticated user ID. Exposed for
// handler tests.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// AuthMiddleware validates bearer access tokens on /api/* routes. The health
// check and the auth endpoints themselves (register, login, refresh) pass
// through unprotected. Failures answer with the standard JSON error envelope
// in the request's preferred locale.
func AuthMiddleware(secret string, msgs *i18n.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			if path == "/" || path == "/health" || strings.HasPrefix(path, "/api/v1/auth/") {
				next.ServeHTTP(w, r)
				return
			}
			if !strings.HasPrefix(path, "/api/") {
				next.ServeHTTP(w, r)
				return
			}

			const prefix = "Bearer "
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, prefix) {
				writeUnauthorized(w, r, msgs)
				return
			}

			userID, err := VerifyToken(secret, auth[len(prefix):], TokenAccess)
			if err != nil {
				writeUnauthorized(w, r, msgs)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request, msgs *i18n.Manager) {
	apiErr := core.TokenInvalid()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": msgs.Text(apiErr.Key(), nil, msgs.PreferredLocale(r)),
		},
	})
}
