package auth

import (
	"context"
	"net/http"
	"strings"

	apperrors "smartscheduler/internal/errors"
)

type contextKey struct{}

// HostAuthMiddleware accepts requests carrying a valid bearer token and
// stores the host id in the request context.
func HostAuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				apperrors.WriteError(w, apperrors.ErrUnauthorized("missing bearer token"))
				return
			}
			claims, err := ParseToken(secret, strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				apperrors.WriteError(w, apperrors.ErrUnauthorized("invalid token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithHostID(r.Context(), claims.HostID)))
		})
	}
}

func WithHostID(ctx context.Context, hostID string) context.Context {
	return context.WithValue(ctx, contextKey{}, hostID)
}

// HostID returns the authenticated host, or "" outside the middleware.
func HostID(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
