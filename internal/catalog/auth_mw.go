package catalog

import (
	"context"
	"net/http"
	"strings"

	"StoreFront/internal/auth"
	"StoreFront/pkg/kit"
)

type ctxKey string

const editorKey ctxKey = "editor"

// EditorFromContext returns the token subject that authorized a write.
func EditorFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(editorKey).(string)
	return v, ok
}

// AuthJWT guards write routes with a bearer token. A nil TokenMaker
// disables the guard (the catalog ships open by default, matching the
// mobile app it backs).
func AuthJWT(tm *auth.TokenMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if tm == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				kit.WriteError(w, r, http.StatusUnauthorized, "missing token", nil)
				return
			}

			claims, err := tm.Parse(strings.TrimPrefix(authz, "Bearer "))
			if err != nil || claims.Subject == "" {
				kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
				return
			}

			ctx := context.WithValue(r.Context(), editorKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
