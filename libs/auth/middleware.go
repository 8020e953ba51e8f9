package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey int

const ctxKeyClaims ctxKey = iota

func ClaimsFromContext(ctx context.Context) *Claims {
	v, _ := ctx.Value(ctxKeyClaims).(*Claims)
	return v
}

// RequireOwner guards owner-facing endpoints. The identity service issues the
// tokens; this only verifies the signature and the role claim.
func RequireOwner(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if !strings.HasPrefix(raw, "Bearer ") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			claims, err := ParseAndVerifyHS256(strings.TrimPrefix(raw, "Bearer "), secret)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			if claims.Role != "owner" && claims.Role != "staff" {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
