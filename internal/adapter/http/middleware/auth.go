package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/olekh/ledgerd/internal/infrastructure/auth"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// CustomerContextKey is the context key for the authenticated
	// customer identity
	CustomerContextKey ContextKey = "customer"
)

// AuthMiddleware creates an authentication middleware. Every request must
// carry a bearer token whose claims name the customer identity.
func AuthMiddleware(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := jwtManager.Verify(parts[1])
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), CustomerContextKey, claims.Customer)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CustomerFromContext extracts the authenticated customer identity from
// context.
func CustomerFromContext(ctx context.Context) (string, bool) {
	customer, ok := ctx.Value(CustomerContextKey).(string)
	return customer, ok && customer != ""
}
