package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"vegmart/applog"
	"vegmart/utils"
)

// Key type for context
type contextKey string

const UserContextKey = contextKey("user")

type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func reject(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Success: false, Message: msg})
}

// ClaimsFrom returns the claims Auth attached to ctx
func ClaimsFrom(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*utils.Claims)
	return claims, ok
}

// Auth verifies the bearer access token and attaches its claims to the context
func Auth(tokens *utils.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				reject(w, http.StatusUnauthorized, "Authorization header missing")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				reject(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			claims, err := tokens.ParseAccess(parts[1])
			if err != nil {
				applog.Security(r.Context(), "auth.token.reject", nil)
				reject(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			if m := applog.Meta(r.Context()); m != nil {
				m.UserID = claims.UserID
			}
			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole lets the request through only when the authenticated role is
// one of roles. It must run after Auth.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok {
				reject(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			if !allowed[claims.Role] {
				applog.Security(r.Context(), "authz.role.deny", map[string]any{"role": claims.Role})
				reject(w, http.StatusForbidden, "Forbidden: insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
