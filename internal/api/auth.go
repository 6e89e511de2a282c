package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/healsync/healsync-backend/internal/directory"
)

const (
	RoleDoctor  = "DOCTOR"
	RolePatient = "PATIENT"
	RoleAdmin   = "ADMIN"
)

const (
	accountIDKey contextKey = "account_id"
	roleKey      contextKey = "role"
)

type authClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator validates a bearer JWT (HS256) and stores the caller's
// account ID and role in the request context. Token issuance lives in the
// identity service; this side only verifies.
func Authenticator(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "missing_token", "a bearer token is required")
				return
			}

			var claims authClaims
			_, err := jwt.ParseWithClaims(
				strings.TrimPrefix(header, "Bearer "),
				&claims,
				func(*jwt.Token) (any, error) { return []byte(secret), nil },
				jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid_token", "token is invalid or expired")
				return
			}

			accountID, err := directory.ParseAccountID(claims.Subject)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid_token", "token subject is not an account ID")
				return
			}

			ctx := context.WithValue(r.Context(), accountIDKey, accountID)
			ctx = context.WithValue(ctx, roleKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route to callers carrying one of the given roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := RoleFromContext(r.Context())
			for _, role := range roles {
				if got == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "forbidden", "this operation requires role "+strings.Join(roles, " or "))
		})
	}
}

// AccountFromContext returns the authenticated caller's account ID.
func AccountFromContext(ctx context.Context) (directory.AccountID, bool) {
	id, ok := ctx.Value(accountIDKey).(directory.AccountID)
	return id, ok
}

// RoleFromContext returns the authenticated caller's role, empty if none.
func RoleFromContext(ctx context.Context) string {
	if role, ok := ctx.Value(roleKey).(string); ok {
		return role
	}
	return ""
}
