// File: internal/middleware/auth.go
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/iyunix/go-meddy/internal/auth"
	"github.com/iyunix/go-meddy/internal/logging"
)

// RequireAdmin accepts requests carrying a valid admin bearer token. With an
// empty secret the check is disabled.
func RequireAdmin(secret []byte, logger logging.Logger) func(http.Handler) http.Handler {
	logger = logging.OrNoOp(logger)
	return func(next http.Handler) http.Handler {
		if len(secret) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				logger.Warn("admin request without bearer token", "path", r.URL.Path)
				deny(w, http.StatusUnauthorized, "Missing bearer token")
				return
			}

			claims, err := auth.ValidateToken(strings.TrimSpace(token), secret)
			if err != nil {
				logger.Warn("admin request with invalid token", "path", r.URL.Path, "error", err)
				deny(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			if claims.Role != auth.RoleAdmin {
				logger.Warn("non-admin token on admin route", "subject", claims.Subject, "path", r.URL.Path)
				deny(w, http.StatusForbidden, "Forbidden")
				return
			}

			ctx := context.WithValue(r.Context(), SubjectKey, claims.Subject)
			ctx = context.WithValue(ctx, RoleKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func deny(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
