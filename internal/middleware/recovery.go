// File: internal/middleware/recovery.go
package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/iyunix/go-meddy/internal/logging"
)

// RecoverPanic turns a handler panic into a 500 JSON response.
func RecoverPanic(logger logging.Logger) func(http.Handler) http.Handler {
	logger = logging.OrNoOp(logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered",
						"error", err,
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()))

					w.Header().Set("Connection", "close")
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{"error": "Internal server error."})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
