// File: internal/middleware/ratelimit.go
package middleware

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"github.com/iyunix/go-meddy/internal/logging"
	"github.com/iyunix/go-meddy/internal/ratelimit"
)

// RateLimitMiddleware limits requests per client IP.
func RateLimitMiddleware(limiter ratelimit.Limiter, name string, logger logging.Logger) func(http.Handler) http.Handler {
	logger = logging.OrNoOp(logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := ratelimit.GetClientIP(r)
			allowed, info := limiter.Allow(name + ":" + clientIP)

			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))

			if !allowed {
				statusMsg := "RATE LIMITED"
				if info.Banned {
					statusMsg = "BANNED"
				}
				logger.Warn("request blocked by rate limiter", "limiter", name, "client_ip", clientIP, "status", statusMsg)

				retryAfter := int(math.Ceil(info.RetryAfter.Seconds()))
				if retryAfter > 0 {
					w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"error":      "Too many requests. Please try again later.",
					"retryAfter": retryAfter,
					"banned":     info.Banned,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
