// File: internal/middleware/logger.go
package middleware

import (
	"net/http"
	"time"

	"github.com/iyunix/go-meddy/internal/logging"
	"github.com/iyunix/go-meddy/internal/ratelimit"
)

// LoggingMiddleware logs incoming HTTP request & response details.
func LoggingMiddleware(logger logging.Logger) func(http.Handler) http.Handler {
	logger = logging.OrNoOp(logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapper := newResponseWriter(w)

			next.ServeHTTP(wrapper, r)

			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.RequestURI(),
				"status", wrapper.statusCode,
				"client_ip", ratelimit.GetClientIP(r),
				"duration", time.Since(start))
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
