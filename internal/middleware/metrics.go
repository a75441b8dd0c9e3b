// File: internal/middleware/metrics.go
package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// HTTPRecorder receives request observations. *metrics.Recorder satisfies it.
type HTTPRecorder interface {
	ObserveHTTP(method, route string, status int, d time.Duration)
}

// Metrics records request counts and latency labelled by route template, so
// path parameters such as task ids do not explode label cardinality.
func Metrics(recorder HTTPRecorder) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapper := newResponseWriter(w)

			next.ServeHTTP(wrapper, r)

			route := "unmatched"
			if current := mux.CurrentRoute(r); current != nil {
				if tmpl, err := current.GetPathTemplate(); err == nil {
					route = tmpl
				}
			}
			recorder.ObserveHTTP(r.Method, route, wrapper.statusCode, time.Since(start))
		})
	}
}
