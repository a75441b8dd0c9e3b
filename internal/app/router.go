// File: internal/app/router.go
package app

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/iyunix/go-meddy/internal/handlers"
	"github.com/iyunix/go-meddy/internal/logging"
	"github.com/iyunix/go-meddy/internal/metrics"
	"github.com/iyunix/go-meddy/internal/middleware"
	"github.com/iyunix/go-meddy/internal/ratelimit"
)

// RouterDeps is everything NewRouter mounts.
type RouterDeps struct {
	System *handlers.SystemHandler
	Chat   *handlers.ChatHandler
	Admin  *handlers.AdminHandler

	Metrics      *metrics.Recorder
	ChatLimiter  ratelimit.Limiter
	AdminLimiter ratelimit.Limiter
	AdminSecret  []byte
	CORSOrigins  []string
	Logger       logging.Logger
}

// NewRouter builds the HTTP API. CORS wraps the router so preflight requests
// are answered before route matching.
func NewRouter(d RouterDeps) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.RecoverPanic(d.Logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.LoggingMiddleware(d.Logger))
	r.Use(middleware.Metrics(d.Metrics))

	// --- Public Routes ---
	r.HandleFunc("/", d.System.Root).Methods("GET")
	r.HandleFunc("/ready", d.System.Ready).Methods("GET")
	r.HandleFunc("/health", d.System.Health).Methods("GET")
	r.Handle("/metrics", d.Metrics.Handler()).Methods("GET")

	// --- Chat Routes ---
	chatRoutes := r.PathPrefix("/chat").Subrouter()
	if d.ChatLimiter != nil {
		chatRoutes.Use(middleware.RateLimitMiddleware(d.ChatLimiter, "chat", d.Logger))
	}
	chatRoutes.HandleFunc("/complete", d.Chat.Complete).Methods("POST")
	chatRoutes.HandleFunc("/complete/{task_id}", d.Chat.GetResult).Methods("GET")
	chatRoutes.HandleFunc("/conversation", d.Chat.ResetConversation).Methods("DELETE")

	// --- Admin Routes ---
	admin := r.NewRoute().Subrouter()
	if d.AdminLimiter != nil {
		admin.Use(middleware.RateLimitMiddleware(d.AdminLimiter, "admin", d.Logger))
	}
	admin.Use(middleware.RequireAdmin(d.AdminSecret, d.Logger))
	admin.HandleFunc("/collections/create", d.Admin.CreateCollection).Methods("POST")
	admin.HandleFunc("/documents/create", d.Admin.CreateDocument).Methods("POST")
	admin.HandleFunc("/documents", d.Admin.ListDocuments).Methods("GET")
	admin.HandleFunc("/documents/{id:[0-9]+}", d.Admin.GetDocument).Methods("GET")

	// --- Custom Error Handlers ---
	r.NotFoundHandler = jsonError(http.StatusNotFound, "Not found")
	r.MethodNotAllowedHandler = jsonError(http.StatusMethodNotAllowed, "Method not allowed")

	return middleware.CORS(d.CORSOrigins)(r)
}

func jsonError(status int, message string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": message})
	})
}
