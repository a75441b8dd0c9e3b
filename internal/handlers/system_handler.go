// File: internal/handlers/system_handler.go
package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/iyunix/go-meddy/internal/logging"
)

const welcomeMessage = "Welcome to the Vietnamese Medical RAG-QA System API!"

// HealthCheck probes one backing service.
type HealthCheck func(ctx context.Context) error

type SystemHandler struct {
	checks  map[string]HealthCheck
	timeout time.Duration
	now     func() time.Time
	logger  logging.Logger
}

func NewSystemHandler(checks map[string]HealthCheck, logger logging.Logger) *SystemHandler {
	return &SystemHandler{
		checks:  checks,
		timeout: 5 * time.Second,
		now:     time.Now,
		logger:  logging.OrNoOp(logger),
	}
}

func (h *SystemHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": welcomeMessage})
}

// Ready reports that the process is serving.
func (h *SystemHandler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ready",
		"timestamp": h.now().Unix(),
	})
}

// Health runs every dependency check and answers 503 if any fails.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]string, len(names))
	healthy := true
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.logger.Warn("health check failed", "dependency", name, "error", err)
			results[name] = err.Error()
			healthy = false
			continue
		}
		results[name] = "ok"
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status":    status,
		"checks":    results,
		"timestamp": h.now().Unix(),
	})
}
