// File: internal/metrics/metrics.go
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "meddy"

// Recorder holds the service's Prometheus collectors. A nil *Recorder is
// valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	chatRoutes      *prometheus.CounterVec
	webFallbacks    *prometheus.CounterVec
	externalLatency *prometheus.HistogramVec
	tasks           *prometheus.CounterVec
	chunks          *prometheus.CounterVec
}

// New registers all collectors on a fresh registry, along with the Go and
// process collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration distribution",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		chatRoutes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chat_routes_total",
				Help:      "Chat messages by detected route",
			},
			[]string{"route"},
		),
		webFallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rag_web_fallbacks_total",
				Help:      "RAG answers that fell back to web search",
			},
			[]string{"reason"},
		),
		externalLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "external_call_duration_seconds",
				Help:      "Latency of calls to external dependencies",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"dependency", "outcome"},
		),
		tasks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tasks_total",
				Help:      "Background tasks by type and outcome",
			},
			[]string{"type", "outcome"},
		),
		chunks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chunking_nodes_total",
				Help:      "Nodes produced by dynamic chunking per strategy",
			},
			[]string{"strategy"},
		),
	}
}

func (r *Recorder) ObserveHTTP(method, route string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (r *Recorder) ObserveRoute(route string) {
	if r == nil {
		return
	}
	r.chatRoutes.WithLabelValues(route).Inc()
}

func (r *Recorder) ObserveWebFallback(reason string) {
	if r == nil {
		return
	}
	r.webFallbacks.WithLabelValues(reason).Inc()
}

func (r *Recorder) ObserveExternal(dependency string, d time.Duration, err error) {
	if r == nil {
		return
	}
	r.externalLatency.WithLabelValues(dependency, outcome(err)).Observe(d.Seconds())
}

func (r *Recorder) ObserveTask(taskType string, err error) {
	if r == nil {
		return
	}
	r.tasks.WithLabelValues(taskType, outcome(err)).Inc()
}

func (r *Recorder) ObserveChunks(strategy string, n int) {
	if r == nil {
		return
	}
	r.chunks.WithLabelValues(strategy).Add(float64(n))
}

// Handler exposes the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
