package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the Prometheus metrics of the service.
type Metrics struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	accessDecisions  *prometheus.CounterVec
	authOutcomes     *prometheus.CounterVec
	catalogPermCount prometheus.Counter
}

// NewMetrics initialises the registry and every collector.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "core_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "core_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "core_access_decisions_total",
		Help: "Service key gate verdicts.",
	}, []string{"decision"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "core_auth_outcomes_total",
		Help: "Bearer token authentication outcomes.",
	}, []string{"state"})
	cataloged := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "core_catalog_permissions_created_total",
		Help: "Permissions inserted by the startup catalog.",
	})
	registry.MustRegister(requests, duration, decisions, outcomes, cataloged)
	registry.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	return &Metrics{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:    requests,
		requestDuration:  duration,
		accessDecisions:  decisions,
		authOutcomes:     outcomes,
		catalogPermCount: cataloged,
	}
}

// Handler returns the http.Handler serving /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveAccessDecision counts one service key verdict.
func (m *Metrics) ObserveAccessDecision(decision string) {
	if m == nil {
		return
	}
	m.accessDecisions.WithLabelValues(decision).Inc()
}

// ObserveAuthOutcome counts one authentication outcome.
func (m *Metrics) ObserveAuthOutcome(state string) {
	if m == nil {
		return
	}
	m.authOutcomes.WithLabelValues(state).Inc()
}

// AddCatalogPermissions adds n newly cataloged permissions.
func (m *Metrics) AddCatalogPermissions(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.catalogPermCount.Add(float64(n))
}

// Registerer exposes the registry for custom collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
