package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Bootstrap outcome labels. Fallback covers the documented default-role
// and hard-coded permission paths; emergency is the catastrophic recovery
// principal and should stay near zero in a healthy deployment.
const (
	BootstrapNormal    = "normal"
	BootstrapFallback  = "fallback"
	BootstrapEmergency = "emergency"
)

// Metrics collects Prometheus metrics for the application.
type Metrics struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	bootstrapOutcomes *prometheus.CounterVec
	repairWrites      *prometheus.CounterVec
}

// NewMetrics initialises the registry and base metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rrsa_http_requests_total",
		Help: "HTTP requests by route and status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rrsa_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	bootstraps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rrsa_session_bootstraps_total",
		Help: "Session bootstraps by resolution outcome.",
	}, []string{"outcome"})
	repairs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rrsa_permission_repairs_total",
		Help: "Permission self-heal writes by result.",
	}, []string{"result"})
	registry.MustRegister(requests, duration, bootstraps, repairs)
	return &Metrics{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:     requests,
		requestDuration:   duration,
		bootstrapOutcomes: bootstraps,
		repairWrites:      repairs,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
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

// ObserveBootstrap counts a session bootstrap by outcome.
func (m *Metrics) ObserveBootstrap(outcome string) {
	if m == nil {
		return
	}
	m.bootstrapOutcomes.WithLabelValues(outcome).Inc()
}

// ObserveRepair counts a permission self-heal write attempt.
func (m *Metrics) ObserveRepair(result string) {
	if m == nil {
		return
	}
	m.repairWrites.WithLabelValues(result).Inc()
}

// Registerer exposes the registry for registering custom metrics.
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
