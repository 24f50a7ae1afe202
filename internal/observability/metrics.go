package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Domain counters. Registered on the default registerer so handlers and jobs
// can increment them without threading a Metrics value everywhere.
var (
	CalculationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "palisade_bom_calculations_total",
		Help: "Number of BOM calculation runs completed.",
	})
	CalculationErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "palisade_bom_calculation_errors_total",
		Help: "Number of BOM calculation runs that failed.",
	})
	PriceResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "palisade_price_resolutions_total",
		Help: "Number of price resolutions by cascade source.",
	}, []string{"source"})
	CatalogReloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "palisade_catalog_reloads_total",
		Help: "Number of catalog snapshot loads from the database.",
	})
	CatalogValidationErrors = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "palisade_catalog_validation_errors",
		Help: "Violations found by the most recent catalog validation.",
	})
)

// Metrics collects HTTP Prometheus metrics for the application.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics initializes the registry and the base HTTP metrics. The default
// registerer's domain counters are gathered alongside.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "palisade_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "palisade_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	registry.MustRegister(requests, duration)

	gatherers := prometheus.Gatherers{registry, prometheus.DefaultGatherer}
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
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

// Registerer exposes the registry for custom metric registration.
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
