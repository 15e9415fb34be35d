package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for the API and the worker.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	calculations    *prometheus.CounterVec
	payrollRows     prometheus.Counter
	sinReads        *prometheus.CounterVec
	jobs            *prometheus.CounterVec
}

// NewMetrics initialises the registry and the base metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payroll_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payroll_http_request_duration_seconds",
		Help:    "HTTP request latency per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	calculations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payroll_calculations_total",
		Help: "Pay period calculations by result.",
	}, []string{"result"})
	rows := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payroll_rows_created_total",
		Help: "Payroll rows written by calculations.",
	})
	sinReads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payroll_sin_reads_total",
		Help: "SIN vault reads by access type and outcome.",
	}, []string{"access_type", "outcome"})
	jobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payroll_jobs_total",
		Help: "Background tasks processed by type and result.",
	}, []string{"task", "result"})
	registry.MustRegister(requests, duration, calculations, rows, sinReads, jobs)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		calculations:    calculations,
		payrollRows:     rows,
		sinReads:        sinReads,
		jobs:            jobs,
	}
}

// Handler returns the /metrics endpoint handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Router serves /metrics and /healthz for processes without the API router.
func (m *Metrics) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())
	return r
}

// Middleware records request count and latency per route.
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

// ObserveCalculation counts a finished calculation and the rows it wrote.
func (m *Metrics) ObserveCalculation(result string, rows int) {
	if m == nil {
		return
	}
	m.calculations.WithLabelValues(result).Inc()
	if rows > 0 {
		m.payrollRows.Add(float64(rows))
	}
}

// ObserveSINRead counts a vault read decision.
func (m *Metrics) ObserveSINRead(accessType, outcome string) {
	if m == nil {
		return
	}
	m.sinReads.WithLabelValues(accessType, outcome).Inc()
}

// ObserveJob counts a processed background task.
func (m *Metrics) ObserveJob(task, result string) {
	if m == nil {
		return
	}
	m.jobs.WithLabelValues(task, result).Inc()
}

// Registerer exposes the registry for custom metrics.
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
