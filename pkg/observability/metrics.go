package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Analytics metrics
	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration *prometheus.HistogramVec

	// Monitoring job metrics
	JobsSubmitted *prometheus.CounterVec
	JobsCompleted *prometheus.CounterVec
	JobsFailed    *prometheus.CounterVec
	JobDuration   *prometheus.HistogramVec
	JobsRetained  prometheus.Gauge

	// Upstream metrics
	UpstreamRequestsTotal *prometheus.CounterVec
	CacheHitsTotal        *prometheus.CounterVec
	CacheMissesTotal      prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates and registers all metrics on the given registry (a
// fresh one when nil).
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regionpulse_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "regionpulse_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		AnalysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regionpulse_analyses_total",
				Help: "Synchronous analytic runs by kind and outcome",
			},
			[]string{"analytic", "outcome"},
		),
		AnalysisDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "regionpulse_analysis_duration_seconds",
				Help:    "Synchronous analytic duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"analytic"},
		),
		JobsSubmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regionpulse_monitoring_jobs_submitted_total",
				Help: "Monitoring jobs submitted by intent",
			},
			[]string{"intent"},
		),
		JobsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regionpulse_monitoring_jobs_completed_total",
				Help: "Monitoring jobs completed by intent",
			},
			[]string{"intent"},
		),
		JobsFailed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regionpulse_monitoring_jobs_failed_total",
				Help: "Monitoring jobs failed by intent",
			},
			[]string{"intent"},
		),
		JobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "regionpulse_monitoring_job_duration_seconds",
				Help:    "Monitoring job execution time in seconds",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			},
			[]string{"intent"},
		),
		JobsRetained: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "regionpulse_monitoring_jobs_retained",
				Help: "Jobs currently held in the retention window",
			},
		),
		UpstreamRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regionpulse_upstream_requests_total",
				Help: "Upstream collaborator requests by target and outcome",
			},
			[]string{"target", "outcome"},
		),
		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regionpulse_upstream_cache_hits_total",
				Help: "Upstream response cache hits by tier",
			},
			[]string{"tier"},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "regionpulse_upstream_cache_misses_total",
				Help: "Upstream response cache misses",
			},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AnalysesTotal,
		m.AnalysisDuration,
		m.JobsSubmitted,
		m.JobsCompleted,
		m.JobsFailed,
		m.JobDuration,
		m.JobsRetained,
		m.UpstreamRequestsTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
	)
	return m
}

// Handler returns the /metrics endpoint handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps an HTTP handler with request count and duration
// metrics. path should be the route template, not the raw URL, to keep
// label cardinality bounded.
func (m *Metrics) InstrumentHandler(path string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
