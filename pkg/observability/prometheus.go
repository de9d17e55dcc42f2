package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus implements every hook interface on top of a private
// Prometheus registry.
type Prometheus struct {
	registry *prometheus.Registry

	StageDuration *prometheus.HistogramVec // labels: stage
	StageErrors   *prometheus.CounterVec   // labels: stage

	PositionLookups *prometheus.CounterVec // labels: result=hit|miss
	PositionEvicts  prometheus.Counter
	StaysResolved   *prometheus.CounterVec // labels: body, source=cache|search
	StaySearchDur   prometheus.Histogram
	SearchExhausted *prometheus.CounterVec // labels: body, direction
	VerifyAnomalies *prometheus.CounterVec // labels: body

	ReportCache      *prometheus.CounterVec // labels: key_type, result=hit|miss|set
	ReportCacheBytes *prometheus.CounterVec // labels: key_type

	HTTPRequests *prometheus.CounterVec   // labels: method, route, code
	HTTPDuration *prometheus.HistogramVec // labels: method, route
}

// NewPrometheus creates and registers all metrics.
func NewPrometheus() *Prometheus {
	m := &Prometheus{
		registry: prometheus.NewRegistry(),

		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jyotish_stage_duration_seconds",
			Help:    "Pipeline stage latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		StageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jyotish_stage_errors_total",
			Help: "Pipeline stages that returned an error",
		}, []string{"stage"}),

		PositionLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jyotish_position_cache_lookups_total",
			Help: "Position cache lookups by result",
		}, []string{"result"}),
		PositionEvicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jyotish_position_cache_evictions_total",
			Help: "Position cache FIFO evictions",
		}),
		StaysResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jyotish_sign_stays_total",
			Help: "Sign stays resolved, by body and source",
		}, []string{"body", "source"}),
		StaySearchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "jyotish_sign_stay_search_seconds",
			Help:    "Time spent resolving a sign stay",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		SearchExhausted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jyotish_boundary_search_exhausted_total",
			Help: "Boundary searches that hit their horizon",
		}, []string{"body", "direction"}),
		VerifyAnomalies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jyotish_retrograde_verification_anomalies_total",
			Help: "Entry verifications that lost track of a re-entry",
		}, []string{"body"}),

		ReportCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jyotish_report_cache_ops_total",
			Help: "Report cache operations by key type and result",
		}, []string{"key_type", "result"}),
		ReportCacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jyotish_report_cache_written_bytes_total",
			Help: "Bytes written to the report cache",
		}, []string{"key_type"}),

		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jyotish_http_requests_total",
			Help: "HTTP requests served",
		}, []string{"method", "route", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jyotish_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.StageDuration,
		m.StageErrors,
		m.PositionLookups,
		m.PositionEvicts,
		m.StaysResolved,
		m.StaySearchDur,
		m.SearchExhausted,
		m.VerifyAnomalies,
		m.ReportCache,
		m.ReportCacheBytes,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Prometheus) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Prometheus) OnStageStart(context.Context, string) {}

func (m *Prometheus) OnStageComplete(_ context.Context, stage string, d time.Duration, err error) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		m.StageErrors.WithLabelValues(stage).Inc()
	}
}

func (m *Prometheus) OnPositionLookup(hit bool) {
	if hit {
		m.PositionLookups.WithLabelValues("hit").Inc()
		return
	}
	m.PositionLookups.WithLabelValues("miss").Inc()
}

func (m *Prometheus) OnPositionEvict() { m.PositionEvicts.Inc() }

func (m *Prometheus) OnStayResolved(body string, cached bool, d time.Duration) {
	source := "search"
	if cached {
		source = "cache"
	} else {
		m.StaySearchDur.Observe(d.Seconds())
	}
	m.StaysResolved.WithLabelValues(body, source).Inc()
}

func (m *Prometheus) OnSearchExhausted(body, direction string) {
	m.SearchExhausted.WithLabelValues(body, direction).Inc()
}

func (m *Prometheus) OnVerificationAnomaly(body string) {
	m.VerifyAnomalies.WithLabelValues(body).Inc()
}

func (m *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	m.ReportCache.WithLabelValues(keyType, "hit").Inc()
}

func (m *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	m.ReportCache.WithLabelValues(keyType, "miss").Inc()
}

func (m *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	m.ReportCache.WithLabelValues(keyType, "set").Inc()
	m.ReportCacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Prometheus) OnRequest(context.Context, string, string) {}

func (m *Prometheus) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
