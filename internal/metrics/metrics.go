// Package metrics defines the Prometheus collectors for the document
// pipeline and exposes the scrape handler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the service updates.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	FilesProcessedTotal      *prometheus.CounterVec
	ExtractionAttemptsTotal  *prometheus.CounterVec
	ExtractionRetriesTotal   prometheus.Counter
	ExtractionFallbacksTotal prometheus.Counter
	ExtractionsInFlight      prometheus.Gauge
	EngineCallDuration       *prometheus.HistogramVec

	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter
}

// New creates and registers all collectors. A nil registerer means the
// default registry, which is what the binaries use.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		FilesProcessedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "files_processed_total",
				Help: "Total uploaded files processed, by outcome.",
			},
			[]string{"status"},
		),
		ExtractionAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "extraction_attempts_total",
				Help: "Total extraction attempts, by engine.",
			},
			[]string{"engine"},
		),
		ExtractionRetriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "extraction_retries_total",
				Help: "Total extraction attempts that were retries.",
			},
		),
		ExtractionFallbacksTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "extraction_fallbacks_total",
				Help: "Total vision-model fallbacks after primary-engine exhaustion.",
			},
		),
		ExtractionsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "extractions_in_flight",
				Help: "Units currently holding an extraction slot.",
			},
		),
		EngineCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "engine_call_duration_seconds",
				Help:    "Latency of one extraction attempt, by engine.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"engine"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "extraction_cache_hits_total",
				Help: "Total extraction cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "extraction_cache_misses_total",
				Help: "Total extraction cache misses.",
			},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.FilesProcessedTotal,
		m.ExtractionAttemptsTotal,
		m.ExtractionRetriesTotal,
		m.ExtractionFallbacksTotal,
		m.ExtractionsInFlight,
		m.EngineCallDuration,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
	)

	return m
}

// NewNop returns collectors wired to a private registry, for collaborators
// constructed without metrics.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// Handler returns the Prometheus scrape handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
