package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Latency buckets in milliseconds
	latencyBuckets = []float64{
		25, 50, 100,
		250, 500, 1000,
		2500, 5000, 10000,
		30000, 60000,
	}

	AnalysesTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "modgate_analyses_total",
			Help: "Total number of moderation analyses by verdict risk level",
		},
		[]string{"risk_level", "safe"},
	)

	AnalysisLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "modgate_analysis_latency_ms",
			Help:    "Per-item moderation latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"mode"}, // single or batch
	)

	AnalyzerFailures = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "modgate_analyzer_failures_total",
			Help: "Analyzer-local failures by modality",
		},
		[]string{"analyzer"},
	)

	BatchSize = promauto.With(registerer).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "modgate_batch_size",
			Help:    "Number of items per batch request",
			Buckets: []float64{1, 2, 5, 10, 15, 20},
		},
	)

	CacheHits = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "modgate_verdict_cache_total",
			Help: "Verdict cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	HTTPRequestsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "modgate_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "modgate_http_request_latency_ms",
			Help:    "HTTP request latency in milliseconds by route",
			Buckets: latencyBuckets,
		},
		[]string{"route"},
	)
)

// Handler exposes the service registry for the metrics side port.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
