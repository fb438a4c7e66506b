package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Responses-API Metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "responses",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "responses",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint"},
	)

	// Upstream chat-completion call duration
	LLMCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "responses",
			Subsystem: "api",
			Name:      "llm_call_duration_seconds",
			Help:      "Chat-completion call duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"model", "status"},
	)

	// Ancestor chain length observed during reconstruction
	ChainLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "responses",
			Subsystem: "api",
			Name:      "chain_length",
			Help:      "Number of responses visited per chain reconstruction",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64},
		},
	)

	// Lossy-translation drop counter
	TranslationDropsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "responses",
			Subsystem: "api",
			Name:      "translation_drops_total",
			Help:      "Request elements dropped by the lossy schema translation",
		},
		[]string{"kind"},
	)

	// DB query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "responses",
			Subsystem: "api",
			Name:      "db_query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"operation"},
	)
)
