package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval, enrichment and generation metrics.
var (
	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Vector collection search duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"collection"},
	)

	SearchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_errors_total",
			Help:      "Failed vector collection searches",
		},
		[]string{"collection"},
	)

	FusedCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fused_candidates",
			Help:      "Number of candidates after fusion",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20, 50},
		},
	)

	EnrichmentFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrichment_fallback_total",
			Help:      "Verses rendered with placeholder text",
		},
		[]string{"reason"}, // "store_error" / "missing_row"
	)

	GenerationAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_attempts_total",
			Help:      "Generative backend calls by outcome",
		},
		[]string{"outcome"}, // "success" / "error" / "too_short"
	)

	GenerationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Generative backend call duration in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 45, 60},
		},
		[]string{"model"},
	)

	ExplanationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "explanations_total",
			Help:      "Explanations returned by terminal state",
		},
		[]string{"state"}, // "success" / "fallback_success"
	)
)
