package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logo_engine_extractions_total",
			Help: "Total number of business-information extraction attempts",
		},
		[]string{"provider", "outcome"},
	)

	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "logo_engine_extraction_duration_seconds",
			Help: "Duration of extraction calls in seconds",
		},
		[]string{"provider"},
	)

	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logo_engine_generations_total",
			Help: "Total number of image generation calls",
		},
		[]string{"outcome"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "logo_engine_generation_duration_seconds",
			Help: "Duration of image generation calls in seconds",
			// Generation regularly takes tens of seconds; default buckets top
			// out at 10s.
			Buckets: []float64{1, 2.5, 5, 10, 20, 40, 60, 120, 300},
		},
		[]string{"outcome"},
	)

	GenerationRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logo_engine_generation_retries_total",
			Help: "Total number of generation attempt retries",
		},
	)

	GenerationPolls = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logo_engine_generation_polls_total",
			Help: "Total number of polling requests against generation jobs",
		},
	)
)

// Outcome label values shared by the counters above.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeModerated = "moderated"
	OutcomeTimeout   = "timeout"
)
