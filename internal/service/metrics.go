package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	opinionsSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opinion_submitted_total",
			Help: "Total number of submitted opinions",
		},
		[]string{"blinded"},
	)

	moderationFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "opinion_moderation_failures_total",
			Help: "Moderation calls that failed or timed out (opinion stored with score 0)",
		},
	)

	moderationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "opinion_moderation_duration_seconds",
			Help:    "Moderation scorer call duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		},
	)

	responsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opinion_responses_total",
			Help: "Admin responses applied, by new status",
		},
		[]string{"status"},
	)

	lookupDegradedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opinion_lookup_degraded_total",
			Help: "Lookup joins that failed and degraded to empty fields",
		},
		[]string{"lookup"},
	)

	exportExcludedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "opinion_export_excluded_total",
			Help: "Blinded rows dropped from spreadsheet exports",
		},
	)
)
