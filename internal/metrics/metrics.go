// Package metrics registers all Prometheus collectors. Importing it is
// enough; collectors are package-level promauto vars.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pipeline metrics
	SearchesStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soriva_searches_started_total",
			Help: "Total number of search requests started",
		},
		[]string{"tier"},
	)

	SearchesCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soriva_searches_completed_total",
			Help: "Total number of search requests completed",
		},
		[]string{"tier", "source"},
	)

	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "soriva_search_duration_seconds",
			Help:    "End-to-end search duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tier"},
	)

	// Provider metrics
	ProviderCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soriva_provider_calls_total",
			Help: "Total provider calls by outcome",
		},
		[]string{"provider", "status"},
	)

	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "soriva_provider_latency_ms",
			Help:    "Provider call latency in milliseconds",
			Buckets: []float64{100, 250, 500, 1000, 2000, 5000, 10000},
		},
		[]string{"provider"},
	)

	// Quality gate metrics
	GateDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soriva_gate_decisions_total",
			Help: "Quality gate outcomes per provider",
		},
		[]string{"provider", "decision"},
	)

	// Verification metrics
	VerificationAgreement = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soriva_verification_agreement_total",
			Help: "Agreement level counts from the consistency engine",
		},
		[]string{"tier", "agreement"},
	)

	StrictSearches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soriva_strict_searches_total",
			Help: "High-risk strict searches by category and outcome",
		},
		[]string{"category", "status"},
	)

	// Quota metrics
	QuotaRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soriva_quota_rejections_total",
			Help: "Provider calls skipped because a quota denied them",
		},
		[]string{"provider", "kind"},
	)

	// Deep fetch metrics
	WebFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soriva_webfetch_total",
			Help: "Deep page fetches by outcome",
		},
		[]string{"status"},
	)
)
