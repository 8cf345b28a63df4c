package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for the sync outcome counter.
const (
	OutcomeSuccess  = "success"
	OutcomeNoChange = "no_change"
	OutcomeError    = "error"
)

// SyncMetrics holds the Prometheus collectors for the sync engine.
type SyncMetrics struct {
	Outcomes         *prometheus.CounterVec
	RateLimitHits    prometheus.Counter
	MappingDeletions prometheus.Counter
	RunDuration      prometheus.Histogram
}

// NewSyncMetrics registers and returns the sync collectors.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	factory := promauto.With(reg)
	return &SyncMetrics{
		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sync_outcomes_total",
			Help: "Per-SKU sync outcomes by status.",
		}, []string{"status"}),
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "sync_rate_limit_hits_total",
			Help: "Rate-limit responses received from external APIs.",
		}),
		MappingDeletions: factory.NewCounter(prometheus.CounterOpts{
			Name: "sync_mapping_deletions_total",
			Help: "Stale mappings deleted after the storefront reported the variant gone.",
		}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sync_run_duration_seconds",
			Help:    "Duration of one full sync pass for a shop.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
}
