package knowledge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// embedCallsTotal counts embedding requests by provider and result.
	embedCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prism",
		Name:      "embed_calls_total",
		Help:      "Total embedding requests by provider and result",
	}, []string{"provider", "result"})

	// embedCacheTotal counts embedding cache lookups by outcome (hit, miss).
	embedCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prism",
		Name:      "embed_cache_total",
		Help:      "Embedding cache lookups by outcome",
	}, []string{"outcome"})

	// rankDurationSeconds measures end-to-end ranking latency.
	rankDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "prism",
		Name:      "rank_duration_seconds",
		Help:      "Latency of ranking chunks against a query",
		Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})
)
