package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ragrouter"

// Router pipeline Prometheus metrics.
var (
	IntentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intent_total",
			Help:      "Classified query intents",
		},
		[]string{"intent", "outcome"}, // outcome: ok, fallback
	)

	ToolExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_executions_total",
			Help:      "Tool executions by outcome",
		},
		[]string{"tool", "status"},
	)

	RouteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "route_duration_seconds",
			Help:      "End-to-end router pipeline duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"intent"},
	)

	StoreDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_documents",
			Help:      "Documents held by the in-memory document store",
		},
	)
)

var registerOnce sync.Once

// Register registers the provider and router metrics. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			EmbeddingRequestsTotal,
			EmbeddingRequestDuration,
			EmbeddingTokensTotal,
			EmbeddingCacheTotal,
			ChatRequestsTotal,
			ChatRequestDuration,
			ChatTokensTotal,
			IntentTotal,
			ToolExecutionsTotal,
			RouteDuration,
			StoreDocuments,
		)
	})
}
