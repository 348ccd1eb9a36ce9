// Package metrics holds the Prometheus collectors of the explorer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry is served on /metrics. It is separate from the default registry so
// tests can create collectors freely.
var Registry = prometheus.NewRegistry()

var (
	IndexerRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "explorer",
		Subsystem: "indexer",
		Name:      "requests_total",
		Help:      "Requests sent to the indexer, by endpoint and status code.",
	}, []string{"endpoint", "code"})

	IndexerLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "explorer",
		Subsystem: "indexer",
		Name:      "request_duration_seconds",
		Help:      "Indexer request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})

	FeedMessages = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "explorer",
		Subsystem: "feed",
		Name:      "messages_total",
		Help:      "Messages received from the push channel.",
	})

	FeedReconnects = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "explorer",
		Subsystem: "feed",
		Name:      "reconnects_total",
		Help:      "Reconnection attempts to the push channel.",
	})

	FeedRefreshes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "explorer",
		Subsystem: "feed",
		Name:      "refreshes_total",
		Help:      "REST refreshes triggered by the push channel, by outcome.",
	}, []string{"outcome"})

	StaleResponses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "explorer",
		Subsystem: "state",
		Name:      "stale_responses_total",
		Help:      "Responses discarded because a newer request for the same resource was issued.",
	}, []string{"resource"})

	CurrentRound = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "explorer",
		Subsystem: "state",
		Name:      "current_round",
		Help:      "Latest round announced by the push channel.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		IndexerRequests,
		IndexerLatency,
		FeedMessages,
		FeedReconnects,
		FeedRefreshes,
		StaleResponses,
		CurrentRound,
	)
}
