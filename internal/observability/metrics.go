// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the indexer.
type Metrics struct {
	// Ingestion metrics
	NotificationsReceived prometheus.Counter
	TransactionsIndexed   prometheus.Counter
	EventsDecoded         *prometheus.CounterVec
	FetchErrors           prometheus.Counter
	PersistenceErrors     prometheus.Counter

	// Subscription metrics
	Reconnects prometheus.Counter

	// Pipeline state
	QueueDepth      prometheus.Gauge
	HighestSlotSeen prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "campaign_indexer"
	}

	return &Metrics{
		NotificationsReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "notifications_received_total",
			Help:      "Total number of log notifications received from the subscription",
		}),
		TransactionsIndexed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "transactions_indexed_total",
			Help:      "Total number of transactions persisted",
		}),
		EventsDecoded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "events_decoded_total",
			Help:      "Total number of campaign events decoded by kind",
		}, []string{"kind"}),
		FetchErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "fetch_errors_total",
			Help:      "Total number of notifications dropped due to fetch failures",
		}),
		PersistenceErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "persistence_errors_total",
			Help:      "Total number of notifications aborted due to storage failures",
		}),
		Reconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subscription",
			Name:      "reconnects_total",
			Help:      "Total number of WebSocket reconnect attempts",
		}),
		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "queue_depth",
			Help:      "Current number of notifications waiting in the pipeline queue",
		}),
		HighestSlotSeen: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "highest_slot_seen",
			Help:      "Highest Solana slot number seen",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordNotificationReceived increments the notifications received counter.
func RecordNotificationReceived() {
	DefaultMetrics.NotificationsReceived.Inc()
}

// RecordTransactionIndexed increments the transactions indexed counter.
func RecordTransactionIndexed() {
	DefaultMetrics.TransactionsIndexed.Inc()
}

// RecordEventDecoded increments the decoded events counter for a kind.
func RecordEventDecoded(kind string) {
	DefaultMetrics.EventsDecoded.WithLabelValues(kind).Inc()
}

// RecordFetchError increments the fetch errors counter.
func RecordFetchError() {
	DefaultMetrics.FetchErrors.Inc()
}

// RecordPersistenceError increments the persistence errors counter.
func RecordPersistenceError() {
	DefaultMetrics.PersistenceErrors.Inc()
}

// RecordReconnect increments the reconnects counter.
func RecordReconnect() {
	DefaultMetrics.Reconnects.Inc()
}

// UpdateQueueDepth updates the queue depth gauge.
func UpdateQueueDepth(depth int) {
	DefaultMetrics.QueueDepth.Set(float64(depth))
}

// UpdateHighestSlot updates the highest slot seen gauge.
func UpdateHighestSlot(slot int64) {
	DefaultMetrics.HighestSlotSeen.Set(float64(slot))
}
