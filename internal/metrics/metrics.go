package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ingress metrics
	EventsAccepted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collector_events_accepted_total",
			Help: "Total number of accepted events by delivery path",
		},
		[]string{"outcome"},
	)

	// Queue metrics
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "collector_queue_depth",
			Help: "Current depth of the event queue",
		},
	)

	QueueCapacity = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "collector_queue_capacity",
			Help: "Maximum capacity of the event queue",
		},
	)

	// Bulk write metrics
	FlushDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "collector_bulk_flush_duration_seconds",
			Help:    "Duration of bulk write flushes in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	EventsIndexed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "collector_bulk_events_indexed_total",
			Help: "Total number of events successfully indexed",
		},
	)

	EventsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "collector_bulk_events_failed_total",
			Help: "Total number of events that failed indexing",
		},
	)

	// Pending store metrics
	PendingInserts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "collector_pending_inserts_total",
			Help: "Total number of events persisted to the pending store",
		},
	)

	PendingInsertErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "collector_pending_insert_errors_total",
			Help: "Total number of failed pending store inserts",
		},
	)

	// Replay metrics
	ReplayedEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collector_replayed_events_total",
			Help: "Total number of replay attempts by result",
		},
		[]string{"result"},
	)

	// Rate limiting metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collector_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"key"},
	)
)
