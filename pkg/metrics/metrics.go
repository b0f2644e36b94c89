package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BorrowRequestsCreated counts borrow request creations by notification outcome
	// (notified|partial|skipped|failed).
	BorrowRequestsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wollyshare_borrow_requests_created_total",
			Help: "Total number of borrow requests created",
		},
		[]string{"notify"},
	)

	// BorrowStatusTransitions counts owner decisions by resulting status (approved|rejected).
	BorrowStatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wollyshare_borrow_status_transitions_total",
			Help: "Total number of borrow request status transitions",
		},
		[]string{"status"},
	)

	// ChatDeliveries records chat relay attempts by result (delivered|missing_channel|failed).
	ChatDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wollyshare_chat_deliveries_total",
			Help: "Total number of chat notification delivery attempts",
		},
		[]string{"result"},
	)

	// RealtimeSubscribers tracks currently connected realtime clients.
	RealtimeSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wollyshare_realtime_subscribers",
			Help: "Number of connected realtime subscribers",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wollyshare_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
