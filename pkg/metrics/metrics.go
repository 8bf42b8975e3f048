// Package metrics registers the Prometheus collectors the service reports.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts requests by method, path and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and path
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// DatabaseConnectionsGauge reports pool state by connection state
	DatabaseConnectionsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "database_connections",
			Help: "Database connection pool state",
		},
		[]string{"state"},
	)

	// TransactionsRecordedTotal counts committed ledger entries by type
	TransactionsRecordedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transactions_recorded_total",
			Help: "Total ledger transactions recorded",
		},
		[]string{"type"},
	)

	// AlertsTriggeredTotal counts alerts triggered by evaluation passes
	AlertsTriggeredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alerts_triggered_total",
			Help: "Total price alerts triggered",
		},
	)

	// ConcurrencyConflictsTotal counts optimistic lock failures at commit
	ConcurrencyConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "concurrency_conflicts_total",
			Help: "Total optimistic concurrency conflicts",
		},
	)
)
