// Package metrics registers the service's Prometheus collectors with the
// default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dispatch metrics
var (
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Total number of notification dispatch attempts",
		},
		[]string{"category", "status"}, // status: sent, failed, rejected
	)

	NotificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notification_duration_seconds",
			Help:    "Duration of notification dispatch including transport submission",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"category"},
	)

	AdminNotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_notifications_total",
			Help: "Total number of secondary operator notifications",
		},
		[]string{"result"}, // sent, failed, skipped
	)

	DeliveryLogErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "delivery_log_errors_total",
			Help: "Total number of delivery records that could not be written",
		},
	)

	ArchiveErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "archive_errors_total",
			Help: "Total number of composed messages that could not be archived",
		},
	)
)

// Transport metrics
var (
	TransportSendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "transport_send_duration_seconds",
			Help:    "Duration of mail transport submissions",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"transport"},
	)

	TransportHealthy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "transport_healthy",
			Help: "1 when the last transport health check passed, 0 otherwise",
		},
	)
)

// API metrics
var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	APIAuthFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "api_auth_failures_total",
			Help: "Total number of operator authentication failures",
		},
	)

	ContactRateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "contact_rate_limited_total",
			Help: "Total number of contact form submissions rejected by the rate limiter",
		},
	)
)

// Database metrics
var (
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)
