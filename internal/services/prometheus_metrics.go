package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusMetrics struct {
	accountOperations         *prometheus.CounterVec
	balanceOperationDuration  *prometheus.HistogramVec
	accountsCreatedTotal      *prometheus.CounterVec
	accountsDeletedTotal      prometheus.Counter
	transfersTotal            *prometheus.CounterVec
	transferDuration          prometheus.Histogram
	transferAmount            prometheus.Histogram
	authenticationEventsTotal *prometheus.CounterVec
	registeredUsersTotal      prometheus.Counter
}

// NewPrometheusMetrics registers the collectors with the default registry.
// Call it once per process.
func NewPrometheusMetrics() MetricsRecorderInterface {
	return NewPrometheusMetricsWithRegistry(prometheus.DefaultRegisterer)
}

func NewPrometheusMetricsWithRegistry(reg prometheus.Registerer) MetricsRecorderInterface {
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		accountOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "account_operations_total",
				Help: "Total number of account balance operations",
			},
			[]string{"operation", "status"},
		),
		balanceOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "account_operation_duration_milliseconds",
				Help:    "Balance operation duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"operation"},
		),
		accountsCreatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "accounts_created_total",
				Help: "Total number of accounts created",
			},
			[]string{"account_type"},
		),
		accountsDeletedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "accounts_deleted_total",
				Help: "Total number of accounts deleted",
			},
		),
		transfersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transfers_total",
				Help: "Total number of transfers processed",
			},
			[]string{"status"},
		),
		transferDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "transfer_duration_milliseconds",
				Help:    "Transfer processing duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		transferAmount: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "transfer_amount",
				Help:    "Transfer amount in base currency units",
				Buckets: prometheus.ExponentialBuckets(1, 10, 8),
			},
		),
		authenticationEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authentication_events_total",
				Help: "Total number of authentication events",
			},
			[]string{"event_type"},
		),
		registeredUsersTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "registered_users_total",
				Help: "Total number of users registered",
			},
		),
	}
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	status := tags["status"]

	switch name {
	case "account_operation":
		if operation := tags["operation"]; operation != "" && status != "" {
			m.accountOperations.WithLabelValues(operation, status).Inc()
		}
	case "account_created":
		m.accountsCreatedTotal.WithLabelValues(tags["account_type"]).Inc()
	case "account_deleted":
		m.accountsDeletedTotal.Inc()
	case "transfers_total":
		if status != "" {
			m.transfersTotal.WithLabelValues(status).Inc()
		}
	case "authentication_event":
		if eventType := tags["event_type"]; eventType != "" {
			m.authenticationEventsTotal.WithLabelValues(eventType).Inc()
		}
	case "user_registered":
		m.registeredUsersTotal.Inc()
	}
}

func (m *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration) {
	switch name {
	case "deposit", "withdraw":
		m.balanceOperationDuration.WithLabelValues(name).Observe(float64(duration.Milliseconds()))
	case "transfer_duration_success", "transfer_duration_failed":
		m.transferDuration.Observe(float64(duration.Milliseconds()))
	}
}

func (m *PrometheusMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	switch name {
	case "transfer_amount":
		m.transferAmount.Observe(value)
	}
}
