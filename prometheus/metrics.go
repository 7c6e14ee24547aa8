package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"smartfactory/pkg/config"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthErrorsCounter   prometheus.CounterVec

	// Lifecycle metrics
	LotTransitionsCounter      prometheus.CounterVec
	TransitionRejectedCounter  prometheus.CounterVec
	HygieneGateFailuresCounter prometheus.Counter

	// Stage metrics
	ReceptionOutcomeCounter prometheus.CounterVec

	// IoT metrics
	SensorAlertsCounter prometheus.CounterVec
	SensorValueGauge    prometheus.GaugeVec

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	prefix := config.Metrics.Prefix

	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	AuthAttemptsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
	)

	AuthErrorsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"reason"},
	)

	LotTransitionsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_lot_transitions_total",
			Help: "Total number of applied lot status transitions",
		},
		[]string{"from", "to"},
	)

	TransitionRejectedCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_lot_transitions_rejected_total",
			Help: "Total number of rejected lot status transitions",
		},
		[]string{"to"},
	)

	HygieneGateFailuresCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_hygiene_gate_failures_total",
			Help: "Total number of stage submissions rejected by the hygiene gate",
		},
	)

	ReceptionOutcomeCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_receptions_total",
			Help: "Total number of receptions by outcome",
		},
		[]string{"outcome"},
	)

	SensorAlertsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_sensor_alerts_total",
			Help: "Total number of sensor threshold alerts",
		},
		[]string{"sensor_id", "kind"},
	)

	SensorValueGauge = *promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: prefix + "_sensor_value",
			Help: "Latest reported value per sensor",
		},
		[]string{"sensor_id", "type"},
	)

	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordAuthError increments the counter for a failed authentication
func RecordAuthError(reason string) {
	AuthErrorsCounter.WithLabelValues(reason).Inc()
}

// RecordLotTransition increments the counter for an applied transition
func RecordLotTransition(from, to string) {
	LotTransitionsCounter.WithLabelValues(from, to).Inc()
}

// RecordRejectedTransition increments the counter for a rejected transition
func RecordRejectedTransition(to string) {
	TransitionRejectedCounter.WithLabelValues(to).Inc()
}

// RecordReception increments the counter for a reception outcome
func RecordReception(outcome string) {
	ReceptionOutcomeCounter.WithLabelValues(outcome).Inc()
}

// RecordSensorAlert increments the counter for a threshold violation
func RecordSensorAlert(sensorID, kind string) {
	SensorAlertsCounter.WithLabelValues(sensorID, kind).Inc()
}

// UpdateSensorValue sets the latest reported value for a sensor
func UpdateSensorValue(sensorID, sensorType string, value float64) {
	SensorValueGauge.WithLabelValues(sensorID, sensorType).Set(value)
}
