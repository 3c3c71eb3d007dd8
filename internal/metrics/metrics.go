// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Ingestion Metrics
	ReadingsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensor_readings_ingested_total",
			Help: "Total number of readings accepted, by source and persistence outcome",
		},
		[]string{"source", "persisted"}, // source: http, mqtt
	)

	ReadingsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensor_readings_rejected_total",
			Help: "Total number of readings rejected before ingestion",
		},
		[]string{"source", "reason"}, // reason: auth, validation, decode
	)

	// Session Metrics
	SessionRunID = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cip_run_id",
			Help: "Current CIP run identifier",
		},
	)

	SessionRollovers = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cip_run_rollovers_total",
			Help: "Number of times a reading gap exceeded the session timeout",
		},
	)

	// Storage Metrics
	StorageWriteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_write_duration_seconds",
			Help:    "Duration of backend writes in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"driver"},
	)

	StorageWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_writes_total",
			Help: "Total number of backend writes by result",
		},
		[]string{"driver", "result"}, // result: success, failure, skipped
	)

	StorageQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_queries_total",
			Help: "Total number of pass-through queries by result",
		},
		[]string{"driver", "result"}, // result: success, error, unavailable
	)

	StorageState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storage_connectivity_state",
			Help: "Storage connectivity (0=uninitialized, 1=connected, 2=degraded)",
		},
		[]string{"driver"},
	)

	StorageInitAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_initialize_attempts_total",
			Help: "Total number of backend initialization attempts by result",
		},
		[]string{"driver", "result"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of live-view subscribers",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of events enqueued to subscribers",
		},
	)

	WSSubscribeRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_subscribe_rejected_total",
			Help: "Total number of subscription attempts closed with a policy violation",
		},
		[]string{"reason"}, // reason: auth, quota
	)

	WSPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_subscribers_pruned_total",
			Help: "Total number of subscribers removed after a failed send",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// MQTT Metrics
	MQTTMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mqtt_messages_total",
			Help: "Total number of MQTT messages received by outcome",
		},
		[]string{"outcome"}, // outcome: ingested, invalid
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordAPIRequest records a completed HTTP request.
func RecordAPIRequest(method, route, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordIngest counts an accepted reading.
func RecordIngest(source string, persisted bool) {
	p := "false"
	if persisted {
		p = "true"
	}
	ReadingsIngested.WithLabelValues(source, p).Inc()
}

// RecordRejection counts a reading refused before ingestion.
func RecordRejection(source, reason string) {
	ReadingsRejected.WithLabelValues(source, reason).Inc()
}

// RecordRunID publishes the current run id, counting a rollover when it advanced.
func RecordRunID(runID int64, rolled bool) {
	SessionRunID.Set(float64(runID))
	if rolled {
		SessionRollovers.Inc()
	}
}

// RecordStorageWrite records one write attempt. A zero duration with
// result "skipped" means the write was short-circuited while not connected.
func RecordStorageWrite(driver, result string, duration time.Duration) {
	StorageWrites.WithLabelValues(driver, result).Inc()
	if result != "skipped" {
		StorageWriteDuration.WithLabelValues(driver).Observe(duration.Seconds())
	}
}

// RecordStorageQuery records one pass-through query.
func RecordStorageQuery(driver, result string) {
	StorageQueries.WithLabelValues(driver, result).Inc()
}

// SetStorageState publishes the connectivity state as 0, 1 or 2.
func SetStorageState(driver string, state int) {
	StorageState.WithLabelValues(driver).Set(float64(state))
}

// RecordStorageInit records an initialization attempt.
func RecordStorageInit(driver string, ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	StorageInitAttempts.WithLabelValues(driver, result).Inc()
}
