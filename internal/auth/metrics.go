// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package auth

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// KeyChecks counts API key verifications.
// Labels:
//   - surface: "ingest", "websocket"
//   - outcome: "success", "missing", "invalid", "not_configured"
var KeyChecks = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "api_key_checks_total",
		Help: "Total number of API key verifications",
	},
	[]string{"surface", "outcome"},
)

func recordCheck(surface string, err error) {
	KeyChecks.WithLabelValues(surface, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrMissingKey):
		return "missing"
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	default:
		return "invalid"
	}
}
