// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package models

// APIError is the machine-readable half of an error response.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorResponse is the body of every non-2xx JSON response. Detail carries
// the human-readable message at the top level for simple clients.
type ErrorResponse struct {
	Detail string   `json:"detail"`
	Error  APIError `json:"error"`
}

// PingResponse is the /ping payload.
type PingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}
