// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package models

import "time"

// HealthStatus is the /health payload. It is always served with 200; a
// degraded backend shows up in Status and Warnings.
type HealthStatus struct {
	Status       string             `json:"status"` // "healthy" or "degraded"
	Timestamp    time.Time          `json:"timestamp"`
	Version      string             `json:"version"`
	Service      string             `json:"service"`
	Uptime       float64            `json:"uptime_seconds"`
	Warnings     []string           `json:"warnings,omitempty"`
	Dependencies HealthDependencies `json:"dependencies"`
	Session      SessionSnapshot    `json:"session"`
	Subscribers  int                `json:"subscribers"`
}

// HealthDependencies reports external collaborators.
type HealthDependencies struct {
	Storage        StorageHealth `json:"storage"`
	Authentication AuthHealth    `json:"authentication"`
}

// StorageHealth describes the time-series backend.
type StorageHealth struct {
	Driver    string `json:"driver"`
	State     string `json:"state"`
	Connected bool   `json:"connected"`
	Target    string `json:"target"`
	Database  string `json:"database,omitempty"`
}

// AuthHealth reports which credentials are configured, never their values.
type AuthHealth struct {
	APIKeyConfigured          bool `json:"api_key_configured"`
	WebSocketAPIKeyConfigured bool `json:"websocket_api_key_configured"`
}

// SessionSnapshot is the Session Tracker state at a point in time.
type SessionSnapshot struct {
	RunID         int64      `json:"cip_id"`
	LastReadingAt *time.Time `json:"last_reading_at,omitempty"`
}

// QueryResult is the response of the SQL pass-through endpoints.
type QueryResult struct {
	Query    string                   `json:"query"`
	Results  []map[string]interface{} `json:"results"`
	RowCount int                      `json:"row_count"`
}

// QueryRequest is the body of POST /api/v1/query/sql.
type QueryRequest struct {
	Query string `json:"query" validate:"required,max=10000"`
}
