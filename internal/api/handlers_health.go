// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/sensorflow/internal/config"
	"github.com/tomtom215/sensorflow/internal/models"
)

// Health statuses.
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// Health reports service and dependency state. It always answers 200; a
// degraded backend shows in status and warnings.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.healthStatus(time.Now()))
}

func (h *Handler) healthStatus(now time.Time) *models.HealthStatus {
	sec := h.config.Security
	st := h.config.Storage

	status := StatusHealthy
	var warnings []string
	if !h.gateway.Connected() {
		status = StatusDegraded
		warnings = append(warnings, fmt.Sprintf("Storage backend (%s) connection unavailable", h.gateway.Driver()))
	}
	if !sec.KeysConfigured() {
		warnings = append(warnings, "API keys not fully configured")
	}

	storageHealth := models.StorageHealth{
		Driver:    h.gateway.Driver(),
		State:     h.gateway.State().String(),
		Connected: h.gateway.Connected(),
		Target:    st.Target(),
	}
	if st.Driver == config.DriverInfluxDB {
		storageHealth.Database = st.Database
	}

	return &models.HealthStatus{
		Status:    status,
		Timestamp: now.UTC(),
		Version:   h.version,
		Service:   ServiceName,
		Uptime:    now.Sub(h.startTime).Seconds(),
		Warnings:  warnings,
		Dependencies: models.HealthDependencies{
			Storage: storageHealth,
			Authentication: models.AuthHealth{
				APIKeyConfigured:          sec.APIKey != "",
				WebSocketAPIKeyConfigured: sec.APIKeyWS != "",
			},
		},
		Session:     h.tracker.Snapshot(),
		Subscribers: h.hub.ClientCount(),
	}
}

// HealthLive is the liveness probe: the process is serving.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "alive",
		"uptime_seconds": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady is the readiness probe. It answers 503 while storage is not
// connected.
func (h *Handler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	if !h.gateway.Connected() {
		respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"ready":   false,
			"storage": h.gateway.State().String(),
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ready":   true,
		"storage": h.gateway.State().String(),
	})
}

// Ping answers with pong and the server time.
func (h *Handler) Ping(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, &models.PingResponse{
		Message:   "pong",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
