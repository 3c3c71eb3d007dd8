// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package api

import (
	"net/http"

	"github.com/tomtom215/sensorflow/internal/ingest"
	"github.com/tomtom215/sensorflow/internal/metrics"
	"github.com/tomtom215/sensorflow/internal/models"
)

// SensorData accepts one reading and returns the resulting event with 201.
// The API key has already been checked by the route middleware, so a bad
// key never reaches body parsing.
func (h *Handler) SensorData(w http.ResponseWriter, r *http.Request) {
	var reading models.Reading
	if derr := decodeAndValidate(w, r, &reading); derr != nil {
		metrics.RecordRejection(ingest.SourceHTTP, derr.code)
		derr.respond(w)
		return
	}
	reading.ClientIP = clientIP(r)

	event := h.ingest.Ingest(r.Context(), ingest.SourceHTTP, &reading)
	respondJSON(w, http.StatusCreated, event)
}

// LatestSensorData returns the most recent event, or a zero placeholder
// carrying the current run id when nothing has arrived yet.
func (h *Handler) LatestSensorData(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.ingest.Latest(r.Context()))
}

// rejectKey answers a failed X-API-Key check.
func rejectKey(w http.ResponseWriter, _ *http.Request, _ error) {
	metrics.RecordRejection(ingest.SourceHTTP, "auth")
	respondError(w, http.StatusUnauthorized, CodeUnauthorized, msgInvalidKey, nil)
}
