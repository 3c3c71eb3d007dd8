// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/sensorflow/internal/logging"
	"github.com/tomtom215/sensorflow/internal/models"
	"github.com/tomtom215/sensorflow/internal/storage"
)

// recentWindow is the lookback of the recent-readings query.
const recentWindow = 24 * time.Hour

// QuerySQL runs caller-supplied query text against the storage backend.
func (h *Handler) QuerySQL(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest
	if derr := decodeAndValidate(w, r, &req); derr != nil {
		derr.respond(w)
		return
	}
	rows, err := h.gateway.Query(r.Context(), req.Query)
	h.respondQuery(w, r, req.Query, rows, err)
}

// QueryRecent returns readings from the last 24 hours, newest first.
func (h *Handler) QueryRecent(w http.ResponseWriter, r *http.Request) {
	limit := getIntParam(r, "limit", storage.DefaultRecentLimit)
	q, rows, err := h.gateway.Recent(r.Context(), recentWindow, limit)
	h.respondQuery(w, r, q, rows, err)
}

// QuerySensorLatest returns the newest readings of one sensor.
func (h *Handler) QuerySensorLatest(w http.ResponseWriter, r *http.Request) {
	sensorID := chi.URLParam(r, "sensor_id")
	limit := getIntParam(r, "limit", storage.DefaultSensorLimit)
	q, rows, err := h.gateway.LatestForSensor(r.Context(), sensorID, limit)
	h.respondQuery(w, r, q, rows, err)
}

func (h *Handler) respondQuery(w http.ResponseWriter, r *http.Request, query string, rows []storage.Row, err error) {
	switch {
	case errors.Is(err, storage.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, CodeServiceUnavailable, msgStorageUnavailable, nil)
		return
	case err != nil:
		logging.Ctx(r.Context()).Warn().Err(err).Str("query", sanitizeLogValue(query)).Msg("Query failed")
		respondError(w, http.StatusBadRequest, CodeQueryFailed, err.Error(), nil)
		return
	}
	respondJSON(w, http.StatusOK, &models.QueryResult{
		Query:    query,
		Results:  rows,
		RowCount: len(rows),
	})
}
