// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/sensorflow/internal/auth"
	"github.com/tomtom215/sensorflow/internal/config"
	"github.com/tomtom215/sensorflow/internal/ingest"
	"github.com/tomtom215/sensorflow/internal/logging"
	"github.com/tomtom215/sensorflow/internal/session"
	"github.com/tomtom215/sensorflow/internal/storage"
	ws "github.com/tomtom215/sensorflow/internal/websocket"
)

// ServiceName appears in health responses.
const ServiceName = "sensorflow"

// Dependencies groups what the handlers need.
type Dependencies struct {
	Config  *config.Config
	Ingest  *ingest.Service
	Gateway *storage.Gateway
	Tracker *session.Tracker
	Hub     *ws.Hub
	Version string
}

// Handler contains dependencies for API handlers.
type Handler struct {
	config    *config.Config
	ingest    *ingest.Service
	gateway   *storage.Gateway
	tracker   *session.Tracker
	hub       *ws.Hub
	ingestKey *auth.KeyVerifier
	wsKey     *auth.KeyVerifier
	version   string
	startTime time.Time
	upgrader  websocket.Upgrader
}

// NewHandler creates a new API handler.
func NewHandler(deps Dependencies) *Handler {
	h := &Handler{
		config:    deps.Config,
		ingest:    deps.Ingest,
		gateway:   deps.Gateway,
		tracker:   deps.Tracker,
		hub:       deps.Hub,
		ingestKey: auth.NewKeyVerifier(auth.SurfaceIngest, deps.Config.Security.APIKey),
		wsKey:     auth.NewKeyVerifier(auth.SurfaceWebSocket, deps.Config.Security.APIKeyWS),
		version:   deps.Version,
		startTime: time.Now(),
	}
	if h.version == "" {
		h.version = "dev"
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin:      h.checkWebSocketOrigin,
	}
	return h
}

// checkWebSocketOrigin allows non-browser clients (no Origin header) and
// browsers whose origin is listed in security.cors_origins.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected: origin not allowed")
	return false
}
