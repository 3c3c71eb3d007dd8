// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package api

import (
	"net/http"

	"github.com/tomtom215/sensorflow/internal/auth"
	"github.com/tomtom215/sensorflow/internal/logging"
	"github.com/tomtom215/sensorflow/internal/metrics"
	ws "github.com/tomtom215/sensorflow/internal/websocket"
)

// SensorUpdates upgrades to a WebSocket and streams every accepted event.
//
// The upgrade always happens first; a bad key or an exhausted quota is
// reported with close code 1008 and a reason. Inbound frames are discarded.
func (h *Handler) SensorUpdates(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		metrics.WSErrors.WithLabelValues("upgrade").Inc()
		logging.Ctx(r.Context()).Warn().Err(err).Msg("WebSocket upgrade error")
		return
	}

	wsCfg := h.config.WebSocket
	key := r.URL.Query().Get(auth.QueryAPIKey)
	if err := h.wsKey.Verify(key); err != nil {
		metrics.WSSubscribeRejected.WithLabelValues("auth").Inc()
		logging.Ctx(r.Context()).Warn().Err(err).Str("client_ip", clientIP(r)).Msg("WebSocket subscription rejected")
		ws.CloseConn(conn, ws.ClosePolicyViolation, msgInvalidKey, wsCfg.WriteWait)
		return
	}

	client := ws.NewClient(conn, key, ws.ClientConfig{
		SendBuffer: wsCfg.SendBuffer,
		WriteWait:  wsCfg.WriteWait,
		PongWait:   wsCfg.PongWait,
	})
	if err := h.hub.Subscribe(client); err != nil {
		ws.CloseConn(conn, ws.ClosePolicyViolation, err.Error(), wsCfg.WriteWait)
		return
	}
	defer h.hub.Unsubscribe(client)

	client.Run()
}
