// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

/*
Package api provides the HTTP and WebSocket surface of SensorFlow.

Routes:

	POST /api/v1/sensor_data                       ingest one reading (X-API-Key)
	POST /api/v1/temperature_reading               alias of the above
	GET  /api/v1/sensor_data/latest                latest event or placeholder
	POST /api/v1/query/sql                         raw query pass-through (X-API-Key)
	GET  /api/v1/query/recent                      last 24h of readings (X-API-Key)
	GET  /api/v1/query/sensor/{sensor_id}/latest   newest readings of one sensor (X-API-Key)
	GET  /ws/sensor_updates?api-key=K              live event stream
	GET  /health, /health/live, /health/ready, /ping, /metrics

Handler methods are split across files:
  - handlers.go: Handler struct and constructor
  - handlers_helpers.go: response and request helpers
  - handlers_ingest.go: ingestion and latest
  - handlers_query.go: query pass-through
  - handlers_health.go: health, readiness, ping
  - handlers_websocket.go: live subscriptions

Error responses share one shape:

	{"detail": "Invalid or missing API Key.", "error": {"code": "UNAUTHORIZED", "message": "..."}}

The WebSocket endpoint always completes the upgrade before checking the
key, so rejections arrive as close frames (1008) with a reason rather than
HTTP errors.
*/
package api
