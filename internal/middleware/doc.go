// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

/*
Package middleware provides HTTP middleware components for the API router.

Key Components:

  - RequestID: request id and correlation id propagation for structured logs
  - PrometheusMetrics: request count, latency and in-flight instrumentation
  - SecurityHeaders: conservative response headers for a JSON API

Middleware Stack:

The router applies them in this order, after chi's RealIP and Recoverer:

	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.SecurityHeaders)

PrometheusMetrics labels requests by chi route pattern rather than raw path,
so /api/v1/query/sensor/{sensor_id}/latest is one series regardless of the
sensor. Its response wrapper implements http.Hijacker and http.Flusher so the
WebSocket upgrade passes through it.
*/
package middleware
