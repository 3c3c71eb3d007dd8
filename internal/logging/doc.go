// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

/*
Package logging wraps zerolog behind a process-wide logger for SensorFlow.

Every component logs through the package-level helpers so output format and
level are decided once, in main:

	logging.Init(logging.Config{Level: "info", Format: "json"})
	logging.Info().Str("sensor_id", id).Msg("Reading ingested")

Request-scoped values travel in the context. The HTTP layer stores the chi
request id with ContextWithRequestID and handlers log through Ctx:

	logging.Ctx(r.Context()).Warn().Err(err).Msg("Rejected payload")

The suture supervisor expects an slog.Logger; NewSlogLogger returns one that
writes through the same zerolog sink.

Environment variables (read by internal/config, not by this package):

  - LOG_LEVEL: trace, debug, info, warn, error (default info)
  - LOG_FORMAT: json or console (default json)
  - LOG_CALLER: include file:line (default false)
*/
package logging
