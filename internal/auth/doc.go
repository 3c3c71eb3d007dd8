// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

// Package auth verifies the shared API keys that guard ingestion (X-API-Key
// header) and live subscriptions (api-key query parameter).
//
// An unconfigured key rejects every request on its surface. Comparison is
// constant time.
package auth
