// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

// Package ingest runs the acceptance pipeline shared by every reading source
// (HTTP and MQTT): assign a run id, attempt persistence, build the event,
// fan it out and remember it as the latest.
//
// Persistence failure never fails ingestion. An event that was not stored
// is still broadcast and returned, with a null id.
package ingest
