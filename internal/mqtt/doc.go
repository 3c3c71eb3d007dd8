// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

/*
Package mqtt provides an optional ingestion source that subscribes to an
MQTT broker and feeds every valid reading through the same pipeline as
POST /api/v1/sensor_data.

Payloads use the HTTP reading schema. When sensor_id is absent it is taken
from the second topic level, so a message on sensors/estacao_cip/readings
is attributed to estacao_cip. Invalid payloads are dropped and counted in
mqtt_messages_total{outcome="invalid"}.

The Source implements suture.Service: Serve connects, subscribes and blocks
until the context is cancelled. A failed initial connection returns an
error so the supervisor restarts it with backoff; later connection losses
are handled by the paho client's auto-reconnect, which resubscribes in the
OnConnect handler.
*/
package mqtt
