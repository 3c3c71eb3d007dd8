// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

/*
Package services adapts SensorFlow components to suture.Service so the
supervisor tree can run them.

	HTTPServerService          *http.Server (ListenAndServe + Shutdown)
	WebSocketHubService        websocket.Hub.RunWithContext
	StorageReconnectorService  storage.Reconnector.Serve
	MQTTSourceService          mqtt.Source.Serve

Each wrapper depends on a one-method interface instead of the concrete
type, which keeps this package free of import cycles and lets tests use
small fakes.

Every Serve returns ctx.Err() on a requested shutdown. Any other error is a
failure and suture restarts the service with backoff.
*/
package services
