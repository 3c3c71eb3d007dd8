// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

/*
Package supervisor runs the long-lived parts of SensorFlow under a suture v4
tree with automatic restart and graceful shutdown.

The tree has three layers so a failure in one never stops the others:

	RootSupervisor ("sensorflow")
	├── DataSupervisor ("data-layer")
	│   └── StorageReconnectorService
	├── IngestionSupervisor ("ingestion-layer")
	│   ├── WebSocketHubService
	│   └── MQTTSourceService (if MQTT_ENABLED)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A broker outage restarts only the MQTT source, with suture's backoff, while
HTTP ingestion and live subscriptions keep working.

Supervisor events are logged through sutureslog using the slog adapter from
internal/logging, so restarts show up in the same zerolog stream as the rest
of the service.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewStorageReconnectorService(reconnector))
	tree.AddIngestionService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	errCh := tree.ServeBackground(ctx)
	<-ctx.Done()
	<-errCh

Use UnstoppedServiceReport after shutdown to find services that ignored
cancellation.
*/
package supervisor
