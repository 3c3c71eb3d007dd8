// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

/*
Package main is the entry point for the SensorFlow server.

SensorFlow accepts sensor readings over HTTP (and optionally MQTT), groups
them into CIP runs, persists them to a time-series backend when one is
reachable, and streams every accepted event to WebSocket subscribers.

# Application Architecture

	RootSupervisor ("sensorflow")
	├── DataSupervisor ("data-layer")
	│   └── Storage reconnector (retries Initialize behind a circuit breaker)
	├── IngestionSupervisor ("ingestion-layer")
	│   ├── WebSocket hub (subscriber gauge, shutdown close frames)
	│   └── MQTT source (if MQTT_ENABLED=true)
	└── APISupervisor ("api-layer")
	    └── HTTP server (chi router)

Initialization order:

 1. Configuration: koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog, JSON or console
 3. Storage gateway: InfluxDB v3, DuckDB or PostgreSQL; one probe write
 4. Session tracker, broadcast hub and latest-event store
 5. Ingest service and HTTP router
 6. Supervisor tree

A storage backend that is down at startup is not fatal. Readings are still
accepted and broadcast without an id until the reconnector brings the
backend back.

# Configuration

	HTTP_HOST=0.0.0.0 HTTP_PORT=8000
	API_KEY=<ingest key>         # X-API-Key on POST /api/v1/sensor_data
	API_KEY_WS=<subscriber key>  # ?api-key= on /ws/sensor_updates
	STORAGE_DRIVER=influxdb      # influxdb, duckdb or postgres
	INFLUX_HOST=localhost INFLUX_PORT=8181 INFLUX_TOKEN=... INFLUX_DATABASE=database
	SESSION_TIMEOUT=10m
	MAX_WS_CONNECTIONS_PER_KEY=0 # 0 is unlimited
	DISPLAY_TIMEZONE=America/Sao_Paulo
	LATEST_STORE=memory          # memory or redis
	MQTT_ENABLED=false
	LOG_LEVEL=info LOG_FORMAT=json

# Example Usage

Local development against DuckDB:

	export STORAGE_DRIVER=duckdb
	export DUCKDB_PATH=./sensorflow.duckdb
	export API_KEY=dev-ingest API_KEY_WS=dev-ws
	export LOG_FORMAT=console
	./sensorflow

	curl -X POST localhost:8000/api/v1/sensor_data \
	  -H 'X-API-Key: dev-ingest' -H 'Content-Type: application/json' \
	  -d '{"sensor_id":"estacao_cip","temperature":60.5,"pressure":2.1,"concentration":1.3}'

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains for up
to ten seconds, subscribers receive close code 1001, and the storage backend
is closed last.
*/
package main
