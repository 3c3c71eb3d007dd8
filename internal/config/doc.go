// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

/*
Package config loads SensorFlow configuration with koanf v2.

Sources are layered, later layers win:

 1. Built-in defaults (defaultConfig)
 2. Optional YAML file: CONFIG_PATH, ./config.yaml, /etc/sensorflow/config.yaml
 3. Environment variables, mapped explicitly in envTransformFunc

Only mapped environment variables are read, so unrelated variables in the
container never leak into the configuration. The historic deployment names
(API_KEY, API_KEY_WS, INFLUX_HOST, INFLUX_PORT, INFLUX_TOKEN, INFLUX_DATABASE,
MAX_WS_CONNECTIONS_PER_KEY) keep working unchanged.

Example config.yaml:

	server:
	  port: 8000
	security:
	  api_key: "sensor-write-key"
	  api_key_ws: "dashboard-key"
	storage:
	  driver: influxdb
	  host: influx.internal
	  port: 8181
	  database: plant
	session:
	  timeout: 10m
	websocket:
	  max_connections_per_key: 5
	display:
	  timezone: America/Sao_Paulo
*/
package config
