// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

/*
Package storage persists readings to a time-series backend behind a Gateway
that tracks connectivity and never fails ingestion.

# Connectivity

The Gateway starts uninitialized. Initialize connects and performs a probe
write (measurement startup_test, field value=1); success moves it to
connected, any failure to degraded with the half-built backend closed.
A failed Write also degrades the gateway. While not connected Write returns
false without touching the network, so ingestion keeps flowing and simply
loses persistence. Query failures never change the state.

Recovery is explicit: Initialize must run again. The Reconnector does that
on an interval while degraded, throttled by a gobreaker circuit breaker.

# Backends

  - influxdb: InfluxDB v3 through influxdb3-go (default)
  - duckdb:   embedded DuckDB file, one table per measurement
  - postgres: PostgreSQL or TimescaleDB through pgxpool

The SQL backends create tables and columns on first write, so new optional
measurements need no migration.
*/
package storage
