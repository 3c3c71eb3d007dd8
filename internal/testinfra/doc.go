// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

// Package testinfra starts real backing services in Docker for integration
// tests, using testcontainers-go.
//
// Everything except this file is built only with the integration tag:
//
//	go test -tags integration ./internal/storage/... ./internal/ingest/...
//
// # Containers
//
//	pg, err := testinfra.NewPostgresContainer(ctx)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer testinfra.CleanupContainer(t, ctx, pg.Container)
//	gw := storage.NewGateway(storage.PostgresConnector(pg.DSN), storage.GatewayConfig{Driver: "postgres"})
//
// NewRedisContainer does the same for the latest-event store and exposes
// Addr for redis.Options.
//
// Tests call SkipIfNoDocker first so machines without a Docker daemon skip
// instead of failing. The first run pulls images; later runs use the cache.
package testinfra
