// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/sensorflow/internal/config"
)

// Point is one record: a measurement with tags, numeric fields and a time.
type Point struct {
	Measurement string
	Tags        map[string]string
	Fields      map[string]float64
	Time        time.Time
}

// Row is one query result row keyed by column name.
type Row = map[string]interface{}

// Backend is the narrow capability the Gateway needs from a store.
type Backend interface {
	Write(ctx context.Context, p Point) error
	Query(ctx context.Context, query string) ([]Row, error)
	Close() error
}

// Connector builds a fresh Backend. It is called on every Initialize.
type Connector func(ctx context.Context) (Backend, error)

// NewConnector returns the connector for cfg.Driver.
func NewConnector(cfg *config.StorageConfig) (Connector, error) {
	switch cfg.Driver {
	case config.DriverInfluxDB:
		return InfluxConnector(cfg.InfluxURL(), cfg.Token, cfg.Database), nil
	case config.DriverDuckDB:
		return DuckDBConnector(cfg.Path), nil
	case config.DriverPostgres:
		return PostgresConnector(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
