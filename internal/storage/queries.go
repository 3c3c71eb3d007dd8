// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package storage

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Query limits for the canned lookups.
const (
	DefaultRecentLimit = 50
	DefaultSensorLimit = 10
	MaxQueryLimit      = 1000
)

// Recent returns readings from the last window, newest first. The cutoff
// is computed here and sent as an RFC 3339 literal so the same SQL runs on
// InfluxDB v3, DuckDB and PostgreSQL.
func (g *Gateway) Recent(ctx context.Context, window time.Duration, limit int) (string, []Row, error) {
	cutoff := g.now().UTC().Add(-window).Format(time.RFC3339)
	q := fmt.Sprintf(
		"SELECT * FROM %s WHERE time >= '%s' ORDER BY time DESC LIMIT %d",
		quoteIdent(g.measurement), cutoff, clampLimit(limit, DefaultRecentLimit),
	)
	rows, err := g.Query(ctx, q)
	return q, rows, err
}

// LatestForSensor returns the newest readings of one sensor.
func (g *Gateway) LatestForSensor(ctx context.Context, sensorID string, limit int) (string, []Row, error) {
	q := fmt.Sprintf(
		"SELECT * FROM %s WHERE sensor_id = %s ORDER BY time DESC LIMIT %d",
		quoteIdent(g.measurement), quoteLiteral(sensorID), clampLimit(limit, DefaultSensorLimit),
	)
	rows, err := g.Query(ctx, q)
	return q, rows, err
}

func clampLimit(limit, def int) int {
	switch {
	case limit <= 0:
		return def
	case limit > MaxQueryLimit:
		return MaxQueryLimit
	default:
		return limit
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteLiteral(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}
