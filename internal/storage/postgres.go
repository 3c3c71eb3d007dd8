// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresConnector connects a pgx pool to PostgreSQL or TimescaleDB.
func PostgresConnector(dsn string) Connector {
	return func(ctx context.Context) (Backend, error) {
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("configure postgres pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		return newSQLBackend(&pgConn{pool: pool}, postgresDialect), nil
	}
}

// pgConn adapts *pgxpool.Pool to sqlConn.
type pgConn struct {
	pool *pgxpool.Pool
}

func (p *pgConn) exec(ctx context.Context, stmt string, args ...interface{}) error {
	_, err := p.pool.Exec(ctx, stmt, args...)
	return err
}

func (p *pgConn) query(ctx context.Context, q string) ([]Row, error) {
	rows, err := p.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	out := []Row{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(Row, len(fields))
		for i, f := range fields {
			row[f.Name] = normalizeValue(values[i])
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (p *pgConn) close() error {
	p.pool.Close()
	return nil
}
