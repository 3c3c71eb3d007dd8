// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" database/sql driver
)

// DuckDBConnector opens (creating if needed) a DuckDB database file.
// An empty path opens an in-memory database.
func DuckDBConnector(path string) Connector {
	return func(ctx context.Context) (Backend, error) {
		if path != "" {
			if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
				return nil, fmt.Errorf("create duckdb directory: %w", err)
			}
		}
		db, err := sql.Open("duckdb", path)
		if err != nil {
			return nil, fmt.Errorf("open duckdb: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping duckdb: %w", err)
		}
		// DuckDB allows a single writer per process; one connection keeps
		// schema changes and inserts ordered.
		db.SetMaxOpenConns(1)
		return newSQLBackend(&sqlDB{db: db}, duckDialect), nil
	}
}

// sqlDB adapts *sql.DB to sqlConn.
type sqlDB struct {
	db *sql.DB
}

func (s *sqlDB) exec(ctx context.Context, stmt string, args ...interface{}) error {
	_, err := s.db.ExecContext(ctx, stmt, args...)
	return err
}

func (s *sqlDB) query(ctx context.Context, q string) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := []Row{}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			row[c] = normalizeValue(values[i])
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *sqlDB) close() error {
	return s.db.Close()
}
