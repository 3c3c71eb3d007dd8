// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// sqlConn is the part of a SQL driver the schema-on-write store needs.
type sqlConn interface {
	exec(ctx context.Context, stmt string, args ...interface{}) error
	query(ctx context.Context, q string) ([]Row, error)
	close() error
}

// dialect captures the few SQL differences between DuckDB and PostgreSQL.
type dialect struct {
	timeType    string
	doubleType  string
	textType    string
	placeholder func(i int) string
}

var (
	duckDialect = dialect{
		timeType:    "TIMESTAMPTZ",
		doubleType:  "DOUBLE",
		textType:    "VARCHAR",
		placeholder: func(int) string { return "?" },
	}
	postgresDialect = dialect{
		timeType:    "TIMESTAMPTZ",
		doubleType:  "DOUBLE PRECISION",
		textType:    "TEXT",
		placeholder: func(i int) string { return fmt.Sprintf("$%d", i) },
	}
)

// sqlBackend stores each measurement in its own table: a time column plus
// one column per tag (text) and field (double). Columns are added the first
// time a point carries them.
type sqlBackend struct {
	conn    sqlConn
	dialect dialect

	mu      sync.Mutex
	columns map[string]map[string]bool // table -> known columns
}

func newSQLBackend(conn sqlConn, d dialect) *sqlBackend {
	return &sqlBackend{conn: conn, dialect: d, columns: make(map[string]map[string]bool)}
}

func (b *sqlBackend) Write(ctx context.Context, p Point) error {
	if err := b.ensureSchema(ctx, p); err != nil {
		return err
	}

	cols := []string{"time"}
	args := []interface{}{p.Time.UTC()}
	for _, k := range sortedKeys(p.Tags) {
		cols = append(cols, k)
		args = append(args, p.Tags[k])
	}
	for _, k := range sortedKeys(p.Fields) {
		cols = append(cols, k)
		args = append(args, p.Fields[k])
	}

	quoted := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
		marks[i] = b.dialect.placeholder(i + 1)
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(p.Measurement), strings.Join(quoted, ", "), strings.Join(marks, ", "))

	if err := b.conn.exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", p.Measurement, err)
	}
	return nil
}

// ensureSchema creates the table and any missing columns. The known-column
// cache is only updated after the DDL succeeds.
func (b *sqlBackend) ensureSchema(ctx context.Context, p Point) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	known, ok := b.columns[p.Measurement]
	if !ok {
		stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (time %s NOT NULL)",
			quoteIdent(p.Measurement), b.dialect.timeType)
		if err := b.conn.exec(ctx, stmt); err != nil {
			return fmt.Errorf("create table %s: %w", p.Measurement, err)
		}
		known = map[string]bool{"time": true}
		b.columns[p.Measurement] = known
	}

	add := func(col, typ string) error {
		if known[col] {
			return nil
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s",
			quoteIdent(p.Measurement), quoteIdent(col), typ)
		if err := b.conn.exec(ctx, stmt); err != nil {
			return fmt.Errorf("add column %s.%s: %w", p.Measurement, col, err)
		}
		known[col] = true
		return nil
	}
	for _, k := range sortedKeys(p.Tags) {
		if err := add(k, b.dialect.textType); err != nil {
			return err
		}
	}
	for _, k := range sortedKeys(p.Fields) {
		if err := add(k, b.dialect.doubleType); err != nil {
			return err
		}
	}
	return nil
}

func (b *sqlBackend) Query(ctx context.Context, q string) ([]Row, error) {
	return b.conn.query(ctx, q)
}

func (b *sqlBackend) Close() error {
	return b.conn.close()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// normalizeValue makes driver values JSON friendly.
func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.UTC()
	default:
		return val
	}
}
