// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package storage

import (
	"context"
	"fmt"

	"github.com/InfluxCommunity/influxdb3-go/v2/influxdb3"
)

// influxBackend writes line-protocol points to InfluxDB v3 and runs SQL
// queries over Flight.
type influxBackend struct {
	client *influxdb3.Client
}

// InfluxConnector connects to an InfluxDB v3 server.
func InfluxConnector(host, token, database string) Connector {
	return func(_ context.Context) (Backend, error) {
		client, err := influxdb3.New(influxdb3.ClientConfig{
			Host:     host,
			Token:    token,
			Database: database,
		})
		if err != nil {
			return nil, fmt.Errorf("create influxdb client: %w", err)
		}
		return &influxBackend{client: client}, nil
	}
}

func (b *influxBackend) Write(ctx context.Context, p Point) error {
	pt := influxdb3.NewPointWithMeasurement(p.Measurement)
	for k, v := range p.Tags {
		pt.SetTag(k, v)
	}
	for k, v := range p.Fields {
		pt.SetDoubleField(k, v)
	}
	pt.SetTimestamp(p.Time)

	if err := b.client.WritePoints(ctx, []*influxdb3.Point{pt}); err != nil {
		return fmt.Errorf("influxdb write: %w", err)
	}
	return nil
}

func (b *influxBackend) Query(ctx context.Context, query string) ([]Row, error) {
	it, err := b.client.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("influxdb query: %w", err)
	}
	rows, err := collectRows(it.Next, it.Value, func() error { return it.Raw().Err() })
	if err != nil {
		return nil, fmt.Errorf("influxdb query: %w", err)
	}
	return rows, nil
}

// collectRows drains a query iterator. The influxdb3 iterator panics when an
// Arrow value cannot be converted and hides reader errors behind Raw, so both
// are turned into a returned error here.
func collectRows(next func() bool, value func() map[string]interface{}, readerErr func() error) (rows []Row, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows = nil
			err = fmt.Errorf("decode result row: %v", r)
		}
	}()
	rows = []Row{}
	for next() {
		rows = append(rows, value())
	}
	if rerr := readerErr(); rerr != nil {
		return nil, rerr
	}
	return rows, nil
}

func (b *influxBackend) Close() error {
	return b.client.Close()
}
