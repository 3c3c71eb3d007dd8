// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package storage

import (
	"context"
	"errors"
	"sync"
)

var errBackendDown = errors.New("backend down")

// fakeBackend records writes and fails on demand.
type fakeBackend struct {
	mu         sync.Mutex
	writes     []Point
	failWrites bool
	failProbe  bool
	queryErr   error
	rows       []Row
	queries    []string
	closed     int
}

func (f *fakeBackend) Write(_ context.Context, p Point) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.Measurement == ProbeMeasurement && f.failProbe {
		return errBackendDown
	}
	if p.Measurement != ProbeMeasurement && f.failWrites {
		return errBackendDown
	}
	f.writes = append(f.writes, p)
	return nil
}

func (f *fakeBackend) Query(_ context.Context, q string) ([]Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.rows, nil
}

func (f *fakeBackend) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeBackend) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

// fakeConnector hands out backends from a queue and counts calls.
type fakeConnector struct {
	mu       sync.Mutex
	backends []*fakeBackend
	err      error
	calls    int
}

func (c *fakeConnector) connect(_ context.Context) (Backend, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	if len(c.backends) == 0 {
		return &fakeBackend{}, nil
	}
	b := c.backends[0]
	c.backends = c.backends[1:]
	return b, nil
}

func (c *fakeConnector) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
