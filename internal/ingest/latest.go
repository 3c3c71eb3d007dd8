// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package ingest

import (
	"context"
	"sync/atomic"

	"github.com/tomtom215/sensorflow/internal/models"
)

// LatestStore remembers the most recent event. Get returns nil, nil when
// nothing has been stored yet. Set keeps the stored event when it is newer
// than the one offered.
type LatestStore interface {
	Set(ctx context.Context, event *models.Event) error
	Get(ctx context.Context) (*models.Event, error)
	Close() error
}

// MemoryLatest keeps the latest event in process.
type MemoryLatest struct {
	event atomic.Pointer[models.Event]
}

// NewMemoryLatest returns an empty in-process store.
func NewMemoryLatest() *MemoryLatest {
	return &MemoryLatest{}
}

func (m *MemoryLatest) Set(_ context.Context, event *models.Event) error {
	for {
		cur := m.event.Load()
		if supersedes(cur, event) {
			return nil
		}
		if m.event.CompareAndSwap(cur, event) {
			return nil
		}
	}
}

func (m *MemoryLatest) Get(context.Context) (*models.Event, error) {
	return m.event.Load(), nil
}

func (m *MemoryLatest) Close() error {
	return nil
}

// supersedes reports whether stored was received after offered.
func supersedes(stored, offered *models.Event) bool {
	return stored != nil && stored.Timestamp.After(offered.Timestamp)
}
