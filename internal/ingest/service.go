// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/sensorflow/internal/logging"
	"github.com/tomtom215/sensorflow/internal/metrics"
	"github.com/tomtom215/sensorflow/internal/models"
	"github.com/tomtom215/sensorflow/internal/websocket"
)

// Source labels where a reading came from.
const (
	SourceHTTP = "http"
	SourceMQTT = "mqtt"
)

// RunTracker assigns run ids from arrival times.
type RunTracker interface {
	Assign(now time.Time) (runID int64, rolled bool)
	Current() int64
}

// Writer persists readings. It reports whether the write happened.
type Writer interface {
	Write(ctx context.Context, r *models.Reading, runID int64) bool
}

// Broadcaster fans events out to subscribers.
type Broadcaster interface {
	Broadcast(ctx context.Context, event interface{}) (websocket.BroadcastResult, error)
}

// Config wires a Service.
type Config struct {
	Tracker     RunTracker
	Writer      Writer
	Broadcaster Broadcaster
	Latest      LatestStore

	// Location is the display time zone for event timestamps. Nil means UTC.
	Location *time.Location

	// Now and NewID override the clock and record id source for tests.
	Now   func() time.Time
	NewID func() string
}

// Service is the ingestion pipeline. Events are published (broadcast, then
// latest) in the order their run ids were assigned, even when an earlier
// reading's storage write finishes after a later one.
type Service struct {
	tracker RunTracker
	writer  Writer
	hub     Broadcaster
	latest  LatestStore
	loc     *time.Location
	now     func() time.Time
	newID   func() string

	// orderMu guards arrival stamping and tail. tail is closed once the
	// most recently admitted reading has been published.
	orderMu sync.Mutex
	tail    chan struct{}
}

// NewService builds a Service. A nil Latest store defaults to memory.
func NewService(cfg Config) *Service {
	if cfg.Latest == nil {
		cfg.Latest = NewMemoryLatest()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = func() string { return uuid.New().String() }
	}
	tail := make(chan struct{})
	close(tail)
	return &Service{
		tail:    tail,
		tracker: cfg.Tracker,
		writer:  cfg.Writer,
		hub:     cfg.Broadcaster,
		latest:  cfg.Latest,
		loc:     cfg.Location,
		now:     cfg.Now,
		newID:   cfg.NewID,
	}
}

// Ingest processes one validated reading and returns the resulting event.
// It always produces an event; storage and broadcast failures are absorbed.
func (s *Service) Ingest(ctx context.Context, source string, r *models.Reading) *models.Event {
	r.Normalize()

	s.orderMu.Lock()
	receivedAt := s.now()
	runID, rolled := s.tracker.Assign(receivedAt)
	prev, turn := s.tail, make(chan struct{})
	s.tail = turn
	s.orderMu.Unlock()
	defer close(turn)

	metrics.RecordRunID(runID, rolled)
	if rolled {
		logging.Ctx(ctx).Info().Int64("cip_id", runID).Msg("New CIP run started")
	}

	var recordID *string
	persisted := s.writer.Write(ctx, r, runID)
	if persisted {
		id := s.newID()
		recordID = &id
	}
	metrics.RecordIngest(source, persisted)

	event := models.NewEvent(r, runID, recordID, receivedAt, s.loc)

	// Earlier readings publish first. Their writes are bounded by the
	// storage write timeout, so this wait is too.
	<-prev

	if res, err := s.hub.Broadcast(ctx, event); err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Broadcast failed")
	} else if res.Pruned > 0 {
		logging.Ctx(ctx).Debug().Int("delivered", res.Delivered).Int("pruned", res.Pruned).Msg("Broadcast pruned subscribers")
	}

	if err := s.latest.Set(ctx, event); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to update latest event")
	}

	logging.Ctx(ctx).Debug().
		Str("source", source).
		Str("sensor_id", r.SensorID).
		Int64("cip_id", runID).
		Bool("persisted", persisted).
		Msg("Reading ingested")
	return event
}

// Latest returns the most recent event, or a zero placeholder carrying the
// current run id when nothing has been ingested (or the store is unreachable).
func (s *Service) Latest(ctx context.Context) *models.Event {
	event, err := s.latest.Get(ctx)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to read latest event")
	}
	if event != nil {
		return event
	}
	return models.PlaceholderEvent(s.tracker.Current(), s.now(), s.loc)
}
