// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

// Package session groups temporally contiguous readings into CIP runs.
//
// Sensors report at a steady cadence while a cleaning cycle is active. A
// silence longer than the configured timeout ends the run, and the next
// reading opens run N+1. Receipt time is used, not any sensor clock, so
// replayed or reordered requests are not detected.
package session

import (
	"sync"
	"time"

	"github.com/tomtom215/sensorflow/internal/models"
)

// DefaultTimeout is the gap that closes a run.
const DefaultTimeout = 10 * time.Minute

// Tracker owns the process-wide run id and the receipt time of the last
// accepted reading. It is safe for concurrent use.
type Tracker struct {
	timeout time.Duration

	mu            sync.Mutex
	runID         int64
	lastReadingAt time.Time
	seen          bool
}

// NewTracker returns a tracker at run 1 with no prior reading. A
// non-positive timeout falls back to DefaultTimeout.
func NewTracker(timeout time.Duration) *Tracker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Tracker{timeout: timeout, runID: 1}
}

// Timeout returns the configured run gap.
func (t *Tracker) Timeout() time.Duration {
	return t.timeout
}

// Assign records a reading received at now and returns its run id.
// rolled reports whether this reading opened a new run.
//
// A gap exactly equal to the timeout stays in the current run. A clock that
// moves backwards yields a negative gap, which never rolls.
func (t *Tracker) Assign(now time.Time) (runID int64, rolled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.seen && now.Sub(t.lastReadingAt) > t.timeout {
		t.runID++
		rolled = true
	}
	t.lastReadingAt = now
	t.seen = true
	return t.runID, rolled
}

// Current returns the run id without recording a reading.
func (t *Tracker) Current() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.runID
}

// Snapshot returns the current state for health reporting.
func (t *Tracker) Snapshot() models.SessionSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := models.SessionSnapshot{RunID: t.runID}
	if t.seen {
		last := t.lastReadingAt
		snap.LastReadingAt = &last
	}
	return snap
}
