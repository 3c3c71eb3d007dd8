// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package storage

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/sensorflow/internal/logging"
	"github.com/tomtom215/sensorflow/internal/metrics"
)

// errProbeFailed marks an Initialize attempt that did not reach connected.
var errProbeFailed = errors.New("storage probe failed")

// Reconnector re-runs Gateway.Initialize on an interval while the gateway
// is not connected. Attempts pass through a circuit breaker: after
// consecutive failures the breaker opens and ticks are skipped until the
// backoff elapses, so a dead backend is not hammered.
//
// Reconnector implements suture.Service.
type Reconnector struct {
	gw       *Gateway
	interval time.Duration
	cb       *gobreaker.CircuitBreaker[State]
	name     string
}

// ReconnectorConfig parameterizes a Reconnector.
type ReconnectorConfig struct {
	// Interval between attempts; must be positive.
	Interval time.Duration

	// Backoff is how long the breaker stays open before a trial attempt.
	Backoff time.Duration

	// FailureThreshold is the number of consecutive failures that opens
	// the breaker. Zero means 3.
	FailureThreshold uint32
}

// NewReconnector builds a reconnector for gw.
func NewReconnector(gw *Gateway, cfg ReconnectorConfig) *Reconnector {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 2 * time.Minute
	}
	name := "storage-" + gw.Driver()
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	threshold := cfg.FailureThreshold
	cb := gobreaker.NewCircuitBreaker[State](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.Backoff,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= threshold
			if trip {
				logging.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).Str("breaker", name).Msg("Opening storage reconnect breaker")
			}
			return trip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", breakerStateString(from)).Str("to", breakerStateString(to)).Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, breakerStateString(from), breakerStateString(to)).Inc()
		},
	})

	return &Reconnector{gw: gw, interval: cfg.Interval, cb: cb, name: name}
}

// Serve runs until ctx is cancelled. A non-positive interval disables
// reconnection; Serve then only waits for cancellation.
func (r *Reconnector) Serve(ctx context.Context) error {
	if r.interval <= 0 {
		logging.Info().Str("driver", r.gw.Driver()).Msg("Storage reconnection disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.Attempt(ctx)
		}
	}
}

// Attempt performs one reconnection try if the gateway needs it and the
// breaker allows it. It returns the gateway state afterwards.
func (r *Reconnector) Attempt(ctx context.Context) State {
	if r.gw.Connected() {
		return StateConnected
	}

	state, err := r.cb.Execute(func() (State, error) {
		s := r.gw.Initialize(ctx)
		if s != StateConnected {
			return s, errProbeFailed
		}
		return s, nil
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(r.name, "rejected").Inc()
		return r.gw.State()
	case err != nil:
		metrics.CircuitBreakerRequests.WithLabelValues(r.name, "failure").Inc()
		return state
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(r.name, "success").Inc()
		logging.Info().Str("driver", r.gw.Driver()).Msg("Storage connection recovered")
		return state
	}
}

// String names the service in supervisor logs.
func (r *Reconnector) String() string {
	return "storage-reconnector"
}

func breakerStateFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func breakerStateString(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
