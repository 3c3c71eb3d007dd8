// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/tomtom215/sensorflow/internal/logging"
	"github.com/tomtom215/sensorflow/internal/metrics"
	"github.com/tomtom215/sensorflow/internal/models"
)

// State is the Gateway's view of backend reachability.
type State int32

const (
	StateUninitialized State = iota
	StateConnected
	StateDegraded
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConnected:
		return "connected"
	case StateDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// ErrUnavailable is returned by Query when the gateway is not connected.
var ErrUnavailable = errors.New("storage backend unavailable")

// QueryError wraps a backend failure while executing a query.
type QueryError struct {
	Err error
}

func (e *QueryError) Error() string {
	return "query failed: " + e.Err.Error()
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// ProbeMeasurement is written once by Initialize to prove the backend accepts writes.
const ProbeMeasurement = "startup_test"

// Defaults used when GatewayConfig leaves a field zero.
const (
	DefaultMeasurement  = "sensor_readings"
	DefaultWriteTimeout = 5 * time.Second
)

// GatewayConfig parameterizes a Gateway.
type GatewayConfig struct {
	// Driver labels logs and metrics.
	Driver       string
	Measurement  string
	WriteTimeout time.Duration

	// ConnectTimeout bounds connect plus probe in Initialize. Zero falls
	// back to WriteTimeout.
	ConnectTimeout time.Duration

	// Now overrides the clock for tests.
	Now func() time.Time
}

// Gateway owns the connectivity state and the live backend handle.
type Gateway struct {
	driver       string
	measurement  string
	writeTimeout time.Duration
	connTimeout  time.Duration
	now          func() time.Time
	connect      Connector

	// initMu serializes Initialize so two probes never race.
	initMu sync.Mutex

	mu      sync.RWMutex
	state   State
	backend Backend
}

// NewGateway returns an uninitialized gateway that will use connect.
func NewGateway(connect Connector, cfg GatewayConfig) *Gateway {
	if cfg.Measurement == "" {
		cfg.Measurement = DefaultMeasurement
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = cfg.WriteTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	g := &Gateway{
		driver:       cfg.Driver,
		measurement:  cfg.Measurement,
		writeTimeout: cfg.WriteTimeout,
		connTimeout:  cfg.ConnectTimeout,
		now:          cfg.Now,
		connect:      connect,
	}
	metrics.SetStorageState(g.driver, int(StateUninitialized))
	return g
}

// Driver returns the configured driver name.
func (g *Gateway) Driver() string {
	return g.driver
}

// Measurement returns the measurement readings are written to.
func (g *Gateway) Measurement() string {
	return g.measurement
}

// State returns the current connectivity state.
func (g *Gateway) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Connected reports whether State is StateConnected.
func (g *Gateway) Connected() bool {
	return g.State() == StateConnected
}

// Initialize connects and probes the backend. It is a no-op while already
// connected. Any previous handle is closed first, and a handle whose probe
// fails is closed and discarded.
func (g *Gateway) Initialize(ctx context.Context) State {
	g.initMu.Lock()
	defer g.initMu.Unlock()

	g.mu.Lock()
	if g.state == StateConnected {
		g.mu.Unlock()
		return StateConnected
	}
	stale := g.backend
	g.backend = nil
	g.mu.Unlock()

	if stale != nil {
		closeQuietly(stale, g.driver)
	}

	cctx, cancel := context.WithTimeout(ctx, g.connTimeout)
	defer cancel()

	b, err := g.connectBounded(cctx)
	if err == nil {
		err = g.probe(cctx, b)
		if err != nil {
			closeQuietly(b, g.driver)
		}
	}
	metrics.RecordStorageInit(g.driver, err == nil)

	if err != nil {
		logging.Error().Err(err).Str("driver", g.driver).Msg("Storage initialization failed, continuing without persistence")
		g.setState(nil, StateDegraded)
		return StateDegraded
	}

	logging.Info().Str("driver", g.driver).Msg("Storage initialized")
	g.setState(b, StateConnected)
	return StateConnected
}

// connectBounded returns when the connector does or when ctx ends,
// whichever comes first. A connector that ignores ctx and finishes late has
// its backend closed in the background.
func (g *Gateway) connectBounded(ctx context.Context) (Backend, error) {
	type result struct {
		b   Backend
		err error
	}
	done := make(chan result, 1)
	go func() {
		b, err := g.connect(ctx)
		done <- result{b: b, err: err}
	}()

	select {
	case res := <-done:
		return res.b, res.err
	case <-ctx.Done():
		go func() {
			if res := <-done; res.err == nil && res.b != nil {
				closeQuietly(res.b, g.driver)
			}
		}()
		return nil, fmt.Errorf("connect %s backend: %w", g.driver, ctx.Err())
	}
}

func (g *Gateway) probe(ctx context.Context, b Backend) error {
	ctx, cancel := context.WithTimeout(ctx, g.writeTimeout)
	defer cancel()
	return b.Write(ctx, Point{
		Measurement: ProbeMeasurement,
		Fields:      map[string]float64{"value": 1},
		Time:        g.now().UTC(),
	})
}

func (g *Gateway) setState(b Backend, s State) {
	g.mu.Lock()
	g.backend = b
	g.state = s
	g.mu.Unlock()
	metrics.SetStorageState(g.driver, int(s))
}

// Write persists one reading tagged with its run id. It returns false with
// no I/O when not connected, and false after degrading the gateway when the
// backend write fails. It never returns an error.
//
// The write is detached from ctx cancellation so a client hanging up does
// not masquerade as a backend failure; it is bounded by the write timeout.
func (g *Gateway) Write(ctx context.Context, r *models.Reading, runID int64) bool {
	g.mu.RLock()
	b, state := g.backend, g.state
	g.mu.RUnlock()

	if state != StateConnected || b == nil {
		metrics.RecordStorageWrite(g.driver, "skipped", 0)
		logging.Ctx(ctx).Warn().Str("sensor_id", r.SensorID).Str("state", state.String()).Msg("Storage unavailable, reading not persisted")
		return false
	}

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.writeTimeout)
	defer cancel()

	start := time.Now()
	err := b.Write(wctx, g.pointFor(r, runID))
	elapsed := time.Since(start)

	if err != nil {
		metrics.RecordStorageWrite(g.driver, "failure", elapsed)
		logging.Ctx(ctx).Error().Err(err).Str("driver", g.driver).Str("sensor_id", r.SensorID).Msg("Storage write failed, degrading")
		g.degrade(b)
		return false
	}
	metrics.RecordStorageWrite(g.driver, "success", elapsed)
	return true
}

// degrade marks the gateway degraded only if b is still the live handle, so
// a late failure from a replaced backend cannot clobber a fresh connection.
func (g *Gateway) degrade(b Backend) {
	g.mu.Lock()
	changed := g.backend == b && g.state == StateConnected
	if changed {
		g.state = StateDegraded
	}
	g.mu.Unlock()
	if changed {
		metrics.SetStorageState(g.driver, int(StateDegraded))
	}
}

func (g *Gateway) pointFor(r *models.Reading, runID int64) Point {
	clientIP := r.ClientIP
	if clientIP == "" {
		clientIP = models.UnknownClientIP
	}
	tags := map[string]string{
		"sensor_id": r.SensorID,
		"client_ip": clientIP,
		"cip_id":    strconv.FormatInt(runID, 10),
	}
	if r.StatusCIP != "" {
		tags["status_cip"] = r.StatusCIP
	}
	return Point{
		Measurement: g.measurement,
		Tags:        tags,
		Fields:      r.Fields(),
		Time:        g.now().UTC(),
	}
}

// Query runs raw query text. It returns ErrUnavailable when not connected
// and a *QueryError when the backend rejects the query. It never changes
// the connectivity state.
func (g *Gateway) Query(ctx context.Context, query string) ([]Row, error) {
	g.mu.RLock()
	b, state := g.backend, g.state
	g.mu.RUnlock()

	if state != StateConnected || b == nil {
		metrics.RecordStorageQuery(g.driver, "unavailable")
		return nil, ErrUnavailable
	}

	rows, err := b.Query(ctx, query)
	if err != nil {
		metrics.RecordStorageQuery(g.driver, "error")
		return nil, &QueryError{Err: err}
	}
	metrics.RecordStorageQuery(g.driver, "success")
	if rows == nil {
		rows = []Row{}
	}
	return rows, nil
}

// Close releases the backend and resets the gateway to uninitialized.
func (g *Gateway) Close() error {
	g.initMu.Lock()
	defer g.initMu.Unlock()

	g.mu.Lock()
	b := g.backend
	g.backend = nil
	g.state = StateUninitialized
	g.mu.Unlock()
	metrics.SetStorageState(g.driver, int(StateUninitialized))

	if b == nil {
		return nil
	}
	if err := b.Close(); err != nil {
		return fmt.Errorf("close %s backend: %w", g.driver, err)
	}
	return nil
}

func closeQuietly(b Backend, driver string) {
	if err := b.Close(); err != nil {
		logging.Warn().Err(err).Str("driver", driver).Msg("Closing storage backend failed")
	}
}
