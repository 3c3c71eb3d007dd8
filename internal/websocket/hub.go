// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package websocket

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sensorflow/internal/logging"
	"github.com/tomtom215/sensorflow/internal/metrics"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal graceful path (e.g., SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline may indicate a hung operation during shutdown.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Close codes used by the hub and the subscription handler.
const (
	CloseGoingAway       = 1001
	ClosePolicyViolation = 1008
	CloseInternalError   = 1011
)

// ErrQuotaExceeded is returned by Subscribe when the credential already
// holds the maximum number of subscriptions.
var ErrQuotaExceeded = errors.New("connection quota exceeded")

// QuotaError carries the limit that was hit. It matches ErrQuotaExceeded
// with errors.Is.
type QuotaError struct {
	Limit int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("Max connections (%d) for this API Key reached.", e.Limit)
}

func (e *QuotaError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

// Subscriber is one live connection as the hub sees it.
type Subscriber interface {
	ID() uint64
	Credential() string

	// Send enqueues msg without blocking. It reports false when the
	// subscriber cannot accept it.
	Send(msg []byte) bool

	// Close terminates the connection with a close frame. It must be safe
	// to call more than once.
	Close(code int, reason string)
}

// BroadcastResult reports the outcome of one Broadcast call.
type BroadcastResult struct {
	Delivered int
	Pruned    int
}

// DefaultStatsInterval is how often RunWithContext refreshes gauges.
const DefaultStatsInterval = 15 * time.Second

// HubConfig parameterizes a Hub.
type HubConfig struct {
	// MaxPerCredential caps subscriptions per credential; 0 is unlimited.
	MaxPerCredential int

	StatsInterval time.Duration
}

// Hub holds the live subscriber set and the per-credential ledger.
type Hub struct {
	quota         int
	statsInterval time.Duration

	// broadcastMu serializes Broadcast so every subscriber sees events in
	// production order.
	broadcastMu sync.Mutex

	mu     sync.RWMutex
	subs   []Subscriber // subscription order
	ledger map[string]int
}

// NewHub creates an empty hub.
func NewHub(cfg HubConfig) *Hub {
	if cfg.MaxPerCredential < 0 {
		cfg.MaxPerCredential = 0
	}
	if cfg.StatsInterval <= 0 {
		cfg.StatsInterval = DefaultStatsInterval
	}
	return &Hub{
		quota:         cfg.MaxPerCredential,
		statsInterval: cfg.StatsInterval,
		ledger:        make(map[string]int),
	}
}

// Quota returns the per-credential limit (0 means unlimited).
func (h *Hub) Quota() int {
	return h.quota
}

// Subscribe adds sub to the live set, charging its credential. The check
// and the insert happen under one lock, so concurrent subscribers cannot
// overshoot the quota. Subscribing an already live subscriber is a no-op.
func (h *Hub) Subscribe(sub Subscriber) error {
	cred := sub.Credential()

	h.mu.Lock()
	if h.indexOf(sub) >= 0 {
		h.mu.Unlock()
		return nil
	}
	if h.quota > 0 && h.ledger[cred] >= h.quota {
		h.mu.Unlock()
		metrics.WSSubscribeRejected.WithLabelValues("quota").Inc()
		logging.Warn().Uint64("client_id", sub.ID()).Int("limit", h.quota).Msg("WebSocket subscription rejected: quota reached")
		return &QuotaError{Limit: h.quota}
	}
	h.subs = append(h.subs, sub)
	h.ledger[cred]++
	total := len(h.subs)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	logging.Info().Uint64("client_id", sub.ID()).Int("total_clients", total).Msg("websocket client connected")
	return nil
}

// Unsubscribe removes sub and refunds its credential. It is idempotent.
func (h *Hub) Unsubscribe(sub Subscriber) {
	if h.remove(sub) {
		logging.Info().Uint64("client_id", sub.ID()).Int("total_clients", h.ClientCount()).Msg("websocket client disconnected")
	}
}

// remove reports whether sub was live.
func (h *Hub) remove(sub Subscriber) bool {
	h.mu.Lock()
	i := h.indexOf(sub)
	if i < 0 {
		h.mu.Unlock()
		return false
	}
	h.subs = append(h.subs[:i], h.subs[i+1:]...)
	cred := sub.Credential()
	if h.ledger[cred] <= 1 {
		delete(h.ledger, cred)
	} else {
		h.ledger[cred]--
	}
	total := len(h.subs)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	return true
}

// indexOf must be called with mu held.
func (h *Hub) indexOf(sub Subscriber) int {
	for i, s := range h.subs {
		if s == sub {
			return i
		}
	}
	return -1
}

// Broadcast serializes event once and offers it to every live subscriber
// in subscription order. Subscribers that fail the send are pruned and
// closed; the rest still receive the event.
func (h *Hub) Broadcast(ctx context.Context, event interface{}) (BroadcastResult, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		metrics.WSErrors.WithLabelValues("marshal").Inc()
		return BroadcastResult{}, fmt.Errorf("marshal broadcast event: %w", err)
	}

	h.broadcastMu.Lock()
	defer h.broadcastMu.Unlock()

	h.mu.RLock()
	targets := make([]Subscriber, len(h.subs))
	copy(targets, h.subs)
	h.mu.RUnlock()

	var res BroadcastResult
	var failed []Subscriber
	for _, sub := range targets {
		if sub.Send(payload) {
			res.Delivered++
			continue
		}
		failed = append(failed, sub)
	}

	for _, sub := range failed {
		if h.remove(sub) {
			res.Pruned++
			metrics.WSPruned.Inc()
			logging.Ctx(ctx).Warn().Uint64("client_id", sub.ID()).Msg("Pruning websocket subscriber after failed send")
		}
		sub.Close(CloseInternalError, "send failed")
	}

	metrics.WSMessagesSent.Add(float64(res.Delivered))
	return res, nil
}

// ClientCount returns the number of live subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// ConnectionsFor returns the ledger count for one credential.
func (h *Hub) ConnectionsFor(credential string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ledger[credential]
}

// RunWithContext keeps the connection gauge fresh until ctx is cancelled,
// then closes every subscriber with 1001 and returns ctx.Err().
//
// It is designed for use with suture supervision.
func (h *Hub) RunWithContext(ctx context.Context) error {
	ticker := time.NewTicker(h.statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case <-ticker.C:
			metrics.WSConnections.Set(float64(h.ClientCount()))
		}
	}
}

// logGracefulShutdown closes all subscribers and logs without an error
// field, since cancellation is the expected path.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	closed := h.closeAll(CloseGoingAway, "Server shutting down")

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", closed).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// closeAll empties the live set and ledger, then closes each subscriber in
// subscription order.
func (h *Hub) closeAll(code int, reason string) int {
	h.mu.Lock()
	subs := h.subs
	h.subs = nil
	h.ledger = make(map[string]int)
	h.mu.Unlock()
	metrics.WSConnections.Set(0)

	for _, sub := range subs {
		sub.Close(code, reason)
	}
	return len(subs)
}
