// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sensorflow/internal/config"
	"github.com/tomtom215/sensorflow/internal/ingest"
	"github.com/tomtom215/sensorflow/internal/logging"
	"github.com/tomtom215/sensorflow/internal/session"
	"github.com/tomtom215/sensorflow/internal/storage"
	ws "github.com/tomtom215/sensorflow/internal/websocket"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{Level: "info", Format: "console", Output: io.Discard})
}

const (
	testIngestKey = "ingest-key"
	testWSKey     = "ws-key"
)

// memBackend is an in-memory storage.Backend.
type memBackend struct {
	mu         sync.Mutex
	points     []storage.Point
	failWrites bool
	rows       []storage.Row
	queryErr   error
	lastQuery  string
}

func (m *memBackend) Write(_ context.Context, p storage.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites && p.Measurement != storage.ProbeMeasurement {
		return errors.New("write refused")
	}
	m.points = append(m.points, p)
	return nil
}

func (m *memBackend) Query(_ context.Context, q string) ([]storage.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastQuery = q
	return m.rows, m.queryErr
}

func (m *memBackend) Close() error { return nil }

// dataPoints returns persisted readings, skipping the startup probe.
func (m *memBackend) dataPoints() []storage.Point {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storage.Point
	for _, p := range m.points {
		if p.Measurement != storage.ProbeMeasurement {
			out = append(out, p)
		}
	}
	return out
}

type testEnv struct {
	cfg     *config.Config
	backend *memBackend
	gateway *storage.Gateway
	tracker *session.Tracker
	hub     *ws.Hub
	handler *Handler
	server  *httptest.Server
}

type envOption func(*config.Config)

func withQuota(n int) envOption {
	return func(c *config.Config) { c.WebSocket.MaxConnectionsPerKey = n }
}

func withKeys(ingestKey, wsKey string) envOption {
	return func(c *config.Config) {
		c.Security.APIKey = ingestKey
		c.Security.APIKeyWS = wsKey
	}
}

// newTestEnv builds the full HTTP stack over an in-memory backend. When
// connect is false the gateway stays uninitialized.
func newTestEnv(t *testing.T, connect bool, opts ...envOption) *testEnv {
	t.Helper()

	cfg := config.Default()
	cfg.Security.APIKey = testIngestKey
	cfg.Security.APIKeyWS = testWSKey
	cfg.Security.RateLimitDisabled = true
	cfg.Display.Timezone = "UTC"
	for _, o := range opts {
		o(cfg)
	}

	backend := &memBackend{}
	gw := storage.NewGateway(func(context.Context) (storage.Backend, error) {
		return backend, nil
	}, storage.GatewayConfig{Driver: cfg.Storage.Driver})
	if connect {
		gw.Initialize(context.Background())
	}

	tracker := session.NewTracker(cfg.Session.Timeout)
	hub := ws.NewHub(ws.HubConfig{MaxPerCredential: cfg.WebSocket.MaxConnectionsPerKey})
	svc := ingest.NewService(ingest.Config{
		Tracker:     tracker,
		Writer:      gw,
		Broadcaster: hub,
		Location:    time.UTC,
	})

	h := NewHandler(Dependencies{
		Config:  cfg,
		Ingest:  svc,
		Gateway: gw,
		Tracker: tracker,
		Hub:     hub,
		Version: "test",
	})
	srv := httptest.NewServer(NewRouter(h, nil).SetupChi())
	t.Cleanup(srv.Close)

	return &testEnv{cfg: cfg, backend: backend, gateway: gw, tracker: tracker, hub: hub, handler: h, server: srv}
}

func (e *testEnv) do(t *testing.T, method, path, body string, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.server.URL+path, rdr)
	if err != nil {
		t.Fatal(err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := e.server.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func (e *testEnv) postReading(t *testing.T, body string) (*http.Response, []byte) {
	t.Helper()
	return e.do(t, http.MethodPost, "/api/v1/sensor_data", body, map[string]string{"X-API-Key": testIngestKey})
}

func decodeBody(t *testing.T, data []byte, dst interface{}) {
	t.Helper()
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(dst); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
}

const validReading = `{"sensor_id":"estacao_cip","temperature":60.5,"pressure":2.1,"concentration":1.3,"flow":12.0}`
