// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/tomtom215/sensorflow/internal/models"
)

func TestHealthHealthy(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, true)
	resp, body := env.do(t, http.MethodGet, "/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var hs models.HealthStatus
	decodeBody(t, body, &hs)
	if hs.Status != StatusHealthy || len(hs.Warnings) != 0 {
		t.Errorf("health = %+v", hs)
	}
	if !hs.Dependencies.Storage.Connected || hs.Dependencies.Storage.State != "connected" {
		t.Errorf("storage = %+v", hs.Dependencies.Storage)
	}
	if hs.Service != ServiceName || hs.Version != "test" || hs.Session.RunID != 1 {
		t.Errorf("health = %+v", hs)
	}
	if strings.Contains(string(body), testIngestKey) || strings.Contains(string(body), testWSKey) {
		t.Error("health leaks credentials")
	}
}

func TestHealthDegraded(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false, withKeys("only-ingest", ""))
	resp, body := env.do(t, http.MethodGet, "/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("degraded health must still be 200, got %d", resp.StatusCode)
	}

	var hs models.HealthStatus
	decodeBody(t, body, &hs)
	if hs.Status != StatusDegraded {
		t.Errorf("status = %s", hs.Status)
	}
	want := []string{
		"Storage backend (influxdb) connection unavailable",
		"API keys not fully configured",
	}
	if len(hs.Warnings) != len(want) {
		t.Fatalf("warnings = %v", hs.Warnings)
	}
	for i := range want {
		if hs.Warnings[i] != want[i] {
			t.Errorf("warning[%d] = %q, want %q", i, hs.Warnings[i], want[i])
		}
	}
	if !hs.Dependencies.Authentication.APIKeyConfigured || hs.Dependencies.Authentication.WebSocketAPIKeyConfigured {
		t.Errorf("auth = %+v", hs.Dependencies.Authentication)
	}
}

func TestHealthReady(t *testing.T) {
	t.Parallel()

	up := newTestEnv(t, true)
	if resp, _ := up.do(t, http.MethodGet, "/health/ready", "", nil); resp.StatusCode != http.StatusOK {
		t.Errorf("ready with storage = %d", resp.StatusCode)
	}

	down := newTestEnv(t, false)
	if resp, _ := down.do(t, http.MethodGet, "/health/ready", "", nil); resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("ready without storage = %d", resp.StatusCode)
	}
	if resp, _ := down.do(t, http.MethodGet, "/health/live", "", nil); resp.StatusCode != http.StatusOK {
		t.Errorf("live without storage = %d", resp.StatusCode)
	}
}

func TestPing(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, true)
	_, body := env.do(t, http.MethodGet, "/ping", "", nil)
	var pr models.PingResponse
	decodeBody(t, body, &pr)
	if pr.Message != "pong" || pr.Timestamp == "" {
		t.Errorf("ping = %+v", pr)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, true)
	env.postReading(t, validReading)
	resp, body := env.do(t, http.MethodGet, "/metrics", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "api_requests_total") {
		t.Error("metrics output missing api_requests_total")
	}
}

func TestSecurityHeadersOnAPI(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, true)
	resp, _ := env.do(t, http.MethodGet, "/api/v1/sensor_data/latest", "", nil)
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing on API routes")
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID missing")
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, true)
	resp, _ := env.do(t, http.MethodOptions, "/api/v1/sensor_data", "", map[string]string{
		"Origin":                         "https://dashboard.example",
		"Access-Control-Request-Method":  "POST",
		"Access-Control-Request-Headers": "X-API-Key, Content-Type",
	})
	if resp.Header.Get("Access-Control-Allow-Origin") == "" {
		t.Errorf("preflight not answered: status=%d headers=%v", resp.StatusCode, resp.Header)
	}
}
