// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package api

import (
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/sensorflow/internal/models"
)

func (e *testEnv) dialWS(t *testing.T, key string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/ws/sensor_updates?api-key=" + url.QueryEscape(key)
	conn, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForClients(t *testing.T, e *testEnv, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for e.hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("subscribers = %d, want %d", e.hub.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func expectClose(t *testing.T, conn *websocket.Conn, code int, text string) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	var ce *websocket.CloseError
	if !errors.As(err, &ce) {
		t.Fatalf("read error = %v, want close frame", err)
	}
	if ce.Code != code || ce.Text != text {
		t.Errorf("close = %d %q, want %d %q", ce.Code, ce.Text, code, text)
	}
}

func TestSensorUpdatesRejectsBadKey(t *testing.T) {
	t.Parallel()

	for _, key := range []string{"", "wrong", testIngestKey} {
		env := newTestEnv(t, true)
		conn := env.dialWS(t, key)
		expectClose(t, conn, websocket.ClosePolicyViolation, "Invalid or missing API Key.")
		if env.hub.ClientCount() != 0 {
			t.Errorf("key %q subscribed", key)
		}
	}
}

func TestSensorUpdatesQuota(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, true, withQuota(1))
	first := env.dialWS(t, testWSKey)
	waitForClients(t, env, 1)

	second := env.dialWS(t, testWSKey)
	expectClose(t, second, websocket.ClosePolicyViolation, "Max connections (1) for this API Key reached.")

	// Releasing the first slot admits a new subscriber.
	_ = first.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	waitForClients(t, env, 0)
	env.dialWS(t, testWSKey)
	waitForClients(t, env, 1)
}

func TestSensorUpdatesReceivesIngestedEvents(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, true)
	conn := env.dialWS(t, testWSKey)
	waitForClients(t, env, 1)

	_, created := env.postReading(t, validReading)
	var posted models.Event
	decodeBody(t, created, &posted)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got models.Event
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("frame %s: %v", data, err)
	}
	if got.ID == nil || *got.ID != *posted.ID || got.CIPID != posted.CIPID || got.Temperature != 60.5 {
		t.Errorf("broadcast = %+v, want %+v", got, posted)
	}
}

func TestSensorUpdatesRejectsForeignOrigin(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, true)
	env.cfg.Security.CORSOrigins = []string{"https://dashboard.example"}

	u := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws/sensor_updates?api-key=" + testWSKey
	header := map[string][]string{"Origin": {"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(u, header)
	if err == nil {
		t.Fatal("foreign origin was upgraded")
	}
	if resp != nil {
		_ = resp.Body.Close()
		if resp.StatusCode != 403 {
			t.Errorf("status = %d, want 403", resp.StatusCode)
		}
	}
}
