// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tomtom215/sensorflow/internal/models"
	"github.com/tomtom215/sensorflow/internal/storage"
)

func TestSensorDataCreated(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, true)
	resp, body := env.postReading(t, validReading)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d body=%s", resp.StatusCode, body)
	}

	var ev models.Event
	decodeBody(t, body, &ev)
	if ev.ID == nil {
		t.Fatal("id is null for a persisted reading")
	}
	if _, err := uuid.Parse(*ev.ID); err != nil {
		t.Errorf("id %q: %v", *ev.ID, err)
	}
	if ev.CIPID != 1 || ev.SensorID != "estacao_cip" || ev.Temperature != 60.5 {
		t.Errorf("event = %+v", ev)
	}
	if ev.ClientIP != "127.0.0.1" {
		t.Errorf("client_ip = %q", ev.ClientIP)
	}
	if ev.DateRecorded == "" || ev.TimeRecorded == "" {
		t.Error("display fields missing")
	}

	points := env.backend.dataPoints()
	if len(points) != 1 || points[0].Tags["cip_id"] != "1" || points[0].Fields["flow"] != 12 {
		t.Errorf("persisted points = %+v", points)
	}
}

func TestSensorDataAlias(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, true)
	resp, _ := env.do(t, http.MethodPost, "/api/v1/temperature_reading", validReading, map[string]string{"X-API-Key": testIngestKey})
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("alias status = %d", resp.StatusCode)
	}
}

func TestSensorDataAuth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers map[string]string
	}{
		{"missing key", nil},
		{"wrong key", map[string]string{"X-API-Key": "nope"}},
		{"ws key is not an ingest key", map[string]string{"X-API-Key": testWSKey}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t, true)

			// A malformed body proves the key is checked before parsing.
			resp, body := env.do(t, http.MethodPost, "/api/v1/sensor_data", "{not json", tt.headers)
			if resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", resp.StatusCode)
			}
			var er models.ErrorResponse
			decodeBody(t, body, &er)
			if er.Detail != "Invalid or missing API Key." || er.Error.Code != CodeUnauthorized {
				t.Errorf("body = %s", body)
			}
			if env.tracker.Snapshot().LastReadingAt != nil {
				t.Error("rejected request touched the session tracker")
			}
		})
	}
}

func TestSensorDataUnconfiguredKeyRejectsAll(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, true, withKeys("", ""))
	resp, _ := env.do(t, http.MethodPost, "/api/v1/sensor_data", validReading, map[string]string{"X-API-Key": ""})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestSensorDataMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		code string
	}{
		{"invalid json", `{"temperature":`, CodeInvalidJSON},
		{"non numeric", `{"temperature":"hot","pressure":1,"concentration":1}`, CodeInvalidJSON},
		{"missing concentration", `{"temperature":1,"pressure":1}`, CodeValidation},
		{"null temperature", `{"temperature":null,"pressure":1,"concentration":1}`, CodeValidation},
		{"bad sensor id", `{"sensor_id":"a b","temperature":1,"pressure":1,"concentration":1}`, CodeValidation},
		{"empty body", ``, CodeInvalidJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t, true)
			resp, body := env.postReading(t, tt.body)
			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d body=%s, want 422", resp.StatusCode, body)
			}
			var er models.ErrorResponse
			decodeBody(t, body, &er)
			if er.Error.Code != tt.code {
				t.Errorf("code = %s, want %s", er.Error.Code, tt.code)
			}
			if len(env.backend.dataPoints()) != 0 {
				t.Error("malformed reading was persisted")
			}
		})
	}
}

func TestSensorDataBodyTooLarge(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, true)
	big := `{"sensor_id":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	resp, _ := env.postReading(t, big)
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", resp.StatusCode)
	}
}

func TestSensorDataStorageDown(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)
	resp, body := env.postReading(t, validReading)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201 even without storage", resp.StatusCode)
	}
	if !strings.Contains(string(body), `"id":null`) {
		t.Errorf("body = %s, want null id", body)
	}
}

func TestSensorDataWriteFailureDegrades(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, true)
	env.backend.failWrites = true

	resp, body := env.postReading(t, validReading)
	if resp.StatusCode != http.StatusCreated || !strings.Contains(string(body), `"id":null`) {
		t.Fatalf("status=%d body=%s", resp.StatusCode, body)
	}
	if env.gateway.State() != storage.StateDegraded {
		t.Errorf("state = %v, want degraded", env.gateway.State())
	}
}

func TestSensorDataDefaultSensorID(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, true)
	_, body := env.postReading(t, `{"temperature":1,"pressure":2,"concentration":3}`)
	var ev models.Event
	decodeBody(t, body, &ev)
	if ev.SensorID != models.DefaultSensorID {
		t.Errorf("sensor_id = %q", ev.SensorID)
	}
}

func TestLatestSensorData(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, true)

	resp, body := env.do(t, http.MethodGet, "/api/v1/sensor_data/latest", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var placeholder models.Event
	decodeBody(t, body, &placeholder)
	if placeholder.ID != nil || placeholder.Temperature != 0 || placeholder.CIPID != 1 {
		t.Errorf("placeholder = %+v", placeholder)
	}

	_, created := env.postReading(t, validReading)
	var posted models.Event
	decodeBody(t, created, &posted)

	_, body = env.do(t, http.MethodGet, "/api/v1/sensor_data/latest", "", nil)
	var latest models.Event
	decodeBody(t, body, &latest)
	if latest.ID == nil || *latest.ID != *posted.ID {
		t.Errorf("latest = %+v, want %+v", latest, posted)
	}
}

func TestUnknownRoute(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, true)
	resp, body := env.do(t, http.MethodGet, "/api/v1/nope", "", nil)
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(string(body), CodeNotFound) {
		t.Errorf("status=%d body=%s", resp.StatusCode, body)
	}
}
