// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package models

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Skipf("time zone data unavailable: %v", err)
	}
	return loc
}

func TestNewEventDisplayTime(t *testing.T) {
	t.Parallel()
	loc := saoPaulo(t)

	r := &Reading{
		Temperature:   Float(21.5),
		Pressure:      Float(1.2),
		Concentration: Float(0.4),
		Flow:          Float(12.3),
	}
	r.Normalize()

	received := time.Date(2026, 3, 1, 2, 30, 15, 987654321, time.UTC)
	e := NewEvent(r, 3, nil, received, loc)

	// Sao Paulo is UTC-3 with no DST in 2026.
	if e.DateRecorded != "2026-02-28" || e.TimeRecorded != "23:30:15" {
		t.Errorf("display fields = %s %s", e.DateRecorded, e.TimeRecorded)
	}
	if e.Timestamp.Nanosecond() != 0 {
		t.Errorf("timestamp not truncated to seconds: %v", e.Timestamp)
	}
	if !e.Timestamp.Equal(received.Truncate(time.Second)) {
		t.Errorf("timestamp instant changed: %v", e.Timestamp)
	}
	if e.SensorID != DefaultSensorID || e.ClientIP != UnknownClientIP {
		t.Errorf("defaults not applied: %q %q", e.SensorID, e.ClientIP)
	}
	if e.Persisted() {
		t.Error("event without id reported persisted")
	}
	if e.Humidity != nil {
		t.Error("absent humidity should stay nil")
	}
}

func TestEventRoundTrip(t *testing.T) {
	t.Parallel()
	loc := saoPaulo(t)

	id := "5f0c8f0e-7d4a-4d1b-9b53-0f5d2f0f7a11"
	r := &Reading{
		SensorID:      "estacao_cip",
		Temperature:   Float(80.25),
		Pressure:      Float(2.5),
		Concentration: Float(1.75),
		Humidity:      Float(40),
		StatusCIP:     "true",
		ClientIP:      "10.0.0.7",
	}
	orig := NewEvent(r, 7, &id, time.Date(2026, 7, 4, 15, 0, 1, 0, time.UTC), loc)

	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var got Event
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if got.ID == nil || *got.ID != id {
		t.Errorf("ID = %v, want %s", got.ID, id)
	}
	if got.SensorID != orig.SensorID || got.ClientIP != orig.ClientIP || got.CIPID != orig.CIPID || got.StatusCIP != orig.StatusCIP {
		t.Errorf("identity fields differ: got %+v want %+v", got, *orig)
	}
	if got.Temperature != orig.Temperature || got.Pressure != orig.Pressure || got.Concentration != orig.Concentration {
		t.Errorf("measurements differ: got %+v want %+v", got, *orig)
	}
	if got.Humidity == nil || *got.Humidity != 40 || got.Flow != nil {
		t.Errorf("optional measurements differ: flow=%v humidity=%v", got.Flow, got.Humidity)
	}
	if !got.Timestamp.Equal(orig.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, orig.Timestamp)
	}
	_, gotOffset := got.Timestamp.Zone()
	_, wantOffset := orig.Timestamp.Zone()
	if gotOffset != wantOffset {
		t.Errorf("offset = %d, want %d", gotOffset, wantOffset)
	}
	if got.DateRecorded != orig.DateRecorded || got.TimeRecorded != orig.TimeRecorded {
		t.Errorf("display fields differ: %s %s", got.DateRecorded, got.TimeRecorded)
	}
}

func TestEventNullID(t *testing.T) {
	t.Parallel()

	r := &Reading{Temperature: Float(0), Pressure: Float(0), Concentration: Float(0)}
	r.Normalize()
	data, err := json.Marshal(NewEvent(r, 1, nil, time.Unix(0, 0), time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	v, ok := raw["id"]
	if !ok || v != nil {
		t.Errorf("id should be present and null, got %v (present=%v)", v, ok)
	}
}

func TestPlaceholderEvent(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	e := PlaceholderEvent(4, now, time.UTC)
	if e.CIPID != 4 || e.Temperature != 0 || e.Flow == nil || *e.Flow != 0 {
		t.Errorf("unexpected placeholder: %+v", e)
	}
	if e.ID != nil {
		t.Error("placeholder must not carry an id")
	}
}

func TestReadingFields(t *testing.T) {
	t.Parallel()

	r := &Reading{Temperature: Float(1), Pressure: Float(2), Concentration: Float(0), Flow: Float(4)}
	f := r.Fields()
	if len(f) != 4 {
		t.Fatalf("Fields() = %v", f)
	}
	if v, ok := f["concentration"]; !ok || v != 0 {
		t.Error("zero concentration must be kept")
	}
	if _, ok := f["humidity"]; ok {
		t.Error("absent humidity must be omitted")
	}
}
