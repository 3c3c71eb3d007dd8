// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package models

import (
	"time"
)

// Date and time layouts for the display fields of an Event.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Event is a Reading enriched with its CIP run id, the server receipt time in
// the display zone, and the record id minted when persistence succeeded.
// It is both the HTTP ingest response and the live-view broadcast payload.
//
// ID is null when the reading was not persisted.
type Event struct {
	ID            *string   `json:"id"`
	SensorID      string    `json:"sensor_id"`
	ClientIP      string    `json:"client_ip"`
	CIPID         int64     `json:"cip_id"`
	StatusCIP     string    `json:"status_cip,omitempty"`
	Temperature   float64   `json:"temperature"`
	Pressure      float64   `json:"pressure"`
	Concentration float64   `json:"concentration"`
	Flow          *float64  `json:"flow,omitempty"`
	Humidity      *float64  `json:"humidity,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	DateRecorded  string    `json:"date_recorded"`
	TimeRecorded  string    `json:"time_recorded"`
}

// NewEvent builds an Event from an accepted reading. receivedAt is converted
// to loc and truncated to whole seconds.
func NewEvent(r *Reading, runID int64, recordID *string, receivedAt time.Time, loc *time.Location) *Event {
	local := receivedAt.In(loc).Truncate(time.Second)
	return &Event{
		ID:            recordID,
		SensorID:      r.SensorID,
		ClientIP:      r.ClientIP,
		CIPID:         runID,
		StatusCIP:     r.StatusCIP,
		Temperature:   deref(r.Temperature),
		Pressure:      deref(r.Pressure),
		Concentration: deref(r.Concentration),
		Flow:          copyFloat(r.Flow),
		Humidity:      copyFloat(r.Humidity),
		Timestamp:     local,
		DateRecorded:  local.Format(DateLayout),
		TimeRecorded:  local.Format(TimeLayout),
	}
}

// PlaceholderEvent is returned by the latest endpoint before any reading has
// arrived: zero measurements, the current run id, and the current time.
func PlaceholderEvent(runID int64, now time.Time, loc *time.Location) *Event {
	zero := &Reading{
		Temperature:   Float(0),
		Pressure:      Float(0),
		Concentration: Float(0),
		Flow:          Float(0),
	}
	zero.Normalize()
	return NewEvent(zero, runID, nil, now, loc)
}

// Persisted reports whether the reading behind this event was stored.
func (e *Event) Persisted() bool {
	return e.ID != nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
