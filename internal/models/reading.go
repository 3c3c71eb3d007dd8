// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package models

// DefaultSensorID is used when a board posts without identifying itself.
const DefaultSensorID = "default"

// UnknownClientIP tags readings whose origin address is not known.
const UnknownClientIP = "unknown"

// Reading is one inbound sensor measurement.
//
// Measurements are pointers so validation can tell an absent field from a
// legitimate zero. Boards in the field report either flow or humidity but
// never need both.
//
// Example payload:
//
//	{
//	  "sensor_id": "estacao_cip",
//	  "temperature": 25.5,
//	  "pressure": 1013.25,
//	  "concentration": 0.85,
//	  "flow": 12.3
//	}
type Reading struct {
	SensorID      string   `json:"sensor_id" validate:"omitempty,max=128,sensorid"`
	Temperature   *float64 `json:"temperature" validate:"required"`
	Pressure      *float64 `json:"pressure" validate:"required"`
	Concentration *float64 `json:"concentration" validate:"required"`
	Flow          *float64 `json:"flow,omitempty"`
	Humidity      *float64 `json:"humidity,omitempty"`
	StatusCIP     string   `json:"status_cip,omitempty" validate:"omitempty,max=64"`

	// ClientIP is filled in by the server, never trusted from the body.
	ClientIP string `json:"-"`
}

// Normalize applies defaults for optional identity fields.
func (r *Reading) Normalize() {
	if r.SensorID == "" {
		r.SensorID = DefaultSensorID
	}
	if r.ClientIP == "" {
		r.ClientIP = UnknownClientIP
	}
}

// Fields returns the numeric measurements keyed by column name.
// Absent optional measurements are omitted.
func (r *Reading) Fields() map[string]float64 {
	out := make(map[string]float64, 5)
	put := func(name string, v *float64) {
		if v != nil {
			out[name] = *v
		}
	}
	put("temperature", r.Temperature)
	put("pressure", r.Pressure)
	put("concentration", r.Concentration)
	put("flow", r.Flow)
	put("humidity", r.Humidity)
	return out
}

// Float returns a pointer to v, for building readings in code and tests.
func Float(v float64) *float64 {
	return &v
}
