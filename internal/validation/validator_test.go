// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package validation

import (
	"strings"
	"testing"

	"github.com/tomtom215/sensorflow/internal/models"
)

func TestValidateReading(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		reading   models.Reading
		wantField string
	}{
		{
			name: "complete",
			reading: models.Reading{
				SensorID: "estacao_cip", Temperature: models.Float(20.8),
				Pressure: models.Float(1.42), Concentration: models.Float(0.01),
			},
		},
		{
			name: "zero values are present",
			reading: models.Reading{
				Temperature: models.Float(0), Pressure: models.Float(0), Concentration: models.Float(0),
			},
		},
		{
			name:      "missing temperature",
			reading:   models.Reading{Pressure: models.Float(1), Concentration: models.Float(1)},
			wantField: "temperature",
		},
		{
			name: "sensor id with spaces",
			reading: models.Reading{
				SensorID: "board one", Temperature: models.Float(1),
				Pressure: models.Float(1), Concentration: models.Float(1),
			},
			wantField: "sensor_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			verr := ValidateStruct(&tt.reading)
			if tt.wantField == "" {
				if verr != nil {
					t.Fatalf("unexpected error: %v", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("expected validation error")
			}
			if verr.Fields()[0].Field != tt.wantField {
				t.Errorf("field = %q, want %q", verr.Fields()[0].Field, tt.wantField)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	t.Parallel()

	verr := ValidateStruct(&models.Reading{})
	if verr == nil {
		t.Fatal("empty reading should fail")
	}
	if got := len(verr.Fields()); got != 3 {
		t.Fatalf("expected 3 failures, got %d: %v", got, verr)
	}
	apiErr := verr.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q", apiErr.Code)
	}
	for _, f := range []string{"temperature is required", "pressure is required", "concentration is required"} {
		if !strings.Contains(apiErr.Message, f) {
			t.Errorf("message %q missing %q", apiErr.Message, f)
		}
	}
}

func TestQueryRequest(t *testing.T) {
	t.Parallel()

	if verr := ValidateStruct(&models.QueryRequest{}); verr == nil {
		t.Error("empty query should fail")
	}
	if verr := ValidateStruct(&models.QueryRequest{Query: "SELECT 1"}); verr != nil {
		t.Errorf("unexpected error: %v", verr)
	}
}

func TestGetValidatorSingleton(t *testing.T) {
	t.Parallel()
	if GetValidator() != GetValidator() {
		t.Error("GetValidator should return the same instance")
	}
}
