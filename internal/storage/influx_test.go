// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package storage

import (
	"errors"
	"strings"
	"testing"
)

// sliceIterator mimics the influxdb3 iterator over a fixed set of rows.
type sliceIterator struct {
	rows     []Row
	pos      int
	panicAt  int
	finalErr error
}

func (it *sliceIterator) next() bool {
	if it.pos >= len(it.rows) {
		return false
	}
	it.pos++
	if it.panicAt > 0 && it.pos == it.panicAt {
		panic(errors.New("unsupported arrow type"))
	}
	return true
}

func (it *sliceIterator) value() map[string]interface{} {
	return it.rows[it.pos-1]
}

func (it *sliceIterator) err() error {
	return it.finalErr
}

func TestCollectRows(t *testing.T) {
	t.Parallel()

	rows := []Row{{"temperature": 25.5}, {"temperature": 26.0}}

	tests := []struct {
		name     string
		it       *sliceIterator
		wantRows int
		wantErr  string
	}{
		{name: "all rows", it: &sliceIterator{rows: rows}, wantRows: 2},
		{name: "empty result", it: &sliceIterator{}, wantRows: 0},
		{name: "reader error", it: &sliceIterator{rows: rows, finalErr: errors.New("stream reset")}, wantErr: "stream reset"},
		{name: "conversion panic", it: &sliceIterator{rows: rows, panicAt: 2}, wantErr: "unsupported arrow type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := collectRows(tt.it.next, tt.it.value, tt.it.err)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("collectRows() error = %v, want containing %q", err, tt.wantErr)
				}
				if got != nil {
					t.Errorf("collectRows() rows = %v, want nil on error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("collectRows() error = %v", err)
			}
			if got == nil || len(got) != tt.wantRows {
				t.Errorf("collectRows() = %v, want %d non-nil rows", got, tt.wantRows)
			}
		})
	}
}
