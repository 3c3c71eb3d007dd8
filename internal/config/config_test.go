// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mongo" }, "STORAGE_DRIVER"},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = DriverPostgres }, "POSTGRES_DSN"},
		{"postgres with dsn", func(c *Config) {
			c.Storage.Driver = DriverPostgres
			c.Storage.DSN = "postgres://localhost/sensors"
		}, ""},
		{"measurement injection", func(c *Config) { c.Storage.Measurement = "x; DROP TABLE y" }, "STORAGE_MEASUREMENT"},
		{"zero connect timeout", func(c *Config) { c.Storage.ConnectTimeout = 0 }, "STORAGE_CONNECT_TIMEOUT"},
		{"zero session timeout", func(c *Config) { c.Session.Timeout = 0 }, "SESSION_TIMEOUT"},
		{"bad timezone", func(c *Config) { c.Display.Timezone = "Mars/Olympus" }, "DISPLAY_TIMEZONE"},
		{"bad latest store", func(c *Config) { c.Latest.Store = "memcached" }, "LATEST_STORE"},
		{"mqtt bad qos", func(c *Config) {
			c.MQTT.Enabled = true
			c.MQTT.QoS = 3
		}, "MQTT_QOS"},
		{"mqtt disabled ignores qos", func(c *Config) { c.MQTT.QoS = 9 }, ""},
		{"rate limit window", func(c *Config) { c.Security.RateLimitWindow = time.Millisecond }, "RATE_LIMIT_WINDOW"},
		{"rate limit disabled", func(c *Config) {
			c.Security.RateLimitDisabled = true
			c.Security.RateLimitReqs = 0
		}, ""},
		{"bad log level", func(c *Config) { c.Logging.Level = "chatty" }, "LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestWarnings(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if got := len(cfg.Warnings()); got != 2 {
		t.Errorf("expected 2 warnings for missing keys, got %d", got)
	}

	cfg.Security.APIKey = "a"
	cfg.Security.APIKeyWS = "b"
	cfg.Server.Environment = "production"
	w := cfg.Warnings()
	if len(w) != 1 || !strings.Contains(w[0], "CORS") {
		t.Errorf("expected CORS warning only, got %v", w)
	}
}

func TestStorageTarget(t *testing.T) {
	t.Parallel()

	s := defaultConfig().Storage
	if s.Target() != "localhost" {
		t.Errorf("influx target = %q", s.Target())
	}
	s.Host = "https://cloud.influx.example"
	if s.InfluxURL() != "https://cloud.influx.example:8181" {
		t.Errorf("InfluxURL() = %q", s.InfluxURL())
	}
	s.Driver = DriverDuckDB
	if s.Target() != s.Path {
		t.Errorf("duckdb target = %q", s.Target())
	}
	s.Driver = DriverPostgres
	s.DSN = "postgres://user:secret@db/sensors"
	if strings.Contains(s.Target(), "secret") {
		t.Error("target must not leak credentials")
	}
}
