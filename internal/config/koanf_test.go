// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// chdirTemp isolates Load from any config.yaml in the package directory.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(ConfigPathEnvVar, "")
	return dir
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Storage.Driver != DriverInfluxDB {
		t.Errorf("Storage.Driver = %q, want influxdb", cfg.Storage.Driver)
	}
	if cfg.Storage.Port != 8181 {
		t.Errorf("Storage.Port = %d, want 8181", cfg.Storage.Port)
	}
	if cfg.Storage.Measurement != "sensor_readings" {
		t.Errorf("Storage.Measurement = %q", cfg.Storage.Measurement)
	}
	if cfg.Session.Timeout != 10*time.Minute {
		t.Errorf("Session.Timeout = %v, want 10m", cfg.Session.Timeout)
	}
	if cfg.WebSocket.MaxConnectionsPerKey != 0 {
		t.Errorf("MaxConnectionsPerKey = %d, want 0", cfg.WebSocket.MaxConnectionsPerKey)
	}
	if cfg.Display.Timezone != "America/Sao_Paulo" {
		t.Errorf("Display.Timezone = %q", cfg.Display.Timezone)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("API_KEY", "write-key")
	t.Setenv("API_KEY_WS", "ws-key")
	t.Setenv("INFLUX_HOST", "influx.internal")
	t.Setenv("INFLUX_PORT", "9999")
	t.Setenv("INFLUX_DATABASE", "plant")
	t.Setenv("SESSION_TIMEOUT", "90s")
	t.Setenv("MAX_WS_CONNECTIONS_PER_KEY", "3")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Security.APIKey != "write-key" || cfg.Security.APIKeyWS != "ws-key" {
		t.Errorf("keys not loaded: %+v", cfg.Security)
	}
	if !cfg.Security.KeysConfigured() {
		t.Error("KeysConfigured() = false")
	}
	if cfg.Storage.Host != "influx.internal" || cfg.Storage.Port != 9999 || cfg.Storage.Database != "plant" {
		t.Errorf("storage not loaded: %+v", cfg.Storage)
	}
	if cfg.Storage.InfluxURL() != "http://influx.internal:9999" {
		t.Errorf("InfluxURL() = %q", cfg.Storage.InfluxURL())
	}
	if cfg.Session.Timeout != 90*time.Second {
		t.Errorf("Session.Timeout = %v", cfg.Session.Timeout)
	}
	if cfg.WebSocket.MaxConnectionsPerKey != 3 {
		t.Errorf("MaxConnectionsPerKey = %d", cfg.WebSocket.MaxConnectionsPerKey)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
}

func TestLoadQuotaClamping(t *testing.T) {
	tests := []struct {
		value string
		want  int
	}{
		{"5", 5},
		{"0", 0},
		{"-4", 0},
		{"many", 0},
		{" 7 ", 7},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			chdirTemp(t)
			t.Setenv("MAX_WS_CONNECTIONS_PER_KEY", tt.value)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.WebSocket.MaxConnectionsPerKey != tt.want {
				t.Errorf("MaxConnectionsPerKey = %d, want %d", cfg.WebSocket.MaxConnectionsPerKey, tt.want)
			}
		})
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "custom.yaml")
	yaml := []byte(`
server:
  port: 9000
storage:
  driver: duckdb
  path: /tmp/readings.duckdb
session:
  timeout: 5m
`)
	if err := os.WriteFile(path, yaml, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("env should override file: port = %d", cfg.Server.Port)
	}
	if cfg.Storage.Driver != DriverDuckDB || cfg.Storage.Path != "/tmp/readings.duckdb" {
		t.Errorf("file values not loaded: %+v", cfg.Storage)
	}
	if cfg.Session.Timeout != 5*time.Minute {
		t.Errorf("Session.Timeout = %v", cfg.Session.Timeout)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"API_KEY":                    "security.api_key",
		"INFLUX_TOKEN":               "storage.token",
		"MAX_WS_CONNECTIONS_PER_KEY": "websocket.max_connections_per_key",
		"DISPLAY_TIMEZONE":           "display.timezone",
		"MQTT_BROKER":                "mqtt.broker",
		"PATH":                       "",
		"HOME":                       "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}
