// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/sensorflow/config.yaml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// Default returns the built-in configuration before any file or
// environment overrides.
func Default() *Config {
	return defaultConfig()
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8000,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   600,
			RateLimitWindow: time.Minute,
		},
		Storage: StorageConfig{
			Driver:            DriverInfluxDB,
			Host:              "localhost",
			Port:              8181,
			Database:          "database",
			Path:              "/data/sensorflow.duckdb",
			Measurement:       "sensor_readings",
			ConnectTimeout:    10 * time.Second,
			WriteTimeout:      5 * time.Second,
			ReconnectInterval: 30 * time.Second,
			ReconnectBackoff:  2 * time.Minute,
		},
		Session: SessionConfig{
			Timeout: 10 * time.Minute,
		},
		WebSocket: WebSocketConfig{
			MaxConnectionsPerKey: 0,
			SendBuffer:           64,
			WriteWait:            10 * time.Second,
			PongWait:             60 * time.Second,
		},
		Display: DisplayConfig{
			Timezone: "America/Sao_Paulo",
		},
		Latest: LatestConfig{
			Store:     LatestMemory,
			RedisAddr: "localhost:6379",
			RedisKey:  "sensorflow:latest_event",
		},
		MQTT: MQTTConfig{
			Broker:   "tcp://localhost:1883",
			Topic:    "sensors/+/readings",
			ClientID: "sensorflow",
			QoS:      1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads defaults, then the optional YAML file, then environment
// variables, and validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := normalize(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths arrive from the environment as comma-separated strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// normalize repairs values that env strings cannot express directly.
func normalize(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok || raw == "" {
			continue
		}
		var parts []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}

	// A malformed or negative quota means unlimited rather than a startup failure.
	const quotaPath = "websocket.max_connections_per_key"
	if err := k.Set(quotaPath, clampQuota(k.Get(quotaPath))); err != nil {
		return fmt.Errorf("failed to set %s: %w", quotaPath, err)
	}
	return nil
}

func clampQuota(v interface{}) int {
	var n int
	switch val := v.(type) {
	case int:
		n = val
	case int64:
		n = int(val)
	case float64:
		n = int(val)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0
		}
		n = parsed
	default:
		return 0
	}
	if n < 0 {
		return 0
	}
	return n
}

// envMappings is the complete set of environment variables honoured.
var envMappings = map[string]string{
	// Server
	"http_host":    "server.host",
	"http_port":    "server.port",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	// Security
	"api_key":             "security.api_key",
	"api_key_ws":          "security.api_key_ws",
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Storage
	"storage_driver":             "storage.driver",
	"influx_host":                "storage.host",
	"influx_port":                "storage.port",
	"influx_token":               "storage.token",
	"influx_database":            "storage.database",
	"duckdb_path":                "storage.path",
	"postgres_dsn":               "storage.dsn",
	"storage_measurement":        "storage.measurement",
	"storage_connect_timeout":    "storage.connect_timeout",
	"storage_write_timeout":      "storage.write_timeout",
	"storage_reconnect_interval": "storage.reconnect_interval",
	"storage_reconnect_backoff":  "storage.reconnect_backoff",

	// Session
	"session_timeout": "session.timeout",

	// WebSocket
	"max_ws_connections_per_key": "websocket.max_connections_per_key",
	"ws_send_buffer":             "websocket.send_buffer",
	"ws_write_wait":              "websocket.write_wait",
	"ws_pong_wait":               "websocket.pong_wait",

	// Display
	"display_timezone": "display.timezone",

	// Latest event store
	"latest_store":     "latest.store",
	"redis_addr":       "latest.redis_addr",
	"redis_password":   "latest.redis_password",
	"redis_db":         "latest.redis_db",
	"redis_latest_key": "latest.redis_key",

	// MQTT
	"mqtt_enabled":   "mqtt.enabled",
	"mqtt_broker":    "mqtt.broker",
	"mqtt_topic":     "mqtt.topic",
	"mqtt_client_id": "mqtt.client_id",
	"mqtt_qos":       "mqtt.qos",
	"mqtt_username":  "mqtt.username",
	"mqtt_password":  "mqtt.password",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unmapped names return "" and are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
