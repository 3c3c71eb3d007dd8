// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/sensorflow/internal/logging"
)

// Rate limit bounds.
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateRealtime(); err != nil {
		return err
	}
	if err := c.validateLatest(); err != nil {
		return err
	}
	if err := c.validateMQTT(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

func (c *Config) validateStorage() error {
	s := &c.Storage
	switch s.Driver {
	case DriverInfluxDB:
		if s.Host == "" {
			return fmt.Errorf("INFLUX_HOST is required when STORAGE_DRIVER=influxdb")
		}
		if s.Port < 1 || s.Port > 65535 {
			return fmt.Errorf("INFLUX_PORT must be between 1 and 65535")
		}
	case DriverDuckDB:
		if s.Path == "" {
			return fmt.Errorf("DUCKDB_PATH is required when STORAGE_DRIVER=duckdb")
		}
	case DriverPostgres:
		if s.DSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required when STORAGE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be one of: influxdb, duckdb, postgres")
	}
	if !isIdentifier(s.Measurement) {
		return fmt.Errorf("STORAGE_MEASUREMENT must contain only letters, digits and underscores")
	}
	if s.ConnectTimeout <= 0 {
		return fmt.Errorf("STORAGE_CONNECT_TIMEOUT must be positive")
	}
	if s.WriteTimeout <= 0 {
		return fmt.Errorf("STORAGE_WRITE_TIMEOUT must be positive")
	}
	if s.ReconnectInterval < 0 {
		return fmt.Errorf("STORAGE_RECONNECT_INTERVAL must not be negative")
	}
	return nil
}

func (c *Config) validateRealtime() error {
	if c.Session.Timeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT must be positive")
	}
	if c.WebSocket.SendBuffer < 1 {
		return fmt.Errorf("WS_SEND_BUFFER must be at least 1")
	}
	if c.WebSocket.WriteWait <= 0 || c.WebSocket.PongWait <= 0 {
		return fmt.Errorf("WS_WRITE_WAIT and WS_PONG_WAIT must be positive")
	}
	if _, err := c.Display.Location(); err != nil {
		return fmt.Errorf("DISPLAY_TIMEZONE %q is not a known time zone: %w", c.Display.Timezone, err)
	}
	return nil
}

func (c *Config) validateLatest() error {
	switch c.Latest.Store {
	case LatestMemory:
		return nil
	case LatestRedis:
		if c.Latest.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when LATEST_STORE=redis")
		}
		return nil
	default:
		return fmt.Errorf("LATEST_STORE must be one of: memory, redis")
	}
}

func (c *Config) validateMQTT() error {
	if !c.MQTT.Enabled {
		return nil
	}
	if c.MQTT.Broker == "" || c.MQTT.Topic == "" {
		return fmt.Errorf("MQTT_BROKER and MQTT_TOPIC are required when MQTT_ENABLED=true")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		return fmt.Errorf("MQTT_QOS must be 0, 1 or 2")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console")
	}
}

// Warnings lists non-fatal configuration concerns to log at startup.
func (c *Config) Warnings() []string {
	var out []string
	if c.Security.APIKey == "" {
		out = append(out, "API_KEY is empty; ingestion and query endpoints reject every request")
	}
	if c.Security.APIKeyWS == "" {
		out = append(out, "API_KEY_WS is empty; live-view subscriptions are rejected")
	}
	if c.IsProduction() {
		for _, o := range c.Security.CORSOrigins {
			if o == "*" {
				out = append(out, "CORS_ORIGINS=* in production")
				break
			}
		}
	}
	return out
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
