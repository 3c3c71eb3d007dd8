// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
	// Embedded zone database so DISPLAY_TIMEZONE resolves in minimal images.
	_ "time/tzdata"
)

// Config is the complete service configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Security  SecurityConfig  `koanf:"security"`
	Storage   StorageConfig   `koanf:"storage"`
	Session   SessionConfig   `koanf:"session"`
	WebSocket WebSocketConfig `koanf:"websocket"`
	Display   DisplayConfig   `koanf:"display"`
	Latest    LatestConfig    `koanf:"latest"`
	MQTT      MQTTConfig      `koanf:"mqtt"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// SecurityConfig holds credentials and request throttling.
type SecurityConfig struct {
	// APIKey authorizes ingestion and query requests (X-API-Key header).
	APIKey string `koanf:"api_key"`

	// APIKeyWS authorizes live-view subscriptions (api-key query parameter).
	APIKeyWS string `koanf:"api_key_ws"`

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// KeysConfigured reports whether both credentials are set.
func (s SecurityConfig) KeysConfigured() bool {
	return s.APIKey != "" && s.APIKeyWS != ""
}

// Storage drivers.
const (
	DriverInfluxDB = "influxdb"
	DriverDuckDB   = "duckdb"
	DriverPostgres = "postgres"
)

// StorageConfig selects and parameterizes the time-series backend.
type StorageConfig struct {
	Driver string `koanf:"driver"`

	// InfluxDB v3
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Token    string `koanf:"token"`
	Database string `koanf:"database"`

	// DuckDB file path
	Path string `koanf:"path"`

	// PostgreSQL / TimescaleDB connection string
	DSN string `koanf:"dsn"`

	Measurement       string        `koanf:"measurement"`
	ConnectTimeout    time.Duration `koanf:"connect_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	ReconnectInterval time.Duration `koanf:"reconnect_interval"`
	ReconnectBackoff  time.Duration `koanf:"reconnect_backoff"`
}

// InfluxURL returns the InfluxDB base URL. A host that already carries a
// scheme is used as-is apart from the port.
func (s StorageConfig) InfluxURL() string {
	if strings.Contains(s.Host, "://") {
		return fmt.Sprintf("%s:%d", s.Host, s.Port)
	}
	return fmt.Sprintf("http://%s:%d", s.Host, s.Port)
}

// Target describes the backend location for health output without secrets.
func (s StorageConfig) Target() string {
	switch s.Driver {
	case DriverDuckDB:
		return s.Path
	case DriverPostgres:
		return "postgres"
	default:
		return s.Host
	}
}

// SessionConfig controls CIP run windowing.
type SessionConfig struct {
	// Timeout is the silence after which the next reading starts a new run.
	Timeout time.Duration `koanf:"timeout"`
}

// WebSocketConfig controls live-view subscribers.
type WebSocketConfig struct {
	// MaxConnectionsPerKey caps open subscriptions per credential; 0 is unlimited.
	MaxConnectionsPerKey int           `koanf:"max_connections_per_key"`
	SendBuffer           int           `koanf:"send_buffer"`
	WriteWait            time.Duration `koanf:"write_wait"`
	PongWait             time.Duration `koanf:"pong_wait"`
}

// DisplayConfig holds presentation settings for outgoing events.
type DisplayConfig struct {
	Timezone string `koanf:"timezone"`
}

// Location resolves the display time zone.
func (d DisplayConfig) Location() (*time.Location, error) {
	return time.LoadLocation(d.Timezone)
}

// Latest event stores.
const (
	LatestMemory = "memory"
	LatestRedis  = "redis"
)

// LatestConfig selects where the most recent event is kept.
type LatestConfig struct {
	Store         string `koanf:"store"`
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	RedisKey      string `koanf:"redis_key"`
}

// MQTTConfig enables an additional ingestion source subscribed to a broker.
type MQTTConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Broker   string `koanf:"broker"`
	Topic    string `koanf:"topic"`
	ClientID string `koanf:"client_id"`
	QoS      int    `koanf:"qos"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether ENVIRONMENT=production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
