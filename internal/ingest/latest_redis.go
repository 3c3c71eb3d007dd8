// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/tomtom215/sensorflow/internal/config"
	"github.com/tomtom215/sensorflow/internal/models"
)

const (
	redisDialTimeout = 5 * time.Second
	redisIOTimeout   = 3 * time.Second

	// DefaultRedisKey holds the latest event when no key is configured.
	DefaultRedisKey = "sensorflow:latest_event"

	// maxSetAttempts bounds WATCH retries when replicas race on the key.
	maxSetAttempts = 5
)

// RedisLatest shares the latest event between replicas through Redis.
type RedisLatest struct {
	client *redis.Client
	key    string
}

// NewRedisLatest connects to Redis and validates the connection with PING.
func NewRedisLatest(ctx context.Context, cfg *config.LatestConfig) (*RedisLatest, error) {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("redis: addr is empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  redisDialTimeout,
		ReadTimeout:  redisIOTimeout,
		WriteTimeout: redisIOTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisDialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return NewRedisLatestFromClient(client, cfg.RedisKey), nil
}

// NewRedisLatestFromClient wraps an existing client.
func NewRedisLatestFromClient(client *redis.Client, key string) *RedisLatest {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisLatest{client: client, key: key}
}

func (s *RedisLatest) Set(ctx context.Context, event *models.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal latest event: %w", err)
	}

	txf := func(tx *redis.Tx) error {
		stored, err := decodeEvent(tx.Get(ctx, s.key).Bytes())
		if err != nil {
			return err
		}
		if supersedes(stored, event) {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, data, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxSetAttempts; attempt++ {
		err = s.client.Watch(ctx, txf, s.key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisLatest) Get(ctx context.Context) (*models.Event, error) {
	event, err := decodeEvent(s.client.Get(ctx, s.key).Bytes())
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return event, nil
}

// decodeEvent turns a GET reply into an event; a missing key is nil, nil.
func decodeEvent(data []byte, err error) (*models.Event, error) {
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var event models.Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("decode latest event: %w", err)
	}
	return &event, nil
}

func (s *RedisLatest) Close() error {
	return s.client.Close()
}

// NewLatestStore builds the store selected by cfg.Store.
func NewLatestStore(ctx context.Context, cfg *config.LatestConfig) (LatestStore, error) {
	switch cfg.Store {
	case "", config.LatestMemory:
		return NewMemoryLatest(), nil
	case config.LatestRedis:
		return NewRedisLatest(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown latest store %q", cfg.Store)
	}
}
