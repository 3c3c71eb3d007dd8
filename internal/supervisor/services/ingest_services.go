// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package services

import "context"

// Runner is anything with a suture-style Serve, such as
// *storage.Reconnector or *mqtt.Source.
type Runner interface {
	Serve(ctx context.Context) error
}

// StorageReconnectorService retries Initialize while the storage gateway
// is not connected.
type StorageReconnectorService struct {
	reconnector Runner
}

// NewStorageReconnectorService wraps a reconnector.
func NewStorageReconnectorService(r Runner) *StorageReconnectorService {
	return &StorageReconnectorService{reconnector: r}
}

// Serve implements suture.Service.
func (s *StorageReconnectorService) Serve(ctx context.Context) error {
	return s.reconnector.Serve(ctx)
}

func (s *StorageReconnectorService) String() string {
	return "storage-reconnector"
}

// MQTTSourceService consumes readings from a broker. A failed connect
// returns an error so suture backs off before retrying.
type MQTTSourceService struct {
	source Runner
}

// NewMQTTSourceService wraps an MQTT source.
func NewMQTTSourceService(src Runner) *MQTTSourceService {
	return &MQTTSourceService{source: src}
}

// Serve implements suture.Service.
func (m *MQTTSourceService) Serve(ctx context.Context) error {
	return m.source.Serve(ctx)
}

func (m *MQTTSourceService) String() string {
	return "mqtt-source"
}
