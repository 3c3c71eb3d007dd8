// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package mqtt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/goccy/go-json"

	"github.com/tomtom215/sensorflow/internal/config"
	"github.com/tomtom215/sensorflow/internal/ingest"
	"github.com/tomtom215/sensorflow/internal/logging"
	"github.com/tomtom215/sensorflow/internal/metrics"
	"github.com/tomtom215/sensorflow/internal/models"
	"github.com/tomtom215/sensorflow/internal/validation"
)

const (
	connectTimeout    = 10 * time.Second
	disconnectQuiesce = 250 // milliseconds
	maxPayloadBytes   = 64 * 1024
)

// Message outcomes recorded in mqtt_messages_total.
const (
	OutcomeIngested = "ingested"
	OutcomeInvalid  = "invalid"
)

// Ingester is the pipeline a message is handed to.
type Ingester interface {
	Ingest(ctx context.Context, source string, r *models.Reading) *models.Event
}

// ClientFactory builds a paho client; tests substitute a fake.
type ClientFactory func(opts *paho.ClientOptions) paho.Client

// Source subscribes to the configured topic and ingests each message.
type Source struct {
	cfg       config.MQTTConfig
	ingester  Ingester
	newClient ClientFactory
}

// NewSource returns a Source using the real paho client.
func NewSource(cfg config.MQTTConfig, ingester Ingester) *Source {
	return NewSourceWithFactory(cfg, ingester, paho.NewClient)
}

// NewSourceWithFactory returns a Source that builds its client with factory.
func NewSourceWithFactory(cfg config.MQTTConfig, ingester Ingester, factory ClientFactory) *Source {
	return &Source{cfg: cfg, ingester: ingester, newClient: factory}
}

// String identifies the service in supervisor logs.
func (s *Source) String() string {
	return fmt.Sprintf("mqtt-source[%s %s]", s.cfg.Broker, s.cfg.Topic)
}

// Serve connects and consumes until ctx is cancelled.
func (s *Source) Serve(ctx context.Context) error {
	client := s.newClient(s.options(ctx))

	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("mqtt connect to %s: timed out", s.cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect to %s: %w", s.cfg.Broker, err)
	}
	logging.Info().Str("broker", s.cfg.Broker).Str("topic", s.cfg.Topic).Msg("MQTT source connected")

	<-ctx.Done()
	client.Disconnect(disconnectQuiesce)
	logging.Info().Str("broker", s.cfg.Broker).Msg("MQTT source disconnected")
	return ctx.Err()
}

func (s *Source) options(ctx context.Context) *paho.ClientOptions {
	opts := paho.NewClientOptions().
		AddBroker(s.cfg.Broker).
		SetClientID(s.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout).
		SetOrderMatters(false)
	if s.cfg.Username != "" {
		opts.SetUsername(s.cfg.Username)
		opts.SetPassword(s.cfg.Password)
	}

	handler := func(_ paho.Client, msg paho.Message) {
		s.HandleMessage(ctx, msg)
	}
	opts.SetOnConnectHandler(func(c paho.Client) {
		t := c.Subscribe(s.cfg.Topic, byte(s.cfg.QoS), handler)
		if t.WaitTimeout(connectTimeout) && t.Error() == nil {
			logging.Info().Str("topic", s.cfg.Topic).Int("qos", s.cfg.QoS).Msg("MQTT subscribed")
			return
		}
		err := t.Error()
		if err == nil {
			err = errors.New("subscribe timed out")
		}
		logging.Error().Err(err).Str("topic", s.cfg.Topic).Msg("MQTT subscribe failed")
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		logging.Warn().Err(err).Str("broker", s.cfg.Broker).Msg("MQTT connection lost, reconnecting")
	})
	return opts
}

// HandleMessage decodes, validates and ingests one message. It reports
// whether the message was ingested.
func (s *Source) HandleMessage(ctx context.Context, msg paho.Message) bool {
	reading, reason, err := decodeReading(msg.Topic(), msg.Payload())
	if err != nil {
		metrics.MQTTMessages.WithLabelValues(OutcomeInvalid).Inc()
		metrics.RecordRejection(ingest.SourceMQTT, reason)
		logging.Warn().Err(err).Str("topic", msg.Topic()).Msg("Dropped invalid MQTT message")
		return false
	}

	metrics.MQTTMessages.WithLabelValues(OutcomeIngested).Inc()
	s.ingester.Ingest(ctx, ingest.SourceMQTT, reading)
	return true
}

func decodeReading(topic string, payload []byte) (*models.Reading, string, error) {
	if len(payload) > maxPayloadBytes {
		return nil, "too_large", fmt.Errorf("payload of %d bytes exceeds %d", len(payload), maxPayloadBytes)
	}

	var r models.Reading
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, "invalid_json", fmt.Errorf("decode payload: %w", err)
	}
	if r.SensorID == "" {
		r.SensorID = SensorFromTopic(topic)
	}
	if verr := validation.ValidateStruct(&r); verr != nil {
		return nil, "validation", verr
	}
	r.ClientIP = ingest.SourceMQTT
	return &r, "", nil
}

// SensorFromTopic returns the second level of a topic like
// sensors/<id>/readings, or "" when there is none.
func SensorFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) < 3 || parts[1] == "" {
		return ""
	}
	return parts[1]
}
