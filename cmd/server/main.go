// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tomtom215/sensorflow/internal/api"
	"github.com/tomtom215/sensorflow/internal/config"
	"github.com/tomtom215/sensorflow/internal/ingest"
	"github.com/tomtom215/sensorflow/internal/logging"
	"github.com/tomtom215/sensorflow/internal/metrics"
	"github.com/tomtom215/sensorflow/internal/mqtt"
	"github.com/tomtom215/sensorflow/internal/session"
	"github.com/tomtom215/sensorflow/internal/storage"
	"github.com/tomtom215/sensorflow/internal/supervisor"
	"github.com/tomtom215/sensorflow/internal/supervisor/services"
	ws "github.com/tomtom215/sensorflow/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	logging.Info().
		Str("version", version).
		Str("storage_driver", cfg.Storage.Driver).
		Str("storage_target", cfg.Storage.Target()).
		Dur("session_timeout", cfg.Session.Timeout).
		Str("display_timezone", cfg.Display.Timezone).
		Bool("mqtt_enabled", cfg.MQTT.Enabled).
		Msg("Starting SensorFlow")
	for _, w := range cfg.Warnings() {
		logging.Warn().Msg(w)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage: a failed first probe leaves the gateway degraded, never fatal.
	connector, err := storage.NewConnector(&cfg.Storage)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build storage connector")
	}
	gateway := storage.NewGateway(connector, storage.GatewayConfig{
		Driver:         cfg.Storage.Driver,
		Measurement:    cfg.Storage.Measurement,
		WriteTimeout:   cfg.Storage.WriteTimeout,
		ConnectTimeout: cfg.Storage.ConnectTimeout,
	})
	if state := gateway.Initialize(ctx); state != storage.StateConnected {
		logging.Warn().Str("state", state.String()).Msg("Storage unavailable at startup, readings will not be persisted until it recovers")
	}
	defer func() {
		if err := gateway.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing storage backend")
		}
	}()
	reconnector := storage.NewReconnector(gateway, storage.ReconnectorConfig{
		Interval: cfg.Storage.ReconnectInterval,
		Backoff:  cfg.Storage.ReconnectBackoff,
	})

	loc, err := cfg.Display.Location()
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid display timezone")
	}

	latest, err := ingest.NewLatestStore(ctx, &cfg.Latest)
	if err != nil {
		logging.Warn().Err(err).Str("store", cfg.Latest.Store).Msg("Latest-event store unavailable, using in-memory store")
		latest = ingest.NewMemoryLatest()
	}
	defer func() {
		if err := latest.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing latest-event store")
		}
	}()

	tracker := session.NewTracker(cfg.Session.Timeout)
	hub := ws.NewHub(ws.HubConfig{MaxPerCredential: cfg.WebSocket.MaxConnectionsPerKey})
	ingestSvc := ingest.NewService(ingest.Config{
		Tracker:     tracker,
		Writer:      gateway,
		Broadcaster: hub,
		Latest:      latest,
		Location:    loc,
	})

	handler := api.NewHandler(api.Dependencies{
		Config:  cfg,
		Ingest:  ingestSvc,
		Gateway: gateway,
		Tracker: tracker,
		Hub:     hub,
		Version: version,
	})
	router := api.NewRouter(handler, nil)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddDataService(services.NewStorageReconnectorService(reconnector))
	tree.AddIngestionService(services.NewWebSocketHubService(hub))
	if cfg.MQTT.Enabled {
		tree.AddIngestionService(services.NewMQTTSourceService(mqtt.NewSource(cfg.MQTT, ingestSvc)))
		logging.Info().Str("broker", cfg.MQTT.Broker).Str("topic", cfg.MQTT.Topic).Msg("MQTT source added to supervisor tree")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
		err = <-errCh
	case err = <-errCh:
		cancel()
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("SensorFlow stopped")
}
