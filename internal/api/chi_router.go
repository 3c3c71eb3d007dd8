// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/sensorflow/internal/auth"
	"github.com/tomtom215/sensorflow/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router for h.
func NewRouter(h *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(ChiMiddlewareConfigFrom(h.config.Security))
	}
	return &Router{handler: h, chiMiddleware: mw}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, CodeNotFound, "Not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "Method not allowed", nil)
	})

	// ========================
	// Health and Monitoring
	// ========================
	r.Get("/health", h.Health)
	r.Get("/health/live", h.HealthLive)
	r.Get("/health/ready", h.HealthReady)
	r.Get("/ping", h.Ping)
	r.Handle("/metrics", promhttp.Handler())

	// ========================
	// Live View
	// ========================
	r.With(router.chiMiddleware.RateLimit()).Get("/ws/sensor_updates", h.SensorUpdates)

	// ========================
	// API
	// ========================
	requireKey := auth.RequireHeaderKey(h.ingestKey, rejectKey)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(middleware.SecurityHeaders)

		r.Get("/sensor_data/latest", h.LatestSensorData)

		r.Group(func(r chi.Router) {
			r.Use(requireKey)
			r.Post("/sensor_data", h.SensorData)
			r.Post("/temperature_reading", h.SensorData)

			r.Post("/query/sql", h.QuerySQL)
			r.Get("/query/recent", h.QueryRecent)
			r.Get("/query/sensor/{sensor_id}/latest", h.QuerySensorLatest)
		})
	})

	return r
}
