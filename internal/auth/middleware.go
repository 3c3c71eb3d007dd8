// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package auth

import (
	"net/http"

	"github.com/tomtom215/sensorflow/internal/logging"
)

// RejectFunc writes the response for a failed key check.
type RejectFunc func(w http.ResponseWriter, r *http.Request, err error)

// RequireHeaderKey rejects requests whose X-API-Key header does not verify.
// The check runs before the body is read.
func RequireHeaderKey(v *KeyVerifier, reject RejectFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := v.Verify(r.Header.Get(HeaderAPIKey)); err != nil {
				logging.Ctx(r.Context()).Warn().
					Err(err).
					Str("surface", v.Surface()).
					Str("path", r.URL.Path).
					Msg("Rejected request with bad API key")
				reject(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
