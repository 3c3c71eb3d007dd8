// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package auth

import (
	"crypto/subtle"
	"errors"
)

// Surfaces a key can guard.
const (
	SurfaceIngest    = "ingest"
	SurfaceWebSocket = "websocket"
)

// HeaderAPIKey carries the ingestion key.
const HeaderAPIKey = "X-API-Key"

// QueryAPIKey carries the subscription key.
const QueryAPIKey = "api-key"

// Key verification failures.
var (
	ErrMissingKey    = errors.New("api key missing")
	ErrInvalidKey    = errors.New("api key invalid")
	ErrNotConfigured = errors.New("api key not configured")
)

// KeyVerifier checks a presented key against one configured secret.
type KeyVerifier struct {
	surface string
	key     []byte
}

// NewKeyVerifier returns a verifier for surface. An empty key makes every
// Verify call fail with ErrNotConfigured.
func NewKeyVerifier(surface, key string) *KeyVerifier {
	return &KeyVerifier{surface: surface, key: []byte(key)}
}

// Surface names what the key guards.
func (v *KeyVerifier) Surface() string {
	return v.surface
}

// Configured reports whether a key is set.
func (v *KeyVerifier) Configured() bool {
	return len(v.key) > 0
}

// Verify returns nil only when presented equals the configured key.
func (v *KeyVerifier) Verify(presented string) error {
	var err error
	switch {
	case !v.Configured():
		err = ErrNotConfigured
	case presented == "":
		err = ErrMissingKey
	case subtle.ConstantTimeCompare([]byte(presented), v.key) != 1:
		err = ErrInvalidKey
	}
	recordCheck(v.surface, err)
	return err
}
