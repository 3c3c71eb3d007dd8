// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

/*
Package websocket fans accepted sensor events out to live subscribers.

Key Components:

  - Hub: the live subscriber set plus a per-credential connection ledger
  - Subscriber: the narrow capability the hub needs from a connection
  - Client: a gorilla/websocket connection with a bounded send buffer

Architecture:

	Ingest ──► Hub.Broadcast ──► Client.Send (non-blocking)
	                                  │
	                                  ▼
	                          send buffer ──► writePump ──► conn

Broadcast serializes the event once and offers the same bytes to every
subscriber in subscription order. A send never blocks: a full buffer or a
closed connection counts as a failure and the subscriber is pruned, so one
slow reader cannot stall the others.

Quota:

The hub keeps a ledger of open subscriptions per credential. When a quota
is configured, Subscribe rejects with ErrQuotaExceeded once the credential
holds that many subscriptions. Subscribe, Unsubscribe and pruning all update
the ledger under one mutex, so the count always equals the live set.

Usage Example:

	hub := websocket.NewHub(websocket.HubConfig{MaxPerCredential: 5})
	go hub.RunWithContext(ctx)

	client := websocket.NewClient(conn, key, websocket.ClientConfig{})
	if err := hub.Subscribe(client); err != nil {
	    websocket.CloseConn(conn, websocket.ClosePolicyViolation, err.Error(), time.Second)
	    return
	}
	defer hub.Unsubscribe(client)
	client.Run()

Shutdown:

When the RunWithContext context is cancelled every subscriber is closed with
code 1001 (going away) and the ledger is emptied.
*/
package websocket
