// SensorFlow - Real-time Sensor Ingestion and Live Streaming
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorflow

package websocket

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/sensorflow/internal/logging"
	"github.com/tomtom215/sensorflow/internal/metrics"
)

// Client defaults.
const (
	DefaultSendBuffer = 64
	DefaultWriteWait  = 10 * time.Second
	DefaultPongWait   = 60 * time.Second

	maxMessageSize = 4 * 1024
)

// clientIDCounter hands out monotonically increasing client ids.
var clientIDCounter atomic.Uint64

// ClientConfig parameterizes a Client. Zero values take the defaults.
type ClientConfig struct {
	SendBuffer int
	WriteWait  time.Duration
	PongWait   time.Duration
}

// Client is one subscriber connection. The hub enqueues onto send and a
// single writePump drains it; readPump discards inbound frames and keeps
// the read deadline alive through pongs.
type Client struct {
	id         uint64
	credential string
	conn       *websocket.Conn
	send       chan []byte

	writeWait  time.Duration
	pongWait   time.Duration
	pingPeriod time.Duration

	closeOnce sync.Once
	done      chan struct{}
	closeCode int
	closeText string
}

// NewClient wraps an upgraded connection authenticated with credential.
func NewClient(conn *websocket.Conn, credential string, cfg ClientConfig) *Client {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = DefaultSendBuffer
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = DefaultWriteWait
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = DefaultPongWait
	}
	return &Client{
		id:         clientIDCounter.Add(1),
		credential: credential,
		conn:       conn,
		send:       make(chan []byte, cfg.SendBuffer),
		writeWait:  cfg.WriteWait,
		pongWait:   cfg.PongWait,
		pingPeriod: (cfg.PongWait * 9) / 10,
		done:       make(chan struct{}),
	}
}

// ID returns the client's unique identifier.
func (c *Client) ID() uint64 {
	return c.id
}

// Credential returns the key the client subscribed with.
func (c *Client) Credential() string {
	return c.credential
}

// Send enqueues msg. It fails once the client is closed or its buffer is full.
func (c *Client) Send(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		metrics.WSErrors.WithLabelValues("buffer_full").Inc()
		return false
	}
}

// Close asks the write pump to send a close frame and drop the connection.
func (c *Client) Close(code int, reason string) {
	c.closeOnce.Do(func() {
		c.closeCode = code
		c.closeText = reason
		close(c.done)
	})
}

// Run serves the connection until the peer goes away or Close is called.
// It blocks; the connection is closed when it returns.
func (c *Client) Run() {
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writePump()
	}()

	c.readPump()
	c.Close(websocket.CloseNormalClosure, "")
	<-writerDone
}

func (c *Client) readPump() {
	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(c.pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	})

	for {
		// Subscribers never send anything meaningful; frames are discarded.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logging.Debug().Err(err).Uint64("client_id", c.id).Msg("unexpected websocket close error")
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			// closeCode and closeText are written before done is closed.
			CloseConn(c.conn, c.closeCode, c.closeText, c.writeWait)
			return

		case msg := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				c.Close(CloseInternalError, "")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				metrics.WSErrors.WithLabelValues("write").Inc()
				logging.Debug().Err(err).Uint64("client_id", c.id).Msg("failed to write websocket message")
				c.Close(CloseInternalError, "")
				return
			}

		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeWait)); err != nil {
				c.Close(CloseInternalError, "")
				return
			}
		}
	}
}

// CloseConn writes a close frame with code and reason and closes conn. It
// is used both by the write pump and for connections rejected before they
// become subscribers.
func CloseConn(conn *websocket.Conn, code int, reason string, wait time.Duration) {
	if wait <= 0 {
		wait = DefaultWriteWait
	}
	msg := websocket.FormatCloseMessage(code, reason)
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wait)); err != nil && err != websocket.ErrCloseSent {
		logging.Debug().Err(err).Int("code", code).Msg("failed to write close frame")
	}
	_ = conn.Close()
}
