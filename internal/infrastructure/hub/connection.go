package hub

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gorilla/websocket"

	"garage-dashboard/internal/infrastructure/logger"
)

// InboundFunc is called from the read goroutine for every client frame.
type InboundFunc func(conn Connection, raw []byte)

// WebSocketConfig tunes the per-connection pumps.
type WebSocketConfig struct {
	SendBuffer int
	WriteWait  time.Duration
	PongWait   time.Duration
	PingPeriod time.Duration
}

func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		SendBuffer: 256,
		WriteWait:  10 * time.Second,
		PongWait:   60 * time.Second,
		PingPeriod: 54 * time.Second,
	}
}

// baseConnection carries the state shared by every transport.
type baseConnection struct {
	id   string
	subs *SubscriptionSet

	ctx    context.Context
	cancel context.CancelFunc

	state    atomic.Int32
	closedMu sync.RWMutex
	closed   bool
	send     chan *Envelope

	logger logger.Logger
}

func (c *baseConnection) init(parent context.Context, id string, buffer int, log logger.Logger) {
	c.ctx, c.cancel = context.WithCancel(parent)
	c.id = id
	c.subs = NewSubscriptionSet()
	c.send = make(chan *Envelope, buffer)
	c.logger = log.WithField("connection_id", id)
}

func (c *baseConnection) ID() string                      { return c.id }
func (c *baseConnection) State() State                    { return State(c.state.Load()) }
func (c *baseConnection) Subscriptions() *SubscriptionSet { return c.subs }
func (c *baseConnection) Context() context.Context        { return c.ctx }

// enqueue never blocks; a full queue is reported to the broadcaster.
func (c *baseConnection) enqueue(env *Envelope) error {
	c.closedMu.RLock()
	defer c.closedMu.RUnlock()

	if c.closed {
		return ErrConnectionClosed
	}
	select {
	case c.send <- env:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// markClosing reports false when the connection was already closing.
func (c *baseConnection) markClosing() bool {
	c.closedMu.Lock()
	defer c.closedMu.Unlock()

	if c.closed {
		return false
	}
	c.closed = true
	c.state.Store(int32(StateClosing))
	close(c.send)
	c.cancel()
	return true
}

// WebSocketConnection implements the Connection interface for WebSocket connections
type WebSocketConnection struct {
	baseConnection

	conn    *websocket.Conn
	cfg     WebSocketConfig
	inbound InboundFunc

	// gone is closed once the close frame is written and the socket released.
	gone chan struct{}
}

// NewWebSocketConnection wraps an upgraded socket and starts its read and
// write pumps. Frames from the client are handed to inbound in arrival order.
func NewWebSocketConnection(
	id string,
	conn *websocket.Conn,
	cfg WebSocketConfig,
	inbound InboundFunc,
	log logger.Logger,
) *WebSocketConnection {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = DefaultWebSocketConfig().SendBuffer
	}

	wsConn := &WebSocketConnection{
		conn:    conn,
		cfg:     cfg,
		inbound: inbound,
		gone:    make(chan struct{}),
	}
	wsConn.init(context.Background(), id, cfg.SendBuffer, log)

	wsConn.setupWebSocket()

	go wsConn.writePump()
	go wsConn.readPump()

	return wsConn
}

// Type returns the connection type
func (c *WebSocketConnection) Type() string {
	return "websocket"
}

func (c *WebSocketConnection) Send(_ context.Context, env *Envelope) error {
	return c.enqueue(env)
}

// Close performs a normal closure.
func (c *WebSocketConnection) Close() error {
	return c.CloseWithCode(websocket.CloseNormalClosure, "")
}

// CloseWithCode stops the connection from taking envelopes and releases the
// socket in the background. The close frame waits behind any in-flight write
// for up to WriteWait, so callers never block on a stalled peer. Closed
// reports when the socket is released.
func (c *WebSocketConnection) CloseWithCode(code int, reason string) error {
	if !c.markClosing() {
		return nil
	}
	go c.release(code, reason)
	return nil
}

// Closed is closed once the socket has been released.
func (c *WebSocketConnection) Closed() <-chan struct{} {
	return c.gone
}

func (c *WebSocketConnection) release(code int, reason string) {
	defer close(c.gone)
	defer c.state.Store(int32(StateClosed))

	deadline := time.Now().Add(c.cfg.WriteWait)
	if err := c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline); err != nil {
		c.logger.Debugf("Close frame not sent: %v", err)
	}
	if err := c.conn.Close(); err != nil {
		c.logger.Debugf("Close websocket %s: %v", c.id, err)
	}
	c.logger.Infof("WebSocket connection closed (code %d)", code)
}

// setupWebSocket configures read deadlines for the ping/pong keepalive
func (c *WebSocketConnection) setupWebSocket() {
	if c.cfg.PongWait <= 0 {
		return
	}
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})
}

// writePump is the only goroutine writing data frames
func (c *WebSocketConnection) writePump() {
	var tick <-chan time.Time
	if c.cfg.PingPeriod > 0 {
		ticker := time.NewTicker(c.cfg.PingPeriod)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case env, ok := <-c.send:
			if !ok {
				return
			}
			payload, err := env.Bytes()
			if err != nil {
				c.logger.Errorf("Skipping envelope for %s: %v", env.Channel, err)
				continue
			}
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Errorf("Failed to write envelope: %v", err)
				c.CloseWithCode(websocket.CloseInternalServerErr, "write failed")
				return
			}

		case <-tick:
			deadline := time.Now().Add(c.cfg.WriteWait)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				c.logger.Errorf("Failed to send ping: %v", err)
				c.CloseWithCode(websocket.CloseInternalServerErr, "ping failed")
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// readPump feeds client frames to the inbound handler until the socket fails.
// A normal closure from the peer is answered in kind. A read timeout or any
// other failure closes with 1001 so the client reconnects.
func (c *WebSocketConnection) readPump() {
	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
			) {
				c.logger.Errorf("WebSocket error: %v", err)
			}
			c.CloseWithCode(readCloseCode(err), "")
			return
		}
		if c.cfg.PongWait > 0 {
			c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
		}

		switch messageType {
		case websocket.TextMessage, websocket.BinaryMessage:
			if c.inbound != nil {
				c.inbound(c, data)
			}
		}
	}
}

func readCloseCode(err error) int {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) && closeErr.Code == websocket.CloseNormalClosure {
		return websocket.CloseNormalClosure
	}
	return websocket.CloseGoingAway
}

const sseKeepAlive = 30 * time.Second

// SSEConnection is a read-only subscriber streamed over Server-Sent Events.
// Its subscriptions are fixed at connect time.
type SSEConnection struct {
	baseConnection

	writer http.ResponseWriter
}

// NewSSEConnection creates a new SSE connection bound to the request context
func NewSSEConnection(
	ctx context.Context,
	id string,
	w http.ResponseWriter,
	buffer int,
	log logger.Logger,
) *SSEConnection {
	if buffer <= 0 {
		buffer = DefaultWebSocketConfig().SendBuffer
	}
	conn := &SSEConnection{writer: w}
	conn.init(ctx, id, buffer, log)
	conn.setupSSEHeaders()
	return conn
}

// Type returns the connection type
func (c *SSEConnection) Type() string {
	return "sse"
}

func (c *SSEConnection) Send(_ context.Context, env *Envelope) error {
	return c.enqueue(env)
}

// Close gracefully closes the connection
func (c *SSEConnection) Close() error {
	return c.CloseWithCode(0, "")
}

// CloseWithCode ends the stream. SSE has no close codes.
func (c *SSEConnection) CloseWithCode(_ int, _ string) error {
	if c.markClosing() {
		c.state.Store(int32(StateClosed))
		c.logger.Info("SSE connection closed")
	}
	return nil
}

// WriteEvent writes a named event immediately. Only the goroutine running
// Stream may call it once streaming has started.
func (c *SSEConnection) WriteEvent(event string, data any) error {
	if err := sse.Encode(c.writer, sse.Event{Event: event, Data: data}); err != nil {
		return err
	}
	c.flush()
	return nil
}

// Stream writes queued envelopes until the connection closes. It blocks and
// is run by the HTTP handler goroutine.
func (c *SSEConnection) Stream() {
	ticker := time.NewTicker(sseKeepAlive)
	defer ticker.Stop()
	defer c.Close()

	for {
		select {
		case env, ok := <-c.send:
			if !ok {
				return
			}
			payload, err := env.Bytes()
			if err != nil {
				c.logger.Errorf("Skipping envelope for %s: %v", env.Channel, err)
				continue
			}
			if err := c.WriteEvent(env.Channel, string(payload)); err != nil {
				c.logger.Errorf("Failed to write event: %v", err)
				return
			}

		case <-ticker.C:
			if _, err := c.writer.Write([]byte(": keepalive\n\n")); err != nil {
				c.logger.Errorf("Failed to send keep-alive: %v", err)
				return
			}
			c.flush()

		case <-c.ctx.Done():
			return
		}
	}
}

func (c *SSEConnection) flush() {
	if flusher, ok := c.writer.(http.Flusher); ok {
		flusher.Flush()
	}
}

// setupSSEHeaders sets up the proper headers for SSE connection
func (c *SSEConnection) setupSSEHeaders() {
	c.writer.Header().Set("Content-Type", "text/event-stream")
	c.writer.Header().Set("Cache-Control", "no-cache")
	c.writer.Header().Set("Connection", "keep-alive")
	c.writer.Header().Set("X-Accel-Buffering", "no") // For nginx
}
