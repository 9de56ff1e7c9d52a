package hub

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"garage-dashboard/internal/infrastructure/logger"
)

const defaultSweepInterval = 30 * time.Second

// Hub owns the set of live subscriber connections and fans broadcasts out to
// them. Construct one in main and pass it to handlers and the facade.
type Hub struct {
	connections   map[string]Connection
	connectionsMu sync.RWMutex

	// serializes fan-outs so per-connection order equals broadcast order
	broadcastMu sync.Mutex

	running   bool
	runningMu sync.RWMutex
	startedAt time.Time

	logger   logger.Logger
	recorder Recorder
	now      func() time.Time
	sweep    time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

type Option func(*Hub)

// WithClock overrides the clock used to stamp envelopes.
func WithClock(now func() time.Time) Option {
	return func(h *Hub) { h.now = now }
}

func WithRecorder(r Recorder) Option {
	return func(h *Hub) {
		if r != nil {
			h.recorder = r
		}
	}
}

// WithSweepInterval sets how often closed connections are purged.
func WithSweepInterval(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.sweep = d
		}
	}
}

// New creates a new Hub instance
func New(log logger.Logger, opts ...Option) *Hub {
	h := &Hub{
		connections: make(map[string]Connection),
		logger:      log.WithField("component", "hub"),
		recorder:    nopRecorder{},
		now:         time.Now,
		sweep:       defaultSweepInterval,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Start starts the hub and begins the sweep loop
func (h *Hub) Start(ctx context.Context) error {
	h.runningMu.Lock()
	defer h.runningMu.Unlock()

	if h.running {
		return fmt.Errorf("hub is already running")
	}

	h.ctx, h.cancel = context.WithCancel(ctx)
	h.done = make(chan struct{})
	h.running = true
	h.startedAt = h.now()

	go h.run(h.ctx, h.done)

	h.logger.Info("Hub started successfully")
	return nil
}

// Stop closes every connection with 1001 so clients reconnect to the next
// process. It waits for the close frames to go out until ctx ends.
func (h *Hub) Stop(ctx context.Context) error {
	h.runningMu.Lock()
	if !h.running {
		h.runningMu.Unlock()
		return nil
	}
	h.cancel()
	h.running = false
	done := h.done
	h.runningMu.Unlock()

	h.connectionsMu.Lock()
	conns := h.connections
	h.connections = make(map[string]Connection)
	h.connectionsMu.Unlock()

	for _, conn := range conns {
		if err := conn.CloseWithCode(websocket.CloseGoingAway, "server shutting down"); err != nil {
			h.logger.Errorf("Failed to close connection %s: %v", conn.ID(), err)
		}
		h.recorder.ConnectionClosed(conn.Type())
	}

	for _, conn := range conns {
		closed, ok := conn.(interface{ Closed() <-chan struct{} })
		if !ok {
			continue
		}
		select {
		case <-closed.Closed():
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	h.logger.Infof("Hub stopped successfully, closed %d connections", len(conns))
	return nil
}

// IsRunning returns true if the hub is currently running
func (h *Hub) IsRunning() bool {
	h.runningMu.RLock()
	defer h.runningMu.RUnlock()
	return h.running
}

// Uptime is zero while the hub is stopped.
func (h *Hub) Uptime() time.Duration {
	h.runningMu.RLock()
	defer h.runningMu.RUnlock()
	if !h.running {
		return 0
	}
	return h.now().Sub(h.startedAt)
}

// RegisterConnection adds conn with whatever subscriptions it already holds
// (empty for a fresh connection). The connection is dropped from the hub when
// its context ends.
func (h *Hub) RegisterConnection(conn Connection) error {
	// runningMu is held across the insert so Stop cannot swap the map out
	// between the check and the insert.
	h.runningMu.RLock()
	if !h.running {
		h.runningMu.RUnlock()
		return ErrHubNotRunning
	}
	hubCtx := h.ctx
	h.connectionsMu.Lock()
	h.connections[conn.ID()] = conn
	h.connectionsMu.Unlock()
	h.runningMu.RUnlock()
	h.recorder.ConnectionOpened(conn.Type())

	h.logger.Infof("Connection %s registered (type: %s)", conn.ID(), conn.Type())

	go func() {
		select {
		case <-conn.Context().Done():
			h.UnregisterConnection(conn.ID())
		case <-hubCtx.Done():
		}
	}()
	return nil
}

// UnregisterConnection removes and closes the connection. Unknown IDs are a
// no-op.
func (h *Hub) UnregisterConnection(connID string) {
	h.connectionsMu.Lock()
	conn, exists := h.connections[connID]
	if exists {
		delete(h.connections, connID)
	}
	h.connectionsMu.Unlock()

	if !exists {
		return
	}
	if err := conn.Close(); err != nil {
		h.logger.Warnf("Closing connection %s: %v", connID, err)
	}
	h.recorder.ConnectionClosed(conn.Type())
	h.logger.Infof("Connection %s unregistered", connID)
}

// GetConnection returns a connection by ID
func (h *Hub) GetConnection(connID string) (Connection, bool) {
	h.connectionsMu.RLock()
	defer h.connectionsMu.RUnlock()

	conn, exists := h.connections[connID]
	return conn, exists
}

// GetConnections returns a snapshot of all registered connections
func (h *Hub) GetConnections() []Connection {
	h.connectionsMu.RLock()
	defer h.connectionsMu.RUnlock()

	connections := make([]Connection, 0, len(h.connections))
	for _, conn := range h.connections {
		connections = append(connections, conn)
	}
	return connections
}

// GetConnectionsByType returns connections of a specific type sorted by ID
func (h *Hub) GetConnectionsByType(connType string) []Connection {
	h.connectionsMu.RLock()
	var connections []Connection
	for _, conn := range h.connections {
		if conn.Type() == connType {
			connections = append(connections, conn)
		}
	}
	h.connectionsMu.RUnlock()

	sort.Slice(connections, func(i, j int) bool { return connections[i].ID() < connections[j].ID() })
	return connections
}

// ConnectionCount returns the number of registered connections
func (h *Hub) ConnectionCount() int {
	h.connectionsMu.RLock()
	defer h.connectionsMu.RUnlock()
	return len(h.connections)
}

// ChannelCounts reports how many open connections follow each channel.
func (h *Hub) ChannelCounts() map[string]int {
	counts := make(map[string]int)
	for _, conn := range h.GetConnections() {
		if conn.State() != StateOpen {
			continue
		}
		for _, ch := range conn.Subscriptions().List() {
			counts[ch]++
		}
	}
	return counts
}

// run sweeps connections that closed without their watcher firing
func (h *Hub) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(h.sweep)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.cleanupClosedConnections()

		case <-ctx.Done():
			h.logger.Info("Hub run loop stopped")
			return
		}
	}
}

// cleanupClosedConnections removes connections that have been closed
func (h *Hub) cleanupClosedConnections() {
	h.connectionsMu.Lock()
	var closed []Connection
	for id, conn := range h.connections {
		if conn.State() == StateClosed {
			closed = append(closed, conn)
			delete(h.connections, id)
		}
	}
	h.connectionsMu.Unlock()

	for _, conn := range closed {
		h.recorder.ConnectionClosed(conn.Type())
		h.logger.Infof("Cleaned up closed connection %s", conn.ID())
	}
}
