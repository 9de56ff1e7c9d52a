package hub

import (
	"context"
	"errors"
)

var (
	ErrHubNotRunning    = errors.New("hub is not running")
	ErrConnectionClosed = errors.New("connection is closed")
	ErrSendBufferFull   = errors.New("send buffer full")
)

// State is the liveness of a connection as seen by the broadcaster.
type State int32

const (
	StateOpen State = iota
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	default:
		return "closed"
	}
}

// Connection represents any type of subscriber transport (WebSocket, SSE, etc.)
type Connection interface {
	ID() string
	Type() string
	State() State
	Subscriptions() *SubscriptionSet
	// Send enqueues the envelope without blocking.
	Send(ctx context.Context, env *Envelope) error
	Close() error
	CloseWithCode(code int, reason string) error
	Context() context.Context
}

// Recorder receives hub counters. The metrics package provides the real one.
type Recorder interface {
	ConnectionOpened(connType string)
	ConnectionClosed(connType string)
	Broadcast(channel string, delivered int)
	EnvelopeDropped()
	InboundDecodeError()
}

type nopRecorder struct{}

func (nopRecorder) ConnectionOpened(string) {}
func (nopRecorder) ConnectionClosed(string) {}
func (nopRecorder) Broadcast(string, int)   {}
func (nopRecorder) EnvelopeDropped()        {}
func (nopRecorder) InboundDecodeError()     {}
