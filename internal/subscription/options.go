package subscription

import (
	"time"

	"github.com/gorilla/websocket"

	"garage-dashboard/internal/infrastructure/logger"
)

const (
	DefaultReconnectInterval = 3 * time.Second
	DefaultReconnectAttempts = 5
	// DefaultReadTimeout must exceed the server's ping period.
	DefaultReadTimeout = 60 * time.Second

	writeWait = 10 * time.Second
)

// CloseEvent is passed to the close hook when a subscription ends for good.
type CloseEvent struct {
	Code   int
	Reason string
	// Exhausted is set when the client gave up reconnecting.
	Exhausted bool
}

type options struct {
	reconnectInterval time.Duration
	reconnectAttempts int
	readTimeout       time.Duration
	onOpen            func()
	onClose           func(CloseEvent)
	onError           func(error)
	dialer            *websocket.Dialer
	logger            logger.Logger
}

type Option func(*options)

func defaultOptions() options {
	dialer := *websocket.DefaultDialer
	return options{
		reconnectInterval: DefaultReconnectInterval,
		reconnectAttempts: DefaultReconnectAttempts,
		readTimeout:       DefaultReadTimeout,
		dialer:            &dialer,
		logger:            logger.NewNop(),
	}
}

// WithReconnectInterval sets the fixed delay before each reconnect attempt.
func WithReconnectInterval(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.reconnectInterval = d
		}
	}
}

// WithReconnectAttempts caps consecutive reconnect attempts. The count
// restarts whenever a connection opens.
func WithReconnectAttempts(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.reconnectAttempts = n
		}
	}
}

// WithReadTimeout sets how long the client waits for any frame, pings
// included, before treating the connection as dead.
func WithReadTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.readTimeout = d
		}
	}
}

func WithOnOpen(fn func()) Option {
	return func(o *options) { o.onOpen = fn }
}

// WithOnClose registers a hook called once, when the client stops for good.
func WithOnClose(fn func(CloseEvent)) Option {
	return func(o *options) { o.onClose = fn }
}

// WithOnError registers a hook for dial and read failures. Reconnects are
// decided by close handling, not here.
func WithOnError(fn func(error)) Option {
	return func(o *options) { o.onError = fn }
}

func WithDialer(d *websocket.Dialer) Option {
	return func(o *options) {
		if d != nil {
			o.dialer = d
		}
	}
}

func WithLogger(log logger.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.logger = log
		}
	}
}
