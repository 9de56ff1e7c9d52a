package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"garage-dashboard/internal/infrastructure/hub"
	"garage-dashboard/internal/infrastructure/logger"
)

type State int32

const (
	StateConnecting State = iota
	StateOpen
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Message is the last raw frame seen by a subscriber.
type Message struct {
	Data       []byte
	ReceivedAt time.Time
}

// transport owns one reconnecting socket. Client and Mux differ only in
// which channels they ask for and how envelopes are routed.
type transport struct {
	url  string
	opts options
	log  logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	state    atomic.Int32
	last     atomic.Pointer[Message]
	stopping atomic.Bool

	connMu sync.Mutex
	conn   *websocket.Conn

	writeMu sync.Mutex

	// subMu orders the open-time subscribe against later resubscribes.
	subMu sync.Mutex

	channels func() []string
	dispatch func(*hub.Envelope)

	closeOnce sync.Once
}

func newTransport(ctx context.Context, url string, opts []Option) *transport {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	t := &transport{
		url:  url,
		opts: o,
		log:  o.logger.WithField("component", "subscription"),
		done: make(chan struct{}),
	}
	t.ctx, t.cancel = context.WithCancel(ctx)
	t.state.Store(int32(StateConnecting))
	return t
}

func (t *transport) State() State { return State(t.state.Load()) }

// LastMessage returns the most recent frame, or nil before the first one.
func (t *transport) LastMessage() *Message { return t.last.Load() }

// Done is closed once the subscriber has stopped for good.
func (t *transport) Done() <-chan struct{} { return t.done }

// Close ends the subscription with a normal closure. It does not wait;
// use Done for that.
func (t *transport) Close() error {
	t.closeOnce.Do(func() {
		t.stopping.Store(true)
		if t.State() != StateClosed {
			t.state.Store(int32(StateClosing))
		}
		t.cancel()
	})
	return nil
}

// Send writes msg as JSON. It reports false when the socket is not open or
// the write fails.
func (t *transport) Send(msg any) bool {
	if t.State() != StateOpen {
		return false
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		t.log.Errorf("Failed to encode outbound message: %v", err)
		return false
	}

	t.connMu.Lock()
	conn := t.conn
	t.connMu.Unlock()
	if conn == nil {
		return false
	}

	if err := t.write(conn, payload); err != nil {
		t.log.Warnf("Failed to send message: %v", err)
		return false
	}
	return true
}

func (t *transport) write(conn *websocket.Conn, payload []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// resubscribe sends the current channel list if the socket is open. A
// socket still connecting picks the list up when it opens.
func (t *transport) resubscribe() {
	t.subMu.Lock()
	defer t.subMu.Unlock()
	if t.State() != StateOpen {
		return
	}
	t.Send(hub.SubscribeMessage(t.channels()...))
}

func (t *transport) run() {
	defer close(t.done)
	defer t.cancel()

	attempts := 0
	for {
		t.state.Store(int32(StateConnecting))
		opened, code, reason := t.session()
		if opened {
			attempts = 0
		}
		t.state.Store(int32(StateClosed))

		if t.stopping.Load() || t.ctx.Err() != nil {
			t.finish(CloseEvent{Code: websocket.CloseNormalClosure})
			return
		}
		if code == websocket.CloseNormalClosure {
			t.finish(CloseEvent{Code: code, Reason: reason})
			return
		}
		if attempts >= t.opts.reconnectAttempts {
			t.log.Warnf("Giving up on %s after %d reconnect attempts", t.url, attempts)
			t.finish(CloseEvent{Code: code, Reason: reason, Exhausted: true})
			return
		}

		attempts++
		t.log.Infof("Connection to %s closed (code %d), reconnecting in %v (%d/%d)",
			t.url, code, t.opts.reconnectInterval, attempts, t.opts.reconnectAttempts)

		timer := time.NewTimer(t.opts.reconnectInterval)
		select {
		case <-timer.C:
		case <-t.ctx.Done():
			timer.Stop()
			t.finish(CloseEvent{Code: websocket.CloseNormalClosure})
			return
		}
	}
}

func (t *transport) finish(ev CloseEvent) {
	t.state.Store(int32(StateClosed))
	if t.opts.onClose != nil {
		t.opts.onClose(ev)
	}
}

func (t *transport) fail(err error) {
	if t.opts.onError != nil {
		t.opts.onError(err)
	}
}

// session dials once and serves the socket until it closes. It reports
// whether the socket opened and the close code it ended with.
func (t *transport) session() (bool, int, string) {
	conn, _, err := t.opts.dialer.DialContext(t.ctx, t.url, nil)
	if err != nil {
		if t.ctx.Err() != nil {
			return false, websocket.CloseNormalClosure, ""
		}
		t.log.Warnf("Dial %s failed: %v", t.url, err)
		t.fail(err)
		return false, websocket.CloseAbnormalClosure, err.Error()
	}
	defer conn.Close()

	t.connMu.Lock()
	t.conn = conn
	t.connMu.Unlock()
	defer func() {
		t.connMu.Lock()
		t.conn = nil
		t.connMu.Unlock()
	}()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-t.ctx.Done():
			deadline := time.Now().Add(writeWait)
			conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			conn.Close()
		case <-stop:
		}
	}()

	readTimeout := t.opts.readTimeout
	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPingHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(writeWait))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	})

	if !t.open(conn) {
		return false, websocket.CloseAbnormalClosure, "subscribe not sent"
	}

	code, reason := t.readLoop(conn)
	return true, code, reason
}

func (t *transport) open(conn *websocket.Conn) bool {
	t.subMu.Lock()
	payload, err := json.Marshal(hub.SubscribeMessage(t.channels()...))
	if err == nil {
		err = t.write(conn, payload)
	}
	if err != nil {
		t.subMu.Unlock()
		t.log.Warnf("Failed to subscribe on %s: %v", t.url, err)
		t.fail(err)
		return false
	}
	if t.stopping.Load() {
		t.subMu.Unlock()
		return false
	}
	t.state.Store(int32(StateOpen))
	t.subMu.Unlock()

	t.log.Infof("Connected to %s", t.url)
	if t.opts.onOpen != nil {
		t.opts.onOpen()
	}
	return true
}

func (t *transport) readLoop(conn *websocket.Conn) (int, string) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				return closeErr.Code, closeErr.Text
			}
			if t.ctx.Err() != nil {
				return websocket.CloseNormalClosure, ""
			}
			t.log.Warnf("Read from %s failed: %v", t.url, err)
			t.fail(err)
			return websocket.CloseAbnormalClosure, err.Error()
		}
		conn.SetReadDeadline(time.Now().Add(t.opts.readTimeout))
		t.handle(raw)
	}
}

func (t *transport) handle(raw []byte) {
	t.last.Store(&Message{Data: raw, ReceivedAt: time.Now()})

	env, err := hub.DecodeEnvelope(raw)
	if err != nil {
		t.log.Warnf("Discarding undecodable frame: %v", err)
		return
	}
	t.dispatch(env)
}
