package subscription

import (
	"context"
	"sort"
	"sync"

	"garage-dashboard/internal/infrastructure/hub"
)

// Mux shares one socket between any number of channel handlers. The server
// replaces a connection's subscriptions on every subscribe message, so the
// mux always sends its full channel list.
type Mux struct {
	*transport

	mu       sync.RWMutex
	nextID   uint64
	handlers map[string]map[uint64]func(*hub.Envelope)
}

func NewMux(ctx context.Context, url string, opts ...Option) *Mux {
	m := &Mux{
		transport: newTransport(ctx, url, opts),
		handlers:  make(map[string]map[uint64]func(*hub.Envelope)),
	}
	m.channels = m.Channels
	m.dispatch = m.route

	go m.run()
	return m
}

// Subscribe adds fn as a handler for channel and returns a func that removes
// it. Adding the first handler or removing the last one for a channel
// resends the channel list.
func (m *Mux) Subscribe(channel string, fn func(*hub.Envelope)) (cancel func()) {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	set, ok := m.handlers[channel]
	if !ok {
		set = make(map[uint64]func(*hub.Envelope))
		m.handlers[channel] = set
	}
	set[id] = fn
	m.mu.Unlock()

	if !ok {
		m.resubscribe()
	}

	var once sync.Once
	return func() {
		once.Do(func() { m.remove(channel, id) })
	}
}

func (m *Mux) remove(channel string, id uint64) {
	m.mu.Lock()
	set := m.handlers[channel]
	delete(set, id)
	emptied := set != nil && len(set) == 0
	if emptied {
		delete(m.handlers, channel)
	}
	m.mu.Unlock()

	if emptied {
		m.resubscribe()
	}
}

// Channels returns the channels with at least one handler, sorted.
func (m *Mux) Channels() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.handlers))
	for ch := range m.handlers {
		out = append(out, ch)
	}
	sort.Strings(out)
	return out
}

func (m *Mux) route(env *hub.Envelope) {
	m.mu.RLock()
	fns := make([]func(*hub.Envelope), 0, len(m.handlers[env.Channel]))
	for _, fn := range m.handlers[env.Channel] {
		fns = append(fns, fn)
	}
	m.mu.RUnlock()

	for _, fn := range fns {
		fn(env)
	}
}
