package hub

import (
	"sort"
	"sync"
)

// SubscriptionSet is the set of channel names one connection listens to.
// It lives on the connection; there is no central channel index.
type SubscriptionSet struct {
	mu       sync.RWMutex
	channels map[string]struct{}
}

func NewSubscriptionSet() *SubscriptionSet {
	return &SubscriptionSet{channels: make(map[string]struct{})}
}

// Replace sets the set to exactly channels. Duplicates collapse.
func (s *SubscriptionSet) Replace(channels []string) {
	next := make(map[string]struct{}, len(channels))
	for _, ch := range channels {
		next[ch] = struct{}{}
	}
	s.mu.Lock()
	s.channels = next
	s.mu.Unlock()
}

func (s *SubscriptionSet) Has(channel string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.channels[channel]
	return ok
}

func (s *SubscriptionSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.channels)
}

// List returns the channel names in sorted order.
func (s *SubscriptionSet) List() []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.channels))
	for ch := range s.channels {
		out = append(out, ch)
	}
	s.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Subscribe replaces conn's subscriptions with channels.
func Subscribe(conn Connection, channels []string) {
	conn.Subscriptions().Replace(channels)
}

func IsSubscribed(conn Connection, channel string) bool {
	return conn.Subscriptions().Has(channel)
}
