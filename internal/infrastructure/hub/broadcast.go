package hub

import (
	"context"
	"errors"

	"github.com/gorilla/websocket"
)

// Broadcast delivers data on channel to every open connection subscribed to
// it. Delivery is best effort: a failed send is logged and skipped.
func (h *Hub) Broadcast(ctx context.Context, channel string, data any) {
	env, err := NewEnvelope(channel, data, h.now())
	if err != nil {
		h.logger.Errorf("Dropping broadcast on %s: %v", channel, err)
		return
	}

	h.broadcastMu.Lock()
	defer h.broadcastMu.Unlock()

	delivered := 0
	for _, conn := range h.GetConnections() {
		if conn.State() != StateOpen {
			continue
		}
		if !IsSubscribed(conn, channel) {
			continue
		}

		if err := conn.Send(ctx, env); err != nil {
			h.recorder.EnvelopeDropped()
			h.logger.Warnf("Failed to send %s to connection %s: %v", channel, conn.ID(), err)
			if errors.Is(err, ErrSendBufferFull) {
				h.dropSlowConsumer(conn)
			}
			continue
		}
		delivered++
	}

	h.recorder.Broadcast(channel, delivered)
	h.logger.Debugf("Broadcasted %s to %d connections", channel, delivered)
}

// dropSlowConsumer closes a connection whose queue is full. Its client
// reconnects and re-fetches. The connection stops taking envelopes at once;
// the socket itself is released off the broadcast path.
func (h *Hub) dropSlowConsumer(conn Connection) {
	h.logger.Warnf("Closing slow connection %s", conn.ID())
	if err := conn.CloseWithCode(websocket.CloseTryAgainLater, "slow consumer"); err != nil {
		h.logger.Warnf("Closing slow connection %s: %v", conn.ID(), err)
	}
}
