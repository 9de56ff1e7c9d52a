// Package subscription is the consumer side of the hub: a WebSocket client
// that subscribes to channels and reconnects after abnormal closes.
package subscription

import (
	"context"

	"garage-dashboard/internal/infrastructure/hub"
)

// Client follows a single channel over its own socket.
type Client struct {
	*transport

	channel string
}

// Subscribe dials url right away and calls onMessage for every envelope on
// channel. Envelopes for other channels are dropped. The client stops when
// ctx is cancelled, Close is called, the server closes normally, or the
// reconnect attempts run out.
func Subscribe(ctx context.Context, url, channel string, onMessage func(*hub.Envelope), opts ...Option) *Client {
	c := &Client{
		transport: newTransport(ctx, url, opts),
		channel:   channel,
	}
	c.channels = func() []string { return []string{channel} }
	c.dispatch = func(env *hub.Envelope) {
		if env.Channel == channel && onMessage != nil {
			onMessage(env)
		}
	}

	go c.run()
	return c
}

func (c *Client) Channel() string { return c.channel }
