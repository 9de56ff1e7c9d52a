package outbound

import "context"

// EventPublisher pushes data to every subscriber of channel. Best effort.
type EventPublisher interface {
	Broadcast(ctx context.Context, channel string, data any)
}
