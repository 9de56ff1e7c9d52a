// Package facade implements the dashboard use cases. Every mutation of a
// tracked entity publishes exactly one event once the store call succeeds.
package facade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"garage-dashboard/internal/domain/event"
	"garage-dashboard/internal/infrastructure/logger"
	"garage-dashboard/internal/port/outbound"
)

var (
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidReference is returned when an input points at a garage,
	// driver, service or product that does not exist.
	ErrInvalidReference = errors.New("invalid reference")
)

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

func publish(ctx context.Context, p outbound.EventPublisher, ev event.Event) {
	p.Broadcast(ctx, ev.Channel(), ev)
}

func analyticsPrefix(garageID int64) string {
	return fmt.Sprintf("analytics:%d:", garageID)
}

// invalidateAnalytics drops cached analytics for a garage. Failures are
// logged; stale entries still expire by TTL.
func invalidateAnalytics(ctx context.Context, c outbound.Cache, log logger.Logger, garageID int64) {
	if err := c.DeletePrefix(ctx, analyticsPrefix(garageID)); err != nil {
		log.Warnf("Failed to invalidate analytics for garage %d: %v", garageID, err)
	}
}

// dayBounds returns the local day containing t as [start, end).
func dayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

func reference(err error, what string, id int64) error {
	if errors.Is(err, outbound.ErrNotFound) {
		return fmt.Errorf("%w: %s %d", ErrInvalidReference, what, id)
	}
	return err
}
