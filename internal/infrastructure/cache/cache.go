// Package cache holds the analytics read-through caches.
package cache

import (
	"context"
	"fmt"
	"time"

	"garage-dashboard/internal/port/outbound"
)

// Open returns the cache named by driver: memory, redis or none.
func Open(ctx context.Context, driver, redisURL string) (outbound.Cache, error) {
	switch driver {
	case "", "memory":
		return NewMemory(time.Now), nil
	case "redis":
		return NewRedis(ctx, redisURL)
	case "none":
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", driver)
	}
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, error)              { return nil, outbound.ErrCacheMiss }
func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Nop) DeletePrefix(context.Context, string) error               { return nil }
func (Nop) Close() error                                             { return nil }
