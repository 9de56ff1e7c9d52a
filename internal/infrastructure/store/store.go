// Package store provides the outbound.Store backends: an in-memory store and
// a database/sql store shared by SQLite and PostgreSQL.
package store

import (
	"context"
	"fmt"

	"garage-dashboard/internal/infrastructure/logger"
	"garage-dashboard/internal/port/outbound"
)

// Open returns the backend named by driver (memory, sqlite or postgres).
func Open(ctx context.Context, driver, dsn string, log logger.Logger) (outbound.Store, error) {
	log = log.WithField("component", "store")

	switch driver {
	case "", "memory":
		log.Info("Using in-memory store")
		return NewMemoryStore(), nil
	case dialectSQLite:
		log.Infof("Using sqlite store at %s", dsn)
		return OpenSQLite(ctx, dsn, log)
	case dialectPostgres:
		log.Info("Using postgres store")
		return OpenPostgres(ctx, dsn, log)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
