package server

import "context"

// Server is a component the application starts and gracefully stops.
type Server interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
