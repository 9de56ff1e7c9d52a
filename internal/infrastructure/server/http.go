package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"garage-dashboard/internal/infrastructure/logger"
)

type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type HTTPServer struct {
	handler http.Handler
	opts    Options
	logger  logger.Logger

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
}

var _ Server = (*HTTPServer)(nil)

func NewHTTPServer(handler http.Handler, opts Options, log logger.Logger) *HTTPServer {
	return &HTTPServer{
		handler: handler,
		opts:    opts,
		logger:  log.WithField("component", "http"),
	}
}

// Start listens and serves until Stop is called. Request contexts derive
// from ctx.
func (h *HTTPServer) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", h.opts.Addr)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.listener = ln
	h.srv = &http.Server{
		Handler:      h.handler,
		ReadTimeout:  h.opts.ReadTimeout,
		WriteTimeout: h.opts.WriteTimeout,
		IdleTimeout:  h.opts.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}
	srv := h.srv
	h.mu.Unlock()

	h.logger.Infof("HTTP server listening on %s", ln.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the bound address once Start has begun listening.
func (h *HTTPServer) Addr() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listener == nil {
		return ""
	}
	return h.listener.Addr().String()
}

func (h *HTTPServer) Stop(ctx context.Context) error {
	h.mu.Lock()
	srv := h.srv
	h.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
