package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/bobmcallan/wordpress-mcp/internal/app"
	"github.com/bobmcallan/wordpress-mcp/internal/common"
)

// Server manages the HTTP server and routes.
type Server struct {
	app    *app.App
	router *http.ServeMux
	server *http.Server
	logger *common.Logger

	// baseCtx parents every request context. Cancelling it ends open
	// SSE streams, which Shutdown would otherwise wait on forever.
	baseCtx    context.Context
	cancelBase context.CancelFunc
}

// New creates a new HTTP server with the given app.
func New(application *app.App) *Server {
	baseCtx, cancel := context.WithCancel(context.Background())
	s := &Server{
		app:        application,
		logger:     application.Logger,
		baseCtx:    baseCtx,
		cancelBase: cancel,
	}

	s.router = s.setupRoutes()

	addr := net.JoinHostPort(application.Config.Server.Host, fmt.Sprint(application.Config.Server.Port))
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.withMiddleware(s.router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// No WriteTimeout: /sse responses stay open for the life of the client.
		IdleTimeout: 120 * time.Second,
		BaseContext: func(net.Listener) context.Context { return s.baseCtx },
	}

	return s
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.server.Addr, err)
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown. A clean shutdown returns nil.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info().
		Str("address", ln.Addr().String()).
		Str("base_url", s.app.Config.BaseURL()).
		Msg("HTTP server starting")

	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown ends open streams and gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")

	s.cancelBase()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info().Msg("HTTP server stopped")
	return nil
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
