package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"

	"github.com/rs/cors"
)

// Server is a production-ready HTTP server with lifecycle management.
// It implements internal/worker.Worker for integration with the daemon's
// worker.Manager supervision.
type Server struct {
	config  Config
	server  *http.Server
	logger  *slog.Logger
	handler http.Handler
	started atomic.Bool

	ln net.Listener
}

// NewServer creates a new HTTP server with the given configuration.
// If handler is nil, http.NotFoundHandler() is used as default.
// If logger is nil, slog.Default() is used.
func NewServer(cfg Config, handler http.Handler, logger *slog.Logger) *Server {
	if handler == nil {
		handler = http.NotFoundHandler()
	}
	if logger == nil {
		logger = slog.Default()
	}

	wrapped := wrapCORS(cfg.CORS, handler)

	return &Server{
		config:  cfg,
		handler: wrapped,
		logger:  logger,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           wrapped,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		},
	}
}

// wrapCORS wraps handler in rs/cors using cfg, skipping the wrap entirely
// when cfg is the zero value (no origins/methods/headers configured).
func wrapCORS(cfg CORSConfig, handler http.Handler) http.Handler {
	if len(cfg.AllowedOrigins) == 0 && len(cfg.AllowedMethods) == 0 && len(cfg.AllowedHeaders) == 0 {
		return handler
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		AllowCredentials: cfg.AllowCredentials,
	})
	return c.Handler(handler)
}

// SetHandler sets the HTTP handler for the server.
// This method panics if called after the server has started.
// Use this for late-binding scenarios such as Gateway integration.
func (s *Server) SetHandler(h http.Handler) {
	if s.started.Load() {
		panic("http: cannot set handler after server started")
	}
	wrapped := wrapCORS(s.config.CORS, h)
	s.handler = wrapped
	s.server.Handler = wrapped
}

// OnStart binds the listener synchronously (so Addr reflects the real port
// when Config.Port is 0 for auto-assignment) and serves in a background
// goroutine. Implements worker.Worker.
func (s *Server) OnStart(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.server.Addr, err)
	}
	s.ln = ln
	s.started.Store(true)
	s.logger.InfoContext(ctx, "HTTP server starting", "addr", ln.Addr().String())

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()

	return nil
}

// OnStop gracefully shuts down the HTTP server.
// It waits for active connections to complete within the context deadline.
// Implements worker.Worker.
func (s *Server) OnStop(ctx context.Context) error {
	s.logger.InfoContext(ctx, "HTTP server stopping")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	s.logger.InfoContext(ctx, "HTTP server stopped")
	return nil
}

// Name implements worker.Worker.
func (s *Server) Name() string { return "server.http.Server" }

// Addr returns the server's bound address, e.g. "[::]:8377". Before OnStart
// has bound a listener, it returns the configured (possibly ":0") address.
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.server.Addr
}

// BoundPort returns the TCP port actually bound by OnStart, resolving
// Config.Port == 0 auto-assignment. Only meaningful after OnStart succeeds.
func (s *Server) BoundPort() int {
	if s.ln == nil {
		return s.config.Port
	}
	if tcpAddr, ok := s.ln.Addr().(*net.TCPAddr); ok {
		return tcpAddr.Port
	}
	return s.config.Port
}

// Port returns the configured port (may be 0 for auto-assignment; see
// BoundPort for the actual bound port after OnStart).
func (s *Server) Port() int {
	return s.config.Port
}
