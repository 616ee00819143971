package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/coverledger/coverledger-backend/internal/infrastructure/cache"
	"github.com/coverledger/coverledger-backend/internal/infrastructure/config"
)

// Server wraps the HTTP server with the middleware chain applied
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer assembles the full HTTP stack: handler routes wrapped in
// request ID, logging, metrics, rate limiting and panic recovery.
func NewServer(cfg *config.Config, handler *Handler, limiter cache.RateLimiter, logger *slog.Logger) *Server {
	chain := chainMiddleware(handler.Routes(),
		requestIDMiddleware,
		loggingMiddleware,
		metricsMiddleware,
		rateLimitMiddleware(limiter, cfg.Security.RateLimit.RequestsPerSecond, cfg.Security.RateLimit.BurstSize),
		recoveryMiddleware,
	)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:      chain,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		logger: logger,
	}
}

// Start serves until the listener fails or Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
