// internal/server/server.go
package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"authnfilter/internal/observability/logging"
)

// Server represents an HTTP server
type Server struct {
	httpServer      *http.Server
	metricsServer   *http.Server
	logger          *logging.Logger
	shutdownTimeout time.Duration
}

// Config holds server configuration
type Config struct {
	// Address is the address to listen on
	Address string

	// MetricsAddress is the address to listen on for metrics
	MetricsAddress string

	// TLSConfig enables TLS on the main listener when non-nil
	TLSConfig *tls.Config

	// ShutdownTimeout is the maximum time to wait for a graceful shutdown
	ShutdownTimeout time.Duration
}

// New creates a new server
func New(config Config, handler http.Handler, metricsHandler http.Handler, logger *logging.Logger) *Server {
	// Create main HTTP server
	httpServer := &http.Server{
		Addr:              config.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		TLSConfig:         config.TLSConfig,
	}

	// Create metrics server
	metricsServer := &http.Server{
		Addr:              config.MetricsAddress,
		Handler:           metricsHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{
		httpServer:      httpServer,
		metricsServer:   metricsServer,
		logger:          logger.WithModule("server"),
		shutdownTimeout: config.ShutdownTimeout,
	}
}

// Start starts the server
func (s *Server) Start() error {
	// Start metrics server
	go func() {
		s.logger.Info("Starting metrics server", "address", s.metricsServer.Addr)
		if err := s.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Metrics server failed", logging.Err(err))
		}
	}()

	// Start main server
	if s.httpServer.TLSConfig != nil {
		s.logger.Info("Starting HTTPS server", "address", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServeTLS("", ""); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTPS server failed: %w", err)
		}
	} else {
		s.logger.Info("Starting HTTP server", "address", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}

	return nil
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping servers", "timeout", s.shutdownTimeout)

	// Create a context with timeout for shutdown
	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	// Shutdown metrics server
	if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Failed to shut down metrics server", logging.Err(err))
	} else {
		s.logger.Info("Metrics server stopped")
	}

	// Shutdown main server
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Failed to shut down HTTP server", logging.Err(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}
