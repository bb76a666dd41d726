// Package httputil provides HTTP server and client plumbing shared by the
// tier services: lifecycle management, traced routing, a traced JSON client,
// and JSON response helpers.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port              int
	ServiceName       string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig(port int, serviceName string) ServerConfig {
	return ServerConfig{
		Port:              port,
		ServiceName:       serviceName,
		ReadHeaderTimeout: 3 * time.Second,
		ShutdownTimeout:   15 * time.Second,
	}
}

// Server wraps an http.Server with lifecycle management.
type Server struct {
	httpServer *http.Server
	config     ServerConfig
	logger     *slog.Logger
}

// NewServer creates a new HTTP server serving the given handler.
func NewServer(cfg ServerConfig, handler http.Handler, logger *slog.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           handler,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		},
		config: cfg,
		logger: logger,
	}
}

// Run starts the server and blocks until shutdown.
func (s *Server) Run(ctx context.Context) error {
	// Handle graceful shutdown
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server starting", "addr", s.httpServer.Addr, "service", s.config.ServiceName)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, shutting down")
	case sig := <-shutdownCh:
		s.logger.Info("received signal, shutting down", "signal", sig)
	case err := <-errCh:
		return err
	}

	return s.shutdown()
}

func (s *Server) shutdown() error {
	s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warn("graceful shutdown timed out, forcing close", "error", err)
		return s.httpServer.Close()
	}

	s.logger.Info("graceful shutdown completed")
	return nil
}
