package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/VladKovDev/checkout-bridge/internal/config"
	"github.com/VladKovDev/checkout-bridge/pkg/logger"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	server *http.Server
	logger logger.Logger
}

func New(cfg config.ServerConfig, handler http.Handler, log logger.Logger) *Server {
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &Server{server: srv, logger: log}
}

// Start listens on the configured address and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener. It returns nil after a graceful
// shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("starting HTTP server", zap.String("addr", ln.Addr().String()))

	errChan := make(chan error, 1)

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("HTTP server shutdown error", zap.Error(err))
			return fmt.Errorf("HTTP server shutdown: %w", err)
		}
		return nil
	case err, ok := <-errChan:
		if !ok {
			return nil
		}
		return fmt.Errorf("HTTP server error: %w", err)
	}
}
