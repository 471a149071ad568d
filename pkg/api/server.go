package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gusamyky/ftpfs/internal/logger"
	"github.com/gusamyky/ftpfs/pkg/store"
)

// Server provides the admin REST API HTTP server.
//
// The server exposes health checks, authentication endpoints, and user
// management, and supports graceful shutdown.
type Server struct {
	server       *http.Server
	jwtService   *JWTService
	store        store.Store
	config       Config
	shutdownOnce sync.Once
}

// NewServer creates a new API HTTP server.
//
// The server is created in a stopped state. Call Start() to begin serving
// requests. The JWT secret must be configured via config.JWTSecret or the
// FTPFS_API_JWT_SECRET environment variable and be at least 32 characters.
func NewServer(config Config, s store.Store) (*Server, error) {
	config.ApplyDefaults()

	jwtSecret := config.GetJWTSecret()
	if len(jwtSecret) < 32 {
		return nil, fmt.Errorf("JWT secret must be at least 32 characters; set via %s env var or config", EnvJWTSecret)
	}

	jwtService, err := NewJWTService(JWTConfig{
		Secret:               jwtSecret,
		AccessTokenDuration:  config.AccessTokenDuration,
		RefreshTokenDuration: config.RefreshTokenDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      NewRouter(s, jwtService),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &Server{
		server:     server,
		jwtService: jwtService,
		store:      s,
		config:     config,
	}, nil
}

// Start starts the API HTTP server and blocks until the context is cancelled
// or an error occurs. Cancellation triggers graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("API server listening", logger.KeyPort, s.config.Port)

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("API server shutdown signal received")
		// Don't reuse the cancelled ctx, it would abort the drain immediately
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("API server failed: %w", err)
	}
}

// Stop gracefully shuts down the server, waiting for in-flight requests to
// complete up to the context deadline. Safe to call multiple times.
func (s *Server) Stop(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		logger.Debug("stopping API server")
		err = s.server.Shutdown(ctx)
		if err != nil {
			logger.Warn("API server shutdown error", logger.KeyError, err)
		} else {
			logger.Info("API server stopped")
		}
	})
	return err
}
