package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/gusamyky/ftpfs/internal/logger"
	"github.com/gusamyky/ftpfs/pkg/api"
	"github.com/gusamyky/ftpfs/pkg/ftp"
	"github.com/gusamyky/ftpfs/pkg/metrics"
	"github.com/gusamyky/ftpfs/pkg/store"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the ftpfs server",
	Long: `Start the ftpfs server with the specified configuration.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/ftpfs/config.yaml. A missing config
file starts the server with defaults (SQLite store, port 2121).

Examples:
  # Start with default config location
  ftpfs start

  # Start with custom config file
  ftpfs start --config /etc/ftpfs/config.yaml

  # Override settings with environment variables
  FTPFS_LOGGING_LEVEL=DEBUG ftpfs start`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := initLogger(cfg); err != nil {
		return err
	}

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))

	st, err := store.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("Store close error", "error", err)
		}
	}()
	logger.Info("Store initialized", "type", cfg.Database.Type)

	// Metrics collection and its HTTP endpoint are optional. Start blocks
	// until ctx is cancelled and shuts the endpoint down itself.
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		m = metrics.New(registry)
		metricsServer := metrics.NewServer(cfg.Metrics.Port, registry)
		go func() {
			if err := metricsServer.Start(ctx); err != nil {
				logger.Error("Metrics server error", "error", err)
			}
		}()
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
	} else {
		logger.Info("Metrics collection disabled")
	}

	// Admin REST API is optional and requires a JWT secret.
	if cfg.API.Enabled {
		apiServer, err := api.NewServer(cfg.API, st)
		if err != nil {
			return fmt.Errorf("failed to create API server: %w", err)
		}
		go func() {
			if err := apiServer.Start(ctx); err != nil {
				logger.Error("API server error", "error", err)
			}
		}()
		logger.Info("API server enabled", "port", cfg.API.Port)
	} else {
		logger.Info("API server disabled")
	}

	srv := ftp.NewServer(ftp.Config{
		Host:             cfg.Server.Host,
		Port:             cfg.Server.Port,
		FilesDir:         cfg.Server.FilesDir,
		MaxConnections:   cfg.Server.MaxConnections,
		IdleTimeout:      cfg.Server.IdleTimeout,
		StallTimeout:     cfg.Server.IdleTimeout,
		MaxUploadSize:    int64(cfg.Server.MaxUploadSize),
		SocketBufferSize: int(cfg.Server.SocketBufferSize),
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	}, st, m)

	// Start server in background
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Serve(ctx)
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Server is running. Press Ctrl+C to stop.")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		cancel()

		if err := <-serverDone; err != nil {
			logger.Error("Server shutdown error", "error", err)
			return err
		}
		logger.Info("Server stopped gracefully")

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("Server error", "error", err)
			return err
		}
		logger.Info("Server stopped")
	}

	return nil
}
