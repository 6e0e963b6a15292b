package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/kernelfn/api"
	"github.com/dshills/kernelfn/core"
	"github.com/dshills/kernelfn/core/compute"
	"github.com/dshills/kernelfn/persistence"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serveHost      string
	servePort      int
	serveStore     string
	serveStorePath string
)

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	// Override with command-line flags
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if serveStore != "" {
		cfg.Persistence.Type = persistence.PersistenceType(serveStore)
	}
	if serveStorePath != "" {
		cfg.Persistence.Path = serveStorePath
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	policy, err := compute.NewPolicy(cfg.Compute.Config)
	if err != nil {
		return fmt.Errorf("failed to create compute policy: %w", err)
	}

	store, err := persistence.NewDefaultFactory().CreateStore(cfg.Persistence)
	if err != nil {
		return fmt.Errorf("failed to create result store: %w", err)
	}
	defer store.Close()

	info := policy.Info()
	logger.Info("configuration",
		zap.String("store", string(cfg.Persistence.Type)),
		zap.String("store_path", cfg.Persistence.Path),
		zap.String("backend", info.Backend),
		zap.Int("workers", info.Workers),
		zap.Bool("require_finite", cfg.Compute.RequireFinite))

	server := api.NewServer(core.NewEvaluator(policy), store, cfg.ToServerConfig(), logger)

	// Start server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for interrupt signal
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
