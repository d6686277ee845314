// Command server exposes the pipeline output over HTTP. The pipeline runs
// lazily on first request and on demand via POST /api/refresh.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jordway1/homelessness/internal/config"
	"github.com/jordway1/homelessness/internal/dataprocessing"
	"github.com/jordway1/homelessness/internal/fetch"
	"github.com/jordway1/homelessness/internal/infrastructure"
	transport "github.com/jordway1/homelessness/internal/transport/http"
)

func main() {
	configFile := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogger()

	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		logger.Error("Failed to resolve paths", "error", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		logger.Error("Failed to create directories", "error", err)
		os.Exit(1)
	}

	service := transport.NewDatasetService(
		cfg,
		paths,
		fetch.NewClient(nil, paths, logger),
		dataprocessing.NewPipeline(cfg.Pipeline, logger),
		logger,
	)
	server := transport.NewServer(cfg.Server, transport.NewRouter(service, logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Report server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", "error", err)
		os.Exit(1)
	}
}
