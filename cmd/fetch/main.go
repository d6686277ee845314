// Command fetch downloads the PIT workbook and the COVID and population
// datasets into the managed downloads directory.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/jordway1/homelessness/internal/config"
	"github.com/jordway1/homelessness/internal/fetch"
	"github.com/jordway1/homelessness/internal/files"
	"github.com/jordway1/homelessness/internal/infrastructure"
)

func main() {
	configFile := flag.String("config", "config.yaml", "path to YAML config file")
	force := flag.Bool("force", false, "re-download sources even if already present")
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

	ctx := infrastructure.WithRunID(context.Background(), infrastructure.NewRunID())

	client := fetch.NewClient(nil, paths, logger)
	src, err := client.FetchAll(ctx, cfg.Sources, *force)
	if err != nil {
		logger.ErrorContext(ctx, "Fetch failed", "error", err)
		os.Exit(1)
	}

	logger.InfoContext(ctx, "Sources available",
		slog.String("workbook", src.WorkbookPath),
		slog.String("covid", src.CovidPath),
		slog.String("population", src.PopulationPath))

	downloaded, err := files.NewDiscovery(paths.DownloadsDir).ListSources()
	if err != nil {
		logger.WarnContext(ctx, "Failed to list downloads", "error", err)
		return
	}
	for _, f := range downloaded {
		logger.InfoContext(ctx, "Download present",
			slog.String("file", f.Name),
			slog.Int64("size_bytes", f.Size),
			slog.Time("fetched_at", f.ModTime))
	}
}
