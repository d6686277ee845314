// Command report runs the full ETL pipeline once and renders the CSV tables
// and Markdown summary into the reports directory.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/jordway1/homelessness/internal/config"
	"github.com/jordway1/homelessness/internal/dataprocessing"
	"github.com/jordway1/homelessness/internal/exporter"
	"github.com/jordway1/homelessness/internal/fetch"
	"github.com/jordway1/homelessness/internal/infrastructure"
	"github.com/jordway1/homelessness/internal/report"
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

	pipeline := dataprocessing.NewPipeline(cfg.Pipeline, logger)
	result, err := pipeline.Run(ctx, src)
	if err != nil {
		logger.ErrorContext(ctx, "Pipeline failed", "error", err)
		os.Exit(1)
	}

	generator := report.NewGenerator(logger, cfg.Pipeline.RankingSize)
	renderer := report.NewRenderer(generator, exporter.NewCSVWriter(logger), paths, logger)
	if err := renderer.RenderAll(result, cfg.Pipeline.TargetYear); err != nil {
		logger.ErrorContext(ctx, "Rendering failed", "error", err)
		os.Exit(1)
	}

	logger.InfoContext(ctx, "Report complete",
		slog.String("summary", paths.SummaryMarkdown),
		slog.Int("enriched_rows", len(result.Enriched)),
		slog.Int("backfill_misses", result.Stats.BackfillMisses))
}
