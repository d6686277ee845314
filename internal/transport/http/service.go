package http

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/jordway1/homelessness/internal/config"
	"github.com/jordway1/homelessness/internal/dataprocessing"
	apperrors "github.com/jordway1/homelessness/internal/errors"
	"github.com/jordway1/homelessness/internal/fetch"
	"github.com/jordway1/homelessness/internal/infrastructure"
)

// DatasetService owns the latest pipeline result served by the API. The
// pipeline runs on demand; concurrent refresh requests are deduplicated with
// singleflight so at most one run is in flight at a time. Served results are
// read-only snapshots.
type DatasetService struct {
	cfg      *config.Config
	paths    *config.Paths
	fetcher  *fetch.Client
	pipeline *dataprocessing.Pipeline
	logger   *slog.Logger

	group singleflight.Group

	mu     sync.RWMutex
	latest *dataprocessing.Result
}

// NewDatasetService creates the service behind the report API.
func NewDatasetService(cfg *config.Config, paths *config.Paths, fetcher *fetch.Client,
	pipeline *dataprocessing.Pipeline, logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetService{
		cfg:      cfg,
		paths:    paths,
		fetcher:  fetcher,
		pipeline: pipeline,
		logger:   logger.With(slog.String("component", "dataset_service")),
	}
}

// Latest returns the most recent result, or an error when no run has
// completed yet.
func (s *DatasetService) Latest() (*dataprocessing.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, apperrors.NewNotFoundError("dataset")
	}
	return s.latest, nil
}

// Ensure returns the latest result, running the pipeline first if none
// exists.
func (s *DatasetService) Ensure(ctx context.Context) (*dataprocessing.Result, error) {
	if result, err := s.Latest(); err == nil {
		return result, nil
	}
	return s.Refresh(ctx, false)
}

// Refresh fetches sources and re-runs the pipeline, replacing the served
// snapshot on success. Concurrent callers share a single run.
func (s *DatasetService) Refresh(ctx context.Context, force bool) (*dataprocessing.Result, error) {
	v, err, shared := s.group.Do("refresh", func() (interface{}, error) {
		return s.runOnce(ctx, force)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.DebugContext(ctx, "Refresh request coalesced with in-flight run")
	}
	return v.(*dataprocessing.Result), nil
}

func (s *DatasetService) runOnce(ctx context.Context, force bool) (*dataprocessing.Result, error) {
	runID := infrastructure.NewRunID()
	ctx = infrastructure.WithRunID(ctx, runID)

	timer := observeRunStarted()
	src, err := s.fetcher.FetchAll(ctx, s.cfg.Sources, force)
	if err != nil {
		observeRunFinished(timer, err)
		return nil, err
	}

	result, err := s.pipeline.Run(ctx, src)
	observeRunFinished(timer, err)
	if err != nil {
		return nil, err
	}
	observeRunStats(result.Stats)

	s.mu.Lock()
	s.latest = result
	s.mu.Unlock()
	return result, nil
}

// TargetYear exposes the configured analysis year to handlers.
func (s *DatasetService) TargetYear() string {
	return s.cfg.Pipeline.TargetYear
}

// RankingSize exposes the configured top-N size to handlers.
func (s *DatasetService) RankingSize() int {
	return s.cfg.Pipeline.RankingSize
}
