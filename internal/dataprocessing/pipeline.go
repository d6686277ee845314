package dataprocessing

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/jordway1/homelessness/internal/config"
	apperrors "github.com/jordway1/homelessness/internal/errors"
	"github.com/jordway1/homelessness/internal/infrastructure"
	"github.com/jordway1/homelessness/pkg/contracts/domain"
)

// SourceFiles points at the locally available source files for one run. The
// fetch layer resolves remote locations to these paths beforehand.
type SourceFiles struct {
	WorkbookPath   string
	CovidPath      string
	PopulationPath string
}

// Result is the complete output of one pipeline run. Stages hand their output
// forward by value; nothing here is mutated after Run returns.
type Result struct {
	Longitudinal []domain.LongitudinalRecord
	Enriched     []domain.EnrichedRecord
	Stats        domain.RunStats
}

// Pipeline executes the five ETL stages strictly in order: load, normalize,
// union, backfill, enrich. Each run is independent; re-running over unchanged
// sources yields an identical result.
type Pipeline struct {
	cfg    config.PipelineConfig
	logger *slog.Logger
}

// NewPipeline creates a pipeline with the given analysis parameters.
func NewPipeline(cfg config.PipelineConfig, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{cfg: cfg, logger: logger}
}

// Run executes the full pipeline against the given source files.
func (p *Pipeline) Run(ctx context.Context, src SourceFiles) (*Result, error) {
	runID := infrastructure.RunIDFromContext(ctx)
	if runID == "" {
		runID = infrastructure.NewRunID()
		ctx = infrastructure.WithRunID(ctx, runID)
	}
	start := time.Now()

	p.logger.InfoContext(ctx, "Starting pipeline run",
		slog.String("workbook", src.WorkbookPath),
		slog.String("target_year", p.cfg.TargetYear),
		slog.String("snapshot_date", p.cfg.SnapshotDate))

	rules, err := NewRuleSet(p.cfg.YearSuffixPattern)
	if err != nil {
		return nil, err
	}

	sheets, err := LoadWorkbook(src.WorkbookPath, p.cfg.Years)
	if err != nil {
		return nil, err
	}

	for i, sheet := range sheets {
		sheets[i] = rules.NormalizeSheet(sheet)
	}

	unioned, unionStats := Union(sheets, p.cfg.TotalSentinel)

	records, err := BindRecords(unioned)
	if err != nil {
		return nil, err
	}

	records, backfillStats := BackfillCategory(records, p.cfg.TargetYear)

	covid, err := p.loadCovid(src.CovidPath)
	if err != nil {
		return nil, err
	}
	population, err := p.loadPopulation(src.PopulationPath)
	if err != nil {
		return nil, err
	}

	enriched, joinStats := Enrich(records, p.cfg.TargetYear, population, covid)

	sortLongitudinal(records)
	sortEnriched(enriched)

	result := &Result{
		Longitudinal: records,
		Enriched:     enriched,
		Stats: domain.RunStats{
			RunID:            runID,
			StartedAt:        start,
			Duration:         time.Since(start),
			SheetsLoaded:     len(sheets),
			RowsUnioned:      unionStats.RowsOut,
			TotalRowsDropped: unionStats.TotalRowsDropped,
			BackfillMisses:   backfillStats.Misses,
			UnresolvedStates: joinStats.UnresolvedStates,
			MissingPop:       joinStats.MissingPop,
		},
	}

	p.logger.InfoContext(ctx, "Pipeline run complete",
		slog.Int("longitudinal_rows", len(records)),
		slog.Int("enriched_rows", len(enriched)),
		slog.Duration("duration", result.Stats.Duration))
	return result, nil
}

func (p *Pipeline) loadCovid(path string) ([]domain.CovidRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewRetrievalError("failed to open COVID dataset", err).
			WithContext("path", path)
	}
	defer f.Close()
	return LoadCovidCSV(f, p.cfg.SnapshotTime())
}

func (p *Pipeline) loadPopulation(path string) ([]domain.PopulationRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewRetrievalError("failed to open population dataset", err).
			WithContext("path", path)
	}
	defer f.Close()
	return LoadPopulationCSV(f)
}

func sortLongitudinal(records []domain.LongitudinalRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Year != records[j].Year {
			return records[i].Year < records[j].Year
		}
		return records[i].CoCNumber < records[j].CoCNumber
	})
}

func sortEnriched(records []domain.EnrichedRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CoCNumber < records[j].CoCNumber
	})
}
