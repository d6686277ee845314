package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths resolves every file location the pipeline touches. Directory layout:
//
//	<data>/
//	  downloads/   (workbook and CSV sources fetched from upstream)
//	<reports>/     (rendered CSV tables and the Markdown summary)
//	<logs>/        (application logs)
type Paths struct {
	DataDir      string
	DownloadsDir string
	ReportsDir   string
	LogsDir      string

	// Well-known output files.
	EnrichedCSV     string
	TrendCSV        string
	RankingsCSV     string
	SummaryMarkdown string
}

// NewPaths resolves the configured directories against the current working
// directory and lays out the well-known output files.
func NewPaths(cfg PathsConfig) (*Paths, error) {
	resolve := func(dir string) (string, error) {
		if filepath.IsAbs(dir) {
			return dir, nil
		}
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to resolve working directory: %w", err)
		}
		return filepath.Join(wd, dir), nil
	}

	dataDir, err := resolve(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	reportsDir, err := resolve(cfg.ReportsDir)
	if err != nil {
		return nil, err
	}
	logsDir, err := resolve(cfg.LogsDir)
	if err != nil {
		return nil, err
	}

	return &Paths{
		DataDir:         dataDir,
		DownloadsDir:    filepath.Join(dataDir, "downloads"),
		ReportsDir:      reportsDir,
		LogsDir:         logsDir,
		EnrichedCSV:     filepath.Join(reportsDir, "enriched.csv"),
		TrendCSV:        filepath.Join(reportsDir, "trend.csv"),
		RankingsCSV:     filepath.Join(reportsDir, "rankings.csv"),
		SummaryMarkdown: filepath.Join(reportsDir, "summary.md"),
	}, nil
}

// EnsureDirectories creates every managed directory.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.DownloadsDir, p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// DownloadPath returns the local path for a fetched source file.
func (p *Paths) DownloadPath(filename string) string {
	return filepath.Join(p.DownloadsDir, filename)
}

// ReportPath returns the path for a rendered report file.
func (p *Paths) ReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// LogPath returns the path for a log file.
func (p *Paths) LogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}
