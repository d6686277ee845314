// Package fetch retrieves the pipeline's external source files. Sources are
// fetched once per invocation with no retry policy: an unreachable resource
// aborts the run.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/jordway1/homelessness/internal/config"
	"github.com/jordway1/homelessness/internal/dataprocessing"
	apperrors "github.com/jordway1/homelessness/internal/errors"
)

// Client downloads remote sources into the managed downloads directory and
// passes local paths through untouched.
type Client struct {
	httpClient *http.Client
	paths      *config.Paths
	logger     *slog.Logger
}

// NewClient creates a fetch client. A nil httpClient gets a default with a
// generous timeout; the workbook is a few megabytes.
func NewClient(httpClient *http.Client, paths *config.Paths, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{httpClient: httpClient, paths: paths, logger: logger}
}

// FetchAll resolves every configured source to a local file. With force set,
// already-downloaded files are fetched again.
func (c *Client) FetchAll(ctx context.Context, sources config.SourcesConfig, force bool) (dataprocessing.SourceFiles, error) {
	var src dataprocessing.SourceFiles
	var err error

	if src.WorkbookPath, err = c.Resolve(ctx, sources.WorkbookLocation, force); err != nil {
		return src, err
	}
	if src.CovidPath, err = c.Resolve(ctx, sources.CovidURL, force); err != nil {
		return src, err
	}
	if src.PopulationPath, err = c.Resolve(ctx, sources.PopulationURL, force); err != nil {
		return src, err
	}
	return src, nil
}

// Resolve turns a source location into a local file path. HTTP locations are
// downloaded into the downloads directory; anything else is treated as a
// local path and must exist.
func (c *Client) Resolve(ctx context.Context, location string, force bool) (string, error) {
	if isRemote(location) {
		dest := c.paths.DownloadPath(remoteFilename(location))
		if err := c.Download(ctx, location, dest, force); err != nil {
			return "", err
		}
		return dest, nil
	}

	if _, err := os.Stat(location); err != nil {
		return "", apperrors.NewRetrievalError("source file not found", err).
			WithContext("path", location)
	}
	return location, nil
}

// Download fetches a URL to dest. Existing files are kept unless force is
// set; a re-run therefore does not depend on upstream availability. The file
// is written through a temp name so a failed download leaves nothing behind.
func (c *Client) Download(ctx context.Context, rawURL, dest string, force bool) error {
	if !force {
		if info, err := os.Stat(dest); err == nil && info.Size() > 0 {
			c.logger.DebugContext(ctx, "Source already downloaded, skipping",
				slog.String("url", rawURL),
				slog.String("path", dest))
			return nil
		}
	}

	c.logger.InfoContext(ctx, "Downloading source",
		slog.String("url", rawURL),
		slog.String("destination", dest))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return apperrors.NewRetrievalError("invalid source URL", err).
			WithContext("url", rawURL)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewRetrievalError(fmt.Sprintf("download failed for %s", rawURL), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperrors.NewRetrievalError(
			fmt.Sprintf("bad status for %s: %s", rawURL, resp.Status), nil).
			WithContext("status_code", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return apperrors.NewStorageError("failed to create downloads directory", err)
	}

	tmp := dest + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to create %s", tmp), err)
	}

	written, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return apperrors.NewStorageError(fmt.Sprintf("failed to write %s", dest), err).
			WithContext("bytes_written", written)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return apperrors.NewStorageError(fmt.Sprintf("failed to finalize %s", dest), err)
	}

	c.logger.InfoContext(ctx, "Source downloaded",
		slog.String("file", filepath.Base(dest)),
		slog.Int64("size_bytes", written))
	return nil
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// remoteFilename derives a stable local filename from a URL path.
func remoteFilename(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || path.Base(u.Path) == "." || path.Base(u.Path) == "/" {
		return "source.dat"
	}
	return path.Base(u.Path)
}
