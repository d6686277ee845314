// Package files provides bookkeeping over the downloads directory: which
// source files are present, how big they are and when they were fetched.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// SourceFile describes one downloaded source file.
type SourceFile struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Discovery inspects a downloads directory.
type Discovery struct {
	basePath string
}

// NewDiscovery creates a discovery instance rooted at the downloads directory.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// ListSources lists workbook and CSV source files, newest last.
func (d *Discovery) ListSources() ([]SourceFile, error) {
	return d.list(".xlsx", ".xls", ".csv")
}

func (d *Discovery) list(extensions ...string) ([]SourceFile, error) {
	entries, err := os.ReadDir(d.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", d.basePath, err)
	}

	var files []SourceFile
	for _, entry := range entries {
		if entry.IsDir() || strings.HasSuffix(entry.Name(), ".part") {
			continue
		}
		if !hasExtension(entry.Name(), extensions) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, SourceFile{
			Path:    filepath.Join(d.basePath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.Before(files[j].ModTime)
	})
	return files, nil
}

// Purge removes every downloaded source file. Downloads are a discardable
// cache: a later run simply fetches again.
func (d *Discovery) Purge() error {
	files, err := d.ListSources()
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := os.Remove(f.Path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", f.Path, err)
		}
	}
	return nil
}

func hasExtension(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
