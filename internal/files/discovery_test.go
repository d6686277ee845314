package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSources(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"pit-counts.xlsx", "us-states.csv", "notes.txt", "partial.csv.part"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	files, err := NewDiscovery(dir).ListSources()
	require.NoError(t, err)

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"pit-counts.xlsx", "us-states.csv"}, names)
}

func TestListSourcesMissingDir(t *testing.T) {
	files, err := NewDiscovery(filepath.Join(t.TempDir(), "absent")).ListSources()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestPurge(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.xlsx"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("x"), 0644))

	d := NewDiscovery(dir)
	require.NoError(t, d.Purge())

	files, err := d.ListSources()
	require.NoError(t, err)
	assert.Empty(t, files)

	// Non-source files survive.
	assert.FileExists(t, filepath.Join(dir, "keep.txt"))
}
