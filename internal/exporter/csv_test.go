package exporter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSimpleCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "trend.csv")
	writer := NewCSVWriter(nil)

	err := writer.WriteSimpleCSV(path,
		[]string{"Year", "Overall_Homeless"},
		[][]string{{"2018", "552830"}, {"2019", "567715"}})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// UTF-8 BOM for Excel.
	require.True(t, len(data) > 3)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, data[:3])

	reader := csv.NewReader(strings.NewReader(string(data[3:])))
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Year", "Overall_Homeless"}, rows[0])
	assert.Equal(t, []string{"2019", "567715"}, rows[2])
}

func TestWriteCSVAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	writer := NewCSVWriter(nil)

	require.NoError(t, writer.WriteCSV(path, WriteOptions{
		Headers: []string{"a", "b"},
		Records: [][]string{{"1", "2"}},
	}))
	require.NoError(t, writer.WriteCSV(path, WriteOptions{
		Records: [][]string{{"3", "4"}},
		Append:  true,
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "3,4", lines[2])
}

func TestWriteCSVTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	writer := NewCSVWriter(nil)

	require.NoError(t, writer.WriteCSV(path, WriteOptions{
		Headers: []string{"a"},
		Records: [][]string{{"old"}, {"older"}},
	}))
	require.NoError(t, writer.WriteCSV(path, WriteOptions{
		Headers: []string{"a"},
		Records: [][]string{{"new"}},
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "old")
	assert.Contains(t, string(data), "new")
}
