package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", RunIDFromContext(ctx))

	ctx = WithRunID(ctx, "run-123")
	assert.Equal(t, "run-123", RunIDFromContext(ctx))
}

func TestNewRunIDUnique(t *testing.T) {
	a := NewRunID()
	b := NewRunID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestRunIDHandlerInjectsAttribute(t *testing.T) {
	var buf bytes.Buffer
	handler := &runIDHandler{Handler: slog.NewJSONHandler(&buf, nil)}
	logger := slog.New(handler)

	ctx := WithRunID(context.Background(), "run-456")
	logger.InfoContext(ctx, "stage complete", slog.String("stage", "union"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "run-456", entry["run_id"])
	assert.Equal(t, "union", entry["stage"])
}

func TestRunIDHandlerWithoutRunID(t *testing.T) {
	var buf bytes.Buffer
	handler := &runIDHandler{Handler: slog.NewJSONHandler(&buf, nil)}
	logger := slog.New(handler)

	logger.Info("no context")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	_, present := entry["run_id"]
	assert.False(t, present)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("WARN"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("anything"))
}
