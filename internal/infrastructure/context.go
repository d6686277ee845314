package infrastructure

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const runIDContextKey contextKey = "run_id"

// NewRunID generates a unique identifier for one pipeline run.
func NewRunID() string {
	return uuid.NewString()
}

// WithRunID stores a run ID in the context for log correlation.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDContextKey, runID)
}

// RunIDFromContext extracts the run ID, or "" when none is set.
func RunIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(runIDContextKey).(string); ok {
		return v
	}
	return ""
}
