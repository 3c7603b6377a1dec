// Package context provides context utilities for tracking a single query run
package context

import (
	stdctx "context"

	"github.com/google/uuid"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey int

const (
	// RunIDKey is the context key for run IDs
	RunIDKey contextKey = iota
)

// NewRunID generates a new unique run ID
func NewRunID() string {
	return uuid.New().String()
}

// WithRunID attaches a run ID to the context
func WithRunID(parent stdctx.Context, runID string) stdctx.Context {
	return stdctx.WithValue(parent, RunIDKey, runID)
}

// RunIDFromContext extracts the run ID from the context.
// Returns an empty string for a nil context or when no ID was attached.
func RunIDFromContext(ctx stdctx.Context) string {
	if ctx == nil {
		return ""
	}
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}
