package common

import (
	"context"
	"time"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRunID    contextKey = "run_id"
	ContextKeyDocument contextKey = "document"
)

// WithRunID adds a batch run ID to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, ContextKeyRunID, runID)
}

// RunIDFromContext extracts the batch run ID from context
func RunIDFromContext(ctx context.Context) string {
	if runID, ok := ctx.Value(ContextKeyRunID).(string); ok {
		return runID
	}
	return ""
}

// WithDocument adds the document filename being processed to the context
func WithDocument(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ContextKeyDocument, name)
}

// DocumentFromContext extracts the document filename from context
func DocumentFromContext(ctx context.Context) string {
	if name, ok := ctx.Value(ContextKeyDocument).(string); ok {
		return name
	}
	return ""
}

// WithOptionalTimeout applies timeout when it is positive; otherwise the parent is returned
// with a no-op cancel.
func WithOptionalTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return parent, func() {}
	}
	return context.WithTimeout(parent, timeout)
}
