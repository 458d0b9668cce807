package common

import (
	"context"

	"github.com/google/uuid"
)

type contextKey int

const correlationIDKey contextKey = iota

// NewCorrelationID returns a fresh identifier for one tool call.
func NewCorrelationID() string {
	return uuid.NewString()
}

// WithCorrelationID stores a correlation ID in the context.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationIDFromContext returns the correlation ID, or "" if absent.
func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}

// LoggerFor returns l tagged with the context's correlation ID when one is set.
func (l *Logger) LoggerFor(ctx context.Context) *Logger {
	if id := CorrelationIDFromContext(ctx); id != "" {
		return l.WithCorrelationId(id)
	}
	return l
}
