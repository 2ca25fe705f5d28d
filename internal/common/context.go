package common

import "context"

type contextKey string

const correlationIDKey contextKey = "correlation_id"

// WithCorrelationID stores a request correlation id on ctx.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationID returns the id stored by WithCorrelationID, or "".
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}

// ForContext returns l tagged with the request's correlation id, if any.
func (l *Logger) ForContext(ctx context.Context) *Logger {
	if id := CorrelationID(ctx); id != "" {
		return l.WithCorrelationId(id)
	}
	return l
}
