package common

import (
	"context"
	"testing"
)

func TestCorrelationID_RoundTrip(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "req-42")

	if got := CorrelationID(ctx); got != "req-42" {
		t.Errorf("expected req-42, got %q", got)
	}
	if got := CorrelationID(context.Background()); got != "" {
		t.Errorf("expected empty id, got %q", got)
	}
}

func TestForContext(t *testing.T) {
	logger := NewSilentLogger()

	if logger.ForContext(context.Background()) != logger {
		t.Error("expected the same logger when no correlation id is set")
	}

	tagged := logger.ForContext(WithCorrelationID(context.Background(), "req-42"))
	if tagged == logger {
		t.Error("expected a tagged copy")
	}
	tagged.Info().Msg("must not panic")
}
