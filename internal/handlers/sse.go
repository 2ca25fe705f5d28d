package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bobmcallan/wordpress-mcp/internal/common"
)

// SessionObserver is told when a stream opens and closes.
type SessionObserver interface {
	SessionOpened()
	SessionClosed()
}

type endpointEvent struct {
	URL string `json:"url"`
}

type heartbeatEvent struct {
	Status string `json:"status"`
}

// SSEHandler serves the event stream: one endpoint event naming the
// JSON-RPC URL, then a heartbeat every interval until the peer goes away.
type SSEHandler struct {
	endpointURL string
	interval    time.Duration
	logger      *common.Logger
	observer    SessionObserver
}

// NewSSEHandler creates the stream handler. observer may be nil.
func NewSSEHandler(endpointURL string, interval time.Duration, logger *common.Logger, observer SessionObserver) *SSEHandler {
	return &SSEHandler{
		endpointURL: endpointURL,
		interval:    interval,
		logger:      logger,
		observer:    observer,
	}
}

// ServeHTTP handles GET /sse. It returns when the request context is
// cancelled or a write fails.
func (h *SSEHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	logger := h.logger.ForContext(r.Context())

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if h.observer != nil {
		h.observer.SessionOpened()
		defer h.observer.SessionClosed()
	}
	logger.Info().Str("remote", r.RemoteAddr).Msg("SSE client connected")

	if err := writeEvent(w, "endpoint", endpointEvent{URL: h.endpointURL}); err != nil {
		logger.Error().Err(err).Msg("SSE error")
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		if ctx.Err() != nil {
			logger.Info().Msg("SSE client disconnected")
			return
		}
		if err := writeEvent(w, "heartbeat", heartbeatEvent{Status: "alive"}); err != nil {
			logger.Error().Err(err).Msg("SSE error")
			return
		}
		flusher.Flush()

		select {
		case <-ctx.Done():
			logger.Info().Msg("SSE client disconnected")
			return
		case <-ticker.C:
		}
	}
}

func writeEvent(w http.ResponseWriter, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event, err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return fmt.Errorf("write %s event: %w", event, err)
	}
	return nil
}
