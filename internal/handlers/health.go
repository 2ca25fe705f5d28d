package handlers

import (
	"net/http"
)

// HealthResponse is the fixed GET /health payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

var healthy = HealthResponse{Status: "healthy", Service: "wordpress-mcp-sse-server"}

// HealthHandler answers liveness probes. The payload never depends on
// upstream state.
type HealthHandler struct{}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// ServeHTTP handles GET /health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, healthy)
}
