package server

import "net/http"

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Server metadata; also the 404 for anything unmatched
	mux.Handle("/", s.app.InfoHandler)

	mux.Handle("/health", s.app.HealthHandler)
	mux.Handle("/version", s.app.VersionHandler)

	// MCP transport: event stream + JSON-RPC
	mux.Handle("/sse", s.app.SSEHandler)
	mux.Handle("/mcp", s.app.MCPHandler)

	mux.Handle("/metrics", s.app.Metrics.Handler())

	return mux
}
