package handlers

import (
	"net/http"

	"github.com/bobmcallan/wordpress-mcp/internal/mcp"
)

// ToolInfo is the short form of a tool listed on the root page.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ServerInfo is the GET / payload.
type ServerInfo struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Protocol     string            `json:"protocol"`
	Description  string            `json:"description"`
	Endpoints    map[string]string `json:"endpoints"`
	Tools        []ToolInfo        `json:"tools"`
	WordPressURL string            `json:"wordpress_url"`
}

// InfoHandler describes the server and its tools.
type InfoHandler struct {
	wordpressURL string
}

// NewInfoHandler creates the root handler. wordpressURL is the configured
// site, reported as-is.
func NewInfoHandler(wordpressURL string) *InfoHandler {
	return &InfoHandler{wordpressURL: wordpressURL}
}

// ServeHTTP handles GET /. Any other path under / is a 404.
func (h *InfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	specs := mcp.ListTools()
	tools := make([]ToolInfo, 0, len(specs))
	for _, s := range specs {
		tools = append(tools, ToolInfo{Name: s.Name, Description: s.Description})
	}

	WriteJSON(w, http.StatusOK, ServerInfo{
		Name:        "WordPress MCP SSE Server",
		Version:     mcp.ServerVersion,
		Protocol:    "MCP over SSE",
		Description: "Manage WordPress posts through ChatGPT using Model Context Protocol",
		Endpoints: map[string]string{
			"/":        "Server information",
			"/health":  "Health check",
			"/version": "Build information",
			"/sse":     "SSE endpoint for ChatGPT",
			"/mcp":     "MCP JSON-RPC endpoint",
			"/metrics": "Prometheus metrics",
		},
		Tools:        tools,
		WordPressURL: h.wordpressURL,
	})
}
