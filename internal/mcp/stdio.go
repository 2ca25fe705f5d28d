package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewStdioServer builds an mcp-go server exposing the same catalog. Every
// tool delegates to d, so stdio and HTTP callers see identical payloads.
func NewStdioServer(d *Dispatcher) *server.MCPServer {
	s := server.NewMCPServer(ServerName, ServerVersion, server.WithToolCapabilities(true))
	for _, spec := range ListTools() {
		s.AddTool(spec.MCPTool(), d.ToolHandler(spec.Name))
	}
	return s
}

// ToolHandler adapts the dispatcher to an mcp-go tool handler for name.
func (d *Dispatcher) ToolHandler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var text string
		switch raw := req.GetRawArguments().(type) {
		case nil, map[string]any:
			text = d.Call(ctx, name, req.GetArguments())
		default:
			b, _ := json.Marshal(raw)
			text = d.CallJSON(ctx, name, b)
		}
		return &mcp.CallToolResult{Content: []mcp.Content{mcp.NewTextContent(text)}}, nil
	}
}

// ServeStdio blocks serving MCP over stdin/stdout until EOF or a signal.
func ServeStdio(d *Dispatcher) error {
	return server.ServeStdio(NewStdioServer(d))
}
