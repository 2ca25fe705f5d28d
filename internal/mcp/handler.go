package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/bobmcallan/wordpress-mcp/internal/common"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sourcegraph/jsonrpc2"
)

// Protocol constants advertised by initialize.
const (
	ProtocolVersion = "2024-11-05"
	ServerName      = "wordpress-mcp-server"
	ServerVersion   = "1.0.0"
)

const maxRequestBody = 1 << 20

// Request is an inbound JSON-RPC 2.0 message. ID is kept raw so it can be
// echoed back byte for byte; it is nil when the caller omitted it.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is an outbound JSON-RPC 2.0 message. A nil ID marshals as null.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  any             `json:"result,omitempty"`
	Error   *jsonrpc2.Error `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// callParams keeps arguments raw so the dispatcher can report a
// non-object value as a tool failure.
type callParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type toolsCapability struct{}

type serverCapabilities struct {
	Tools toolsCapability `json:"tools"`
}

// InitializeResult is the static reply to initialize.
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    serverCapabilities `json:"capabilities"`
	ServerInfo      mcp.Implementation `json:"serverInfo"`
}

// ListToolsResult is the reply to tools/list.
type ListToolsResult struct {
	Tools []mcp.Tool `json:"tools"`
}

// CallToolResult is the reply to tools/call.
type CallToolResult struct {
	Content []mcp.Content `json:"content"`
}

// rpcError carries a JSON-RPC error together with the HTTP status it maps to.
type rpcError struct {
	status int
	err    *jsonrpc2.Error
}

// Handler serves the JSON-RPC endpoint at POST /mcp.
type Handler struct {
	dispatcher *Dispatcher
	logger     *common.Logger
}

// NewHandler creates the JSON-RPC endpoint handler.
func NewHandler(dispatcher *Dispatcher, logger *common.Logger) *Handler {
	return &Handler{dispatcher: dispatcher, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		h.writeError(w, nil, internalError(err))
		return
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		h.logger.Warn().Err(err).Msg("unparseable JSON-RPC request")
		h.writeError(w, requestID(body), internalError(err))
		return
	}

	h.logger.Info().Str("method", req.Method).Str("id", string(req.ID)).Msg("MCP request")

	result, rerr := h.handle(r.Context(), &req)
	if rerr != nil {
		h.writeError(w, req.ID, rerr)
		return
	}
	h.write(w, http.StatusOK, Response{JSONRPC: "2.0", Result: result, ID: req.ID})
}

// handle processes a decoded request. Panics are converted to internal errors.
func (h *Handler) handle(ctx context.Context, req *Request) (result any, rerr *rpcError) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error().Str("method", req.Method).Str("panic", fmt.Sprint(r)).Msg("JSON-RPC handler panicked")
			result = nil
			rerr = internalError(fmt.Errorf("%v", r))
		}
	}()

	switch req.Method {
	case "initialize":
		return InitializeResult{
			ProtocolVersion: ProtocolVersion,
			ServerInfo:      mcp.Implementation{Name: ServerName, Version: ServerVersion},
		}, nil

	case "tools/list":
		return ListToolsResult{Tools: MCPTools()}, nil

	case "tools/call":
		var params callParams
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &params); err != nil {
				return nil, internalError(err)
			}
		}
		text := h.dispatcher.CallJSON(ctx, params.Name, params.Arguments)
		return CallToolResult{Content: []mcp.Content{mcp.NewTextContent(text)}}, nil

	default:
		h.logger.Warn().Str("method", req.Method).Msg("unknown JSON-RPC method")
		return nil, &rpcError{
			status: http.StatusBadRequest,
			err: &jsonrpc2.Error{
				Code:    jsonrpc2.CodeMethodNotFound,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// requestID recovers the id from a body whose other fields did not decode.
// It returns nil when the body is not an object.
func requestID(body []byte) json.RawMessage {
	var envelope struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}
	return envelope.ID
}

func internalError(err error) *rpcError {
	return &rpcError{
		status: http.StatusInternalServerError,
		err:    &jsonrpc2.Error{Code: jsonrpc2.CodeInternalError, Message: fmt.Sprintf("Internal error: %v", err)},
	}
}

func (h *Handler) writeError(w http.ResponseWriter, id json.RawMessage, rerr *rpcError) {
	h.write(w, rerr.status, Response{JSONRPC: "2.0", Error: rerr.err, ID: id})
}

func (h *Handler) write(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error().Err(err).Msg("failed to write JSON-RPC response")
	}
}
