package mcp

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/wordpress-mcp/internal/common"
	"github.com/bobmcallan/wordpress-mcp/internal/wordpress"
)

type rpcReply struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *struct {
		Code    int64  `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	ID json.RawMessage `json:"id"`
}

func postRPC(t *testing.T, h http.Handler, body string) (int, rpcReply) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var reply rpcReply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply), rec.Body.String())
	return rec.Code, reply
}

func newWordPressHandler(t *testing.T, upstream http.HandlerFunc) *Handler {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)
	logger := common.NewSilentLogger()
	client := wordpress.NewClient(srv.URL, "editor", "app-pass", 5*time.Second, logger)
	t.Cleanup(func() { client.Close() })
	return NewHandler(NewDispatcher(client, logger, nil), logger)
}

func TestHandler_Initialize(t *testing.T) {
	h := NewHandler(NewDispatcher(nil, common.NewSilentLogger(), nil), common.NewSilentLogger())

	code, reply := postRPC(t, h, `{"jsonrpc":"2.0","method":"initialize","id":1}`)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "2.0", reply.JSONRPC)
	assert.Nil(t, reply.Error)
	assert.Equal(t, "1", string(reply.ID))
	assert.JSONEq(t,
		`{"protocolVersion":"2024-11-05","capabilities":{"tools":{}},"serverInfo":{"name":"wordpress-mcp-server","version":"1.0.0"}}`,
		string(reply.Result))
}

func TestHandler_ToolsList(t *testing.T) {
	h := NewHandler(NewDispatcher(nil, common.NewSilentLogger(), nil), common.NewSilentLogger())

	code, reply := postRPC(t, h, `{"jsonrpc":"2.0","method":"tools/list","id":"list-1"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, `"list-1"`, string(reply.ID))

	var result struct {
		Tools []struct {
			Name        string         `json:"name"`
			Description string         `json:"description"`
			InputSchema map[string]any `json:"inputSchema"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(reply.Result, &result))
	require.Len(t, result.Tools, 4)
	assert.Equal(t, "create_post", result.Tools[0].Name)
	assert.Equal(t, []any{"title", "content"}, result.Tools[0].InputSchema["required"])
	assert.Equal(t, "get_posts", result.Tools[2].Name)
}

func TestHandler_UnknownMethod(t *testing.T) {
	h := NewHandler(NewDispatcher(nil, common.NewSilentLogger(), nil), common.NewSilentLogger())

	tests := []struct {
		name   string
		body   string
		wantID string
	}{
		{"numeric id", `{"jsonrpc":"2.0","method":"resources/list","id":9}`, `9`},
		{"string id", `{"jsonrpc":"2.0","method":"prompts/list","id":"abc"}`, `"abc"`},
		{"null id", `{"jsonrpc":"2.0","method":"ping","id":null}`, `null`},
		{"absent id", `{"jsonrpc":"2.0","method":"notifications/initialized"}`, `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, reply := postRPC(t, h, tt.body)

			assert.Equal(t, http.StatusBadRequest, code)
			require.NotNil(t, reply.Error)
			assert.Equal(t, int64(-32601), reply.Error.Code)
			assert.Contains(t, reply.Error.Message, "Method not found")
			assert.Equal(t, tt.wantID, string(reply.ID))
			assert.Empty(t, reply.Result)
		})
	}
}

func TestHandler_MalformedParams(t *testing.T) {
	h := NewHandler(NewDispatcher(nil, common.NewSilentLogger(), nil), common.NewSilentLogger())

	code, reply := postRPC(t, h, `{"jsonrpc":"2.0","method":"tools/call","params":"delete everything","id":5}`)

	assert.Equal(t, http.StatusInternalServerError, code)
	require.NotNil(t, reply.Error)
	assert.Equal(t, int64(-32603), reply.Error.Code)
	assert.Equal(t, "5", string(reply.ID))
}

func TestHandler_UnparseableBody(t *testing.T) {
	h := NewHandler(NewDispatcher(nil, common.NewSilentLogger(), nil), common.NewSilentLogger())

	tests := []struct {
		name   string
		body   string
		wantID string
	}{
		{"truncated", `{"jsonrpc":"2.0",`, `null`},
		{"not json", `not json`, `null`},
		{"array", `[1,2]`, `null`},
		{"wrong method type keeps id", `{"jsonrpc":"2.0","method":5,"id":7}`, `7`},
		{"wrong version type keeps string id", `{"jsonrpc":2.0,"method":"initialize","id":"req-1"}`, `"req-1"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, reply := postRPC(t, h, tt.body)

			assert.Equal(t, http.StatusInternalServerError, code)
			require.NotNil(t, reply.Error)
			assert.Equal(t, int64(-32603), reply.Error.Code)
			assert.True(t, strings.HasPrefix(reply.Error.Message, "Internal error: "), reply.Error.Message)
			assert.Equal(t, tt.wantID, string(reply.ID))
		})
	}
}

func TestHandler_ToolsCallNonObjectArguments(t *testing.T) {
	h := newWordPressHandler(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected upstream call: %s %s", r.Method, r.URL.Path)
	})

	code, reply := postRPC(t, h, `{"jsonrpc":"2.0","method":"tools/call","params":{"name":"get_posts","arguments":"x"},"id":9}`)

	assert.Equal(t, http.StatusOK, code)
	assert.Nil(t, reply.Error)
	assert.Equal(t, "9", string(reply.ID))
	got := toolText(t, reply.Result)
	assert.Equal(t, false, got["success"])
	assert.True(t, strings.HasPrefix(got["message"].(string), "Error executing tool: "), got["message"])
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h := NewHandler(NewDispatcher(nil, common.NewSilentLogger(), nil), common.NewSilentLogger())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mcp", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func toolText(t *testing.T, result json.RawMessage) map[string]any {
	t.Helper()
	var call struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(result, &call))
	require.Len(t, call.Content, 1)
	assert.Equal(t, "text", call.Content[0].Type)
	return decodePayload(t, call.Content[0].Text)
}

func TestHandler_ToolsCallClientNotInitialized(t *testing.T) {
	h := NewHandler(NewDispatcher(nil, common.NewSilentLogger(), nil), common.NewSilentLogger())

	code, reply := postRPC(t, h, `{"jsonrpc":"2.0","method":"tools/call","params":{"name":"get_posts","arguments":{}},"id":3}`)

	assert.Equal(t, http.StatusOK, code)
	assert.Nil(t, reply.Error)
	assert.Equal(t, map[string]any{"success": false, "message": "WordPress client not initialized"}, toolText(t, reply.Result))
}

func TestHandler_ToolsCallDeletePost(t *testing.T) {
	h := newWordPressHandler(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/wp-json/wp/v2/posts/42", r.URL.Path)
		io.WriteString(w, `{"id":42,"status":"trash"}`)
	})

	code, reply := postRPC(t, h, `{"jsonrpc":"2.0","method":"tools/call","params":{"name":"delete_post","arguments":{"post_id":42}},"id":2}`)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "2", string(reply.ID))
	assert.Equal(t, map[string]any{
		"success": true,
		"post_id": float64(42),
		"message": "Post ID 42 deleted successfully!",
	}, toolText(t, reply.Result))
}

func TestHandler_ToolsCallUpstreamFailure(t *testing.T) {
	h := newWordPressHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"code":"rest_forbidden"}`)
	})

	code, reply := postRPC(t, h, `{"jsonrpc":"2.0","method":"tools/call","params":{"name":"get_posts","arguments":{"per_page":5}},"id":4}`)

	assert.Equal(t, http.StatusOK, code, "upstream failures are tool results, not protocol errors")
	assert.Nil(t, reply.Error)
	got := toolText(t, reply.Result)
	assert.Equal(t, false, got["success"])
	assert.Equal(t, `HTTP error getting posts: 403 - {"code":"rest_forbidden"}`, got["message"])
	assert.Equal(t, []any{}, got["posts"])
}
