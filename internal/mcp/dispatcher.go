package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/bobmcallan/wordpress-mcp/internal/common"
	"github.com/bobmcallan/wordpress-mcp/internal/wordpress"
	"github.com/spf13/cast"
)

// PostService is the upstream surface the dispatcher drives.
// *wordpress.Client implements it.
type PostService interface {
	CreatePost(ctx context.Context, p wordpress.CreateParams) wordpress.PostResult
	UpdatePost(ctx context.Context, postID int64, fields wordpress.UpdateFields) wordpress.PostResult
	ListPosts(ctx context.Context, perPage, page int) wordpress.ListResult
	DeletePost(ctx context.Context, postID int64) wordpress.DeleteResult
}

// CallObserver records the outcome of each tool call.
type CallObserver interface {
	ObserveToolCall(tool string, success bool)
}

// failureResult is the envelope for faults raised before or around the
// upstream call.
type failureResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (r failureResult) OK() bool        { return r.Success }
func (r failureResult) Summary() string { return r.Message }

// Dispatcher routes tool calls to the upstream client and renders the
// result as pretty-printed JSON. Call never panics and never returns an error.
type Dispatcher struct {
	client   PostService
	logger   *common.Logger
	observer CallObserver
}

// NewDispatcher creates a dispatcher. client may be nil, in which case every
// call reports that the client is not initialized. observer may be nil.
func NewDispatcher(client PostService, logger *common.Logger, observer CallObserver) *Dispatcher {
	return &Dispatcher{client: client, logger: logger, observer: observer}
}

// Call executes the named tool with the given arguments.
func (d *Dispatcher) Call(ctx context.Context, name string, args map[string]any) string {
	return d.call(ctx, name, args, nil)
}

// CallJSON executes the named tool with arguments still in wire form.
// Arguments that are not a JSON object are reported as a tool failure.
func (d *Dispatcher) CallJSON(ctx context.Context, name string, raw json.RawMessage) string {
	args, err := decodeArguments(raw)
	return d.call(ctx, name, args, err)
}

func decodeArguments(raw json.RawMessage) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return args, nil
}

func (d *Dispatcher) call(ctx context.Context, name string, args map[string]any, argErr error) string {
	result := d.dispatch(ctx, name, args, argErr)
	if d.observer != nil {
		label := name
		if _, ok := LookupTool(name); !ok {
			label = "unknown"
		}
		d.observer.ObserveToolCall(label, result.OK())
	}
	if !result.OK() {
		d.logger.Warn().Str("tool", name).Str("message", result.Summary()).Msg("tool call failed")
	}
	return render(result)
}

func (d *Dispatcher) dispatch(ctx context.Context, name string, args map[string]any, argErr error) (result wordpress.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error().Str("tool", name).Str("panic", fmt.Sprint(r)).Msg("tool call panicked")
			result = failf("Error executing tool: %v", r)
		}
	}()

	if d.client == nil {
		return failf("WordPress client not initialized")
	}

	d.logger.Info().Str("tool", name).Msg("calling tool")

	if _, ok := LookupTool(name); !ok {
		return failf("Unknown tool: %s", name)
	}
	if argErr != nil {
		return failf("Error executing tool: %v", argErr)
	}

	var err error
	switch name {
	case ToolCreatePost:
		result, err = d.createPost(ctx, args)
	case ToolUpdatePost:
		result, err = d.updatePost(ctx, args)
	case ToolGetPosts:
		result, err = d.getPosts(ctx, args)
	case ToolDeletePost:
		result, err = d.deletePost(ctx, args)
	default:
		return failf("Unknown tool: %s", name)
	}
	if err != nil {
		return failf("Error executing tool: %v", err)
	}
	return result
}

func (d *Dispatcher) createPost(ctx context.Context, args map[string]any) (wordpress.Outcome, error) {
	title, err := requiredString(args, "title")
	if err != nil {
		return nil, err
	}
	content, err := requiredString(args, "content")
	if err != nil {
		return nil, err
	}
	excerpt, err := stringOr(args, "excerpt", "")
	if err != nil {
		return nil, err
	}
	status, err := stringOr(args, "status", wordpress.StatusPublish)
	if err != nil {
		return nil, err
	}
	return d.client.CreatePost(ctx, wordpress.CreateParams{
		Title:   title,
		Content: content,
		Excerpt: excerpt,
		Status:  status,
	}), nil
}

func (d *Dispatcher) updatePost(ctx context.Context, args map[string]any) (wordpress.Outcome, error) {
	postID, err := requiredInt64(args, "post_id")
	if err != nil {
		return nil, err
	}
	var fields wordpress.UpdateFields
	if fields.Title, err = optionalString(args, "title"); err != nil {
		return nil, err
	}
	if fields.Content, err = optionalString(args, "content"); err != nil {
		return nil, err
	}
	if fields.Excerpt, err = optionalString(args, "excerpt"); err != nil {
		return nil, err
	}
	return d.client.UpdatePost(ctx, postID, fields), nil
}

func (d *Dispatcher) getPosts(ctx context.Context, args map[string]any) (wordpress.Outcome, error) {
	perPage, err := intOr(args, "per_page", 10)
	if err != nil {
		return nil, err
	}
	page, err := intOr(args, "page", 1)
	if err != nil {
		return nil, err
	}
	return d.client.ListPosts(ctx, perPage, page), nil
}

func (d *Dispatcher) deletePost(ctx context.Context, args map[string]any) (wordpress.Outcome, error) {
	postID, err := requiredInt64(args, "post_id")
	if err != nil {
		return nil, err
	}
	return d.client.DeletePost(ctx, postID), nil
}

// --- argument extraction ---

func lookup(args map[string]any, key string) (any, bool) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func requiredString(args map[string]any, key string) (string, error) {
	v, ok := lookup(args, key)
	if !ok {
		return "", fmt.Errorf("missing required argument: %s", key)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", fmt.Errorf("invalid argument %s: %w", key, err)
	}
	return s, nil
}

func requiredInt64(args map[string]any, key string) (int64, error) {
	v, ok := lookup(args, key)
	if !ok {
		return 0, fmt.Errorf("missing required argument: %s", key)
	}
	n, err := toInt64(v)
	if err != nil {
		return 0, fmt.Errorf("invalid argument %s: %w", key, err)
	}
	return n, nil
}

func stringOr(args map[string]any, key, def string) (string, error) {
	if _, ok := lookup(args, key); !ok {
		return def, nil
	}
	return requiredString(args, key)
}

func intOr(args map[string]any, key string, def int) (int, error) {
	v, ok := lookup(args, key)
	if !ok {
		return def, nil
	}
	n, err := toInt64(v)
	if err != nil {
		return 0, fmt.Errorf("invalid argument %s: %w", key, err)
	}
	return int(n), nil
}

// toInt64 accepts integral values only. Strings are parsed in base 10, so
// "012" is 12 and "0x2A" is rejected.
func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case bool:
		return 0, fmt.Errorf("%v is not an integer", n)
	case float64:
		return floatToInt64(n)
	case float32:
		return floatToInt64(float64(n))
	case json.Number:
		return strconv.ParseInt(n.String(), 10, 64)
	case string:
		return strconv.ParseInt(n, 10, 64)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return cast.ToInt64E(n)
	default:
		return 0, fmt.Errorf("%v (%T) is not an integer", v, v)
	}
}

func floatToInt64(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	if f < math.MinInt64 || f >= 1<<63 {
		return 0, fmt.Errorf("%v is out of range", f)
	}
	return int64(f), nil
}

// optionalString distinguishes an absent argument (nil) from an empty one.
func optionalString(args map[string]any, key string) (*string, error) {
	if _, ok := lookup(args, key); !ok {
		return nil, nil
	}
	s, err := requiredString(args, key)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func failf(format string, a ...any) failureResult {
	return failureResult{Success: false, Message: fmt.Sprintf(format, a...)}
}

func render(v any) string {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		out, _ = json.MarshalIndent(failf("Error executing tool: %v", err), "", "  ")
	}
	return string(out)
}
