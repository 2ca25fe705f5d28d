package mcp

import (
	"bytes"
	"encoding/json"

	"github.com/bobmcallan/wordpress-mcp/internal/wordpress"
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool names.
const (
	ToolCreatePost = "create_post"
	ToolUpdatePost = "update_post"
	ToolGetPosts   = "get_posts"
	ToolDeletePost = "delete_post"
)

// ParamSpec describes one tool parameter.
type ParamSpec struct {
	Name        string
	Type        string // "string" or "integer"
	Description string
	Required    bool
	Default     any
	Enum        []string
	Minimum     *int
	Maximum     *int
}

// ToolSpec describes one tool. Params are kept in declaration order so the
// generated schema lists properties the same way every time.
type ToolSpec struct {
	Name        string
	Description string
	Params      []ParamSpec
	ReadOnly    bool
	Destructive bool
}

func intPtr(n int) *int { return &n }

var catalog = []ToolSpec{
	{
		Name:        ToolCreatePost,
		Description: "Create a new WordPress post on your site",
		Params: []ParamSpec{
			{Name: "title", Type: "string", Description: "Post title", Required: true},
			{Name: "content", Type: "string", Description: "Post content in HTML", Required: true},
			{Name: "excerpt", Type: "string", Description: "Post excerpt (optional)", Default: ""},
			{
				Name:        "status",
				Type:        "string",
				Description: "Post status",
				Default:     wordpress.StatusPublish,
				Enum:        []string{wordpress.StatusPublish, wordpress.StatusDraft, wordpress.StatusPrivate},
			},
		},
	},
	{
		Name:        ToolUpdatePost,
		Description: "Update an existing WordPress post",
		Params: []ParamSpec{
			{Name: "post_id", Type: "integer", Description: "Post ID to update", Required: true},
			{Name: "title", Type: "string", Description: "New post title (optional)"},
			{Name: "content", Type: "string", Description: "New post content in HTML (optional)"},
			{Name: "excerpt", Type: "string", Description: "New post excerpt (optional)"},
		},
	},
	{
		Name:        ToolGetPosts,
		Description: "Get list of WordPress posts",
		ReadOnly:    true,
		Params: []ParamSpec{
			{
				Name:        "per_page",
				Type:        "integer",
				Description: "Number of posts per page (1-100)",
				Default:     10,
				Minimum:     intPtr(1),
				Maximum:     intPtr(100),
			},
			{Name: "page", Type: "integer", Description: "Page number", Default: 1, Minimum: intPtr(1)},
		},
	},
	{
		Name:        ToolDeletePost,
		Description: "Delete a WordPress post",
		Destructive: true,
		Params: []ParamSpec{
			{Name: "post_id", Type: "integer", Description: "Post ID to delete", Required: true},
		},
	},
}

// ListTools returns a deep copy of the tool catalog in its fixed order.
func ListTools() []ToolSpec {
	out := make([]ToolSpec, len(catalog))
	for i, t := range catalog {
		out[i] = t.clone()
	}
	return out
}

// LookupTool finds a tool by name. The result is a copy.
func LookupTool(name string) (ToolSpec, bool) {
	for _, t := range catalog {
		if t.Name == name {
			return t.clone(), true
		}
	}
	return ToolSpec{}, false
}

func (t ToolSpec) clone() ToolSpec {
	params := make([]ParamSpec, len(t.Params))
	for i, p := range t.Params {
		if p.Enum != nil {
			p.Enum = append([]string(nil), p.Enum...)
		}
		if p.Minimum != nil {
			p.Minimum = intPtr(*p.Minimum)
		}
		if p.Maximum != nil {
			p.Maximum = intPtr(*p.Maximum)
		}
		params[i] = p
	}
	t.Params = params
	return t
}

type propertySchema struct {
	Type        string   `json:"type"`
	Enum        []string `json:"enum,omitempty"`
	Description string   `json:"description,omitempty"`
	Default     any      `json:"default,omitempty"`
	Minimum     *int     `json:"minimum,omitempty"`
	Maximum     *int     `json:"maximum,omitempty"`
}

// InputSchema renders the JSON Schema for the tool's arguments.
// encoding/json sorts map keys, so properties are written by hand.
func (t ToolSpec) InputSchema() json.RawMessage {
	var buf bytes.Buffer
	buf.WriteString(`{"type":"object","properties":{`)

	var required []string
	for i, p := range t.Params {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, _ := json.Marshal(p.Name)
		prop, _ := json.Marshal(propertySchema{
			Type:        p.Type,
			Enum:        p.Enum,
			Description: p.Description,
			Default:     p.Default,
			Minimum:     p.Minimum,
			Maximum:     p.Maximum,
		})
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(prop)
		if p.Required {
			required = append(required, p.Name)
		}
	}
	buf.WriteByte('}')

	if len(required) > 0 {
		req, _ := json.Marshal(required)
		buf.WriteString(`,"required":`)
		buf.Write(req)
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

// MCPTool converts t into an mcp-go tool definition.
func (t ToolSpec) MCPTool() mcp.Tool {
	tool := mcp.NewToolWithRawSchema(t.Name, t.Description, t.InputSchema())
	tool.Annotations.ReadOnlyHint = mcp.ToBoolPtr(t.ReadOnly)
	tool.Annotations.DestructiveHint = mcp.ToBoolPtr(t.Destructive)
	return tool
}

// MCPTools converts the whole catalog.
func MCPTools() []mcp.Tool {
	tools := make([]mcp.Tool, 0, len(catalog))
	for _, t := range catalog {
		tools = append(tools, t.MCPTool())
	}
	return tools
}
