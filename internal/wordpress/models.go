package wordpress

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Post statuses accepted by create_post.
const (
	StatusPublish = "publish"
	StatusDraft   = "draft"
	StatusPrivate = "private"
)

// Outcome is implemented by every result envelope the client returns.
type Outcome interface {
	OK() bool
	Summary() string
}

// PostResult is returned by CreatePost and UpdatePost.
// PostID and URL are null when the upstream did not produce them.
type PostResult struct {
	Success bool    `json:"success"`
	PostID  *int64  `json:"post_id"`
	URL     *string `json:"url"`
	Message string  `json:"message"`
}

func (r PostResult) OK() bool        { return r.Success }
func (r PostResult) Summary() string { return r.Message }

// ListResult is returned by ListPosts. Posts is never nil.
type ListResult struct {
	Success bool          `json:"success"`
	Posts   []PostSummary `json:"posts"`
	Count   int           `json:"count"`
	Message string        `json:"message"`
}

func (r ListResult) OK() bool        { return r.Success }
func (r ListResult) Summary() string { return r.Message }

// DeleteResult is returned by DeletePost.
type DeleteResult struct {
	Success bool   `json:"success"`
	PostID  int64  `json:"post_id"`
	Message string `json:"message"`
}

func (r DeleteResult) OK() bool        { return r.Success }
func (r DeleteResult) Summary() string { return r.Message }

// PostSummary is the projection of a remote post exposed to tool callers.
type PostSummary struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	URL     string `json:"url"`
	Status  string `json:"status"`
	Date    string `json:"date"`
}

// CreateParams holds the fields of a new post.
type CreateParams struct {
	Title   string
	Content string
	Excerpt string
	Status  string
}

// UpdateFields holds the fields of a partial update. A nil field is left
// untouched upstream; a pointer to "" clears it.
type UpdateFields struct {
	Title   *string
	Content *string
	Excerpt *string
}

// payload returns the JSON body for the update, or nil if nothing is set.
func (f UpdateFields) payload() map[string]string {
	data := map[string]string{}
	if f.Title != nil {
		data["title"] = *f.Title
	}
	if f.Content != nil {
		data["content"] = *f.Content
	}
	if f.Excerpt != nil {
		data["excerpt"] = *f.Excerpt
	}
	if len(data) == 0 {
		return nil
	}
	return data
}

// wpPost is the subset of the /wp/v2/posts resource the client reads.
type wpPost struct {
	ID      *int64       `json:"id"`
	Title   renderedText `json:"title"`
	Excerpt renderedText `json:"excerpt"`
	Link    *string      `json:"link"`
	Status  string       `json:"status"`
	Date    string       `json:"date"`
}

func (p wpPost) summary() PostSummary {
	s := PostSummary{
		Title:   string(p.Title),
		Excerpt: string(p.Excerpt),
		Status:  p.Status,
		Date:    p.Date,
	}
	if p.ID != nil {
		s.ID = *p.ID
	}
	if p.Link != nil {
		s.URL = *p.Link
	}
	return s
}

// renderedText accepts either a plain string or a {"rendered": "..."} object.
type renderedText string

func (t *renderedText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = renderedText(s)
		return nil
	}
	var obj struct {
		Rendered *string `json:"rendered"`
		Raw      *string `json:"raw"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("unexpected text field %s: %w", truncate(string(data), 64), err)
	}
	switch {
	case obj.Rendered != nil:
		*t = renderedText(*obj.Rendered)
	case obj.Raw != nil:
		*t = renderedText(*obj.Raw)
	default:
		*t = ""
	}
	return nil
}
