// Package wordpress is the REST client for the WordPress posts collection.
// Every operation returns a result envelope; none of them return an error.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/wordpress-mcp/internal/common"
)

const (
	// maxResponseSize caps how much of an upstream body is read.
	maxResponseSize = 10 << 20
	// maxBodySnippet caps how much of an error body ends up in a message.
	maxBodySnippet = 4096

	maxPerPage = 100
)

// StatusError is a non-2xx upstream response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d - %s", e.StatusCode, e.Body)
}

// Observer receives the latency of each upstream call.
type Observer interface {
	ObserveUpstream(operation string, d time.Duration)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithObserver registers a latency observer.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// Client talks to {site}/wp-json/wp/v2 with HTTP Basic auth.
// It is safe for concurrent use.
type Client struct {
	apiURL     string
	username   string
	password   string
	httpClient *http.Client
	logger     *common.Logger
	observer   Observer
}

// NewClient creates a client for the site at siteURL.
// timeout bounds every upstream call end to end.
func NewClient(siteURL, username, password string, timeout time.Duration, logger *common.Logger, opts ...Option) *Client {
	c := &Client{
		apiURL:   strings.TrimRight(siteURL, "/") + "/wp-json/wp/v2",
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	logger.Info().Str("api_url", c.apiURL).Msg("WordPress client initialized")
	return c
}

// APIURL returns the REST base URL the client targets.
func (c *Client) APIURL() string {
	return c.apiURL
}

// Close releases idle upstream connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	c.logger.Info().Msg("WordPress client closed")
	return nil
}

// CreatePost creates a post. Status defaults to publish.
func (c *Client) CreatePost(ctx context.Context, p CreateParams) PostResult {
	if p.Status == "" {
		p.Status = StatusPublish
	}
	c.logger.Info().Str("title", p.Title).Str("status", p.Status).Msg("creating post")

	body, err := c.do(ctx, "create_post", http.MethodPost, "/posts", nil, map[string]string{
		"title":   p.Title,
		"content": p.Content,
		"excerpt": p.Excerpt,
		"status":  p.Status,
	})
	if err == nil {
		var post wpPost
		if err = decode(body, &post); err == nil && post.ID == nil {
			err = errors.New("response has no post id")
		}
		if err == nil {
			c.logger.Info().Int64("post_id", *post.ID).Str("url", deref(post.Link)).Msg("post created")
			return PostResult{
				Success: true,
				PostID:  post.ID,
				URL:     post.Link,
				Message: fmt.Sprintf("Post '%s' created successfully!", p.Title),
			}
		}
	}

	msg := c.failure("creating post", err)
	return PostResult{Message: msg}
}

// UpdatePost sends a partial update containing only the fields that are set.
// With no fields set it fails without touching the network.
func (c *Client) UpdatePost(ctx context.Context, postID int64, fields UpdateFields) PostResult {
	id := postID
	data := fields.payload()
	if data == nil {
		return PostResult{PostID: &id, Message: "No fields to update"}
	}
	c.logger.Info().Int64("post_id", postID).Int("fields", len(data)).Msg("updating post")

	body, err := c.do(ctx, "update_post", http.MethodPost, "/posts/"+strconv.FormatInt(postID, 10), nil, data)
	if err == nil {
		var post wpPost
		if err = decode(body, &post); err == nil {
			c.logger.Info().Int64("post_id", postID).Str("url", deref(post.Link)).Msg("post updated")
			return PostResult{
				Success: true,
				PostID:  &id,
				URL:     post.Link,
				Message: fmt.Sprintf("Post ID %d updated successfully!", postID),
			}
		}
	}

	return PostResult{PostID: &id, Message: c.failure("updating post", err)}
}

// ListPosts lists posts. perPage is clamped into [1,100] and page to at least 1.
func (c *Client) ListPosts(ctx context.Context, perPage, page int) ListResult {
	perPage = min(max(perPage, 1), maxPerPage)
	page = max(page, 1)
	c.logger.Info().Int("per_page", perPage).Int("page", page).Msg("listing posts")

	query := url.Values{}
	query.Set("per_page", strconv.Itoa(perPage))
	query.Set("page", strconv.Itoa(page))

	body, err := c.do(ctx, "get_posts", http.MethodGet, "/posts", query, nil)
	if err == nil {
		var raw []wpPost
		if err = decode(body, &raw); err == nil {
			posts := make([]PostSummary, 0, len(raw))
			for _, p := range raw {
				posts = append(posts, p.summary())
			}
			c.logger.Info().Int("count", len(posts)).Msg("posts retrieved")
			return ListResult{
				Success: true,
				Posts:   posts,
				Count:   len(posts),
				Message: fmt.Sprintf("Retrieved %d posts", len(posts)),
			}
		}
	}

	return ListResult{Posts: []PostSummary{}, Message: c.failure("getting posts", err)}
}

// DeletePost moves a post to the trash.
func (c *Client) DeletePost(ctx context.Context, postID int64) DeleteResult {
	c.logger.Info().Int64("post_id", postID).Msg("deleting post")

	if _, err := c.do(ctx, "delete_post", http.MethodDelete, "/posts/"+strconv.FormatInt(postID, 10), nil, nil); err != nil {
		return DeleteResult{PostID: postID, Message: c.failure("deleting post", err)}
	}

	c.logger.Info().Int64("post_id", postID).Msg("post deleted")
	return DeleteResult{
		Success: true,
		PostID:  postID,
		Message: fmt.Sprintf("Post ID %d deleted successfully!", postID),
	}
}

// do performs one upstream call. A non-2xx status yields *StatusError;
// anything else that stops the call yields a plain error.
func (c *Client) do(ctx context.Context, operation, method, path string, query url.Values, payload any) ([]byte, error) {
	target := c.apiURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("method", method).Str("path", path).Msg("upstream request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if c.observer != nil {
		c.observer.ObserveUpstream(operation, duration)
	}
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug().Int("status", resp.StatusCode).Int64("duration_ms", duration.Milliseconds()).Msg("upstream response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), maxBodySnippet)}
	}
	return body, nil
}

// failure renders err as a result message and logs it.
func (c *Client) failure(action string, err error) string {
	var msg string
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		msg = fmt.Sprintf("HTTP error %s: %d - %s", action, statusErr.StatusCode, statusErr.Body)
	} else {
		msg = fmt.Sprintf("Error %s: %v", action, err)
	}
	c.logger.Error().Str("error", msg).Msg("upstream call failed")
	return msg
}

func decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("invalid response: %w", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
