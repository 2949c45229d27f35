package remote

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

	"github.com/google/uuid"

	"github.com/dhamidi/convbrowse/conversation"
)

// DefaultBaseURL is where the API lives unless configured otherwise.
const DefaultBaseURL = "http://localhost:8080/api/v1"

// HTTPClient is the subset of *http.Client the Client needs.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

var _ HTTPClient = (*http.Client)(nil)

// APIError is the error object carried in an API response.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP error! status: %d", e.Status)
}

// Unwrap maps 404 responses onto ErrNotFound.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

type paginationInfo struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func (p *paginationInfo) toPagination() conversation.Pagination {
	if p == nil {
		return conversation.Pagination{}
	}
	return conversation.Pagination{PageNumber: p.Page, PageSize: p.Limit, TotalCount: p.Total, TotalPages: p.TotalPages}
}

type response struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data,omitempty"`
	Error      *APIError       `json:"error,omitempty"`
	Pagination *paginationInfo `json:"pagination,omitempty"`
}

// Client is a Source backed by the HTTP API.
type Client struct {
	baseURL string
	http    HTTPClient
}

var _ Source = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the transport, mostly for tests.
func WithHTTPClient(h HTTPClient) ClientOption {
	return func(c *Client) { c.http = h }
}

// WithTimeout bounds each HTTP request. Zero means no timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.http = &http.Client{Timeout: d} }
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListConversations fetches one page of userID's conversations.
func (c *Client) ListConversations(ctx context.Context, userID string, page, pageSize int) (conversation.Page, error) {
	q := url.Values{}
	q.Set("user_id", userID)
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(pageSize))

	var data struct {
		Conversations []conversation.Summary `json:"conversations"`
	}
	p, err := c.do(ctx, http.MethodGet, "/conversations", q, &data)
	if err != nil {
		return conversation.Page{}, err
	}
	return conversation.Page{Items: conversation.AdaptAll(data.Conversations), Pagination: p.toPagination()}, nil
}

// GetConversation fetches a single conversation summary.
func (c *Client) GetConversation(ctx context.Context, id string) (conversation.Summary, error) {
	var s conversation.Summary
	if _, err := c.do(ctx, http.MethodGet, "/conversations/"+url.PathEscape(id), nil, &s); err != nil {
		return conversation.Summary{}, err
	}
	return conversation.Adapt(s), nil
}

// DeleteConversation deletes a conversation on the server.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/conversations/"+url.PathEscape(id), nil, nil)
	return err
}

// ListMessages fetches one page of a conversation's messages.
func (c *Client) ListMessages(ctx context.Context, conversationID string, page, limit int) (conversation.MessagePage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var data struct {
		Messages []conversation.Message `json:"messages"`
	}
	p, err := c.do(ctx, http.MethodGet, "/conversations/"+url.PathEscape(conversationID)+"/messages", q, &data)
	if err != nil {
		return conversation.MessagePage{}, err
	}
	return conversation.MessagePage{Items: data.Messages, Pagination: p.toPagination()}, nil
}

// Search runs a server-side search over userID's conversations.
func (c *Client) Search(ctx context.Context, query, userID string, page, limit int) (conversation.Page, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("user_id", userID)
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var data struct {
		Conversations []conversation.Summary `json:"conversations"`
	}
	p, err := c.do(ctx, http.MethodGet, "/search", q, &data)
	if err != nil {
		return conversation.Page{}, err
	}
	return conversation.Page{Items: conversation.AdaptAll(data.Conversations), Pagination: p.toPagination()}, nil
}

// ListTags fetches every tag known to the server.
func (c *Client) ListTags(ctx context.Context) ([]conversation.Tag, error) {
	var data struct {
		Tags []conversation.Tag `json:"tags"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/tags", nil, &data); err != nil {
		return nil, err
	}
	return data.Tags, nil
}

// GetTag fetches a single tag.
func (c *Client) GetTag(ctx context.Context, id string) (conversation.Tag, error) {
	var data struct {
		Tag conversation.Tag `json:"tag"`
	}
	if _, err := c.send(ctx, http.MethodGet, "/tags/"+url.PathEscape(id), nil, nil, &data); err != nil {
		return conversation.Tag{}, err
	}
	return data.Tag, nil
}

// CreateTag creates a tag named name.
func (c *Client) CreateTag(ctx context.Context, name, color string) (conversation.Tag, error) {
	var data struct {
		Tag conversation.Tag `json:"tag"`
	}
	in := map[string]string{"name": name, "color": color}
	if _, err := c.send(ctx, http.MethodPost, "/tags", nil, in, &data); err != nil {
		return conversation.Tag{}, err
	}
	return data.Tag, nil
}

// UpdateTag renames tag.ID to tag.Name. An empty Color keeps the current one.
func (c *Client) UpdateTag(ctx context.Context, tag conversation.Tag) (conversation.Tag, error) {
	var data struct {
		Tag conversation.Tag `json:"tag"`
	}
	in := map[string]string{"name": tag.Name, "color": tag.Color}
	if _, err := c.send(ctx, http.MethodPut, "/tags/"+url.PathEscape(tag.ID), nil, in, &data); err != nil {
		return conversation.Tag{}, err
	}
	return data.Tag, nil
}

// DeleteTag deletes a tag and detaches it from every conversation.
func (c *Client) DeleteTag(ctx context.Context, id string) error {
	_, err := c.send(ctx, http.MethodDelete, "/tags/"+url.PathEscape(id), nil, nil, nil)
	return err
}

// do sends a bodiless request and decodes the envelope's data field into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, out any) (*paginationInfo, error) {
	return c.send(ctx, method, path, query, nil, out)
}

// send encodes in as the JSON request body when it is non-nil.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, in, out any) (*paginationInfo, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("remote: failed to encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("remote: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("remote: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("remote: failed to read response: %w", err)
	}

	var env response
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if decodeErr == nil && env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Details = env.Error.Details
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("remote: failed to parse response: %w", decodeErr)
	}
	if !env.Success {
		if env.Error != nil {
			env.Error.Status = resp.StatusCode
			return nil, env.Error
		}
		return nil, errors.New("remote: request failed")
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("remote: failed to unmarshal data: %w", err)
		}
	}
	return env.Pagination, nil
}
