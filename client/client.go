// Package client is a typed HTTP client for the issue store API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ncobase/issues/ctxutil"
	"github.com/ncobase/issues/structs"
)

const (
	fallbackMessage = "Request failed"
	deleteMessage   = "Failed to delete"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// Client talks to the issue store API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every request; zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d, Transport: c.httpClient.Transport}
		}
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List fetches all issues, newest first.
func (c *Client) List(ctx context.Context) ([]*structs.Issue, error) {
	var issues []*structs.Issue
	if err := c.do(ctx, http.MethodGet, "/issues", nil, &issues, fallbackMessage); err != nil {
		return nil, err
	}
	return issues, nil
}

// Create stores a new issue.
func (c *Client) Create(ctx context.Context, req *structs.CreateIssueRequest) (*structs.Issue, error) {
	var issue structs.Issue
	if err := c.do(ctx, http.MethodPost, "/issues", req, &issue, fallbackMessage); err != nil {
		return nil, err
	}
	return &issue, nil
}

// Update sends the members set in req.
func (c *Client) Update(ctx context.Context, id string, req *structs.UpdateIssueRequest) (*structs.Issue, error) {
	var issue structs.Issue
	if err := c.do(ctx, http.MethodPut, "/issues/"+url.PathEscape(id), req, &issue, fallbackMessage); err != nil {
		return nil, err
	}
	return &issue, nil
}

// Delete removes an issue.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/issues/"+url.PathEscape(id), nil, nil, deleteMessage)
}

// Health checks the server and its store.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, fallbackMessage)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, fallback string) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if traceID := ctxutil.GetTraceID(ctx); traceID != "" {
		req.Header.Set(ctxutil.TraceIDHeader, traceID)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return decodeError(res, fallback)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(res *http.Response, fallback string) error {
	var body struct {
		Error string `json:"error"`
	}
	apiErr := &APIError{Status: res.StatusCode, Message: fallback}
	if err := json.NewDecoder(res.Body).Decode(&body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
	}
	return apiErr
}
