// ABOUTME: HTTP client for the inventory-request API
// ABOUTME: Wraps auth, item and request endpoints with typed errors for CLI and TUI usage

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/markalston/inventory-requests/internal/session"
)

// DefaultTimeout bounds every API call unless overridden
const DefaultTimeout = 30 * time.Second

var (
	// ErrInvalidCredentials means the backend rejected a login
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated means the call lacked a valid token (HTTP 401)
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden means the token is valid but lacks the required role (HTTP 403)
	ErrForbidden = errors.New("insufficient permissions")
	// ErrNotFound means the addressed resource does not exist (HTTP 404)
	ErrNotFound = errors.New("not found")
)

// APIError is a non-2xx response from the backend
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return "backend error: " + e.Message
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// Is maps status codes onto the package sentinels
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthenticated:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// Client is the API client for the inventory-request backend
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type options struct {
	tokens    TokenSource
	timeout   time.Duration
	transport http.RoundTripper
}

// Option configures a Client
type Option func(*options)

// WithTokenSource attaches the source's bearer token to every request
func WithTokenSource(ts TokenSource) Option {
	return func(o *options) { o.tokens = ts }
}

// WithTimeout overrides DefaultTimeout
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithTransport sets the innermost round tripper
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// New creates a new API client with the given base URL
func New(baseURL string, opts ...Option) *Client {
	o := options{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	var rt http.RoundTripper = &loggingTransport{base: o.transport}
	if o.tokens != nil {
		rt = &BearerTransport{Tokens: o.tokens, Base: rt}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   o.timeout,
			Transport: rt,
		},
	}
}

// BaseURL returns the backend URL the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login calls POST /api/auth/login.
// Rejected credentials return an error matching ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	creds := LoginRequest{Username: username, Password: password}
	if err := Validate(creds); err != nil {
		return nil, err
	}

	var resp LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", creds, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusUnauthorized) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, username)
		}
		return nil, err
	}

	if !resp.Success {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, username)
	}
	if resp.Token == "" || resp.User == nil {
		return nil, fmt.Errorf("invalid response from backend: login succeeded without token or user")
	}
	return &resp, nil
}

// Me calls GET /api/auth/me
func (c *Client) Me(ctx context.Context) (*session.Identity, error) {
	var user session.Identity
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListItems calls GET /api/items
func (c *Client) ListItems(ctx context.Context) ([]Item, error) {
	var items []Item
	if err := c.do(ctx, http.MethodGet, "/api/items", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetItem calls GET /api/items/{id}
func (c *Client) GetItem(ctx context.Context, id int64) (*Item, error) {
	var item Item
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/items/%d", id), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem calls POST /api/items
func (c *Client) CreateItem(ctx context.Context, item *Item) (*Item, error) {
	if err := Validate(item); err != nil {
		return nil, err
	}
	var created Item
	if err := c.do(ctx, http.MethodPost, "/api/items", item, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateItem calls PUT /api/items/{id}
func (c *Client) UpdateItem(ctx context.Context, id int64, item *Item) (*Item, error) {
	if err := Validate(item); err != nil {
		return nil, err
	}
	var updated Item
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/items/%d", id), item, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteItem calls DELETE /api/items/{id}
func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/items/%d", id), nil, nil)
}

// ListRequests calls GET /api/requests
func (c *Client) ListRequests(ctx context.Context) ([]Request, error) {
	var requests []Request
	if err := c.do(ctx, http.MethodGet, "/api/requests", nil, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// ListUserRequests calls GET /api/requests/user/{userID}
func (c *Client) ListUserRequests(ctx context.Context, userID int64) ([]Request, error) {
	var requests []Request
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/requests/user/%d", userID), nil, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// CreateRequest calls POST /api/requests
func (c *Client) CreateRequest(ctx context.Context, input *NewRequest) (*Request, error) {
	if err := Validate(input); err != nil {
		return nil, err
	}
	var created Request
	if err := c.do(ctx, http.MethodPost, "/api/requests", input, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ApproveRequest calls PUT /api/requests/{id}/approve; comments are optional
func (c *Client) ApproveRequest(ctx context.Context, id int64, comments string) (*Request, error) {
	var updated Request
	path := fmt.Sprintf("/api/requests/%d/approve", id)
	if err := c.do(ctx, http.MethodPut, path, Decision{Comments: comments}, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// RejectRequest calls PUT /api/requests/{id}/reject; a reason is required
func (c *Client) RejectRequest(ctx context.Context, id int64, comments string) (*Request, error) {
	if err := Validate(rejection{Comments: strings.TrimSpace(comments)}); err != nil {
		return nil, err
	}
	var updated Request
	path := fmt.Sprintf("/api/requests/%d/reject", id)
	if err := c.do(ctx, http.MethodPut, path, Decision{Comments: comments}, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// CancelRequest calls PUT /api/requests/{id}/cancel
func (c *Client) CancelRequest(ctx context.Context, id int64) (*Request, error) {
	var updated Request
	path := fmt.Sprintf("/api/requests/%d/cancel", id)
	if err := c.do(ctx, http.MethodPut, path, struct{}{}, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// do sends in as JSON (when non-nil) and decodes a 2xx body into out (when non-nil)
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal input: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.handleErrorResponse(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	return nil
}

// handleRequestError converts context errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("request canceled: %w", ctx.Err())
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", ctx.Err())
	}
	return fmt.Errorf("cannot connect to backend at %s: %w", c.baseURL, err)
}

// handleErrorResponse parses API error responses
func (c *Client) handleErrorResponse(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
		apiErr.Message = errResp.Error
		if apiErr.Message == "" {
			apiErr.Message = errResp.Message
		}
	}
	return apiErr
}
