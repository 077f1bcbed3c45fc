package kvmflows

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Sentinel errors mapped from API status codes. Check with errors.Is.
var (
	// ErrConflict is returned when a similar subscription already exists.
	ErrConflict = errors.New("similar subscription already exists")
	// ErrNotFound is returned when the subscription ID is unknown.
	ErrNotFound = errors.New("subscription not found")
)

// APIError carries the status code and server-side message of a non-2xx
// response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// Is maps conflict and not-found responses onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// HTTPDoer abstracts the HTTP client so callers can bring their own
// transport, timeouts or instrumentation.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the kvmflows REST API.
type Client struct {
	baseURL    string
	adminToken string
	http       HTTPDoer
}

// Option customizes Client construction.
type Option func(*Client) error

// WithHTTPDoer overrides the underlying HTTP client.
func WithHTTPDoer(h HTTPDoer) Option {
	return func(c *Client) error {
		if h == nil {
			return errors.New("nil http doer")
		}
		c.http = h
		return nil
	}
}

// WithAdminToken sets the bearer token required by admin endpoints such as
// ListSubscriptions.
func WithAdminToken(token string) Option {
	return func(c *Client) error {
		c.adminToken = token
		return nil
	}
}

// New constructs a Client for the API at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("base URL required")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		if err := o(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Health reports the API's own view of its dependencies.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Time    string `json:"time"`
	DB      string `json:"db"`
	Cache   string `json:"cache"`
}

// Health fetches the server health summary.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.doJSON(ctx, http.MethodGet, "/healthz", nil, nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// doJSON performs a request with an optional JSON body and decodes a JSON
// response into out when out is non-nil. Non-2xx responses become *APIError.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.adminToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.adminToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// newAPIError extracts the {"error": "..."} message the server sends with
// failure statuses. Non-JSON bodies (e.g. proxies) degrade to the status.
func newAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != "" {
		apiErr.Message = payload.Error
	}
	return apiErr
}
