// Package api talks to the remote recipe service. Client is the generic
// JSON transport with a per-request deadline; RecipeClient maps the
// service's endpoints and payloads onto domain types.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hammamikhairi/recipebook/internal/logger"
)

// DefaultTimeout is how long a single request may take.
const DefaultTimeout = 10 * time.Second

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithTimeout overrides the per-request deadline.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient swaps the underlying *http.Client (tests, proxies).
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// Client issues JSON requests. One attempt per call, no retries.
type Client struct {
	timeout time.Duration
	http    *http.Client
	log     *logger.Logger
}

// NewClient creates a JSON client with DefaultTimeout.
func NewClient(log *logger.Logger, opts ...ClientOption) *Client {
	c := &Client{
		timeout: DefaultTimeout,
		http:    &http.Client{},
		log:     log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Timeout returns the configured per-request deadline.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Request sends a GET, or a POST with a JSON body when body is non-nil,
// and returns the decoded JSON document. The call races the configured
// timeout; losing the race yields a *TimeoutError. A non-2xx status yields
// a *StatusError.
func (c *Client) Request(ctx context.Context, url string, body any) (json.RawMessage, error) {
	method := http.MethodGet
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("api: marshal body: %w", err)
		}
		method = http.MethodPost
		reader = bytes.NewReader(data)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("api: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("api: %s %s", method, url)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.failure(ctx, reqCtx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.failure(ctx, reqCtx, err)
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok {
		var msg struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(raw, &msg)
		c.log.Debug("api: %s %s -> %s", method, url, resp.Status)
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, Message: msg.Message}
	}

	if !json.Valid(raw) {
		return nil, fmt.Errorf("api: decode response from %s: invalid JSON (%d bytes)", url, len(raw))
	}

	c.log.Debug("api: %s %s -> %s (%d bytes)", method, url, resp.Status, len(raw))
	return json.RawMessage(raw), nil
}

// failure classifies a transport error: our own timer firing becomes a
// TimeoutError, a caller cancellation is returned untouched, anything
// else is a NetworkError.
func (c *Client) failure(parent, reqCtx context.Context, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{Duration: c.timeout}
	}
	return &NetworkError{Err: err}
}
