// Package client talks to the bank REST API. Every call is a single round
// trip: no retries, no idempotency keys.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"bank-dashboard/internal/logging"
)

// Client holds the shared HTTP plumbing. Use Accounts and Users for the
// typed operations.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the underlying client. Its transport is wrapped so
// the bearer token is still attached.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// New builds a client for the API rooted at baseURL (for example
// http://localhost:8080/api).
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}

	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	hc := *c.http
	hc.Transport = &sessionTransport{tokens: tokens, base: base}
	if c.timeout > 0 {
		hc.Timeout = c.timeout
	}
	c.http = &hc

	return c
}

func (c *Client) Accounts() *AccountClient {
	return &AccountClient{c: c}
}

func (c *Client) Users() *UserClient {
	return &UserClient{c: c}
}

func (c *Client) buildRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		buf = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// call performs one request. A 2xx body is decoded into out when out is
// non-nil; anything else becomes an *APIError carrying fallback unless the
// body offers a better message.
func (c *Client) call(ctx context.Context, method, path string, in, out any, fallback string) error {
	raw, err := c.callRaw(ctx, method, path, in, fallback)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{
			Status:  http.StatusOK,
			Message: "Received invalid data format from server",
			Err:     fmt.Errorf("%w: %v", ErrInvalidResponse, err),
		}
	}
	return nil
}

// callRaw is call without decoding; it returns the raw 2xx body.
func (c *Client) callRaw(ctx context.Context, method, path string, in any, fallback string) ([]byte, error) {
	req, err := c.buildRequest(ctx, method, path, in)
	if err != nil {
		return nil, &APIError{Message: fallback, Err: err}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("api request failed",
			"method", method,
			"path", path,
			"error", err,
		)
		return nil, &APIError{Message: fallback, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Status: resp.StatusCode, Message: fallback, Err: fmt.Errorf("read response body: %w", err)}
	}

	c.logger.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
		"trace_id", resp.Header.Get("X-Trace-ID"),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 || isHTML(resp) {
		return nil, newAPIError(resp, body, fallback)
	}
	return body, nil
}
