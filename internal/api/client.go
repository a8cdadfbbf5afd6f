// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api is a client for the Harvest For Good research REST API.
package api

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

	"go.uber.org/zap"

	"github.com/pdiddy/harvest/internal/httputil"
	"github.com/pdiddy/harvest/pkg/types"
)

// DefaultBaseURL is the API root of a local development backend.
const DefaultBaseURL = "http://localhost:8000/api"

// Client talks to the research endpoints of the backend.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	maxRetries int
	timeout    time.Duration
	httpClient *http.Client
	log        *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. A nil client keeps the default.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		if c != nil {
			client.httpClient = c
		}
	}
}

// WithTimeout sets the request timeout. It applies to a copy of the HTTP
// client, so a client passed to WithHTTPClient is left untouched. A
// non-positive d keeps the client's own timeout.
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		client.timeout = d
	}
}

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(client *Client) {
		client.token = token
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(client *Client) {
		client.userAgent = ua
	}
}

// WithLogger sets the logger for request and retry diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(client *Client) {
		if log != nil {
			client.log = log
		}
	}
}

// WithMaxRetries bounds retries on HTTP 429.
func WithMaxRetries(n int) Option {
	return func(client *Client) {
		client.maxRetries = n
	}
}

// NewClient creates a client for the API rooted at baseURL
// (e.g. "http://localhost:8000/api"). An empty baseURL means DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: "harvest/0.1",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 && c.httpClient.Timeout != c.timeout {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// endpoint returns the URL of a path under /research/.
func (c *Client) endpoint(path string, q url.Values) string {
	u := c.baseURL + "/research/" + strings.TrimLeft(path, "/")
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// do sends a request and returns the response body with any success
// envelope removed. A non-nil body is sent as JSON; progress, when set,
// observes the bytes of that body as the transport reads them.
func (c *Client) do(ctx context.Context, op, method, path string, q url.Values, body any, progress types.ProgressFunc) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, q), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", op, err)
	}

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", op, err)
		}
		req.GetBody = func() (io.ReadCloser, error) {
			return newProgressReader(payload, progress), nil
		}
		req.Body, _ = req.GetBody()
		req.ContentLength = int64(len(payload))
		req.Header.Set("Content-Type", "application/json")
	}

	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, c.maxRetries, c.log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", op, err)
	}

	c.log.Debug("api request",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseError(op, resp.StatusCode, data)
	}
	return unwrapEnvelope(op, resp.StatusCode, data)
}

// envelope is the optional {success, data, message, error} wrapper some
// backend views use.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

func unwrapEnvelope(op string, status int, data []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed, nil
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil || env.Success == nil {
		return trimmed, nil
	}
	if !*env.Success {
		e := parseError(op, status, env.Error)
		if e.Message == http.StatusText(status) && env.Message != "" {
			e.Message = env.Message
		}
		return nil, e
	}
	return env.Data, nil
}

// progressReader reports bytes read from an in-memory request body.
type progressReader struct {
	r     *bytes.Reader
	total int64
	sent  int64
	fn    types.ProgressFunc
}

func newProgressReader(payload []byte, fn types.ProgressFunc) io.ReadCloser {
	return &progressReader{r: bytes.NewReader(payload), total: int64(len(payload)), fn: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.fn != nil {
		p.sent += int64(n)
		p.fn(p.sent, p.total)
	}
	return n, err
}

func (p *progressReader) Close() error { return nil }
