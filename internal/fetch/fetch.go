// Package fetch downloads the upstream manifest.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultMaxBodySize bounds the manifest size to avoid exhausting memory on
// a misconfigured source.
const DefaultMaxBodySize int64 = 256 << 20 // 256 MB

// Error reports a failed fetch: a transport failure or a non-2xx response.
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
	}

	return fmt.Sprintf("fetching %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *Error) Unwrap() error { return e.Err }

// Fetcher returns the body of the document at a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// compile-time interface conformance check.
var _ Fetcher = (*Client)(nil)

// Client fetches manifests over HTTP(S). file:// URLs are read from the
// local filesystem.
type Client struct {
	http        *http.Client
	maxBodySize int64
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each fetch. Zero disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithMaxBodySize sets the largest accepted response body. Larger bodies
// fail the fetch.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		c.maxBodySize = n
	}
}

// WithLogger sets a logger for the Client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))

	c := &Client{
		http:        &http.Client{Transport: transport},
		maxBodySize: DefaultMaxBodySize,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Fetch issues a single GET request and returns the full response body.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{URL: url, Err: fmt.Errorf("creating request: %w", err)}
	}

	c.logger.Debug("fetching manifest", slog.String("url", url))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, &Error{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading body: %w", err)}
	}

	if int64(len(body)) > c.maxBodySize {
		return nil, &Error{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("body exceeds maximum size of %d bytes", c.maxBodySize)}
	}

	c.logger.Debug("manifest fetched",
		slog.String("url", url),
		slog.Int("bytes", len(body)),
	)

	return body, nil
}
