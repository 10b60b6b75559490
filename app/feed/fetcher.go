package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client performs the HTTP side of feed processing: conditional feed fetches
// and plain GETs for discovery. Redirects are followed by the underlying
// http.Client; every request carries its own timeout.
type Client struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
}

// FetchClient is the surface discovery and refresh depend on, so tests can
// substitute a canned transport.
type FetchClient interface {
	Fetch(ctx context.Context, url string, tokens CacheTokens) (*FetchResult, error)
	Get(ctx context.Context, url string) (*FetchResult, error)
}

var _ FetchClient = (*Client)(nil)

func NewClient(userAgent string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        20,
				IdleConnTimeout:     30 * time.Second,
				MaxIdleConnsPerHost: 5,
			},
		},
		userAgent: userAgent,
		timeout:   timeout,
	}
}

// Fetch performs a conditional GET. Empty tokens (or a forced refresh
// upstream) degrade to an unconditional request. A 304 response yields
// NotModified with no body and no error.
func (c *Client) Fetch(ctx context.Context, url string, tokens CacheTokens) (*FetchResult, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	if tokens.ETag != "" {
		req.Header.Set("If-None-Match", tokens.ETag)
	}
	if tokens.LastModified != "" {
		req.Header.Set("If-Modified-Since", tokens.LastModified)
	}

	return c.do(req)
}

// Get performs a plain GET with no conditional headers.
func (c *Client) Get(ctx context.Context, url string) (*FetchResult, error) {
	return c.Fetch(ctx, url, CacheTokens{})
}

func (c *Client) do(req *http.Request) (*FetchResult, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", req.URL, err)
	}
	defer resp.Body.Close()

	result := &FetchResult{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
		Tokens: CacheTokens{
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
		},
	}

	if resp.StatusCode == http.StatusNotModified {
		result.NotModified = true
		return result, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	result.Body = body

	return result, nil
}
