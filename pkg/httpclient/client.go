package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"catalog-post/pkg/domain"

	"golang.org/x/time/rate"
)

// ClientType represents the type of HTTP client configuration
type ClientType string

const (
	// BrowserClient uses browser-like headers to avoid 406 (Not Acceptable) errors
	// Used for sites that require browser-like User-Agent and headers
	BrowserClient ClientType = "browser"

	// CloudflareClient uses simple headers (like curl) to avoid 403 (Forbidden) errors
	// Used for Cloudflare-protected sites that block browser-like User-Agents
	CloudflareClient ClientType = "cloudflare"
)

// ParseClientType maps a configured profile name to a ClientType.
func ParseClientType(name string) (ClientType, error) {
	switch ClientType(name) {
	case BrowserClient, CloudflareClient:
		return ClientType(name), nil
	}
	return "", fmt.Errorf("unknown client profile %q", name)
}

// DefaultTimeout bounds every round trip. There is no retry on top of it.
const DefaultTimeout = 10 * time.Second

const defaultBrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Options configures a client. Zero values fall back to sane defaults.
type Options struct {
	Type    ClientType
	Timeout time.Duration

	// UserAgent overrides the per-type default User-Agent header.
	UserAgent string

	// RequestsPerSecond paces outbound requests. <= 0 disables pacing.
	RequestsPerSecond float64
}

// HTTPClient wraps an http.Client with configuration
type HTTPClient struct {
	client     *http.Client
	clientType ClientType
	userAgent  string
	limiter    *rate.Limiter
}

// NewClient creates a new HTTP client with the specified type
func NewClient(clientType ClientType) *HTTPClient {
	return NewClientWithOptions(Options{Type: clientType})
}

// NewClientWithOptions creates a client with explicit timeout, user agent and pacing.
func NewClientWithOptions(opts Options) *HTTPClient {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// Follow up to 10 redirects
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &HTTPClient{
		client:     client,
		clientType: opts.Type,
		userAgent:  opts.UserAgent,
		limiter:    limiter,
	}
}

// HTTP exposes the underlying client for libraries that send their own
// requests. Those bypass pacing and the header profile but keep the timeout.
func (c *HTTPClient) HTTP() *http.Client {
	return c.client
}

// Do executes an HTTP request with the appropriate headers for the client type
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	c.setHeaders(req)
	return c.client.Do(req)
}

// Get is a convenience method for GET requests
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// Body is a fully read response body.
type Body struct {
	Data        []byte
	ContentType string
}

// Fetch GETs url and reads the whole body. Transport failures and any
// non-200 status come back as *domain.FetchError.
func (c *HTTPClient) Fetch(ctx context.Context, url string) (*Body, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status code: %d", resp.StatusCode),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return &Body{Data: data, ContentType: resp.Header.Get("Content-Type")}, nil
}

// setHeaders sets the appropriate headers based on client type
func (c *HTTPClient) setHeaders(req *http.Request) {
	switch c.clientType {
	case BrowserClient:
		// Browser-like headers to avoid 406 (Not Acceptable) errors
		req.Header.Set("User-Agent", defaultBrowserUserAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "ja,en-US;q=0.9,en;q=0.8")
		req.Header.Set("Connection", "keep-alive")
		req.Header.Set("Upgrade-Insecure-Requests", "1")

	case CloudflareClient:
		// Simple headers like curl to avoid 403 (Forbidden) errors from Cloudflare
		req.Header.Set("User-Agent", "curl/8.7.1")

	default:
		// Default: use Go's default User-Agent
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
}
