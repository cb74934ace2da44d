package friends

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// DefaultUserAgent is sent with every request. Some hosts reject Go's default.
const DefaultUserAgent = "Mozilla/5.0 (compatible; inkwell-feed-reader/1.0)"

// Client is an HTTP client with retries.
type Client struct {
	http      *http.Client
	retry     int
	userAgent string
}

// ClientOptions configure a Client.
type ClientOptions struct {
	Timeout   time.Duration
	Retry     int
	UserAgent string
}

// NewClient returns a client with dial and header timeouts and an overall
// request timeout (10s when unset).
func NewClient(opts ClientOptions) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	return &Client{
		http:      &http.Client{Transport: transport, Timeout: opts.Timeout},
		retry:     opts.Retry,
		userAgent: opts.UserAgent,
	}
}

// Get fetches url, retrying failures and non-2xx responses with a linear
// backoff. The caller closes the body.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	var lastErr error
	attempts := c.retry + 1
	for i := 0; i < attempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("new request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		resp, err := c.http.Do(req)
		if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}
		if err == nil {
			lastErr = fmt.Errorf("http status: %s", resp.Status)
			resp.Body.Close()
		} else {
			lastErr = err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(i+1) * 300 * time.Millisecond):
		}
	}
	return nil, lastErr
}
