package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client struct {
	userAgent string
	client    *http.Client
}

func New(timeout time.Duration, userAgent string) *Client {
	return &Client{
		userAgent: userAgent,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// UseDefaultClient sends requests through http.DefaultClient's transport,
// so a mock installed there intercepts them. The timeout is kept.
func (c *Client) UseDefaultClient() {
	c.client = &http.Client{
		Timeout:   c.client.Timeout,
		Transport: http.DefaultClient.Transport,
	}
}

// Fetch returns the body of url. There is no retry: any transport error or
// non-2xx status is returned as an error.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return body, nil
}
