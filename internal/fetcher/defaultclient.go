package fetcher

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/proxy"

	"hunterproxy/internal/collaborator"
)

const maxResponseBytes = 8 << 20 // 8MB, generous for a subscription page

// DefaultHTTPClient is a reference collaborator.HTTP implementation a
// host can wire in as-is: direct requests go through net/http, and a
// non-empty proxy string ("socks5://host:port") routes the request
// through an x/net/proxy SOCKS5 dialer instead, the same retry path
// FetchBank drives when a direct fetch comes back empty.
type DefaultHTTPClient struct{}

var _ collaborator.HTTP = DefaultHTTPClient{}

// Fetch implements collaborator.HTTP.
func (DefaultHTTPClient) Fetch(ctx context.Context, rawURL, userAgent string, timeout time.Duration, proxyURL string) (string, error) {
	client, err := clientFor(proxyURL, timeout)
	if err != nil {
		return "", fmt.Errorf("build client: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}

func clientFor(proxyURL string, timeout time.Duration) (*http.Client, error) {
	if proxyURL == "" {
		return &http.Client{Timeout: timeout}, nil
	}

	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}

	dialer, err := proxy.FromURL(u, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("build socks5 dialer: %w", err)
	}

	transport := &http.Transport{
		DialContext: func(_ context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		},
	}
	return &http.Client{Timeout: timeout, Transport: transport}, nil
}
