// Package fetcher pulls raw subscription text from a bank of source
// URLs in parallel, decodes it, and extracts candidate proxy URIs.
package fetcher

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"hunterproxy/internal/b64"
	"hunterproxy/internal/collaborator"
	"hunterproxy/internal/logger"
	"hunterproxy/internal/uriscan"
)

const (
	maxPerRequestTimeout   = 8 * time.Second
	maxProxyRequestTimeout = 12 * time.Second
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1",
}

func randomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

// Fetcher pulls and decodes candidate URIs from bank URLs through an
// external HTTP collaborator.
type Fetcher struct {
	http collaborator.HTTP
}

// New builds a Fetcher that issues requests through http.
func New(http collaborator.HTTP) *Fetcher {
	return &Fetcher{http: http}
}

// FetchBank runs a bounded worker pool over urls and returns the union
// of every URI extracted across all workers. proxyPorts supplies up to
// three local SOCKS ports used as a retry path when a direct fetch
// yields nothing. The walk honors bankDeadline: once it elapses,
// workers stop dequeuing new URLs and the caller gets back whatever
// has completed.
func (f *Fetcher) FetchBank(ctx context.Context, urls []string, proxyPorts []int, workers int, perRequestTimeout, bankDeadline time.Duration) []string {
	l := logger.WithComponent("fetcher")
	if len(urls) == 0 || workers <= 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, bankDeadline)
	defer cancel()

	var (
		mu     sync.Mutex
		cursor int
		result = make(map[string]struct{})
	)

	nextURL := func() (string, bool) {
		mu.Lock()
		defer mu.Unlock()
		if cursor >= len(urls) {
			return "", false
		}
		u := urls[cursor]
		cursor++
		return u, true
	}

	addAll := func(uris []string) {
		mu.Lock()
		defer mu.Unlock()
		for _, u := range uris {
			result[u] = struct{}{}
		}
	}

	if workers > len(urls) {
		workers = len(urls)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if ctx.Err() != nil {
					return
				}
				u, ok := nextURL()
				if !ok {
					return
				}
				uris := f.fetchOne(ctx, u, proxyPorts, perRequestTimeout)
				if len(uris) > 0 {
					addAll(uris)
				}
			}
		}()
	}
	wg.Wait()

	out := make([]string, 0, len(result))
	for u := range result {
		out = append(out, u)
	}
	l.Info().Int("urls", len(urls)).Int("uris", len(out)).Msg("bank fetch complete")
	return out
}

func (f *Fetcher) fetchOne(ctx context.Context, url string, proxyPorts []int, timeout time.Duration) []string {
	directTimeout := timeout
	if directTimeout > maxPerRequestTimeout {
		directTimeout = maxPerRequestTimeout
	}
	body, err := f.http.Fetch(ctx, url, randomUserAgent(), directTimeout, "")
	if err == nil {
		if uris := f.extractFrom(body); len(uris) > 0 {
			return uris
		}
	}

	proxyTimeout := timeout
	if proxyTimeout > maxProxyRequestTimeout {
		proxyTimeout = maxProxyRequestTimeout
	}

	maxRetries := 3
	if len(proxyPorts) < maxRetries {
		maxRetries = len(proxyPorts)
	}
	for i := 0; i < maxRetries; i++ {
		if ctx.Err() != nil {
			return nil
		}
		proxy := fmt.Sprintf("socks5://127.0.0.1:%d", proxyPorts[i])
		body, err := f.http.Fetch(ctx, url, randomUserAgent(), proxyTimeout, proxy)
		if err != nil {
			continue
		}
		if uris := f.extractFrom(body); len(uris) > 0 {
			return uris
		}
	}
	return nil
}

func (f *Fetcher) extractFrom(body string) []string {
	if body == "" {
		return nil
	}
	if !strings.Contains(body, "://") {
		if decoded, err := b64.Decode(strings.TrimSpace(body)); err == nil {
			body = string(decoded)
		}
	}
	if uris := uriscan.Extract(body); len(uris) > 0 {
		return uris
	}
	if strings.Contains(body, "<html") || strings.Contains(body, "<table") || strings.Contains(body, "<body") {
		return extractFromHTML(body)
	}
	return nil
}
