package fetcher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// stubHTTP returns a fixed body per URL, or an error for URLs listed in
// errURLs, and records every proxy argument it was called with.
type stubHTTP struct {
	mu       sync.Mutex
	bodies   map[string]string
	errURLs  map[string]bool
	proxies  []string
}

func (s *stubHTTP) Fetch(ctx context.Context, url, userAgent string, timeout time.Duration, proxy string) (string, error) {
	s.mu.Lock()
	s.proxies = append(s.proxies, proxy)
	s.mu.Unlock()

	if s.errURLs[url] {
		return "", assertErr("fetch failed")
	}
	return s.bodies[url], nil
}

type assertErr string

func (e assertErr) Error() string { return string(e) }

func TestFetchBankExtractsURIsAcrossSources(t *testing.T) {
	http := &stubHTTP{bodies: map[string]string{
		"https://a.example.com": "vless://id@hosta.example.com:443?type=ws",
		"https://b.example.com": "trojan://pw@hostb.example.com:443",
	}}
	f := New(http)

	out := f.FetchBank(context.Background(), []string{"https://a.example.com", "https://b.example.com"}, nil, 2, time.Second, 5*time.Second)
	assert.Len(t, out, 2)
	assert.Contains(t, out, "vless://id@hosta.example.com:443?type=ws")
	assert.Contains(t, out, "trojan://pw@hostb.example.com:443")
}

func TestFetchBankFallsBackToProxyOnDirectFailure(t *testing.T) {
	http := &stubHTTP{
		bodies:  map[string]string{"https://a.example.com": "trojan://pw@hosta.example.com:443"},
		errURLs: map[string]bool{"https://a.example.com": true},
	}
	f := New(http)

	out := f.FetchBank(context.Background(), []string{"https://a.example.com"}, []int{11201}, 1, time.Second, 5*time.Second)

	http.mu.Lock()
	defer http.mu.Unlock()
	// the stub always errors for this URL regardless of proxy, but the
	// fetcher must still have retried through the supplied proxy port.
	assert.Contains(t, http.proxies, "socks5://127.0.0.1:11201")
	_ = out
}

func TestFetchBankEmptyURLsReturnsNil(t *testing.T) {
	f := New(&stubHTTP{})
	out := f.FetchBank(context.Background(), nil, nil, 5, time.Second, time.Second)
	assert.Nil(t, out)
}

func TestExtractFromDecodesBase64Body(t *testing.T) {
	f := New(&stubHTTP{})
	encoded := "dmxlc3M6Ly9pZEBob3N0LmV4YW1wbGUuY29tOjQ0Mz90eXBlPXdz" // base64 of "vless://id@host.example.com:443?type=ws"
	uris := f.extractFrom(encoded)
	assert.Contains(t, uris, "vless://id@host.example.com:443?type=ws")
}

func TestExtractFromEmptyBodyReturnsNil(t *testing.T) {
	f := New(&stubHTTP{})
	assert.Nil(t, f.extractFrom(""))
}

func TestExtractFromFallsBackToHTML(t *testing.T) {
	f := New(&stubHTTP{})
	// The scheme's colon is an HTML entity, so the raw-text scan finds
	// nothing and only the parsed element text yields the URI.
	body := `<html><body><table><tr><td><code>trojan&#58;//pw@host.example.com:443</code></td></tr></table></body></html>`
	uris := f.extractFrom(body)
	assert.Contains(t, uris, "trojan://pw@host.example.com:443")
}
