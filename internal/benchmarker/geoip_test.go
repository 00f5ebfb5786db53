package benchmarker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubGeoHTTP struct {
	bodiesByURL map[string]string
	errURLs     map[string]bool
	calls       int
}

func (s *stubGeoHTTP) Fetch(ctx context.Context, url, userAgent string, timeout time.Duration, proxy string) (string, error) {
	s.calls++
	if s.errURLs[url] {
		return "", assertErr("lookup failed")
	}
	return s.bodiesByURL[url], nil
}

func TestResolveRegionUsesLiteralIPWithoutDNSLookup(t *testing.T) {
	http := &stubGeoHTTP{bodiesByURL: map[string]string{"https://ipapi.co/1.2.3.4/country_code/": "jp\n"}}

	ip, cc := ResolveRegion(context.Background(), http, "1.2.3.4")
	assert.Equal(t, "1.2.3.4", ip)
	assert.Equal(t, "JP", cc)
}

func TestResolveRegionCachesCountryCodePerIP(t *testing.T) {
	http := &stubGeoHTTP{bodiesByURL: map[string]string{"https://ipapi.co/9.9.9.9/country_code/": "de"}}

	ip1, cc1 := ResolveRegion(context.Background(), http, "9.9.9.9")
	ip2, cc2 := ResolveRegion(context.Background(), http, "9.9.9.9")
	assert.Equal(t, ip1, ip2)
	assert.Equal(t, cc1, cc2)
	assert.Equal(t, 1, http.calls, "a cached IP must not re-trigger a lookup")
}

func TestResolveRegionReturnsEmptyCountryOnLookupFailure(t *testing.T) {
	http := &stubGeoHTTP{errURLs: map[string]bool{"https://ipapi.co/8.8.4.4/country_code/": true}}

	ip, cc := ResolveRegion(context.Background(), http, "8.8.4.4")
	assert.Equal(t, "8.8.4.4", ip)
	assert.Empty(t, cc)
}

func TestResolveRegionUnresolvableHostReturnsEmptyIP(t *testing.T) {
	http := &stubGeoHTTP{}
	ip, cc := ResolveRegion(context.Background(), http, "this-host-does-not-resolve.invalid")
	assert.Empty(t, ip)
	assert.Empty(t, cc)
}
