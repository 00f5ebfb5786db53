package benchmarker

import (
	"context"
	"net"
	"strings"
	"sync"
	"time"

	"hunterproxy/internal/collaborator"
	"hunterproxy/internal/logger"
)

const countryLookupTimeout = 3 * time.Second

var (
	countryCodeCacheMu sync.Mutex
	countryCodeCache   = make(map[string]string)
)

// ResolveRegion resolves host to an IP address and looks up its
// country code through an ipapi.co-style HTTP collaborator, caching
// negative and positive results per IP to avoid hammering the lookup
// service across repeated cycles. Either return value may be empty if
// resolution or lookup fails; CreateBenchResult falls back to "Other"
// in that case.
func ResolveRegion(ctx context.Context, http collaborator.HTTP, host string) (ip, countryCode string) {
	l := logger.WithComponent("benchmarker")

	ip = resolveIP(host)
	if ip == "" || http == nil {
		return ip, ""
	}

	countryCodeCacheMu.Lock()
	cc, cached := countryCodeCache[ip]
	countryCodeCacheMu.Unlock()
	if cached {
		return ip, cc
	}

	url := "https://ipapi.co/" + ip + "/country_code/"
	body, err := http.Fetch(ctx, url, "", countryLookupTimeout, "")
	if err != nil {
		l.Warn().Err(err).Str("ip", ip).Msg("country code lookup failed")
		countryCodeCacheMu.Lock()
		countryCodeCache[ip] = ""
		countryCodeCacheMu.Unlock()
		return ip, ""
	}

	cc = strings.ToUpper(strings.TrimSpace(body))
	countryCodeCacheMu.Lock()
	countryCodeCache[ip] = cc
	countryCodeCacheMu.Unlock()
	return ip, cc
}

func resolveIP(host string) string {
	if net.ParseIP(host) != nil {
		return host
	}
	addrs, err := net.DefaultResolver.LookupHost(context.Background(), host)
	if err != nil || len(addrs) == 0 {
		return ""
	}
	return addrs[0]
}
