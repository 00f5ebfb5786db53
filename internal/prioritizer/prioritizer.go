// Package prioritizer reorders candidate URIs into latency-agnostic
// tiers based on anti-DPI transport features, before benchmarking
// spends time on any of them.
package prioritizer

import (
	"encoding/json"
	"math/rand"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"hunterproxy/internal/b64"
)

var blockPatterns = []string{
	"ir.", ".ir", "iran", "0.0.0.0", "127.0.0.1", "localhost", "10.10.34.", "192.168.",
}

var cdnDomains = []string{
	"cloudflare", "cloudfront", "fastly", "akamai", "incapsula", "azureedge", "workers.dev",
}

var ipv6Pattern = regexp.MustCompile(`\[[0-9a-fA-F:]+\]`)

const tierCount = 8

// Prioritize discards blocklisted URIs and returns the remainder
// partitioned into 8 ordered tiers (tier 1 emitted first), shuffled
// within each tier.
func Prioritize(uris []string) []string {
	buckets := make([][]string, tierCount+1) // index 0 unused, tiers 1..8

	for _, uri := range uris {
		if isBlocked(uri) {
			continue
		}
		tier := classify(uri)
		buckets[tier] = append(buckets[tier], uri)
	}

	out := make([]string, 0, len(uris))
	for tier := 1; tier <= tierCount; tier++ {
		shuffle(buckets[tier])
		out = append(out, buckets[tier]...)
	}
	return out
}

func isBlocked(uri string) bool {
	lower := strings.ToLower(uri)
	for _, pattern := range blockPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

func isCDN(uri string) bool {
	lower := strings.ToLower(uri)
	for _, domain := range cdnDomains {
		if strings.Contains(lower, domain) {
			return true
		}
	}
	return false
}

func classify(uri string) int {
	if ipv6Pattern.MatchString(uri) {
		return 7
	}

	scheme, _, ok := strings.Cut(uri, "://")
	if !ok {
		return 8
	}

	switch strings.ToLower(scheme) {
	case "vless":
		return classifyVLESS(uri)
	case "trojan":
		return classifyTrojan(uri)
	case "vmess":
		return classifyVMess(uri)
	default:
		return 8
	}
}

func classifyVLESS(uri string) int {
	u, err := url.Parse(uri)
	if err != nil {
		return 8
	}
	q := u.Query()
	security := q.Get("security")
	network := q.Get("type")
	port443 := u.Port() == "443"
	cdn := isCDN(uri)
	hasPBK := q.Get("pbk") != ""

	switch {
	case security == "reality" && (cdn || hasPBK):
		return 1
	case security == "reality":
		return 2
	case network == "grpc" || network == "h2":
		return 3
	case network == "ws" && security == "tls" && port443:
		return 4
	case security == "tls" && port443:
		return 6
	default:
		return 8
	}
}

func classifyTrojan(uri string) int {
	u, err := url.Parse(uri)
	if err != nil {
		return 8
	}
	q := u.Query()
	network := q.Get("type")
	port443 := u.Port() == "443"

	switch {
	case network == "grpc":
		return 3
	case network == "ws" && port443:
		return 4
	case port443:
		return 6
	default:
		return 8
	}
}

type vmessProbe struct {
	Port interface{} `json:"port"`
	Net  string      `json:"net"`
	TLS  string      `json:"tls"`
}

func classifyVMess(uri string) int {
	rest := strings.TrimPrefix(uri, "vmess://")
	rest, _, _ = strings.Cut(rest, "#")
	raw, err := b64.Decode(rest)
	if err != nil {
		return 8
	}
	var payload vmessProbe
	if err := json.Unmarshal(raw, &payload); err != nil {
		return 8
	}

	tls := strings.EqualFold(payload.TLS, "tls") || strings.EqualFold(payload.TLS, "reality")
	port443 := portIs443(payload.Port)
	cdn := isCDN(uri)

	switch {
	case payload.Net == "grpc" && tls:
		return 3
	case payload.Net == "ws" && tls && cdn:
		return 5
	case payload.Net == "ws" && tls && port443:
		return 4
	case tls && port443:
		return 6
	default:
		return 8
	}
}

func portIs443(v interface{}) bool {
	switch t := v.(type) {
	case float64:
		return int(t) == 443
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(t))
		return n == 443
	default:
		return false
	}
}

func shuffle(s []string) {
	rand.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}
