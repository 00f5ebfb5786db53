// Package uriscan extracts candidate proxy URIs out of arbitrary text,
// shared by the source fetcher and the channel scraper.
package uriscan

import (
	"regexp"
	"strings"

	"hunterproxy/internal/b64"
)

var (
	uriPattern  = regexp.MustCompile(`(?:vmess|vless|trojan|ss|shadowsocks)://[^\s"'<>\[\]]+`)
	blobPattern = regexp.MustCompile(`[A-Za-z0-9+/_=-]{100,}`)
)

const (
	minURILength    = 10
	maxBlobsScanned = 20
)

// Extract pulls proxy URIs directly out of body via regex, then falls
// back to scanning for long base64-looking blobs and recursing the
// same extraction on each decoded payload when no direct match is
// found.
func Extract(body string) []string {
	uris := extractDirect(body)
	if len(uris) > 0 {
		return uris
	}

	blobs := blobPattern.FindAllString(body, -1)
	if len(blobs) > maxBlobsScanned {
		blobs = blobs[:maxBlobsScanned]
	}
	var found []string
	for _, blob := range blobs {
		decoded, err := b64.Decode(blob)
		if err != nil {
			continue
		}
		found = append(found, extractDirect(string(decoded))...)
	}
	return found
}

func extractDirect(body string) []string {
	matches := uriPattern.FindAllString(body, -1)
	uris := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimRight(m, ")]},.;:!?")
		if len(m) > minURILength {
			uris = append(uris, m)
		}
	}
	return uris
}
