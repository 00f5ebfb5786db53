// Package parser dispatches a proxy URI to its scheme-specific decoder
// and normalizes the result into model.ParsedConfig: one constructor per
// scheme, no shared base type.
package parser

import (
	"fmt"
	"strings"

	"hunterproxy/internal/model"
)

// ErrNotParseable is returned (wrapped) when a URI cannot be decoded
// into a valid ParsedConfig under any scheme.
var ErrNotParseable = fmt.Errorf("not parseable")

// Parse dispatches uri by its lowercased scheme and returns a normalized
// ParsedConfig, or ErrNotParseable (possibly wrapping a more specific
// decode error) if the URI is malformed or violates the data-model
// invariants.
func Parse(uri string) (*model.ParsedConfig, error) {
	scheme, _, ok := strings.Cut(uri, "://")
	if !ok {
		return nil, fmt.Errorf("%w: no scheme", ErrNotParseable)
	}

	var (
		cfg *model.ParsedConfig
		err error
	)
	switch strings.ToLower(scheme) {
	case "vmess":
		cfg, err = parseVMess(uri)
	case "vless":
		cfg, err = parseVLESS(uri)
	case "trojan":
		cfg, err = parseTrojan(uri)
	case "ss", "shadowsocks":
		cfg, err = parseShadowsocks(uri)
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrNotParseable, scheme)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotParseable, err)
	}
	if !cfg.Valid() {
		return nil, fmt.Errorf("%w: failed invariants", ErrNotParseable)
	}
	cfg.URI = uri
	return cfg, nil
}

// fragmentPS URL-decodes the fragment (after '#') of a URI into the
// human label every scheme form carries it in.
func fragmentPS(uri string) string {
	_, frag, ok := strings.Cut(uri, "#")
	if !ok {
		return ""
	}
	return urlDecode(frag)
}
