// Package b64 accepts the base64 variants real-world proxy URIs use in
// practice: URL-safe or standard alphabet, with or without padding. Every
// parser that decodes base64 (VMess, Shadowsocks), the prioritizer's VMess
// probe, the fetcher's whole-body decode, and uriscan's blob-scan
// recursion go through this one helper so variant tolerance is enforced
// in a single place.
package b64

import (
	"encoding/base64"
	"strings"
)

// Decode tries URL-safe without padding first (the common VMess/VLESS
// convention), then URL-safe with padding restored, then standard without
// padding, then standard with padding restored, returning the first
// successful decode.
func Decode(s string) ([]byte, error) {
	if b, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	if b, err := base64.URLEncoding.DecodeString(pad(s)); err == nil {
		return b, nil
	}
	if b, err := base64.RawStdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.StdEncoding.DecodeString(pad(s))
}

func pad(s string) string {
	if m := len(s) % 4; m != 0 {
		s += strings.Repeat("=", 4-m)
	}
	return s
}
