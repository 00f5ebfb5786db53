package parser

import "net/url"

// urlDecode percent-decodes s, returning the original string unchanged
// if it isn't valid percent-encoding (a bare human label with no '%'
// is the common case and always passes through untouched).
func urlDecode(s string) string {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
