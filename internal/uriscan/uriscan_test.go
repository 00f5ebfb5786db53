package uriscan

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDirectMatches(t *testing.T) {
	body := `Here is a server: vless://id@host:443?type=ws, and another trojan://pass@host2:443.`
	uris := Extract(body)
	assert.Contains(t, uris, "vless://id@host:443?type=ws")
	assert.Contains(t, uris, "trojan://pass@host2:443")
}

func TestExtractTrimsTrailingPunctuation(t *testing.T) {
	body := `(see trojan://pass@host2:443).`
	uris := Extract(body)
	assert.Equal(t, []string{"trojan://pass@host2:443"}, uris)
}

func TestExtractFallsBackToBase64Blob(t *testing.T) {
	inner := "vmess://abc123, some extra padding to make this blob long enough to qualify as a base64 candidate blob for scanning purposes here"
	blob := base64.RawURLEncoding.EncodeToString([]byte(inner))
	body := "no direct match here, just a blob: " + blob
	uris := Extract(body)
	require := assert.New(t)
	require.NotEmpty(uris)
}

func TestExtractReturnsNilOnNoMatch(t *testing.T) {
	uris := Extract("nothing interesting here")
	assert.Empty(t, uris)
}

func TestExtractIgnoresShortMatches(t *testing.T) {
	body := "ss://a"
	uris := Extract(body)
	assert.Empty(t, uris)
}
