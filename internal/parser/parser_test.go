package parser

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVMessID = "b831381d-6324-4d53-ad4f-8cda48b30811"

func vmessURI(t *testing.T, overrides map[string]any) string {
	t.Helper()
	payload := map[string]any{
		"add":  "example.com",
		"port": 443,
		"id":   testVMessID,
		"aid":  0,
		"ps":   "test-node",
		"scy":  "auto",
		"net":  "ws",
		"tls":  "tls",
		"sni":  "example.com",
		"path": "/ws",
		"host": "example.com",
	}
	for k, v := range overrides {
		payload[k] = v
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return "vmess://" + base64.RawURLEncoding.EncodeToString(raw)
}

func TestParseVMessSuccess(t *testing.T) {
	cfg, err := Parse(vmessURI(t, nil))
	require.NoError(t, err)
	assert.Equal(t, "example.com", cfg.Host)
	assert.Equal(t, 443, cfg.Port)
	assert.Equal(t, testVMessID, cfg.Identity)
	assert.Equal(t, "test-node", cfg.PS)
	assert.True(t, cfg.Valid())

	settings := cfg.Outbound["streamSettings"].(map[string]any)
	assert.Equal(t, "tls", settings["security"])
}

func TestParseVMessRejectsNonUUIDIdentity(t *testing.T) {
	_, err := Parse(vmessURI(t, map[string]any{"id": "not-a-uuid"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotParseable)
}

func TestParseVMessRejectsBadBase64(t *testing.T) {
	_, err := Parse("vmess://not valid base64!!")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotParseable)
}

func TestParseVMessFragmentOverridesPS(t *testing.T) {
	cfg, err := Parse(vmessURI(t, nil) + "#from-fragment")
	require.NoError(t, err)
	assert.Equal(t, "from-fragment", cfg.PS)
}

func TestParseVLESSSuccess(t *testing.T) {
	uri := "vless://" + testVMessID + "@example.com:443?security=tls&type=ws&sni=example.com&path=%2Fws#my-node"
	cfg, err := Parse(uri)
	require.NoError(t, err)
	assert.Equal(t, "example.com", cfg.Host)
	assert.Equal(t, 443, cfg.Port)
	assert.Equal(t, testVMessID, cfg.Identity)
	assert.Equal(t, "my-node", cfg.PS)
}

func TestParseVLESSRealitySettings(t *testing.T) {
	uri := "vless://" + testVMessID + "@example.com:443?security=reality&sni=example.com&fp=chrome&pbk=abc&sid=01"
	cfg, err := Parse(uri)
	require.NoError(t, err)
	settings := cfg.Outbound["streamSettings"].(map[string]any)
	assert.Equal(t, "reality", settings["security"])
	_, hasTLS := settings["tlsSettings"]
	assert.False(t, hasTLS)
}

func TestParseVLESSRejectsNonUUIDIdentity(t *testing.T) {
	_, err := Parse("vless://not-a-uuid@example.com:443")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotParseable)
}

func TestParseTrojanSuccess(t *testing.T) {
	uri := "trojan://s3cr3t@example.com:443?sni=example.com#label"
	cfg, err := Parse(uri)
	require.NoError(t, err)
	assert.Equal(t, "example.com", cfg.Host)
	assert.Equal(t, 443, cfg.Port)
	assert.Equal(t, "s3cr3t", cfg.Identity)
	assert.Equal(t, "label", cfg.PS)
}

func TestParseTrojanMissingUserinfoFails(t *testing.T) {
	_, err := Parse("trojan://example.com:443")
	require.Error(t, err)
}

func TestParseShadowsocksPlainForm(t *testing.T) {
	uri := "ss://aes-256-gcm:password@example.com:8388#ss-node"
	cfg, err := Parse(uri)
	require.NoError(t, err)
	assert.Equal(t, "example.com", cfg.Host)
	assert.Equal(t, 8388, cfg.Port)
	assert.Equal(t, "aes-256-gcm:password", cfg.Identity)
	assert.Equal(t, "ss-node", cfg.PS)
}

func TestParseShadowsocksBase64UserinfoForm(t *testing.T) {
	userinfo := base64.RawURLEncoding.EncodeToString([]byte("aes-256-gcm:password"))
	uri := "ss://" + userinfo + "@example.com:8388#ss-node"
	cfg, err := Parse(uri)
	require.NoError(t, err)
	assert.Equal(t, "aes-256-gcm:password", cfg.Identity)
}

func TestParseShadowsocksFullyEncodedForm(t *testing.T) {
	body := base64.RawURLEncoding.EncodeToString([]byte("aes-256-gcm:password@example.com:8388"))
	uri := "ss://" + body + "#ss-node"
	cfg, err := Parse(uri)
	require.NoError(t, err)
	assert.Equal(t, "example.com", cfg.Host)
	assert.Equal(t, 8388, cfg.Port)
	assert.Equal(t, "aes-256-gcm:password", cfg.Identity)
}

func TestParseRejectsUnsupportedScheme(t *testing.T) {
	_, err := Parse("http://example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotParseable)
}

func TestParseRejectsMissingScheme(t *testing.T) {
	_, err := Parse("example.com:443")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotParseable)
}

func TestParseRejectsInvariantViolations(t *testing.T) {
	uri := "vless://" + testVMessID + "@0.0.0.0:443"
	_, err := Parse(uri)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotParseable)
}

func TestParseSetsURIField(t *testing.T) {
	uri := "trojan://s3cr3t@example.com:443"
	cfg, err := Parse(uri)
	require.NoError(t, err)
	assert.Equal(t, uri, cfg.URI)
}
