package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierForBoundaries(t *testing.T) {
	assert.Equal(t, TierGold, TierFor(0))
	assert.Equal(t, TierGold, TierFor(199))
	assert.Equal(t, TierSilver, TierFor(200))
	assert.Equal(t, TierSilver, TierFor(1999))
	assert.Equal(t, TierDead, TierFor(2000))
	assert.Equal(t, TierDead, TierFor(5000))
}

func TestParsedConfigValidRejectsPlaceholderHost(t *testing.T) {
	cfg := ParsedConfig{Host: "0.0.0.0", Port: 443, Identity: "x"}
	assert.False(t, cfg.Valid())
}

func TestParsedConfigValidRejectsEmptyHost(t *testing.T) {
	cfg := ParsedConfig{Host: "", Port: 443, Identity: "x"}
	assert.False(t, cfg.Valid())
}

func TestParsedConfigValidRejectsOutOfRangePort(t *testing.T) {
	cfg := ParsedConfig{Host: "example.com", Port: 0, Identity: "x"}
	assert.False(t, cfg.Valid())

	cfg.Port = 70000
	assert.False(t, cfg.Valid())
}

func TestParsedConfigValidRejectsEmptyIdentity(t *testing.T) {
	cfg := ParsedConfig{Host: "example.com", Port: 443, Identity: ""}
	assert.False(t, cfg.Valid())
}

func TestParsedConfigValidAcceptsWellFormedConfig(t *testing.T) {
	cfg := ParsedConfig{Host: "example.com", Port: 443, Identity: "x"}
	assert.True(t, cfg.Valid())
}
