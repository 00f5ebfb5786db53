package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeIni(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hunter.ini")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadFileOverlaysNonZeroValues(t *testing.T) {
	path := writeIni(t, "[hunter]\nmax_workers = 25\nlisten_port = 20000\n")
	s := NewStore()

	require.NoError(t, LoadFile(s, path))
	assert.Equal(t, int64(25), s.Int64(KeyMaxWorkers))
	assert.Equal(t, int64(20000), s.Int64(KeyListenPort))
	// unset keys keep their constructor defaults
	assert.Equal(t, int64(500), s.Int64(KeyScanLimit))
}

func TestLoadFileMissingPathReturnsError(t *testing.T) {
	s := NewStore()
	err := LoadFile(s, filepath.Join(t.TempDir(), "missing.ini"))
	assert.Error(t, err)
}

func TestLoadFileEnvOverridesIniValue(t *testing.T) {
	path := writeIni(t, "[hunter]\nmax_workers = 25\n")
	s := NewStore()

	t.Setenv("HUNTER_MAX_WORKERS", "77")
	require.NoError(t, LoadFile(s, path))
	assert.Equal(t, int64(77), s.Int64(KeyMaxWorkers))
}
