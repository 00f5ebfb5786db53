package cachestore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hunterproxy/internal/model"
)

func TestSaveAppendsDeduplicated(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	n, err := s.Save([]string{"trojan://a@h:1", "trojan://b@h:1"}, Raw)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.Save([]string{"trojan://a@h:1", "trojan://c@h:1"}, Raw)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "only the new, non-duplicate line should be appended")
}

func TestLoadMergesRawAndWorkingUnlessWorkingOnly(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	_, err := s.Save([]string{"trojan://raw@h:1"}, Raw)
	require.NoError(t, err)
	_, err = s.Save([]string{"trojan://working@h:1"}, Working)
	require.NoError(t, err)

	all, err := s.Load(0, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	workingOnly, err := s.Load(0, true)
	require.NoError(t, err)
	assert.Len(t, workingOnly, 1)
	_, ok := workingOnly["trojan://working@h:1"]
	assert.True(t, ok)
}

func TestLoadSkipsNonURILines(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	_, err := s.Save([]string{"not a uri", "trojan://real@h:1"}, Raw)
	require.NoError(t, err)

	got, err := s.Load(0, false)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFailureThresholdTripsShouldUseCache(t *testing.T) {
	s := New(t.TempDir())
	assert.False(t, s.ShouldUseCache())
	s.RecordFailure()
	assert.False(t, s.ShouldUseCache())
	s.RecordFailure()
	assert.True(t, s.ShouldUseCache())
	s.RecordSuccess()
	assert.False(t, s.ShouldUseCache())
}

func TestSaveSeedSortsAscendingAndCaps(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.json")

	entries := []model.SeedEntry{
		{ID: "slow", URI: "trojan://slow@h:1", LatencyMs: 900},
		{ID: "fast", URI: "trojan://fast@h:1", LatencyMs: 50},
		{ID: "mid", URI: "trojan://mid@h:1", LatencyMs: 300},
	}
	require.NoError(t, SaveSeed(path, entries, 12345))

	doc, err := LoadSeed(path)
	require.NoError(t, err)
	require.Len(t, doc.Configs, 3)
	assert.Equal(t, "fast", doc.Configs[0].ID)
	assert.Equal(t, "mid", doc.Configs[1].ID)
	assert.Equal(t, "slow", doc.Configs[2].ID)
	assert.EqualValues(t, 12345, doc.SavedAt)
}

func TestSaveSeedDoesNotMutateCallerSlice(t *testing.T) {
	entries := []model.SeedEntry{
		{ID: "b", LatencyMs: 2},
		{ID: "a", LatencyMs: 1},
	}
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, SaveSeed(path, entries, 0))
	assert.Equal(t, "b", entries[0].ID, "SaveSeed must sort a copy, not the caller's slice")
}

func TestLoadSeedMissingFileReturnsEmpty(t *testing.T) {
	doc, err := LoadSeed(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, doc.Configs)
}

func TestOverwriteLinesReplacesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lines.txt")
	require.NoError(t, OverwriteLines(path, []string{"a", "b"}))
	require.NoError(t, OverwriteLines(path, []string{"c"}))

	lines, err := readLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, lines)
}
