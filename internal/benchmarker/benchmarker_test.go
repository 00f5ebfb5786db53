package benchmarker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hunterproxy/internal/model"
)

type stubEngine struct {
	startErr   error
	statusCode int
	latencyMs  float64
	testErr    error
	stopped    []int
}

func (s *stubEngine) StartProxy(ctx context.Context, configJSON []byte, listenPort int) (int, error) {
	if s.startErr != nil {
		return -1, s.startErr
	}
	return 1, nil
}

func (s *stubEngine) StopProxy(handleID int) {
	s.stopped = append(s.stopped, handleID)
}

func (s *stubEngine) TestURL(ctx context.Context, url string, listenPort int, timeout time.Duration) (int, float64, error) {
	return s.statusCode, s.latencyMs, s.testErr
}

func sampleConfig() *model.ParsedConfig {
	return &model.ParsedConfig{
		Outbound: map[string]any{"protocol": "vless"},
		Host:     "example.com",
		Port:     443,
		Identity: "id",
	}
}

func TestBenchmarkAcceptsSuccessStatus(t *testing.T) {
	engine := &stubEngine{statusCode: 204, latencyMs: 123}
	b := New(engine, "https://example.com/generate_204")

	latency, ok, err := b.Benchmark(context.Background(), sampleConfig(), 11100, time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 123.0, latency)
	assert.Len(t, engine.stopped, 1, "the throwaway handle must always be stopped")
}

func TestBenchmarkRejectsServerErrorStatus(t *testing.T) {
	engine := &stubEngine{statusCode: 500, latencyMs: 50}
	b := New(engine, "https://example.com/generate_204")

	_, ok, err := b.Benchmark(context.Background(), sampleConfig(), 11101, time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBenchmarkPropagatesEngineStartFailure(t *testing.T) {
	engine := &stubEngine{startErr: assertErr("engine down")}
	b := New(engine, "https://example.com/generate_204")

	_, ok, err := b.Benchmark(context.Background(), sampleConfig(), 11102, time.Second)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestBenchmarkPropagatesProbeFailure(t *testing.T) {
	engine := &stubEngine{statusCode: 0, testErr: assertErr("probe timeout")}
	b := New(engine, "https://example.com/generate_204")

	_, ok, err := b.Benchmark(context.Background(), sampleConfig(), 11103, time.Second)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestCreateBenchResultAssignsTierAndRegion(t *testing.T) {
	parsed := sampleConfig()
	result := CreateBenchResult(parsed, 150, "1.2.3.4", "JP")
	assert.Equal(t, model.TierGold, result.Tier)
	assert.Equal(t, "Asia", result.Region)
	assert.Equal(t, "1.2.3.4", result.IP)
}

func TestCreateBenchResultUnknownCountryFallsBackToOther(t *testing.T) {
	result := CreateBenchResult(sampleConfig(), 150, "", "")
	assert.Equal(t, "Other", result.Region)
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
