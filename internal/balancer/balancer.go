// Package balancer maintains a self-healing pool of healthy proxy
// backends behind one local SOCKS listener: it owns the state machine
// for starting, rebuilding, and health-checking the balanced engine
// instance described by enginecfg.
package balancer

import (
	"context"
	"hash/fnv"
	"sort"
	"strconv"
	"sync"
	"time"

	"hunterproxy/internal/benchmarker"
	"hunterproxy/internal/collaborator"
	"hunterproxy/internal/enginecfg"
	"hunterproxy/internal/logger"
	"hunterproxy/internal/model"
	"hunterproxy/internal/parser"
)

const (
	probeTimeout  = 8 * time.Second
	warmupSleep   = 1500 * time.Millisecond
	probePortSpan = 50
	probePortBase = 100
)

// Options configures one Balancer instance.
type Options struct {
	ListenPort       int
	Desired          int
	HealthInterval   time.Duration
	ProbeURL         string
	FragmentMode     bool
	RotatingSNI      bool
	FragmentOutbound map[string]any
}

// Balancer owns a single balanced-engine instance: a set of healthy
// backends, the engine handle currently serving them, and a background
// health loop that rebuilds on total backend loss.
type Balancer struct {
	opts   Options
	engine collaborator.Engine
	bench  *benchmarker.Benchmarker

	mu               sync.Mutex
	state            State
	handle           int
	availableConfigs []model.SeedEntry
	backends         []model.Backend
	failed           map[string]struct{}
	stats            Stats

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New builds a Balancer bound to engine, with no backends and no
// active engine handle.
func New(opts Options, engine collaborator.Engine) *Balancer {
	return &Balancer{
		opts:   opts,
		engine: engine,
		bench:  benchmarker.New(engine, opts.ProbeURL),
		state:  StateIdle,
		handle: -1,
		failed: make(map[string]struct{}),
	}
}

// Start seeds availableConfigs, synchronously looks for Desired
// working backends, builds and starts the engine if any are found, and
// launches the background health loop.
func (b *Balancer) Start(ctx context.Context, seed []model.SeedEntry) {
	l := logger.WithComponent("balancer")
	b.mu.Lock()
	b.availableConfigs = seed
	b.state = StateStarting
	b.mu.Unlock()

	healthy := b.FindWorkingBackends(ctx, b.opts.Desired)

	b.mu.Lock()
	b.backends = healthy
	if len(healthy) > 0 {
		b.buildAndStartLocked(ctx)
	} else {
		b.state = StateDegraded
	}
	b.mu.Unlock()

	b.stopCh = make(chan struct{})
	b.wg.Add(1)
	go b.healthLoop(ctx)

	l.Info().Int("healthy", len(healthy)).Int("port", b.opts.ListenPort).Msg("balancer started")
}

// UpdateAvailable replaces availableConfigs. If the balancer is
// running with zero current backends, it triggers an immediate
// rebuild on the caller's goroutine.
func (b *Balancer) UpdateAvailable(ctx context.Context, seed []model.SeedEntry) {
	b.mu.Lock()
	b.availableConfigs = seed
	needsRebuild := b.state != StateIdle && b.state != StateStopping && len(b.backends) == 0
	b.mu.Unlock()

	if needsRebuild {
		b.rebuild(ctx)
	}
}

// Stop signals the health loop to exit, joins it, and stops the
// active engine handle if any.
func (b *Balancer) Stop() {
	b.mu.Lock()
	if b.state == StateIdle || b.state == StateStopping {
		b.mu.Unlock()
		return
	}
	b.state = StateStopping
	stopCh := b.stopCh
	b.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
	}
	b.wg.Wait()

	b.mu.Lock()
	if b.handle >= 0 {
		b.engine.StopProxy(b.handle)
		b.handle = -1
	}
	b.state = StateIdle
	b.mu.Unlock()
}

// Status returns a point-in-time snapshot of the balancer's running
// state and lifetime counters.
func (b *Balancer) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	healthy := 0
	for _, backend := range b.backends {
		if backend.Healthy {
			healthy++
		}
	}

	return Status{
		Running:       b.state == StateRunning || b.state == StateDegraded,
		Port:          b.opts.ListenPort,
		HealthyCount:  healthy,
		TotalBackends: len(b.backends),
		Stats:         b.stats,
	}
}

// FindWorkingBackends snapshots availableConfigs, probes candidates in
// ascending latency order (skipping URIs already in the sticky failed
// set for this run), and returns up to k accepted Backends.
func (b *Balancer) FindWorkingBackends(ctx context.Context, k int) []model.Backend {
	l := logger.WithComponent("balancer")

	b.mu.Lock()
	candidates := make([]model.SeedEntry, len(b.availableConfigs))
	copy(candidates, b.availableConfigs)
	b.mu.Unlock()

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].LatencyMs < candidates[j].LatencyMs
	})

	var found []model.Backend
	for _, candidate := range candidates {
		if len(found) >= k {
			break
		}

		b.mu.Lock()
		_, skip := b.failed[candidate.URI]
		b.mu.Unlock()
		if skip {
			continue
		}

		parsed, err := parser.Parse(candidate.URI)
		if err != nil {
			b.markFailed(candidate.URI)
			continue
		}

		port := probePort(b.opts.ListenPort, candidate.URI)
		latency, ok, err := b.bench.Benchmark(ctx, parsed, port, probeTimeout)
		if err != nil || !ok {
			l.Debug().Str("uri", candidate.URI).Err(err).Msg("probe failed, marking sticky-failed")
			b.markFailed(candidate.URI)
			continue
		}

		found = append(found, model.Backend{
			URI:     candidate.URI,
			Latency: latency,
			Healthy: true,
			AddedAt: time.Now(),
		})
	}
	return found
}

func (b *Balancer) markFailed(uri string) {
	b.mu.Lock()
	b.failed[uri] = struct{}{}
	b.mu.Unlock()
}

// buildAndStartLocked must be called with b.mu held. It stops any
// prior engine handle, assembles the composite config from the current
// backends, starts the engine, and updates restart bookkeeping.
func (b *Balancer) buildAndStartLocked(ctx context.Context) {
	l := logger.WithComponent("balancer")

	if b.handle >= 0 {
		b.engine.StopProxy(b.handle)
		b.handle = -1
	}

	backendSpecs := make([]enginecfg.BackendSpec, 0, len(b.backends))
	for i, backend := range b.backends {
		parsed, err := parser.Parse(backend.URI)
		if err != nil {
			continue
		}
		backendSpecs = append(backendSpecs, enginecfg.BackendSpec{
			Tag:      tagFor(i),
			Outbound: parsed.Outbound,
		})
	}

	configJSON, err := enginecfg.Build(enginecfg.BuildOptions{
		ListenPort:       b.opts.ListenPort,
		Backends:         backendSpecs,
		FragmentMode:     b.opts.FragmentMode,
		RotatingSNI:      b.opts.RotatingSNI,
		FragmentOutbound: b.opts.FragmentOutbound,
	})
	if err != nil {
		l.Error().Err(err).Msg("failed to build composite engine config")
		b.state = StateDegraded
		return
	}

	handle, err := b.engine.StartProxy(ctx, configJSON, b.opts.ListenPort)
	if err != nil || handle < 0 {
		l.Error().Err(err).Msg("engine failed to start composite config")
		b.state = StateDegraded
		return
	}

	b.handle = handle
	b.state = StateRunning
	b.stats.Restarts++
	b.stats.LastRestart = time.Now().Unix()

	time.Sleep(warmupSleep)
	l.Info().Int("backends", len(backendSpecs)).Msg("balancer engine (re)started")
}

func tagFor(i int) string {
	return "proxy-" + strconv.Itoa(i)
}

func probePort(listenPort int, uri string) int {
	h := fnv.New32a()
	h.Write([]byte(uri))
	return listenPort + probePortBase + int(h.Sum32()%probePortSpan)
}
