// Package orchestrator drives the end-to-end discovery cycle: scrape,
// validate, tier, persist, and hand the result to the balancer, on a
// cadence it also owns as a long-lived autonomous loop.
package orchestrator

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"hunterproxy/internal/balancer"
	"hunterproxy/internal/cachestore"
	"hunterproxy/internal/channelscrape"
	"hunterproxy/internal/collaborator"
	"hunterproxy/internal/config"
	"hunterproxy/internal/fetcher"
	"hunterproxy/internal/logger"
	"hunterproxy/internal/model"
	"hunterproxy/internal/prioritizer"
	"hunterproxy/internal/reporter"
)

const (
	minScrapeBeforeCacheUnion = 500
	goldCap                   = 100
	silverCap                 = 200
	SeedFileName              = "balancer_seed.json"
	goldFileName              = "gold_configs.txt"
	silverFileName            = "silver_configs.txt"
	everyNthStatusReport      = 10
	cycleBackoff              = 60 * time.Second
	sleepSlice                = 1 * time.Second
)

// Options configures an Orchestrator.
type Options struct {
	FilesDir     string
	ListenPort   int
	ProbeURL     string
	Channels     []string
	ProxyPorts   []int
	FragmentMode bool
	RotatingSNI  bool
	SubBalancers []SubBalancer
}

// Orchestrator owns the cycle pipeline, its exclusivity lock, and the
// primary balancer plus any named sub-balancers.
type Orchestrator struct {
	cfg        *config.Store
	opts       Options
	listenPort int
	probeURL   string

	http     collaborator.HTTP
	fetcher  *fetcher.Fetcher
	scraper  *channelscrape.Scraper
	cache    *cachestore.Store
	reporter *reporter.Reporter
	engine   collaborator.Engine
	progress collaborator.Progress

	primary      *balancer.Balancer
	subBalancers map[string]*balancer.Balancer

	cycleMu    sync.Mutex
	running    bool
	stopCh     chan struct{}
	cycleCount int
	lastCycle  time.Time
}

// New wires an Orchestrator from its configuration store and external
// collaborators.
func New(cfg *config.Store, opts Options, http collaborator.HTTP, messaging collaborator.Messaging, engine collaborator.Engine, progress collaborator.Progress) *Orchestrator {
	o := &Orchestrator{
		cfg:          cfg,
		opts:         opts,
		listenPort:   opts.ListenPort,
		probeURL:     opts.ProbeURL,
		http:         http,
		fetcher:      fetcher.New(http),
		scraper:      channelscrape.New(messaging, http),
		cache:        cachestore.New(opts.FilesDir),
		reporter:     reporter.New(messaging),
		engine:       engine,
		progress:     progress,
		subBalancers: make(map[string]*balancer.Balancer),
	}

	o.primary = balancer.New(balancer.Options{
		ListenPort:     opts.ListenPort,
		Desired:        int(cfg.Int64(config.KeyDesiredBackends)),
		HealthInterval: time.Duration(cfg.Int64(config.KeyHealthInterval)) * time.Second,
		ProbeURL:       opts.ProbeURL,
		FragmentMode:   opts.FragmentMode,
		RotatingSNI:    opts.RotatingSNI,
	}, engine)

	for _, sb := range opts.SubBalancers {
		o.subBalancers[sb.Name] = balancer.New(balancer.Options{
			ListenPort:     sb.Port,
			Desired:        int(cfg.Int64(config.KeyDesiredBackends)),
			HealthInterval: time.Duration(cfg.Int64(config.KeyHealthInterval)) * time.Second,
			ProbeURL:       opts.ProbeURL,
		}, engine)
	}

	return o
}

// Balancer returns the primary balancer instance.
func (o *Orchestrator) Balancer() *balancer.Balancer { return o.primary }

// RunCycle executes one full scrape -> validate -> tier -> persist ->
// balance -> report pipeline under the orchestrator's exclusive cycle
// lock; overlapping calls queue rather than run concurrently.
func (o *Orchestrator) RunCycle(ctx context.Context) error {
	o.cycleMu.Lock()
	defer o.cycleMu.Unlock()

	l := logger.WithComponent("orchestrator")
	l.Info().Msg("cycle starting")

	raw := o.scrape(ctx)
	if len(raw) < minScrapeBeforeCacheUnion {
		cached, err := o.cache.Load(0, true)
		if err == nil {
			for uri := range cached {
				raw = append(raw, uri)
			}
		}
	}

	if _, err := o.cache.Save(raw, cachestore.Raw); err != nil {
		o.cache.RecordFailure()
		l.Warn().Err(err).Msg("failed to save raw cache")
	} else {
		o.cache.RecordSuccess()
	}

	deduped := dedupe(raw)
	prioritized := prioritizer.Prioritize(deduped)
	maxTotal := int(o.cfg.Int64(config.KeyMaxTotal))
	if maxTotal > 0 && len(prioritized) > maxTotal {
		prioritized = prioritized[:maxTotal]
	}

	timeout := time.Duration(o.cfg.Int64(config.KeyTimeoutSeconds)) * time.Second
	results := o.validate(ctx, prioritized, timeout, o.progress)

	sort.Slice(results, func(i, j int) bool { return results[i].LatencyMs < results[j].LatencyMs })

	validatedURIs := make([]string, len(results))
	for i, r := range results {
		validatedURIs[i] = r.URI
	}
	if _, err := o.cache.Save(validatedURIs, cachestore.Working); err != nil {
		l.Warn().Err(err).Msg("failed to save working cache")
	}

	gold, silver := tierSplit(results)

	if err := cachestore.OverwriteLines(filepath.Join(o.opts.FilesDir, goldFileName), urisOf(gold)); err != nil {
		l.Warn().Err(err).Msg("failed to overwrite gold file")
	}
	if err := cachestore.OverwriteLines(filepath.Join(o.opts.FilesDir, silverFileName), urisOf(silver)); err != nil {
		l.Warn().Err(err).Msg("failed to overwrite silver file")
	}

	combined := append(append([]model.BenchResult{}, gold...), silver...)
	o.updateBalancers(ctx, combined)

	if err := cachestore.SaveSeed(filepath.Join(o.opts.FilesDir, SeedFileName), seedEntriesOf(combined), time.Now().Unix()); err != nil {
		l.Warn().Err(err).Msg("failed to persist balancer seed")
	}

	o.sendReports(ctx, gold, silver)

	o.cycleCount++
	o.lastCycle = time.Now()
	l.Info().Int("gold", len(gold)).Int("silver", len(silver)).Msg("cycle complete")
	return nil
}

func (o *Orchestrator) scrape(ctx context.Context) []string {
	perChannelCap := int(o.cfg.Int64(config.KeyTelegramLimit))
	channelURIs := o.scraper.ScrapeChannels(ctx, o.opts.Channels, perChannelCap)
	channelURIs = append(channelURIs, o.scraper.ScrapeWebPreview(ctx, o.opts.Channels, perChannelCap)...)

	bankURIs := []string{}
	workers := int(o.cfg.Int64(config.KeyMaxWorkers))
	perRequestTimeout := time.Duration(o.cfg.Int64(config.KeyTimeoutSeconds)) * time.Second
	bankDeadline := 2 * time.Minute

	for _, bank := range fetcher.Order {
		urls := fetcher.Banks[bank]
		found := o.fetcher.FetchBank(ctx, urls, o.opts.ProxyPorts, workers, perRequestTimeout, bankDeadline)
		bankURIs = append(bankURIs, found...)
	}

	all := make([]string, 0, len(channelURIs)+len(bankURIs))
	all = append(all, channelURIs...)
	all = append(all, bankURIs...)
	return all
}

func (o *Orchestrator) updateBalancers(ctx context.Context, combined []model.BenchResult) {
	rest := combined
	for _, sb := range o.opts.SubBalancers {
		matched, remaining := splitByPredicate(rest, sb.Predicate)
		rest = remaining
		if instance, ok := o.subBalancers[sb.Name]; ok {
			instance.UpdateAvailable(ctx, seedEntriesOf(matched))
		}
	}
	o.primary.UpdateAvailable(ctx, seedEntriesOf(rest))
}

func (o *Orchestrator) sendReports(ctx context.Context, gold, silver []model.BenchResult) {
	if len(gold) == 0 && len(silver) == 0 {
		o.reporter.ReportAdvisory(ctx, filepath.Join(o.opts.FilesDir, SeedFileName))
		return
	}
	maxLines := int(o.cfg.Int64(config.KeyMaxTotal))
	o.reporter.ReportGold(ctx, gold)
	o.reporter.ReportFiles(ctx, urisOf(gold), urisOf(silver), maxLines)
}

// AutonomousLoop runs a cycle immediately, then wakes every sleepSlice
// to re-check cancellation, running a new cycle once the configured
// interval has elapsed since the last one. A cycle-level error backs
// off for cycleBackoff before resuming, and every Nth cycle emits a
// status report in addition to the per-cycle reports.
func (o *Orchestrator) AutonomousLoop(ctx context.Context) {
	l := logger.WithComponent("orchestrator")
	o.stopCh = make(chan struct{})
	o.running = true
	defer func() { o.running = false }()

	runOnce := func() {
		if err := o.RunCycle(ctx); err != nil {
			l.Error().Err(err).Msg("cycle failed, backing off")
			select {
			case <-time.After(cycleBackoff):
			case <-o.stopCh:
			case <-ctx.Done():
			}
			return
		}
		if o.cycleCount%everyNthStatusReport == 0 {
			o.reporter.ReportStatus(ctx, o.primary.Status())
		}
	}

	runOnce()

	interval := time.Duration(o.cfg.Int64(config.KeySleepSeconds)) * time.Second
	for {
		select {
		case <-o.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		select {
		case <-o.stopCh:
			return
		case <-ctx.Done():
			return
		case <-time.After(sleepSlice):
		}

		if time.Since(o.lastCycle) >= interval {
			runOnce()
		}
	}
}

// Stop signals AutonomousLoop to exit at its next cancellation check.
func (o *Orchestrator) Stop() {
	if o.stopCh != nil {
		select {
		case <-o.stopCh:
		default:
			close(o.stopCh)
		}
	}
}

// IsRunning reports whether the autonomous loop is currently active.
func (o *Orchestrator) IsRunning() bool {
	return o.running
}

func dedupe(uris []string) []string {
	seen := make(map[string]struct{}, len(uris))
	out := make([]string, 0, len(uris))
	for _, u := range uris {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

func tierSplit(results []model.BenchResult) (gold, silver []model.BenchResult) {
	for _, r := range results {
		switch r.Tier {
		case model.TierGold:
			if len(gold) < goldCap {
				gold = append(gold, r)
			}
		case model.TierSilver:
			if len(silver) < silverCap {
				silver = append(silver, r)
			}
		}
	}
	return gold, silver
}

func urisOf(results []model.BenchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.URI
	}
	return out
}

func seedEntriesOf(results []model.BenchResult) []model.SeedEntry {
	out := make([]model.SeedEntry, len(results))
	for i, r := range results {
		out[i] = model.SeedEntry{
			ID:        uuid.NewSHA1(uuid.NameSpaceURL, []byte(r.URI)).String(),
			URI:       r.URI,
			LatencyMs: r.LatencyMs,
		}
	}
	return out
}

// defaultGeminiPredicate is the generalized form of the reference
// "PS contains gemini/gmn" secondary balancer selection, kept as the
// one concrete SubBalancer wired by default.
func defaultGeminiPredicate(ps string) bool {
	lower := strings.ToLower(ps)
	return strings.Contains(lower, "gemini") || strings.Contains(lower, "gmn")
}

// DefaultSubBalancers returns the single named sub-balancer the
// reference deployment ran, expressed as a predicate-selected instance
// rather than a hardcoded second balancer.
func DefaultSubBalancers(basePort int) []SubBalancer {
	return []SubBalancer{
		{Name: "gemini", Predicate: defaultGeminiPredicate, Port: basePort + 1},
	}
}
