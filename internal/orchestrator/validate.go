package orchestrator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"hunterproxy/internal/benchmarker"
	"hunterproxy/internal/collaborator"
	"hunterproxy/internal/config"
	"hunterproxy/internal/logger"
	"hunterproxy/internal/model"
	"hunterproxy/internal/parser"
)

const progressEvery = 10

// validate benchmarks every URI in uris through a bounded worker pool
// backed by a dedicated port pool, and returns every BenchResult whose
// probe passed, dead tier included; tierSplit drops the dead ones.
func (o *Orchestrator) validate(ctx context.Context, uris []string, timeout time.Duration, progress collaborator.Progress) []model.BenchResult {
	l := logger.WithComponent("orchestrator")

	workers := o.cfg.Int64(config.KeyMaxWorkers)
	if int(workers) > len(uris) {
		workers = int64(len(uris))
	}
	if workers > 200 {
		workers = 200
	}
	if workers <= 0 || len(uris) == 0 {
		return nil
	}

	pool := newPortPool(o.listenPort+1000, int(workers))
	bench := benchmarker.New(o.engine, o.probeURL)

	var (
		mu        sync.Mutex
		results   []model.BenchResult
		completed int64
		index     int64
		wg        sync.WaitGroup
	)

	nextURI := func() (string, bool) {
		i := atomic.AddInt64(&index, 1) - 1
		if int(i) >= len(uris) {
			return "", false
		}
		return uris[i], true
	}

	worker := func() {
		defer wg.Done()
		for {
			if ctx.Err() != nil {
				return
			}
			uri, ok := nextURI()
			if !ok {
				return
			}

			parsed, err := parser.Parse(uri)
			if err != nil {
				bumpProgress(&completed, progress, len(uris))
				continue
			}

			port := pool.checkout()
			latency, passed, err := func() (float64, bool, error) {
				defer pool.checkin(port)
				return bench.Benchmark(ctx, parsed, port, timeout)
			}()

			if err != nil || !passed {
				bumpProgress(&completed, progress, len(uris))
				continue
			}

			ip, countryCode := benchmarker.ResolveRegion(ctx, o.http, parsed.Host)
			result := benchmarker.CreateBenchResult(parsed, latency, ip, countryCode)
			mu.Lock()
			results = append(results, *result)
			mu.Unlock()

			bumpProgress(&completed, progress, len(uris))
		}
	}

	for i := int64(0); i < workers; i++ {
		wg.Add(1)
		go worker()
	}
	wg.Wait()

	l.Info().Int("input", len(uris)).Int("passed", len(results)).Msg("validation batch complete")
	return results
}

func bumpProgress(completed *int64, progress collaborator.Progress, total int) {
	n := atomic.AddInt64(completed, 1)
	if progress != nil && n%progressEvery == 0 {
		progress.OnProgress(int(n), total)
	}
}
