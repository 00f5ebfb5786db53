package balancer

import (
	"context"
	"time"

	"hunterproxy/internal/logger"
)

// healthLoop wakes every HealthInterval, counts currently healthy
// backends, and rebuilds from availableConfigs when the healthy count
// has reached zero. It does not re-probe individual backends beyond
// that — the engine's own routing shields clients from transient dead
// backends between rebuilds.
func (b *Balancer) healthLoop(ctx context.Context) {
	defer b.wg.Done()
	l := logger.WithComponent("balancer")

	ticker := time.NewTicker(b.opts.HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.mu.Lock()
			b.stats.HealthChecks++
			healthy := 0
			for _, backend := range b.backends {
				if backend.Healthy {
					healthy++
				}
			}
			hasAvailable := len(b.availableConfigs) > 0
			b.mu.Unlock()

			l.Debug().Int("healthy", healthy).Msg("health tick")

			if healthy == 0 && hasAvailable {
				b.rebuild(ctx)
			}
		}
	}
}

// rebuild re-probes for Desired backends and, on success, atomically
// swaps them in and restarts the engine.
func (b *Balancer) rebuild(ctx context.Context) {
	l := logger.WithComponent("balancer")

	b.mu.Lock()
	b.state = StateRebuilding
	b.mu.Unlock()

	healthy := b.FindWorkingBackends(ctx, b.opts.Desired)
	if len(healthy) == 0 {
		l.Warn().Msg("rebuild found no working backends")
		b.mu.Lock()
		b.state = StateDegraded
		b.mu.Unlock()
		return
	}

	b.mu.Lock()
	b.backends = healthy
	b.stats.BackendSwaps++
	b.buildAndStartLocked(ctx)
	b.mu.Unlock()

	l.Info().Int("backends", len(healthy)).Msg("balancer rebuilt")
}
