// Package model holds the data types shared across the hunter pipeline:
// the parsed outbound descriptor, benchmark results, and the balancer's
// live backend record.
package model

import "time"

// Tier classifies a BenchResult by latency.
type Tier string

const (
	TierGold   Tier = "gold"
	TierSilver Tier = "silver"
	TierDead   Tier = "dead"
)

// TierFor is the pure latency->tier classification used everywhere a
// BenchResult is produced or re-checked.
func TierFor(latencyMs float64) Tier {
	switch {
	case latencyMs < 200:
		return TierGold
	case latencyMs >= 2000:
		return TierDead
	default:
		return TierSilver
	}
}

// ParsedConfig is the normalized descriptor produced by the URI parser
// for any of the supported schemes.
type ParsedConfig struct {
	URI      string
	Outbound map[string]any
	Host     string
	Port     int
	Identity string
	PS       string
}

// Valid reports whether the parsed config satisfies the data-model
// invariants every parser must enforce before returning successfully.
func (p *ParsedConfig) Valid() bool {
	return p.Host != "" && p.Host != "0.0.0.0" && p.Port > 0 && p.Port <= 65535 && p.Identity != ""
}

// BenchResult is the immutable outcome of benchmarking one ParsedConfig.
type BenchResult struct {
	ParsedConfig
	LatencyMs   float64
	IP          string
	CountryCode string
	Region      string
	Tier        Tier
}

// Backend is a single live proxy destination managed by the Balancer.
type Backend struct {
	URI     string
	Latency float64
	Healthy bool
	AddedAt time.Time
}

// SeedEntry is one record in the balancer's persisted seed file. ID is
// a deterministic content-addressed key (derived from URI) so the same
// config collapses to the same ID across cycles even as its latency
// changes.
type SeedEntry struct {
	ID        string  `json:"id"`
	URI       string  `json:"uri"`
	LatencyMs float64 `json:"latency_ms"`
}

// SeedFile is the on-disk shape of the balancer seed JSON.
type SeedFile struct {
	SavedAt int64       `json:"saved_at"`
	Configs []SeedEntry `json:"configs"`
}

const MaxSeedEntries = 1000
