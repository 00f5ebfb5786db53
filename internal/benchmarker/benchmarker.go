// Package benchmarker spins up a throwaway proxy instance per
// candidate config, probes it through an external engine, and reports
// the observed latency.
package benchmarker

import (
	"context"
	"encoding/json"
	"time"

	"hunterproxy/internal/collaborator"
	"hunterproxy/internal/herr"
	"hunterproxy/internal/logger"
	"hunterproxy/internal/model"
)

const warmupDelay = 2 * time.Second

var europeanCodes = []string{
	"AL", "AD", "AT", "BY", "BE", "BA", "BG", "HR", "CY", "CZ", "DK", "EE",
	"FO", "FI", "FR", "DE", "GI", "GR", "HU", "IS", "IE", "IT", "XK", "LV",
	"LI", "LT", "LU", "MK", "MT", "MD", "MC", "ME", "NL", "NO", "PL", "PT",
	"RO", "RU", "SM", "RS", "SK", "SI", "ES", "SE", "CH", "UA", "GB", "VA",
}

var asianCodes = []string{
	"AF", "AM", "AZ", "BH", "BD", "BT", "BN", "KH", "CN", "GE", "HK", "IN",
	"ID", "IR", "IQ", "IL", "JP", "JO", "KZ", "KW", "KG", "LA", "LB", "MO",
	"MY", "MV", "MN", "MM", "NP", "KP", "OM", "PK", "PS", "PH", "QA", "SA",
	"SG", "KR", "LK", "SY", "TW", "TJ", "TH", "TL", "TR", "TM", "AE", "UZ",
	"VN", "YE",
}

var africanCodes = []string{
	"DZ", "AO", "BJ", "BW", "BF", "BI", "CV", "CM", "CF", "TD", "KM", "CD",
	"CG", "DJ", "EG", "GQ", "ER", "SZ", "ET", "GA", "GM", "GH", "GN", "GW",
	"CI", "KE", "LS", "LR", "LY", "MG", "MW", "ML", "MR", "MU", "YT", "MA",
	"MZ", "NA", "NE", "NG", "RE", "RW", "SH", "ST", "SN", "SC", "SL", "SO",
	"ZA", "SS", "SD", "TZ", "TG", "TN", "UG", "EH", "ZM", "ZW",
}

var regionsByCountry = buildRegionTable()

func buildRegionTable() map[string]string {
	table := make(map[string]string, len(europeanCodes)+len(asianCodes)+len(africanCodes)+2)
	for _, cc := range europeanCodes {
		table[cc] = "Europe"
	}
	for _, cc := range asianCodes {
		table[cc] = "Asia"
	}
	for _, cc := range africanCodes {
		table[cc] = "Africa"
	}
	table["US"] = "USA"
	table["CA"] = "Canada"
	return table
}

func regionFor(countryCode string) string {
	if region, ok := regionsByCountry[countryCode]; ok {
		return region
	}
	return "Other"
}

// Benchmarker drives a single-backend proxy lifecycle for each probe
// through an external Engine collaborator.
type Benchmarker struct {
	engine   collaborator.Engine
	probeURL string
}

// New builds a Benchmarker that issues probes against probeURL through
// engine.
func New(engine collaborator.Engine, probeURL string) *Benchmarker {
	return &Benchmarker{engine: engine, probeURL: probeURL}
}

// Benchmark spins up a one-outbound proxy config on localPort, probes
// it, and returns the observed latency in milliseconds. ok is false if
// the engine could not start or the probe did not qualify as a pass.
func (b *Benchmarker) Benchmark(ctx context.Context, parsed *model.ParsedConfig, localPort int, timeout time.Duration) (latencyMs float64, ok bool, err error) {
	configJSON, err := buildSingleOutboundConfig(parsed, localPort)
	if err != nil {
		return 0, false, herr.Wrap(herr.EngineStart, err)
	}

	handle, err := b.engine.StartProxy(ctx, configJSON, localPort)
	if err != nil || handle < 0 {
		return 0, false, herr.Wrap(herr.EngineStart, err)
	}
	defer b.engine.StopProxy(handle)

	select {
	case <-time.After(warmupDelay):
	case <-ctx.Done():
		return 0, false, herr.Wrap(herr.Probe, ctx.Err())
	}

	statusCode, latency, err := b.engine.TestURL(ctx, b.probeURL, localPort, timeout)
	if err != nil {
		return 0, false, herr.Wrap(herr.Probe, err)
	}
	if !accepts(statusCode) {
		return 0, false, nil
	}
	return latency, true, nil
}

func accepts(statusCode int) bool {
	return statusCode > 0 && (statusCode < 400 || statusCode == 204)
}

// CreateBenchResult attaches the latency-derived tier and a country-code
// derived region to a successfully benchmarked config.
func CreateBenchResult(parsed *model.ParsedConfig, latencyMs float64, ip, countryCode string) *model.BenchResult {
	return &model.BenchResult{
		ParsedConfig: *parsed,
		LatencyMs:    latencyMs,
		IP:           ip,
		CountryCode:  countryCode,
		Region:       regionFor(countryCode),
		Tier:         model.TierFor(latencyMs),
	}
}

func buildSingleOutboundConfig(parsed *model.ParsedConfig, localPort int) ([]byte, error) {
	cfg := map[string]any{
		"log": map[string]any{"loglevel": "warning"},
		"inbounds": []map[string]any{
			{
				"port":     localPort,
				"listen":   "127.0.0.1",
				"protocol": "socks",
				"settings": map[string]any{"auth": "noauth", "udp": true},
			},
		},
		"outbounds": []map[string]any{parsed.Outbound},
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		l := logger.WithComponent("benchmarker")
		l.Error().Err(err).Msg("failed to marshal single-outbound config")
		return nil, err
	}
	return data, nil
}
