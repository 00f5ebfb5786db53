// Command hunter runs the discovery/validation/balancing core as a
// standalone headless process: load an ini behavior config, wire the
// built-in collaborators cmd/hunter ships by default, start the core,
// and block until a signal asks it to stop.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"hunterproxy/hunter"
	"hunterproxy/internal/collaborator"
	"hunterproxy/internal/fetcher"
	"hunterproxy/internal/logger"
)

func main() {
	configDir := flag.String("configdir", "configs", "directory holding hunter.ini")
	filesDir := flag.String("filesdir", "files", "directory for cache, seed, and report files")
	channels := flag.String("channels", "", "comma-separated channel/handle list to scrape")
	proxyPorts := flag.String("proxyports", "", "comma-separated local SOCKS5 ports to retry fetches through")
	fragmentMode := flag.Bool("fragment", false, "enable TLS ClientHello fragmentation in the engine config")
	rotatingSNI := flag.Bool("rotating-sni", false, "enable per-backend SNI rotation in the engine config")
	flag.Parse()

	if err := os.MkdirAll(*filesDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal: failed to create files dir %q: %v\n", *filesDir, err)
		os.Exit(1)
	}

	core := hunter.New()
	iniPath := filepath.Join(*configDir, "hunter.ini")
	if _, err := os.Stat(iniPath); os.IsNotExist(err) {
		iniPath = ""
	}

	cb := hunter.Callbacks{
		HTTP:      fetcher.DefaultHTTPClient{},
		Messaging: hunter.NoopMessaging{},
		Engine:    hunter.UnwiredEngine{},
		Progress:  collaborator.ProgressFunc(reportProgress),

		Channels:     splitNonEmpty(*channels),
		ProxyPorts:   parsePorts(*proxyPorts),
		FragmentMode: *fragmentMode,
		RotatingSNI:  *rotatingSNI,
	}

	if err := core.Init(*filesDir, iniPath, cb); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal: core init failed: %v\n", err)
		os.Exit(1)
	}

	if problems := core.ValidateConfig(); len(problems) > 0 {
		logger.Warn().Str("problems", strings.Join(problems, "; ")).Msg("starting with out-of-range config values")
	}

	if err := core.Start(); err != nil {
		logger.Error().Err(err).Msg("core start failed")
		os.Exit(1)
	}

	waitForSignal()

	if err := core.Stop(); err != nil {
		logger.Error().Err(err).Msg("core stop reported an error")
	}
	logger.Info().Msg("hunter shutdown complete")
}

func waitForSignal() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	logger.Info().Msg("hunter running, press Ctrl+C to stop")
	<-sigs
	logger.Info().Msg("signal received, shutting down")
}

func reportProgress(completed, total int) {
	logger.Debug().Int("completed", completed).Int("total", total).Msg("validation progress")
}

func splitNonEmpty(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parsePorts(csv string) []int {
	var out []int
	for _, p := range splitNonEmpty(csv) {
		var n int
		if _, err := fmt.Sscanf(p, "%d", &n); err == nil && n > 0 {
			out = append(out, n)
		}
	}
	return out
}
