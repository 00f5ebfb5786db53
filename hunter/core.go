// Package hunter is the public facade the host application (desktop
// binary or mobile bind target) drives: one Core instance owns the
// config store, the orchestrator, and the primary balancer. Init, Start,
// Stop, RunCycle, Status, and GetCachedConfigs recover their own panics
// at the boundary and return them as errors.
package hunter

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"runtime/debug"
	"sync"

	"hunterproxy/internal/balancer"
	"hunterproxy/internal/cachestore"
	"hunterproxy/internal/collaborator"
	"hunterproxy/internal/config"
	"hunterproxy/internal/logger"
	"hunterproxy/internal/orchestrator"
)

// Callbacks bundles the external collaborators a host must supply
// before calling Init, plus the handful of deployment-specific inputs
// (channel list, local retry ports, obfuscation toggles) Init has no
// other way to learn.
type Callbacks struct {
	HTTP      collaborator.HTTP
	Messaging collaborator.Messaging
	Engine    collaborator.Engine
	Progress  collaborator.Progress

	Channels     []string
	ProxyPorts   []int
	FragmentMode bool
	RotatingSNI  bool
}

// Core is the single entry point a host embeds. The zero value is not
// usable; build one with New and call Init before anything else.
type Core struct {
	mu           sync.Mutex
	cfg          *config.Store
	cache        *cachestore.Store
	orchestrator *orchestrator.Orchestrator
	filesDir     string

	cancel   context.CancelFunc
	running  bool
	stopOnce sync.Once
}

// New returns an uninitialized Core.
func New() *Core {
	return &Core{}
}

// Init loads the config store (from secretsPath, an ini file, if
// non-empty), wires the orchestrator and its balancers against
// filesDir, and prepares Core for Start. It is safe to call at most
// once per Core.
func (c *Core) Init(filesDir, secretsPath string, cb Callbacks) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hunter core panic in Init: %v\n\n%s", r, debug.Stack())
		}
	}()

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := logger.Init("info"); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	cfg := config.NewStore()
	if secretsPath != "" {
		if err := config.LoadFile(cfg, secretsPath); err != nil {
			return fmt.Errorf("load config file: %w", err)
		}
	}
	cfg.Set(config.KeyFilesDir, config.StringValue(filesDir))

	listenPort := int(cfg.Int64(config.KeyListenPort))
	opts := orchestrator.Options{
		FilesDir:     filesDir,
		ListenPort:   listenPort,
		ProbeURL:     cfg.String(config.KeyProbeURL),
		Channels:     cb.Channels,
		ProxyPorts:   cb.ProxyPorts,
		FragmentMode: cb.FragmentMode,
		RotatingSNI:  cb.RotatingSNI,
		SubBalancers: orchestrator.DefaultSubBalancers(listenPort),
	}

	c.cfg = cfg
	c.cache = cachestore.New(filesDir)
	c.filesDir = filesDir
	c.orchestrator = orchestrator.New(cfg, opts, cb.HTTP, cb.Messaging, cb.Engine, cb.Progress)

	logger.Info().Str("files_dir", filesDir).Int("listen_port", listenPort).Msg("hunter core initialized")
	return nil
}

// Start launches the autonomous scrape/validate/balance loop in the
// background and returns immediately.
func (c *Core) Start() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hunter core panic in Start: %v\n\n%s", r, debug.Stack())
		}
	}()

	c.mu.Lock()
	if c.orchestrator == nil {
		c.mu.Unlock()
		return fmt.Errorf("core not initialized")
	}
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("core already running")
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.running = true
	o := c.orchestrator
	c.mu.Unlock()

	seed, _ := cachestore.LoadSeed(filepath.Join(c.filesDir, orchestrator.SeedFileName))
	o.Balancer().Start(ctx, seed.Configs)

	go o.AutonomousLoop(ctx)

	logger.Info().Msg("hunter core started")
	return nil
}

// Stop cancels the autonomous loop and the balancer, but leaves Core
// reusable via another Start.
func (c *Core) Stop() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hunter core panic in Stop: %v\n\n%s", r, debug.Stack())
		}
	}()

	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	cancel := c.cancel
	o := c.orchestrator
	c.running = false
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if o != nil {
		o.Stop()
		o.Balancer().Stop()
	}

	logger.Info().Msg("hunter core stopped")
	return nil
}

// IsRunning reports whether the autonomous loop is currently active.
func (c *Core) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// RunCycle runs exactly one scrape/validate/balance pipeline pass and
// blocks until it completes, independent of the autonomous loop.
func (c *Core) RunCycle() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hunter core panic in RunCycle: %v\n\n%s", r, debug.Stack())
		}
	}()

	c.mu.Lock()
	o := c.orchestrator
	c.mu.Unlock()
	if o == nil {
		return fmt.Errorf("core not initialized")
	}
	return o.RunCycle(context.Background())
}

// statusDoc is the JSON shape Status returns.
type statusDoc struct {
	Running  bool            `json:"running"`
	Balancer balancer.Status `json:"balancer"`
}

// Status returns a JSON snapshot of whether the autonomous loop is
// running and the primary balancer's current state.
func (c *Core) Status() (statusJSON string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hunter core panic in Status: %v\n\n%s", r, debug.Stack())
			statusJSON = "{}"
		}
	}()

	c.mu.Lock()
	o := c.orchestrator
	running := c.running
	c.mu.Unlock()
	if o == nil {
		return "{}", fmt.Errorf("core not initialized")
	}

	doc := statusDoc{Running: running, Balancer: o.Balancer().Status()}
	data, err := json.Marshal(doc)
	if err != nil {
		return "{}", err
	}
	return string(data), nil
}

// ValidateConfig returns the current config store's validation problems
// (empty when everything is within range).
func (c *Core) ValidateConfig() []string {
	c.mu.Lock()
	cfg := c.cfg
	c.mu.Unlock()
	if cfg == nil {
		return []string{"core not initialized"}
	}
	return cfg.Validate()
}

// GetCachedConfigs returns the persisted balancer seed file as JSON.
func (c *Core) GetCachedConfigs() (configsJSON string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hunter core panic in GetCachedConfigs: %v\n\n%s", r, debug.Stack())
			configsJSON = "{}"
		}
	}()

	c.mu.Lock()
	filesDir := c.filesDir
	c.mu.Unlock()

	seed, err := cachestore.LoadSeed(filepath.Join(filesDir, orchestrator.SeedFileName))
	if err != nil {
		return "{}", err
	}
	data, err := json.Marshal(seed)
	if err != nil {
		return "{}", err
	}
	return string(data), nil
}

// SetConfig sets a config key from its string form: a value that scans
// as an integer is stored as int64, anything else as a string.
func (c *Core) SetConfig(key, value string) error {
	c.mu.Lock()
	cfg := c.cfg
	c.mu.Unlock()
	if cfg == nil {
		return fmt.Errorf("core not initialized")
	}

	var n int64
	if _, err := fmt.Sscanf(value, "%d", &n); err == nil {
		cfg.Set(key, config.Int64Value(n))
		return nil
	}
	cfg.Set(key, config.StringValue(value))
	return nil
}

// GetConfig returns a config key's value rendered as a string.
func (c *Core) GetConfig(key string) (string, error) {
	c.mu.Lock()
	cfg := c.cfg
	c.mu.Unlock()
	if cfg == nil {
		return "", fmt.Errorf("core not initialized")
	}

	if v, ok := cfg.Get(key); ok {
		if v.Str != "" {
			return v.Str, nil
		}
		return fmt.Sprintf("%d", v.Int64), nil
	}
	return "", fmt.Errorf("unknown config key %q", key)
}

// Destroy stops the core (idempotently) and releases its references.
func (c *Core) Destroy() {
	c.stopOnce.Do(func() {
		_ = c.Stop()
		c.mu.Lock()
		c.orchestrator = nil
		c.cfg = nil
		c.cache = nil
		c.mu.Unlock()
	})
}
