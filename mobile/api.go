package mobile

import (
	"fmt"
	"runtime/debug"
	"strings"
	"sync"

	"hunterproxy/hunter"
	"hunterproxy/internal/fetcher"
)

var (
	activeCore  *hunter.Core
	coreMutex   sync.Mutex
)

// StartHunter is the main entry point for mobile clients. It starts the
// discovery/validation/balancing core in-memory against filesDir
// (app-private storage on the device), without requiring any ini file
// on disk. No ini file is read; the host overrides settings through
// SetSetting instead. channelsCSV is a comma-separated channel/handle
// list to scrape.
func StartHunter(filesDir, channelsCSV string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("go core panic: %v\n\n%s", r, debug.Stack())
		}
	}()

	coreMutex.Lock()
	defer coreMutex.Unlock()

	if activeCore != nil {
		return fmt.Errorf("service is already running")
	}

	core := hunter.New()
	cb := hunter.Callbacks{
		HTTP:      fetcher.DefaultHTTPClient{},
		Messaging: hunter.NoopMessaging{},
		Engine:    hunter.UnwiredEngine{},
		Channels:  splitNonEmpty(channelsCSV),
	}

	if err := core.Init(filesDir, "", cb); err != nil {
		return fmt.Errorf("failed to initialize core: %w", err)
	}
	if err := core.Start(); err != nil {
		return fmt.Errorf("failed to start core: %w", err)
	}

	activeCore = core
	return nil
}

// StopHunter stops the Go core.
func StopHunter() {
	coreMutex.Lock()
	defer coreMutex.Unlock()

	if activeCore != nil {
		activeCore.Destroy()
		activeCore = nil
	}
}

// QueryStatus returns a JSON string describing whether the autonomous
// loop is running and the primary balancer's current state (backend
// counts and lifetime counters).
func QueryStatus() (statusJSON string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("go core panic in QueryStatus: %v\n\n%s", r, debug.Stack())
			statusJSON = "{}"
		}
	}()

	coreMutex.Lock()
	core := activeCore
	coreMutex.Unlock()

	if core == nil {
		return "{}", nil
	}
	return core.Status()
}

// GetCachedConfigs returns the persisted balancer seed, as a JSON
// string, for the host to inspect or display without driving a cycle
// of its own.
func GetCachedConfigs() (configsJSON string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("go core panic in GetCachedConfigs: %v", r)
			configsJSON = "[]"
		}
	}()

	coreMutex.Lock()
	core := activeCore
	coreMutex.Unlock()

	if core == nil {
		return "[]", nil
	}
	return core.GetCachedConfigs()
}

// RunCycleNow runs one scrape/validate/balance pass immediately,
// blocking until it completes, instead of waiting for the next
// autonomous tick.
func RunCycleNow() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("go core panic in RunCycleNow: %v\n\n%s", r, debug.Stack())
		}
	}()

	coreMutex.Lock()
	core := activeCore
	coreMutex.Unlock()

	if core == nil {
		return fmt.Errorf("service is not running")
	}
	return core.RunCycle()
}

// SetSetting forwards a single config override to the running core.
func SetSetting(key, value string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("go core panic in SetSetting: %v", r)
		}
	}()

	coreMutex.Lock()
	core := activeCore
	coreMutex.Unlock()

	if core == nil {
		return fmt.Errorf("service is not running")
	}
	return core.SetConfig(key, value)
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
