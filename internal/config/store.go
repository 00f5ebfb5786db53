// Package config holds the core's runtime-tunable parameters: a single
// mutex-guarded map of well-known keys to typed values.
package config

import (
	"fmt"
	"sync"
)

// Value is one of the types a config entry may hold.
type Value struct {
	Int64   int64
	Float64 float64
	Bool    bool
	Str     string
	Strs    []string
	kind    kind
}

type kind int

const (
	kindInt64 kind = iota
	kindFloat64
	kindBool
	kindString
	kindStrings
)

func Int64Value(v int64) Value       { return Value{Int64: v, kind: kindInt64} }
func Float64Value(v float64) Value   { return Value{Float64: v, kind: kindFloat64} }
func BoolValue(v bool) Value         { return Value{Bool: v, kind: kindBool} }
func StringValue(v string) Value     { return Value{Str: v, kind: kindString} }
func StringsValue(v []string) Value  { return Value{Strs: v, kind: kindStrings} }

// Well-known configuration keys.
const (
	KeyScanLimit       = "scan_limit"
	KeyMaxTotal        = "max_total"
	KeyMaxWorkers      = "max_workers"
	KeyTimeoutSeconds  = "timeout_seconds"
	KeyTelegramLimit   = "telegram_limit"
	KeySleepSeconds    = "sleep_seconds"
	KeyListenPort      = "listen_port"
	KeyDesiredBackends = "desired_backends"
	KeyHealthInterval  = "health_interval_seconds"
	KeyProbeURL        = "probe_url"
	KeyFilesDir        = "files_dir"
)

// Store is the mutex-guarded key/value map every module reads typed
// parameters from.
type Store struct {
	mu   sync.RWMutex
	data map[string]Value
}

// NewStore builds a Store pre-populated with operational defaults.
func NewStore() *Store {
	s := &Store{data: make(map[string]Value)}
	defaults := map[string]Value{
		KeyScanLimit:       Int64Value(500),
		KeyMaxTotal:        Int64Value(3000),
		KeyMaxWorkers:      Int64Value(50),
		KeyTimeoutSeconds:  Int64Value(10),
		KeyTelegramLimit:   Int64Value(100),
		KeySleepSeconds:    Int64Value(1800),
		KeyListenPort:      Int64Value(10808),
		KeyDesiredBackends: Int64Value(5),
		KeyHealthInterval:  Int64Value(60),
		KeyProbeURL:        StringValue("https://www.gstatic.com/generate_204"),
		KeyFilesDir:        StringValue("."),
	}
	for k, v := range defaults {
		s.data[k] = v
	}
	return s
}

// Set replaces the value for key.
func (s *Store) Set(key string, v Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = v
}

// Get returns the raw value and whether key is present.
func (s *Store) Get(key string) (Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *Store) Int64(key string) int64 {
	v, _ := s.Get(key)
	return v.Int64
}

func (s *Store) Float64(key string) float64 {
	v, _ := s.Get(key)
	return v.Float64
}

func (s *Store) Bool(key string) bool {
	v, _ := s.Get(key)
	return v.Bool
}

func (s *Store) String(key string) string {
	v, _ := s.Get(key)
	return v.Str
}

func (s *Store) Strings(key string) []string {
	v, _ := s.Get(key)
	return v.Strs
}

// rangeCheck describes the inclusive numeric range one key must fall
// within.
type rangeCheck struct {
	key      string
	min, max int64
}

var ranges = []rangeCheck{
	{KeyScanLimit, 1, 1000},
	{KeyMaxTotal, 1, 10000},
	{KeyMaxWorkers, 1, 200},
	{KeyTimeoutSeconds, 1, 60},
	{KeyTelegramLimit, 1, 500},
	{KeySleepSeconds, 10, 3600},
}

// Validate returns an ordered list of human-readable problems, exactly
// the contract ValidateConfig on the public core surface exposes.
func (s *Store) Validate() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var problems []string
	for _, rc := range ranges {
		v, ok := s.data[rc.key]
		if !ok {
			problems = append(problems, fmt.Sprintf("%s: missing", rc.key))
			continue
		}
		if v.Int64 < rc.min || v.Int64 > rc.max {
			problems = append(problems, fmt.Sprintf("%s: %d out of range [%d, %d]", rc.key, v.Int64, rc.min, rc.max))
		}
	}
	return problems
}
