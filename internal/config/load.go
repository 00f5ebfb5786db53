package config

import (
	"os"
	"strconv"

	"gopkg.in/ini.v1"
)

// iniSection mirrors the handful of behavior keys a deployment may want
// to override from an ini file. Loading such a file is a host concern,
// so this helper is called only from hunter.Core.Init (when a non-empty
// path is given), never from other internal/ packages.
type iniSection struct {
	ScanLimit      int64 `ini:"scan_limit"`
	MaxTotal       int64 `ini:"max_total"`
	MaxWorkers     int64 `ini:"max_workers"`
	TimeoutSeconds int64 `ini:"timeout_seconds"`
	TelegramLimit  int64 `ini:"telegram_limit"`
	SleepSeconds   int64 `ini:"sleep_seconds"`
	ListenPort     int64 `ini:"listen_port"`
}

// LoadFile overlays values from an ini file (section "hunter") onto an
// existing Store, then applies HUNTER_* environment overrides on top.
func LoadFile(s *Store, path string) error {
	cfg, err := ini.Load(path)
	if err != nil {
		return err
	}
	var sec iniSection
	if err := cfg.Section("hunter").MapTo(&sec); err != nil {
		return err
	}

	if sec.ScanLimit != 0 {
		s.Set(KeyScanLimit, Int64Value(sec.ScanLimit))
	}
	if sec.MaxTotal != 0 {
		s.Set(KeyMaxTotal, Int64Value(sec.MaxTotal))
	}
	if sec.MaxWorkers != 0 {
		s.Set(KeyMaxWorkers, Int64Value(sec.MaxWorkers))
	}
	if sec.TimeoutSeconds != 0 {
		s.Set(KeyTimeoutSeconds, Int64Value(sec.TimeoutSeconds))
	}
	if sec.TelegramLimit != 0 {
		s.Set(KeyTelegramLimit, Int64Value(sec.TelegramLimit))
	}
	if sec.SleepSeconds != 0 {
		s.Set(KeySleepSeconds, Int64Value(sec.SleepSeconds))
	}
	if sec.ListenPort != 0 {
		s.Set(KeyListenPort, Int64Value(sec.ListenPort))
	}

	overrideFromEnvInt(s, KeyMaxWorkers, "HUNTER_MAX_WORKERS")
	overrideFromEnvInt(s, KeyListenPort, "HUNTER_LISTEN_PORT")
	return nil
}

func overrideFromEnvInt(s *Store, key, envName string) {
	raw := os.Getenv(envName)
	if raw == "" {
		return
	}
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		s.Set(key, Int64Value(v))
	}
}
