// Package collaborator defines the four interfaces the host application
// supplies a concrete implementation for. The core never links against a
// specific proxy engine, HTTP client, or messaging transport — it only
// calls through these interfaces, leaving the host to own the concrete
// wiring while the core only holds an interface value.
package collaborator

import (
	"context"
	"time"
)

// Engine starts and stops a throwaway (or balanced) proxy instance and
// probes a URL through it. handleID is always >= 0 when err is nil.
type Engine interface {
	StartProxy(ctx context.Context, configJSON []byte, listenPort int) (handleID int, err error)
	StopProxy(handleID int)
	TestURL(ctx context.Context, url string, listenPort int, timeout time.Duration) (statusCode int, latencyMs float64, err error)
}

// HTTP fetches a URL directly or through a SOCKS5 proxy.
type HTTP interface {
	Fetch(ctx context.Context, url, userAgent string, timeout time.Duration, proxy string) (body string, err error)
}

// Messaging pulls recent messages from a channel and pushes reports out.
type Messaging interface {
	FetchMessages(ctx context.Context, channel string, limit int) ([]string, error)
	SendMessage(ctx context.Context, text string) (bool, error)
	SendFile(ctx context.Context, name string, content []byte, caption string) (bool, error)
}

// Progress receives periodic completion callbacks during long batch
// operations.
type Progress interface {
	OnProgress(completed, total int)
}

// ProgressFunc adapts a plain function to the Progress interface.
type ProgressFunc func(completed, total int)

func (f ProgressFunc) OnProgress(completed, total int) {
	if f != nil {
		f(completed, total)
	}
}
