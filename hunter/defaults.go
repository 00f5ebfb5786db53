package hunter

import (
	"context"
	"fmt"
	"time"
)

// NoopMessaging is the default Messaging collaborator for deployments
// that don't wire a channel-pull/report-push transport: channel
// scraping and report delivery both silently no-op instead of failing
// the cycle.
type NoopMessaging struct{}

func (NoopMessaging) FetchMessages(ctx context.Context, channel string, limit int) ([]string, error) {
	return nil, nil
}
func (NoopMessaging) SendMessage(ctx context.Context, text string) (bool, error) { return false, nil }
func (NoopMessaging) SendFile(ctx context.Context, name string, content []byte, caption string) (bool, error) {
	return false, nil
}

// UnwiredEngine is the default Engine collaborator: every start attempt
// fails cleanly so the rest of the pipeline (scrape, parse, cache,
// persist) still runs end to end without fabricating latencies. A
// deployment that wants real benchmarking must supply its own Engine
// bound to an actual proxy runtime.
type UnwiredEngine struct{}

func (UnwiredEngine) StartProxy(ctx context.Context, configJSON []byte, listenPort int) (int, error) {
	return -1, fmt.Errorf("no proxy engine wired: supply Callbacks.Engine")
}
func (UnwiredEngine) StopProxy(handleID int) {}
func (UnwiredEngine) TestURL(ctx context.Context, url string, listenPort int, timeout time.Duration) (int, float64, error) {
	return 0, 0, fmt.Errorf("no proxy engine wired: supply Callbacks.Engine")
}
