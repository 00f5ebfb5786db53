// Package channelscrape pulls candidate proxy URIs out of messaging
// channels and forwards outbound reports back through the same
// messaging collaborator, throttled to avoid tripping API rate limits.
package channelscrape

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"hunterproxy/internal/collaborator"
	"hunterproxy/internal/logger"
	"hunterproxy/internal/uriscan"
)

const maxConsecutiveErrors = 3

// Scraper pulls recent messages from a fixed list of channels and
// extracts the URIs they carry, and forwards reports and files back
// out through the same messaging collaborator.
type Scraper struct {
	messaging collaborator.Messaging
	http      collaborator.HTTP
	limiter   *rate.Limiter
}

// New builds a Scraper sending at most one message per 2 seconds, the
// throttle most public bot APIs tolerate without backing off. http
// backs the web-preview fallback path (ScrapeWebPreview); it may be
// nil if that path is never called.
func New(messaging collaborator.Messaging, http collaborator.HTTP) *Scraper {
	return &Scraper{
		messaging: messaging,
		http:      http,
		limiter:   rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

// ScrapeChannels pulls up to limit URIs per channel, in first-seen
// order, stopping early if maxConsecutiveErrors channel fetches fail
// in a row.
func (s *Scraper) ScrapeChannels(ctx context.Context, channels []string, limit int) []string {
	l := logger.WithComponent("channelscrape")

	var (
		seen           = make(map[string]struct{})
		out            []string
		consecutiveErr int
	)

	for _, channel := range channels {
		if consecutiveErr >= maxConsecutiveErrors {
			l.Warn().Int("consecutive_errors", consecutiveErr).Msg("stopping channel scrape early")
			break
		}

		messages, err := s.messaging.FetchMessages(ctx, channel, limit)
		if err != nil {
			consecutiveErr++
			l.Warn().Err(err).Str("channel", channel).Msg("channel fetch failed")
			continue
		}
		consecutiveErr = 0

		perChannel := 0
		for _, msg := range messages {
			if perChannel >= limit {
				break
			}
			for _, uri := range uriscan.Extract(msg) {
				if _, ok := seen[uri]; ok {
					continue
				}
				seen[uri] = struct{}{}
				out = append(out, uri)
				perChannel++
				if perChannel >= limit {
					break
				}
			}
		}
	}

	l.Info().Int("channels", len(channels)).Int("uris", len(out)).Msg("channel scrape complete")
	return out
}

// SendReport forwards text to the messaging collaborator, rate limited.
func (s *Scraper) SendReport(ctx context.Context, text string) bool {
	if err := s.limiter.Wait(ctx); err != nil {
		return false
	}
	ok, err := s.messaging.SendMessage(ctx, text)
	return ok && err == nil
}

// SendFile forwards a named attachment to the messaging collaborator,
// rate limited.
func (s *Scraper) SendFile(ctx context.Context, name string, content []byte, caption string) bool {
	if err := s.limiter.Wait(ctx); err != nil {
		return false
	}
	ok, err := s.messaging.SendFile(ctx, name, content, caption)
	return ok && err == nil
}
