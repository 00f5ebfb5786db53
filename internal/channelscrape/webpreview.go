package channelscrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"hunterproxy/internal/logger"
	"hunterproxy/internal/uriscan"
)

const webPreviewRequestTimeout = 20 * time.Second

// ScrapeWebPreview fetches each channel's public web preview page
// (t.me/s/<channel>, no bot token required) through the Scraper's HTTP
// collaborator as a fallback source alongside ScrapeChannels, and
// extracts candidate URIs from the rendered message text the way
// extractFromHTML walks a source bank's table rows.
func (s *Scraper) ScrapeWebPreview(ctx context.Context, channels []string, limit int) []string {
	l := logger.WithComponent("channelscrape")

	var (
		seen = make(map[string]struct{})
		out  []string
	)

	for _, channel := range channels {
		url := fmt.Sprintf("https://t.me/s/%s", channel)
		body, err := s.http.Fetch(ctx, url, webPreviewUserAgent, webPreviewRequestTimeout, "")
		if err != nil {
			l.Warn().Err(err).Str("channel", channel).Msg("web preview fetch failed")
			continue
		}

		perChannel := 0
		for _, uri := range extractWebPreviewURIs(body) {
			if perChannel >= limit {
				break
			}
			if _, ok := seen[uri]; ok {
				continue
			}
			seen[uri] = struct{}{}
			out = append(out, uri)
			perChannel++
		}
	}

	l.Info().Int("channels", len(channels)).Int("uris", len(out)).Msg("web preview scrape complete")
	return out
}

const webPreviewUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

func extractWebPreviewURIs(body string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return uriscan.Extract(body)
	}

	var sb strings.Builder
	doc.Find(".tgme_widget_message_text").Each(func(_ int, sel *goquery.Selection) {
		sb.WriteString(sel.Text())
		sb.WriteByte('\n')
	})

	if sb.Len() == 0 {
		return uriscan.Extract(body)
	}
	return uriscan.Extract(sb.String())
}
