package fetcher

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"hunterproxy/internal/uriscan"
)

// extractFromHTML walks the anchor, table-cell, and code-block elements
// of an HTML-bearing source bank page the way ip3366.go walks proxy
// tables, joining their text and href attributes before running the
// normal URI scan over the result.
func extractFromHTML(body string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil
	}

	var sb strings.Builder
	doc.Find("a, td, code, pre, li, textarea").Each(func(_ int, sel *goquery.Selection) {
		sb.WriteString(sel.Text())
		sb.WriteByte('\n')
		if href, ok := sel.Attr("href"); ok {
			sb.WriteString(href)
			sb.WriteByte('\n')
		}
	})

	return uriscan.Extract(sb.String())
}
