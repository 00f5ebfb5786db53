// Package reporter formats cycle results and balancer status into
// human-readable messages and file attachments sent through the
// messaging collaborator.
package reporter

import (
	"context"
	"fmt"
	"strings"

	"hunterproxy/internal/balancer"
	"hunterproxy/internal/collaborator"
	"hunterproxy/internal/model"
)

const goldReportLimit = 10

// Reporter sends cycle and status summaries through a messaging
// collaborator.
type Reporter struct {
	messaging collaborator.Messaging
}

// New builds a Reporter that sends through messaging.
func New(messaging collaborator.Messaging) *Reporter {
	return &Reporter{messaging: messaging}
}

// ReportGold sends a numbered list of up to the 10 lowest-latency
// configs, plus the total count.
func (r *Reporter) ReportGold(ctx context.Context, configs []model.BenchResult) bool {
	if len(configs) == 0 {
		return true
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Gold configs (%d total):\n", len(configs))

	limit := goldReportLimit
	if len(configs) < limit {
		limit = len(configs)
	}
	for i := 0; i < limit; i++ {
		c := configs[i]
		label := c.PS
		if label == "" {
			label = c.Host
		}
		fmt.Fprintf(&sb, "%d. %s — %.0fms\n", i+1, label, c.LatencyMs)
	}

	ok, err := r.messaging.SendMessage(ctx, sb.String())
	return ok && err == nil
}

// ReportFiles sends goldURIs as an attached file, and silverURIs as a
// second attachment when present, each capped at maxLines and
// captioned with how many of the total were included.
func (r *Reporter) ReportFiles(ctx context.Context, goldURIs, silverURIs []string, maxLines int) bool {
	ok := r.sendBucket(ctx, "gold", goldURIs, maxLines)
	if len(silverURIs) > 0 {
		ok = r.sendBucket(ctx, "silver", silverURIs, maxLines) && ok
	}
	return ok
}

func (r *Reporter) sendBucket(ctx context.Context, name string, uris []string, maxLines int) bool {
	if len(uris) == 0 {
		return true
	}
	included := len(uris)
	if included > maxLines {
		included = maxLines
	}
	content := []byte(strings.Join(uris[:included], "\n") + "\n")
	caption := fmt.Sprintf("%s (top %d/%d)", name, included, len(uris))
	ok, err := r.messaging.SendFile(ctx, name+"_configs.txt", content, caption)
	return ok && err == nil
}

// ReportStatus summarizes a balancer status snapshot as a message.
func (r *Reporter) ReportStatus(ctx context.Context, status balancer.Status) bool {
	text := fmt.Sprintf(
		"Balancer status: running=%t port=%d healthy=%d/%d restarts=%d swaps=%d",
		status.Running, status.Port, status.HealthyCount, status.TotalBackends,
		status.Stats.Restarts, status.Stats.BackendSwaps,
	)
	ok, err := r.messaging.SendMessage(ctx, text)
	return ok && err == nil
}

// ReportAdvisory sends an informational note when a cycle produced no
// gold or silver results, pointing at the path config in use.
func (r *Reporter) ReportAdvisory(ctx context.Context, enginePath string) bool {
	text := fmt.Sprintf("Cycle produced no usable configs. Engine path config: %s", enginePath)
	ok, err := r.messaging.SendMessage(ctx, text)
	return ok && err == nil
}
