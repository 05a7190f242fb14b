package worker

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ossf/passive-analysis/internal/metrics"
	"github.com/ossf/passive-analysis/internal/utils"
	"github.com/ossf/passive-analysis/pkg/api/finding"
)

// Deduplicator drops findings that have already been reported for the same
// URL. Only the most recently reported findings are remembered.
type Deduplicator struct {
	seen *lru.Cache[string, struct{}]
}

// NewDeduplicator returns a Deduplicator remembering up to size findings.
func NewDeduplicator(size int) (*Deduplicator, error) {
	c, err := lru.New[string, struct{}](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create dedup cache: %w", err)
	}
	return &Deduplicator{seen: c}, nil
}

func dedupKey(url string, f finding.Finding) string {
	return utils.GetSHA256Hash([]byte(url + "\x00" + string(f.Kind) + "\x00" + f.Evidence))
}

// Filter returns the findings for url that have not been seen before, and
// how many were dropped. Findings are not remembered until Remember is called
// with them, so a scan that fails to save its results can be retried. A nil
// Deduplicator drops nothing.
func (d *Deduplicator) Filter(url string, findings []finding.Finding) ([]finding.Finding, int) {
	if d == nil {
		return findings, 0
	}
	var kept []finding.Finding
	batch := make(map[string]bool)
	for _, f := range findings {
		key := dedupKey(url, f)
		if batch[key] || d.seen.Contains(key) {
			continue
		}
		batch[key] = true
		kept = append(kept, f)
	}
	dropped := len(findings) - len(kept)
	metrics.DuplicateFindingsDropped.Add(float64(dropped))
	return kept, dropped
}

// Remember marks findings as reported for url.
func (d *Deduplicator) Remember(url string, findings []finding.Finding) {
	if d == nil {
		return
	}
	for _, f := range findings {
		d.seen.Add(dedupKey(url, f), struct{}{})
	}
}
