// Package likelihood discards Base64 candidates whose character make-up makes
// it improbable that they really are Base64 encoded data.
package likelihood

import (
	"context"
	"log/slog"

	"github.com/ossf/passive-analysis/internal/responseanalysis/charclass"
	"github.com/ossf/passive-analysis/internal/responseanalysis/detections"
)

// Filter keeps the candidates that are plausibly Base64 at a given sensitivity.
type Filter struct {
	Sensitivity Sensitivity
}

// Keep reports whether candidate survives the filter.
func (f Filter) Keep(ctx context.Context, candidate detections.Base64Candidate) bool {
	threshold := f.Sensitivity.Threshold()
	verdicts := charclass.Unlikely(candidate.Normalized, threshold)
	for _, v := range verdicts {
		slog.DebugContext(ctx, "discarding candidate that is unlikely to be Base64",
			"candidate", candidate.Original,
			"missing_class", v.Class.Name,
			"probability", v.Probability,
			"threshold", threshold)
	}
	return len(verdicts) == 0
}

// Apply returns the candidates that survive the filter, in their original order.
func (f Filter) Apply(ctx context.Context, candidates []detections.Base64Candidate) []detections.Base64Candidate {
	var kept []detections.Base64Candidate
	for _, c := range candidates {
		if f.Keep(ctx, c) {
			kept = append(kept, c)
		}
	}
	return kept
}
