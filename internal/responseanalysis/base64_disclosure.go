package responseanalysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ossf/passive-analysis/internal/featureflags"
	"github.com/ossf/passive-analysis/internal/responseanalysis/detections"
	"github.com/ossf/passive-analysis/internal/responseanalysis/hiddenfields"
	"github.com/ossf/passive-analysis/internal/responseanalysis/likelihood"
	"github.com/ossf/passive-analysis/internal/viewstate"
	"github.com/ossf/passive-analysis/pkg/api/exchange"
	"github.com/ossf/passive-analysis/pkg/api/finding"
)

/*
Base64Disclosure reports Base64 encoded data in responses. Data that decodes
as unencrypted ASP.NET ViewState is reported as ViewState instead, with an
additional high risk finding if it is not protected by a MAC.

Every candidate in a response is reported, not just the first. The fields of
a split ViewState are only reported as the reassembled whole.
*/
type Base64Disclosure struct {
	Filter likelihood.Filter
}

func (r *Base64Disclosure) ID() int {
	return finding.Base64PluginID
}

func (r *Base64Disclosure) Name() string {
	return "Base64 Disclosure"
}

func (r *Base64Disclosure) Scan(ctx context.Context, ex *exchange.Exchange) []finding.Finding {
	candidates := detections.FindBase64Candidates(ctx, ex.Header, ex.Body)
	if featureflags.HiddenFieldAnalysis.Enabled() {
		if c, ok := splitViewStateCandidate(ctx, ex.Body); ok {
			candidates = append(withoutFragments(candidates, c.Original), c)
		}
	}

	var findings []finding.Finding
	for _, c := range r.Filter.Apply(ctx, candidates) {
		findings = append(findings, r.scanCandidate(ctx, c)...)
	}
	return findings
}

func (r *Base64Disclosure) scanCandidate(ctx context.Context, c detections.Base64Candidate) []finding.Finding {
	result, err := viewstate.Decode(c.Decoded)
	if err != nil {
		if !errors.Is(err, viewstate.ErrInvalidPreamble) {
			slog.DebugContext(ctx, "candidate has a ViewState preamble but failed to decode",
				"candidate", c.Original, "error", err)
		}
		var otherInfo string
		if featureflags.ReportDecodedData.Enabled() {
			otherInfo = string(c.Decoded)
		}
		return []finding.Finding{finding.New(finding.Base64Disclosure, c.Original, otherInfo)}
	}

	xml := result.XML()
	findings := []finding.Finding{finding.New(finding.ViewStateDisclosure, xml, macSummary(result))}
	if !result.HasMAC() {
		findings = append(findings, finding.New(finding.ViewStateWithoutMAC, xml, ""))
	}
	return findings
}

func macSummary(r *viewstate.Result) string {
	if !r.HasMAC() {
		return "no MAC"
	}
	return fmt.Sprintf("MAC: %s, %d bytes", r.MACAlgorithm(), r.MACLength())
}

// withoutFragments drops the candidates that are part of whole.
func withoutFragments(candidates []detections.Base64Candidate, whole string) []detections.Base64Candidate {
	kept := candidates[:0]
	for _, c := range candidates {
		if !strings.Contains(whole, c.Original) {
			kept = append(kept, c)
		}
	}
	return kept
}

// splitViewStateCandidate returns the reassembled value of a ViewState split
// over several hidden fields. The parts are rarely decodable on their own.
func splitViewStateCandidate(ctx context.Context, body string) (detections.Base64Candidate, bool) {
	vs, err := hiddenfields.Extract(body)
	if err != nil {
		if !errors.Is(err, hiddenfields.ErrNoViewState) {
			slog.DebugContext(ctx, "could not extract ViewState from hidden fields", "error", err)
		}
		return detections.Base64Candidate{}, false
	}
	if !vs.Split {
		return detections.Base64Candidate{}, false
	}
	return detections.Base64Candidate{
		Original:   vs.Value,
		Normalized: vs.Normalized,
		Decoded:    vs.Decoded,
	}, true
}
