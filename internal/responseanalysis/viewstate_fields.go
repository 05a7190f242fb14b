package responseanalysis

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ossf/passive-analysis/internal/featureflags"
	"github.com/ossf/passive-analysis/internal/geoip"
	"github.com/ossf/passive-analysis/internal/responseanalysis/detections"
	"github.com/ossf/passive-analysis/internal/responseanalysis/hiddenfields"
	"github.com/ossf/passive-analysis/internal/utils"
	"github.com/ossf/passive-analysis/internal/viewstate"
	"github.com/ossf/passive-analysis/pkg/api/exchange"
	"github.com/ossf/passive-analysis/pkg/api/finding"
)

// ViewStateFields inspects the __VIEWSTATE hidden form fields of HTML pages.
// It reports ViewState from old ASP.NET versions, e-mail and IP addresses
// stored inside ViewState, and ViewState split over several fields.
type ViewStateFields struct {
	// Locator is optional.
	Locator geoip.Locator
}

func (r *ViewStateFields) ID() int {
	return finding.HiddenFieldPluginID
}

func (r *ViewStateFields) Name() string {
	return "ViewState"
}

func (r *ViewStateFields) Scan(ctx context.Context, ex *exchange.Exchange) []finding.Finding {
	if !featureflags.HiddenFieldAnalysis.Enabled() {
		return nil
	}

	vs, err := hiddenfields.Extract(ex.Body)
	if err != nil {
		if !errors.Is(err, hiddenfields.ErrNoViewState) {
			slog.DebugContext(ctx, "could not extract ViewState from hidden fields", "error", err)
		}
		return nil
	}
	if vs.Version == hiddenfields.VersionUnknown {
		slog.DebugContext(ctx, "ignoring ViewState of unknown version", "value", vs.Value)
		return nil
	}

	var findings []finding.Finding
	if !vs.Version.IsLatest() {
		findings = append(findings, finding.New(finding.OldASPNetVersion, vs.Version.String(), ""))
	}

	if featureflags.ViewStateContentAnalysis.Enabled() {
		text := viewStateText(vs)
		if emails := utils.RemoveDuplicates(detections.FindEmailAddresses(text)); len(emails) > 0 {
			findings = append(findings, finding.New(finding.ViewStateEmails, strings.Join(emails, "\n"), ""))
		}
		if ips := utils.RemoveDuplicates(detections.FindIPAddresses(text)); len(ips) > 0 {
			described := utils.Transform(ips, func(ip string) string { return geoip.Describe(r.Locator, ip) })
			findings = append(findings, finding.New(finding.ViewStateIPAddress, strings.Join(ips, "\n"), strings.Join(described, "\n")))
		}
	}

	if vs.Split {
		evidence := hiddenfields.FieldCountField + "=" + strconv.Itoa(vs.Parts)
		findings = append(findings, finding.New(finding.ViewStateSplit, evidence, ""))
	}
	return findings
}

// viewStateText returns the strings stored in the ViewState, one per line.
// If the ViewState cannot be decoded, the raw decoded bytes are used instead.
func viewStateText(vs *hiddenfields.ViewState) string {
	result, err := viewstate.Decode(vs.Decoded)
	if err != nil {
		return string(vs.Decoded)
	}
	return strings.Join(viewstate.Strings(result.Root), "\n")
}
