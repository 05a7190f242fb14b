/*
Package responseanalysis runs passive scan rules against captured HTTP
responses.

Each Rule inspects a single exchange and returns findings for anything it
considers a potential vulnerability. Rules never modify the exchange and
keep no state between calls, so an Analyzer may be shared between
goroutines.
*/
package responseanalysis

import (
	"context"
	"log/slog"
	"time"

	"github.com/ossf/passive-analysis/internal/geoip"
	"github.com/ossf/passive-analysis/internal/metrics"
	"github.com/ossf/passive-analysis/internal/responseanalysis/likelihood"
	"github.com/ossf/passive-analysis/pkg/api/exchange"
	"github.com/ossf/passive-analysis/pkg/api/finding"
)

// Rule is a passive scan rule.
type Rule interface {
	// ID returns the plugin id the rule raises findings under.
	ID() int

	Name() string

	// Scan returns the findings for ex, in the order they were found.
	Scan(ctx context.Context, ex *exchange.Exchange) []finding.Finding
}

// Analyzer runs a fixed set of rules.
type Analyzer struct {
	rules []Rule
}

type options struct {
	locator geoip.Locator
}

type (
	Option interface{ set(*options) }
	option func(*options) // option implements Option.
)

func (o option) set(opts *options) { o(opts) }

// Locator annotates IP addresses reported by the hidden field rule with the
// country they belong to.
func Locator(l geoip.Locator) Option {
	return option(func(opts *options) {
		opts.locator = l
	})
}

// New returns an Analyzer running every rule, with Base64 candidates filtered
// at the given sensitivity.
func New(sensitivity likelihood.Sensitivity, opts ...Option) *Analyzer {
	o := &options{}
	for _, opt := range opts {
		opt.set(o)
	}
	return &Analyzer{rules: []Rule{
		&Base64Disclosure{Filter: likelihood.Filter{Sensitivity: sensitivity}},
		&ViewStateFields{Locator: o.locator},
	}}
}

// Rules returns the rules the Analyzer runs.
func (a *Analyzer) Rules() []Rule {
	return a.rules
}

// Analyze runs every rule against ex and returns all their findings.
func (a *Analyzer) Analyze(ctx context.Context, ex *exchange.Exchange) []finding.Finding {
	start := time.Now()
	defer func() {
		metrics.ScanDuration.Observe(time.Since(start).Seconds())
	}()
	metrics.ExchangesScanned.Inc()

	var findings []finding.Finding
	for _, r := range a.rules {
		for _, f := range r.Scan(ctx, ex) {
			slog.InfoContext(ctx, "finding raised", "rule", r.Name(), "kind", f.Kind, "risk", f.Risk)
			metrics.FindingsRaised.WithLabelValues(string(f.Kind)).Inc()
			findings = append(findings, f)
		}
	}
	return findings
}
