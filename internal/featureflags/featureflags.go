// Package featureflags holds named boolean switches for optional analysis
// behaviour. Flags are toggled at startup from a comma separated list.
package featureflags

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var ErrUndefinedFlag = errors.New("undefined feature flag")

var flagRegistry = make(map[string]*FeatureFlag)

// FeatureFlag stores the state for a single flag.
//
// Call Enabled() to see if the flag is enabled.
type FeatureFlag struct {
	name           string
	description    string
	defaultEnabled bool
	isEnabled      bool
}

// new registers the flag and sets the default enabled state.
func new(name, description string, defaultEnabled bool) *FeatureFlag {
	ff := &FeatureFlag{
		name:           name,
		description:    description,
		defaultEnabled: defaultEnabled,
		isEnabled:      defaultEnabled,
	}
	flagRegistry[name] = ff
	return ff
}

// Name returns the name the flag is toggled with.
func (ff *FeatureFlag) Name() string {
	return ff.name
}

// Description returns a one line summary of what the flag controls.
func (ff *FeatureFlag) Description() string {
	return ff.description
}

// Enabled returns whether or not the feature is enabled.
func (ff *FeatureFlag) Enabled() bool {
	return ff.isEnabled
}

// Update changes the internal state of the flags based on flags passed in.
//
// flags is a comma separated list of flag names. If a flag name is present it
// will be enabled. If a flag name is preceded with a "-" character it will be
// disabled. Whitespace around names and empty entries are ignored.
//
// For example: "HiddenFieldAnalysis,-ReportDecodedData" will enable the flag
// "HiddenFieldAnalysis" and disable the flag "ReportDecodedData".
//
// If a flag is undefined an error wrapping ErrUndefinedFlag will be returned
// and no flags are changed.
func Update(flags string) error {
	updates := make(map[*FeatureFlag]bool)
	for _, n := range strings.Split(flags, ",") {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		isEnabled := true
		if n[0] == '-' {
			isEnabled = false
			n = n[1:]
		}
		ff, ok := flagRegistry[n]
		if !ok {
			return fmt.Errorf("%w %q", ErrUndefinedFlag, n)
		}
		updates[ff] = isEnabled
	}
	for ff, isEnabled := range updates {
		ff.isEnabled = isEnabled
	}
	return nil
}

// Reset returns every flag to its default state.
func Reset() {
	for _, ff := range flagRegistry {
		ff.isEnabled = ff.defaultEnabled
	}
}

// State returns a representation of the flags that are enabled and disabled.
func State() map[string]bool {
	s := make(map[string]bool)
	for k, v := range flagRegistry {
		s[k] = v.Enabled()
	}
	return s
}

// All returns every registered flag, sorted by name.
func All() []*FeatureFlag {
	names := maps.Keys(flagRegistry)
	slices.Sort(names)

	flags := make([]*FeatureFlag, 0, len(names))
	for _, n := range names {
		flags = append(flags, flagRegistry[n])
	}
	return flags
}
