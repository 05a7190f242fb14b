package finding

import (
	"errors"
	"fmt"
)

// Risk is the severity of a finding.
//
// It implements encoding.TextUnmarshaler and encoding.TextMarshaler so it is
// serialised by name in JSON.
type Risk int

const (
	RiskInfo Risk = iota
	RiskLow
	RiskMedium
	RiskHigh
)

// Confidence is how sure a rule is that a finding is not a false positive.
type Confidence int

const (
	ConfidenceLow Confidence = iota + 1
	ConfidenceMedium
	ConfidenceHigh
)

// ErrUnknownLevel is returned when unmarshaling a Risk or Confidence name that
// is not defined.
var ErrUnknownLevel = errors.New("unknown level")

var riskNames = []string{"info", "low", "medium", "high"}

var confidenceNames = []string{"", "low", "medium", "high"}

func parseLevel(names []string, text string) (int, error) {
	for i, name := range names {
		if name != "" && name == text {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, text)
}

func levelName(names []string, i int) string {
	if i < 0 || i >= len(names) || names[i] == "" {
		return fmt.Sprintf("level(%d)", i)
	}
	return names[i]
}

// String implements the fmt.Stringer interface.
func (r Risk) String() string {
	return levelName(riskNames, int(r))
}

// MarshalText implements the encoding.TextMarshaler interface.
func (r Risk) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (r *Risk) UnmarshalText(text []byte) error {
	i, err := parseLevel(riskNames, string(text))
	if err != nil {
		return err
	}
	*r = Risk(i)
	return nil
}

// String implements the fmt.Stringer interface.
func (c Confidence) String() string {
	return levelName(confidenceNames, int(c))
}

// MarshalText implements the encoding.TextMarshaler interface.
func (c Confidence) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (c *Confidence) UnmarshalText(text []byte) error {
	i, err := parseLevel(confidenceNames, string(text))
	if err != nil {
		return err
	}
	*c = Confidence(i)
	return nil
}
