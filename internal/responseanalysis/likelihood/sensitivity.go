package likelihood

import (
	"errors"
	"fmt"
	"strings"
)

// Sensitivity controls how aggressively implausible Base64 candidates are
// discarded.
//
// It implements encoding.TextUnmarshaler and encoding.TextMarshaler so it can
// be used with flag.TextVar and in configuration files.
type Sensitivity int

const (
	Off Sensitivity = iota
	Default
	Low
	Medium
	High
)

// ErrUnsupported is returned by Sensitivity.UnmarshalText for unknown names.
var ErrUnsupported = errors.New("sensitivity unsupported")

var sensitivityNames = map[Sensitivity]string{
	Off:     "off",
	Default: "default",
	Low:     "low",
	Medium:  "medium",
	High:    "high",
}

// thresholds are the probabilities below which the absence of a character
// class rules a candidate out.
var thresholds = map[Sensitivity]float32{
	Off:     0.0,
	Default: 0.0,
	Low:     0.10,
	Medium:  0.25,
	High:    0.50,
}

// Threshold returns the probability threshold for s. Unknown values behave
// like Off.
func (s Sensitivity) Threshold() float32 {
	return thresholds[s]
}

// String implements the fmt.Stringer interface.
func (s Sensitivity) String() string {
	if name, ok := sensitivityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Sensitivity(%d)", int(s))
}

// MarshalText implements the encoding.TextMarshaler interface.
func (s Sensitivity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface. Names are
// matched case-insensitively.
func (s *Sensitivity) UnmarshalText(text []byte) error {
	parsed, err := ParseSensitivity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSensitivity returns the Sensitivity with the given name.
func ParseSensitivity(name string) (Sensitivity, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range sensitivityNames {
		if n == name {
			return s, nil
		}
	}
	return Off, fmt.Errorf("%w: %q", ErrUnsupported, name)
}
