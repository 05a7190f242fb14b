/*
Package charclass estimates how plausible it is that a string is Base64
encoded data, based on which classes of characters it contains.

Each Class covers a subset of the 64 character Base64 alphabet. Assuming
encoded data is uniformly distributed over the alphabet, a Base64 string of
length L contains no characters of a class covering n alphabet characters
with probability ((64 - n) / 64) ^ L. A long string with no digits, for
example, is unlikely to be Base64 at all.
*/
package charclass

import (
	"math"
	"regexp"
)

// AlphabetSize is the number of characters in the Base64 alphabet.
const AlphabetSize = 64

// Class is a set of characters from the Base64 alphabet.
type Class struct {
	Name string

	// Size is the number of Base64 alphabet characters in the class.
	Size int

	// Enabled is false for classes that are defined but not used when
	// classifying strings.
	Enabled bool

	pattern *regexp.Regexp
}

var (
	Digit     = Class{Name: "digit", Size: 10, Enabled: true, pattern: regexp.MustCompile("[0-9]")}
	Alpha     = Class{Name: "alphabetic", Size: 52, Enabled: true, pattern: regexp.MustCompile("[a-zA-Z]")}
	Lowercase = Class{Name: "lowercase", Size: 26, Enabled: true, pattern: regexp.MustCompile("[a-z]")}
	Uppercase = Class{Name: "uppercase", Size: 26, Enabled: true, pattern: regexp.MustCompile("[A-Z]")}

	// Symbol holds the non-alphanumeric characters of either Base64 alphabet.
	// It is not used when classifying strings.
	Symbol = Class{Name: "symbol", Size: 2, Enabled: false, pattern: regexp.MustCompile(`[+/\-_]`)}
)

// Classes lists every defined class, in the order they are checked.
var Classes = []Class{Digit, Alpha, Symbol, Lowercase, Uppercase}

// Present reports whether s contains at least one character of the class.
func (c Class) Present(s string) bool {
	return c.pattern.MatchString(s)
}

// ProbabilityOfNotContaining returns the probability that a Base64 string of
// the given length has no characters of the class.
// The calculation is done in single precision.
func (c Class) ProbabilityOfNotContaining(length int) float32 {
	base := float32(AlphabetSize-c.Size) / AlphabetSize
	return float32(math.Pow(float64(base), float64(length)))
}

// IsUnlikely reports whether s has no characters of the class and the
// probability of that is below threshold. A threshold of 0 never flags s.
func (c Class) IsUnlikely(s string, threshold float32) bool {
	if c.Present(s) {
		return false
	}
	return c.ProbabilityOfNotContaining(len(s)) < threshold
}

// Verdict is the outcome of checking one class against a string.
type Verdict struct {
	Class       Class
	Probability float32
}

// Unlikely returns a Verdict for each enabled class that flags s at the given
// threshold. s is plausibly Base64 if the result is empty.
func Unlikely(s string, threshold float32) []Verdict {
	var flagged []Verdict
	for _, c := range Classes {
		if !c.Enabled || !c.IsUnlikely(s, threshold) {
			continue
		}
		flagged = append(flagged, Verdict{Class: c, Probability: c.ProbabilityOfNotContaining(len(s))})
	}
	return flagged
}
