package detections

import "regexp"

var emailRegexp = regexp.MustCompile(`(?i)[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,4}`)

// FindEmailAddresses returns the substrings of s that look like e-mail
// addresses.
func FindEmailAddresses(s string) []string {
	return emailRegexp.FindAllString(s, -1)
}
