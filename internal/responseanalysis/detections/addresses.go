package detections

import (
	"fmt"
	"net"
	"regexp"

	"github.com/ossf/passive-analysis/internal/utils"
)

// digits0_255 matches decimal numbers from 0-255
var digits0_255 = regexp.MustCompile(`(?:25[0-5]|(?:2[0-4]|1[0-9]|[1-9]|)[0-9])`)

var ipv4Regexp = regexp.MustCompile(fmt.Sprintf(`%s(?:\.%s){3}`, digits0_255, digits0_255))

// hex1_4 matches between 1 and 4 hex digits
var hex1_4 = regexp.MustCompile(`[[:xdigit:]]{1,4}`)

// ipv6Regexp matches IPv6 address strings, in both uncompressed and
// compressed forms, including dual IPv6/IPv4 addresses. Compressed addresses
// with too many segments also match, so matches are checked with net.ParseIP.
var ipv6Regexp = utils.CombineRegexp(
	// 123:fe:4567:dc:89ab:a9:cdef:87 or fedc:1:ba98:23:7654:45:123.54.89.7
	regexp.MustCompile(fmt.Sprintf(`%s(?::%s){5}(?:(?::%s){2}|:%s)`, hex1_4, hex1_4, hex1_4, ipv4Regexp)),

	// fedc:1:ba98:23::123.54.89.7 or ::123.54.89.7
	regexp.MustCompile(fmt.Sprintf(`(?:(?:%s:){1,4}|:):%s`, hex1_4, ipv4Regexp)),

	// fedc:1::ba98:23:123.54.89.7
	regexp.MustCompile(fmt.Sprintf(`(?:(?:%s:){1,4}|:)(?::%s){1,4}:%s`, hex1_4, hex1_4, ipv4Regexp)),

	// fedc:1:ba98:23:: or ::89ab or :: or 123:fe::89ab:a9:cdef:87
	regexp.MustCompile(fmt.Sprintf(`(?:(?:%s:){1,6}|:)(?:(?::%s){1,6}|:)`, hex1_4, hex1_4)),
)

func findIPv4Addresses(s string) []string {
	return ipv4Regexp.FindAllString(s, -1)
}

func findIPv6Addresses(s string) []string {
	var addresses []string
	for _, candidate := range ipv6Regexp.FindAllString(s, -1) {
		// "::" on its own is too common in text to be worth reporting
		if candidate == "::" {
			continue
		}
		if net.ParseIP(candidate) != nil {
			addresses = append(addresses, candidate)
		}
	}
	return addresses
}

// FindIPAddresses returns the IPv4 addresses in s followed by the IPv6
// addresses in s.
func FindIPAddresses(s string) []string {
	return append(findIPv4Addresses(s), findIPv6Addresses(s)...)
}
