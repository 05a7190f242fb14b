package viewstate

// UnknownMACAlgorithm is reported for trailing data of a length no known
// HMAC produces.
const UnknownMACAlgorithm = "HMAC-UNKNOWN"

// macAlgorithms maps MAC lengths in bytes to the algorithm that produces them.
var macAlgorithms = map[int]string{
	16: "HMAC-MD5",
	20: "HMAC-SHA0/HMAC-SHA1",
	32: "HMAC-SHA256",
	48: "HMAC-SHA384",
	64: "HMAC-SHA512",
}

// MACAlgorithmName returns the name of the HMAC algorithm producing a MAC of
// length n bytes. It returns "" if n is not positive.
func MACAlgorithmName(n int) string {
	if n <= 0 {
		return ""
	}
	if name, ok := macAlgorithms[n]; ok {
		return name
	}
	return UnknownMACAlgorithm
}
