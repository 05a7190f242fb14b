// Package useragent identifies passive analysis in the requests it makes.
package useragent

import (
	"fmt"
	"net/http"
)

const defaultUserAgentFmt = "passive-analysis (github.com/ossf/passive-analysis%s)"

type uaRoundTripper struct {
	parent    http.RoundTripper
	userAgent string
}

// RoundTrip implements the http.RoundTripper interface.
func (rt *uaRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request.
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", rt.userAgent)
	return rt.parent.RoundTrip(req)
}

// RoundTripper wraps parent with a RoundTripper that sets the user-agent
// header to ua.
func RoundTripper(ua string, parent http.RoundTripper) http.RoundTripper {
	return &uaRoundTripper{
		parent:    parent,
		userAgent: ua,
	}
}

// DefaultRoundTripper wraps parent with a RoundTripper that adds the default
// passive analysis user-agent header.
//
// If supplied, extra information is appended to the user-agent so operators
// can be identified by the sites they scan.
func DefaultRoundTripper(parent http.RoundTripper, extra string) http.RoundTripper {
	if extra != "" {
		extra = ", " + extra
	}
	return RoundTripper(fmt.Sprintf(defaultUserAgentFmt, extra), parent)
}
