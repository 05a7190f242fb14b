// Package exchange defines the captured HTTP traffic that passive analysis
// consumes.
package exchange

// Exchange is a single captured HTTP response, along with the URL of the
// request that produced it.
//
// Header holds the raw header text, starting with the status line and ending
// with the blank line that separates it from the body. Body holds the body
// text after any content encoding has been removed.
type Exchange struct {
	URL    string `json:"url"`
	Header string `json:"header"`
	Body   string `json:"body"`
}
