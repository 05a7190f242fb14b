package capture

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ossf/passive-analysis/internal/useragent"
	"github.com/ossf/passive-analysis/pkg/api/exchange"
)

// DefaultTimeout bounds how long NewClient's client waits for a response.
const DefaultTimeout = 30 * time.Second

// NewClient returns an HTTP client identifying itself with the passive
// analysis user-agent, with userAgentExtra appended if it is not empty.
func NewClient(userAgentExtra string) *http.Client {
	return &http.Client{
		Timeout:   DefaultTimeout,
		Transport: useragent.DefaultRoundTripper(http.DefaultTransport, userAgentExtra),
	}
}

// Fetch requests url with a GET and returns the response received as an
// Exchange. Responses with an error status are returned like any other.
func Fetch(ctx context.Context, client *http.Client, url string) (*exchange.Exchange, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	return FromResponse(url, resp)
}
