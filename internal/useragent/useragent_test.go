package useragent_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ossf/passive-analysis/internal/useragent"
)

func TestRoundTripper(t *testing.T) {
	tests := []struct {
		name      string
		transport http.RoundTripper
		want      string
	}{
		{
			name:      "custom",
			transport: useragent.RoundTripper("test user agent string", http.DefaultTransport),
			want:      "test user agent string",
		},
		{
			name:      "default with extra",
			transport: useragent.DefaultRoundTripper(http.DefaultTransport, "extra"),
			want:      "passive-analysis (github.com/ossf/passive-analysis, extra)",
		},
		{
			name:      "default",
			transport: useragent.DefaultRoundTripper(http.DefaultTransport, ""),
			want:      "passive-analysis (github.com/ossf/passive-analysis)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("user-agent"); got != tt.want {
					t.Errorf("User Agent = %q, want %q", got, tt.want)
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer ts.Close()

			req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
			if err != nil {
				t.Fatalf("NewRequest() = %v", err)
			}
			c := http.Client{Transport: tt.transport}
			resp, err := c.Do(req)
			if err != nil {
				t.Fatalf("Do() = %v; want no error", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("Do() status = %v; want 200", resp.StatusCode)
			}
			if got := req.Header.Get("User-Agent"); got != "" {
				t.Errorf("caller's request was modified: User-Agent = %q", got)
			}
		})
	}
}
