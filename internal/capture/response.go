// Package capture converts captured HTTP traffic into exchanges that can be
// analysed.
package capture

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/ossf/passive-analysis/pkg/api/exchange"
)

// MaxBodySize is the most of a response body that is kept. Anything after it
// is discarded.
const MaxBodySize = 10 << 20

// FromResponse converts resp into an Exchange. The body is read to the end and
// closed, and any gzip or deflate content encoding is removed.
func FromResponse(url string, resp *http.Response) (*exchange.Exchange, error) {
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	// drain anything past MaxBodySize so the next response on the stream can be read
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &exchange.Exchange{
		URL:    url,
		Header: headerText(resp),
		Body:   string(body),
	}, nil
}

func headerText(resp *http.Response) string {
	proto := resp.Proto
	if proto == "" {
		proto = "HTTP/1.1"
	}
	status := resp.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var sb strings.Builder
	sb.WriteString(proto + " " + status + "\r\n")
	// writing to a strings.Builder does not fail
	_ = resp.Header.Write(&sb)
	sb.WriteString("\r\n")
	return sb.String()
}

func readBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	case "deflate":
		fr := flate.NewReader(resp.Body)
		defer fr.Close()
		r = fr
	}
	return io.ReadAll(io.LimitReader(r, MaxBodySize))
}

// ReadResponse parses a raw HTTP response, such as one saved by an
// intercepting proxy, from r.
func ReadResponse(url string, r io.Reader) (*exchange.Exchange, error) {
	resp, err := http.ReadResponse(bufio.NewReader(r), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTTP response: %w", err)
	}
	return FromResponse(url, resp)
}

// ReadResponseFile parses the raw HTTP response stored at path. The path is
// used as the URL of the exchange.
func ReadResponseFile(path string) (*exchange.Exchange, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadResponse(path, f)
}
