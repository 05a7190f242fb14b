package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/exp/slices"

	"github.com/ossf/passive-analysis/internal/featureflags"
	"github.com/ossf/passive-analysis/internal/responseanalysis"
	"github.com/ossf/passive-analysis/internal/responseanalysis/likelihood"
	"github.com/ossf/passive-analysis/internal/viewstate"
	"github.com/ossf/passive-analysis/internal/worker"
	"github.com/ossf/passive-analysis/pkg/api/finding"
)

func writeResponse(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	raw := "HTTP/1.1 200 OK\r\nContent-Type: text/html\r\n\r\n" + body
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("WriteFile() = %v", err)
	}
	return path
}

// viewStateBody returns a hidden field holding ViewState without a MAC. The
// string is long enough for the value to be a Base64 candidate.
func viewStateBody(t *testing.T) string {
	t.Helper()
	raw, err := viewstate.Encode(viewstate.Pair{
		First:  viewstate.LengthPrefixedString{Value: strings.Repeat("x", 20)},
		Second: viewstate.EmptyNode{},
	}, nil)
	if err != nil {
		t.Fatalf("Encode() = %v", err)
	}
	return `<input type="hidden" name="__VIEWSTATE" id="__VIEWSTATE" value="` + base64.StdEncoding.EncodeToString(raw) + `" />`
}

func TestReadExchanges(t *testing.T) {
	dir := t.TempDir()
	a := writeResponse(t, dir, "a.http", "first")
	b := writeResponse(t, dir, "b.http", "second")

	exs, err := readExchanges(context.Background(), sources{files: []string{a, "", b}})
	if err != nil {
		t.Fatalf("readExchanges() = %v", err)
	}
	if len(exs) != 2 || exs[0].URL != a || exs[1].Body != "second" {
		t.Errorf("readExchanges() = %+v", exs)
	}

	exs, err = readExchanges(context.Background(), sources{files: []string{a}, urlOverride: "https://example.com/"})
	if err != nil {
		t.Fatalf("readExchanges() = %v", err)
	}
	if exs[0].URL != "https://example.com/" {
		t.Errorf("URL = %q; want override", exs[0].URL)
	}
}

func TestReadExchangesFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("fetched " + r.URL.Path))
	}))
	defer ts.Close()

	exs, err := readExchanges(context.Background(), sources{
		fetch:  []string{ts.URL + "/a", "", ts.URL + "/b"},
		client: ts.Client(),
	})
	if err != nil {
		t.Fatalf("readExchanges() = %v", err)
	}
	if len(exs) != 2 || exs[0].Body != "fetched /a" || exs[1].URL != ts.URL+"/b" {
		t.Errorf("readExchanges() = %+v", exs)
	}
}

func TestReadExchangesErrors(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	if _, err := readExchanges(ctx, sources{}); !errors.Is(err, errNoInput) {
		t.Errorf("readExchanges() with no input = %v; want %v", err, errNoInput)
	}
	if _, err := readExchanges(ctx, sources{files: []string{filepath.Join(dir, "missing")}}); err == nil {
		t.Error("readExchanges() of missing file error = nil; want error")
	}
	if _, err := readExchanges(ctx, sources{pcap: filepath.Join(dir, "missing.pcap")}); err == nil {
		t.Error("readExchanges() of missing pcap error = nil; want error")
	}
	notPCAP := writeResponse(t, dir, "not.pcap", "")
	if _, err := readExchanges(ctx, sources{pcap: notPCAP}); err == nil {
		t.Error("readExchanges() of invalid pcap error = nil; want error")
	}
}

func TestScanAll(t *testing.T) {
	dir := t.TempDir()
	exs, err := readExchanges(context.Background(), sources{files: []string{
		writeResponse(t, dir, "viewstate.http", viewStateBody(t)),
		writeResponse(t, dir, "plain.http", "<p>nothing here</p>"),
	}})
	if err != nil {
		t.Fatalf("readExchanges() = %v", err)
	}

	s := &worker.Scanner{Analyzer: responseanalysis.New(likelihood.Default)}
	var out bytes.Buffer
	if err := scanAll(context.Background(), s, exs, &out, false); err != nil {
		t.Fatalf("scanAll() = %v", err)
	}

	dec := json.NewDecoder(&out)
	var records []finding.Record
	for dec.More() {
		var r finding.Record
		if err := dec.Decode(&r); err != nil {
			t.Fatalf("Decode() = %v", err)
		}
		records = append(records, r)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records; want 2", len(records))
	}

	var kinds []finding.Kind
	for _, f := range records[0].Findings {
		kinds = append(kinds, f.Kind)
	}
	if want := []finding.Kind{finding.ViewStateDisclosure, finding.ViewStateWithoutMAC}; !slices.Equal(kinds, want) {
		t.Errorf("first record kinds = %v; want %v", kinds, want)
	}
	if len(records[1].Findings) != 0 {
		t.Errorf("second record findings = %v; want none", records[1].Findings)
	}
}

func TestPrintFeatureFlags(t *testing.T) {
	var out bytes.Buffer
	printFeatureFlags(&out)
	for _, ff := range featureflags.All() {
		if !strings.Contains(out.String(), ff.Name()) {
			t.Errorf("feature list is missing %s:\n%s", ff.Name(), out.String())
		}
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	input := writeResponse(t, dir, "viewstate.http", viewStateBody(t))
	resultsDir := filepath.Join(dir, "results")
	if err := os.Mkdir(resultsDir, 0o755); err != nil {
		t.Fatalf("Mkdir() = %v", err)
	}

	args := os.Args
	t.Cleanup(func() { os.Args = args })
	os.Args = []string{"scan", "-input", input, "-url", "http://example.com/", "-upload", "file://" + resultsDir}

	if code := run(); code != 0 {
		t.Fatalf("run() = %d; want 0", code)
	}
	saved, err := filepath.Glob(filepath.Join(resultsDir, "*.json"))
	if err != nil || len(saved) != 1 {
		t.Errorf("saved records = %v, %v; want one", saved, err)
	}
}
