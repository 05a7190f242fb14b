package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/ossf/passive-analysis/internal/capture"
	"github.com/ossf/passive-analysis/internal/featureflags"
	"github.com/ossf/passive-analysis/internal/geoip"
	"github.com/ossf/passive-analysis/internal/log"
	"github.com/ossf/passive-analysis/internal/responseanalysis"
	"github.com/ossf/passive-analysis/internal/responseanalysis/likelihood"
	"github.com/ossf/passive-analysis/internal/resultstore"
	"github.com/ossf/passive-analysis/internal/utils"
	"github.com/ossf/passive-analysis/internal/worker"
	"github.com/ossf/passive-analysis/pkg/api/exchange"
)

var (
	pcapFile     = flag.String("pcap", "", "pcap file to extract HTTP responses from")
	url          = flag.String("url", "", "URL to report for -input files instead of their path")
	geoIPDB      = flag.String("geoip", "", "GeoIP2 country database used to locate IP addresses found in ViewState")
	upload       = flag.String("upload", "", "bucket URL for uploading finding records")
	pretty       = flag.Bool("pretty", false, "indent the JSON records printed")
	features     = flag.String("features", "", "override features that are enabled/disabled by default")
	listFeatures = flag.Bool("list-features", false, "list available features that can be toggled")
	help         = flag.Bool("help", false, "print help on available options")
	uaExtra      = flag.String("user-agent-extra", "", "extra information appended to the user-agent of -fetch requests")
	sensitivity  likelihood.Sensitivity
	inputs       = utils.CommaSeparatedFlags("input", nil,
		"list of raw HTTP response files to scan, separated by commas")
	fetchURLs = utils.CommaSeparatedFlags("fetch", nil,
		"list of URLs to request and scan the responses of, separated by commas")
)

var errNoInput = errors.New("no input given, use -input, -pcap or -fetch")

// sources lists where the exchanges to scan come from.
type sources struct {
	files       []string
	pcap        string
	urlOverride string
	fetch       []string
	client      *http.Client
}

func printFeatureFlags(w io.Writer) {
	fmt.Fprintf(w, "Feature List\n\n")
	fmt.Fprintf(w, "%-30s %-8s %s\n", "Name", "Default", "Description")
	fmt.Fprintf(w, "------------------------------------------------------------\n")

	// print Off/On rather than 'false' and 'true'
	stateStrings := map[bool]string{false: "Off", true: "On"}
	for _, ff := range featureflags.All() {
		fmt.Fprintf(w, "%-30s %-8s %s\n", ff.Name(), stateStrings[ff.Enabled()], ff.Description())
	}
	fmt.Fprintln(w)
}

// readExchanges loads every exchange from src: response files first, then
// the pcap file, then fetched URLs.
func readExchanges(ctx context.Context, src sources) ([]*exchange.Exchange, error) {
	var exs []*exchange.Exchange
	for _, path := range src.files {
		if path == "" {
			continue
		}
		ex, err := capture.ReadResponseFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if src.urlOverride != "" {
			ex.URL = src.urlOverride
		}
		exs = append(exs, ex)
	}

	if src.pcap != "" {
		f, err := os.Open(src.pcap)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		fromPCAP, err := capture.ReadPCAP(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", src.pcap, err)
		}
		slog.InfoContext(ctx, "Read responses from pcap", "path", src.pcap, "responses", len(fromPCAP))
		exs = append(exs, fromPCAP...)
	}

	for _, u := range src.fetch {
		if u == "" {
			continue
		}
		ex, err := capture.Fetch(ctx, src.client, u)
		if err != nil {
			return nil, err
		}
		exs = append(exs, ex)
	}

	if len(exs) == 0 {
		return nil, errNoInput
	}
	return exs, nil
}

// scanAll scans every exchange with s and writes one JSON record per
// exchange to out.
func scanAll(ctx context.Context, s *worker.Scanner, exs []*exchange.Exchange, out io.Writer, indent bool) error {
	enc := json.NewEncoder(out)
	if indent {
		enc.SetIndent("", "  ")
	}
	for _, ex := range exs {
		r, _, err := s.Scan(log.ContextWithAttrs(ctx, slog.String("url", ex.URL)), ex)
		if err != nil {
			return err
		}
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// run scans the inputs named by the flags and returns the exit code.
func run() int {
	log.Initialize(os.Getenv("LOGGER_ENV"))

	flag.TextVar(&sensitivity, "sensitivity", likelihood.Default,
		"how aggressively unlikely Base64 candidates are discarded: off, default, low, medium or high")
	inputs.InitFlag()
	fetchURLs.InitFlag()
	flag.Parse()

	if err := featureflags.Update(*features); err != nil {
		slog.Error("Failed to parse flags", "error", err)
		return 1
	}

	if *help {
		flag.Usage()
		return 0
	}

	if *listFeatures {
		printFeatureFlags(os.Stdout)
		return 0
	}

	ctx := context.Background()

	exs, err := readExchanges(ctx, sources{
		files:       inputs.Values,
		pcap:        *pcapFile,
		urlOverride: *url,
		fetch:       fetchURLs.Values,
		client:      capture.NewClient(*uaExtra),
	})
	if errors.Is(err, errNoInput) {
		flag.Usage()
		return 2
	}
	if err != nil {
		slog.ErrorContext(ctx, "Error reading input", "error", err)
		return 1
	}

	var opts []responseanalysis.Option
	if *geoIPDB != "" {
		db, err := geoip.Open(*geoIPDB)
		if err != nil {
			slog.ErrorContext(ctx, "Error opening GeoIP database", "error", err)
			return 1
		}
		defer db.Close()
		opts = append(opts, responseanalysis.Locator(db))
	}

	s := &worker.Scanner{Analyzer: responseanalysis.New(sensitivity, opts...)}
	if *upload != "" {
		s.Results = resultstore.New(*upload)
	}

	if err := scanAll(ctx, s, exs, os.Stdout, *pretty); err != nil {
		slog.ErrorContext(ctx, "Scan failed", "error", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run())
}
