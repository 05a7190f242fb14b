package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"
	"gocloud.dev/pubsub"
	_ "gocloud.dev/pubsub/gcppubsub"
	_ "gocloud.dev/pubsub/kafkapubsub"
	_ "gocloud.dev/pubsub/mempubsub"

	"github.com/ossf/passive-analysis/cmd/worker/pubsubextender"
	"github.com/ossf/passive-analysis/internal/featureflags"
	"github.com/ossf/passive-analysis/internal/geoip"
	"github.com/ossf/passive-analysis/internal/log"
	"github.com/ossf/passive-analysis/internal/responseanalysis"
	"github.com/ossf/passive-analysis/internal/resultstore"
	"github.com/ossf/passive-analysis/internal/worker"
)

var configFile = flag.String("config", "", "optional configuration file; PASSIVE_* environment variables take precedence")

// newScanner builds the Scanner described by cfg. The returned cleanup
// function releases everything newScanner opened.
func newScanner(ctx context.Context, cfg *config) (*worker.Scanner, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var opts []responseanalysis.Option
	if cfg.GeoIPDatabase != "" {
		db, err := geoip.Open(cfg.GeoIPDatabase)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, func() { db.Close() })
		opts = append(opts, responseanalysis.Locator(db))
	}

	s := &worker.Scanner{Analyzer: responseanalysis.New(cfg.sensitivity, opts...)}

	if cfg.DedupSize > 0 {
		d, err := worker.NewDeduplicator(cfg.DedupSize)
		if err != nil {
			return nil, cleanup, err
		}
		s.Dedup = d
	}

	if cfg.ResultsBucket != "" {
		s.Results = resultstore.New(cfg.ResultsBucket, resultstore.ConstructPath())
	}

	// the default value of the NotificationTopic is nil, in which case the
	// scan continues with no notifications published
	if cfg.NotificationTopic != "" {
		topic, err := pubsub.OpenTopic(ctx, cfg.NotificationTopic)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, func() { topic.Shutdown(context.Background()) })
		s.NotificationTopic = topic
	}

	if cfg.CapturesBucket != "" {
		bkt, err := blob.OpenBucket(ctx, cfg.CapturesBucket)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, func() { bkt.Close() })
		s.Captures = bkt
	}

	return s, cleanup, nil
}

// handleMessage scans msg while keeping its deadline extended.
func handleMessage(ctx context.Context, s *worker.Scanner, ext *pubsubextender.Extender, msg *pubsub.Message) error {
	lease, err := ext.Extend(ctx, msg)
	if err != nil {
		return err
	}
	handleErr := s.HandleMessage(ctx, msg)
	if err := lease.Release(); err != nil {
		slog.WarnContext(ctx, "Failed to extend message deadline",
			"message_id", msg.LoggableID,
			"error", err)
	}
	return handleErr
}

func messageLoop(ctx context.Context, cfg *config, s *worker.Scanner) error {
	sub, err := pubsub.OpenSubscription(ctx, cfg.Subscription)
	if err != nil {
		return err
	}
	defer sub.Shutdown(context.Background())

	ext, err := pubsubextender.New(ctx, cfg.Subscription, sub)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Listening for messages to process...")
	for {
		msg, err := sub.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// All subsequent receive calls will return the same error, so we bail out.
			return fmt.Errorf("error receiving message: %w", err)
		}

		if err := handleMessage(ctx, s, ext, msg); err != nil {
			worker.LogScanError(ctx, err)
		}
	}
}

// serveMetrics serves Prometheus metrics, and the pprof handlers if
// enableProfiler is set, on addr until ctx is done.
func serveMetrics(ctx context.Context, addr string, enableProfiler bool) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if enableProfiler {
		mux.Handle("/debug/pprof/", http.DefaultServeMux)
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          log.NewStdLogger(ctx, slog.Default(), slog.LevelWarn),
	}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	slog.InfoContext(ctx, "Serving metrics", "addr", addr, "profiler", enableProfiler)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.ErrorContext(ctx, "Metrics server failed", "error", err)
	}
}

// run starts the worker and returns the exit code once it stops.
func run() int {
	flag.Parse()

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}

	logger := log.Initialize(cfg.LoggerEnv)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := featureflags.Update(cfg.Features); err != nil {
		slog.ErrorContext(ctx, "Failed to parse feature flags", "error", err)
		return 1
	}

	// Log the configuration of the worker at startup so we can observe it.
	slog.InfoContext(ctx, "Starting worker", "config", cfg)

	s, cleanup, err := newScanner(ctx, cfg)
	defer cleanup()
	if err != nil {
		slog.ErrorContext(ctx, "Failed to set up scanner", "error", err)
		return 1
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr, cfg.EnableProfiler)
	}

	if err := messageLoop(ctx, cfg, s); err != nil {
		slog.ErrorContext(ctx, "Error encountered", "error", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run())
}
