// Package worker scans the HTTP exchanges delivered to the worker in pubsub
// messages, saves the findings raised for them and announces completion.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
	"gocloud.dev/pubsub"

	"github.com/ossf/passive-analysis/internal/capture"
	"github.com/ossf/passive-analysis/internal/log"
	"github.com/ossf/passive-analysis/internal/metrics"
	"github.com/ossf/passive-analysis/internal/notification"
	"github.com/ossf/passive-analysis/internal/responseanalysis"
	"github.com/ossf/passive-analysis/internal/resultstore"
	"github.com/ossf/passive-analysis/pkg/api/exchange"
	"github.com/ossf/passive-analysis/pkg/api/finding"
)

// Message metadata keys understood by the worker. A message without
// MetadataCapturePath carries a JSON encoded exchange.Exchange as its body.
const (
	MetadataCapturePath   = "capture_path"
	MetadataCaptureFormat = "capture_format"
	MetadataURL           = "url"
)

// Capture formats. When no format is given, paths ending in ".pcap" are
// read as FormatPCAP and everything else as FormatHTTP.
const (
	FormatPCAP = "pcap"
	FormatHTTP = "http"
)

// ErrBadRequest is returned for messages that can never be scanned.
var ErrBadRequest = errors.New("bad request")

// Scanner runs the analyzer over exchanges and stores the results. Results,
// NotificationTopic, Captures and Dedup may all be nil, in which case the
// associated step is skipped.
type Scanner struct {
	Analyzer          *responseanalysis.Analyzer
	Dedup             *Deduplicator
	Results           *resultstore.ResultStore
	NotificationTopic *pubsub.Topic
	Captures          *blob.Bucket
}

// Scan analyzes ex and returns the record of the new findings, along with the
// key it was saved under. Records are only saved when they hold findings;
// completion is announced either way. Findings count as reported only once
// both steps succeed.
func (s *Scanner) Scan(ctx context.Context, ex *exchange.Exchange) (*finding.Record, string, error) {
	findings, dropped := s.Dedup.Filter(ex.URL, s.Analyzer.Analyze(ctx, ex))
	r := finding.CreateRecord(ex.URL, findings)

	key := ""
	if s.Results != nil && len(r.Findings) > 0 {
		var err error
		if key, err = s.Results.Save(ctx, r); err != nil {
			return nil, "", fmt.Errorf("failed to save results to %s: %w", s.Results, err)
		}
	}

	if s.NotificationTopic != nil {
		if err := notification.PublishScanCompletion(ctx, s.NotificationTopic, r, key); err != nil {
			return nil, "", err
		}
	}

	s.Dedup.Remember(ex.URL, r.Findings)
	LogScanResult(ctx, r, key, dropped)
	return r, key, nil
}

func captureFormat(path, format string) string {
	if format != "" {
		return strings.ToLower(format)
	}
	if strings.HasSuffix(strings.ToLower(path), ".pcap") {
		return FormatPCAP
	}
	return FormatHTTP
}

func (s *Scanner) readCapture(ctx context.Context, path string) ([]byte, error) {
	if s.Captures == nil {
		return nil, fmt.Errorf("%w: no captures bucket to read %q from", ErrBadRequest, path)
	}
	data, err := s.Captures.ReadAll(ctx, path)
	if gcerrors.Code(err) == gcerrors.NotFound {
		return nil, fmt.Errorf("%w: capture %q not found", ErrBadRequest, path)
	}
	return data, err
}

// exchanges returns the exchanges carried by msg.
func (s *Scanner) exchanges(ctx context.Context, msg *pubsub.Message) ([]*exchange.Exchange, error) {
	path := msg.Metadata[MetadataCapturePath]
	if path == "" {
		ex := &exchange.Exchange{}
		if err := json.Unmarshal(msg.Body, ex); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		if ex.Header == "" && ex.Body == "" {
			return nil, fmt.Errorf("%w: empty exchange", ErrBadRequest)
		}
		return []*exchange.Exchange{ex}, nil
	}

	data, err := s.readCapture(ctx, path)
	if err != nil {
		return nil, err
	}

	switch format := captureFormat(path, msg.Metadata[MetadataCaptureFormat]); format {
	case FormatPCAP:
		exs, err := capture.ReadPCAP(ctx, bytes.NewReader(data))
		if err != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		return exs, err
	case FormatHTTP:
		url := msg.Metadata[MetadataURL]
		if url == "" {
			url = path
		}
		ex, err := capture.ReadResponse(url, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		return []*exchange.Exchange{ex}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported capture format %q", ErrBadRequest, format)
	}
}

// HandleMessage scans every exchange carried by msg. The message is acked
// once all of them have been scanned, or straight away if it can never be
// scanned. Otherwise the error is returned and the message is left to be
// redelivered.
func (s *Scanner) HandleMessage(ctx context.Context, msg *pubsub.Message) error {
	ctx = log.ContextWithAttrs(ctx, slog.String("message_id", msg.LoggableID))
	LogRequest(ctx, msg.Metadata[MetadataURL], msg.Metadata[MetadataCapturePath], msg.Metadata[MetadataCaptureFormat])

	exs, err := s.exchanges(ctx, msg)
	if errors.Is(err, ErrBadRequest) {
		LogBadRequest(ctx, err)
		metrics.MessagesHandled.WithLabelValues("invalid").Inc()
		msg.Ack()
		return nil
	}
	if err != nil {
		metrics.MessagesHandled.WithLabelValues("error").Inc()
		return err
	}

	for _, ex := range exs {
		if _, _, err := s.Scan(ctx, ex); err != nil {
			metrics.MessagesHandled.WithLabelValues("error").Inc()
			return err
		}
	}
	metrics.MessagesHandled.WithLabelValues("ok").Inc()
	msg.Ack()
	return nil
}
