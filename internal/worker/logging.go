package worker

import (
	"context"
	"log/slog"

	"github.com/ossf/passive-analysis/internal/log"
	"github.com/ossf/passive-analysis/pkg/api/finding"
)

/*
NOTE: These strings may be matched by log based metrics and dashboards, and
so should be changed with care.
*/
const (
	scanCompleteLogMsg = "Scan completed successfully"
	scanErrorLogMsg    = "Scan error"
	gotRequestLogMsg   = "Got request"
	badRequestLogMsg   = "Dropping invalid request"
)

// LogRequest records that a request for a scan was received by the worker.
func LogRequest(ctx context.Context, url, capturePath, format string) {
	slog.InfoContext(ctx, gotRequestLogMsg,
		log.LabelAttr("url", url),
		log.LabelAttr("capture_path", capturePath),
		log.LabelAttr("capture_format", format),
	)
}

// LogScanResult records the outcome of scanning a single exchange.
func LogScanResult(ctx context.Context, r *finding.Record, resultKey string, dropped int) {
	slog.InfoContext(ctx, scanCompleteLogMsg,
		log.LabelAttr("url", r.URL),
		"findings", len(r.Findings),
		"duplicates_dropped", dropped,
		"result_key", resultKey,
	)
}

// LogScanError indicates that a request could not be scanned for a reason
// other than the request itself, so it will be retried.
func LogScanError(ctx context.Context, err error) {
	slog.ErrorContext(ctx, scanErrorLogMsg, "error", err)
}

// LogBadRequest indicates that a request can never be scanned and has been
// dropped.
func LogBadRequest(ctx context.Context, err error) {
	slog.WarnContext(ctx, badRequestLogMsg, "error", err)
}
