// Package metrics defines the Prometheus metrics exported by passive analysis.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExchangesScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "passive_analysis_exchanges_scanned_total",
			Help: "Total number of HTTP exchanges scanned",
		},
	)

	FindingsRaised = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "passive_analysis_findings_raised_total",
			Help: "Total number of findings raised",
		},
		[]string{"kind"},
	)

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "passive_analysis_scan_duration_seconds",
			Help:    "Time taken to run all rules against an exchange",
			Buckets: prometheus.DefBuckets,
		},
	)

	MessagesHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "passive_analysis_messages_handled_total",
			Help: "Total number of worker messages handled",
		},
		[]string{"result"},
	)

	DuplicateFindingsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "passive_analysis_duplicate_findings_dropped_total",
			Help: "Total number of findings dropped because they were already reported",
		},
	)

	DeadlineExtensions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "passive_analysis_message_deadline_extensions_total",
			Help: "Total number of times a pubsub message deadline was extended",
		},
	)
)
