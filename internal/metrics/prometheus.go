package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Run metrics
	RunsStarted    *prometheus.CounterVec
	RunsFinished   *prometheus.CounterVec
	RunDuration    *prometheus.HistogramVec
	LeaseConflicts *prometheus.CounterVec

	// Item metrics
	ItemsProcessed  *prometheus.CounterVec
	ItemErrors      *prometheus.CounterVec
	CandidatesFound *prometheus.CounterVec

	// Dispatcher metrics
	WorkersLive prometheus.Gauge

	// Archive metrics
	RecordsArchived prometheus.Counter
	ArchiveErrors   prometheus.Counter
}

// NewMetrics creates and registers Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		RunsStarted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reader_runs_started_total",
				Help: "Total number of partition runs started",
			},
			[]string{"partition"},
		),

		RunsFinished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reader_runs_finished_total",
				Help: "Total number of partition runs finished",
			},
			[]string{"partition", "outcome"},
		),

		RunDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reader_run_duration_seconds",
				Help:    "Duration of partition runs",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"partition"},
		),

		LeaseConflicts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reader_lease_conflicts_total",
				Help: "Total number of runs aborted because the partition was owned elsewhere",
			},
			[]string{"partition"},
		),

		ItemsProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reader_items_processed_total",
				Help: "Total number of items entering evaluation",
			},
			[]string{"partition"},
		),

		ItemErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reader_item_errors_total",
				Help: "Total number of per-item evaluation failures",
			},
			[]string{"partition"},
		),

		CandidatesFound: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reader_candidates_found_total",
				Help: "Total number of candidate records written",
			},
			[]string{"partition"},
		),

		WorkersLive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "reader_workers_live",
				Help: "Number of currently live partition workers",
			},
		),

		RecordsArchived: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "reader_records_archived_total",
				Help: "Total number of acted records migrated to the archive",
			},
		),

		ArchiveErrors: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "reader_archive_errors_total",
				Help: "Total number of archive migration failures",
			},
		),
	}
}
