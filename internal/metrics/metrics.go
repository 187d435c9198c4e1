// Package metrics holds the prometheus collectors shared by the cleaning and
// aggregation pipelines. Collectors live on a private registry so tests and
// the /metrics endpoint see the same set without touching the global one.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/guttosm/tickpulse/internal/domain/models"
)

const namespace = "tickpulse"

// Registry is the registry every collector below is registered on.
var Registry = prometheus.NewRegistry()

var (
	// CleanRows counts cleaned rows by outcome (accepted, empty_field, malformed, ...).
	CleanRows = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "clean",
		Name:      "rows_total",
		Help:      "Rows seen by the cleaner, by outcome.",
	}, []string{"outcome"})

	// CleanFiles counts cleaned files by status (ok, failed).
	CleanFiles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "clean",
		Name:      "files_total",
		Help:      "Shard files processed by the cleaning orchestrator, by status.",
	}, []string{"status"})

	// IngestFiles counts shard files read for aggregation by status (ok, failed).
	IngestFiles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "files_total",
		Help:      "Shard files read by the concurrent ingestor, by status.",
	}, []string{"status"})

	// IngestTicks counts in-window ticks collected by the ingestor.
	IngestTicks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "ticks_total",
		Help:      "Ticks kept by the concurrent ingestor.",
	})

	// BarsEmitted counts bars produced by the aggregator.
	BarsEmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "aggregate",
		Name:      "bars_total",
		Help:      "OHLCV bars emitted.",
	})

	// GenerateDuration observes end-to-end aggregation request latency.
	GenerateDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "aggregate",
		Name:      "generate_duration_seconds",
		Help:      "Latency of OHLCV generation requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		CleanRows,
		CleanFiles,
		IngestFiles,
		IngestTicks,
		BarsEmitted,
		GenerateDuration,
	)
}

// ObserveClean adds one file's cleaning stats to CleanRows.
func ObserveClean(s models.CleanStats) {
	CleanRows.WithLabelValues("accepted").Add(float64(s.Accepted))
	CleanRows.WithLabelValues("empty_field").Add(float64(s.EmptyField))
	CleanRows.WithLabelValues("malformed").Add(float64(s.Malformed))
	CleanRows.WithLabelValues("duplicate").Add(float64(s.Duplicate))
	CleanRows.WithLabelValues("magnitude").Add(float64(s.Magnitude))
	CleanRows.WithLabelValues("negative_size").Add(float64(s.NegativeSize))
	CleanRows.WithLabelValues("sign_corrected").Add(float64(s.SignCorrected))
}

// Handler exposes Registry in the prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
