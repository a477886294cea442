// Package observability holds the per-run counters.
package observability

import (
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
)

// Metrics counts what a run did. A fresh Metrics is created per run.
type Metrics struct {
	// Fetch metrics
	FeedsRead       atomic.Int64
	FeedsFailed     atomic.Int64
	SearchQueries   atomic.Int64
	PagesFetched    atomic.Int64
	FetchFailed     atomic.Int64
	CacheHits       atomic.Int64
	BytesDownloaded atomic.Int64

	// Admission metrics
	RecordsSeen     atomic.Int64
	RecordsAdmitted atomic.Int64
	RecordsRejected atomic.Int64
	RecordsDropped  atomic.Int64

	// Store metrics
	RecordsMerged     atomic.Int64
	DuplicatesRemoved atomic.Int64
	MirrorFailures    atomic.Int64

	logger *slog.Logger
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	return &Metrics{
		logger: logger.With("component", "metrics"),
	}
}

type metric struct {
	name  string
	help  string
	value int64
}

func (m *Metrics) list() []metric {
	return []metric{
		{"newsgoat_feeds_read_total", "Feeds fetched and parsed", m.FeedsRead.Load()},
		{"newsgoat_feeds_failed_total", "Feeds that could not be read", m.FeedsFailed.Load()},
		{"newsgoat_search_queries_total", "Search result pages fetched", m.SearchQueries.Load()},
		{"newsgoat_pages_fetched_total", "Article pages fetched", m.PagesFetched.Load()},
		{"newsgoat_fetch_failed_total", "Article fetches or extractions that failed", m.FetchFailed.Load()},
		{"newsgoat_cache_hits_total", "Article URLs skipped because they were cached", m.CacheHits.Load()},
		{"newsgoat_bytes_downloaded_total", "Bytes of article and feed bodies downloaded", m.BytesDownloaded.Load()},
		{"newsgoat_records_seen_total", "Records entering the admission pipeline", m.RecordsSeen.Load()},
		{"newsgoat_records_admitted_total", "Records admitted", m.RecordsAdmitted.Load()},
		{"newsgoat_records_rejected_total", "Records routed to the removed log", m.RecordsRejected.Load()},
		{"newsgoat_records_dropped_total", "Records dropped without a removal reason", m.RecordsDropped.Load()},
		{"newsgoat_records_merged_total", "Records written to the master store", m.RecordsMerged.Load()},
		{"newsgoat_duplicates_removed_total", "Records removed by fingerprint dedup", m.DuplicatesRemoved.Load()},
		{"newsgoat_mirror_failures_total", "Failed mirror writes", m.MirrorFailures.Load()},
	}
}

// WriteText writes the counters in Prometheus text exposition format, for
// a node_exporter textfile collector.
func (m *Metrics) WriteText(w io.Writer) error {
	for _, metric := range m.list() {
		if _, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n%s %d\n",
			metric.name, metric.help, metric.name, metric.name, metric.value); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns all metrics as a map.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"feeds_read":         m.FeedsRead.Load(),
		"feeds_failed":       m.FeedsFailed.Load(),
		"search_queries":     m.SearchQueries.Load(),
		"pages_fetched":      m.PagesFetched.Load(),
		"fetch_failed":       m.FetchFailed.Load(),
		"cache_hits":         m.CacheHits.Load(),
		"bytes_downloaded":   m.BytesDownloaded.Load(),
		"records_seen":       m.RecordsSeen.Load(),
		"records_admitted":   m.RecordsAdmitted.Load(),
		"records_rejected":   m.RecordsRejected.Load(),
		"records_dropped":    m.RecordsDropped.Load(),
		"records_merged":     m.RecordsMerged.Load(),
		"duplicates_removed": m.DuplicatesRemoved.Load(),
		"mirror_failures":    m.MirrorFailures.Load(),
	}
}

// Log emits the non-zero counters at info level.
func (m *Metrics) Log(msg string) {
	args := make([]any, 0, 28)
	for _, metric := range m.list() {
		if metric.value != 0 {
			args = append(args, metric.name, metric.value)
		}
	}
	m.logger.Info(msg, args...)
}
