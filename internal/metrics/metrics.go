// Package metrics exposes the engine's indexing and retrieval metrics
// as Prometheus collectors, served over /metrics alongside the MCP
// tool-call listener.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IndexDuration observes how long one full indexing pass takes.
	IndexDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "codegraph",
		Subsystem: "index",
		Name:      "duration_seconds",
		Help:      "Duration of a full indexing pass.",
		Buckets:   prometheus.DefBuckets,
	})

	// FilesIndexed counts files an indexing pass processed, labeled by
	// hash-gate outcome: "changed" files once their write batch
	// commits, "unchanged" files with no write at all, so a
	// steady-state incremental run is visibly dominated by "unchanged".
	FilesIndexed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codegraph",
		Subsystem: "index",
		Name:      "files_total",
		Help:      "Files processed by an indexing pass, by hash-gate outcome.",
	}, []string{"outcome"})

	// ParseErrors counts files whose extraction recorded a non-fatal
	// parse-error summary.
	ParseErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "codegraph",
		Subsystem: "index",
		Name:      "parse_errors_total",
		Help:      "Files indexed with a recorded parse error.",
	})

	// QueryLatency observes retrieval latency by mode (fast/hybrid).
	QueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "codegraph",
		Subsystem: "query",
		Name:      "latency_seconds",
		Help:      "Retrieval latency by mode.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"mode"})

	// EmbeddingCacheHits/Misses drive the cache hit rate: the embedder's
	// cache decorator increments one of these per fingerprint lookup.
	EmbeddingCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "codegraph",
		Subsystem: "embedding_cache",
		Name:      "hits_total",
		Help:      "Embedding cache lookups served from the store.",
	})
	EmbeddingCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "codegraph",
		Subsystem: "embedding_cache",
		Name:      "misses_total",
		Help:      "Embedding cache lookups that required computing a fresh vector.",
	})
)

// ObserveIndexDuration records the wall-clock time since start.
func ObserveIndexDuration(start time.Time) {
	IndexDuration.Observe(time.Since(start).Seconds())
}

// ObserveQueryLatency records latency for one retrieval call under mode
// ("fast" or "hybrid").
func ObserveQueryLatency(mode string, start time.Time) {
	QueryLatency.WithLabelValues(mode).Observe(time.Since(start).Seconds())
}
