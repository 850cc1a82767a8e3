package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Engine and source Prometheus metrics.
var (
	EngineRebuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "jobsift",
			Name:      "engine_rebuild_duration_seconds",
			Help:      "Facet index rebuild duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		},
	)

	EngineRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "jobsift",
			Name:      "engine_records",
			Help:      "Records in the collection",
		},
	)

	EngineFilteredRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "jobsift",
			Name:      "engine_filtered_records",
			Help:      "Records in the filtered view",
		},
	)

	EngineFacets = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "jobsift",
			Name:      "engine_facets",
			Help:      "Facets in the current index",
		},
	)

	SourceRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobsift",
			Name:      "source_requests_total",
			Help:      "Total number of job source requests",
		},
		[]string{"operation", "status"},
	)

	SourceRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jobsift",
			Name:      "source_request_duration_seconds",
			Help:      "Job source request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	PostingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobsift",
			Name:      "posting_cache_total",
			Help:      "Posting cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var engineMetricsRegistered bool

// RegisterEngineMetrics registers engine, source and cache metrics. Must be called once from main.
func RegisterEngineMetrics() {
	if engineMetricsRegistered {
		return
	}
	prometheus.MustRegister(EngineRebuildDuration)
	prometheus.MustRegister(EngineRecords)
	prometheus.MustRegister(EngineFilteredRecords)
	prometheus.MustRegister(EngineFacets)
	prometheus.MustRegister(SourceRequestsTotal)
	prometheus.MustRegister(SourceRequestDuration)
	prometheus.MustRegister(PostingCacheTotal)
	engineMetricsRegistered = true
}

// EngineObserver reports facet index rebuilds to Prometheus.
type EngineObserver struct{}

// ObserveRebuild records one rebuild.
func (EngineObserver) ObserveRebuild(duration time.Duration, records, facets, filtered int) {
	EngineRebuildDuration.Observe(duration.Seconds())
	EngineRecords.Set(float64(records))
	EngineFacets.Set(float64(facets))
	EngineFilteredRecords.Set(float64(filtered))
}

// ObserveSource records one job source request.
func ObserveSource(operation string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	SourceRequestsTotal.WithLabelValues(operation, status).Inc()
	SourceRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
