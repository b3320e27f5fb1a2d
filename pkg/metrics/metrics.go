// Package metrics provides Prometheus metrics for the sitemap service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "standardthought"

var (
	// GenerationTotal counts pipeline runs by outcome.
	GenerationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sitemap_generation_total",
			Help:      "Total number of sitemap generation runs",
		},
		[]string{"status"},
	)

	// GenerationDuration measures fetch-to-serialize duration.
	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sitemap_generation_duration_seconds",
			Help:      "Duration of sitemap generation in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// SitemapEntries is the number of <url> entries in the last generated sitemap.
	SitemapEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sitemap_entries",
			Help:      "Number of entries in the last generated sitemap by source",
		},
		[]string{"source"},
	)

	// PersistFailuresTotal counts failed upserts of generated documents.
	PersistFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sitemap_persist_failures_total",
			Help:      "Total number of failed sitemap upserts",
		},
		[]string{"page_type"},
	)

	// SubmissionsTotal counts search-engine notifications.
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sitemap_submissions_total",
			Help:      "Total number of search engine notifications",
		},
		[]string{"kind", "status"},
	)

	// HTTPRequestsTotal counts handled HTTP requests.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"route", "code"},
	)
)

// RecordGeneration records a pipeline run.
func RecordGeneration(status string, duration float64) {
	GenerationTotal.WithLabelValues(status).Inc()
	GenerationDuration.Observe(duration)
}

// SetEntryCounts records how many entries each source contributed.
func SetEntryCounts(static, articles, guides int) {
	SitemapEntries.WithLabelValues("static").Set(float64(static))
	SitemapEntries.WithLabelValues("articles").Set(float64(articles))
	SitemapEntries.WithLabelValues("guides").Set(float64(guides))
}

// RecordPersistFailure records a failed upsert.
func RecordPersistFailure(pageType string) {
	PersistFailuresTotal.WithLabelValues(pageType).Inc()
}

// RecordSubmission records a notification attempt.
func RecordSubmission(kind, status string) {
	SubmissionsTotal.WithLabelValues(kind, status).Inc()
}
