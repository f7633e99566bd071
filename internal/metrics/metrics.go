// Package metrics defines the Prometheus collectors for the search service
// and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	SearchQueriesTotal   *prometheus.CounterVec
	SearchLatency        prometheus.Histogram
	SearchResultsCount   prometheus.Histogram
	ItemsRenderedTotal   *prometheus.CounterVec
	ExcerptFetchErrors   prometheus.Counter
	PageCacheTotal       *prometheus.CounterVec
	IndexLoadsTotal      *prometheus.CounterVec
	IndexLoadDuration    prometheus.Histogram
	IndexDocuments       prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them on reg. A nil reg gets a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, route, and status.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_queries_total",
				Help: "Total search queries by outcome (hit, zero_result, deferred).",
			},
			[]string{"outcome"},
		),
		SearchLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_latency_seconds",
				Help:    "Time to tokenize, score and sort one query, in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_results_count",
				Help:    "Number of results produced per search query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
			},
		),
		ItemsRenderedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_items_rendered_total",
				Help: "Result items rendered by kind (description, excerpt, title).",
			},
			[]string{"kind"},
		),
		ExcerptFetchErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "search_excerpt_fetch_errors_total",
				Help: "Document fetches for excerpts that failed.",
			},
		),
		PageCacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "page_cache_lookups_total",
				Help: "Page body cache lookups by result (hit, miss).",
			},
			[]string{"result"},
		),
		IndexLoadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_index_loads_total",
				Help: "Search index load attempts by status.",
			},
			[]string{"status"},
		),
		IndexLoadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_index_load_duration_seconds",
				Help:    "Search index load latency in seconds.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),
		IndexDocuments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "search_index_documents",
				Help: "Number of documents in the loaded search index.",
			},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.ItemsRenderedTotal,
		m.ExcerptFetchErrors,
		m.PageCacheTotal,
		m.IndexLoadsTotal,
		m.IndexLoadDuration,
		m.IndexDocuments,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler for the registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveQuery records one executed query.
func (m *Metrics) ObserveQuery(d time.Duration, results int) {
	if m == nil {
		return
	}
	outcome := "hit"
	if results == 0 {
		outcome = "zero_result"
	}
	m.SearchQueriesTotal.WithLabelValues(outcome).Inc()
	m.SearchLatency.Observe(d.Seconds())
	m.SearchResultsCount.Observe(float64(results))
}

// QueryDeferred records a query queued until the index loads.
func (m *Metrics) QueryDeferred() {
	if m == nil {
		return
	}
	m.SearchQueriesTotal.WithLabelValues("deferred").Inc()
}

// ItemRendered records one rendered result item of the given kind.
func (m *Metrics) ItemRendered(kind string) {
	if m == nil {
		return
	}
	m.ItemsRenderedTotal.WithLabelValues(kind).Inc()
}

// FetchError records a failed excerpt fetch.
func (m *Metrics) FetchError() {
	if m == nil {
		return
	}
	m.ExcerptFetchErrors.Inc()
}

// CacheLookup records a page cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.PageCacheTotal.WithLabelValues(result).Inc()
}

// IndexLoad records one index load attempt.
func (m *Metrics) IndexLoad(d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.IndexLoadsTotal.WithLabelValues(status).Inc()
	m.IndexLoadDuration.Observe(d.Seconds())
}

// SetIndexDocuments records the size of the loaded index.
func (m *Metrics) SetIndexDocuments(n int) {
	if m == nil {
		return
	}
	m.IndexDocuments.Set(float64(n))
}
