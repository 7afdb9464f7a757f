// Package metrics provides Prometheus metrics for search and indexing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Search outcomes recorded by ObserveSearch.
const (
	OutcomeOK          = "ok"
	OutcomeEmpty       = "empty"
	OutcomeUnavailable = "unavailable"
	OutcomeCanceled    = "canceled"
)

// Metrics holds all Prometheus metrics. A nil *Metrics records nothing.
type Metrics struct {
	SearchRequestsTotal  *prometheus.CounterVec
	SearchDuration       prometheus.Histogram
	SearchResultsTotal   prometheus.Counter
	StoreFailuresTotal   *prometheus.CounterVec
	FacetCacheLookups    *prometheus.CounterVec
	IndexOperationsTotal *prometheus.CounterVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SearchRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shirabe_search_requests_total",
				Help: "Total number of search requests by outcome",
			},
			[]string{"outcome"},
		),
		SearchDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "shirabe_search_duration_seconds",
				Help:    "Duration of search requests in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
		),
		SearchResultsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "shirabe_search_results_total",
				Help: "Total number of results rendered",
			},
		),
		StoreFailuresTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shirabe_store_failures_total",
				Help: "Content store failures by operation",
			},
			[]string{"operation"},
		),
		FacetCacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shirabe_facet_cache_lookups_total",
				Help: "Facet cache lookups by result (hit or miss)",
			},
			[]string{"result"},
		),
		IndexOperationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shirabe_index_operations_total",
				Help: "Content index operations by operation and status",
			},
			[]string{"operation", "status"},
		),
	}
}

// ObserveSearch records one search request.
func (m *Metrics) ObserveSearch(outcome string, d time.Duration, results int) {
	if m == nil {
		return
	}
	m.SearchRequestsTotal.WithLabelValues(outcome).Inc()
	m.SearchDuration.Observe(d.Seconds())
	m.SearchResultsTotal.Add(float64(results))
}

// StoreFailure records a failed content store call.
func (m *Metrics) StoreFailure(op string) {
	if m == nil {
		return
	}
	m.StoreFailuresTotal.WithLabelValues(op).Inc()
}

// FacetCacheLookup records a facet cache hit or miss.
func (m *Metrics) FacetCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.FacetCacheLookups.WithLabelValues(result).Inc()
}

// IndexOperation records an index or delete operation.
func (m *Metrics) IndexOperation(op string, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.IndexOperationsTotal.WithLabelValues(op, status).Inc()
}
