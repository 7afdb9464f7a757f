package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveSearch(OutcomeOK, 10*time.Millisecond, 3)
	m.ObserveSearch(OutcomeEmpty, time.Millisecond, 0)
	m.StoreFailure("search")
	m.FacetCacheLookup(true)
	m.FacetCacheLookup(false)
	m.FacetCacheLookup(false)
	m.IndexOperation("index", nil)
	m.IndexOperation("index", errors.New("boom"))

	if got := testutil.ToFloat64(m.SearchRequestsTotal.WithLabelValues(OutcomeOK)); got != 1 {
		t.Errorf("ok requests = %v", got)
	}
	if got := testutil.ToFloat64(m.SearchResultsTotal); got != 3 {
		t.Errorf("results = %v", got)
	}
	if got := testutil.ToFloat64(m.StoreFailuresTotal.WithLabelValues("search")); got != 1 {
		t.Errorf("store failures = %v", got)
	}
	if got := testutil.ToFloat64(m.FacetCacheLookups.WithLabelValues("miss")); got != 2 {
		t.Errorf("cache misses = %v", got)
	}
	if got := testutil.ToFloat64(m.IndexOperationsTotal.WithLabelValues("index", "error")); got != 1 {
		t.Errorf("index errors = %v", got)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveSearch(OutcomeOK, time.Second, 1)
	m.StoreFailure("count")
	m.FacetCacheLookup(true)
	m.IndexOperation("delete", nil)
}
