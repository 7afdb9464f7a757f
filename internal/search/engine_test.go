package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/shirabe/internal/cache"
	"github.com/hyperjump/shirabe/internal/contentstore"
	"github.com/hyperjump/shirabe/internal/metrics"
	"github.com/hyperjump/shirabe/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func item(id string, typ models.ContentType, title, body string, categories ...string) *models.ContentItem {
	return &models.ContentItem{
		ID:          id,
		Type:        typ,
		Title:       title,
		Body:        body,
		PublishedAt: epoch,
		ModifiedAt:  epoch,
		Categories:  categories,
	}
}

func newStore(items ...*models.ContentItem) *contentstore.MemoryStore {
	return contentstore.NewMemoryStore(items...)
}

// countingStore hides the batch and category capabilities and counts calls.
type countingStore struct {
	inner   ContentStore
	counts  int
	err     error
	failOps map[string]bool
}

func (s *countingStore) Search(ctx context.Context, q *models.SearchQuery) ([]*models.ContentItem, int, error) {
	if s.failOps["search"] {
		return nil, 0, s.err
	}
	return s.inner.Search(ctx, q)
}

func (s *countingStore) Count(ctx context.Context, q *models.SearchQuery) (int, error) {
	s.counts++
	if s.failOps["count"] {
		return 0, s.err
	}
	return s.inner.Count(ctx, q)
}

type fakeSpeller map[string]string

func (f fakeSpeller) GetSuggestedQuery(q string) string {
	if c, ok := f[q]; ok {
		return c
	}
	return q
}

var defaultShortcuts = []models.CategoryShortcut{
	{Label: "Careers", Link: "/category/careers"},
	{Label: "News", Link: "/category/news"},
}

func newTestEngine(store ContentStore, opts ...EngineOption) *Engine {
	return NewEngine(
		store,
		NewFacetCounter(testFacetTypes),
		NewExcerptExtractor(250, 100, "...", false),
		NewHighlighter("<mark>", "</mark>", false),
		NewSuggestionEngine([]string{"remote", "engineering"}, defaultShortcuts),
		opts...,
	)
}

func facetCount(facets []models.FacetCount, t models.ContentType) int {
	for _, f := range facets {
		if f.Type == t {
			return f.Count
		}
	}
	return -1
}

func TestEngine_RemoteJobsScenario(t *testing.T) {
	body := strings.Repeat("Our distributed team ships software every week. ", 4) +
		"We offer remote jobs across the globe, with flexible hours. " +
		strings.Repeat("Benefits include learning budgets and hardware. ", 6)
	store := newStore(
		item("job-1", "job", "Remote Software Engineer", body),
		item("article-1", "article", "Career Tips", "How to write a great cover letter."),
	)
	engine := newTestEngine(store)
	q := testNormalizer().Normalize(RawParams{Query: "remote jobs"})

	page, err := engine.Search(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 1 || len(page.Items) != 1 {
		t.Fatalf("total = %d, items = %d, want 1", page.Total, len(page.Items))
	}
	if got := facetCount(page.Facets, "job"); got != 1 {
		t.Errorf("job facet = %d, want 1", got)
	}
	if got := facetCount(page.Facets, "article"); got != 0 {
		t.Errorf("article facet = %d, want 0", got)
	}
	if got := facetCount(page.Facets, models.ContentTypeAll); got != 1 {
		t.Errorf("all facet = %d, want 1", got)
	}

	res := page.Items[0]
	if !strings.Contains(res.HighlightedExcerpt, "<mark>remote</mark> <mark>jobs</mark>") {
		t.Errorf("excerpt not highlighted around the match: %q", res.HighlightedExcerpt)
	}
	if res.HighlightedTitle != "<mark>Remote</mark> Software Engineer" {
		t.Errorf("title = %q", res.HighlightedTitle)
	}
	if res.TypeLabel != "Jobs" {
		t.Errorf("type label = %q", res.TypeLabel)
	}
	if res.Item.Body != body {
		t.Error("item was modified")
	}
	if page.Suggestions != nil {
		t.Error("suggestions should only be attached to empty results")
	}
	if page.Query != "remote jobs" {
		t.Errorf("query = %q", page.Query)
	}
}

func TestEngine_BrowseJobsPagination(t *testing.T) {
	var items []*models.ContentItem
	for i := 0; i < 12; i++ {
		it := item(fmt.Sprintf("job-%02d", i), "job", fmt.Sprintf("Job %d", i), "an opening")
		it.PublishedAt = epoch.Add(time.Duration(i) * time.Hour)
		items = append(items, it)
	}
	items = append(items, item("article-1", "article", "Hiring update", "news"))
	engine := newTestEngine(newStore(items...))
	n := testNormalizer()

	page1, err := engine.Search(context.Background(), n.Normalize(RawParams{Type: "job"}))
	if err != nil {
		t.Fatal(err)
	}
	if page1.Total != 12 || len(page1.Items) != 6 || page1.TotalPages != 2 {
		t.Fatalf("page 1: total %d, items %d, pages %d", page1.Total, len(page1.Items), page1.TotalPages)
	}
	for i, res := range page1.Items {
		want := fmt.Sprintf("job-%02d", 11-i)
		if res.Item.ID != want {
			t.Errorf("page 1 item %d = %s, want %s (newest first)", i, res.Item.ID, want)
		}
	}
	if !page1.HasNext() || page1.HasPrev() {
		t.Error("page 1 navigation flags wrong")
	}

	page3, err := engine.Search(context.Background(), n.Normalize(RawParams{Type: "job", Page: "3"}))
	if err != nil {
		t.Fatal(err)
	}
	if page3.Total != 12 {
		t.Errorf("page 3 total = %d, want 12", page3.Total)
	}
	if page3.Items == nil || len(page3.Items) != 0 {
		t.Errorf("page 3 items = %v, want empty", page3.Items)
	}
	if page3.Suggestions != nil {
		t.Error("a page past the end is not a zero-result query")
	}
}

func TestEngine_ZeroResultsSuggestions(t *testing.T) {
	engine := newTestEngine(newStore(item("a1", "article", "Career Tips", "cover letters")))
	q := testNormalizer().Normalize(RawParams{Query: "quantum blockchain"})

	page, err := engine.Search(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 0 || len(page.Items) != 0 {
		t.Fatalf("expected no results, got %d", page.Total)
	}
	s := page.Suggestions
	if s == nil || len(s.Queries) == 0 || len(s.Categories) == 0 {
		t.Fatalf("suggestions = %+v, want queries and categories", s)
	}
	if s.DidYouMean != "" || s.WithoutFilters != "" {
		t.Errorf("unexpected optional suggestions: %+v", s)
	}
	if got := facetCount(page.Facets, models.ContentTypeAll); got != 0 {
		t.Errorf("all facet = %d", got)
	}
}

func TestEngine_DidYouMean(t *testing.T) {
	engine := newTestEngine(
		newStore(item("j1", "job", "Remote engineer", "")),
		WithSpeller(fakeSpeller{"remte jbos": "remote jobs"}),
	)
	n := testNormalizer()

	page, err := engine.Search(context.Background(), n.Normalize(RawParams{Query: "Remte JBOS"}))
	if err != nil {
		t.Fatal(err)
	}
	if page.Suggestions == nil || page.Suggestions.DidYouMean != "remote jobs" {
		t.Errorf("suggestions = %+v", page.Suggestions)
	}

	page, err = engine.Search(context.Background(), n.Normalize(RawParams{Query: "zzz"}))
	if err != nil {
		t.Fatal(err)
	}
	if page.Suggestions.DidYouMean != "" {
		t.Errorf("did you mean without a correction = %q", page.Suggestions.DidYouMean)
	}
}

func TestEngine_SuggestWithoutFilters(t *testing.T) {
	store := newStore(item("a1", "article", "Remote work", "tips"))
	n := testNormalizer()
	q := n.Normalize(RawParams{Query: "remote", Type: "job", Page: "2"})

	page, err := newTestEngine(store).Search(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}
	if page.Suggestions.WithoutFilters != "" {
		t.Errorf("disabled option produced %q", page.Suggestions.WithoutFilters)
	}

	page, err = newTestEngine(store, WithSuggestWithoutFilters(true)).Search(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}
	if page.Suggestions.WithoutFilters != "q=remote" {
		t.Errorf("WithoutFilters = %q, want q=remote", page.Suggestions.WithoutFilters)
	}

	// nothing to offer when the unfiltered query is empty too
	q = n.Normalize(RawParams{Query: "salary", Type: "job"})
	page, err = newTestEngine(store, WithSuggestWithoutFilters(true)).Search(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}
	if page.Suggestions.WithoutFilters != "" {
		t.Errorf("WithoutFilters = %q, want empty", page.Suggestions.WithoutFilters)
	}
}

func TestEngine_FacetsIgnoreFilters(t *testing.T) {
	store := newStore(
		item("a1", "article", "Remote work", "", "Guides"),
		item("j1", "job", "Remote engineer", "", "Careers"),
		item("j2", "job", "Remote designer", "", "Careers"),
	)
	q := testNormalizer().Normalize(RawParams{Query: "remote", Type: "job", Category: "careers"})
	page, err := newTestEngine(store).Search(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 2 {
		t.Errorf("total = %d, want 2", page.Total)
	}
	if got := facetCount(page.Facets, models.ContentTypeAll); got != 3 {
		t.Errorf("all facet = %d, want unfiltered 3", got)
	}
	if len(page.CategoryFacets) != 2 || page.CategoryFacets[0].Slug != "careers" {
		t.Errorf("category facets = %+v", page.CategoryFacets)
	}
}

func TestEngine_FacetSumInvariant(t *testing.T) {
	store := newStore(
		item("a1", "article", "Go at scale", "concurrency"),
		item("a2", "article", "Hiring", "we hire go developers"),
		item("j1", "job", "Go engineer", "remote"),
		item("p1", "page", "About", "company"),
	)
	n := testNormalizer()
	for _, raw := range []RawParams{{}, {Query: "go"}, {Query: "remote", Type: "page"}, {Query: "nothing"}, {Query: "go hiring"}} {
		for name, s := range map[string]ContentStore{"batch": store, "per-type": &countingStore{inner: store}} {
			page, err := newTestEngine(s).Search(context.Background(), n.Normalize(raw))
			if err != nil {
				t.Fatal(err)
			}
			sum := 0
			for _, f := range page.Facets[1:] {
				sum += f.Count
			}
			if page.Facets[0].Type != models.ContentTypeAll || page.Facets[0].Count != sum {
				t.Errorf("%s %+v: all = %d, sum = %d", name, raw, page.Facets[0].Count, sum)
			}
		}
	}
}

func TestEngine_StoreFailure(t *testing.T) {
	internal := errors.New("dial tcp 10.0.0.5:5432: connection refused")
	for _, op := range []string{"search", "count"} {
		t.Run(op, func(t *testing.T) {
			reg := prometheus.NewRegistry()
			m := metrics.New(reg)
			store := &countingStore{inner: newStore(), err: internal, failOps: map[string]bool{op: true}}
			engine := newTestEngine(store, WithMetrics(m))

			page, err := engine.Search(context.Background(), testNormalizer().Normalize(RawParams{Query: "remote"}))
			if page != nil {
				t.Error("expected no partial page on failure")
			}
			if !errors.Is(err, ErrSearchUnavailable) {
				t.Fatalf("err = %v, want ErrSearchUnavailable", err)
			}
			if !errors.Is(err, internal) {
				t.Error("store error should stay reachable for logging")
			}
			var ue *UnavailableError
			if !errors.As(err, &ue) || ue.Op != op {
				t.Errorf("UnavailableError op = %+v, want %s", ue, op)
			}
			if got := testutil.ToFloat64(m.StoreFailuresTotal.WithLabelValues(op)); got != 1 {
				t.Errorf("store failures = %v", got)
			}
			if got := testutil.ToFloat64(m.SearchRequestsTotal.WithLabelValues(metrics.OutcomeUnavailable)); got != 1 {
				t.Errorf("unavailable requests = %v", got)
			}
		})
	}
}

func TestEngine_Canceled(t *testing.T) {
	engine := newTestEngine(newStore(item("a1", "article", "Remote", "")))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	page, err := engine.Search(ctx, testNormalizer().Normalize(RawParams{Query: "remote"}))
	if page != nil || !errors.Is(err, context.Canceled) {
		t.Errorf("got page %v, err %v; want context.Canceled", page, err)
	}
	if errors.Is(err, ErrSearchUnavailable) {
		t.Error("cancellation is not a store failure")
	}
}

func TestEngine_FacetCache(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	fc, err := cache.NewFacetCache(16)
	if err != nil {
		t.Fatal(err)
	}
	store := &countingStore{inner: newStore(item("j1", "job", "Remote engineer", ""))}
	engine := newTestEngine(store, WithFacetCache(fc), WithMetrics(m))
	q := testNormalizer().Normalize(RawParams{Query: "remote"})

	for i := 0; i < 3; i++ {
		if _, err := engine.Search(context.Background(), q); err != nil {
			t.Fatal(err)
		}
	}
	// one count per declared type, computed once
	if store.counts != len(testFacetTypes) {
		t.Errorf("count calls = %d, want %d", store.counts, len(testFacetTypes))
	}
	if got := testutil.ToFloat64(m.FacetCacheLookups.WithLabelValues("hit")); got != 2 {
		t.Errorf("cache hits = %v, want 2", got)
	}

	fc.Purge()
	if _, err := engine.Search(context.Background(), q); err != nil {
		t.Fatal(err)
	}
	if store.counts != 2*len(testFacetTypes) {
		t.Errorf("count calls after purge = %d", store.counts)
	}
}

func TestEngine_ExcerptOverride(t *testing.T) {
	it := item("a1", "article", "Remote work", "Body text about remote work and teams.")
	it.ExcerptOverride = "A hand-written summary."
	engine := newTestEngine(newStore(it))

	page, err := engine.Search(context.Background(), testNormalizer().Normalize(RawParams{}))
	if err != nil {
		t.Fatal(err)
	}
	if page.Items[0].HighlightedExcerpt != "A hand-written summary." {
		t.Errorf("excerpt = %q", page.Items[0].HighlightedExcerpt)
	}

	page, err = engine.Search(context.Background(), testNormalizer().Normalize(RawParams{Query: "teams"}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(page.Items[0].HighlightedExcerpt, "<mark>teams</mark>") {
		t.Errorf("excerpt = %q", page.Items[0].HighlightedExcerpt)
	}
}

func TestEngine_EllipsisTermLeavesMarkersAlone(t *testing.T) {
	body := words(60, "lorem") + " We offer remote jobs. " + words(60, "ipsum")
	engine := newTestEngine(newStore(item("j1", "job", "Remote engineer", body)))

	page, err := engine.Search(context.Background(), testNormalizer().Normalize(RawParams{Query: "remote ..."}))
	if err != nil {
		t.Fatal(err)
	}
	got := page.Items[0].HighlightedExcerpt
	if !strings.HasPrefix(got, "...") || !strings.HasSuffix(got, "...") {
		t.Errorf("excerpt should keep plain ellipses: %q", got)
	}
	if strings.Contains(got, "<mark>...</mark>") {
		t.Errorf("ellipsis marker highlighted: %q", got)
	}
	if !strings.Contains(got, "<mark>remote</mark>") {
		t.Errorf("term not highlighted: %q", got)
	}
}

func TestEngine_UndeclaredTypeExcluded(t *testing.T) {
	store := newStore(
		item("j1", "job", "Remote engineer", "remote"),
		item("e1", "event", "Remote meetup", "remote"),
	)
	q := testNormalizer().Normalize(RawParams{Query: "remote"})
	for name, s := range map[string]ContentStore{"batch": store, "per-type": &countingStore{inner: store}} {
		page, err := newTestEngine(s).Search(context.Background(), q)
		if err != nil {
			t.Fatal(err)
		}
		if page.Total != 1 || len(page.Items) != 1 || page.Items[0].Item.ID != "j1" {
			t.Errorf("%s: total = %d items = %d, want only the job", name, page.Total, len(page.Items))
		}
		if got := facetCount(page.Facets, models.ContentTypeAll); got != 1 {
			t.Errorf("%s: all facet = %d, want 1", name, got)
		}
	}
}

// blockingStore holds CountByType until release is closed.
type blockingStore struct {
	*contentstore.MemoryStore
	started chan struct{}
	release chan struct{}
}

func (s *blockingStore) CountByType(ctx context.Context, q *models.SearchQuery) (map[models.ContentType]int, error) {
	counts, err := s.MemoryStore.CountByType(ctx, q)
	if s.started != nil {
		close(s.started)
		s.started = nil
		<-s.release
	}
	return counts, err
}

func TestEngine_FacetCacheDropsCountsOutdatedByPurge(t *testing.T) {
	fc, err := cache.NewFacetCache(16)
	if err != nil {
		t.Fatal(err)
	}
	store := &blockingStore{
		MemoryStore: newStore(item("j1", "job", "Remote engineer", "remote")),
		started:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	started := store.started
	engine := newTestEngine(store, WithFacetCache(fc))
	q := testNormalizer().Normalize(RawParams{Query: "remote"})

	done := make(chan error, 1)
	go func() {
		_, err := engine.Search(context.Background(), q)
		done <- err
	}()
	<-started
	store.Put(item("a1", "article", "Remote work", "remote"))
	fc.Purge()
	close(store.release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	page, err := engine.Search(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 2 || facetCount(page.Facets, models.ContentTypeAll) != 2 || facetCount(page.Facets, "article") != 1 {
		t.Errorf("after content change: total = %d facets = %+v", page.Total, page.Facets)
	}
}
