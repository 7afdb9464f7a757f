// Package search provides query normalization, faceting, excerpting, highlighting,
// ordering and fallback suggestions on top of a content store.
package search

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hyperjump/shirabe/internal/cache"
	"github.com/hyperjump/shirabe/internal/metrics"
	"github.com/hyperjump/shirabe/internal/models"
	"go.uber.org/zap"
)

// Engine runs one search request end to end: facets, store lookup, ordering,
// pagination, excerpts and highlighting, and suggestions on zero results.
// It holds no per-request state and is safe for concurrent use.
type Engine struct {
	store       ContentStore
	facets      *FacetCounter
	excerpts    *ExcerptExtractor
	highlighter *Highlighter
	suggestions *SuggestionEngine

	facetCache            *cache.FacetCache
	speller               Speller
	suggestWithoutFilters bool
	metrics               *metrics.Metrics
	logger                *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithFacetCache caches facet counts per normalized query. The owner must purge
// the cache on every content mutation.
func WithFacetCache(c *cache.FacetCache) EngineOption {
	return func(e *Engine) { e.facetCache = c }
}

// WithSpeller enables "did you mean" corrections for queries without results.
func WithSpeller(s Speller) EngineOption {
	return func(e *Engine) { e.speller = s }
}

// WithSuggestWithoutFilters offers the unfiltered query when a filtered one has no results.
func WithSuggestWithoutFilters(enabled bool) EngineOption {
	return func(e *Engine) { e.suggestWithoutFilters = enabled }
}

// WithMetrics records request metrics.
func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger sets a logger for debug output and store failures.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates a search engine with the given dependencies.
func NewEngine(
	store ContentStore,
	facets *FacetCounter,
	excerpts *ExcerptExtractor,
	highlighter *Highlighter,
	suggestions *SuggestionEngine,
	opts ...EngineOption,
) *Engine {
	e := &Engine{
		store:       store,
		facets:      facets,
		excerpts:    excerpts,
		highlighter: highlighter,
		suggestions: suggestions,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search returns the requested page for q. It either returns a complete page or
// an error: a store failure is an *UnavailableError, a cancelled request returns
// the context's error. Zero matches are not an error.
func (e *Engine) Search(ctx context.Context, q *models.SearchQuery) (*models.SearchResultPage, error) {
	startTime := time.Now()
	page, err := e.search(ctx, q)
	elapsed := time.Since(startTime)

	switch {
	case err == nil && page.Total == 0:
		e.metrics.ObserveSearch(metrics.OutcomeEmpty, elapsed, 0)
	case err == nil:
		e.metrics.ObserveSearch(metrics.OutcomeOK, elapsed, len(page.Items))
	case errors.Is(err, ErrSearchUnavailable):
		e.logger.Error("search unavailable", zap.String("query", q.Encode()), zap.Error(err))
		e.metrics.ObserveSearch(metrics.OutcomeUnavailable, elapsed, 0)
		return nil, err
	default:
		e.metrics.ObserveSearch(metrics.OutcomeCanceled, elapsed, 0)
		return nil, err
	}
	page.QueryTime = elapsed.Milliseconds()
	e.logger.Debug("search",
		zap.String("query", q.Encode()),
		zap.Int("total", page.Total),
		zap.Int("returned", len(page.Items)),
		zap.Duration("took", elapsed),
	)
	return page, nil
}

func (e *Engine) search(ctx context.Context, q *models.SearchQuery) (*models.SearchResultPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	facets, err := e.facetCounts(ctx, q)
	if err != nil {
		return nil, e.storeError(ctx, "count", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, total, err := e.store.Search(ctx, q)
	if err != nil {
		return nil, e.storeError(ctx, "search", err)
	}
	if total < len(items) {
		total = len(items)
	}

	if key := q.EffectiveSort(); key != models.SortRelevance {
		items = SortItems(items, key)
	}
	pageItems := Paginate(items, q.Page, q.PageSize)

	terms := q.HighlightTerms()
	results := make([]*models.RenderedResult, 0, len(pageItems))
	for _, item := range pageItems {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		excerpt := e.excerpts.ExtractParts(item, q.Terms)
		results = append(results, &models.RenderedResult{
			Item:               item,
			HighlightedTitle:   e.highlighter.Highlight(item.Title, terms),
			HighlightedExcerpt: e.highlighter.HighlightExcerpt(excerpt, terms),
			TypeLabel:          e.facets.Label(item.Type),
		})
	}

	page := &models.SearchResultPage{
		Items:          results,
		Total:          total,
		Page:           q.Page,
		PageSize:       q.PageSize,
		TotalPages:     models.TotalPagesFor(total, q.PageSize),
		Facets:         facets.Types,
		CategoryFacets: facets.Categories,
		Query:          q.RawText,
	}
	if total == 0 {
		page.Suggestions = e.suggest(q, facets.Types)
	}
	return page, nil
}

// facetCounts returns type and category facets, from the cache when possible.
func (e *Engine) facetCounts(ctx context.Context, q *models.SearchQuery) (*cache.FacetEntry, error) {
	key := q.FacetKey()
	var gen uint64
	if e.facetCache != nil {
		entry, g, ok := e.facetCache.Get(key)
		if ok {
			e.metrics.FacetCacheLookup(true)
			return entry, nil
		}
		e.metrics.FacetCacheLookup(false)
		gen = g
	}

	types, err := e.facets.Facets(ctx, q, e.store)
	if err != nil {
		return nil, err
	}
	entry := &cache.FacetEntry{Types: types}
	if cc, ok := e.store.(CategoryCounter); ok {
		cats, err := CategoryFacets(ctx, q, cc)
		if err != nil {
			return nil, err
		}
		entry.Categories = cats
	}
	if e.facetCache != nil && !e.facetCache.Set(key, gen, entry) {
		e.logger.Debug("facet counts outdated by a content change, not cached", zap.String("key", key))
	}
	return entry, nil
}

func (e *Engine) suggest(q *models.SearchQuery, facets []models.FacetCount) *models.Suggestions {
	s := e.suggestions.Suggest()
	if e.speller != nil && len(q.Terms) > 0 {
		original := strings.Join(q.Terms, " ")
		if corrected := e.speller.GetSuggestedQuery(original); corrected != "" && corrected != original {
			s.DidYouMean = corrected
		}
	}
	if e.suggestWithoutFilters && q.HasFilters() && allCount(facets) > 0 {
		unfiltered := q.WithoutFilters()
		unfiltered.Page = 1
		s.WithoutFilters = unfiltered.Encode()
	}
	return s
}

func allCount(facets []models.FacetCount) int {
	for _, f := range facets {
		if f.Type == models.ContentTypeAll {
			return f.Count
		}
	}
	return 0
}

// storeError reports cancellation as the context's error and anything else as unavailability.
func (e *Engine) storeError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return ctxErr
	}
	e.metrics.StoreFailure(op)
	return unavailable(op, err)
}
