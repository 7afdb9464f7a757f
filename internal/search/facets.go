package search

import (
	"context"
	"sort"
	"strings"

	"github.com/hyperjump/shirabe/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CountFunc counts the matches of q in the content store.
type CountFunc func(ctx context.Context, q *models.SearchQuery) (int, error)

// FacetType is one declared content type with its display label.
type FacetType struct {
	Type  models.ContentType
	Label string
}

// FacetCounter counts matches per content type. Facets are always computed
// as if no type or category filter were applied, so users can pivot.
type FacetCounter struct {
	types    []FacetType
	allLabel string
}

// NewFacetCounter creates a counter for types, kept in the given display order.
func NewFacetCounter(types []FacetType) *FacetCounter {
	return &FacetCounter{
		types:    append([]FacetType(nil), types...),
		allLabel: "All",
	}
}

// Types returns the declared content types in display order.
func (f *FacetCounter) Types() []FacetType {
	return append([]FacetType(nil), f.types...)
}

// Label returns the display label of t, or its name when t is not declared.
func (f *FacetCounter) Label(t models.ContentType) string {
	if t == models.ContentTypeAll {
		return f.allLabel
	}
	for _, ft := range f.types {
		if ft.Type == t {
			return ft.Label
		}
	}
	return string(t)
}

// Count issues one count per declared type with filters cleared. The result
// starts with "all", the sum over declared types, followed by types in order.
// Items of undeclared types never reach a facet.
func (f *FacetCounter) Count(ctx context.Context, q *models.SearchQuery, count CountFunc) ([]models.FacetCount, error) {
	base := q.WithoutFilters()
	facets := make([]models.FacetCount, 1, len(f.types)+1)
	sum := 0
	for _, ft := range f.types {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := count(ctx, base.WithType(ft.Type))
		if err != nil {
			return nil, err
		}
		n = max(n, 0)
		sum += n
		facets = append(facets, models.FacetCount{Type: ft.Type, Label: ft.Label, Count: n})
	}
	facets[0] = models.FacetCount{Type: models.ContentTypeAll, Label: f.allLabel, Count: sum}
	return facets, nil
}

// CountBatch builds the same facets from a single batched store call. A total
// reported by the store under "all" is ignored.
func (f *FacetCounter) CountBatch(ctx context.Context, q *models.SearchQuery, bc BatchCounter) ([]models.FacetCount, error) {
	counts, err := bc.CountByType(ctx, q.WithoutFilters())
	if err != nil {
		return nil, err
	}
	facets := make([]models.FacetCount, 1, len(f.types)+1)
	sum := 0
	for _, ft := range f.types {
		n := max(counts[ft.Type], 0)
		sum += n
		facets = append(facets, models.FacetCount{Type: ft.Type, Label: ft.Label, Count: n})
	}
	facets[0] = models.FacetCount{Type: models.ContentTypeAll, Label: f.allLabel, Count: sum}
	return facets, nil
}

// Facets picks the batched path when store supports it, otherwise one call per type.
func (f *FacetCounter) Facets(ctx context.Context, q *models.SearchQuery, store ContentStore) ([]models.FacetCount, error) {
	if bc, ok := store.(BatchCounter); ok {
		return f.CountBatch(ctx, q, bc)
	}
	return f.Count(ctx, q, store.Count)
}

// CategoryFacets counts matches per category, filters cleared, ordered by count
// descending then slug. Categories with no matches are omitted.
func CategoryFacets(ctx context.Context, q *models.SearchQuery, cc CategoryCounter) ([]models.CategoryFacet, error) {
	counts, err := cc.CountByCategory(ctx, q.WithoutFilters())
	if err != nil {
		return nil, err
	}
	facets := make([]models.CategoryFacet, 0, len(counts))
	for s, n := range counts {
		if n <= 0 || s == "" {
			continue
		}
		facets = append(facets, models.CategoryFacet{Slug: s, Label: CategoryLabel(s), Count: n})
	}
	sort.Slice(facets, func(i, j int) bool {
		if facets[i].Count != facets[j].Count {
			return facets[i].Count > facets[j].Count
		}
		return facets[i].Slug < facets[j].Slug
	})
	return facets, nil
}

// CategoryLabel turns a category slug back into a display label ("remote-work" -> "Remote Work").
func CategoryLabel(categorySlug string) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(categorySlug, "-", " "))
}
