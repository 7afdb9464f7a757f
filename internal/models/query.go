package models

import (
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"
)

// SortKey selects the result ordering.
type SortKey string

const (
	SortRelevance SortKey = "relevance"
	SortDateDesc  SortKey = "date-desc"
	SortDateAsc   SortKey = "date-asc"
	SortTitleAsc  SortKey = "title-asc"
)

// ParseSortKey returns the sort key named by s and whether it is known.
func ParseSortKey(s string) (SortKey, bool) {
	switch k := SortKey(s); k {
	case SortRelevance, SortDateDesc, SortDateAsc, SortTitleAsc:
		return k, true
	}
	return SortRelevance, false
}

// MinHighlightTermLen is the rune length a term must exceed to be highlighted
// or used to locate an excerpt. Shorter terms still take part in matching.
const MinHighlightTermLen = 2

// Query parameter names shared by the HTTP API and the canonical query form.
const (
	ParamQuery    = "q"
	ParamType     = "type"
	ParamCategory = "category"
	ParamSort     = "sort"
	ParamPage     = "page"
)

// SearchQuery is a normalized, request-scoped search request.
type SearchQuery struct {
	RawText        string      `json:"raw_text"`
	Terms          []string    `json:"terms"`
	TypeFilter     ContentType `json:"type_filter,omitempty"`
	CategoryFilter string      `json:"category_filter,omitempty"`
	SortKey        SortKey     `json:"sort"`
	Page           int         `json:"page"`
	PageSize       int         `json:"page_size"`
	// Types restricts matching to the declared content types. Empty matches any type.
	Types []ContentType `json:"types,omitempty"`
}

// HighlightTerms returns the distinct terms longer than MinHighlightTermLen runes, in query order.
func (q *SearchQuery) HighlightTerms() []string {
	out := make([]string, 0, len(q.Terms))
	seen := make(map[string]struct{}, len(q.Terms))
	for _, t := range q.Terms {
		if utf8.RuneCountInString(t) <= MinHighlightTermLen {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// EffectiveSort returns the sort key actually applied: relevance without any
// terms has nothing to rank by and degrades to newest first.
func (q *SearchQuery) EffectiveSort() SortKey {
	if q.SortKey == "" || q.SortKey == SortRelevance {
		if len(q.Terms) == 0 {
			return SortDateDesc
		}
		return SortRelevance
	}
	return q.SortKey
}

// HasFilters reports whether a type or category filter is set.
func (q *SearchQuery) HasFilters() bool {
	return q.TypeFilter != "" || q.CategoryFilter != ""
}

// Offset returns the zero-based index of the first item on the requested page.
func (q *SearchQuery) Offset() int {
	page := max(q.Page, 1)
	return (page - 1) * q.PageSize
}

// WithoutFilters returns a copy with type and category filters cleared.
func (q *SearchQuery) WithoutFilters() *SearchQuery {
	c := q.clone()
	c.TypeFilter = ""
	c.CategoryFilter = ""
	return c
}

// WithType returns a copy with the type filter pinned to t.
func (q *SearchQuery) WithType(t ContentType) *SearchQuery {
	c := q.clone()
	c.TypeFilter = t
	return c
}

func (q *SearchQuery) clone() *SearchQuery {
	c := *q
	c.Terms = append([]string(nil), q.Terms...)
	c.Types = append([]ContentType(nil), q.Types...)
	return &c
}

// Values returns the canonical parameter form of the query. Feeding it back
// through the normalizer yields an identical query.
func (q *SearchQuery) Values() url.Values {
	v := url.Values{}
	if q.RawText != "" {
		v.Set(ParamQuery, q.RawText)
	}
	if q.TypeFilter != "" {
		v.Set(ParamType, string(q.TypeFilter))
	}
	if q.CategoryFilter != "" {
		v.Set(ParamCategory, q.CategoryFilter)
	}
	if q.SortKey != "" && q.SortKey != SortRelevance {
		v.Set(ParamSort, string(q.SortKey))
	}
	if q.Page > 1 {
		v.Set(ParamPage, strconv.Itoa(q.Page))
	}
	return v
}

// Encode returns the canonical query string (keys sorted).
func (q *SearchQuery) Encode() string {
	return q.Values().Encode()
}

// FacetKey identifies the facet counts of q. Facets ignore filters, sort and
// paging, so only the normalized terms take part.
func (q *SearchQuery) FacetKey() string {
	return strings.Join(q.Terms, "\x1f")
}

// AllowsType reports whether items of type t can match q at all.
func (q *SearchQuery) AllowsType(t ContentType) bool {
	if len(q.Types) == 0 {
		return true
	}
	for _, dt := range q.Types {
		if dt == t {
			return true
		}
	}
	return false
}

// Matches reports whether item is of an allowed type, passes the type and category filters and, when
// the query has terms, contains at least one of them in its title or body.
func (q *SearchQuery) Matches(item *ContentItem) bool {
	if q.TypeFilter != "" && item.Type != q.TypeFilter {
		return false
	}
	if !q.AllowsType(item.Type) {
		return false
	}
	if q.CategoryFilter != "" && !item.HasCategory(q.CategoryFilter) {
		return false
	}
	if len(q.Terms) == 0 {
		return true
	}
	return q.Relevance(item) > 0
}

// Relevance counts case-insensitive term occurrences in item. Title hits count
// double, and a term repeated in the query counts once per repetition.
func (q *SearchQuery) Relevance(item *ContentItem) int {
	title := strings.ToLower(item.Title)
	body := strings.ToLower(item.Body)
	score := 0
	for _, t := range q.Terms {
		if t == "" {
			continue
		}
		score += 2*strings.Count(title, t) + strings.Count(body, t)
	}
	return score
}
