package models

// FacetCount is the number of matches for one content type (or category).
// The facet with Type ContentTypeAll counts every match.
type FacetCount struct {
	Type  ContentType `json:"type"`
	Label string      `json:"label"`
	Count int         `json:"count"`
}

// CategoryFacet is the number of matches carrying one category.
type CategoryFacet struct {
	Slug  string `json:"slug"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// RenderedResult is one displayed hit. It is derived per request and never persisted.
type RenderedResult struct {
	Item               *ContentItem `json:"item"`
	HighlightedTitle   string       `json:"highlighted_title"`
	HighlightedExcerpt string       `json:"highlighted_excerpt"`
	TypeLabel          string       `json:"type_label"`
}

// CategoryShortcut is a browse-by-category link offered when nothing matches.
type CategoryShortcut struct {
	Label string `json:"label" yaml:"label"`
	Link  string `json:"link" yaml:"link"`
}

// Suggestions is the fallback payload for a query with no results.
type Suggestions struct {
	Queries    []string           `json:"queries"`
	Categories []CategoryShortcut `json:"categories"`
	// DidYouMean is a spelling-corrected query, when the index dictionary suggests one.
	DidYouMean string `json:"did_you_mean,omitempty"`
	// WithoutFilters is the canonical query string with type and category removed.
	// Only set when the unfiltered query has matches and the option is enabled.
	WithoutFilters string `json:"without_filters,omitempty"`
}

// SearchResultPage is one page of results with facets and pagination data.
// Total is always the match count before pagination.
type SearchResultPage struct {
	Items          []*RenderedResult `json:"items"`
	Total          int               `json:"total"`
	Page           int               `json:"page"`
	PageSize       int               `json:"page_size"`
	TotalPages     int               `json:"total_pages"`
	Facets         []FacetCount      `json:"facets"`
	CategoryFacets []CategoryFacet   `json:"category_facets,omitempty"`
	Query          string            `json:"query"`
	Suggestions    *Suggestions      `json:"suggestions,omitempty"`
	QueryTime      int64             `json:"query_time_ms"`
}

// TotalPagesFor returns the number of pages needed for total items at pageSize.
func TotalPagesFor(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// HasNext reports whether a page follows this one.
func (p *SearchResultPage) HasNext() bool {
	return p.Page < p.TotalPages
}

// HasPrev reports whether a page precedes this one.
func (p *SearchResultPage) HasPrev() bool {
	return p.Page > 1
}
