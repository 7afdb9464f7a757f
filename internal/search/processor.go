package search

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
	"github.com/hyperjump/shirabe/internal/models"
)

// RawParams are the unvalidated search parameters of one request.
type RawParams struct {
	Query    string
	Type     string
	Category string
	Sort     string
	Page     string
}

// ParamsFromValues reads RawParams from URL query values (q, type, category, sort, page).
func ParamsFromValues(v url.Values) RawParams {
	return RawParams{
		Query:    v.Get(models.ParamQuery),
		Type:     v.Get(models.ParamType),
		Category: v.Get(models.ParamCategory),
		Sort:     v.Get(models.ParamSort),
		Page:     v.Get(models.ParamPage),
	}
}

// Normalizer turns raw request parameters into a well-formed SearchQuery.
// Malformed or unknown values fall back to defaults; it never fails.
type Normalizer struct {
	declared   []models.ContentType
	types      map[models.ContentType]struct{}
	categories map[string]struct{}
	pageSize   int
	maxTerms   int
}

// NewNormalizer creates a normalizer for the given content types and page size.
// categories restricts category filters to known slugs; nil or empty accepts any slug.
// maxTerms <= 0 keeps every token.
func NewNormalizer(types []models.ContentType, categories []string, pageSize, maxTerms int) *Normalizer {
	n := &Normalizer{
		types:      make(map[models.ContentType]struct{}, len(types)),
		categories: make(map[string]struct{}, len(categories)),
		pageSize:   pageSize,
		maxTerms:   maxTerms,
	}
	for _, t := range types {
		if _, ok := n.types[t]; ok || t == "" || t == models.ContentTypeAll {
			continue
		}
		n.types[t] = struct{}{}
		n.declared = append(n.declared, t)
	}
	for _, c := range categories {
		if s := models.CategorySlug(c); s != "" {
			n.categories[s] = struct{}{}
		}
	}
	if n.pageSize <= 0 {
		n.pageSize = 10
	}
	return n
}

// Normalize builds a SearchQuery from p.
func (n *Normalizer) Normalize(p RawParams) *models.SearchQuery {
	sortKey, _ := models.ParseSortKey(strings.TrimSpace(p.Sort))
	return &models.SearchQuery{
		RawText:        p.Query,
		Terms:          n.tokenize(p.Query),
		TypeFilter:     n.normalizeType(p.Type),
		CategoryFilter: n.normalizeCategory(p.Category),
		SortKey:        sortKey,
		Page:           normalizePage(p.Page),
		PageSize:       n.pageSize,
		Types:          append([]models.ContentType(nil), n.declared...),
	}
}

// NormalizeValues is Normalize over URL query values.
func (n *Normalizer) NormalizeValues(v url.Values) *models.SearchQuery {
	return n.Normalize(ParamsFromValues(v))
}

// tokenize lower-cases and splits on whitespace; duplicates are kept because
// they weigh relevance, empty tokens never appear.
func (n *Normalizer) tokenize(raw string) []string {
	fields := strings.Fields(strings.ToLower(raw))
	if n.maxTerms > 0 && len(fields) > n.maxTerms {
		fields = fields[:n.maxTerms]
	}
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			terms = append(terms, f)
		}
	}
	return terms
}

func (n *Normalizer) normalizeType(raw string) models.ContentType {
	t := models.ContentType(strings.ToLower(strings.TrimSpace(raw)))
	if t == "" || t == models.ContentTypeAll {
		return ""
	}
	if _, ok := n.types[t]; !ok {
		return ""
	}
	return t
}

func (n *Normalizer) normalizeCategory(raw string) string {
	c := strings.ToLower(strings.TrimSpace(raw))
	if c == "" {
		return ""
	}
	if !slug.IsSlug(c) {
		c = slug.Make(c)
	}
	if c == "" {
		return ""
	}
	if len(n.categories) > 0 {
		if _, ok := n.categories[c]; !ok {
			return ""
		}
	}
	return c
}

func normalizePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
