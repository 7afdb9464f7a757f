package search

import (
	"sort"

	"github.com/hyperjump/shirabe/internal/models"
	"golang.org/x/text/cases"
)

// SortItems returns a sorted copy of items. Relevance keeps the store's order;
// dates sort by PublishedAt and titles case-insensitively, both with ID ascending
// as the tie-breaker so the order is deterministic.
func SortItems(items []*models.ContentItem, key models.SortKey) []*models.ContentItem {
	out := append([]*models.ContentItem(nil), items...)
	switch key {
	case models.SortDateDesc:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i], out[j]
			if !a.PublishedAt.Equal(b.PublishedAt) {
				return a.PublishedAt.After(b.PublishedAt)
			}
			return a.ID < b.ID
		})
	case models.SortDateAsc:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i], out[j]
			if !a.PublishedAt.Equal(b.PublishedAt) {
				return a.PublishedAt.Before(b.PublishedAt)
			}
			return a.ID < b.ID
		})
	case models.SortTitleAsc:
		fold := cases.Fold()
		keys := make(map[*models.ContentItem]string, len(out))
		for _, it := range out {
			keys[it] = fold.String(it.Title)
		}
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i], out[j]
			if keys[a] != keys[b] {
				return keys[a] < keys[b]
			}
			return a.ID < b.ID
		})
	}
	return out
}

// Paginate returns the items of the 1-based page. A page past the end yields an
// empty, non-nil slice.
func Paginate(items []*models.ContentItem, page, pageSize int) []*models.ContentItem {
	if pageSize <= 0 {
		return []*models.ContentItem{}
	}
	page = max(page, 1)
	start := (page - 1) * pageSize
	if start >= len(items) || start < 0 {
		return []*models.ContentItem{}
	}
	end := min(start+pageSize, len(items))
	return items[start:end]
}
