package search

import (
	"context"

	"github.com/hyperjump/shirabe/internal/models"
)

// ContentStore is the backing store the engine searches. Implementations honor
// the query's type, category and term matching, and return the full match set
// (not a page) together with its size. Sorting by q.EffectiveSort is optional:
// the engine re-sorts for every key except relevance.
type ContentStore interface {
	Search(ctx context.Context, q *models.SearchQuery) ([]*models.ContentItem, int, error)
	Count(ctx context.Context, q *models.SearchQuery) (int, error)
}

// BatchCounter is implemented by stores that can count every content type in one round trip.
// The returned map holds per-type counts; types absent from the map count as zero.
// The models.ContentTypeAll entry, when present, holds the count over all types.
type BatchCounter interface {
	CountByType(ctx context.Context, q *models.SearchQuery) (map[models.ContentType]int, error)
}

// CategoryCounter is implemented by stores that can count matches per category slug.
type CategoryCounter interface {
	CountByCategory(ctx context.Context, q *models.SearchQuery) (map[string]int, error)
}

// Speller proposes a corrected query for one with no results.
type Speller interface {
	GetSuggestedQuery(query string) string
}
