// Package keyword provides the full-text content index and query spelling corrections.
package keyword

import (
	"context"

	"github.com/hyperjump/shirabe/internal/models"
)

// ContentIndex indexes content items and answers normalized search queries.
// Search returns matching IDs in the order of q.EffectiveSort.
type ContentIndex interface {
	Index(ctx context.Context, item *models.ContentItem) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q *models.SearchQuery) ([]Hit, int, error)
	Count(ctx context.Context, q *models.SearchQuery) (int, error)
	CountByType(ctx context.Context, q *models.SearchQuery) (map[models.ContentType]int, error)
	CountByCategory(ctx context.Context, q *models.SearchQuery) (map[string]int, error)
	// DocCount returns the total number of indexed items.
	DocCount() (uint64, error)
	Close() error
}

// Hit is a single search match.
type Hit struct {
	ID    string
	Score float64
}

// TermDictionary exposes the indexed vocabulary for spell checking.
type TermDictionary interface {
	// GetAllTerms returns every distinct term of the title and body fields.
	GetAllTerms() ([]string, error)
	// GetTermFrequency returns the number of items containing term.
	GetTermFrequency(term string) (int, error)
}
