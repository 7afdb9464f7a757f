package contentstore

import (
	"context"

	"github.com/hyperjump/shirabe/internal/keyword"
	"github.com/hyperjump/shirabe/internal/models"
	"github.com/hyperjump/shirabe/internal/storage"
)

// IndexedStore answers queries from the keyword index and loads the matched
// items from storage, keeping the index order.
type IndexedStore struct {
	index   keyword.ContentIndex
	storage storage.Storage
}

// NewIndexedStore creates a store over index and store.
func NewIndexedStore(index keyword.ContentIndex, store storage.Storage) *IndexedStore {
	return &IndexedStore{index: index, storage: store}
}

// Search returns every match in index order. Index entries whose item is gone
// from storage are dropped from the result and the total.
func (s *IndexedStore) Search(ctx context.Context, q *models.SearchQuery) ([]*models.ContentItem, int, error) {
	hits, total, err := s.index.Search(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	items, err := s.storage.GetItems(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	if missing := len(hits) - len(items); missing > 0 {
		total -= missing
	}
	return items, total, nil
}

// Count returns the number of matches.
func (s *IndexedStore) Count(ctx context.Context, q *models.SearchQuery) (int, error) {
	return s.index.Count(ctx, q)
}

// CountByType counts matches per content type.
func (s *IndexedStore) CountByType(ctx context.Context, q *models.SearchQuery) (map[models.ContentType]int, error) {
	return s.index.CountByType(ctx, q)
}

// CountByCategory counts matches per category slug.
func (s *IndexedStore) CountByCategory(ctx context.Context, q *models.SearchQuery) (map[string]int, error) {
	return s.index.CountByCategory(ctx, q)
}
