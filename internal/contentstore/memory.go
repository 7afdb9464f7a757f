// Package contentstore provides ContentStore implementations for the search engine:
// an in-memory store and one backed by the keyword index and SQLite storage.
package contentstore

import (
	"context"
	"sort"
	"sync"

	"github.com/hyperjump/shirabe/internal/models"
)

// MemoryStore keeps items in memory and matches them by case-insensitive substring.
// Relevance is the number of term occurrences, title hits counting double.
// It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*models.ContentItem
}

// NewMemoryStore creates a store holding items.
func NewMemoryStore(items ...*models.ContentItem) *MemoryStore {
	s := &MemoryStore{items: make(map[string]*models.ContentItem, len(items))}
	for _, it := range items {
		s.items[it.ID] = it
	}
	return s
}

// Put adds or replaces an item.
func (s *MemoryStore) Put(item *models.ContentItem) {
	s.mu.Lock()
	s.items[item.ID] = item
	s.mu.Unlock()
}

// Get returns the item with id.
func (s *MemoryStore) Get(id string) (*models.ContentItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	return it, ok
}

// Delete removes an item and reports whether it existed.
func (s *MemoryStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[id]
	delete(s.items, id)
	return ok
}

// Len returns the number of items.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *MemoryStore) match(ctx context.Context, q *models.SearchQuery) ([]*models.ContentItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.ContentItem, 0)
	for _, it := range s.items {
		if q.Matches(it) {
			out = append(out, it)
		}
	}
	return out, nil
}

// Search returns all matches ordered by relevance (ID ascending when tied or when
// the query has no terms).
func (s *MemoryStore) Search(ctx context.Context, q *models.SearchQuery) ([]*models.ContentItem, int, error) {
	items, err := s.match(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	scores := make(map[string]int, len(items))
	for _, it := range items {
		scores[it.ID] = q.Relevance(it)
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if scores[a.ID] != scores[b.ID] {
			return scores[a.ID] > scores[b.ID]
		}
		return a.ID < b.ID
	})
	return items, len(items), nil
}

// Count returns the number of matches.
func (s *MemoryStore) Count(ctx context.Context, q *models.SearchQuery) (int, error) {
	items, err := s.match(ctx, q)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// CountByType counts matches per content type in one pass.
func (s *MemoryStore) CountByType(ctx context.Context, q *models.SearchQuery) (map[models.ContentType]int, error) {
	items, err := s.match(ctx, q)
	if err != nil {
		return nil, err
	}
	counts := map[models.ContentType]int{models.ContentTypeAll: len(items)}
	for _, it := range items {
		counts[it.Type]++
	}
	return counts, nil
}

// CountByCategory counts matches per category slug in one pass.
func (s *MemoryStore) CountByCategory(ctx context.Context, q *models.SearchQuery) (map[string]int, error) {
	items, err := s.match(ctx, q)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, it := range items {
		for _, c := range it.CategorySlugs() {
			counts[c]++
		}
	}
	return counts, nil
}
