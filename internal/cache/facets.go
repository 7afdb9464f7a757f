// Package cache provides an LRU cache for facet counts keyed by normalized query.
package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hyperjump/shirabe/internal/models"
)

// FacetEntry is the cached facet result of one normalized query.
type FacetEntry struct {
	Types      []models.FacetCount
	Categories []models.CategoryFacet
}

func (e *FacetEntry) clone() *FacetEntry {
	return &FacetEntry{
		Types:      append([]models.FacetCount(nil), e.Types...),
		Categories: append([]models.CategoryFacet(nil), e.Categories...),
	}
}

// FacetCache is an LRU of facet results. It is safe for concurrent use and must be
// purged whenever content changes, since entries are never refreshed on their own.
//
// Every Purge starts a new generation. A result computed before a purge carries
// the older generation and is dropped by Set.
type FacetCache struct {
	lru *lru.Cache[string, *FacetEntry]

	mu  sync.Mutex
	gen uint64
}

// NewFacetCache creates a cache holding up to capacity entries.
func NewFacetCache(capacity int) (*FacetCache, error) {
	c, err := lru.New[string, *FacetEntry](capacity)
	if err != nil {
		return nil, err
	}
	return &FacetCache{lru: c}, nil
}

// Get returns a copy of the entry for key if present, and the current generation.
// Pass the generation to Set when storing a freshly computed entry after a miss.
func (c *FacetCache) Get(key string) (*FacetEntry, uint64, bool) {
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()
	e, ok := c.lru.Get(key)
	if !ok {
		return nil, gen, false
	}
	return e.clone(), gen, true
}

// Set stores a copy of entry under key, evicting the least recently used entry at capacity.
// The write is dropped when the cache was purged after gen was read.
func (c *FacetCache) Set(key string, gen uint64, entry *FacetEntry) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.lru.Add(key, entry.clone())
	return true
}

// Purge drops every entry. Called on any content mutation.
func (c *FacetCache) Purge() {
	c.mu.Lock()
	c.gen++
	c.lru.Purge()
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *FacetCache) Len() int {
	return c.lru.Len()
}
