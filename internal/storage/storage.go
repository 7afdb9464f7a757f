// Package storage defines the persistence interface for content items.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/shirabe/internal/models"
)

// ErrNotFound is returned when a content item does not exist.
var ErrNotFound = errors.New("content item not found")

// Storage defines content item persistence operations.
type Storage interface {
	// PutItem inserts the item or replaces the one with the same ID.
	PutItem(ctx context.Context, item *models.ContentItem) error
	GetItem(ctx context.Context, id string) (*models.ContentItem, error)
	// GetItems returns the items for ids in the order given. Unknown IDs are skipped.
	GetItems(ctx context.Context, ids []string) ([]*models.ContentItem, error)
	DeleteItem(ctx context.Context, id string) error
	ListItems(ctx context.Context, offset, limit int) ([]*models.ContentItem, error)

	// Stats
	CountItems(ctx context.Context) (int64, error)
	CountItemsByType(ctx context.Context) (map[models.ContentType]int64, error)

	Close() error
}
