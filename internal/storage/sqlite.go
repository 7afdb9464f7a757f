package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/shirabe/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS content_items (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		excerpt_override TEXT NOT NULL DEFAULT '',
		published_at TIMESTAMP NOT NULL,
		modified_at TIMESTAMP NOT NULL,
		categories TEXT NOT NULL DEFAULT '[]',
		author_id TEXT NOT NULL DEFAULT '',
		comment_count INTEGER NOT NULL DEFAULT 0,
		view_count INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_content_items_type ON content_items(type);
	CREATE INDEX IF NOT EXISTS idx_content_items_published_at ON content_items(published_at);
	`
	_, err := db.Exec(schema)
	return err
}

const itemColumns = `id, type, title, body, excerpt_override, published_at, modified_at,
	categories, author_id, comment_count, view_count`

// PutItem inserts or replaces an item.
func (s *SQLiteStorage) PutItem(ctx context.Context, item *models.ContentItem) error {
	categories := item.Categories
	if categories == nil {
		categories = []string{}
	}
	categoriesJSON, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("failed to marshal categories: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO content_items (`+itemColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			title = excluded.title,
			body = excluded.body,
			excerpt_override = excluded.excerpt_override,
			published_at = excluded.published_at,
			modified_at = excluded.modified_at,
			categories = excluded.categories,
			author_id = excluded.author_id,
			comment_count = excluded.comment_count,
			view_count = excluded.view_count`,
		item.ID, string(item.Type), item.Title, item.Body, item.ExcerptOverride,
		item.PublishedAt.UTC(), item.ModifiedAt.UTC(), string(categoriesJSON),
		item.AuthorID, item.CommentCount, item.ViewCount,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.ContentItem, error) {
	var item models.ContentItem
	var typ, categoriesJSON string
	err := row.Scan(&item.ID, &typ, &item.Title, &item.Body, &item.ExcerptOverride,
		&item.PublishedAt, &item.ModifiedAt, &categoriesJSON, &item.AuthorID,
		&item.CommentCount, &item.ViewCount)
	if err != nil {
		return nil, err
	}
	item.Type = models.ContentType(typ)
	item.PublishedAt = item.PublishedAt.UTC()
	item.ModifiedAt = item.ModifiedAt.UTC()
	if categoriesJSON != "" {
		if err := json.Unmarshal([]byte(categoriesJSON), &item.Categories); err != nil {
			return nil, fmt.Errorf("failed to unmarshal categories: %w", err)
		}
	}
	return &item, nil
}

// GetItem returns an item by ID.
func (s *SQLiteStorage) GetItem(ctx context.Context, id string) (*models.ContentItem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM content_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// GetItems returns items for ids in the given order, skipping IDs that do not exist.
func (s *SQLiteStorage) GetItems(ctx context.Context, ids []string) ([]*models.ContentItem, error) {
	if len(ids) == 0 {
		return []*models.ContentItem{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM content_items WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]*models.ContentItem, len(ids))
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		byID[item.ID] = item
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items := make([]*models.ContentItem, 0, len(byID))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// DeleteItem removes an item by ID. Deleting a missing item is not an error.
func (s *SQLiteStorage) DeleteItem(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM content_items WHERE id = ?`, id)
	return err
}

// ListItems returns items newest first with offset and limit.
func (s *SQLiteStorage) ListItems(ctx context.Context, offset, limit int) ([]*models.ContentItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM content_items
		 ORDER BY published_at DESC, id ASC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.ContentItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CountItems returns the total number of items.
func (s *SQLiteStorage) CountItems(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM content_items`).Scan(&count)
	return count, err
}

// CountItemsByType returns the number of items per content type.
func (s *SQLiteStorage) CountItemsByType(ctx context.Context) (map[models.ContentType]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT type, COUNT(*) FROM content_items GROUP BY type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.ContentType]int64)
	for rows.Next() {
		var typ string
		var n int64
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		counts[models.ContentType(typ)] = n
	}
	return counts, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
