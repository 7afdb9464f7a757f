// Package indexer provides content item indexing into storage and the keyword index.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/shirabe/internal/config"
	"github.com/hyperjump/shirabe/internal/fileid"
	"github.com/hyperjump/shirabe/internal/keyword"
	"github.com/hyperjump/shirabe/internal/metrics"
	"github.com/hyperjump/shirabe/internal/models"
	"github.com/hyperjump/shirabe/internal/storage"
	"go.uber.org/zap"
)

// ErrUnknownType is returned for items whose type is not a configured content type.
var ErrUnknownType = errors.New("unknown content type")

// ErrInvalidItem is returned for items that cannot be indexed (e.g. missing title).
var ErrInvalidItem = errors.New("invalid content item")

// Indexer indexes content items into storage and the keyword index.
type Indexer struct {
	storage  storage.Storage
	index    keyword.ContentIndex
	config   *config.SearchConfig
	onChange []func()
	metrics  *metrics.Metrics
	logger   *zap.Logger // optional; when set, logs debug events
	now      func() time.Time

	// files maps content file paths to the item IDs read from them, so removed
	// files whose front matter named an ID can still be deleted.
	mu    sync.Mutex
	files map[string]string
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for debug output (file indexed, item deleted, etc.).
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// WithMetrics records index and delete operations.
func WithMetrics(m *metrics.Metrics) IndexerOption {
	return func(idx *Indexer) { idx.metrics = m }
}

// WithOnChange registers fn to run after every successful mutation.
// The server uses it to purge the facet cache and the spelling vocabulary.
func WithOnChange(fn func()) IndexerOption {
	return func(idx *Indexer) { idx.onChange = append(idx.onChange, fn) }
}

// NewIndexer creates an indexer. Only types declared in cfg.ContentTypes are accepted.
func NewIndexer(
	storage storage.Storage,
	index keyword.ContentIndex,
	cfg *config.SearchConfig,
	opts ...IndexerOption,
) *Indexer {
	idx := &Indexer{
		storage: storage,
		index:   index,
		config:  cfg,
		now:     time.Now,
		files:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// IndexItem validates and stores an item, then indexes it. An empty ID gets a UUID.
// Indexing an existing ID replaces the item.
func (idx *Indexer) IndexItem(ctx context.Context, input *models.ContentItemInput) (*models.ContentItem, error) {
	item, err := idx.indexItem(ctx, input)
	idx.metrics.IndexOperation("index", err)
	if err != nil {
		return nil, err
	}
	idx.changed()
	return item, nil
}

func (idx *Indexer) indexItem(ctx context.Context, input *models.ContentItemInput) (*models.ContentItem, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidItem)
	}
	in := *input
	if in.ID == "" {
		in.ID = uuid.New().String()
	}
	in.Title = Preprocess(in.Title)
	in.Body = Preprocess(in.Body)
	item := in.Item(idx.now())
	if !idx.config.HasType(item.Type) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, item.Type)
	}
	if item.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidItem)
	}
	if err := idx.storage.PutItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to store item: %w", err)
	}
	if err := idx.index.Index(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to index item: %w", err)
	}
	if idx.logger != nil {
		idx.logger.Debug("indexer item indexed", zap.String("id", item.ID), zap.String("type", string(item.Type)))
	}
	return item, nil
}

// IndexFile reads a Markdown content file from path and indexes it. The item ID comes
// from the front matter or, when absent, is derived from the absolute path so re-indexing
// updates the same item. If allowedExts is non-empty, the file's extension must be in the
// list (case-insensitive).
func (idx *Indexer) IndexFile(ctx context.Context, path string, allowedExts []string) (*models.ContentItem, error) {
	if idx.logger != nil {
		idx.logger.Debug("indexer indexing file", zap.String("path", path))
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(absPath))
	if len(allowedExts) > 0 && !extensionAllowed(ext, allowedExts) {
		return nil, fmt.Errorf("extension %q not in allowed list", ext)
	}
	input, err := ReadContentFile(absPath)
	if err != nil {
		return nil, err
	}
	item, err := idx.IndexItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", absPath, err)
	}

	idx.mu.Lock()
	prev, had := idx.files[absPath]
	idx.files[absPath] = item.ID
	idx.mu.Unlock()
	if had && prev != item.ID {
		// the front matter ID changed; drop the stale item
		if err := idx.DeleteItem(ctx, prev); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return item, err
		}
	}
	if idx.logger != nil {
		idx.logger.Debug("indexer file indexed", zap.String("path", absPath), zap.String("id", item.ID))
	}
	return item, nil
}

// ReadContentFile parses the content file at path without indexing it. A missing ID is
// derived from the absolute path and a missing published_at falls back to the file's
// modification time.
func ReadContentFile(path string) (*models.ContentItemInput, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", absPath)
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	input, err := contentMarkdown.parseContentFile(absPath, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", absPath, err)
	}
	if input.ID == "" {
		input.ID = fileid.ContentID(absPath)
	}
	if input.PublishedAt.IsZero() {
		input.PublishedAt = info.ModTime()
	}
	return input, nil
}

// WalkContentFiles calls fn for each regular file under dir whose extension is in
// allowedExts (all files when empty). It stops at the first error fn returns.
func WalkContentFiles(ctx context.Context, dir string, allowedExts []string, fn func(path string) error) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", absDir)
	}
	return filepath.WalkDir(absDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if len(allowedExts) > 0 && !extensionAllowed(ext, allowedExts) {
			return nil
		}
		// Resolve symlinks so we only index regular files
		finfo, statErr := os.Stat(path)
		if statErr != nil || !finfo.Mode().IsRegular() {
			return nil
		}
		return fn(path)
	})
}

// IndexDirectory walks dir recursively and indexes each regular file whose extension
// is in allowedExts (if non-empty; otherwise all files). Returns the number of files
// indexed and the first error encountered, if any.
func (idx *Indexer) IndexDirectory(ctx context.Context, dir string, allowedExts []string) (n int, err error) {
	err = WalkContentFiles(ctx, dir, allowedExts, func(path string) error {
		if _, err := idx.IndexFile(ctx, path, allowedExts); err != nil {
			return err
		}
		n++
		return nil
	})
	return n, err
}

// DeleteItem removes an item from the keyword index and storage.
// Returns storage.ErrNotFound when the item does not exist.
func (idx *Indexer) DeleteItem(ctx context.Context, id string) error {
	err := idx.deleteItem(ctx, id)
	idx.metrics.IndexOperation("delete", err)
	if err != nil {
		return err
	}
	idx.changed()
	return nil
}

func (idx *Indexer) deleteItem(ctx context.Context, id string) error {
	if idx.logger != nil {
		idx.logger.Debug("indexer deleting item", zap.String("id", id))
	}
	if _, err := idx.storage.GetItem(ctx, id); err != nil {
		return err
	}
	if err := idx.index.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete from keyword index: %w", err)
	}
	if err := idx.storage.DeleteItem(ctx, id); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if idx.logger != nil {
		idx.logger.Debug("indexer item deleted", zap.String("id", id))
	}
	return nil
}

// DeleteFile removes the item that was read from path.
func (idx *Indexer) DeleteFile(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	idx.mu.Lock()
	id, ok := idx.files[absPath]
	delete(idx.files, absPath)
	idx.mu.Unlock()
	if !ok {
		id = fileid.ContentID(absPath)
	}
	return idx.DeleteItem(ctx, id)
}

// Sync re-indexes every stored item when the keyword index holds fewer items
// than storage, e.g. after the index directory was removed. Returns the number
// of items re-indexed.
func (idx *Indexer) Sync(ctx context.Context) (int, error) {
	stored, err := idx.storage.CountItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("count stored items: %w", err)
	}
	indexed, err := idx.index.DocCount()
	if err != nil {
		return 0, fmt.Errorf("count indexed items: %w", err)
	}
	if int64(indexed) >= stored {
		return 0, nil
	}
	const batch = 500
	n := 0
	for offset := 0; ; offset += batch {
		items, err := idx.storage.ListItems(ctx, offset, batch)
		if err != nil {
			return n, fmt.Errorf("list items: %w", err)
		}
		for _, item := range items {
			if err := idx.index.Index(ctx, item); err != nil {
				return n, fmt.Errorf("failed to index item %s: %w", item.ID, err)
			}
			n++
		}
		if len(items) < batch {
			break
		}
	}
	if idx.logger != nil {
		idx.logger.Info("keyword index rebuilt from storage", zap.Int("items", n))
	}
	if n > 0 {
		idx.changed()
	}
	return n, nil
}

func (idx *Indexer) changed() {
	for _, fn := range idx.onChange {
		fn()
	}
}

func extensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}
