package main

import (
	"context"
	"fmt"

	"github.com/hyperjump/shirabe/internal/cache"
	"github.com/hyperjump/shirabe/internal/config"
	"github.com/hyperjump/shirabe/internal/contentstore"
	"github.com/hyperjump/shirabe/internal/indexer"
	"github.com/hyperjump/shirabe/internal/keyword"
	"github.com/hyperjump/shirabe/internal/metrics"
	"github.com/hyperjump/shirabe/internal/models"
	"github.com/hyperjump/shirabe/internal/search"
	"github.com/hyperjump/shirabe/internal/storage"
	"go.uber.org/zap"
)

// Components holds initialized services.
type Components struct {
	Storage      storage.Storage
	KeywordIndex *keyword.BleveIndex
	Engine       *search.Engine
	Normalizer   *search.Normalizer
	Indexer      *indexer.Indexer
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.KeywordIndex != nil {
		_ = c.KeywordIndex.Close()
	}
}

// engineDeps are the optional collaborators of a search engine.
type engineDeps struct {
	speller search.Speller
	cache   *cache.FacetCache
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// buildEngine wires the search pipeline for store from the search and suggestion config.
func buildEngine(cfg *config.Config, store search.ContentStore, deps engineDeps) *search.Engine {
	sc := cfg.Search
	types := make([]search.FacetType, 0, len(sc.ContentTypes))
	for _, ct := range sc.ContentTypes {
		types = append(types, search.FacetType{Type: ct.Name, Label: ct.Label})
	}
	opts := []search.EngineOption{
		search.WithSuggestWithoutFilters(cfg.Suggestions.SuggestWithoutFilters),
		search.WithMetrics(deps.metrics),
	}
	if deps.cache != nil {
		opts = append(opts, search.WithFacetCache(deps.cache))
	}
	if deps.speller != nil {
		opts = append(opts, search.WithSpeller(deps.speller))
	}
	if deps.logger != nil {
		opts = append(opts, search.WithLogger(deps.logger))
	}
	return search.NewEngine(
		store,
		search.NewFacetCounter(types),
		search.NewExcerptExtractor(sc.ExcerptLength, sc.ExcerptLeadIn, sc.ExcerptEllipsis, sc.ExcerptBestWindow),
		search.NewHighlighter(sc.HighlightOpen, sc.HighlightClose, sc.HighlightEscapeHTML),
		search.NewSuggestionEngine(cfg.Suggestions.Queries, cfg.Suggestions.Categories),
		opts...,
	)
}

func buildNormalizer(cfg *config.Config) *search.Normalizer {
	types := make([]models.ContentType, 0, len(cfg.Search.ContentTypes))
	for _, ct := range cfg.Search.ContentTypes {
		types = append(types, ct.Name)
	}
	return search.NewNormalizer(types, cfg.Search.Categories, cfg.Search.DefaultPageSize, cfg.Search.MaxTerms)
}

// initializeComponents opens storage and the keyword index and wires the engine and
// indexer. m may be nil (one-shot CLI commands record no metrics).
func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool, m *metrics.Metrics) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	keywordIndex, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}

	deps := engineDeps{metrics: m, logger: logger}
	if cfg.Search.FacetCacheSize > 0 {
		deps.cache, err = cache.NewFacetCache(cfg.Search.FacetCacheSize)
		if err != nil {
			_ = keywordIndex.Close()
			_ = store.Close()
			return nil, fmt.Errorf("failed to initialize facet cache: %w", err)
		}
	}
	var speller *keyword.SpellChecker
	if cfg.Search.SpellCheck {
		speller = keyword.NewSpellChecker(keywordIndex,
			keyword.WithMaxDistance(cfg.Search.SpellMaxDistance),
			keyword.WithMinFrequency(cfg.Search.SpellMinFrequency),
		)
		deps.speller = speller
	}
	engine := buildEngine(cfg, contentstore.NewIndexedStore(keywordIndex, store), deps)

	idxOpts := []indexer.IndexerOption{
		indexer.WithMetrics(m),
		indexer.WithOnChange(func() {
			if deps.cache != nil {
				deps.cache.Purge()
			}
			if speller != nil {
				speller.Invalidate()
			}
		}),
	}
	if debug && logger != nil {
		idxOpts = append(idxOpts, indexer.WithLogger(logger))
	}
	idx := indexer.NewIndexer(store, keywordIndex, &cfg.Search, idxOpts...)

	return &Components{
		Storage:      store,
		KeywordIndex: keywordIndex,
		Engine:       engine,
		Normalizer:   buildNormalizer(cfg),
		Indexer:      idx,
	}, nil
}

// loadMemoryStore reads every content file under dirs into an in-process store.
// Files with undeclared types are skipped with a warning.
func loadMemoryStore(ctx context.Context, cfg *config.Config, dirs []string, logger *zap.Logger) (*contentstore.MemoryStore, error) {
	store := contentstore.NewMemoryStore()
	for _, dir := range dirs {
		err := indexer.WalkContentFiles(ctx, dir, cfg.Watch.Extensions, func(path string) error {
			input, err := indexer.ReadContentFile(path)
			if err != nil {
				return err
			}
			input.Title = indexer.Preprocess(input.Title)
			input.Body = indexer.Preprocess(input.Body)
			item := input.Item(input.PublishedAt)
			if !cfg.Search.HasType(item.Type) {
				logger.Warn("skipping content file with undeclared type", zap.String("path", path), zap.String("type", string(item.Type)))
				return nil
			}
			store.Put(item)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", dir, err)
		}
	}
	return store, nil
}
