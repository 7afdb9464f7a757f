// Package config provides configuration loading and structs for the shirabe server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/shirabe/internal/models"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug       bool              `yaml:"debug"`
	Server      ServerConfig      `yaml:"server"`
	Storage     StorageConfig     `yaml:"storage"`
	Search      SearchConfig      `yaml:"search"`
	Suggestions SuggestionsConfig `yaml:"suggestions"`
	Watch       WatchConfig       `yaml:"watch"`
}

// WatchConfig holds content directory watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// RequestTimeoutSeconds bounds each request; search honors the cancellation.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
}

// StorageConfig holds paths for the content database and keyword index.
type StorageConfig struct {
	DatabasePath   string `yaml:"database_path"`
	BleveIndexPath string `yaml:"bleve_index_path"`
}

// ContentTypeConfig declares one content type and its display label.
type ContentTypeConfig struct {
	Name  models.ContentType `yaml:"name"`
	Label string             `yaml:"label"`
}

// SearchConfig holds query, paging, excerpt and highlight settings.
type SearchConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
	// MaxTerms caps the number of tokens kept from one query (0 = unlimited).
	MaxTerms int `yaml:"max_terms"`
	// ContentTypes is the closed, ordered set of searchable types; facets follow this order.
	ContentTypes []ContentTypeConfig `yaml:"content_types"`
	// Categories restricts category filters to these slugs. Empty accepts any well-formed slug.
	Categories []string `yaml:"categories"`

	ExcerptLength     int    `yaml:"excerpt_length"`
	ExcerptLeadIn     int    `yaml:"excerpt_lead_in"`
	ExcerptEllipsis   string `yaml:"excerpt_ellipsis"`
	ExcerptBestWindow bool   `yaml:"excerpt_best_window"`

	HighlightOpen       string `yaml:"highlight_open"`
	HighlightClose      string `yaml:"highlight_close"`
	HighlightEscapeHTML bool   `yaml:"highlight_escape_html"`

	// FacetCacheSize is the number of facet results kept in the LRU; negative disables caching.
	FacetCacheSize int `yaml:"facet_cache_size"`
	// SpellCheck enables "did you mean" corrections on zero-result queries.
	SpellCheck bool `yaml:"spell_check"`
	// SpellMaxDistance is the largest edit distance of a correction (0 = 2).
	SpellMaxDistance int `yaml:"spell_max_distance"`
	// SpellMinFrequency ignores dictionary terms found in fewer items (0 = 1).
	SpellMinFrequency int `yaml:"spell_min_frequency"`
}

// TypeLabel returns the configured label for t, or the type name itself.
func (s *SearchConfig) TypeLabel(t models.ContentType) string {
	for _, ct := range s.ContentTypes {
		if ct.Name == t {
			return ct.Label
		}
	}
	return string(t)
}

// HasType reports whether t is a configured content type.
func (s *SearchConfig) HasType(t models.ContentType) bool {
	for _, ct := range s.ContentTypes {
		if ct.Name == t {
			return true
		}
	}
	return false
}

// SuggestionsConfig holds the static fallback shown when a query has no results.
type SuggestionsConfig struct {
	Queries    []string                  `yaml:"queries"`
	Categories []models.CategoryShortcut `yaml:"categories"`
	// SuggestWithoutFilters offers the same text without type/category filters
	// when a filtered query has no results but the unfiltered one does.
	SuggestWithoutFilters bool `yaml:"suggest_without_filters"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
