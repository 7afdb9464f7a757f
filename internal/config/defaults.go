package config

import "github.com/hyperjump/shirabe/internal/models"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeoutSeconds == 0 {
		cfg.Server.RequestTimeoutSeconds = 30
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/shirabe/data/db/content.db"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = "/usr/local/var/shirabe/data/indices/bleve"
	}
	if cfg.Search.DefaultPageSize == 0 {
		cfg.Search.DefaultPageSize = 10
	}
	if cfg.Search.MaxTerms == 0 {
		cfg.Search.MaxTerms = 32
	}
	if len(cfg.Search.ContentTypes) == 0 {
		cfg.Search.ContentTypes = []ContentTypeConfig{
			{Name: "article", Label: "Articles"},
			{Name: "job", Label: "Jobs"},
			{Name: "page", Label: "Pages"},
		}
	}
	for i := range cfg.Search.ContentTypes {
		if cfg.Search.ContentTypes[i].Label == "" {
			cfg.Search.ContentTypes[i].Label = string(cfg.Search.ContentTypes[i].Name)
		}
	}
	if cfg.Search.ExcerptLength == 0 {
		cfg.Search.ExcerptLength = 250
	}
	if cfg.Search.ExcerptLeadIn == 0 {
		cfg.Search.ExcerptLeadIn = 100
	}
	if cfg.Search.ExcerptEllipsis == "" {
		cfg.Search.ExcerptEllipsis = "..."
	}
	if cfg.Search.HighlightOpen == "" && cfg.Search.HighlightClose == "" {
		cfg.Search.HighlightOpen = "<mark>"
		cfg.Search.HighlightClose = "</mark>"
	}
	if cfg.Search.FacetCacheSize == 0 {
		cfg.Search.FacetCacheSize = 1024
	}
	if cfg.Suggestions.Queries == nil {
		cfg.Suggestions.Queries = []string{"remote", "engineering", "getting started"}
	}
	if cfg.Suggestions.Categories == nil {
		cfg.Suggestions.Categories = []models.CategoryShortcut{
			{Label: "Careers", Link: "/category/careers"},
			{Label: "News", Link: "/category/news"},
			{Label: "Guides", Link: "/category/guides"},
		}
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".md", ".markdown"}
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
