package search

import "github.com/hyperjump/shirabe/internal/models"

// SuggestionEngine returns the static fallback shown when a query has no results.
// It depends only on configuration, never on the store or on why the query failed.
type SuggestionEngine struct {
	queries    []string
	categories []models.CategoryShortcut
}

// NewSuggestionEngine creates an engine with alternative queries and category shortcuts.
func NewSuggestionEngine(queries []string, categories []models.CategoryShortcut) *SuggestionEngine {
	return &SuggestionEngine{
		queries:    append([]string(nil), queries...),
		categories: append([]models.CategoryShortcut(nil), categories...),
	}
}

// Suggest returns a fresh copy of the configured suggestions.
func (s *SuggestionEngine) Suggest() *models.Suggestions {
	return &models.Suggestions{
		Queries:    append([]string{}, s.queries...),
		Categories: append([]models.CategoryShortcut{}, s.categories...),
	}
}
