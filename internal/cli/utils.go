// Package cli provides output helpers for the shirabe command line.
package cli

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/hyperjump/shirabe/internal/models"
	"github.com/hyperjump/shirabe/pkg/utils"
	"github.com/microcosm-cc/bluemonday"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText SearchOutputFormat = "text"
	// OutputCompact prints one tab-separated line per result.
	OutputCompact SearchOutputFormat = "compact"
	// OutputJSON is the result page as JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

// ParseOutputFormat returns the format named s; unknown names are an error.
func ParseOutputFormat(s string) (SearchOutputFormat, error) {
	switch f := SearchOutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", OutputText:
		return OutputText, nil
	case OutputCompact, OutputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, compact or json)", s)
	}
}

var markup = bluemonday.StrictPolicy()

// PlainText strips highlight markup from s.
func PlainText(s string) string {
	return html.UnescapeString(markup.Sanitize(s))
}

// WriteSearchPage writes a result page to w in the given format.
func WriteSearchPage(w io.Writer, page *models.SearchResultPage, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(page)
	case OutputCompact:
		for _, r := range page.Items {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", r.Item.ID, r.Item.Type, r.Item.Title); err != nil {
				return err
			}
		}
		return nil
	default:
		writeSearchPageText(w, page)
		return nil
	}
}

func writeSearchPageText(w io.Writer, page *models.SearchResultPage) {
	fmt.Fprintf(w, "\nFound %d results in %dms", page.Total, page.QueryTime)
	if page.TotalPages > 0 {
		fmt.Fprintf(w, " (page %d of %d)", page.Page, page.TotalPages)
	}
	fmt.Fprintln(w)
	if facets := formatFacets(page.Facets); facets != "" {
		fmt.Fprintln(w, facets)
	}
	fmt.Fprintln(w)

	for i, r := range page.Items {
		writeOneResult(w, (page.Page-1)*page.PageSize+i+1, r)
	}
	if page.Suggestions != nil {
		writeSuggestions(w, page.Suggestions)
	}
	if page.HasPrev() {
		fmt.Fprintf(w, "Previous results: --page %d\n", page.Page-1)
	}
	if page.HasNext() {
		fmt.Fprintf(w, "More results: --page %d\n", page.Page+1)
	}
}

func formatFacets(facets []models.FacetCount) string {
	parts := make([]string, 0, len(facets))
	for _, f := range facets {
		parts = append(parts, fmt.Sprintf("%s (%d)", f.Label, f.Count))
	}
	return strings.Join(parts, " | ")
}

func writeOneResult(w io.Writer, rank int, r *models.RenderedResult) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "%d. [%s] %s\n", rank, r.TypeLabel, PlainText(r.HighlightedTitle))
	fmt.Fprintf(w, "ID: %s | Published: %s", r.Item.ID, r.Item.PublishedAt.Format("2006-01-02"))
	if len(r.Item.Categories) > 0 {
		fmt.Fprintf(w, " | %s", strings.Join(r.Item.Categories, ", "))
	}
	fmt.Fprintln(w)
	if excerpt := PlainText(r.HighlightedExcerpt); excerpt != "" {
		fmt.Fprintf(w, "\n%s\n", utils.Truncate(excerpt, 300))
	}
	fmt.Fprintln(w)
}

func writeSuggestions(w io.Writer, s *models.Suggestions) {
	if s.DidYouMean != "" {
		fmt.Fprintf(w, "Did you mean: %s\n", s.DidYouMean)
	}
	if s.WithoutFilters != "" {
		fmt.Fprintf(w, "Try without filters: ?%s\n", s.WithoutFilters)
	}
	if len(s.Queries) > 0 {
		fmt.Fprintf(w, "Try searching for: %s\n", strings.Join(s.Queries, ", "))
	}
	if len(s.Categories) > 0 {
		labels := make([]string, 0, len(s.Categories))
		for _, c := range s.Categories {
			labels = append(labels, fmt.Sprintf("%s (%s)", c.Label, c.Link))
		}
		fmt.Fprintf(w, "Or browse: %s\n", strings.Join(labels, ", "))
	}
}
