package benchmark

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/shirabe/internal/contentstore"
	"github.com/hyperjump/shirabe/internal/models"
	"github.com/hyperjump/shirabe/internal/search"
)

var benchTypes = []models.ContentType{"article", "job", "page"}

func benchBody(i int) string {
	return strings.Repeat(fmt.Sprintf("Item %d talks about remote work, golang services and search. ", i), 20)
}

func benchStore(n int) *contentstore.MemoryStore {
	store := contentstore.NewMemoryStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		store.Put(&models.ContentItem{
			ID:          fmt.Sprintf("item-%04d", i),
			Type:        benchTypes[i%len(benchTypes)],
			Title:       fmt.Sprintf("Remote golang role %d", i),
			Body:        benchBody(i),
			Categories:  []string{"Careers"},
			PublishedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	return store
}

func BenchmarkHighlight(b *testing.B) {
	h := search.NewHighlighter("<mark>", "</mark>", true)
	text := benchBody(1)
	terms := []string{"remote", "golang", "search"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = h.Highlight(text, terms)
	}
}

func BenchmarkExcerptExtract(b *testing.B) {
	e := search.NewExcerptExtractor(250, 100, "...", true)
	item := &models.ContentItem{Body: benchBody(7)}
	terms := []string{"services", "search"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.Extract(item, terms)
	}
}

func BenchmarkNormalize(b *testing.B) {
	n := search.NewNormalizer(benchTypes, nil, 10, 32)
	p := search.RawParams{Query: "  Remote GOLANG jobs  ", Type: "job", Category: "Remote Work", Sort: "date-desc", Page: "3"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = n.Normalize(p)
	}
}

func BenchmarkEngineSearch_Memory(b *testing.B) {
	facetTypes := make([]search.FacetType, 0, len(benchTypes))
	for _, t := range benchTypes {
		facetTypes = append(facetTypes, search.FacetType{Type: t, Label: string(t)})
	}
	engine := search.NewEngine(
		benchStore(1000),
		search.NewFacetCounter(facetTypes),
		search.NewExcerptExtractor(250, 100, "...", false),
		search.NewHighlighter("<mark>", "</mark>", true),
		search.NewSuggestionEngine(nil, nil),
	)
	q := search.NewNormalizer(benchTypes, nil, 10, 32).Normalize(search.RawParams{Query: "remote golang"})
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Search(ctx, q); err != nil {
			b.Fatal(err)
		}
	}
}
