package keyword

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/hyperjump/shirabe/internal/models"
	"golang.org/x/text/cases"
)

const (
	documentType = "content"

	fieldTitle       = "title"
	fieldBody        = "body"
	fieldType        = "type"
	fieldCategories  = "categories"
	fieldPublishedAt = "published_at"
	fieldTitleSort   = "title_sort"

	// searchBatchSize is the first fetch size; larger match sets are fetched again in full.
	searchBatchSize = 1000
	// facetSize bounds the number of distinct types or categories a facet reports.
	facetSize = 1000
	// titleBoost weighs title matches over body matches.
	titleBoost = 2.0
)

// indexedItem is the document stored in Bleve for one content item.
type indexedItem struct {
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Type        string    `json:"type"`
	Categories  []string  `json:"categories"`
	PublishedAt time.Time `json:"published_at"`
	TitleSort   string    `json:"title_sort"`
}

// BleveType implements bleve's mapping.Classifier.
func (indexedItem) BleveType() string { return documentType }

// BleveIndex implements ContentIndex and TermDictionary using Bleve.
type BleveIndex struct {
	index bleve.Index
}

func newIndexMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	// Standard analyzer (lowercase + tokenize, no stemming), so a term matches only the word itself.
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt(fieldTitle, textFieldMapping)
	docMapping.AddFieldMappingsAt(fieldBody, textFieldMapping)

	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	keywordFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt(fieldType, keywordFieldMapping)
	docMapping.AddFieldMappingsAt(fieldCategories, keywordFieldMapping)
	docMapping.AddFieldMappingsAt(fieldTitleSort, keywordFieldMapping)

	dateFieldMapping := bleve.NewDateTimeFieldMapping()
	dateFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt(fieldPublishedAt, dateFieldMapping)

	im.AddDocumentMapping(documentType, docMapping)
	im.DefaultType = documentType
	im.DefaultMapping = docMapping
	return im
}

// NewBleveIndex creates or opens a Bleve index at path.
// An existing index is reopened as is; remove the directory after changing the mapping
// to force a full re-index.
func NewBleveIndex(path string) (*BleveIndex, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	index, err := bleve.New(path, newIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// NewMemBleveIndex creates an index that lives only in memory.
func NewMemBleveIndex() (*BleveIndex, error) {
	index, err := bleve.NewMemOnly(newIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Index adds or replaces item.
func (b *BleveIndex) Index(ctx context.Context, item *models.ContentItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := indexedItem{
		Title:       item.Title,
		Body:        item.Body,
		Type:        string(item.Type),
		Categories:  item.CategorySlugs(),
		PublishedAt: item.PublishedAt,
		TitleSort:   cases.Fold().String(item.Title),
	}
	return b.index.Index(item.ID, doc)
}

// Delete removes an item from the index.
func (b *BleveIndex) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.index.Delete(id)
}

// buildQuery matches any term in title or body (title hits boosted) and pins the
// type and category filters. Repeated terms add weight. Without terms every item matches.
// Items outside q.Types never match.
func buildQuery(q *models.SearchQuery) blevequery.Query {
	clauses := make([]blevequery.Query, 0, 3)
	if len(q.Terms) > 0 {
		should := make([]blevequery.Query, 0, 2*len(q.Terms))
		for _, term := range q.Terms {
			tq := bleve.NewMatchQuery(term)
			tq.SetField(fieldTitle)
			tq.SetBoost(titleBoost)
			bq := bleve.NewMatchQuery(term)
			bq.SetField(fieldBody)
			should = append(should, tq, bq)
		}
		clauses = append(clauses, bleve.NewDisjunctionQuery(should...))
	} else {
		clauses = append(clauses, bleve.NewMatchAllQuery())
	}
	if q.TypeFilter != "" {
		tq := bleve.NewTermQuery(string(q.TypeFilter))
		tq.SetField(fieldType)
		clauses = append(clauses, tq)
	} else if len(q.Types) > 0 {
		allowed := make([]blevequery.Query, 0, len(q.Types))
		for _, t := range q.Types {
			tq := bleve.NewTermQuery(string(t))
			tq.SetField(fieldType)
			allowed = append(allowed, tq)
		}
		clauses = append(clauses, bleve.NewDisjunctionQuery(allowed...))
	}
	if q.CategoryFilter != "" {
		cq := bleve.NewTermQuery(q.CategoryFilter)
		cq.SetField(fieldCategories)
		clauses = append(clauses, cq)
	}
	if len(clauses) == 1 {
		return clauses[0]
	}
	return bleve.NewConjunctionQuery(clauses...)
}

// sortOrder maps a sort key to Bleve sort fields; the document ID breaks ties.
func sortOrder(key models.SortKey) []string {
	switch key {
	case models.SortDateDesc:
		return []string{"-" + fieldPublishedAt, "_id"}
	case models.SortDateAsc:
		return []string{fieldPublishedAt, "_id"}
	case models.SortTitleAsc:
		return []string{fieldTitleSort, "_id"}
	default:
		return []string{"-_score", "_id"}
	}
}

// Search returns every match of q in q.EffectiveSort order, with the total.
func (b *BleveIndex) Search(ctx context.Context, q *models.SearchQuery) ([]Hit, int, error) {
	req := bleve.NewSearchRequestOptions(buildQuery(q), searchBatchSize, 0, false)
	req.SortBy(sortOrder(q.EffectiveSort()))
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, 0, fmt.Errorf("Bleve search failed: %w", err)
	}
	if total := int(results.Total); total > len(results.Hits) {
		req.Size = total
		results, err = b.index.SearchInContext(ctx, req)
		if err != nil {
			return nil, 0, fmt.Errorf("Bleve search failed: %w", err)
		}
	}

	hits := make([]Hit, len(results.Hits))
	for i, hit := range results.Hits {
		hits[i] = Hit{ID: hit.ID, Score: hit.Score}
	}
	return hits, int(results.Total), nil
}

// Count returns the number of matches of q.
func (b *BleveIndex) Count(ctx context.Context, q *models.SearchQuery) (int, error) {
	req := bleve.NewSearchRequestOptions(buildQuery(q), 0, 0, false)
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("Bleve count failed: %w", err)
	}
	return int(results.Total), nil
}

// CountByType counts matches of q per content type in one request.
// The models.ContentTypeAll entry holds the total.
func (b *BleveIndex) CountByType(ctx context.Context, q *models.SearchQuery) (map[models.ContentType]int, error) {
	terms, total, err := b.facet(ctx, q, fieldType)
	if err != nil {
		return nil, err
	}
	counts := make(map[models.ContentType]int, len(terms)+1)
	counts[models.ContentTypeAll] = total
	for term, n := range terms {
		counts[models.ContentType(term)] = n
	}
	return counts, nil
}

// CountByCategory counts matches of q per category slug in one request.
func (b *BleveIndex) CountByCategory(ctx context.Context, q *models.SearchQuery) (map[string]int, error) {
	terms, _, err := b.facet(ctx, q, fieldCategories)
	return terms, err
}

func (b *BleveIndex) facet(ctx context.Context, q *models.SearchQuery, field string) (map[string]int, int, error) {
	req := bleve.NewSearchRequestOptions(buildQuery(q), 0, 0, false)
	req.AddFacet(field, bleve.NewFacetRequest(field, facetSize))
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, 0, fmt.Errorf("Bleve facet %s failed: %w", field, err)
	}
	counts := make(map[string]int)
	if fr, ok := results.Facets[field]; ok && fr.Terms != nil {
		for _, tf := range fr.Terms.Terms() {
			counts[tf.Term] = tf.Count
		}
	}
	return counts, int(results.Total), nil
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}

// DocCount returns the total number of indexed items.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// GetAllTerms returns the distinct terms of the title and body fields.
func (b *BleveIndex) GetAllTerms() ([]string, error) {
	terms := make([]string, 0)
	seen := make(map[string]struct{})
	for _, field := range []string{fieldTitle, fieldBody} {
		dict, err := b.index.FieldDict(field)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s terms: %w", field, err)
		}
		for {
			entry, err := dict.Next()
			if err != nil || entry == nil {
				break
			}
			if _, ok := seen[entry.Term]; !ok {
				seen[entry.Term] = struct{}{}
				terms = append(terms, entry.Term)
			}
		}
		_ = dict.Close()
	}
	return terms, nil
}

// GetTermFrequency returns the number of items whose title or body contains term.
func (b *BleveIndex) GetTermFrequency(term string) (int, error) {
	tq := bleve.NewTermQuery(term)
	tq.SetField(fieldTitle)
	bq := bleve.NewTermQuery(term)
	bq.SetField(fieldBody)
	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(tq, bq), 0, 0, false)
	results, err := b.index.Search(req)
	if err != nil {
		return 0, fmt.Errorf("failed to search for term frequency: %w", err)
	}
	return int(results.Total), nil
}
