package search

import (
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/hyperjump/shirabe/internal/models"
)

func testNormalizer() *Normalizer {
	return NewNormalizer(
		[]models.ContentType{"article", "job", "page"},
		[]string{"Careers", "Remote Work", "News"},
		6, 32,
	)
}

func TestNormalize(t *testing.T) {
	n := testNormalizer()

	tests := []struct {
		name string
		in   RawParams
		want models.SearchQuery
	}{
		{
			name: "empty",
			in:   RawParams{},
			want: models.SearchQuery{Terms: []string{}, SortKey: models.SortRelevance, Page: 1, PageSize: 6},
		},
		{
			name: "terms lower-cased, duplicates kept",
			in:   RawParams{Query: "  Remote   JOBS remote "},
			want: models.SearchQuery{
				RawText:  "  Remote   JOBS remote ",
				Terms:    []string{"remote", "jobs", "remote"},
				SortKey:  models.SortRelevance,
				Page:     1,
				PageSize: 6,
			},
		},
		{
			name: "all filters valid",
			in:   RawParams{Query: "go", Type: "Job", Category: "remote-work", Sort: "date-asc", Page: "3"},
			want: models.SearchQuery{
				RawText:        "go",
				Terms:          []string{"go"},
				TypeFilter:     "job",
				CategoryFilter: "remote-work",
				SortKey:        models.SortDateAsc,
				Page:           3,
				PageSize:       6,
			},
		},
		{
			name: "category label slugified",
			in:   RawParams{Category: "Remote Work"},
			want: models.SearchQuery{Terms: []string{}, CategoryFilter: "remote-work", SortKey: models.SortRelevance, Page: 1, PageSize: 6},
		},
		{
			name: "malformed values fall back",
			in:   RawParams{Type: "podcast", Category: "unknown", Sort: "popularity", Page: "-4"},
			want: models.SearchQuery{Terms: []string{}, SortKey: models.SortRelevance, Page: 1, PageSize: 6},
		},
		{
			name: "type all means no filter",
			in:   RawParams{Type: "all", Page: "abc"},
			want: models.SearchQuery{Terms: []string{}, SortKey: models.SortRelevance, Page: 1, PageSize: 6},
		},
		{
			name: "zero page",
			in:   RawParams{Page: "0"},
			want: models.SearchQuery{Terms: []string{}, SortKey: models.SortRelevance, Page: 1, PageSize: 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want.Types = []models.ContentType{"article", "job", "page"}
			got := n.Normalize(tt.in)
			if !reflect.DeepEqual(*got, tt.want) {
				t.Errorf("Normalize(%+v)\n got  %+v\n want %+v", tt.in, *got, tt.want)
			}
		})
	}
}

func TestNormalize_Adversarial(t *testing.T) {
	n := testNormalizer()
	inputs := []RawParams{
		{Query: ".* (a+)+ [ \\ $^"},
		{Query: strings.Repeat("x ", 10000)},
		{Query: "\x00\xff\xfe", Type: "\n", Category: "../../etc", Page: "99999999999999999999"},
		{Query: "\t\n  \r"},
	}
	for _, in := range inputs {
		q := n.Normalize(in)
		if q.Page < 1 {
			t.Errorf("page %d < 1 for %q", q.Page, in.Query)
		}
		if len(q.Terms) > 32 {
			t.Errorf("got %d terms, want at most 32", len(q.Terms))
		}
		for _, term := range q.Terms {
			if term == "" {
				t.Errorf("empty term for %q", in.Query)
			}
		}
		if q.CategoryFilter != "" {
			t.Errorf("unexpected category %q", q.CategoryFilter)
		}
	}
}

func TestNormalize_DeclaredTypes(t *testing.T) {
	n := NewNormalizer([]models.ContentType{"job", "all", "article", "job", ""}, nil, 0, 0)
	q := n.Normalize(RawParams{Query: "remote"})
	if !reflect.DeepEqual(q.Types, []models.ContentType{"job", "article"}) {
		t.Errorf("Types = %v, want [job article]", q.Types)
	}
	if q.AllowsType("event") || !q.AllowsType("article") {
		t.Error("only declared types should be allowed")
	}
}

func TestNormalize_AnyCategoryWithoutConfiguredSet(t *testing.T) {
	n := NewNormalizer([]models.ContentType{"article"}, nil, 0, 0)
	q := n.Normalize(RawParams{Category: "Product Updates"})
	if q.CategoryFilter != "product-updates" {
		t.Errorf("CategoryFilter = %q, want product-updates", q.CategoryFilter)
	}
	if q.PageSize != 10 {
		t.Errorf("PageSize = %d, want default 10", q.PageSize)
	}
}

func TestNormalize_RoundTrip(t *testing.T) {
	n := testNormalizer()
	inputs := []RawParams{
		{},
		{Query: "Remote Jobs"},
		{Query: "  padded  query ", Type: "JOB", Sort: "title-asc", Page: "4"},
		{Query: "go", Category: "Remote Work", Sort: "relevance"},
		{Query: "a&b=c?d", Type: "bogus", Category: "nope", Sort: "nope", Page: "x"},
		{Query: "ünïcödé テスト", Sort: "date-desc", Page: "2"},
	}
	for _, in := range inputs {
		first := n.Normalize(in)
		values, err := url.ParseQuery(first.Encode())
		if err != nil {
			t.Fatalf("ParseQuery(%q): %v", first.Encode(), err)
		}
		second := n.NormalizeValues(values)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("round trip changed query\n first  %+v\n second %+v", first, second)
		}
	}
}

func TestParamsFromValues(t *testing.T) {
	v := url.Values{"q": {"remote"}, "type": {"job"}, "category": {"careers"}, "sort": {"date-desc"}, "page": {"2"}}
	got := ParamsFromValues(v)
	want := RawParams{Query: "remote", Type: "job", Category: "careers", Sort: "date-desc", Page: "2"}
	if got != want {
		t.Errorf("ParamsFromValues = %+v, want %+v", got, want)
	}
}
