package e2e

import (
	"strings"
	"testing"
)

func TestBuildCorpus_ReturnsRequestedItems(t *testing.T) {
	c := BuildCorpus(60)
	if c.TotalItems != 60 || len(c.Items) != 60 {
		t.Errorf("expected 60 items, got %d (len %d)", c.TotalItems, len(c.Items))
	}
	seen := make(map[string]bool)
	for _, it := range c.Items {
		if seen[it.ID] {
			t.Errorf("duplicate id %q", it.ID)
		}
		seen[it.ID] = true
	}
}

func TestBuildCorpus_SpreadsTypesAndCategories(t *testing.T) {
	c := BuildCorpus(12)
	types := make(map[string]int)
	cats := make(map[string]int)
	for _, it := range c.Items {
		types[string(it.Type)]++
		cats[it.Category]++
	}
	if types["article"] != 4 || types["job"] != 4 || types["page"] != 4 {
		t.Errorf("types = %v", types)
	}
	if len(cats) != len(corpusCategories) {
		t.Errorf("categories = %v", cats)
	}
}

func TestBuildCorpus_ExpectedItemsContainQueryPhrase(t *testing.T) {
	c := BuildCorpus(len(topics))
	if c.TotalQueries != len(topics) {
		t.Errorf("expected one query per topic, got %d", c.TotalQueries)
	}
	byID := make(map[string]E2EItem)
	for _, it := range c.Items {
		byID[it.ID] = it
	}
	for _, tc := range c.TestCases {
		for _, id := range tc.ExpectedIDs {
			it, ok := byID[id]
			if !ok {
				t.Errorf("expected id %q not in corpus", id)
				continue
			}
			if !containsPhrase(it, tc.Query) {
				t.Errorf("item %q (title=%q) does not contain query phrase %q", id, it.Title, tc.Query)
			}
		}
	}
}

func TestCorpus_ToItemInputs(t *testing.T) {
	c := BuildCorpus(10)
	inputs := c.ToItemInputs()
	if len(inputs) != len(c.Items) {
		t.Fatalf("expected %d inputs, got %d", len(c.Items), len(inputs))
	}
	for i, in := range inputs {
		it := c.Items[i]
		if in.ID != it.ID || in.Type != it.Type || in.Title != it.Title || in.Body != it.Body {
			t.Errorf("input[%d] = %+v, want %+v", i, in, it)
		}
		if len(in.Categories) != 1 || in.Categories[0] != it.Category {
			t.Errorf("input[%d].Categories = %v", i, in.Categories)
		}
	}
}

func TestItemMarkdown(t *testing.T) {
	it := BuildCorpus(1).Items[0]
	md := it.Markdown()
	if !strings.HasPrefix(md, "---\nid: e2e-item-001\ntype: article\n") {
		t.Errorf("unexpected front matter:\n%s", md)
	}
	if !strings.Contains(md, "categories:\n  - Engineering\n---\n") {
		t.Errorf("missing categories block:\n%s", md)
	}
	if !strings.HasSuffix(md, it.Body+"\n") {
		t.Errorf("body not at end:\n%s", md)
	}
}

func TestContainsPhrase(t *testing.T) {
	tests := []struct {
		item    E2EItem
		phrase  string
		contain bool
	}{
		{E2EItem{Title: "Go", Body: "Golang goroutines and channels"}, "golang goroutines", true},
		{E2EItem{Title: "Go", Body: "Golang goroutines"}, "rust", false},
		{E2EItem{Title: "Python programming", Body: "Python is great"}, "python programming", true},
	}
	for i, tt := range tests {
		if got := containsPhrase(tt.item, tt.phrase); got != tt.contain {
			t.Errorf("test %d: containsPhrase(%q) = %v, want %v", i, tt.phrase, got, tt.contain)
		}
	}
}
