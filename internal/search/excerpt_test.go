package search

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/hyperjump/shirabe/internal/models"
)

func words(n int, word string) string {
	return strings.TrimSpace(strings.Repeat(word+" ", n))
}

func TestExcerptExtractor_Window(t *testing.T) {
	e := NewExcerptExtractor(250, 100, "...", false)
	body := words(60, "lorem") + " We offer remote jobs across the globe. " + words(60, "ipsum")
	item := &models.ContentItem{Body: body}

	got := e.Extract(item, []string{"remote", "jobs"})
	if !strings.HasPrefix(got, "...") || !strings.HasSuffix(got, "...") {
		t.Errorf("cut edges should carry ellipses: %q", got)
	}
	if !strings.Contains(got, "remote jobs") {
		t.Errorf("match missing from excerpt: %q", got)
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(got, "..."), "...")
	if strings.HasPrefix(inner, "orem") || strings.HasSuffix(inner, "psu") {
		t.Errorf("edges not trimmed to word boundaries: %q", got)
	}
	if n := utf8.RuneCountInString(inner); n > 250 {
		t.Errorf("window is %d runes, want at most 250", n)
	}
	// at most 100 characters of lead-in before the match
	if i := strings.Index(inner, "remote"); i > 100 {
		t.Errorf("match at %d, want lead-in of at most 100", i)
	}
}

func TestExcerptExtractor_MatchNearStart(t *testing.T) {
	e := NewExcerptExtractor(250, 100, "...", false)
	item := &models.ContentItem{Body: "Remote work is here. " + words(80, "filler")}
	got := e.Extract(item, []string{"remote"})
	if !strings.HasPrefix(got, "Remote work") {
		t.Errorf("excerpt should start at the body start: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated end should carry an ellipsis: %q", got)
	}
}

func TestExcerptExtractor_ShortTermsIgnored(t *testing.T) {
	e := NewExcerptExtractor(20, 5, "...", false)
	item := &models.ContentItem{Body: "alpha beta gamma delta go epsilon zeta eta theta"}
	got := e.Extract(item, []string{"go"})
	if got != "alpha beta gamma..." {
		t.Errorf("got %q, want leading truncation", got)
	}
}

func TestExcerptExtractor_Fallbacks(t *testing.T) {
	e := NewExcerptExtractor(250, 100, "...", false)

	tests := []struct {
		name  string
		item  *models.ContentItem
		terms []string
		want  string
	}{
		{"override without terms", &models.ContentItem{Body: "body", ExcerptOverride: "Summary"}, nil, "Summary"},
		{"override when body has no match", &models.ContentItem{Body: "body text", ExcerptOverride: "Summary"}, []string{"remote"}, "Summary"},
		{"body prefix when nothing matches", &models.ContentItem{Body: "short body"}, []string{"remote"}, "short body"},
		{"empty body", &models.ContentItem{}, []string{"remote"}, ""},
		{"empty everything", &models.ContentItem{}, nil, ""},
		{"term longer than body", &models.ContentItem{Body: "go"}, []string{"golang-developers"}, "go"},
		{"body match beats override", &models.ContentItem{Body: "remote teams", ExcerptOverride: "Summary"}, []string{"remote"}, "remote teams"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Extract(tt.item, tt.terms); got != tt.want {
				t.Errorf("Extract = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExcerptExtractor_OverrideTruncated(t *testing.T) {
	e := NewExcerptExtractor(250, 100, "...", false)
	item := &models.ContentItem{ExcerptOverride: words(100, "summary")}
	got := e.Extract(item, nil)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("long override should be truncated with an ellipsis: %q", got)
	}
	if n := utf8.RuneCountInString(strings.TrimSuffix(got, "...")); n > 250 {
		t.Errorf("override excerpt is %d runes", n)
	}
}

func TestExcerptExtractor_LengthBound(t *testing.T) {
	bodies := []string{
		"",
		"x",
		strings.Repeat("a", 5000),
		words(2000, "remote"),
		words(300, "lorem") + " remote " + words(300, "ipsum"),
		strings.Repeat("ü", 400) + " remote " + strings.Repeat("ß", 400),
		"remote" + strings.Repeat(" ", 1000) + "jobs",
	}
	for _, maxLen := range []int{10, 50, 250} {
		for _, best := range []bool{false, true} {
			e := NewExcerptExtractor(maxLen, maxLen/2, "…", best)
			for _, body := range bodies {
				for _, terms := range [][]string{nil, {"remote"}, {"jobs", "remote"}, {"missing"}} {
					got := e.Extract(&models.ContentItem{Body: body}, terms)
					if n := utf8.RuneCountInString(got); n > maxLen+2 {
						t.Errorf("maxLen %d best %v: excerpt of %d runes", maxLen, best, n)
					}
				}
			}
		}
	}
}

func TestExcerptExtractor_BestWindow(t *testing.T) {
	body := "remote " + words(40, "filler") + " remote jobs with great salary " + words(40, "filler")
	item := &models.ContentItem{Body: body}

	first := NewExcerptExtractor(60, 10, "...", false).Extract(item, []string{"remote", "jobs", "salary"})
	if strings.Contains(first, "salary") {
		t.Errorf("first-match window should sit at the body start: %q", first)
	}

	best := NewExcerptExtractor(60, 10, "...", true).Extract(item, []string{"remote", "jobs", "salary"})
	for _, want := range []string{"remote", "jobs", "salary"} {
		if !strings.Contains(best, want) {
			t.Errorf("densest window missing %q: %q", want, best)
		}
	}
}

func TestNewExcerptExtractor_Defaults(t *testing.T) {
	e := NewExcerptExtractor(0, -1, "...", false)
	if e.maxLen != 250 {
		t.Errorf("maxLen = %d, want 250", e.maxLen)
	}
	if e.leadIn != 125 {
		t.Errorf("leadIn = %d, want 125", e.leadIn)
	}
}

func TestExcerptExtractor_ExtractParts(t *testing.T) {
	e := NewExcerptExtractor(250, 100, "...", false)
	body := words(60, "lorem") + " We offer remote jobs across the globe. " + words(60, "ipsum")
	x := e.ExtractParts(&models.ContentItem{Body: body}, []string{"remote"})
	if x.Lead != "..." || x.Trail != "..." {
		t.Errorf("markers = %q %q, want both ellipses", x.Lead, x.Trail)
	}
	if strings.Contains(x.Text, "...") || !strings.Contains(x.Text, "remote jobs") {
		t.Errorf("text = %q", x.Text)
	}
	if x.String() != e.Extract(&models.ContentItem{Body: body}, []string{"remote"}) {
		t.Error("String() should equal Extract")
	}

	short := e.ExtractParts(&models.ContentItem{Body: "Short body."}, nil)
	if short != (Excerpt{Text: "Short body."}) {
		t.Errorf("uncut excerpt = %+v", short)
	}
	long := e.ExtractParts(&models.ContentItem{Body: words(100, "lorem")}, nil)
	if long.Lead != "" || long.Trail != "..." {
		t.Errorf("truncated excerpt markers = %q %q", long.Lead, long.Trail)
	}
}
