package search

import (
	"html"
	"sort"
	"strings"
	"unicode"
)

// Highlighter wraps case-insensitive literal occurrences of query terms in a marker pair.
// Terms are compared rune by rune and are never interpreted as patterns, so input
// like ".*" or "(a+)+" only ever matches itself.
type Highlighter struct {
	open       string
	close      string
	escapeHTML bool
}

// NewHighlighter creates a highlighter. When escapeHTML is set, text outside the
// markers is HTML-escaped so the output can be embedded in a page verbatim.
func NewHighlighter(open, close string, escapeHTML bool) *Highlighter {
	return &Highlighter{open: open, close: close, escapeHTML: escapeHTML}
}

type span struct{ start, end int }

// Highlight marks every occurrence of each term in text. Overlapping or touching
// matches become one marked span. Text that is already highlighted
// is not recognized and would be wrapped again.
func (h *Highlighter) Highlight(text string, terms []string) string {
	if text == "" {
		return ""
	}
	runes := []rune(text)
	spans := matchSpans(runes, terms)
	if len(spans) == 0 {
		return h.plain(text)
	}

	var b strings.Builder
	b.Grow(len(text) + len(spans)*(len(h.open)+len(h.close)))
	pos := 0
	for _, s := range spans {
		b.WriteString(h.plain(string(runes[pos:s.start])))
		b.WriteString(h.open)
		b.WriteString(h.plain(string(runes[s.start:s.end])))
		b.WriteString(h.close)
		pos = s.end
	}
	b.WriteString(h.plain(string(runes[pos:])))
	return b.String()
}

// HighlightExcerpt marks terms in the excerpt text only; its ellipsis markers are
// never matched.
func (h *Highlighter) HighlightExcerpt(ex Excerpt, terms []string) string {
	return h.plain(ex.Lead) + h.Highlight(ex.Text, terms) + h.plain(ex.Trail)
}

func (h *Highlighter) plain(s string) string {
	if h.escapeHTML {
		return html.EscapeString(s)
	}
	return s
}

// matchSpans returns the merged, sorted rune spans where any term occurs.
func matchSpans(runes []rune, terms []string) []span {
	lowered := lowerRunes(runes)
	var spans []span
	seen := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		if term == "" {
			continue
		}
		t := lowerRunes([]rune(term))
		key := string(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		for i := 0; i+len(t) <= len(lowered); {
			if hasRunePrefix(lowered[i:], t) {
				spans = append(spans, span{i, i + len(t)})
				i += len(t)
				continue
			}
			i++
		}
	}
	return mergeSpans(spans)
}

func mergeSpans(spans []span) []span {
	if len(spans) < 2 {
		return spans
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})
	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.start <= last.end {
			last.end = max(last.end, s.end)
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// lowerRunes lower-cases rune by rune, so indexes stay aligned with the input.
func lowerRunes(runes []rune) []rune {
	out := make([]rune, len(runes))
	for i, r := range runes {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func hasRunePrefix(s, prefix []rune) bool {
	if len(prefix) > len(s) {
		return false
	}
	for i, r := range prefix {
		if s[i] != r {
			return false
		}
	}
	return true
}

// indexRunes returns the first index of sub in s, or -1.
func indexRunes(s, sub []rune) int {
	if len(sub) == 0 {
		return -1
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		if hasRunePrefix(s[i:], sub) {
			return i
		}
	}
	return -1
}
