package search

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hyperjump/shirabe/internal/models"
)

// ExcerptExtractor picks a bounded window of an item's body around the first term match.
// Lengths are counted in runes.
type ExcerptExtractor struct {
	maxLen     int
	leadIn     int
	ellipsis   string
	bestWindow bool
}

// NewExcerptExtractor creates an extractor. maxLen is the window length, leadIn the
// number of characters kept before the match. With bestWindow, every match is a
// candidate and the window holding the most distinct terms wins; ties keep the earliest.
func NewExcerptExtractor(maxLen, leadIn int, ellipsis string, bestWindow bool) *ExcerptExtractor {
	if maxLen <= 0 {
		maxLen = 250
	}
	if leadIn < 0 || leadIn >= maxLen {
		leadIn = maxLen / 2
	}
	return &ExcerptExtractor{maxLen: maxLen, leadIn: leadIn, ellipsis: ellipsis, bestWindow: bestWindow}
}

// Excerpt is an extracted window. Lead and Trail hold the ellipsis when the
// window was cut on that side and are empty otherwise.
type Excerpt struct {
	Lead  string
	Text  string
	Trail string
}

// String joins the markers and the text.
func (x Excerpt) String() string {
	return x.Lead + x.Text + x.Trail
}

// Extract returns the excerpt of item for terms.
func (e *ExcerptExtractor) Extract(item *models.ContentItem, terms []string) string {
	return e.ExtractParts(item, terms).String()
}

// ExtractParts is Extract with the ellipsis markers kept apart from the text.
func (e *ExcerptExtractor) ExtractParts(item *models.ContentItem, terms []string) Excerpt {
	needles := longTerms(terms)
	if item.ExcerptOverride != "" && len(needles) == 0 {
		return e.truncate(item.ExcerptOverride)
	}
	body := []rune(item.Body)
	if len(needles) > 0 && len(body) > 0 {
		lowered := lowerRunes(body)
		var pos, length int
		if e.bestWindow {
			pos, length = e.bestMatch(lowered, needles)
		} else {
			pos, length = firstMatch(lowered, needles)
		}
		if pos >= 0 {
			return e.window(body, pos, length)
		}
	}
	if item.ExcerptOverride != "" {
		return e.truncate(item.ExcerptOverride)
	}
	return e.truncate(item.Body)
}

// longTerms keeps lower-cased rune forms of terms longer than models.MinHighlightTermLen.
func longTerms(terms []string) [][]rune {
	out := make([][]rune, 0, len(terms))
	for _, t := range terms {
		if utf8.RuneCountInString(t) <= models.MinHighlightTermLen {
			continue
		}
		out = append(out, lowerRunes([]rune(t)))
	}
	return out
}

// firstMatch returns the earliest position of any needle; on a tie the longer needle wins.
func firstMatch(lowered []rune, needles [][]rune) (int, int) {
	pos, length := -1, 0
	for _, n := range needles {
		i := indexRunes(lowered, n)
		if i < 0 {
			continue
		}
		if pos < 0 || i < pos || (i == pos && len(n) > length) {
			pos, length = i, len(n)
		}
	}
	return pos, length
}

func (e *ExcerptExtractor) bestMatch(lowered []rune, needles [][]rune) (int, int) {
	type occurrence struct{ pos, length, term int }
	var occs []occurrence
	for ti, n := range needles {
		for i := 0; i+len(n) <= len(lowered); {
			if hasRunePrefix(lowered[i:], n) {
				occs = append(occs, occurrence{i, len(n), ti})
				i += len(n)
				continue
			}
			i++
		}
	}
	bestPos, bestLen, bestDistinct, bestTotal := -1, 0, -1, -1
	for _, c := range occs {
		start := max(0, c.pos-e.leadIn)
		end := start + e.maxLen
		distinct := make(map[int]struct{})
		total := 0
		for _, o := range occs {
			if o.pos >= start && o.pos+o.length <= end {
				distinct[o.term] = struct{}{}
				total++
			}
		}
		better := len(distinct) > bestDistinct ||
			(len(distinct) == bestDistinct && total > bestTotal) ||
			(len(distinct) == bestDistinct && total == bestTotal && c.pos < bestPos)
		if better {
			bestPos, bestLen, bestDistinct, bestTotal = c.pos, c.length, len(distinct), total
		}
	}
	return bestPos, bestLen
}

// window cuts [pos-leadIn, pos-leadIn+maxLen) out of body, pulls both edges in
// to word boundaries without dropping the match, and marks cut edges with the ellipsis.
func (e *ExcerptExtractor) window(body []rune, pos, length int) Excerpt {
	start := max(0, pos-e.leadIn)
	end := min(len(body), start+e.maxLen)
	matchEnd := min(pos+length, end)

	if start > 0 && !unicode.IsSpace(body[start-1]) {
		for i := start; i < pos; i++ {
			if unicode.IsSpace(body[i]) {
				start = i + 1
				break
			}
		}
	}
	if end < len(body) && !unicode.IsSpace(body[end]) {
		for i := end - 1; i >= matchEnd; i-- {
			if unicode.IsSpace(body[i]) {
				end = i
				break
			}
		}
	}

	x := Excerpt{Text: strings.TrimSpace(string(body[start:end]))}
	if start > 0 {
		x.Lead = e.ellipsis
	}
	if end < len(body) {
		x.Trail = e.ellipsis
	}
	return x
}

// truncate keeps the first maxLen runes of s, backing off to a word boundary.
func (e *ExcerptExtractor) truncate(s string) Excerpt {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= e.maxLen {
		return Excerpt{Text: string(runes)}
	}
	cut := e.maxLen
	if !unicode.IsSpace(runes[cut]) {
		for i := cut - 1; i > 0; i-- {
			if unicode.IsSpace(runes[i]) {
				cut = i
				break
			}
		}
	}
	return Excerpt{Text: strings.TrimRightFunc(string(runes[:cut]), unicode.IsSpace), Trail: e.ellipsis}
}
