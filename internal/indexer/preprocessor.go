package indexer

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Preprocess turns a content body or title into the plain single-line text that
// excerpts and highlights are computed over. Text is NFC-normalized, control and
// invisible runes are dropped, and whitespace runs become one space.
func Preprocess(text string) string {
	text = norm.NFC.String(text)
	var b strings.Builder
	b.Grow(len(text))
	space := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			space = b.Len() > 0
		case invisible(r):
		default:
			if space {
				b.WriteByte(' ')
				space = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// invisible reports runes that render as nothing but would split a term or shift
// an excerpt window: C0/C1 controls, zero-width spaces, soft hyphens, BOMs and
// the replacement rune left by invalid UTF-8.
func invisible(r rune) bool {
	if unicode.IsControl(r) {
		return true
	}
	switch r {
	case '\u00ad', '\u200b', '\u2060', '\ufeff', unicode.ReplacementChar:
		return true
	}
	return false
}
