package keyword

import (
	"sort"
	"strings"
	"sync"
	"unicode/utf8"
)

// Correction is a dictionary term proposed in place of an unknown query term.
type Correction struct {
	Term      string
	Distance  int
	Frequency int
}

// SpellChecker proposes corrections for query terms missing from the index vocabulary.
// The vocabulary is loaded lazily and reloaded after Invalidate. A load that
// overlaps an Invalidate is used once but not kept.
type SpellChecker struct {
	dictionary  TermDictionary
	maxDistance int
	minFreq     int
	minLen      int

	mu     sync.RWMutex
	terms  []string
	known  map[string]struct{}
	loaded bool
	gen    uint64
}

// SpellCheckerOption configures a SpellChecker.
type SpellCheckerOption func(*SpellChecker)

// WithMaxDistance sets the maximum edit distance of a correction.
func WithMaxDistance(d int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if d > 0 {
			s.maxDistance = d
		}
	}
}

// WithMinFrequency ignores dictionary terms found in fewer than f items.
func WithMinFrequency(f int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if f >= 0 {
			s.minFreq = f
		}
	}
}

// NewSpellChecker creates a spell checker over dict.
func NewSpellChecker(dict TermDictionary, opts ...SpellCheckerOption) *SpellChecker {
	s := &SpellChecker{
		dictionary:  dict,
		maxDistance: 2,
		minFreq:     1,
		minLen:      3,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Invalidate drops the loaded vocabulary; the next lookup reloads it.
func (s *SpellChecker) Invalidate() {
	s.mu.Lock()
	s.gen++
	s.loaded = false
	s.terms = nil
	s.known = nil
	s.mu.Unlock()
}

func (s *SpellChecker) vocabulary() ([]string, map[string]struct{}, error) {
	s.mu.RLock()
	if s.loaded {
		terms, known := s.terms, s.known
		s.mu.RUnlock()
		return terms, known, nil
	}
	gen := s.gen
	s.mu.RUnlock()

	terms, err := s.dictionary.GetAllTerms()
	if err != nil {
		return nil, nil, err
	}
	known := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		known[strings.ToLower(t)] = struct{}{}
	}

	s.mu.Lock()
	if s.gen == gen {
		s.terms, s.known, s.loaded = terms, known, true
	}
	s.mu.Unlock()
	return terms, known, nil
}

// Corrections returns candidate replacements for term, closest first and then
// most frequent. A known term, or one shorter than three runes, has none.
func (s *SpellChecker) Corrections(term string) ([]Correction, error) {
	term = strings.ToLower(term)
	terms, known, err := s.vocabulary()
	if err != nil {
		return nil, err
	}
	if _, ok := known[term]; ok || utf8.RuneCountInString(term) < s.minLen {
		return nil, nil
	}

	termLen := utf8.RuneCountInString(term)
	var out []Correction
	for _, candidate := range terms {
		lower := strings.ToLower(candidate)
		if diff := utf8.RuneCountInString(lower) - termLen; diff > s.maxDistance || -diff > s.maxDistance {
			continue
		}
		d := EditDistance(term, lower)
		if d == 0 || d > s.maxDistance {
			continue
		}
		freq, err := s.dictionary.GetTermFrequency(candidate)
		if err != nil || freq < s.minFreq {
			continue
		}
		out = append(out, Correction{Term: lower, Distance: d, Frequency: freq})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Term < out[j].Term
	})
	return out, nil
}

// GetSuggestedQuery replaces every unknown term of query with its best correction.
// It returns query unchanged when nothing can be corrected or the vocabulary is unavailable.
func (s *SpellChecker) GetSuggestedQuery(query string) string {
	fields := strings.Fields(strings.ToLower(query))
	changed := false
	for i, f := range fields {
		corrections, err := s.Corrections(f)
		if err != nil {
			return query
		}
		if len(corrections) > 0 {
			fields[i] = corrections[0].Term
			changed = true
		}
	}
	if !changed {
		return query
	}
	return strings.Join(fields, " ")
}
