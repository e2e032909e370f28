// Package queryexpand implements the three-stage query expansion
// pipeline: identifier splitting, abbreviation expansion, and synonym
// grouping. It turns a natural-language or symbol-shaped query into a
// weighted multiset of terms, with the original query words at full
// boost and derived terms at lower boosts. internal/retrieval ORs the
// terms into its BM25 keyword query; it does not pass the boosts on,
// and vector search embeds the raw query instead.
package queryexpand

import (
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/surgebase/porter2"
)

// Origin classifies why a term appears in an ExpandedQuery.
type Origin string

const (
	OriginExact   Origin = "exact"
	OriginSplit   Origin = "split"
	OriginAbbrev  Origin = "abbreviation"
	OriginSynonym Origin = "synonym"
	OriginFuzzy   Origin = "fuzzy"
)

// Term is one weighted query term.
type Term struct {
	Text   string
	Stem   string
	Boost  float64
	Origin Origin
}

// ExpandedQuery is the output of Expand: the original phrase (for
// exact-phrase boosting by the caller) plus the full weighted term
// multiset.
type ExpandedQuery struct {
	Phrase string
	Terms  []Term
}

const (
	boostExact   = 1.0
	boostSplit   = 0.8
	boostAbbrev  = 0.6
	boostSynonym = 0.45
	boostFuzzy   = 0.3
)

// Expander runs the three-stage pipeline. Construct one with New (the
// zero value has no splitter and is not usable); fuzzy matching is on
// by default at the teacher's 0.80 Jaro-Winkler threshold.
type Expander struct {
	split     *splitter
	threshold float64
	fuzzy     bool
}

// Option configures an Expander at construction.
type Option func(*Expander)

// WithFuzzyThreshold sets the Jaro-Winkler similarity threshold used
// for near-miss synonym matching (stage 3). Values outside (0,1] fall
// back to the default.
func WithFuzzyThreshold(threshold float64) Option {
	return func(e *Expander) {
		if threshold > 0 && threshold <= 1 {
			e.threshold = threshold
		}
	}
}

// WithFuzzyDisabled turns off stage-3 fuzzy near-miss matching,
// leaving exact synonym-group membership as the only stage-3 source.
func WithFuzzyDisabled() Option {
	return func(e *Expander) { e.fuzzy = false }
}

// New returns an Expander ready to use.
func New(opts ...Option) *Expander {
	e := &Expander{split: newSplitter(), threshold: 0.80, fuzzy: true}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Expand runs the full pipeline over query.
func (e *Expander) Expand(query string) ExpandedQuery {
	seen := make(map[string]Term)
	add := func(text string, boost float64, origin Origin) {
		if text == "" {
			return
		}
		if existing, ok := seen[text]; ok && existing.Boost >= boost {
			return
		}
		seen[text] = Term{Text: text, Stem: stem(text), Boost: boost, Origin: origin}
	}

	for _, word := range strings.Fields(query) {
		lower := strings.ToLower(word)
		add(lower, boostExact, OriginExact)

		for _, part := range e.split.split(word) {
			if part == lower {
				continue
			}
			add(part, boostSplit, OriginSplit)
			e.expandTerm(part, add)
		}
		e.expandTerm(lower, add)
	}

	terms := make([]Term, 0, len(seen))
	for _, t := range seen {
		terms = append(terms, t)
	}
	return ExpandedQuery{Phrase: query, Terms: terms}
}

func (e *Expander) expandTerm(term string, add func(text string, boost float64, origin Origin)) {
	for _, full := range abbreviations[term] {
		add(full, boostAbbrev, OriginAbbrev)
	}
	for _, short := range reverseAbbreviations[term] {
		add(short, boostAbbrev, OriginAbbrev)
	}
	for _, syn := range synonymIndex[term] {
		add(syn, boostSynonym, OriginSynonym)
	}

	if !e.fuzzy {
		return
	}
	for _, group := range synonymGroups {
		for _, candidate := range group {
			if candidate == term {
				continue
			}
			if score, err := edlib.StringsSimilarity(term, candidate, edlib.JaroWinkler); err == nil && float64(score) >= e.threshold {
				for _, member := range group {
					if member != term {
						add(member, boostFuzzy, OriginFuzzy)
					}
				}
				break
			}
		}
	}
}

// stem returns the porter2 stem of a term, falling back to the term
// itself for anything shorter than the algorithm's minimum (matches
// the teacher's exclusion of very short tokens from stemming).
func stem(term string) string {
	if len(term) < 3 {
		return term
	}
	return porter2.Stem(term)
}
