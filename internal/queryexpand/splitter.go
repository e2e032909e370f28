package queryexpand

import (
	"strings"
	"sync"
	"unicode"
)

// splitter breaks an identifier-shaped token into its constituent
// words, recognizing snake_case, kebab-case, dotted/slashed paths, and
// camelCase/PascalCase/acronym transitions (HTTPServer -> http,
// server). Results are cached since the same identifiers recur across
// a file's worth of query terms.
type splitter struct {
	cache sync.Map // string -> []string
}

func newSplitter() *splitter { return &splitter{} }

func (s *splitter) split(token string) []string {
	if token == "" {
		return nil
	}
	if cached, ok := s.cache.Load(token); ok {
		return cached.([]string)
	}

	runes := []rune(token)
	var words []string
	var buf []rune

	flush := func() {
		if len(buf) > 0 {
			words = append(words, strings.ToLower(string(buf)))
			buf = buf[:0]
		}
	}

	for i, ch := range runes {
		switch {
		case ch == '_' || ch == '-' || ch == '.' || ch == '/':
			flush()
			continue
		case i > 0 && unicode.IsLower(runes[i-1]) && unicode.IsUpper(ch):
			// camelCase boundary: fooBar -> foo | Bar
			flush()
		case i > 1 && unicode.IsUpper(runes[i-1]) && unicode.IsUpper(runes[i-2]) && unicode.IsLower(ch):
			// acronym boundary: HTTPServer -> HTTP | Server
			last := buf[len(buf)-1]
			buf = buf[:len(buf)-1]
			flush()
			buf = append(buf, last)
		case i > 0 && isLetterDigitBoundary(runes[i-1], ch):
			flush()
		}
		buf = append(buf, ch)
	}
	flush()

	if len(words) == 0 {
		words = []string{strings.ToLower(token)}
	}
	s.cache.Store(token, words)
	return words
}

func isLetterDigitBoundary(prev, cur rune) bool {
	return (unicode.IsLetter(prev) && unicode.IsDigit(cur)) ||
		(unicode.IsDigit(prev) && unicode.IsLetter(cur))
}

// splitPhrase splits a whole query string on whitespace first, then
// splits each resulting word into its identifier-case constituents.
func (s *splitter) splitPhrase(phrase string) []string {
	var out []string
	for _, word := range strings.Fields(phrase) {
		out = append(out, s.split(word)...)
	}
	return out
}
