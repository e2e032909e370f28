package queryexpand

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func termTexts(t []Term) []string {
	out := make([]string, len(t))
	for i, term := range t {
		out[i] = term.Text
	}
	return out
}

func TestExpandPreservesExactPhrase(t *testing.T) {
	e := New()
	eq := e.Expand("getUserConfig")
	assert.Equal(t, "getUserConfig", eq.Phrase)
	assert.Contains(t, termTexts(eq.Terms), "getuserconfig")
}

func TestExpandSplitsCamelCase(t *testing.T) {
	e := New()
	eq := e.Expand("getUserConfig")
	texts := termTexts(eq.Terms)
	assert.Contains(t, texts, "get")
	assert.Contains(t, texts, "user")
	assert.Contains(t, texts, "config")
}

func TestExpandSplitsSnakeAndKebabCase(t *testing.T) {
	e := New()
	snake := termTexts(e.Expand("user_config_value").Terms)
	assert.Contains(t, snake, "user")
	assert.Contains(t, snake, "config")
	assert.Contains(t, snake, "value")

	kebab := termTexts(e.Expand("user-config-value").Terms)
	assert.Contains(t, kebab, "user")
	assert.Contains(t, kebab, "config")
}

func TestExpandAcronymBoundary(t *testing.T) {
	e := New()
	texts := termTexts(e.Expand("HTTPServer").Terms)
	assert.Contains(t, texts, "http")
	assert.Contains(t, texts, "server")
}

func TestExpandAbbreviations(t *testing.T) {
	e := New()
	texts := termTexts(e.Expand("cfg").Terms)
	assert.Contains(t, texts, "config")
	assert.Contains(t, texts, "configuration")
}

func TestExpandReverseAbbreviation(t *testing.T) {
	e := New()
	texts := termTexts(e.Expand("configuration").Terms)
	assert.Contains(t, texts, "cfg")
}

func TestExpandSynonymGroup(t *testing.T) {
	e := New()
	texts := termTexts(e.Expand("login").Terms)
	assert.Contains(t, texts, "signin")
	assert.Contains(t, texts, "authenticate")
}

func TestExpandFuzzyNearMiss(t *testing.T) {
	e := New()
	texts := termTexts(e.Expand("signon").Terms) // close to "signin"
	assert.Contains(t, texts, "signin")
}

func TestExpandFuzzyDisabled(t *testing.T) {
	e := New(WithFuzzyDisabled())
	texts := termTexts(e.Expand("signon").Terms)
	assert.NotContains(t, texts, "signin")
}

func TestExpandExactTermOutranksDerived(t *testing.T) {
	e := New()
	eq := e.Expand("cfg")
	var exact, derived Term
	for _, term := range eq.Terms {
		if term.Text == "cfg" {
			exact = term
		}
		if term.Text == "config" {
			derived = term
		}
	}
	assert.Equal(t, OriginExact, exact.Origin)
	assert.Greater(t, exact.Boost, derived.Boost)
}

func TestSplitterCachesResults(t *testing.T) {
	s := newSplitter()
	first := s.split("fooBarBaz")
	second := s.split("fooBarBaz")
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"foo", "bar", "baz"}, first)
}
