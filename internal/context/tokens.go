package context

import (
	"math"
	"unicode"
)

// keywords counts as one token regardless of length — a rough model of
// how a BPE tokenizer treats common reserved words as single pieces.
var keywords = map[string]bool{
	"func": true, "return": true, "if": true, "else": true, "for": true,
	"range": true, "package": true, "import": true, "type": true,
	"struct": true, "interface": true, "var": true, "const": true,
	"switch": true, "case": true, "default": true, "break": true,
	"continue": true, "defer": true, "go": true, "chan": true,
	"select": true, "map": true, "nil": true, "true": true, "false": true,
	"class": true, "def": true, "public": true, "private": true,
	"static": true, "async": true, "await": true, "function": true,
	"let": true, "export": true,
}

const (
	identCharsPerToken = 3.2
	numberCharsPerToken = 2.0
)

// CountTokens approximates a subword tokenizer with a character-class
// heuristic: keyword runs are one token each, other identifier/number
// runs are charged by length, and every operator/punctuation rune
// costs close to a full token of its own (subword tokenizers tend to
// isolate punctuation). The same input always yields the same count.
func CountTokens(text string) int {
	runes := []rune(text)
	var total float64
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case isIdentRune(r):
			start := i
			allDigits := true
			for i < len(runes) && isIdentRune(runes[i]) {
				if !unicode.IsDigit(runes[i]) {
					allDigits = false
				}
				i++
			}
			word := string(runes[start:i])
			switch {
			case keywords[word]:
				total += 1
			case allDigits:
				total += math.Max(1, float64(len(word))/numberCharsPerToken)
			default:
				total += math.Max(1, float64(len(word))/identCharsPerToken)
			}
		default:
			total += 1
			i++
		}
	}
	if total == 0 {
		return 0
	}
	return int(math.Ceil(total))
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
