package analyzer

import (
	"iter"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	snowballeng "github.com/kljensen/snowball/english"
)

// minVocabularyTokenLength is the shortest token kept in a content-gap vocabulary
const minVocabularyTokenLength = 3

// Tokens yields the lower-cased word tokens of text. Any rune that is neither a
// letter nor a number separates tokens. The sequence can be ranged over more
// than once and always yields the same tokens.
func Tokens(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		start := -1
		for i, r := range text {
			if unicode.IsLetter(r) || unicode.IsNumber(r) {
				if start < 0 {
					start = i
				}
				continue
			}
			if start >= 0 {
				if !yield(strings.ToLower(text[start:i])) {
					return
				}
				start = -1
			}
		}
		if start >= 0 {
			yield(strings.ToLower(text[start:]))
		}
	}
}

// Tokenize collects Tokens into a slice
func Tokenize(text string) []string {
	tokens := slices.Collect(Tokens(text))
	if tokens == nil {
		return []string{}
	}
	return tokens
}

var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {}, "is": {}, "are": {},
	"was": {}, "were": {}, "be": {}, "been": {}, "being": {}, "have": {}, "has": {},
	"had": {}, "do": {}, "does": {}, "did": {}, "will": {}, "would": {}, "could": {},
	"should": {}, "may": {}, "might": {}, "must": {}, "can": {}, "this": {}, "that": {},
	"these": {}, "those": {},
}

// IsStopword reports whether token is one of the filtered function words
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}

// keepVocabularyToken is the content-gap filter. It must not be applied
// before phrase matching.
func keepVocabularyToken(token string) bool {
	return !IsStopword(token) && utf8.RuneCountInString(token) >= minVocabularyTokenLength
}

// FilterVocabulary returns tokens with stop words and short tokens removed,
// preserving order and duplicates
func FilterVocabulary(tokens []string) []string {
	r := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if keepVocabularyToken(token) {
			r = append(r, token)
		}
	}
	return r
}

// Stem reduces a token to its Porter2 stem
func Stem(token string) string {
	return snowballeng.Stem(token, false)
}
