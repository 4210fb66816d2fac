package analyzer

import (
	"strings"
	"unicode/utf8"
)

// edgeWindow is the number of leading and trailing body tokens checked for
// the phrase
const edgeWindow = 100

// minPartialVariantLength is the rune length a token needs before a substring
// relation with the phrase makes it a variant
const minPartialVariantLength = 4

// CountMatches counts the non-overlapping occurrences of phrase in tokens.
// After a match the scan resumes at the first token past it, so a phrase
// starting inside a previous match is not counted.
func CountMatches(tokens, phrase []string) int {
	m := len(phrase)
	if m == 0 {
		return 0
	}
	count := 0
	for i := 0; i+m <= len(tokens); {
		if matchesAt(tokens, phrase, i) {
			count++
			i += m
			continue
		}
		i++
	}
	return count
}

// ContainsPhrase reports whether tokens hold at least one occurrence of phrase
func ContainsPhrase(tokens, phrase []string) bool {
	m := len(phrase)
	if m == 0 {
		return false
	}
	for i := 0; i+m <= len(tokens); i++ {
		if matchesAt(tokens, phrase, i) {
			return true
		}
	}
	return false
}

func matchesAt(tokens, phrase []string, i int) bool {
	for j, p := range phrase {
		if tokens[i+j] != p {
			return false
		}
	}
	return true
}

// Density returns the share of tokens, in percent, accounted for by frequency
// phrase matches. It is 0 for an empty token stream.
func Density(frequency, tokenCount int) float64 {
	if tokenCount == 0 {
		return 0
	}
	return float64(frequency) * 100 / float64(tokenCount)
}

// AnalyzeKeyword measures placement, density and variants of phrase on page.
// An empty phrase or a body without tokens yields the zero analysis.
func AnalyzeKeyword(page PageDocument, phrase string) KeywordAnalysis {
	analysis := KeywordAnalysis{
		Keyword:    phrase,
		Variations: []string{},
		Positions:  KeywordPositions{InH2: []H2Match{}},
	}

	phraseTokens := Tokenize(phrase)
	words := Tokenize(page.Body)
	if len(phraseTokens) == 0 || len(words) == 0 {
		return analysis
	}

	analysis.Frequency = CountMatches(words, phraseTokens)
	analysis.Density = Density(analysis.Frequency, len(words))

	positions := &analysis.Positions
	positions.InTitle = ContainsPhrase(Tokenize(page.Title), phraseTokens)
	positions.InDescription = ContainsPhrase(Tokenize(page.Description), phraseTokens)
	positions.InH1 = ContainsPhrase(Tokenize(page.H1), phraseTokens)
	for i, h2 := range page.H2 {
		if ContainsPhrase(Tokenize(h2), phraseTokens) {
			positions.InH2 = append(positions.InH2, H2Match{Index: i, Text: h2})
		}
	}

	n := len(words)
	positions.InFirst100Words = ContainsPhrase(words[:min(edgeWindow, n)], phraseTokens)
	positions.InLast100Words = ContainsPhrase(words[max(0, n-edgeWindow):], phraseTokens)

	analysis.Variations = findVariations(words, phraseTokens)
	analysis.Score = KeywordScore(analysis)
	return analysis
}

// findVariations returns the distinct tokens related to the phrase by stem or
// by substring, in first-encountered order
func findVariations(words, phraseTokens []string) []string {
	head := phraseTokens[0]
	headStem := Stem(head)
	normalized := strings.Join(phraseTokens, " ")

	seen := make(map[string]struct{})
	variations := []string{}
	for _, word := range words {
		if _, ok := seen[word]; ok {
			continue
		}
		if isVariation(word, head, headStem, normalized) {
			seen[word] = struct{}{}
			variations = append(variations, word)
		}
	}
	return variations
}

func isVariation(word, head, headStem, phrase string) bool {
	if word != head && Stem(word) == headStem {
		return true
	}
	if word == phrase || utf8.RuneCountInString(word) < minPartialVariantLength {
		return false
	}
	return strings.Contains(word, phrase) || strings.Contains(phrase, word)
}

// KeywordScore computes the additive 0-100 placement score of an analysis
func KeywordScore(analysis KeywordAnalysis) int {
	score := 0
	positions := analysis.Positions

	if positions.InTitle {
		score += 30
	}
	if positions.InDescription {
		score += 20
	}
	if positions.InH1 {
		score += 25
	}
	if positions.InFirst100Words {
		score += 15
	}
	if positions.InLast100Words {
		score += 10
	}
	if len(positions.InH2) > 0 {
		score += 15
	}

	// Ideal density is 0.5% - 2.5%
	density := analysis.Density
	switch {
	case density >= 0.5 && density <= 2.5:
		score += 25
	case density > 0 && density < 0.5:
		score += 10
	case density > 2.5 && density < 5:
		score += 15
	}

	score += min(analysis.Frequency*5, 20)

	if len(analysis.Variations) > 0 {
		score += 10
	}

	return min(score, 100)
}
