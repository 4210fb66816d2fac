package analyzer

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", []string{}},
		{"punctuation only", " -- !? ", []string{}},
		{"lower-cases", "SEO Tools", []string{"seo", "tools"}},
		{"splits on symbols", "hello-world, user@email.com", []string{"hello", "world", "user", "email", "com"}},
		{"keeps digits", "Top 10 tools for 2024!", []string{"top", "10", "tools", "for", "2024"}},
		{"unicode letters", "Café crème", []string{"café", "crème"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.text))
		})
	}
}

func TestTokensIsRestartable(t *testing.T) {
	seq := Tokens("Best SEO tools, compared")

	first := slices.Collect(seq)
	second := slices.Collect(seq)

	assert.Equal(t, []string{"best", "seo", "tools", "compared"}, first)
	assert.Equal(t, first, second)
}

func TestTokensStopsEarly(t *testing.T) {
	var got []string
	for token := range Tokens("one two three four") {
		got = append(got, token)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"one", "two"}, got)
}

func TestFilterVocabulary(t *testing.T) {
	tokens := Tokenize("The SEO tools are the best way to grow a site and it is fun")

	got := FilterVocabulary(tokens)

	assert.Equal(t, []string{"seo", "tools", "best", "way", "grow", "site", "fun"}, got)
}

func TestIsStopword(t *testing.T) {
	assert.True(t, IsStopword("the"))
	assert.True(t, IsStopword("should"))
	assert.False(t, IsStopword("seo"))
	assert.False(t, IsStopword("The"), "stop words are matched after lower-casing only")
}

func TestStem(t *testing.T) {
	assert.Equal(t, Stem("tool"), Stem("tools"))
	assert.Equal(t, Stem("run"), Stem("running"))
	assert.Equal(t, "connect", Stem("connections"))
}
