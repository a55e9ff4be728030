package analyzer

import (
	"strings"
	"unicode"
)

// Tokenizer splits text into lowercase words. Unlike an index tokenizer it keeps
// stopwords: the language detector counts exactly those.
type Tokenizer struct{}

// NewTokenizer creates a new Tokenizer.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{}
}

// Words returns the lowercase words of text in order.
func (t *Tokenizer) Words(text string) []string {
	words := splitWords(text)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return words
}

// WordSet returns the distinct lowercase words of text.
func (t *Tokenizer) WordSet(text string) map[string]struct{} {
	words := splitWords(text)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}

// splitWords splits text into runs of letters, digits and underscores. Combining
// marks stay in the word so vowel signs of abugida scripts do not split it.
func splitWords(text string) []string {
	var words []string
	var current strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.In(r, unicode.Mn, unicode.Mc) || r == '_' {
			current.WriteRune(r)
		} else {
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}

	return words
}

// Prefix returns at most n runes from the start of text.
func Prefix(text string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range text {
		if i == n {
			return text[:pos]
		}
		i++
	}
	return text
}
