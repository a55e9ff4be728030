package analyzer

import (
	"strings"
	"unicode"
)

// CollapseSpace replaces every whitespace run with a single space and trims.
func CollapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// TightenPunctuation removes whitespace that directly precedes . , ; : ! ?
func TightenPunctuation(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	pending := 0
	for _, r := range text {
		if r == ' ' {
			pending++
			continue
		}
		if pending > 0 && !isClosingPunct(r) {
			b.WriteString(strings.Repeat(" ", pending))
		}
		pending = 0
		b.WriteRune(r)
	}
	return b.String()
}

// Preprocess prepares raw input for a model: collapses whitespace, replaces
// symbols the model is likely to choke on with spaces and ensures a space after
// punctuation.
func Preprocess(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	runes := []rune(CollapseSpace(text))
	for i, r := range runes {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', unicode.IsSpace(r):
			b.WriteRune(r)
		case isClosingPunct(r):
			b.WriteRune(r)
			if i+1 < len(runes) && runes[i+1] != ' ' {
				b.WriteRune(' ')
			}
		case strings.ContainsRune(`-'"()[]`, r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return CollapseSpace(b.String())
}

func isClosingPunct(r rune) bool {
	switch r {
	case '.', ',', ';', ':', '!', '?':
		return true
	}
	return false
}
