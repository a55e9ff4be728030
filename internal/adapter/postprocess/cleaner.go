package postprocess

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"textsum/internal/adapter/analyzer"
	"textsum/internal/port"
)

// Cleaner removes noise and near-duplicate sentences from generated summaries.
type Cleaner struct {
	tokenizer           port.Tokenizer
	minSentenceChars    int
	similarityThreshold float64
}

func NewCleaner(minSentenceChars int, similarityThreshold float64) *Cleaner {
	if minSentenceChars < 0 {
		minSentenceChars = 0
	}
	if similarityThreshold <= 0 || similarityThreshold > 1 {
		similarityThreshold = 0.7
	}
	return &Cleaner{
		tokenizer:           analyzer.NewTokenizer(),
		minSentenceChars:    minSentenceChars,
		similarityThreshold: similarityThreshold,
	}
}

// Clean splits summary into sentences, drops short ones, drops any sentence
// whose word overlap with an earlier kept sentence exceeds the threshold, and
// joins the rest with single spaces. Clean(Clean(s)) == Clean(s).
func (c *Cleaner) Clean(summary string) string {
	var kept []string
	var keptSets []map[string]struct{}

	for _, raw := range SplitSentences(summary) {
		sentence := analyzer.TightenPunctuation(analyzer.CollapseSpace(raw))
		if utf8.RuneCountInString(sentence) < c.minSentenceChars {
			continue
		}

		words := c.tokenizer.WordSet(sentence)
		duplicate := false
		for _, prev := range keptSets {
			if jaccardSimilarity(words, prev) > c.similarityThreshold {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}

		kept = append(kept, sentence)
		keptSets = append(keptSets, words)
	}

	return strings.Join(kept, " ")
}

// SplitSentences cuts text after every '.', '!' or '?' that is followed by whitespace.
func SplitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	for i, r := range runes {
		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			sentences = append(sentences, string(runes[start:i+1]))
			start = i + 1
		}
	}
	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}
	return sentences
}

func jaccardSimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	intersection := 0
	for t := range a {
		if _, exists := b[t]; exists {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
