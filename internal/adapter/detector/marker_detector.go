package detector

import (
	"log/slog"

	"textsum/internal/adapter/analyzer"
	"textsum/internal/domain"
	"textsum/internal/port"
)

// MarkerDetector guesses the language of a text by counting high-frequency
// function words. It is a low-confidence fallback, not a classifier.
type MarkerDetector struct {
	tokenizer     port.Tokenizer
	sampleChars   int
	minConfidence float64
	defaultLang   string
	index         map[string][]int
	logger        *slog.Logger
}

// NewMarkerDetector creates a detector sampling the first sampleChars runes.
func NewMarkerDetector(sampleChars int, minConfidence float64, defaultLang string, logger *slog.Logger) *MarkerDetector {
	if sampleChars <= 0 {
		sampleChars = 5000
	}
	if defaultLang == "" {
		defaultLang = "en"
	}
	if logger == nil {
		logger = slog.Default()
	}

	index := make(map[string][]int)
	for i, lang := range markerLanguages {
		for _, w := range markerWords[lang] {
			index[w] = append(index[w], i)
		}
	}

	return &MarkerDetector{
		tokenizer:     analyzer.NewTokenizer(),
		sampleChars:   sampleChars,
		minConfidence: minConfidence,
		defaultLang:   defaultLang,
		index:         index,
		logger:        logger,
	}
}

// Detect returns the best scoring language code, or the default when no
// language reaches the confidence threshold.
func (d *MarkerDetector) Detect(text string) string {
	counts, total := d.count(text)
	if total == 0 {
		return d.defaultLang
	}

	best := -1
	for i := range markerLanguages {
		if best < 0 || counts[i] > counts[best] {
			best = i
		}
	}

	score := float64(counts[best]) / float64(total)
	if score < d.minConfidence {
		d.logger.Debug("language detection below threshold",
			"best", markerLanguages[best], "score", score, "default", d.defaultLang)
		return d.defaultLang
	}
	return markerLanguages[best]
}

// Scores returns the normalized marker score of every language with at least one match.
func (d *MarkerDetector) Scores(text string) domain.LanguageScore {
	counts, total := d.count(text)
	scores := make(domain.LanguageScore)
	if total == 0 {
		return scores
	}
	for i, c := range counts {
		if c > 0 {
			scores[markerLanguages[i]] = float64(c) / float64(total)
		}
	}
	return scores
}

func (d *MarkerDetector) count(text string) ([]int, int) {
	counts := make([]int, len(markerLanguages))
	total := 0
	for _, w := range d.tokenizer.Words(analyzer.Prefix(text, d.sampleChars)) {
		for _, i := range d.index[w] {
			counts[i]++
			total++
		}
	}
	return counts, total
}
