package port

import "textsum/internal/domain"

type LanguageDetector interface {
	Detect(text string) string

	Scores(text string) domain.LanguageScore
}

type PostProcessor interface {
	Clean(summary string) string
}
