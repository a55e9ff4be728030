package inference

import (
	"context"
	"strings"

	"textsum/internal/adapter/postprocess"
	"textsum/internal/domain"
	"textsum/internal/port"
)

// ExtractiveBackend is an offline stand-in for a neural model. It keeps the
// leading sentences of the input, treating length bounds as word counts.
type ExtractiveBackend struct{}

func NewExtractiveBackend() *ExtractiveBackend {
	return &ExtractiveBackend{}
}

func (b *ExtractiveBackend) Load(ctx context.Context, key domain.ModelKey) (port.Model, error) {
	return extractiveModel{}, nil
}

type extractiveModel struct{}

// Invoke takes whole sentences while they fit in maxLength words, then stops
// once at least minLength words are collected. A first sentence longer than
// maxLength is cut at maxLength words.
func (extractiveModel) Invoke(ctx context.Context, text string, minLength, maxLength int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var picked []string
	words := 0
	for _, sentence := range postprocess.SplitSentences(text) {
		fields := strings.Fields(sentence)
		if len(fields) == 0 {
			continue
		}
		if words+len(fields) > maxLength {
			if words == 0 {
				picked = append(picked, strings.Join(fields[:maxLength], " "))
			}
			break
		}
		picked = append(picked, strings.Join(fields, " "))
		words += len(fields)
		if words >= minLength && words >= maxLength/2 {
			break
		}
	}

	return strings.Join(picked, " "), nil
}
