package inference

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"textsum/internal/domain"
	"textsum/internal/port"
)

// GeminiBackend summarizes with Google's Gemini API.
type GeminiBackend struct {
	apiKey string
	logger *slog.Logger
}

func NewGeminiBackend(apiKey string, logger *slog.Logger) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GeminiBackend{apiKey: apiKey, logger: logger}, nil
}

// Load creates a client and checks that the model exists.
func (b *GeminiBackend) Load(ctx context.Context, key domain.ModelKey) (port.Model, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  b.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	if _, err := client.Models.Get(ctx, key.ModelID, nil); err != nil {
		return nil, fmt.Errorf("get model %s: %w", key.ModelID, err)
	}

	return &geminiModel{client: client, key: key}, nil
}

type geminiModel struct {
	client *genai.Client
	key    domain.ModelKey
}

func (m *geminiModel) Invoke(ctx context.Context, text string, minLength, maxLength int) (string, error) {
	prompt := summaryInstructions(m.key.Language, minLength, maxLength) + "\n\nText:\n" + text

	result, err := m.client.Models.GenerateContent(ctx, m.key.ModelID, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		var sb strings.Builder
		for _, part := range result.Candidates[0].Content.Parts {
			if part.Text != "" {
				sb.WriteString(part.Text)
			}
		}
		if summary := strings.TrimSpace(sb.String()); summary != "" {
			return summary, nil
		}
	}

	return "", fmt.Errorf("empty response from Gemini")
}
