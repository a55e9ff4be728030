package inference

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"

	"textsum/internal/domain"
	"textsum/internal/port"
)

const minOutputTokens = 16

// OpenAIBackend summarizes through the OpenAI Responses API, or any server
// that mirrors it when baseURL is set.
type OpenAIBackend struct {
	client openai.Client
	logger *slog.Logger
}

func NewOpenAIBackend(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger) (*OpenAIBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}

	return &OpenAIBackend{
		client: openai.NewClient(opts...),
		logger: logger,
	}, nil
}

// Load checks that the model exists and is visible to the API key.
func (b *OpenAIBackend) Load(ctx context.Context, key domain.ModelKey) (port.Model, error) {
	if _, err := b.client.Models.Get(ctx, key.ModelID); err != nil {
		return nil, fmt.Errorf("get model %s: %w", key.ModelID, err)
	}
	return &openAIModel{client: b.client, key: key}, nil
}

type openAIModel struct {
	client openai.Client
	key    domain.ModelKey
}

func (m *openAIModel) Invoke(ctx context.Context, text string, minLength, maxLength int) (string, error) {
	maxOutputTokens := int64(maxLength) * 2
	if maxOutputTokens < minOutputTokens {
		maxOutputTokens = minOutputTokens
	}

	resp, err := m.client.Responses.New(ctx, responses.ResponseNewParams{
		Model:           m.key.ModelID,
		MaxOutputTokens: openai.Int(maxOutputTokens),
		Instructions:    openai.String(summaryInstructions(m.key.Language, minLength, maxLength)),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(text),
		},
	})
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}

	summary := strings.TrimSpace(resp.OutputText())
	if summary == "" {
		return "", fmt.Errorf("output text is missing (status = %s)", resp.Status)
	}
	return summary, nil
}
