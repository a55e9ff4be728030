package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"textsum/internal/domain"
	"textsum/internal/port"
)

// HTTPBackend talks to a self-hosted inference server that keeps seq2seq models
// resident. The server exposes POST /load, /summarize and /unload.
type HTTPBackend struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

type loadRequest struct {
	Model    string `json:"model"`
	Language string `json:"language"`
}

type summarizeRequest struct {
	Model     string `json:"model"`
	Language  string `json:"language"`
	Text      string `json:"text"`
	MinLength int    `json:"min_length"`
	MaxLength int    `json:"max_length"`
}

type summarizeResponse struct {
	Summary string    `json:"summary"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NewHTTPBackend creates a client for baseURL. apiKeyEnv may be empty for
// servers without authentication.
func NewHTTPBackend(baseURL, apiKeyEnv string, timeout time.Duration, logger *slog.Logger) (*HTTPBackend, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("inference base URL is empty")
	}
	var apiKey string
	if apiKeyEnv != "" {
		apiKey = os.Getenv(apiKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
		}
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &HTTPBackend{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}, nil
}

// Load asks the server to make the model resident.
func (b *HTTPBackend) Load(ctx context.Context, key domain.ModelKey) (port.Model, error) {
	if _, err := b.post(ctx, "/load", loadRequest{Model: key.ModelID, Language: key.Language}); err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return &httpModel{backend: b, key: key}, nil
}

func (b *HTTPBackend) post(ctx context.Context, path string, payload any) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if b.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d: %s", resp.StatusCode, preview(body))
	}
	return body, nil
}

type httpModel struct {
	backend *HTTPBackend
	key     domain.ModelKey
}

func (m *httpModel) Invoke(ctx context.Context, text string, minLength, maxLength int) (string, error) {
	body, err := m.backend.post(ctx, "/summarize", summarizeRequest{
		Model:     m.key.ModelID,
		Language:  m.key.Language,
		Text:      text,
		MinLength: minLength,
		MaxLength: maxLength,
	})
	if err != nil {
		return "", err
	}

	var resp summarizeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse response (body: %s): %w", preview(body), err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("server error: %s", resp.Error.Message)
	}
	return strings.TrimSpace(resp.Summary), nil
}

// Close tells the server to free the model.
func (m *httpModel) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := m.backend.post(ctx, "/unload", loadRequest{Model: m.key.ModelID, Language: m.key.Language})
	return err
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
