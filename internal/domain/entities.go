package domain

import (
	"fmt"
	"strings"
	"time"
)

// ModelKey identifies one resident model handle.
type ModelKey struct {
	ModelID  string `json:"model_id"`
	Language string `json:"language"`
}

func (k ModelKey) String() string {
	return k.ModelID + "_" + k.Language
}

// Strategy selects how the model is invoked.
type Strategy string

const (
	StrategyDirect   Strategy = "direct"
	StrategyPrompted Strategy = "prompted"
)

// ParseStrategy accepts "direct" or "prompted" (case-insensitive). Empty means direct.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyDirect:
		return StrategyDirect, nil
	case StrategyPrompted:
		return StrategyPrompted, nil
	}
	return "", fmt.Errorf("unknown strategy %q (want direct or prompted)", s)
}

// SummarizationRequest is built per call and never persisted by the engine.
type SummarizationRequest struct {
	Text      string
	Language  string // empty: detect
	MaxLength int
	MinLength int
	Strategy  Strategy

	// Optional overrides of the engine defaults.
	ModelID        string
	PromptTemplate string
	Timeout        time.Duration
}

// Validate checks length bounds and strategy.
func (r SummarizationRequest) Validate() error {
	if r.MaxLength <= 0 {
		return InvalidRequest("validate", "max_length must be positive, got %d", r.MaxLength)
	}
	if r.MinLength < 0 {
		return InvalidRequest("validate", "min_length must not be negative, got %d", r.MinLength)
	}
	if r.MinLength >= r.MaxLength {
		return InvalidRequest("validate", "min_length (%d) must be less than max_length (%d)", r.MinLength, r.MaxLength)
	}
	switch r.Strategy {
	case "", StrategyDirect, StrategyPrompted:
	default:
		return InvalidRequest("validate", "unknown strategy %q", r.Strategy)
	}
	return nil
}

// TextChunk is a paragraph-aligned slice of the input.
type TextChunk struct {
	Content       string `json:"content"`
	SequenceIndex int    `json:"sequence_index"`
}

// SummaryResult is returned to the caller.
type SummaryResult struct {
	Text       string   `json:"text"`
	ChunksUsed int      `json:"chunks_used"`
	ModelKey   ModelKey `json:"model_key"`
	Depth      int      `json:"depth"`
	Calls      int      `json:"calls"`
}

// LanguageScore maps a language code to its normalized marker score.
type LanguageScore map[string]float64

// SummaryRecord is what callers persist after a successful summarize.
type SummaryRecord struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"created_at"`
	ModelKey   ModelKey  `json:"model_key"`
	Strategy   Strategy  `json:"strategy"`
	InputChars int       `json:"input_chars"`
	ChunksUsed int       `json:"chunks_used"`
	Summary    string    `json:"summary"`
}
