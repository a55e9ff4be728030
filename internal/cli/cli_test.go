package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"textsum/config"
	"textsum/internal/domain"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.InvalidRequest("op", "bad"), 2},
		{domain.ModelUnavailable("op", errors.New("x")), 3},
		{fmt.Errorf("wrapped: %w", domain.InferenceFailed("op", errors.New("x"))), 4},
		{domain.RecursionLimit("op", 4), 5},
		{errors.New("plain"), 1},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestPresetTemplates(t *testing.T) {
	names, err := presetNames()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) == 0 {
		t.Fatal("expected embedded presets")
	}
	for _, name := range names {
		tmpl, err := presetTemplate(name)
		if err != nil {
			t.Errorf("preset %s: %v", name, err)
			continue
		}
		if !strings.Contains(tmpl, "{text}") {
			t.Errorf("preset %s has no {text} placeholder", name)
		}
	}

	if _, err := presetTemplate("nope"); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for unknown preset, got %v", err)
	}
}

func TestRequestFromFlags(t *testing.T) {
	cfg = config.DefaultConfig()
	defer func() {
		cfg = nil
		sumLang, sumMax, sumMin, sumPreset, sumStrategy = "", 0, -1, "", ""
	}()

	req, err := requestFromFlags()
	if err != nil {
		t.Fatal(err)
	}
	if req.MaxLength != 150 || req.MinLength != 40 {
		t.Errorf("expected config lengths 40/150, got %d/%d", req.MinLength, req.MaxLength)
	}
	if req.Language != "" {
		t.Errorf("expected language left for detection, got %q", req.Language)
	}

	sumLang, sumMax, sumMin, sumPreset = "de", 300, 0, "bullets"
	req, err = requestFromFlags()
	if err != nil {
		t.Fatal(err)
	}
	if req.Language != "de" || req.MaxLength != 300 || req.MinLength != 0 {
		t.Errorf("expected flag overrides, got %+v", req)
	}
	if req.Strategy != domain.StrategyPrompted {
		t.Errorf("expected preset to select prompted strategy, got %s", req.Strategy)
	}

	sumPreset, sumStrategy = "", "chain"
	if _, err := requestFromFlags(); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for bad strategy, got %v", err)
	}
}

func TestReadInput(t *testing.T) {
	text, source, err := readInput(nil, "inline")
	if err != nil || text != "inline" || source != "text" {
		t.Errorf("expected inline text, got %q %q %v", text, source, err)
	}

	path := filepath.Join(t.TempDir(), "in.txt")
	if err := os.WriteFile(path, []byte("from file"), 0644); err != nil {
		t.Fatal(err)
	}
	text, source, err = readInput([]string{path}, "")
	if err != nil {
		t.Fatal(err)
	}
	if text != "from file" || source != path {
		t.Errorf("unexpected input %q from %q", text, source)
	}

	if _, _, err := readInput([]string{filepath.Join(t.TempDir(), "missing.txt")}, ""); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNewLoader(t *testing.T) {
	if _, err := newLoader(config.InferenceConfig{Provider: "extractive"}, nil); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	t.Setenv("TEXTSUM_TEST_EMPTY_KEY", "")
	if _, err := newLoader(config.InferenceConfig{Provider: "openai", APIKeyEnv: "TEXTSUM_TEST_EMPTY_KEY"}, nil); err == nil {
		t.Error("expected error without API key")
	}
	if _, err := newLoader(config.InferenceConfig{Provider: "bogus"}, nil); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestOpenHistory(t *testing.T) {
	dir := t.TempDir()
	c := config.DefaultConfig()

	st, err := openHistory(c, dir, newLogger(c.Logging))
	if err != nil {
		t.Fatal(err)
	}
	if st == nil {
		t.Fatal("expected history store")
	}
	st.Close()
	if _, err := os.Stat(filepath.Join(dir, ".textsum", "history.db")); err != nil {
		t.Errorf("expected history db to be created: %v", err)
	}

	c.History.Enabled = false
	st, err = openHistory(c, dir, newLogger(c.Logging))
	if err != nil || st != nil {
		t.Errorf("expected nil store when disabled, got %v, %v", st, err)
	}
}

func TestClearHistory(t *testing.T) {
	c := config.DefaultConfig()
	st, err := openHistory(c, t.TempDir(), newLogger(c.Logging))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	for _, src := range []string{"a.txt", "b.txt"} {
		if _, err := st.Put(domain.SummaryRecord{Source: src, Summary: "s"}); err != nil {
			t.Fatal(err)
		}
	}

	n, err := clearHistory(st)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 cleared records, got %d", n)
	}
	records, err := st.List(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("expected empty history, got %d", len(records))
	}
}
