package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Summarize.LongTextThreshold != 10000 {
		t.Errorf("expected LongTextThreshold=10000, got %d", cfg.Summarize.LongTextThreshold)
	}
	if cfg.Summarize.ChunkChars != 4000 {
		t.Errorf("expected ChunkChars=4000, got %d", cfg.Summarize.ChunkChars)
	}
	if cfg.Summarize.MaxLength != 150 || cfg.Summarize.MinLength != 40 {
		t.Errorf("expected lengths 40/150, got %d/%d", cfg.Summarize.MinLength, cfg.Summarize.MaxLength)
	}
	if cfg.Postprocess.SimilarityThreshold != 0.7 {
		t.Errorf("expected SimilarityThreshold=0.7, got %f", cfg.Postprocess.SimilarityThreshold)
	}
	if cfg.Detect.MinConfidence != 0.3 {
		t.Errorf("expected MinConfidence=0.3, got %f", cfg.Detect.MinConfidence)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "textsum.yaml")

	content := `
summarize:
  chunk_chars: 2000
  timeout: 30s
  strategy: prompted
inference:
  provider: http
  base_url: http://gpu-box:9000
batch:
  includes: ["docs/**/*.txt"]
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Summarize.ChunkChars != 2000 {
		t.Errorf("expected ChunkChars=2000, got %d", cfg.Summarize.ChunkChars)
	}
	if cfg.Summarize.Timeout != 30*time.Second {
		t.Errorf("expected Timeout=30s, got %v", cfg.Summarize.Timeout)
	}
	if cfg.Summarize.Strategy != "prompted" {
		t.Errorf("expected Strategy=prompted, got %s", cfg.Summarize.Strategy)
	}
	if cfg.Inference.BaseURL != "http://gpu-box:9000" {
		t.Errorf("expected BaseURL override, got %s", cfg.Inference.BaseURL)
	}
	if len(cfg.Batch.Includes) != 1 {
		t.Errorf("expected 1 include pattern, got %v", cfg.Batch.Includes)
	}
	if cfg.Summarize.LongTextThreshold != 10000 {
		t.Errorf("expected untouched defaults to survive, got %d", cfg.Summarize.LongTextThreshold)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "textsum.yaml")
	if err := os.WriteFile(configPath, []byte("summarize: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TEXTSUM_INFERENCE_PROVIDER", "openai")
	t.Setenv("TEXTSUM_SUMMARIZE_MAX_DEPTH", "5")
	t.Setenv("TEXTSUM_POOL_WORKERS", "8")

	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Inference.Provider != "openai" {
		t.Errorf("expected Provider=openai, got %s", cfg.Inference.Provider)
	}
	if cfg.Summarize.MaxDepth != 5 {
		t.Errorf("expected MaxDepth=5, got %d", cfg.Summarize.MaxDepth)
	}
	if cfg.Pool.Workers != 8 {
		t.Errorf("expected Workers=8, got %d", cfg.Pool.Workers)
	}
	if cfg.Summarize.ChunkChars != 4000 {
		t.Errorf("expected unset variables to keep defaults, got %d", cfg.Summarize.ChunkChars)
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "textsum.yaml")

	content := `
pool:
  workers: 2
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Pool.Workers != 2 {
		t.Errorf("expected Workers=2, got %d", cfg.Pool.Workers)
	}
}

func TestLoadFromDir_HiddenConfig(t *testing.T) {
	tmpDir := t.TempDir()
	if err := EnsureDataDir(tmpDir); err != nil {
		t.Fatal(err)
	}
	content := `
registry:
  max_resident: 3
`
	if err := os.WriteFile(filepath.Join(tmpDir, ".textsum", "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Registry.MaxResident != 3 {
		t.Errorf("expected MaxResident=3, got %d", cfg.Registry.MaxResident)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"min not below max", func(c *Config) { c.Summarize.MinLength = 150 }},
		{"empty model", func(c *Config) { c.Summarize.DefaultModel = "" }},
		{"zero chunk", func(c *Config) { c.Summarize.ChunkChars = 0 }},
		{"floors inverted", func(c *Config) { c.Summarize.ChunkMinFloor = 60 }},
		{"negative depth", func(c *Config) { c.Summarize.MaxDepth = -1 }},
		{"bad strategy", func(c *Config) { c.Summarize.Strategy = "chain" }},
		{"similarity above one", func(c *Config) { c.Postprocess.SimilarityThreshold = 1.5 }},
		{"confidence above one", func(c *Config) { c.Detect.MinConfidence = 2 }},
		{"unknown provider", func(c *Config) { c.Inference.Provider = "voyage" }},
		{"http without url", func(c *Config) { c.Inference.Provider = "http" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "textsum.yaml")

	cfg := DefaultConfig()
	cfg.Summarize.MaxDepth = 7
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Summarize.MaxDepth != 7 {
		t.Errorf("expected MaxDepth=7, got %d", loaded.Summarize.MaxDepth)
	}
	if loaded.Summarize.Timeout != cfg.Summarize.Timeout {
		t.Errorf("expected Timeout=%v, got %v", cfg.Summarize.Timeout, loaded.Summarize.Timeout)
	}
}

func TestHistoryDBPath(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.HistoryDBPath("/work"); got != filepath.Join("/work", ".textsum", "history.db") {
		t.Errorf("unexpected default path %s", got)
	}
	cfg.History.Path = "/tmp/h.db"
	if got := cfg.HistoryDBPath("/work"); got != "/tmp/h.db" {
		t.Errorf("expected configured path, got %s", got)
	}
}
