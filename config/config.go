package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. TEXTSUM_INFERENCE_PROVIDER.
const EnvPrefix = "TEXTSUM_"

// Config holds all configuration for textsum.
type Config struct {
	Summarize   SummarizeConfig   `yaml:"summarize"   envPrefix:"SUMMARIZE_"`
	Detect      DetectConfig      `yaml:"detect"      envPrefix:"DETECT_"`
	Postprocess PostprocessConfig `yaml:"postprocess" envPrefix:"POSTPROCESS_"`
	Registry    RegistryConfig    `yaml:"registry"    envPrefix:"REGISTRY_"`
	Pool        PoolConfig        `yaml:"pool"        envPrefix:"POOL_"`
	Inference   InferenceConfig   `yaml:"inference"   envPrefix:"INFERENCE_"`
	Batch       BatchConfig       `yaml:"batch"       envPrefix:"BATCH_"`
	History     HistoryConfig     `yaml:"history"     envPrefix:"HISTORY_"`
	Logging     LoggingConfig     `yaml:"logging"     envPrefix:"LOGGING_"`
}

// SummarizeConfig holds orchestration settings. Lengths are in characters.
type SummarizeConfig struct {
	DefaultModel         string        `yaml:"default_model"         env:"DEFAULT_MODEL"`
	Strategy             string        `yaml:"strategy"              env:"STRATEGY"` // "direct" or "prompted"
	PromptTemplate       string        `yaml:"prompt_template"       env:"PROMPT_TEMPLATE"`
	MaxLength            int           `yaml:"max_length"            env:"MAX_LENGTH"`
	MinLength            int           `yaml:"min_length"            env:"MIN_LENGTH"`
	LongTextThreshold    int           `yaml:"long_text_threshold"   env:"LONG_TEXT_THRESHOLD"`
	ChunkChars           int           `yaml:"chunk_chars"           env:"CHUNK_CHARS"`
	ResummarizeThreshold int           `yaml:"resummarize_threshold" env:"RESUMMARIZE_THRESHOLD"`
	ChunkMinFloor        int           `yaml:"chunk_min_floor"       env:"CHUNK_MIN_FLOOR"`
	ChunkMaxFloor        int           `yaml:"chunk_max_floor"       env:"CHUNK_MAX_FLOOR"`
	MaxDepth             int           `yaml:"max_depth"             env:"MAX_DEPTH"`
	Timeout              time.Duration `yaml:"timeout"               env:"TIMEOUT"`
	Preprocess           bool          `yaml:"preprocess"            env:"PREPROCESS"`
}

// DetectConfig holds language detection settings.
type DetectConfig struct {
	SampleChars     int     `yaml:"sample_chars"     env:"SAMPLE_CHARS"`
	MinConfidence   float64 `yaml:"min_confidence"   env:"MIN_CONFIDENCE"`
	DefaultLanguage string  `yaml:"default_language" env:"DEFAULT_LANGUAGE"`
}

// PostprocessConfig holds summary cleanup settings.
type PostprocessConfig struct {
	MinSentenceChars    int     `yaml:"min_sentence_chars"   env:"MIN_SENTENCE_CHARS"`
	SimilarityThreshold float64 `yaml:"similarity_threshold" env:"SIMILARITY_THRESHOLD"`
}

// RegistryConfig holds model cache settings.
type RegistryConfig struct {
	MaxResident int           `yaml:"max_resident" env:"MAX_RESIDENT"` // 0 = unbounded
	LoadTimeout time.Duration `yaml:"load_timeout" env:"LOAD_TIMEOUT"`
}

// PoolConfig holds worker pool settings.
type PoolConfig struct {
	Workers int `yaml:"workers" env:"WORKERS"`
}

// InferenceConfig selects and configures the inference backend.
type InferenceConfig struct {
	Provider       string        `yaml:"provider"        env:"PROVIDER"`    // "http", "openai", "gemini", "extractive"
	BaseURL        string        `yaml:"base_url"        env:"BASE_URL"`    // required for http, optional override for openai
	APIKeyEnv      string        `yaml:"api_key_env"     env:"API_KEY_ENV"` // Environment variable for API key
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`
}

// BatchConfig holds file selection for batch and watch runs.
type BatchConfig struct {
	Includes  []string `yaml:"includes"   env:"INCLUDES"`
	Excludes  []string `yaml:"excludes"   env:"EXCLUDES"`
	OutputDir string   `yaml:"output_dir" env:"OUTPUT_DIR"`
}

// HistoryConfig holds summary history settings.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED"`
	Path    string `yaml:"path"    env:"PATH"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"  env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"` // "text" or "json"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Summarize: SummarizeConfig{
			DefaultModel:         "facebook/mbart-large-cc25",
			Strategy:             "direct",
			PromptTemplate:       "Summarize the following text: {text}",
			MaxLength:            150,
			MinLength:            40,
			LongTextThreshold:    10000,
			ChunkChars:           4000,
			ResummarizeThreshold: 4000,
			ChunkMinFloor:        20,
			ChunkMaxFloor:        50,
			MaxDepth:             3,
			Timeout:              2 * time.Minute,
			Preprocess:           false,
		},
		Detect: DetectConfig{
			SampleChars:     5000,
			MinConfidence:   0.3,
			DefaultLanguage: "en",
		},
		Postprocess: PostprocessConfig{
			MinSentenceChars:    5,
			SimilarityThreshold: 0.7,
		},
		Registry: RegistryConfig{
			MaxResident: 0,
			LoadTimeout: 5 * time.Minute,
		},
		Pool: PoolConfig{
			Workers: 4,
		},
		Inference: InferenceConfig{
			Provider:       "extractive",
			RequestTimeout: 60 * time.Second,
		},
		Batch: BatchConfig{
			Includes: []string{"**/*.txt", "**/*.md"},
			Excludes: []string{"**/.git/**", "**/node_modules/**", "**/.textsum/**", "**/*.summary.txt"},
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for textsum.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "textsum.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".textsum", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	cfg := DefaultConfig()
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with TEXTSUM_* environment variables.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	s := c.Summarize
	switch {
	case s.DefaultModel == "":
		return fmt.Errorf("summarize.default_model is empty")
	case s.MaxLength <= 0 || s.MinLength < 0 || s.MinLength >= s.MaxLength:
		return fmt.Errorf("summarize: need 0 <= min_length < max_length, got %d/%d", s.MinLength, s.MaxLength)
	case s.LongTextThreshold <= 0 || s.ChunkChars <= 0 || s.ResummarizeThreshold <= 0:
		return fmt.Errorf("summarize: thresholds and chunk_chars must be positive")
	case s.ChunkMinFloor < 0 || s.ChunkMinFloor >= s.ChunkMaxFloor:
		return fmt.Errorf("summarize: need 0 <= chunk_min_floor < chunk_max_floor, got %d/%d", s.ChunkMinFloor, s.ChunkMaxFloor)
	case s.MaxDepth < 0:
		return fmt.Errorf("summarize.max_depth must not be negative")
	}
	switch s.Strategy {
	case "", "direct", "prompted":
	default:
		return fmt.Errorf("summarize.strategy: unknown strategy %q", s.Strategy)
	}

	if t := c.Postprocess.SimilarityThreshold; t <= 0 || t > 1 {
		return fmt.Errorf("postprocess.similarity_threshold must be in (0, 1], got %v", t)
	}
	if c.Detect.MinConfidence < 0 || c.Detect.MinConfidence > 1 {
		return fmt.Errorf("detect.min_confidence must be in [0, 1], got %v", c.Detect.MinConfidence)
	}

	switch c.Inference.Provider {
	case "http":
		if c.Inference.BaseURL == "" {
			return fmt.Errorf("inference.base_url is required for the http provider")
		}
	case "openai", "gemini", "extractive":
	default:
		return fmt.Errorf("inference.provider: unsupported provider %q", c.Inference.Provider)
	}
	return nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// HistoryDBPath returns the path to the history database.
func (c *Config) HistoryDBPath(dir string) string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return filepath.Join(dir, ".textsum", "history.db")
}

// EnsureDataDir ensures the .textsum directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".textsum"), 0755)
}
