package cli

import (
	"fmt"
	"log/slog"
	"os"

	"textsum/config"
	"textsum/internal/adapter/chunker"
	"textsum/internal/adapter/detector"
	"textsum/internal/adapter/inference"
	"textsum/internal/adapter/pool"
	"textsum/internal/adapter/postprocess"
	"textsum/internal/adapter/registry"
	"textsum/internal/adapter/store"
	"textsum/internal/domain"
	"textsum/internal/port"
	"textsum/internal/usecase"
)

// engine is the wired summarization stack shared by the commands.
type engine struct {
	pool      *pool.Pool
	registry  *registry.Registry
	detector  *detector.MarkerDetector
	chunker   *chunker.ParagraphChunker
	cleaner   *postprocess.Cleaner
	summarize *usecase.SummarizeUseCase
}

func newDetector(cfg *config.Config, logger *slog.Logger) *detector.MarkerDetector {
	return detector.NewMarkerDetector(cfg.Detect.SampleChars, cfg.Detect.MinConfidence, cfg.Detect.DefaultLanguage, logger)
}

func buildEngine(cfg *config.Config, logger *slog.Logger) (*engine, error) {
	loader, err := newLoader(cfg.Inference, logger)
	if err != nil {
		return nil, err
	}

	p := pool.New(cfg.Pool.Workers, logger)
	reg := registry.New(loader, p, registry.Options{
		MaxResident: cfg.Registry.MaxResident,
		LoadTimeout: cfg.Registry.LoadTimeout,
	}, logger)

	e := &engine{
		pool:     p,
		registry: reg,
		detector: newDetector(cfg, logger),
		chunker:  chunker.NewParagraphChunker(cfg.Summarize.ChunkChars),
		cleaner:  postprocess.NewCleaner(cfg.Postprocess.MinSentenceChars, cfg.Postprocess.SimilarityThreshold),
	}
	e.summarize = usecase.NewSummarizeUseCase(
		reg, e.detector, e.chunker, e.cleaner, p,
		usecase.OptionsFromConfig(cfg.Summarize),
		logger,
	)
	return e, nil
}

// Close unloads every model and waits for background work.
func (e *engine) Close() {
	e.registry.Close()
	e.pool.Wait()
}

// newLoader selects the inference backend named by the config.
func newLoader(ic config.InferenceConfig, logger *slog.Logger) (port.ModelLoader, error) {
	switch ic.Provider {
	case "http":
		return inference.NewHTTPBackend(ic.BaseURL, ic.APIKeyEnv, ic.RequestTimeout, logger)
	case "openai":
		key, err := apiKey(ic.APIKeyEnv, "OPENAI_API_KEY")
		if err != nil {
			return nil, err
		}
		return inference.NewOpenAIBackend(key, ic.BaseURL, ic.RequestTimeout, logger)
	case "gemini":
		key, err := apiKey(ic.APIKeyEnv, "GEMINI_API_KEY")
		if err != nil {
			return nil, err
		}
		return inference.NewGeminiBackend(key, logger)
	case "extractive", "":
		return inference.NewExtractiveBackend(), nil
	default:
		return nil, fmt.Errorf("unsupported inference provider: %s", ic.Provider)
	}
}

func apiKey(envName, fallback string) (string, error) {
	if envName == "" {
		envName = fallback
	}
	key := os.Getenv(envName)
	if key == "" {
		return "", fmt.Errorf("API key not found in environment variable: %s", envName)
	}
	return key, nil
}

// openHistory opens the bolt history store, migrating its schema. It returns
// nil when history is disabled.
func openHistory(cfg *config.Config, dir string, logger *slog.Logger) (port.HistoryStore, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	if cfg.History.Path == "" {
		if err := config.EnsureDataDir(dir); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	st, err := store.NewBoltStore(cfg.HistoryDBPath(dir))
	if err != nil {
		return nil, err
	}

	check, err := st.CheckMigration(cfg)
	if err != nil {
		st.Close()
		return nil, err
	}
	if check.Unreadable {
		st.Close()
		return nil, fmt.Errorf("history database: %s", check.Reason)
	}
	if check.ConfigChanged {
		logger.Warn("stored summaries were produced with different settings", "reason", check.Reason)
	}
	if check.NeedsMigration || check.ConfigChanged {
		if err := st.Migrate(cfg); err != nil {
			st.Close()
			return nil, fmt.Errorf("failed to migrate history: %w", err)
		}
	}
	return st, nil
}

// baseRequest builds a request from config defaults.
func baseRequest(cfg *config.Config) (domain.SummarizationRequest, error) {
	strategy, err := domain.ParseStrategy(cfg.Summarize.Strategy)
	if err != nil {
		return domain.SummarizationRequest{}, err
	}
	return domain.SummarizationRequest{
		MaxLength:      cfg.Summarize.MaxLength,
		MinLength:      cfg.Summarize.MinLength,
		Strategy:       strategy,
		ModelID:        cfg.Summarize.DefaultModel,
		PromptTemplate: cfg.Summarize.PromptTemplate,
		Timeout:        cfg.Summarize.Timeout,
	}, nil
}
