package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"textsum/config"
	"textsum/internal/domain"
)

var (
	cfgFile   string
	cfg       *config.Config
	rootDir   string
	logLevel  string
	logFormat string
	logger    *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "textsum",
	Short: "Multilingual text summarizer - chunk, summarize and reduce long documents",
	Long: `textsum summarizes text of any length. Long input is split on paragraph
boundaries, each chunk is summarized with a share of the length budget, and the
partial summaries are reduced again until they fit.

Example usage:
  textsum summarize report.txt           # Summarize a file
  cat notes.md | textsum summarize -     # Summarize stdin
  textsum detect article.txt --scores    # Show language scores
  textsum batch ./docs --out ./summaries # Summarize a directory`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		// A missing .env is fine.
		_ = godotenv.Load()

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if logFormat != "" {
			cfg.Logging.Format = logFormat
		}
		logger = newLogger(cfg.Logging)
		slog.SetDefault(logger)

		return cfg.Validate()
	},
}

// Execute runs the CLI and exits with a code derived from the error kind.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./textsum.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}

func newLogger(lc config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(lc.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(lc.Format) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// exitCode maps error kinds onto process exit codes.
func exitCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return 2
	case errors.Is(err, domain.ErrModelUnavailable):
		return 3
	case errors.Is(err, domain.ErrInferenceFailed):
		return 4
	case errors.Is(err, domain.ErrRecursionLimitExceeded):
		return 5
	default:
		return 1
	}
}
