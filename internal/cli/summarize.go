package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"textsum/internal/domain"
	"textsum/internal/usecase"
)

var (
	sumText     string
	sumLang     string
	sumMax      int
	sumMin      int
	sumStrategy string
	sumTemplate string
	sumPreset   string
	sumModel    string
	sumTimeout  time.Duration
	sumJSON     bool
	sumNoSave   bool
	sumProgress bool
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file|-]",
	Short: "Summarize a file, stdin or inline text",
	Long: `Summarize text of any length. Without --lang the language is detected
from marker words. Long input is chunked and reduced automatically.

Examples:
  textsum summarize report.txt
  textsum summarize - --lang fr --max 200 < article.txt
  textsum summarize --text "..." --strategy prompted --preset bullets
  textsum summarize notes.md --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummarize,
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().StringVarP(&sumText, "text", "t", "", "text to summarize instead of a file")
	summarizeCmd.Flags().StringVarP(&sumLang, "lang", "l", "", "language code (default: detect)")
	summarizeCmd.Flags().IntVar(&sumMax, "max", 0, "maximum summary length (default from config)")
	summarizeCmd.Flags().IntVar(&sumMin, "min", -1, "minimum summary length (default from config)")
	summarizeCmd.Flags().StringVarP(&sumStrategy, "strategy", "s", "", "direct or prompted (default from config)")
	summarizeCmd.Flags().StringVar(&sumTemplate, "template", "", "prompt template with a {text} placeholder")
	summarizeCmd.Flags().StringVar(&sumPreset, "preset", "", "built-in prompt template (see 'textsum prompt --list')")
	summarizeCmd.Flags().StringVarP(&sumModel, "model", "m", "", "model id (default from config)")
	summarizeCmd.Flags().DurationVar(&sumTimeout, "timeout", 0, "overall timeout (default from config)")
	summarizeCmd.Flags().BoolVar(&sumJSON, "json", false, "output as JSON")
	summarizeCmd.Flags().BoolVar(&sumNoSave, "no-save", false, "do not record the summary in history")
	summarizeCmd.Flags().BoolVar(&sumProgress, "progress", false, "show chunk progress")
}

// summarizeOutput is the JSON shape of a summary.
type summarizeOutput struct {
	ID         string `json:"id,omitempty"`
	Source     string `json:"source"`
	Summary    string `json:"summary"`
	Model      string `json:"model"`
	Language   string `json:"language"`
	ChunksUsed int    `json:"chunks_used"`
	Depth      int    `json:"depth"`
	Calls      int    `json:"calls"`
	ElapsedMS  int64  `json:"elapsed_ms"`
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	text, source, err := readInput(args, sumText)
	if err != nil {
		return err
	}

	req, err := requestFromFlags()
	if err != nil {
		return err
	}
	req.Text = text

	eng, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	start := time.Now()
	var result domain.SummaryResult
	if sumProgress && !sumJSON {
		result, err = eng.summarize.SummarizeWithProgress(ctx, req, chunkProgress())
	} else {
		result, err = eng.summarize.Summarize(ctx, req)
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	var id string
	if !sumNoSave {
		id = saveHistory(source, req, result)
	}

	if sumJSON {
		output, _ := json.MarshalIndent(summarizeOutput{
			ID:         id,
			Source:     source,
			Summary:    result.Text,
			Model:      result.ModelKey.ModelID,
			Language:   result.ModelKey.Language,
			ChunksUsed: result.ChunksUsed,
			Depth:      result.Depth,
			Calls:      result.Calls,
			ElapsedMS:  elapsed.Milliseconds(),
		}, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(result.Text)
	logger.Debug("summary stats",
		"language", result.ModelKey.Language,
		"chunks", result.ChunksUsed,
		"calls", result.Calls,
		"elapsed", elapsed)
	return nil
}

// requestFromFlags overlays command flags on the config defaults.
func requestFromFlags() (domain.SummarizationRequest, error) {
	req, err := baseRequest(GetConfig())
	if err != nil {
		return req, err
	}

	if sumLang != "" {
		req.Language = sumLang
	}
	if sumMax > 0 {
		req.MaxLength = sumMax
	}
	if sumMin >= 0 {
		req.MinLength = sumMin
	}
	if sumStrategy != "" {
		if req.Strategy, err = domain.ParseStrategy(sumStrategy); err != nil {
			return req, domain.InvalidRequest("summarize", "%v", err)
		}
	}
	if sumPreset != "" {
		tmpl, err := presetTemplate(sumPreset)
		if err != nil {
			return req, err
		}
		req.PromptTemplate = tmpl
		req.Strategy = domain.StrategyPrompted
	}
	if sumTemplate != "" {
		req.PromptTemplate = sumTemplate
		req.Strategy = domain.StrategyPrompted
	}
	if sumModel != "" {
		req.ModelID = sumModel
	}
	if sumTimeout > 0 {
		req.Timeout = sumTimeout
	}
	return req, nil
}

// saveHistory records a summary, logging instead of failing the command.
func saveHistory(source string, req domain.SummarizationRequest, result domain.SummaryResult) string {
	st, err := openHistory(GetConfig(), GetRootDir(), logger)
	if err != nil {
		logger.Warn("history unavailable", "error", err)
		return ""
	}
	if st == nil {
		return ""
	}
	defer st.Close()

	id, err := st.Put(usecase.NewRecord(source, req, result))
	if err != nil {
		logger.Warn("failed to record history", "error", err)
		return ""
	}
	return id
}

// chunkProgress draws a bar per reduce level as chunk calls complete.
func chunkProgress() usecase.ProgressFunc {
	var mu sync.Mutex
	var bar *progressbar.ProgressBar
	barTotal := 0

	return func(done, total int) {
		mu.Lock()
		defer mu.Unlock()

		if bar == nil || total != barTotal {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Summarizing[reset]"),
				progressbar.OptionClearOnFinish(),
			)
			barTotal = total
		}
		_ = bar.Set(done)
	}
}
