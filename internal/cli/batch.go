package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"textsum/internal/adapter/fs"
	"textsum/internal/port"
	"textsum/internal/usecase"
)

var (
	batchOut         string
	batchConcurrency int
	batchForce       bool
	batchDryRun      bool
)

var batchCmd = &cobra.Command{
	Use:   "batch [directory]",
	Short: "Summarize every matching file under a directory",
	Long: `Summarize each file matched by the batch include/exclude globs and write
<name>.summary.txt next to it or into --out. Files whose summary is newer than
the source are skipped unless --force is given.

Examples:
  textsum batch ./docs
  textsum batch ./docs --out ./summaries --concurrency 4`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	addRequestFlags(batchCmd)
	batchCmd.Flags().StringVarP(&batchOut, "out", "o", "", "output directory (default from config, else next to each file)")
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "c", 2, "files summarized at once")
	batchCmd.Flags().BoolVar(&batchForce, "force", false, "re-summarize up-to-date files")
	batchCmd.Flags().BoolVar(&batchDryRun, "dry-run", false, "summarize without writing files or history")
}

// addRequestFlags registers the request flags summarize shares with batch and watch.
func addRequestFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&sumLang, "lang", "l", "", "language code (default: detect per file)")
	cmd.Flags().IntVar(&sumMax, "max", 0, "maximum summary length (default from config)")
	cmd.Flags().IntVar(&sumMin, "min", -1, "minimum summary length (default from config)")
	cmd.Flags().StringVarP(&sumStrategy, "strategy", "s", "", "direct or prompted (default from config)")
	cmd.Flags().StringVar(&sumPreset, "preset", "", "built-in prompt template")
	cmd.Flags().StringVarP(&sumModel, "model", "m", "", "model id (default from config)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	root := GetRootDir()
	if len(args) > 0 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	req, err := requestFromFlags()
	if err != nil {
		return err
	}

	eng, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	history, err := batchHistory()
	if err != nil {
		return err
	}
	if history != nil {
		defer history.Close()
	}

	outDir := cfg.Batch.OutputDir
	if batchOut != "" {
		outDir = batchOut
	}

	batchUC := usecase.NewBatchUseCase(
		eng.summarize,
		fs.NewWalker(cfg.Batch.Includes, cfg.Batch.Excludes),
		history,
		usecase.BatchOptions{
			OutputDir:   outDir,
			Concurrency: batchConcurrency,
			Force:       batchForce,
			DryRun:      batchDryRun,
		},
		logger,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fmt.Printf("Scanning %s...\n", root)

	var bar *progressbar.ProgressBar
	var barMu sync.Mutex
	var startTime time.Time

	progressCallback := func(done, total int, f usecase.FileResult) {
		barMu.Lock()
		defer barMu.Unlock()

		if bar == nil {
			startTime = time.Now()
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Summarizing[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}

		_ = bar.Set(done)

		if done > 0 {
			elapsed := time.Since(startTime)
			rate := float64(done) / elapsed.Seconds()
			if rate > 0 {
				eta := time.Duration(float64(total-done)/rate) * time.Second
				bar.Describe(fmt.Sprintf("[cyan]Summarizing[reset] ETA: %s", formatDuration(eta)))
			}
		}
	}

	result, err := batchUC.Run(ctx, root, req, progressCallback)
	if result != nil {
		fmt.Printf("\nBatch complete in %s\n", formatDuration(result.Elapsed))
		fmt.Printf("  Files summarized: %d\n", result.Summarized)
		fmt.Printf("  Files skipped:    %d\n", result.FilesSkipped)
		fmt.Printf("  Files failed:     %d\n", result.Failed)
		for _, e := range result.Errors() {
			fmt.Printf("  ! %s\n", e)
		}
	}
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}
	if result.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", result.Failed, len(result.Files))
	}
	return nil
}

// batchHistory opens history unless this is a dry run.
func batchHistory() (port.HistoryStore, error) {
	if batchDryRun {
		return nil, nil
	}
	return openHistory(GetConfig(), GetRootDir(), logger)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}
