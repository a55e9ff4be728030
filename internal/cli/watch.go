package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"textsum/internal/adapter/fs"
	"textsum/internal/adapter/watch"
	"textsum/internal/usecase"
)

var (
	watchOut         string
	watchConcurrency int
)

var watchCmd = &cobra.Command{
	Use:   "watch <directory>",
	Short: "Summarize text files as they are written to a directory",
	Long: `Watch a directory and summarize every new or rewritten file matching the
batch globs once it stops changing. Stop with Ctrl-C; in-flight summaries finish
first.

Examples:
  textsum watch ./inbox --out ./summaries`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addRequestFlags(watchCmd)
	watchCmd.Flags().StringVarP(&watchOut, "out", "o", "", "output directory (default from config, else next to each file)")
	watchCmd.Flags().IntVarP(&watchConcurrency, "concurrency", "c", 2, "files summarized at once")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	dir, err := filepath.Abs(args[0])
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

	history, err := openHistory(cfg, GetRootDir(), logger)
	if err != nil {
		return err
	}
	if history != nil {
		defer history.Close()
	}

	outDir := cfg.Batch.OutputDir
	if watchOut != "" {
		outDir = watchOut
	}

	walker := fs.NewWalker(cfg.Batch.Includes, cfg.Batch.Excludes)
	batchUC := usecase.NewBatchUseCase(eng.summarize, walker, history, usecase.BatchOptions{OutputDir: outDir}, logger)

	handler := func(ctx context.Context, path string) error {
		f := batchUC.Process(ctx, path, req)
		if f.Err != nil {
			return f.Err
		}
		fmt.Printf("%s -> %s (%s, %d chunks)\n", path, f.OutputPath, f.Result.ModelKey.Language, f.Result.ChunksUsed)
		return nil
	}

	w, err := watch.New(dir, walker.Match, handler, watch.Options{MaxConcurrent: watchConcurrency}, logger)
	if err != nil {
		return err
	}
	defer w.Stop()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching %s (Ctrl-C to stop)\n", dir)
	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
