package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"textsum/internal/adapter/fs"
	"textsum/internal/domain"
	"textsum/internal/port"
)

// Summarizer is the part of SummarizeUseCase the batch runner needs.
type Summarizer interface {
	Summarize(ctx context.Context, req domain.SummarizationRequest) (domain.SummaryResult, error)
}

// BatchOptions configures a batch run.
type BatchOptions struct {
	// OutputDir receives <name>.summary.txt files. Empty writes next to the source.
	OutputDir string
	// Concurrency bounds how many files are summarized at once.
	Concurrency int
	// Force re-summarizes files whose summary is newer than the source.
	Force bool
	// DryRun summarizes without writing summaries or history.
	DryRun bool
}

// BatchUseCase summarizes every selected file under a directory.
type BatchUseCase struct {
	summarizer Summarizer
	walker     port.FileWalker
	history    port.HistoryStore
	opts       BatchOptions
	logger     *slog.Logger
}

// NewBatchUseCase creates a new batch use case. history may be nil.
func NewBatchUseCase(
	summarizer Summarizer,
	walker port.FileWalker,
	history port.HistoryStore,
	opts BatchOptions,
	logger *slog.Logger,
) *BatchUseCase {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchUseCase{
		summarizer: summarizer,
		walker:     walker,
		history:    history,
		opts:       opts,
		logger:     logger,
	}
}

// FileResult is the outcome of one file.
type FileResult struct {
	Path       string
	OutputPath string
	RecordID   string
	Result     domain.SummaryResult
	Err        error
}

// BatchResult contains the results of a batch run.
type BatchResult struct {
	Files        []FileResult
	Summarized   int
	FilesSkipped int
	Failed       int
	Elapsed      time.Duration
}

// Errors returns one line per failed file.
func (r *BatchResult) Errors() []string {
	var out []string
	for _, f := range r.Files {
		if f.Err != nil {
			out = append(out, fmt.Sprintf("%s: %v", f.Path, f.Err))
		}
	}
	return out
}

// FileProgressFunc is called after each file finishes, with the number of
// files handled so far out of total.
type FileProgressFunc func(done, total int, f FileResult)

// Run summarizes the files under root with req as the template request. A
// failing file is recorded in the result and does not stop the run; only a
// walk failure or ctx ending aborts it.
func (u *BatchUseCase) Run(ctx context.Context, root string, req domain.SummarizationRequest, progress FileProgressFunc) (*BatchResult, error) {
	start := time.Now()

	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	result := &BatchResult{}
	var mu sync.Mutex
	record := func(f FileResult, skipped bool) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case skipped:
			result.FilesSkipped++
		case f.Err != nil:
			result.Failed++
		default:
			result.Summarized++
		}
		result.Files = append(result.Files, f)
		if progress != nil {
			progress(len(result.Files), len(files), f)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.opts.Concurrency)
	for _, file := range files {
		if gctx.Err() != nil {
			break
		}
		out := fs.SummaryPath(file.Path, u.opts.OutputDir)
		if !u.opts.Force && upToDate(out, file.ModTime) {
			record(FileResult{Path: file.Path, OutputPath: out}, true)
			continue
		}

		g.Go(func() error {
			f := u.Process(gctx, file.Path, req)
			record(f, false)
			return nil
		})
	}
	_ = g.Wait()

	result.Elapsed = time.Since(start)
	u.logger.Info("batch complete",
		"root", root,
		"summarized", result.Summarized,
		"skipped", result.FilesSkipped,
		"failed", result.Failed,
		"elapsed", result.Elapsed)

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// Process summarizes one file, writes its summary and records it in history.
func (u *BatchUseCase) Process(ctx context.Context, path string, req domain.SummarizationRequest) FileResult {
	f := FileResult{Path: path, OutputPath: fs.SummaryPath(path, u.opts.OutputDir)}

	text, err := fs.ReadFile(path)
	if err != nil {
		f.Err = err
		return f
	}

	req.Text = text
	res, err := u.summarizer.Summarize(ctx, req)
	if err != nil {
		u.logger.Warn("file failed", "path", path, "error", err)
		f.Err = err
		return f
	}
	f.Result = res

	if u.opts.DryRun {
		return f
	}

	if err := os.MkdirAll(filepath.Dir(f.OutputPath), 0755); err != nil {
		f.Err = err
		return f
	}
	if err := os.WriteFile(f.OutputPath, []byte(res.Text+"\n"), 0644); err != nil {
		f.Err = err
		return f
	}

	if u.history != nil {
		id, err := u.history.Put(NewRecord(path, req, res))
		if err != nil {
			u.logger.Warn("failed to record history", "path", path, "error", err)
		}
		f.RecordID = id
	}

	u.logger.Debug("file summarized", "path", path, "output", f.OutputPath, "chunks", res.ChunksUsed)
	return f
}

// NewRecord builds the history record of a finished summarization.
func NewRecord(source string, req domain.SummarizationRequest, res domain.SummaryResult) domain.SummaryRecord {
	strategy := req.Strategy
	if strategy == "" {
		strategy = domain.StrategyDirect
	}
	return domain.SummaryRecord{
		Source:     source,
		CreatedAt:  time.Now().UTC(),
		ModelKey:   res.ModelKey,
		Strategy:   strategy,
		InputChars: utf8.RuneCountInString(req.Text),
		ChunksUsed: res.ChunksUsed,
		Summary:    res.Text,
	}
}

// upToDate reports whether out exists and is at least as new as the source.
func upToDate(out string, srcModTime int64) bool {
	info, err := os.Stat(out)
	if err != nil {
		return false
	}
	return info.ModTime().Unix() >= srcModTime
}
