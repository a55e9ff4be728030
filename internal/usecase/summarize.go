package usecase

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"textsum/config"
	"textsum/internal/adapter/analyzer"
	"textsum/internal/adapter/pool"
	"textsum/internal/adapter/registry"
	"textsum/internal/adapter/strategy"
	"textsum/internal/domain"
	"textsum/internal/port"
)

// SummarizeOptions configures the orchestration. Lengths are in characters.
type SummarizeOptions struct {
	DefaultModelID       string
	PromptTemplate       string
	LongTextThreshold    int
	ChunkChars           int
	ResummarizeThreshold int
	ChunkMinFloor        int
	ChunkMaxFloor        int
	MaxDepth             int
	Timeout              time.Duration
	Preprocess           bool
}

// OptionsFromConfig maps the summarize config section onto SummarizeOptions.
func OptionsFromConfig(cfg config.SummarizeConfig) SummarizeOptions {
	return SummarizeOptions{
		DefaultModelID:       cfg.DefaultModel,
		PromptTemplate:       cfg.PromptTemplate,
		LongTextThreshold:    cfg.LongTextThreshold,
		ChunkChars:           cfg.ChunkChars,
		ResummarizeThreshold: cfg.ResummarizeThreshold,
		ChunkMinFloor:        cfg.ChunkMinFloor,
		ChunkMaxFloor:        cfg.ChunkMaxFloor,
		MaxDepth:             cfg.MaxDepth,
		Timeout:              cfg.Timeout,
		Preprocess:           cfg.Preprocess,
	}
}

// ProgressFunc is called as inference calls of one level complete.
type ProgressFunc func(done, total int)

// SummarizeUseCase turns arbitrary-length text into one summary. Long input is
// chunked, each chunk summarized with a share of the length budget, and the
// joined partial summaries reduced again while they stay too long.
type SummarizeUseCase struct {
	registry *registry.Registry
	detector port.LanguageDetector
	chunker  port.Chunker
	cleaner  port.PostProcessor
	pool     *pool.Pool
	opts     SummarizeOptions
	logger   *slog.Logger
}

// NewSummarizeUseCase creates a new summarize use case.
func NewSummarizeUseCase(
	reg *registry.Registry,
	detector port.LanguageDetector,
	chunker port.Chunker,
	cleaner port.PostProcessor,
	p *pool.Pool,
	opts SummarizeOptions,
	logger *slog.Logger,
) *SummarizeUseCase {
	if opts.LongTextThreshold <= 0 {
		opts.LongTextThreshold = 10000
	}
	if opts.ChunkChars <= 0 {
		opts.ChunkChars = 4000
	}
	if opts.ResummarizeThreshold <= 0 {
		opts.ResummarizeThreshold = 4000
	}
	if opts.ChunkMaxFloor <= 0 {
		opts.ChunkMaxFloor = 50
	}
	if opts.ChunkMinFloor < 0 || opts.ChunkMinFloor >= opts.ChunkMaxFloor {
		opts.ChunkMinFloor = 0
	}
	if opts.MaxDepth < 0 {
		opts.MaxDepth = 0
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SummarizeUseCase{
		registry: reg,
		detector: detector,
		chunker:  chunker,
		cleaner:  cleaner,
		pool:     p,
		opts:     opts,
		logger:   logger,
	}
}

// Summarize runs one summarization request.
func (u *SummarizeUseCase) Summarize(ctx context.Context, req domain.SummarizationRequest) (domain.SummaryResult, error) {
	return u.SummarizeWithProgress(ctx, req, nil)
}

// SummarizeWithProgress is Summarize with a progress callback.
func (u *SummarizeUseCase) SummarizeWithProgress(ctx context.Context, req domain.SummarizationRequest, progress ProgressFunc) (domain.SummaryResult, error) {
	if err := req.Validate(); err != nil {
		return domain.SummaryResult{}, err
	}

	modelID := strings.TrimSpace(req.ModelID)
	if modelID == "" {
		modelID = u.opts.DefaultModelID
	}
	if modelID == "" {
		return domain.SummaryResult{}, domain.InvalidRequest("summarize", "model id is empty")
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = u.opts.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	language := domain.NormalizeLanguage(req.Language)
	if language == "" {
		language = u.detector.Detect(req.Text)
		u.logger.Debug("language detected", "language", language)
	}
	key := domain.ModelKey{ModelID: modelID, Language: language}

	if strings.TrimSpace(req.Text) == "" {
		return domain.SummaryResult{ModelKey: key}, nil
	}

	start := time.Now()

	h, err := u.registry.GetOrLoad(ctx, modelID, language)
	if err != nil {
		return domain.SummaryResult{}, err
	}
	defer h.Release()

	var model port.Model = h
	if req.Strategy == domain.StrategyPrompted {
		template := req.PromptTemplate
		if template == "" {
			template = u.opts.PromptTemplate
		}
		model = strategy.NewPrompted(h, template)
	}

	r := &run{model: model, pool: u.pool, progress: progress}
	text, chunks, err := u.reduce(ctx, r, req.Text, req.MinLength, req.MaxLength, 0)
	if err != nil {
		u.logger.Warn("summarize failed",
			"model", modelID, "language", language, "calls", r.calls.Load(), "error", err)
		return domain.SummaryResult{}, err
	}

	result := domain.SummaryResult{
		Text:       u.cleaner.Clean(text),
		ChunksUsed: chunks,
		ModelKey:   key,
		Depth:      int(r.depth.Load()),
		Calls:      int(r.calls.Load()),
	}

	u.logger.Info("summary complete",
		"model", modelID,
		"language", language,
		"chunks", result.ChunksUsed,
		"depth", result.Depth,
		"calls", result.Calls,
		"elapsed", time.Since(start))

	return result, nil
}

// reduce summarizes text, returning the summary and the number of chunks used
// at this level.
func (u *SummarizeUseCase) reduce(ctx context.Context, r *run, text string, minLength, maxLength, depth int) (string, int, error) {
	if depth > u.opts.MaxDepth {
		return "", 0, domain.RecursionLimit("summarize.reduce", depth)
	}
	r.reachDepth(depth)

	if utf8.RuneCountInString(text) <= u.opts.LongTextThreshold {
		out, err := r.invoke(ctx, u.prepare(text), minLength, maxLength)
		if err != nil {
			return "", 0, err
		}
		r.report(1, 1)
		return strings.TrimSpace(out), 1, nil
	}

	chunks := u.chunker.Split(text, u.opts.ChunkChars)
	if len(chunks) == 0 {
		return "", 0, nil
	}
	chunkMin, chunkMax := u.chunkBounds(minLength, maxLength, len(chunks))

	u.logger.Debug("summarizing chunks",
		"chunks", len(chunks), "depth", depth, "min", chunkMin, "max", chunkMax)

	summaries := make([]string, len(chunks))
	var done atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	for _, chunk := range chunks {
		g.Go(func() error {
			out, err := r.invoke(gctx, u.prepare(chunk.Content), chunkMin, chunkMax)
			if err != nil {
				return err
			}
			summaries[chunk.SequenceIndex] = strings.TrimSpace(out)
			r.report(int(done.Add(1)), len(chunks))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", 0, err
	}

	joined := joinNonEmpty(summaries)
	if utf8.RuneCountInString(joined) > u.opts.ResummarizeThreshold {
		out, _, err := u.reduce(ctx, r, joined, minLength, maxLength, depth+1)
		return out, len(chunks), err
	}
	return joined, len(chunks), nil
}

// chunkBounds splits the overall length budget evenly across n chunks,
// never going below the configured floors.
func (u *SummarizeUseCase) chunkBounds(minLength, maxLength, n int) (int, int) {
	chunkMax := max(u.opts.ChunkMaxFloor, maxLength/n)
	chunkMin := max(u.opts.ChunkMinFloor, minLength/n)
	if chunkMin >= chunkMax {
		chunkMin = chunkMax - 1
	}
	return chunkMin, chunkMax
}

func (u *SummarizeUseCase) prepare(text string) string {
	if u.opts.Preprocess {
		return analyzer.Preprocess(text)
	}
	return text
}

func joinNonEmpty(parts []string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// run holds the state of one Summarize call.
type run struct {
	model    port.Model
	pool     *pool.Pool
	progress ProgressFunc

	calls atomic.Int32
	depth atomic.Int32

	progressMu sync.Mutex
}

// invoke hands one inference call to the worker pool and awaits it.
func (r *run) invoke(ctx context.Context, text string, minLength, maxLength int) (string, error) {
	r.calls.Add(1)
	out, err := pool.Do(ctx, r.pool, func(ctx context.Context) (string, error) {
		return r.model.Invoke(ctx, text, minLength, maxLength)
	})
	if err != nil {
		return "", domain.InferenceFailed("summarize.invoke", err)
	}
	return out, nil
}

func (r *run) reachDepth(depth int) {
	for {
		cur := r.depth.Load()
		if int32(depth) <= cur || r.depth.CompareAndSwap(cur, int32(depth)) {
			return
		}
	}
}

func (r *run) report(done, total int) {
	if r.progress == nil {
		return
	}
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.progress(done, total)
}
