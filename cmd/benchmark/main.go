package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"textsum/config"
	"textsum/internal/adapter/chunker"
	"textsum/internal/adapter/detector"
	"textsum/internal/adapter/fs"
	"textsum/internal/adapter/inference"
	"textsum/internal/adapter/pool"
	"textsum/internal/adapter/postprocess"
	"textsum/internal/adapter/registry"
	"textsum/internal/domain"
	"textsum/internal/usecase"
)

func main() {
	dir := flag.String("dir", ".", "Directory holding textsum.yaml")
	file := flag.String("file", "", "Text file to summarize (default: generated text)")
	paragraphs := flag.Int("paragraphs", 60, "Generated paragraphs when no file is given")
	latency := flag.Duration("latency", 50*time.Millisecond, "Simulated latency per inference call")
	workers := flag.String("workers", "1,2,4,8", "Comma separated worker counts to compare")
	flag.Parse()

	cfg, err := config.LoadFromDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	text := generateText(*paragraphs)
	if *file != "" {
		text, err = fs.ReadFile(*file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println("ORCHESTRATION BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Input: %d chars, %d paragraphs\n", utf8.RuneCountInString(text), strings.Count(text, "\n\n")+1)
	fmt.Printf("Chunk chars: %d, long text threshold: %d, max depth: %d\n",
		cfg.Summarize.ChunkChars, cfg.Summarize.LongTextThreshold, cfg.Summarize.MaxDepth)
	fmt.Printf("Simulated latency: %s per call\n", *latency)
	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("%-8s %-8s %-8s %-8s %-12s %s\n", "workers", "chunks", "calls", "depth", "elapsed", "speedup")

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	var baseline time.Duration
	for _, w := range parseWorkers(*workers) {
		result, elapsed, err := run(cfg, text, w, *latency, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Run with %d workers failed: %v\n", w, err)
			os.Exit(1)
		}
		if baseline == 0 {
			baseline = elapsed
		}
		fmt.Printf("%-8d %-8d %-8d %-8d %-12s %.2fx\n",
			w, result.ChunksUsed, result.Calls, result.Depth, elapsed.Round(time.Millisecond),
			float64(baseline)/float64(elapsed))
	}
	fmt.Println(strings.Repeat("=", 70))
}

// run summarizes text once on a fresh engine whose model sleeps for latency
// and answers with the leading sentences of its input.
func run(cfg *config.Config, text string, workers int, latency time.Duration, logger *slog.Logger) (domain.SummaryResult, time.Duration, error) {
	extractive := inference.NewExtractiveBackend()
	extractModel, _ := extractive.Load(context.Background(), domain.ModelKey{})

	backend := inference.NewMockBackend()
	backend.Reply = func(c inference.Call) (string, error) {
		time.Sleep(latency)
		return extractModel.Invoke(context.Background(), c.Text, c.MinLength, c.MaxLength)
	}

	p := pool.New(workers, logger)
	reg := registry.New(backend, p, registry.Options{}, logger)
	defer reg.Close()

	uc := usecase.NewSummarizeUseCase(
		reg,
		detector.NewMarkerDetector(cfg.Detect.SampleChars, cfg.Detect.MinConfidence, cfg.Detect.DefaultLanguage, logger),
		chunker.NewParagraphChunker(cfg.Summarize.ChunkChars),
		postprocess.NewCleaner(cfg.Postprocess.MinSentenceChars, cfg.Postprocess.SimilarityThreshold),
		p,
		usecase.OptionsFromConfig(cfg.Summarize),
		logger,
	)

	start := time.Now()
	result, err := uc.Summarize(context.Background(), domain.SummarizationRequest{
		Text:      text,
		MaxLength: cfg.Summarize.MaxLength,
		MinLength: cfg.Summarize.MinLength,
		ModelID:   "benchmark",
	})
	return result, time.Since(start), err
}

func parseWorkers(s string) []int {
	var out []int
	for _, part := range strings.Split(s, ",") {
		var n int
		if _, err := fmt.Sscanf(strings.TrimSpace(part), "%d", &n); err == nil && n > 0 {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		out = []int{1}
	}
	return out
}

var sentences = []string{
	"The committee reviewed the quarterly figures and noted a steady rise in demand.",
	"Several teams reported delays caused by supply problems in the northern region.",
	"A new training program was approved for the staff working in the field offices.",
	"The board asked for a detailed plan to reduce energy use in all buildings.",
	"Customer feedback showed that response times had improved over the last months.",
	"The research group published early results on the recycling of battery materials.",
}

func generateText(paragraphs int) string {
	var sb strings.Builder
	for i := 0; i < paragraphs; i++ {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		for j := 0; j < 8; j++ {
			if j > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(sentences[(i+j)%len(sentences)])
		}
	}
	return sb.String()
}
