package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"textsum/internal/adapter/fs"
	"textsum/internal/adapter/inference"
	"textsum/internal/adapter/memstore"
	"textsum/internal/domain"
)

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestBatch(t *testing.T, backend *inference.MockBackend, outDir string) (*BatchUseCase, *memstore.MemoryStore) {
	t.Helper()
	history := memstore.NewMemoryStore()
	uc := NewBatchUseCase(
		newTestUseCase(backend, testOptions()),
		fs.NewWalker([]string{"**/*.txt", "**/*.md"}, []string{"**/*.summary.txt"}),
		history,
		BatchOptions{OutputDir: outDir, Concurrency: 2},
		nil,
	)
	return uc, history
}

func TestBatch_SummarizesEachFile(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	writeInput(t, root, "a.txt", "The first document talks about the sea.")
	writeInput(t, root, "b.md", "The second document talks about the mountains.")
	writeInput(t, root, "c.png", "not text")

	backend := inference.NewMockBackend()
	uc, history := newTestBatch(t, backend, out)

	var progressed int
	result, err := uc.Run(context.Background(), root, domain.SummarizationRequest{
		Language:  "en",
		MaxLength: 150,
		MinLength: 40,
	}, func(done, total int, f FileResult) {
		progressed++
		if total != 2 {
			t.Errorf("expected total 2, got %d", total)
		}
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Summarized != 2 || result.Failed != 0 {
		t.Errorf("expected 2 summarized, 0 failed; got %d, %d", result.Summarized, result.Failed)
	}
	if progressed != 2 {
		t.Errorf("expected 2 progress callbacks, got %d", progressed)
	}

	for _, name := range []string{"a.summary.txt", "b.summary.txt"} {
		data, err := os.ReadFile(filepath.Join(out, name))
		if err != nil {
			t.Errorf("expected %s to be written: %v", name, err)
			continue
		}
		if !strings.HasPrefix(string(data), "summary of") {
			t.Errorf("unexpected summary content %q", data)
		}
	}

	records, _ := history.List(0)
	if len(records) != 2 {
		t.Errorf("expected 2 history records, got %d", len(records))
	}
}

func TestBatch_SkipsUpToDate(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	writeInput(t, root, "a.txt", "Some text about rivers.")

	backend := inference.NewMockBackend()
	uc, _ := newTestBatch(t, backend, out)
	req := domain.SummarizationRequest{Language: "en", MaxLength: 150}

	if _, err := uc.Run(context.Background(), root, req, nil); err != nil {
		t.Fatal(err)
	}
	result, err := uc.Run(context.Background(), root, req, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.FilesSkipped != 1 || result.Summarized != 0 {
		t.Errorf("expected 1 skipped, got skipped=%d summarized=%d", result.FilesSkipped, result.Summarized)
	}
	if len(backend.Calls()) != 1 {
		t.Errorf("expected a single inference call across both runs, got %d", len(backend.Calls()))
	}
}

func TestBatch_CollectsFailures(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	writeInput(t, root, "good.txt", "A fine document.")
	writeInput(t, root, "bad.txt", "A document that breaks the model.")

	backend := inference.NewMockBackend()
	backend.Reply = func(c inference.Call) (string, error) {
		if strings.Contains(c.Text, "breaks") {
			return "", errors.New("model crashed")
		}
		return "Fine.", nil
	}
	uc, history := newTestBatch(t, backend, out)

	result, err := uc.Run(context.Background(), root, domain.SummarizationRequest{Language: "en", MaxLength: 150}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Summarized != 1 || result.Failed != 1 {
		t.Errorf("expected 1 summarized, 1 failed; got %d, %d", result.Summarized, result.Failed)
	}
	errs := result.Errors()
	if len(errs) != 1 || !strings.Contains(errs[0], "bad.txt") {
		t.Errorf("expected one error for bad.txt, got %v", errs)
	}
	for _, f := range result.Files {
		if f.Err != nil && !errors.Is(f.Err, domain.ErrInferenceFailed) {
			t.Errorf("expected ErrInferenceFailed, got %v", f.Err)
		}
	}
	records, _ := history.List(0)
	if len(records) != 1 {
		t.Errorf("expected only the good file in history, got %d", len(records))
	}
}

func TestBatch_DryRunWritesNothing(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	writeInput(t, root, "a.txt", "Some text.")

	history := memstore.NewMemoryStore()
	uc := NewBatchUseCase(
		newTestUseCase(inference.NewMockBackend(), testOptions()),
		fs.NewWalker([]string{"**/*.txt"}, nil),
		history,
		BatchOptions{OutputDir: out, DryRun: true},
		nil,
	)

	result, err := uc.Run(context.Background(), root, domain.SummarizationRequest{Language: "en", MaxLength: 150}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Summarized != 1 {
		t.Errorf("expected 1 summarized, got %d", result.Summarized)
	}
	if _, err := os.Stat(filepath.Join(out, "a.summary.txt")); !os.IsNotExist(err) {
		t.Error("expected no summary file in dry run")
	}
	if records, _ := history.List(0); len(records) != 0 {
		t.Errorf("expected no history in dry run, got %d", len(records))
	}
}

func TestNewRecord(t *testing.T) {
	req := domain.SummarizationRequest{Text: "héllo wörld"}
	res := domain.SummaryResult{
		Text:       "hi.",
		ChunksUsed: 1,
		ModelKey:   domain.ModelKey{ModelID: "m", Language: "en"},
	}

	rec := NewRecord("stdin", req, res)
	if rec.InputChars != 11 {
		t.Errorf("expected 11 input chars, got %d", rec.InputChars)
	}
	if rec.Strategy != domain.StrategyDirect {
		t.Errorf("expected direct strategy, got %s", rec.Strategy)
	}
	if rec.Summary != "hi." || rec.Source != "stdin" {
		t.Errorf("unexpected record %+v", rec)
	}
}
