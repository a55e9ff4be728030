package chunker

import (
	"strings"
	"testing"
)

func TestParagraphChunkerEmpty(t *testing.T) {
	c := NewParagraphChunker(4000)

	if chunks := c.Split("", 100); len(chunks) != 0 {
		t.Errorf("expected 0 chunks for empty text, got %d", len(chunks))
	}
	if chunks := c.Split("\n\n  \n\n", 100); len(chunks) != 0 {
		t.Errorf("expected 0 chunks for blank text, got %d", len(chunks))
	}
}

func TestParagraphChunkerSingle(t *testing.T) {
	c := NewParagraphChunker(4000)

	content := "Just one short paragraph."
	chunks := c.Split(content, 100)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != content {
		t.Errorf("expected chunk content %q, got %q", content, chunks[0].Content)
	}
	if chunks[0].SequenceIndex != 0 {
		t.Errorf("expected SequenceIndex 0, got %d", chunks[0].SequenceIndex)
	}
}

func TestParagraphChunkerPreservesOrder(t *testing.T) {
	c := NewParagraphChunker(4000)

	text := "aaaa\n\nbbbb\n\ncccc"
	chunks := c.Split(text, 11)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %+v", len(chunks), chunks)
	}
	if chunks[0].Content != "aaaa\n\nbbbb" {
		t.Errorf("expected first chunk to hold A and B, got %q", chunks[0].Content)
	}
	if chunks[1].Content != "cccc" {
		t.Errorf("expected second chunk to hold C, got %q", chunks[1].Content)
	}
	for i, ch := range chunks {
		if ch.SequenceIndex != i {
			t.Errorf("chunk %d has SequenceIndex %d", i, ch.SequenceIndex)
		}
	}
}

func TestParagraphChunkerTightLimit(t *testing.T) {
	c := NewParagraphChunker(4000)

	chunks := c.Split("aaaa\n\nbbbb\n\ncccc", 8)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	want := []string{"aaaa", "bbbb", "cccc"}
	for i := range want {
		if chunks[i].Content != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], chunks[i].Content)
		}
	}
}

func TestParagraphChunkerOversizedParagraph(t *testing.T) {
	c := NewParagraphChunker(4000)

	long := strings.Repeat("x", 50)
	chunks := c.Split("short\n\n"+long+"\n\ntail", 20)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if chunks[1].Content != long {
		t.Error("oversized paragraph should be kept whole in its own chunk")
	}
}

func TestParagraphChunkerLongDocument(t *testing.T) {
	c := NewParagraphChunker(4000)

	para := strings.Repeat("w", 1998)
	paras := make([]string, 6)
	for i := range paras {
		paras[i] = para
	}
	text := strings.Join(paras, "\n\n")

	chunks := c.Split(text, 4000)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for _, ch := range chunks {
		if strings.Count(ch.Content, "\n\n") != 1 {
			t.Errorf("expected two paragraphs per chunk, got %q...", ch.Content[:20])
		}
	}
}

func TestParagraphChunkerDeterministic(t *testing.T) {
	c := NewParagraphChunker(4000)

	text := strings.Repeat("Some paragraph text here.\n\n", 40)
	a := c.Split(text, 100)
	b := c.Split(text, 100)
	if len(a) != len(b) {
		t.Fatalf("chunk count differs between runs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestParagraphChunkerDefaultLimit(t *testing.T) {
	c := NewParagraphChunker(10)

	chunks := c.Split("aaaaaaa\n\nbbbbbbb", 0)
	if len(chunks) != 2 {
		t.Errorf("expected default limit to split into 2 chunks, got %d", len(chunks))
	}
}

func TestParagraphChunkerWindowsLineEndings(t *testing.T) {
	c := NewParagraphChunker(4000)

	chunks := c.Split("one\r\n\r\ntwo", 5)
	if len(chunks) != 2 {
		t.Errorf("expected CRLF paragraphs to split, got %d chunks", len(chunks))
	}
}
