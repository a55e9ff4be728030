package chunker

import (
	"strings"
	"unicode/utf8"

	"textsum/internal/domain"
)

// ParagraphChunker packs consecutive paragraphs into chunks of bounded size.
type ParagraphChunker struct {
	defaultMaxChars int
}

func NewParagraphChunker(defaultMaxChars int) *ParagraphChunker {
	if defaultMaxChars <= 0 {
		defaultMaxChars = 4000
	}
	return &ParagraphChunker{defaultMaxChars: defaultMaxChars}
}

// Split breaks text on blank lines and greedily packs paragraphs while the
// running length stays under maxChunkChars. A paragraph that alone exceeds the
// limit becomes its own chunk. Lengths are counted in runes, including the
// paragraph separators already in the chunk.
func (c *ParagraphChunker) Split(text string, maxChunkChars int) []domain.TextChunk {
	if maxChunkChars <= 0 {
		maxChunkChars = c.defaultMaxChars
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")

	var chunks []domain.TextChunk
	var current strings.Builder
	currentLen := 0

	flush := func() {
		content := strings.TrimSpace(current.String())
		if content != "" {
			chunks = append(chunks, domain.TextChunk{
				Content:       content,
				SequenceIndex: len(chunks),
			})
		}
		current.Reset()
		currentLen = 0
	}

	for _, para := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(para) == "" {
			continue
		}
		paraLen := utf8.RuneCountInString(para)

		if currentLen > 0 && currentLen+paraLen >= maxChunkChars {
			flush()
		}

		current.WriteString(para)
		current.WriteString("\n\n")
		currentLen += paraLen + 2
	}
	flush()

	return chunks
}
