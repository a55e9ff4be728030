package port

import "textsum/internal/domain"

type Chunker interface {
	Split(text string, maxChunkChars int) []domain.TextChunk
}
