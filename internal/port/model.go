package port

import (
	"context"

	"textsum/internal/domain"
)

// Model is a loaded, ready-to-invoke summarizer bound to one language.
type Model interface {
	// Invoke summarizes text within the given output length bounds.
	Invoke(ctx context.Context, text string, minLength, maxLength int) (string, error)
}

// ModelLoader performs the expensive load of a model for a key.
// Loaded models that hold releasable resources also implement io.Closer.
type ModelLoader interface {
	Load(ctx context.Context, key domain.ModelKey) (Model, error)
}
