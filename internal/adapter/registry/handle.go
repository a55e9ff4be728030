package registry

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"textsum/internal/domain"
	"textsum/internal/port"
)

// Handle is a loaded model owned by the Registry. Callers borrow it with
// GetOrLoad and must call Release when their call is done. An evicted handle
// stays usable until its last borrower releases it; only then is the model closed.
type Handle struct {
	key    domain.ModelKey
	model  port.Model
	logger *slog.Logger

	mu      sync.Mutex
	refs    int
	retired bool
	closed  bool
}

func newHandle(key domain.ModelKey, model port.Model, logger *slog.Logger) *Handle {
	return &Handle{key: key, model: model, logger: logger}
}

func (h *Handle) Key() domain.ModelKey {
	return h.key
}

// Invoke runs the underlying model.
func (h *Handle) Invoke(ctx context.Context, text string, minLength, maxLength int) (string, error) {
	return h.model.Invoke(ctx, text, minLength, maxLength)
}

// Release returns a borrowed reference.
func (h *Handle) Release() {
	h.mu.Lock()
	if h.refs > 0 {
		h.refs--
	}
	shouldClose := h.retired && h.refs == 0 && !h.closed
	if shouldClose {
		h.closed = true
	}
	h.mu.Unlock()

	if shouldClose {
		h.close()
	}
}

// InUse reports the number of outstanding borrows.
func (h *Handle) InUse() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.refs
}

func (h *Handle) acquire() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.retired {
		return false
	}
	h.refs++
	return true
}

func (h *Handle) retire() {
	h.mu.Lock()
	h.retired = true
	shouldClose := h.refs == 0 && !h.closed
	if shouldClose {
		h.closed = true
	}
	h.mu.Unlock()

	if shouldClose {
		h.close()
	}
}

func (h *Handle) close() {
	c, ok := h.model.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		h.logger.Warn("failed to release model", "model", h.key.ModelID, "language", h.key.Language, "error", err)
		return
	}
	h.logger.Debug("model released", "model", h.key.ModelID, "language", h.key.Language)
}
