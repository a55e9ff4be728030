// Package registry caches loaded models per (model id, language) and makes sure
// each key is loaded at most once at a time.
package registry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"textsum/internal/adapter/pool"
	"textsum/internal/domain"
	"textsum/internal/port"
)

// Options tune the registry.
type Options struct {
	// MaxResident bounds the number of resident handles, evicting the least
	// recently used. Zero keeps every handle until it is unloaded explicitly.
	MaxResident int
	// LoadTimeout bounds a single load, independent of any caller deadline.
	LoadTimeout time.Duration
}

type Registry struct {
	loader port.ModelLoader
	pool   *pool.Pool
	group  singleflight.Group
	opts   Options
	logger *slog.Logger

	mu      sync.Mutex
	handles map[domain.ModelKey]*Handle
	order   []domain.ModelKey // least recently used first

	loads atomic.Int64
}

func New(loader port.ModelLoader, p *pool.Pool, opts Options, logger *slog.Logger) *Registry {
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = 5 * time.Minute
	}
	if opts.MaxResident < 0 {
		opts.MaxResident = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		loader:  loader,
		pool:    p,
		opts:    opts,
		logger:  logger,
		handles: make(map[domain.ModelKey]*Handle),
	}
}

// GetOrLoad returns the resident handle for (modelID, language), loading it on
// first demand. Concurrent callers for the same uncached key share one load.
// The returned handle is borrowed: call Release when done with it.
func (r *Registry) GetOrLoad(ctx context.Context, modelID, language string) (*Handle, error) {
	const op = "registry.get_or_load"

	modelID = strings.TrimSpace(modelID)
	if modelID == "" {
		return nil, domain.InvalidRequest(op, "model id is empty")
	}
	key := domain.ModelKey{ModelID: modelID, Language: language}

	for attempt := 0; attempt < 3; attempt++ {
		if h := r.lookup(key); h != nil {
			return h, nil
		}

		h, err := r.load(ctx, key)
		if err != nil {
			return nil, err
		}
		if h.acquire() {
			return h, nil
		}
		// Evicted between load and borrow.
	}

	return nil, domain.ModelUnavailable(op, fmt.Errorf("%s was evicted while loading", key))
}

// flightKey joins the fields with a NUL byte, which model ids and language
// codes never contain. ModelKey.String is ambiguous: "m_x"+"en" and
// "m"+"x_en" render the same.
func flightKey(key domain.ModelKey) string {
	return key.ModelID + "\x00" + key.Language
}

func (r *Registry) lookup(key domain.ModelKey) *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.handles[key]
	if !ok || !h.acquire() {
		return nil
	}
	r.moveToEnd(key)
	return h
}

func (r *Registry) load(ctx context.Context, key domain.ModelKey) (*Handle, error) {
	const op = "registry.load"

	ch := r.group.DoChan(flightKey(key), func() (any, error) {
		r.mu.Lock()
		h, ok := r.handles[key]
		r.mu.Unlock()
		if ok {
			return h, nil
		}

		// The load outlives callers that stop waiting so the flight always finishes.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.opts.LoadTimeout)
		defer cancel()

		start := time.Now()
		fut := pool.Submit(loadCtx, r.pool, func(ctx context.Context) (port.Model, error) {
			return r.loader.Load(ctx, key)
		})
		model, err := fut.Await(loadCtx)
		if err != nil {
			go r.discardLate(fut, key)
			r.logger.Warn("model load failed", "model", key.ModelID, "language", key.Language, "error", err)
			return nil, err
		}

		h = newHandle(key, model, r.logger)
		r.insert(key, h)
		r.loads.Add(1)
		r.logger.Info("model loaded", "model", key.ModelID, "language", key.Language, "elapsed", time.Since(start))
		return h, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, domain.ModelUnavailable(op, res.Err)
		}
		return res.Val.(*Handle), nil
	case <-ctx.Done():
		return nil, domain.ModelUnavailable(op, ctx.Err())
	}
}

// discardLate closes a model whose load finished after its deadline.
func (r *Registry) discardLate(fut *pool.Future[port.Model], key domain.ModelKey) {
	<-fut.Done()
	model, err := fut.Await(context.Background())
	if err != nil || model == nil {
		return
	}
	if c, ok := model.(io.Closer); ok {
		c.Close()
	}
	r.logger.Debug("discarded late model load", "model", key.ModelID, "language", key.Language)
}

func (r *Registry) insert(key domain.ModelKey, h *Handle) {
	var evicted []*Handle

	r.mu.Lock()
	r.handles[key] = h
	r.order = append(r.order, key)
	for r.opts.MaxResident > 0 && len(r.handles) > r.opts.MaxResident && len(r.order) > 0 {
		oldest := r.order[0]
		r.order = r.order[1:]
		evicted = append(evicted, r.handles[oldest])
		delete(r.handles, oldest)
	}
	r.mu.Unlock()

	for _, old := range evicted {
		r.logger.Info("evicting least recently used model", "model", old.key.ModelID, "language", old.key.Language)
		old.retire()
	}
}

// Unload evicts resident handles. Empty modelID or language match any value,
// so Unload("", "") evicts everything. Handles still borrowed are released
// once their borrowers finish. Returns the number of evicted handles.
func (r *Registry) Unload(modelID, language string) int {
	var evicted []*Handle

	r.mu.Lock()
	for key, h := range r.handles {
		if modelID != "" && key.ModelID != modelID {
			continue
		}
		if language != "" && key.Language != language {
			continue
		}
		delete(r.handles, key)
		r.removeFromOrder(key)
		evicted = append(evicted, h)
	}
	r.mu.Unlock()

	for _, h := range evicted {
		h.retire()
	}
	if len(evicted) > 0 {
		r.logger.Info("models unloaded", "count", len(evicted), "model", modelID, "language", language)
	}
	return len(evicted)
}

// Close unloads every model.
func (r *Registry) Close() error {
	r.Unload("", "")
	return nil
}

// Keys returns the resident keys sorted by model id, then language.
func (r *Registry) Keys() []domain.ModelKey {
	r.mu.Lock()
	keys := make([]domain.ModelKey, 0, len(r.handles))
	for k := range r.handles {
		keys = append(keys, k)
	}
	r.mu.Unlock()

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ModelID != keys[j].ModelID {
			return keys[i].ModelID < keys[j].ModelID
		}
		return keys[i].Language < keys[j].Language
	})
	return keys
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// Loads returns how many successful loads the registry has performed.
func (r *Registry) Loads() int64 {
	return r.loads.Load()
}

func (r *Registry) moveToEnd(key domain.ModelKey) {
	r.removeFromOrder(key)
	r.order = append(r.order, key)
}

func (r *Registry) removeFromOrder(key domain.ModelKey) {
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}
