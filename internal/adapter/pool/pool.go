// Package pool runs blocking work on a bounded set of goroutine slots and hands
// back futures, so callers await results instead of blocking on the work itself.
package pool

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"
)

type Pool struct {
	sem    *semaphore.Weighted
	size   int
	wg     sync.WaitGroup
	logger *slog.Logger
}

// New creates a pool running at most workers tasks at once.
func New(workers int, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		sem:    semaphore.NewWeighted(int64(workers)),
		size:   workers,
		logger: logger,
	}
}

// Size returns the number of worker slots.
func (p *Pool) Size() int {
	return p.size
}

// Wait blocks until every submitted task has finished, including tasks whose
// callers stopped awaiting them.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Future is the pending result of a submitted task.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Done is closed once the task has finished.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await returns the task result, or ctx.Err() if ctx ends first. Abandoning a
// future does not stop the task.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Submit schedules fn on p. The task waits for a free slot; if ctx ends while
// waiting the task is skipped and the future fails with ctx.Err().
func Submit[T any](ctx context.Context, p *Pool, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer close(f.done)

		if err := p.sem.Acquire(ctx, 1); err != nil {
			f.err = err
			return
		}
		defer p.sem.Release(1)

		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("pool task panicked", "panic", r)
				f.err = fmt.Errorf("task panicked: %v", r)
			}
		}()

		f.val, f.err = fn(ctx)
	}()

	return f
}

// Do submits fn and awaits it.
func Do[T any](ctx context.Context, p *Pool, fn func(context.Context) (T, error)) (T, error) {
	return Submit(ctx, p, fn).Await(ctx)
}
