package async

import (
	"context"
	"errors"
	"sync"
)

// ErrNoLimit is returned by ForEach when the concurrency limit is not positive.
var ErrNoLimit = errors.New("async: concurrency limit must be positive")

// Future holds the eventual result of a function started with Go.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Go starts fn in a new goroutine. If ctx is already done, fn is not called
// and the future resolves with the context error.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		if err := ctx.Err(); err != nil {
			f.err = err
			return
		}
		f.value, f.err = fn(ctx)
	}()
	return f
}

// Await waits for the result. It returns ctx.Err() if ctx is done first; the
// future keeps running and can be awaited again.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Result describes the outcome of one ForEach item.
type Result[T any] struct {
	Value T
	Err   error
}

// ForEach calls fn for every item with at most limit calls in flight and
// returns the results in input order. Per-item errors are reported in the
// results; the returned error is only set for an invalid limit or when ctx
// ends before all items were started.
func ForEach[I, T any](ctx context.Context, items []I, limit int, fn func(context.Context, I) (T, error)) ([]Result[T], error) {
	if limit <= 0 {
		return nil, ErrNoLimit
	}

	results := make([]Result[T], len(items))
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for i, item := range items {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return results, ctx.Err()
		}

		wg.Add(1)
		go func() {
			defer func() {
				<-sem
				wg.Done()
			}()
			v, err := fn(ctx, item)
			results[i] = Result[T]{Value: v, Err: err}
		}()
	}

	wg.Wait()
	return results, nil
}
