// Package loader drives batch sequences for a consumer, optionally
// preparing upcoming batches in the background.
package loader

import (
	"context"
	"iter"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Options are the loader concurrency settings.
type Options struct {
	// NumWorkers is the number of batches prepared ahead of the consumer.
	// 0 runs synchronously; -1 means one per CPU.
	NumWorkers int

	// MultiprocessingContext names a worker start strategy. It is carried
	// for callers that hand batches to an external process pool and is not
	// interpreted here.
	MultiprocessingContext string
}

// Resolve returns o with NumWorkers == -1 replaced by the CPU count and
// other negative values clamped to 0.
func (o Options) Resolve() Options {
	switch {
	case o.NumWorkers == -1:
		o.NumWorkers = runtime.NumCPU()
	case o.NumWorkers < 0:
		o.NumWorkers = 0
	}
	return o
}

// DataLoader yields the batches of one pass over a dataset.
type DataLoader[T any] struct {
	seq  iter.Seq[T]
	opts Options
	size int
}

// New returns a loader over seq. size is the number of batches if known,
// or -1.
func New[T any](seq iter.Seq[T], size int, opts Options) *DataLoader[T] {
	return &DataLoader[T]{seq: seq, opts: opts.Resolve(), size: size}
}

// Options returns the resolved options.
func (l *DataLoader[T]) Options() Options {
	return l.opts
}

// Len returns the number of batches, or -1 if unknown.
func (l *DataLoader[T]) Len() int {
	return l.size
}

// All yields every batch with a nil error. When ctx is canceled the pass
// ends with a single (zero, ctx.Err()) element. Breaking out of the loop
// stops background preparation.
func (l *DataLoader[T]) All(ctx context.Context) iter.Seq2[T, error] {
	if l.opts.NumWorkers <= 0 {
		return l.sync(ctx)
	}
	return l.prefetch(ctx)
}

func (l *DataLoader[T]) sync(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for b := range l.seq {
			if err := ctx.Err(); err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !yield(b, nil) {
				return
			}
		}
	}
}

func (l *DataLoader[T]) prefetch(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		ch := make(chan T, l.opts.NumWorkers)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			defer close(ch)
			for b := range l.seq {
				select {
				case ch <- b:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})

		for b := range ch {
			if err := ctx.Err(); err != nil {
				break
			}
			if !yield(b, nil) {
				cancel()
				_ = g.Wait()
				return
			}
		}

		if err := g.Wait(); err != nil {
			var zero T
			yield(zero, err)
			return
		}
		if err := ctx.Err(); err != nil {
			var zero T
			yield(zero, err)
		}
	}
}

// Collect drains a pass into a slice.
func (l *DataLoader[T]) Collect(ctx context.Context) ([]T, error) {
	var out []T
	for b, err := range l.All(ctx) {
		if err != nil {
			return out, err
		}
		out = append(out, b)
	}
	return out, nil
}
