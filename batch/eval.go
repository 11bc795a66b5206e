package batch

import (
	"iter"

	"github.com/hupe1980/erbatch/core"
	"github.com/hupe1980/erbatch/rowstore"
)

// Eval chunks a store into fixed-size batches in insertion order.
// The last batch may be smaller.
type Eval struct {
	store *rowstore.Store
	size  int
}

// NewEval returns an evaluation batcher with size rows per batch.
func NewEval(store *rowstore.Store, size int) (*Eval, error) {
	if size <= 0 {
		return nil, core.NewConfigurationError("eval batch size must be positive, got %d", size)
	}
	return &Eval{store: store, size: size}, nil
}

// Len returns the number of batches.
func (e *Eval) Len() int {
	return (e.store.Len() + e.size - 1) / e.size
}

// Batches returns the batch sequence. Each call replays it from the start.
func (e *Eval) Batches() iter.Seq[RowBatch] {
	return func(yield func(RowBatch) bool) {
		n := e.store.Len()
		for start := 0; start < n; start += e.size {
			end := min(start+e.size, n)
			rows := make([]rowstore.Row, 0, end-start)
			for i := start; i < end; i++ {
				rows = append(rows, e.store.At(i))
			}
			if !yield(RowBatch{Rows: rows}) {
				return
			}
		}
	}
}
