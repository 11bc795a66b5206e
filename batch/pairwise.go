package batch

import (
	"iter"

	"github.com/hupe1980/erbatch/core"
	"github.com/hupe1980/erbatch/pairs"
	"github.com/hupe1980/erbatch/rowstore"
	"github.com/hupe1980/erbatch/util"
)

// PairBatcher chunks the union of a positive and a negative pair set into
// batches of size labeled pairs.
//
// Pairs are listed positives first, then negatives, each in ascending
// order. With a seed the list is shuffled before chunking; without one the
// order is fixed, which is what evaluation uses.
type PairBatcher struct {
	store *rowstore.Store
	pos   *pairs.Set
	neg   *pairs.Set
	size  int
	seed  *int64
}

// NewPairBatcher returns a pair batcher. Every endpoint must exist in store.
func NewPairBatcher(store *rowstore.Store, pos, neg *pairs.Set, size int, seed *int64) (*PairBatcher, error) {
	if size <= 0 {
		return nil, core.NewConfigurationError("pair batch size must be positive, got %d", size)
	}
	for _, s := range []*pairs.Set{pos, neg} {
		for p := range s.All() {
			for _, id := range [2]core.ID{p.A, p.B} {
				if !store.Has(id) {
					return nil, &core.SchemaError{Attr: rowstore.DefaultIDAttr, ID: id, HasID: true,
						Reason: "pair endpoint " + p.String() + " is not a known row"}
				}
			}
		}
	}
	return &PairBatcher{store: store, pos: pos, neg: neg, size: size, seed: seed}, nil
}

// Len returns the number of batches.
func (b *PairBatcher) Len() int {
	return (b.pos.Len() + b.neg.Len() + b.size - 1) / b.size
}

// Batches returns the batch sequence. Each call replays it from the start.
func (b *PairBatcher) Batches() iter.Seq[PairBatch] {
	return func(yield func(PairBatch) bool) {
		list := make([]LabeledPair, 0, b.pos.Len()+b.neg.Len())
		for _, p := range b.pos.Sorted() {
			list = append(list, b.labeled(p, true))
		}
		for _, p := range b.neg.Sorted() {
			list = append(list, b.labeled(p, false))
		}

		if b.seed != nil {
			util.ShuffleSlice(util.NewRNG(*b.seed), list)
		}

		for start := 0; start < len(list); start += b.size {
			end := min(start+b.size, len(list))
			if !yield(PairBatch{Pairs: list[start:end:end]}) {
				return
			}
		}
	}
}

func (b *PairBatcher) labeled(p pairs.Pair, positive bool) LabeledPair {
	a, _ := b.store.Get(p.A)
	c, _ := b.store.Get(p.B)
	return LabeledPair{Pair: p, Positive: positive, A: a, B: c}
}
