// Package batch turns row stores and pair sets into finite, ordered
// sequences of mini-batches.
//
// Training batches are built from whole clusters and reshuffled per epoch
// by a Composer. Evaluation batches are contiguous, unshuffled chunks in
// store insertion order. Every sequence is a pull-based iter.Seq: the
// consumer drives progress and may stop between batches at any time.
package batch

import (
	"github.com/hupe1980/erbatch/cluster"
	"github.com/hupe1980/erbatch/core"
	"github.com/hupe1980/erbatch/pairs"
	"github.com/hupe1980/erbatch/rowstore"
)

// Batch is implemented by every batch type.
type Batch interface {
	// Len returns the number of rows (or pairs) in the batch.
	Len() int
	// IDs returns the IDs of the rows the batch covers, in batch order.
	IDs() []core.ID
}

// RowBatch is a contiguous chunk of rows.
type RowBatch struct {
	Rows []rowstore.Row
}

// Len returns the number of rows.
func (b RowBatch) Len() int { return len(b.Rows) }

// IDs returns the row IDs in batch order.
func (b RowBatch) IDs() []core.ID {
	return rowIDs(b.Rows)
}

// ClusterBatch is a training batch. Labels[i] is the cluster label of
// Rows[i]; together with Sides (linkage mode only) it recovers the positive
// pairs inside the batch.
type ClusterBatch struct {
	Rows   []rowstore.Row
	Labels []string
	Sides  *cluster.SourceSets
}

// Len returns the number of rows.
func (b ClusterBatch) Len() int { return len(b.Rows) }

// IDs returns the row IDs in batch order.
func (b ClusterBatch) IDs() []core.ID {
	return rowIDs(b.Rows)
}

// Clusters returns the number of distinct clusters in the batch.
func (b ClusterBatch) Clusters() int {
	seen := make(map[string]struct{}, len(b.Labels))
	for _, l := range b.Labels {
		seen[l] = struct{}{}
	}
	return len(seen)
}

// Positives returns the positive pairs among the batch rows: rows sharing a
// cluster label, restricted to cross-source pairs when Sides is set.
func (b ClusterBatch) Positives() *pairs.Set {
	byLabel := make(map[string][]core.ID)
	for i, r := range b.Rows {
		byLabel[b.Labels[i]] = append(byLabel[b.Labels[i]], r.ID)
	}

	out := pairs.NewSet()
	for _, ids := range byLabel {
		for i, a := range ids {
			for _, c := range ids[i+1:] {
				if b.Sides != nil && b.Sides.Left.Contains(a) == b.Sides.Left.Contains(c) {
					continue
				}
				out.Add(a, c)
			}
		}
	}
	return out
}

// LabeledPair is one supervised pair of the Pairwise variant.
type LabeledPair struct {
	Pair     pairs.Pair
	Positive bool
	A, B     rowstore.Row
}

// PairBatch is a chunk of labeled pairs.
type PairBatch struct {
	Pairs []LabeledPair
}

// Len returns the number of pairs.
func (b PairBatch) Len() int { return len(b.Pairs) }

// IDs returns the distinct endpoint IDs in order of first appearance.
func (b PairBatch) IDs() []core.ID {
	seen := make(map[core.ID]struct{}, 2*len(b.Pairs))
	out := make([]core.ID, 0, 2*len(b.Pairs))
	for _, lp := range b.Pairs {
		for _, id := range [2]core.ID{lp.Pair.A, lp.Pair.B} {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	return out
}

func rowIDs(rows []rowstore.Row) []core.ID {
	out := make([]core.ID, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}
