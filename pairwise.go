package erbatch

import (
	"iter"

	"github.com/hupe1980/erbatch/batch"
	"github.com/hupe1980/erbatch/core"
	"github.com/hupe1980/erbatch/idset"
	"github.com/hupe1980/erbatch/pairs"
	"github.com/hupe1980/erbatch/rowstore"
	"github.com/hupe1980/erbatch/util"
)

// PairwiseSets holds the curated supervision of a pairwise DataModule.
// Nil sets are treated as empty.
type PairwiseSets struct {
	TrainPos, TrainNeg *pairs.Set
	ValidPos, ValidNeg *pairs.Set
	TestPos, TestNeg   *pairs.Set
}

func (p PairwiseSets) get(split core.Split) (pos, neg *pairs.Set) {
	switch split {
	case core.SplitTrain:
		return p.TrainPos, p.TrainNeg
	case core.SplitValid:
		return p.ValidPos, p.ValidNeg
	case core.SplitTest:
		return p.TestPos, p.TestNeg
	default:
		return nil, nil
	}
}

// NewPairwise returns a DataModule that batches explicit positive and
// negative pairs drawn from a single row store.
//
// Every pair endpoint must be a row of rows. Records may appear in pairs of
// several splits; pass WithLeakCheck(true) to require the endpoints of the
// three splits to be pairwise disjoint.
func NewPairwise(rows *rowstore.Store, sets PairwiseSets, opts ...Option) (*DataModule, error) {
	rows = orEmpty(rows)
	for _, split := range core.Splits {
		pos, neg := sets.get(split)
		for _, s := range []*pairs.Set{pos, neg} {
			for id := range s.IDs().All() {
				if !rows.Has(id) {
					return nil, &SchemaError{
						Attr:   rowstore.DefaultIDAttr,
						ID:     id,
						HasID:  true,
						Split:  split,
						Reason: "pair endpoint is not a known row",
					}
				}
			}
		}
	}
	return newDataModule(ModePairwise, &pairwiseVariant{rows: rows, sets: sets}, opts)
}

type pairwiseVariant struct {
	rows *rowstore.Store
	sets PairwiseSets
}

func (v *pairwiseVariant) ids(split core.Split) *idset.Set {
	pos, neg := v.sets.get(split)
	return idset.Union(pos.IDs(), neg.IDs())
}

func (v *pairwiseVariant) buildPairSet(split core.Split) (*pairs.Set, error) {
	pos, _ := v.sets.get(split)
	return pairs.Union(pos), nil
}

func (v *pairwiseVariant) trainBatches(o options, epoch int) (iter.Seq[batch.Batch], int, error) {
	pos, neg := v.sets.get(core.SplitTrain)
	seed := util.EpochSeed(o.seed, epoch)
	pb, err := batch.NewPairBatcher(v.rows, pos, neg, o.batchSize, &seed)
	if err != nil {
		return nil, 0, err
	}
	return erase(pb.Batches()), pos.Len() + neg.Len(), nil
}

// Validation and test batches use the training batch size with shuffling
// disabled.
func (v *pairwiseVariant) evalBatches(o options, split core.Split) (iter.Seq[batch.Batch], int, error) {
	pos, neg := v.sets.get(split)
	pb, err := batch.NewPairBatcher(v.rows, pos, neg, o.batchSize, nil)
	if err != nil {
		return nil, 0, err
	}
	return erase(pb.Batches()), pb.Len(), nil
}
