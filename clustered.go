package erbatch

import (
	"iter"

	"github.com/hupe1980/erbatch/batch"
	"github.com/hupe1980/erbatch/cluster"
	"github.com/hupe1980/erbatch/core"
	"github.com/hupe1980/erbatch/idset"
	"github.com/hupe1980/erbatch/pairs"
	"github.com/hupe1980/erbatch/rowstore"
)

// Attributes names the row attributes a clustered DataModule reads.
type Attributes struct {
	// Cluster holds the ground-truth duplicate group label. Required.
	Cluster string

	// Source and LeftSource select record linkage. Both or neither must be
	// set; rows whose Source equals LeftSource form the left side.
	Source     string
	LeftSource string
}

// IsLinkage reports whether the attributes select record linkage.
func (a Attributes) IsLinkage() bool {
	return a.Source != "" && a.LeftSource != ""
}

func (a Attributes) validate() error {
	if a.Cluster == "" {
		return NewConfigurationError("cluster attribute is required")
	}
	if (a.Source == "") != (a.LeftSource == "") {
		return NewConfigurationError(
			"record linkage needs both source attribute and left source, got source=%q left=%q",
			a.Source, a.LeftSource)
	}
	return nil
}

// New returns a deduplication or, when attrs names a source, a linkage
// DataModule over the three splits.
func New(splits rowstore.Splits, attrs Attributes, opts ...Option) (*DataModule, error) {
	if err := attrs.validate(); err != nil {
		return nil, err
	}

	v := &clusteredVariant{
		splits: rowstore.Splits{
			Train: orEmpty(splits.Train),
			Valid: orEmpty(splits.Valid),
			Test:  orEmpty(splits.Test),
		},
		attrs: attrs,
	}
	mode := ModeDeduplication
	if attrs.IsLinkage() {
		mode = ModeLinkage
	}
	return newDataModule(mode, v, opts)
}

// NewDeduplication returns a DataModule in which duplicates may appear
// anywhere within each split.
func NewDeduplication(train, valid, test *rowstore.Store, clusterAttr string, opts ...Option) (*DataModule, error) {
	return New(rowstore.Splits{Train: train, Valid: valid, Test: test},
		Attributes{Cluster: clusterAttr}, opts...)
}

// NewLinkage returns a DataModule in which duplicates must span the left
// source (rows with sourceAttr == leftSource) and the right source.
func NewLinkage(train, valid, test *rowstore.Store, clusterAttr, sourceAttr, leftSource string, opts ...Option) (*DataModule, error) {
	attrs := Attributes{Cluster: clusterAttr, Source: sourceAttr, LeftSource: leftSource}
	if !attrs.IsLinkage() {
		return nil, NewConfigurationError(
			"record linkage needs both source attribute and left source, got source=%q left=%q",
			sourceAttr, leftSource)
	}
	return New(rowstore.Splits{Train: train, Valid: valid, Test: test}, attrs, opts...)
}

// clusteredVariant serves deduplication and linkage mode.
type clusteredVariant struct {
	splits rowstore.Splits
	attrs  Attributes
}

func (v *clusteredVariant) ids(split core.Split) *idset.Set {
	return v.splits.Get(split).IDSet()
}

func (v *clusteredVariant) derive(split core.Split) (cluster.Dict, *cluster.SourceSets, error) {
	store := v.splits.Get(split)
	d, err := cluster.Index(store, v.attrs.Cluster)
	if err != nil {
		return nil, nil, err
	}
	if !v.attrs.IsLinkage() {
		return d, nil, nil
	}
	sides, err := cluster.Split(store, v.attrs.Source, v.attrs.LeftSource)
	if err != nil {
		return nil, nil, err
	}
	return d, &sides, nil
}

func (v *clusteredVariant) buildPairSet(split core.Split) (*pairs.Set, error) {
	d, sides, err := v.derive(split)
	if err != nil {
		return nil, err
	}
	if sides != nil {
		return pairs.PositiveLinkage(d, *sides), nil
	}
	return pairs.Positive(d), nil
}

func (v *clusteredVariant) trainBatches(o options, epoch int) (iter.Seq[batch.Batch], int, error) {
	d, sides, err := v.derive(core.SplitTrain)
	if err != nil {
		return nil, 0, err
	}
	c, err := batch.NewComposer(v.splits.Train, d, batch.ComposerConfig{
		BatchSize:      o.batchSize,
		MaxClusterSize: o.clusterCap(),
		Seed:           o.seed,
		Epoch:          epoch,
		Sides:          sides,
	})
	if err != nil {
		return nil, 0, err
	}
	return erase(c.Batches()), len(d), nil
}

func (v *clusteredVariant) evalBatches(o options, split core.Split) (iter.Seq[batch.Batch], int, error) {
	e, err := batch.NewEval(v.splits.Get(split), o.evalBatchSize)
	if err != nil {
		return nil, 0, err
	}
	return erase(e.Batches()), e.Len(), nil
}
