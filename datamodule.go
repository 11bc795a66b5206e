package erbatch

import (
	"context"
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/hupe1980/erbatch/batch"
	"github.com/hupe1980/erbatch/core"
	"github.com/hupe1980/erbatch/idset"
	"github.com/hupe1980/erbatch/leakguard"
	"github.com/hupe1980/erbatch/loader"
	"github.com/hupe1980/erbatch/pairs"
	"github.com/hupe1980/erbatch/rowstore"
	"github.com/hupe1980/erbatch/util"
)

// variant is the mode-specific part of a DataModule.
type variant interface {
	// ids returns the record IDs a split covers, for the leak check.
	ids(split core.Split) *idset.Set
	// buildPairSet derives the positive pair set of split.
	buildPairSet(split core.Split) (*pairs.Set, error)
	// trainBatches returns the batch sequence of one training epoch and
	// the number of units (clusters or pairs) it draws from.
	trainBatches(o options, epoch int) (iter.Seq[batch.Batch], int, error)
	// evalBatches returns the unshuffled batch sequence of split and its
	// batch count.
	evalBatches(o options, split core.Split) (iter.Seq[batch.Batch], int, error)
}

// DataModule owns the lifecycle of one experiment's data: it checks the
// splits for leakage at construction, builds positive pair sets per stage
// and hands out train, validation and test loaders.
//
// A DataModule is safe for concurrent use. Pair sets are replaced wholesale
// on every Setup and never mutated.
type DataModule struct {
	mode   Mode
	v      variant
	opts   options
	logger *Logger

	mu       sync.RWMutex
	pairSets map[core.Split]*pairs.Set
}

func newDataModule(mode Mode, v variant, opts []Option) (*DataModule, error) {
	o := applyOptions(opts)
	if err := o.validate(); err != nil {
		return nil, err
	}

	dm := &DataModule{
		mode:     mode,
		v:        v,
		opts:     o,
		logger:   o.logger.WithMode(mode),
		pairSets: make(map[core.Split]*pairs.Set, len(core.Splits)),
	}

	if o.leakCheckEnabled(mode) {
		err := leakguard.Check(v.ids(core.SplitTrain), v.ids(core.SplitValid), v.ids(core.SplitTest))
		dm.logger.LogLeakCheck(context.Background(), err)
		if err != nil {
			return nil, err
		}
	}
	return dm, nil
}

// Mode returns the relational mode.
func (dm *DataModule) Mode() Mode {
	return dm.mode
}

// Setup builds the positive pair sets of the stage's splits: StageFit
// builds train and validation, StageTest builds test. Re-entering a stage
// replaces its pair sets.
func (dm *DataModule) Setup(ctx context.Context, stage Stage) error {
	start := time.Now()
	splits := stage.Splits()
	if splits == nil {
		return NewConfigurationError("unknown stage %q", string(stage))
	}

	built := make(map[core.Split]*pairs.Set, len(splits))
	total := 0
	for _, split := range splits {
		if err := ctx.Err(); err != nil {
			return err
		}
		ps, err := dm.v.buildPairSet(split)
		if err != nil {
			err = withSplit(err, split)
			dm.opts.metricsCollector.RecordSetup(stage, 0, time.Since(start), err)
			dm.logger.WithSplit(split).LogSetup(ctx, stage, time.Since(start), err)
			return err
		}
		dm.logger.LogPairCount(ctx, split, ps.Len())
		built[split] = ps
		total += ps.Len()
	}

	dm.mu.Lock()
	for split, ps := range built {
		dm.pairSets[split] = ps
	}
	dm.mu.Unlock()

	dm.opts.metricsCollector.RecordSetup(stage, total, time.Since(start), nil)
	dm.logger.LogSetup(ctx, stage, time.Since(start), nil)
	return nil
}

// PositivePairs returns the positive pair set built for split by the last
// Setup covering it. The set must not be modified.
func (dm *DataModule) PositivePairs(split core.Split) (*pairs.Set, error) {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	ps, ok := dm.pairSets[split]
	if !ok {
		return nil, fmt.Errorf("%w: no pair set for %s", ErrNotSetUp, split)
	}
	return ps, nil
}

// TrainBatches returns the training batches of epoch. The same epoch always
// yields the same batches; a negative epoch uses the base seed.
func (dm *DataModule) TrainBatches(epoch int) (iter.Seq[batch.Batch], error) {
	seq, units, err := dm.v.trainBatches(dm.opts, epoch)
	if err != nil {
		return nil, withSplit(err, core.SplitTrain)
	}
	dm.logger.LogEpoch(context.Background(), epoch, util.EpochSeed(dm.opts.seed, epoch), units)
	return dm.instrument(core.SplitTrain, seq), nil
}

// ValidBatches returns the unshuffled validation batches.
func (dm *DataModule) ValidBatches() (iter.Seq[batch.Batch], error) {
	seq, _, err := dm.evalBatches(core.SplitValid)
	return seq, err
}

// TestBatches returns the unshuffled test batches.
func (dm *DataModule) TestBatches() (iter.Seq[batch.Batch], error) {
	seq, _, err := dm.evalBatches(core.SplitTest)
	return seq, err
}

func (dm *DataModule) evalBatches(split core.Split) (iter.Seq[batch.Batch], int, error) {
	seq, n, err := dm.v.evalBatches(dm.opts, split)
	if err != nil {
		return nil, 0, withSplit(err, split)
	}
	return dm.instrument(split, seq), n, nil
}

// TrainLoader returns the training loader of epoch.
func (dm *DataModule) TrainLoader(epoch int) (*loader.DataLoader[batch.Batch], error) {
	seq, err := dm.TrainBatches(epoch)
	if err != nil {
		return nil, err
	}
	return loader.New(seq, -1, dm.opts.trainLoader), nil
}

// ValidLoader returns the validation loader.
func (dm *DataModule) ValidLoader() (*loader.DataLoader[batch.Batch], error) {
	seq, n, err := dm.evalBatches(core.SplitValid)
	if err != nil {
		return nil, err
	}
	return loader.New(seq, n, dm.opts.evalLoader), nil
}

// TestLoader returns the test loader.
func (dm *DataModule) TestLoader() (*loader.DataLoader[batch.Batch], error) {
	seq, n, err := dm.evalBatches(core.SplitTest)
	if err != nil {
		return nil, err
	}
	return loader.New(seq, n, dm.opts.evalLoader), nil
}

func (dm *DataModule) instrument(split core.Split, seq iter.Seq[batch.Batch]) iter.Seq[batch.Batch] {
	mc := dm.opts.metricsCollector
	return func(yield func(batch.Batch) bool) {
		for b := range seq {
			mc.RecordBatch(split, b.Len())
			if !yield(b) {
				return
			}
		}
	}
}

// erase widens a typed batch sequence to the Batch interface.
func erase[T batch.Batch](seq iter.Seq[T]) iter.Seq[batch.Batch] {
	return func(yield func(batch.Batch) bool) {
		for b := range seq {
			if !yield(b) {
				return
			}
		}
	}
}

func orEmpty(s *rowstore.Store) *rowstore.Store {
	if s == nil {
		return rowstore.Empty()
	}
	return s
}
