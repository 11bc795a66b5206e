// Package leakguard verifies that train, validation and test splits share
// no record IDs.
package leakguard

import (
	"github.com/hupe1980/erbatch/core"
	"github.com/hupe1980/erbatch/idset"
)

// Check compares the splits pairwise in the order train/valid,
// train/test, valid/test and reports the first overlap as a
// *core.DataLeakageError. Nil sets are treated as empty.
func Check(train, valid, test *idset.Set) error {
	sets := map[core.Split]*idset.Set{
		core.SplitTrain: train,
		core.SplitValid: valid,
		core.SplitTest:  test,
	}
	for _, pair := range [][2]core.Split{
		{core.SplitTrain, core.SplitValid},
		{core.SplitTrain, core.SplitTest},
		{core.SplitValid, core.SplitTest},
	} {
		if err := CheckPair(pair[0], sets[pair[0]], pair[1], sets[pair[1]]); err != nil {
			return err
		}
	}
	return nil
}

// CheckPair reports the overlap between two named ID sets.
func CheckPair(leftName core.Split, left *idset.Set, rightName core.Split, right *idset.Set) error {
	if !left.Intersects(right) {
		return nil
	}
	common := idset.Intersect(left, right)
	return &core.DataLeakageError{
		Left:  leftName,
		Right: rightName,
		IDs:   common.Head(core.MaxLeakSample),
		Total: common.Len(),
	}
}
