package cluster

import (
	"github.com/hupe1980/erbatch/core"
	"github.com/hupe1980/erbatch/idset"
	"github.com/hupe1980/erbatch/rowstore"
)

// SourceSets partitions a store's IDs into the two linkage sources.
// Every ID of the store is on exactly one side.
type SourceSets struct {
	Left  *idset.Set
	Right *idset.Set
}

// Side reports whether id is on the left side.
func (s SourceSets) Side(id core.ID) (left bool, ok bool) {
	switch {
	case s.Left.Contains(id):
		return true, true
	case s.Right.Contains(id):
		return false, true
	default:
		return false, false
	}
}

// Split assigns rows whose sourceAttr equals leftValue to Left and all
// other rows to Right.
//
// A row without sourceAttr yields a SchemaError. An empty side yields a
// ConfigurationError since such a split has no cross-source pairs.
func Split(store *rowstore.Store, sourceAttr, leftValue string) (SourceSets, error) {
	sets := SourceSets{Left: idset.New(), Right: idset.New()}
	for row := range store.All() {
		v, ok := row.Get(sourceAttr)
		if !ok {
			return SourceSets{}, core.MissingAttribute(sourceAttr, row.ID)
		}
		if v == leftValue {
			sets.Left.Add(row.ID)
		} else {
			sets.Right.Add(row.ID)
		}
	}

	if sets.Left.IsEmpty() {
		return SourceSets{}, core.NewConfigurationError(
			"no rows with %s=%q: left source is empty", sourceAttr, leftValue)
	}
	if sets.Right.IsEmpty() {
		return SourceSets{}, core.NewConfigurationError(
			"all rows have %s=%q: right source is empty", sourceAttr, leftValue)
	}
	return sets, nil
}
