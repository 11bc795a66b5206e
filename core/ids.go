package core

// ID identifies a record within a single row store.
//
// IDs are unique per store and, once leakage has been checked, across the
// train/valid/test stores of a data module.
type ID uint64

// MaxID is the maximum possible value for an ID.
const MaxID = ^ID(0)

// Split names one of the three labeled partitions of a data module.
type Split string

const (
	SplitTrain Split = "train"
	SplitValid Split = "valid"
	SplitTest  Split = "test"
)

// Splits lists the partitions in the order they are checked and reported.
var Splits = [...]Split{SplitTrain, SplitValid, SplitTest}
