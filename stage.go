package erbatch

import (
	"fmt"

	"github.com/hupe1980/erbatch/core"
)

// Stage names a lifecycle phase of a DataModule.
type Stage string

const (
	// StageFit builds the train and validation pair sets.
	StageFit Stage = "fit"
	// StageValidate builds the validation pair set.
	StageValidate Stage = "validate"
	// StageTest builds the test pair set.
	StageTest Stage = "test"
	// StageAll builds every pair set.
	StageAll Stage = ""
)

// ParseStage parses a stage name. The empty string selects StageAll.
func ParseStage(s string) (Stage, error) {
	switch st := Stage(s); st {
	case StageFit, StageValidate, StageTest, StageAll:
		return st, nil
	default:
		return "", NewConfigurationError("unknown stage %q", s)
	}
}

// Splits returns the splits whose pair sets the stage builds.
func (s Stage) Splits() []core.Split {
	switch s {
	case StageFit:
		return []core.Split{core.SplitTrain, core.SplitValid}
	case StageValidate:
		return []core.Split{core.SplitValid}
	case StageTest:
		return []core.Split{core.SplitTest}
	case StageAll:
		return core.Splits[:]
	default:
		return nil
	}
}

func (s Stage) String() string {
	if s == StageAll {
		return "all"
	}
	return string(s)
}

// Mode is the relational mode of a DataModule.
type Mode int

const (
	// ModeDeduplication finds duplicates anywhere within one record set.
	ModeDeduplication Mode = iota
	// ModeLinkage only pairs records across the left and right source.
	ModeLinkage
	// ModePairwise batches explicitly supplied positive and negative pairs.
	ModePairwise
)

func (m Mode) String() string {
	switch m {
	case ModeDeduplication:
		return "deduplication"
	case ModeLinkage:
		return "linkage"
	case ModePairwise:
		return "pairwise"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}
