package erbatch

import (
	"errors"

	"github.com/hupe1980/erbatch/core"
)

// Error taxonomy, re-exported from core so callers need a single import.
type (
	// ConfigurationError indicates partial or contradictory mode configuration.
	ConfigurationError = core.ConfigurationError
	// SchemaError indicates a required attribute missing from a row.
	SchemaError = core.SchemaError
	// DataLeakageError indicates record IDs shared between two splits.
	DataLeakageError = core.DataLeakageError
)

var (
	// ErrConfiguration matches every *ConfigurationError.
	ErrConfiguration = core.ErrConfiguration
	// ErrSchema matches every *SchemaError.
	ErrSchema = core.ErrSchema
	// ErrDataLeakage matches every *DataLeakageError.
	ErrDataLeakage = core.ErrDataLeakage

	// ErrNotSetUp is returned when a stage's pair sets are requested before
	// Setup ran for that stage.
	ErrNotSetUp = errors.New("stage not set up")
)

// withSplit tags a SchemaError with the split it was raised on.
func withSplit(err error, split core.Split) error {
	var se *core.SchemaError
	if errors.As(err, &se) && se.Split == "" {
		se.Split = split
	}
	return err
}

// NewConfigurationError returns a ConfigurationError with a formatted reason.
func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return core.NewConfigurationError(format, args...)
}
