package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks partial or contradictory mode configuration.
	ErrConfiguration = errors.New("configuration error")

	// ErrSchema marks a required attribute missing from (or malformed on) a row.
	ErrSchema = errors.New("schema error")

	// ErrDataLeakage marks record IDs shared between two splits.
	ErrDataLeakage = errors.New("data leakage")
)

// MaxLeakSample bounds the number of overlapping IDs carried by a DataLeakageError.
const MaxLeakSample = 20

// ConfigurationError indicates a misconfigured experiment detected at setup time.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ConfigurationError struct {
	Reason string
	cause  error
}

// NewConfigurationError returns a ConfigurationError with a formatted reason.
func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return e.cause }

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// WithCause attaches an underlying error.
func (e *ConfigurationError) WithCause(err error) *ConfigurationError {
	e.cause = err
	return e
}

// SchemaError indicates that a row lacks a required attribute or carries an
// unusable value for it.
type SchemaError struct {
	Attr   string
	ID     ID
	HasID  bool
	Split  Split
	Reason string
	cause  error
}

func (e *SchemaError) Error() string {
	var sb strings.Builder
	sb.WriteString("schema error: ")
	if e.Reason != "" {
		sb.WriteString(e.Reason)
	} else {
		fmt.Fprintf(&sb, "attribute %q is missing", e.Attr)
	}
	if e.HasID {
		fmt.Fprintf(&sb, " (row %d", e.ID)
		if e.Split != "" {
			fmt.Fprintf(&sb, " in %s", e.Split)
		}
		sb.WriteString(")")
	} else if e.Split != "" {
		fmt.Fprintf(&sb, " (in %s)", e.Split)
	}
	return sb.String()
}

func (e *SchemaError) Unwrap() error { return e.cause }

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// MissingAttribute returns a SchemaError for row id lacking attr.
func MissingAttribute(attr string, id ID) *SchemaError {
	return &SchemaError{Attr: attr, ID: id, HasID: true}
}

// InvalidAttribute returns a SchemaError for an unusable attribute value.
func InvalidAttribute(attr string, reason string, cause error) *SchemaError {
	return &SchemaError{Attr: attr, Reason: reason, cause: cause}
}

// DataLeakageError indicates that two splits share record IDs.
//
// IDs holds an ascending sample of at most MaxLeakSample overlapping IDs;
// Total is the full size of the intersection.
type DataLeakageError struct {
	Left  Split
	Right Split
	IDs   []ID
	Total int
}

func (e *DataLeakageError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = fmt.Sprintf("%d", id)
	}
	msg := fmt.Sprintf("data leakage: %d common IDs between %s and %s: [%s]",
		e.Total, e.Left, e.Right, strings.Join(ids, " "))
	if e.Total > len(e.IDs) {
		msg += fmt.Sprintf(" (showing %d)", len(e.IDs))
	}
	return msg
}

func (e *DataLeakageError) Is(target error) bool { return target == ErrDataLeakage }
