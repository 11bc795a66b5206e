// Package codec centralizes the JSON encoding used for exported pair sets
// and CLI reports.
//
// Exports are plain JSON, so files written with one codec decode with any
// other; the choice only affects speed.
package codec

import (
	"encoding/json"
	"fmt"

	gojson "github.com/goccy/go-json"
)

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Default is the codec used when none is given.
var Default Codec = GoJSON{}

// JSON is the encoding/json codec.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (JSON) Name() string                       { return "json" }

// GoJSON is backed by github.com/goccy/go-json. Map keys are written in
// sorted order, matching JSON, unless Unordered is set.
type GoJSON struct {
	Unordered bool
}

func (c GoJSON) Marshal(v any) ([]byte, error) {
	if c.Unordered {
		return gojson.MarshalWithOption(v, gojson.UnorderedMap())
	}
	return gojson.Marshal(v)
}

// Unmarshal decodes data into v. v must not retain data after the call.
func (GoJSON) Unmarshal(data []byte, v any) error {
	return gojson.UnmarshalNoEscape(data, v)
}

func (c GoJSON) Name() string {
	if c.Unordered {
		return "go-json-unordered"
	}
	return "go-json"
}

// ByName returns a built-in codec by its name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	case "go-json-unordered":
		return GoJSON{Unordered: true}, true
	default:
		return nil, false
	}
}

// MustMarshal encodes v with c, or Default when c is nil, and panics on
// failure. Intended for tests and benchmarks.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
