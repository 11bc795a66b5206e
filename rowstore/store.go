// Package rowstore holds labeled records keyed by integer ID.
//
// A Store preserves insertion order and guarantees that IDs are unique
// within the store. Stores are built once by a loader and are read-only
// afterwards; nothing in this module mutates a Store it did not build.
package rowstore

import (
	"iter"
	"maps"

	"github.com/hupe1980/erbatch/core"
	"github.com/hupe1980/erbatch/idset"
)

// Row is a single record: an ID plus named attribute values.
//
// Attrs must not be modified after the row has been added to a Store.
type Row struct {
	ID    core.ID
	Attrs map[string]string
}

// Get returns the value of attr and whether it is present.
func (r Row) Get(attr string) (string, bool) {
	v, ok := r.Attrs[attr]
	return v, ok
}

// Store is an insertion-ordered mapping from ID to Row.
type Store struct {
	ids  []core.ID
	rows map[core.ID]Row
}

// Builder accumulates rows into a Store.
type Builder struct {
	s *Store
}

// NewBuilder creates a builder with room for n rows.
func NewBuilder(n int) *Builder {
	return &Builder{s: &Store{
		ids:  make([]core.ID, 0, n),
		rows: make(map[core.ID]Row, n),
	}}
}

// Add appends a row. The attribute map is copied.
// Adding an ID twice yields a SchemaError.
func (b *Builder) Add(r Row) error {
	if _, dup := b.s.rows[r.ID]; dup {
		return &core.SchemaError{Attr: "id", ID: r.ID, HasID: true, Reason: "duplicate id"}
	}
	r.Attrs = maps.Clone(r.Attrs)
	if r.Attrs == nil {
		r.Attrs = map[string]string{}
	}
	b.s.ids = append(b.s.ids, r.ID)
	b.s.rows[r.ID] = r
	return nil
}

// Build returns the store. The builder must not be used afterwards.
func (b *Builder) Build() *Store {
	s := b.s
	b.s = nil
	return s
}

// FromRows builds a store from rows in the given order.
func FromRows(rows ...Row) (*Store, error) {
	b := NewBuilder(len(rows))
	for _, r := range rows {
		if err := b.Add(r); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

// Empty returns a store without rows.
func Empty() *Store {
	return NewBuilder(0).Build()
}

// Len returns the number of rows.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// Get returns the row with the given ID.
func (s *Store) Get(id core.ID) (Row, bool) {
	if s == nil {
		return Row{}, false
	}
	r, ok := s.rows[id]
	return r, ok
}

// Has reports whether id is present.
func (s *Store) Has(id core.ID) bool {
	_, ok := s.Get(id)
	return ok
}

// At returns the i-th row in insertion order.
func (s *Store) At(i int) Row {
	return s.rows[s.ids[i]]
}

// IDs returns a copy of the IDs in insertion order.
func (s *Store) IDs() []core.ID {
	if s == nil {
		return nil
	}
	out := make([]core.ID, len(s.ids))
	copy(out, s.ids)
	return out
}

// IDSet returns the store's IDs as a set.
func (s *Store) IDSet() *idset.Set {
	set := idset.New()
	if s == nil {
		return set
	}
	for _, id := range s.ids {
		set.Add(id)
	}
	return set
}

// All iterates rows in insertion order.
func (s *Store) All() iter.Seq[Row] {
	return func(yield func(Row) bool) {
		if s == nil {
			return
		}
		for _, id := range s.ids {
			if !yield(s.rows[id]) {
				return
			}
		}
	}
}

// Select returns the rows for ids, in the order given.
// Unknown IDs are skipped.
func (s *Store) Select(ids []core.ID) []Row {
	out := make([]Row, 0, len(ids))
	for _, id := range ids {
		if r, ok := s.Get(id); ok {
			out = append(out, r)
		}
	}
	return out
}
