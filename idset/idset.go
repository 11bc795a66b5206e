// Package idset provides compressed sets of record IDs.
//
// Sets are backed by 64-bit Roaring Bitmaps, so intersections between large
// splits (leak checks) and per-cluster membership tests stay cheap, and
// iteration is always in ascending ID order.
package idset

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/hupe1980/erbatch/core"
)

// Set is an ordered set of record IDs.
// It wraps the official roaring64 implementation.
type Set struct {
	rb *roaring64.Bitmap
}

// New creates a new empty set.
func New() *Set {
	return &Set{rb: roaring64.New()}
}

// Of creates a set holding ids.
func Of(ids ...core.ID) *Set {
	s := New()
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add adds an ID to the set.
func (s *Set) Add(id core.ID) {
	s.rb.Add(uint64(id))
}

// Contains checks if an ID is in the set.
func (s *Set) Contains(id core.ID) bool {
	if s == nil {
		return false
	}
	return s.rb.Contains(uint64(id))
}

// IsEmpty returns true if the set is empty.
func (s *Set) IsEmpty() bool {
	return s == nil || s.rb.IsEmpty()
}

// Len returns the number of IDs in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return int(s.rb.GetCardinality())
}

// Clone returns a deep copy of the set.
func (s *Set) Clone() *Set {
	return &Set{rb: s.rb.Clone()}
}

// All returns an iterator over the set in ascending order.
func (s *Set) All() iter.Seq[core.ID] {
	return func(yield func(core.ID) bool) {
		if s == nil {
			return
		}
		it := s.rb.Iterator()
		for it.HasNext() {
			if !yield(core.ID(it.Next())) {
				return
			}
		}
	}
}

// Slice returns the IDs in ascending order.
func (s *Set) Slice() []core.ID {
	out := make([]core.ID, 0, s.Len())
	for id := range s.All() {
		out = append(out, id)
	}
	return out
}

// Head returns at most n IDs in ascending order.
func (s *Set) Head(n int) []core.ID {
	out := make([]core.ID, 0, min(n, s.Len()))
	for id := range s.All() {
		if len(out) >= n {
			break
		}
		out = append(out, id)
	}
	return out
}

// Intersects reports whether s and other share at least one ID.
func (s *Set) Intersects(other *Set) bool {
	if s.IsEmpty() || other.IsEmpty() {
		return false
	}
	return s.rb.Intersects(other.rb)
}

// Equal reports whether both sets hold exactly the same IDs.
func (s *Set) Equal(other *Set) bool {
	if s.IsEmpty() || other.IsEmpty() {
		return s.IsEmpty() == other.IsEmpty()
	}
	return s.rb.Equals(other.rb)
}

// Intersect returns a new set with the IDs present in both a and b.
func Intersect(a, b *Set) *Set {
	if a.IsEmpty() || b.IsEmpty() {
		return New()
	}
	return &Set{rb: roaring64.And(a.rb, b.rb)}
}

// Union returns a new set with the IDs of every given set.
func Union(sets ...*Set) *Set {
	out := New()
	for _, s := range sets {
		if s.IsEmpty() {
			continue
		}
		out.rb.Or(s.rb)
	}
	return out
}
