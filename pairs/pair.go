// Package pairs derives and stores unordered pairs of record IDs.
//
// Positive pairs are the supervision signal for training and the ground
// truth for evaluation. A Set never holds a self-pair, and (a, b) and
// (b, a) are the same element.
package pairs

import (
	"cmp"
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/hupe1980/erbatch/core"
	"github.com/hupe1980/erbatch/idset"
)

// Pair is an unordered pair of IDs stored with A < B.
type Pair struct {
	A, B core.ID
}

// Of returns the canonical pair of a and b.
func Of(a, b core.ID) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// IsSelf reports whether both endpoints are the same ID.
func (p Pair) IsSelf() bool {
	return p.A == p.B
}

// Has reports whether id is an endpoint of p.
func (p Pair) Has(id core.ID) bool {
	return p.A == id || p.B == id
}

func (p Pair) String() string {
	return fmt.Sprintf("(%d,%d)", p.A, p.B)
}

// Compare orders pairs by A, then B.
func Compare(x, y Pair) int {
	if c := cmp.Compare(x.A, y.A); c != 0 {
		return c
	}
	return cmp.Compare(x.B, y.B)
}

// Set is a set of unordered pairs.
type Set struct {
	m map[Pair]struct{}
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{m: make(map[Pair]struct{})}
}

// SetOf builds a set from pairs. Self-pairs are dropped.
func SetOf(ps ...Pair) *Set {
	s := NewSet()
	for _, p := range ps {
		s.Add(p.A, p.B)
	}
	return s
}

// Add inserts the pair {a, b}. It returns false for self-pairs and for
// pairs already present.
func (s *Set) Add(a, b core.ID) bool {
	if a == b {
		return false
	}
	p := Of(a, b)
	if _, ok := s.m[p]; ok {
		return false
	}
	s.m[p] = struct{}{}
	return true
}

// Contains reports whether {a, b} is in the set.
func (s *Set) Contains(a, b core.ID) bool {
	if s == nil {
		return false
	}
	_, ok := s.m[Of(a, b)]
	return ok
}

// Len returns the number of pairs.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.m)
}

// Sorted returns the pairs in ascending order.
func (s *Set) Sorted() []Pair {
	if s == nil {
		return nil
	}
	return slices.SortedFunc(maps.Keys(s.m), Compare)
}

// All iterates the pairs in ascending order.
func (s *Set) All() iter.Seq[Pair] {
	return func(yield func(Pair) bool) {
		for _, p := range s.Sorted() {
			if !yield(p) {
				return
			}
		}
	}
}

// IDs returns every ID that is an endpoint of some pair.
func (s *Set) IDs() *idset.Set {
	ids := idset.New()
	if s == nil {
		return ids
	}
	for p := range s.m {
		ids.Add(p.A)
		ids.Add(p.B)
	}
	return ids
}

// Equal reports whether both sets hold the same pairs.
func (s *Set) Equal(other *Set) bool {
	if s.Len() != other.Len() {
		return false
	}
	if s.Len() == 0 {
		return true
	}
	for p := range s.m {
		if _, ok := other.m[p]; !ok {
			return false
		}
	}
	return true
}

// Union returns a new set holding the pairs of all given sets.
func Union(sets ...*Set) *Set {
	out := NewSet()
	for _, s := range sets {
		if s == nil {
			continue
		}
		for p := range s.m {
			out.m[p] = struct{}{}
		}
	}
	return out
}
