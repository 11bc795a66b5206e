package idset

import (
	"testing"

	"github.com/hupe1980/erbatch/core"
	"github.com/stretchr/testify/assert"
)

func TestSet_Basics(t *testing.T) {
	s := Of(5, 1, 3, 3)

	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Contains(3))
	assert.False(t, s.Contains(2))
	assert.Equal(t, []core.ID{1, 3, 5}, s.Slice())
	assert.Equal(t, []core.ID{1, 3}, s.Head(2))
	assert.Equal(t, []core.ID{1, 3, 5}, s.Head(10))
	assert.False(t, s.IsEmpty())

	c := s.Clone()
	c.Add(9)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 4, c.Len())
}

func TestSet_Nil(t *testing.T) {
	var s *Set
	assert.True(t, s.IsEmpty())
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Contains(1))
	assert.Empty(t, s.Slice())
	assert.False(t, s.Intersects(Of(1)))
}

func TestIntersectUnion(t *testing.T) {
	a := Of(1, 2, 3, 1<<40)
	b := Of(3, 4, 1<<40)

	i := Intersect(a, b)
	assert.Equal(t, []core.ID{3, 1 << 40}, i.Slice())
	assert.True(t, a.Intersects(b))
	assert.False(t, a.Intersects(Of(7)))
	assert.True(t, Intersect(a, New()).IsEmpty())

	u := Union(a, b, nil)
	assert.Equal(t, []core.ID{1, 2, 3, 4, 1 << 40}, u.Slice())

	// inputs are untouched
	assert.Equal(t, 4, a.Len())
	assert.Equal(t, 3, b.Len())
}

func TestSet_Equal(t *testing.T) {
	assert.True(t, Of(1, 2).Equal(Of(2, 1)))
	assert.False(t, Of(1, 2).Equal(Of(1)))
	assert.True(t, New().Equal(nil))
	assert.False(t, Of(1).Equal(New()))
}

func TestSet_AllEarlyStop(t *testing.T) {
	s := Of(1, 2, 3, 4)
	var seen []core.ID
	for id := range s.All() {
		seen = append(seen, id)
		if id == 2 {
			break
		}
	}
	assert.Equal(t, []core.ID{1, 2}, seen)
}
