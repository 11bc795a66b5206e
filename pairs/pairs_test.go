package pairs

import (
	"testing"

	"github.com/hupe1980/erbatch/cluster"
	"github.com/hupe1980/erbatch/core"
	"github.com/hupe1980/erbatch/idset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	s := NewSet()
	assert.True(t, s.Add(2, 1))
	assert.False(t, s.Add(1, 2), "reversed pair is the same element")
	assert.False(t, s.Add(3, 3), "self-pairs are rejected")
	assert.True(t, s.Add(1, 3))

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains(1, 2))
	assert.True(t, s.Contains(2, 1))
	assert.False(t, s.Contains(2, 3))
	assert.Equal(t, []Pair{{1, 2}, {1, 3}}, s.Sorted())
	assert.Equal(t, []core.ID{1, 2, 3}, s.IDs().Slice())

	var first []Pair
	for p := range s.All() {
		first = append(first, p)
		break
	}
	assert.Equal(t, []Pair{{1, 2}}, first)
}

func TestPair(t *testing.T) {
	p := Of(9, 4)
	assert.Equal(t, Pair{A: 4, B: 9}, p)
	assert.True(t, p.Has(9))
	assert.False(t, p.Has(5))
	assert.False(t, p.IsSelf())
	assert.True(t, Of(1, 1).IsSelf())
	assert.Equal(t, "(4,9)", p.String())
}

func TestSetEqualAndUnion(t *testing.T) {
	a := SetOf(Of(1, 2), Of(3, 4))
	b := SetOf(Of(4, 3), Of(2, 1))
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(SetOf(Of(1, 2))))
	assert.True(t, NewSet().Equal(nil))

	u := Union(a, SetOf(Of(5, 6)), nil)
	assert.Equal(t, 3, u.Len())
	assert.Equal(t, 2, a.Len(), "union does not mutate inputs")
}

func TestPositive_Scenario(t *testing.T) {
	d := cluster.Dict{
		"10": idset.Of(1, 2),
		"20": idset.Of(3),
	}

	got := Positive(d)
	assert.Equal(t, []Pair{{1, 2}}, got.Sorted())
}

func TestPositive_CombinationCount(t *testing.T) {
	for _, n := range []int{1, 2, 3, 7, 20} {
		members := idset.New()
		for i := range n {
			members.Add(core.ID(100 + i))
		}
		got := Positive(cluster.Dict{"c": members})

		require.Equal(t, n*(n-1)/2, got.Len(), "cluster size %d", n)
		for p := range got.All() {
			assert.False(t, p.IsSelf())
			assert.True(t, members.Contains(p.A))
			assert.True(t, members.Contains(p.B))
		}
	}
}

func TestPositiveLinkage_Scenario(t *testing.T) {
	d := cluster.Dict{
		"10": idset.Of(1, 3),
		"20": idset.Of(2, 3, 4),
	}
	sides := cluster.SourceSets{Left: idset.Of(1, 2), Right: idset.Of(3, 4)}

	got := PositiveLinkage(d, sides)
	assert.Equal(t, []Pair{{1, 3}, {2, 3}, {2, 4}}, got.Sorted())
}

func TestPositiveLinkage_CrossProductCount(t *testing.T) {
	left := idset.Of(1, 2, 3)
	right := idset.Of(10, 11)
	d := cluster.Dict{
		"mixed":     idset.Of(1, 2, 3, 10, 11),
		"left-only": idset.Of(4, 5),
	}
	sides := cluster.SourceSets{Left: idset.Union(left, idset.Of(4, 5)), Right: right}

	got := PositiveLinkage(d, sides)
	assert.Equal(t, 3*2, got.Len())
	for p := range got.All() {
		assert.NotEqual(t, sides.Left.Contains(p.A), sides.Left.Contains(p.B),
			"pair %s must span both sides", p)
	}
}
