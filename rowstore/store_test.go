package rowstore

import (
	"errors"
	"slices"
	"testing"

	"github.com/hupe1980/erbatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_InsertionOrder(t *testing.T) {
	s, err := FromRows(
		Row{ID: 30, Attrs: map[string]string{"name": "c"}},
		Row{ID: 10, Attrs: map[string]string{"name": "a"}},
		Row{ID: 20},
	)
	require.NoError(t, err)

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []core.ID{30, 10, 20}, s.IDs())
	assert.Equal(t, core.ID(10), s.At(1).ID)

	var seen []core.ID
	for r := range s.All() {
		seen = append(seen, r.ID)
	}
	assert.Equal(t, []core.ID{30, 10, 20}, seen)

	r, ok := s.Get(20)
	require.True(t, ok)
	assert.NotNil(t, r.Attrs)

	name, ok := s.At(0).Get("name")
	assert.True(t, ok)
	assert.Equal(t, "c", name)

	assert.True(t, s.Has(10))
	assert.False(t, s.Has(99))
	assert.Equal(t, []core.ID{10, 20, 30}, slices.Collect(s.IDSet().All()))
}

func TestStore_DuplicateID(t *testing.T) {
	_, err := FromRows(Row{ID: 1}, Row{ID: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrSchema))

	var se *core.SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, core.ID(1), se.ID)
}

func TestStore_AttrsAreCopied(t *testing.T) {
	attrs := map[string]string{"cluster": "1"}
	s, err := FromRows(Row{ID: 1, Attrs: attrs})
	require.NoError(t, err)

	attrs["cluster"] = "2"
	v, _ := s.At(0).Get("cluster")
	assert.Equal(t, "1", v)
}

func TestStore_Select(t *testing.T) {
	s, err := FromRows(Row{ID: 1}, Row{ID: 2}, Row{ID: 3})
	require.NoError(t, err)

	rows := s.Select([]core.ID{3, 99, 1})
	require.Len(t, rows, 2)
	assert.Equal(t, core.ID(3), rows[0].ID)
	assert.Equal(t, core.ID(1), rows[1].ID)
}

func TestStore_Nil(t *testing.T) {
	var s *Store
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.IDs())
	assert.True(t, s.IDSet().IsEmpty())
	_, ok := s.Get(1)
	assert.False(t, ok)
	for range s.All() {
		t.Fatal("nil store yielded a row")
	}
	assert.Equal(t, 0, Empty().Len())
}
