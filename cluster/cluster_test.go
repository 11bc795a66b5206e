package cluster

import (
	"errors"
	"testing"

	"github.com/hupe1980/erbatch/core"
	"github.com/hupe1980/erbatch/rowstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func store(t *testing.T, rows ...rowstore.Row) *rowstore.Store {
	t.Helper()
	s, err := rowstore.FromRows(rows...)
	require.NoError(t, err)
	return s
}

func row(id core.ID, attrs ...string) rowstore.Row {
	m := make(map[string]string, len(attrs)/2)
	for i := 0; i+1 < len(attrs); i += 2 {
		m[attrs[i]] = attrs[i+1]
	}
	return rowstore.Row{ID: id, Attrs: m}
}

func TestIndex(t *testing.T) {
	s := store(t,
		row(1, "cluster", "10"),
		row(2, "cluster", "10"),
		row(3, "cluster", "20"),
	)

	d, err := Index(s, "cluster")
	require.NoError(t, err)

	assert.Equal(t, []string{"10", "20"}, d.Labels())
	assert.Equal(t, []core.ID{1, 2}, d.Members("10"))
	assert.Equal(t, []core.ID{3}, d.Members("20"))
	assert.Equal(t, 3, d.Rows())
	assert.Equal(t, 2, d.Largest())
}

func TestIndex_MissingAttribute(t *testing.T) {
	s := store(t,
		row(1, "cluster", "10"),
		row(2, "name", "x"),
	)

	_, err := Index(s, "cluster")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrSchema))

	var se *core.SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "cluster", se.Attr)
	assert.Equal(t, core.ID(2), se.ID)
}

func TestIndex_Empty(t *testing.T) {
	d, err := Index(rowstore.Empty(), "cluster")
	require.NoError(t, err)
	assert.Empty(t, d)
	assert.Equal(t, 0, d.Largest())
}

func TestSplit(t *testing.T) {
	s := store(t,
		row(1, "__source", "left"),
		row(2, "__source", "left"),
		row(3, "__source", "right"),
		row(4, "__source", "other"),
	)

	sets, err := Split(s, "__source", "left")
	require.NoError(t, err)
	assert.Equal(t, []core.ID{1, 2}, sets.Left.Slice())
	assert.Equal(t, []core.ID{3, 4}, sets.Right.Slice())

	left, ok := sets.Side(1)
	assert.True(t, ok)
	assert.True(t, left)
	left, ok = sets.Side(4)
	assert.True(t, ok)
	assert.False(t, left)
	_, ok = sets.Side(9)
	assert.False(t, ok)
}

func TestSplit_Errors(t *testing.T) {
	t.Run("missing source attribute", func(t *testing.T) {
		s := store(t, row(1, "__source", "left"), row(2))
		_, err := Split(s, "__source", "left")
		assert.True(t, errors.Is(err, core.ErrSchema))
	})

	t.Run("empty left side", func(t *testing.T) {
		s := store(t, row(1, "__source", "a"), row(2, "__source", "b"))
		_, err := Split(s, "__source", "left")
		assert.True(t, errors.Is(err, core.ErrConfiguration))
	})

	t.Run("empty right side", func(t *testing.T) {
		s := store(t, row(1, "__source", "left"), row(2, "__source", "left"))
		_, err := Split(s, "__source", "left")
		assert.True(t, errors.Is(err, core.ErrConfiguration))
	})
}
