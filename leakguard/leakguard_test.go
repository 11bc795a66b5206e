package leakguard

import (
	"errors"
	"testing"

	"github.com/hupe1980/erbatch/core"
	"github.com/hupe1980/erbatch/idset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_Disjoint(t *testing.T) {
	err := Check(idset.Of(1, 2, 3), idset.Of(4, 5), idset.Of(6))
	assert.NoError(t, err)

	assert.NoError(t, Check(idset.Of(1), nil, idset.New()))
}

func TestCheck_TrainValidLeak(t *testing.T) {
	err := Check(idset.Of(1, 5), idset.Of(5, 6), idset.Of(7))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDataLeakage))

	var le *core.DataLeakageError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, core.SplitTrain, le.Left)
	assert.Equal(t, core.SplitValid, le.Right)
	assert.Equal(t, []core.ID{5}, le.IDs)
	assert.Equal(t, 1, le.Total)
	assert.Contains(t, err.Error(), "5")
}

func TestCheck_Order(t *testing.T) {
	// Every pair leaks; train/valid is reported first.
	err := Check(idset.Of(1, 2), idset.Of(1, 3), idset.Of(2, 3))
	var le *core.DataLeakageError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, core.SplitValid, le.Right)

	err = Check(idset.Of(1, 2), idset.Of(3), idset.Of(2, 3))
	require.ErrorAs(t, err, &le)
	assert.Equal(t, core.SplitTrain, le.Left)
	assert.Equal(t, core.SplitTest, le.Right)

	err = Check(idset.Of(1), idset.Of(3), idset.Of(3))
	require.ErrorAs(t, err, &le)
	assert.Equal(t, core.SplitValid, le.Left)
	assert.Equal(t, core.SplitTest, le.Right)
}

func TestCheck_SampleIsBounded(t *testing.T) {
	train, valid := idset.New(), idset.New()
	for i := core.ID(0); i < 100; i++ {
		train.Add(i)
		valid.Add(i)
	}

	err := Check(train, valid, nil)
	var le *core.DataLeakageError
	require.ErrorAs(t, err, &le)
	assert.Len(t, le.IDs, core.MaxLeakSample)
	assert.Equal(t, 100, le.Total)
	assert.Contains(t, err.Error(), "showing 20")
}

func TestCheckPair(t *testing.T) {
	require.NoError(t, CheckPair(core.SplitValid, idset.Of(1, 2), core.SplitTest, idset.Of(3)))

	err := CheckPair(core.SplitValid, idset.Of(1, 2, 3), core.SplitTest, idset.Of(3, 2))
	var leak *core.DataLeakageError
	require.ErrorAs(t, err, &leak)
	assert.Equal(t, core.SplitValid, leak.Left)
	assert.Equal(t, core.SplitTest, leak.Right)
	assert.Equal(t, []core.ID{2, 3}, leak.IDs)
	assert.Equal(t, 2, leak.Total)
}
