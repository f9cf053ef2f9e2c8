package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func column(value uint8) gocv.Mat {
	return GrayFrame(4, 1, func(int) uint8 { return value })
}

func TestResultTableStoreAndFail(t *testing.T) {
	table := NewResultTable(3)
	defer table.Close()

	require.NoError(t, table.Store(0, column(10)))
	require.NoError(t, table.Fail(1, ErrDimensionMismatch))
	require.NoError(t, table.Store(2, column(30)))

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, 3, table.Completed())

	got, err := table.Column(2)
	require.NoError(t, err)
	assert.Equal(t, uint8(30), got.GetUCharAt(0, 0))

	_, err = table.Column(1)
	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, 1, batchErr.ID)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestResultTableRejectsSecondWrite(t *testing.T) {
	table := NewResultTable(2)
	defer table.Close()

	require.NoError(t, table.Store(0, column(1)))

	second := column(2)
	defer second.Close()
	assert.ErrorIs(t, table.Store(0, second), ErrSlotWritten)
	assert.ErrorIs(t, table.Fail(0, errors.New("late")), ErrSlotWritten)

	assert.Equal(t, 1, table.Completed())
	assert.Equal(t, 3, table.Writes(0))

	got, err := table.Column(0)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), got.GetUCharAt(0, 0), "first write wins")
}

func TestResultTableRejectsOutOfRange(t *testing.T) {
	table := NewResultTable(2)
	defer table.Close()

	extra := column(1)
	defer extra.Close()
	assert.Error(t, table.Store(2, extra))
	assert.Error(t, table.Store(-1, extra))
	assert.Equal(t, 0, table.Completed())
}

func TestResultTableErrReportsLowestFailure(t *testing.T) {
	table := NewResultTable(5)
	defer table.Close()

	for _, id := range []int{0, 1, 3} {
		require.NoError(t, table.Store(id, column(uint8(id))))
	}
	require.NoError(t, table.Fail(4, ErrReductionFailure))
	require.NoError(t, table.Fail(2, ErrDimensionMismatch))

	var batchErr *BatchError
	require.ErrorAs(t, table.Err(), &batchErr)
	assert.Equal(t, 2, batchErr.ID)

	failures := table.Failures()
	require.Len(t, failures, 2)
	assert.Equal(t, 2, failures[0].ID)
	assert.Equal(t, 4, failures[1].ID)
}

func TestResultTableEmptySlotIsAnError(t *testing.T) {
	table := NewResultTable(2)
	defer table.Close()

	require.NoError(t, table.Store(0, column(1)))
	assert.ErrorIs(t, table.Err(), ErrReductionFailure)
}
