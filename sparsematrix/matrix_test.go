package sparsematrix_test

import (
	"testing"

	"github.com/katalvlaran/nlreason/sparserow"
	"github.com/katalvlaran/nlreason/sparsematrix"
	"github.com/stretchr/testify/require"
)

func newMatrix(cols, rows int) *sparsematrix.Matrix {
	m := sparsematrix.New(cols, func(size int) sparserow.Row { return sparserow.NewUnsortedArray(size) })
	for i := 0; i < rows; i++ {
		m.AddLastRow()
	}
	return m
}

func TestGetSetOutOfRange(t *testing.T) {
	m := newMatrix(3, 2)

	_, err := m.Get(5, 0)
	require.ErrorIs(t, err, sparsematrix.ErrRowOutOfRange)

	_, err = m.Get(0, 5)
	require.ErrorIs(t, err, sparsematrix.ErrColumnOutOfRange)

	require.NoError(t, m.Set(1, 2, 4))
	v, err := m.Get(1, 2)
	require.NoError(t, err)
	require.Equal(t, 4.0, v)
}

func TestAddLastColumnPreservesExistingEntries(t *testing.T) {
	m := newMatrix(2, 2)
	require.NoError(t, m.Set(0, 1, 7))

	m.AddLastColumn()
	require.Equal(t, 3, m.Cols())

	v, err := m.Get(0, 1)
	require.NoError(t, err)
	require.Equal(t, 7.0, v) // surviving entry kept its original column

	v, err = m.Get(0, 2)
	require.NoError(t, err)
	require.Equal(t, 0.0, v) // new column starts empty
}

func TestAddEmptyColumnShiftsEntries(t *testing.T) {
	m := newMatrix(3, 1)
	require.NoError(t, m.Set(0, 0, 1))
	require.NoError(t, m.Set(0, 2, 3))

	m.AddEmptyColumn(1) // insert before column 1

	v, _ := m.Get(0, 0)
	require.Equal(t, 1.0, v) // column 0 untouched
	v, _ = m.Get(0, 1)
	require.Equal(t, 0.0, v) // newly inserted column is empty
	v, _ = m.Get(0, 3)
	require.Equal(t, 3.0, v) // original column 2 shifted to 3
}

func TestNNZAndCountByRowAndColumn(t *testing.T) {
	m := newMatrix(2, 2)
	require.NoError(t, m.Set(0, 0, 1))
	require.NoError(t, m.Set(0, 1, 2))
	require.NoError(t, m.Set(1, 1, 3))

	require.Equal(t, 3, m.NNZ())

	byRow, byCol := m.CountByRowAndColumn()
	require.Equal(t, []int{2, 1}, byRow)
	require.Equal(t, []int{1, 2}, byCol)
}

func TestToDense(t *testing.T) {
	m := newMatrix(2, 2)
	require.NoError(t, m.Set(0, 1, 5))
	require.NoError(t, m.Set(1, 0, -2))

	require.Equal(t, []float64{0, 5, -2, 0}, m.ToDense())
}

func TestTransposeInto(t *testing.T) {
	m := newMatrix(3, 2)
	require.NoError(t, m.Set(0, 2, 9))
	require.NoError(t, m.Set(1, 0, 4))

	dst := sparsematrix.New(2, func(size int) sparserow.Row { return sparserow.NewUnsortedArray(size) })
	for i := 0; i < 3; i++ {
		dst.AddLastRow()
	}

	require.NoError(t, m.TransposeInto(dst))

	v, _ := dst.Get(2, 0)
	require.Equal(t, 9.0, v)
	v, _ = dst.Get(0, 1)
	require.Equal(t, 4.0, v)
}

func TestTransposeIntoDimensionMismatch(t *testing.T) {
	m := newMatrix(3, 2)
	dst := newMatrix(1, 1)
	require.ErrorIs(t, m.TransposeInto(dst), sparsematrix.ErrDimensionMismatch)
}
