// Package sparserow_test exercises both Row implementations through a
// shared table, the way matrix.Dense's own tests are organized.
package sparserow_test

import (
	"testing"

	"github.com/katalvlaran/nlreason/sparserow"
	"github.com/stretchr/testify/require"
)

func newRows(size int) map[string]sparserow.Row {
	return map[string]sparserow.Row{
		"unsorted": sparserow.NewUnsortedArray(size), // dynamic-array row
		"linked":   sparserow.NewLinkedList(size),    // linked-list row
	}
}

func TestSetGetErase(t *testing.T) {
	for name, row := range newRows(5) {
		row := row
		t.Run(name, func(t *testing.T) {
			require.Equal(t, 0.0, row.Get(2)) // absent entry reads as zero
			require.Equal(t, 0, row.NNZ())    // empty row has no entries

			row.Set(2, 3.5)
			require.Equal(t, 3.5, row.Get(2))
			require.Equal(t, 1, row.NNZ())

			row.Set(2, 0) // writing zero erases
			require.Equal(t, 0.0, row.Get(2))
			require.Equal(t, 0, row.NNZ())

			row.Set(0, 1)
			row.Set(4, -2)
			require.Equal(t, 2, row.NNZ())
			row.Erase(0)
			require.Equal(t, 1, row.NNZ())
			require.Equal(t, 0.0, row.Get(0))
			require.Equal(t, -2.0, row.Get(4))
		})
	}
}

func TestToDense(t *testing.T) {
	for name, row := range newRows(4) {
		row := row
		t.Run(name, func(t *testing.T) {
			row.Set(1, 2)
			row.Set(3, -5)

			dense := make([]float64, 4)
			row.ToDense(dense)
			require.Equal(t, []float64{0, 2, 0, -5}, dense)
		})
	}
}

func TestClone(t *testing.T) {
	for name, row := range newRows(3) {
		row := row
		t.Run(name, func(t *testing.T) {
			row.Set(0, 1)
			clone := row.Clone()
			clone.Set(0, 99)

			require.Equal(t, 1.0, row.Get(0))   // original unaffected by clone mutation
			require.Equal(t, 99.0, clone.Get(0)) // clone holds its own mutation
		})
	}
}

func TestForEach(t *testing.T) {
	for name, row := range newRows(5) {
		row := row
		t.Run(name, func(t *testing.T) {
			row.Set(0, 1)
			row.Set(4, 2)

			seen := map[int]float64{}
			row.ForEach(func(index int, value float64) { seen[index] = value })
			require.Equal(t, map[int]float64{0: 1, 4: 2}, seen)
		})
	}
}

func TestMerge(t *testing.T) {
	for name, row := range newRows(3) {
		row := row
		t.Run(name, func(t *testing.T) {
			row.Set(0, 2)
			row.Set(1, 3)

			sparserow.Merge(row, row, 0, 1)
			require.Equal(t, 0.0, row.Get(0)) // source entry erased
			require.Equal(t, 5.0, row.Get(1)) // destination accumulated
			require.Equal(t, 1, row.NNZ())
		})
	}
}

func TestMergeToZeroErasesDestination(t *testing.T) {
	for name, row := range newRows(3) {
		row := row
		t.Run(name, func(t *testing.T) {
			row.Set(0, 2)
			row.Set(1, -2)

			sparserow.Merge(row, row, 0, 1)
			require.Equal(t, 0, row.NNZ()) // 2 + (-2) rounds to zero: entry deleted
		})
	}
}
