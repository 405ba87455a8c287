// Package sparsematrix provides a row-major sparse matrix built on top
// of package sparserow.
//
// What & Why:
//
//	The layer algebra (package layer) and the piecewise-linear constraint
//	transforms (package constraint) both need a coefficient matrix that is
//	overwhelmingly zero (a single ReLU's weighted-sum predecessor touches
//	a handful of variables out of thousands). A dense matrix.Dense would
//	waste O(rows*cols) memory on a problem whose natural size is
//	O(nonzeros). Matrix stores one sparserow.Row per row and forwards to
//	it for per-row operations.
//
// Grounded on the original's row-major sparse-matrix counterpart to
// SparseUnsortedArray (construction by AddLastRow/AddLastColumn/
// AddEmptyColumn, countElements-style nonzero accounting), re-expressed
// atop sparserow.Row the way package matrix's Dense is expressed atop a
// flat []float64.
//
// Complexity:
//
//	Rows() and Cols() run in O(1).
//	Get() and Set() run in whatever the row's complexity is (O(1)
//	average for LinkedList-backed rows, O(n) for UnsortedArray-backed
//	rows).
//	TransposeInto() runs in O(nnz).
package sparsematrix

import "github.com/katalvlaran/nlreason/sparserow"

// RowFactory builds a fresh, empty Row of the given logical size. Matrix
// is parameterized by it instead of hardcoding a row type, so callers
// pick UnsortedArray (construction-heavy, few mutations after) or
// LinkedList (frequent erase-during-scan, as constraint elimination
// does).
type RowFactory func(size int) sparserow.Row

// Matrix is a row-major sparse matrix: a slice of sparserow.Row, one per
// matrix row, each of logical size equal to the column count.
type Matrix struct {
	cols    int
	rows    []sparserow.Row
	factory RowFactory
}

// New allocates an empty (zero-row) matrix with the given column count
// and row factory.
func New(cols int, factory RowFactory) *Matrix {
	return &Matrix{cols: cols, factory: factory}
}

// Rows returns the current row count.
func (m *Matrix) Rows() int { return len(m.rows) }

// Cols returns the column count shared by every row.
func (m *Matrix) Cols() int { return m.cols }

// AddLastRow appends a new, empty row at the bottom of the matrix.
func (m *Matrix) AddLastRow() {
	m.rows = append(m.rows, m.factory(m.cols))
}

// AddLastColumn grows every existing row's logical size by one,
// appending a new all-zero column at the right edge. Row has no resize
// operation, so each row is rebuilt at the new size and its entries
// copied across.
func (m *Matrix) AddLastColumn() {
	m.cols++
	for i, row := range m.rows {
		nr := m.factory(m.cols)
		row.ForEach(func(col int, v float64) { nr.Set(col, v) })
		m.rows[i] = nr
	}
}

// AddEmptyColumn inserts a new all-zero column at the given index,
// shifting every column at or beyond index one place to the right.
// Existing entries are preserved under their shifted indices.
func (m *Matrix) AddEmptyColumn(index int) {
	if index < 0 || index > m.cols {
		return
	}
	m.cols++
	shifted := make([]sparserow.Row, len(m.rows))
	for i, row := range m.rows {
		nr := m.factory(m.cols)
		row.ForEach(func(col int, v float64) {
			if col >= index {
				col++
			}
			nr.Set(col, v)
		})
		shifted[i] = nr
	}
	m.rows = shifted
}

// Get returns the value at (row, col), or ErrRowOutOfRange /
// ErrColumnOutOfRange if either index is invalid.
func (m *Matrix) Get(row, col int) (float64, error) {
	if row < 0 || row >= len(m.rows) {
		return 0, ErrRowOutOfRange
	}
	if col < 0 || col >= m.cols {
		return 0, ErrColumnOutOfRange
	}
	return m.rows[row].Get(col), nil
}

// Set assigns value at (row, col). Setting a zero value erases the
// entry, per sparserow.Row's convention.
func (m *Matrix) Set(row, col int, value float64) error {
	if row < 0 || row >= len(m.rows) {
		return ErrRowOutOfRange
	}
	if col < 0 || col >= m.cols {
		return ErrColumnOutOfRange
	}
	m.rows[row].Set(col, value)
	return nil
}

// Row returns the underlying row at the given index, for callers that
// want to iterate its nonzero entries directly instead of indexing
// cell by cell.
func (m *Matrix) Row(row int) (sparserow.Row, error) {
	if row < 0 || row >= len(m.rows) {
		return nil, ErrRowOutOfRange
	}
	return m.rows[row], nil
}

// NNZ returns the total number of nonzero entries across every row.
func (m *Matrix) NNZ() int {
	total := 0
	for _, row := range m.rows {
		total += row.NNZ()
	}
	return total
}

// CountByRowAndColumn returns, for each row index and each column
// index, the number of nonzero entries it holds. Grounded on the
// original's per-row/per-column nonzero accounting used while building
// the constraint matrix incrementally.
func (m *Matrix) CountByRowAndColumn() (byRow []int, byColumn []int) {
	byRow = make([]int, len(m.rows))
	byColumn = make([]int, m.cols)
	for i, row := range m.rows {
		row.ForEach(func(col int, _ float64) {
			byRow[i]++
			byColumn[col]++
		})
	}
	return byRow, byColumn
}

// ToDense flattens the matrix into a row-major []float64 slice of
// length Rows()*Cols(), for handing off to dense linear algebra (such
// as gonum/mat) rather than per-entry iteration.
func (m *Matrix) ToDense() []float64 {
	flat := make([]float64, len(m.rows)*m.cols)
	for i, row := range m.rows {
		row.ToDense(flat[i*m.cols : (i+1)*m.cols])
	}
	return flat
}

// TransposeInto writes the transpose of m into dst, which must already
// have m.Cols() rows of logical size m.Rows() (typically built by
// calling AddLastRow m.Cols() times on a freshly New'd Matrix).
func (m *Matrix) TransposeInto(dst *Matrix) error {
	if dst.Rows() != m.cols || dst.Cols() != len(m.rows) {
		return ErrDimensionMismatch
	}
	for i, row := range m.rows {
		row.ForEach(func(col int, v float64) {
			dst.rows[col].Set(i, v)
		})
	}
	return nil
}
