// Package sparserow provides sparse vector rows, used by
// query.Equation's duplicate-addend merging and as the rows of package
// sparsematrix (package layer uses gonum/mat instead). See types.go for
// the Row contract and its two implementations.
package sparserow
