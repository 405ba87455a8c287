package sparsematrix

import "errors"

// Sentinel errors returned by Matrix methods on invalid indices or
// dimension mismatches. Matched with errors.Is, never with panics,
// mirroring package matrix's error convention.
var (
	ErrRowOutOfRange    = errors.New("sparsematrix: row index out of range")
	ErrColumnOutOfRange = errors.New("sparsematrix: column index out of range")
	ErrDimensionMismatch = errors.New("sparsematrix: dimension mismatch")
)
