// Package sparserow: sentinel error set.
//
// The sentinels are declared for callers to match via errors.Is; no
// function in this package returns them, and no function checks its
// index or size arguments against them.
package sparserow

import "errors"

var (
	// ErrIndexOutOfRange indicates a negative index was supplied.
	ErrIndexOutOfRange = errors.New("sparserow: index out of range")

	// ErrInvalidSize indicates a non-positive row size was requested.
	ErrInvalidSize = errors.New("sparserow: size must be > 0")
)
