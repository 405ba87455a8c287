// Package nlerrors collects the error kinds shared across package
// boundaries: kinds that do not belong to a single package, or that a
// caller needs to recognize regardless of which package raised them.
package nlerrors

import "errors"

// ErrIterationBudgetExceeded names a propagation sweep budget exhausted
// before reaching a fixed point. reasoner.Propagate does not return it:
// it reports that case as StatusBudgetExceeded with a nil error.
// This is a warning, not a hard failure: the caller keeps whatever
// tighter bounds were already published and continues.
var ErrIterationBudgetExceeded = errors.New("nlreason: propagation iteration budget exceeded")

// ErrInterrupted names a deadline elapsing between sweeps.
// reasoner.Propagate does not return it: it reports that case as
// StatusInterrupted together with ctx.Err().
// Bounds already published through receiveTighterBound remain valid;
// the caller must not trust that a fixed point was reached.
var ErrInterrupted = errors.New("nlreason: propagation interrupted by deadline")

// CLIError wraps an underlying error with the exit code a command-line
// driver should report for it: 0 success, 1 configuration/I-O error.
type CLIError struct {
	Code int
	Err  error
}

func (e *CLIError) Error() string {
	return e.Err.Error()
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError builds a CLIError with the given exit code.
func NewCLIError(code int, err error) *CLIError {
	return &CLIError{Code: code, Err: err}
}
