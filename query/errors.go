package query

import "errors"

// Sentinel errors returned by Query methods, matched with errors.Is.
var (
	ErrVariableIndexOutOfRange = errors.New("query: variable index out of range")
	ErrMergedInputVariable     = errors.New("query: cannot merge an input variable into another")
	ErrMergedOutputVariable    = errors.New("query: cannot merge an output variable into another")
	ErrVariableNotInSolution   = errors.New("query: variable has no recorded solution value")
)
