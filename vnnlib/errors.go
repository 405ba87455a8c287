package vnnlib

import "errors"

var (
	// ErrSyntax is returned for any malformed S-expression (unbalanced
	// parens, an empty form, a token where a list was required).
	ErrSyntax = errors.New("vnnlib: syntax error")

	// ErrUnknownSymbol is returned when a term references a variable
	// name no declare-const form introduced.
	ErrUnknownSymbol = errors.New("vnnlib: unknown symbol")

	// ErrUnsupportedForm is returned for a well-formed S-expression
	// this package's restricted grammar does not cover (an operator
	// other than +/-/*, a relation other than <=/>=, a nonlinear
	// product of two variables).
	ErrUnsupportedForm = errors.New("vnnlib: unsupported form")

	// ErrBadVariableName is returned when a declare-const symbol is
	// not of the form X_<index> or Y_<index>.
	ErrBadVariableName = errors.New("vnnlib: variable name must be X_<i> or Y_<i>")
)
