// Package vnnlib compiles a restricted VNN-LIB S-expression property
// grammar (declare-const, assert, and/or, +/-/* terms) into
// query.Equation values, variable bound tightenings, and
// constraint.Disjunction branches for a top-level "or".
//
// File parsing is otherwise out of scope for the core engine, but the
// grammar itself is small and the original ships a direct sibling
// (src/input_parsers/FixedReluParser.cpp/.h reads the adjacent
// fixed-point-relu text format); this package gives constraint.
// Disjunction a real producer instead of leaving it synthetic.
package vnnlib
