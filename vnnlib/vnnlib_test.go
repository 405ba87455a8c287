package vnnlib_test

import (
	"testing"

	"github.com/katalvlaran/nlreason/query"
	"github.com/katalvlaran/nlreason/vnnlib"
	"github.com/stretchr/testify/require"
)

func buildQuery(t *testing.T) *query.Query {
	t.Helper()
	q := query.New()
	q.SetNumVariables(2)
	q.MarkInput(0)
	q.MarkOutput(1)
	return q
}

func TestCompileSimpleBoundAssertions(t *testing.T) {
	q := buildQuery(t)
	src := `
		(declare-const X_0 Real)
		(declare-const Y_0 Real)
		(assert (<= X_0 1.0))
		(assert (>= X_0 -1.0))
	`
	result, err := vnnlib.Compile(src, q)
	require.NoError(t, err)
	require.Len(t, result.Tightenings, 2)
	require.Empty(t, result.Equations)
	require.Empty(t, result.Disjunctions)

	byBound := map[query.BoundKind]query.Tightening{}
	for _, tt := range result.Tightenings {
		byBound[tt.Bound] = tt
	}
	require.InDelta(t, 1.0, byBound[query.BoundUpper].Value, 1e-9)
	require.InDelta(t, -1.0, byBound[query.BoundLower].Value, 1e-9)
}

func TestCompileLinearEquationAssertion(t *testing.T) {
	q := buildQuery(t)
	src := `
		(declare-const X_0 Real)
		(declare-const Y_0 Real)
		(assert (<= (+ X_0 Y_0) 5.0))
	`
	result, err := vnnlib.Compile(src, q)
	require.NoError(t, err)
	require.Len(t, result.Equations, 1)
	eq := result.Equations[0]
	require.Equal(t, query.EquationLE, eq.Type)
	require.InDelta(t, 5.0, eq.Scalar, 1e-9)
	require.Len(t, eq.Addends, 2)
}

func TestCompileTopLevelOrProducesDisjunction(t *testing.T) {
	q := buildQuery(t)
	src := `
		(declare-const Y_0 Real)
		(assert (or (<= Y_0 0.0) (>= Y_0 1.0)))
	`
	result, err := vnnlib.Compile(src, q)
	require.NoError(t, err)
	require.Empty(t, result.Equations)
	require.Empty(t, result.Tightenings)
	require.Len(t, result.Disjunctions, 1)
	require.Len(t, result.Disjunctions[0], 2)
}

func TestCompileRejectsUnknownSymbol(t *testing.T) {
	q := buildQuery(t)
	src := `(assert (<= Z_0 1.0))`
	_, err := vnnlib.Compile(src, q)
	require.ErrorIs(t, err, vnnlib.ErrUnknownSymbol)
}

func TestCompileRejectsNonlinearProduct(t *testing.T) {
	q := buildQuery(t)
	src := `
		(declare-const X_0 Real)
		(assert (<= (* X_0 X_0) 1.0))
	`
	_, err := vnnlib.Compile(src, q)
	require.ErrorIs(t, err, vnnlib.ErrUnsupportedForm)
}
