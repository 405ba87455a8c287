package query_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/nlreason/query"
	"github.com/stretchr/testify/require"
)

func newQuery(n int) *query.Query {
	q := query.New()
	q.SetNumVariables(n)
	return q
}

func TestSetNumVariablesInitializesInfiniteBounds(t *testing.T) {
	q := newQuery(3)

	lo, err := q.Lower(0)
	require.NoError(t, err)
	require.True(t, math.IsInf(lo, -1))

	hi, err := q.Upper(2)
	require.NoError(t, err)
	require.True(t, math.IsInf(hi, 1))
}

func TestBoundsOutOfRange(t *testing.T) {
	q := newQuery(2)

	_, err := q.Lower(5)
	require.ErrorIs(t, err, query.ErrVariableIndexOutOfRange)

	err = q.SetLower(5, 1)
	require.ErrorIs(t, err, query.ErrVariableIndexOutOfRange)
}

func TestTightenLowerOnlyMovesInward(t *testing.T) {
	q := newQuery(1)
	require.NoError(t, q.SetLower(0, 0))

	tightened, err := q.TightenLower(0, 2)
	require.NoError(t, err)
	require.True(t, tightened)

	tightened, err = q.TightenLower(0, 1) // looser than current: rejected
	require.NoError(t, err)
	require.False(t, tightened)

	lo, _ := q.Lower(0)
	require.Equal(t, 2.0, lo)
}

func TestTightenUpperOnlyMovesInward(t *testing.T) {
	q := newQuery(1)
	require.NoError(t, q.SetUpper(0, 10))

	tightened, err := q.TightenUpper(0, 4)
	require.NoError(t, err)
	require.True(t, tightened)

	tightened, err = q.TightenUpper(0, 9) // looser: rejected
	require.NoError(t, err)
	require.False(t, tightened)
}

func TestNewVariableGrowsUniverse(t *testing.T) {
	q := newQuery(1)
	v := q.NewVariable()
	require.Equal(t, 1, v)
	require.Equal(t, 2, q.NumVariables())
}

func TestAddEquationAndRemove(t *testing.T) {
	q := newQuery(3)
	eq := query.NewEquation(query.EquationEQ)
	eq.AddAddend(1, 0)
	eq.AddAddend(-1, 1)
	q.AddEquation(eq)
	require.Len(t, q.Equations(), 1)

	q.RemoveEquationsAt([]int{0})
	require.Len(t, q.Equations(), 0)
}

func TestEquationAddAddendMergesDuplicateVariable(t *testing.T) {
	eq := query.NewEquation(query.EquationLE)
	eq.AddAddend(2, 0)
	eq.AddAddend(3, 0) // same variable: merges to coefficient 5

	require.Len(t, eq.Addends, 1)
	require.Equal(t, 5.0, eq.Addends[0].Coefficient)
}

func TestMarkInputOutputByIndex(t *testing.T) {
	q := newQuery(2)
	q.MarkInput(0)
	q.MarkOutput(1)

	in, err := q.InputVariableByIndex(0)
	require.NoError(t, err)
	require.Equal(t, 0, in)

	out, err := q.OutputVariableByIndex(0)
	require.NoError(t, err)
	require.Equal(t, 1, out)

	_, err = q.InputVariableByIndex(1)
	require.ErrorIs(t, err, query.ErrVariableIndexOutOfRange)
}

func TestMergeIdenticalVariablesRejectsInputOutput(t *testing.T) {
	q := newQuery(2)
	q.MarkInput(0)

	err := q.MergeIdenticalVariables(0, 1)
	require.ErrorIs(t, err, query.ErrMergedInputVariable)
}

func TestMergeIdenticalVariablesRewritesEquations(t *testing.T) {
	q := newQuery(3)
	eq := query.NewEquation(query.EquationEQ)
	eq.AddAddend(1, 0)
	q.AddEquation(eq)

	require.NoError(t, q.MergeIdenticalVariables(0, 2))
	require.Equal(t, 2, q.Equations()[0].Addends[0].Variable)
}

func TestSolutionValueRoundTrip(t *testing.T) {
	q := newQuery(1)
	_, err := q.SolutionValue(0)
	require.ErrorIs(t, err, query.ErrVariableNotInSolution)

	q.SetSolutionValue(0, 3.14)
	v, err := q.SolutionValue(0)
	require.NoError(t, err)
	require.Equal(t, 3.14, v)
}

func TestDebuggingAssignment(t *testing.T) {
	q := newQuery(1)
	_, ok := q.DebuggingAssignment(0)
	require.False(t, ok)

	q.SetDebuggingAssignment(0, 7)
	v, ok := q.DebuggingAssignment(0)
	require.True(t, ok)
	require.Equal(t, 7.0, v)
}
