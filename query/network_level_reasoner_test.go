package query_test

import (
	"context"
	"testing"

	"github.com/katalvlaran/nlreason/config"
	"github.com/katalvlaran/nlreason/constraint"
	_ "github.com/katalvlaran/nlreason/lifter" // registers query.Query's lifting backend
	"github.com/katalvlaran/nlreason/query"
	"github.com/katalvlaran/nlreason/reasoner"
	"github.com/stretchr/testify/require"
)

// buildOneReluQuery mirrors lifter_test.go's fixture of the same name:
// x (input, var 0), h = 2x-1 (hidden, var 1), y = relu(h) (output, var 2).
func buildOneReluQuery(t *testing.T) *query.Query {
	t.Helper()

	q := query.New()
	q.SetNumVariables(3)
	require.NoError(t, q.SetLower(0, -1))
	require.NoError(t, q.SetUpper(0, 1))
	q.MarkInput(0)
	q.MarkOutput(2)

	eq := query.NewEquation(query.EquationEQ)
	eq.AddAddend(1, 1)
	eq.AddAddend(-2, 0)
	eq.SetScalar(-1)
	q.AddEquation(eq)

	q.AddPiecewise(constraint.NewRelu(1, 2))

	return q
}

func TestConstructNetworkLevelReasonerDelegatesToLifter(t *testing.T) {
	q := buildOneReluQuery(t)

	result, err := q.ConstructNetworkLevelReasoner(config.Default())
	require.NoError(t, err)
	require.Empty(t, result.UnhandledEquations)
	require.Empty(t, result.UnhandledVariables)

	r, ok := result.Reasoner.(*reasoner.Reasoner)
	require.True(t, ok)
	require.Equal(t, 4, r.NumLayers())

	status, err := r.Propagate(context.Background(), q)
	require.NoError(t, err)
	require.NotEqual(t, reasoner.StatusInterrupted, status)
}
