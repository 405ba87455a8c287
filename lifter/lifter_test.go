package lifter_test

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/katalvlaran/nlreason/config"
	"github.com/katalvlaran/nlreason/constraint"
	"github.com/katalvlaran/nlreason/layer"
	"github.com/katalvlaran/nlreason/lifter"
	"github.com/katalvlaran/nlreason/query"
	"github.com/katalvlaran/nlreason/reasoner"
	"github.com/katalvlaran/nlreason/wire"
	"github.com/stretchr/testify/require"
)

// buildOneReluQuery assembles x (input, var 0), h = 2x-1 (hidden, var 1,
// via an EQ equation), y = relu(h) (output, var 2): the smallest network
// that exercises both of Lift's two construction attempts.
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

func TestLiftBuildsCompleteLayerDAG(t *testing.T) {
	q := buildOneReluQuery(t)

	result, err := lifter.Lift(q, config.Default())
	require.NoError(t, err)
	require.Empty(t, result.UnhandledEquations)
	require.Empty(t, result.UnhandledVariables)
	require.Equal(t, 4, result.Reasoner.NumLayers())
}

func TestLiftedNetworkPropagatesReluBounds(t *testing.T) {
	q := buildOneReluQuery(t)

	result, err := lifter.Lift(q, config.Default())
	require.NoError(t, err)

	status, err := result.Reasoner.Propagate(context.Background(), q)
	require.NoError(t, err)
	require.NotEqual(t, reasoner.StatusInterrupted, status)

	lo, err := q.Lower(2)
	require.NoError(t, err)
	hi, err := q.Upper(2)
	require.NoError(t, err)

	// x in [-1,1] -> h=2x-1 in [-3,1] -> relu(h) in [0,1]
	require.InDelta(t, 0.0, lo, 1e-9)
	require.InDelta(t, 1.0, hi, 1e-9)
}

// buildTwoLayerSoftmaxQuery assembles x in [0,1]^2, h = [[1,1],[1,-1]]*x,
// y = softmax(h): spec.md Scenario C's two-layer network.
func buildTwoLayerSoftmaxQuery(t *testing.T) *query.Query {
	t.Helper()

	q := query.New()
	q.SetNumVariables(6) // 0=x0, 1=x1, 2=h0, 3=h1, 4=y0, 5=y1
	require.NoError(t, q.SetLower(0, 0))
	require.NoError(t, q.SetUpper(0, 1))
	require.NoError(t, q.SetLower(1, 0))
	require.NoError(t, q.SetUpper(1, 1))
	q.MarkInput(0)
	q.MarkInput(1)
	q.MarkOutput(4)
	q.MarkOutput(5)

	eqH0 := query.NewEquation(query.EquationEQ)
	eqH0.AddAddend(1, 2)
	eqH0.AddAddend(-1, 0)
	eqH0.AddAddend(-1, 1)
	eqH0.SetScalar(0)
	q.AddEquation(eqH0)

	eqH1 := query.NewEquation(query.EquationEQ)
	eqH1.AddAddend(1, 3)
	eqH1.AddAddend(-1, 0)
	eqH1.AddAddend(1, 1)
	eqH1.SetScalar(0)
	q.AddEquation(eqH1)

	q.AddNonlinear(constraint.NewSoftmax([]int{2, 3}, []int{4, 5}, config.EnvelopeLSE))

	return q
}

func TestLiftedSoftmaxNetworkBoundsAreSoundAtAConcretePoint(t *testing.T) {
	q := buildTwoLayerSoftmaxQuery(t)

	result, err := lifter.Lift(q, config.Default())
	require.NoError(t, err)
	require.Empty(t, result.UnhandledVariables)

	status, err := result.Reasoner.Propagate(context.Background(), q)
	require.NoError(t, err)
	require.NotEqual(t, reasoner.StatusInterrupted, status)

	h0lo, _ := q.Lower(2)
	h0hi, _ := q.Upper(2)
	h1lo, _ := q.Lower(3)
	h1hi, _ := q.Upper(3)
	require.InDelta(t, 0.0, h0lo, 1e-9)
	require.InDelta(t, 2.0, h0hi, 1e-9)
	require.InDelta(t, -1.0, h1lo, 1e-9)
	require.InDelta(t, 1.0, h1hi, 1e-9)

	// Property 3 (spec.md §8): for a concrete assignment consistent
	// with the source bounds, the layer's interval must contain the
	// true value. x0=0.3, x1=0.7 -> h=(1.0,-0.4).
	h := []float64{1.0, -0.4}
	trueY := softmaxAt(h)

	y0lo, _ := q.Lower(4)
	y0hi, _ := q.Upper(4)
	y1lo, _ := q.Lower(5)
	y1hi, _ := q.Upper(5)

	require.True(t, y0lo-1e-9 <= trueY[0] && trueY[0] <= y0hi+1e-9)
	require.True(t, y1lo-1e-9 <= trueY[1] && trueY[1] <= y1hi+1e-9)
	require.True(t, y0lo >= -1e-9 && y0hi <= 1+1e-9)
	require.True(t, y1lo >= -1e-9 && y1hi <= 1+1e-9)
}

func softmaxAt(x []float64) []float64 {
	shift := x[0]
	for _, v := range x {
		if v > shift {
			shift = v
		}
	}
	sum := 0.0
	exp := make([]float64, len(x))
	for i, v := range x {
		exp[i] = math.Exp(v - shift)
		sum += exp[i]
	}
	out := make([]float64, len(x))
	for i := range x {
		out[i] = exp[i] / sum
	}
	return out
}

// buildLiftReliftQuery assembles a one-input-layer (size 2), one
// weighted-sum, one ReLU, one weighted-sum network, spec.md Scenario
// D's lift-then-relift fixture.
func buildLiftReliftQuery(t *testing.T) *query.Query {
	t.Helper()

	q := query.New()
	q.SetNumVariables(5) // 0=x0, 1=x1, 2=h, 3=r, 4=y
	require.NoError(t, q.SetLower(0, -1))
	require.NoError(t, q.SetUpper(0, 1))
	require.NoError(t, q.SetLower(1, -1))
	require.NoError(t, q.SetUpper(1, 1))
	q.MarkInput(0)
	q.MarkInput(1)
	q.MarkOutput(4)

	eqH := query.NewEquation(query.EquationEQ)
	eqH.AddAddend(1, 2)
	eqH.AddAddend(-1, 0)
	eqH.AddAddend(-1, 1)
	eqH.SetScalar(0)
	q.AddEquation(eqH)

	q.AddPiecewise(constraint.NewRelu(2, 3))

	eqY := query.NewEquation(query.EquationEQ)
	eqY.AddAddend(1, 4)
	eqY.AddAddend(-2, 3)
	eqY.SetScalar(-1)
	q.AddEquation(eqY)

	return q
}

func TestLiftThenSaveLoadThenReliftProducesIdenticalTopology(t *testing.T) {
	q := buildLiftReliftQuery(t)

	first, err := lifter.Lift(q, config.Default())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, wire.Save(q, &buf))
	reloaded, err := wire.Load(&buf)
	require.NoError(t, err)

	second, err := lifter.Lift(reloaded, config.Default())
	require.NoError(t, err)

	require.Equal(t, first.Reasoner.NumLayers(), second.Reasoner.NumLayers())
	for i := 0; i < first.Reasoner.NumLayers(); i++ {
		l1 := first.Reasoner.Layer(i)
		l2 := second.Reasoner.Layer(i)
		require.Equal(t, l1.Kind, l2.Kind, "layer %d kind", i)
		require.Equal(t, l1.Size, l2.Size, "layer %d size", i)
		require.Equal(t, l1.SourceLayers, l2.SourceLayers, "layer %d sources", i)
		require.Equal(t, l1.NeuronToVariable, l2.NeuronToVariable, "layer %d neuronToVariable", i)
		if l1.Kind == layer.KindWeightedSum {
			for _, src := range l1.SourceLayers {
				for s := 0; s < first.Reasoner.Layer(src).Size; s++ {
					for tN := 0; tN < l1.Size; tN++ {
						require.Equal(t, l1.Weight(src, s, tN), l2.Weight(src, s, tN), "layer %d weight(%d,%d)", i, s, tN)
					}
				}
			}
		}
	}
}

// buildUnreachableReluQuery assembles a weighted-sum output h in
// [-5,-2] feeding a ReLU, spec.md Scenario E's always-inactive case.
func buildUnreachableReluQuery(t *testing.T) *query.Query {
	t.Helper()

	q := query.New()
	q.SetNumVariables(3) // 0=x, 1=h, 2=f
	require.NoError(t, q.SetLower(0, -5))
	require.NoError(t, q.SetUpper(0, -2))
	q.MarkInput(0)
	q.MarkOutput(2)

	eqH := query.NewEquation(query.EquationEQ)
	eqH.AddAddend(1, 1)
	eqH.AddAddend(-1, 0)
	eqH.SetScalar(0)
	q.AddEquation(eqH)

	q.AddPiecewise(constraint.NewRelu(1, 2))

	return q
}

// Propagation eliminates no variables, so the lifted Relu constraint is
// not marked obsolete; the test checks that f collapses to 0 and that a
// non-positive upper bound on h fixes the inactive phase.
func TestLiftedReluOutputCollapsesToZeroWhenAlwaysInactive(t *testing.T) {
	q := buildUnreachableReluQuery(t)

	result, err := lifter.Lift(q, config.Default())
	require.NoError(t, err)

	status, err := result.Reasoner.Propagate(context.Background(), q)
	require.NoError(t, err)
	require.NotEqual(t, reasoner.StatusInterrupted, status)

	lo, _ := q.Lower(2)
	hi, _ := q.Upper(2)
	require.InDelta(t, 0.0, lo, 1e-9)
	require.InDelta(t, 0.0, hi, 1e-9)

	relu := constraint.NewRelu(1, 2)
	relu.NotifyUpper(1, hi) // an upper bound of 0 on h fixes the inactive phase
	require.Equal(t, query.Phase(2), relu.Phase())
}

func TestLiftLeavesUnresolvableConstraintsUnhandled(t *testing.T) {
	q := query.New()
	q.SetNumVariables(2)
	q.MarkInput(0)
	q.MarkOutput(1)
	// No equation ties variable 1 to variable 0 or to any constraint
	// output Lift knows how to build, so it must surface as unhandled
	// rather than silently dropped.
	eq := query.NewEquation(query.EquationLE)
	eq.AddAddend(1, 0)
	eq.AddAddend(1, 1)
	eq.SetScalar(5)
	q.AddEquation(eq)

	result, err := lifter.Lift(q, config.Default())
	require.NoError(t, err)
	require.Len(t, result.UnhandledEquations, 1)
}
