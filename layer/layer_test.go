package layer_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/nlreason/layer"
	"github.com/stretchr/testify/require"
)

func TestReluIntervalPropagateMixedCase(t *testing.T) {
	src := layer.New(0, layer.KindInput, 1)
	src.LB[0], src.UB[0] = -2, 3

	relu := layer.New(1, layer.KindRelu, 1)
	tightenings := relu.IntervalPropagate([]*layer.Layer{src})

	require.Equal(t, 0.0, relu.LB[0])
	require.Equal(t, 3.0, relu.UB[0])
	require.Len(t, tightenings, 2)
}

func TestWeightedSumIntervalPropagate(t *testing.T) {
	input := layer.New(0, layer.KindInput, 2)
	input.LB[0], input.UB[0] = -1, 1
	input.LB[1], input.UB[1] = 0, 2

	ws := layer.New(1, layer.KindWeightedSum, 1)
	ws.AddSourceLayer(input.Index, input.Size)
	ws.SetWeight(input.Index, 0, 0, 2)  // +2*x0
	ws.SetWeight(input.Index, 1, 0, -1) // -1*x1
	ws.SetBias(0, 0.5)

	ws.IntervalPropagate([]*layer.Layer{input})

	// lo = 2*(-1) + (-1)*2 + 0.5 = -3.5 ; hi = 2*1 + (-1)*0 + 0.5 = 2.5
	require.InDelta(t, -3.5, ws.LB[0], 1e-9)
	require.InDelta(t, 2.5, ws.UB[0], 1e-9)
}

func TestSignIntervalPropagate(t *testing.T) {
	src := layer.New(0, layer.KindInput, 1)
	src.LB[0], src.UB[0] = 1, 5

	sign := layer.New(1, layer.KindSign, 1)
	sign.IntervalPropagate([]*layer.Layer{src})
	require.Equal(t, 1.0, sign.LB[0])
	require.Equal(t, 1.0, sign.UB[0])
}

func TestBilinearIntervalPropagateTakesCornerExtremes(t *testing.T) {
	x := layer.New(0, layer.KindInput, 1)
	x.LB[0], x.UB[0] = -1, 2
	y := layer.New(1, layer.KindInput, 1)
	y.LB[0], y.UB[0] = -3, 1

	bl := layer.New(2, layer.KindBilinear, 1)
	bl.IntervalPropagate([]*layer.Layer{x, y})

	require.Equal(t, -6.0, bl.LB[0]) // 2 * -3
	require.Equal(t, 3.0, bl.UB[0])  // -1 * -3
}

func TestSymbolicPropagateInputIsIdentity(t *testing.T) {
	input := layer.New(0, layer.KindInput, 2)
	input.SymbolicPropagate(nil, input)
	require.Equal(t, 1.0, input.SymbolicLb.At(0, 0))
	require.Equal(t, 0.0, input.SymbolicLb.At(0, 1))
}

func TestSymbolicPropagateReluActiveIsPassthrough(t *testing.T) {
	input := layer.New(0, layer.KindInput, 1)
	input.LB[0], input.UB[0] = 1, 5
	input.SymbolicPropagate(nil, input)

	relu := layer.New(1, layer.KindRelu, 1)
	relu.IntervalPropagate([]*layer.Layer{input})
	relu.SymbolicPropagate([]*layer.Layer{input}, input)

	require.Equal(t, 1.0, relu.SymbolicLb.At(0, 0))
	require.Equal(t, 1.0, relu.SymbolicUb.At(0, 0))
}

func TestMaxIntervalPropagateReadsEveryGatherLayerElement(t *testing.T) {
	// Three candidates zipped into one size-3 gather layer (the shape
	// lifter.buildGatherLayer produces), not three separate sources.
	src := layer.New(0, layer.KindInput, 3)
	src.LB[0], src.UB[0] = -5, -1
	src.LB[1], src.UB[1] = 2, 9
	src.LB[2], src.UB[2] = 0, 3

	mx := layer.New(1, layer.KindMax, 1)
	mx.IntervalPropagate([]*layer.Layer{src})

	require.InDelta(t, 2.0, mx.LB[0], 1e-9)
	require.InDelta(t, 9.0, mx.UB[0], 1e-9)
}

func TestMaxSymbolicPropagateAmbiguousCase(t *testing.T) {
	input := layer.New(0, layer.KindInput, 3)
	input.LB[0], input.UB[0] = -5, -1
	input.LB[1], input.UB[1] = 2, 9
	input.LB[2], input.UB[2] = 0, 3
	input.SymbolicPropagate(nil, input)

	gather := layer.New(1, layer.KindWeightedSum, 3)
	gather.AddSourceLayer(input.Index, input.Size)
	gather.SetWeight(input.Index, 0, 0, 1)
	gather.SetWeight(input.Index, 1, 1, 1)
	gather.SetWeight(input.Index, 2, 2, 1)
	gather.IntervalPropagate([]*layer.Layer{input})
	gather.SymbolicPropagate([]*layer.Layer{input}, input)

	mx := layer.New(2, layer.KindMax, 1)
	mx.IntervalPropagate([]*layer.Layer{gather})
	mx.SymbolicPropagate([]*layer.Layer{gather}, input)

	// No element's lower bound exceeds every other's upper bound here
	// (element 1's lb=2 does not exceed element 2's ub=3), so the
	// lower row must inherit from the largest-lower-bound element (1)
	// and the upper row degenerate to the scalar max upper bound.
	require.Equal(t, 1.0, mx.SymbolicLb.At(0, 1))
	require.Equal(t, 0.0, mx.SymbolicUb.At(0, 0))
	require.Equal(t, 0.0, mx.SymbolicUb.At(0, 1))
	require.Equal(t, 0.0, mx.SymbolicUb.At(0, 2))
	require.InDelta(t, 9.0, mx.SymbolicUbBias[0], 1e-9)
}

func TestMaxSymbolicPropagateDominantCase(t *testing.T) {
	input := layer.New(0, layer.KindInput, 2)
	input.LB[0], input.UB[0] = 10, 20
	input.LB[1], input.UB[1] = -3, 3
	input.SymbolicPropagate(nil, input)

	gather := layer.New(1, layer.KindWeightedSum, 2)
	gather.AddSourceLayer(input.Index, input.Size)
	gather.SetWeight(input.Index, 0, 0, 1)
	gather.SetWeight(input.Index, 1, 1, 1)
	gather.IntervalPropagate([]*layer.Layer{input})
	gather.SymbolicPropagate([]*layer.Layer{input}, input)

	mx := layer.New(2, layer.KindMax, 1)
	mx.IntervalPropagate([]*layer.Layer{gather})
	mx.SymbolicPropagate([]*layer.Layer{gather}, input)

	// Element 0's lb=10 strictly exceeds element 1's ub=3: the max is
	// exactly element 0, so both rows copy its row verbatim.
	require.Equal(t, 1.0, mx.SymbolicLb.At(0, 0))
	require.Equal(t, 1.0, mx.SymbolicUb.At(0, 0))
	require.Equal(t, 0.0, mx.SymbolicLb.At(0, 1))
	require.Equal(t, 0.0, mx.SymbolicUb.At(0, 1))
}

func TestBilinearSymbolicPropagateMatchesMcCormickEnvelope(t *testing.T) {
	// x and y must be gather layers zipped from the same shared input
	// layer (variable 0 = x, variable 1 = y), not independent root
	// layers, so that their symbolic rows share one column space.
	input := layer.New(0, layer.KindInput, 2)
	input.LB[0], input.UB[0] = -1, 2
	input.LB[1], input.UB[1] = 3, 5
	input.SymbolicPropagate(nil, input)

	gx := layer.New(1, layer.KindWeightedSum, 1)
	gx.AddSourceLayer(input.Index, input.Size)
	gx.SetWeight(input.Index, 0, 0, 1)
	gx.IntervalPropagate([]*layer.Layer{input})
	gx.SymbolicPropagate([]*layer.Layer{input}, input)

	gy := layer.New(2, layer.KindWeightedSum, 1)
	gy.AddSourceLayer(input.Index, input.Size)
	gy.SetWeight(input.Index, 1, 0, 1)
	gy.IntervalPropagate([]*layer.Layer{input})
	gy.SymbolicPropagate([]*layer.Layer{input}, input)

	bl := layer.New(3, layer.KindBilinear, 1)
	bl.IntervalPropagate([]*layer.Layer{gx, gy})
	bl.SymbolicPropagate([]*layer.Layer{gx, gy}, input)

	// z >= 3x - y + 3, z <= 5x - y + 5 (spec.md Scenario F).
	require.InDelta(t, 3.0, bl.SymbolicLb.At(0, 0), 1e-9)
	require.InDelta(t, -1.0, bl.SymbolicLb.At(0, 1), 1e-9)
	require.InDelta(t, 3.0, bl.SymbolicLbBias[0], 1e-9)

	require.InDelta(t, 5.0, bl.SymbolicUb.At(0, 0), 1e-9)
	require.InDelta(t, -1.0, bl.SymbolicUb.At(0, 1), 1e-9)
	require.InDelta(t, 5.0, bl.SymbolicUbBias[0], 1e-9)
}

func TestSignSymbolicPropagateAmbiguousParallelogram(t *testing.T) {
	input := layer.New(0, layer.KindInput, 1)
	input.LB[0], input.UB[0] = -4, 2
	input.SymbolicPropagate(nil, input)

	sign := layer.New(1, layer.KindSign, 1)
	sign.IntervalPropagate([]*layer.Layer{input})
	sign.SymbolicPropagate([]*layer.Layer{input}, input)

	// Lower row: slope 2/hi = 1, intercept -1. Upper row: slope -2/lo
	// = 0.5, intercept 1.
	require.InDelta(t, 1.0, sign.SymbolicLb.At(0, 0), 1e-9)
	require.InDelta(t, -1.0, sign.SymbolicLbBias[0], 1e-9)
	require.InDelta(t, 0.5, sign.SymbolicUb.At(0, 0), 1e-9)
	require.InDelta(t, 1.0, sign.SymbolicUbBias[0], 1e-9)
}

func TestSoftmaxSymbolicPropagateLowerEnvelopeIsTangentAtMidpoint(t *testing.T) {
	input := layer.New(0, layer.KindInput, 2)
	input.LB[0], input.UB[0] = -1, 1
	input.LB[1], input.UB[1] = -1, 1
	input.SymbolicPropagate(nil, input)

	sm := layer.New(1, layer.KindSoftmax, 2)
	sm.IntervalPropagate([]*layer.Layer{input})
	sm.SymbolicPropagate([]*layer.Layer{input}, input)

	// At the box midpoint (0,0) softmax is uniform (0.5, 0.5); the
	// lower row's bias must equal the value at that point once its
	// own slope*midpoint term is netted out, i.e. evaluating the row
	// at the midpoint recovers f(mid) exactly (point of tangency).
	mid := []float64{0, 0}
	got := sm.SymbolicLbBias[0] + sm.SymbolicLb.At(0, 0)*mid[0] + sm.SymbolicLb.At(0, 1)*mid[1]
	require.InDelta(t, 0.5, got, 1e-9)
	require.InDelta(t, sm.UB[0], sm.SymbolicUbBias[0], 1e-9)
}

func TestLeakyReluAmbiguousCaseChordEnvelope(t *testing.T) {
	input := layer.New(0, layer.KindInput, 1)
	input.LB[0], input.UB[0] = -10, 5
	input.SymbolicPropagate(nil, input)

	lr := layer.New(1, layer.KindLeakyRelu, 1)
	lr.LeakyReluSlope = 0.1
	lr.IntervalPropagate([]*layer.Layer{input})
	lr.SymbolicPropagate([]*layer.Layer{input}, input)

	// b in [-10,5] -> f.lb = 0.1*-10 = -1, f.ub = 5 (spec.md Scenario B).
	require.InDelta(t, -1.0, lr.LB[0], 1e-9)
	require.InDelta(t, 5.0, lr.UB[0], 1e-9)

	// Lower row is the slope-0.1 tangent (0, through origin); upper row
	// is the chord from (-10,-1) to (5,5): slope (5-(-1))/(5-(-10)) =
	// 0.4, intercept 5 - 0.4*5 = 3.
	require.InDelta(t, 0.1, lr.SymbolicLb.At(0, 0), 1e-9)
	require.InDelta(t, 0.0, lr.SymbolicLbBias[0], 1e-9)
	require.InDelta(t, 0.4, lr.SymbolicUb.At(0, 0), 1e-9)
	require.InDelta(t, 3.0, lr.SymbolicUbBias[0], 1e-9)
}

func TestIntervalSoftmaxBoundsBracketUniformValue(t *testing.T) {
	input := layer.New(0, layer.KindInput, 2)
	input.LB[0], input.UB[0] = -0.01, 0.01
	input.LB[1], input.UB[1] = -0.01, 0.01

	sm := layer.New(1, layer.KindSoftmax, 2)
	sm.IntervalPropagate([]*layer.Layer{input})

	require.True(t, sm.LB[0] <= 0.5+1e-2 && sm.LB[0] >= 0)
	require.True(t, sm.UB[0] <= 1 && sm.UB[0] >= 0.5-1e-2)
	require.False(t, math.IsNaN(sm.LB[0]))
}
