// Package lifter builds a layer.Layer DAG out of a flat query.Query by
// greedily peeling equations and constraints whose inputs are already
// known into new layers, repeating until no attempt makes further
// progress. Lift is kept as a free function (not a Query method) so
// that query never imports lifter, reasoner or layer — only lifter
// imports query, avoiding the import cycle a method delegating
// "downward" into a package that itself depends on query would create.
// init registers Lift as the backend for query.Query's
// ConstructNetworkLevelReasoner, so that method becomes callable as
// soon as anything imports this package.
package lifter

import (
	"github.com/katalvlaran/nlreason/config"
	"github.com/katalvlaran/nlreason/constraint"
	"github.com/katalvlaran/nlreason/layer"
	"github.com/katalvlaran/nlreason/query"
	"github.com/katalvlaran/nlreason/reasoner"
)

// Result is Lift's return value: the built reasoner, any equations
// Lift could not fold into a layer, and the variables touched only by
// unhandled constraints.
type Result struct {
	Reasoner           *reasoner.Reasoner
	UnhandledEquations []query.Equation
	UnhandledVariables []int
}

func init() {
	query.RegisterNetworkLevelReasonerConstructor(func(q *query.Query, cfg config.Config) (any, []query.Equation, []int, error) {
		res, err := Lift(q, cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		return res.Reasoner, res.UnhandledEquations, res.UnhandledVariables, nil
	})
}

type placement struct {
	layerIndex int
	neuron     int
}

// Lift is the greedy topological peeling loop: one weighted-sum-from-
// equation attempt plus nine per-kind activation attempts, run to a
// fixed point.
func Lift(q *query.Query, cfg config.Config) (*Result, error) {
	r := reasoner.New(cfg)
	placed := make(map[int]placement)

	nIn := q.NumInputVariables()
	input := layer.New(0, layer.KindInput, nIn)
	for i := 0; i < nIn; i++ {
		v, err := q.InputVariableByIndex(i)
		if err != nil {
			return nil, err
		}
		input.SetNeuronVariable(i, v)
		lo, _ := q.Lower(v)
		hi, _ := q.Upper(v)
		input.LB[i], input.UB[i] = lo, hi
		placed[v] = placement{layerIndex: 0, neuron: i}
	}
	r.AddLayer(input)

	remainingEquations := q.Equations()
	remainingConstraints := q.NonlinearConstraints()

	for {
		if idx := tryWeightedSumFromEquation(r, placed, remainingEquations); idx >= 0 {
			remainingEquations = removeEquationAt(remainingEquations, idx)
			continue
		}
		if idx := tryActivationFromConstraint(r, placed, remainingConstraints); idx >= 0 {
			remainingConstraints = removeConstraintAt(remainingConstraints, idx)
			continue
		}
		break
	}

	unhandledVars := map[int]bool{}
	for _, c := range remainingConstraints {
		for _, v := range c.ParticipatingVariables() {
			if _, ok := placed[v]; !ok {
				unhandledVars[v] = true
			}
		}
	}
	vars := make([]int, 0, len(unhandledVars))
	for v := range unhandledVars {
		vars = append(vars, v)
	}

	return &Result{Reasoner: r, UnhandledEquations: remainingEquations, UnhandledVariables: vars}, nil
}

func removeEquationAt(eqs []query.Equation, i int) []query.Equation {
	out := append([]query.Equation(nil), eqs[:i]...)
	return append(out, eqs[i+1:]...)
}

func removeConstraintAt(cs []query.Constraint, i int) []query.Constraint {
	out := append([]query.Constraint(nil), cs[:i]...)
	return append(out, cs[i+1:]...)
}

// tryWeightedSumFromEquation scans for an EQ equation with exactly one
// addend whose variable is not yet placed, and builds a single-neuron
// WeightedSum layer defining that variable as an affine function of the
// others: newVar = (scalar - sum_other(coeff*var)) / newCoeff, i.e.
// weight(other) = -coeff/newCoeff, bias = scalar/newCoeff. Grounded on
// the original's equation-to-NLR construction rule (an equality with
// exactly one undiscovered variable is exactly the shape a weighted-sum
// neuron's defining equation takes).
func tryWeightedSumFromEquation(r *reasoner.Reasoner, placed map[int]placement, equations []query.Equation) int {
	for i, eq := range equations {
		if eq.Type != query.EquationEQ {
			continue
		}
		unknownIdx := -1
		unknownCount := 0
		for j, a := range eq.Addends {
			if _, ok := placed[a.Variable]; !ok {
				unknownCount++
				unknownIdx = j
			}
		}
		if unknownCount != 1 {
			continue
		}
		newAddend := eq.Addends[unknownIdx]
		if newAddend.Coefficient == 0 {
			continue
		}

		ws := layer.New(r.NumLayers(), layer.KindWeightedSum, 1)
		ws.SetBias(0, eq.Scalar/newAddend.Coefficient)
		for j, a := range eq.Addends {
			if j == unknownIdx {
				continue
			}
			p := placed[a.Variable]
			ensureSource(r, ws, p.layerIndex)
			ws.SetWeight(p.layerIndex, p.neuron, 0, -a.Coefficient/newAddend.Coefficient)
		}
		ws.SetNeuronVariable(0, newAddend.Variable)
		idx := r.AddLayer(ws)
		placed[newAddend.Variable] = placement{layerIndex: idx, neuron: 0}
		return i
	}
	return -1
}

func ensureSource(r *reasoner.Reasoner, ws *layer.Layer, sourceIndex int) {
	for _, existing := range ws.SourceLayers {
		if existing == sourceIndex {
			return
		}
	}
	ws.AddSourceLayer(sourceIndex, r.Layer(sourceIndex).Size)
}

// buildGatherLayer assembles a synthetic single-pass WeightedSum layer
// whose neuron i is an identity copy (weight 1, bias 0) of vars[i],
// wherever vars[i] is already placed. Used to present a group of
// variables that may live in different existing layers as one
// same-shape source layer to Max/Softmax/Bilinear's layer constructors,
// which (like the original's per-kind layer classes) expect a single
// contiguous source.
func buildGatherLayer(r *reasoner.Reasoner, placed map[int]placement, vars []int) *layer.Layer {
	g := layer.New(r.NumLayers(), layer.KindWeightedSum, len(vars))
	for i, v := range vars {
		p := placed[v]
		ensureSource(r, g, p.layerIndex)
		g.SetWeight(p.layerIndex, p.neuron, i, 1)
		g.SetNeuronVariable(i, v)
	}
	r.AddLayer(g)
	return g
}

func allPlaced(placed map[int]placement, vars []int) bool {
	for _, v := range vars {
		if _, ok := placed[v]; !ok {
			return false
		}
	}
	return true
}

// tryActivationFromConstraint scans remaining constraints for one whose
// input variable(s) are already placed and whose output variable(s)
// are not, building the matching one-neuron (or one-per-output) layer.
// One switch arm per concrete constraint kind, the nine activation
// attempts alongside the equation attempt above.
func tryActivationFromConstraint(r *reasoner.Reasoner, placed map[int]placement, constraints []query.Constraint) int {
	for i, raw := range constraints {
		switch c := raw.(type) {
		case *constraint.Relu:
			if tryOneInput(r, placed, c.BF, layer.KindRelu, 0) {
				return i
			}
		case *constraint.LeakyRelu:
			if tryOneInputParam(r, placed, c.BF, layer.KindLeakyRelu, c.Slope()) {
				return i
			}
		case *constraint.Sign:
			if tryOneInput(r, placed, c.BF, layer.KindSign, 0) {
				return i
			}
		case *constraint.AbsoluteValue:
			if tryOneInput(r, placed, c.BF, layer.KindAbsoluteValue, 0) {
				return i
			}
		case *constraint.Round:
			if tryOneInput(r, placed, c.BF, layer.KindRound, 0) {
				return i
			}
		case *constraint.Sigmoid:
			if tryOneInput(r, placed, c.BF, layer.KindSigmoid, 0) {
				return i
			}
		case *constraint.Max:
			elements, f := c.ElementsF()
			if allPlaced(placed, elements) && !isPlaced(placed, f) {
				group := buildGatherLayer(r, placed, elements)
				out := layer.New(r.NumLayers(), layer.KindMax, 1)
				out.SourceLayers = []int{group.Index}
				out.SetNeuronVariable(0, f)
				idx := r.AddLayer(out)
				placed[f] = placement{layerIndex: idx, neuron: 0}
				return i
			}
		case *constraint.Bilinear:
			x, y, f := c.XYF()
			if allPlaced(placed, []int{x, y}) && !isPlaced(placed, f) {
				gx := buildGatherLayer(r, placed, []int{x})
				gy := buildGatherLayer(r, placed, []int{y})
				out := layer.New(r.NumLayers(), layer.KindBilinear, 1)
				out.SourceLayers = []int{gx.Index, gy.Index}
				out.SetNeuronVariable(0, f)
				idx := r.AddLayer(out)
				placed[f] = placement{layerIndex: idx, neuron: 0}
				return i
			}
		case *constraint.Softmax:
			inputs, outputs := c.Inputs(), c.Outputs()
			if allPlaced(placed, inputs) && !allPlaced(placed, outputs) && allUnplaced(placed, outputs) {
				group := buildGatherLayer(r, placed, inputs)
				out := layer.New(r.NumLayers(), layer.KindSoftmax, len(outputs))
				out.SourceLayers = []int{group.Index}
				out.SoftmaxEnvelope = c.Envelope()
				for k, v := range outputs {
					out.SetNeuronVariable(k, v)
				}
				idx := r.AddLayer(out)
				for k, v := range outputs {
					placed[v] = placement{layerIndex: idx, neuron: k}
				}
				return i
			}
			// *constraint.Disjunction intentionally has no layer
			// constructor: it is a search-time property relation (a
			// VNN-LIB `or`), not a network structural relation, so it
			// is never liftable into the DAG; its variables appear in
			// UnhandledVariables only if no other constraint or
			// equation places them.
		}
	}
	return -1
}

func isPlaced(placed map[int]placement, v int) bool {
	_, ok := placed[v]
	return ok
}

func allUnplaced(placed map[int]placement, vars []int) bool {
	for _, v := range vars {
		if isPlaced(placed, v) {
			return false
		}
	}
	return true
}

func tryOneInput(r *reasoner.Reasoner, placed map[int]placement, bf func() (int, int), kind layer.Kind, _ float64) bool {
	b, f := bf()
	if !isPlaced(placed, b) || isPlaced(placed, f) {
		return false
	}
	p := placed[b]
	gather := buildGatherLayer(r, placed, []int{b})
	_ = p
	out := layer.New(r.NumLayers(), kind, 1)
	out.SourceLayers = []int{gather.Index}
	out.SetNeuronVariable(0, f)
	idx := r.AddLayer(out)
	placed[f] = placement{layerIndex: idx, neuron: 0}
	return true
}

func tryOneInputParam(r *reasoner.Reasoner, placed map[int]placement, bf func() (int, int), kind layer.Kind, param float64) bool {
	b, f := bf()
	if !isPlaced(placed, b) || isPlaced(placed, f) {
		return false
	}
	gather := buildGatherLayer(r, placed, []int{b})
	out := layer.New(r.NumLayers(), kind, 1)
	out.SourceLayers = []int{gather.Index}
	out.LeakyReluSlope = param
	out.SetNeuronVariable(0, f)
	idx := r.AddLayer(out)
	placed[f] = placement{layerIndex: idx, neuron: 0}
	return true
}
