// Package layer implements the typed DAG of layers a Reasoner
// propagates bounds through: an Input layer, one or more WeightedSum
// layers, and the elementwise/grouped activation kinds (Relu,
// LeakyRelu, Sign, AbsoluteValue, Round, Sigmoid, Softmax, Bilinear,
// Max).
//
// Layers never hold pointers to each other. A Layer only knows the
// integer indices of its source layers; the owning reasoner.Reasoner
// resolves an index to a *Layer through its arena slice, the same
// index-keyed adjacency core.Graph uses internally (no node ever
// stores a pointer to another node).
package layer

import (
	"math"

	"github.com/katalvlaran/nlreason/config"
	"gonum.org/v1/gonum/mat"
)

// Layer is one node of the bound-propagation DAG.
type Layer struct {
	Index int
	Kind  Kind
	Size  int

	// SourceLayers holds the integer indices of predecessor layers, in
	// the order their contributions are summed (WeightedSum) or zipped
	// (elementwise activations operate on exactly one source of equal size).
	SourceLayers []int

	// NeuronToVariable maps a neuron's position within this layer to
	// the query.Query variable index it corresponds to; VariableToNeuron
	// is its inverse. Both are kept in sync through SetNeuronVariable —
	// callers should not assign NeuronToVariable's elements directly.
	NeuronToVariable []int
	VariableToNeuron map[int]int

	// Assignment holds a concrete per-neuron point value: the "concrete
	// assignment" propagation pass's output, carried alongside interval
	// arithmetic and symbolic bound tightening.
	Assignment []float64

	// Per-source weight matrices for WeightedSum layers: w[source] is
	// Size x sourceLayer.Size. wPos/wNeg cache the elementwise
	// positive/negative split maintained by SetWeight, mirroring
	// Layer::setWeight's pos/neg bookkeeping in the original, ported
	// from raw double* arrays to gonum/mat.Dense.
	w    map[int]*mat.Dense
	wPos map[int]*mat.Dense
	wNeg map[int]*mat.Dense
	bias []float64

	// Interval-arithmetic bound state.
	LB []float64
	UB []float64

	// "Bound of bound" scalars: the minimum and maximum over the input
	// layer's box of the neuron's symbolic lower row (LbOfLb, UbOfLb)
	// and symbolic upper row (LbOfUb, UbOfUb).
	LbOfLb []float64
	UbOfLb []float64
	LbOfUb []float64
	UbOfUb []float64

	// Symbolic bounds: affine coefficients over the input layer's
	// variables, plus a per-neuron bias, such that
	//   SymbolicLb.RowView(i)·x + SymbolicLbBias[i] <= neuron_i <= SymbolicUb.RowView(i)·x + SymbolicUbBias[i]
	// for every input assignment x in the input layer's box.
	SymbolicLb     *mat.Dense
	SymbolicUb     *mat.Dense
	SymbolicLbBias []float64
	SymbolicUbBias []float64

	// LeakyReluSlope and SoftmaxEnvelope carry the one extra per-layer
	// parameter a subset of kinds need.
	LeakyReluSlope  float64
	SoftmaxEnvelope config.SoftmaxEnvelope
}

// New returns a freshly allocated layer of the given kind and size,
// with all bounds initialized to [-Inf, +Inf].
func New(index int, kind Kind, size int) *Layer {
	l := &Layer{
		Index:            index,
		Kind:             kind,
		Size:             size,
		NeuronToVariable: make([]int, size),
		VariableToNeuron: make(map[int]int, size),
		Assignment:       make([]float64, size),
		w:                make(map[int]*mat.Dense),
		wPos:             make(map[int]*mat.Dense),
		wNeg:             make(map[int]*mat.Dense),
		bias:             make([]float64, size),
		LB:               make([]float64, size),
		UB:               make([]float64, size),
		LbOfLb:           make([]float64, size),
		UbOfLb:           make([]float64, size),
		LbOfUb:           make([]float64, size),
		UbOfUb:           make([]float64, size),
		LeakyReluSlope:   0.1,
		SoftmaxEnvelope:  config.EnvelopeLSE,
	}
	for i := range l.LB {
		l.LB[i] = math.Inf(-1)
		l.UB[i] = math.Inf(1)
	}
	return l
}

// SetNeuronVariable records that neuron i of this layer corresponds to
// query variable v, keeping NeuronToVariable and VariableToNeuron in
// sync. Every assignment into NeuronToVariable must go through this
// method rather than indexing the slice directly.
func (l *Layer) SetNeuronVariable(i, v int) {
	l.NeuronToVariable[i] = v
	l.VariableToNeuron[v] = i
}

// AddSourceLayer registers a predecessor layer index and, for
// WeightedSum layers, allocates the (initially zero) weight matrix
// against it.
func (l *Layer) AddSourceLayer(sourceIndex, sourceSize int) {
	l.SourceLayers = append(l.SourceLayers, sourceIndex)
	if l.Kind == KindWeightedSum {
		l.w[sourceIndex] = mat.NewDense(l.Size, sourceSize, nil)
		l.wPos[sourceIndex] = mat.NewDense(l.Size, sourceSize, nil)
		l.wNeg[sourceIndex] = mat.NewDense(l.Size, sourceSize, nil)
	}
}

// SetWeight assigns the weight of sourceNeuron (in the named source
// layer) feeding targetNeuron, maintaining the positive/negative split
// used by interval-arithmetic propagation. Mirrors Layer::setWeight.
func (l *Layer) SetWeight(sourceIndex, sourceNeuron, targetNeuron int, weight float64) {
	w, ok := l.w[sourceIndex]
	if !ok {
		return
	}
	w.Set(targetNeuron, sourceNeuron, weight)
	if weight > 0 {
		l.wPos[sourceIndex].Set(targetNeuron, sourceNeuron, weight)
		l.wNeg[sourceIndex].Set(targetNeuron, sourceNeuron, 0)
	} else {
		l.wPos[sourceIndex].Set(targetNeuron, sourceNeuron, 0)
		l.wNeg[sourceIndex].Set(targetNeuron, sourceNeuron, weight)
	}
}

// Weight returns the weight of sourceNeuron feeding targetNeuron
// through the named source layer, or 0 if the source is unknown.
func (l *Layer) Weight(sourceIndex, sourceNeuron, targetNeuron int) float64 {
	w, ok := l.w[sourceIndex]
	if !ok {
		return 0
	}
	return w.At(targetNeuron, sourceNeuron)
}

// SetBias assigns neuron i's additive bias term.
func (l *Layer) SetBias(i int, value float64) { l.bias[i] = value }

// Bias returns neuron i's additive bias term.
func (l *Layer) Bias(i int) float64 { return l.bias[i] }

// CheckInvariants enforces this layer's structural invariants (sizes
// line up, bounds never cross, every weighted-sum source has a weight
// matrix, the
// symbolic bound-of-bound scalars dominate the concrete interval, the
// concrete assignment falls inside it). Called only when cfg.Debug is
// set, mirroring the original's DEBUG(...) macro — Go has no
// assert-stripping build flag worth fabricating for this.
func (l *Layer) CheckInvariants(cfg config.Config) error {
	if !cfg.Debug {
		return nil
	}
	if len(l.LB) != l.Size || len(l.UB) != l.Size {
		return errInvariant("bound slice length does not match layer size")
	}
	for i := range l.LB {
		if l.LB[i] > l.UB[i]+cfg.Epsilon {
			return errInvariant("lower bound exceeds upper bound")
		}
	}
	if l.SymbolicLb != nil {
		for i := range l.LB {
			if l.LB[i] < l.LbOfLb[i]-cfg.Epsilon {
				return errInvariant("lower bound looser than symbolic lower row's own minimum")
			}
			if l.UB[i] > l.UbOfUb[i]+cfg.Epsilon {
				return errInvariant("upper bound looser than symbolic upper row's own maximum")
			}
		}
	}
	if l.Kind == KindWeightedSum {
		for _, src := range l.SourceLayers {
			if _, ok := l.w[src]; !ok {
				return errInvariant("weighted-sum layer missing weight matrix for a registered source")
			}
		}
	}
	for i := range l.Assignment {
		if l.Assignment[i] < l.LB[i]-cfg.Epsilon || l.Assignment[i] > l.UB[i]+cfg.Epsilon {
			return errInvariant("concrete assignment falls outside the propagated interval")
		}
	}
	return nil
}
