package layer

import "math"

// IntervalPropagate recomputes this layer's [LB, UB] interval from its
// sources' current intervals, in the order SourceLayers lists them.
// Returns the tightenings (in terms of this layer's own neuron-to-
// variable mapping) that improved on the previous bound; the caller
// (reasoner.Reasoner) threads them into the query and into any
// constraint watching the affected variable.
//
// Formulas are grounded directly on Layer.cpp's
// computeIntervalArithmeticBoundsFor* family, one switch case per kind.
func (l *Layer) IntervalPropagate(sources []*Layer) []Tightening {
	switch l.Kind {
	case KindInput:
		return nil
	case KindWeightedSum:
		return l.intervalWeightedSum(sources)
	case KindRelu:
		return l.intervalElementwise(sources[0], func(lo, hi float64) (float64, float64) {
			return math.Max(0, lo), math.Max(0, hi)
		})
	case KindLeakyRelu:
		slope := l.LeakyReluSlope
		return l.intervalElementwise(sources[0], func(lo, hi float64) (float64, float64) {
			switch {
			case lo >= 0:
				return lo, hi
			case hi <= 0:
				return slope * hi, slope * lo
			default:
				return slope * lo, hi
			}
		})
	case KindSign:
		return l.intervalElementwise(sources[0], func(lo, hi float64) (float64, float64) {
			switch {
			case lo >= 0:
				return 1, 1
			case hi < 0:
				return -1, -1
			default:
				return -1, 1
			}
		})
	case KindAbsoluteValue:
		return l.intervalElementwise(sources[0], func(lo, hi float64) (float64, float64) {
			switch {
			case lo >= 0:
				return lo, hi
			case hi <= 0:
				return -hi, -lo
			default:
				return 0, math.Max(-lo, hi)
			}
		})
	case KindRound:
		return l.intervalElementwise(sources[0], func(lo, hi float64) (float64, float64) {
			return math.Round(lo), math.Round(hi)
		})
	case KindSigmoid:
		return l.intervalElementwise(sources[0], func(lo, hi float64) (float64, float64) {
			return sigmoidValue(lo), sigmoidValue(hi)
		})
	case KindSoftmax:
		return l.intervalSoftmax(sources[0])
	case KindBilinear:
		return l.intervalBilinear(sources[0], sources[1])
	case KindMax:
		return l.intervalMax(sources)
	default:
		return nil
	}
}

// Tightening is layer's local echo of query.Tightening's shape, kept
// dependency-free of package query (layer imports nothing from query
// or reasoner, keeping the package dependency graph acyclic); the
// reasoner converts a Tightening into a query.Tightening when it knows
// the neuron's variable index.
type Tightening struct {
	Neuron int
	Value  float64
	Lower  bool // true: lower bound; false: upper bound
}

func (l *Layer) tightenLower(neuron int, value float64, out *[]Tightening) {
	if value > l.LB[neuron] {
		l.LB[neuron] = value
		*out = append(*out, Tightening{Neuron: neuron, Value: value, Lower: true})
	}
}

func (l *Layer) tightenUpper(neuron int, value float64, out *[]Tightening) {
	if value < l.UB[neuron] {
		l.UB[neuron] = value
		*out = append(*out, Tightening{Neuron: neuron, Value: value, Lower: false})
	}
}

func (l *Layer) intervalElementwise(source *Layer, f func(lo, hi float64) (float64, float64)) []Tightening {
	var out []Tightening
	for i := 0; i < l.Size; i++ {
		lo, hi := f(source.LB[i], source.UB[i])
		l.tightenLower(i, lo, &out)
		l.tightenUpper(i, hi, &out)
	}
	return out
}

func (l *Layer) intervalWeightedSum(sources []*Layer) []Tightening {
	var out []Tightening
	for t := 0; t < l.Size; t++ {
		lo, hi := l.bias[t], l.bias[t]
		for _, src := range sources {
			wPos, okPos := l.wPos[src.Index]
			wNeg, okNeg := l.wNeg[src.Index]
			if !okPos || !okNeg {
				continue
			}
			for s := 0; s < src.Size; s++ {
				lo += wPos.At(t, s)*src.LB[s] + wNeg.At(t, s)*src.UB[s]
				hi += wPos.At(t, s)*src.UB[s] + wNeg.At(t, s)*src.LB[s]
			}
		}
		l.tightenLower(t, lo, &out)
		l.tightenUpper(t, hi, &out)
	}
	return out
}

func (l *Layer) intervalBilinear(x, y *Layer) []Tightening {
	var out []Tightening
	for i := 0; i < l.Size; i++ {
		xl, xu := x.LB[i], x.UB[i]
		yl, yu := y.LB[i], y.UB[i]
		corners := [4]float64{xl * yl, xl * yu, xu * yl, xu * yu}
		lo, hi := corners[0], corners[0]
		for _, c := range corners[1:] {
			lo = math.Min(lo, c)
			hi = math.Max(hi, c)
		}
		l.tightenLower(i, lo, &out)
		l.tightenUpper(i, hi, &out)
	}
	return out
}

// intervalMax bounds y = max(x_1,...,x_k) where the k candidate
// elements arrive zipped into a single gather-layer source (built by
// lifter.buildGatherLayer), not as k separate source layers: every
// element of that one source contributes to the lone output neuron.
func (l *Layer) intervalMax(sources []*Layer) []Tightening {
	var out []Tightening
	src := sources[0]
	for i := 0; i < l.Size; i++ {
		lo, hi := math.Inf(-1), math.Inf(-1)
		for j := 0; j < src.Size; j++ {
			lo = math.Max(lo, src.LB[j])
			hi = math.Max(hi, src.UB[j])
		}
		l.tightenLower(i, lo, &out)
		l.tightenUpper(i, hi, &out)
	}
	return out
}
