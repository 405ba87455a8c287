package layer

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// SymbolicPropagate recomputes this layer's affine (symbolic) bounds
// over the input layer's variables by back-substituting through
// sources, then evaluates those affine bounds at the input layer's box
// to produce any resulting interval tightenings. Grounded on
// Layer::computeSymbolicBoundsForInput / ForRelu / ForWeightedSum (read
// in full) for Input, Relu and WeightedSum; Relu, LeakyRelu,
// AbsoluteValue, Sigmoid, Round and Sign follow the same single-neuron
// point-slope relaxation (the triangle/chord relaxation Relu uses,
// specialized per kind's monotonicity); Max and Bilinear need more than
// one source neuron per output and get their own composition; Softmax
// composes a tangent-plane tangent-at-center lower envelope the same
// way.
func (l *Layer) SymbolicPropagate(sources []*Layer, inputLayer *Layer) []Tightening {
	switch l.Kind {
	case KindInput:
		l.symbolicIdentity()
		return nil
	case KindWeightedSum:
		l.symbolicWeightedSum(sources)
	case KindMax:
		l.symbolicMax(sources[0])
	case KindBilinear:
		l.symbolicBilinear(sources[0], sources[1])
	case KindSoftmax:
		l.symbolicSoftmax(sources[0])
	default:
		l.symbolicPointSlope(sources[0])
	}
	return l.evaluateSymbolicAtInputBox(inputLayer)
}

// symbolicIdentity gives an Input layer symbolic bounds that are just
// its own variables: SymbolicLb = SymbolicUb = I, zero bias.
func (l *Layer) symbolicIdentity() {
	l.SymbolicLb = identity(l.Size)
	l.SymbolicUb = identity(l.Size)
	l.SymbolicLbBias = make([]float64, l.Size)
	l.SymbolicUbBias = make([]float64, l.Size)
}

func identity(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// symbolicWeightedSum back-substitutes the pos/neg weight split against
// each source's own symbolic bounds: a positive weight keeps the
// source's lower row for the new lower bound (and its upper row for the
// new upper bound); a negative weight swaps them. Mirrors
// Layer::computeSymbolicBoundsForWeightedSum's matrixMultiplication
// calls, ported to gonum/mat.
func (l *Layer) symbolicWeightedSum(sources []*Layer) {
	inputSize := 0
	for _, src := range sources {
		if src.SymbolicLb != nil {
			_, inputSize = src.SymbolicLb.Dims()
			break
		}
	}
	lb := mat.NewDense(l.Size, inputSize, nil)
	ub := mat.NewDense(l.Size, inputSize, nil)
	lbBias := make([]float64, l.Size)
	ubBias := make([]float64, l.Size)
	copy(lbBias, l.bias)
	copy(ubBias, l.bias)

	for _, src := range sources {
		wPos, okPos := l.wPos[src.Index]
		wNeg, okNeg := l.wNeg[src.Index]
		if !okPos || !okNeg || src.SymbolicLb == nil {
			continue
		}

		var termLo, termHi mat.Dense
		termLo.Mul(wPos, src.SymbolicLb)
		var negLoTerm mat.Dense
		negLoTerm.Mul(wNeg, src.SymbolicUb)
		termLo.Add(&termLo, &negLoTerm)

		termHi.Mul(wPos, src.SymbolicUb)
		var negHiTerm mat.Dense
		negHiTerm.Mul(wNeg, src.SymbolicLb)
		termHi.Add(&termHi, &negHiTerm)

		lb.Add(lb, &termLo)
		ub.Add(ub, &termHi)

		for t := 0; t < l.Size; t++ {
			for s := 0; s < src.Size; s++ {
				wp := wPos.At(t, s)
				wn := wNeg.At(t, s)
				lbBias[t] += wp*src.SymbolicLbBias[s] + wn*src.SymbolicUbBias[s]
				ubBias[t] += wp*src.SymbolicUbBias[s] + wn*src.SymbolicLbBias[s]
			}
		}
	}

	l.SymbolicLb, l.SymbolicUb = lb, ub
	l.SymbolicLbBias, l.SymbolicUbBias = lbBias, ubBias
}

// symbolicPointSlope applies a per-neuron linear relaxation of this
// layer's (monotone or piecewise-monotone) activation against the
// source's symbolic row: slope*source_row + intercept, with slope and
// intercept chosen from the source's current concrete interval the way
// the original's triangle/chord relaxations do for Relu and its
// siblings. Handles every single-source, single-neuron kind
// (Relu, LeakyRelu, AbsoluteValue, Sigmoid, Round, Sign); Max,
// Bilinear and Softmax have their own dedicated functions since their
// output depends on more than one source neuron.
func (l *Layer) symbolicPointSlope(source *Layer) {
	_, inputSize := 0, 0
	if source.SymbolicLb != nil {
		_, inputSize = source.SymbolicLb.Dims()
	}
	lb := mat.NewDense(l.Size, inputSize, nil)
	ub := mat.NewDense(l.Size, inputSize, nil)
	lbBias := make([]float64, l.Size)
	ubBias := make([]float64, l.Size)

	for i := 0; i < l.Size; i++ {
		lo, hi := source.LB[i], source.UB[i]
		loSlope, loIntercept, hiSlope, hiIntercept := l.pointSlopeFor(i, lo, hi)

		if source.SymbolicLb != nil {
			for k := 0; k < inputSize; k++ {
				srcRow := source.SymbolicLb.At(i, k)
				if loSlope < 0 {
					srcRow = source.SymbolicUb.At(i, k)
				}
				lb.Set(i, k, loSlope*srcRow)

				srcRowU := source.SymbolicUb.At(i, k)
				if hiSlope < 0 {
					srcRowU = source.SymbolicLb.At(i, k)
				}
				ub.Set(i, k, hiSlope*srcRowU)
			}
			srcLoBias := source.SymbolicLbBias[i]
			if loSlope < 0 {
				srcLoBias = source.SymbolicUbBias[i]
			}
			srcHiBias := source.SymbolicUbBias[i]
			if hiSlope < 0 {
				srcHiBias = source.SymbolicLbBias[i]
			}
			lbBias[i] = loSlope*srcLoBias + loIntercept
			ubBias[i] = hiSlope*srcHiBias + hiIntercept
		}
	}

	l.SymbolicLb, l.SymbolicUb = lb, ub
	l.SymbolicLbBias, l.SymbolicUbBias = lbBias, ubBias
}

// pointSlopeFor returns the (slope, intercept) pair for both the lower
// and upper symbolic line of neuron i over [lo, hi], per kind.
func (l *Layer) pointSlopeFor(i int, lo, hi float64) (loSlope, loIntercept, hiSlope, hiIntercept float64) {
	switch l.Kind {
	case KindRelu:
		if lo >= 0 {
			return 1, 0, 1, 0
		}
		if hi <= 0 {
			return 0, 0, 0, 0
		}
		slope := hi / (hi - lo)
		return 0, 0, slope, -slope * lo
	case KindLeakyRelu:
		slope := l.LeakyReluSlope
		if lo >= 0 {
			return 1, 0, 1, 0
		}
		if hi <= 0 {
			return slope, 0, slope, 0
		}
		chord := (hi - slope*lo) / (hi - lo)
		return slope, 0, chord, hi - chord*hi
	case KindAbsoluteValue:
		if lo >= 0 {
			return 1, 0, 1, 0
		}
		if hi <= 0 {
			return -1, 0, -1, 0
		}
		slope := (hi + lo) / (hi - lo)
		return 0, 0, slope, hi - slope*hi
	case KindSigmoid:
		sl, su := sigmoidValue(lo), sigmoidValue(hi)
		if math.IsInf(lo, 0) || math.IsInf(hi, 0) || hi <= lo {
			return 0, sl, 0, su
		}
		chord := (su - sl) / (hi - lo)
		minSlope := math.Min(sl*(1-sl), su*(1-su))
		loSlope, hiSlope = minSlope, minSlope
		if lo >= 0 {
			loSlope = chord
		}
		if hi <= 0 {
			hiSlope = chord
		}
		return loSlope, sl - loSlope*lo, hiSlope, su - hiSlope*hi
	case KindRound:
		return 0, math.Round(lo), 0, math.Round(hi)
	case KindSign:
		switch {
		case lo >= 0:
			return 0, 1, 0, 1
		case hi <= 0:
			return 0, -1, 0, -1
		default:
			// Parallelogram envelope y in [-1, 1]: the lower row is the
			// line through (0, -1) with slope 2/hi (reaches (hi, 1)),
			// the upper row the line through (0, 1) with slope -2/lo
			// (reaches (lo, -1)).
			return 2 / hi, -1, -2 / lo, 1
		}
	default:
		return 0, lo, 0, hi
	}
}

// scaledRowAndBias returns coeff times neuron i's symbolic row and bias
// from src, choosing src's lower or upper row so that the result is a
// valid contribution to a lower bound (forLowerBound true) or upper
// bound (false): a non-negative coefficient keeps the matching row, a
// negative one swaps lower for upper (and vice versa), the same sign
// rule symbolicWeightedSum applies per-matrix-entry via wPos/wNeg, here
// applied to a single scalar coefficient. Returns a nil row when src
// has no symbolic bounds yet.
func scaledRowAndBias(src *Layer, i int, coeff float64, forLowerBound bool) ([]float64, float64) {
	useLowerRow := (coeff >= 0) == forLowerBound
	var row *mat.Dense
	var biasSrc []float64
	if useLowerRow {
		row, biasSrc = src.SymbolicLb, src.SymbolicLbBias
	} else {
		row, biasSrc = src.SymbolicUb, src.SymbolicUbBias
	}
	if row == nil {
		return nil, 0
	}
	_, n := row.Dims()
	out := make([]float64, n)
	for k := 0; k < n; k++ {
		out[k] = coeff * row.At(i, k)
	}
	return out, coeff * biasSrc[i]
}

// symbolicMax handles y = max(x_1,...,x_k), source being the single
// size-k gather layer lifter.buildGatherLayer assembles for a Max
// constraint. When one element's lower bound strictly dominates every
// other element's upper bound, y equals that element exactly and both
// rows are copied straight from it. Otherwise the lower row inherits
// from the element with the largest current lower bound and the upper
// row degenerates to the scalar max_j x_j.ub. The dominance test is the
// one constraint.Max uses to fix its phase; intervalMax does not apply it.
func (l *Layer) symbolicMax(source *Layer) {
	inputSize := 0
	if source.SymbolicLb != nil {
		_, inputSize = source.SymbolicLb.Dims()
	}
	lb := mat.NewDense(l.Size, inputSize, nil)
	ub := mat.NewDense(l.Size, inputSize, nil)
	lbBias := make([]float64, l.Size)
	ubBias := make([]float64, l.Size)

	winner, dominant := maxDominantElement(source)

	for i := 0; i < l.Size; i++ {
		if dominant {
			if source.SymbolicLb != nil {
				for k := 0; k < inputSize; k++ {
					lb.Set(i, k, source.SymbolicLb.At(winner, k))
					ub.Set(i, k, source.SymbolicUb.At(winner, k))
				}
				lbBias[i] = source.SymbolicLbBias[winner]
				ubBias[i] = source.SymbolicUbBias[winner]
			}
			continue
		}

		maxLower, maxUpper := -1, math.Inf(-1)
		for j := 0; j < source.Size; j++ {
			if maxLower == -1 || source.LB[j] > source.LB[maxLower] {
				maxLower = j
			}
			maxUpper = math.Max(maxUpper, source.UB[j])
		}
		if source.SymbolicLb != nil && maxLower >= 0 {
			for k := 0; k < inputSize; k++ {
				lb.Set(i, k, source.SymbolicLb.At(maxLower, k))
			}
			lbBias[i] = source.SymbolicLbBias[maxLower]
		}
		ubBias[i] = maxUpper
	}

	l.SymbolicLb, l.SymbolicUb = lb, ub
	l.SymbolicLbBias, l.SymbolicUbBias = lbBias, ubBias
}

// maxDominantElement reports the element whose lower bound strictly
// exceeds every other element's upper bound, i.e. the element Max's
// phase would fix on — mirrors constraint.Max's own dominance check,
// computed independently here from the layer's own interval state
// since package layer cannot import package constraint.
func maxDominantElement(source *Layer) (winner int, ok bool) {
	for i := 0; i < source.Size; i++ {
		dominates := true
		for j := 0; j < source.Size; j++ {
			if j == i {
				continue
			}
			if source.LB[i] <= source.UB[j] {
				dominates = false
				break
			}
		}
		if dominates {
			return i, true
		}
	}
	return -1, false
}

// symbolicBilinear composes McCormick's envelope with x and y's own
// symbolic rows: z >= l_y*x + l_x*y - l_x*l_y (lower) and
// z <= u_y*x + l_x*y - l_x*u_y (upper) — the pair Scenario F's x in
// [-1,2], y in [3,5] box resolves to 3x-y+3 / 5x-y+5.
func (l *Layer) symbolicBilinear(x, y *Layer) {
	inputSize := 0
	if x.SymbolicLb != nil {
		_, inputSize = x.SymbolicLb.Dims()
	}
	lb := mat.NewDense(l.Size, inputSize, nil)
	ub := mat.NewDense(l.Size, inputSize, nil)
	lbBias := make([]float64, l.Size)
	ubBias := make([]float64, l.Size)

	for i := 0; i < l.Size; i++ {
		xl, yl, yu := x.LB[i], y.LB[i], y.UB[i]

		xRowLo, xBiasLo := scaledRowAndBias(x, i, yl, true)
		yRowLo, yBiasLo := scaledRowAndBias(y, i, xl, true)
		xRowHi, xBiasHi := scaledRowAndBias(x, i, yu, false)
		yRowHi, yBiasHi := scaledRowAndBias(y, i, xl, false)

		for k := 0; k < inputSize; k++ {
			v := 0.0
			if xRowLo != nil {
				v += xRowLo[k]
			}
			if yRowLo != nil {
				v += yRowLo[k]
			}
			lb.Set(i, k, v)

			v = 0.0
			if xRowHi != nil {
				v += xRowHi[k]
			}
			if yRowHi != nil {
				v += yRowHi[k]
			}
			ub.Set(i, k, v)
		}
		lbBias[i] = xBiasLo + yBiasLo - xl*yl
		ubBias[i] = xBiasHi + yBiasHi - xl*yu
	}

	l.SymbolicLb, l.SymbolicUb = lb, ub
	l.SymbolicLbBias, l.SymbolicUbBias = lbBias, ubBias
}

// symbolicSoftmax builds a tangent-at-midpoint lower envelope from
// softmaxTangentSlope's Jacobian evaluated at softmaxMidpoints,
// composed through source's own symbolic rows by the same scaledRowAndBias
// chain rule Bilinear uses. The upper envelope falls back to the
// concrete interval bound intervalSoftmax already tightened this sweep
// (IntervalPropagate always runs before SymbolicPropagate): softmax is
// not concave, so the tangent plane is not in general a sound upper
// bound, and no second closed-form envelope is specified for it.
func (l *Layer) symbolicSoftmax(source *Layer) {
	inputSize := 0
	if source.SymbolicLb != nil {
		_, inputSize = source.SymbolicLb.Dims()
	}
	lb := mat.NewDense(l.Size, inputSize, nil)
	ub := mat.NewDense(l.Size, inputSize, nil)
	lbBias := make([]float64, l.Size)
	ubBias := make([]float64, l.Size)

	mid := softmaxMidpoints(source)
	f := softmaxValuesAt(mid)

	for i := 0; i < l.Size; i++ {
		bias := f[i]
		for j := 0; j < source.Size; j++ {
			slope := softmaxTangentSlope(f, i, j)
			bias -= slope * mid[j]

			row, rowBias := scaledRowAndBias(source, j, slope, true)
			bias += rowBias
			if row != nil {
				for k := 0; k < inputSize; k++ {
					lb.Set(i, k, lb.At(i, k)+row[k])
				}
			}
		}
		lbBias[i] = bias
		ubBias[i] = l.UB[i]
	}

	l.SymbolicLb, l.SymbolicUb = lb, ub
	l.SymbolicLbBias, l.SymbolicUbBias = lbBias, ubBias
}

// evaluateSymbolicAtInputBox walks this layer's symbolic bounds against
// the input layer's current [LB, UB] box to produce concrete
// tightenings, the same way back-substitution "pays off" in the
// original once it reaches variable 0.
func (l *Layer) evaluateSymbolicAtInputBox(inputLayer *Layer) []Tightening {
	var out []Tightening
	if l.SymbolicLb == nil {
		return nil
	}
	_, inputSize := l.SymbolicLb.Dims()
	for i := 0; i < l.Size; i++ {
		// lbOfLb/ubOfLb are the symbolic lower row's own range over the
		// input box (its min pays off as this neuron's new lower bound,
		// its max bounds how loose that row could have been); lbOfUb/
		// ubOfUb are the symbolic upper row's range, symmetrically.
		lbOfLb, ubOfLb := l.SymbolicLbBias[i], l.SymbolicLbBias[i]
		lbOfUb, ubOfUb := l.SymbolicUbBias[i], l.SymbolicUbBias[i]
		for k := 0; k < inputSize; k++ {
			cLo := l.SymbolicLb.At(i, k)
			cHi := l.SymbolicUb.At(i, k)
			if cLo >= 0 {
				lbOfLb += cLo * inputLayer.LB[k]
				ubOfLb += cLo * inputLayer.UB[k]
			} else {
				lbOfLb += cLo * inputLayer.UB[k]
				ubOfLb += cLo * inputLayer.LB[k]
			}
			if cHi >= 0 {
				lbOfUb += cHi * inputLayer.LB[k]
				ubOfUb += cHi * inputLayer.UB[k]
			} else {
				lbOfUb += cHi * inputLayer.UB[k]
				ubOfUb += cHi * inputLayer.LB[k]
			}
		}
		l.LbOfLb[i], l.UbOfLb[i] = lbOfLb, ubOfLb
		l.LbOfUb[i], l.UbOfUb[i] = lbOfUb, ubOfUb
		l.tightenLower(i, lbOfLb, &out)
		l.tightenUpper(i, ubOfUb, &out)
	}
	return out
}
