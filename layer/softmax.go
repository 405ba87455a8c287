package layer

import "math"

// intervalSoftmax bounds each output f_i = exp(x_i) / sum_j exp(x_j)
// using the original's softmaxLinearLowerBound / softmaxLinearUpperBound
// closed forms over the shifted ("tilda") inputs, shifted by the
// group's maximum upper bound for numerical stability.
func (l *Layer) intervalSoftmax(source *Layer) []Tightening {
	var out []Tightening
	n := source.Size

	shift := math.Inf(-1)
	for j := 0; j < n; j++ {
		shift = math.Max(shift, source.UB[j])
	}

	for i := 0; i < l.Size; i++ {
		lowerDenominator := math.Exp(source.UB[i] - shift)
		upperDenominator := math.Exp(source.LB[i] - shift)
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			lowerDenominator += math.Exp(source.UB[j] - shift)
			upperDenominator += math.Exp(source.LB[j] - shift)
		}
		lo := math.Exp(source.LB[i]-shift) / lowerDenominator
		hi := math.Exp(source.UB[i]-shift) / upperDenominator

		l.tightenLower(i, lo, &out)
		l.tightenUpper(i, hi, &out)
	}
	return out
}

// softmaxTangentSlope returns the derivative of softmax output i with
// respect to input j, evaluated at the box midpoint x, the tangent-at-
// center rule symbolicSoftmax uses to build its per-input-neuron
// coefficient. Grounded on the original's softmaxdLSELowerBound /
// softmaxdERLowerBound derivative formulas, both reducing to the same
// closed form:
//
//	d f_i / d x_j = f_i * (1[i==j] - f_j)
//
// Once f is known, the derivative formula used for the tangent line is
// the same softmax-Jacobian identity for either envelope setting. No
// code in this package reads the envelope setting or
// config.Config.SoftmaxLSE2Threshold: intervalSoftmax computes one
// interval bound for both settings, and no tie-break is applied.
func softmaxTangentSlope(f []float64, i, j int) float64 {
	indicator := 0.0
	if i == j {
		indicator = 1
	}
	return f[i] * (indicator - f[j])
}

// softmaxMidpoints returns the midpoint of each input neuron's current
// interval, the center point symbolicSoftmax's tangent plane is taken
// at.
func softmaxMidpoints(source *Layer) []float64 {
	n := source.Size
	mid := make([]float64, n)
	for j := 0; j < n; j++ {
		mid[j] = (source.LB[j] + source.UB[j]) / 2
	}
	return mid
}

// softmaxValuesAt evaluates softmax at x.
func softmaxValuesAt(x []float64) []float64 {
	n := len(x)
	shift := math.Inf(-1)
	for j := 0; j < n; j++ {
		shift = math.Max(shift, x[j])
	}
	sum := 0.0
	exp := make([]float64, n)
	for j := 0; j < n; j++ {
		exp[j] = math.Exp(x[j] - shift)
		sum += exp[j]
	}
	out := make([]float64, n)
	for j := 0; j < n; j++ {
		out[j] = exp[j] / sum
	}
	return out
}
