package layer

import "math"

// sigmoidValue evaluates the logistic sigmoid, duplicated from
// package constraint's unexported helper of the same shape: layer must
// not import constraint (constraint already imports query, and layer's
// symbolic propagation is the lower-level primitive constraint.Softmax
// and friends describe only declaratively — keeping layer dependency-
// free of constraint avoids a needless coupling for one math one-liner).
func sigmoidValue(x float64) float64 { return 1 / (1 + math.Exp(-x)) }
