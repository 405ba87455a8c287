package constraint

import (
	"strconv"

	"github.com/katalvlaran/nlreason/query"
)

const (
	PhaseLeakyReluActive query.Phase = iota + 1
	PhaseLeakyReluInactive
)

// LeakyRelu enforces f = b if b >= 0, else f = slope*b, for a fixed
// 0 < slope < 1. Grounded directly on LeakyReluConstraint.h: same two-
// phase shape as Relu, parameterized by slope instead of a hard zero.
type LeakyRelu struct {
	phaseGuard

	b, f  int
	slope float64

	eliminated map[int]float64
}

// NewLeakyRelu returns a fresh, unfixed LeakyRelu with the given slope.
func NewLeakyRelu(b, f int, slope float64) *LeakyRelu {
	return &LeakyRelu{b: b, f: f, slope: slope, eliminated: make(map[int]float64)}
}

// BF returns the (pre-activation, post-activation) variable pair.
func (c *LeakyRelu) BF() (int, int) { return c.b, c.f }

// Slope returns the configured negative-side slope.
func (c *LeakyRelu) Slope() float64 { return c.slope }

func (c *LeakyRelu) Kind() query.Kind             { return query.KindLeakyRelu }
func (c *LeakyRelu) ParticipatingVariables() []int { return []int{c.b, c.f} }
func (c *LeakyRelu) ParticipatesIn(v int) bool     { return v == c.b || v == c.f }

func (c *LeakyRelu) Duplicate() query.Constraint {
	cp := NewLeakyRelu(c.b, c.f, c.slope)
	cp.phase = c.phase
	for k, v := range c.eliminated {
		cp.eliminated[k] = v
	}
	return cp
}

func (c *LeakyRelu) Serialize() string {
	return "leakyRelu," + strconv.Itoa(c.b) + "," + strconv.Itoa(c.f) + "," + strconv.FormatFloat(c.slope, 'g', -1, 64)
}

func (c *LeakyRelu) NotifyLower(v int, x float64) {
	if v == c.b && x >= 0 {
		c.setPhase(PhaseLeakyReluActive)
	}
}

func (c *LeakyRelu) NotifyUpper(v int, x float64) {
	if v == c.b && x <= 0 {
		c.setPhase(PhaseLeakyReluInactive)
	}
}

func (c *LeakyRelu) EntailedTightenings(buf *[]query.Tightening) {
	switch c.phase {
	case PhaseLeakyReluActive:
		*buf = append(*buf, query.Tightening{Variable: c.b, Bound: query.BoundLower, Value: 0})
	case PhaseLeakyReluInactive:
		*buf = append(*buf, query.Tightening{Variable: c.b, Bound: query.BoundUpper, Value: 0})
	}
}

func (c *LeakyRelu) AllCases() []query.Phase {
	return []query.Phase{PhaseLeakyReluActive, PhaseLeakyReluInactive}
}

func (c *LeakyRelu) CaseSplit(p query.Phase) query.PieceSplit {
	eq := query.NewEquation(query.EquationEQ)
	eq.AddAddend(1, c.f)
	switch p {
	case PhaseLeakyReluActive:
		eq.AddAddend(-1, c.b)
		return query.PieceSplit{
			Tightenings: []query.Tightening{{Variable: c.b, Bound: query.BoundLower, Value: 0}},
			Equations:   []query.Equation{eq},
		}
	case PhaseLeakyReluInactive:
		eq.AddAddend(-c.slope, c.b)
		return query.PieceSplit{
			Tightenings: []query.Tightening{{Variable: c.b, Bound: query.BoundUpper, Value: 0}},
			Equations:   []query.Equation{eq},
		}
	default:
		return query.PieceSplit{}
	}
}

// TransformToUseAux is a no-op: LeakyRelu's two branches are both
// equalities (unlike Relu's f=0 branch), so no auxiliary slack variable
// is needed to linearize either case.
func (c *LeakyRelu) TransformToUseAux(*query.Query) {}

func (c *LeakyRelu) CostTerm(p query.Phase, expr *query.LinearExpr) {
	switch p {
	case PhaseLeakyReluActive:
		expr.Add(c.b, -1)
	case PhaseLeakyReluInactive:
		expr.Add(c.b, 1)
	}
}

func (c *LeakyRelu) EliminateVariable(v int, value float64) { c.eliminated[v] = value }

func (c *LeakyRelu) IsObsolete() bool {
	_, bOK := c.eliminated[c.b]
	_, fOK := c.eliminated[c.f]
	return bOK && fOK
}

func (c *LeakyRelu) RestoreState(other query.Constraint) {
	o := other.(*LeakyRelu)
	c.b, c.f, c.slope = o.b, o.f, o.slope
	c.restoreState(o.phase)
	c.eliminated = make(map[int]float64, len(o.eliminated))
	for k, v := range o.eliminated {
		c.eliminated[k] = v
	}
}

func (c *LeakyRelu) Phase() query.Phase { return c.currentPhase() }
