package constraint

import (
	"strconv"

	"github.com/katalvlaran/nlreason/query"
)

const (
	PhaseAbsPositive query.Phase = iota + 1
	PhaseAbsNegative
)

// AbsoluteValue enforces f = |b|.
type AbsoluteValue struct {
	phaseGuard
	b, f       int
	eliminated map[int]float64
}

func NewAbsoluteValue(b, f int) *AbsoluteValue {
	return &AbsoluteValue{b: b, f: f, eliminated: make(map[int]float64)}
}

// BF returns the (pre-activation, post-activation) variable pair.
func (c *AbsoluteValue) BF() (int, int) { return c.b, c.f }

func (c *AbsoluteValue) Kind() query.Kind             { return query.KindAbsoluteValue }
func (c *AbsoluteValue) ParticipatingVariables() []int { return []int{c.b, c.f} }
func (c *AbsoluteValue) ParticipatesIn(v int) bool     { return v == c.b || v == c.f }

func (c *AbsoluteValue) Duplicate() query.Constraint {
	cp := NewAbsoluteValue(c.b, c.f)
	cp.phase = c.phase
	for k, v := range c.eliminated {
		cp.eliminated[k] = v
	}
	return cp
}

func (c *AbsoluteValue) Serialize() string {
	return "abs," + strconv.Itoa(c.b) + "," + strconv.Itoa(c.f)
}

func (c *AbsoluteValue) NotifyLower(v int, x float64) {
	if v == c.b && x >= 0 {
		c.setPhase(PhaseAbsPositive)
	}
}

func (c *AbsoluteValue) NotifyUpper(v int, x float64) {
	if v == c.b && x <= 0 {
		c.setPhase(PhaseAbsNegative)
	}
}

func (c *AbsoluteValue) EntailedTightenings(buf *[]query.Tightening) {
	switch c.phase {
	case PhaseAbsPositive:
		*buf = append(*buf, query.Tightening{Variable: c.b, Bound: query.BoundLower, Value: 0})
	case PhaseAbsNegative:
		*buf = append(*buf, query.Tightening{Variable: c.b, Bound: query.BoundUpper, Value: 0})
	}
}

func (c *AbsoluteValue) AllCases() []query.Phase {
	return []query.Phase{PhaseAbsPositive, PhaseAbsNegative}
}

func (c *AbsoluteValue) CaseSplit(p query.Phase) query.PieceSplit {
	eq := query.NewEquation(query.EquationEQ)
	eq.AddAddend(1, c.f)
	switch p {
	case PhaseAbsPositive:
		eq.AddAddend(-1, c.b)
		return query.PieceSplit{
			Tightenings: []query.Tightening{{Variable: c.b, Bound: query.BoundLower, Value: 0}},
			Equations:   []query.Equation{eq},
		}
	case PhaseAbsNegative:
		eq.AddAddend(1, c.b)
		return query.PieceSplit{
			Tightenings: []query.Tightening{{Variable: c.b, Bound: query.BoundUpper, Value: 0}},
			Equations:   []query.Equation{eq},
		}
	default:
		return query.PieceSplit{}
	}
}

func (c *AbsoluteValue) TransformToUseAux(*query.Query) {}

func (c *AbsoluteValue) CostTerm(p query.Phase, expr *query.LinearExpr) {
	switch p {
	case PhaseAbsPositive:
		expr.Add(c.b, -1)
	case PhaseAbsNegative:
		expr.Add(c.b, 1)
	}
}

func (c *AbsoluteValue) EliminateVariable(v int, value float64) { c.eliminated[v] = value }

func (c *AbsoluteValue) IsObsolete() bool {
	_, bOK := c.eliminated[c.b]
	_, fOK := c.eliminated[c.f]
	return bOK && fOK
}

func (c *AbsoluteValue) RestoreState(other query.Constraint) {
	o := other.(*AbsoluteValue)
	c.b, c.f = o.b, o.f
	c.restoreState(o.phase)
	c.eliminated = make(map[int]float64, len(o.eliminated))
	for k, v := range o.eliminated {
		c.eliminated[k] = v
	}
}

func (c *AbsoluteValue) Phase() query.Phase { return c.currentPhase() }
