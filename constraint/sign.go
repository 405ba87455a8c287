package constraint

import (
	"strconv"

	"github.com/katalvlaran/nlreason/query"
)

const (
	PhaseSignPositive query.Phase = iota + 1
	PhaseSignNegative
)

// Sign enforces f = +1 if b >= 0, else f = -1.
type Sign struct {
	phaseGuard
	b, f       int
	eliminated map[int]float64
}

func NewSign(b, f int) *Sign {
	return &Sign{b: b, f: f, eliminated: make(map[int]float64)}
}

// BF returns the (pre-activation, post-activation) variable pair.
func (c *Sign) BF() (int, int) { return c.b, c.f }

func (c *Sign) Kind() query.Kind             { return query.KindSign }
func (c *Sign) ParticipatingVariables() []int { return []int{c.b, c.f} }
func (c *Sign) ParticipatesIn(v int) bool     { return v == c.b || v == c.f }

func (c *Sign) Duplicate() query.Constraint {
	cp := NewSign(c.b, c.f)
	cp.phase = c.phase
	for k, v := range c.eliminated {
		cp.eliminated[k] = v
	}
	return cp
}

func (c *Sign) Serialize() string {
	return "sign," + strconv.Itoa(c.b) + "," + strconv.Itoa(c.f)
}

func (c *Sign) NotifyLower(v int, x float64) {
	if v == c.b && x >= 0 {
		c.setPhase(PhaseSignPositive)
	}
}

func (c *Sign) NotifyUpper(v int, x float64) {
	if v == c.b && x < 0 {
		c.setPhase(PhaseSignNegative)
	}
}

func (c *Sign) EntailedTightenings(buf *[]query.Tightening) {
	switch c.phase {
	case PhaseSignPositive:
		*buf = append(*buf,
			query.Tightening{Variable: c.b, Bound: query.BoundLower, Value: 0},
			query.Tightening{Variable: c.f, Bound: query.BoundLower, Value: 1},
			query.Tightening{Variable: c.f, Bound: query.BoundUpper, Value: 1},
		)
	case PhaseSignNegative:
		*buf = append(*buf,
			query.Tightening{Variable: c.f, Bound: query.BoundLower, Value: -1},
			query.Tightening{Variable: c.f, Bound: query.BoundUpper, Value: -1},
		)
	}
}

func (c *Sign) AllCases() []query.Phase {
	return []query.Phase{PhaseSignPositive, PhaseSignNegative}
}

func (c *Sign) CaseSplit(p query.Phase) query.PieceSplit {
	switch p {
	case PhaseSignPositive:
		return query.PieceSplit{Tightenings: []query.Tightening{
			{Variable: c.b, Bound: query.BoundLower, Value: 0},
			{Variable: c.f, Bound: query.BoundLower, Value: 1},
			{Variable: c.f, Bound: query.BoundUpper, Value: 1},
		}}
	case PhaseSignNegative:
		upperBeforeZero := negativeUpperSentinel
		return query.PieceSplit{Tightenings: []query.Tightening{
			{Variable: c.b, Bound: query.BoundUpper, Value: upperBeforeZero},
			{Variable: c.f, Bound: query.BoundLower, Value: -1},
			{Variable: c.f, Bound: query.BoundUpper, Value: -1},
		}}
	default:
		return query.PieceSplit{}
	}
}

// negativeUpperSentinel approximates b < 0 as b <= 0 at the engine's
// tightening granularity: this relation has no interior boundary point
// (Sign is discontinuous at 0, unlike Relu/LeakyRelu), so the two cases
// share the boundary the way the original's SignConstraint does.
const negativeUpperSentinel = 0

func (c *Sign) TransformToUseAux(*query.Query) {}

func (c *Sign) CostTerm(p query.Phase, expr *query.LinearExpr) {
	switch p {
	case PhaseSignPositive:
		expr.Add(c.b, -1)
	case PhaseSignNegative:
		expr.Add(c.b, 1)
	}
}

func (c *Sign) EliminateVariable(v int, value float64) { c.eliminated[v] = value }

func (c *Sign) IsObsolete() bool {
	_, bOK := c.eliminated[c.b]
	_, fOK := c.eliminated[c.f]
	return bOK && fOK
}

func (c *Sign) RestoreState(other query.Constraint) {
	o := other.(*Sign)
	c.b, c.f = o.b, o.f
	c.restoreState(o.phase)
	c.eliminated = make(map[int]float64, len(o.eliminated))
	for k, v := range o.eliminated {
		c.eliminated[k] = v
	}
}

func (c *Sign) Phase() query.Phase { return c.currentPhase() }
