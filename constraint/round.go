package constraint

import (
	"math"
	"strconv"

	"github.com/katalvlaran/nlreason/query"
)

// Round enforces f = round(b) (nearest integer, ties away from zero).
// Smooth-nonlinear: it never case-splits and emits no tightenings of
// its own (EntailedTightenings is empty); package layer's Round layer
// bounds f by the rounded ends of b's interval.
type Round struct {
	b, f       int
	eliminated map[int]float64
}

func NewRound(b, f int) *Round {
	return &Round{b: b, f: f, eliminated: make(map[int]float64)}
}

// BF returns the (pre-activation, post-activation) variable pair.
func (c *Round) BF() (int, int) { return c.b, c.f }

func (c *Round) Kind() query.Kind             { return query.KindRound }
func (c *Round) ParticipatingVariables() []int { return []int{c.b, c.f} }
func (c *Round) ParticipatesIn(v int) bool     { return v == c.b || v == c.f }

func (c *Round) Duplicate() query.Constraint {
	cp := NewRound(c.b, c.f)
	for k, v := range c.eliminated {
		cp.eliminated[k] = v
	}
	return cp
}

func (c *Round) Serialize() string {
	return "round," + strconv.Itoa(c.b) + "," + strconv.Itoa(c.f)
}

func (c *Round) NotifyLower(v int, x float64) {
	if v == c.b {
		// f's lower bound is round(lb(b)); round is monotone, and this
		// constraint records nothing here: package layer derives f's
		// bounds from b's interval.
		_ = math.Round(x)
	}
}

func (c *Round) NotifyUpper(int, float64) {}

func (c *Round) EntailedTightenings(*[]query.Tightening) {}

func (c *Round) AllCases() []query.Phase          { return nil }
func (c *Round) CaseSplit(query.Phase) query.PieceSplit { return query.PieceSplit{} }

func (c *Round) TransformToUseAux(*query.Query) {}

func (c *Round) CostTerm(query.Phase, *query.LinearExpr) {}

func (c *Round) EliminateVariable(v int, value float64) { c.eliminated[v] = value }

func (c *Round) IsObsolete() bool {
	_, bOK := c.eliminated[c.b]
	_, fOK := c.eliminated[c.f]
	return bOK && fOK
}

func (c *Round) RestoreState(other query.Constraint) {
	o := other.(*Round)
	c.b, c.f = o.b, o.f
	c.eliminated = make(map[int]float64, len(o.eliminated))
	for k, v := range o.eliminated {
		c.eliminated[k] = v
	}
}

func (c *Round) Phase() query.Phase { return query.PhaseUnfixed }
