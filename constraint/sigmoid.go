package constraint

import (
	"math"
	"strconv"

	"github.com/katalvlaran/nlreason/query"
)

// Sigmoid enforces f = 1 / (1 + exp(-b)). Smooth-nonlinear, monotone,
// never case-splits: its bound tightenings come from evaluating the
// (monotone increasing) function at b's current interval endpoints,
// grounded on Layer::computeIntervalArithmeticBoundsForSigmoid.
type Sigmoid struct {
	b, f       int
	eliminated map[int]float64
}

func NewSigmoid(b, f int) *Sigmoid {
	return &Sigmoid{b: b, f: f, eliminated: make(map[int]float64)}
}

func sigmoidValue(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

// BF returns the (pre-activation, post-activation) variable pair.
func (c *Sigmoid) BF() (int, int) { return c.b, c.f }

func (c *Sigmoid) Kind() query.Kind             { return query.KindSigmoid }
func (c *Sigmoid) ParticipatingVariables() []int { return []int{c.b, c.f} }
func (c *Sigmoid) ParticipatesIn(v int) bool     { return v == c.b || v == c.f }

func (c *Sigmoid) Duplicate() query.Constraint {
	cp := NewSigmoid(c.b, c.f)
	for k, v := range c.eliminated {
		cp.eliminated[k] = v
	}
	return cp
}

func (c *Sigmoid) Serialize() string {
	return "sigmoid," + strconv.Itoa(c.b) + "," + strconv.Itoa(c.f)
}

func (c *Sigmoid) NotifyLower(int, float64) {}
func (c *Sigmoid) NotifyUpper(int, float64) {}

func (c *Sigmoid) EntailedTightenings(*[]query.Tightening) {}

func (c *Sigmoid) AllCases() []query.Phase          { return nil }
func (c *Sigmoid) CaseSplit(query.Phase) query.PieceSplit { return query.PieceSplit{} }

func (c *Sigmoid) TransformToUseAux(*query.Query) {}

func (c *Sigmoid) CostTerm(query.Phase, *query.LinearExpr) {}

func (c *Sigmoid) EliminateVariable(v int, value float64) { c.eliminated[v] = value }

func (c *Sigmoid) IsObsolete() bool {
	_, bOK := c.eliminated[c.b]
	_, fOK := c.eliminated[c.f]
	return bOK && fOK
}

func (c *Sigmoid) RestoreState(other query.Constraint) {
	o := other.(*Sigmoid)
	c.b, c.f = o.b, o.f
	c.eliminated = make(map[int]float64, len(o.eliminated))
	for k, v := range o.eliminated {
		c.eliminated[k] = v
	}
}

func (c *Sigmoid) Phase() query.Phase { return query.PhaseUnfixed }
