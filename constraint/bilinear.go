package constraint

import (
	"strconv"

	"github.com/katalvlaran/nlreason/query"
)

// Bilinear enforces f = x*y for a two-input product, relaxed by the
// four McCormick envelope inequalities:
//
//	f >= xL*y + x*yL - xL*yL
//	f >= xU*y + x*yU - xU*yU
//	f <= xU*y + x*yL - xU*yL
//	f <= xL*y + x*yU - xL*yU
//
// Smooth-nonlinear, never case-splits: EntailedTightenings leaves bound
// propagation to package layer, which recomputes the McCormick
// envelope from x and y's current interval on every sweep.
type Bilinear struct {
	x, y, f    int
	eliminated map[int]float64
}

func NewBilinear(x, y, f int) *Bilinear {
	return &Bilinear{x: x, y: y, f: f, eliminated: make(map[int]float64)}
}

// XYF returns the two input variables and the output variable.
func (c *Bilinear) XYF() (int, int, int) { return c.x, c.y, c.f }

func (c *Bilinear) Kind() query.Kind             { return query.KindBilinear }
func (c *Bilinear) ParticipatingVariables() []int { return []int{c.x, c.y, c.f} }
func (c *Bilinear) ParticipatesIn(v int) bool     { return v == c.x || v == c.y || v == c.f }

func (c *Bilinear) Duplicate() query.Constraint {
	cp := NewBilinear(c.x, c.y, c.f)
	for k, v := range c.eliminated {
		cp.eliminated[k] = v
	}
	return cp
}

func (c *Bilinear) Serialize() string {
	return "bilinear," + strconv.Itoa(c.x) + "," + strconv.Itoa(c.y) + "," + strconv.Itoa(c.f)
}

// McCormickEnvelope returns the four linear inequalities bounding f
// given x and y's current interval, as query equations over x, y and f.
// Package layer does not call it: its Bilinear layer builds its own
// McCormick rows during symbolic propagation.
func (c *Bilinear) McCormickEnvelope(xL, xU, yL, yU float64) []query.Equation {
	mk := func(a, bXY, cc float64) query.Equation {
		eq := query.NewEquation(query.EquationGE)
		eq.AddAddend(1, c.f)
		eq.AddAddend(-a, c.y)
		eq.AddAddend(-bXY, c.x)
		eq.SetScalar(cc)
		return eq
	}
	lowerA := mk(xL, yL, -xL*yL)
	lowerB := mk(xU, yU, -xU*yU)

	upperMk := func(a, bXY, cc float64) query.Equation {
		eq := query.NewEquation(query.EquationLE)
		eq.AddAddend(1, c.f)
		eq.AddAddend(-a, c.y)
		eq.AddAddend(-bXY, c.x)
		eq.SetScalar(cc)
		return eq
	}
	upperA := upperMk(xU, yL, -xU*yL)
	upperB := upperMk(xL, yU, -xL*yU)

	return []query.Equation{lowerA, lowerB, upperA, upperB}
}

func (c *Bilinear) NotifyLower(int, float64) {}
func (c *Bilinear) NotifyUpper(int, float64) {}

func (c *Bilinear) EntailedTightenings(*[]query.Tightening) {}

func (c *Bilinear) AllCases() []query.Phase          { return nil }
func (c *Bilinear) CaseSplit(query.Phase) query.PieceSplit { return query.PieceSplit{} }

func (c *Bilinear) TransformToUseAux(*query.Query) {}

func (c *Bilinear) CostTerm(query.Phase, *query.LinearExpr) {}

func (c *Bilinear) EliminateVariable(v int, value float64) { c.eliminated[v] = value }

func (c *Bilinear) IsObsolete() bool {
	_, xOK := c.eliminated[c.x]
	_, yOK := c.eliminated[c.y]
	_, fOK := c.eliminated[c.f]
	return xOK && yOK && fOK
}

func (c *Bilinear) RestoreState(other query.Constraint) {
	o := other.(*Bilinear)
	c.x, c.y, c.f = o.x, o.y, o.f
	c.eliminated = make(map[int]float64, len(o.eliminated))
	for k, v := range o.eliminated {
		c.eliminated[k] = v
	}
}

func (c *Bilinear) Phase() query.Phase { return query.PhaseUnfixed }
