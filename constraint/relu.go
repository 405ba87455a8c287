package constraint

import (
	"strconv"

	"github.com/katalvlaran/nlreason/query"
)

const (
	// PhaseActive: f = b (b >= 0 half of the ReLU graph).
	PhaseReluActive query.Phase = iota + 1
	// PhaseInactive: f = 0 (b <= 0 half).
	PhaseReluInactive
)

// Relu enforces f = max(0, b) for a (b, f) variable pair, grounded on
// the original's ReluConstraint: two phases, monotone once fixed,
// entailed tightenings the moment either bound crosses zero.
type Relu struct {
	phaseGuard

	b, f int // b: pre-activation ("backward"), f: post-activation ("forward")

	aux        int
	hasAux     bool
	eliminated map[int]float64
}

// NewRelu returns a fresh, unfixed Relu over the given pre/post-activation pair.
func NewRelu(b, f int) *Relu {
	return &Relu{b: b, f: f, eliminated: make(map[int]float64)}
}

// BF returns the (pre-activation, post-activation) variable pair, for
// package lifter's per-kind layer construction.
func (c *Relu) BF() (int, int) { return c.b, c.f }

func (c *Relu) Kind() query.Kind { return query.KindRelu }

func (c *Relu) ParticipatingVariables() []int {
	vars := []int{c.b, c.f}
	if c.hasAux {
		vars = append(vars, c.aux)
	}
	return vars
}

func (c *Relu) ParticipatesIn(v int) bool { return containsVar(c.ParticipatingVariables(), v) }

func (c *Relu) Duplicate() query.Constraint {
	cp := &Relu{b: c.b, f: c.f, aux: c.aux, hasAux: c.hasAux, eliminated: make(map[int]float64)}
	cp.phase = c.phase
	for k, v := range c.eliminated {
		cp.eliminated[k] = v
	}
	return cp
}

func (c *Relu) Serialize() string {
	return "relu," + strconv.Itoa(c.b) + "," + strconv.Itoa(c.f)
}

// NotifyLower fixes the active phase the moment b's lower bound reaches
// zero, mirroring ReluConstraint::notifyLowerBound. It tightens no
// bound itself; the consequences are reported by EntailedTightenings.
func (c *Relu) NotifyLower(v int, x float64) {
	if v == c.b && x >= 0 {
		c.setPhase(PhaseReluActive)
	}
}

// NotifyUpper fixes the inactive phase the moment b's upper bound
// falls to or below zero.
func (c *Relu) NotifyUpper(v int, x float64) {
	if v == c.b && x <= 0 {
		c.setPhase(PhaseReluInactive)
	}
	if v == c.f && x <= 0 {
		c.setPhase(PhaseReluInactive)
	}
}

// EntailedTightenings reports bound consequences of the currently fixed
// phase: active reports b non-negative (the f = b equality itself comes
// from CaseSplit), inactive pins f to zero and b non-positive.
func (c *Relu) EntailedTightenings(buf *[]query.Tightening) {
	switch c.phase {
	case PhaseReluActive:
		*buf = append(*buf,
			query.Tightening{Variable: c.b, Bound: query.BoundLower, Value: 0},
		)
	case PhaseReluInactive:
		*buf = append(*buf,
			query.Tightening{Variable: c.b, Bound: query.BoundUpper, Value: 0},
			query.Tightening{Variable: c.f, Bound: query.BoundUpper, Value: 0},
			query.Tightening{Variable: c.f, Bound: query.BoundLower, Value: 0},
		)
	}
}

func (c *Relu) AllCases() []query.Phase { return []query.Phase{PhaseReluActive, PhaseReluInactive} }

// CaseSplit returns the complementary bound tightenings and equation
// for the given phase (the original's complementarity law: the two
// cases partition the feasible region with no gap and no overlap).
func (c *Relu) CaseSplit(p query.Phase) query.PieceSplit {
	switch p {
	case PhaseReluActive:
		eq := query.NewEquation(query.EquationEQ)
		eq.AddAddend(1, c.f)
		eq.AddAddend(-1, c.b)
		return query.PieceSplit{
			Tightenings: []query.Tightening{{Variable: c.b, Bound: query.BoundLower, Value: 0}},
			Equations:   []query.Equation{eq},
		}
	case PhaseReluInactive:
		return query.PieceSplit{
			Tightenings: []query.Tightening{
				{Variable: c.b, Bound: query.BoundUpper, Value: 0},
				{Variable: c.f, Bound: query.BoundUpper, Value: 0},
				{Variable: c.f, Bound: query.BoundLower, Value: 0},
			},
		}
	default:
		return query.PieceSplit{}
	}
}

// TransformToUseAux introduces aux = f - b >= 0, so the active/inactive
// complementarity can be expressed without a max() term: f - b - aux = 0.
func (c *Relu) TransformToUseAux(q *query.Query) {
	if c.hasAux {
		return
	}
	c.aux = q.NewVariable()
	_ = q.SetLower(c.aux, 0)
	c.hasAux = true

	eq := query.NewEquation(query.EquationEQ)
	eq.AddAddend(1, c.f)
	eq.AddAddend(-1, c.b)
	eq.AddAddend(-1, c.aux)
	q.AddEquation(eq)
}

// CostTerm adds this constraint's sum-of-infeasibilities contribution
// for the given trial phase: the active guess is violated by max(0,-b),
// the inactive guess by max(0,f); linearized here as the signed
// violation term itself (the reasoner drives the sign toward zero).
func (c *Relu) CostTerm(p query.Phase, expr *query.LinearExpr) {
	switch p {
	case PhaseReluActive:
		expr.Add(c.b, -1)
	case PhaseReluInactive:
		expr.Add(c.f, 1)
	}
}

// EliminateVariable fixes one of the pair to a constant. Once both are
// fixed, the constraint is obsolete.
func (c *Relu) EliminateVariable(v int, value float64) {
	c.eliminated[v] = value
	if _, bOK := c.eliminated[c.b]; bOK {
		if _, fOK := c.eliminated[c.f]; fOK {
			return
		}
	}
}

func (c *Relu) IsObsolete() bool {
	_, bOK := c.eliminated[c.b]
	_, fOK := c.eliminated[c.f]
	return bOK && fOK
}

func (c *Relu) RestoreState(other query.Constraint) {
	o := other.(*Relu)
	c.b, c.f = o.b, o.f
	c.aux, c.hasAux = o.aux, o.hasAux
	c.restoreState(o.phase)
	c.eliminated = make(map[int]float64, len(o.eliminated))
	for k, v := range o.eliminated {
		c.eliminated[k] = v
	}
}

func (c *Relu) Phase() query.Phase { return c.currentPhase() }
