package constraint

import (
	"math"
	"strconv"
	"strings"

	"github.com/katalvlaran/nlreason/query"
)

// Max enforces f = max(elements...). Phase encodes which element index
// (1-based, 0 meaning unfixed) currently realizes the maximum.
type Max struct {
	phaseGuard
	elements   []int
	f          int
	eliminated map[int]float64

	// lower/upper cache each element's most recent notified bound, so
	// that a single-variable NotifyLower/NotifyUpper call can still
	// evaluate the dominance rule across every element, not just the
	// one that just moved.
	lower map[int]float64
	upper map[int]float64
}

func NewMax(elements []int, f int) *Max {
	els := append([]int(nil), elements...)
	m := &Max{elements: els, f: f, eliminated: make(map[int]float64), lower: make(map[int]float64), upper: make(map[int]float64)}
	for _, e := range els {
		m.lower[e] = math.Inf(-1)
		m.upper[e] = math.Inf(1)
	}
	return m
}

// ElementsF returns the candidate-maximum input variables and the
// output variable, for package lifter's layer construction.
func (c *Max) ElementsF() ([]int, int) { return append([]int(nil), c.elements...), c.f }

func (c *Max) Kind() query.Kind { return query.KindMax }

func (c *Max) ParticipatingVariables() []int {
	return append(append([]int(nil), c.elements...), c.f)
}

func (c *Max) ParticipatesIn(v int) bool { return containsVar(c.ParticipatingVariables(), v) }

func (c *Max) Duplicate() query.Constraint {
	cp := NewMax(c.elements, c.f)
	cp.phase = c.phase
	for k, v := range c.eliminated {
		cp.eliminated[k] = v
	}
	for k, v := range c.lower {
		cp.lower[k] = v
	}
	for k, v := range c.upper {
		cp.upper[k] = v
	}
	return cp
}

func (c *Max) Serialize() string {
	parts := make([]string, len(c.elements))
	for i, e := range c.elements {
		parts[i] = strconv.Itoa(e)
	}
	return "max," + strings.Join(parts, ";") + "," + strconv.Itoa(c.f)
}

// NotifyLower records a lower-bound improvement on an element and
// re-checks the dominance rule across every element: "which element
// wins" depends on comparing every element's bounds against each
// other, not just the one that just moved.
func (c *Max) NotifyLower(v int, x float64) {
	if _, ok := c.lower[v]; !ok {
		return
	}
	if x > c.lower[v] {
		c.lower[v] = x
	}
	c.checkDominance()
}

// NotifyUpper records an upper-bound improvement on an element and
// re-checks the dominance rule.
func (c *Max) NotifyUpper(v int, x float64) {
	if _, ok := c.upper[v]; !ok {
		return
	}
	if x < c.upper[v] {
		c.upper[v] = x
	}
	c.checkDominance()
}

// checkDominance fixes the phase to the element whose lower bound
// strictly exceeds every other element's current upper bound — the
// same test layer.symbolicMax runs independently over the layer
// graph's interval state (layer.intervalMax applies no such test).
func (c *Max) checkDominance() {
	if c.phase != query.PhaseUnfixed {
		return
	}
	for i, e := range c.elements {
		dominates := true
		for j, other := range c.elements {
			if j == i {
				continue
			}
			if c.lower[e] <= c.upper[other] {
				dominates = false
				break
			}
		}
		if dominates {
			c.setPhase(query.Phase(i + 1))
			return
		}
	}
}

func (c *Max) EntailedTightenings(buf *[]query.Tightening) {
	if c.phase == query.PhaseUnfixed {
		return
	}
	winner := c.elements[c.phase-1]
	*buf = append(*buf, query.Tightening{Variable: winner, Bound: query.BoundLower, Value: 0})
}

func (c *Max) AllCases() []query.Phase {
	cases := make([]query.Phase, len(c.elements))
	for i := range c.elements {
		cases[i] = query.Phase(i + 1)
	}
	return cases
}

func (c *Max) CaseSplit(p query.Phase) query.PieceSplit {
	idx := int(p) - 1
	if idx < 0 || idx >= len(c.elements) {
		return query.PieceSplit{}
	}
	winner := c.elements[idx]
	eq := query.NewEquation(query.EquationEQ)
	eq.AddAddend(1, c.f)
	eq.AddAddend(-1, winner)
	return query.PieceSplit{Equations: []query.Equation{eq}}
}

func (c *Max) TransformToUseAux(*query.Query) {}

func (c *Max) CostTerm(p query.Phase, expr *query.LinearExpr) {
	idx := int(p) - 1
	if idx < 0 || idx >= len(c.elements) {
		return
	}
	expr.Add(c.f, -1)
	expr.Add(c.elements[idx], 1)
}

func (c *Max) EliminateVariable(v int, value float64) {
	c.eliminated[v] = value
	remaining := make([]int, 0, len(c.elements))
	for _, e := range c.elements {
		if _, gone := c.eliminated[e]; !gone {
			remaining = append(remaining, e)
		}
	}
	c.elements = remaining
	delete(c.lower, v)
	delete(c.upper, v)
}

func (c *Max) IsObsolete() bool { return len(c.elements) == 0 }

func (c *Max) RestoreState(other query.Constraint) {
	o := other.(*Max)
	c.elements = append([]int(nil), o.elements...)
	c.f = o.f
	c.restoreState(o.phase)
	c.eliminated = make(map[int]float64, len(o.eliminated))
	for k, v := range o.eliminated {
		c.eliminated[k] = v
	}
	c.lower = make(map[int]float64, len(o.lower))
	for k, v := range o.lower {
		c.lower[k] = v
	}
	c.upper = make(map[int]float64, len(o.upper))
	for k, v := range o.upper {
		c.upper[k] = v
	}
}

func (c *Max) Phase() query.Phase { return c.currentPhase() }
