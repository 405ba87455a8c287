package constraint

import "github.com/katalvlaran/nlreason/query"

// Disjunction enforces that at least one of a fixed set of branches
// holds, each branch itself a bundle of tightenings and equations.
// Grounded on the original's DisjunctionConstraint, compiled by
// package vnnlib from a VNN-LIB `or` clause; present because the wire
// format's "disj" tag and the VNN-LIB grammar both name it even though
// it is not one of the elementwise/grouped activation kinds.
type Disjunction struct {
	phaseGuard
	branches   []query.PieceSplit
	vars       []int
	eliminated map[int]bool
}

// NewDisjunction returns a fresh, unfixed Disjunction over the given branches.
func NewDisjunction(branches []query.PieceSplit) *Disjunction {
	d := &Disjunction{branches: append([]query.PieceSplit(nil), branches...), eliminated: make(map[int]bool)}
	seen := map[int]bool{}
	for _, b := range d.branches {
		for _, t := range b.Tightenings {
			if !seen[t.Variable] {
				seen[t.Variable] = true
				d.vars = append(d.vars, t.Variable)
			}
		}
		for _, eq := range b.Equations {
			for _, a := range eq.Addends {
				if !seen[a.Variable] {
					seen[a.Variable] = true
					d.vars = append(d.vars, a.Variable)
				}
			}
		}
	}
	return d
}

// Branches returns the disjunction's case-split branches, for package
// wire's persistence encoding.
func (c *Disjunction) Branches() []query.PieceSplit { return append([]query.PieceSplit(nil), c.branches...) }

func (c *Disjunction) Kind() query.Kind             { return query.KindDisjunction }
func (c *Disjunction) ParticipatingVariables() []int { return append([]int(nil), c.vars...) }
func (c *Disjunction) ParticipatesIn(v int) bool     { return containsVar(c.vars, v) }

func (c *Disjunction) Duplicate() query.Constraint {
	cp := NewDisjunction(c.branches)
	cp.phase = c.phase
	for k, v := range c.eliminated {
		cp.eliminated[k] = v
	}
	return cp
}

// Serialize is intentionally minimal (the "disj" tag only): the branch
// contents are equations and tightenings, which the wire format
// already persists as the disjunction's `disj` block, not through
// Constraint.Serialize.
func (c *Disjunction) Serialize() string { return "disj" }

func (c *Disjunction) NotifyLower(int, float64) {}
func (c *Disjunction) NotifyUpper(int, float64) {}

func (c *Disjunction) EntailedTightenings(*[]query.Tightening) {}

func (c *Disjunction) AllCases() []query.Phase {
	cases := make([]query.Phase, len(c.branches))
	for i := range c.branches {
		cases[i] = query.Phase(i + 1)
	}
	return cases
}

func (c *Disjunction) CaseSplit(p query.Phase) query.PieceSplit {
	idx := int(p) - 1
	if idx < 0 || idx >= len(c.branches) {
		return query.PieceSplit{}
	}
	return c.branches[idx]
}

func (c *Disjunction) TransformToUseAux(*query.Query) {}

func (c *Disjunction) CostTerm(query.Phase, *query.LinearExpr) {}

func (c *Disjunction) EliminateVariable(v int, _ float64) { c.eliminated[v] = true }

func (c *Disjunction) IsObsolete() bool {
	for _, v := range c.vars {
		if !c.eliminated[v] {
			return false
		}
	}
	return true
}

func (c *Disjunction) RestoreState(other query.Constraint) {
	o := other.(*Disjunction)
	c.branches = append([]query.PieceSplit(nil), o.branches...)
	c.vars = append([]int(nil), o.vars...)
	c.restoreState(o.phase)
	c.eliminated = make(map[int]bool, len(o.eliminated))
	for k, v := range o.eliminated {
		c.eliminated[k] = v
	}
}

func (c *Disjunction) Phase() query.Phase { return c.currentPhase() }
