// Package constraint implements the ten piecewise-linear and smooth-
// nonlinear relations a query.Query can carry: Relu, LeakyRelu, Sign,
// AbsoluteValue, Max, Round, Sigmoid, Softmax, Bilinear and
// Disjunction. Each satisfies query.Constraint.
//
// Every file groups its methods the way the original's
// LeakyReluConstraint.h does: identity/structure, bound watching, case
// splitting, aux-variable transform, sum-of-infeasibilities cost, then
// elimination. None of them own a search driver or undo log — that is
// out of scope; RestoreState gives a caller a full-state copy
// primitive instead.
package constraint

import "github.com/katalvlaran/nlreason/query"

// phaseGuard centralizes the monotone phase-transition rule shared by
// every constraint kind: a phase, once fixed away from
// query.PhaseUnfixed, never unfixes except through RestoreState. Each
// concrete type embeds one and calls setPhase instead of assigning its
// phase field directly.
type phaseGuard struct {
	phase query.Phase
}

// setPhase assigns p, panicking if it would unfix an already-fixed
// phase. Constructors should not call this; use it only from
// NotifyLower/NotifyUpper/CaseSplit-driven transitions.
func (g *phaseGuard) setPhase(p query.Phase) {
	if g.phase != query.PhaseUnfixed && p == query.PhaseUnfixed {
		panic("constraint: attempted to unfix an already-fixed phase outside RestoreState")
	}
	g.phase = p
}

// restoreState is the escape hatch RestoreState implementations use to
// bypass the monotone check entirely (the original's restoreState
// assigns the full snapshot, it does not transition through it).
func (g *phaseGuard) restoreState(p query.Phase) {
	g.phase = p
}

func (g *phaseGuard) currentPhase() query.Phase { return g.phase }

// containsVar reports whether v is present in vars.
func containsVar(vars []int, v int) bool {
	for _, x := range vars {
		if x == v {
			return true
		}
	}
	return false
}

// replaceVar rewrites every occurrence of old with next in vars, in place.
func replaceVar(vars []int, old, next int) {
	for i, x := range vars {
		if x == old {
			vars[i] = next
		}
	}
}
