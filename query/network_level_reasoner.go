package query

import (
	"errors"

	"github.com/katalvlaran/nlreason/config"
)

// ErrNetworkLevelReasonerUnavailable is returned by
// ConstructNetworkLevelReasoner when nothing has registered a lifting
// backend yet — i.e. the program never imported package lifter.
var ErrNetworkLevelReasonerUnavailable = errors.New("query: ConstructNetworkLevelReasoner has no registered backend (import package lifter)")

// NetworkLevelReasonerResult is ConstructNetworkLevelReasoner's return
// shape: the constructed reasoner, plus whatever equations and
// variables the lifting backend could not fold into a layer.
//
// Reasoner is typed any rather than *reasoner.Reasoner. Package
// reasoner imports package query (to drive bound propagation over a
// *Query), so query cannot import reasoner's package — or lifter's,
// which sits above reasoner — without creating a cycle. A caller that
// wants the concrete type asserts it back, e.g.
// result.Reasoner.(*reasoner.Reasoner), or calls lifter.Lift directly
// for a statically typed result.
type NetworkLevelReasonerResult struct {
	Reasoner           any
	UnhandledEquations []Equation
	UnhandledVariables []int
}

// networkLevelReasonerConstructor is the shape a lifting backend
// registers. It mirrors lifter.Lift's signature with the Reasoner
// erased to any for the reason NetworkLevelReasonerResult documents.
type networkLevelReasonerConstructor func(*Query, config.Config) (any, []Equation, []int, error)

var registeredNetworkLevelReasoner networkLevelReasonerConstructor

// RegisterNetworkLevelReasonerConstructor installs the backend
// ConstructNetworkLevelReasoner delegates to. Package lifter calls this
// from an init function, so the registration takes effect as soon as
// anything in the running program imports it (directly, or
// transitively through whatever builds the reasoner). Mirrors the
// registry pattern database/sql and image use to let a low-level type
// expose an operation whose implementation necessarily lives in a
// higher package.
func RegisterNetworkLevelReasonerConstructor(fn func(*Query, config.Config) (any, []Equation, []int, error)) {
	registeredNetworkLevelReasoner = fn
}

// ConstructNetworkLevelReasoner builds a layer DAG out of q's equations
// and nonlinear constraints by greedy topological peeling, the same
// operation package lifter's Lift performs — this method is Query's
// own named entry point for it, backed by whatever lifting
// implementation has registered itself (see
// RegisterNetworkLevelReasonerConstructor).
func (q *Query) ConstructNetworkLevelReasoner(cfg config.Config) (*NetworkLevelReasonerResult, error) {
	if registeredNetworkLevelReasoner == nil {
		return nil, ErrNetworkLevelReasonerUnavailable
	}
	r, unhandledEquations, unhandledVariables, err := registeredNetworkLevelReasoner(q, cfg)
	if err != nil {
		return nil, err
	}
	return &NetworkLevelReasonerResult{
		Reasoner:           r,
		UnhandledEquations: unhandledEquations,
		UnhandledVariables: unhandledVariables,
	}, nil
}
