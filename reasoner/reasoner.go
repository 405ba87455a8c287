// Package reasoner drives bound propagation across a layer.Layer DAG
// built by package lifter, tightening a query.Query's variable bounds
// and notifying its piecewise-linear constraints until a fixed point,
// the iteration budget, or a deadline is reached.
package reasoner

import (
	"context"

	"github.com/katalvlaran/nlreason/config"
	"github.com/katalvlaran/nlreason/layer"
	"github.com/katalvlaran/nlreason/query"
)

// Reasoner owns the layer DAG as an arena: layers never reference each
// other by pointer, only by the int index layer.Layer.SourceLayers
// carries, the same arena+index discipline core.Graph uses for its
// own index-keyed adjacency.
type Reasoner struct {
	layers     []*layer.Layer
	inputIndex int
	cfg        config.Config
}

// New returns an empty Reasoner using cfg's numeric and iteration policy.
func New(cfg config.Config) *Reasoner {
	return &Reasoner{cfg: cfg, inputIndex: -1}
}

// AddLayer appends l to the arena. l.Index must equal the returned
// position (callers build layers with sequential indices, as lifter
// does).
func (r *Reasoner) AddLayer(l *layer.Layer) int {
	r.layers = append(r.layers, l)
	if l.Kind == layer.KindInput {
		r.inputIndex = l.Index
	}
	return l.Index
}

// Layer returns the layer at the given arena index.
func (r *Reasoner) Layer(index int) *layer.Layer {
	if index < 0 || index >= len(r.layers) {
		return nil
	}
	return r.layers[index]
}

// NumLayers returns the arena's current size.
func (r *Reasoner) NumLayers() int { return len(r.layers) }

func (r *Reasoner) sourcesOf(l *layer.Layer) []*layer.Layer {
	srcs := make([]*layer.Layer, 0, len(l.SourceLayers))
	for _, idx := range l.SourceLayers {
		srcs = append(srcs, r.layers[idx])
	}
	return srcs
}

// Propagate runs concrete-assignment, interval-arithmetic and
// symbolic sweeps in increasing layer-index order until a fixed point,
// config.Config.IterationBudget sweeps are exhausted, or ctx is done.
// The deadline is checked only between sweeps (a cooperative,
// non-preemptive cancellation model), not inside a single layer's
// propagation.
func (r *Reasoner) Propagate(ctx context.Context, q *query.Query) (Status, error) {
	if r.inputIndex < 0 {
		return StatusUnknown, errNoInputLayer
	}
	inputLayer := r.layers[r.inputIndex]
	constraints := q.NonlinearConstraints()
	r.seedAssignment(q, inputLayer)

	for sweep := 0; sweep < r.cfg.IterationBudget; sweep++ {
		select {
		case <-ctx.Done():
			return StatusInterrupted, ctx.Err()
		default:
		}

		progressed := false
		for _, l := range r.layers {
			sources := r.sourcesOf(l)

			l.AssignmentPropagate(sources)

			for _, t := range l.IntervalPropagate(sources) {
				if r.applyTightening(q, l, t, constraints) {
					progressed = true
				}
			}
			if r.cfg.SymbolicBoundTightening {
				for _, t := range l.SymbolicPropagate(sources, inputLayer) {
					if r.applyTightening(q, l, t, constraints) {
						progressed = true
					}
				}
			}

			if unsat := r.checkUnsat(l); unsat {
				return StatusUnsat, nil
			}
			if err := l.CheckInvariants(r.cfg); err != nil {
				return StatusUnknown, err
			}
		}

		if !progressed {
			return StatusUnknown, nil
		}
	}
	return StatusBudgetExceeded, nil
}

// seedAssignment initializes the input layer's concrete per-neuron
// Assignment, the starting point the concrete-assignment propagation
// pass forward-evaluates from: a variable with a recorded debugging
// assignment uses it, everything else falls back to its current
// interval's midpoint.
func (r *Reasoner) seedAssignment(q *query.Query, inputLayer *layer.Layer) {
	for i := 0; i < inputLayer.Size; i++ {
		v := inputLayer.NeuronToVariable[i]
		if x, ok := q.DebuggingAssignment(v); ok {
			inputLayer.Assignment[i] = x
			continue
		}
		inputLayer.Assignment[i] = (inputLayer.LB[i] + inputLayer.UB[i]) / 2
	}
}

// applyTightening converts a layer-local Tightening into the variable
// it names and threads it through the query's bounds and into every
// constraint watching that variable — receiveTighterBound's two
// destinations.
func (r *Reasoner) applyTightening(q *query.Query, l *layer.Layer, t layer.Tightening, constraints []query.Constraint) bool {
	variable := l.NeuronToVariable[t.Neuron]

	var changed bool
	if t.Lower {
		ok, _ := q.TightenLower(variable, t.Value)
		changed = ok
	} else {
		ok, _ := q.TightenUpper(variable, t.Value)
		changed = ok
	}
	if !changed {
		return false
	}

	for _, c := range constraints {
		if !c.ParticipatesIn(variable) {
			continue
		}
		if t.Lower {
			c.NotifyLower(variable, t.Value)
		} else {
			c.NotifyUpper(variable, t.Value)
		}
	}
	return true
}

// checkUnsat reports whether l now holds a neuron whose lower bound
// exceeds its upper bound by more than the configured epsilon — an
// empty interval, the simplest possible proof of unsatisfiability.
func (r *Reasoner) checkUnsat(l *layer.Layer) bool {
	for i := range l.LB {
		if l.LB[i] > l.UB[i]+r.cfg.Epsilon {
			return true
		}
	}
	return false
}
