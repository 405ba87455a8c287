// Package query holds the variable, bound, equation and nonlinear-
// constraint system a propagation reasoner tightens. A Query is the
// flat representation lifter.Lift reads to build a layer.Layer DAG,
// and the representation wire.Save/wire.Load persist.
package query

import (
	"math"
	"sync"

	"github.com/katalvlaran/nlreason/config"
)

// Query is the mutable problem a Reasoner works over: variable bounds,
// linear equations and nonlinear (piecewise-linear or smooth) relations
// among a fixed universe of variables.
//
// Two mutexes separate concerns the way bound propagation and
// structural edits touch the struct differently: muBounds guards
// lower/upper/solution (hot path, touched once per propagated bound),
// muStruct guards equations/nonlinear/variable bookkeeping (touched
// only during query construction and variable elimination).
type Query struct {
	muBounds sync.RWMutex
	muStruct sync.RWMutex

	numVariables int
	nextVariable int

	lower []float64
	upper []float64

	equations []Equation
	nonlinear []Constraint

	inputVars  []int
	outputVars []int

	solution map[int]float64

	// debugAssignment is an optional expected satisfying assignment,
	// carried for test regressions only. Grounded on the original's
	// _debuggingSolution in InputQuery.h; never read by the
	// propagation engine itself.
	debugAssignment map[int]float64
}

// New returns an empty query over zero variables.
func New() *Query {
	return &Query{solution: make(map[int]float64)}
}

// SetNumVariables fixes the variable universe size, (re)allocating the
// per-variable bound slices to [-Inf, +Inf].
func (q *Query) SetNumVariables(n int) {
	q.muBounds.Lock()
	q.muStruct.Lock()
	defer q.muBounds.Unlock()
	defer q.muStruct.Unlock()

	q.numVariables = n
	q.nextVariable = n
	q.lower = make([]float64, n)
	q.upper = make([]float64, n)
	for i := range q.lower {
		q.lower[i] = negInf
		q.upper[i] = posInf
	}
}

// NewVariable appends one fresh variable, initialized to [-Inf, +Inf],
// and returns its index.
func (q *Query) NewVariable() int {
	q.muBounds.Lock()
	q.muStruct.Lock()
	defer q.muBounds.Unlock()
	defer q.muStruct.Unlock()

	v := q.nextVariable
	q.nextVariable++
	q.numVariables++
	q.lower = append(q.lower, negInf)
	q.upper = append(q.upper, posInf)
	return v
}

// NumVariables returns the current variable count.
func (q *Query) NumVariables() int {
	q.muBounds.RLock()
	defer q.muBounds.RUnlock()
	return q.numVariables
}

func (q *Query) checkRange(v int) error {
	if v < 0 || v >= q.numVariables {
		return ErrVariableIndexOutOfRange
	}
	return nil
}

// SetLower unconditionally sets variable v's lower bound.
func (q *Query) SetLower(v int, value float64) error {
	q.muBounds.Lock()
	defer q.muBounds.Unlock()
	if err := q.checkRange(v); err != nil {
		return err
	}
	q.lower[v] = value
	return nil
}

// SetUpper unconditionally sets variable v's upper bound.
func (q *Query) SetUpper(v int, value float64) error {
	q.muBounds.Lock()
	defer q.muBounds.Unlock()
	if err := q.checkRange(v); err != nil {
		return err
	}
	q.upper[v] = value
	return nil
}

// Lower returns variable v's current lower bound.
func (q *Query) Lower(v int) (float64, error) {
	q.muBounds.RLock()
	defer q.muBounds.RUnlock()
	if err := q.checkRange(v); err != nil {
		return 0, err
	}
	return q.lower[v], nil
}

// Upper returns variable v's current upper bound.
func (q *Query) Upper(v int) (float64, error) {
	q.muBounds.RLock()
	defer q.muBounds.RUnlock()
	if err := q.checkRange(v); err != nil {
		return 0, err
	}
	return q.upper[v], nil
}

// TightenLower raises variable v's lower bound to value if value is
// strictly greater than the current bound. Returns whether the bound
// actually tightened: bounds only ever move inward, never loosen.
func (q *Query) TightenLower(v int, value float64) (bool, error) {
	q.muBounds.Lock()
	defer q.muBounds.Unlock()
	if err := q.checkRange(v); err != nil {
		return false, err
	}
	if value > q.lower[v] {
		q.lower[v] = value
		return true, nil
	}
	return false, nil
}

// TightenUpper lowers variable v's upper bound to value if value is
// strictly less than the current bound.
func (q *Query) TightenUpper(v int, value float64) (bool, error) {
	q.muBounds.Lock()
	defer q.muBounds.Unlock()
	if err := q.checkRange(v); err != nil {
		return false, err
	}
	if value < q.upper[v] {
		q.upper[v] = value
		return true, nil
	}
	return false, nil
}

// AddEquation appends a linear equation to the query.
func (q *Query) AddEquation(eq Equation) {
	q.muStruct.Lock()
	defer q.muStruct.Unlock()
	q.equations = append(q.equations, eq)
}

// Equations returns the query's equations in insertion order. The
// returned slice is a copy; mutating it does not affect the query.
func (q *Query) Equations() []Equation {
	q.muStruct.RLock()
	defer q.muStruct.RUnlock()
	out := make([]Equation, len(q.equations))
	copy(out, q.equations)
	return out
}

// RemoveEquationsAt deletes the equations at the given indices (into
// the slice Equations would return), highest index first so earlier
// indices stay valid during the removal.
func (q *Query) RemoveEquationsAt(indices []int) {
	q.muStruct.Lock()
	defer q.muStruct.Unlock()

	sorted := append([]int(nil), indices...)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j] > sorted[i] {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}
	for _, idx := range sorted {
		if idx < 0 || idx >= len(q.equations) {
			continue
		}
		q.equations = append(q.equations[:idx], q.equations[idx+1:]...)
	}
}

// AddPiecewise registers a piecewise-linear Constraint (Relu, Sign,
// AbsoluteValue, Max, Bilinear, Disjunction, ...). Named separately
// from AddNonlinear even though both simply append to the same
// nonlinear slice; the two entry points document intent at the call
// site (wire.Load uses AddPiecewise only for the piecewise-linear kinds,
// AddNonlinear for Round/Sigmoid/Softmax).
func (q *Query) AddPiecewise(c Constraint) {
	q.muStruct.Lock()
	defer q.muStruct.Unlock()
	q.nonlinear = append(q.nonlinear, c)
}

// AddNonlinear registers a smooth-nonlinear Constraint (Round, Sigmoid,
// Softmax).
func (q *Query) AddNonlinear(c Constraint) {
	q.muStruct.Lock()
	defer q.muStruct.Unlock()
	q.nonlinear = append(q.nonlinear, c)
}

// NonlinearConstraints returns the registered constraints in insertion order.
func (q *Query) NonlinearConstraints() []Constraint {
	q.muStruct.RLock()
	defer q.muStruct.RUnlock()
	out := make([]Constraint, len(q.nonlinear))
	copy(out, q.nonlinear)
	return out
}

// MarkInput records variable v as the query's next input, in order.
func (q *Query) MarkInput(v int) {
	q.muStruct.Lock()
	defer q.muStruct.Unlock()
	q.inputVars = append(q.inputVars, v)
}

// MarkOutput records variable v as the query's next output, in order.
func (q *Query) MarkOutput(v int) {
	q.muStruct.Lock()
	defer q.muStruct.Unlock()
	q.outputVars = append(q.outputVars, v)
}

// InputVariableByIndex returns the variable at the given input
// position (0 = first input), or ErrVariableIndexOutOfRange.
func (q *Query) InputVariableByIndex(i int) (int, error) {
	q.muStruct.RLock()
	defer q.muStruct.RUnlock()
	if i < 0 || i >= len(q.inputVars) {
		return 0, ErrVariableIndexOutOfRange
	}
	return q.inputVars[i], nil
}

// OutputVariableByIndex returns the variable at the given output
// position, or ErrVariableIndexOutOfRange.
func (q *Query) OutputVariableByIndex(i int) (int, error) {
	q.muStruct.RLock()
	defer q.muStruct.RUnlock()
	if i < 0 || i >= len(q.outputVars) {
		return 0, ErrVariableIndexOutOfRange
	}
	return q.outputVars[i], nil
}

// NumInputVariables and NumOutputVariables report the input/output counts.
func (q *Query) NumInputVariables() int {
	q.muStruct.RLock()
	defer q.muStruct.RUnlock()
	return len(q.inputVars)
}
func (q *Query) NumOutputVariables() int {
	q.muStruct.RLock()
	defer q.muStruct.RUnlock()
	return len(q.outputVars)
}

func (q *Query) isInput(v int) bool {
	for _, iv := range q.inputVars {
		if iv == v {
			return true
		}
	}
	return false
}

func (q *Query) isOutput(v int) bool {
	for _, ov := range q.outputVars {
		if ov == v {
			return true
		}
	}
	return false
}

// MergeIdenticalVariables folds every addend on remove across the
// equation set into keep (sparserow.Merge's "accumulate into
// destination, erase source" contract lifted to the whole equation
// set): an equation holding both ends up with one addend on keep, and
// one whose coefficients cancel drops it. Constraints are not
// rewritten: a constraint that names remove keeps naming it. Returns
// ErrMergedInputVariable / ErrMergedOutputVariable if remove names an
// input or output variable: merging away a named input/output would
// silently change the query's interface.
func (q *Query) MergeIdenticalVariables(remove, keep int) error {
	q.muStruct.Lock()
	defer q.muStruct.Unlock()

	if q.isInput(remove) {
		return ErrMergedInputVariable
	}
	if q.isOutput(remove) {
		return ErrMergedOutputVariable
	}

	for i := range q.equations {
		eq := &q.equations[i]
		found := false
		for _, a := range eq.Addends {
			if a.Variable == remove {
				found = true
				break
			}
		}
		if !found {
			continue
		}
		merged := NewEquation(eq.Type)
		merged.Scalar = eq.Scalar
		for _, a := range eq.Addends {
			v := a.Variable
			if v == remove {
				v = keep
			}
			merged.AddAddend(a.Coefficient, v)
		}
		*eq = merged
	}
	return nil
}

// SolutionValue returns the recorded solution for variable v, or
// ErrVariableNotInSolution if none was set.
func (q *Query) SolutionValue(v int) (float64, error) {
	q.muBounds.RLock()
	defer q.muBounds.RUnlock()
	val, ok := q.solution[v]
	if !ok {
		return 0, ErrVariableNotInSolution
	}
	return val, nil
}

// SetSolutionValue records a satisfying value for variable v.
func (q *Query) SetSolutionValue(v int, value float64) {
	q.muBounds.Lock()
	defer q.muBounds.Unlock()
	q.solution[v] = value
}

// SetDebuggingAssignment records the expected satisfying assignment for
// a single variable, consulted only by tests.
func (q *Query) SetDebuggingAssignment(v int, value float64) {
	q.muBounds.Lock()
	defer q.muBounds.Unlock()
	if q.debugAssignment == nil {
		q.debugAssignment = make(map[int]float64)
	}
	q.debugAssignment[v] = value
}

// DebuggingAssignment returns the expected value for variable v and
// whether one was recorded.
func (q *Query) DebuggingAssignment(v int) (float64, bool) {
	q.muBounds.RLock()
	defer q.muBounds.RUnlock()
	val, ok := q.debugAssignment[v]
	return val, ok
}

// Config exposes the query's numeric policy default, config.Default().
// Lifter and reasoner do not consult it; they take the config.Config
// their caller passes.
func (q *Query) Config() config.Config { return config.Default() }

var (
	negInf = math.Inf(-1)
	posInf = math.Inf(1)
)
