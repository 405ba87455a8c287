package query

import "github.com/katalvlaran/nlreason/sparserow"

// EquationType selects the relation an Equation enforces. The numeric
// values are frozen wire-format constants; do not reorder.
type EquationType int

const (
	EquationEQ EquationType = 0
	EquationGE EquationType = 1
	EquationLE EquationType = 2
)

func (t EquationType) String() string {
	switch t {
	case EquationEQ:
		return "="
	case EquationGE:
		return ">="
	case EquationLE:
		return "<="
	default:
		return "?"
	}
}

// Addend is one coefficient*variable term of an Equation.
type Addend struct {
	Coefficient float64
	Variable    int
}

// Equation is a linear relation over a set of variables: sum(Addends) Type Scalar.
type Equation struct {
	Type    EquationType
	Scalar  float64
	Addends []Addend
}

// NewEquation returns an empty equation of the given type.
func NewEquation(t EquationType) Equation {
	return Equation{Type: t}
}

// AddAddend appends coeff*variable to the equation, merging it into an
// existing addend on the same variable instead of storing a duplicate
// (exercises sparserow.Row as the merge scratchpad).
func (e *Equation) AddAddend(coeff float64, variable int) {
	row := sparserow.NewUnsortedArray(variable + 1)
	for _, a := range e.Addends {
		row.Set(a.Variable, a.Coefficient)
	}
	row.Set(variable, row.Get(variable)+coeff)

	e.Addends = e.Addends[:0]
	row.ForEach(func(index int, value float64) {
		e.Addends = append(e.Addends, Addend{Coefficient: value, Variable: index})
	})
}

// SetScalar overwrites the equation's right-hand-side scalar.
func (e *Equation) SetScalar(s float64) { e.Scalar = s }
