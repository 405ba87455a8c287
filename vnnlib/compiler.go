package vnnlib

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/katalvlaran/nlreason/query"
)

// Result collects everything a compiled property file contributes to a
// query: unconditional linear equations, unconditional bound
// tightenings, and the branch sets for every top-level "or" assertion
// (an "or" at the top level compiles to a disjunction constraint).
type Result struct {
	Equations   []query.Equation
	Tightenings []query.Tightening
	// Disjunctions holds one branch set per top-level "or" assertion;
	// each is handed to constraint.NewDisjunction separately, since two
	// independent "or" clauses are two independent disjunction
	// constraints, not one combined branch list.
	Disjunctions [][]query.PieceSplit
}

// Compile parses src (a VNN-LIB-restricted property text) against q's
// already-known input/output variable count and returns the linear
// content it asserts. q is read-only here: Compile never mutates q,
// callers apply the Result themselves (AddEquation / TightenLower /
// TightenUpper / constraint.NewDisjunction).
func Compile(src string, q *query.Query) (Result, error) {
	forms, err := parseAll(src)
	if err != nil {
		return Result{}, err
	}

	symbols, err := collectDeclarations(forms, q)
	if err != nil {
		return Result{}, err
	}

	var result Result
	for _, f := range forms {
		if f.isAtom() || len(f.children) == 0 {
			continue
		}
		head, ok := headAtom(f)
		if !ok || head != "assert" {
			continue
		}
		if len(f.children) != 2 {
			return Result{}, fmt.Errorf("%w: assert takes exactly one expression", ErrSyntax)
		}
		if err := compileAssertion(f.children[1], symbols, &result); err != nil {
			return Result{}, err
		}
	}
	return result, nil
}

func headAtom(n node) (string, bool) {
	if len(n.children) == 0 || !n.children[0].isAtom() {
		return "", false
	}
	return n.children[0].atom, true
}

// collectDeclarations maps every "(declare-const X_i Real)" /
// "(declare-const Y_i Real)" symbol onto q's corresponding input or
// output variable index.
func collectDeclarations(forms []node, q *query.Query) (map[string]int, error) {
	symbols := make(map[string]int)
	for _, f := range forms {
		if f.isAtom() {
			continue
		}
		head, ok := headAtom(f)
		if !ok || head != "declare-const" {
			continue
		}
		if len(f.children) != 3 || !f.children[1].isAtom() {
			return nil, fmt.Errorf("%w: malformed declare-const", ErrSyntax)
		}
		name := f.children[1].atom
		v, err := resolveDeclaredVariable(name, q)
		if err != nil {
			return nil, err
		}
		symbols[name] = v
	}
	return symbols, nil
}

func resolveDeclaredVariable(name string, q *query.Query) (int, error) {
	switch {
	case strings.HasPrefix(name, "X_"):
		i, err := strconv.Atoi(name[2:])
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrBadVariableName, name)
		}
		return q.InputVariableByIndex(i)
	case strings.HasPrefix(name, "Y_"):
		i, err := strconv.Atoi(name[2:])
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrBadVariableName, name)
		}
		return q.OutputVariableByIndex(i)
	default:
		return 0, fmt.Errorf("%w: %q", ErrBadVariableName, name)
	}
}

// compileAssertion dispatches a single assertion expression: "and"
// flattens into the caller's result, "or" becomes one disjunction
// (each child a conjunction of its own), anything else is a relation.
func compileAssertion(expr node, symbols map[string]int, out *Result) error {
	if expr.isAtom() {
		return fmt.Errorf("%w: assertion must be a list", ErrSyntax)
	}
	head, ok := headAtom(expr)
	if !ok {
		return fmt.Errorf("%w: assertion must start with an operator", ErrSyntax)
	}

	switch head {
	case "and":
		for _, child := range expr.children[1:] {
			if err := compileAssertion(child, symbols, out); err != nil {
				return err
			}
		}
		return nil
	case "or":
		branches := make([]query.PieceSplit, 0, len(expr.children)-1)
		for _, child := range expr.children[1:] {
			var branchResult Result
			if err := compileAssertion(child, symbols, &branchResult); err != nil {
				return err
			}
			branches = append(branches, query.PieceSplit{
				Tightenings: branchResult.Tightenings,
				Equations:   branchResult.Equations,
			})
		}
		out.Disjunctions = append(out.Disjunctions, branches)
		return nil
	case "<=", ">=":
		return compileRelation(head, expr.children[1], expr.children[2], symbols, out)
	default:
		return fmt.Errorf("%w: operator %q", ErrUnsupportedForm, head)
	}
}

func compileRelation(op string, lhs, rhs node, symbols map[string]int, out *Result) error {
	lc, lk, err := linearize(lhs, symbols)
	if err != nil {
		return err
	}
	rc, rk, err := linearize(rhs, symbols)
	if err != nil {
		return err
	}

	merged := make(map[int]float64, len(lc)+len(rc))
	for v, coeff := range lc {
		merged[v] += coeff
	}
	for v, coeff := range rc {
		merged[v] -= coeff
	}
	scalar := rk - lk

	// A single unit-coefficient addend is exactly a bound tightening on
	// that variable (X_i <= k or X_i >= k in their simplest, and by far
	// most common, VNN-LIB form).
	if len(merged) == 1 {
		for v, coeff := range merged {
			if coeff == 1 || coeff == -1 {
				value := scalar / coeff
				bound := query.BoundLower
				if (op == "<=" && coeff > 0) || (op == ">=" && coeff < 0) {
					bound = query.BoundUpper
				}
				out.Tightenings = append(out.Tightenings, query.Tightening{Variable: v, Bound: bound, Value: value})
				return nil
			}
		}
	}

	eqType := query.EquationLE
	if op == ">=" {
		eqType = query.EquationGE
	}
	eq := query.NewEquation(eqType)
	for v, coeff := range merged {
		eq.AddAddend(coeff, v)
	}
	eq.SetScalar(scalar)
	out.Equations = append(out.Equations, eq)
	return nil
}

// linearize reduces a restricted-grammar term to (variable -> coefficient
// map, constant).
func linearize(n node, symbols map[string]int) (map[int]float64, float64, error) {
	if n.isAtom() {
		if f, err := strconv.ParseFloat(n.atom, 64); err == nil {
			return nil, f, nil
		}
		v, ok := symbols[n.atom]
		if !ok {
			return nil, 0, fmt.Errorf("%w: %q", ErrUnknownSymbol, n.atom)
		}
		return map[int]float64{v: 1}, 0, nil
	}

	head, ok := headAtom(n)
	if !ok {
		return nil, 0, fmt.Errorf("%w: empty term", ErrSyntax)
	}
	args := n.children[1:]

	switch head {
	case "+":
		coeffs := map[int]float64{}
		var constant float64
		for _, a := range args {
			c, k, err := linearize(a, symbols)
			if err != nil {
				return nil, 0, err
			}
			for v, coeff := range c {
				coeffs[v] += coeff
			}
			constant += k
		}
		return coeffs, constant, nil
	case "-":
		if len(args) == 0 {
			return nil, 0, fmt.Errorf("%w: \"-\" needs at least one operand", ErrSyntax)
		}
		coeffs, constant, err := linearize(args[0], symbols)
		if err != nil {
			return nil, 0, err
		}
		coeffs = cloneCoeffs(coeffs)
		if len(args) == 1 {
			return negate(coeffs), -constant, nil
		}
		for _, a := range args[1:] {
			c, k, err := linearize(a, symbols)
			if err != nil {
				return nil, 0, err
			}
			for v, coeff := range c {
				coeffs[v] -= coeff
			}
			constant -= k
		}
		return coeffs, constant, nil
	case "*":
		if len(args) != 2 {
			return nil, 0, fmt.Errorf("%w: \"*\" takes exactly two operands", ErrUnsupportedForm)
		}
		lc, lk, err := linearize(args[0], symbols)
		if err != nil {
			return nil, 0, err
		}
		rc, rk, err := linearize(args[1], symbols)
		if err != nil {
			return nil, 0, err
		}
		if len(lc) == 0 {
			return scale(rc, lk), lk * rk, nil
		}
		if len(rc) == 0 {
			return scale(lc, rk), lk * rk, nil
		}
		return nil, 0, fmt.Errorf("%w: product of two variables is nonlinear", ErrUnsupportedForm)
	default:
		return nil, 0, fmt.Errorf("%w: term operator %q", ErrUnsupportedForm, head)
	}
}

func cloneCoeffs(c map[int]float64) map[int]float64 {
	out := make(map[int]float64, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

func negate(c map[int]float64) map[int]float64 {
	for k, v := range c {
		c[k] = -v
	}
	return c
}

func scale(c map[int]float64, factor float64) map[int]float64 {
	out := make(map[int]float64, len(c))
	for k, v := range c {
		out[k] = v * factor
	}
	return out
}
