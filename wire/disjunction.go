package wire

import (
	"strconv"
	"strings"

	"github.com/katalvlaran/nlreason/constraint"
	"github.com/katalvlaran/nlreason/query"
)

// Disjunction's wire encoding is not specified beyond its tag name (the
// grammar names "disj" but never spells out a branch format the way it
// does for every other kind). This module picks one:
// branches joined by ";"; within a branch, a tightenings block and an
// equations block joined by "|"; tightenings joined by "/" as
// "variable:boundKind:value"; equations joined by "&" as
// "type,scalar,var,coef,var,coef,...".
func encodeDisjunction(d *constraint.Disjunction) string {
	branches := make([]string, 0, len(d.Branches()))
	for _, b := range d.Branches() {
		branches = append(branches, encodeBranch(b))
	}
	return strings.Join(branches, ";")
}

func encodeBranch(b query.PieceSplit) string {
	tightenings := make([]string, 0, len(b.Tightenings))
	for _, t := range b.Tightenings {
		tightenings = append(tightenings, strconv.Itoa(t.Variable)+":"+strconv.Itoa(int(t.Bound))+":"+strconv.FormatFloat(t.Value, 'g', -1, 64))
	}
	equations := make([]string, 0, len(b.Equations))
	for _, eq := range b.Equations {
		equations = append(equations, encodeEquationCompact(eq))
	}
	return strings.Join(tightenings, "/") + "|" + strings.Join(equations, "&")
}

func encodeEquationCompact(eq query.Equation) string {
	parts := []string{strconv.Itoa(int(eq.Type)), strconv.FormatFloat(eq.Scalar, 'g', -1, 64)}
	for _, a := range eq.Addends {
		parts = append(parts, strconv.Itoa(a.Variable), strconv.FormatFloat(a.Coefficient, 'g', -1, 64))
	}
	return strings.Join(parts, ",")
}

func decodeDisjunction(blob string) (*constraint.Disjunction, error) {
	var branches []query.PieceSplit
	for _, branchText := range strings.Split(blob, ";") {
		b, err := decodeBranch(branchText)
		if err != nil {
			return nil, err
		}
		branches = append(branches, b)
	}
	return constraint.NewDisjunction(branches), nil
}

func decodeBranch(text string) (query.PieceSplit, error) {
	halves := strings.SplitN(text, "|", 2)
	if len(halves) != 2 {
		return query.PieceSplit{}, ErrMalformedLine
	}
	var split query.PieceSplit

	if halves[0] != "" {
		for _, tt := range strings.Split(halves[0], "/") {
			t, err := decodeTightening(tt)
			if err != nil {
				return query.PieceSplit{}, err
			}
			split.Tightenings = append(split.Tightenings, t)
		}
	}
	if halves[1] != "" {
		for _, et := range strings.Split(halves[1], "&") {
			eq, err := decodeEquationCompact(et)
			if err != nil {
				return query.PieceSplit{}, err
			}
			split.Equations = append(split.Equations, eq)
		}
	}
	return split, nil
}

func decodeTightening(text string) (query.Tightening, error) {
	fields := strings.Split(text, ":")
	if len(fields) != 3 {
		return query.Tightening{}, ErrMalformedLine
	}
	variable, err := strconv.Atoi(fields[0])
	if err != nil {
		return query.Tightening{}, ErrMalformedLine
	}
	bound, err := strconv.Atoi(fields[1])
	if err != nil {
		return query.Tightening{}, ErrMalformedLine
	}
	value, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return query.Tightening{}, ErrMalformedLine
	}
	return query.Tightening{Variable: variable, Bound: query.BoundKind(bound), Value: value}, nil
}

func decodeEquationCompact(text string) (query.Equation, error) {
	fields := strings.Split(text, ",")
	if len(fields) < 2 {
		return query.Equation{}, ErrMalformedLine
	}
	typ, err := parseIntField(fields, 0)
	if err != nil {
		return query.Equation{}, err
	}
	scalar, err := parseFloatField(fields, 1)
	if err != nil {
		return query.Equation{}, err
	}
	eq := query.NewEquation(query.EquationType(typ))
	eq.SetScalar(scalar)
	for i := 2; i+1 < len(fields); i += 2 {
		v, err := parseIntField(fields, i)
		if err != nil {
			return query.Equation{}, err
		}
		coeff, err := parseFloatField(fields, i+1)
		if err != nil {
			return query.Equation{}, err
		}
		eq.AddAddend(coeff, v)
	}
	return eq, nil
}
