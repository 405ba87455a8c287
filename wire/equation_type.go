package wire

import (
	"strconv"

	"github.com/katalvlaran/nlreason/query"
)

// EquationTypeName renders t's frozen wire constant as its canonical
// name. Equation type constants are part of the wire format; changing
// them is a breaking change.
func EquationTypeName(t query.EquationType) string {
	switch t {
	case query.EquationEQ:
		return "EQ"
	case query.EquationGE:
		return "GE"
	case query.EquationLE:
		return "LE"
	default:
		return "UNKNOWN"
	}
}

// ParseEquationType is EquationTypeName's inverse, accepting either the
// canonical name or the raw numeric wire constant.
func ParseEquationType(s string) (query.EquationType, error) {
	switch s {
	case "EQ":
		return query.EquationEQ, nil
	case "GE":
		return query.EquationGE, nil
	case "LE":
		return query.EquationLE, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrMalformedLine
	}
	switch query.EquationType(n) {
	case query.EquationEQ, query.EquationGE, query.EquationLE:
		return query.EquationType(n), nil
	default:
		return 0, ErrMalformedLine
	}
}
