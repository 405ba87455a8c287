package wire

import (
	"github.com/iancoleman/strcase"
	"github.com/katalvlaran/nlreason/query"
)

// kindTagOverrides holds the two wire tags spelled differently than a
// mechanical snake_case conversion of the Go kind name would:
// AbsoluteValue's tag keeps its original camelCase spelling, and
// Disjunction's tag is the abbreviation "disj" the original's wire
// grammar and VNN-LIB compiler both use. Every other tag is exactly
// strcase.ToSnake(kind.String()).
var kindTagOverrides = map[query.Kind]string{
	query.KindAbsoluteValue: "absoluteValue",
	query.KindDisjunction:   "disj",
}

var tagToKind = buildTagToKind()

func buildTagToKind() map[string]query.Kind {
	m := make(map[string]query.Kind, 10)
	for _, k := range []query.Kind{
		query.KindRelu, query.KindLeakyRelu, query.KindSign, query.KindAbsoluteValue,
		query.KindMax, query.KindRound, query.KindSigmoid, query.KindSoftmax,
		query.KindBilinear, query.KindDisjunction,
	} {
		m[kindTag(k)] = k
	}
	return m
}

// kindTag renders kind's wire tag.
func kindTag(k query.Kind) string {
	if tag, ok := kindTagOverrides[k]; ok {
		return tag
	}
	return strcase.ToSnake(k.String())
}
