package wire

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/katalvlaran/nlreason/constraint"
	"github.com/katalvlaran/nlreason/query"
)

// boundDecimals is the fixed decimal precision used for lower/upper
// bound fields (10 decimal digits).
const boundDecimals = 10

// softmaxSentinel separates a Softmax record's input-variable list from
// its output-variable list. Variable indices are never negative, so -1
// cannot collide with a real variable.
const softmaxSentinel = -1

// Save writes q in the persisted ASCII format to w. Every variable's
// lower and upper bound is written (numLowerBounds == numUpperBounds ==
// q.NumVariables()); the grammar distinguishes the two counts but this
// module never omits a bound, so they always agree.
func Save(q *query.Query, w io.Writer) error {
	bw := bufio.NewWriter(w)

	n := q.NumVariables()
	equations := q.Equations()
	constraints := q.NonlinearConstraints()
	numInputs := q.NumInputVariables()
	numOutputs := q.NumOutputVariables()

	writeInt(bw, n)
	writeInt(bw, n) // numLowerBounds
	writeInt(bw, n) // numUpperBounds
	writeInt(bw, len(equations))
	writeInt(bw, len(constraints))
	writeInt(bw, numInputs)

	for i := 0; i < numInputs; i++ {
		v, err := q.InputVariableByIndex(i)
		if err != nil {
			return err
		}
		fmt.Fprintf(bw, "%d,%d\n", i, v)
	}

	writeInt(bw, numOutputs)
	for i := 0; i < numOutputs; i++ {
		v, err := q.OutputVariableByIndex(i)
		if err != nil {
			return err
		}
		fmt.Fprintf(bw, "%d,%d\n", i, v)
	}

	for v := 0; v < n; v++ {
		lo, err := q.Lower(v)
		if err != nil {
			return err
		}
		fmt.Fprintf(bw, "%d,%s\n", v, formatBound(lo))
	}
	for v := 0; v < n; v++ {
		hi, err := q.Upper(v)
		if err != nil {
			return err
		}
		fmt.Fprintf(bw, "%d,%s\n", v, formatBound(hi))
	}

	for i, eq := range equations {
		if err := writeEquation(bw, i, eq); err != nil {
			return err
		}
	}

	for i, c := range constraints {
		if err := writeConstraint(bw, i, c); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', boundDecimals, 64)
}

func writeInt(bw *bufio.Writer, n int) {
	fmt.Fprintf(bw, "%d\n", n)
}

func writeEquation(bw *bufio.Writer, index int, eq query.Equation) error {
	fields := []string{strconv.Itoa(index), strconv.Itoa(int(eq.Type)), strconv.FormatFloat(eq.Scalar, 'g', -1, 64)}
	for _, a := range eq.Addends {
		fields = append(fields, strconv.Itoa(a.Variable), strconv.FormatFloat(a.Coefficient, 'g', -1, 64))
	}
	_, err := fmt.Fprintln(bw, strings.Join(fields, ","))
	return err
}

func writeConstraint(bw *bufio.Writer, index int, c query.Constraint) error {
	tag := kindTag(c.Kind())
	fields := []string{strconv.Itoa(index), tag}

	switch t := c.(type) {
	case *constraint.Relu:
		b, f := t.BF()
		fields = append(fields, strconv.Itoa(b), strconv.Itoa(f))
	case *constraint.LeakyRelu:
		b, f := t.BF()
		fields = append(fields, strconv.Itoa(b), strconv.Itoa(f), strconv.FormatFloat(t.Slope(), 'g', -1, 64))
	case *constraint.Sign:
		b, f := t.BF()
		fields = append(fields, strconv.Itoa(b), strconv.Itoa(f))
	case *constraint.AbsoluteValue:
		b, f := t.BF()
		fields = append(fields, strconv.Itoa(b), strconv.Itoa(f))
	case *constraint.Round:
		b, f := t.BF()
		fields = append(fields, strconv.Itoa(b), strconv.Itoa(f))
	case *constraint.Sigmoid:
		b, f := t.BF()
		fields = append(fields, strconv.Itoa(b), strconv.Itoa(f))
	case *constraint.Max:
		elements, f := t.ElementsF()
		for _, e := range elements {
			fields = append(fields, strconv.Itoa(e))
		}
		fields = append(fields, strconv.Itoa(f))
	case *constraint.Bilinear:
		x, y, f := t.XYF()
		fields = append(fields, strconv.Itoa(x), strconv.Itoa(y), strconv.Itoa(f))
	case *constraint.Softmax:
		for _, v := range t.Inputs() {
			fields = append(fields, strconv.Itoa(v))
		}
		fields = append(fields, strconv.Itoa(softmaxSentinel))
		for _, v := range t.Outputs() {
			fields = append(fields, strconv.Itoa(v))
		}
	case *constraint.Disjunction:
		fields = append(fields, encodeDisjunction(t))
	default:
		return fmt.Errorf("wire: %w: %T", ErrUnknownKindTag, c)
	}

	_, err := fmt.Fprintln(bw, strings.Join(fields, ","))
	return err
}

// Load reads a query.Query back from r in the format Save writes.
func Load(r io.Reader) (*query.Query, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lr := &lineReader{sc: sc}

	n, err := lr.int()
	if err != nil {
		return nil, err
	}
	numLower, err := lr.int()
	if err != nil {
		return nil, err
	}
	numUpper, err := lr.int()
	if err != nil {
		return nil, err
	}
	numEquations, err := lr.int()
	if err != nil {
		return nil, err
	}
	numConstraints, err := lr.int()
	if err != nil {
		return nil, err
	}
	numInputs, err := lr.int()
	if err != nil {
		return nil, err
	}

	q := query.New()
	q.SetNumVariables(n)

	for i := 0; i < numInputs; i++ {
		fields, err := lr.fields()
		if err != nil {
			return nil, err
		}
		v, err := parseIntField(fields, 1)
		if err != nil {
			return nil, err
		}
		q.MarkInput(v)
	}

	numOutputs, err := lr.int()
	if err != nil {
		return nil, err
	}
	for i := 0; i < numOutputs; i++ {
		fields, err := lr.fields()
		if err != nil {
			return nil, err
		}
		v, err := parseIntField(fields, 1)
		if err != nil {
			return nil, err
		}
		q.MarkOutput(v)
	}

	for i := 0; i < numLower; i++ {
		fields, err := lr.fields()
		if err != nil {
			return nil, err
		}
		v, err := parseIntField(fields, 0)
		if err != nil {
			return nil, err
		}
		val, err := parseFloatField(fields, 1)
		if err != nil {
			return nil, err
		}
		if err := q.SetLower(v, val); err != nil {
			return nil, err
		}
	}
	for i := 0; i < numUpper; i++ {
		fields, err := lr.fields()
		if err != nil {
			return nil, err
		}
		v, err := parseIntField(fields, 0)
		if err != nil {
			return nil, err
		}
		val, err := parseFloatField(fields, 1)
		if err != nil {
			return nil, err
		}
		if err := q.SetUpper(v, val); err != nil {
			return nil, err
		}
	}

	for i := 0; i < numEquations; i++ {
		fields, err := lr.fields()
		if err != nil {
			return nil, err
		}
		eq, err := parseEquation(fields)
		if err != nil {
			return nil, err
		}
		q.AddEquation(eq)
	}

	for i := 0; i < numConstraints; i++ {
		line, err := lr.line()
		if err != nil {
			return nil, err
		}
		// A disjunction's encoded blob (see disjunction.go) embeds commas
		// of its own, so the constraint record is split into at most
		// three top-level fields (index, tag, rest) rather than
		// comma-split in full; every other kind then re-splits rest on
		// its own.
		top := strings.SplitN(line, ",", 3)
		if len(top) < 2 {
			return nil, ErrMalformedLine
		}
		fields := append([]string{top[0], top[1]}, splitRest(top)...)
		c, sumToOne, err := parseConstraint(fields)
		if err != nil {
			return nil, err
		}
		if sm, ok := c.(*constraint.Softmax); ok {
			q.AddNonlinear(sm)
			if sumToOne != nil {
				q.AddEquation(*sumToOne)
			}
			continue
		}
		if rnd, ok := c.(*constraint.Round); ok {
			q.AddNonlinear(rnd)
			continue
		}
		if sig, ok := c.(*constraint.Sigmoid); ok {
			q.AddNonlinear(sig)
			continue
		}
		q.AddPiecewise(c)
	}

	return q, nil
}

type lineReader struct {
	sc *bufio.Scanner
}

func (lr *lineReader) line() (string, error) {
	if !lr.sc.Scan() {
		if err := lr.sc.Err(); err != nil {
			return "", err
		}
		return "", ErrTruncated
	}
	return lr.sc.Text(), nil
}

func (lr *lineReader) int() (int, error) {
	s, err := lr.line()
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedLine, err)
	}
	return v, nil
}

func (lr *lineReader) fields() ([]string, error) {
	s, err := lr.line()
	if err != nil {
		return nil, err
	}
	return strings.Split(s, ","), nil
}

func parseIntField(fields []string, i int) (int, error) {
	if i >= len(fields) {
		return 0, ErrMalformedLine
	}
	v, err := strconv.Atoi(strings.TrimSpace(fields[i]))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedLine, err)
	}
	return v, nil
}

func parseFloatField(fields []string, i int) (float64, error) {
	if i >= len(fields) {
		return 0, ErrMalformedLine
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedLine, err)
	}
	return v, nil
}

func parseEquation(fields []string) (query.Equation, error) {
	if len(fields) < 3 {
		return query.Equation{}, ErrMalformedLine
	}
	typ, err := parseIntField(fields, 1)
	if err != nil {
		return query.Equation{}, err
	}
	scalar, err := parseFloatField(fields, 2)
	if err != nil {
		return query.Equation{}, err
	}
	eq := query.NewEquation(query.EquationType(typ))
	eq.SetScalar(scalar)
	for i := 3; i+1 < len(fields); i += 2 {
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

// parseConstraint returns the constructed constraint and, for Softmax,
// the synthesized sum-to-one equation the caller must also register:
// softmax's encoding implicitly adds the sum-to-one equation on load.
func parseConstraint(fields []string) (query.Constraint, *query.Equation, error) {
	if len(fields) < 2 {
		return nil, nil, ErrMalformedLine
	}
	tag := fields[1]
	kind, ok := tagToKind[tag]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownKindTag, tag)
	}
	rest := fields[2:]

	switch kind {
	case query.KindRelu:
		b, f, err := parsePair(rest)
		if err != nil {
			return nil, nil, err
		}
		return constraint.NewRelu(b, f), nil, nil
	case query.KindSign:
		b, f, err := parsePair(rest)
		if err != nil {
			return nil, nil, err
		}
		return constraint.NewSign(b, f), nil, nil
	case query.KindAbsoluteValue:
		b, f, err := parsePair(rest)
		if err != nil {
			return nil, nil, err
		}
		return constraint.NewAbsoluteValue(b, f), nil, nil
	case query.KindRound:
		b, f, err := parsePair(rest)
		if err != nil {
			return nil, nil, err
		}
		return constraint.NewRound(b, f), nil, nil
	case query.KindSigmoid:
		b, f, err := parsePair(rest)
		if err != nil {
			return nil, nil, err
		}
		return constraint.NewSigmoid(b, f), nil, nil
	case query.KindLeakyRelu:
		if len(rest) < 3 {
			return nil, nil, ErrMalformedLine
		}
		b, err := strconv.Atoi(rest[0])
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrMalformedLine, err)
		}
		f, err := strconv.Atoi(rest[1])
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrMalformedLine, err)
		}
		slope, err := strconv.ParseFloat(rest[2], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrMalformedLine, err)
		}
		return constraint.NewLeakyRelu(b, f, slope), nil, nil
	case query.KindBilinear:
		if len(rest) < 3 {
			return nil, nil, ErrMalformedLine
		}
		x, err := strconv.Atoi(rest[0])
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrMalformedLine, err)
		}
		y, err := strconv.Atoi(rest[1])
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrMalformedLine, err)
		}
		f, err := strconv.Atoi(rest[2])
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrMalformedLine, err)
		}
		return constraint.NewBilinear(x, y, f), nil, nil
	case query.KindMax:
		if len(rest) < 2 {
			return nil, nil, ErrMalformedLine
		}
		ints := make([]int, len(rest))
		for i, s := range rest {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: %v", ErrMalformedLine, err)
			}
			ints[i] = v
		}
		f := ints[len(ints)-1]
		elements := ints[:len(ints)-1]
		return constraint.NewMax(elements, f), nil, nil
	case query.KindSoftmax:
		return parseSoftmax(rest)
	case query.KindDisjunction:
		if len(rest) < 1 {
			return nil, nil, ErrMalformedLine
		}
		d, err := decodeDisjunction(rest[0])
		return d, nil, err
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownKindTag, tag)
	}
}

// splitRest turns a constraint record's third top-level field (if any)
// back into the per-kind parameter list: left untouched for "disj"
// (its blob uses ";|/&:" delimiters, never top-level commas meaningfully
// split-able here), comma-split for every other kind.
func splitRest(top []string) []string {
	if len(top) < 3 {
		return nil
	}
	if top[1] == kindTag(query.KindDisjunction) {
		return []string{top[2]}
	}
	return strings.Split(top[2], ",")
}

func parsePair(rest []string) (int, int, error) {
	if len(rest) < 2 {
		return 0, 0, ErrMalformedLine
	}
	b, err := strconv.Atoi(rest[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrMalformedLine, err)
	}
	f, err := strconv.Atoi(rest[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrMalformedLine, err)
	}
	return b, f, nil
}

func parseSoftmax(rest []string) (query.Constraint, *query.Equation, error) {
	split := -1
	for i, s := range rest {
		if s == strconv.Itoa(softmaxSentinel) {
			split = i
			break
		}
	}
	if split < 0 {
		return nil, nil, ErrMalformedLine
	}
	inputs := make([]int, split)
	for i, s := range rest[:split] {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrMalformedLine, err)
		}
		inputs[i] = v
	}
	outTokens := rest[split+1:]
	outputs := make([]int, len(outTokens))
	for i, s := range outTokens {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrMalformedLine, err)
		}
		outputs[i] = v
	}

	sm := constraint.NewSoftmax(inputs, outputs, 0)
	eq := query.NewEquation(query.EquationEQ)
	for _, v := range outputs {
		eq.AddAddend(1, v)
	}
	eq.SetScalar(1)
	return sm, &eq, nil
}
