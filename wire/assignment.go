package wire

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/katalvlaran/nlreason/query"
)

// ExportAssignment writes q's recorded solution values: first line the
// variable count, then one "index,value" line per variable with %f
// formatting.
func ExportAssignment(q *query.Query, w io.Writer) error {
	bw := bufio.NewWriter(w)
	n := q.NumVariables()
	fmt.Fprintf(bw, "%d\n", n)
	for v := 0; v < n; v++ {
		val, err := q.SolutionValue(v)
		if err != nil {
			return fmt.Errorf("wire: variable %d has no recorded solution: %w", v, err)
		}
		fmt.Fprintf(bw, "%d,%f\n", v, val)
	}
	return bw.Flush()
}

// LoadAssignment is ExportAssignment's inverse, returning the
// index-to-value map it wrote.
func LoadAssignment(r io.Reader) (map[int]float64, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		return nil, ErrTruncated
	}
	n, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedLine, err)
	}

	out := make(map[int]float64, n)
	for i := 0; i < n; i++ {
		if !sc.Scan() {
			return nil, ErrTruncated
		}
		fields := strings.Split(sc.Text(), ",")
		if len(fields) != 2 {
			return nil, ErrMalformedLine
		}
		idx, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedLine, err)
		}
		val, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedLine, err)
		}
		out[idx] = val
	}
	return out, nil
}
