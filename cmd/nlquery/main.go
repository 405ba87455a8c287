// Command nlquery is the thinnest possible driver exercising the core
// engine end-to-end: load a wire-format query, lift it into a layer
// DAG, propagate bounds to a fixed point or a deadline, and report
// UNSAT/UNKNOWN/TIMEOUT (bound propagation alone never reports SAT).
// It does not parse ONNX or VNN-LIB property
// files and has no search, optimization, or distributed-execution
// flags — those belong to a full verifier CLI, not this exerciser.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/katalvlaran/nlreason/config"
	_ "github.com/katalvlaran/nlreason/lifter" // registers query.Query's lifting backend
	"github.com/katalvlaran/nlreason/nlerrors"
	"github.com/katalvlaran/nlreason/query"
	"github.com/katalvlaran/nlreason/reasoner"
	"github.com/katalvlaran/nlreason/wire"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		var cliErr *nlerrors.CLIError
		if ok := asCLIError(err, &cliErr); ok {
			log.Println(cliErr.Error())
			os.Exit(cliErr.Code)
		}
		log.Println(err)
		os.Exit(1)
	}
}

func asCLIError(err error, target **nlerrors.CLIError) bool {
	for err != nil {
		if cliErr, ok := err.(*nlerrors.CLIError); ok {
			*target = cliErr
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("nlquery", flag.ContinueOnError)
	inputQuery := fs.String("input-query", "", "path to a wire-format persisted query (required)")
	timeoutSeconds := fs.Float64("timeout", 0, "propagation deadline in seconds (0 = unlimited)")
	dumpFile := fs.String("query-dump-file", "", "path to re-save the loaded query to, for round-trip inspection")
	if err := fs.Parse(args); err != nil {
		return nlerrors.NewCLIError(1, err)
	}

	if *inputQuery == "" {
		return nlerrors.NewCLIError(1, fmt.Errorf("nlquery: --input-query is required"))
	}

	f, err := os.Open(*inputQuery)
	if err != nil {
		return nlerrors.NewCLIError(1, fmt.Errorf("nlquery: %w", err))
	}
	defer f.Close()

	q, err := wire.Load(f)
	if err != nil {
		return nlerrors.NewCLIError(1, fmt.Errorf("nlquery: loading query: %w", err))
	}

	if *dumpFile != "" {
		out, err := os.Create(*dumpFile)
		if err != nil {
			return nlerrors.NewCLIError(1, fmt.Errorf("nlquery: %w", err))
		}
		defer out.Close()
		if err := wire.Save(q, out); err != nil {
			return nlerrors.NewCLIError(1, fmt.Errorf("nlquery: dumping query: %w", err))
		}
	}

	cfg := config.Default()
	result, err := q.ConstructNetworkLevelReasoner(cfg)
	if err != nil {
		return nlerrors.NewCLIError(1, fmt.Errorf("nlquery: lifting query: %w", err))
	}
	if len(result.UnhandledEquations) > 0 || len(result.UnhandledVariables) > 0 {
		fmt.Fprintf(stdout, "warning: %d equation(s) and %d variable(s) could not be lifted into the layer graph\n",
			len(result.UnhandledEquations), len(result.UnhandledVariables))
	}
	r, ok := result.Reasoner.(*reasoner.Reasoner)
	if !ok {
		return nlerrors.NewCLIError(1, fmt.Errorf("nlquery: lifting query: unexpected reasoner type %T", result.Reasoner))
	}

	ctx := context.Background()
	if *timeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(*timeoutSeconds*float64(time.Second)))
		defer cancel()
	}

	status, err := r.Propagate(ctx, q)
	if err != nil && status != reasoner.StatusInterrupted {
		return nlerrors.NewCLIError(1, fmt.Errorf("nlquery: propagating: %w", err))
	}

	fmt.Fprintln(stdout, statusReport(status))

	if status == reasoner.StatusUnknown && recordWitnessIfCollapsed(q) {
		fmt.Fprintln(stdout, "witness assignment (all variable bounds collapsed to a point):")
		if err := wire.ExportAssignment(q, stdout); err != nil {
			return nlerrors.NewCLIError(1, fmt.Errorf("nlquery: exporting assignment: %w", err))
		}
	}
	return nil
}

// recordWitnessIfCollapsed records q's lower bound as the solution value
// for every variable, but only when every variable's interval has
// collapsed to a single point: bound propagation alone never performs
// the case-split search needed to produce a witness for a query with
// any remaining slack.
func recordWitnessIfCollapsed(q *query.Query) bool {
	n := q.NumVariables()
	for v := 0; v < n; v++ {
		lo, err := q.Lower(v)
		if err != nil {
			return false
		}
		hi, err := q.Upper(v)
		if err != nil {
			return false
		}
		if lo != hi {
			return false
		}
	}
	for v := 0; v < n; v++ {
		lo, _ := q.Lower(v)
		q.SetSolutionValue(v, lo)
	}
	return true
}

func statusReport(status reasoner.Status) string {
	switch status {
	case reasoner.StatusUnsat:
		return "UNSAT"
	case reasoner.StatusInterrupted:
		return "TIMEOUT"
	case reasoner.StatusBudgetExceeded:
		return "UNKNOWN (iteration budget exceeded before a fixed point)"
	default:
		return "UNKNOWN (no contradiction found; bound propagation alone does not prove SAT)"
	}
}
