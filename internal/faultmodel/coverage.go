package faultmodel

import (
	"fmt"
	"math"

	"github.com/casbin/govaluate"
	"github.com/gmofishsauce/a0compact/internal/faultgrammar"
)

// CoverageError wraps a formula evaluation failure, e.g. an unknown
// status-group symbol.
type CoverageError struct {
	Formula string
	Err     error
}

func (e *CoverageError) Error() string {
	return fmt.Sprintf("coverage: formula %q: %v", e.Formula, e.Err)
}

func (e *CoverageError) Unwrap() error { return e.Err }

// EvaluateCoverage substitutes every status-group symbol in the formula
// with its current aggregate count (TallyPrime mode, the default; 0 for a
// group with no tallied faults) and evaluates the resulting arithmetic
// expression, rounded to precision decimal places.
//
// govaluate evaluates pure arithmetic over named parameters only — it
// exposes no host-language features, satisfying the requirement that
// coverage formulae (arbitrary user text) never run through a general
// interpreter.
func (fs *FaultSet) EvaluateCoverage(formula faultgrammar.CoverageFormula, precision int) (float64, error) {
	expr, err := govaluate.NewEvaluableExpression(formula.Expr)
	if err != nil {
		return 0, &CoverageError{Formula: formula.Name, Err: err}
	}

	parameters := make(map[string]interface{}, len(fs.groups))
	for _, g := range fs.groups {
		parameters[g.Code] = float64(fs.AggregateGroup(g.Code, TallyPrime))
	}

	result, err := expr.Evaluate(parameters)
	if err != nil {
		return 0, &CoverageError{Formula: formula.Name, Err: err}
	}

	value, ok := result.(float64)
	if !ok {
		return 0, &CoverageError{Formula: formula.Name, Err: fmt.Errorf("non-numeric result %v", result)}
	}

	return roundTo(value, precision), nil
}

func roundTo(value float64, precision int) float64 {
	scale := math.Pow(10, float64(precision))
	return math.Round(value*scale) / scale
}
