// Package formula parses and evaluates the restricted arithmetic
// language used by attribute price/weight/technical formulas.
//
// The grammar admits numeric literals, variables bound from a caller
// supplied context, unary minus, the binary operators + - * / with
// standard precedence, and parenthesized grouping. No function calls,
// no assignment, no control flow. Every literal, intermediate result
// and final result must stay inside the open interval (-1e10, 1e10).
//
// Evaluation is pure and stateless; concurrent calls are safe.
package formula

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// divisionScale is the number of fractional digits kept by division.
// Totals are only rounded at the presentation boundary; mid-calculation
// division keeps enough precision that compounding does not drift.
const divisionScale = 12

// Evaluate parses formula against the restricted grammar and computes
// its value with the given variable bindings.
//
// Failure modes are the typed errors in this package: *SyntaxError,
// *UnknownVariableError, *DivisionByZeroError, *OutOfRangeError and
// *UnexpectedError. Anything outside that taxonomy is wrapped into
// *UnexpectedError together with the formula text.
func Evaluate(formula string, vars map[string]decimal.Decimal) (result decimal.Decimal, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = decimal.Zero
			err = &UnexpectedError{Formula: formula, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if strings.TrimSpace(formula) == "" {
		return decimal.Zero, &SyntaxError{Formula: formula, Pos: 0, Msg: "empty formula"}
	}

	root, err := parse(formula)
	if err != nil {
		return decimal.Zero, err
	}

	known := make([]string, 0, len(vars))
	for name := range vars {
		known = append(known, name)
	}
	sort.Strings(known)

	value, err := root.eval(vars, known)
	if err != nil {
		switch err.(type) {
		case *SyntaxError, *UnknownVariableError, *DivisionByZeroError, *OutOfRangeError:
			return decimal.Zero, err
		default:
			return decimal.Zero, &UnexpectedError{Formula: formula, Err: err}
		}
	}
	return value, nil
}

// Validate parses formula without evaluating it. Used when attribute
// nodes are saved so broken formula text is rejected at edit time.
func Validate(formula string) error {
	if strings.TrimSpace(formula) == "" {
		return &SyntaxError{Formula: formula, Pos: 0, Msg: "empty formula"}
	}
	_, err := parse(formula)
	return err
}
