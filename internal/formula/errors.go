package formula

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// SyntaxError means the formula text does not parse under the
// restricted grammar (numbers, variables, + - * /, parentheses).
type SyntaxError struct {
	Formula string
	Pos     int
	Msg     string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d in %q: %s", e.Pos, e.Formula, e.Msg)
}

// UnknownVariableError carries the set of variables that were
// available, so a caller can surface an actionable message.
type UnknownVariableError struct {
	Name  string
	Known []string
}

func (e *UnknownVariableError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unknown variable %q (no variables defined)", e.Name)
	}
	return fmt.Sprintf("unknown variable %q (known: %s)", e.Name, strings.Join(e.Known, ", "))
}

type DivisionByZeroError struct{}

func (e *DivisionByZeroError) Error() string { return "division by zero" }

// OutOfRangeError is raised when any literal, intermediate result or
// final result leaves the open interval (-1e10, 1e10).
type OutOfRangeError struct {
	Value decimal.Decimal
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("value %s out of allowed range (-1e10, 1e10)", e.Value.String())
}

// UnexpectedError wraps any failure outside the enumerated taxonomy,
// keeping the formula text for diagnostics.
type UnexpectedError struct {
	Formula string
	Err     error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("unexpected error evaluating %q: %v", e.Formula, e.Err)
}

func (e *UnexpectedError) Unwrap() error { return e.Err }
