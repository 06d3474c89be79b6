package formula

import (
	"errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestEvaluateArithmetic(t *testing.T) {
	cases := []struct {
		name    string
		formula string
		vars    map[string]decimal.Decimal
		want    string
	}{
		{name: "precedence", formula: "2 + 3 * 4", want: "14"},
		{name: "grouping", formula: "(2 + 3) * 4", want: "20"},
		{name: "left_associative_subtraction", formula: "10 - 3 - 2", want: "5"},
		{name: "unary_minus", formula: "-4 + 10", want: "6"},
		{name: "double_unary_minus", formula: "--4", want: "4"},
		{name: "division", formula: "7 / 2", want: "3.5"},
		{name: "decimal_literals", formula: "0.1 + 0.2", want: "0.3"},
		{name: "variables", formula: "width * 5", vars: map[string]decimal.Decimal{"width": dec("10")}, want: "50"},
		{name: "mixed", formula: "base + width * height / 2", vars: map[string]decimal.Decimal{
			"base":   dec("100"),
			"width":  dec("4"),
			"height": dec("3"),
		}, want: "106"},
		{name: "whitespace_insensitive", formula: "  2+3\t*4 ", want: "14"},
		{name: "negative_variable", formula: "-offset", vars: map[string]decimal.Decimal{"offset": dec("2.5")}, want: "-2.5"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Evaluate(tc.formula, tc.vars)
			if err != nil {
				t.Fatalf("Evaluate(%q) returned error: %v", tc.formula, err)
			}
			if !got.Equal(dec(tc.want)) {
				t.Fatalf("Evaluate(%q) = %s, want %s", tc.formula, got, tc.want)
			}
		})
	}
}

func TestEvaluateSyntaxErrors(t *testing.T) {
	cases := []struct {
		name    string
		formula string
	}{
		{name: "empty", formula: ""},
		{name: "blank", formula: "   "},
		{name: "dangling_operator", formula: "2 +"},
		{name: "double_operator", formula: "2 + * 3"},
		{name: "unbalanced_paren", formula: "(2 + 3"},
		{name: "stray_rparen", formula: "2 + 3)"},
		{name: "illegal_character", formula: "2 $ 3"},
		{name: "bare_dot", formula: "."},
		{name: "function_call_rejected", formula: "abs(2)"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Evaluate(tc.formula, nil)
			var syntaxErr *SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Fatalf("Evaluate(%q) error = %v, want *SyntaxError", tc.formula, err)
			}
		})
	}
}

func TestEvaluateUnknownVariable(t *testing.T) {
	_, err := Evaluate("x + 1", map[string]decimal.Decimal{"y": dec("1")})
	var unknownErr *UnknownVariableError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("error = %v, want *UnknownVariableError", err)
	}
	if unknownErr.Name != "x" {
		t.Fatalf("unknown variable name = %q, want %q", unknownErr.Name, "x")
	}
	if !reflect.DeepEqual(unknownErr.Known, []string{"y"}) {
		t.Fatalf("known variables = %v, want [y]", unknownErr.Known)
	}
}

func TestEvaluateDivisionByZero(t *testing.T) {
	cases := []struct {
		name    string
		formula string
		vars    map[string]decimal.Decimal
	}{
		{name: "literal_zero", formula: "1 / 0"},
		{name: "variable_zero", formula: "a / b", vars: map[string]decimal.Decimal{"a": dec("10"), "b": dec("0")}},
		{name: "expression_zero", formula: "1 / (2 - 2)"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Evaluate(tc.formula, tc.vars)
			var divErr *DivisionByZeroError
			if !errors.As(err, &divErr) {
				t.Fatalf("Evaluate(%q) error = %v, want *DivisionByZeroError", tc.formula, err)
			}
		})
	}
}

func TestEvaluateOutOfRange(t *testing.T) {
	cases := []struct {
		name    string
		formula string
		vars    map[string]decimal.Decimal
	}{
		{name: "huge_literal", formula: "1e20 + 1"},
		{name: "limit_is_exclusive", formula: "10000000000"},
		{name: "intermediate_overflow", formula: "9999999999 * 9999999999 / 9999999999"},
		{name: "negative_overflow", formula: "-9999999999 - 9999999999"},
		{name: "huge_variable", formula: "x", vars: map[string]decimal.Decimal{"x": dec("1e11")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Evaluate(tc.formula, tc.vars)
			var rangeErr *OutOfRangeError
			if !errors.As(err, &rangeErr) {
				t.Fatalf("Evaluate(%q) error = %v, want *OutOfRangeError", tc.formula, err)
			}
		})
	}
}

func TestEvaluateBoundaryValues(t *testing.T) {
	got, err := Evaluate("9999999999 + 0.5", nil)
	if err != nil {
		t.Fatalf("value just under the limit should evaluate, got %v", err)
	}
	if !got.Equal(dec("9999999999.5")) {
		t.Fatalf("got %s, want 9999999999.5", got)
	}
}

func TestEvaluateIsPure(t *testing.T) {
	vars := map[string]decimal.Decimal{"a": dec("3"), "b": dec("4")}
	first, err := Evaluate("a * b", vars)
	if err != nil {
		t.Fatalf("first evaluation failed: %v", err)
	}
	second, err := Evaluate("a * b", vars)
	if err != nil {
		t.Fatalf("second evaluation failed: %v", err)
	}
	if !first.Equal(second) {
		t.Fatalf("repeated evaluation differs: %s vs %s", first, second)
	}
	if len(vars) != 2 || !vars["a"].Equal(dec("3")) || !vars["b"].Equal(dec("4")) {
		t.Fatalf("evaluation mutated caller context: %v", vars)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate("width * 5 + 2"); err != nil {
		t.Fatalf("valid formula rejected: %v", err)
	}
	if err := Validate("width *"); err == nil {
		t.Fatal("invalid formula accepted")
	}
}
