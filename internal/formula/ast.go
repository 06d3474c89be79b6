package formula

import "github.com/shopspring/decimal"

// The AST is a deliberate whitelist: literals, variables, unary minus
// and the four binary operators. Nothing else can be represented, so
// user-editable formula text can never reach arbitrary execution.

type node interface {
	eval(vars map[string]decimal.Decimal, known []string) (decimal.Decimal, error)
}

type literalNode struct {
	value decimal.Decimal
}

type variableNode struct {
	name string
}

type unaryNode struct {
	operand node
}

type binaryNode struct {
	op    byte // one of + - * /
	left  node
	right node
}

var rangeLimit = decimal.New(1, 10) // 1e10, exclusive bound

func checkRange(v decimal.Decimal) (decimal.Decimal, error) {
	if v.Abs().GreaterThanOrEqual(rangeLimit) {
		return decimal.Zero, &OutOfRangeError{Value: v}
	}
	return v, nil
}

func (n *literalNode) eval(vars map[string]decimal.Decimal, known []string) (decimal.Decimal, error) {
	return checkRange(n.value)
}

func (n *variableNode) eval(vars map[string]decimal.Decimal, known []string) (decimal.Decimal, error) {
	v, ok := vars[n.name]
	if !ok {
		return decimal.Zero, &UnknownVariableError{Name: n.name, Known: known}
	}
	return checkRange(v)
}

func (n *unaryNode) eval(vars map[string]decimal.Decimal, known []string) (decimal.Decimal, error) {
	v, err := n.operand.eval(vars, known)
	if err != nil {
		return decimal.Zero, err
	}
	return checkRange(v.Neg())
}

func (n *binaryNode) eval(vars map[string]decimal.Decimal, known []string) (decimal.Decimal, error) {
	left, err := n.left.eval(vars, known)
	if err != nil {
		return decimal.Zero, err
	}
	right, err := n.right.eval(vars, known)
	if err != nil {
		return decimal.Zero, err
	}
	switch n.op {
	case '+':
		return checkRange(left.Add(right))
	case '-':
		return checkRange(left.Sub(right))
	case '*':
		return checkRange(left.Mul(right))
	case '/':
		// Checked up front, not recovered after the fact.
		if right.IsZero() {
			return decimal.Zero, &DivisionByZeroError{}
		}
		return checkRange(left.DivRound(right, divisionScale))
	}
	return decimal.Zero, &UnexpectedError{Err: errUnknownOperator(n.op)}
}
