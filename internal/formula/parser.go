package formula

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokLParen
	tokRParen
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type parser struct {
	input  string
	tokens []token
	cur    int
}

func errUnknownOperator(op byte) error {
	return fmt.Errorf("unknown operator %q", string(op))
}

// parse compiles formula text into an AST.
//
// Grammar (standard precedence, left associative):
//
//	expr    := term (('+' | '-') term)*
//	term    := unary (('*' | '/') unary)*
//	unary   := '-' unary | primary
//	primary := NUMBER | IDENT | '(' expr ')'
func parse(input string) (node, error) {
	tokens, err := lex(input)
	if err != nil {
		return nil, err
	}
	p := &parser{input: input, tokens: tokens}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, &SyntaxError{Formula: input, Pos: tok.pos, Msg: fmt.Sprintf("unexpected %q", tok.text)}
	}
	return root, nil
}

func lex(input string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '+':
			tokens = append(tokens, token{tokPlus, "+", i})
			i++
		case c == '-':
			tokens = append(tokens, token{tokMinus, "-", i})
			i++
		case c == '*':
			tokens = append(tokens, token{tokStar, "*", i})
			i++
		case c == '/':
			tokens = append(tokens, token{tokSlash, "/", i})
			i++
		case c == '(':
			tokens = append(tokens, token{tokLParen, "(", i})
			i++
		case c == ')':
			tokens = append(tokens, token{tokRParen, ")", i})
			i++
		case c >= '0' && c <= '9', c == '.':
			start := i
			i = scanNumber(input, i)
			tokens = append(tokens, token{tokNumber, input[start:i], start})
		case isIdentStart(c):
			start := i
			for i < len(input) && isIdentPart(input[i]) {
				i++
			}
			tokens = append(tokens, token{tokIdent, input[start:i], start})
		default:
			return nil, &SyntaxError{Formula: input, Pos: i, Msg: fmt.Sprintf("unexpected character %q", string(c))}
		}
	}
	tokens = append(tokens, token{tokEOF, "", len(input)})
	return tokens, nil
}

// scanNumber consumes digits, an optional fraction and an optional
// exponent (1e20 style literals are legal; the range check rejects
// them at evaluation time, not here).
func scanNumber(input string, i int) int {
	for i < len(input) && (input[i] >= '0' && input[i] <= '9' || input[i] == '.') {
		i++
	}
	if i < len(input) && (input[i] == 'e' || input[i] == 'E') {
		j := i + 1
		if j < len(input) && (input[j] == '+' || input[j] == '-') {
			j++
		}
		if j < len(input) && input[j] >= '0' && input[j] <= '9' {
			for j < len(input) && input[j] >= '0' && input[j] <= '9' {
				j++
			}
			i = j
		}
	}
	return i
}

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

func (p *parser) peek() token {
	return p.tokens[p.cur]
}

func (p *parser) next() token {
	tok := p.tokens[p.cur]
	if tok.kind != tokEOF {
		p.cur++
	}
	return tok
}

func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().kind {
		case tokPlus:
			p.next()
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			left = &binaryNode{op: '+', left: left, right: right}
		case tokMinus:
			p.next()
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			left = &binaryNode{op: '-', left: left, right: right}
		default:
			return left, nil
		}
	}
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().kind {
		case tokStar:
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = &binaryNode{op: '*', left: left, right: right}
		case tokSlash:
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = &binaryNode{op: '/', left: left, right: right}
		default:
			return left, nil
		}
	}
}

func (p *parser) parseUnary() (node, error) {
	if p.peek().kind == tokMinus {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.next()
	switch tok.kind {
	case tokNumber:
		value, err := decimal.NewFromString(tok.text)
		if err != nil {
			return nil, &SyntaxError{Formula: p.input, Pos: tok.pos, Msg: fmt.Sprintf("invalid number %q", tok.text)}
		}
		return &literalNode{value: value}, nil
	case tokIdent:
		return &variableNode{name: tok.text}, nil
	case tokLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, &SyntaxError{Formula: p.input, Pos: closing.pos, Msg: "missing closing parenthesis"}
		}
		return inner, nil
	case tokEOF:
		return nil, &SyntaxError{Formula: p.input, Pos: tok.pos, Msg: "unexpected end of formula"}
	default:
		return nil, &SyntaxError{Formula: p.input, Pos: tok.pos, Msg: fmt.Sprintf("unexpected %q", tok.text)}
	}
}
