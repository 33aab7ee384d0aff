package tools

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Evaluate computes a mathematical expression without any dynamic code
// execution. Supported: + - * / % ^, parentheses, unary minus, the
// constants pi and e, and a fixed function set (abs, sqrt, pow, min, max,
// round, floor, ceil, exp, log, log10, sin, cos, tan).
func Evaluate(expression string) (float64, error) {
	p := &exprParser{input: expression}
	p.next()

	value, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if p.tok.kind != tokEOF {
		return 0, fmt.Errorf("unexpected %q at position %d", p.tok.text, p.tok.pos)
	}
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, fmt.Errorf("expression result is not a finite number")
	}
	return value, nil
}

// formatNumber renders a result the way the calculator tool reports it:
// integers without a decimal point, everything else in compact form.
func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

type exprParser struct {
	input string
	pos   int
	tok   token
	err   error
}

// next advances to the following token. Lexing errors are deferred into
// the parser error so callers see one failure path.
func (p *exprParser) next() {
	for p.pos < len(p.input) && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
	start := p.pos

	if p.pos >= len(p.input) {
		p.tok = token{kind: tokEOF, pos: start}
		return
	}

	c := p.input[p.pos]
	switch {
	case c >= '0' && c <= '9' || c == '.':
		end := p.pos
		for end < len(p.input) && (p.input[end] >= '0' && p.input[end] <= '9' || p.input[end] == '.') {
			end++
		}
		text := p.input[p.pos:end]
		num, err := strconv.ParseFloat(text, 64)
		if err != nil {
			p.err = fmt.Errorf("invalid number %q at position %d", text, start)
		}
		p.pos = end
		p.tok = token{kind: tokNumber, text: text, num: num, pos: start}

	case isIdentRune(rune(c)):
		end := p.pos
		for end < len(p.input) && isIdentRune(rune(p.input[end])) {
			end++
		}
		p.tok = token{kind: tokIdent, text: strings.ToLower(p.input[p.pos:end]), pos: start}
		p.pos = end

	case strings.ContainsRune("+-*/%^", rune(c)):
		p.tok = token{kind: tokOp, text: string(c), pos: start}
		p.pos++

	case c == '(':
		p.tok = token{kind: tokLParen, text: "(", pos: start}
		p.pos++

	case c == ')':
		p.tok = token{kind: tokRParen, text: ")", pos: start}
		p.pos++

	case c == ',':
		p.tok = token{kind: tokComma, text: ",", pos: start}
		p.pos++

	default:
		p.err = fmt.Errorf("unexpected character %q at position %d", string(c), start)
		p.tok = token{kind: tokEOF, pos: start}
	}
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func (p *exprParser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}

	for p.tok.kind == tokOp && (p.tok.text == "+" || p.tok.text == "-") {
		op := p.tok.text
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == "+" {
			left += right
		} else {
			left -= right
		}
	}
	return left, p.err
}

func (p *exprParser) parseTerm() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}

	for p.tok.kind == tokOp && (p.tok.text == "*" || p.tok.text == "/" || p.tok.text == "%") {
		op := p.tok.text
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		switch op {
		case "*":
			left *= right
		case "/":
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left /= right
		case "%":
			if right == 0 {
				return 0, fmt.Errorf("modulo by zero")
			}
			left = math.Mod(left, right)
		}
	}
	return left, p.err
}

func (p *exprParser) parseUnary() (float64, error) {
	if p.tok.kind == tokOp && p.tok.text == "-" {
		p.next()
		value, err := p.parseUnary()
		return -value, err
	}
	if p.tok.kind == tokOp && p.tok.text == "+" {
		p.next()
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *exprParser) parsePower() (float64, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}

	// Right-associative exponent.
	if p.tok.kind == tokOp && p.tok.text == "^" {
		p.next()
		exp, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return math.Pow(base, exp), nil
	}
	return base, nil
}

func (p *exprParser) parsePrimary() (float64, error) {
	if p.err != nil {
		return 0, p.err
	}

	switch p.tok.kind {
	case tokNumber:
		value := p.tok.num
		p.next()
		return value, nil

	case tokIdent:
		name := p.tok.text
		p.next()

		if p.tok.kind == tokLParen {
			return p.parseCall(name)
		}

		switch name {
		case "pi":
			return math.Pi, nil
		case "e":
			return math.E, nil
		default:
			return 0, fmt.Errorf("unknown identifier %q", name)
		}

	case tokLParen:
		p.next()
		value, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.tok.kind != tokRParen {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.next()
		return value, nil

	case tokEOF:
		return 0, fmt.Errorf("unexpected end of expression")

	default:
		return 0, fmt.Errorf("unexpected %q at position %d", p.tok.text, p.tok.pos)
	}
}

func (p *exprParser) parseCall(name string) (float64, error) {
	// Currently on '('.
	p.next()

	var args []float64
	if p.tok.kind != tokRParen {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return 0, err
			}
			args = append(args, arg)
			if p.tok.kind != tokComma {
				break
			}
			p.next()
		}
	}
	if p.tok.kind != tokRParen {
		return 0, fmt.Errorf("missing closing parenthesis in call to %q", name)
	}
	p.next()

	return applyFunc(name, args)
}

func applyFunc(name string, args []float64) (float64, error) {
	one := func(fn func(float64) float64) (float64, error) {
		if len(args) != 1 {
			return 0, fmt.Errorf("%s expects 1 argument, got %d", name, len(args))
		}
		return fn(args[0]), nil
	}

	switch name {
	case "abs":
		return one(math.Abs)
	case "sqrt":
		if len(args) == 1 && args[0] < 0 {
			return 0, fmt.Errorf("sqrt of negative number")
		}
		return one(math.Sqrt)
	case "round":
		return one(math.Round)
	case "floor":
		return one(math.Floor)
	case "ceil":
		return one(math.Ceil)
	case "exp":
		return one(math.Exp)
	case "log":
		if len(args) == 1 && args[0] <= 0 {
			return 0, fmt.Errorf("log of non-positive number")
		}
		return one(math.Log)
	case "log10":
		if len(args) == 1 && args[0] <= 0 {
			return 0, fmt.Errorf("log10 of non-positive number")
		}
		return one(math.Log10)
	case "sin":
		return one(math.Sin)
	case "cos":
		return one(math.Cos)
	case "tan":
		return one(math.Tan)
	case "pow":
		if len(args) != 2 {
			return 0, fmt.Errorf("pow expects 2 arguments, got %d", len(args))
		}
		return math.Pow(args[0], args[1]), nil
	case "min":
		if len(args) == 0 {
			return 0, fmt.Errorf("min expects at least 1 argument")
		}
		m := args[0]
		for _, a := range args[1:] {
			m = math.Min(m, a)
		}
		return m, nil
	case "max":
		if len(args) == 0 {
			return 0, fmt.Errorf("max expects at least 1 argument")
		}
		m := args[0]
		for _, a := range args[1:] {
			m = math.Max(m, a)
		}
		return m, nil
	default:
		return 0, fmt.Errorf("unknown function %q", name)
	}
}
