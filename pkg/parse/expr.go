package parse

import (
	stderrors "errors"
	"fmt"
	"unicode"

	"github.com/shopspring/decimal"
)

// Errors that make a string "not an expression". The parser hands such
// strings back unchanged instead of failing.
var (
	errSyntax     = stderrors.New("syntax error")
	errNotNumeric = stderrors.New("value is not numeric")
)

var errDivByZero = stderrors.New("division by zero")

func isPassthrough(err error) bool {
	return stderrors.Is(err, errSyntax) || stderrors.Is(err, errNotNumeric)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	num  decimal.Decimal
}

func lex(s string) ([]token, error) {
	var toks []token
	rs := []rune(s)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '+' || r == '-' || r == '*' || r == '/':
			toks = append(toks, token{kind: tokOp, text: string(r)})
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "("})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")"})
			i++
		case unicode.IsDigit(r) || r == '.':
			j := scanNumber(rs, i)
			d, err := decimal.NewFromString(string(rs[i:j]))
			if err != nil {
				return nil, fmt.Errorf("%w: bad number %q", errSyntax, string(rs[i:j]))
			}
			toks = append(toks, token{kind: tokNumber, text: string(rs[i:j]), num: d})
			i = j
		case r == '_' || unicode.IsLetter(r):
			j := i + 1
			for j < len(rs) && (rs[j] == '_' || unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j])) {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: string(rs[i:j])})
			i = j
		default:
			return nil, fmt.Errorf("%w: unexpected %q", errSyntax, r)
		}
	}
	return append(toks, token{kind: tokEOF}), nil
}

// scanNumber returns the end of the numeric literal starting at i:
// digits with an optional fraction and an optional exponent. An "e" that is
// not followed by digits is left for the identifier scanner ("1em" is 1 then
// "em").
func scanNumber(rs []rune, i int) int {
	j := i
	for j < len(rs) && unicode.IsDigit(rs[j]) {
		j++
	}
	if j < len(rs) && rs[j] == '.' {
		j++
		for j < len(rs) && unicode.IsDigit(rs[j]) {
			j++
		}
	}
	if j < len(rs) && (rs[j] == 'e' || rs[j] == 'E') {
		k := j + 1
		if k < len(rs) && (rs[k] == '+' || rs[k] == '-') {
			k++
		}
		if k < len(rs) && unicode.IsDigit(rs[k]) {
			for k < len(rs) && unicode.IsDigit(rs[k]) {
				k++
			}
			j = k
		}
	}
	return j
}

// evaluator is a recursive-descent evaluator over
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/") unary }
//	unary   = ("+" | "-") unary | primary
//	primary = number [unit] | ident | "(" expr ")" [unit]
type evaluator struct {
	p     *Parser
	toks  []token
	pos   int
	depth int
}

func (p *Parser) eval(s string, depth int) (decimal.Decimal, error) {
	toks, err := lex(s)
	if err != nil {
		return decimal.Zero, err
	}
	e := &evaluator{p: p, toks: toks, depth: depth}
	d, err := e.expr()
	if err != nil {
		return decimal.Zero, err
	}
	if e.peek().kind != tokEOF {
		return decimal.Zero, fmt.Errorf("%w: trailing %q", errSyntax, e.peek().text)
	}
	return d, nil
}

func (e *evaluator) peek() token { return e.toks[e.pos] }

func (e *evaluator) next() token {
	t := e.toks[e.pos]
	if t.kind != tokEOF {
		e.pos++
	}
	return t
}

func (e *evaluator) expr() (decimal.Decimal, error) {
	acc, err := e.term()
	if err != nil {
		return acc, err
	}
	for t := e.peek(); t.kind == tokOp && (t.text == "+" || t.text == "-"); t = e.peek() {
		e.next()
		rhs, err := e.term()
		if err != nil {
			return acc, err
		}
		if t.text == "+" {
			acc = acc.Add(rhs)
		} else {
			acc = acc.Sub(rhs)
		}
	}
	return acc, nil
}

func (e *evaluator) term() (decimal.Decimal, error) {
	acc, err := e.unary()
	if err != nil {
		return acc, err
	}
	for t := e.peek(); t.kind == tokOp && (t.text == "*" || t.text == "/"); t = e.peek() {
		e.next()
		rhs, err := e.unary()
		if err != nil {
			return acc, err
		}
		if t.text == "*" {
			acc = acc.Mul(rhs)
			continue
		}
		if rhs.IsZero() {
			return acc, errDivByZero
		}
		acc = acc.Div(rhs)
	}
	return acc, nil
}

func (e *evaluator) unary() (decimal.Decimal, error) {
	if t := e.peek(); t.kind == tokOp && (t.text == "-" || t.text == "+") {
		e.next()
		d, err := e.unary()
		if err != nil {
			return d, err
		}
		if t.text == "-" {
			return d.Neg(), nil
		}
		return d, nil
	}
	return e.primary()
}

func (e *evaluator) primary() (decimal.Decimal, error) {
	t := e.next()
	switch t.kind {
	case tokNumber:
		return e.withUnit(t.num), nil
	case tokIdent:
		return e.variable(t.text)
	case tokLParen:
		d, err := e.expr()
		if err != nil {
			return d, err
		}
		if e.next().kind != tokRParen {
			return d, fmt.Errorf("%w: missing )", errSyntax)
		}
		return e.withUnit(d), nil
	}
	return decimal.Zero, fmt.Errorf("%w: unexpected %q", errSyntax, t.text)
}

// withUnit consumes an optional unit suffix and converts d accordingly.
func (e *evaluator) withUnit(d decimal.Decimal) decimal.Decimal {
	t := e.peek()
	if t.kind != tokIdent {
		return d
	}
	if _, ok := unitScale[t.text]; !ok {
		return d
	}
	e.next()
	return e.p.convert(d, t.text)
}

func (e *evaluator) variable(name string) (decimal.Decimal, error) {
	raw, ok := e.p.vars[name]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: unknown variable %q", errNotNumeric, name)
	}
	if e.depth+1 > maxDepth {
		return decimal.Zero, fmt.Errorf("variable nesting deeper than %d", maxDepth)
	}
	switch v := raw.(type) {
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		return e.p.eval(v, e.depth+1)
	}
	return decimal.Zero, fmt.Errorf("%w: variable %q holds %T", errNotNumeric, name, raw)
}
