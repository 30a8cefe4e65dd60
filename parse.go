package adgraph

import (
	"strconv"
	"strings"
	"text/scanner"

	"github.com/pkg/errors"
)

// ============================================================
// Infix reader
// ============================================================

// Parse reads an infix expression into g. It accepts numbers, identifiers,
// + - * / ^ ** (right-associative power), unary minus and parentheses.
// Identifiers resolve to the graph's existing variable of that name, or to a
// new variable.
//
//	-x^2 parses as -(x^2); 2^-x as 2^(-x).
func Parse(g *Graph, src string) (Expr, error) {
	p := &parser{g: g}
	p.s.Init(strings.NewReader(src))
	p.s.Mode = scanner.ScanIdents | scanner.ScanFloats | scanner.ScanInts
	p.s.Error = func(s *scanner.Scanner, msg string) {
		if p.err == nil {
			p.err = errors.Wrapf(ErrSyntax, "offset %d: %s", s.Pos().Offset, msg)
		}
	}
	p.next()
	e := p.sum()
	if p.err == nil && p.tok != scanner.EOF {
		p.fail("unexpected %q", p.s.TokenText())
	}
	if p.err != nil {
		return Expr{}, p.err
	}
	return e, nil
}

type parser struct {
	g   *Graph
	s   scanner.Scanner
	tok rune
	off int
	err error
}

func (p *parser) next() {
	p.tok = p.s.Scan()
	p.off = p.s.Position.Offset
}

func (p *parser) fail(format string, args ...interface{}) {
	if p.err == nil {
		p.err = errors.Wrapf(ErrSyntax, "offset %d: "+format, append([]interface{}{p.off}, args...)...)
	}
	p.tok = scanner.EOF
}

// sum := product (('+' | '-') product)*
func (p *parser) sum() Expr {
	e := p.product()
	for p.err == nil && (p.tok == '+' || p.tok == '-') {
		op := p.tok
		p.next()
		r := p.product()
		if p.err != nil {
			break
		}
		if op == '+' {
			e = e.Add(r)
		} else {
			e = e.Sub(r)
		}
	}
	return e
}

// product := unary (('*' | '/') unary)*
func (p *parser) product() Expr {
	e := p.unary()
	for p.err == nil && (p.tok == '*' || p.tok == '/') {
		op := p.tok
		p.next()
		if op == '*' && p.tok == '*' {
			p.fail("unexpected '*'")
			break
		}
		r := p.unary()
		if p.err != nil {
			break
		}
		if op == '*' {
			e = e.Mul(r)
		} else {
			e = e.Div(r)
		}
	}
	return e
}

// unary := '-' unary | power
func (p *parser) unary() Expr {
	if p.tok == '-' {
		p.next()
		e := p.unary()
		if p.err != nil {
			return Expr{}
		}
		return e.Neg()
	}
	return p.power()
}

// power := atom (('^' | '**') unary)?
func (p *parser) power() Expr {
	base := p.atom()
	if p.err != nil {
		return Expr{}
	}
	switch {
	case p.tok == '^':
		p.next()
	case p.tok == '*' && p.s.Peek() == '*':
		p.next()
		p.next()
	default:
		return base
	}
	exp := p.unary()
	if p.err != nil {
		return Expr{}
	}
	return base.Pow(exp)
}

// atom := number | identifier | '(' sum ')'
func (p *parser) atom() Expr {
	switch p.tok {
	case scanner.Int, scanner.Float:
		v, err := strconv.ParseFloat(p.s.TokenText(), 64)
		if err != nil {
			p.fail("bad number %q", p.s.TokenText())
			return Expr{}
		}
		p.next()
		return p.g.Const(v)
	case scanner.Ident:
		name := p.s.TokenText()
		p.next()
		if v, ok := p.g.Lookup(name); ok {
			return v
		}
		return p.g.Var(name)
	case '(':
		p.next()
		e := p.sum()
		if p.err != nil {
			return Expr{}
		}
		if p.tok != ')' {
			p.fail("expected ')'")
			return Expr{}
		}
		p.next()
		return e
	case scanner.EOF:
		p.fail("unexpected end of input")
	default:
		p.fail("unexpected %q", p.s.TokenText())
	}
	return Expr{}
}
