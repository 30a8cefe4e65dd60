package adgraph

import (
	"strconv"
	"strings"
)

// ============================================================
// Pretty-printing
// ============================================================

type precedence int

const (
	precSum precedence = iota
	precProduct
	precUnary
	precPower
	precAtom
)

func nodePrec(n *node) precedence {
	switch n.kind {
	case KindAdd, KindSub:
		return precSum
	case KindMul, KindDiv:
		return precProduct
	case KindNeg:
		return precUnary
	case KindPow:
		return precPower
	case KindConstant:
		if n.val < 0 {
			return precUnary
		}
	}
	return precAtom
}

var infixOps = map[Kind]string{
	KindAdd: " + ",
	KindSub: " - ",
	KindMul: "*",
	KindDiv: "/",
	KindPow: "^",
}

func formatNum(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// String renders e in infix notation that Parse accepts.
func String(e Expr) string {
	e.mustValid()
	var sb strings.Builder
	p := printer{g: e.g, nodes: e.g.snapshot(), sb: &sb}
	p.text(e.id)
	return sb.String()
}

// LaTeX renders e as a LaTeX math expression.
func LaTeX(e Expr) string {
	e.mustValid()
	var sb strings.Builder
	p := printer{g: e.g, nodes: e.g.snapshot(), sb: &sb}
	p.latex(e.id)
	return sb.String()
}

type printer struct {
	g     *Graph
	nodes []node
	sb    *strings.Builder
}

func (p *printer) label(id NodeID) string { return Expr{g: p.g, id: id}.Label() }

// wrap reports whether child needs parentheses under parent. Right operands
// of non-associative operators and left operands of ^ bind tighter.
func (p *printer) wrap(parent *node, child NodeID, right bool) bool {
	pp, cp := nodePrec(parent), nodePrec(&p.nodes[child])
	switch {
	case cp < pp:
		return true
	case cp > pp:
		return false
	}
	switch parent.kind {
	case KindPow:
		return !right
	case KindSub, KindDiv:
		return right
	}
	return false
}

func (p *printer) text(id NodeID) {
	n := &p.nodes[id]
	switch n.kind {
	case KindVariable:
		p.sb.WriteString(p.label(id))
	case KindConstant:
		p.sb.WriteString(formatNum(n.val))
	case KindNeg:
		p.sb.WriteByte('-')
		p.textOperand(n, n.left, true)
	default:
		p.textOperand(n, n.left, false)
		p.sb.WriteString(infixOps[n.kind])
		p.textOperand(n, n.right, true)
	}
}

func (p *printer) textOperand(parent *node, child NodeID, right bool) {
	if p.wrap(parent, child, right) {
		p.sb.WriteByte('(')
		p.text(child)
		p.sb.WriteByte(')')
		return
	}
	p.text(child)
}

func (p *printer) latex(id NodeID) {
	n := &p.nodes[id]
	switch n.kind {
	case KindVariable:
		p.sb.WriteString(p.label(id))
	case KindConstant:
		p.sb.WriteString(formatNum(n.val))
	case KindNeg:
		p.sb.WriteByte('-')
		p.latexOperand(n, n.left, true)
	case KindDiv:
		p.sb.WriteString(`\frac{`)
		p.latex(n.left)
		p.sb.WriteString("}{")
		p.latex(n.right)
		p.sb.WriteByte('}')
	case KindPow:
		p.latexOperand(n, n.left, false)
		p.sb.WriteString("^{")
		p.latex(n.right)
		p.sb.WriteByte('}')
	case KindMul:
		p.latexOperand(n, n.left, false)
		p.sb.WriteString(` \cdot `)
		p.latexOperand(n, n.right, true)
	default:
		p.latexOperand(n, n.left, false)
		p.sb.WriteString(infixOps[n.kind])
		p.latexOperand(n, n.right, true)
	}
}

func (p *printer) latexOperand(parent *node, child NodeID, right bool) {
	if p.wrap(parent, child, right) {
		p.sb.WriteString(`\left(`)
		p.latex(child)
		p.sb.WriteString(`\right)`)
		return
	}
	p.latex(child)
}
