package adgraph

import (
	"math"

	"github.com/pkg/errors"
)

// ============================================================
// Symbolic differentiation
// ============================================================

// DExpr returns a new expression for the n-th derivative of a univariate
// expression. The new nodes are appended to the receiver's graph and share
// every sub-expression they can with it. n == 0 returns e itself.
func (e Expr) DExpr(n int) (Expr, error) {
	e.mustValid()
	nd, err := e.univariate(n)
	if err != nil {
		return Expr{}, err
	}
	if n == 0 {
		return e, nil
	}
	if len(nd.deps) == 0 {
		return e.g.Const(0), nil
	}
	wrt := nd.deps[0]
	out := e
	for i := 0; i < n; i++ {
		s := &symbolic{g: e.g, nodes: e.g.snapshot(), wrt: wrt, memo: map[NodeID]Expr{}}
		if out, err = s.diff(out.id); err != nil {
			return Expr{}, err
		}
	}
	return out, nil
}

// univariate validates the receiver for the scalar-input operations.
func (e Expr) univariate(order int) (node, error) {
	if order < 0 {
		return node{}, errors.Wrapf(ErrInvalidOrder, "got %d", order)
	}
	n, err := e.differentiable()
	if err != nil {
		return n, err
	}
	if len(n.deps) > 1 {
		return n, errors.Wrapf(ErrNotUnivariate, "found %d free variables", len(n.deps))
	}
	return n, nil
}

type symbolic struct {
	g     *Graph
	nodes []node
	wrt   NodeID
	memo  map[NodeID]Expr
}

func (s *symbolic) expr(id NodeID) Expr { return Expr{g: s.g, id: id} }

func (s *symbolic) dep(id NodeID) bool { return s.nodes[id].dependsOn(s.wrt) }

func (s *symbolic) diff(id NodeID) (Expr, error) {
	if d, ok := s.memo[id]; ok {
		return d, nil
	}
	d, err := s.build(id)
	if err != nil {
		return Expr{}, err
	}
	s.memo[id] = d
	return d, nil
}

func (s *symbolic) build(id NodeID) (Expr, error) {
	n := &s.nodes[id]
	if !n.dependsOn(s.wrt) {
		return s.g.Const(0), nil
	}
	switch n.kind {
	case KindVariable:
		return s.g.Const(1), nil
	case KindConstant:
		return s.g.Const(0), nil
	case KindNeg:
		d, err := s.diff(n.left)
		if err != nil {
			return Expr{}, err
		}
		return d.Neg(), nil
	case KindAdd, KindSub:
		return s.sum(n)
	case KindMul:
		return s.product(n)
	case KindDiv:
		return s.quotient(n)
	case KindPow:
		return s.power(id, n)
	default:
		panic(unknownKind(n.kind))
	}
}

func (s *symbolic) sum(n *node) (Expr, error) {
	if !s.dep(n.left) {
		d, err := s.diff(n.right)
		if err != nil || n.kind == KindAdd {
			return d, err
		}
		return d.Neg(), nil
	}
	dl, err := s.diff(n.left)
	if err != nil {
		return Expr{}, err
	}
	if !s.dep(n.right) {
		return dl, nil
	}
	dr, err := s.diff(n.right)
	if err != nil {
		return Expr{}, err
	}
	if n.kind == KindAdd {
		return dl.Add(dr), nil
	}
	return dl.Sub(dr), nil
}

func (s *symbolic) product(n *node) (Expr, error) {
	l, r := s.expr(n.left), s.expr(n.right)
	if !s.dep(n.left) {
		dr, err := s.diff(n.right)
		if err != nil {
			return Expr{}, err
		}
		return l.Mul(dr), nil
	}
	dl, err := s.diff(n.left)
	if err != nil {
		return Expr{}, err
	}
	if !s.dep(n.right) {
		return dl.Mul(r), nil
	}
	dr, err := s.diff(n.right)
	if err != nil {
		return Expr{}, err
	}
	return dl.Mul(r).Add(l.Mul(dr)), nil
}

func (s *symbolic) quotient(n *node) (Expr, error) {
	l, r := s.expr(n.left), s.expr(n.right)
	if !s.dep(n.right) {
		dl, err := s.diff(n.left)
		if err != nil {
			return Expr{}, err
		}
		return dl.Div(r), nil
	}
	dr, err := s.diff(n.right)
	if err != nil {
		return Expr{}, err
	}
	// l·dr / r²
	tail := l.Mul(dr).Div(r.Mul(r))
	if !s.dep(n.left) {
		return tail.Neg(), nil
	}
	dl, err := s.diff(n.left)
	if err != nil {
		return Expr{}, err
	}
	return dl.Div(r).Sub(tail), nil
}

func (s *symbolic) power(id NodeID, n *node) (Expr, error) {
	l, r := s.expr(n.left), s.expr(n.right)
	switch {
	case !s.dep(n.right):
		// f^c → c·f^(c-1)·f'
		dl, err := s.diff(n.left)
		if err != nil {
			return Expr{}, err
		}
		var lowered Expr
		if rn := &s.nodes[n.right]; rn.kind == KindConstant {
			lowered = s.g.Const(rn.val - 1)
		} else {
			lowered = r.Sub(Num(1))
		}
		return r.Mul(l.Pow(lowered)).Mul(dl), nil
	case !s.dep(n.left):
		// c^g → c^g·ln(c)·g'
		dr, err := s.diff(n.right)
		if err != nil {
			return Expr{}, err
		}
		c, err := newEvaluator(s.g, nil).value(n.left)
		if err != nil {
			return Expr{}, err
		}
		return s.expr(id).Mul(Num(math.Log(c))).Mul(dr), nil
	default:
		return Expr{}, errors.Wrap(ErrUnsupported, "Do not support f(x) ** g(x)")
	}
}
