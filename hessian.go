package adgraph

import (
	"math"

	"github.com/pkg/errors"
)

// ============================================================
// Hessian — second derivatives
// ============================================================

// Hessian holds the second partial derivatives of an expression at a point.
// When the expression has at most one free variable it is a bare scalar.
type Hessian struct {
	vars []Expr
	rows map[Expr]map[Expr]float64
}

func (h Hessian) IsScalar() bool { return len(h.vars) <= 1 }

// Scalar returns the second derivative of a univariate expression, or 0 for a
// constant one. It returns 0 when IsScalar is false.
func (h Hessian) Scalar() float64 {
	if len(h.vars) != 1 {
		return 0
	}
	v := h.vars[0]
	return h.rows[v][v]
}

// At returns ∂²f/∂v1∂v2.
func (h Hessian) At(v1, v2 Expr) float64 { return h.rows[v1][v2] }

func (h Hessian) Vars() []Expr { return append([]Expr(nil), h.vars...) }

// Matrix returns a copy of the nested mapping keyed [v1][v2].
func (h Hessian) Matrix() map[Expr]map[Expr]float64 {
	out := make(map[Expr]map[Expr]float64, len(h.rows))
	for k, row := range h.rows {
		cp := make(map[Expr]float64, len(row))
		for k2, v := range row {
			cp[k2] = v
		}
		out[k] = cp
	}
	return out
}

// Hessian returns the matrix of second partial derivatives at the point given
// by b. A power whose exponent depends on a variable is not supported.
func (e Expr) Hessian(b Bindings) (Hessian, error) {
	e.mustValid()
	n, err := e.differentiable()
	if err != nil {
		return Hessian{}, err
	}
	ev := newEvaluator(e.g, b)
	rows, err := ev.hess(e.id)
	if err != nil {
		return Hessian{}, err
	}
	h := Hessian{vars: e.g.exprs(n.deps), rows: make(map[Expr]map[Expr]float64, len(n.deps))}
	for _, v1 := range n.deps {
		row := make(map[Expr]float64, len(n.deps))
		for _, v2 := range n.deps {
			row[Expr{g: e.g, id: v2}] = rows[v1][v2]
		}
		h.rows[Expr{g: e.g, id: v1}] = row
	}
	return h, nil
}

// fill sets out[x][y] = f(x, y) for every pair of deps.
func fill(deps []NodeID, out hessianRows, f func(x, y NodeID) float64) {
	for _, x := range deps {
		row := make(map[NodeID]float64, len(deps))
		for _, y := range deps {
			row[y] = f(x, y)
		}
		out[x] = row
	}
}

func (ev *evaluator) hess(id NodeID) (hessianRows, error) {
	if h, ok := ev.hessian[id]; ok {
		return h, nil
	}
	n := &ev.nodes[id]
	out := make(hessianRows, len(n.deps))
	switch n.kind {
	case KindVariable:
		out[id] = map[NodeID]float64{id: 0}
	case KindConstant:
	case KindNeg:
		h, err := ev.hess(n.left)
		if err != nil {
			return nil, err
		}
		fill(n.deps, out, func(x, y NodeID) float64 { return -h[x][y] })
	case KindAdd, KindSub, KindMul, KindDiv, KindPow:
		if err := ev.binaryHess(n, out); err != nil {
			return nil, err
		}
	default:
		panic(unknownKind(n.kind))
	}
	ev.hessian[id] = out
	return out, nil
}

func (ev *evaluator) binaryHess(n *node, out hessianRows) error {
	if n.kind == KindPow && len(ev.nodes[n.right].deps) > 0 {
		return errors.Wrap(ErrUnsupported, "Hessian only implemented for x^[constant]")
	}
	hl, err := ev.hess(n.left)
	if err != nil {
		return err
	}
	hr, err := ev.hess(n.right)
	if err != nil {
		return err
	}
	switch n.kind {
	case KindAdd:
		fill(n.deps, out, func(x, y NodeID) float64 { return hl[x][y] + hr[x][y] })
		return nil
	case KindSub:
		fill(n.deps, out, func(x, y NodeID) float64 { return hl[x][y] - hr[x][y] })
		return nil
	}

	dl, err := ev.deriv(n.left)
	if err != nil {
		return err
	}
	dr, err := ev.deriv(n.right)
	if err != nil {
		return err
	}
	f, g, err := ev.operands(n)
	if err != nil {
		return err
	}
	switch n.kind {
	case KindMul:
		fill(n.deps, out, func(x, y NodeID) float64 {
			return dl[x]*dr[y] + dl[y]*dr[x] + f*hr[x][y] + g*hl[x][y]
		})
	case KindDiv:
		g2 := g * g
		fill(n.deps, out, func(x, y NodeID) float64 {
			return hl[x][y]/g -
				(dl[x]*dr[y]+dl[y]*dr[x])/g2 -
				f*hr[x][y]/g2 +
				2*f*dr[x]*dr[y]/(g2*g)
		})
	case KindPow:
		a := g
		fill(n.deps, out, func(x, y NodeID) float64 {
			var v float64
			if c := a * (a - 1); c != 0 {
				v = c * math.Pow(f, a-2) * dl[x] * dl[y]
			}
			if a != 0 {
				v += a * math.Pow(f, a-1) * hl[x][y]
			}
			return v
		})
	}
	return nil
}
