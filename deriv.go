package adgraph

import "math"

// ============================================================
// Gradient — first derivatives
// ============================================================

// Gradient holds the partial derivatives of an expression at a point. When
// the expression has at most one free variable it is a bare scalar.
type Gradient struct {
	vars     []Expr
	partials map[Expr]float64
}

// IsScalar reports whether the expression had zero or one free variable.
func (d Gradient) IsScalar() bool { return len(d.vars) <= 1 }

// Scalar returns the derivative of a univariate expression, or 0 for a
// constant one. It returns 0 when IsScalar is false.
func (d Gradient) Scalar() float64 {
	if len(d.vars) != 1 {
		return 0
	}
	return d.partials[d.vars[0]]
}

// At returns the partial derivative with respect to v (0 if v is not free).
func (d Gradient) At(v Expr) float64 { return d.partials[v] }

// Vars returns the free variables in creation order.
func (d Gradient) Vars() []Expr { return append([]Expr(nil), d.vars...) }

// Partials returns a copy of the variable → partial mapping.
func (d Gradient) Partials() map[Expr]float64 {
	out := make(map[Expr]float64, len(d.partials))
	for k, v := range d.partials {
		out[k] = v
	}
	return out
}

// D returns the gradient of the expression at the point given by b.
func (e Expr) D(b Bindings) (Gradient, error) {
	e.mustValid()
	n, err := e.differentiable()
	if err != nil {
		return Gradient{}, err
	}
	ev := newEvaluator(e.g, b)
	p, err := ev.deriv(e.id)
	if err != nil {
		return Gradient{}, err
	}
	d := Gradient{vars: e.g.exprs(n.deps), partials: make(map[Expr]float64, len(n.deps))}
	for _, v := range n.deps {
		d.partials[Expr{g: e.g, id: v}] = p[v]
	}
	return d, nil
}

func (ev *evaluator) deriv(id NodeID) (partials, error) {
	if p, ok := ev.partials[id]; ok {
		return p, nil
	}
	n := &ev.nodes[id]
	out := make(partials, len(n.deps))
	switch n.kind {
	case KindVariable:
		out[id] = 1
	case KindConstant:
	case KindNeg:
		d, err := ev.deriv(n.left)
		if err != nil {
			return nil, err
		}
		for v, p := range d {
			out[v] = -p
		}
	case KindAdd, KindSub, KindMul, KindDiv, KindPow:
		dl, err := ev.deriv(n.left)
		if err != nil {
			return nil, err
		}
		dr, err := ev.deriv(n.right)
		if err != nil {
			return nil, err
		}
		if err := ev.binaryDeriv(n, dl, dr, out); err != nil {
			return nil, err
		}
	default:
		panic(unknownKind(n.kind))
	}
	ev.partials[id] = out
	return out, nil
}

func (ev *evaluator) binaryDeriv(n *node, dl, dr, out partials) error {
	switch n.kind {
	case KindAdd:
		for _, v := range n.deps {
			out[v] = dl[v] + dr[v]
		}
		return nil
	case KindSub:
		for _, v := range n.deps {
			out[v] = dl[v] - dr[v]
		}
		return nil
	}
	l, r, err := ev.operands(n)
	if err != nil {
		return err
	}
	switch n.kind {
	case KindMul:
		for _, v := range n.deps {
			out[v] = l*dr[v] + r*dl[v]
		}
	case KindDiv:
		for _, v := range n.deps {
			out[v] = dl[v]/r - dr[v]*l/(r*r)
		}
	case KindPow:
		for _, v := range n.deps {
			df, dg := dl[v], dr[v]
			var p float64
			if df != 0 {
				p = r * math.Pow(l, r-1) * df
			}
			// ln(f) is only taken when the exponent actually moves, so a
			// constant exponent never evaluates log of a non-positive base.
			if dg != 0 {
				p += math.Pow(l, r) * math.Log(l) * dg
			}
			out[v] = p
		}
	}
	return nil
}
