package adgraph

import (
	"math"

	"github.com/pkg/errors"
)

// ============================================================
// Taylor coefficients / n-th derivatives
// ============================================================

// zeroTol is the absolute tolerance under which a power base counts as zero
// in the coefficient recursion.
const zeroTol = 1e-8

// DN returns the n-th derivative of a univariate expression at the point at.
func (e Expr) DN(n int, at float64) (float64, error) {
	e.mustValid()
	if _, err := e.univariate(n); err != nil {
		return 0, err
	}
	ev := newEvaluator(e.g, nil)
	ev.point = at
	c, err := ev.coef(e.id, n)
	if err != nil {
		return 0, err
	}
	return c * factorial(n), nil
}

// Taylor returns the Taylor coefficients c[0..n] of a univariate expression
// around at, so that f(at+h) ≈ Σ c[k]·h^k.
func (e Expr) Taylor(n int, at float64) ([]float64, error) {
	e.mustValid()
	if _, err := e.univariate(n); err != nil {
		return nil, err
	}
	ev := newEvaluator(e.g, nil)
	ev.point = at
	out := make([]float64, n+1)
	for k := range out {
		c, err := ev.coef(e.id, k)
		if err != nil {
			return nil, err
		}
		out[k] = c
	}
	return out, nil
}

func factorial(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}

// coef returns the k-th Taylor coefficient (k-th derivative / k!) of a node.
func (ev *evaluator) coef(id NodeID, k int) (float64, error) {
	key := taylorKey{id: id, order: k}
	if c, ok := ev.coefs[key]; ok {
		return c, nil
	}
	n := &ev.nodes[id]
	var (
		c   float64
		err error
	)
	switch n.kind {
	case KindVariable:
		switch k {
		case 0:
			c = ev.point
		case 1:
			c = 1
		}
	case KindConstant:
		if k == 0 {
			c = n.val
		}
	case KindNeg:
		c, err = ev.coef(n.left, k)
		c = -c
	case KindAdd, KindSub:
		var l, r float64
		if l, err = ev.coef(n.left, k); err != nil {
			return 0, err
		}
		if r, err = ev.coef(n.right, k); err != nil {
			return 0, err
		}
		if n.kind == KindAdd {
			c = l + r
		} else {
			c = l - r
		}
	case KindMul:
		c, err = ev.cauchy(n.left, n.right, k)
	case KindDiv:
		c, err = ev.quotientCoef(id, n, k)
	case KindPow:
		c, err = ev.powerCoef(id, n, k)
	default:
		panic(unknownKind(n.kind))
	}
	if err != nil {
		return 0, err
	}
	ev.coefs[key] = c
	return c, nil
}

// cauchy returns Σ_{i=0..k} f[i]·g[k-i].
func (ev *evaluator) cauchy(f, g NodeID, k int) (float64, error) {
	var sum float64
	for i := 0; i <= k; i++ {
		a, err := ev.coef(f, i)
		if err != nil {
			return 0, err
		}
		b, err := ev.coef(g, k-i)
		if err != nil {
			return 0, err
		}
		sum += a * b
	}
	return sum, nil
}

// quotientCoef solves f = q·g for q[k].
func (ev *evaluator) quotientCoef(id NodeID, n *node, k int) (float64, error) {
	g0, err := ev.coef(n.right, 0)
	if err != nil {
		return 0, err
	}
	if g0 == 0 {
		return 0, errors.Wrap(ErrSingularity, "division by zero in Taylor recursion")
	}
	c, err := ev.coef(n.left, k)
	if err != nil {
		return 0, err
	}
	for i := 0; i < k; i++ {
		q, err := ev.coef(id, i)
		if err != nil {
			return 0, err
		}
		g, err := ev.coef(n.right, k-i)
		if err != nil {
			return 0, err
		}
		c -= q * g
	}
	return c / g0, nil
}

// powerCoef handles y = f^a for a constant a, using f·y' = a·f'·y.
func (ev *evaluator) powerCoef(id NodeID, n *node, k int) (float64, error) {
	if len(ev.nodes[n.right].deps) > 0 {
		if len(ev.nodes[n.left].deps) > 0 {
			return 0, errors.Wrap(ErrUnsupported, "Do not support f(x) ** g(x)")
		}
		return 0, errors.Wrap(ErrUnsupported, "n-th derivative only implemented for x^[constant]")
	}
	a, err := ev.value(n.right)
	if err != nil {
		return 0, err
	}
	f0, err := ev.coef(n.left, 0)
	if err != nil {
		return 0, err
	}
	if math.Abs(f0) < zeroTol {
		if a < 0 {
			return 0, errors.Wrap(ErrSingularity, "exponent should be greater than 0 when base is 0")
		}
		switch {
		case k == 0:
			return math.Pow(f0, a), nil
		case a > float64(k):
			return 0, nil
		case a == math.Trunc(a):
			return ev.seriesPower(n.left, int(a), k)
		default:
			return 0, errors.Wrapf(ErrSingularity,
				"exponent should be greater than the order when base is 0 (exponent %g, order %d)", a, k)
		}
	}
	if k == 0 {
		return math.Pow(f0, a), nil
	}
	var sum float64
	for i := 1; i <= k; i++ {
		fi, err := ev.coef(n.left, i)
		if err != nil {
			return 0, err
		}
		if fi == 0 {
			continue
		}
		y, err := ev.coef(id, k-i)
		if err != nil {
			return 0, err
		}
		sum += ((a+1)*float64(i)/float64(k) - 1) * fi * y
	}
	return sum / f0, nil
}

// seriesPower returns the k-th coefficient of f^p by repeated truncated
// Cauchy products; p <= k here.
func (ev *evaluator) seriesPower(f NodeID, p, k int) (float64, error) {
	fs := make([]float64, k+1)
	for i := range fs {
		c, err := ev.coef(f, i)
		if err != nil {
			return 0, err
		}
		fs[i] = c
	}
	acc := make([]float64, k+1)
	acc[0] = 1
	for ; p > 0; p-- {
		next := make([]float64, k+1)
		for i, a := range acc {
			if a == 0 {
				continue
			}
			for j := 0; i+j <= k; j++ {
				next[i+j] += a * fs[j]
			}
		}
		acc = next
	}
	return acc[k], nil
}
