package adgraph

import (
	"math"

	"github.com/pkg/errors"
)

// ============================================================
// Evaluator — per-call caches
// ============================================================

type partials map[NodeID]float64

type hessianRows map[NodeID]map[NodeID]float64

type taylorKey struct {
	id    NodeID
	order int
}

// evaluator carries the caches of one public call. It is never shared
// between calls.
type evaluator struct {
	g        *Graph
	nodes    []node
	bindings Bindings

	values   map[NodeID]float64
	partials map[NodeID]partials
	hessian  map[NodeID]hessianRows
	coefs    map[taylorKey]float64

	// point is the value of the single variable during the Taylor recursion.
	point float64
}

func newEvaluator(g *Graph, b Bindings) *evaluator {
	return &evaluator{
		g:        g,
		nodes:    g.snapshot(),
		bindings: b,
		values:   map[NodeID]float64{},
		partials: map[NodeID]partials{},
		hessian:  map[NodeID]hessianRows{},
		coefs:    map[taylorKey]float64{},
	}
}

func unknownKind(k Kind) string { return "adgraph: unknown node kind " + k.String() }

// ============================================================
// Value
// ============================================================

// Eval returns the value of the expression under b.
func (e Expr) Eval(b Bindings) (float64, error) {
	e.mustValid()
	return newEvaluator(e.g, b).value(e.id)
}

func (ev *evaluator) value(id NodeID) (float64, error) {
	if v, ok := ev.values[id]; ok {
		return v, nil
	}
	n := &ev.nodes[id]
	var v float64
	switch n.kind {
	case KindVariable:
		x, ok := ev.bindings.lookup(Expr{g: ev.g, id: id}, n.name)
		if !ok {
			return 0, &UnboundVariableError{Name: Expr{g: ev.g, id: id}.Label()}
		}
		v = x
	case KindConstant:
		v = n.val
	case KindNeg:
		x, err := ev.value(n.left)
		if err != nil {
			return 0, err
		}
		v = -x
	case KindAdd, KindSub, KindMul, KindDiv, KindPow:
		l, r, err := ev.operands(n)
		if err != nil {
			return 0, err
		}
		switch n.kind {
		case KindAdd:
			v = l + r
		case KindSub:
			v = l - r
		case KindMul:
			v = l * r
		case KindDiv:
			v = l / r
		case KindPow:
			v = math.Pow(l, r)
		}
	default:
		panic(unknownKind(n.kind))
	}
	ev.values[id] = v
	return v, nil
}

func (ev *evaluator) operands(n *node) (float64, float64, error) {
	l, err := ev.value(n.left)
	if err != nil {
		return 0, 0, err
	}
	r, err := ev.value(n.right)
	if err != nil {
		return 0, 0, err
	}
	return l, r, nil
}

// differentiable returns the node behind e after checking its grad flag.
func (e Expr) differentiable() (node, error) {
	n := e.n()
	if !n.grad {
		return n, errors.Wrapf(ErrGradDisabled, "node %d", e.id)
	}
	return n, nil
}
