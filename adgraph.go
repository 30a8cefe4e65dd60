// Package adgraph provides a scalar computational-graph automatic
// differentiation engine for Go.
//
// Design goals:
//   - Closed set of node kinds stored in an arena and addressed by integer id
//   - Shared sub-expressions are computed once per call (id-keyed caches)
//   - Values, gradients, Hessians, symbolic derivatives and n-th derivatives
//   - Embeddable in Go services, CLI tools, and agent backends
//
// A Graph owns every node. Expressions are built from variables and
// constants with the operator methods on Expr:
//
//	g := adgraph.New()
//	x := g.Var("x")
//	y := x.Pow(adgraph.Num(2)).Add(x)
//	v, _ := y.Eval(adgraph.Bindings{x: 3}) // 12
//	d, _ := y.D(adgraph.Bindings{x: 3})    // 7
package adgraph

import (
	"fmt"
	"sort"
	"sync"
)

// ============================================================
// Node kinds
// ============================================================

// NodeID is the index of a node inside its Graph.
type NodeID int

const noChild NodeID = -1

// Kind is the closed set of node kinds.
type Kind uint8

const (
	KindVariable Kind = iota
	KindConstant
	KindNeg
	KindAdd
	KindSub
	KindMul
	KindDiv
	KindPow
)

var kindNames = [...]string{
	KindVariable: "variable",
	KindConstant: "constant",
	KindNeg:      "neg",
	KindAdd:      "add",
	KindSub:      "sub",
	KindMul:      "mul",
	KindDiv:      "div",
	KindPow:      "pow",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// IsBinary reports whether nodes of this kind have two operands.
func (k Kind) IsBinary() bool { return k >= KindAdd && k <= KindPow }

// node is immutable once appended to the arena.
type node struct {
	kind        Kind
	name        string
	val         float64
	left, right NodeID
	grad        bool
	// deps holds the ids of every variable reachable from the node, sorted.
	deps []NodeID
}

func (n *node) dependsOn(v NodeID) bool {
	i := sort.Search(len(n.deps), func(i int) bool { return n.deps[i] >= v })
	return i < len(n.deps) && n.deps[i] == v
}

func unionDeps(a, b []NodeID) []NodeID {
	if len(b) == 0 {
		return a
	}
	if len(a) == 0 {
		return b
	}
	out := make([]NodeID, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

// ============================================================
// Graph — node arena
// ============================================================

// Graph is an append-only arena of expression nodes. It is safe for
// concurrent use: construction takes the write lock, evaluation works on a
// read-locked snapshot of the (never mutated) nodes.
type Graph struct {
	mu    sync.RWMutex
	nodes []node
	names map[string]NodeID
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{names: map[string]NodeID{}}
}

// NodeOption configures a leaf node at construction time.
type NodeOption func(*node)

// WithGrad sets whether differentiation is enabled for the node. Leaves are
// differentiable by default.
func WithGrad(on bool) NodeOption {
	return func(n *node) { n.grad = on }
}

// WithoutGrad is shorthand for WithGrad(false).
func WithoutGrad() NodeOption { return WithGrad(false) }

// Var creates a new variable. Two calls with the same name create two
// distinct variables; bindings by Name match either of them.
func (g *Graph) Var(name string, opts ...NodeOption) Expr {
	n := node{kind: KindVariable, name: name, left: noChild, right: noChild, grad: true}
	for _, opt := range opts {
		opt(&n)
	}
	return g.push(n)
}

// NewVar creates an unnamed variable. It can only be bound by node.
func (g *Graph) NewVar(opts ...NodeOption) Expr { return g.Var("", opts...) }

// Const creates a constant node.
func (g *Graph) Const(v float64, opts ...NodeOption) Expr {
	n := node{kind: KindConstant, val: v, left: noChild, right: noChild, grad: true}
	for _, opt := range opts {
		opt(&n)
	}
	return g.push(n)
}

// Lookup returns the first variable created under name.
func (g *Graph) Lookup(name string) (Expr, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := g.names[name]
	if !ok {
		return Expr{}, false
	}
	return Expr{g: g, id: id}, true
}

// Len returns the number of nodes in the arena.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

func (g *Graph) push(n node) Expr {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := NodeID(len(g.nodes))
	if n.kind == KindVariable {
		n.deps = []NodeID{id}
		if n.name != "" {
			if _, ok := g.names[n.name]; !ok {
				g.names[n.name] = id
			}
		}
	}
	g.nodes = append(g.nodes, n)
	return Expr{g: g, id: id}
}

// compose appends an operator node. right is noChild for unary kinds.
func (g *Graph) compose(kind Kind, left, right NodeID) Expr {
	g.mu.Lock()
	defer g.mu.Unlock()
	l := &g.nodes[left]
	n := node{kind: kind, left: left, right: right, grad: l.grad, deps: l.deps}
	if right != noChild {
		r := &g.nodes[right]
		// grad is the AND of both operands.
		n.grad = r.grad && l.grad
		n.deps = unionDeps(l.deps, r.deps)
	}
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, n)
	return Expr{g: g, id: id}
}

func (g *Graph) node(id NodeID) node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes[id]
}

// snapshot returns the current nodes. Appends never touch indexes below the
// returned length, so the slice stays valid without holding the lock.
func (g *Graph) snapshot() []node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes
}

// ============================================================
// Expr — handle to a node
// ============================================================

// Expr is a handle to one node of a Graph. It is comparable and can be used
// as a map key; two handles are equal iff they name the same node.
type Expr struct {
	g  *Graph
	id NodeID
}

// Graph returns the arena owning the node.
func (e Expr) Graph() *Graph { return e.g }

// ID returns the node index.
func (e Expr) ID() NodeID { return e.id }

// Valid reports whether e refers to a node.
func (e Expr) Valid() bool { return e.g != nil }

func (e Expr) mustValid() {
	if e.g == nil {
		panic("adgraph: use of zero Expr")
	}
}

func (e Expr) n() node {
	e.mustValid()
	return e.g.node(e.id)
}

func (e Expr) Kind() Kind { return e.n().kind }

// Name returns the variable name, or "" for other kinds.
func (e Expr) Name() string { return e.n().name }

// Label returns the variable name, or v<id> for unnamed variables.
func (e Expr) Label() string {
	if name := e.Name(); name != "" {
		return name
	}
	return fmt.Sprintf("v%d", e.id)
}

// Value returns the value of a constant node.
func (e Expr) Value() (float64, bool) {
	n := e.n()
	return n.val, n.kind == KindConstant
}

// Grad reports whether differentiation is enabled for the expression.
func (e Expr) Grad() bool { return e.n().grad }

// Children returns the operands in order.
func (e Expr) Children() []Expr {
	n := e.n()
	var out []Expr
	for _, c := range [2]NodeID{n.left, n.right} {
		if c != noChild {
			out = append(out, Expr{g: e.g, id: c})
		}
	}
	return out
}

// DepVars returns the free variables of the expression in creation order.
func (e Expr) DepVars() []Expr {
	return e.g.exprs(e.n().deps)
}

func (g *Graph) exprs(ids []NodeID) []Expr {
	out := make([]Expr, len(ids))
	for i, id := range ids {
		out[i] = Expr{g: g, id: id}
	}
	return out
}

func (e Expr) String() string {
	if e.g == nil {
		return "<nil>"
	}
	return String(e)
}
