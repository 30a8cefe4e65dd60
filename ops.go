package adgraph

// ============================================================
// Operands — Expr or numeric literal
// ============================================================

// Operand is the right-hand side of an operator: either an Expr or a Num.
type Operand interface {
	operand()
}

// Num is a numeric literal operand. It is boxed into a Constant node of the
// receiver's graph when used.
type Num float64

func (Num) operand()  {}
func (Expr) operand() {}

// box returns the node id of o inside g, creating a constant for literals.
func (g *Graph) box(o Operand) NodeID {
	switch v := o.(type) {
	case Expr:
		v.mustValid()
		if v.g != g {
			panic("adgraph: operands belong to different graphs")
		}
		return v.id
	case Num:
		return g.Const(float64(v)).id
	case nil:
		panic("adgraph: nil operand")
	default:
		panic("adgraph: unknown operand type")
	}
}

func (e Expr) binary(kind Kind, o Operand) Expr {
	e.mustValid()
	return e.g.compose(kind, e.id, e.g.box(o))
}

func (e Expr) reflected(kind Kind, o Operand) Expr {
	e.mustValid()
	return e.g.compose(kind, e.g.box(o), e.id)
}

// ============================================================
// Operators
// ============================================================

func (e Expr) Add(o Operand) Expr { return e.binary(KindAdd, o) }
func (e Expr) Sub(o Operand) Expr { return e.binary(KindSub, o) }
func (e Expr) Mul(o Operand) Expr { return e.binary(KindMul, o) }
func (e Expr) Div(o Operand) Expr { return e.binary(KindDiv, o) }
func (e Expr) Pow(o Operand) Expr { return e.binary(KindPow, o) }

// RAdd returns o + e.
func (e Expr) RAdd(o Operand) Expr { return e.reflected(KindAdd, o) }

// RSub returns o - e.
func (e Expr) RSub(o Operand) Expr { return e.reflected(KindSub, o) }

// RMul returns o * e.
func (e Expr) RMul(o Operand) Expr { return e.reflected(KindMul, o) }

// RDiv returns o / e.
func (e Expr) RDiv(o Operand) Expr { return e.reflected(KindDiv, o) }

// RPow returns o ** e.
func (e Expr) RPow(o Operand) Expr { return e.reflected(KindPow, o) }

// Neg returns -e.
func (e Expr) Neg() Expr {
	e.mustValid()
	return e.g.compose(KindNeg, e.id, noChild)
}

// ============================================================
// Top-level convenience functions
// ============================================================

func Add(a, b Operand) Expr { return apply(KindAdd, a, b) }
func Sub(a, b Operand) Expr { return apply(KindSub, a, b) }
func Mul(a, b Operand) Expr { return apply(KindMul, a, b) }
func Div(a, b Operand) Expr { return apply(KindDiv, a, b) }
func Pow(a, b Operand) Expr { return apply(KindPow, a, b) }

// apply needs at least one Expr operand to know which graph to build in.
func apply(kind Kind, a, b Operand) Expr {
	if e, ok := a.(Expr); ok {
		return e.binary(kind, b)
	}
	if e, ok := b.(Expr); ok {
		return e.reflected(kind, a)
	}
	panic("adgraph: " + kind.String() + " needs at least one Expr operand")
}
