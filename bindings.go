package adgraph

// Key identifies a binding: an Expr (bind that variable node) or a Name
// (bind every variable with that name that has no node binding).
type Key interface {
	bindingKey()
}

// Name binds variables by name.
type Name string

func (Name) bindingKey() {}
func (Expr) bindingKey() {}

// Bindings maps variables to the values they take during evaluation.
type Bindings map[Key]float64

// BindNames builds Bindings from a name-keyed map.
func BindNames(values map[string]float64) Bindings {
	b := make(Bindings, len(values))
	for name, v := range values {
		b[Name(name)] = v
	}
	return b
}

func (b Bindings) lookup(e Expr, name string) (float64, bool) {
	if v, ok := b[e]; ok {
		return v, true
	}
	if name == "" {
		return 0, false
	}
	v, ok := b[Name(name)]
	return v, ok
}
