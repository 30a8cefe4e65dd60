package adgraph

import (
	"fmt"

	"github.com/pkg/errors"
)

// ============================================================
// Errors
// ============================================================

var (
	// ErrUnsupported is returned for structural cases the engine cannot
	// differentiate, such as f(x) ** g(x) symbolically.
	ErrUnsupported = errors.New("unsupported differentiation")

	// ErrSingularity is returned by the n-th derivative recursion when a
	// divisor or a power base is zero at the evaluation point.
	ErrSingularity = errors.New("singularity")

	// ErrGradDisabled is returned when differentiating an expression built
	// from a node created WithoutGrad.
	ErrGradDisabled = errors.New("differentiation disabled for expression")

	ErrNotUnivariate = errors.New("expression depends on more than one variable")
	ErrInvalidOrder  = errors.New("derivative order must be non-negative")
	ErrSyntax        = errors.New("syntax error")
)

// UnboundVariableError reports a variable with no binding by node or name.
type UnboundVariableError struct {
	Name string
}

func (e *UnboundVariableError) Error() string {
	return fmt.Sprintf("unbound variable %q", e.Name)
}
