package adgraph_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/adgraph"
)

// ============================================================
// n-th derivative tests
// ============================================================

func TestDN_Reciprocal(t *testing.T) {
	g := adgraph.New()
	x := g.Var("x")
	v, err := x.RDiv(adgraph.Num(1)).DN(2, 2)
	require.NoError(t, err)
	assert.Equal(t, 0.25, v)
}

func TestDN_OrderZeroIsValue(t *testing.T) {
	g := adgraph.New()
	x := g.Var("x")
	f := x.Pow(adgraph.Num(3)).Sub(x)
	v, err := f.DN(0, 2)
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)
}

func TestDN_Constant(t *testing.T) {
	g := adgraph.New()
	c := g.Const(5).Add(adgraph.Num(1))
	v, err := c.DN(0, 3)
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)
	v, err = c.DN(2, 3)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
}

func TestDN_ZeroBase(t *testing.T) {
	g := adgraph.New()
	x := g.Var("x")
	sq := x.Pow(adgraph.Num(2))
	cube := x.Pow(adgraph.Num(3))
	cases := []struct {
		name string
		e    adgraph.Expr
		n    int
		want float64
	}{
		{"x^2 value", sq, 0, 0},
		{"x^2 first", sq, 1, 0},
		{"x^2 second", sq, 2, 2},
		{"x^2 third", sq, 3, 0},
		{"x^3 third", cube, 3, 6},
		{"x^3 second", cube, 2, 0},
		{"sqrt value", x.Pow(adgraph.Num(0.5)), 0, 0},
		{"x^2.5 second", x.Pow(adgraph.Num(2.5)), 2, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := tc.e.DN(tc.n, 0)
			require.NoError(t, err)
			assert.Equal(t, tc.want, v)
		})
	}
}

func TestDN_ZeroBaseSingularity(t *testing.T) {
	g := adgraph.New()
	x := g.Var("x")
	cases := []struct {
		name string
		e    adgraph.Expr
		n    int
		at   float64
	}{
		{"negative exponent", x.Pow(adgraph.Num(-1)), 1, 0},
		{"negative exponent value", x.Pow(adgraph.Num(-2)), 0, 0},
		{"sqrt first", x.Pow(adgraph.Num(0.5)), 1, 0},
		{"x^2.5 third", x.Pow(adgraph.Num(2.5)), 3, 0},
		{"within tolerance", x.Pow(adgraph.Num(0.5)), 1, 1e-10},
		{"reciprocal at zero", x.RDiv(adgraph.Num(1)), 1, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.e.DN(tc.n, tc.at)
			assert.True(t, errors.Is(err, adgraph.ErrSingularity), "got %v", err)
		})
	}
}

func TestDN_ShiftedZeroBase(t *testing.T) {
	// (x-1)^2 has a zero base at x=1 through a composite expression.
	g := adgraph.New()
	x := g.Var("x")
	f := x.Sub(adgraph.Num(1)).Pow(adgraph.Num(2))
	v, err := f.DN(2, 1)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)
	v, err = f.DN(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
}

func TestDN_VariableExponentUnsupported(t *testing.T) {
	g := adgraph.New()
	x := g.Var("x")
	_, err := x.Pow(x).DN(1, 2)
	assert.True(t, errors.Is(err, adgraph.ErrUnsupported))
	assert.Contains(t, err.Error(), "Do not support f(x) ** g(x)")

	_, err = x.RPow(adgraph.Num(2)).DN(1, 2)
	assert.True(t, errors.Is(err, adgraph.ErrUnsupported))
	assert.Contains(t, err.Error(), "x^[constant]")
}

// ============================================================
// Taylor coefficient tests
// ============================================================

func TestTaylor_Reciprocal(t *testing.T) {
	g := adgraph.New()
	x := g.Var("x")
	cs, err := x.RDiv(adgraph.Num(1)).Taylor(4, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, -1, 1, -1, 1}, cs)
}

func TestTaylor_Binomial(t *testing.T) {
	g := adgraph.New()
	x := g.Var("x")
	cs, err := x.RAdd(adgraph.Num(1)).Pow(adgraph.Num(0.5)).Taylor(3, 0)
	require.NoError(t, err)
	want := []float64{1, 0.5, -0.125, 0.0625}
	if diff := cmp.Diff(want, cs, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("coefficients mismatch (-want +got):\n%s", diff)
	}
}

func TestTaylor_Product(t *testing.T) {
	// (1+x)(1-x) = 1 - x^2
	g := adgraph.New()
	x := g.Var("x")
	cs, err := x.RAdd(adgraph.Num(1)).Mul(x.RSub(adgraph.Num(1))).Taylor(3, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, -1, 0}, cs)
}

func TestTaylor_OrderZero(t *testing.T) {
	g := adgraph.New()
	x := g.Var("x")
	cs, err := x.Mul(adgraph.Num(3)).Taylor(0, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{6}, cs)
}

func TestTaylor_Errors(t *testing.T) {
	g := adgraph.New()
	x, y := g.Var("x"), g.Var("y")
	_, err := x.Taylor(-1, 0)
	assert.True(t, errors.Is(err, adgraph.ErrInvalidOrder))
	_, err = x.Add(y).Taylor(2, 0)
	assert.True(t, errors.Is(err, adgraph.ErrNotUnivariate))
	_, err = x.RDiv(adgraph.Num(1)).Taylor(2, 0)
	assert.True(t, errors.Is(err, adgraph.ErrSingularity))
}
