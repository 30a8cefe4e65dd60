package adgraph_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/adgraph"
)

// ============================================================
// MCP tool tests
// ============================================================

func call(tool string, params map[string]interface{}) adgraph.ToolResponse {
	return adgraph.HandleToolCall(adgraph.ToolRequest{Tool: tool, Params: params})
}

func TestHandleToolCall_Eval(t *testing.T) {
	resp := call("eval", map[string]interface{}{
		"expr":     "(x + 2) * 3",
		"bindings": map[string]interface{}{"x": 2.0},
	})
	require.Empty(t, resp.Error)
	assert.Equal(t, 12.0, resp.Result)
	assert.Equal(t, "12", resp.String)
}

func TestHandleToolCall_EvalNonFinite(t *testing.T) {
	resp := call("eval", map[string]interface{}{"expr": "0/0"})
	require.Empty(t, resp.Error)
	assert.Nil(t, resp.Result)
	assert.Equal(t, "NaN", resp.String)

	_, err := json.Marshal(resp)
	assert.NoError(t, err)
}

func TestHandleToolCall_EvalUnbound(t *testing.T) {
	resp := call("eval", map[string]interface{}{"expr": "x + 1"})
	assert.Equal(t, `unbound variable "x"`, resp.Error)
}

func TestHandleToolCall_Grad(t *testing.T) {
	resp := call("grad", map[string]interface{}{
		"expr":     "x*y",
		"bindings": map[string]interface{}{"x": 3.0, "y": 4.0},
	})
	require.Empty(t, resp.Error)
	assert.Equal(t, map[string]float64{"x": 4, "y": 3}, resp.Result)
}

func TestHandleToolCall_Hessian(t *testing.T) {
	resp := call("hessian", map[string]interface{}{
		"expr":     "x*y + x/y",
		"bindings": map[string]interface{}{"x": 3.0, "y": 2.0},
	})
	require.Empty(t, resp.Error)
	want := map[string]map[string]float64{
		"x": {"x": 0, "y": 0.75},
		"y": {"x": 0.75, "y": 0.75},
	}
	assert.Equal(t, want, resp.Result)

	resp = call("hessian", map[string]interface{}{
		"expr":     "x^y",
		"bindings": map[string]interface{}{"x": 3.0, "y": 2.0},
	})
	assert.Contains(t, resp.Error, "Hessian only implemented for x^[constant]")
}

func TestHandleToolCall_Diff(t *testing.T) {
	resp := call("diff", map[string]interface{}{"expr": "x^3", "n": 2.0})
	require.Empty(t, resp.Error)
	src, ok := resp.Result.(string)
	require.True(t, ok, "expected string result, got %T", resp.Result)
	assert.Equal(t, src, resp.String)
	assert.NotEmpty(t, resp.LaTeX)

	g := adgraph.New()
	d, err := adgraph.Parse(g, src)
	require.NoError(t, err)
	v, err := d.Eval(adgraph.BindNames(map[string]float64{"x": 5}))
	require.NoError(t, err)
	assert.Equal(t, 30.0, v)
}

func TestHandleToolCall_DiffDefaultsToFirstOrder(t *testing.T) {
	resp := call("diff", map[string]interface{}{"expr": "x*x"})
	require.Empty(t, resp.Error)
	d, err := adgraph.Parse(adgraph.New(), resp.String)
	require.NoError(t, err)
	v, err := d.Eval(adgraph.BindNames(map[string]float64{"x": 4}))
	require.NoError(t, err)
	assert.Equal(t, 8.0, v)
}

func TestHandleToolCall_DiffErrors(t *testing.T) {
	resp := call("diff", map[string]interface{}{"expr": "x^x"})
	assert.Contains(t, resp.Error, "Do not support f(x) ** g(x)")

	resp = call("diff", map[string]interface{}{"expr": "x*y"})
	assert.Contains(t, resp.Error, "more than one variable")

	resp = call("diff", map[string]interface{}{"expr": "x", "n": 1.5})
	assert.Equal(t, "param n must be an integer >= 0", resp.Error)

	resp = call("diff", map[string]interface{}{"expr": "x", "n": -1.0})
	assert.Equal(t, "param n must be an integer >= 0", resp.Error)
}

func TestHandleToolCall_DiffN(t *testing.T) {
	resp := call("diffn", map[string]interface{}{"expr": "1/x", "n": 2.0, "at": 2.0})
	require.Empty(t, resp.Error)
	assert.Equal(t, 0.25, resp.Result)

	resp = call("diffn", map[string]interface{}{"expr": "x^-1", "at": 0.0})
	assert.Contains(t, resp.Error, "singularity")
}

func TestHandleToolCall_Taylor(t *testing.T) {
	resp := call("taylor", map[string]interface{}{"expr": "1/x", "order": 4.0, "at": 1.0})
	require.Empty(t, resp.Error)
	assert.Equal(t, []float64{1, -1, 1, -1, 1}, resp.Result)

	resp = call("taylor", map[string]interface{}{"expr": "1/x", "at": 1.0})
	require.Empty(t, resp.Error)
	assert.Len(t, resp.Result, 4)
}

func TestHandleToolCall_FreeVars(t *testing.T) {
	resp := call("free_vars", map[string]interface{}{"expr": "y*x + z - 2"})
	require.Empty(t, resp.Error)
	assert.Equal(t, []string{"x", "y", "z"}, resp.Result)

	resp = call("free_vars", map[string]interface{}{"expr": "2 + 3"})
	require.Empty(t, resp.Error)
	assert.Equal(t, []string{}, resp.Result)
}

func TestHandleToolCall_ParamErrors(t *testing.T) {
	resp := call("diffn", map[string]interface{}{})
	assert.Equal(t, "missing param: expr; missing param: at", resp.Error)

	resp = call("eval", map[string]interface{}{
		"expr":     3.0,
		"bindings": map[string]interface{}{"x": "one"},
	})
	assert.Equal(t, "param expr must be a string expression; param bindings.x must be a number", resp.Error)

	resp = call("eval", map[string]interface{}{"expr": "x +"})
	assert.Contains(t, resp.Error, "syntax error")

	resp = call("eval", nil)
	assert.Equal(t, "missing param: expr", resp.Error)
}

func TestHandleToolCall_UnknownTool(t *testing.T) {
	resp := call("nonexistent", map[string]interface{}{})
	assert.Equal(t, "unknown tool: nonexistent", resp.Error)
}

func TestHandleToolCall_Spec(t *testing.T) {
	resp := call("mcp_spec", nil)
	require.Empty(t, resp.Error)
	spec, ok := resp.Result.(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, spec["tools"], 8)
}

func TestMCPToolSpec(t *testing.T) {
	spec := adgraph.MCPToolSpec()
	var m struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal([]byte(spec), &m))
	var names []string
	for _, tool := range m.Tools {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"eval", "grad", "hessian", "diff", "diffn", "taylor", "free_vars", "mcp_spec"}, names)
}
