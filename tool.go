package adgraph

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/exp/maps"
)

// ============================================================
// MCP Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// toolParams reads request parameters and collects every problem it finds.
type toolParams struct {
	g    *Graph
	raw  map[string]interface{}
	errs error
}

func (tp *toolParams) fail(format string, args ...interface{}) {
	tp.errs = multierr.Append(tp.errs, errors.Errorf(format, args...))
}

func (tp *toolParams) expr(key string) Expr {
	v, ok := tp.raw[key]
	if !ok {
		tp.fail("missing param: %s", key)
		return Expr{}
	}
	src, ok := v.(string)
	if !ok {
		tp.fail("param %s must be a string expression", key)
		return Expr{}
	}
	e, err := Parse(tp.g, src)
	if err != nil {
		tp.errs = multierr.Append(tp.errs, err)
		return Expr{}
	}
	return e
}

func (tp *toolParams) number(key string, def *float64) float64 {
	v, ok := tp.raw[key]
	if !ok {
		if def != nil {
			return *def
		}
		tp.fail("missing param: %s", key)
		return 0
	}
	f, ok := v.(float64)
	if !ok {
		tp.fail("param %s must be a number", key)
	}
	return f
}

func (tp *toolParams) order(key string, def int) int {
	d := float64(def)
	f := tp.number(key, &d)
	n := int(f)
	if float64(n) != f || n < 0 {
		tp.fail("param %s must be an integer >= 0", key)
	}
	return n
}

func (tp *toolParams) bindings(key string) Bindings {
	v, ok := tp.raw[key]
	if !ok {
		return Bindings{}
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		tp.fail("param %s must be an object of name → number", key)
		return nil
	}
	values := make(map[string]float64, len(m))
	for _, name := range sortedKeys(m) {
		f, ok := m[name].(float64)
		if !ok {
			tp.fail("param %s.%s must be a number", key, name)
			continue
		}
		values[name] = f
	}
	return BindNames(values)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := maps.Keys(m)
	sort.Strings(keys)
	return keys
}

// numberResponse leaves Result empty for NaN and ±Inf, which JSON cannot carry.
func numberResponse(v float64) ToolResponse {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ToolResponse{String: formatNum(v)}
	}
	return ToolResponse{Result: v, String: formatNum(v)}
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func gradientResult(d Gradient) map[string]float64 {
	out := map[string]float64{}
	for _, v := range d.Vars() {
		out[v.Label()] = d.At(v)
	}
	return out
}

func hessianResult(h Hessian) map[string]map[string]float64 {
	out := map[string]map[string]float64{}
	for _, v1 := range h.Vars() {
		row := map[string]float64{}
		for _, v2 := range h.Vars() {
			row[v2.Label()] = h.At(v1, v2)
		}
		out[v1.Label()] = row
	}
	return out
}

// HandleToolCall runs one tool request against a fresh graph.
func HandleToolCall(req ToolRequest) ToolResponse {
	tp := &toolParams{g: New(), raw: req.Params}
	if tp.raw == nil {
		tp.raw = map[string]interface{}{}
	}
	fail := func(err error) ToolResponse { return ToolResponse{Error: err.Error()} }
	respond := func(e Expr) ToolResponse {
		return ToolResponse{Result: String(e), LaTeX: LaTeX(e), String: String(e)}
	}

	switch req.Tool {
	case "eval":
		e, b := tp.expr("expr"), tp.bindings("bindings")
		if tp.errs != nil {
			return fail(tp.errs)
		}
		v, err := e.Eval(b)
		if err != nil {
			return fail(err)
		}
		return numberResponse(v)

	case "grad":
		e, b := tp.expr("expr"), tp.bindings("bindings")
		if tp.errs != nil {
			return fail(tp.errs)
		}
		d, err := e.D(b)
		if err != nil {
			return fail(err)
		}
		res := gradientResult(d)
		if !finite(maps.Values(res)...) {
			return ToolResponse{String: fmt.Sprint(res)}
		}
		return ToolResponse{Result: res, String: fmt.Sprint(res)}

	case "hessian":
		e, b := tp.expr("expr"), tp.bindings("bindings")
		if tp.errs != nil {
			return fail(tp.errs)
		}
		h, err := e.Hessian(b)
		if err != nil {
			return fail(err)
		}
		res := hessianResult(h)
		for _, row := range res {
			if !finite(maps.Values(row)...) {
				return ToolResponse{String: fmt.Sprint(res)}
			}
		}
		return ToolResponse{Result: res, String: fmt.Sprint(res)}

	case "diff":
		e, n := tp.expr("expr"), tp.order("n", 1)
		if tp.errs != nil {
			return fail(tp.errs)
		}
		d, err := e.DExpr(n)
		if err != nil {
			return fail(err)
		}
		return respond(d)

	case "diffn":
		e, n, at := tp.expr("expr"), tp.order("n", 1), tp.number("at", nil)
		if tp.errs != nil {
			return fail(tp.errs)
		}
		v, err := e.DN(n, at)
		if err != nil {
			return fail(err)
		}
		return numberResponse(v)

	case "taylor":
		e, n, at := tp.expr("expr"), tp.order("order", 3), tp.number("at", nil)
		if tp.errs != nil {
			return fail(tp.errs)
		}
		cs, err := e.Taylor(n, at)
		if err != nil {
			return fail(err)
		}
		if !finite(cs...) {
			return ToolResponse{String: fmt.Sprint(cs)}
		}
		return ToolResponse{Result: cs, String: fmt.Sprint(cs)}

	case "free_vars":
		e := tp.expr("expr")
		if tp.errs != nil {
			return fail(tp.errs)
		}
		names := make([]string, 0)
		for _, v := range e.DepVars() {
			names = append(names, v.Label())
		}
		sort.Strings(names)
		return ToolResponse{Result: names}

	case "mcp_spec":
		var spec interface{}
		_ = json.Unmarshal([]byte(MCPToolSpec()), &spec)
		return ToolResponse{Result: spec}

	default:
		return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
	}
}

// ============================================================
// MCP spec
// ============================================================

func MCPToolSpec() string {
	tools := []map[string]interface{}{
		ts("eval", "Evaluate an infix expression. bindings={name: number}", []string{"expr"}, map[string]string{"expr": "string", "bindings": "object"}),
		ts("grad", "Gradient (all first partials) at a point", []string{"expr"}, map[string]string{"expr": "string", "bindings": "object"}),
		ts("hessian", "Hessian (all second partials) at a point; exponents must be constant", []string{"expr"}, map[string]string{"expr": "string", "bindings": "object"}),
		ts("diff", "Symbolic n-th derivative of a univariate expression (n defaults to 1)", []string{"expr"}, map[string]string{"expr": "string", "n": "integer"}),
		ts("diffn", "Numeric n-th derivative of a univariate expression at a point", []string{"expr", "at"}, map[string]string{"expr": "string", "n": "integer", "at": "number"}),
		ts("taylor", "Taylor coefficients c[0..order] around a point (order defaults to 3)", []string{"expr", "at"}, map[string]string{"expr": "string", "order": "integer", "at": "number"}),
		ts("free_vars", "Return the free variable names", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
