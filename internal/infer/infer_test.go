package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pyrite/internal/annotations"
	"pyrite/internal/hir"
	"pyrite/internal/types"
)

func intLit(v int64) *hir.LitExpr     { return &hir.LitExpr{Kind: hir.LitInt, IntVal: v} }
func floatLit(v float64) *hir.LitExpr { return &hir.LitExpr{Kind: hir.LitFloat, FloatVal: v} }
func strLit(s string) *hir.LitExpr    { return &hir.LitExpr{Kind: hir.LitStr, StrVal: s} }
func varRef(n string) *hir.VarExpr    { return &hir.VarExpr{Name: n} }

func singleFunc(fn *hir.Function) *ModuleResult {
	return Module(&hir.Module{Name: "m", Functions: []*hir.Function{fn}}, nil)
}

func TestAnnotatedFunctionStaysConcrete(t *testing.T) {
	fn := &hir.Function{
		Name:       "inc",
		Params:     []*hir.Param{{Name: "x", Hint: types.Int}},
		ReturnHint: types.Int,
		Body: []hir.Stmt{
			&hir.ReturnStmt{Value: &hir.BinaryExpr{Op: "+", Left: varRef("x"), Right: intLit(1)}},
		},
	}
	res := singleFunc(fn).Funcs["inc"]

	assert.Equal(t, types.Int, res.Params[0])
	assert.Equal(t, types.Int, res.Return)
	assert.Empty(t, res.Events)
}

func TestReturnTypeFromReturnsOnly(t *testing.T) {
	// An expression as the last statement contributes nothing: without
	// an explicit return the function has unit type.
	fn := &hir.Function{
		Name:   "side",
		Params: nil,
		Body: []hir.Stmt{
			&hir.ExprStmt{Value: &hir.BinaryExpr{Op: "+", Left: intLit(1), Right: intLit(2)}},
		},
	}
	res := singleFunc(fn).Funcs["side"]
	assert.Equal(t, types.None, res.Return)
}

func TestCallSiteObservation(t *testing.T) {
	head := &hir.Function{
		Name:   "head",
		Params: []*hir.Param{{Name: "xs"}},
		Body: []hir.Stmt{
			&hir.ReturnStmt{Value: &hir.IndexExpr{Recv: varRef("xs"), Index: intLit(0)}},
		},
	}
	caller := &hir.Function{
		Name: "use",
		Body: []hir.Stmt{
			&hir.ReturnStmt{Value: &hir.CallExpr{Func: "head", Args: []hir.Expr{
				&hir.ListExpr{Elems: []hir.Expr{intLit(1), intLit(2)}},
			}}},
		},
	}
	mod := &hir.Module{Name: "m", Functions: []*hir.Function{head, caller}}
	res := Module(mod, nil)

	assert.Equal(t, types.ListType{Elem: types.Int}, res.Funcs["head"].Params[0])
	assert.Equal(t, types.Int, res.Funcs["head"].Return)
	assert.Equal(t, types.Int, res.Funcs["use"].Return)
}

func TestMixedCallSitesWidenElements(t *testing.T) {
	head := &hir.Function{
		Name:   "head",
		Params: []*hir.Param{{Name: "xs"}},
		Body: []hir.Stmt{
			&hir.ReturnStmt{Value: &hir.IndexExpr{Recv: varRef("xs"), Index: intLit(0)}},
		},
	}
	caller := &hir.Function{
		Name: "use",
		Body: []hir.Stmt{
			&hir.ExprStmt{Value: &hir.CallExpr{Func: "head", Args: []hir.Expr{
				&hir.ListExpr{Elems: []hir.Expr{intLit(1)}},
			}}},
			&hir.ExprStmt{Value: &hir.CallExpr{Func: "head", Args: []hir.Expr{
				&hir.ListExpr{Elems: []hir.Expr{strLit("a")}},
			}}},
		},
	}
	mod := &hir.Module{Name: "m", Functions: []*hir.Function{head, caller}}
	res := Module(mod, nil)

	// Conflicting element types across call sites: the container shape
	// survives but the element degrades.
	assert.Equal(t, types.ListType{Elem: types.Dynamic}, res.Funcs["head"].Params[0])
	assert.Equal(t, types.Dynamic, res.Funcs["head"].Return)
}

func TestHeterogeneousLiteralDegrades(t *testing.T) {
	fn := &hir.Function{
		Name: "mix",
		Body: []hir.Stmt{
			&hir.AssignStmt{Name: "xs", Value: &hir.ListExpr{Elems: []hir.Expr{
				intLit(1), strLit("two"), floatLit(3.0),
			}}},
		},
	}
	res := singleFunc(fn).Funcs["mix"]

	got, ok := res.Table.Get("xs")
	require.True(t, ok)
	assert.Equal(t, types.ListType{Elem: types.Dynamic}, got)
}

func TestNumericReassignmentPromotes(t *testing.T) {
	fn := &hir.Function{
		Name: "f",
		Body: []hir.Stmt{
			&hir.AssignStmt{Name: "x", Value: intLit(1)},
			&hir.AssignStmt{Name: "x", Value: floatLit(2.5)},
		},
	}
	res := singleFunc(fn).Funcs["f"]

	got, _ := res.Table.Get("x")
	assert.Equal(t, types.Float, got)
	assert.Empty(t, res.Events, "numeric widening is not a degradation")
}

func TestTrueDivisionIsFloat(t *testing.T) {
	fn := &hir.Function{
		Name: "f",
		Body: []hir.Stmt{
			&hir.AssignStmt{Name: "q", Value: &hir.BinaryExpr{Op: "/", Left: intLit(7), Right: intLit(2)}},
			&hir.AssignStmt{Name: "r", Value: &hir.BinaryExpr{Op: "//", Left: intLit(7), Right: intLit(2)}},
		},
	}
	res := singleFunc(fn).Funcs["f"]

	q, _ := res.Table.Get("q")
	r, _ := res.Table.Get("r")
	assert.Equal(t, types.Float, q)
	assert.Equal(t, types.Int, r)
}

func TestGeneratorYieldTypePropagates(t *testing.T) {
	gen := &hir.Function{
		Name:      "emit",
		Generator: true,
		Body: []hir.Stmt{
			&hir.YieldStmt{Value: intLit(1)},
			&hir.YieldStmt{Value: intLit(2)},
		},
	}
	caller := &hir.Function{
		Name: "use",
		Body: []hir.Stmt{
			&hir.AssignStmt{Name: "vals", Value: &hir.CallExpr{Func: "emit"}},
		},
	}
	mod := &hir.Module{Name: "m", Functions: []*hir.Function{gen, caller}}
	res := Module(mod, nil)

	assert.Equal(t, types.Int, res.Funcs["emit"].Yield)
	got, _ := res.Funcs["use"].Table.Get("vals")
	assert.Equal(t, types.ListType{Elem: types.Int}, got)
}

func TestDictIterationBindsKeys(t *testing.T) {
	fn := &hir.Function{
		Name: "f",
		Body: []hir.Stmt{
			&hir.AssignStmt{Name: "d", Value: &hir.DictExpr{
				Keys:   []hir.Expr{strLit("a")},
				Values: []hir.Expr{intLit(1)},
			}},
			&hir.ForStmt{Target: "k", Iter: varRef("d"), Body: []hir.Stmt{
				&hir.ExprStmt{Value: varRef("k")},
			}},
			&hir.ForStmt{Target: "v", KeyTarget: "k2", Iter: &hir.MethodCallExpr{
				Recv: varRef("d"), Method: "items",
			}, Body: []hir.Stmt{}},
		},
	}
	res := singleFunc(fn).Funcs["f"]

	k, _ := res.Table.Get("k")
	assert.Equal(t, types.Str, k)
	k2, _ := res.Table.Get("k2")
	v, _ := res.Table.Get("v")
	assert.Equal(t, types.Str, k2)
	assert.Equal(t, types.Int, v)
}

func TestDictLiteralUnifiesKeysAndValues(t *testing.T) {
	fn := &hir.Function{
		Name: "f",
		Body: []hir.Stmt{
			&hir.AssignStmt{Name: "d", Value: &hir.DictExpr{
				Keys:   []hir.Expr{strLit("a"), strLit("b")},
				Values: []hir.Expr{intLit(1), strLit("two")},
			}},
		},
	}
	res := singleFunc(fn).Funcs["f"]

	// Shared key type survives; mixed value kinds widen to the fallback.
	got, _ := res.Table.Get("d")
	assert.Equal(t, types.DictType{Key: types.Str, Value: types.Dynamic}, got)
}

func TestTupleIterationUnifiesElements(t *testing.T) {
	fn := &hir.Function{
		Name:   "f",
		Params: []*hir.Param{{Name: "t", Hint: types.TupleType{Elems: []types.Type{types.Int, types.Int}}}},
		Body: []hir.Stmt{
			&hir.ForStmt{Target: "x", Iter: varRef("t"), Body: []hir.Stmt{
				&hir.ExprStmt{Value: varRef("x")},
			}},
		},
	}
	res := singleFunc(fn).Funcs["f"]

	x, _ := res.Table.Get("x")
	assert.Equal(t, types.Int, x)
}

func TestEmptyListRefinedByAppend(t *testing.T) {
	fn := &hir.Function{
		Name: "f",
		Body: []hir.Stmt{
			&hir.AssignStmt{Name: "xs", Value: &hir.ListExpr{}},
			&hir.ExprStmt{Value: &hir.MethodCallExpr{
				Recv: varRef("xs"), Method: "append", Args: []hir.Expr{intLit(1)},
			}},
		},
	}
	res := singleFunc(fn).Funcs["f"]

	got, _ := res.Table.Get("xs")
	assert.Equal(t, types.ListType{Elem: types.Int}, got)
}

func TestDeterministicAcrossRuns(t *testing.T) {
	build := func() *hir.Module {
		return &hir.Module{Name: "m", Functions: []*hir.Function{
			{
				Name:   "a",
				Params: []*hir.Param{{Name: "x"}},
				Body: []hir.Stmt{
					&hir.ReturnStmt{Value: &hir.CallExpr{Func: "b", Args: []hir.Expr{varRef("x")}}},
				},
			},
			{
				Name:   "b",
				Params: []*hir.Param{{Name: "y"}},
				Body: []hir.Stmt{
					&hir.ReturnStmt{Value: &hir.BinaryExpr{Op: "+", Left: varRef("y"), Right: intLit(1)}},
				},
			},
			{
				Name: "main",
				Body: []hir.Stmt{
					&hir.ExprStmt{Value: &hir.CallExpr{Func: "a", Args: []hir.Expr{intLit(3)}}},
				},
			},
		}}
	}

	first := Module(build(), nil)
	second := Module(build(), nil)
	for name, res := range first.Funcs {
		other := second.Funcs[name]
		assert.True(t, types.Equal(res.Return, other.Return), "return of %s", name)
		for _, binding := range res.Table.Names() {
			a, _ := res.Table.Get(binding)
			b, _ := other.Table.Get(binding)
			assert.True(t, types.Equal(a, b), "%s.%s", name, binding)
		}
	}

	assert.Equal(t, types.Int, first.Funcs["a"].Return)
	assert.Equal(t, types.Int, first.Funcs["b"].Params[0])
}

func TestUnobservedParamDegrades(t *testing.T) {
	fn := &hir.Function{
		Name:   "lonely",
		Params: []*hir.Param{{Name: "x"}},
		Body: []hir.Stmt{
			&hir.ReturnStmt{Value: varRef("x")},
		},
	}
	res := singleFunc(fn).Funcs["lonely"]

	assert.Equal(t, types.Dynamic, res.Params[0])
	require.NotEmpty(t, res.Events)
	assert.Equal(t, "x", res.Events[0].Binding)
}

func TestAggressiveStrategyUsesGenerics(t *testing.T) {
	fn := &hir.Function{
		Name:   "ident",
		Params: []*hir.Param{{Name: "x"}},
		Body: []hir.Stmt{
			&hir.ReturnStmt{Value: varRef("x")},
		},
	}
	mod := &hir.Module{Name: "m", Functions: []*hir.Function{fn}}
	hints := map[string]annotations.Hints{"ident": {TypeStrategy: "aggressive"}}
	res := Module(mod, hints).Funcs["ident"]

	assert.Equal(t, types.GenericType{Name: "T0"}, res.Params[0])
	assert.Empty(t, res.Events, "a generic parameter is not a degradation")
}

func TestEscapeRate(t *testing.T) {
	mod := &hir.Module{Name: "m", Functions: []*hir.Function{
		{
			Name: "f",
			Body: []hir.Stmt{
				&hir.AssignStmt{Name: "a", Value: intLit(1)},
				&hir.AssignStmt{Name: "b", Value: &hir.ListExpr{Elems: []hir.Expr{intLit(1), strLit("x")}}},
			},
		},
	}}
	res := Module(mod, nil)

	// "a" is concrete, "b" is a concrete list shape; neither binding
	// itself is Dynamic.
	assert.Equal(t, 0.0, res.EscapeRate())
}

func TestBuiltinResults(t *testing.T) {
	fn := &hir.Function{
		Name: "f",
		Body: []hir.Stmt{
			&hir.AssignStmt{Name: "n", Value: &hir.CallExpr{Func: "len", Args: []hir.Expr{strLit("abc")}}},
			&hir.AssignStmt{Name: "r", Value: &hir.CallExpr{Func: "range", Args: []hir.Expr{intLit(10)}}},
			&hir.AssignStmt{Name: "s", Value: &hir.CallExpr{Func: "sorted", Args: []hir.Expr{
				&hir.ListExpr{Elems: []hir.Expr{intLit(3), intLit(1)}},
			}}},
		},
	}
	res := singleFunc(fn).Funcs["f"]

	n, _ := res.Table.Get("n")
	r, _ := res.Table.Get("r")
	s, _ := res.Table.Get("s")
	assert.Equal(t, types.Int, n)
	assert.Equal(t, types.ListType{Elem: types.Int}, r)
	assert.Equal(t, types.ListType{Elem: types.Int}, s)
}
