package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pyrite/internal/annotations"
	"pyrite/internal/borrow"
	"pyrite/internal/excflow"
	"pyrite/internal/hir"
	"pyrite/internal/infer"
	"pyrite/internal/types"
)

func intLit(v int64) *hir.LitExpr { return &hir.LitExpr{Kind: hir.LitInt, IntVal: v} }
func strLit(s string) *hir.LitExpr {
	return &hir.LitExpr{Kind: hir.LitStr, StrVal: s}
}
func varRef(n string) *hir.VarExpr { return &hir.VarExpr{Name: n} }

func generate(t *testing.T, hints map[string]annotations.Hints, fns ...*hir.Function) string {
	t.Helper()
	mod := &hir.Module{Name: "unit.py", Functions: fns}
	inf := infer.Module(mod, hints)
	flow, err := excflow.Analyze(mod)
	require.NoError(t, err)
	owners := borrow.Analyze(mod, inf, hints)
	out, err := New(mod, inf, flow, owners, hints).Generate()
	require.NoError(t, err)
	return out.Source
}

func TestConcreteSignature(t *testing.T) {
	src := generate(t, nil, &hir.Function{
		Name:       "inc",
		Params:     []*hir.Param{{Name: "x", Hint: types.Int}},
		ReturnHint: types.Int,
		Body: []hir.Stmt{
			&hir.ReturnStmt{Value: &hir.BinaryExpr{Op: "+", Left: varRef("x"), Right: intLit(1)}},
		},
	})

	assert.Contains(t, src, "pub fn inc(x: i64) -> i64 {")
	assert.Contains(t, src, "return x + 1;")
	assert.NotContains(t, src, "PyValue")
}

func TestPrecedenceAwareParens(t *testing.T) {
	src := generate(t, nil, &hir.Function{
		Name: "f",
		Body: []hir.Stmt{
			&hir.AssignStmt{Name: "a", Value: intLit(1)},
			&hir.AssignStmt{Name: "b", Value: intLit(2)},
			&hir.AssignStmt{Name: "c", Value: intLit(3)},
			&hir.AssignStmt{Name: "r", Value: &hir.BinaryExpr{
				Op:    "*",
				Left:  &hir.BinaryExpr{Op: "+", Left: varRef("a"), Right: varRef("b")},
				Right: varRef("c"),
			}},
			&hir.AssignStmt{Name: "s", Value: &hir.BinaryExpr{
				Op:    "+",
				Left:  &hir.BinaryExpr{Op: "*", Left: varRef("a"), Right: varRef("b")},
				Right: varRef("c"),
			}},
		},
	})

	assert.Contains(t, src, "(a + b) * c")
	assert.Contains(t, src, "a * b + c", "higher-binding subexpressions are never blanket-wrapped")
}

func TestTrueDivisionCasts(t *testing.T) {
	src := generate(t, nil, &hir.Function{
		Name: "f",
		Body: []hir.Stmt{
			&hir.AssignStmt{Name: "q", Value: &hir.BinaryExpr{Op: "/", Left: intLit(7), Right: intLit(2)}},
		},
	})

	assert.Contains(t, src, "let q: f64 = 7 as f64 / 2 as f64;")
}

func TestSubscriptAssignDispatch(t *testing.T) {
	src := generate(t, nil, &hir.Function{
		Name: "f",
		Params: []*hir.Param{
			{Name: "d", Hint: types.DictType{Key: types.Str, Value: types.Int}},
			{Name: "xs", Hint: types.ListType{Elem: types.Int}},
			{Name: "k", Hint: types.Int},
		},
		Body: []hir.Stmt{
			&hir.IndexAssignStmt{Recv: varRef("d"), Index: strLit("a"), Value: intLit(1)},
			&hir.IndexAssignStmt{Recv: varRef("xs"), Index: varRef("k"), Value: intLit(2)},
		},
	})

	assert.Contains(t, src, `d.insert("a".to_string(), 1);`)
	assert.Contains(t, src, "xs[k as usize] = 2;")
}

func TestStringNegativeIndexUsesCharIterator(t *testing.T) {
	src := generate(t, nil, &hir.Function{
		Name:   "last",
		Params: []*hir.Param{{Name: "s", Hint: types.Str}},
		Body: []hir.Stmt{
			&hir.ReturnStmt{Value: &hir.IndexExpr{Recv: varRef("s"), Index: intLit(-1)}},
		},
	})

	assert.Contains(t, src, "s.chars().last().unwrap()")
	assert.NotContains(t, src, "s[-1]")
}

func TestListNegativeIndexBoundsArithmetic(t *testing.T) {
	src := generate(t, nil, &hir.Function{
		Name:   "f",
		Params: []*hir.Param{{Name: "xs", Hint: types.ListType{Elem: types.Int}}},
		Body: []hir.Stmt{
			&hir.ReturnStmt{Value: &hir.IndexExpr{Recv: varRef("xs"), Index: intLit(-2)}},
		},
	})

	assert.Contains(t, src, "xs[xs.len().saturating_sub(2)]")
}

func TestFallibleSignatureWrapsReturns(t *testing.T) {
	src := generate(t, nil, &hir.Function{
		Name:   "check",
		Params: []*hir.Param{{Name: "x", Hint: types.Int}},
		Body: []hir.Stmt{
			&hir.IfStmt{
				Cond: &hir.BinaryExpr{Op: "<", Left: varRef("x"), Right: intLit(0)},
				Body: []hir.Stmt{
					&hir.RaiseStmt{ExcType: "ValueError", Msg: strLit("negative")},
				},
			},
			&hir.ReturnStmt{Value: varRef("x")},
		},
	})

	assert.Contains(t, src, "-> Result<i64, ValueError>")
	assert.Contains(t, src, `return Err(ValueError::new("negative"));`)
	assert.Contains(t, src, "return Ok(x);")
	assert.Contains(t, src, "pub struct ValueError {")
	// The error struct comes before the function declarations.
	assert.Less(t, strings.Index(src, "pub struct ValueError"), strings.Index(src, "pub fn check"))
}

func TestHandledRaiseStaysLocal(t *testing.T) {
	src := generate(t, nil, &hir.Function{
		Name: "f",
		Body: []hir.Stmt{
			&hir.TryStmt{
				Body: []hir.Stmt{&hir.RaiseStmt{ID: 900, ExcType: "ValueError"}},
				Handlers: []*hir.Handler{
					{ExcType: "ValueError", Body: []hir.Stmt{&hir.PassStmt{}}},
				},
			},
		},
	})

	assert.Contains(t, src, `panic!("ValueError");`)
	assert.NotContains(t, src, "Result<")
}

func TestGuardedConversionInlinesHandler(t *testing.T) {
	src := generate(t, nil, &hir.Function{
		Name:   "parse",
		Params: []*hir.Param{{Name: "s", Hint: types.Str}},
		Body: []hir.Stmt{
			&hir.TryStmt{
				Body: []hir.Stmt{
					&hir.AssignStmt{Name: "x", Value: &hir.CallExpr{ID: 10, Func: "int", Args: []hir.Expr{varRef("s")}}},
				},
				Handlers: []*hir.Handler{
					{ExcType: "ValueError", Body: []hir.Stmt{
						&hir.AssignStmt{Name: "x", Value: intLit(-1)},
					}},
				},
			},
			&hir.ReturnStmt{Value: varRef("x")},
		},
	})

	assert.Contains(t, src, "match s.trim().parse::<i64>() {")
	assert.Contains(t, src, "x = __v;")
	assert.Contains(t, src, "x = -1;")
	assert.NotContains(t, src, "-> Result", "a fully guarded conversion never widens the signature")
}

func TestStringRepetition(t *testing.T) {
	src := generate(t, nil, &hir.Function{
		Name:   "bar",
		Params: []*hir.Param{{Name: "s", Hint: types.Str}},
		Body: []hir.Stmt{
			&hir.ReturnStmt{Value: &hir.BinaryExpr{Op: "*", Left: varRef("s"), Right: intLit(3)}},
		},
	})

	assert.Contains(t, src, "s.repeat(3 as usize)")
}

func TestMembershipByContainerKind(t *testing.T) {
	src := generate(t, nil, &hir.Function{
		Name: "f",
		Params: []*hir.Param{
			{Name: "d", Hint: types.DictType{Key: types.Str, Value: types.Int}},
			{Name: "k", Hint: types.Str},
		},
		Body: []hir.Stmt{
			&hir.ReturnStmt{Value: &hir.BinaryExpr{Op: "in", Left: varRef("k"), Right: varRef("d")}},
		},
	})

	// k is already a reference parameter and passes unchanged.
	assert.Contains(t, src, "d.contains_key(k)")
	assert.NotContains(t, src, "&k")
}

func TestRangeBoundHoisting(t *testing.T) {
	src := generate(t, nil, &hir.Function{
		Name:   "f",
		Params: []*hir.Param{{Name: "xs", Hint: types.ListType{Elem: types.Int}}},
		Body: []hir.Stmt{
			&hir.ForStmt{
				Target: "i",
				Iter: &hir.CallExpr{Func: "range", Args: []hir.Expr{
					&hir.BinaryExpr{Op: "+", Left: &hir.IndexExpr{Recv: varRef("xs"), Index: intLit(0)}, Right: intLit(1)},
				}},
				Body: []hir.Stmt{&hir.PassStmt{}},
			},
		},
	})

	assert.Contains(t, src, "let __v1 = xs[0] + 1;")
	assert.Contains(t, src, "for i in 0..__v1 {")
}

func TestGeneratorBecomesIteratorStruct(t *testing.T) {
	src := generate(t, nil, &hir.Function{
		Name:      "count_up",
		Params:    []*hir.Param{{Name: "n", Hint: types.Int}},
		Generator: true,
		Body: []hir.Stmt{
			&hir.ForStmt{
				Target: "i",
				Iter:   &hir.CallExpr{Func: "range", Args: []hir.Expr{varRef("n")}},
				Body: []hir.Stmt{
					&hir.YieldStmt{Value: varRef("i")},
				},
			},
		},
	})

	assert.Contains(t, src, "pub struct CountUpIter {")
	assert.Contains(t, src, "impl Iterator for CountUpIter {")
	assert.Contains(t, src, "__items.push(i);")
	assert.Contains(t, src, "-> CountUpIter {")
}

func TestHeterogeneousListWrapsElements(t *testing.T) {
	src := generate(t, nil, &hir.Function{
		Name: "mix",
		Body: []hir.Stmt{
			&hir.AssignStmt{Name: "xs", Value: &hir.ListExpr{Elems: []hir.Expr{intLit(1), strLit("two")}}},
		},
	})

	assert.Contains(t, src, "let xs: Vec<PyValue> = vec![PyValue::from(1), PyValue::from(\"two\")];")
	assert.Contains(t, src, "pub enum PyValue {")
}

func TestMutableParamSignature(t *testing.T) {
	src := generate(t, nil, &hir.Function{
		Name:   "push",
		Params: []*hir.Param{{Name: "xs", Hint: types.ListType{Elem: types.Int}}},
		Body: []hir.Stmt{
			&hir.ExprStmt{Value: &hir.MethodCallExpr{
				Recv: varRef("xs"), Method: "append", Args: []hir.Expr{intLit(1)},
			}},
		},
	})

	assert.Contains(t, src, "pub fn push(xs: &mut Vec<i64>) {")
	assert.Contains(t, src, "xs.push(1);")
}

func TestManifestRecordsFunctionSpans(t *testing.T) {
	mod := &hir.Module{Name: "unit.py", Functions: []*hir.Function{
		{Name: "a", Body: []hir.Stmt{&hir.ReturnStmt{Value: intLit(1)}}},
		{Name: "b", Body: []hir.Stmt{&hir.ReturnStmt{Value: intLit(2)}}},
	}}
	inf := infer.Module(mod, nil)
	flow, err := excflow.Analyze(mod)
	require.NoError(t, err)
	owners := borrow.Analyze(mod, inf, nil)
	out, err := New(mod, inf, flow, owners, nil).Generate()
	require.NoError(t, err)

	require.Len(t, out.Manifest.Spans, 2)
	assert.Equal(t, "a", out.Manifest.Spans[0].Function)
	assert.Equal(t, "b", out.Manifest.Spans[1].Function)
	assert.NotEmpty(t, out.Manifest.UnitID)

	span, ok := out.Manifest.Locate(out.Manifest.Spans[1].StartLine)
	require.True(t, ok)
	assert.Equal(t, "b", span.Function)
}

func TestCargoManifest(t *testing.T) {
	m := CargoManifest("My Unit.py")
	assert.Contains(t, m, `name = "my_unit_py"`)
	assert.Contains(t, m, `edition = "2021"`)
}

func TestIntegerFloorDivisionRoundsDown(t *testing.T) {
	// 7 // -2 is -4 in the source; the truncating quotient (and
	// div_euclid, which gives -3 here) must be adjusted by sign.
	src := generate(t, nil, &hir.Function{
		Name: "f",
		Params: []*hir.Param{
			{Name: "a", Hint: types.Int},
			{Name: "b", Hint: types.Int},
		},
		ReturnHint: types.Int,
		Body: []hir.Stmt{
			&hir.ReturnStmt{Value: &hir.BinaryExpr{Op: "//", Left: varRef("a"), Right: varRef("b")}},
		},
	})

	assert.Contains(t, src, "let __q = __a / __b;")
	assert.Contains(t, src, "if __r != 0 && (__r < 0) != (__b < 0) { __q - 1 } else { __q }")
	assert.NotContains(t, src, "div_euclid")
}

func TestFloatFloorDivisionFloors(t *testing.T) {
	src := generate(t, nil, &hir.Function{
		Name: "f",
		Params: []*hir.Param{
			{Name: "x", Hint: types.Float},
			{Name: "n", Hint: types.Int},
		},
		ReturnHint: types.Float,
		Body: []hir.Stmt{
			&hir.ReturnStmt{Value: &hir.BinaryExpr{Op: "//", Left: varRef("x"), Right: varRef("n")}},
		},
	})

	assert.Contains(t, src, "return (x / n as f64).floor();")
	assert.NotContains(t, src, "py_floordiv")
}

func TestDynamicFloorDivisionUsesProxyHelper(t *testing.T) {
	src := generate(t, nil, &hir.Function{
		Name: "f",
		Body: []hir.Stmt{
			&hir.AssignStmt{Name: "xs", Value: &hir.ListExpr{Elems: []hir.Expr{intLit(1), strLit("two")}}},
			&hir.AssignStmt{Name: "a", Value: &hir.IndexExpr{Recv: varRef("xs"), Index: intLit(0)}},
			&hir.AssignStmt{Name: "r", Value: &hir.BinaryExpr{Op: "//", Left: varRef("a"), Right: intLit(3)}},
		},
	})

	// The helper must exist in the support block or the unit can never
	// compile, and the feedback loop has nothing to repair.
	assert.Contains(t, src, "a.py_floordiv(PyValue::from(3))")
	assert.Contains(t, src, "pub fn py_floordiv(self, rhs: PyValue) -> PyValue")
}

func TestPowerEmission(t *testing.T) {
	src := generate(t, nil, &hir.Function{
		Name: "f",
		Params: []*hir.Param{
			{Name: "b", Hint: types.Int},
			{Name: "x", Hint: types.Float},
		},
		Body: []hir.Stmt{
			&hir.AssignStmt{Name: "p", Value: &hir.BinaryExpr{Op: "**", Left: varRef("b"), Right: intLit(3)}},
			&hir.AssignStmt{Name: "q", Value: &hir.BinaryExpr{Op: "**", Left: varRef("x"), Right: intLit(2)}},
		},
	})

	assert.Contains(t, src, "let p: i64 = b.pow(3 as u32);")
	assert.Contains(t, src, "let q: f64 = x.powf(2 as f64);")
	assert.NotContains(t, src, "py_pow")
}

func TestCompoundIndexBranchesOnSign(t *testing.T) {
	// xs[i - 1] can be negative at runtime; a straight usize cast would
	// wrap where the source reads from the end.
	src := generate(t, nil, &hir.Function{
		Name: "f",
		Params: []*hir.Param{
			{Name: "xs", Hint: types.ListType{Elem: types.Int}},
			{Name: "i", Hint: types.Int},
		},
		ReturnHint: types.Int,
		Body: []hir.Stmt{
			&hir.ReturnStmt{Value: &hir.IndexExpr{
				Recv:  varRef("xs"),
				Index: &hir.BinaryExpr{Op: "-", Left: varRef("i"), Right: intLit(1)},
			}},
		},
	})

	assert.Contains(t, src, "let __i: i64 = i - 1;")
	assert.Contains(t, src, "xs.len().saturating_sub(__i.unsigned_abs() as usize)")
	assert.NotContains(t, src, "(i - 1) as usize")
}

func TestAggressiveGenericsDeclareTypeParams(t *testing.T) {
	hints := map[string]annotations.Hints{"ident": {TypeStrategy: "aggressive"}}
	src := generate(t, hints, &hir.Function{
		Name:   "ident",
		Params: []*hir.Param{{Name: "x"}},
		Body: []hir.Stmt{
			&hir.ReturnStmt{Value: varRef("x")},
		},
	})

	assert.Contains(t, src, "pub fn ident<T0>(x: &T0)")
}
