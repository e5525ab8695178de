package excflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pyrite/internal/hir"
)

func analyzeOne(t *testing.T, fn *hir.Function) *FuncFlow {
	t.Helper()
	mod := &hir.Module{Name: "m", Functions: []*hir.Function{fn}}
	flow, err := Analyze(mod)
	require.NoError(t, err)
	return flow.Funcs[fn.Name]
}

func TestTrackerHandlerScopeIsTransparent(t *testing.T) {
	tr := NewTracker()
	tr.EnterTry([]string{"KeyError"}, false)
	tr.EnterTry([]string{"ValueError"}, false)
	tr.EnterHandler()

	// Inside the inner handler the inner guard is gone, but the outer
	// guard still covers its own types.
	assert.False(t, tr.IsHandled("ValueError"))
	assert.True(t, tr.IsHandled("KeyError"))
	assert.False(t, tr.InTryBlock())

	tr.LeaveHandler()
	tr.LeaveTry()
	assert.Equal(t, 0, tr.Depth())
}

func TestTrackerCatchAll(t *testing.T) {
	tr := NewTracker()
	tr.EnterTry(nil, true)
	assert.True(t, tr.IsHandled("Anything"))
	assert.True(t, tr.InTryBlock())
	tr.LeaveTry()
	assert.False(t, tr.IsHandled("Anything"))
}

func TestHandledRaiseDoesNotMakeFallible(t *testing.T) {
	raise := &hir.RaiseStmt{ID: 7, ExcType: "ValueError"}
	fn := &hir.Function{
		Name: "f",
		Body: []hir.Stmt{
			&hir.TryStmt{
				Body: []hir.Stmt{raise},
				Handlers: []*hir.Handler{
					{ExcType: "ValueError", Body: []hir.Stmt{&hir.PassStmt{}}},
				},
			},
		},
	}
	flow := analyzeOne(t, fn)

	assert.False(t, flow.Fallible)
	assert.Empty(t, flow.Raised)
	assert.True(t, flow.Absorbed[7])
}

func TestUnhandledRaiseForcesFallibility(t *testing.T) {
	fn := &hir.Function{
		Name: "f",
		Body: []hir.Stmt{
			&hir.TryStmt{
				Body: []hir.Stmt{&hir.RaiseStmt{ID: 1, ExcType: "KeyError"}},
				Handlers: []*hir.Handler{
					{ExcType: "ValueError", Body: []hir.Stmt{&hir.PassStmt{}}},
				},
			},
		},
	}
	flow := analyzeOne(t, fn)

	assert.True(t, flow.Fallible)
	assert.Equal(t, []string{"KeyError"}, flow.Raised)
	assert.False(t, flow.Absorbed[1])
}

func TestRaiseInsideHandlerPropagates(t *testing.T) {
	// except ValueError: raise RuntimeError - the handler body is not
	// guarded by its own try.
	fn := &hir.Function{
		Name: "f",
		Body: []hir.Stmt{
			&hir.TryStmt{
				Body: []hir.Stmt{&hir.RaiseStmt{ID: 1, ExcType: "ValueError"}},
				Handlers: []*hir.Handler{
					{ExcType: "ValueError", Body: []hir.Stmt{
						&hir.RaiseStmt{ID: 2, ExcType: "RuntimeError"},
					}},
				},
			},
		},
	}
	flow := analyzeOne(t, fn)

	assert.True(t, flow.Fallible)
	assert.Equal(t, []string{"RuntimeError"}, flow.Raised)
	assert.True(t, flow.Absorbed[1])
	assert.False(t, flow.Absorbed[2])
}

func TestGuardedConversionCall(t *testing.T) {
	// try: x = int(s) / except ValueError: x = -1 leaves the function
	// infallible.
	call := &hir.CallExpr{ID: 3, Func: "int", Args: []hir.Expr{&hir.VarExpr{Name: "s"}}}
	fn := &hir.Function{
		Name:   "parse",
		Params: []*hir.Param{{Name: "s"}},
		Body: []hir.Stmt{
			&hir.TryStmt{
				Body: []hir.Stmt{&hir.AssignStmt{Name: "x", Value: call}},
				Handlers: []*hir.Handler{
					{ExcType: "ValueError", Body: []hir.Stmt{
						&hir.AssignStmt{Name: "x", Value: &hir.LitExpr{Kind: hir.LitInt, IntVal: -1}},
					}},
				},
			},
		},
	}
	flow := analyzeOne(t, fn)

	assert.False(t, flow.Fallible)
	assert.True(t, flow.Absorbed[3])
}

func TestUnguardedConversionCall(t *testing.T) {
	call := &hir.CallExpr{ID: 3, Func: "int", Args: []hir.Expr{&hir.VarExpr{Name: "s"}}}
	fn := &hir.Function{
		Name:   "parse",
		Params: []*hir.Param{{Name: "s"}},
		Body: []hir.Stmt{
			&hir.AssignStmt{Name: "x", Value: call},
		},
	}
	flow := analyzeOne(t, fn)

	assert.True(t, flow.Fallible)
	assert.Equal(t, []string{"ValueError"}, flow.Raised)
	assert.True(t, flow.Propagating[3])
}

func TestFallibilityPropagatesThroughCallChain(t *testing.T) {
	leaf := &hir.Function{
		Name: "leaf",
		Body: []hir.Stmt{&hir.RaiseStmt{ID: 1, ExcType: "IOError"}},
	}
	middle := &hir.Function{
		Name: "middle",
		Body: []hir.Stmt{
			&hir.ExprStmt{Value: &hir.CallExpr{ID: 2, Func: "leaf"}},
		},
	}
	top := &hir.Function{
		Name: "top",
		Body: []hir.Stmt{
			&hir.TryStmt{
				Body: []hir.Stmt{&hir.ExprStmt{Value: &hir.CallExpr{ID: 3, Func: "middle"}}},
				Handlers: []*hir.Handler{
					{ExcType: "IOError", Body: []hir.Stmt{&hir.PassStmt{}}},
				},
			},
		},
	}
	// Callers declared before the callee still converge.
	mod := &hir.Module{Name: "m", Functions: []*hir.Function{top, middle, leaf}}
	flow, err := Analyze(mod)
	require.NoError(t, err)

	assert.True(t, flow.Funcs["leaf"].Fallible)
	assert.True(t, flow.Funcs["middle"].Fallible)
	assert.True(t, flow.Funcs["middle"].Propagating[2])
	assert.False(t, flow.Funcs["top"].Fallible)
	assert.True(t, flow.Funcs["top"].Absorbed[3])
	assert.Equal(t, []string{"IOError"}, flow.Raised)
}

func TestElseClauseIsNotGuarded(t *testing.T) {
	fn := &hir.Function{
		Name: "f",
		Body: []hir.Stmt{
			&hir.TryStmt{
				Body: []hir.Stmt{&hir.PassStmt{}},
				Handlers: []*hir.Handler{
					{ExcType: "ValueError", Body: []hir.Stmt{&hir.PassStmt{}}},
				},
				Orelse: []hir.Stmt{&hir.RaiseStmt{ID: 4, ExcType: "ValueError"}},
			},
		},
	}
	flow := analyzeOne(t, fn)

	assert.True(t, flow.Fallible)
	assert.False(t, flow.Absorbed[4])
}

func TestModuleRaisedInventoryOrder(t *testing.T) {
	mod := &hir.Module{Name: "m", Functions: []*hir.Function{
		{
			Name: "a",
			Body: []hir.Stmt{
				&hir.RaiseStmt{ID: 1, ExcType: "ValueError"},
				&hir.RaiseStmt{ID: 2, ExcType: "KeyError"},
			},
		},
		{
			Name: "b",
			Body: []hir.Stmt{
				&hir.RaiseStmt{ID: 3, ExcType: "ValueError"},
				&hir.RaiseStmt{ID: 4, ExcType: "IndexError"},
			},
		},
	}}
	flow, err := Analyze(mod)
	require.NoError(t, err)

	assert.Equal(t, []string{"ValueError", "KeyError", "IndexError"}, flow.Raised)
}
