package codegen

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"pyrite/internal/borrow"
	"pyrite/internal/excflow"
	"pyrite/internal/hir"
	"pyrite/internal/infer"
	"pyrite/internal/types"
)

// TestGoldenUnit runs the whole analysis pipeline over a small module
// and compares the emitted source byte for byte.
func TestGoldenUnit(t *testing.T) {
	mod := &hir.Module{
		Name: "calc.py",
		Functions: []*hir.Function{
			{
				Name: "add",
				Params: []*hir.Param{
					{Name: "a", Hint: types.Int},
					{Name: "b", Hint: types.Int},
				},
				ReturnHint: types.Int,
				Body: []hir.Stmt{
					&hir.ReturnStmt{Value: &hir.BinaryExpr{
						Op: "+", Left: &hir.VarExpr{Name: "a"}, Right: &hir.VarExpr{Name: "b"},
					}},
				},
			},
			{
				Name:   "parse_or_zero",
				Params: []*hir.Param{{Name: "s", Hint: types.Str}},
				Body: []hir.Stmt{
					&hir.TryStmt{
						Body: []hir.Stmt{
							&hir.AssignStmt{Name: "n", Value: &hir.CallExpr{
								ID: 41, Func: "int", Args: []hir.Expr{&hir.VarExpr{Name: "s"}},
							}},
						},
						Handlers: []*hir.Handler{
							{ExcType: "ValueError", Body: []hir.Stmt{
								&hir.AssignStmt{Name: "n", Value: &hir.LitExpr{Kind: hir.LitInt}},
							}},
						},
					},
					&hir.ReturnStmt{Value: &hir.VarExpr{Name: "n"}},
				},
			},
		},
	}

	inf := infer.Module(mod, nil)
	flow, err := excflow.Analyze(mod)
	require.NoError(t, err)
	owners := borrow.Analyze(mod, inf, nil)
	out, err := New(mod, inf, flow, owners, nil).Generate()
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithNameSuffix(".golden"))
	g.Assert(t, "calc", []byte(out.Source))
}
