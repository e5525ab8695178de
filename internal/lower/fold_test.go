package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pyrite/internal/ast"
	"pyrite/internal/hir"
)

func TestFoldNegativeIntLiteral(t *testing.T) {
	body := lowerBody(t, &ast.AssignStmt{Target: name("x"), Value: &ast.UnaryOpExpr{
		Op: "-", Operand: intConst(3),
	}})

	lit, ok := body[0].(*hir.AssignStmt).Value.(*hir.LitExpr)
	require.True(t, ok, "negation of a literal folds at lowering time")
	assert.Equal(t, int64(-3), lit.IntVal)
}

func TestFoldNegativeFloatLiteral(t *testing.T) {
	body := lowerBody(t, &ast.AssignStmt{Target: name("x"), Value: &ast.UnaryOpExpr{
		Op: "-", Operand: &ast.ConstantExpr{Kind: ast.ConstFloat, FloatVal: 2.5},
	}})

	lit, ok := body[0].(*hir.AssignStmt).Value.(*hir.LitExpr)
	require.True(t, ok)
	assert.Equal(t, -2.5, lit.FloatVal)
}

func TestFoldNotUsesTruthiness(t *testing.T) {
	body := lowerBody(t, &ast.AssignStmt{Target: name("x"), Value: &ast.UnaryOpExpr{
		Op: "not", Operand: &ast.ConstantExpr{Kind: ast.ConstStr, StrVal: ""},
	}})

	lit, ok := body[0].(*hir.AssignStmt).Value.(*hir.LitExpr)
	require.True(t, ok)
	assert.Equal(t, hir.LitBool, lit.Kind)
	assert.True(t, lit.BoolVal, "the empty string is falsy, its negation folds to True")
}

func TestFoldLiteralComparison(t *testing.T) {
	body := lowerBody(t, &ast.AssignStmt{Target: name("x"), Value: &ast.CompareExpr{
		Left:        intConst(1),
		Ops:         []string{"<"},
		Comparators: []ast.Expr{&ast.ConstantExpr{Kind: ast.ConstFloat, FloatVal: 1.5}},
	}})

	lit, ok := body[0].(*hir.AssignStmt).Value.(*hir.LitExpr)
	require.True(t, ok, "comparison between two literals folds")
	assert.Equal(t, hir.LitBool, lit.Kind)
	assert.True(t, lit.BoolVal)
}

func TestNonLiteralComparisonDoesNotFold(t *testing.T) {
	body := lowerBody(t, &ast.AssignStmt{Target: name("x"), Value: &ast.CompareExpr{
		Left:        name("a"),
		Ops:         []string{"=="},
		Comparators: []ast.Expr{intConst(1)},
	}})

	_, ok := body[0].(*hir.AssignStmt).Value.(*hir.BinaryExpr)
	assert.True(t, ok)
}
