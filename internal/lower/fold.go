package lower

import (
	"pyrite/internal/dynvalue"
	"pyrite/internal/hir"
)

// litValue classifies a literal node as a reference value, the bridge
// into dynvalue's comparison and truthiness semantics.
func litValue(e hir.Expr) (dynvalue.Value, bool) {
	lit, ok := e.(*hir.LitExpr)
	if !ok {
		return dynvalue.Value{}, false
	}
	switch lit.Kind {
	case hir.LitNone:
		return dynvalue.None(), true
	case hir.LitBool:
		return dynvalue.Bool(lit.BoolVal), true
	case hir.LitInt:
		return dynvalue.Int(lit.IntVal), true
	case hir.LitFloat:
		return dynvalue.Float(lit.FloatVal), true
	default:
		return dynvalue.Str(lit.StrVal), true
	}
}

// foldNeg folds `-<numeric literal>` into the literal itself, so
// negative constants reach the tree folded and negative-index emission
// sees one shape.
func foldNeg(operand hir.Expr) (hir.Expr, bool) {
	lit, ok := operand.(*hir.LitExpr)
	if !ok {
		return nil, false
	}
	switch lit.Kind {
	case hir.LitInt:
		return &hir.LitExpr{ID: lit.ID, Pos: lit.Pos, Kind: hir.LitInt, IntVal: -lit.IntVal}, true
	case hir.LitFloat:
		return &hir.LitExpr{ID: lit.ID, Pos: lit.Pos, Kind: hir.LitFloat, FloatVal: -lit.FloatVal}, true
	}
	return nil, false
}

// foldNot folds `not <literal>` through reference truthiness.
func foldNot(operand hir.Expr) (hir.Expr, bool) {
	v, ok := litValue(operand)
	if !ok {
		return nil, false
	}
	lit := operand.(*hir.LitExpr)
	return &hir.LitExpr{ID: lit.ID, Pos: lit.Pos, Kind: hir.LitBool, BoolVal: !v.IsTruthy()}, true
}

// foldCompare folds a comparison between two literals through
// reference equality and ordering, so constant guards lower to plain
// boolean literals.
func foldCompare(op string, left, right hir.Expr) (hir.Expr, bool) {
	lv, ok := litValue(left)
	if !ok {
		return nil, false
	}
	rv, ok := litValue(right)
	if !ok {
		return nil, false
	}

	var result bool
	switch op {
	case "==":
		result = dynvalue.Equal(lv, rv)
	case "!=":
		result = !dynvalue.Equal(lv, rv)
	case "<":
		result = dynvalue.Compare(lv, rv) < 0
	case "<=":
		result = dynvalue.Compare(lv, rv) <= 0
	case ">":
		result = dynvalue.Compare(lv, rv) > 0
	case ">=":
		result = dynvalue.Compare(lv, rv) >= 0
	default:
		return nil, false
	}
	lit := left.(*hir.LitExpr)
	return &hir.LitExpr{ID: lit.ID, Pos: lit.Pos, Kind: hir.LitBool, BoolVal: result}, true
}
