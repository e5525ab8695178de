package lower

import (
	"fmt"

	"pyrite/internal/ast"
	"pyrite/internal/errors"
	"pyrite/internal/hir"
)

func (l *lowerer) expr(e ast.Expr) (hir.Expr, error) {
	switch node := e.(type) {
	case *ast.NameExpr:
		return &hir.VarExpr{ID: l.id(), Pos: node.Pos, Name: node.Name}, nil
	case *ast.ConstantExpr:
		return l.constant(node), nil
	case *ast.BinOpExpr:
		left, err := l.expr(node.Left)
		if err != nil {
			return nil, err
		}
		right, err := l.expr(node.Right)
		if err != nil {
			return nil, err
		}
		return &hir.BinaryExpr{ID: l.id(), Pos: node.Pos, Op: node.Op, Left: left, Right: right}, nil
	case *ast.UnaryOpExpr:
		return l.unary(node)
	case *ast.BoolOpExpr:
		return l.boolOp(node)
	case *ast.CompareExpr:
		return l.compare(node)
	case *ast.CallExpr:
		return l.call(node)
	case *ast.AttributeExpr:
		recv, err := l.expr(node.Value)
		if err != nil {
			return nil, err
		}
		return &hir.AttrExpr{ID: l.id(), Pos: node.Pos, Recv: recv, Attr: node.Attr}, nil
	case *ast.SubscriptExpr:
		return l.subscript(node)
	case *ast.ListExpr:
		elems, err := l.exprList(node.Elems)
		if err != nil {
			return nil, err
		}
		return &hir.ListExpr{ID: l.id(), Pos: node.Pos, Elems: elems}, nil
	case *ast.TupleExpr:
		elems, err := l.exprList(node.Elems)
		if err != nil {
			return nil, err
		}
		return &hir.TupleExpr{ID: l.id(), Pos: node.Pos, Elems: elems}, nil
	case *ast.SetExpr:
		elems, err := l.exprList(node.Elems)
		if err != nil {
			return nil, err
		}
		return &hir.SetExpr{ID: l.id(), Pos: node.Pos, Elems: elems}, nil
	case *ast.DictExpr:
		keys, err := l.exprList(node.Keys)
		if err != nil {
			return nil, err
		}
		values, err := l.exprList(node.Values)
		if err != nil {
			return nil, err
		}
		return &hir.DictExpr{ID: l.id(), Pos: node.Pos, Keys: keys, Values: values}, nil
	case *ast.ListCompExpr:
		return l.listComp(node)
	case *ast.YieldExpr:
		return nil, errors.Unsupported("yield in expression position", node.Pos)
	case *ast.SliceExpr:
		// Slices only appear as subscript indices; anywhere else the
		// parser handed us something we do not model.
		return nil, errors.Unsupported("slice outside subscript", node.Pos)
	default:
		return nil, errors.Unsupported(fmt.Sprintf("expression %T", e), e.NodePos())
	}
}

func (l *lowerer) exprList(exprs []ast.Expr) ([]hir.Expr, error) {
	var out []hir.Expr
	for _, e := range exprs {
		lowered, err := l.expr(e)
		if err != nil {
			return nil, err
		}
		out = append(out, lowered)
	}
	return out, nil
}

func (l *lowerer) constant(node *ast.ConstantExpr) hir.Expr {
	out := &hir.LitExpr{ID: l.id(), Pos: node.Pos}
	switch node.Kind {
	case ast.ConstNone:
		out.Kind = hir.LitNone
	case ast.ConstBool:
		out.Kind = hir.LitBool
		out.BoolVal = node.BoolVal
	case ast.ConstInt:
		out.Kind = hir.LitInt
		out.IntVal = node.IntVal
	case ast.ConstFloat:
		out.Kind = hir.LitFloat
		out.FloatVal = node.FloatVal
	default:
		out.Kind = hir.LitStr
		out.StrVal = node.StrVal
	}
	return out
}

func (l *lowerer) unary(node *ast.UnaryOpExpr) (hir.Expr, error) {
	operand, err := l.expr(node.Operand)
	if err != nil {
		return nil, err
	}
	switch node.Op {
	case "-":
		if folded, ok := foldNeg(operand); ok {
			return folded, nil
		}
		return &hir.UnaryExpr{ID: l.id(), Pos: node.Pos, Op: "-", Operand: operand}, nil
	case "not":
		if folded, ok := foldNot(operand); ok {
			return folded, nil
		}
		return &hir.UnaryExpr{ID: l.id(), Pos: node.Pos, Op: "!", Operand: operand}, nil
	default:
		return nil, errors.Unsupported("unary operator "+node.Op, node.Pos)
	}
}

// boolOp folds `a and b and c` into nested short-circuit binaries.
func (l *lowerer) boolOp(node *ast.BoolOpExpr) (hir.Expr, error) {
	if len(node.Values) < 2 {
		return nil, errors.Unsupported("boolean operation with fewer than two operands", node.Pos)
	}
	op := "&&"
	if node.Op == "or" {
		op = "||"
	}
	out, err := l.expr(node.Values[0])
	if err != nil {
		return nil, err
	}
	for _, v := range node.Values[1:] {
		rhs, err := l.expr(v)
		if err != nil {
			return nil, err
		}
		out = &hir.BinaryExpr{ID: l.id(), Pos: node.Pos, Op: op, Left: out, Right: rhs}
	}
	return out, nil
}

// compare desugars chained comparisons: `a < b <= c` becomes
// `a < b && b <= c`. Middle operands that are not trivially
// re-evaluable are hoisted into a temp so they are computed once,
// matching source evaluation order.
func (l *lowerer) compare(node *ast.CompareExpr) (hir.Expr, error) {
	if len(node.Ops) != len(node.Comparators) || len(node.Ops) == 0 {
		return nil, errors.Unsupported("malformed comparison", node.Pos)
	}

	left, err := l.expr(node.Left)
	if err != nil {
		return nil, err
	}

	var out hir.Expr
	for i, op := range node.Ops {
		right, err := l.expr(node.Comparators[i])
		if err != nil {
			return nil, err
		}
		// A middle operand is evaluated by two adjacent comparisons.
		if i < len(node.Ops)-1 && !isTrivial(right) {
			tmp := l.tmpName()
			l.pending = append(l.pending, &hir.AssignStmt{
				ID:    l.id(),
				Pos:   node.Comparators[i].NodePos(),
				Name:  tmp,
				Value: right,
			})
			right = &hir.VarExpr{ID: l.id(), Pos: node.Comparators[i].NodePos(), Name: tmp}
		}

		var pair hir.Expr
		if folded, ok := foldCompare(op, left, right); ok {
			pair = folded
		} else {
			pair = &hir.BinaryExpr{ID: l.id(), Pos: node.Pos, Op: op, Left: left, Right: right}
		}
		if out == nil {
			out = pair
		} else {
			out = &hir.BinaryExpr{ID: l.id(), Pos: node.Pos, Op: "&&", Left: out, Right: pair}
		}
		left = cloneOperand(l, right)
	}
	return out, nil
}

// isTrivial reports whether re-evaluating the expression is free of
// side effects and cost: names and literals only.
func isTrivial(e hir.Expr) bool {
	switch e.(type) {
	case *hir.VarExpr, *hir.LitExpr:
		return true
	}
	return false
}

// cloneOperand duplicates a trivial operand with a fresh node ID so the
// immutable tree never aliases one node in two positions.
func cloneOperand(l *lowerer, e hir.Expr) hir.Expr {
	switch node := e.(type) {
	case *hir.VarExpr:
		return &hir.VarExpr{ID: l.id(), Pos: node.Pos, Name: node.Name}
	case *hir.LitExpr:
		dup := *node
		dup.ID = l.id()
		return &dup
	}
	return e
}

func (l *lowerer) call(node *ast.CallExpr) (hir.Expr, error) {
	args, err := l.exprList(node.Args)
	if err != nil {
		return nil, err
	}
	switch fn := node.Func.(type) {
	case *ast.NameExpr:
		return &hir.CallExpr{ID: l.id(), Pos: node.Pos, Func: fn.Name, Args: args}, nil
	case *ast.AttributeExpr:
		recv, err := l.expr(fn.Value)
		if err != nil {
			return nil, err
		}
		return &hir.MethodCallExpr{ID: l.id(), Pos: node.Pos, Recv: recv, Method: fn.Attr, Args: args}, nil
	default:
		return nil, errors.Unsupported("call through computed expression", node.Pos)
	}
}

func (l *lowerer) subscript(node *ast.SubscriptExpr) (hir.Expr, error) {
	recv, err := l.expr(node.Value)
	if err != nil {
		return nil, err
	}
	if slice, ok := node.Index.(*ast.SliceExpr); ok {
		if slice.Step != nil {
			return nil, errors.Unsupported("extended slice step", slice.Pos)
		}
		out := &hir.SliceExpr{ID: l.id(), Pos: node.Pos, Recv: recv}
		if slice.Lower != nil {
			if out.Lower, err = l.expr(slice.Lower); err != nil {
				return nil, err
			}
		}
		if slice.Upper != nil {
			if out.Upper, err = l.expr(slice.Upper); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	index, err := l.expr(node.Index)
	if err != nil {
		return nil, err
	}
	return &hir.IndexExpr{ID: l.id(), Pos: node.Pos, Recv: recv, Index: index}, nil
}

// listComp hoists `[elem for t in iter if conds]` into an accumulator
// loop ahead of the consuming statement and evaluates to the
// accumulator variable.
func (l *lowerer) listComp(node *ast.ListCompExpr) (hir.Expr, error) {
	acc := l.tmpName()
	accPos := node.Pos

	iter, err := l.expr(node.Iter)
	if err != nil {
		return nil, err
	}
	elem, err := l.expr(node.Elem)
	if err != nil {
		return nil, err
	}

	target, ok := node.Target.(*ast.NameExpr)
	if !ok {
		return nil, errors.Unsupported("comprehension target pattern", node.Target.NodePos())
	}

	var inner hir.Stmt = &hir.ExprStmt{
		ID:  l.id(),
		Pos: accPos,
		Value: &hir.MethodCallExpr{
			ID:     l.id(),
			Pos:    accPos,
			Recv:   &hir.VarExpr{ID: l.id(), Pos: accPos, Name: acc},
			Method: "append",
			Args:   []hir.Expr{elem},
		},
	}
	// Conditions nest innermost-last so they evaluate in source order.
	for i := len(node.Conds) - 1; i >= 0; i-- {
		cond, err := l.expr(node.Conds[i])
		if err != nil {
			return nil, err
		}
		inner = &hir.IfStmt{ID: l.id(), Pos: accPos, Cond: cond, Body: []hir.Stmt{inner}}
	}

	l.pending = append(l.pending,
		&hir.AssignStmt{ID: l.id(), Pos: accPos, Name: acc, Value: &hir.ListExpr{ID: l.id(), Pos: accPos}},
		&hir.ForStmt{ID: l.id(), Pos: accPos, Target: target.Name, Iter: iter, Body: []hir.Stmt{inner}},
	)
	return &hir.VarExpr{ID: l.id(), Pos: accPos, Name: acc}, nil
}
