// Package lower converts the source AST into HIR. Lowering desugars
// the constructs the rest of the pipeline does not want to see:
// comprehensions become accumulator loops, chained comparisons become
// pairwise conjunctions, and slice subscripts become explicit slice
// nodes. A construct with no lowering rule aborts the unit with a
// position-tagged error; lowering never guesses.
package lower

import (
	"fmt"

	"pyrite/internal/ast"
	"pyrite/internal/errors"
	"pyrite/internal/hir"
)

// Module lowers one source module. The returned HIR tree is complete
// and immutable, or the error describes the first unsupported
// construct.
func Module(mod *ast.Module) (*hir.Module, error) {
	l := &lowerer{}
	out := &hir.Module{Name: mod.Name}
	for _, fn := range mod.Functions {
		lowered, err := l.function(fn)
		if err != nil {
			return nil, err
		}
		out.Functions = append(out.Functions, lowered)
	}
	return out, nil
}

type lowerer struct {
	nextID  int
	nextTmp int
	// pending collects statements synthesized while lowering an
	// expression (hoisted comprehensions, chained-compare temps). They
	// are flushed ahead of the statement that triggered them.
	pending []hir.Stmt
	// generator is set when the current function body contains yield.
	generator bool
}

func (l *lowerer) id() int {
	l.nextID++
	return l.nextID
}

func (l *lowerer) tmpName() string {
	name := fmt.Sprintf("_tmp%d", l.nextTmp)
	l.nextTmp++
	return name
}

func (l *lowerer) function(fn *ast.FunctionDef) (*hir.Function, error) {
	l.generator = false
	out := &hir.Function{
		ID:   l.id(),
		Pos:  fn.Pos,
		Name: fn.Name,
	}
	for _, p := range fn.Params {
		param := &hir.Param{ID: l.id(), Pos: p.Pos, Name: p.Name}
		if p.Annotation != nil {
			t, err := AnnotationType(p.Annotation)
			if err != nil {
				return nil, err
			}
			param.Hint = t
		}
		out.Params = append(out.Params, param)
	}
	if fn.Returns != nil {
		t, err := AnnotationType(fn.Returns)
		if err != nil {
			return nil, err
		}
		out.ReturnHint = t
	}
	body, err := l.stmts(fn.Body)
	if err != nil {
		return nil, err
	}
	out.Body = body
	out.Generator = l.generator
	return out, nil
}

func (l *lowerer) stmts(stmts []ast.Stmt) ([]hir.Stmt, error) {
	var out []hir.Stmt
	for _, s := range stmts {
		lowered, err := l.stmt(s)
		if err != nil {
			return nil, err
		}
		out = append(out, lowered...)
	}
	return out, nil
}

// stmt lowers one source statement into one or more HIR statements;
// synthesized prelude statements come first.
func (l *lowerer) stmt(s ast.Stmt) ([]hir.Stmt, error) {
	switch node := s.(type) {
	case *ast.AssignStmt:
		return l.assign(node)
	case *ast.AugAssignStmt:
		return l.augAssign(node)
	case *ast.ReturnStmt:
		if node.Value == nil {
			return []hir.Stmt{&hir.ReturnStmt{ID: l.id(), Pos: node.Pos}}, nil
		}
		value, err := l.expr(node.Value)
		if err != nil {
			return nil, err
		}
		return l.flush(&hir.ReturnStmt{ID: l.id(), Pos: node.Pos, Value: value}), nil
	case *ast.IfStmt:
		cond, err := l.expr(node.Cond)
		if err != nil {
			return nil, err
		}
		prelude := l.takePending()
		body, err := l.stmts(node.Body)
		if err != nil {
			return nil, err
		}
		orelse, err := l.stmts(node.Orelse)
		if err != nil {
			return nil, err
		}
		return append(prelude, &hir.IfStmt{ID: l.id(), Pos: node.Pos, Cond: cond, Body: body, Orelse: orelse}), nil
	case *ast.WhileStmt:
		cond, err := l.expr(node.Cond)
		if err != nil {
			return nil, err
		}
		// A loop condition cannot carry hoisted statements: they would
		// be evaluated once instead of per iteration.
		if len(l.pending) > 0 {
			l.pending = nil
			return nil, errors.Unsupported("comprehension in while condition", node.Pos)
		}
		body, err := l.stmts(node.Body)
		if err != nil {
			return nil, err
		}
		return []hir.Stmt{&hir.WhileStmt{ID: l.id(), Pos: node.Pos, Cond: cond, Body: body}}, nil
	case *ast.ForStmt:
		return l.forStmt(node)
	case *ast.TryStmt:
		return l.tryStmt(node)
	case *ast.RaiseStmt:
		if node.ExcType == "" {
			// A bare re-raise needs the dynamic exception machinery the
			// target model does not have.
			return nil, errors.Unsupported("bare raise", node.Pos)
		}
		out := &hir.RaiseStmt{ID: l.id(), Pos: node.Pos, ExcType: node.ExcType}
		if node.Arg != nil {
			msg, err := l.expr(node.Arg)
			if err != nil {
				return nil, err
			}
			out.Msg = msg
		}
		return l.flush(out), nil
	case *ast.ExprStmt:
		if y, ok := node.Value.(*ast.YieldExpr); ok {
			return l.yieldStmt(y)
		}
		value, err := l.expr(node.Value)
		if err != nil {
			return nil, err
		}
		return l.flush(&hir.ExprStmt{ID: l.id(), Pos: node.Pos, Value: value}), nil
	case *ast.PassStmt:
		return []hir.Stmt{&hir.PassStmt{ID: l.id(), Pos: node.Pos}}, nil
	case *ast.BreakStmt:
		return []hir.Stmt{&hir.BreakStmt{ID: l.id(), Pos: node.Pos}}, nil
	case *ast.ContinueStmt:
		return []hir.Stmt{&hir.ContinueStmt{ID: l.id(), Pos: node.Pos}}, nil
	default:
		return nil, errors.Unsupported(fmt.Sprintf("statement %T", s), s.NodePos())
	}
}

func (l *lowerer) assign(node *ast.AssignStmt) ([]hir.Stmt, error) {
	value, err := l.expr(node.Value)
	if err != nil {
		return nil, err
	}
	switch target := node.Target.(type) {
	case *ast.NameExpr:
		return l.flush(&hir.AssignStmt{ID: l.id(), Pos: node.Pos, Name: target.Name, Value: value}), nil
	case *ast.SubscriptExpr:
		recv, err := l.expr(target.Value)
		if err != nil {
			return nil, err
		}
		index, err := l.expr(target.Index)
		if err != nil {
			return nil, err
		}
		return l.flush(&hir.IndexAssignStmt{ID: l.id(), Pos: node.Pos, Recv: recv, Index: index, Value: value}), nil
	case *ast.TupleExpr:
		names := make([]string, len(target.Elems))
		for i, el := range target.Elems {
			name, ok := el.(*ast.NameExpr)
			if !ok {
				return nil, errors.Unsupported("nested destructuring target", el.NodePos())
			}
			names[i] = name.Name
		}
		return l.flush(&hir.TupleAssignStmt{ID: l.id(), Pos: node.Pos, Names: names, Value: value}), nil
	default:
		return nil, errors.Unsupported(fmt.Sprintf("assignment target %T", node.Target), node.Pos)
	}
}

func (l *lowerer) augAssign(node *ast.AugAssignStmt) ([]hir.Stmt, error) {
	value, err := l.expr(node.Value)
	if err != nil {
		return nil, err
	}
	switch target := node.Target.(type) {
	case *ast.NameExpr:
		return l.flush(&hir.AssignStmt{ID: l.id(), Pos: node.Pos, Name: target.Name, Value: value, Aug: node.Op}), nil
	case *ast.SubscriptExpr:
		recv, err := l.expr(target.Value)
		if err != nil {
			return nil, err
		}
		index, err := l.expr(target.Index)
		if err != nil {
			return nil, err
		}
		return l.flush(&hir.IndexAssignStmt{ID: l.id(), Pos: node.Pos, Recv: recv, Index: index, Value: value, Aug: node.Op}), nil
	default:
		return nil, errors.Unsupported(fmt.Sprintf("augmented assignment target %T", node.Target), node.Pos)
	}
}

func (l *lowerer) forStmt(node *ast.ForStmt) ([]hir.Stmt, error) {
	iter, err := l.expr(node.Iter)
	if err != nil {
		return nil, err
	}
	prelude := l.takePending()

	out := &hir.ForStmt{ID: l.id(), Pos: node.Pos, Iter: iter}
	switch target := node.Target.(type) {
	case *ast.NameExpr:
		out.Target = target.Name
	case *ast.TupleExpr:
		// Pairwise iteration: `for k, v in d.items()`.
		if len(target.Elems) != 2 {
			return nil, errors.Unsupported("loop target with more than two names", target.Pos)
		}
		key, ok1 := target.Elems[0].(*ast.NameExpr)
		val, ok2 := target.Elems[1].(*ast.NameExpr)
		if !ok1 || !ok2 {
			return nil, errors.Unsupported("non-name loop target", target.Pos)
		}
		out.KeyTarget = key.Name
		out.Target = val.Name
	default:
		return nil, errors.Unsupported(fmt.Sprintf("loop target %T", node.Target), node.Pos)
	}

	body, err := l.stmts(node.Body)
	if err != nil {
		return nil, err
	}
	out.Body = body
	return append(prelude, out), nil
}

func (l *lowerer) tryStmt(node *ast.TryStmt) ([]hir.Stmt, error) {
	body, err := l.stmts(node.Body)
	if err != nil {
		return nil, err
	}
	out := &hir.TryStmt{ID: l.id(), Pos: node.Pos, Body: body}
	for _, h := range node.Handlers {
		hBody, err := l.stmts(h.Body)
		if err != nil {
			return nil, err
		}
		out.Handlers = append(out.Handlers, &hir.Handler{
			ID:      l.id(),
			Pos:     h.Pos,
			ExcType: h.ExcType,
			BindAs:  h.BindAs,
			Body:    hBody,
		})
	}
	if out.Orelse, err = l.stmts(node.Orelse); err != nil {
		return nil, err
	}
	if out.Final, err = l.stmts(node.Final); err != nil {
		return nil, err
	}
	return []hir.Stmt{out}, nil
}

func (l *lowerer) yieldStmt(node *ast.YieldExpr) ([]hir.Stmt, error) {
	l.generator = true
	if node.Value == nil {
		return nil, errors.Unsupported("bare yield", node.Pos)
	}
	value, err := l.expr(node.Value)
	if err != nil {
		return nil, err
	}
	return l.flush(&hir.YieldStmt{ID: l.id(), Pos: node.Pos, Value: value}), nil
}

// flush prepends any synthesized prelude statements to stmt.
func (l *lowerer) flush(stmt hir.Stmt) []hir.Stmt {
	return append(l.takePending(), stmt)
}

func (l *lowerer) takePending() []hir.Stmt {
	pending := l.pending
	l.pending = nil
	return pending
}
