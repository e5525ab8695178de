package borrow

import (
	"pyrite/internal/hir"
	"pyrite/internal/types"
)

// insertingMethods consume their argument into the receiver, an owned
// context for a reference-iterated element.
var insertingMethods = map[string]bool{
	"append": true, "add": true, "insert": true, "update": true, "setdefault": true,
}

// clonePass finds loop variables bound by reference iteration that are
// later consumed in an owned context. The consumption site gets marked
// for explicit duplication; copyable scalars are exempt because the
// target copies them implicitly.
func (a *analyzer) clonePass() {
	a.cloneStmts(a.fn.Body, make(map[string]bool))
}

func (a *analyzer) cloneStmts(stmts []hir.Stmt, refVars map[string]bool) {
	for _, s := range stmts {
		switch node := s.(type) {
		case *hir.ForStmt:
			// Iterating an existing binding borrows it; literal and
			// call iterables are owned temporaries.
			_, borrowed := node.Iter.(*hir.VarExpr)
			added := []string{}
			if borrowed {
				if a.refTarget(node.Target) {
					refVars[node.Target] = true
					added = append(added, node.Target)
				}
				if node.KeyTarget != "" && a.refTarget(node.KeyTarget) {
					refVars[node.KeyTarget] = true
					added = append(added, node.KeyTarget)
				}
			}
			a.cloneStmts(node.Body, refVars)
			for _, name := range added {
				delete(refVars, name)
			}
		case *hir.IfStmt:
			a.cloneStmts(node.Body, refVars)
			a.cloneStmts(node.Orelse, refVars)
		case *hir.WhileStmt:
			a.cloneStmts(node.Body, refVars)
		case *hir.TryStmt:
			a.cloneStmts(node.Body, refVars)
			for _, h := range node.Handlers {
				a.cloneStmts(h.Body, refVars)
			}
			a.cloneStmts(node.Orelse, refVars)
			a.cloneStmts(node.Final, refVars)
		case *hir.IndexAssignStmt:
			a.markClone(node.Index, refVars)
			a.markClone(node.Value, refVars)
		case *hir.AssignStmt:
			a.cloneExpr(node.Value, refVars)
		case *hir.ExprStmt:
			a.cloneExpr(node.Value, refVars)
		case *hir.ReturnStmt:
			if node.Value != nil {
				a.cloneExpr(node.Value, refVars)
			}
		case *hir.YieldStmt:
			a.cloneExpr(node.Value, refVars)
		}
	}
}

func (a *analyzer) cloneExpr(e hir.Expr, refVars map[string]bool) {
	switch node := e.(type) {
	case *hir.MethodCallExpr:
		if insertingMethods[node.Method] {
			for _, arg := range node.Args {
				a.markClone(arg, refVars)
			}
		}
		a.cloneExpr(node.Recv, refVars)
	case *hir.ListExpr:
		for _, el := range node.Elems {
			a.markClone(el, refVars)
		}
	case *hir.SetExpr:
		for _, el := range node.Elems {
			a.markClone(el, refVars)
		}
	case *hir.TupleExpr:
		for _, el := range node.Elems {
			a.markClone(el, refVars)
		}
	case *hir.DictExpr:
		for i := range node.Keys {
			a.markClone(node.Keys[i], refVars)
			a.markClone(node.Values[i], refVars)
		}
	}
}

func (a *analyzer) markClone(e hir.Expr, refVars map[string]bool) {
	v, ok := e.(*hir.VarExpr)
	if !ok || !refVars[v.Name] {
		return
	}
	a.fb.Clones[v.ID] = true
}

// refTarget reports whether a loop variable of this name needs
// duplication tracking at all: copyable scalars never do.
func (a *analyzer) refTarget(name string) bool {
	if a.inf == nil {
		return true
	}
	t, ok := a.inf.Table.Get(name)
	if !ok {
		return true
	}
	switch t.Kind() {
	case types.KindInt, types.KindFloat, types.KindBool, types.KindNone:
		return false
	}
	return true
}
