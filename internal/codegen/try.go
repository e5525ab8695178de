package codegen

import (
	"pyrite/internal/errors"
	"pyrite/internal/hir"
)

// emitTry renders a guarded block. The scope analysis already decided
// each raise site's fate, so the handlers never need runtime dispatch:
// an absorbed conversion becomes a match with the handler body inlined
// in the error arm, an absorbed raise becomes a local abort, and
// everything else flows through unchanged.
func (g *Generator) emitTry(node *hir.TryStmt) {
	for _, s := range node.Body {
		if assign, ok := s.(*hir.AssignStmt); ok && assign.Aug == "" {
			if call, ok := assign.Value.(*hir.CallExpr); ok && g.fnFlow.Absorbed[call.ID] {
				g.emitGuardedAssign(assign, call, node.Handlers)
				continue
			}
		}
		g.emitStmt(s)
	}
	g.emitStmts(node.Orelse)
	g.emitStmts(node.Final)
}

// emitGuardedAssign renders `x = int(s)` under a matching handler: the
// target is declared up front so the handler body may rebind it or do
// anything else, then the conversion result selects the arm.
func (g *Generator) emitGuardedAssign(assign *hir.AssignStmt, call *hir.CallExpr, handlers []*hir.Handler) {
	t, ok := g.fnInf.Table.Get(assign.Name)
	if !ok {
		g.fail(errors.Invariant(errors.ErrorMissingBinding, assign.Pos,
			"binding %s missing from frozen type table", assign.Name))
		return
	}
	if !g.declared[assign.Name] {
		g.writeLine("let mut %s: %s = Default::default();", assign.Name, rustType(t))
		g.declared[assign.Name] = true
	}

	handler := matchingHandler(handlers, raisedBy(call.Func))

	g.writeLine("match %s {", g.conversionResult(call))
	g.indent++
	g.writeLine("Ok(__v) => {")
	g.indent++
	g.writeLine("%s = __v;", assign.Name)
	g.indent--
	g.writeLine("}")
	errPat := "_"
	if handler != nil && handler.BindAs != "" {
		errPat = "__e"
	}
	g.writeLine("Err(%s) => {", errPat)
	g.indent++
	if handler != nil {
		if handler.BindAs != "" {
			g.writeLine("let %s = %s::new(__e.to_string());", handler.BindAs, raisedBy(call.Func))
			g.declared[handler.BindAs] = true
		}
		g.emitStmts(handler.Body)
	}
	g.indent--
	g.writeLine("}")
	g.indent--
	g.writeLine("}")
}

func raisedBy(builtin string) string {
	switch builtin {
	case "int", "float":
		return "ValueError"
	}
	return "RuntimeError"
}

func matchingHandler(handlers []*hir.Handler, excType string) *hir.Handler {
	for _, h := range handlers {
		if h.ExcType == "" || h.ExcType == excType {
			return h
		}
	}
	return nil
}

// conversionResult renders the fallible form of a conversion builtin.
func (g *Generator) conversionResult(call *hir.CallExpr) string {
	arg := g.expr(call.Args[0], precPostfix)
	switch call.Func {
	case "int":
		return arg + ".trim().parse::<i64>()"
	default:
		return arg + ".trim().parse::<f64>()"
	}
}
