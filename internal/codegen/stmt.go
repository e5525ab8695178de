package codegen

import (
	"fmt"
	"strings"

	"pyrite/internal/dispatch"
	"pyrite/internal/errors"
	"pyrite/internal/hir"
	"pyrite/internal/types"
)

func (g *Generator) emitStmts(stmts []hir.Stmt) {
	for _, s := range stmts {
		g.emitStmt(s)
	}
}

func (g *Generator) emitStmt(s hir.Stmt) {
	switch node := s.(type) {
	case *hir.AssignStmt:
		g.emitAssign(node)
	case *hir.IndexAssignStmt:
		g.emitIndexAssign(node)
	case *hir.TupleAssignStmt:
		g.emitTupleAssign(node)
	case *hir.ReturnStmt:
		g.emitReturn(node)
	case *hir.IfStmt:
		g.emitIf(node)
	case *hir.WhileStmt:
		g.writeLine("while %s {", g.cond(node.Cond))
		g.indent++
		g.emitStmts(node.Body)
		g.indent--
		g.writeLine("}")
	case *hir.ForStmt:
		g.emitFor(node)
	case *hir.TryStmt:
		g.emitTry(node)
	case *hir.RaiseStmt:
		g.emitRaise(node)
	case *hir.ExprStmt:
		g.emitExprStmt(node)
	case *hir.YieldStmt:
		g.writeLine("__items.push(%s);", g.exprAs(node.Value, g.fnInf.Yield, precLowest))
	case *hir.PassStmt:
	case *hir.BreakStmt:
		g.writeLine("break;")
	case *hir.ContinueStmt:
		g.writeLine("continue;")
	}
}

func (g *Generator) emitAssign(node *hir.AssignStmt) {
	if node.Aug != "" {
		g.emitAugAssign(node)
		return
	}
	t, ok := g.fnInf.Table.Get(node.Name)
	if !ok {
		g.fail(errors.Invariant(errors.ErrorMissingBinding, node.Pos,
			"binding %s missing from frozen type table", node.Name))
		return
	}
	value := g.exprAs(node.Value, t, precLowest)
	if g.declared[node.Name] {
		g.writeLine("%s = %s;", node.Name, value)
		return
	}
	g.declared[node.Name] = true
	mut := ""
	if g.fnBorrow.Mutable[node.Name] {
		mut = "mut "
	}
	g.writeLine("let %s%s: %s = %s;", mut, node.Name, rustType(t), value)
}

func (g *Generator) emitAugAssign(node *hir.AssignStmt) {
	t, _ := g.fnInf.Table.Get(node.Name)
	vt := g.typeOf(node.Value)
	switch node.Aug {
	case "+", "-", "*", "%":
		if t != nil && types.IsNumeric(t) && types.IsNumeric(vt) {
			g.writeLine("%s %s= %s;", node.Name, node.Aug, g.expr(node.Value, precAdd))
			return
		}
		if node.Aug == "+" && t != nil && t.Kind() == types.KindStr {
			g.writeLine("%s.push_str(&%s);", node.Name, g.expr(node.Value, precPostfix))
			return
		}
	}
	full := &hir.BinaryExpr{
		ID: node.ID, Pos: node.Pos, Op: node.Aug,
		Left:  &hir.VarExpr{ID: node.ID, Pos: node.Pos, Name: node.Name},
		Right: node.Value,
	}
	g.writeLine("%s = %s;", node.Name, g.expr(full, precLowest))
}

func (g *Generator) emitTupleAssign(node *hir.TupleAssignStmt) {
	value := g.expr(node.Value, precLowest)
	if g.allDeclared(node.Names) {
		g.writeLine("(%s) = (%s);", strings.Join(node.Names, ", "), value)
		return
	}
	parts := make([]string, len(node.Names))
	for i, name := range node.Names {
		g.declared[name] = true
		if g.fnBorrow.Mutable[name] {
			parts[i] = "mut " + name
		} else {
			parts[i] = name
		}
	}
	g.writeLine("let (%s) = %s;", strings.Join(parts, ", "), value)
}

func (g *Generator) allDeclared(names []string) bool {
	for _, n := range names {
		if !g.declared[n] {
			return false
		}
	}
	return true
}

func (g *Generator) emitReturn(node *hir.ReturnStmt) {
	if node.Value == nil {
		if g.fnFlow.Fallible {
			g.writeLine("return Ok(());")
		} else {
			g.writeLine("return;")
		}
		return
	}
	value := g.exprAs(node.Value, g.fnInf.Return, precLowest)
	if g.fnFlow.Fallible {
		g.writeLine("return Ok(%s);", value)
	} else {
		g.writeLine("return %s;", value)
	}
}

func (g *Generator) emitIf(node *hir.IfStmt) {
	g.writeLine("if %s {", g.cond(node.Cond))
	g.indent++
	g.emitStmts(node.Body)
	g.indent--
	orelse := node.Orelse
	for len(orelse) == 1 {
		elif, ok := orelse[0].(*hir.IfStmt)
		if !ok {
			break
		}
		g.writeLine("} else if %s {", g.cond(elif.Cond))
		g.indent++
		g.emitStmts(elif.Body)
		g.indent--
		orelse = elif.Orelse
	}
	if len(orelse) > 0 {
		g.writeLine("} else {")
		g.indent++
		g.emitStmts(orelse)
		g.indent--
	}
	g.writeLine("}")
}

func (g *Generator) emitFor(node *hir.ForStmt) {
	if call, ok := node.Iter.(*hir.CallExpr); ok && call.Func == "range" {
		g.emitRangeFor(node, call)
		return
	}
	if call, ok := node.Iter.(*hir.CallExpr); ok && call.Func == "enumerate" && len(call.Args) == 1 {
		g.writeLine("for (%s, %s) in %s.iter().enumerate() {", node.KeyTarget, node.Target, g.expr(call.Args[0], precPostfix))
		g.indent++
		g.emitStmts(node.Body)
		g.indent--
		g.writeLine("}")
		return
	}

	iterT := g.typeOf(node.Iter)
	shape := dispatch.Iteration(iterT, node.KeyTarget != "")
	switch shape {
	case dispatch.IterChars:
		g.writeLine("for %s in %s.chars() {", node.Target, g.expr(node.Iter, precPostfix))
	case dispatch.IterPairs:
		g.writeLine("for (%s, %s) in %s {", node.KeyTarget, node.Target, g.iterable(node.Iter))
	case dispatch.IterKeys:
		g.writeLine("for %s in %s.keys() {", node.Target, g.expr(node.Iter, precPostfix))
	default:
		g.writeLine("for %s in %s {", node.Target, g.iterable(node.Iter))
	}
	g.indent++
	g.emitStmts(node.Body)
	g.indent--
	g.writeLine("}")
}

// iterable renders a for-loop source. An existing binding is borrowed
// unless it already is a reference; call results and literals are
// owned temporaries consumed in place.
func (g *Generator) iterable(e hir.Expr) string {
	if v, ok := e.(*hir.VarExpr); ok {
		if g.isRefBinding(v.Name) {
			return v.Name
		}
		return "&" + v.Name
	}
	return g.expr(e, precUnary)
}

// isRefBinding reports whether a name is already a reference in the
// emitted code, i.e. a shared or mutable reference parameter.
func (g *Generator) isRefBinding(name string) bool {
	for _, p := range g.fn.Params {
		if p.Name == name {
			return g.fnBorrow.Mode(name) != hir.ModeOwned
		}
	}
	return false
}

// emitRangeFor renders range loops as native ranges. A bound that
// contains nested indexing is hoisted into a preceding binding first,
// because a block expression inside a range bound does not parse.
func (g *Generator) emitRangeFor(node *hir.ForStmt, call *hir.CallExpr) {
	bounds := make([]string, len(call.Args))
	for i, arg := range call.Args {
		if containsIndexing(arg) && !isSimple(arg) {
			tmp := g.tmp()
			g.writeLine("let %s = %s;", tmp, g.expr(arg, precLowest))
			bounds[i] = tmp
		} else {
			bounds[i] = g.expr(arg, precCast)
		}
	}
	var span string
	switch len(bounds) {
	case 1:
		span = "0.." + bounds[0]
	case 2:
		span = fmt.Sprintf("%s..%s", bounds[0], bounds[1])
	default:
		span = fmt.Sprintf("(%s..%s).step_by(%s as usize)", bounds[0], bounds[1], bounds[2])
	}
	g.writeLine("for %s in %s {", node.Target, span)
	g.indent++
	g.emitStmts(node.Body)
	g.indent--
	g.writeLine("}")
}

func containsIndexing(e hir.Expr) bool {
	switch node := e.(type) {
	case *hir.IndexExpr:
		return true
	case *hir.BinaryExpr:
		return containsIndexing(node.Left) || containsIndexing(node.Right)
	case *hir.UnaryExpr:
		return containsIndexing(node.Operand)
	case *hir.CallExpr:
		for _, a := range node.Args {
			if containsIndexing(a) {
				return true
			}
		}
	case *hir.MethodCallExpr:
		if containsIndexing(node.Recv) {
			return true
		}
		for _, a := range node.Args {
			if containsIndexing(a) {
				return true
			}
		}
	}
	return false
}

func isSimple(e hir.Expr) bool {
	switch e.(type) {
	case *hir.VarExpr, *hir.LitExpr:
		return true
	}
	return false
}

func (g *Generator) emitIndexAssign(node *hir.IndexAssignStmt) {
	recvT := g.typeOf(node.Recv)
	recv := g.expr(node.Recv, precPostfix)
	switch rt := recvT.(type) {
	case types.DictType:
		key := g.exprAs(node.Index, rt.Key, precLowest)
		value := g.exprAs(node.Value, rt.Value, precLowest)
		if node.Aug == "" {
			// Keyed upsert: the key passes through unmodified.
			g.writeLine("%s.insert(%s, %s);", recv, key, value)
		} else {
			g.writeLine("*%s.get_mut(&%s).unwrap() %s= %s;", recv, key, node.Aug, value)
		}
	case types.ListType:
		idx := g.seqIndex(recv, node.Index)
		value := g.exprAs(node.Value, rt.Elem, precLowest)
		if node.Aug == "" {
			g.writeLine("%s[%s] = %s;", recv, idx, value)
		} else {
			g.writeLine("%s[%s] %s= %s;", recv, idx, node.Aug, value)
		}
	default:
		key := g.expr(node.Index, precLowest)
		value := g.expr(node.Value, precLowest)
		g.writeLine("%s.set_item(%s, %s);", recv, key, value)
	}
}

// seqIndex renders a sequence subscript as the unsigned index type.
// A negative literal becomes explicit bounds arithmetic on the length.
// A compound index stays signed in a local and branches on its sign at
// runtime; only a plain counter variable is cast directly, since a
// subtraction can go negative where the source reads from the end.
func (g *Generator) seqIndex(recv string, index hir.Expr) string {
	if lit, ok := index.(*hir.LitExpr); ok && lit.Kind == hir.LitInt {
		if lit.IntVal < 0 {
			return fmt.Sprintf("%s.len().saturating_sub(%d)", recv, -lit.IntVal)
		}
		return fmt.Sprintf("%d", lit.IntVal)
	}
	if un, ok := index.(*hir.UnaryExpr); ok && un.Op == "-" {
		if lit, ok := un.Operand.(*hir.LitExpr); ok && lit.Kind == hir.LitInt {
			return fmt.Sprintf("%s.len().saturating_sub(%d)", recv, lit.IntVal)
		}
	}
	if _, ok := index.(*hir.VarExpr); ok {
		return g.expr(index, precCast) + " as usize"
	}
	return fmt.Sprintf("({ let __i: i64 = %s; if __i < 0 { %s.len().saturating_sub(__i.unsigned_abs() as usize) } else { __i as usize } })",
		g.expr(index, precLowest), recv)
}

func (g *Generator) emitRaise(node *hir.RaiseStmt) {
	if g.fnFlow.Absorbed[node.ID] {
		// Caught by an enclosing handler: a local, non-propagating
		// abort that never widens the signature.
		if node.Msg != nil {
			g.writeLine("panic!(\"%s: {}\", %s);", node.ExcType, g.expr(node.Msg, precLowest))
		} else {
			g.writeLine("panic!(\"%s\");", node.ExcType)
		}
		return
	}
	if !g.fnFlow.Fallible {
		g.fail(errors.Invariant(errors.ErrorUnresolvedScope, node.Pos,
			"raise of %s has no resolvable scope in infallible %s", node.ExcType, g.fn.Name))
		return
	}
	msg := "\"\""
	if node.Msg != nil {
		msg = g.expr(node.Msg, precLowest)
	}
	if g.boxedErr {
		g.writeLine("return Err(Box::new(%s::new(%s)));", node.ExcType, msg)
	} else {
		g.writeLine("return Err(%s::new(%s));", node.ExcType, msg)
	}
}

func (g *Generator) emitExprStmt(node *hir.ExprStmt) {
	if call, ok := node.Value.(*hir.CallExpr); ok && call.Func == "print" {
		g.emitPrint(call)
		return
	}
	g.writeLine("%s;", g.expr(node.Value, precLowest))
}

func (g *Generator) emitPrint(call *hir.CallExpr) {
	if len(call.Args) == 0 {
		g.writeLine("println!();")
		return
	}
	holes := make([]string, len(call.Args))
	args := make([]string, len(call.Args))
	for i, a := range call.Args {
		holes[i] = "{}"
		args[i] = g.printArg(a)
	}
	g.writeLine("println!(\"%s\", %s);", strings.Join(holes, " "), strings.Join(args, ", "))
}

// printArg avoids the Display gap for collections: debug-format what
// has no display form.
func (g *Generator) printArg(e hir.Expr) string {
	t := g.typeOf(e)
	switch t.Kind() {
	case types.KindList, types.KindDict, types.KindSet, types.KindTuple:
		return fmt.Sprintf("format!(\"{:?}\", %s)", g.expr(e, precLowest))
	}
	return g.expr(e, precLowest)
}
