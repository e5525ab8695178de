package codegen

import (
	"fmt"
	"strings"

	"pyrite/internal/dispatch"
	"pyrite/internal/hir"
	"pyrite/internal/types"
)

func (g *Generator) callExpr(node *hir.CallExpr, ctx int) string {
	if s, ok := g.builtinCall(node, ctx); ok {
		return s
	}

	sym, known := g.inf.Symbols.Lookup(node.Func)
	args := make([]string, len(node.Args))
	for i, a := range node.Args {
		args[i] = g.callArg(node.Func, i, a)
	}
	s := fmt.Sprintf("%s(%s)", node.Func, strings.Join(args, ", "))
	if known && sym.Generator {
		// Generator call sites produce an iterator; consumers that
		// need a collection collect it.
		s += ".collect::<Vec<_>>()"
	}
	if g.fnFlow.Propagating[node.ID] {
		s += "?"
	}
	return s
}

// callArg renders one argument under the callee's parameter mode:
// shared slots borrow, mutable slots borrow mutably, owned non-copy
// slots receive a duplicate so the caller's binding stays live.
func (g *Generator) callArg(callee string, i int, arg hir.Expr) string {
	fb, ok := g.owners.Funcs[callee]
	if !ok {
		return g.expr(arg, precLowest)
	}
	params := fb.Params()
	if i >= len(params) {
		return g.expr(arg, precLowest)
	}
	mode := fb.Mode(params[i])
	argT := g.typeOf(arg)
	switch mode {
	case hir.ModeMutRef:
		return "&mut " + g.expr(arg, precUnary)
	case hir.ModeRef:
		if g.isRefExpr(arg) {
			return g.expr(arg, precLowest)
		}
		return "&" + g.expr(arg, precUnary)
	default:
		if v, ok := arg.(*hir.VarExpr); ok && !isCopy(argT) {
			return g.expr(v, precPostfix) + ".clone()"
		}
		return g.expr(arg, precLowest)
	}
}

func (g *Generator) builtinCall(node *hir.CallExpr, ctx int) (string, bool) {
	arg := func(i int) hir.Expr { return node.Args[i] }
	argT := func(i int) types.Type {
		if i < len(node.Args) {
			return g.typeOf(node.Args[i])
		}
		return types.Dynamic
	}

	switch node.Func {
	case "len":
		if argT(0).Kind() == types.KindStr {
			return fmt.Sprintf("%s.chars().count() as i64", g.expr(arg(0), precPostfix)), true
		}
		return fmt.Sprintf("%s.len() as i64", g.expr(arg(0), precPostfix)), true
	case "int":
		return g.intConversion(node, ctx), true
	case "float":
		return g.floatConversion(node, ctx), true
	case "str":
		return fmt.Sprintf("%s.to_string()", g.expr(arg(0), precPostfix)), true
	case "bool":
		return g.cond(arg(0)), true
	case "abs":
		return fmt.Sprintf("%s.abs()", g.expr(arg(0), precPostfix)), true
	case "min", "max":
		return g.minMax(node), true
	case "sum":
		elemT := "i64"
		if lt, ok := argT(0).(types.ListType); ok {
			elemT = rustType(lt.Elem)
		}
		return fmt.Sprintf("%s.iter().cloned().sum::<%s>()", g.expr(arg(0), precPostfix), elemT), true
	case "sorted":
		return fmt.Sprintf("{ let mut __s = %s.to_vec(); __s.sort_by(|a, b| a.partial_cmp(b).unwrap()); __s }",
			g.expr(arg(0), precPostfix)), true
	case "reversed":
		return fmt.Sprintf("%s.iter().rev().cloned().collect::<Vec<_>>()", g.expr(arg(0), precPostfix)), true
	case "range":
		return g.rangeExpr(node), true
	case "print":
		return g.printExpr(node), true
	}
	return "", false
}

func (g *Generator) intConversion(node *hir.CallExpr, ctx int) string {
	src := node.Args[0]
	switch g.typeOf(src).Kind() {
	case types.KindInt:
		return g.expr(src, ctx)
	case types.KindFloat, types.KindBool:
		return paren(g.expr(src, precCast)+" as i64", precCast, ctx)
	case types.KindStr:
		return g.parseConversion(node, "i64")
	default:
		return fmt.Sprintf("%s.as_int()", g.expr(src, precPostfix))
	}
}

func (g *Generator) floatConversion(node *hir.CallExpr, ctx int) string {
	src := node.Args[0]
	switch g.typeOf(src).Kind() {
	case types.KindFloat:
		return g.expr(src, ctx)
	case types.KindInt, types.KindBool:
		return paren(g.expr(src, precCast)+" as f64", precCast, ctx)
	case types.KindStr:
		return g.parseConversion(node, "f64")
	default:
		return fmt.Sprintf("%s.as_float()", g.expr(src, precPostfix))
	}
}

// parseConversion renders a string conversion in propagating position:
// the parse failure maps onto the function's error contract. Absorbed
// conversions never reach here, the guarded-assign path owns them.
func (g *Generator) parseConversion(node *hir.CallExpr, target string) string {
	src := g.expr(node.Args[0], precPostfix)
	errExpr := "ValueError::new(\"invalid literal\")"
	if g.boxedErr {
		errExpr = "Box::new(ValueError::new(\"invalid literal\")) as Box<dyn std::error::Error>"
	}
	s := fmt.Sprintf("%s.trim().parse::<%s>().map_err(|_| %s)", src, target, errExpr)
	if g.fnFlow.Propagating[node.ID] {
		s += "?"
	} else {
		s += ".unwrap()"
	}
	return s
}

func (g *Generator) minMax(node *hir.CallExpr) string {
	name := node.Func
	if len(node.Args) == 1 {
		cmp := "min"
		if name == "max" {
			cmp = "max"
		}
		return fmt.Sprintf("%s.iter().cloned().%s_by(|a, b| a.partial_cmp(b).unwrap()).unwrap()",
			g.expr(node.Args[0], precPostfix), cmp)
	}
	out := g.expr(node.Args[0], precPostfix)
	for _, a := range node.Args[1:] {
		out = fmt.Sprintf("%s.%s(%s)", out, name, g.expr(a, precLowest))
	}
	return out
}

func (g *Generator) rangeExpr(node *hir.CallExpr) string {
	switch len(node.Args) {
	case 1:
		return fmt.Sprintf("(0..%s).collect::<Vec<i64>>()", g.expr(node.Args[0], precCast))
	case 2:
		return fmt.Sprintf("(%s..%s).collect::<Vec<i64>>()",
			g.expr(node.Args[0], precCast), g.expr(node.Args[1], precCast))
	default:
		return fmt.Sprintf("(%s..%s).step_by(%s as usize).collect::<Vec<i64>>()",
			g.expr(node.Args[0], precCast), g.expr(node.Args[1], precCast), g.expr(node.Args[2], precCast))
	}
}

func (g *Generator) printExpr(node *hir.CallExpr) string {
	if len(node.Args) == 0 {
		return "println!()"
	}
	holes := make([]string, len(node.Args))
	args := make([]string, len(node.Args))
	for i, a := range node.Args {
		holes[i] = "{}"
		args[i] = g.printArg(a)
	}
	return fmt.Sprintf("println!(\"%s\", %s)", strings.Join(holes, " "), strings.Join(args, ", "))
}

func (g *Generator) methodCall(node *hir.MethodCallExpr, ctx int) string {
	recvT := g.typeOf(node.Recv)
	recv := g.expr(node.Recv, precPostfix)

	// Irregular cases first; the table covers the regular rest.
	switch {
	case recvT.Kind() == types.KindStr && node.Method == "join":
		// sep.join(xs) inverts: the sequence is the receiver.
		return fmt.Sprintf("%s.join(%s)", g.expr(node.Args[0], precPostfix), g.patternArg(node.Recv))
	case recvT.Kind() == types.KindList && node.Method == "index":
		return fmt.Sprintf("%s.iter().position(|__x| *__x == %s).unwrap() as i64",
			recv, g.expr(node.Args[0], precLowest))
	case recvT.Kind() == types.KindList && node.Method == "count":
		return fmt.Sprintf("%s.iter().filter(|__x| **__x == %s).count() as i64",
			recv, g.expr(node.Args[0], precLowest))
	case recvT.Kind() == types.KindDict && node.Method == "get" && len(node.Args) == 2:
		return fmt.Sprintf("%s.get(&%s).cloned().unwrap_or(%s)",
			recv, g.expr(node.Args[0], precLowest), g.expr(node.Args[1], precLowest))
	}

	rw := dispatch.Method(recvT, node.Method)
	args := make([]string, len(node.Args))
	for i, a := range node.Args {
		switch {
		case rw.ArgRef && !g.isRefExpr(a):
			args[i] = "&" + g.expr(a, precUnary)
		case rw.ArgCast != "" && g.typeOf(a).Kind() == types.KindInt:
			args[i] = g.expr(a, precCast) + " as " + rw.ArgCast
		case recvT.Kind() == types.KindStr:
			args[i] = g.patternArg(a)
		default:
			args[i] = g.methodArg(recvT, a)
		}
	}
	return fmt.Sprintf("%s.%s(%s)%s", recv, rw.Name, strings.Join(args, ", "), rw.Suffix)
}

// patternArg renders a string-method argument as a pattern: literals
// stay raw, owned strings pass a slice view, borrowed params pass
// unchanged.
func (g *Generator) patternArg(e hir.Expr) string {
	if lit, ok := e.(*hir.LitExpr); ok && lit.Kind == hir.LitStr {
		return g.literal(lit)
	}
	if g.isRefExpr(e) {
		return g.expr(e, precLowest)
	}
	if g.typeOf(e).Kind() == types.KindStr {
		return g.expr(e, precPostfix) + ".as_str()"
	}
	return g.expr(e, precLowest)
}

// methodArg coerces collection-mutator arguments to the element type.
func (g *Generator) methodArg(recvT types.Type, a hir.Expr) string {
	switch rt := recvT.(type) {
	case types.ListType:
		return g.exprAs(a, rt.Elem, precLowest)
	case types.SetType:
		return g.exprAs(a, rt.Elem, precLowest)
	}
	return g.expr(a, precLowest)
}
