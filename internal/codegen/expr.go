package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"pyrite/internal/dispatch"
	"pyrite/internal/hir"
	"pyrite/internal/types"
)

// Operator precedence levels, lowest first. A sub-expression is
// parenthesized only when its own level is below what its context
// requires.
const (
	precLowest = iota
	precOr
	precAnd
	precCompare
	precAdd
	precMul
	precCast
	precUnary
	precPostfix
)

func nativePrec(op string) int {
	switch op {
	case "||":
		return precOr
	case "&&":
		return precAnd
	case "<", "<=", ">", ">=", "==", "!=":
		return precCompare
	case "+", "-":
		return precAdd
	default:
		return precMul
	}
}

func paren(s string, own, ctx int) string {
	if own < ctx {
		return "(" + s + ")"
	}
	return s
}

func (g *Generator) typeOf(e hir.Expr) types.Type {
	return g.fnInf.TypeOf(e, g.inf.Symbols)
}

// exprAs emits an expression coerced toward the type its context
// stores: concrete values entering a dynamic slot get wrapped in the
// proxy, string literals entering owned slots get materialized.
func (g *Generator) exprAs(e hir.Expr, want types.Type, ctx int) string {
	if want == nil {
		return g.expr(e, ctx)
	}
	got := g.typeOf(e)
	if want.Kind() == types.KindDynamic && got.Kind() != types.KindDynamic {
		return fmt.Sprintf("PyValue::from(%s)", g.expr(e, precLowest))
	}
	if want.Kind() == types.KindStr {
		if lit, ok := e.(*hir.LitExpr); ok && lit.Kind == hir.LitStr {
			return strconv.Quote(lit.StrVal) + ".to_string()"
		}
	}
	if want.Kind() == types.KindFloat && got.Kind() == types.KindInt {
		return paren(g.expr(e, precCast)+" as f64", precCast, ctx)
	}
	return g.expr(e, ctx)
}

func (g *Generator) expr(e hir.Expr, ctx int) string {
	switch node := e.(type) {
	case *hir.LitExpr:
		return g.literal(node)
	case *hir.VarExpr:
		if g.fnBorrow.Clones[node.ID] {
			return node.Name + ".clone()"
		}
		return node.Name
	case *hir.BinaryExpr:
		return g.binary(node, ctx)
	case *hir.UnaryExpr:
		return g.unary(node, ctx)
	case *hir.CallExpr:
		return g.callExpr(node, ctx)
	case *hir.MethodCallExpr:
		return g.methodCall(node, ctx)
	case *hir.IndexExpr:
		return g.indexExpr(node, ctx)
	case *hir.SliceExpr:
		return g.sliceExpr(node)
	case *hir.AttrExpr:
		return fmt.Sprintf("%s.%s", g.expr(node.Recv, precPostfix), node.Attr)
	case *hir.ListExpr:
		return g.listLit(node)
	case *hir.TupleExpr:
		parts := make([]string, len(node.Elems))
		for i, el := range node.Elems {
			parts[i] = g.expr(el, precLowest)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *hir.SetExpr:
		return g.setLit(node)
	case *hir.DictExpr:
		return g.dictLit(node)
	}
	return "()"
}

func (g *Generator) literal(node *hir.LitExpr) string {
	switch node.Kind {
	case hir.LitNone:
		return "()"
	case hir.LitBool:
		if node.BoolVal {
			return "true"
		}
		return "false"
	case hir.LitInt:
		return strconv.FormatInt(node.IntVal, 10)
	case hir.LitFloat:
		s := strconv.FormatFloat(node.FloatVal, 'g', -1, 64)
		if !strings.ContainsAny(s, ".e") {
			s += ".0"
		}
		return s
	default:
		return strconv.Quote(node.StrVal)
	}
}

func (g *Generator) binary(node *hir.BinaryExpr, ctx int) string {
	lt := g.typeOf(node.Left)
	rt := g.typeOf(node.Right)
	bin := dispatch.BinaryOp(node.Op, lt, rt)

	switch bin.Kind {
	case dispatch.BinFloatDiv:
		s := fmt.Sprintf("%s as f64 / %s as f64", g.expr(node.Left, precCast), g.expr(node.Right, precCast))
		return paren(s, precMul, ctx)
	case dispatch.BinFloorDiv:
		// The truncating quotient is pulled one step down whenever the
		// remainder is nonzero and the operand signs differ.
		s := fmt.Sprintf("{ let __a = %s; let __b = %s; let __q = __a / __b; let __r = __a %% __b; if __r != 0 && (__r < 0) != (__b < 0) { __q - 1 } else { __q } }",
			g.expr(node.Left, precLowest), g.expr(node.Right, precLowest))
		return paren(s, precLowest, ctx)
	case dispatch.BinFloatFloor:
		return fmt.Sprintf("(%s / %s).floor()",
			g.exprAs(node.Left, types.Float, precMul), g.exprAs(node.Right, types.Float, precMul+1))
	case dispatch.BinMethod:
		recv, arg := node.Left, node.Right
		if bin.Swap {
			recv, arg = arg, recv
		}
		recvs := g.expr(recv, precPostfix)
		if bin.Wrap {
			recvs = g.exprAs(recv, types.Dynamic, precPostfix)
		}
		if bin.Method == "powf" && g.typeOf(recv).Kind() == types.KindInt {
			recvs = "(" + g.expr(recv, precCast) + " as f64)"
		}
		args := g.expr(arg, precLowest)
		if bin.Wrap {
			args = g.exprAs(arg, types.Dynamic, precLowest)
		}
		if bin.ArgCast != "" {
			args = g.expr(arg, precCast) + " as " + bin.ArgCast
		}
		return fmt.Sprintf("%s.%s(%s)", recvs, bin.Method, args)
	case dispatch.BinContains:
		s := g.containsExpr(node, bin, rt)
		if bin.Negate {
			return paren("!"+paren(s, precPostfix, precUnary), precUnary, ctx)
		}
		return s
	default:
		if node.Op == "&&" || node.Op == "||" {
			own := nativePrec(node.Op)
			s := fmt.Sprintf("%s %s %s", g.condAt(node.Left, own), node.Op, g.condAt(node.Right, own+1))
			return paren(s, own, ctx)
		}
		own := nativePrec(bin.Op)
		left := g.expr(node.Left, own)
		right := g.exprAs(node.Right, lt, own+1)
		if types.IsNumeric(lt) && types.IsNumeric(rt) && lt.Kind() != rt.Kind() {
			// Mixed numerics promote to float on both sides.
			left = g.exprAs(node.Left, types.Float, own)
			right = g.exprAs(node.Right, types.Float, own+1)
		}
		s := fmt.Sprintf("%s %s %s", left, bin.Op, right)
		return paren(s, own, ctx)
	}
}

// containsExpr renders a membership test. The probe keeps its existing
// reference level: re-wrapping an already borrowed operand produces a
// reference-of-reference bound the target rejects.
func (g *Generator) containsExpr(node *hir.BinaryExpr, bin dispatch.Binary, containerT types.Type) string {
	container := g.expr(node.Right, precPostfix)
	probe := g.expr(node.Left, precLowest)

	if containerT.Kind() == types.KindStr {
		if v, ok := node.Left.(*hir.VarExpr); ok && !g.isRefBinding(v.Name) {
			// Owned strings become patterns through a slice view; a
			// borrowed parameter already is one and passes unchanged.
			probe = v.Name + ".as_str()"
		}
		return fmt.Sprintf("%s.contains(%s)", container, probe)
	}
	if bin.ArgRef && !g.isRefExpr(node.Left) {
		probe = "&" + probe
	}
	return fmt.Sprintf("%s.%s(%s)", container, bin.Method, probe)
}

// isRefExpr reports whether the emitted form of an expression is
// already a reference.
func (g *Generator) isRefExpr(e hir.Expr) bool {
	v, ok := e.(*hir.VarExpr)
	return ok && g.isRefBinding(v.Name)
}

func (g *Generator) unary(node *hir.UnaryExpr, ctx int) string {
	if node.Op == "!" {
		t := g.typeOf(node.Operand)
		if t.Kind() != types.KindBool {
			return paren("!"+paren(g.cond(node.Operand), precLowest, precUnary), precUnary, ctx)
		}
	}
	return paren(node.Op+g.expr(node.Operand, precUnary), precUnary, ctx)
}

func (g *Generator) indexExpr(node *hir.IndexExpr, ctx int) string {
	recvT := g.typeOf(node.Recv)
	recv := g.expr(node.Recv, precPostfix)
	switch rt := recvT.(type) {
	case types.ListType:
		idx := g.seqIndex(recv, node.Index)
		if g.fnHints.BoundsChecking {
			return fmt.Sprintf("%s.get(%s).cloned().expect(\"index out of range\")", recv, idx)
		}
		s := fmt.Sprintf("%s[%s]", recv, idx)
		if !isCopy(rt.Elem) {
			s += ".clone()"
		}
		return s
	case types.DictType:
		key := g.exprAs(node.Index, rt.Key, precLowest)
		return fmt.Sprintf("%s.get(&%s).cloned().unwrap()", recv, key)
	case types.StrType:
		return g.strIndex(recv, node.Index)
	case types.TupleType:
		if lit, ok := node.Index.(*hir.LitExpr); ok && lit.Kind == hir.LitInt {
			i := lit.IntVal
			if i < 0 {
				i += int64(len(rt.Elems))
			}
			return fmt.Sprintf("%s.%d", recv, i)
		}
	}
	// Dynamic receivers index through the proxy, which handles the
	// signed index at runtime.
	return fmt.Sprintf("%s.get_item(%s)", recv, g.expr(node.Index, precLowest))
}

// strIndex renders character access through the character iterator;
// strings are never indexed as byte sequences.
func (g *Generator) strIndex(recv string, index hir.Expr) string {
	if neg, ok := negLiteral(index); ok {
		if neg == 1 {
			return fmt.Sprintf("%s.chars().last().unwrap().to_string()", recv)
		}
		return fmt.Sprintf("%s.chars().rev().nth(%d).unwrap().to_string()", recv, neg-1)
	}
	if lit, ok := index.(*hir.LitExpr); ok && lit.Kind == hir.LitInt {
		return fmt.Sprintf("%s.chars().nth(%d).unwrap().to_string()", recv, lit.IntVal)
	}
	return fmt.Sprintf("%s.chars().nth(%s as usize).unwrap().to_string()", recv, g.expr(index, precCast))
}

// negLiteral recognizes a statically negative integer index in either
// the folded or unary form.
func negLiteral(e hir.Expr) (int64, bool) {
	if lit, ok := e.(*hir.LitExpr); ok && lit.Kind == hir.LitInt && lit.IntVal < 0 {
		return -lit.IntVal, true
	}
	if un, ok := e.(*hir.UnaryExpr); ok && un.Op == "-" {
		if lit, ok := un.Operand.(*hir.LitExpr); ok && lit.Kind == hir.LitInt {
			return lit.IntVal, true
		}
	}
	return 0, false
}

func (g *Generator) sliceExpr(node *hir.SliceExpr) string {
	recvT := g.typeOf(node.Recv)
	recv := g.expr(node.Recv, precPostfix)
	lo := "0"
	if node.Lower != nil {
		lo = g.seqIndex(recv, node.Lower)
	}
	var span string
	if node.Upper != nil {
		span = fmt.Sprintf("%s..%s", lo, g.seqIndex(recv, node.Upper))
	} else {
		span = lo + ".."
	}
	if recvT.Kind() == types.KindStr {
		// Substring view, materialized; never a byte-wise copy loop.
		return fmt.Sprintf("%s[%s].to_string()", recv, span)
	}
	return fmt.Sprintf("%s[%s].to_vec()", recv, span)
}

func (g *Generator) listLit(node *hir.ListExpr) string {
	elem := g.literalElemType(node, node.Elems)
	parts := make([]string, len(node.Elems))
	for i, el := range node.Elems {
		parts[i] = g.exprAs(el, elem, precLowest)
	}
	return "vec![" + strings.Join(parts, ", ") + "]"
}

func (g *Generator) setLit(node *hir.SetExpr) string {
	t, _ := g.typeOf(node).(types.SetType)
	parts := make([]string, len(node.Elems))
	for i, el := range node.Elems {
		parts[i] = g.exprAs(el, t.Elem, precLowest)
	}
	return fmt.Sprintf("std::collections::HashSet::from([%s])", strings.Join(parts, ", "))
}

func (g *Generator) dictLit(node *hir.DictExpr) string {
	t, _ := g.typeOf(node).(types.DictType)
	parts := make([]string, len(node.Keys))
	for i := range node.Keys {
		parts[i] = fmt.Sprintf("(%s, %s)",
			g.exprAs(node.Keys[i], t.Key, precLowest),
			g.exprAs(node.Values[i], t.Value, precLowest))
	}
	return fmt.Sprintf("std::collections::HashMap::from([%s])", strings.Join(parts, ", "))
}

// literalElemType gets the unified element type of a literal so each
// element of a heterogeneous literal is wrapped consistently.
func (g *Generator) literalElemType(whole hir.Expr, elems []hir.Expr) types.Type {
	if lt, ok := g.typeOf(whole).(types.ListType); ok {
		return lt.Elem
	}
	return nil
}

// cond renders an expression in boolean position, applying truthiness
// coercion by static type.
func (g *Generator) cond(e hir.Expr) string {
	return g.condAt(e, precLowest)
}

func (g *Generator) condAt(e hir.Expr, ctx int) string {
	t := g.typeOf(e)
	switch t.Kind() {
	case types.KindBool:
		return g.expr(e, ctx)
	case types.KindInt:
		return paren(g.expr(e, precCompare+1)+" != 0", precCompare, ctx)
	case types.KindFloat:
		return paren(g.expr(e, precCompare+1)+" != 0.0", precCompare, ctx)
	case types.KindStr, types.KindList, types.KindDict, types.KindSet:
		return paren("!"+g.expr(e, precPostfix)+".is_empty()", precUnary, ctx)
	default:
		return g.expr(e, precPostfix) + ".is_truthy()"
	}
}
