package infer

import (
	"pyrite/internal/hir"
	"pyrite/internal/types"
)

func (fi *funcInferrer) expr(e hir.Expr) types.Type {
	switch node := e.(type) {
	case *hir.LitExpr:
		return litType(node)
	case *hir.VarExpr:
		if t, ok := fi.table.Get(node.Name); ok {
			return t
		}
		return types.Unknown
	case *hir.BinaryExpr:
		left := fi.expr(node.Left)
		right := fi.expr(node.Right)
		return binaryResult(node.Op, left, right)
	case *hir.UnaryExpr:
		operand := fi.expr(node.Operand)
		if node.Op == "!" {
			return types.Bool
		}
		if types.IsNumeric(operand) {
			return operand
		}
		return types.Dynamic
	case *hir.CallExpr:
		return fi.call(node)
	case *hir.MethodCallExpr:
		return fi.methodCall(node)
	case *hir.IndexExpr:
		return fi.index(node)
	case *hir.SliceExpr:
		recv := fi.expr(node.Recv)
		if node.Lower != nil {
			fi.expr(node.Lower)
		}
		if node.Upper != nil {
			fi.expr(node.Upper)
		}
		// Slicing preserves the container type: substring of a string,
		// sublist of a list.
		switch recv.Kind() {
		case types.KindStr, types.KindList:
			return recv
		}
		return types.Dynamic
	case *hir.AttrExpr:
		fi.expr(node.Recv)
		// Field access on opaque structs is outside the static model.
		return types.Dynamic
	case *hir.ListExpr:
		return types.ListType{Elem: fi.elemType(node.Elems)}
	case *hir.SetExpr:
		return types.SetType{Elem: fi.elemType(node.Elems)}
	case *hir.TupleExpr:
		elems := make([]types.Type, len(node.Elems))
		for i, el := range node.Elems {
			elems[i] = fi.expr(el)
		}
		return types.TupleType{Elems: elems}
	case *hir.DictExpr:
		var key types.Type = types.Unknown
		var value types.Type = types.Unknown
		for i := range node.Keys {
			key = types.Unify(key, fi.expr(node.Keys[i]))
			value = types.Unify(value, fi.expr(node.Values[i]))
		}
		return types.DictType{Key: key, Value: value}
	}
	return types.Dynamic
}

func litType(node *hir.LitExpr) types.Type {
	switch node.Kind {
	case hir.LitNone:
		return types.None
	case hir.LitBool:
		return types.Bool
	case hir.LitInt:
		return types.Int
	case hir.LitFloat:
		return types.Float
	default:
		return types.Str
	}
}

// elemType unifies literal collection elements: a homogeneous literal
// keeps the shared concrete element type, a genuinely heterogeneous one
// widens to Dynamic and every element gets wrapped at codegen.
func (fi *funcInferrer) elemType(elems []hir.Expr) types.Type {
	var elem types.Type = types.Unknown
	for _, e := range elems {
		elem = types.Unify(elem, fi.expr(e))
	}
	return elem
}

// binaryResult is the operator result-type table shared by expressions
// and augmented assignment.
func binaryResult(op string, left, right types.Type) types.Type {
	switch op {
	case "<", "<=", ">", ">=", "==", "!=", "in", "not in", "&&", "||":
		return types.Bool
	case "/":
		// True division always produces a float, whatever the operands.
		if types.IsDynamic(left) || types.IsDynamic(right) {
			return types.Dynamic
		}
		return types.Float
	case "//":
		if p, ok := types.Promote(left, right); ok {
			return p
		}
		return types.Dynamic
	case "+":
		if left.Kind() == types.KindStr && right.Kind() == types.KindStr {
			return types.Str
		}
		if lt, ok := left.(types.ListType); ok {
			if rt, ok := right.(types.ListType); ok {
				return types.ListType{Elem: types.Unify(lt.Elem, rt.Elem)}
			}
		}
		if p, ok := types.Promote(left, right); ok {
			return p
		}
		return unifyOrDynamic(left, right)
	case "*":
		// Repetition: string or list times an integer.
		if left.Kind() == types.KindStr && right.Kind() == types.KindInt {
			return types.Str
		}
		if right.Kind() == types.KindStr && left.Kind() == types.KindInt {
			return types.Str
		}
		if lt, ok := left.(types.ListType); ok && right.Kind() == types.KindInt {
			return lt
		}
		if rt, ok := right.(types.ListType); ok && left.Kind() == types.KindInt {
			return rt
		}
		if p, ok := types.Promote(left, right); ok {
			return p
		}
		return unifyOrDynamic(left, right)
	case "-", "%", "**":
		if p, ok := types.Promote(left, right); ok {
			return p
		}
		return unifyOrDynamic(left, right)
	}
	return types.Dynamic
}

func unifyOrDynamic(left, right types.Type) types.Type {
	if left.Kind() == types.KindUnknown || right.Kind() == types.KindUnknown {
		return types.Unknown
	}
	return types.Dynamic
}

func (fi *funcInferrer) call(node *hir.CallExpr) types.Type {
	args := make([]types.Type, len(node.Args))
	for i, a := range node.Args {
		args[i] = fi.expr(a)
	}

	if t, ok := builtinResult(node.Func, args); ok {
		return t
	}

	if sym, ok := fi.symbols.Lookup(node.Func); ok {
		if !fi.readonly {
			fi.symbols.observe(node.Func, args)
		}
		if sym.Generator {
			// Generator call sites see an iterable of the yield type.
			yield := sym.Yield
			if yield == nil {
				yield = types.Dynamic
			}
			return types.ListType{Elem: yield}
		}
		return sym.Return
	}
	// Calls into code outside the unit resolve dynamically.
	return types.Dynamic
}

func (fi *funcInferrer) index(node *hir.IndexExpr) types.Type {
	recv := fi.expr(node.Recv)
	index := fi.expr(node.Index)

	switch rt := recv.(type) {
	case types.ListType:
		return rt.Elem
	case types.DictType:
		return rt.Value
	case types.StrType:
		return types.Str
	case types.TupleType:
		if lit, ok := node.Index.(*hir.LitExpr); ok && lit.Kind == hir.LitInt {
			i := int(lit.IntVal)
			if i < 0 {
				i += len(rt.Elems)
			}
			if i >= 0 && i < len(rt.Elems) {
				return rt.Elems[i]
			}
		}
		return types.Dynamic
	}
	_ = index
	return types.Dynamic
}
