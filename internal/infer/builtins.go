package infer

import (
	"pyrite/internal/hir"
	"pyrite/internal/types"
)

// builtinResult types the builtin functions the translator understands.
// The second result is false for anything that is not a builtin.
func builtinResult(name string, args []types.Type) (types.Type, bool) {
	arg := func(i int) types.Type {
		if i < len(args) {
			return args[i]
		}
		return types.Dynamic
	}
	switch name {
	case "len":
		return types.Int, true
	case "int":
		return types.Int, true
	case "float":
		return types.Float, true
	case "str", "repr":
		return types.Str, true
	case "bool":
		return types.Bool, true
	case "abs":
		if types.IsNumeric(arg(0)) {
			return arg(0), true
		}
		return types.Dynamic, true
	case "range":
		return types.ListType{Elem: types.Int}, true
	case "enumerate":
		_, elem := iterationTypes(arg(0))
		return types.ListType{Elem: types.TupleType{Elems: []types.Type{types.Int, elem}}}, true
	case "sorted", "reversed", "list":
		if len(args) == 0 {
			return types.ListType{Elem: types.Dynamic}, true
		}
		_, elem := iterationTypes(arg(0))
		return types.ListType{Elem: elem}, true
	case "set":
		if len(args) == 0 {
			return types.SetType{Elem: types.Unknown}, true
		}
		_, elem := iterationTypes(arg(0))
		return types.SetType{Elem: elem}, true
	case "dict":
		return types.DictType{Key: types.Unknown, Value: types.Unknown}, true
	case "min", "max":
		if len(args) == 1 {
			_, elem := iterationTypes(arg(0))
			return elem, true
		}
		out := arg(0)
		for i := 1; i < len(args); i++ {
			out = types.Unify(out, args[i])
		}
		return out, true
	case "sum":
		_, elem := iterationTypes(arg(0))
		if types.IsNumeric(elem) {
			return elem, true
		}
		return types.Dynamic, true
	case "print":
		return types.None, true
	case "isinstance":
		return types.Bool, true
	}
	return nil, false
}

// methodCall types receiver method calls per receiver kind, and refines
// empty-collection bindings from their first mutation: `xs = []` then
// `xs.append(1)` settles the element type to int.
func (fi *funcInferrer) methodCall(node *hir.MethodCallExpr) types.Type {
	recv := fi.expr(node.Recv)
	args := make([]types.Type, len(node.Args))
	for i, a := range node.Args {
		args[i] = fi.expr(a)
	}
	arg := func(i int) types.Type {
		if i < len(args) {
			return args[i]
		}
		return types.Dynamic
	}

	switch rt := recv.(type) {
	case types.StrType:
		return strMethodResult(node.Method, args)
	case types.ListType:
		switch node.Method {
		case "append", "insert":
			idx := 0
			if node.Method == "insert" {
				idx = 1
			}
			fi.refineVar(node.Recv, types.ListType{Elem: types.Unify(rt.Elem, arg(idx))})
			return types.None
		case "extend", "sort", "reverse", "clear", "remove":
			return types.None
		case "pop":
			return rt.Elem
		case "index", "count":
			return types.Int
		case "copy":
			return rt
		}
	case types.DictType:
		switch node.Method {
		case "get":
			return rt.Value
		case "keys":
			return types.ListType{Elem: rt.Key}
		case "values":
			return types.ListType{Elem: rt.Value}
		case "items":
			return types.ListType{Elem: types.TupleType{Elems: []types.Type{rt.Key, rt.Value}}}
		case "pop":
			return rt.Value
		case "update", "clear":
			return types.None
		case "setdefault":
			return rt.Value
		}
	case types.SetType:
		switch node.Method {
		case "add":
			fi.refineVar(node.Recv, types.SetType{Elem: types.Unify(rt.Elem, arg(0))})
			return types.None
		case "remove", "discard", "clear", "update":
			return types.None
		case "union", "intersection", "difference":
			return rt
		case "pop":
			return rt.Elem
		}
	}
	return types.Dynamic
}

func strMethodResult(method string, args []types.Type) types.Type {
	switch method {
	case "upper", "lower", "strip", "lstrip", "rstrip", "replace", "join", "title", "capitalize", "format":
		return types.Str
	case "split", "splitlines":
		return types.ListType{Elem: types.Str}
	case "startswith", "endswith", "isdigit", "isalpha", "isalnum", "isspace":
		return types.Bool
	case "find", "rfind", "index", "count":
		return types.Int
	}
	return types.Dynamic
}

// refineVar narrows the declared type of a plain variable receiver in
// place; non-variable receivers are left alone.
func (fi *funcInferrer) refineVar(recv hir.Expr, t types.Type) {
	if fi.readonly {
		return
	}
	v, ok := recv.(*hir.VarExpr)
	if !ok {
		return
	}
	fi.table.Set(v.Name, t)
}
