package codegen

import (
	"fmt"
	"strings"

	"pyrite/internal/hir"
	"pyrite/internal/types"
)

// rustType renders a type in owned position.
func rustType(t types.Type) string {
	switch tt := t.(type) {
	case types.IntType:
		return "i64"
	case types.FloatType:
		return "f64"
	case types.BoolType:
		return "bool"
	case types.StrType:
		return "String"
	case types.NoneType:
		return "()"
	case types.ListType:
		return fmt.Sprintf("Vec<%s>", rustType(tt.Elem))
	case types.DictType:
		return fmt.Sprintf("std::collections::HashMap<%s, %s>", rustType(tt.Key), rustType(tt.Value))
	case types.SetType:
		return fmt.Sprintf("std::collections::HashSet<%s>", rustType(tt.Elem))
	case types.TupleType:
		parts := make([]string, len(tt.Elems))
		for i, e := range tt.Elems {
			parts[i] = rustType(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case types.StructType:
		return tt.Name
	case types.GenericType:
		return tt.Name
	}
	return "PyValue"
}

// paramType renders a parameter type under its pass mode. Borrowed
// strings come through as string slices.
func paramType(t types.Type, mode hir.PassMode) string {
	switch mode {
	case hir.ModeRef:
		if t.Kind() == types.KindStr {
			return "&str"
		}
		return "&" + rustType(t)
	case hir.ModeMutRef:
		return "&mut " + rustType(t)
	default:
		return rustType(t)
	}
}

// isCopy reports types the target duplicates implicitly.
func isCopy(t types.Type) bool {
	switch t.Kind() {
	case types.KindInt, types.KindFloat, types.KindBool, types.KindNone:
		return true
	}
	return false
}
