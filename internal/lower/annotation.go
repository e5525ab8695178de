package lower

import (
	"pyrite/internal/ast"
	"pyrite/internal/errors"
	"pyrite/internal/types"
)

// AnnotationType maps a source type annotation onto the type model.
// Unknown annotation names become struct references rather than errors:
// the source may annotate with user-defined classes the unit does not
// define, and inference treats those opaquely.
func AnnotationType(ann *ast.TypeAnnotation) (types.Type, error) {
	switch ann.Name {
	case "int":
		return types.Int, nil
	case "float":
		return types.Float, nil
	case "bool":
		return types.Bool, nil
	case "str":
		return types.Str, nil
	case "None":
		return types.None, nil
	case "Any":
		return types.Dynamic, nil
	case "list", "List":
		if len(ann.Args) == 0 {
			return types.ListType{Elem: types.Dynamic}, nil
		}
		elem, err := AnnotationType(ann.Args[0])
		if err != nil {
			return nil, err
		}
		return types.ListType{Elem: elem}, nil
	case "set", "Set":
		if len(ann.Args) == 0 {
			return types.SetType{Elem: types.Dynamic}, nil
		}
		elem, err := AnnotationType(ann.Args[0])
		if err != nil {
			return nil, err
		}
		return types.SetType{Elem: elem}, nil
	case "dict", "Dict":
		if len(ann.Args) != 2 {
			return types.DictType{Key: types.Dynamic, Value: types.Dynamic}, nil
		}
		key, err := AnnotationType(ann.Args[0])
		if err != nil {
			return nil, err
		}
		value, err := AnnotationType(ann.Args[1])
		if err != nil {
			return nil, err
		}
		return types.DictType{Key: key, Value: value}, nil
	case "tuple", "Tuple":
		if len(ann.Args) == 0 {
			return nil, errors.Unsupported("unparameterized tuple annotation", ann.Pos)
		}
		elems := make([]types.Type, len(ann.Args))
		for i, arg := range ann.Args {
			elem, err := AnnotationType(arg)
			if err != nil {
				return nil, err
			}
			elems[i] = elem
		}
		return types.TupleType{Elems: elems}, nil
	case "Optional":
		// The value-or-absent contract maps onto the dynamic proxy; a
		// dedicated Option lowering is not modeled.
		return types.Dynamic, nil
	default:
		return types.StructType{Name: ann.Name}, nil
	}
}
