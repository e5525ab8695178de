package types

import (
	"fmt"
	"strings"
)

// Type is the result of inference for a single binding or expression.
// Concrete types map one-to-one to Rust types; Dynamic falls back to the
// generated PyValue enum; Unknown is an inference-internal placeholder
// that must never survive past the inference pass.
type Type interface {
	String() string
	Kind() Kind
}

type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindBool
	KindStr
	KindNone
	KindList
	KindDict
	KindSet
	KindTuple
	KindStruct
	KindGeneric
	KindDynamic
	KindUnknown
)

type IntType struct{}

type FloatType struct{}

type BoolType struct{}

type StrType struct{}

// NoneType doubles as the unit type for functions without a return value.
type NoneType struct{}

type ListType struct {
	Elem Type
}

type DictType struct {
	Key   Type
	Value Type
}

type SetType struct {
	Elem Type
}

type TupleType struct {
	Elems []Type
}

// StructType refers to a user-defined class lowered to a Rust struct.
type StructType struct {
	Name string
}

// GenericType is a named type parameter from an annotation directive.
type GenericType struct {
	Name string
}

// DynamicType is the escape hatch: the binding could not be resolved to a
// concrete type and is represented by the PyValue enum in generated code.
type DynamicType struct{}

// UnknownType is a pre-resolution placeholder, also used for recursive
// self-references until the fixed point is reached.
type UnknownType struct{}

func (IntType) Kind() Kind     { return KindInt }
func (FloatType) Kind() Kind   { return KindFloat }
func (BoolType) Kind() Kind    { return KindBool }
func (StrType) Kind() Kind     { return KindStr }
func (NoneType) Kind() Kind    { return KindNone }
func (ListType) Kind() Kind    { return KindList }
func (DictType) Kind() Kind    { return KindDict }
func (SetType) Kind() Kind     { return KindSet }
func (TupleType) Kind() Kind   { return KindTuple }
func (StructType) Kind() Kind  { return KindStruct }
func (GenericType) Kind() Kind { return KindGeneric }
func (DynamicType) Kind() Kind { return KindDynamic }
func (UnknownType) Kind() Kind { return KindUnknown }

func (IntType) String() string   { return "int" }
func (FloatType) String() string { return "float" }
func (BoolType) String() string  { return "bool" }
func (StrType) String() string   { return "str" }
func (NoneType) String() string  { return "None" }

func (t ListType) String() string { return fmt.Sprintf("list[%s]", t.Elem) }
func (t DictType) String() string { return fmt.Sprintf("dict[%s, %s]", t.Key, t.Value) }
func (t SetType) String() string  { return fmt.Sprintf("set[%s]", t.Elem) }

func (t TupleType) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "tuple[" + strings.Join(parts, ", ") + "]"
}

func (t StructType) String() string  { return t.Name }
func (t GenericType) String() string { return t.Name }
func (DynamicType) String() string   { return "dynamic" }
func (UnknownType) String() string   { return "unknown" }

// Singleton instances for the parameterless types.
var (
	Int     = IntType{}
	Float   = FloatType{}
	Bool    = BoolType{}
	Str     = StrType{}
	None    = NoneType{}
	Dynamic = DynamicType{}
	Unknown = UnknownType{}
)

// Equal reports structural equality of two types.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch at := a.(type) {
	case ListType:
		return Equal(at.Elem, b.(ListType).Elem)
	case DictType:
		bt := b.(DictType)
		return Equal(at.Key, bt.Key) && Equal(at.Value, bt.Value)
	case SetType:
		return Equal(at.Elem, b.(SetType).Elem)
	case TupleType:
		bt := b.(TupleType)
		if len(at.Elems) != len(bt.Elems) {
			return false
		}
		for i := range at.Elems {
			if !Equal(at.Elems[i], bt.Elems[i]) {
				return false
			}
		}
		return true
	case StructType:
		return at.Name == b.(StructType).Name
	case GenericType:
		return at.Name == b.(GenericType).Name
	default:
		return true
	}
}

// IsNumeric reports whether the type participates in numeric promotion.
func IsNumeric(t Type) bool {
	return t.Kind() == KindInt || t.Kind() == KindFloat
}

// IsDynamic reports whether the type is the dynamic fallback.
func IsDynamic(t Type) bool {
	return t.Kind() == KindDynamic
}

// Promote applies the numeric promotion rule: mixed int/float becomes
// float, identical numeric kinds stay put. Non-numeric pairs do not
// promote and return false.
func Promote(a, b Type) (Type, bool) {
	if !IsNumeric(a) || !IsNumeric(b) {
		return nil, false
	}
	if a.Kind() == KindFloat || b.Kind() == KindFloat {
		return Float, true
	}
	return Int, true
}

// Unify merges the types of two branches of control flow. Equal types
// unify to themselves, mixed numerics promote, and anything else widens
// to Dynamic rather than failing. Unknown defers to the other side so
// recursive placeholders do not poison the result.
func Unify(a, b Type) Type {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.Kind() == KindUnknown {
		return b
	}
	if b.Kind() == KindUnknown {
		return a
	}
	if Equal(a, b) {
		return a
	}
	if p, ok := Promote(a, b); ok {
		return p
	}
	// Same collection shape with unifiable element types stays concrete.
	switch at := a.(type) {
	case ListType:
		if bt, ok := b.(ListType); ok {
			return ListType{Elem: Unify(at.Elem, bt.Elem)}
		}
	case SetType:
		if bt, ok := b.(SetType); ok {
			return SetType{Elem: Unify(at.Elem, bt.Elem)}
		}
	case DictType:
		if bt, ok := b.(DictType); ok {
			return DictType{Key: Unify(at.Key, bt.Key), Value: Unify(at.Value, bt.Value)}
		}
	}
	return Dynamic
}
