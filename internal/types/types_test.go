package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumericPromotion(t *testing.T) {
	promoted, ok := Promote(Int, Float)
	assert.True(t, ok)
	assert.Equal(t, Float, promoted)

	promoted, ok = Promote(Int, Int)
	assert.True(t, ok)
	assert.Equal(t, Int, promoted)

	_, ok = Promote(Str, Int)
	assert.False(t, ok, "string/int should not promote")
}

func TestUnifyEqualTypes(t *testing.T) {
	assert.Equal(t, Int, Unify(Int, Int))
	assert.Equal(t, ListType{Elem: Str}, Unify(ListType{Elem: Str}, ListType{Elem: Str}))
}

func TestUnifyMismatchWidensToDynamic(t *testing.T) {
	assert.Equal(t, Type(Dynamic), Unify(Str, Int))
	assert.Equal(t, Type(Dynamic), Unify(BoolType{}, ListType{Elem: Int}))
}

func TestUnifyCollectionElementMismatch(t *testing.T) {
	// Same container shape keeps the container; only the element widens.
	unified := Unify(ListType{Elem: Int}, ListType{Elem: Str})
	assert.Equal(t, ListType{Elem: Dynamic}, unified)
}

func TestUnifyUnknownDefersToOtherSide(t *testing.T) {
	assert.Equal(t, Type(Int), Unify(Unknown, Int))
	assert.Equal(t, Type(Int), Unify(Int, Unknown))
}

func TestStructuralEquality(t *testing.T) {
	a := DictType{Key: Str, Value: ListType{Elem: Int}}
	b := DictType{Key: Str, Value: ListType{Elem: Int}}
	c := DictType{Key: Str, Value: ListType{Elem: Float}}

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
}

func TestTypeStrings(t *testing.T) {
	assert.Equal(t, "dict[str, list[int]]", DictType{Key: Str, Value: ListType{Elem: Int}}.String())
	assert.Equal(t, "tuple[int, str]", TupleType{Elems: []Type{Int, Str}}.String())
	assert.Equal(t, "dynamic", Dynamic.String())
}

func TestVarTypeTableEscapeRate(t *testing.T) {
	vt := NewVarTypeTable()
	vt.Set("a", Int)
	vt.Set("b", Dynamic)
	vt.Set("c", Str)
	vt.Set("d", Dynamic)

	assert.InDelta(t, 0.5, vt.EscapeRate(), 1e-9)
}

func TestVarTypeTableFreeze(t *testing.T) {
	vt := NewVarTypeTable()
	vt.Set("a", Int)
	vt.Freeze()

	assert.Panics(t, func() { vt.Set("b", Str) })
	assert.Equal(t, Type(Dynamic), vt.GetOrDynamic("never_seen"))
}
