// Package dispatch maps source operators and methods onto target
// operations from the statically known operand types. Regular cases go
// through native operator emission, backed by the trait impls the
// dynamic proxy type carries; the irregular cases each get explicit,
// type-discriminated handling because a uniform call would be wrong or
// would not compile.
package dispatch

import (
	"pyrite/internal/types"
)

// BinKind selects the emission shape of a binary operation.
type BinKind int

const (
	// BinNative emits left <op> right. The proxy type implements the
	// arithmetic and ordering traits, so dynamic operands use the same
	// shape.
	BinNative BinKind = iota
	// BinFloatDiv emits (left as f64) / (right as f64); true division
	// always carries floating semantics.
	BinFloatDiv
	// BinFloorDiv emits integer floor division as a block that adjusts
	// the truncating quotient toward negative infinity.
	BinFloorDiv
	// BinFloatFloor emits (left / right).floor() with float operands.
	BinFloatFloor
	// BinMethod emits left.method(right), with optional casts.
	BinMethod
	// BinContains emits a membership test dispatched on the container.
	BinContains
)

// Binary is the resolved form of one binary operator application.
type Binary struct {
	Kind   BinKind
	Op     string // operator text for BinNative
	Method string // method name for BinMethod and BinContains
	// ArgCast is a cast suffix applied to the right operand ("usize",
	// "u32"), empty for none.
	ArgCast string
	// ArgRef wraps the probe argument in a reference. Strings pass the
	// pattern unwrapped; a probe that is already a reference must also
	// be passed unchanged or the bound becomes reference-of-reference.
	ArgRef bool
	// Negate wraps the whole expression in a logical not.
	Negate bool
	// Swap emits right.method(left); string repetition with the
	// integer on the left needs the receiver and argument exchanged.
	Swap bool
	// Wrap coerces both operands into the dynamic proxy; the method
	// lives on the proxy type, not on any native operand.
	Wrap bool
}

// BinaryOp resolves an operator against its operand types.
func BinaryOp(op string, left, right types.Type) Binary {
	switch op {
	case "in", "not in":
		return contains(op == "not in", right)
	case "/":
		if left.Kind() == types.KindInt && right.Kind() == types.KindInt {
			return Binary{Kind: BinFloatDiv}
		}
		return Binary{Kind: BinNative, Op: "/"}
	case "//":
		if left.Kind() == types.KindInt && right.Kind() == types.KindInt {
			// Floor division rounds toward negative infinity, unlike
			// the target's truncating division and div_euclid, which
			// both disagree with it for a negative divisor.
			return Binary{Kind: BinFloorDiv}
		}
		if types.IsNumeric(left) && types.IsNumeric(right) {
			return Binary{Kind: BinFloatFloor}
		}
		return Binary{Kind: BinMethod, Method: "py_floordiv", Wrap: true}
	case "**":
		if left.Kind() == types.KindInt && right.Kind() == types.KindInt {
			return Binary{Kind: BinMethod, Method: "pow", ArgCast: "u32"}
		}
		if types.IsNumeric(left) && types.IsNumeric(right) {
			b := Binary{Kind: BinMethod, Method: "powf"}
			if right.Kind() == types.KindInt {
				b.ArgCast = "f64"
			}
			return b
		}
		return Binary{Kind: BinMethod, Method: "py_pow", Wrap: true}
	case "*":
		// Repetition maps to a repeat operation, never numeric
		// multiplication, in either operand order.
		if isSequence(left) && right.Kind() == types.KindInt {
			return Binary{Kind: BinMethod, Method: "repeat", ArgCast: "usize"}
		}
		if isSequence(right) && left.Kind() == types.KindInt {
			return Binary{Kind: BinMethod, Method: "repeat", ArgCast: "usize", Swap: true}
		}
		return Binary{Kind: BinNative, Op: "*"}
	default:
		return Binary{Kind: BinNative, Op: op}
	}
}

func isSequence(t types.Type) bool {
	return t.Kind() == types.KindStr || t.Kind() == types.KindList
}

// contains dispatches the membership test on the container kind:
// substring check for strings, key existence for keyed collections,
// element test for everything else.
func contains(negate bool, container types.Type) Binary {
	switch container.Kind() {
	case types.KindStr:
		return Binary{Kind: BinContains, Method: "contains", Negate: negate}
	case types.KindDict:
		return Binary{Kind: BinContains, Method: "contains_key", ArgRef: true, Negate: negate}
	default:
		return Binary{Kind: BinContains, Method: "contains", ArgRef: true, Negate: negate}
	}
}

// IterShape selects the iteration form for a for-loop iterable.
type IterShape int

const (
	// IterElems iterates elements by reference.
	IterElems IterShape = iota
	// IterChars iterates string characters; strings are never treated
	// as indexable byte sequences.
	IterChars
	// IterPairs iterates key/value pairs of a keyed collection.
	IterPairs
	// IterKeys iterates only the keys of a keyed collection.
	IterKeys
)

// Iteration resolves the loop form for an iterable of the given type.
// wantPair is true when the loop destructures two targets.
func Iteration(iter types.Type, wantPair bool) IterShape {
	switch iter.Kind() {
	case types.KindStr:
		return IterChars
	case types.KindDict:
		if wantPair {
			return IterPairs
		}
		return IterKeys
	case types.KindList:
		if wantPair {
			return IterPairs
		}
		return IterElems
	default:
		return IterElems
	}
}
