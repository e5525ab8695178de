package dynvalue

import (
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Value is the dynamic fallback value domain: a tagged union mirroring
// the source language's primitive and collection kinds. Inference uses
// it to classify and fold literals, and its comparison/hash/display
// contracts define the behavior the generated PyValue enum must match.
type Value struct {
	kind  Kind
	i     int64
	f     float64
	b     bool
	s     string
	elems []Value // list, tuple, set members
	pairs []Pair  // dict entries in insertion order
}

type Pair struct {
	Key   Value
	Value Value
}

type Kind int

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindStr
	KindList
	KindTuple
	KindSet
	KindDict
)

func None() Value              { return Value{kind: KindNone} }
func Bool(b bool) Value        { return Value{kind: KindBool, b: b} }
func Int(i int64) Value        { return Value{kind: KindInt, i: i} }
func Float(f float64) Value    { return Value{kind: KindFloat, f: f} }
func Str(s string) Value       { return Value{kind: KindStr, s: s} }
func List(vs ...Value) Value   { return Value{kind: KindList, elems: vs} }
func Tuple(vs ...Value) Value  { return Value{kind: KindTuple, elems: vs} }
func Set(vs ...Value) Value    { return Value{kind: KindSet, elems: vs} }
func Dict(ps ...Pair) Value    { return Value{kind: KindDict, pairs: ps} }

func (v Value) Kind() Kind { return v.kind }

// IsTruthy follows source truthiness: zero numerics, empty strings and
// empty collections are false, everything else is true.
func (v Value) IsTruthy() bool {
	switch v.kind {
	case KindNone:
		return false
	case KindBool:
		return v.b
	case KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	case KindStr:
		return v.s != ""
	case KindDict:
		return len(v.pairs) > 0
	default:
		return len(v.elems) > 0
	}
}

// numeric returns the value as a float plus whether it is numeric at
// all. Booleans count as 0/1, matching the source language.
func (v Value) numeric() (float64, bool) {
	switch v.kind {
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	}
	return 0, false
}

// Equal matches source equality: cross-kind numeric comparison works
// (1 == 1.0 == True), collections compare element-wise, dicts compare
// as unordered key/value multisets.
func Equal(a, b Value) bool {
	if an, aok := a.numeric(); aok {
		if bn, bok := b.numeric(); bok {
			// NaN never equals anything, itself included.
			return an == bn
		}
		return false
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNone:
		return true
	case KindStr:
		return a.s == b.s
	case KindDict:
		if len(a.pairs) != len(b.pairs) {
			return false
		}
		for _, p := range a.pairs {
			bv, ok := dictGet(b, p.Key)
			if !ok || !Equal(p.Value, bv) {
				return false
			}
		}
		return true
	case KindSet:
		if len(a.elems) != len(b.elems) {
			return false
		}
		for _, e := range a.elems {
			if !setContains(b, e) {
				return false
			}
		}
		return true
	default: // list, tuple
		if len(a.elems) != len(b.elems) {
			return false
		}
		for i := range a.elems {
			if !Equal(a.elems[i], b.elems[i]) {
				return false
			}
		}
		return true
	}
}

func dictGet(d Value, key Value) (Value, bool) {
	for _, p := range d.pairs {
		if Equal(p.Key, key) {
			return p.Value, true
		}
	}
	return Value{}, false
}

func setContains(s Value, v Value) bool {
	for _, e := range s.elems {
		if Equal(e, v) {
			return true
		}
	}
	return false
}

// kindRank orders values of incomparable kinds so Compare is total.
func (v Value) kindRank() int {
	switch v.kind {
	case KindNone:
		return 0
	case KindBool, KindInt, KindFloat:
		return 1
	case KindStr:
		return 2
	case KindList:
		return 3
	case KindTuple:
		return 4
	case KindSet:
		return 5
	default:
		return 6
	}
}

// Compare is a total order over all values. Numerics compare by value
// with NaN ordered after every other number (so sorting a float list
// with NaN terminates deterministically); strings lexicographically;
// sequences element-wise; mixed kinds by kind rank.
func Compare(a, b Value) int {
	if an, aok := a.numeric(); aok {
		if bn, bok := b.numeric(); bok {
			return compareFloatTotal(an, bn)
		}
	}
	if ar, br := a.kindRank(), b.kindRank(); ar != br {
		if ar < br {
			return -1
		}
		return 1
	}
	switch a.kind {
	case KindNone:
		return 0
	case KindStr:
		return strings.Compare(a.s, b.s)
	case KindDict:
		return compareDicts(a, b)
	case KindSet:
		return compareSorted(a.elems, b.elems)
	default:
		return compareSeq(a.elems, b.elems)
	}
}

func compareFloatTotal(a, b float64) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareSeq(a, b []Value) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

func compareSorted(a, b []Value) int {
	as := append([]Value(nil), a...)
	bs := append([]Value(nil), b...)
	sort.Slice(as, func(i, j int) bool { return Compare(as[i], as[j]) < 0 })
	sort.Slice(bs, func(i, j int) bool { return Compare(bs[i], bs[j]) < 0 })
	return compareSeq(as, bs)
}

func compareDicts(a, b Value) int {
	ak := make([]Value, len(a.pairs))
	bk := make([]Value, len(b.pairs))
	for i, p := range a.pairs {
		ak[i] = p.Key
	}
	for i, p := range b.pairs {
		bk[i] = p.Key
	}
	if c := compareSorted(ak, bk); c != 0 {
		return c
	}
	sort.Slice(ak, func(i, j int) bool { return Compare(ak[i], ak[j]) < 0 })
	for _, k := range ak {
		av, _ := dictGet(a, k)
		bv, _ := dictGet(b, k)
		if c := Compare(av, bv); c != 0 {
			return c
		}
	}
	return 0
}

// Hash is consistent with Equal: equal numerics hash equally regardless
// of kind (hash(1) == hash(1.0) == hash(True)). Floats hash by bits,
// integral floats by their integer value.
func (v Value) Hash() uint64 {
	h := fnv.New64a()
	v.hashInto(h)
	return h.Sum64()
}

type hasher interface {
	Write(p []byte) (int, error)
}

func (v Value) hashInto(h hasher) {
	writeByte := func(b byte) { h.Write([]byte{b}) }
	switch v.kind {
	case KindNone:
		writeByte(0)
	case KindBool, KindInt, KindFloat:
		n, _ := v.numeric()
		if !math.IsNaN(n) && n == math.Trunc(n) {
			writeByte(1)
			fmt.Fprintf(h, "%d", int64(n))
		} else {
			writeByte(2)
			fmt.Fprintf(h, "%d", math.Float64bits(n))
		}
	case KindStr:
		writeByte(3)
		h.Write([]byte(v.s))
	case KindSet:
		writeByte(4)
		// Order-independent: fold element hashes with XOR.
		var acc uint64
		for _, e := range v.elems {
			acc ^= e.Hash()
		}
		fmt.Fprintf(h, "%d", acc)
	case KindDict:
		writeByte(5)
		var acc uint64
		for _, p := range v.pairs {
			acc ^= p.Key.Hash() ^ (p.Value.Hash() * 31)
		}
		fmt.Fprintf(h, "%d", acc)
	default:
		writeByte(6)
		for _, e := range v.elems {
			e.hashInto(h)
		}
	}
}

// String renders the value the way the source language displays it.
func (v Value) String() string {
	switch v.kind {
	case KindNone:
		return "None"
	case KindBool:
		if v.b {
			return "True"
		}
		return "False"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindStr:
		return v.s
	case KindList:
		return "[" + joinRepr(v.elems, ", ") + "]"
	case KindTuple:
		if len(v.elems) == 1 {
			return "(" + reprOf(v.elems[0]) + ",)"
		}
		return "(" + joinRepr(v.elems, ", ") + ")"
	case KindSet:
		if len(v.elems) == 0 {
			return "set()"
		}
		return "{" + joinRepr(v.elems, ", ") + "}"
	default:
		parts := make([]string, len(v.pairs))
		for i, p := range v.pairs {
			parts[i] = reprOf(p.Key) + ": " + reprOf(p.Value)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
}

func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return "nan"
	}
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e16 {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// reprOf is the nested-display form: strings gain quotes inside
// collections, everything else displays as usual.
func reprOf(v Value) string {
	if v.kind == KindStr {
		return "'" + v.s + "'"
	}
	return v.String()
}

func joinRepr(vs []Value, sep string) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = reprOf(v)
	}
	return strings.Join(parts, sep)
}
