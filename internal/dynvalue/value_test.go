package dynvalue

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCrossKindNumericEquality(t *testing.T) {
	assert.True(t, Equal(Int(1), Float(1.0)))
	assert.True(t, Equal(Bool(true), Int(1)))
	assert.True(t, Equal(Bool(false), Float(0.0)))
	assert.False(t, Equal(Int(1), Str("1")))
}

func TestNaNNeverEqual(t *testing.T) {
	nan := Float(math.NaN())
	assert.False(t, Equal(nan, nan))
}

func TestTotalOrderWithNaN(t *testing.T) {
	values := []Value{Float(math.NaN()), Float(2.5), Int(1), Float(math.Inf(1))}
	sort.Slice(values, func(i, j int) bool { return Compare(values[i], values[j]) < 0 })

	assert.Equal(t, "1", values[0].String())
	assert.Equal(t, "2.5", values[1].String())
	assert.Equal(t, "inf", values[2].String())
	// NaN sorts after every other number so the order is total.
	assert.Equal(t, "nan", values[3].String())
}

func TestMixedKindOrderingIsTotal(t *testing.T) {
	// Incomparable kinds fall back to a stable kind rank instead of panicking.
	assert.Negative(t, Compare(None(), Int(5)))
	assert.Negative(t, Compare(Int(5), Str("a")))
	assert.Negative(t, Compare(Str("z"), List(Int(1))))
	assert.Zero(t, Compare(Str("ab"), Str("ab")))
}

func TestSequenceComparison(t *testing.T) {
	assert.Negative(t, Compare(List(Int(1), Int(2)), List(Int(1), Int(3))))
	assert.Negative(t, Compare(List(Int(1)), List(Int(1), Int(0))))
	assert.Zero(t, Compare(Tuple(Int(1), Str("x")), Tuple(Int(1), Str("x"))))
}

func TestEqualNumericsHashEqually(t *testing.T) {
	assert.Equal(t, Int(1).Hash(), Float(1.0).Hash())
	assert.Equal(t, Int(1).Hash(), Bool(true).Hash())
	assert.NotEqual(t, Int(1).Hash(), Int(2).Hash())
}

func TestSetEqualityIgnoresOrder(t *testing.T) {
	a := Set(Int(1), Int(2), Int(3))
	b := Set(Int(3), Int(1), Int(2))
	assert.True(t, Equal(a, b))
	assert.Zero(t, Compare(a, b))
}

func TestDictEqualityIgnoresInsertionOrder(t *testing.T) {
	a := Dict(Pair{Str("x"), Int(1)}, Pair{Str("y"), Int(2)})
	b := Dict(Pair{Str("y"), Int(2)}, Pair{Str("x"), Int(1)})
	assert.True(t, Equal(a, b))
}

func TestDisplayMatchesSourceConventions(t *testing.T) {
	assert.Equal(t, "None", None().String())
	assert.Equal(t, "True", Bool(true).String())
	assert.Equal(t, "3.0", Float(3).String())
	assert.Equal(t, "[1, 'two', 3.0]", List(Int(1), Str("two"), Float(3)).String())
	assert.Equal(t, "(1,)", Tuple(Int(1)).String())
	assert.Equal(t, "set()", Set().String())
	assert.Equal(t, "{'k': 1}", Dict(Pair{Str("k"), Int(1)}).String())
}

func TestTruthiness(t *testing.T) {
	assert.False(t, None().IsTruthy())
	assert.False(t, Int(0).IsTruthy())
	assert.False(t, Str("").IsTruthy())
	assert.False(t, List().IsTruthy())
	assert.True(t, Float(0.1).IsTruthy())
	assert.True(t, Dict(Pair{Str("k"), None()}).IsTruthy())
}
