package vm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstants(t *testing.T) {
	assert.True(t, Undefined.IsUndefined())
	assert.True(t, Null.IsNull())
	assert.True(t, Undefined.IsNullish() && Null.IsNullish())
	assert.True(t, True.AsBoolean())
	assert.False(t, False.AsBoolean())
	assert.True(t, Empty.IsEmpty())
	assert.True(t, math.IsNaN(NaN.AsFloat()))
	assert.True(t, ObjectValue(nil).IsNull())
}

func TestTypeName(t *testing.T) {
	e := newTestEngine(t)
	fn := e.function(nil, false, returning(Undefined))
	tests := []struct {
		v    Value
		want string
	}{
		{Undefined, "undefined"},
		{Null, "object"},
		{True, "boolean"},
		{NumberValue(1.5), "number"},
		{NewString("s"), "string"},
		{SymbolValue(NewSymbol("x")), "symbol"},
		{ObjectValue(e.object()), "object"},
		{ObjectValue(fn), "function"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.v.TypeName(), "typeof %s", tt.v)
	}
}

func TestSameValue(t *testing.T) {
	negZero := NumberValue(math.Copysign(0, -1))
	posZero := NumberValue(0)
	sym := NewSymbol("s")

	assert.True(t, NaN.Is(NaN))
	assert.False(t, negZero.Is(posZero))
	assert.True(t, negZero.SameValueZero(posZero))
	assert.True(t, NaN.SameValueZero(NaN))
	assert.True(t, negZero.StrictlyEquals(posZero))
	assert.False(t, NaN.StrictlyEquals(NaN))

	assert.True(t, SymbolValue(sym).Is(SymbolValue(sym)))
	assert.False(t, SymbolValue(sym).Is(SymbolValue(NewSymbol("s"))))
	assert.True(t, NewString("a").Is(NewString("a")))
	assert.False(t, NewString("1").Is(NumberValue(1)))

	o := ObjectCreate(nil)
	assert.True(t, ObjectValue(o).Is(ObjectValue(o)))
	assert.False(t, ObjectValue(o).Is(ObjectValue(ObjectCreate(nil))))
}

func TestNumberToString(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1, "1"},
		{-1.5, "-1.5"},
		{0.000001, "0.000001"},
		{1e-7, "1e-7"},
		{123456789, "123456789"},
		{1e21, "1e+21"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
		{math.NaN(), "NaN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NumberToString(tt.in))
	}
}

func TestStringToNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"  42  ", 42},
		{"-1.5", -1.5},
		{"0x1F", 31},
		{"0b101", 5},
		{"0o17", 15},
		{"Infinity", math.Inf(1)},
		{"-Infinity", math.Inf(-1)},
		{"1e3", 1000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StringToNumber(tt.in), "%q", tt.in)
	}
	for _, bad := range []string{"abc", "inf", "0x1p4", "1_000", "0xZZ"} {
		assert.True(t, math.IsNaN(StringToNumber(bad)), "%q", bad)
	}
}

func TestToBoolean(t *testing.T) {
	falsy := []Value{Undefined, Null, False, NumberValue(0), NaN, NewString("")}
	for _, v := range falsy {
		assert.False(t, ToBoolean(v), "%s", v)
	}
	truthy := []Value{True, NumberValue(-1), NewString("0"), SymbolValue(NewSymbol("")), ObjectValue(ObjectCreate(nil))}
	for _, v := range truthy {
		assert.True(t, ToBoolean(v), "%s", v)
	}
}

func TestToObjectBoxesPrimitives(t *testing.T) {
	e := newTestEngine(t)
	a := e.agent

	boxed := Must(ToObject(a, NewString("hi"))).AsObject()
	assert.Same(t, e.realm.Intrinsic(IntrinsicStringPrototype), boxed.GetPrototypeOf())
	assert.Equal(t, "String", boxed.Class())
	assert.Equal(t, "h", Must(Get(a, boxed, IndexKey(0))).AsString())
	assert.Equal(t, 2.0, Must(Get(a, boxed, key("length"))).AsFloat())

	num := Must(ToObject(a, NumberValue(7))).AsObject()
	assert.True(t, num.Slot("NumberData").Is(NumberValue(7)))

	assert.Equal(t, "Cannot convert undefined to object", e.throwMessage(ToObject(a, Undefined), "TypeError"))
	assert.Equal(t, "Cannot convert null to object", e.throwMessage(ToObject(a, Null), "TypeError"))
}

func TestToPrimitiveUsesValueOfThenToString(t *testing.T) {
	e := newTestEngine(t)
	a := e.agent
	o := e.object()
	CreateDataProperty(a, o, key("valueOf"), ObjectValue(e.function(nil, false, returning(NumberValue(3)))))
	CreateDataProperty(a, o, key("toString"), ObjectValue(e.function(nil, false, returning(NewString("str")))))

	assert.Equal(t, 3.0, Must(ToNumber(a, ObjectValue(o))).AsFloat())
	assert.Equal(t, "str", Must(ToString(a, ObjectValue(o))).AsString())

	bare := ObjectCreate(nil)
	e.throwMessage(ToPrimitive(a, ObjectValue(bare), HintDefault), "TypeError")
}

func TestToPropertyKey(t *testing.T) {
	e := newTestEngine(t)
	k, c := ToPropertyKey(e.agent, NumberValue(1))
	require.False(t, c.IsAbrupt())
	assert.Equal(t, IndexKey(1), k)

	sym := NewSymbol("k")
	k, c = ToPropertyKey(e.agent, SymbolValue(sym))
	require.False(t, c.IsAbrupt())
	assert.True(t, k.IsSymbol())
	assert.Same(t, sym, k.Symbol())
}

func TestIsLooselyEqual(t *testing.T) {
	e := newTestEngine(t)
	a := e.agent
	tests := []struct {
		x, y Value
		want bool
	}{
		{Undefined, Null, true},
		{NumberValue(1), NewString("1"), true},
		{True, NumberValue(1), true},
		{NewString(""), NumberValue(0), true},
		{Null, NumberValue(0), false},
		{NaN, NaN, false},
	}
	for _, tt := range tests {
		got := Must(IsLooselyEqual(a, tt.x, tt.y))
		assert.Equal(t, tt.want, got.AsBoolean(), "%s == %s", tt.x, tt.y)
	}
}

func TestArrayIndexKeys(t *testing.T) {
	tests := []struct {
		in  string
		idx int
		ok  bool
	}{
		{"0", 0, true},
		{"42", 42, true},
		{"4294967294", 4294967294, true},
		{"4294967295", 0, false},
		{"01", 0, false},
		{"-1", 0, false},
		{"1.5", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		idx, ok := NewStringKey(tt.in).ArrayIndex()
		assert.Equal(t, tt.ok, ok, "%q", tt.in)
		if tt.ok {
			assert.Equal(t, tt.idx, idx)
		}
	}
	_, ok := NewSymbolKey(SymbolIterator).ArrayIndex()
	assert.False(t, ok)
}
