package vm

import (
	"math"
	"strconv"
	"strings"
)

// PreferredType is the hint passed to ToPrimitive.
type PreferredType uint8

const (
	HintDefault PreferredType = iota
	HintNumber
	HintString
)

func (h PreferredType) String() string {
	switch h {
	case HintNumber:
		return "number"
	case HintString:
		return "string"
	default:
		return "default"
	}
}

func ToBoolean(v Value) bool {
	switch v.typ {
	case TypeUndefined, TypeNull:
		return false
	case TypeBoolean:
		return v.num != 0
	case TypeNumber:
		return !(v.num == 0 || math.IsNaN(v.num))
	case TypeString:
		return v.str != ""
	default:
		return true
	}
}

// ToPrimitive converts objects through @@toPrimitive or valueOf/toString.
func ToPrimitive(a *Agent, v Value, hint PreferredType) Completion {
	if !v.IsObject() {
		return NormalCompletion(v)
	}
	exotic := GetMethod(a, v, NewSymbolKey(SymbolToPrimitive))
	if exotic.IsAbrupt() {
		return exotic
	}
	if !exotic.Value.IsUndefined() {
		result := Call(a, exotic.Value, v, []Value{NewString(hint.String())})
		if result.IsAbrupt() {
			return result
		}
		if result.Value.IsObject() {
			return a.Throw(ErrorKindTypeError, MsgCannotConvertToPrimitive)
		}
		return result
	}
	if hint == HintDefault {
		hint = HintNumber
	}
	return OrdinaryToPrimitive(a, v.AsObject(), hint)
}

func OrdinaryToPrimitive(a *Agent, o *Object, hint PreferredType) Completion {
	methods := [2]string{"valueOf", "toString"}
	if hint == HintString {
		methods = [2]string{"toString", "valueOf"}
	}
	for _, name := range methods {
		method := Get(a, o, NewStringKey(name))
		if method.IsAbrupt() {
			return method
		}
		if method.Value.IsCallable() {
			result := Call(a, method.Value, ObjectValue(o), nil)
			if result.IsAbrupt() {
				return result
			}
			if !result.Value.IsObject() {
				return result
			}
		}
	}
	return a.Throw(ErrorKindTypeError, MsgCannotConvertToPrimitive)
}

// ToNumber returns a number-valued completion.
func ToNumber(a *Agent, v Value) Completion {
	switch v.typ {
	case TypeUndefined:
		return NormalCompletion(NaN)
	case TypeNull:
		return NormalCompletion(NumberValue(0))
	case TypeBoolean:
		return NormalCompletion(NumberValue(v.num))
	case TypeNumber:
		return NormalCompletion(v)
	case TypeString:
		return NormalCompletion(NumberValue(StringToNumber(v.str)))
	case TypeSymbol:
		return a.Throw(ErrorKindTypeError, MsgCannotConvertSymbol, "number")
	}
	prim := ToPrimitive(a, v, HintNumber)
	if prim.IsAbrupt() {
		return prim
	}
	return ToNumber(a, prim.Value)
}

// StringToNumber parses a StringNumericLiteral; anything else is NaN.
func StringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}
	// ParseFloat accepts spellings such as "inf" and "0x1p4" that are not
	// numeric literals.
	for _, r := range s {
		if !strings.ContainsRune("0123456789+-.eE", r) {
			return math.NaN()
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// ToIntegerOrInfinity truncates toward zero, mapping NaN to 0.
func ToIntegerOrInfinity(a *Agent, v Value) (float64, Completion) {
	c := ToNumber(a, v)
	if c.IsAbrupt() {
		return 0, c
	}
	f := c.Value.num
	if math.IsNaN(f) || f == 0 {
		return 0, c
	}
	return math.Trunc(f), c
}

// ToLength clamps to an integer in [0, 2^53-1].
func ToLength(a *Agent, v Value) Completion {
	n, c := ToIntegerOrInfinity(a, v)
	if c.IsAbrupt() {
		return c
	}
	if n <= 0 {
		return NormalCompletion(NumberValue(0))
	}
	return NormalCompletion(NumberValue(math.Min(n, 1<<53-1)))
}

// ToString returns a string-valued completion.
func ToString(a *Agent, v Value) Completion {
	switch v.typ {
	case TypeString:
		return NormalCompletion(v)
	case TypeSymbol:
		return a.Throw(ErrorKindTypeError, MsgCannotConvertSymbol, "string")
	case TypeObject:
		prim := ToPrimitive(a, v, HintString)
		if prim.IsAbrupt() {
			return prim
		}
		return ToString(a, prim.Value)
	}
	return NormalCompletion(NewString(v.String()))
}

// ToPropertyKey converts v to a string or symbol key.
func ToPropertyKey(a *Agent, v Value) (PropertyKey, Completion) {
	key := ToPrimitive(a, v, HintString)
	if key.IsAbrupt() {
		return PropertyKey{}, key
	}
	if key.Value.IsSymbol() {
		return NewSymbolKey(key.Value.sym), key
	}
	s := ToString(a, key.Value)
	if s.IsAbrupt() {
		return PropertyKey{}, s
	}
	return NewStringKey(s.Value.str), s
}

// ToObject boxes primitives and throws for undefined and null.
func ToObject(a *Agent, v Value) Completion {
	var proto, slot string
	switch v.typ {
	case TypeObject:
		return NormalCompletion(v)
	case TypeUndefined, TypeNull:
		return a.Throw(ErrorKindTypeError, MsgCannotConvertToObject, v.String())
	case TypeBoolean:
		proto, slot = IntrinsicBooleanPrototype, "BooleanData"
	case TypeNumber:
		proto, slot = IntrinsicNumberPrototype, "NumberData"
	case TypeString:
		proto, slot = IntrinsicStringPrototype, "StringData"
	case TypeSymbol:
		proto, slot = IntrinsicSymbolPrototype, "SymbolData"
	}
	o := ObjectCreate(a.Intrinsic(proto), slot)
	o.SetSlot(slot, v)
	o.SetClass(strings.TrimSuffix(slot, "Data"))
	if v.typ == TypeString {
		// No String exotic object; the characters become fixed own
		// properties.
		units := []rune(v.str)
		for i, r := range units {
			o.props.set(IndexKey(i), &property{value: NewString(string(r)), enumerable: true})
		}
		o.props.set(NewStringKey("length"), &property{value: IntegerValue(len(units))})
	}
	return NormalCompletion(ObjectValue(o))
}

// IsLooselyEqual implements ==.
func IsLooselyEqual(a *Agent, x, y Value) Completion {
	if x.typ == y.typ {
		return NormalCompletion(BooleanValue(x.StrictlyEquals(y)))
	}
	if x.IsNullish() && y.IsNullish() {
		return NormalCompletion(True)
	}
	switch {
	case x.IsNumber() && y.IsString():
		return NormalCompletion(BooleanValue(x.num == StringToNumber(y.str)))
	case x.IsString() && y.IsNumber():
		return NormalCompletion(BooleanValue(StringToNumber(x.str) == y.num))
	case x.IsBoolean():
		return IsLooselyEqual(a, NumberValue(x.num), y)
	case y.IsBoolean():
		return IsLooselyEqual(a, x, NumberValue(y.num))
	case (x.IsNumber() || x.IsString() || x.IsSymbol()) && y.IsObject():
		prim := ToPrimitive(a, y, HintDefault)
		if prim.IsAbrupt() {
			return prim
		}
		return IsLooselyEqual(a, x, prim.Value)
	case x.IsObject() && (y.IsNumber() || y.IsString() || y.IsSymbol()):
		prim := ToPrimitive(a, x, HintDefault)
		if prim.IsAbrupt() {
			return prim
		}
		return IsLooselyEqual(a, prim.Value, y)
	}
	return NormalCompletion(False)
}
