package vm

import (
	"fmt"
	"math"
	"strconv"
)

// cleanExponentialFormat removes leading zeros from the exponent to match JS
// formatting, e.g. "1e-07" -> "1e-7".
func cleanExponentialFormat(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == 'e' || s[i] == 'E' {
			if i+1 < len(s) && (s[i+1] == '+' || s[i+1] == '-') {
				sign := s[i+1]
				j := i + 2
				for j < len(s) && s[j] == '0' {
					j++
				}
				if j >= len(s) {
					return s[:i+2] + "0"
				}
				return s[:i+1] + string(sign) + s[j:]
			}
			break
		}
	}
	return s
}

type ValueType uint8

const (
	TypeUndefined ValueType = iota
	TypeNull
	TypeBoolean
	TypeNumber
	TypeString
	TypeSymbol
	TypeObject

	// TypeEmpty marks the absence of a completion value. It never reaches
	// guest code.
	TypeEmpty
)

func (vt ValueType) String() string {
	switch vt {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeSymbol:
		return "symbol"
	case TypeObject:
		return "object"
	case TypeEmpty:
		return "empty"
	default:
		return fmt.Sprintf("<unknown type: %d>", vt)
	}
}

// Value is a language value. The zero Value is undefined.
type Value struct {
	typ ValueType
	num float64
	str string
	sym *Symbol
	obj *Object
}

var (
	Undefined = Value{typ: TypeUndefined}
	Null      = Value{typ: TypeNull}
	True      = Value{typ: TypeBoolean, num: 1}
	False     = Value{typ: TypeBoolean}
	Empty     = Value{typ: TypeEmpty}
	NaN       = Value{typ: TypeNumber, num: math.NaN()}
)

func NumberValue(value float64) Value {
	return Value{typ: TypeNumber, num: value}
}

func IntegerValue(value int) Value {
	return Value{typ: TypeNumber, num: float64(value)}
}

func BooleanValue(value bool) Value {
	if value {
		return True
	}
	return False
}

func NewString(value string) Value {
	return Value{typ: TypeString, str: value}
}

func SymbolValue(sym *Symbol) Value {
	return Value{typ: TypeSymbol, sym: sym}
}

// ObjectValue wraps o. A nil object becomes null.
func ObjectValue(o *Object) Value {
	if o == nil {
		return Null
	}
	return Value{typ: TypeObject, obj: o}
}

func (v Value) Type() ValueType { return v.typ }

func (v Value) IsUndefined() bool { return v.typ == TypeUndefined }
func (v Value) IsNull() bool      { return v.typ == TypeNull }
func (v Value) IsNullish() bool   { return v.typ == TypeUndefined || v.typ == TypeNull }
func (v Value) IsBoolean() bool   { return v.typ == TypeBoolean }
func (v Value) IsNumber() bool    { return v.typ == TypeNumber }
func (v Value) IsString() bool    { return v.typ == TypeString }
func (v Value) IsSymbol() bool    { return v.typ == TypeSymbol }
func (v Value) IsObject() bool    { return v.typ == TypeObject }
func (v Value) IsEmpty() bool     { return v.typ == TypeEmpty }

// IsCallable reports whether v is an object with a [[Call]] method.
func (v Value) IsCallable() bool {
	return v.typ == TypeObject && v.obj.IsCallable()
}

// IsConstructor reports whether v is an object with a [[Construct]] method.
func (v Value) IsConstructor() bool {
	return v.typ == TypeObject && v.obj.IsConstructor()
}

// TypeName returns the result of the typeof operator.
func (v Value) TypeName() string {
	switch v.typ {
	case TypeObject:
		if v.obj.IsCallable() {
			return "function"
		}
		return "object"
	case TypeNull:
		return "object"
	default:
		return v.typ.String()
	}
}

func (v Value) AsBoolean() bool {
	if v.typ != TypeBoolean {
		panic("value is not a boolean")
	}
	return v.num != 0
}

func (v Value) AsFloat() float64 {
	if v.typ != TypeNumber {
		panic("value is not a number")
	}
	return v.num
}

func (v Value) AsString() string {
	if v.typ != TypeString {
		panic("value is not a string")
	}
	return v.str
}

func (v Value) AsSymbol() *Symbol {
	if v.typ != TypeSymbol {
		panic("value is not a symbol")
	}
	return v.sym
}

func (v Value) AsObject() *Object {
	if v.typ != TypeObject {
		panic("value is not an object")
	}
	return v.obj
}

// Is implements SameValue: NaN is NaN, and +0 is not -0.
func (v Value) Is(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case TypeUndefined, TypeNull, TypeEmpty:
		return true
	case TypeBoolean:
		return v.num == other.num
	case TypeNumber:
		if math.IsNaN(v.num) && math.IsNaN(other.num) {
			return true
		}
		if v.num == 0 && other.num == 0 {
			return math.Signbit(v.num) == math.Signbit(other.num)
		}
		return v.num == other.num
	case TypeString:
		return v.str == other.str
	case TypeSymbol:
		return v.sym == other.sym
	case TypeObject:
		return v.obj == other.obj
	default:
		panic(fmt.Sprintf("Unhandled type in Is comparison: %v", v.typ))
	}
}

// SameValueZero is SameValue except that +0 and -0 are equal.
func (v Value) SameValueZero(other Value) bool {
	if v.typ == TypeNumber && other.typ == TypeNumber && v.num == 0 && other.num == 0 {
		return true
	}
	return v.Is(other)
}

// StrictlyEquals implements ===. NaN !== NaN and +0 === -0.
func (v Value) StrictlyEquals(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	if v.typ == TypeNumber {
		return v.num == other.num
	}
	return v.Is(other)
}

// NumberToString renders a number the way Number::toString does for radix 10.
func NumberToString(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs < 1e-6 || abs >= 1e21 {
		return cleanExponentialFormat(strconv.FormatFloat(f, 'e', -1, 64))
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// String renders primitives for debugging. Use ToString for the
// language-level conversion.
func (v Value) String() string {
	switch v.typ {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return strconv.FormatBool(v.num != 0)
	case TypeNumber:
		return NumberToString(v.num)
	case TypeString:
		return v.str
	case TypeSymbol:
		return v.sym.DescriptiveString()
	case TypeObject:
		return "[object " + v.obj.Class() + "]"
	case TypeEmpty:
		return "<empty>"
	}
	return "<invalid>"
}
