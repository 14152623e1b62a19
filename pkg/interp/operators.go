package interp

import (
	"math"
	"slices"
	"unicode/utf16"

	"github.com/j-f1/forked-engine262/pkg/vm"
)

// applyOperator evaluates a binary operator on two values.
func applyOperator(a *vm.Agent, op string, l, r vm.Value) vm.Completion {
	switch op {
	case "+":
		return addition(a, l, r)
	case "-", "*", "/", "%", "**":
		return numeric(a, op, l, r)
	case "&", "|", "^", "<<", ">>", ">>>":
		return bitwise(a, op, l, r)
	case "==":
		return vm.IsLooselyEqual(a, l, r)
	case "!=":
		eq := vm.IsLooselyEqual(a, l, r)
		if eq.IsAbrupt() {
			return eq
		}
		return vm.NormalCompletion(vm.BooleanValue(!eq.Value.AsBoolean()))
	case "===":
		return vm.NormalCompletion(vm.BooleanValue(l.StrictlyEquals(r)))
	case "!==":
		return vm.NormalCompletion(vm.BooleanValue(!l.StrictlyEquals(r)))
	case "<":
		return relational(a, l, r, true, false)
	case ">":
		return relational(a, r, l, false, false)
	case "<=":
		return relational(a, r, l, false, true)
	case ">=":
		return relational(a, l, r, true, true)
	case "instanceof":
		return instanceOf(a, l, r)
	case "in":
		if !r.IsObject() {
			return a.Throw(vm.ErrorKindTypeError, vm.MsgInNotObject, vm.Inspect(l), vm.Inspect(r))
		}
		key, c := vm.ToPropertyKey(a, l)
		if c.IsAbrupt() {
			return c
		}
		return vm.NormalCompletion(vm.BooleanValue(vm.HasProperty(a, r.AsObject(), key)))
	}
	return a.Throw(vm.ErrorKindSyntaxError, vm.MsgUnsupportedOperator, op)
}

func applyUnary(a *vm.Agent, op string, v vm.Value) vm.Completion {
	switch op {
	case "!":
		return vm.NormalCompletion(vm.BooleanValue(!vm.ToBoolean(v)))
	case "void":
		return vm.NormalCompletion(vm.Undefined)
	case "typeof":
		return vm.NormalCompletion(vm.NewString(v.TypeName()))
	case "+":
		return vm.ToNumber(a, v)
	case "-":
		n := vm.ToNumber(a, v)
		if n.IsAbrupt() {
			return n
		}
		return vm.NormalCompletion(vm.NumberValue(-n.Value.AsFloat()))
	case "~":
		n := vm.ToNumber(a, v)
		if n.IsAbrupt() {
			return n
		}
		return vm.NormalCompletion(vm.NumberValue(float64(^toInt32(n.Value.AsFloat()))))
	}
	return a.Throw(vm.ErrorKindSyntaxError, vm.MsgUnsupportedOperator, op)
}

func addition(a *vm.Agent, l, r vm.Value) vm.Completion {
	lp := vm.ToPrimitive(a, l, vm.HintDefault)
	if lp.IsAbrupt() {
		return lp
	}
	rp := vm.ToPrimitive(a, r, vm.HintDefault)
	if rp.IsAbrupt() {
		return rp
	}
	if lp.Value.IsString() || rp.Value.IsString() {
		ls := vm.ToString(a, lp.Value)
		if ls.IsAbrupt() {
			return ls
		}
		rs := vm.ToString(a, rp.Value)
		if rs.IsAbrupt() {
			return rs
		}
		return vm.NormalCompletion(vm.NewString(ls.Value.AsString() + rs.Value.AsString()))
	}
	return numeric(a, "+", lp.Value, rp.Value)
}

func toNumbers(a *vm.Agent, l, r vm.Value) (float64, float64, vm.Completion) {
	ln := vm.ToNumber(a, l)
	if ln.IsAbrupt() {
		return 0, 0, ln
	}
	rn := vm.ToNumber(a, r)
	if rn.IsAbrupt() {
		return 0, 0, rn
	}
	return ln.Value.AsFloat(), rn.Value.AsFloat(), rn
}

func numeric(a *vm.Agent, op string, l, r vm.Value) vm.Completion {
	x, y, c := toNumbers(a, l, r)
	if c.IsAbrupt() {
		return c
	}
	var n float64
	switch op {
	case "+":
		n = x + y
	case "-":
		n = x - y
	case "*":
		n = x * y
	case "/":
		n = x / y
	case "%":
		n = math.Mod(x, y)
	case "**":
		n = exponentiate(x, y)
	}
	return vm.NormalCompletion(vm.NumberValue(n))
}

// exponentiate differs from math.Pow where ±1 meets an infinite or NaN
// exponent.
func exponentiate(base, exp float64) float64 {
	if math.IsNaN(exp) {
		return math.NaN()
	}
	if math.Abs(base) == 1 && math.IsInf(exp, 0) {
		return math.NaN()
	}
	return math.Pow(base, exp)
}

func bitwise(a *vm.Agent, op string, l, r vm.Value) vm.Completion {
	x, y, c := toNumbers(a, l, r)
	if c.IsAbrupt() {
		return c
	}
	shift := toUint32(y) & 0x1f
	var n float64
	switch op {
	case "&":
		n = float64(toInt32(x) & toInt32(y))
	case "|":
		n = float64(toInt32(x) | toInt32(y))
	case "^":
		n = float64(toInt32(x) ^ toInt32(y))
	case "<<":
		n = float64(toInt32(x) << shift)
	case ">>":
		n = float64(toInt32(x) >> shift)
	case ">>>":
		n = float64(toUint32(x) >> shift)
	}
	return vm.NormalCompletion(vm.NumberValue(n))
}

func toUint32(f float64) uint32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return uint32(int64(math.Mod(math.Trunc(f), 1<<32)))
}

func toInt32(f float64) int32 {
	return int32(toUint32(f))
}

// relational implements x < y. leftFirst controls which operand is
// converted first; negate turns the result into >= or <=, where an
// undefined comparison is still false.
func relational(a *vm.Agent, x, y vm.Value, leftFirst, negate bool) vm.Completion {
	var px, py vm.Completion
	if leftFirst {
		if px = vm.ToPrimitive(a, x, vm.HintNumber); px.IsAbrupt() {
			return px
		}
		if py = vm.ToPrimitive(a, y, vm.HintNumber); py.IsAbrupt() {
			return py
		}
	} else {
		if py = vm.ToPrimitive(a, y, vm.HintNumber); py.IsAbrupt() {
			return py
		}
		if px = vm.ToPrimitive(a, x, vm.HintNumber); px.IsAbrupt() {
			return px
		}
	}
	if px.Value.IsString() && py.Value.IsString() {
		less := slices.Compare(utf16.Encode([]rune(px.Value.AsString())), utf16.Encode([]rune(py.Value.AsString()))) < 0
		return vm.NormalCompletion(vm.BooleanValue(less != negate))
	}
	nx, ny, c := toNumbers(a, px.Value, py.Value)
	if c.IsAbrupt() {
		return c
	}
	if math.IsNaN(nx) || math.IsNaN(ny) {
		return vm.NormalCompletion(vm.False)
	}
	return vm.NormalCompletion(vm.BooleanValue((nx < ny) != negate))
}

func instanceOf(a *vm.Agent, v, target vm.Value) vm.Completion {
	if !target.IsObject() {
		return a.Throw(vm.ErrorKindTypeError, vm.MsgInstanceofNotCallable)
	}
	handler := vm.GetMethod(a, target, vm.NewSymbolKey(vm.SymbolHasInstance))
	if handler.IsAbrupt() {
		return handler
	}
	if !handler.Value.IsUndefined() {
		result := vm.Call(a, handler.Value, target, []vm.Value{v})
		if result.IsAbrupt() {
			return result
		}
		return vm.NormalCompletion(vm.BooleanValue(vm.ToBoolean(result.Value)))
	}
	if !target.IsCallable() {
		return a.Throw(vm.ErrorKindTypeError, vm.MsgInstanceofNotCallable)
	}
	return vm.OrdinaryHasInstance(a, target, v)
}
