package vm

import (
	"github.com/j-f1/forked-engine262/pkg/errors"
)

// BuiltinCall is what a builtin's steps receive.
type BuiltinCall struct {
	Callee    *Object
	This      Value
	Args      []Value
	NewTarget Value // undefined for [[Call]]
}

// Argument returns the i-th argument or undefined.
func (c BuiltinCall) Argument(i int) Value {
	if i < len(c.Args) {
		return c.Args[i]
	}
	return Undefined
}

// BuiltinSteps is the native behaviour of a builtin function.
type BuiltinSteps func(a *Agent, call BuiltinCall) Completion

type builtinState struct {
	steps       BuiltinSteps
	realm       *Realm
	constructor bool
}

// CreateBuiltinFunction wraps native steps in a function object. A nil
// realm means the current realm and a nil prototype means that realm's
// %Function.prototype%. The result has no name or length; callers set them.
func CreateBuiltinFunction(a *Agent, steps BuiltinSteps, slots []string, realm *Realm, prototype *Object, isConstructor bool) *Object {
	errors.Assert(steps != nil, "CreateBuiltinFunction", "steps must be native code")
	if realm == nil {
		realm = a.CurrentRealm()
	}
	if prototype == nil {
		prototype = realm.Intrinsic(IntrinsicFunctionPrototype)
	}
	F := &Object{
		kind:       KindBuiltinFunction,
		prototype:  prototype,
		extensible: true,
		class:      "Function",
		builtin: &builtinState{
			steps:       steps,
			realm:       realm,
			constructor: isConstructor,
		},
	}
	F.declareSlots(slots)
	return F
}

// NewNativeFunction creates a non-constructor builtin with its length and
// name already defined.
func NewNativeFunction(a *Agent, realm *Realm, length int, name string, steps BuiltinSteps) *Object {
	F := CreateBuiltinFunction(a, steps, nil, realm, nil, false)
	SetFunctionLength(a, F, length)
	SetFunctionName(a, F, NewStringKey(name), "")
	return F
}

// BuiltinRealm returns the realm a builtin was created in.
func (o *Object) BuiltinRealm() *Realm {
	errors.Assert(o.kind == KindBuiltinFunction, "BuiltinRealm", "not a builtin function")
	return o.builtin.realm
}

// builtinCall runs the steps in a new context of the builtin's realm.
func (o *Object) builtinCall(a *Agent, this Value, args []Value, newTarget *Object) Completion {
	if c := a.checkCallDepth(); c.IsAbrupt() {
		return c
	}
	ctx := &ExecutionContext{
		Function: o,
		Realm:    o.builtin.realm,
	}
	call := BuiltinCall{Callee: o, This: this, Args: args, NewTarget: Undefined}
	if newTarget != nil {
		call.NewTarget = ObjectValue(newTarget)
		ctx.CallSite.ConstructCall = true
	}
	result := a.RunInContext(ctx, func() Completion {
		return o.builtin.steps(a, call)
	})
	switch result.Type {
	case Normal, Throw:
	case Return:
		result = NormalCompletion(result.Value)
	default:
		errors.Unreachable("builtinCall", "builtin returned a %s completion", result.Type)
	}
	if newTarget != nil && result.Type == Normal {
		errors.Assert(result.Value.IsObject(), "builtinCall", "builtin constructor returned a non-object")
	}
	return result
}
