package interp

import (
	"github.com/j-f1/forked-engine262/pkg/errors"
	"github.com/j-f1/forked-engine262/pkg/vm"
)

const (
	intrinsicPromise = "%Promise%"

	slotPromiseState  = "PromiseState"
	slotPromiseResult = "PromiseResult"

	promisePending   = "pending"
	promiseFulfilled = "fulfilled"
	promiseRejected  = "rejected"
)

// promiseState holds the reaction lists of a pending promise. The state
// and result themselves live in slots so hosts can inspect them.
type promiseState struct {
	fulfillReactions []*promiseReaction
	rejectReactions  []*promiseReaction
	handled          bool
}

type reactionType uint8

const (
	reactionFulfill reactionType = iota
	reactionReject
)

type promiseReaction struct {
	capability *promiseCapability // nil for reactions registered by await
	kind       reactionType
	handler    vm.Value // callable or undefined
}

type promiseCapability struct {
	promise vm.Value
	resolve vm.Value
	reject  vm.Value
}

func isPromise(v vm.Value) bool {
	if !v.IsObject() {
		return false
	}
	_, ok := v.AsObject().HostData().(*promiseState)
	return ok
}

func promiseStatus(p *vm.Object) string {
	return p.Slot(slotPromiseState).AsString()
}

// newPromise allocates a pending promise with prototype proto.
func newPromise(proto *vm.Object) *vm.Object {
	p := vm.ObjectCreate(proto, slotPromiseState, slotPromiseResult)
	p.SetClass("Promise")
	p.SetSlot(slotPromiseState, vm.NewString(promisePending))
	p.SetHostData(&promiseState{})
	return p
}

// createResolvingFunctions returns the resolve and reject functions handed
// to an executor. Only the first call of either has an effect.
func (in *Interpreter) createResolvingFunctions(a *vm.Agent, p *vm.Object) (resolve, reject *vm.Object) {
	alreadyResolved := false
	realm := a.CurrentRealm()
	resolve = vm.NewNativeFunction(a, realm, 1, "", func(a *vm.Agent, call vm.BuiltinCall) vm.Completion {
		if alreadyResolved {
			return vm.NormalCompletion(vm.Undefined)
		}
		alreadyResolved = true
		resolution := call.Argument(0)
		if resolution.Is(vm.ObjectValue(p)) {
			in.rejectPromise(a, p, vm.ObjectValue(a.NewError(vm.ErrorKindTypeError, vm.MsgPromiseSelfResolution)))
			return vm.NormalCompletion(vm.Undefined)
		}
		if !resolution.IsObject() {
			in.fulfillPromise(a, p, resolution)
			return vm.NormalCompletion(vm.Undefined)
		}
		then := vm.Get(a, resolution.AsObject(), vm.NewStringKey("then"))
		if then.IsAbrupt() {
			in.rejectPromise(a, p, then.Value)
			return vm.NormalCompletion(vm.Undefined)
		}
		if !then.Value.IsCallable() {
			in.fulfillPromise(a, p, resolution)
			return vm.NormalCompletion(vm.Undefined)
		}
		thenRealm := vm.GetFunctionRealm(a, then.Value.AsObject())
		a.EnqueueJob("PromiseResolveThenableJob", thenRealm, func() vm.Completion {
			res, rej := in.createResolvingFunctions(a, p)
			c := vm.Call(a, then.Value, resolution, []vm.Value{vm.ObjectValue(res), vm.ObjectValue(rej)})
			if c.IsAbrupt() {
				return vm.Call(a, vm.ObjectValue(rej), vm.Undefined, []vm.Value{c.Value})
			}
			return c
		})
		return vm.NormalCompletion(vm.Undefined)
	})
	reject = vm.NewNativeFunction(a, realm, 1, "", func(a *vm.Agent, call vm.BuiltinCall) vm.Completion {
		if alreadyResolved {
			return vm.NormalCompletion(vm.Undefined)
		}
		alreadyResolved = true
		in.rejectPromise(a, p, call.Argument(0))
		return vm.NormalCompletion(vm.Undefined)
	})
	return resolve, reject
}

func (in *Interpreter) fulfillPromise(a *vm.Agent, p *vm.Object, v vm.Value) {
	state := p.HostData().(*promiseState)
	errors.Assert(promiseStatus(p) == promisePending, "FulfillPromise", "promise is already settled")
	reactions := state.fulfillReactions
	p.SetSlot(slotPromiseResult, v)
	p.SetSlot(slotPromiseState, vm.NewString(promiseFulfilled))
	state.fulfillReactions, state.rejectReactions = nil, nil
	in.triggerPromiseReactions(a, reactions, v)
}

func (in *Interpreter) rejectPromise(a *vm.Agent, p *vm.Object, reason vm.Value) {
	state := p.HostData().(*promiseState)
	errors.Assert(promiseStatus(p) == promisePending, "RejectPromise", "promise is already settled")
	reactions := state.rejectReactions
	p.SetSlot(slotPromiseResult, reason)
	p.SetSlot(slotPromiseState, vm.NewString(promiseRejected))
	state.fulfillReactions, state.rejectReactions = nil, nil
	if !state.handled {
		in.unhandled = append(in.unhandled, p)
	}
	in.triggerPromiseReactions(a, reactions, reason)
}

func (in *Interpreter) triggerPromiseReactions(a *vm.Agent, reactions []*promiseReaction, argument vm.Value) {
	for _, r := range reactions {
		in.enqueueReactionJob(a, r, argument)
	}
}

func (in *Interpreter) enqueueReactionJob(a *vm.Agent, r *promiseReaction, argument vm.Value) {
	realm := a.CurrentRealm()
	if r.handler.IsObject() {
		realm = vm.GetFunctionRealm(a, r.handler.AsObject())
	}
	a.EnqueueJob("PromiseReactionJob", realm, func() vm.Completion {
		var result vm.Completion
		switch {
		case r.handler.IsUndefined() && r.kind == reactionFulfill:
			result = vm.NormalCompletion(argument)
		case r.handler.IsUndefined():
			result = vm.ThrowCompletion(argument)
		default:
			result = vm.Call(a, r.handler, vm.Undefined, []vm.Value{argument})
		}
		if r.capability == nil {
			errors.Assert(!result.IsAbrupt(), "PromiseReactionJob", "await handler threw")
			return vm.NormalCompletion(vm.Undefined)
		}
		if result.IsAbrupt() {
			return vm.Call(a, r.capability.reject, vm.Undefined, []vm.Value{result.Value})
		}
		return vm.Call(a, r.capability.resolve, vm.Undefined, []vm.Value{result.Value})
	})
}

// performPromiseThen registers reactions on p and returns the derived
// promise, or undefined when capability is nil.
func (in *Interpreter) performPromiseThen(a *vm.Agent, p *vm.Object, onFulfilled, onRejected vm.Value, capability *promiseCapability) vm.Value {
	if !onFulfilled.IsCallable() {
		onFulfilled = vm.Undefined
	}
	if !onRejected.IsCallable() {
		onRejected = vm.Undefined
	}
	fulfill := &promiseReaction{capability: capability, kind: reactionFulfill, handler: onFulfilled}
	reject := &promiseReaction{capability: capability, kind: reactionReject, handler: onRejected}
	state := p.HostData().(*promiseState)
	switch promiseStatus(p) {
	case promisePending:
		state.fulfillReactions = append(state.fulfillReactions, fulfill)
		state.rejectReactions = append(state.rejectReactions, reject)
	case promiseFulfilled:
		in.enqueueReactionJob(a, fulfill, p.Slot(slotPromiseResult))
	default:
		in.enqueueReactionJob(a, reject, p.Slot(slotPromiseResult))
	}
	state.handled = true
	if capability == nil {
		return vm.Undefined
	}
	return capability.promise
}

// newPromiseCapability constructs a promise through C and captures its
// resolving functions.
func (in *Interpreter) newPromiseCapability(a *vm.Agent, C vm.Value) (*promiseCapability, vm.Completion) {
	if !C.IsConstructor() {
		return nil, a.Throw(vm.ErrorKindTypeError, vm.MsgNotAConstructor, vm.Inspect(C))
	}
	capability := &promiseCapability{resolve: vm.Undefined, reject: vm.Undefined}
	executor := vm.NewNativeFunction(a, a.CurrentRealm(), 2, "", func(a *vm.Agent, call vm.BuiltinCall) vm.Completion {
		if !capability.resolve.IsUndefined() || !capability.reject.IsUndefined() {
			return a.Throw(vm.ErrorKindTypeError, vm.MsgPromiseCapabilityExecutorCalled)
		}
		capability.resolve = call.Argument(0)
		capability.reject = call.Argument(1)
		return vm.NormalCompletion(vm.Undefined)
	})
	p := vm.Construct(a, C.AsObject(), []vm.Value{vm.ObjectValue(executor)}, nil)
	if p.IsAbrupt() {
		return nil, p
	}
	for _, fn := range []vm.Value{capability.resolve, capability.reject} {
		if !fn.IsCallable() {
			return nil, a.Throw(vm.ErrorKindTypeError, vm.MsgPromiseResolverNotCallable, vm.Inspect(fn))
		}
	}
	capability.promise = p.Value
	return capability, p
}

// intrinsicCapability is a capability for a fresh %Promise% instance. It
// runs no guest code.
func (in *Interpreter) intrinsicCapability(a *vm.Agent) *promiseCapability {
	p := newPromise(a.Intrinsic(vm.IntrinsicPromisePrototype))
	resolve, reject := in.createResolvingFunctions(a, p)
	return &promiseCapability{
		promise: vm.ObjectValue(p),
		resolve: vm.ObjectValue(resolve),
		reject:  vm.ObjectValue(reject),
	}
}

// promiseResolve coerces x to a promise constructed by C.
func (in *Interpreter) promiseResolve(a *vm.Agent, C *vm.Object, x vm.Value) vm.Completion {
	if isPromise(x) {
		ctor := vm.Get(a, x.AsObject(), vm.NewStringKey("constructor"))
		if ctor.IsAbrupt() {
			return ctor
		}
		if ctor.Value.Is(vm.ObjectValue(C)) {
			return vm.NormalCompletion(x)
		}
	}
	capability, c := in.newPromiseCapability(a, vm.ObjectValue(C))
	if c.IsAbrupt() {
		return c
	}
	if c := vm.Call(a, capability.resolve, vm.Undefined, []vm.Value{x}); c.IsAbrupt() {
		return c
	}
	return vm.NormalCompletion(capability.promise)
}

// --- %Promise% ---

func (in *Interpreter) installPromise(r *vm.Realm) {
	a := in.agent
	proto := r.Intrinsic(vm.IntrinsicPromisePrototype)
	ctor := vm.CreateBuiltinFunction(a, in.promiseConstructor, nil, r, nil, true)
	vm.SetFunctionLength(a, ctor, 1)
	vm.SetFunctionName(a, ctor, vm.NewStringKey("Promise"), "")
	r.InstallValue(a, ctor, vm.NewStringKey("prototype"), vm.ObjectValue(proto))
	vm.CreateMethodProperty(a, proto, vm.NewStringKey("constructor"), vm.ObjectValue(ctor))
	r.SetIntrinsic(intrinsicPromise, ctor)

	r.InstallMethod(a, proto, vm.NewStringKey("then"), 2, in.promiseThen)
	r.InstallMethod(a, proto, vm.NewStringKey("catch"), 1, func(a *vm.Agent, call vm.BuiltinCall) vm.Completion {
		return vm.Invoke(a, call.This, vm.NewStringKey("then"), []vm.Value{vm.Undefined, call.Argument(0)})
	})
	r.InstallMethod(a, proto, vm.NewStringKey("finally"), 1, in.promiseFinally)
	r.InstallMethod(a, ctor, vm.NewStringKey("resolve"), 1, func(a *vm.Agent, call vm.BuiltinCall) vm.Completion {
		if !call.This.IsObject() {
			return a.Throw(vm.ErrorKindTypeError, vm.MsgNotAnObject, vm.Inspect(call.This))
		}
		return in.promiseResolve(a, call.This.AsObject(), call.Argument(0))
	})
	r.InstallMethod(a, ctor, vm.NewStringKey("reject"), 1, func(a *vm.Agent, call vm.BuiltinCall) vm.Completion {
		capability, c := in.newPromiseCapability(a, call.This)
		if c.IsAbrupt() {
			return c
		}
		if c := vm.Call(a, capability.reject, vm.Undefined, []vm.Value{call.Argument(0)}); c.IsAbrupt() {
			return c
		}
		return vm.NormalCompletion(capability.promise)
	})
	vm.CreateMethodProperty(a, r.GlobalObject, vm.NewStringKey("Promise"), vm.ObjectValue(ctor))
}

func (in *Interpreter) promiseConstructor(a *vm.Agent, call vm.BuiltinCall) vm.Completion {
	if call.NewTarget.IsUndefined() {
		return a.Throw(vm.ErrorKindTypeError, vm.MsgPromiseRequiresNew)
	}
	executor := call.Argument(0)
	if !executor.IsCallable() {
		return a.Throw(vm.ErrorKindTypeError, vm.MsgPromiseResolverNotCallable, vm.Inspect(executor))
	}
	proto := vm.GetPrototypeFromConstructor(a, call.NewTarget.AsObject(), vm.IntrinsicPromisePrototype)
	if proto.IsAbrupt() {
		return proto
	}
	p := newPromise(proto.Value.AsObject())
	resolve, reject := in.createResolvingFunctions(a, p)
	c := vm.Call(a, executor, vm.Undefined, []vm.Value{vm.ObjectValue(resolve), vm.ObjectValue(reject)})
	if c.IsAbrupt() {
		if r := vm.Call(a, vm.ObjectValue(reject), vm.Undefined, []vm.Value{c.Value}); r.IsAbrupt() {
			return r
		}
	}
	return vm.NormalCompletion(vm.ObjectValue(p))
}

// promiseThen always derives from %Promise%; subclass species are not
// consulted.
func (in *Interpreter) promiseThen(a *vm.Agent, call vm.BuiltinCall) vm.Completion {
	if !isPromise(call.This) {
		return a.Throw(vm.ErrorKindTypeError, vm.MsgIncompatibleReceiver, "Promise.prototype.then", vm.Inspect(call.This))
	}
	capability, c := in.newPromiseCapability(a, vm.ObjectValue(a.Intrinsic(intrinsicPromise)))
	if c.IsAbrupt() {
		return c
	}
	return vm.NormalCompletion(in.performPromiseThen(a, call.This.AsObject(), call.Argument(0), call.Argument(1), capability))
}

// promiseFinally runs onFinally on either outcome and passes the original
// value or reason through once the callback's result settles.
func (in *Interpreter) promiseFinally(a *vm.Agent, call vm.BuiltinCall) vm.Completion {
	if !call.This.IsObject() {
		return a.Throw(vm.ErrorKindTypeError, vm.MsgNotAnObject, vm.Inspect(call.This))
	}
	onFinally := call.Argument(0)
	if !onFinally.IsCallable() {
		return vm.Invoke(a, call.This, vm.NewStringKey("then"), []vm.Value{onFinally, onFinally})
	}
	C := a.Intrinsic(intrinsicPromise)
	passThrough := func(settle func(v vm.Value) vm.Completion) vm.BuiltinSteps {
		return func(a *vm.Agent, inner vm.BuiltinCall) vm.Completion {
			v := inner.Argument(0)
			result := vm.Call(a, onFinally, vm.Undefined, nil)
			if result.IsAbrupt() {
				return result
			}
			p := in.promiseResolve(a, C, result.Value)
			if p.IsAbrupt() {
				return p
			}
			after := vm.NewNativeFunction(a, a.CurrentRealm(), 0, "", func(*vm.Agent, vm.BuiltinCall) vm.Completion {
				return settle(v)
			})
			return vm.Invoke(a, p.Value, vm.NewStringKey("then"), []vm.Value{vm.ObjectValue(after)})
		}
	}
	thenFinally := vm.NewNativeFunction(a, a.CurrentRealm(), 1, "", passThrough(vm.NormalCompletion))
	catchFinally := vm.NewNativeFunction(a, a.CurrentRealm(), 1, "", passThrough(vm.ThrowCompletion))
	return vm.Invoke(a, call.This, vm.NewStringKey("then"), []vm.Value{vm.ObjectValue(thenFinally), vm.ObjectValue(catchFinally)})
}
