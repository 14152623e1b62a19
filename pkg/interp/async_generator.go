package interp

import (
	"github.com/j-f1/forked-engine262/pkg/ast"
	"github.com/j-f1/forked-engine262/pkg/errors"
	"github.com/j-f1/forked-engine262/pkg/vm"
)

// asyncGeneratorRequest is one pending call of next, return or throw.
type asyncGeneratorRequest struct {
	completion vm.Completion
	capability *promiseCapability
}

// asyncGenerator is the state behind an async generator object. Requests
// queue up while the body runs and are settled in order.
type asyncGenerator struct {
	in    *Interpreter
	state generatorState
	co    *coroutine
	queue []asyncGeneratorRequest
}

func (g *asyncGenerator) coroutine() *coroutine { return g.co }

func (in *Interpreter) evaluateAsyncGeneratorBody(a *vm.Agent, body *ast.FunctionNode, F *vm.Object, args []vm.Value) vm.Completion {
	ev := in.evaluator(a, body.Strict)
	if c := ev.functionDeclarationInstantiation(F, args); c.IsAbrupt() {
		return c
	}
	G := vm.OrdinaryCreateFromConstructor(a, F, vm.IntrinsicAsyncGeneratorPrototype)
	if G.IsAbrupt() {
		return G
	}
	obj := G.Value.AsObject()
	obj.SetClass("AsyncGenerator")
	gen := &asyncGenerator{in: in, state: generatorSuspendedStart}
	obj.SetHostData(gen)
	genContext := a.RunningContext()
	genContext.HostDefined = gen
	gen.co = in.newCoroutine(genContext, func() vm.Completion {
		return ev.statementList(body.Body)
	})
	return vm.ReturnCompletion(G.Value)
}

func (in *Interpreter) installAsyncGeneratorPrototype(r *vm.Realm) {
	a := in.agent
	proto := r.Intrinsic(vm.IntrinsicAsyncGeneratorPrototype)
	r.InstallMethod(a, proto, vm.NewStringKey("next"), 1, func(a *vm.Agent, call vm.BuiltinCall) vm.Completion {
		capability := in.intrinsicCapability(a)
		gen, ok := in.validateAsyncGenerator(a, call.This, "AsyncGenerator.prototype.next", capability)
		if !ok {
			return vm.NormalCompletion(capability.promise)
		}
		if gen.state == generatorCompleted {
			result := vm.CreateIterResultObject(a, vm.Undefined, true)
			vm.Call(a, capability.resolve, vm.Undefined, []vm.Value{vm.ObjectValue(result)})
			return vm.NormalCompletion(capability.promise)
		}
		completion := vm.NormalCompletion(call.Argument(0))
		state := gen.state
		gen.enqueue(completion, capability)
		if state == generatorSuspendedStart || state == generatorSuspendedYield {
			gen.resume(a, completion)
		}
		return vm.NormalCompletion(capability.promise)
	})
	r.InstallMethod(a, proto, vm.NewStringKey("return"), 1, func(a *vm.Agent, call vm.BuiltinCall) vm.Completion {
		capability := in.intrinsicCapability(a)
		gen, ok := in.validateAsyncGenerator(a, call.This, "AsyncGenerator.prototype.return", capability)
		if !ok {
			return vm.NormalCompletion(capability.promise)
		}
		completion := vm.ReturnCompletion(call.Argument(0))
		gen.enqueue(completion, capability)
		switch gen.state {
		case generatorSuspendedStart, generatorCompleted:
			gen.co.close()
			gen.state = generatorAwaitingReturn
			gen.awaitReturn(a)
		case generatorSuspendedYield:
			gen.resume(a, completion)
		}
		return vm.NormalCompletion(capability.promise)
	})
	r.InstallMethod(a, proto, vm.NewStringKey("throw"), 1, func(a *vm.Agent, call vm.BuiltinCall) vm.Completion {
		capability := in.intrinsicCapability(a)
		gen, ok := in.validateAsyncGenerator(a, call.This, "AsyncGenerator.prototype.throw", capability)
		if !ok {
			return vm.NormalCompletion(capability.promise)
		}
		if gen.state == generatorSuspendedStart {
			gen.state = generatorCompleted
			gen.co.close()
		}
		if gen.state == generatorCompleted {
			vm.Call(a, capability.reject, vm.Undefined, []vm.Value{call.Argument(0)})
			return vm.NormalCompletion(capability.promise)
		}
		completion := vm.ThrowCompletion(call.Argument(0))
		gen.enqueue(completion, capability)
		if gen.state == generatorSuspendedYield {
			gen.resume(a, completion)
		}
		return vm.NormalCompletion(capability.promise)
	})
}

// validateAsyncGenerator rejects capability instead of throwing when v is
// not an async generator.
func (in *Interpreter) validateAsyncGenerator(a *vm.Agent, v vm.Value, method string, capability *promiseCapability) (*asyncGenerator, bool) {
	var gen *asyncGenerator
	if v.IsObject() {
		gen, _ = v.AsObject().HostData().(*asyncGenerator)
	}
	if gen == nil {
		err := a.Throw(vm.ErrorKindTypeError, vm.MsgIncompatibleReceiver, method, vm.Inspect(v))
		vm.Call(a, capability.reject, vm.Undefined, []vm.Value{err.Value})
		return nil, false
	}
	return gen, true
}

func (g *asyncGenerator) enqueue(c vm.Completion, capability *promiseCapability) {
	g.queue = append(g.queue, asyncGeneratorRequest{completion: c, capability: capability})
}

func (g *asyncGenerator) resume(a *vm.Agent, c vm.Completion) {
	g.state = generatorExecuting
	g.step(a, c)
}

// step runs the body until its next yield or await. When the body
// finishes, the front request is settled and the rest drained.
func (g *asyncGenerator) step(a *vm.Agent, c vm.Completion) {
	g.co.resume(a, c)
	if !g.co.done {
		return
	}
	g.state = generatorCompleted
	result := g.co.result
	switch result.Type {
	case vm.Return:
		result = vm.NormalCompletion(result.Value)
	case vm.Normal:
		result = vm.NormalCompletion(vm.Undefined)
	}
	g.completeStep(a, result, true)
	g.drainQueue(a)
}

// completeStep settles the front request with c.
func (g *asyncGenerator) completeStep(a *vm.Agent, c vm.Completion, done bool) {
	errors.Assert(len(g.queue) > 0, "AsyncGeneratorCompleteStep", "request queue is empty")
	next := g.queue[0]
	g.queue = g.queue[1:]
	if c.IsThrow() {
		vm.Call(a, next.capability.reject, vm.Undefined, []vm.Value{c.Value})
		return
	}
	result := vm.CreateIterResultObject(a, c.Value, done)
	vm.Call(a, next.capability.resolve, vm.Undefined, []vm.Value{vm.ObjectValue(result)})
}

// awaitReturn settles a return request against a finished body once the
// returned value settles.
func (g *asyncGenerator) awaitReturn(a *vm.Agent) {
	errors.Assert(len(g.queue) > 0, "AsyncGeneratorAwaitReturn", "request queue is empty")
	completion := g.queue[0].completion
	promise := g.in.promiseResolve(a, a.Intrinsic(intrinsicPromise), completion.Value)
	if promise.IsAbrupt() {
		g.state = generatorCompleted
		g.completeStep(a, promise, true)
		g.drainQueue(a)
		return
	}
	realm := a.CurrentRealm()
	settle := func(toCompletion func(vm.Value) vm.Completion) *vm.Object {
		return vm.NewNativeFunction(a, realm, 1, "", func(a *vm.Agent, call vm.BuiltinCall) vm.Completion {
			g.state = generatorCompleted
			g.completeStep(a, toCompletion(call.Argument(0)), true)
			g.drainQueue(a)
			return vm.NormalCompletion(vm.Undefined)
		})
	}
	onFulfilled := settle(vm.NormalCompletion)
	onRejected := settle(vm.ThrowCompletion)
	g.in.performPromiseThen(a, promise.Value.AsObject(), vm.ObjectValue(onFulfilled), vm.ObjectValue(onRejected), nil)
}

// drainQueue settles the requests that arrived while the body was running
// its final steps.
func (g *asyncGenerator) drainQueue(a *vm.Agent) {
	errors.Assert(g.state == generatorCompleted, "AsyncGeneratorDrainQueue", "generator is %s", g.state)
	for len(g.queue) > 0 {
		completion := g.queue[0].completion
		if completion.Type == vm.Return {
			g.state = generatorAwaitingReturn
			g.awaitReturn(a)
			return
		}
		if completion.Type == vm.Normal {
			completion = vm.NormalCompletion(vm.Undefined)
		}
		g.completeStep(a, completion, true)
	}
}

// asyncGeneratorYield settles the front request with v. The operand is not
// awaited first. The body keeps running when more requests are queued.
func (ev *evaluator) asyncGeneratorYield(g *asyncGenerator, v vm.Value) vm.Completion {
	g.completeStep(ev.a, vm.NormalCompletion(v), false)
	if len(g.queue) > 0 {
		return ev.unwrapYieldResumption(g.queue[0].completion)
	}
	g.state = generatorSuspendedYield
	return ev.unwrapYieldResumption(g.co.suspend())
}

// unwrapYieldResumption turns a return request into a return completion of
// the awaited value.
func (ev *evaluator) unwrapYieldResumption(c vm.Completion) vm.Completion {
	if c.Type != vm.Return {
		return c
	}
	awaited := ev.await(c.Value)
	if awaited.IsAbrupt() {
		return awaited
	}
	return vm.ReturnCompletion(awaited.Value)
}

// asyncIteratorClose calls an async iterator's return method and awaits
// its result.
func (ev *evaluator) asyncIteratorClose(rec *iteratorRecord, c vm.Completion) vm.Completion {
	a := ev.a
	ret := vm.GetMethod(a, vm.ObjectValue(rec.iterator), vm.NewStringKey("return"))
	if ret.IsAbrupt() && !c.IsThrow() {
		return ret
	}
	if ret.IsAbrupt() || ret.Value.IsUndefined() {
		return c
	}
	inner := vm.Call(a, ret.Value, vm.ObjectValue(rec.iterator), nil)
	if !inner.IsAbrupt() {
		inner = ev.await(inner.Value)
	}
	if c.IsThrow() {
		return c
	}
	if inner.IsAbrupt() {
		return inner
	}
	if !inner.Value.IsObject() {
		return a.Throw(vm.ErrorKindTypeError, vm.MsgIteratorResultNotObject, vm.Inspect(inner.Value))
	}
	return c
}
