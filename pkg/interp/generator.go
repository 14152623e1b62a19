package interp

import (
	"github.com/j-f1/forked-engine262/pkg/ast"
	"github.com/j-f1/forked-engine262/pkg/vm"
)

type generatorState uint8

const (
	generatorSuspendedStart generatorState = iota
	generatorSuspendedYield
	generatorExecuting
	generatorAwaitingReturn // async generators only
	generatorCompleted
)

var generatorStateNames = [...]string{
	generatorSuspendedStart: "suspendedStart",
	generatorSuspendedYield: "suspendedYield",
	generatorExecuting:      "executing",
	generatorAwaitingReturn: "awaiting-return",
	generatorCompleted:      "completed",
}

func (s generatorState) String() string { return generatorStateNames[s] }

// generator is the state behind a generator object.
type generator struct {
	state   generatorState
	co      *coroutine
	yielded vm.Value // iterator result handed out by the last yield
}

func (in *Interpreter) evaluateGeneratorBody(a *vm.Agent, body *ast.FunctionNode, F *vm.Object, args []vm.Value) vm.Completion {
	ev := in.evaluator(a, body.Strict)
	if c := ev.functionDeclarationInstantiation(F, args); c.IsAbrupt() {
		return c
	}
	G := vm.OrdinaryCreateFromConstructor(a, F, vm.IntrinsicGeneratorPrototype)
	if G.IsAbrupt() {
		return G
	}
	obj := G.Value.AsObject()
	obj.SetClass("Generator")
	gen := &generator{state: generatorSuspendedStart}
	obj.SetHostData(gen)
	genContext := a.RunningContext()
	genContext.HostDefined = gen
	gen.co = in.newCoroutine(genContext, func() vm.Completion {
		return ev.statementList(body.Body)
	})
	return vm.ReturnCompletion(G.Value)
}

func (in *Interpreter) installGeneratorPrototype(r *vm.Realm) {
	a := in.agent
	proto := r.Intrinsic(vm.IntrinsicGeneratorPrototype)
	method := func(name string, resumption func(vm.Value) vm.Completion) {
		r.InstallMethod(a, proto, vm.NewStringKey(name), 1, func(a *vm.Agent, call vm.BuiltinCall) vm.Completion {
			gen, c := validateGenerator(a, call.This, "Generator.prototype."+name)
			if c.IsAbrupt() {
				return c
			}
			return gen.resume(a, resumption(call.Argument(0)))
		})
	}
	method("next", vm.NormalCompletion)
	method("return", vm.ReturnCompletion)
	method("throw", vm.ThrowCompletion)
}

func validateGenerator(a *vm.Agent, v vm.Value, method string) (*generator, vm.Completion) {
	var gen *generator
	if v.IsObject() {
		gen, _ = v.AsObject().HostData().(*generator)
	}
	if gen == nil {
		return nil, a.Throw(vm.ErrorKindTypeError, vm.MsgIncompatibleReceiver, method, vm.Inspect(v))
	}
	if gen.state == generatorExecuting {
		return nil, a.Throw(vm.ErrorKindTypeError, vm.MsgGeneratorRunning)
	}
	return gen, vm.NormalCompletion(vm.Undefined)
}

// resume continues the generator with c: a normal completion for next, a
// return or throw completion for the other two methods.
func (gen *generator) resume(a *vm.Agent, c vm.Completion) vm.Completion {
	if c.IsAbrupt() && gen.state == generatorSuspendedStart {
		gen.state = generatorCompleted
		gen.co.close()
	}
	if gen.state == generatorCompleted {
		switch c.Type {
		case vm.Normal:
			return vm.NormalCompletion(vm.ObjectValue(vm.CreateIterResultObject(a, vm.Undefined, true)))
		case vm.Return:
			return vm.NormalCompletion(vm.ObjectValue(vm.CreateIterResultObject(a, c.Value, true)))
		}
		return c
	}
	gen.state = generatorExecuting
	gen.co.resume(a, c)
	if !gen.co.done {
		gen.state = generatorSuspendedYield
		return vm.NormalCompletion(gen.yielded)
	}
	gen.state = generatorCompleted
	result := gen.co.result
	switch result.Type {
	case vm.Throw:
		return result
	case vm.Return:
		return vm.NormalCompletion(vm.ObjectValue(vm.CreateIterResultObject(a, result.Value, true)))
	}
	return vm.NormalCompletion(vm.ObjectValue(vm.CreateIterResultObject(a, vm.Undefined, true)))
}

// --- yield ---

func (ev *evaluator) yield(e *ast.YieldExpression) vm.Completion {
	if e.Delegate {
		return ev.yieldDelegate(e.Argument)
	}
	v := vm.Undefined
	if e.Argument != nil {
		c := ev.value(e.Argument)
		if c.IsAbrupt() {
			return c
		}
		v = c.Value
	}
	switch host := ev.context().HostDefined.(type) {
	case *generator:
		return host.suspendWith(vm.ObjectValue(vm.CreateIterResultObject(ev.a, v, false)))
	case *asyncGenerator:
		return ev.asyncGeneratorYield(host, v)
	}
	return ev.a.Throw(vm.ErrorKindSyntaxError, vm.MsgYieldOutsideGenerator)
}

// suspendWith hands iterResult to the caller of next and parks the body.
func (gen *generator) suspendWith(iterResult vm.Value) vm.Completion {
	gen.yielded = iterResult
	return gen.co.suspend()
}

// yieldDelegate forwards next, throw and return to an inner iterator until
// it is done. In async generators the inner results are awaited.
func (ev *evaluator) yieldDelegate(arg ast.Expression) vm.Completion {
	a := ev.a
	var gen *generator
	var agen *asyncGenerator
	switch host := ev.context().HostDefined.(type) {
	case *generator:
		gen = host
	case *asyncGenerator:
		agen = host
	default:
		return a.Throw(vm.ErrorKindSyntaxError, vm.MsgYieldOutsideGenerator)
	}
	async := agen != nil

	v := ev.value(arg)
	if v.IsAbrupt() {
		return v
	}
	rec, c := getIterator(a, v.Value, async)
	if c.IsAbrupt() {
		return c
	}
	iterator := vm.ObjectValue(rec.iterator)

	// settle awaits an inner result when the inner iterator is async.
	settle := func(result vm.Completion) vm.Completion {
		if result.IsAbrupt() || !async || rec.fromSync {
			return result
		}
		return ev.await(result.Value)
	}
	received := vm.NormalCompletion(vm.Undefined)
	for {
		var inner vm.Completion
		switch received.Type {
		case vm.Normal:
			inner = settle(vm.Call(a, rec.next, iterator, []vm.Value{received.Value}))
		case vm.Throw:
			throw := vm.GetMethod(a, iterator, vm.NewStringKey("throw"))
			if throw.IsAbrupt() {
				return throw
			}
			if throw.Value.IsUndefined() {
				var closed vm.Completion
				if async && !rec.fromSync {
					closed = ev.asyncIteratorClose(rec, vm.NormalCompletion(vm.Undefined))
				} else {
					closed = iteratorClose(a, rec, vm.NormalCompletion(vm.Undefined))
				}
				if closed.IsAbrupt() {
					return closed
				}
				return a.Throw(vm.ErrorKindTypeError, vm.MsgIteratorNoThrow)
			}
			inner = settle(vm.Call(a, throw.Value, iterator, []vm.Value{received.Value}))
		case vm.Return:
			ret := vm.GetMethod(a, iterator, vm.NewStringKey("return"))
			if ret.IsAbrupt() {
				return ret
			}
			if ret.Value.IsUndefined() {
				if async {
					awaited := ev.await(received.Value)
					if awaited.IsAbrupt() {
						return awaited
					}
					return vm.ReturnCompletion(awaited.Value)
				}
				return received
			}
			inner = settle(vm.Call(a, ret.Value, iterator, []vm.Value{received.Value}))
		}
		if inner.IsAbrupt() {
			return inner
		}
		if !inner.Value.IsObject() {
			return a.Throw(vm.ErrorKindTypeError, vm.MsgIteratorResultNotObject, vm.Inspect(inner.Value))
		}
		done, c := iteratorComplete(a, inner.Value)
		if c.IsAbrupt() {
			return c
		}
		if done {
			value := iteratorValue(a, inner.Value)
			if !value.IsAbrupt() && rec.fromSync {
				value = ev.await(value.Value)
			}
			return delegateResult(received, value)
		}
		if !async {
			received = gen.suspendWith(inner.Value)
			continue
		}
		value := iteratorValue(a, inner.Value)
		if value.IsAbrupt() {
			return value
		}
		if rec.fromSync {
			if value = ev.await(value.Value); value.IsAbrupt() {
				return value
			}
		}
		received = ev.asyncGeneratorYield(agen, value.Value)
	}
}

// delegateResult is the completion of yield* once the inner iterator is
// done: a return request stays a return, anything else is the value.
func delegateResult(received, value vm.Completion) vm.Completion {
	if value.IsAbrupt() {
		return value
	}
	if received.Type == vm.Return {
		return vm.ReturnCompletion(value.Value)
	}
	return value
}
