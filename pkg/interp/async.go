package interp

import (
	"github.com/j-f1/forked-engine262/pkg/ast"
	"github.com/j-f1/forked-engine262/pkg/vm"
)

// awaiter is a body that can suspend at await: an async function call or
// an async generator.
type awaiter interface {
	coroutine() *coroutine
	step(a *vm.Agent, c vm.Completion)
}

// asyncTask is one running async function call.
type asyncTask struct {
	co         *coroutine
	capability *promiseCapability
}

func (t *asyncTask) coroutine() *coroutine { return t.co }

// step resumes the body and settles the call's promise once it finishes.
func (t *asyncTask) step(a *vm.Agent, c vm.Completion) {
	t.co.resume(a, c)
	if !t.co.done {
		return
	}
	result := t.co.result
	switch result.Type {
	case vm.Throw:
		vm.Call(a, t.capability.reject, vm.Undefined, []vm.Value{result.Value})
	case vm.Return:
		vm.Call(a, t.capability.resolve, vm.Undefined, []vm.Value{result.Value})
	default:
		vm.Call(a, t.capability.resolve, vm.Undefined, []vm.Value{vm.Undefined})
	}
}

func (in *Interpreter) evaluateAsyncFunctionBody(a *vm.Agent, body *ast.FunctionNode, F *vm.Object, args []vm.Value) vm.Completion {
	ev := in.evaluator(a, body.Strict)
	return in.startAsync(ev, F, args, func() vm.Completion {
		return ev.statementList(body.Body)
	})
}

func (in *Interpreter) evaluateAsyncConciseBody(a *vm.Agent, body *ast.FunctionNode, F *vm.Object, args []vm.Value) vm.Completion {
	ev := in.evaluator(a, body.Strict)
	return in.startAsync(ev, F, args, func() vm.Completion {
		v := ev.value(body.Expression)
		if v.IsAbrupt() {
			return v
		}
		return vm.ReturnCompletion(v.Value)
	})
}

// startAsync instantiates the declarations of an async call, then runs run
// as a coroutine until its first await. The call returns the promise at
// once.
func (in *Interpreter) startAsync(ev *evaluator, F *vm.Object, args []vm.Value, run func() vm.Completion) vm.Completion {
	a := ev.a
	capability := in.intrinsicCapability(a)
	if c := ev.functionDeclarationInstantiation(F, args); c.IsAbrupt() {
		vm.Call(a, capability.reject, vm.Undefined, []vm.Value{c.Value})
		return vm.ReturnCompletion(capability.promise)
	}
	asyncContext := *a.RunningContext()
	task := &asyncTask{capability: capability}
	asyncContext.HostDefined = task
	task.co = in.newCoroutine(&asyncContext, run)
	task.step(a, vm.NormalCompletion(vm.Undefined))
	return vm.ReturnCompletion(capability.promise)
}

// await suspends the running async body until v settles. It returns the
// fulfilled value, or a throw completion carrying the rejection reason.
func (ev *evaluator) await(v vm.Value) vm.Completion {
	a := ev.a
	w, ok := ev.context().HostDefined.(awaiter)
	if !ok {
		return a.Throw(vm.ErrorKindSyntaxError, vm.MsgAwaitOutsideAsync)
	}
	promise := ev.promiseResolve(a, a.Intrinsic(intrinsicPromise), v)
	if promise.IsAbrupt() {
		return promise
	}
	realm := a.CurrentRealm()
	onFulfilled := vm.NewNativeFunction(a, realm, 1, "", func(a *vm.Agent, call vm.BuiltinCall) vm.Completion {
		w.step(a, vm.NormalCompletion(call.Argument(0)))
		return vm.NormalCompletion(vm.Undefined)
	})
	onRejected := vm.NewNativeFunction(a, realm, 1, "", func(a *vm.Agent, call vm.BuiltinCall) vm.Completion {
		w.step(a, vm.ThrowCompletion(call.Argument(0)))
		return vm.NormalCompletion(vm.Undefined)
	})
	ev.performPromiseThen(a, promise.Value.AsObject(), vm.ObjectValue(onFulfilled), vm.ObjectValue(onRejected), nil)
	return w.coroutine().suspend()
}
