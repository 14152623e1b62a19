package vm

import (
	"github.com/sirupsen/logrus"

	"github.com/j-f1/forked-engine262/pkg/errors"
)

// Call is the [[Call]] internal method.
func (o *Object) Call(a *Agent, this Value, args []Value) Completion {
	switch o.kind {
	case KindFunction:
		return o.functionCall(a, this, args)
	case KindBuiltinFunction:
		return o.builtinCall(a, this, args, nil)
	}
	errors.Unreachable("Call", "%s object is not callable", o.kind)
	return Completion{}
}

// Construct is the [[Construct]] internal method.
func (o *Object) Construct(a *Agent, args []Value, newTarget *Object) Completion {
	errors.Assert(o.IsConstructor(), "Construct", "%s object is not a constructor", o.kind)
	if newTarget == nil {
		newTarget = o
	}
	if o.kind == KindFunction {
		return o.functionConstruct(a, args, newTarget)
	}
	return o.builtinCall(a, Undefined, args, newTarget)
}

func (o *Object) functionCall(a *Agent, this Value, args []Value) Completion {
	fd := o.function
	if fd.IsClassConstructor {
		return a.Throw(ErrorKindTypeError, MsgConstructorNonCallable, functionDebugName(o))
	}
	if c := a.checkCallDepth(); c.IsAbrupt() {
		return c
	}
	calleeContext := a.PrepareForOrdinaryCall(o, Undefined)
	result := a.runCallee(calleeContext, func() Completion {
		if c := a.OrdinaryCallBindThis(o, calleeContext, this); c.IsAbrupt() {
			return c
		}
		return a.OrdinaryCallEvaluateBody(o, args)
	})
	switch result.Type {
	case Return:
		return NormalCompletion(result.Value)
	case Normal:
		return NormalCompletion(Undefined)
	}
	return result
}

func (o *Object) functionConstruct(a *Agent, args []Value, newTarget *Object) Completion {
	fd := o.function
	kind := fd.ConstructorKind
	var thisArgument Value
	if kind == ConstructorBase {
		c := OrdinaryCreateFromConstructor(a, newTarget, IntrinsicObjectPrototype)
		if c.IsAbrupt() {
			return c
		}
		thisArgument = c.Value
	}
	if c := a.checkCallDepth(); c.IsAbrupt() {
		return c
	}
	calleeContext := a.PrepareForOrdinaryCall(o, ObjectValue(newTarget))
	calleeContext.CallSite.ConstructCall = true
	env := calleeContext.LexicalEnvironment.(*FunctionEnvironment)
	result := a.runCallee(calleeContext, func() Completion {
		if kind == ConstructorBase {
			if c := a.OrdinaryCallBindThis(o, calleeContext, thisArgument); c.IsAbrupt() {
				return c
			}
		}
		return a.OrdinaryCallEvaluateBody(o, args)
	})
	switch result.Type {
	case Return:
		if result.Value.IsObject() {
			return NormalCompletion(result.Value)
		}
		if kind == ConstructorBase {
			return NormalCompletion(thisArgument)
		}
		if !result.Value.IsUndefined() {
			return a.Throw(ErrorKindTypeError, MsgDerivedConstructorReturnedNonObject)
		}
	case Normal:
	default:
		return result
	}
	return env.GetThisBinding(a)
}

// runCallee evaluates fn with ctx running and removes ctx afterwards, even
// when fn panics. ctx must already be on the stack.
func (a *Agent) runCallee(ctx *ExecutionContext, fn func() Completion) Completion {
	defer a.PopContext(ctx)
	errors.Assert(a.RunningContext() == ctx, "runCallee", "callee context is not running")
	return fn()
}

// PrepareForOrdinaryCall pushes a new context for a call to F with a fresh
// function environment.
func (a *Agent) PrepareForOrdinaryCall(F *Object, newTarget Value) *ExecutionContext {
	errors.Assert(newTarget.IsUndefined() || newTarget.IsObject(), "PrepareForOrdinaryCall", "new.target must be undefined or an object, got %s", newTarget.TypeName())
	fd := F.Function()
	localEnv := NewFunctionEnvironment(F, newTarget)
	calleeContext := &ExecutionContext{
		Function:            F,
		Realm:               fd.Realm,
		ScriptOrModule:      fd.ScriptOrModule,
		LexicalEnvironment:  localEnv,
		VariableEnvironment: localEnv,
	}
	a.PushContext(calleeContext)
	return calleeContext
}

// OrdinaryCallBindThis binds this in the callee's function environment.
// Sloppy functions see undefined and null as the global this and box other
// primitives; lexical functions bind nothing.
func (a *Agent) OrdinaryCallBindThis(F *Object, calleeContext *ExecutionContext, thisArgument Value) Completion {
	fd := F.Function()
	if fd.ThisMode == ThisModeLexical {
		return NormalCompletion(Undefined)
	}
	var thisValue Value
	if fd.ThisMode == ThisModeStrict {
		thisValue = thisArgument
	} else if thisArgument.IsNullish() {
		thisValue = ObjectValue(fd.Realm.GlobalEnv.GlobalThisValue)
	} else {
		// The callee context is running, so boxing uses the callee's realm.
		thisValue = Must(ToObject(a, thisArgument))
	}
	env, ok := calleeContext.LexicalEnvironment.(*FunctionEnvironment)
	errors.Assert(ok, "OrdinaryCallBindThis", "callee environment is %T, not a function environment", calleeContext.LexicalEnvironment)
	errors.Assert(env.ThisBindingStatus != ThisInitialized, "OrdinaryCallBindThis", "this is already bound")
	return env.BindThisValue(a, thisValue)
}

// OrdinaryCallEvaluateBody dispatches on the shape of F's body to the
// registered evaluator. A body with an unknown shape is an engine bug.
func (a *Agent) OrdinaryCallEvaluateBody(F *Object, args []Value) Completion {
	body := F.Function().ECMAScriptCode
	shape := body.Kind.Shape()
	evaluate, ok := a.evaluators[shape]
	if !ok {
		errors.Unreachable("OrdinaryCallEvaluateBody", "no evaluator for body kind %s", body.Kind)
	}
	if a.tracing {
		a.logger.WithFields(logrus.Fields{
			"function": functionDebugName(F),
			"kind":     body.Kind.String(),
		}).Trace("evaluate body")
	}
	return evaluate(a, body, F, args)
}

// PrepareForTailCall would discard the running context before a call in
// tail position. Proper tail calls are not implemented, so it does nothing.
func (a *Agent) PrepareForTailCall() {}
