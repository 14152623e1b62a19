package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-f1/forked-engine262/pkg/ast"
)

func TestCallCompletionMapping(t *testing.T) {
	e := newTestEngine(t)
	a := e.agent
	tests := []struct {
		name string
		body bodyFunc
		want Completion
	}{
		{"return", returning(NumberValue(1)), NormalCompletion(NumberValue(1))},
		{"fall off the end", func(*Agent, *Object, []Value) Completion {
			return NormalCompletion(NumberValue(99))
		}, NormalCompletion(Undefined)},
		{"throw", func(*Agent, *Object, []Value) Completion {
			return ThrowCompletion(NewString("boom"))
		}, ThrowCompletion(NewString("boom"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			depth := a.StackDepth()
			F := e.function(nil, true, tt.body)
			got := F.Call(a, Undefined, nil)
			assert.Equal(t, tt.want.Type, got.Type)
			assert.True(t, tt.want.Value.Is(got.Value), "got %s", Inspect(got.Value))
			assert.Equal(t, depth, a.StackDepth())
		})
	}
}

func TestCallPushesCalleeContext(t *testing.T) {
	e := newTestEngine(t)
	a := e.agent
	outer := a.RunningContext()

	var ctx *ExecutionContext
	var gotArgs []Value
	F := e.function(simpleParams("x"), true, func(a *Agent, F *Object, args []Value) Completion {
		ctx = a.RunningContext()
		gotArgs = args
		return NormalCompletion(Undefined)
	})
	Must(F.Call(a, Undefined, []Value{NumberValue(1)}))

	require.NotNil(t, ctx)
	assert.NotSame(t, outer, ctx)
	assert.Same(t, F, ctx.Function)
	assert.Same(t, e.realm, ctx.Realm)
	assert.Same(t, F.Function().ScriptOrModule, ctx.ScriptOrModule)
	assert.False(t, ctx.CallSite.ConstructCall)
	env, ok := ctx.LexicalEnvironment.(*FunctionEnvironment)
	require.True(t, ok)
	assert.Same(t, ctx.LexicalEnvironment, ctx.VariableEnvironment)
	assert.Same(t, F, env.FunctionObject)
	assert.Equal(t, Environment(e.realm.GlobalEnv), env.OuterEnv())
	assert.True(t, env.NewTarget.IsUndefined())
	assert.Equal(t, []Value{NumberValue(1)}, gotArgs)
	assert.Same(t, outer, a.RunningContext())
}

func TestCallBindsThis(t *testing.T) {
	e := newTestEngine(t)
	a := e.agent
	captureThis := func(strict bool) func(this Value) Value {
		var got Value
		F := e.function(nil, strict, func(a *Agent, F *Object, args []Value) Completion {
			got = Must(a.ResolveThisBinding())
			return NormalCompletion(Undefined)
		})
		return func(this Value) Value {
			Must(F.Call(a, this, nil))
			return got
		}
	}
	global := e.realm.GlobalObject

	strict := captureThis(true)
	assert.True(t, strict(Undefined).IsUndefined())
	assert.True(t, strict(Null).IsNull())
	assert.Equal(t, 1.0, strict(NumberValue(1)).AsFloat())

	sloppy := captureThis(false)
	assert.Same(t, global, sloppy(Undefined).AsObject())
	assert.Same(t, global, sloppy(Null).AsObject())
	boxed := sloppy(NumberValue(1)).AsObject()
	assert.True(t, boxed.Slot("NumberData").Is(NumberValue(1)))
	obj := e.object()
	assert.Same(t, obj, sloppy(ObjectValue(obj)).AsObject())
}

func TestLexicalThisIsNotBound(t *testing.T) {
	e := newTestEngine(t)
	a := e.agent
	var env *FunctionEnvironment
	arrow := e.functionOfKind(nil, ast.ConciseExpressionBody, false, true, func(a *Agent, F *Object, args []Value) Completion {
		env = a.RunningContext().LexicalEnvironment.(*FunctionEnvironment)
		return NormalCompletion(Undefined)
	})
	Must(arrow.Call(a, NumberValue(5), nil))
	require.NotNil(t, env)
	assert.Equal(t, ThisLexical, env.ThisBindingStatus)
	assert.False(t, env.HasThisBinding())
	assert.True(t, env.ThisValue.IsUndefined())
}

func TestClassConstructorCallThrowsBeforePush(t *testing.T) {
	e := newTestEngine(t)
	a := e.agent
	ran := false
	F := e.function(nil, true, func(*Agent, *Object, []Value) Completion {
		ran = true
		return NormalCompletion(Undefined)
	})
	MakeConstructor(a, F)
	MakeClassConstructor(F)
	SetFunctionName(a, F, key("Widget"), "")

	depth := a.StackDepth()
	msg := e.throwMessage(F.Call(a, Undefined, nil), "TypeError")
	assert.Equal(t, "Class constructor Widget cannot be invoked without 'new'", msg)
	assert.False(t, ran)
	assert.Equal(t, depth, a.StackDepth())

	obj := Must(Construct(a, F, nil, nil))
	assert.True(t, obj.IsObject())
	assert.True(t, ran)
}

func TestConstructBase(t *testing.T) {
	e := newTestEngine(t)
	a := e.agent

	var thisInBody Value
	var ctx *ExecutionContext
	F := e.function(nil, false, func(a *Agent, F *Object, args []Value) Completion {
		thisInBody = Must(a.ResolveThisBinding())
		ctx = a.RunningContext()
		return NormalCompletion(Undefined)
	})
	MakeConstructor(a, F)
	proto := Must(Get(a, F, key("prototype"))).AsObject()

	result := Must(Construct(a, F, nil, nil))
	assert.Same(t, thisInBody.AsObject(), result.AsObject())
	assert.Same(t, proto, result.AsObject().GetPrototypeOf())
	assert.True(t, ctx.CallSite.ConstructCall)
	assert.Same(t, F, ctx.LexicalEnvironment.(*FunctionEnvironment).NewTarget.AsObject())

	t.Run("returning an object replaces this", func(t *testing.T) {
		replacement := e.object()
		G := e.function(nil, false, returning(ObjectValue(replacement)))
		MakeConstructor(a, G)
		assert.Same(t, replacement, Must(Construct(a, G, nil, nil)).AsObject())
	})

	t.Run("returning a primitive keeps this", func(t *testing.T) {
		G := e.function(nil, false, returning(NumberValue(1)))
		MakeConstructor(a, G)
		got := Must(Construct(a, G, nil, nil))
		assert.True(t, got.IsObject())
	})

	t.Run("new target supplies the prototype", func(t *testing.T) {
		other := e.function(nil, false, returning(Undefined))
		MakeConstructor(a, other)
		otherProto := Must(Get(a, other, key("prototype"))).AsObject()
		got := Must(Construct(a, F, nil, other))
		assert.Same(t, otherProto, got.AsObject().GetPrototypeOf())

		Must(Set(a, other, key("prototype"), Null, true))
		got = Must(Construct(a, F, nil, other))
		assert.Same(t, e.realm.Intrinsic(IntrinsicObjectPrototype), got.AsObject().GetPrototypeOf())
	})
}

func TestConstructDerived(t *testing.T) {
	e := newTestEngine(t)
	a := e.agent
	derived := func(body bodyFunc) *Object {
		F := e.function(nil, true, body)
		MakeConstructor(a, F)
		MakeClassConstructor(F)
		F.Function().ConstructorKind = ConstructorDerived
		return F
	}
	bindThis := func(v Value) bodyFunc {
		return func(a *Agent, F *Object, args []Value) Completion {
			env := a.RunningContext().LexicalEnvironment.(*FunctionEnvironment)
			if c := env.BindThisValue(a, v); c.IsAbrupt() {
				return c
			}
			return NormalCompletion(Undefined)
		}
	}

	t.Run("this comes from the environment", func(t *testing.T) {
		bound := e.object()
		got := Must(Construct(a, derived(bindThis(ObjectValue(bound))), nil, nil))
		assert.Same(t, bound, got.AsObject())
	})

	t.Run("returning a primitive throws", func(t *testing.T) {
		depth := a.StackDepth()
		msg := e.throwMessage(Construct(a, derived(returning(NumberValue(1))), nil, nil), "TypeError")
		assert.Equal(t, MsgDerivedConstructorReturnedNonObject, msg)
		assert.Equal(t, depth, a.StackDepth())
	})

	t.Run("returning undefined without super throws", func(t *testing.T) {
		e.throwMessage(Construct(a, derived(returning(Undefined)), nil, nil), "ReferenceError")
	})

	t.Run("returning an object skips this", func(t *testing.T) {
		replacement := e.object()
		got := Must(Construct(a, derived(returning(ObjectValue(replacement))), nil, nil))
		assert.Same(t, replacement, got.AsObject())
	})

	t.Run("binding twice throws", func(t *testing.T) {
		twice := func(a *Agent, F *Object, args []Value) Completion {
			env := a.RunningContext().LexicalEnvironment.(*FunctionEnvironment)
			Must(env.BindThisValue(a, ObjectValue(e.object())))
			return env.BindThisValue(a, ObjectValue(e.object()))
		}
		e.throwMessage(Construct(a, derived(twice), nil, nil), "ReferenceError")
	})
}

func TestStackBalanceUnderAbruptCompletions(t *testing.T) {
	e := newTestEngine(t)
	a := e.agent
	depth := a.StackDepth()

	inner := e.function(nil, true, func(*Agent, *Object, []Value) Completion {
		return ThrowCompletion(NewString("inner"))
	})
	outer := e.function(nil, true, func(a *Agent, F *Object, args []Value) Completion {
		assert.Equal(t, depth+1, a.StackDepth())
		return inner.Call(a, Undefined, nil)
	})
	c := outer.Call(a, Undefined, nil)
	assert.True(t, c.IsThrow())
	assert.Equal(t, depth, a.StackDepth())

	ctor := e.function(nil, true, func(*Agent, *Object, []Value) Completion {
		return ThrowCompletion(NewString("ctor"))
	})
	MakeConstructor(a, ctor)
	assert.True(t, Construct(a, ctor, nil, nil).IsThrow())
	assert.Equal(t, depth, a.StackDepth())

	// A body that breaks an engine invariant still leaves the stack balanced.
	broken := e.function(nil, true, func(a *Agent, F *Object, args []Value) Completion {
		MakeClassConstructor(F)
		MakeClassConstructor(F)
		return NormalCompletion(Undefined)
	})
	requireAssertion(t, "MakeClassConstructor", func() { broken.Call(a, Undefined, nil) })
	assert.Equal(t, depth, a.StackDepth())
}

func TestCallDepthLimit(t *testing.T) {
	e := newTestEngine(t)
	a := e.agent
	a.maxDepth = 8

	var recurse *Object
	calls := 0
	recurse = e.function(nil, true, func(a *Agent, F *Object, args []Value) Completion {
		calls++
		return recurse.Call(a, Undefined, nil)
	})
	msg := e.throwMessage(recurse.Call(a, Undefined, nil), "RangeError")
	assert.Equal(t, MsgCallStackExceeded, msg)
	assert.Equal(t, 7, calls)
	assert.Equal(t, 1, a.StackDepth())
}

func TestEvaluateBodyDispatch(t *testing.T) {
	e := newTestEngine(t)
	a := e.agent
	shapes := map[ast.BodyKind]ast.BodyShape{}
	for _, kind := range []ast.BodyKind{
		ast.FunctionBody, ast.ConciseFunctionBody, ast.ConciseExpressionBody,
		ast.GeneratorBody, ast.AsyncFunctionBody, ast.AsyncConciseFunctionBody,
		ast.AsyncConciseExpressionBody, ast.AsyncGeneratorBody,
	} {
		var seen ast.BodyShape
		for _, shape := range []ast.BodyShape{
			ast.ShapeFunction, ast.ShapeExpression, ast.ShapeGenerator,
			ast.ShapeAsyncFunction, ast.ShapeAsyncExpression, ast.ShapeAsyncGenerator,
		} {
			shape := shape
			a.RegisterBodyEvaluator(shape, func(*Agent, *ast.FunctionNode, *Object, []Value) Completion {
				seen = shape
				return NormalCompletion(Undefined)
			})
		}
		F := e.functionOfKind(nil, kind, true, false, nil)
		Must(F.Call(a, Undefined, nil))
		shapes[kind] = seen
	}
	assert.Equal(t, map[ast.BodyKind]ast.BodyShape{
		ast.FunctionBody:               ast.ShapeFunction,
		ast.ConciseFunctionBody:        ast.ShapeFunction,
		ast.ConciseExpressionBody:      ast.ShapeExpression,
		ast.GeneratorBody:              ast.ShapeGenerator,
		ast.AsyncFunctionBody:          ast.ShapeAsyncFunction,
		ast.AsyncConciseFunctionBody:   ast.ShapeAsyncFunction,
		ast.AsyncConciseExpressionBody: ast.ShapeAsyncExpression,
		ast.AsyncGeneratorBody:         ast.ShapeAsyncGenerator,
	}, shapes)

	depth := a.StackDepth()
	unknown := e.functionOfKind(nil, ast.BodyUnknown, true, false, nil)
	requireAssertion(t, "OrdinaryCallEvaluateBody", func() { unknown.Call(a, Undefined, nil) })
	assert.Equal(t, depth, a.StackDepth())
}

func TestCallNonCallable(t *testing.T) {
	e := newTestEngine(t)
	msg := e.throwMessage(Call(e.agent, NumberValue(1), Undefined, nil), "TypeError")
	assert.Equal(t, "1 is not a function", msg)
	e.throwMessage(Call(e.agent, ObjectValue(e.object()), Undefined, nil), "TypeError")
}

func TestBindThisTwiceIsAnAssertion(t *testing.T) {
	e := newTestEngine(t)
	a := e.agent
	F := e.function(nil, true, nil)
	ctx := a.PrepareForOrdinaryCall(F, Undefined)
	defer a.PopContext(ctx)
	Must(a.OrdinaryCallBindThis(F, ctx, Undefined))
	requireAssertion(t, "OrdinaryCallBindThis", func() { a.OrdinaryCallBindThis(F, ctx, Undefined) })
}

func TestPrepareRejectsPrimitiveNewTarget(t *testing.T) {
	e := newTestEngine(t)
	a := e.agent
	F := e.function(nil, true, nil)
	depth := a.StackDepth()
	requireAssertion(t, "PrepareForOrdinaryCall", func() { a.PrepareForOrdinaryCall(F, NumberValue(1)) })
	assert.Equal(t, depth, a.StackDepth())
}
