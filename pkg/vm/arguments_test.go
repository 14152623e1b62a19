package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-f1/forked-engine262/pkg/ast"
)

// mappedArguments binds names in a fresh environment the way parameter
// instantiation does and returns the environment with its arguments object.
func mappedArguments(t *testing.T, e *testEngine, names []string, args ...Value) (*DeclarativeEnvironment, *Object) {
	t.Helper()
	a := e.agent
	env := NewDeclarativeEnvironment(e.realm.GlobalEnv)
	for _, n := range names {
		if !env.HasBinding(a, n) {
			Must(env.CreateMutableBinding(a, n, false))
			Must(env.InitializeBinding(a, n, Undefined))
		}
	}
	for i, n := range names {
		v := Undefined
		if i < len(args) {
			v = args[i]
		}
		Must(env.SetMutableBinding(a, n, v, false))
	}
	F := e.function(simpleParams(names...), false, returning(Undefined))
	return env, CreateMappedArgumentsObject(a, F, simpleParams(names...), args, env)
}

func TestUnmappedArgumentsEmpty(t *testing.T) {
	e := newTestEngine(t)
	a := e.agent
	obj := CreateUnmappedArgumentsObject(a, nil)

	assert.Equal(t, 0.0, Must(Get(a, obj, key("length"))).AsFloat())
	assert.False(t, HasOwnProperty(a, obj, IndexKey(0)))
	assert.Equal(t, "Arguments", obj.Class())
	assert.True(t, obj.HasSlot("ParameterMap"))
	assert.True(t, obj.Slot("ParameterMap").IsUndefined())

	desc, ok := obj.GetOwnProperty(a, key("callee"))
	require.True(t, ok)
	require.True(t, desc.IsAccessorDescriptor())
	assert.False(t, desc.Enumerable.Bool())
	assert.False(t, desc.Configurable.Bool())
	thrower := e.realm.Intrinsic(IntrinsicThrowTypeError)
	assert.Same(t, thrower, desc.Get.AsObject())
	assert.Same(t, thrower, desc.Set.AsObject())

	e.throwMessage(Get(a, obj, key("callee")), "TypeError")
	e.throwMessage(Set(a, obj, key("callee"), True, true), "TypeError")
}

func TestUnmappedArgumentsProperties(t *testing.T) {
	e := newTestEngine(t)
	a := e.agent
	obj := CreateUnmappedArgumentsObject(a, []Value{NumberValue(1), NewString("two")})

	assert.Equal(t, []PropertyKey{
		IndexKey(0), IndexKey(1), key("length"), key("callee"), NewSymbolKey(SymbolIterator),
	}, obj.OwnPropertyKeys())

	length, _ := obj.GetOwnProperty(a, key("length"))
	assert.Equal(t, DataDescriptor(NumberValue(2), true, false, true), length)
	first, _ := obj.GetOwnProperty(a, IndexKey(0))
	assert.Equal(t, DataDescriptor(NumberValue(1), true, true, true), first)

	iter, _ := obj.GetOwnProperty(a, NewSymbolKey(SymbolIterator))
	assert.Same(t, e.realm.Intrinsic(IntrinsicArrayPrototypeValues), iter.Value.AsObject())
	assert.False(t, iter.Enumerable.Bool())
}

func TestMappedArgumentsAliasing(t *testing.T) {
	e := newTestEngine(t)
	a := e.agent
	env, obj := mappedArguments(t, e, []string{"a", "b"}, NumberValue(1), NumberValue(2))

	assert.True(t, obj.IsMapped(IndexKey(0)))
	assert.True(t, obj.IsMapped(IndexKey(1)))

	// Binding writes show through the object.
	Must(env.SetMutableBinding(a, "a", NumberValue(10), false))
	assert.Equal(t, 10.0, Must(Get(a, obj, IndexKey(0))).AsFloat())
	desc, _ := obj.GetOwnProperty(a, IndexKey(0))
	assert.Equal(t, 10.0, desc.Value.AsFloat())

	// Object writes show through the binding.
	Must(Set(a, obj, IndexKey(1), NumberValue(20), true))
	assert.Equal(t, 20.0, Must(env.GetBindingValue(a, "b", false)).AsFloat())

	callee := Must(Get(a, obj, key("callee")))
	assert.True(t, callee.IsCallable())
	calleeDesc, _ := obj.GetOwnProperty(a, key("callee"))
	assert.Equal(t, DataDescriptor(callee, true, false, true), calleeDesc)
}

func TestMappedArgumentsDuplicateNamesLastWins(t *testing.T) {
	e := newTestEngine(t)
	a := e.agent
	env, obj := mappedArguments(t, e, []string{"a", "a"}, NumberValue(1), NumberValue(2))

	assert.False(t, obj.IsMapped(IndexKey(0)))
	assert.True(t, obj.IsMapped(IndexKey(1)))
	assert.Equal(t, 2.0, Must(env.GetBindingValue(a, "a", false)).AsFloat())

	Must(env.SetMutableBinding(a, "a", NumberValue(9), false))
	assert.Equal(t, 1.0, Must(Get(a, obj, IndexKey(0))).AsFloat())
	assert.Equal(t, 9.0, Must(Get(a, obj, IndexKey(1))).AsFloat())
}

func TestMappedArgumentsExtraAndMissingArguments(t *testing.T) {
	e := newTestEngine(t)
	a := e.agent

	env, obj := mappedArguments(t, e, []string{"a"}, NumberValue(1), NumberValue(2), NumberValue(3))
	assert.True(t, obj.IsMapped(IndexKey(0)))
	assert.False(t, obj.IsMapped(IndexKey(1)))
	assert.False(t, obj.IsMapped(IndexKey(2)))
	Must(Set(a, obj, IndexKey(2), NumberValue(30), true))
	assert.Equal(t, 1.0, Must(env.GetBindingValue(a, "a", false)).AsFloat())
	assert.Equal(t, 3.0, Must(Get(a, obj, key("length"))).AsFloat())

	env, obj = mappedArguments(t, e, []string{"a", "b"}, NumberValue(1))
	assert.True(t, obj.IsMapped(IndexKey(0)))
	assert.False(t, obj.IsMapped(IndexKey(1)))
	Must(env.SetMutableBinding(a, "b", NumberValue(5), false))
	assert.False(t, HasOwnProperty(a, obj, IndexKey(1)))
}

func TestMappedArgumentsDefineSeversLink(t *testing.T) {
	e := newTestEngine(t)
	a := e.agent

	t.Run("non-writable keeps current value", func(t *testing.T) {
		env, obj := mappedArguments(t, e, []string{"a"}, NumberValue(1))
		Must(env.SetMutableBinding(a, "a", NumberValue(2), false))
		require.True(t, obj.DefineOwnProperty(a, IndexKey(0), PropertyDescriptor{Writable: FlagFalse}))
		assert.False(t, obj.IsMapped(IndexKey(0)))

		desc, _ := obj.GetOwnProperty(a, IndexKey(0))
		assert.Equal(t, 2.0, desc.Value.AsFloat())
		Must(env.SetMutableBinding(a, "a", NumberValue(3), false))
		assert.Equal(t, 2.0, Must(Get(a, obj, IndexKey(0))).AsFloat())
	})

	t.Run("value write-through then non-writable", func(t *testing.T) {
		env, obj := mappedArguments(t, e, []string{"a"}, NumberValue(1))
		require.True(t, obj.DefineOwnProperty(a, IndexKey(0), PropertyDescriptor{Value: NumberValue(7), HasValue: true, Writable: FlagFalse}))
		assert.Equal(t, 7.0, Must(env.GetBindingValue(a, "a", false)).AsFloat())
		assert.False(t, obj.IsMapped(IndexKey(0)))
	})

	t.Run("accessor", func(t *testing.T) {
		env, obj := mappedArguments(t, e, []string{"a"}, NumberValue(1))
		getter := ObjectValue(e.function(nil, false, returning(NumberValue(99))))
		require.True(t, obj.DefineOwnProperty(a, IndexKey(0), PropertyDescriptor{Get: getter, HasGet: true}))
		assert.False(t, obj.IsMapped(IndexKey(0)))
		assert.Equal(t, 99.0, Must(Get(a, obj, IndexKey(0))).AsFloat())
		assert.Equal(t, 1.0, Must(env.GetBindingValue(a, "a", false)).AsFloat())
	})

	t.Run("delete", func(t *testing.T) {
		env, obj := mappedArguments(t, e, []string{"a"}, NumberValue(1))
		assert.True(t, obj.Delete(a, IndexKey(0)))
		assert.False(t, obj.IsMapped(IndexKey(0)))
		Must(Set(a, obj, IndexKey(0), NumberValue(4), true))
		assert.Equal(t, 1.0, Must(env.GetBindingValue(a, "a", false)).AsFloat())
	})
}

func TestMappedArgumentsRequireSimpleParameters(t *testing.T) {
	e := newTestEngine(t)
	env := NewDeclarativeEnvironment(nil)
	withDefault := &ast.FormalParameters{Params: []*ast.Parameter{
		{Target: &ast.BindingIdentifier{Name: "a"}, Default: &ast.NumberLiteral{Value: 1}},
	}}
	F := e.function(withDefault, false, returning(Undefined))
	requireAssertion(t, "CreateMappedArgumentsObject", func() {
		CreateMappedArgumentsObject(e.agent, F, withDefault, nil, env)
	})
}

func TestArgumentsIterator(t *testing.T) {
	e := newTestEngine(t)
	a := e.agent
	obj := CreateUnmappedArgumentsObject(a, []Value{NewString("x"), NewString("y")})

	iter := Must(Invoke(a, ObjectValue(obj), NewSymbolKey(SymbolIterator), nil))
	var got []string
	for {
		result := Must(Invoke(a, iter, key("next"), nil)).AsObject()
		if ToBoolean(Must(Get(a, result, key("done")))) {
			break
		}
		got = append(got, Must(Get(a, result, key("value"))).AsString())
	}
	assert.Equal(t, []string{"x", "y"}, got)
	assert.Equal(t, "[object Arguments]", Must(Invoke(a, ObjectValue(obj), key("toString"), nil)).AsString())
}
