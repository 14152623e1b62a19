package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrdinaryObjectBasic(t *testing.T) {
	e := newTestEngine(t)
	a := e.agent
	o := e.object()

	assert.True(t, CreateDataProperty(a, o, key("x"), NumberValue(10)))
	assert.True(t, HasOwnProperty(a, o, key("x")))
	assert.False(t, HasOwnProperty(a, o, key("y")))
	assert.Equal(t, 10.0, Must(Get(a, o, key("x"))).AsFloat())
	assert.True(t, Must(Get(a, o, key("missing"))).IsUndefined())

	desc, ok := o.GetOwnProperty(a, key("x"))
	require.True(t, ok)
	assert.Equal(t, DataDescriptor(NumberValue(10), true, true, true), desc)

	assert.True(t, Must(Set(a, o, key("x"), NumberValue(11), true)).AsBoolean())
	assert.Equal(t, 11.0, Must(Get(a, o, key("x"))).AsFloat())

	assert.True(t, o.Delete(a, key("x")))
	assert.False(t, HasOwnProperty(a, o, key("x")))
}

func TestOwnPropertyKeysOrder(t *testing.T) {
	e := newTestEngine(t)
	a := e.agent
	o := e.object()
	s1, s2 := NewSymbol("first"), NewSymbol("second")

	CreateDataProperty(a, o, key("b"), True)
	CreateDataProperty(a, o, NewSymbolKey(s1), True)
	CreateDataProperty(a, o, IndexKey(10), True)
	CreateDataProperty(a, o, key("a"), True)
	CreateDataProperty(a, o, IndexKey(2), True)
	CreateDataProperty(a, o, NewSymbolKey(s2), True)
	CreateDataProperty(a, o, key("01"), True)

	assert.Equal(t, []PropertyKey{
		IndexKey(2), IndexKey(10),
		key("b"), key("a"), key("01"),
		NewSymbolKey(s1), NewSymbolKey(s2),
	}, o.OwnPropertyKeys())

	o.Delete(a, key("b"))
	CreateDataProperty(a, o, key("b"), True)
	assert.Equal(t, []PropertyKey{
		IndexKey(2), IndexKey(10),
		key("a"), key("01"), key("b"),
		NewSymbolKey(s1), NewSymbolKey(s2),
	}, o.OwnPropertyKeys())
}

func TestPrototypeChain(t *testing.T) {
	e := newTestEngine(t)
	a := e.agent
	parent := e.object()
	child := ObjectCreate(parent)
	CreateDataProperty(a, parent, key("inherited"), NewString("yes"))

	assert.Equal(t, "yes", Must(Get(a, child, key("inherited"))).AsString())
	assert.True(t, child.HasProperty(a, key("inherited")))
	assert.False(t, HasOwnProperty(a, child, key("inherited")))

	// Assignment shadows instead of writing through.
	Must(Set(a, child, key("inherited"), NewString("own"), true))
	assert.Equal(t, "own", Must(Get(a, child, key("inherited"))).AsString())
	assert.Equal(t, "yes", Must(Get(a, parent, key("inherited"))).AsString())

	// A read-only inherited property blocks assignment.
	parent.DefineOwnProperty(a, key("fixed"), DataDescriptor(NumberValue(1), false, true, true))
	assert.False(t, Must(child.Set(a, key("fixed"), NumberValue(2), ObjectValue(child))).AsBoolean())
	assert.False(t, Must(Set(a, child, key("fixed"), NumberValue(2), false)).AsBoolean())
	e.throwMessage(Set(a, child, key("fixed"), NumberValue(2), true), "TypeError")
}

func TestSetPrototypeOfRejectsCycles(t *testing.T) {
	e := newTestEngine(t)
	a1 := e.object()
	a2 := ObjectCreate(a1)
	a3 := ObjectCreate(a2)

	assert.False(t, a1.SetPrototypeOf(a3))
	assert.False(t, a1.SetPrototypeOf(a1))
	assert.Same(t, e.realm.Intrinsic(IntrinsicObjectPrototype), a1.GetPrototypeOf())

	assert.True(t, a3.SetPrototypeOf(nil))
	assert.Nil(t, a3.GetPrototypeOf())

	a3.PreventExtensions()
	assert.False(t, a3.SetPrototypeOf(a1))
	assert.True(t, a3.SetPrototypeOf(nil), "setting the same prototype succeeds")
}

func TestDefineOwnPropertyValidation(t *testing.T) {
	e := newTestEngine(t)
	a := e.agent
	o := e.object()
	getter := ObjectValue(e.function(nil, false, returning(NumberValue(1))))

	require.True(t, o.DefineOwnProperty(a, key("locked"), DataDescriptor(NumberValue(1), false, false, false)))

	tests := []struct {
		name string
		desc PropertyDescriptor
		ok   bool
	}{
		{"same value", PropertyDescriptor{Value: NumberValue(1), HasValue: true}, true},
		{"different value", PropertyDescriptor{Value: NumberValue(2), HasValue: true}, false},
		{"make writable", PropertyDescriptor{Writable: FlagTrue}, false},
		{"make configurable", PropertyDescriptor{Configurable: FlagTrue}, false},
		{"make enumerable", PropertyDescriptor{Enumerable: FlagTrue}, false},
		{"to accessor", PropertyDescriptor{Get: getter, HasGet: true}, false},
		{"empty", PropertyDescriptor{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ok, o.DefineOwnProperty(a, key("locked"), tt.desc))
		})
	}

	// A configurable data property may become an accessor and keeps its
	// attributes.
	require.True(t, o.DefineOwnProperty(a, key("flex"), DataDescriptor(NumberValue(1), true, true, true)))
	require.True(t, o.DefineOwnProperty(a, key("flex"), PropertyDescriptor{Get: getter, HasGet: true}))
	desc, _ := o.GetOwnProperty(a, key("flex"))
	assert.True(t, desc.IsAccessorDescriptor())
	assert.True(t, desc.Enumerable.Bool())
	assert.True(t, desc.Set.IsUndefined())
	assert.Equal(t, 1.0, Must(Get(a, o, key("flex"))).AsFloat())

	o.PreventExtensions()
	assert.False(t, o.DefineOwnProperty(a, key("new"), DataDescriptor(True, true, true, true)))
	assert.False(t, CreateDataProperty(a, o, key("new"), True))
	e.throwMessage(CreateDataPropertyOrThrow(a, o, key("new"), True), "TypeError")
}

func TestAccessorsReceiveReceiver(t *testing.T) {
	e := newTestEngine(t)
	a := e.agent
	proto := e.object()
	child := ObjectCreate(proto)

	var gotThis, setThis Value
	var setArg Value
	getter := e.function(nil, true, func(a *Agent, F *Object, args []Value) Completion {
		gotThis = Must(a.ResolveThisBinding())
		return ReturnCompletion(NewString("got"))
	})
	setter := e.function(simpleParams("v"), true, func(a *Agent, F *Object, args []Value) Completion {
		setThis = Must(a.ResolveThisBinding())
		setArg = args[0]
		return NormalCompletion(Undefined)
	})
	require.True(t, proto.DefineOwnProperty(a, key("acc"), AccessorDescriptor(ObjectValue(getter), ObjectValue(setter), true, true)))

	assert.Equal(t, "got", Must(Get(a, child, key("acc"))).AsString())
	assert.Same(t, child, gotThis.AsObject())

	assert.True(t, Must(Set(a, child, key("acc"), NumberValue(5), true)).AsBoolean())
	assert.Same(t, child, setThis.AsObject())
	assert.Equal(t, 5.0, setArg.AsFloat())
	assert.False(t, HasOwnProperty(a, child, key("acc")))

	require.True(t, proto.DefineOwnProperty(a, key("readonly"), AccessorDescriptor(ObjectValue(getter), Undefined, true, true)))
	assert.False(t, Must(child.Set(a, key("readonly"), True, ObjectValue(child))).AsBoolean())
}

func TestDeleteNonConfigurable(t *testing.T) {
	e := newTestEngine(t)
	a := e.agent
	o := e.object()
	o.DefineOwnProperty(a, key("p"), DataDescriptor(True, true, true, false))

	assert.False(t, o.Delete(a, key("p")))
	assert.True(t, o.Delete(a, key("absent")))
	e.throwMessage(DeletePropertyOrThrow(a, o, key("p")), "TypeError")
}

func TestSetIntegrityLevel(t *testing.T) {
	e := newTestEngine(t)
	a := e.agent
	o := e.object()
	CreateDataProperty(a, o, key("x"), NumberValue(1))

	Must(SetIntegrityLevel(a, o, Frozen))
	assert.False(t, o.IsExtensible())
	desc, _ := o.GetOwnProperty(a, key("x"))
	assert.False(t, desc.Writable.Bool())
	assert.False(t, desc.Configurable.Bool())
	assert.True(t, desc.Enumerable.Bool())

	sealed := e.object()
	CreateDataProperty(a, sealed, key("y"), NumberValue(1))
	Must(SetIntegrityLevel(a, sealed, Sealed))
	desc, _ = sealed.GetOwnProperty(a, key("y"))
	assert.True(t, desc.Writable.Bool())
	assert.False(t, desc.Configurable.Bool())
}

func TestInternalSlots(t *testing.T) {
	o := ObjectCreate(nil, "A", "B", "A")
	assert.Equal(t, []string{"A", "B"}, o.SlotNames())
	assert.True(t, o.Slot("A").IsUndefined())
	o.SetSlot("B", NumberValue(2))
	assert.Equal(t, 2.0, o.Slot("B").AsFloat())
	assert.False(t, o.HasSlot("C"))
	requireAssertion(t, "SetSlot", func() { o.SetSlot("C", True) })
}

func TestPropertyDescriptorComplete(t *testing.T) {
	generic := PropertyDescriptor{Enumerable: FlagTrue}
	assert.True(t, generic.IsGenericDescriptor())
	assert.Equal(t, PropertyDescriptor{
		Value: Undefined, HasValue: true,
		Writable: FlagFalse, Enumerable: FlagTrue, Configurable: FlagFalse,
	}, generic.Complete())

	acc := PropertyDescriptor{Get: Undefined, HasGet: true}.Complete()
	assert.True(t, acc.IsAccessorDescriptor())
	assert.True(t, acc.HasSet)
	assert.False(t, acc.IsDataDescriptor())
}

func TestOrdinaryHasInstance(t *testing.T) {
	e := newTestEngine(t)
	a := e.agent
	C := e.function(nil, false, returning(Undefined))
	MakeConstructor(a, C)
	instance := Must(Construct(a, C, nil, nil))

	assert.True(t, Must(OrdinaryHasInstance(a, ObjectValue(C), instance)).AsBoolean())
	assert.False(t, Must(OrdinaryHasInstance(a, ObjectValue(C), ObjectValue(e.object()))).AsBoolean())
	assert.False(t, Must(OrdinaryHasInstance(a, ObjectValue(C), NumberValue(1))).AsBoolean())

	Must(C.Set(a, key("prototype"), NumberValue(1), ObjectValue(C)))
	e.throwMessage(OrdinaryHasInstance(a, ObjectValue(C), instance), "TypeError")
}
