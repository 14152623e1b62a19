package vm

import (
	"github.com/j-f1/forked-engine262/pkg/errors"
)

// ObjectKind selects the internal method implementations of an object.
type ObjectKind uint8

const (
	KindOrdinary ObjectKind = iota
	KindArguments
	KindFunction
	KindBuiltinFunction
)

func (k ObjectKind) String() string {
	switch k {
	case KindArguments:
		return "arguments"
	case KindFunction:
		return "function"
	case KindBuiltinFunction:
		return "builtin function"
	default:
		return "ordinary"
	}
}

// Object is an ordinary or exotic object. Exotic behaviour is selected by
// kind; everything not overridden falls through to the ordinary algorithms.
type Object struct {
	kind       ObjectKind
	prototype  *Object
	extensible bool
	props      propertyMap

	// Internal slots declared at creation. Reading or writing an undeclared
	// slot is an engine bug.
	slots     map[string]Value
	slotOrder []string

	class    string
	hostData any

	arguments *argumentsState
	function  *FunctionData
	builtin   *builtinState
}

// ObjectCreate allocates an ordinary, extensible object with the given
// prototype and internal slots, each initialized to undefined.
func ObjectCreate(proto *Object, slots ...string) *Object {
	o := &Object{
		kind:       KindOrdinary,
		prototype:  proto,
		extensible: true,
		class:      "Object",
	}
	o.declareSlots(slots)
	return o
}

func (o *Object) declareSlots(slots []string) {
	if len(slots) == 0 {
		return
	}
	if o.slots == nil {
		o.slots = make(map[string]Value, len(slots))
	}
	for _, name := range slots {
		if _, dup := o.slots[name]; dup {
			continue
		}
		o.slots[name] = Undefined
		o.slotOrder = append(o.slotOrder, name)
	}
}

func (o *Object) Kind() ObjectKind { return o.kind }

// Class is a debugging label such as "Object", "Arguments" or "Function".
func (o *Object) Class() string { return o.class }

// SetClass overrides the debugging label.
func (o *Object) SetClass(class string) { o.class = class }

// HasSlot reports whether the internal slot was declared.
func (o *Object) HasSlot(name string) bool {
	_, ok := o.slots[name]
	return ok
}

// Slot reads a declared internal slot.
func (o *Object) Slot(name string) Value {
	v, ok := o.slots[name]
	errors.Assert(ok, "Slot", "object has no [[%s]] slot", name)
	return v
}

// SetSlot writes a declared internal slot.
func (o *Object) SetSlot(name string, v Value) {
	_, ok := o.slots[name]
	errors.Assert(ok, "SetSlot", "object has no [[%s]] slot", name)
	o.slots[name] = v
}

// SlotNames lists the declared slots in declaration order.
func (o *Object) SlotNames() []string {
	return append([]string(nil), o.slotOrder...)
}

// HostData returns host-side state attached to the object (generator
// coroutines, promise reaction lists).
func (o *Object) HostData() any { return o.hostData }

func (o *Object) SetHostData(data any) { o.hostData = data }

// IsCallable reports whether the object has a [[Call]] method.
func (o *Object) IsCallable() bool {
	return o.kind == KindFunction || o.kind == KindBuiltinFunction
}

// IsConstructor reports whether the object has a [[Construct]] method.
func (o *Object) IsConstructor() bool {
	switch o.kind {
	case KindFunction:
		return o.function.constructable
	case KindBuiltinFunction:
		return o.builtin.constructor
	}
	return false
}

// --- Internal methods ---
//
// Every exotic kind either overrides a method or defers to the ordinary
// algorithm in ordinary.go.

func (o *Object) GetPrototypeOf() *Object {
	return o.prototype
}

func (o *Object) SetPrototypeOf(proto *Object) bool {
	return o.ordinarySetPrototypeOf(proto)
}

func (o *Object) IsExtensible() bool {
	return o.extensible
}

func (o *Object) PreventExtensions() bool {
	o.extensible = false
	return true
}

func (o *Object) GetOwnProperty(a *Agent, key PropertyKey) (PropertyDescriptor, bool) {
	if o.kind == KindArguments {
		return o.argumentsGetOwnProperty(a, key)
	}
	return o.ordinaryGetOwnProperty(key)
}

func (o *Object) DefineOwnProperty(a *Agent, key PropertyKey, desc PropertyDescriptor) bool {
	if o.kind == KindArguments {
		return o.argumentsDefineOwnProperty(a, key, desc)
	}
	return o.ordinaryDefineOwnProperty(a, key, desc)
}

func (o *Object) HasProperty(a *Agent, key PropertyKey) bool {
	return o.ordinaryHasProperty(a, key)
}

// Get returns the property value, invoking getters with receiver as this.
func (o *Object) Get(a *Agent, key PropertyKey, receiver Value) Completion {
	if o.kind == KindArguments {
		return o.argumentsGet(a, key, receiver)
	}
	return o.ordinaryGet(a, key, receiver)
}

// Set assigns the property. The completion value is a boolean reporting
// success; failure is not an exception at this level.
func (o *Object) Set(a *Agent, key PropertyKey, v Value, receiver Value) Completion {
	if o.kind == KindArguments {
		return o.argumentsSet(a, key, v, receiver)
	}
	return o.ordinarySet(a, key, v, receiver)
}

func (o *Object) Delete(a *Agent, key PropertyKey) bool {
	if o.kind == KindArguments {
		return o.argumentsDelete(a, key)
	}
	return o.ordinaryDelete(a, key)
}

func (o *Object) OwnPropertyKeys() []PropertyKey {
	return o.props.keys()
}
