package vm

import (
	"github.com/j-f1/forked-engine262/pkg/errors"
)

// Operations on objects built from the internal methods.

// Get reads o[key] with o as the receiver.
func Get(a *Agent, o *Object, key PropertyKey) Completion {
	return o.Get(a, key, ObjectValue(o))
}

// GetV reads a property from any value, boxing primitives first.
func GetV(a *Agent, v Value, key PropertyKey) Completion {
	c := ToObject(a, v)
	if c.IsAbrupt() {
		return c
	}
	return c.Value.AsObject().Get(a, key, v)
}

// Set writes o[key] = v and returns whether it succeeded. With throw set,
// a failed write is a TypeError instead.
func Set(a *Agent, o *Object, key PropertyKey, v Value, throw bool) Completion {
	c := o.Set(a, key, v, ObjectValue(o))
	if c.IsAbrupt() {
		return c
	}
	if !c.Value.AsBoolean() && throw {
		return a.Throw(ErrorKindTypeError, MsgCannotAssignReadOnly, key)
	}
	return NormalCompletion(c.Value)
}

// CreateDataProperty defines a writable, enumerable, configurable property.
func CreateDataProperty(a *Agent, o *Object, key PropertyKey, v Value) bool {
	return o.DefineOwnProperty(a, key, DataDescriptor(v, true, true, true))
}

func CreateDataPropertyOrThrow(a *Agent, o *Object, key PropertyKey, v Value) Completion {
	if !CreateDataProperty(a, o, key, v) {
		return a.Throw(ErrorKindTypeError, MsgCannotCreateProperty, key)
	}
	return NormalCompletion(True)
}

// CreateMethodProperty defines a writable, non-enumerable, configurable
// property.
func CreateMethodProperty(a *Agent, o *Object, key PropertyKey, v Value) {
	ok := o.DefineOwnProperty(a, key, DataDescriptor(v, true, false, true))
	errors.Assert(ok, "CreateMethodProperty", "could not define %s", key)
}

func DefinePropertyOrThrow(a *Agent, o *Object, key PropertyKey, desc PropertyDescriptor) Completion {
	if !o.DefineOwnProperty(a, key, desc) {
		return a.Throw(ErrorKindTypeError, MsgCannotDefineProperty, key)
	}
	return NormalCompletion(Undefined)
}

func DeletePropertyOrThrow(a *Agent, o *Object, key PropertyKey) Completion {
	if !o.Delete(a, key) {
		return a.Throw(ErrorKindTypeError, MsgCannotDeleteProperty, key)
	}
	return NormalCompletion(True)
}

func HasProperty(a *Agent, o *Object, key PropertyKey) bool {
	return o.HasProperty(a, key)
}

func HasOwnProperty(a *Agent, o *Object, key PropertyKey) bool {
	_, ok := o.GetOwnProperty(a, key)
	return ok
}

// GetMethod returns undefined for a nullish property and throws when the
// property is not callable.
func GetMethod(a *Agent, v Value, key PropertyKey) Completion {
	c := GetV(a, v, key)
	if c.IsAbrupt() {
		return c
	}
	if c.Value.IsNullish() {
		return NormalCompletion(Undefined)
	}
	if !c.Value.IsCallable() {
		return a.Throw(ErrorKindTypeError, MsgNotAFunction, key)
	}
	return c
}

// Call invokes f after checking that it is callable.
func Call(a *Agent, f Value, this Value, args []Value) Completion {
	if !f.IsCallable() {
		return a.Throw(ErrorKindTypeError, MsgNotAFunction, Inspect(f))
	}
	return f.AsObject().Call(a, this, args)
}

// Construct invokes f as a constructor. A nil newTarget means f itself.
func Construct(a *Agent, f *Object, args []Value, newTarget *Object) Completion {
	if newTarget == nil {
		newTarget = f
	}
	errors.Assert(f.IsConstructor() && newTarget.IsConstructor(), "Construct", "target is not a constructor")
	return f.Construct(a, args, newTarget)
}

// Invoke calls the method named key on v.
func Invoke(a *Agent, v Value, key PropertyKey, args []Value) Completion {
	fn := GetV(a, v, key)
	if fn.IsAbrupt() {
		return fn
	}
	return Call(a, fn.Value, v, args)
}

// GetFunctionRealm returns the realm a function was created in, or the
// current realm for other objects.
func GetFunctionRealm(a *Agent, o *Object) *Realm {
	switch o.kind {
	case KindFunction:
		return o.function.Realm
	case KindBuiltinFunction:
		return o.builtin.realm
	}
	return a.CurrentRealm()
}

// GetPrototypeFromConstructor reads constructor.prototype, falling back to
// the named intrinsic of the constructor's realm when it is not an object.
func GetPrototypeFromConstructor(a *Agent, constructor *Object, intrinsicDefaultProto string) Completion {
	c := Get(a, constructor, NewStringKey("prototype"))
	if c.IsAbrupt() {
		return c
	}
	if c.Value.IsObject() {
		return c
	}
	realm := GetFunctionRealm(a, constructor)
	return NormalCompletion(ObjectValue(realm.Intrinsic(intrinsicDefaultProto)))
}

// OrdinaryCreateFromConstructor allocates an ordinary object whose prototype
// comes from constructor.
func OrdinaryCreateFromConstructor(a *Agent, constructor *Object, intrinsicDefaultProto string, slots ...string) Completion {
	c := GetPrototypeFromConstructor(a, constructor, intrinsicDefaultProto)
	if c.IsAbrupt() {
		return c
	}
	return NormalCompletion(ObjectValue(ObjectCreate(c.Value.AsObject(), slots...)))
}

// OrdinaryHasInstance walks o's prototype chain looking for C.prototype.
func OrdinaryHasInstance(a *Agent, C Value, O Value) Completion {
	if !C.IsCallable() {
		return NormalCompletion(False)
	}
	if !O.IsObject() {
		return NormalCompletion(False)
	}
	proto := Get(a, C.AsObject(), NewStringKey("prototype"))
	if proto.IsAbrupt() {
		return proto
	}
	if !proto.Value.IsObject() {
		return a.Throw(ErrorKindTypeError, MsgInstanceofPrototypeNotObject, Inspect(proto.Value))
	}
	P := proto.Value.AsObject()
	for o := O.AsObject().GetPrototypeOf(); o != nil; o = o.GetPrototypeOf() {
		if o == P {
			return NormalCompletion(True)
		}
	}
	return NormalCompletion(False)
}

// IntegrityLevel is sealed or frozen.
type IntegrityLevel uint8

const (
	Sealed IntegrityLevel = iota
	Frozen
)

// SetIntegrityLevel prevents extensions and locks every own property.
func SetIntegrityLevel(a *Agent, o *Object, level IntegrityLevel) Completion {
	if !o.PreventExtensions() {
		return NormalCompletion(False)
	}
	for _, k := range o.OwnPropertyKeys() {
		var desc PropertyDescriptor
		desc.Configurable = FlagFalse
		if level == Frozen {
			current, ok := o.GetOwnProperty(a, k)
			if !ok {
				continue
			}
			if current.IsDataDescriptor() {
				desc.Writable = FlagFalse
			}
		}
		if c := DefinePropertyOrThrow(a, o, k, desc); c.IsAbrupt() {
			return c
		}
	}
	return NormalCompletion(True)
}

// CreateIterResultObject returns { value, done }.
func CreateIterResultObject(a *Agent, v Value, done bool) *Object {
	obj := ObjectCreate(a.Intrinsic(IntrinsicObjectPrototype))
	CreateDataProperty(a, obj, NewStringKey("value"), v)
	CreateDataProperty(a, obj, NewStringKey("done"), BooleanValue(done))
	return obj
}

// CreateArrayLikeObject returns an ordinary object with indexed elements, a
// length, and an @@iterator over them.
func CreateArrayLikeObject(a *Agent, elements []Value) *Object {
	obj := ObjectCreate(a.Intrinsic(IntrinsicObjectPrototype))
	for i, v := range elements {
		CreateDataProperty(a, obj, IndexKey(i), v)
	}
	obj.DefineOwnProperty(a, NewStringKey("length"), DataDescriptor(IntegerValue(len(elements)), true, false, false))
	obj.DefineOwnProperty(a, NewSymbolKey(SymbolIterator), DataDescriptor(ObjectValue(a.Intrinsic(IntrinsicArrayPrototypeValues)), true, false, true))
	return obj
}

// CreateListFromArrayLike reads length and every index of v.
func CreateListFromArrayLike(a *Agent, v Value) ([]Value, Completion) {
	if !v.IsObject() {
		return nil, a.Throw(ErrorKindTypeError, MsgNotAnObject, Inspect(v))
	}
	o := v.AsObject()
	lenC := LengthOfArrayLike(a, o)
	if lenC.IsAbrupt() {
		return nil, lenC
	}
	n := int(lenC.Value.AsFloat())
	list := make([]Value, 0, n)
	for i := 0; i < n; i++ {
		c := Get(a, o, IndexKey(i))
		if c.IsAbrupt() {
			return nil, c
		}
		list = append(list, c.Value)
	}
	return list, NormalCompletion(Undefined)
}

// LengthOfArrayLike is ToLength(Get(o, "length")).
func LengthOfArrayLike(a *Agent, o *Object) Completion {
	c := Get(a, o, NewStringKey("length"))
	if c.IsAbrupt() {
		return c
	}
	return ToLength(a, c.Value)
}
