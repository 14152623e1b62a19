package vm

// The small standard library every realm carries: native errors, the
// iterator prototypes used by arguments objects, and the reflection helpers
// fixtures use to observe property attributes.

func (r *Realm) addGlobal(name string, o *Object) {
	r.globals = append(r.globals, globalBinding{name: name, value: o})
}

func (r *Realm) createErrorIntrinsics(a *Agent) {
	objectProto := r.Intrinsic(IntrinsicObjectPrototype)
	functionProto := r.Intrinsic(IntrinsicFunctionPrototype)

	errorProto := ObjectCreate(objectProto)
	r.SetIntrinsic(IntrinsicErrorPrototype, errorProto)
	r.InstallMethod(a, errorProto, NewStringKey("toString"), 0, errorProtoToString)
	errorCtor := r.makeErrorConstructor(a, ErrorKindError, errorProto, functionProto)

	for _, kind := range []ErrorKind{ErrorKindTypeError, ErrorKindReferenceError, ErrorKindRangeError, ErrorKindSyntaxError} {
		proto := ObjectCreate(errorProto)
		r.SetIntrinsic(kind.prototypeIntrinsic(), proto)
		r.makeErrorConstructor(a, kind, proto, errorCtor)
	}
}

func (r *Realm) makeErrorConstructor(a *Agent, kind ErrorKind, proto, ctorProto *Object) *Object {
	intrinsicProto := kind.prototypeIntrinsic()
	F := CreateBuiltinFunction(a, func(a *Agent, call BuiltinCall) Completion {
		newTarget := call.Callee
		if call.NewTarget.IsObject() {
			newTarget = call.NewTarget.AsObject()
		}
		c := OrdinaryCreateFromConstructor(a, newTarget, intrinsicProto, "ErrorData")
		if c.IsAbrupt() {
			return c
		}
		O := c.Value.AsObject()
		O.SetClass("Error")
		if msg := call.Argument(0); !msg.IsUndefined() {
			s := ToString(a, msg)
			if s.IsAbrupt() {
				return s
			}
			CreateMethodProperty(a, O, NewStringKey("message"), s.Value)
		}
		return NormalCompletion(ObjectValue(O))
	}, nil, r, ctorProto, true)
	SetFunctionLength(a, F, 1)
	SetFunctionName(a, F, NewStringKey(kind.String()), "")
	r.InstallValue(a, F, NewStringKey("prototype"), ObjectValue(proto))
	CreateMethodProperty(a, proto, NewStringKey("constructor"), ObjectValue(F))
	CreateMethodProperty(a, proto, NewStringKey("name"), NewString(kind.String()))
	CreateMethodProperty(a, proto, NewStringKey("message"), NewString(""))
	r.addGlobal(kind.String(), F)
	return F
}

func errorProtoToString(a *Agent, call BuiltinCall) Completion {
	if !call.This.IsObject() {
		return a.Throw(ErrorKindTypeError, MsgIncompatibleReceiver, "Error.prototype.toString", Inspect(call.This))
	}
	O := call.This.AsObject()
	part := func(key, fallback string) (string, Completion) {
		v := Get(a, O, NewStringKey(key))
		if v.IsAbrupt() {
			return "", v
		}
		if v.Value.IsUndefined() {
			return fallback, v
		}
		s := ToString(a, v.Value)
		if s.IsAbrupt() {
			return "", s
		}
		return s.Value.AsString(), s
	}
	name, c := part("name", "Error")
	if c.IsAbrupt() {
		return c
	}
	msg, c := part("message", "")
	if c.IsAbrupt() {
		return c
	}
	switch {
	case name == "":
		return NormalCompletion(NewString(msg))
	case msg == "":
		return NormalCompletion(NewString(name))
	}
	return NormalCompletion(NewString(name + ": " + msg))
}

func (r *Realm) createIteratorIntrinsics(a *Agent) {
	objectProto := r.Intrinsic(IntrinsicObjectPrototype)
	returnThis := func(_ *Agent, call BuiltinCall) Completion { return NormalCompletion(call.This) }

	iteratorProto := ObjectCreate(objectProto)
	r.InstallMethod(a, iteratorProto, NewSymbolKey(SymbolIterator), 0, returnThis)
	r.SetIntrinsic(IntrinsicIteratorPrototype, iteratorProto)

	asyncIteratorProto := ObjectCreate(objectProto)
	r.InstallMethod(a, asyncIteratorProto, NewSymbolKey(SymbolAsyncIterator), 0, returnThis)
	r.SetIntrinsic(IntrinsicAsyncIteratorPrototype, asyncIteratorProto)

	arrayIteratorProto := ObjectCreate(iteratorProto)
	r.InstallMethod(a, arrayIteratorProto, NewStringKey("next"), 0, arrayIteratorNext)
	arrayIteratorProto.DefineOwnProperty(a, NewSymbolKey(SymbolToStringTag), DataDescriptor(NewString("Array Iterator"), false, false, true))
	r.SetIntrinsic(IntrinsicArrayIteratorPrototype, arrayIteratorProto)

	values := NewNativeFunction(a, r, 0, "values", func(a *Agent, call BuiltinCall) Completion {
		O := ToObject(a, call.This)
		if O.IsAbrupt() {
			return O
		}
		iter := ObjectCreate(arrayIteratorProto, "IteratedArrayLike", "ArrayLikeNextIndex")
		iter.SetClass("Array Iterator")
		iter.SetSlot("IteratedArrayLike", O.Value)
		iter.SetSlot("ArrayLikeNextIndex", IntegerValue(0))
		return NormalCompletion(ObjectValue(iter))
	})
	r.SetIntrinsic(IntrinsicArrayPrototypeValues, values)
}

func arrayIteratorNext(a *Agent, call BuiltinCall) Completion {
	if !call.This.IsObject() || !call.This.AsObject().HasSlot("IteratedArrayLike") {
		return a.Throw(ErrorKindTypeError, MsgIncompatibleReceiver, "next", Inspect(call.This))
	}
	iter := call.This.AsObject()
	target := iter.Slot("IteratedArrayLike")
	if target.IsUndefined() {
		return NormalCompletion(ObjectValue(CreateIterResultObject(a, Undefined, true)))
	}
	index := int(iter.Slot("ArrayLikeNextIndex").AsFloat())
	length := LengthOfArrayLike(a, target.AsObject())
	if length.IsAbrupt() {
		return length
	}
	if float64(index) >= length.Value.AsFloat() {
		iter.SetSlot("IteratedArrayLike", Undefined)
		return NormalCompletion(ObjectValue(CreateIterResultObject(a, Undefined, true)))
	}
	iter.SetSlot("ArrayLikeNextIndex", IntegerValue(index+1))
	v := Get(a, target.AsObject(), IndexKey(index))
	if v.IsAbrupt() {
		return v
	}
	return NormalCompletion(ObjectValue(CreateIterResultObject(a, v.Value, false)))
}

func (r *Realm) createObjectLibrary(a *Agent) {
	objectProto := r.Intrinsic(IntrinsicObjectPrototype)
	functionProto := r.Intrinsic(IntrinsicFunctionPrototype)

	r.InstallMethod(a, objectProto, NewStringKey("hasOwnProperty"), 1, func(a *Agent, call BuiltinCall) Completion {
		key, c := ToPropertyKey(a, call.Argument(0))
		if c.IsAbrupt() {
			return c
		}
		O := ToObject(a, call.This)
		if O.IsAbrupt() {
			return O
		}
		return NormalCompletion(BooleanValue(HasOwnProperty(a, O.Value.AsObject(), key)))
	})
	r.InstallMethod(a, objectProto, NewStringKey("toString"), 0, objectProtoToString)
	r.InstallMethod(a, objectProto, NewStringKey("valueOf"), 0, func(a *Agent, call BuiltinCall) Completion {
		return ToObject(a, call.This)
	})

	r.InstallMethod(a, functionProto, NewStringKey("call"), 1, func(a *Agent, call BuiltinCall) Completion {
		if !call.This.IsCallable() {
			return a.Throw(ErrorKindTypeError, MsgNotAFunction, Inspect(call.This))
		}
		var args []Value
		if len(call.Args) > 1 {
			args = call.Args[1:]
		}
		a.PrepareForTailCall()
		return Call(a, call.This, call.Argument(0), args)
	})
	r.InstallMethod(a, functionProto, NewStringKey("apply"), 2, func(a *Agent, call BuiltinCall) Completion {
		if !call.This.IsCallable() {
			return a.Throw(ErrorKindTypeError, MsgNotAFunction, Inspect(call.This))
		}
		var args []Value
		if argArray := call.Argument(1); !argArray.IsNullish() {
			list, c := CreateListFromArrayLike(a, argArray)
			if c.IsAbrupt() {
				return c
			}
			args = list
		}
		a.PrepareForTailCall()
		return Call(a, call.This, call.Argument(0), args)
	})

	objectCtor := CreateBuiltinFunction(a, func(a *Agent, call BuiltinCall) Completion {
		if call.NewTarget.IsObject() && call.NewTarget.AsObject() != call.Callee {
			return OrdinaryCreateFromConstructor(a, call.NewTarget.AsObject(), IntrinsicObjectPrototype)
		}
		if v := call.Argument(0); !v.IsNullish() {
			return ToObject(a, v)
		}
		return NormalCompletion(ObjectValue(ObjectCreate(a.Intrinsic(IntrinsicObjectPrototype))))
	}, nil, r, functionProto, true)
	SetFunctionLength(a, objectCtor, 1)
	SetFunctionName(a, objectCtor, NewStringKey("Object"), "")
	r.InstallValue(a, objectCtor, NewStringKey("prototype"), ObjectValue(objectProto))
	CreateMethodProperty(a, objectProto, NewStringKey("constructor"), ObjectValue(objectCtor))
	r.installObjectStatics(a, objectCtor)
	r.addGlobal("Object", objectCtor)

	symbolCtor := NewNativeFunction(a, r, 0, "Symbol", func(a *Agent, call BuiltinCall) Completion {
		desc := call.Argument(0)
		if desc.IsUndefined() {
			return NormalCompletion(SymbolValue(NewAnonymousSymbol()))
		}
		s := ToString(a, desc)
		if s.IsAbrupt() {
			return s
		}
		return NormalCompletion(SymbolValue(NewSymbol(s.Value.AsString())))
	})
	for _, wk := range []struct {
		name string
		sym  *Symbol
	}{
		{"asyncIterator", SymbolAsyncIterator},
		{"hasInstance", SymbolHasInstance},
		{"iterator", SymbolIterator},
		{"toPrimitive", SymbolToPrimitive},
		{"toStringTag", SymbolToStringTag},
		{"unscopables", SymbolUnscopables},
	} {
		r.InstallValue(a, symbolCtor, NewStringKey(wk.name), SymbolValue(wk.sym))
	}
	r.InstallValue(a, symbolCtor, NewStringKey("prototype"), ObjectValue(r.Intrinsic(IntrinsicSymbolPrototype)))
	r.addGlobal("Symbol", symbolCtor)
}

func (r *Realm) installObjectStatics(a *Agent, ctor *Object) {
	toObject := func(a *Agent, v Value) (*Object, Completion) {
		c := ToObject(a, v)
		if c.IsAbrupt() {
			return nil, c
		}
		return c.Value.AsObject(), c
	}
	requireObject := func(a *Agent, v Value) (*Object, Completion) {
		if !v.IsObject() {
			return nil, a.Throw(ErrorKindTypeError, MsgNotAnObject, Inspect(v))
		}
		return v.AsObject(), NormalCompletion(v)
	}

	r.InstallMethod(a, ctor, NewStringKey("getPrototypeOf"), 1, func(a *Agent, call BuiltinCall) Completion {
		O, c := toObject(a, call.Argument(0))
		if c.IsAbrupt() {
			return c
		}
		return NormalCompletion(ObjectValue(O.GetPrototypeOf()))
	})
	r.InstallMethod(a, ctor, NewStringKey("setPrototypeOf"), 2, func(a *Agent, call BuiltinCall) Completion {
		O, c := requireObject(a, call.Argument(0))
		if c.IsAbrupt() {
			return c
		}
		proto := call.Argument(1)
		if !proto.IsObject() && !proto.IsNull() {
			return a.Throw(ErrorKindTypeError, MsgInvalidPrototype, Inspect(proto))
		}
		var p *Object
		if proto.IsObject() {
			p = proto.AsObject()
		}
		if !O.SetPrototypeOf(p) {
			return a.Throw(ErrorKindTypeError, MsgInvalidPrototype, Inspect(proto))
		}
		return NormalCompletion(ObjectValue(O))
	})
	r.InstallMethod(a, ctor, NewStringKey("create"), 2, func(a *Agent, call BuiltinCall) Completion {
		proto := call.Argument(0)
		if !proto.IsObject() && !proto.IsNull() {
			return a.Throw(ErrorKindTypeError, MsgInvalidPrototype, Inspect(proto))
		}
		var p *Object
		if proto.IsObject() {
			p = proto.AsObject()
		}
		return NormalCompletion(ObjectValue(ObjectCreate(p)))
	})
	r.InstallMethod(a, ctor, NewStringKey("defineProperty"), 3, func(a *Agent, call BuiltinCall) Completion {
		O, c := requireObject(a, call.Argument(0))
		if c.IsAbrupt() {
			return c
		}
		key, c := ToPropertyKey(a, call.Argument(1))
		if c.IsAbrupt() {
			return c
		}
		desc, c := ToPropertyDescriptor(a, call.Argument(2))
		if c.IsAbrupt() {
			return c
		}
		if c := DefinePropertyOrThrow(a, O, key, desc); c.IsAbrupt() {
			return c
		}
		return NormalCompletion(ObjectValue(O))
	})
	r.InstallMethod(a, ctor, NewStringKey("getOwnPropertyDescriptor"), 2, func(a *Agent, call BuiltinCall) Completion {
		O, c := toObject(a, call.Argument(0))
		if c.IsAbrupt() {
			return c
		}
		key, c := ToPropertyKey(a, call.Argument(1))
		if c.IsAbrupt() {
			return c
		}
		desc, ok := O.GetOwnProperty(a, key)
		if !ok {
			return NormalCompletion(Undefined)
		}
		return NormalCompletion(ObjectValue(FromPropertyDescriptor(a, desc)))
	})
	r.InstallMethod(a, ctor, NewStringKey("getOwnPropertyNames"), 1, func(a *Agent, call BuiltinCall) Completion {
		O, c := toObject(a, call.Argument(0))
		if c.IsAbrupt() {
			return c
		}
		var names []Value
		for _, k := range O.OwnPropertyKeys() {
			if k.IsString() {
				names = append(names, k.Value())
			}
		}
		return NormalCompletion(ObjectValue(CreateArrayLikeObject(a, names)))
	})
	r.InstallMethod(a, ctor, NewStringKey("isExtensible"), 1, func(a *Agent, call BuiltinCall) Completion {
		v := call.Argument(0)
		return NormalCompletion(BooleanValue(v.IsObject() && v.AsObject().IsExtensible()))
	})
	r.InstallMethod(a, ctor, NewStringKey("preventExtensions"), 1, func(a *Agent, call BuiltinCall) Completion {
		v := call.Argument(0)
		if v.IsObject() {
			v.AsObject().PreventExtensions()
		}
		return NormalCompletion(v)
	})
	r.InstallMethod(a, ctor, NewStringKey("freeze"), 1, func(a *Agent, call BuiltinCall) Completion {
		v := call.Argument(0)
		if !v.IsObject() {
			return NormalCompletion(v)
		}
		ok := SetIntegrityLevel(a, v.AsObject(), Frozen)
		if ok.IsAbrupt() {
			return ok
		}
		if !ok.Value.AsBoolean() {
			return a.Throw(ErrorKindTypeError, MsgCannotDefineProperty, Inspect(v))
		}
		return NormalCompletion(v)
	})
}

func objectProtoToString(a *Agent, call BuiltinCall) Completion {
	switch {
	case call.This.IsUndefined():
		return NormalCompletion(NewString("[object Undefined]"))
	case call.This.IsNull():
		return NormalCompletion(NewString("[object Null]"))
	}
	O := Must(ToObject(a, call.This)).AsObject()
	builtinTag := "Object"
	switch {
	case O.HasSlot("ParameterMap"):
		builtinTag = "Arguments"
	case O.IsCallable():
		builtinTag = "Function"
	case O.HasSlot("ErrorData"):
		builtinTag = "Error"
	case O.HasSlot("BooleanData"):
		builtinTag = "Boolean"
	case O.HasSlot("NumberData"):
		builtinTag = "Number"
	case O.HasSlot("StringData"):
		builtinTag = "String"
	}
	tag := Get(a, O, NewSymbolKey(SymbolToStringTag))
	if tag.IsAbrupt() {
		return tag
	}
	if tag.Value.IsString() {
		builtinTag = tag.Value.AsString()
	}
	return NormalCompletion(NewString("[object " + builtinTag + "]"))
}

// FromPropertyDescriptor converts a descriptor to an ordinary object.
func FromPropertyDescriptor(a *Agent, desc PropertyDescriptor) *Object {
	obj := ObjectCreate(a.Intrinsic(IntrinsicObjectPrototype))
	if desc.HasValue {
		CreateDataProperty(a, obj, NewStringKey("value"), desc.Value)
	}
	if desc.Writable.IsSet() {
		CreateDataProperty(a, obj, NewStringKey("writable"), BooleanValue(desc.Writable.Bool()))
	}
	if desc.HasGet {
		CreateDataProperty(a, obj, NewStringKey("get"), desc.Get)
	}
	if desc.HasSet {
		CreateDataProperty(a, obj, NewStringKey("set"), desc.Set)
	}
	if desc.Enumerable.IsSet() {
		CreateDataProperty(a, obj, NewStringKey("enumerable"), BooleanValue(desc.Enumerable.Bool()))
	}
	if desc.Configurable.IsSet() {
		CreateDataProperty(a, obj, NewStringKey("configurable"), BooleanValue(desc.Configurable.Bool()))
	}
	return obj
}

// ToPropertyDescriptor reads a descriptor from an attributes object.
func ToPropertyDescriptor(a *Agent, v Value) (PropertyDescriptor, Completion) {
	var desc PropertyDescriptor
	if !v.IsObject() {
		return desc, a.Throw(ErrorKindTypeError, MsgNotAnObject, Inspect(v))
	}
	obj := v.AsObject()
	field := func(name string) (Value, bool, Completion) {
		key := NewStringKey(name)
		if !HasProperty(a, obj, key) {
			return Undefined, false, NormalCompletion(Undefined)
		}
		c := Get(a, obj, key)
		return c.Value, !c.IsAbrupt(), c
	}
	for _, name := range []string{"enumerable", "configurable", "value", "writable", "get", "set"} {
		fv, present, c := field(name)
		if c.IsAbrupt() {
			return desc, c
		}
		if !present {
			continue
		}
		switch name {
		case "enumerable":
			desc.Enumerable = ToFlag(ToBoolean(fv))
		case "configurable":
			desc.Configurable = ToFlag(ToBoolean(fv))
		case "value":
			desc.Value, desc.HasValue = fv, true
		case "writable":
			desc.Writable = ToFlag(ToBoolean(fv))
		case "get":
			if !fv.IsUndefined() && !fv.IsCallable() {
				return desc, a.Throw(ErrorKindTypeError, MsgNotAFunction, Inspect(fv))
			}
			desc.Get, desc.HasGet = fv, true
		case "set":
			if !fv.IsUndefined() && !fv.IsCallable() {
				return desc, a.Throw(ErrorKindTypeError, MsgNotAFunction, Inspect(fv))
			}
			desc.Set, desc.HasSet = fv, true
		}
	}
	if desc.IsAccessorDescriptor() && desc.IsDataDescriptor() {
		return desc, a.Throw(ErrorKindTypeError, MsgCannotDefineProperty, "with both accessors and a value or writable attribute")
	}
	return desc, NormalCompletion(Undefined)
}
