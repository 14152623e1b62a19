package vm

import (
	"github.com/j-f1/forked-engine262/pkg/ast"
	"github.com/j-f1/forked-engine262/pkg/errors"
)

// argBinding aliases one index of a mapped arguments object to a parameter
// binding in the function's environment.
type argBinding struct {
	name string
	env  Environment
}

func (b *argBinding) get(a *Agent) Value {
	return Must(b.env.GetBindingValue(a, b.name, false))
}

func (b *argBinding) set(a *Agent, v Value) {
	Must(b.env.SetMutableBinding(a, b.name, v, false))
}

type argumentsState struct {
	parameterMap map[PropertyKey]*argBinding
}

// CreateUnmappedArgumentsObject snapshots args into an arguments object
// whose callee property throws on access.
func CreateUnmappedArgumentsObject(a *Agent, args []Value) *Object {
	obj := ObjectCreate(a.Intrinsic(IntrinsicObjectPrototype), "ParameterMap")
	obj.SetClass("Arguments")
	Must(DefinePropertyOrThrow(a, obj, NewStringKey("length"), DataDescriptor(IntegerValue(len(args)), true, false, true)))
	for i, v := range args {
		ok := CreateDataProperty(a, obj, IndexKey(i), v)
		errors.Assert(ok, "CreateUnmappedArgumentsObject", "could not define index %d", i)
	}
	Must(DefinePropertyOrThrow(a, obj, NewSymbolKey(SymbolIterator), DataDescriptor(ObjectValue(a.Intrinsic(IntrinsicArrayPrototypeValues)), true, false, true)))
	thrower := ObjectValue(a.Intrinsic(IntrinsicThrowTypeError))
	Must(DefinePropertyOrThrow(a, obj, NewStringKey("callee"), AccessorDescriptor(thrower, thrower, false, false)))
	return obj
}

// CreateMappedArgumentsObject creates an arguments object whose indices
// below both len(args) and the parameter count stay aliased to the
// parameter bindings in env. When a name repeats, the last occurrence wins.
func CreateMappedArgumentsObject(a *Agent, F *Object, formals *ast.FormalParameters, args []Value, env Environment) *Object {
	errors.Assert(formals.IsSimpleParameterList(), "CreateMappedArgumentsObject", "parameter list is not simple")
	obj := &Object{
		kind:       KindArguments,
		prototype:  a.Intrinsic(IntrinsicObjectPrototype),
		extensible: true,
		class:      "Arguments",
		arguments:  &argumentsState{parameterMap: make(map[PropertyKey]*argBinding)},
	}
	obj.declareSlots([]string{"ParameterMap"})

	for i, v := range args {
		ok := CreateDataProperty(a, obj, IndexKey(i), v)
		errors.Assert(ok, "CreateMappedArgumentsObject", "could not define index %d", i)
	}
	Must(DefinePropertyOrThrow(a, obj, NewStringKey("length"), DataDescriptor(IntegerValue(len(args)), true, false, true)))

	names := formals.BoundNames()
	mapped := make(map[string]bool, len(names))
	for index := len(names) - 1; index >= 0; index-- {
		name := names[index]
		if mapped[name] {
			continue
		}
		mapped[name] = true
		if index < len(args) {
			obj.arguments.parameterMap[IndexKey(index)] = &argBinding{name: name, env: env}
		}
	}

	Must(DefinePropertyOrThrow(a, obj, NewSymbolKey(SymbolIterator), DataDescriptor(ObjectValue(a.Intrinsic(IntrinsicArrayPrototypeValues)), true, false, true)))
	Must(DefinePropertyOrThrow(a, obj, NewStringKey("callee"), DataDescriptor(ObjectValue(F), true, false, true)))
	return obj
}

// IsMapped reports whether key is still aliased to a parameter binding.
func (o *Object) IsMapped(key PropertyKey) bool {
	if o.kind != KindArguments {
		return false
	}
	_, ok := o.arguments.parameterMap[key]
	return ok
}

func (o *Object) argumentsGetOwnProperty(a *Agent, key PropertyKey) (PropertyDescriptor, bool) {
	desc, ok := o.ordinaryGetOwnProperty(key)
	if !ok {
		return desc, false
	}
	if b, mapped := o.arguments.parameterMap[key]; mapped {
		desc.Value = b.get(a)
	}
	return desc, true
}

func (o *Object) argumentsDefineOwnProperty(a *Agent, key PropertyKey, desc PropertyDescriptor) bool {
	b, isMapped := o.arguments.parameterMap[key]
	newArgDesc := desc
	if isMapped && desc.IsDataDescriptor() && !desc.HasValue && desc.Writable == FlagFalse {
		newArgDesc.Value = b.get(a)
		newArgDesc.HasValue = true
	}
	if !o.ordinaryDefineOwnProperty(a, key, newArgDesc) {
		return false
	}
	if isMapped {
		if desc.IsAccessorDescriptor() {
			delete(o.arguments.parameterMap, key)
		} else {
			if desc.HasValue {
				b.set(a, desc.Value)
			}
			if desc.Writable == FlagFalse {
				delete(o.arguments.parameterMap, key)
			}
		}
	}
	return true
}

func (o *Object) argumentsGet(a *Agent, key PropertyKey, receiver Value) Completion {
	if b, mapped := o.arguments.parameterMap[key]; mapped {
		return NormalCompletion(b.get(a))
	}
	return o.ordinaryGet(a, key, receiver)
}

func (o *Object) argumentsSet(a *Agent, key PropertyKey, v Value, receiver Value) Completion {
	if receiver.IsObject() && receiver.AsObject() == o {
		if b, mapped := o.arguments.parameterMap[key]; mapped {
			b.set(a, v)
		}
	}
	return o.ordinarySet(a, key, v, receiver)
}

func (o *Object) argumentsDelete(a *Agent, key PropertyKey) bool {
	_, isMapped := o.arguments.parameterMap[key]
	result := o.ordinaryDelete(a, key)
	if result && isMapped {
		delete(o.arguments.parameterMap, key)
	}
	return result
}
