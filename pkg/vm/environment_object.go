package vm

import (
	"github.com/j-f1/forked-engine262/pkg/errors"
)

// ObjectEnvironment exposes the properties of a binding object as bindings.
// It backs the global object and with statements.
type ObjectEnvironment struct {
	BindingObject     *Object
	IsWithEnvironment bool
	outer             Environment
}

func NewObjectEnvironment(o *Object, isWith bool, outer Environment) *ObjectEnvironment {
	return &ObjectEnvironment{BindingObject: o, IsWithEnvironment: isWith, outer: outer}
}

func (e *ObjectEnvironment) HasBinding(a *Agent, name string) bool {
	key := NewStringKey(name)
	if !e.BindingObject.HasProperty(a, key) {
		return false
	}
	if !e.IsWithEnvironment {
		return true
	}
	unscopables := Get(a, e.BindingObject, NewSymbolKey(SymbolUnscopables))
	if unscopables.IsAbrupt() || !unscopables.Value.IsObject() {
		return true
	}
	blocked := Get(a, unscopables.Value.AsObject(), key)
	if blocked.IsAbrupt() {
		return true
	}
	return !ToBoolean(blocked.Value)
}

func (e *ObjectEnvironment) CreateMutableBinding(a *Agent, name string, deletable bool) Completion {
	return DefinePropertyOrThrow(a, e.BindingObject, NewStringKey(name), DataDescriptor(Undefined, true, true, deletable))
}

func (e *ObjectEnvironment) CreateImmutableBinding(*Agent, string, bool) Completion {
	errors.Unreachable("CreateImmutableBinding", "object environments have no immutable bindings")
	return Completion{}
}

func (e *ObjectEnvironment) InitializeBinding(a *Agent, name string, v Value) Completion {
	return e.SetMutableBinding(a, name, v, false)
}

func (e *ObjectEnvironment) SetMutableBinding(a *Agent, name string, v Value, strict bool) Completion {
	key := NewStringKey(name)
	if !e.BindingObject.HasProperty(a, key) && strict {
		return a.Throw(ErrorKindReferenceError, MsgNotDefined, name)
	}
	return Set(a, e.BindingObject, key, v, strict)
}

func (e *ObjectEnvironment) GetBindingValue(a *Agent, name string, strict bool) Completion {
	key := NewStringKey(name)
	if !e.BindingObject.HasProperty(a, key) {
		if strict {
			return a.Throw(ErrorKindReferenceError, MsgNotDefined, name)
		}
		return NormalCompletion(Undefined)
	}
	return Get(a, e.BindingObject, key)
}

func (e *ObjectEnvironment) DeleteBinding(a *Agent, name string) bool {
	return e.BindingObject.Delete(a, NewStringKey(name))
}

func (e *ObjectEnvironment) HasThisBinding() bool  { return false }
func (e *ObjectEnvironment) HasSuperBinding() bool { return false }

func (e *ObjectEnvironment) WithBaseObject() Value {
	if e.IsWithEnvironment {
		return ObjectValue(e.BindingObject)
	}
	return Undefined
}

func (e *ObjectEnvironment) OuterEnv() Environment { return e.outer }
