package vm

import (
	"github.com/j-f1/forked-engine262/pkg/errors"
)

// Environment is an environment record. Bindings are addressed by name;
// failures are reported as throw completions.
type Environment interface {
	HasBinding(a *Agent, name string) bool
	CreateMutableBinding(a *Agent, name string, deletable bool) Completion
	CreateImmutableBinding(a *Agent, name string, strict bool) Completion
	InitializeBinding(a *Agent, name string, v Value) Completion
	SetMutableBinding(a *Agent, name string, v Value, strict bool) Completion
	GetBindingValue(a *Agent, name string, strict bool) Completion
	DeleteBinding(a *Agent, name string) bool
	HasThisBinding() bool
	HasSuperBinding() bool
	WithBaseObject() Value
	OuterEnv() Environment
}

// ThisEnvironment is implemented by records that can provide a this binding.
type ThisEnvironment interface {
	Environment
	GetThisBinding(a *Agent) Completion
}

// --- Declarative ---

type binding struct {
	value       Value
	mutable     bool
	initialized bool
	strict      bool
	deletable   bool
}

// DeclarativeEnvironment holds bindings created by declarations.
type DeclarativeEnvironment struct {
	bindings map[string]*binding
	outer    Environment
}

func NewDeclarativeEnvironment(outer Environment) *DeclarativeEnvironment {
	return &DeclarativeEnvironment{bindings: make(map[string]*binding), outer: outer}
}

func (e *DeclarativeEnvironment) HasBinding(_ *Agent, name string) bool {
	_, ok := e.bindings[name]
	return ok
}

func (e *DeclarativeEnvironment) CreateMutableBinding(_ *Agent, name string, deletable bool) Completion {
	_, exists := e.bindings[name]
	errors.Assert(!exists, "CreateMutableBinding", "binding %q already exists", name)
	e.bindings[name] = &binding{mutable: true, deletable: deletable}
	return NormalCompletion(Undefined)
}

func (e *DeclarativeEnvironment) CreateImmutableBinding(_ *Agent, name string, strict bool) Completion {
	_, exists := e.bindings[name]
	errors.Assert(!exists, "CreateImmutableBinding", "binding %q already exists", name)
	e.bindings[name] = &binding{strict: strict}
	return NormalCompletion(Undefined)
}

func (e *DeclarativeEnvironment) InitializeBinding(_ *Agent, name string, v Value) Completion {
	b, ok := e.bindings[name]
	errors.Assert(ok && !b.initialized, "InitializeBinding", "binding %q is missing or already initialized", name)
	b.value = v
	b.initialized = true
	return NormalCompletion(Undefined)
}

func (e *DeclarativeEnvironment) SetMutableBinding(a *Agent, name string, v Value, strict bool) Completion {
	b, ok := e.bindings[name]
	if !ok {
		if strict {
			return a.Throw(ErrorKindReferenceError, MsgNotDefined, name)
		}
		e.CreateMutableBinding(a, name, true)
		return e.InitializeBinding(a, name, v)
	}
	if b.strict {
		strict = true
	}
	switch {
	case !b.initialized:
		return a.Throw(ErrorKindReferenceError, MsgUninitializedBinding, name)
	case b.mutable:
		b.value = v
	case strict:
		return a.Throw(ErrorKindTypeError, MsgAssignToConstant, name)
	}
	return NormalCompletion(Undefined)
}

func (e *DeclarativeEnvironment) GetBindingValue(a *Agent, name string, _ bool) Completion {
	b, ok := e.bindings[name]
	errors.Assert(ok, "GetBindingValue", "binding %q does not exist", name)
	if !b.initialized {
		return a.Throw(ErrorKindReferenceError, MsgUninitializedBinding, name)
	}
	return NormalCompletion(b.value)
}

func (e *DeclarativeEnvironment) DeleteBinding(_ *Agent, name string) bool {
	b, ok := e.bindings[name]
	errors.Assert(ok, "DeleteBinding", "binding %q does not exist", name)
	if !b.deletable {
		return false
	}
	delete(e.bindings, name)
	return true
}

func (e *DeclarativeEnvironment) HasThisBinding() bool  { return false }
func (e *DeclarativeEnvironment) HasSuperBinding() bool { return false }
func (e *DeclarativeEnvironment) WithBaseObject() Value { return Undefined }
func (e *DeclarativeEnvironment) OuterEnv() Environment { return e.outer }

// --- Function ---

// ThisBindingStatus tracks whether a function environment has bound this.
type ThisBindingStatus uint8

const (
	ThisLexical ThisBindingStatus = iota
	ThisUninitialized
	ThisInitialized
)

// FunctionEnvironment is the top-level environment of a non-arrow function
// call, or of an arrow call where the this status stays lexical.
type FunctionEnvironment struct {
	*DeclarativeEnvironment
	ThisValue         Value
	ThisBindingStatus ThisBindingStatus
	FunctionObject    *Object
	NewTarget         Value
}

// NewFunctionEnvironment creates the environment for a call to F.
func NewFunctionEnvironment(F *Object, newTarget Value) *FunctionEnvironment {
	fd := F.Function()
	errors.Assert(newTarget.IsUndefined() || newTarget.IsObject(), "NewFunctionEnvironment", "newTarget must be undefined or an object")
	env := &FunctionEnvironment{
		DeclarativeEnvironment: NewDeclarativeEnvironment(fd.Environment),
		ThisValue:              Undefined,
		FunctionObject:         F,
		NewTarget:              newTarget,
	}
	if fd.ThisMode == ThisModeLexical {
		env.ThisBindingStatus = ThisLexical
	} else {
		env.ThisBindingStatus = ThisUninitialized
	}
	return env
}

// BindThisValue records the this value. A second binding is a
// ReferenceError.
func (e *FunctionEnvironment) BindThisValue(a *Agent, v Value) Completion {
	errors.Assert(e.ThisBindingStatus != ThisLexical, "BindThisValue", "lexical this cannot be bound")
	if e.ThisBindingStatus == ThisInitialized {
		return a.Throw(ErrorKindReferenceError, MsgSuperCalledTwice)
	}
	e.ThisValue = v
	e.ThisBindingStatus = ThisInitialized
	return NormalCompletion(v)
}

func (e *FunctionEnvironment) HasThisBinding() bool {
	return e.ThisBindingStatus != ThisLexical
}

func (e *FunctionEnvironment) HasSuperBinding() bool {
	if e.ThisBindingStatus == ThisLexical {
		return false
	}
	return e.FunctionObject.Function().HomeObject != nil
}

func (e *FunctionEnvironment) GetThisBinding(a *Agent) Completion {
	errors.Assert(e.ThisBindingStatus != ThisLexical, "GetThisBinding", "lexical this has no binding")
	if e.ThisBindingStatus == ThisUninitialized {
		return a.Throw(ErrorKindReferenceError, MsgThisNotInitialized)
	}
	return NormalCompletion(e.ThisValue)
}

// GetSuperBase returns the prototype of the home object, undefined when the
// function has no home object.
func (e *FunctionEnvironment) GetSuperBase() Value {
	home := e.FunctionObject.Function().HomeObject
	if home == nil {
		return Undefined
	}
	return ObjectValue(home.GetPrototypeOf())
}
