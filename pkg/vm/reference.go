package vm

import (
	"github.com/j-f1/forked-engine262/pkg/errors"
)

// Reference is a resolved name or property access. Exactly one of Env and
// Base is meaningful unless the reference is unresolvable.
type Reference struct {
	Base         Value
	Env          Environment
	Unresolvable bool
	Name         PropertyKey
	Strict       bool
	ThisValue    Value // set for super references, Empty otherwise
}

// PropertyReference builds a reference to base[name].
func PropertyReference(base Value, name PropertyKey, strict bool) Reference {
	return Reference{Base: base, Name: name, Strict: strict, ThisValue: Empty}
}

// SuperReference builds a reference to a home object's prototype property
// with an explicit this value.
func SuperReference(base Value, name PropertyKey, this Value, strict bool) Reference {
	return Reference{Base: base, Name: name, Strict: strict, ThisValue: this}
}

func (r Reference) IsPropertyReference() bool {
	return !r.Unresolvable && r.Env == nil
}

func (r Reference) IsSuperReference() bool {
	return !r.ThisValue.IsEmpty()
}

// GetThisValue is the receiver used for property reads through r.
func (r Reference) GetThisValue() Value {
	errors.Assert(r.IsPropertyReference(), "GetThisValue", "not a property reference")
	if r.IsSuperReference() {
		return r.ThisValue
	}
	return r.Base
}

// GetIdentifierReference walks env and its outer environments for name.
func GetIdentifierReference(a *Agent, env Environment, name string, strict bool) Reference {
	for ; env != nil; env = env.OuterEnv() {
		if env.HasBinding(a, name) {
			return Reference{Env: env, Name: NewStringKey(name), Strict: strict, ThisValue: Empty}
		}
	}
	return Reference{Unresolvable: true, Name: NewStringKey(name), Strict: strict, ThisValue: Empty}
}

// ResolveBinding resolves name against env, or the running context's
// lexical environment when env is nil.
func (a *Agent) ResolveBinding(name string, env Environment, strict bool) Reference {
	if env == nil {
		env = a.RunningContext().LexicalEnvironment
	}
	return GetIdentifierReference(a, env, name, strict)
}

// GetThisEnvironment finds the nearest environment with a this binding.
func (a *Agent) GetThisEnvironment() ThisEnvironment {
	for env := a.RunningContext().LexicalEnvironment; env != nil; env = env.OuterEnv() {
		if env.HasThisBinding() {
			te, ok := env.(ThisEnvironment)
			errors.Assert(ok, "GetThisEnvironment", "environment %T has a this binding but no GetThisBinding", env)
			return te
		}
	}
	errors.Unreachable("GetThisEnvironment", "no environment has a this binding")
	return nil
}

func (a *Agent) ResolveThisBinding() Completion {
	return a.GetThisEnvironment().GetThisBinding(a)
}

// GetNewTarget returns new.target of the nearest function environment.
func (a *Agent) GetNewTarget() Value {
	env, ok := a.GetThisEnvironment().(*FunctionEnvironment)
	errors.Assert(ok, "GetNewTarget", "new.target outside a function")
	return env.NewTarget
}

// GetValue dereferences r.
func GetValue(a *Agent, r Reference) Completion {
	if r.Unresolvable {
		return a.Throw(ErrorKindReferenceError, MsgNotDefined, r.Name)
	}
	if r.IsPropertyReference() {
		if !r.Base.IsObject() {
			boxed := ToObject(a, r.Base)
			if boxed.IsAbrupt() {
				return boxed
			}
			return boxed.Value.AsObject().Get(a, r.Name, r.GetThisValue())
		}
		return r.Base.AsObject().Get(a, r.Name, r.GetThisValue())
	}
	return r.Env.GetBindingValue(a, r.Name.name, r.Strict)
}

// PutValue assigns w through r.
func PutValue(a *Agent, r Reference, w Value) Completion {
	if r.Unresolvable {
		if r.Strict {
			return a.Throw(ErrorKindReferenceError, MsgNotDefined, r.Name)
		}
		global := a.CurrentRealm().GlobalObject
		return Set(a, global, r.Name, w, false)
	}
	if r.IsPropertyReference() {
		boxed := ToObject(a, r.Base)
		if boxed.IsAbrupt() {
			return boxed
		}
		ok := boxed.Value.AsObject().Set(a, r.Name, w, r.GetThisValue())
		if ok.IsAbrupt() {
			return ok
		}
		if !ok.Value.AsBoolean() && r.Strict {
			return a.Throw(ErrorKindTypeError, MsgCannotAssignReadOnly, r.Name)
		}
		return NormalCompletion(Undefined)
	}
	return r.Env.SetMutableBinding(a, r.Name.name, w, r.Strict)
}

// InitializeReferencedBinding initializes the binding r names.
func InitializeReferencedBinding(a *Agent, r Reference, w Value) Completion {
	errors.Assert(!r.Unresolvable && r.Env != nil, "InitializeReferencedBinding", "not an environment reference")
	return r.Env.InitializeBinding(a, r.Name.name, w)
}
