package vm

// GlobalEnvironment combines an object record over the global object with a
// declarative record for lexical declarations.
type GlobalEnvironment struct {
	ObjectRecord      *ObjectEnvironment
	GlobalThisValue   *Object
	DeclarativeRecord *DeclarativeEnvironment
	VarNames          map[string]struct{}
}

func NewGlobalEnvironment(global, thisValue *Object) *GlobalEnvironment {
	return &GlobalEnvironment{
		ObjectRecord:      NewObjectEnvironment(global, false, nil),
		GlobalThisValue:   thisValue,
		DeclarativeRecord: NewDeclarativeEnvironment(nil),
		VarNames:          make(map[string]struct{}),
	}
}

func (e *GlobalEnvironment) HasBinding(a *Agent, name string) bool {
	if e.DeclarativeRecord.HasBinding(a, name) {
		return true
	}
	return e.ObjectRecord.HasBinding(a, name)
}

func (e *GlobalEnvironment) CreateMutableBinding(a *Agent, name string, deletable bool) Completion {
	if e.DeclarativeRecord.HasBinding(a, name) {
		return a.Throw(ErrorKindTypeError, MsgAlreadyDeclared, name)
	}
	return e.DeclarativeRecord.CreateMutableBinding(a, name, deletable)
}

func (e *GlobalEnvironment) CreateImmutableBinding(a *Agent, name string, strict bool) Completion {
	if e.DeclarativeRecord.HasBinding(a, name) {
		return a.Throw(ErrorKindTypeError, MsgAlreadyDeclared, name)
	}
	return e.DeclarativeRecord.CreateImmutableBinding(a, name, strict)
}

func (e *GlobalEnvironment) InitializeBinding(a *Agent, name string, v Value) Completion {
	if e.DeclarativeRecord.HasBinding(a, name) {
		return e.DeclarativeRecord.InitializeBinding(a, name, v)
	}
	return e.ObjectRecord.InitializeBinding(a, name, v)
}

func (e *GlobalEnvironment) SetMutableBinding(a *Agent, name string, v Value, strict bool) Completion {
	if e.DeclarativeRecord.HasBinding(a, name) {
		return e.DeclarativeRecord.SetMutableBinding(a, name, v, strict)
	}
	return e.ObjectRecord.SetMutableBinding(a, name, v, strict)
}

func (e *GlobalEnvironment) GetBindingValue(a *Agent, name string, strict bool) Completion {
	if e.DeclarativeRecord.HasBinding(a, name) {
		return e.DeclarativeRecord.GetBindingValue(a, name, strict)
	}
	return e.ObjectRecord.GetBindingValue(a, name, strict)
}

func (e *GlobalEnvironment) DeleteBinding(a *Agent, name string) bool {
	if e.DeclarativeRecord.HasBinding(a, name) {
		return e.DeclarativeRecord.DeleteBinding(a, name)
	}
	global := e.ObjectRecord.BindingObject
	if HasOwnProperty(a, global, NewStringKey(name)) {
		status := e.ObjectRecord.DeleteBinding(a, name)
		if status {
			delete(e.VarNames, name)
		}
		return status
	}
	return true
}

func (e *GlobalEnvironment) HasThisBinding() bool  { return true }
func (e *GlobalEnvironment) HasSuperBinding() bool { return false }
func (e *GlobalEnvironment) WithBaseObject() Value { return Undefined }
func (e *GlobalEnvironment) OuterEnv() Environment { return nil }

func (e *GlobalEnvironment) GetThisBinding(*Agent) Completion {
	return NormalCompletion(ObjectValue(e.GlobalThisValue))
}

func (e *GlobalEnvironment) HasVarDeclaration(name string) bool {
	_, ok := e.VarNames[name]
	return ok
}

func (e *GlobalEnvironment) HasLexicalDeclaration(a *Agent, name string) bool {
	return e.DeclarativeRecord.HasBinding(a, name)
}

// HasRestrictedGlobalProperty reports whether name is a non-configurable
// own property of the global object.
func (e *GlobalEnvironment) HasRestrictedGlobalProperty(a *Agent, name string) bool {
	desc, ok := e.ObjectRecord.BindingObject.GetOwnProperty(a, NewStringKey(name))
	if !ok {
		return false
	}
	return !desc.Configurable.Bool()
}

func (e *GlobalEnvironment) CanDeclareGlobalVar(a *Agent, name string) bool {
	global := e.ObjectRecord.BindingObject
	if HasOwnProperty(a, global, NewStringKey(name)) {
		return true
	}
	return global.IsExtensible()
}

func (e *GlobalEnvironment) CanDeclareGlobalFunction(a *Agent, name string) bool {
	global := e.ObjectRecord.BindingObject
	existing, ok := global.GetOwnProperty(a, NewStringKey(name))
	if !ok {
		return global.IsExtensible()
	}
	if existing.Configurable.Bool() {
		return true
	}
	return existing.IsDataDescriptor() && existing.Writable.Bool() && existing.Enumerable.Bool()
}

func (e *GlobalEnvironment) CreateGlobalVarBinding(a *Agent, name string, deletable bool) Completion {
	global := e.ObjectRecord.BindingObject
	hasOwn := HasOwnProperty(a, global, NewStringKey(name))
	if !hasOwn && global.IsExtensible() {
		if c := e.ObjectRecord.CreateMutableBinding(a, name, deletable); c.IsAbrupt() {
			return c
		}
		if c := e.ObjectRecord.InitializeBinding(a, name, Undefined); c.IsAbrupt() {
			return c
		}
	}
	e.VarNames[name] = struct{}{}
	return NormalCompletion(Undefined)
}

func (e *GlobalEnvironment) CreateGlobalFunctionBinding(a *Agent, name string, v Value, deletable bool) Completion {
	global := e.ObjectRecord.BindingObject
	key := NewStringKey(name)
	existing, ok := global.GetOwnProperty(a, key)
	var desc PropertyDescriptor
	if !ok || existing.Configurable.Bool() {
		desc = DataDescriptor(v, true, true, deletable)
	} else {
		desc = PropertyDescriptor{Value: v, HasValue: true}
	}
	if c := DefinePropertyOrThrow(a, global, key, desc); c.IsAbrupt() {
		return c
	}
	if c := Set(a, global, key, v, false); c.IsAbrupt() {
		return c
	}
	e.VarNames[name] = struct{}{}
	return NormalCompletion(Undefined)
}
