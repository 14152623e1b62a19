package vm

import (
	"github.com/j-f1/forked-engine262/pkg/ast"
	"github.com/j-f1/forked-engine262/pkg/errors"
)

// ThisMode decides how a call binds this.
type ThisMode uint8

const (
	ThisModeLexical ThisMode = iota
	ThisModeStrict
	ThisModeGlobal
)

func (m ThisMode) String() string {
	switch m {
	case ThisModeLexical:
		return "lexical"
	case ThisModeStrict:
		return "strict"
	default:
		return "global"
	}
}

type ConstructorKind uint8

const (
	ConstructorBase ConstructorKind = iota
	ConstructorDerived
)

func (k ConstructorKind) String() string {
	if k == ConstructorDerived {
		return "derived"
	}
	return "base"
}

// FunctionData holds the internal slots of an ECMAScript function object.
type FunctionData struct {
	Environment        Environment
	FormalParameters   *ast.FormalParameters
	ECMAScriptCode     *ast.FunctionNode
	ConstructorKind    ConstructorKind
	Realm              *Realm
	ScriptOrModule     *ScriptOrModule
	ThisMode           ThisMode
	Strict             bool
	HomeObject         *Object
	IsClassConstructor bool

	constructable bool
}

// Function returns the slots of an ECMAScript function object.
func (o *Object) Function() *FunctionData {
	errors.Assert(o.kind == KindFunction, "Function", "%s object is not an ECMAScript function", o.kind)
	return o.function
}

// IsECMAScriptFunction reports whether o was created by OrdinaryFunctionCreate.
func (o *Object) IsECMAScriptFunction() bool { return o.kind == KindFunction }

// OrdinaryFunctionCreate allocates an ECMAScript function object closing over
// scope. The result is callable but not yet a constructor.
func OrdinaryFunctionCreate(a *Agent, functionPrototype *Object, params *ast.FormalParameters, body *ast.FunctionNode, lexicalThis bool, scope Environment) *Object {
	errors.Assert(functionPrototype != nil, "OrdinaryFunctionCreate", "function prototype must be an object")
	errors.Assert(body != nil, "OrdinaryFunctionCreate", "missing body")
	fd := &FunctionData{
		Environment:      scope,
		FormalParameters: params,
		ECMAScriptCode:   body,
		ConstructorKind:  ConstructorBase,
		Realm:            a.CurrentRealm(),
		ScriptOrModule:   a.GetActiveScriptOrModule(),
		Strict:           body.Strict,
	}
	switch {
	case lexicalThis:
		fd.ThisMode = ThisModeLexical
	case fd.Strict:
		fd.ThisMode = ThisModeStrict
	default:
		fd.ThisMode = ThisModeGlobal
	}
	F := &Object{
		kind:       KindFunction,
		prototype:  functionPrototype,
		extensible: true,
		class:      "Function",
		function:   fd,
	}
	SetFunctionLength(a, F, params.ExpectedArgumentCount())
	return F
}

// MakeConstructor makes F a constructor with a fresh, writable prototype
// object.
func MakeConstructor(a *Agent, F *Object) {
	MakeConstructorWithPrototype(a, F, true, nil)
}

// MakeConstructorWithPrototype makes F a constructor. When prototype is nil
// a fresh object whose constructor property points back at F is created.
func MakeConstructorWithPrototype(a *Agent, F *Object, writablePrototype bool, prototype *Object) {
	fd := F.Function()
	errors.Assert(!F.IsConstructor(), "MakeConstructor", "function is already a constructor")
	errors.Assert(F.IsExtensible() && !HasOwnProperty(a, F, NewStringKey("prototype")), "MakeConstructor", "function already has a prototype property")
	fd.constructable = true
	fd.ConstructorKind = ConstructorBase
	if prototype == nil {
		prototype = ObjectCreate(a.Intrinsic(IntrinsicObjectPrototype))
		Must(DefinePropertyOrThrow(a, prototype, NewStringKey("constructor"), DataDescriptor(ObjectValue(F), writablePrototype, false, true)))
	}
	Must(DefinePropertyOrThrow(a, F, NewStringKey("prototype"), DataDescriptor(ObjectValue(prototype), writablePrototype, false, false)))
}

// MakeClassConstructor marks F so that calling it without new throws.
func MakeClassConstructor(F *Object) {
	fd := F.Function()
	errors.Assert(!fd.IsClassConstructor, "MakeClassConstructor", "function is already a class constructor")
	fd.IsClassConstructor = true
}

// MakeMethod sets F's home object for super lookups.
func MakeMethod(F *Object, homeObject *Object) {
	errors.Assert(homeObject != nil, "MakeMethod", "home object must be an object")
	F.Function().HomeObject = homeObject
}

// SetFunctionName defines F.name. Symbol names render as "[description]"
// and a non-empty prefix is joined with a space.
func SetFunctionName(a *Agent, F *Object, name PropertyKey, prefix string) {
	errors.Assert(F.IsExtensible() && !HasOwnProperty(a, F, NewStringKey("name")), "SetFunctionName", "function already has a name property")
	var s string
	if name.IsSymbol() {
		desc := name.Symbol().Description()
		if !desc.IsUndefined() {
			s = "[" + desc.AsString() + "]"
		}
	} else {
		s = name.Name()
	}
	if prefix != "" {
		s = prefix + " " + s
	}
	Must(DefinePropertyOrThrow(a, F, NewStringKey("name"), DataDescriptor(NewString(s), false, false, true)))
}

// SetFunctionLength defines F.length.
func SetFunctionLength(a *Agent, F *Object, length int) {
	errors.Assert(length >= 0, "SetFunctionLength", "negative length %d", length)
	errors.Assert(F.IsExtensible() && !HasOwnProperty(a, F, NewStringKey("length")), "SetFunctionLength", "function already has a length property")
	Must(DefinePropertyOrThrow(a, F, NewStringKey("length"), DataDescriptor(IntegerValue(length), false, false, true)))
}

// functionDebugName reads an own string-valued name without running code.
func functionDebugName(F *Object) string {
	p, ok := F.props.get(NewStringKey("name"))
	if !ok || p.accessor || !p.value.IsString() {
		return ""
	}
	return p.value.str
}
