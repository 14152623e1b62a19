package vm

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/j-f1/forked-engine262/pkg/errors"
)

// Names of the intrinsics the core relies on.
const (
	IntrinsicObjectPrototype                 = "%Object.prototype%"
	IntrinsicFunctionPrototype               = "%Function.prototype%"
	IntrinsicThrowTypeError                  = "%ThrowTypeError%"
	IntrinsicIteratorPrototype               = "%IteratorPrototype%"
	IntrinsicAsyncIteratorPrototype          = "%AsyncIteratorPrototype%"
	IntrinsicArrayIteratorPrototype          = "%ArrayIteratorPrototype%"
	IntrinsicArrayPrototypeValues            = "%Array.prototype.values%"
	IntrinsicBooleanPrototype                = "%Boolean.prototype%"
	IntrinsicNumberPrototype                 = "%Number.prototype%"
	IntrinsicStringPrototype                 = "%String.prototype%"
	IntrinsicSymbolPrototype                 = "%Symbol.prototype%"
	IntrinsicErrorPrototype                  = "%Error.prototype%"
	IntrinsicGeneratorFunctionPrototype      = "%GeneratorFunction.prototype%"
	IntrinsicGeneratorPrototype              = "%GeneratorFunction.prototype.prototype%"
	IntrinsicAsyncFunctionPrototype          = "%AsyncFunction.prototype%"
	IntrinsicAsyncGeneratorFunctionPrototype = "%AsyncGeneratorFunction.prototype%"
	IntrinsicAsyncGeneratorPrototype         = "%AsyncGeneratorFunction.prototype.prototype%"
	IntrinsicPromisePrototype                = "%Promise.prototype%"
)

// Realm is a set of intrinsics plus a global object and environment.
type Realm struct {
	id           int
	intrinsics   map[string]*Object
	GlobalObject *Object
	GlobalEnv    *GlobalEnvironment
	HostDefined  any

	globals []globalBinding
}

type globalBinding struct {
	name  string
	value *Object
}

// NewRealm creates a realm, populates its intrinsics and global object, and
// runs the agent's realm hooks.
func NewRealm(a *Agent) *Realm {
	r := &Realm{
		id:         len(a.realms) + 1,
		intrinsics: make(map[string]*Object),
	}
	r.createIntrinsics(a)

	global := ObjectCreate(r.Intrinsic(IntrinsicObjectPrototype))
	global.SetClass("global")
	r.GlobalObject = global
	r.GlobalEnv = NewGlobalEnvironment(global, global)
	r.setDefaultGlobalBindings(a)

	a.realms = append(a.realms, r)
	for _, hook := range a.realmHooks {
		hook(r)
	}
	a.logger.WithFields(logrus.Fields{
		"realm":      r.id,
		"intrinsics": len(r.intrinsics),
	}).Debug("created realm")
	return r
}

func (r *Realm) ID() int { return r.id }

// Intrinsic returns the named intrinsic. Unknown names are engine bugs.
func (r *Realm) Intrinsic(name string) *Object {
	o, ok := r.intrinsics[name]
	errors.Assert(ok, "Intrinsic", "realm %d has no intrinsic %s", r.id, name)
	return o
}

// HasIntrinsic reports whether name has been registered.
func (r *Realm) HasIntrinsic(name string) bool {
	_, ok := r.intrinsics[name]
	return ok
}

// SetIntrinsic registers an intrinsic. Realm hooks use it to add the
// prototypes of host-provided features.
func (r *Realm) SetIntrinsic(name string, o *Object) {
	errors.Assert(o != nil, "SetIntrinsic", "intrinsic %s is nil", name)
	r.intrinsics[name] = o
}

// InstallMethod defines a builtin method on target as a writable,
// non-enumerable, configurable property.
func (r *Realm) InstallMethod(a *Agent, target *Object, key PropertyKey, length int, steps BuiltinSteps) *Object {
	F := CreateBuiltinFunction(a, steps, nil, r, nil, false)
	SetFunctionLength(a, F, length)
	SetFunctionName(a, F, key, "")
	CreateMethodProperty(a, target, key, ObjectValue(F))
	return F
}

// InstallValue defines a non-writable, non-enumerable, non-configurable
// data property.
func (r *Realm) InstallValue(a *Agent, target *Object, key PropertyKey, v Value) {
	ok := target.DefineOwnProperty(a, key, DataDescriptor(v, false, false, false))
	errors.Assert(ok, "InstallValue", "could not define %s", key)
}

func (r *Realm) createIntrinsics(a *Agent) {
	objectProto := ObjectCreate(nil)
	r.SetIntrinsic(IntrinsicObjectPrototype, objectProto)

	functionProto := CreateBuiltinFunction(a, func(*Agent, BuiltinCall) Completion {
		return NormalCompletion(Undefined)
	}, nil, r, objectProto, false)
	SetFunctionLength(a, functionProto, 0)
	SetFunctionName(a, functionProto, NewStringKey(""), "")
	r.SetIntrinsic(IntrinsicFunctionPrototype, functionProto)

	thrower := CreateBuiltinFunction(a, func(a *Agent, _ BuiltinCall) Completion {
		return a.Throw(ErrorKindTypeError, MsgStrictPoisonPill)
	}, nil, r, functionProto, false)
	SetFunctionLength(a, thrower, 0)
	SetFunctionName(a, thrower, NewStringKey(""), "")
	Must(SetIntegrityLevel(a, thrower, Frozen))
	r.SetIntrinsic(IntrinsicThrowTypeError, thrower)

	for _, name := range []string{IntrinsicBooleanPrototype, IntrinsicNumberPrototype, IntrinsicStringPrototype, IntrinsicSymbolPrototype} {
		r.SetIntrinsic(name, ObjectCreate(objectProto))
	}

	r.createErrorIntrinsics(a)
	r.createIteratorIntrinsics(a)
	r.createFunctionKindIntrinsics(a)
	r.createObjectLibrary(a)
}

// createFunctionKindIntrinsics creates the prototypes of generator and
// async function objects. Their methods are installed by the evaluator that
// implements those body shapes.
func (r *Realm) createFunctionKindIntrinsics(a *Agent) {
	functionProto := r.Intrinsic(IntrinsicFunctionPrototype)
	iteratorProto := r.Intrinsic(IntrinsicIteratorPrototype)
	asyncIteratorProto := r.Intrinsic(IntrinsicAsyncIteratorPrototype)

	generatorFunctionProto := ObjectCreate(functionProto)
	generatorProto := ObjectCreate(iteratorProto)
	r.linkFunctionKind(a, generatorFunctionProto, generatorProto, "GeneratorFunction", "Generator")
	r.SetIntrinsic(IntrinsicGeneratorFunctionPrototype, generatorFunctionProto)
	r.SetIntrinsic(IntrinsicGeneratorPrototype, generatorProto)

	asyncGeneratorFunctionProto := ObjectCreate(functionProto)
	asyncGeneratorProto := ObjectCreate(asyncIteratorProto)
	r.linkFunctionKind(a, asyncGeneratorFunctionProto, asyncGeneratorProto, "AsyncGeneratorFunction", "AsyncGenerator")
	r.SetIntrinsic(IntrinsicAsyncGeneratorFunctionPrototype, asyncGeneratorFunctionProto)
	r.SetIntrinsic(IntrinsicAsyncGeneratorPrototype, asyncGeneratorProto)

	asyncFunctionProto := ObjectCreate(functionProto)
	asyncFunctionProto.DefineOwnProperty(a, NewSymbolKey(SymbolToStringTag), DataDescriptor(NewString("AsyncFunction"), false, false, true))
	r.SetIntrinsic(IntrinsicAsyncFunctionPrototype, asyncFunctionProto)

	promiseProto := ObjectCreate(r.Intrinsic(IntrinsicObjectPrototype))
	promiseProto.DefineOwnProperty(a, NewSymbolKey(SymbolToStringTag), DataDescriptor(NewString("Promise"), false, false, true))
	r.SetIntrinsic(IntrinsicPromisePrototype, promiseProto)
}

func (r *Realm) linkFunctionKind(a *Agent, functionProto, instanceProto *Object, functionTag, instanceTag string) {
	functionProto.DefineOwnProperty(a, NewStringKey("prototype"), DataDescriptor(ObjectValue(instanceProto), false, false, true))
	functionProto.DefineOwnProperty(a, NewSymbolKey(SymbolToStringTag), DataDescriptor(NewString(functionTag), false, false, true))
	instanceProto.DefineOwnProperty(a, NewStringKey("constructor"), DataDescriptor(ObjectValue(functionProto), false, false, true))
	instanceProto.DefineOwnProperty(a, NewSymbolKey(SymbolToStringTag), DataDescriptor(NewString(instanceTag), false, false, true))
}

func (r *Realm) setDefaultGlobalBindings(a *Agent) {
	global := r.GlobalObject
	r.InstallValue(a, global, NewStringKey("undefined"), Undefined)
	r.InstallValue(a, global, NewStringKey("NaN"), NaN)
	r.InstallValue(a, global, NewStringKey("Infinity"), NumberValue(math.Inf(1)))
	CreateMethodProperty(a, global, NewStringKey("globalThis"), ObjectValue(r.GlobalEnv.GlobalThisValue))
	for _, g := range r.globals {
		CreateMethodProperty(a, global, NewStringKey(g.name), ObjectValue(g.value))
	}
}
