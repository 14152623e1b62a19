package driver

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/j-f1/forked-engine262/pkg/vm"
)

// objectBuilder fills a plain object with native functions and constant
// values, all writable, non-enumerable and configurable.
type objectBuilder struct {
	agent *vm.Agent
	realm *vm.Realm
	obj   *vm.Object
}

func newObjectBuilder(a *vm.Agent, r *vm.Realm) *objectBuilder {
	return &objectBuilder{agent: a, realm: r, obj: vm.ObjectCreate(r.Intrinsic(vm.IntrinsicObjectPrototype))}
}

func (b *objectBuilder) Function(name string, length int, steps vm.BuiltinSteps) *objectBuilder {
	fn := vm.NewNativeFunction(b.agent, b.realm, length, name, steps)
	return b.Value(name, vm.ObjectValue(fn))
}

func (b *objectBuilder) Value(name string, v vm.Value) *objectBuilder {
	vm.Must(vm.DefinePropertyOrThrow(b.agent, b.obj, vm.NewStringKey(name), vm.DataDescriptor(v, true, false, true)))
	return b
}

// installHost defines the host global: a few hooks fixtures use to observe
// the engine from guest code.
func (s *Session) installHost(r *vm.Realm) {
	host := newObjectBuilder(s.agent, r).
		Function("print", 0, s.hostPrint).
		Function("depth", 0, func(a *vm.Agent, _ vm.BuiltinCall) vm.Completion {
			return vm.NormalCompletion(vm.IntegerValue(a.StackDepth()))
		}).
		Function("createRealm", 0, func(a *vm.Agent, _ vm.BuiltinCall) vm.Completion {
			return vm.NormalCompletion(vm.ObjectValue(vm.NewRealm(a).GlobalObject))
		}).
		Value("platform", vm.NewString(runtime.GOOS))
	vm.Must(vm.DefinePropertyOrThrow(s.agent, r.GlobalObject, vm.NewStringKey("host"), vm.DataDescriptor(vm.ObjectValue(host.obj), true, false, true)))
	s.logger.WithField("realm", r.ID()).Debug("installed host object")
}

// hostPrint writes its arguments separated by spaces. Strings are written
// as is, other values are inspected.
func (s *Session) hostPrint(a *vm.Agent, call vm.BuiltinCall) vm.Completion {
	parts := make([]string, len(call.Args))
	for i, arg := range call.Args {
		if arg.IsString() {
			parts[i] = arg.AsString()
		} else {
			parts[i] = vm.Inspect(arg)
		}
	}
	fmt.Fprintln(s.out, strings.Join(parts, " "))
	return vm.NormalCompletion(vm.Undefined)
}
