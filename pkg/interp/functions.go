package interp

import (
	"github.com/j-f1/forked-engine262/pkg/ast"
	"github.com/j-f1/forked-engine262/pkg/vm"
)

// functionPrototypeFor names the [[Prototype]] of functions with fn's body
// kind.
func functionPrototypeFor(fn *ast.FunctionNode) string {
	switch fn.Kind.Shape() {
	case ast.ShapeGenerator:
		return vm.IntrinsicGeneratorFunctionPrototype
	case ast.ShapeAsyncGenerator:
		return vm.IntrinsicAsyncGeneratorFunctionPrototype
	case ast.ShapeAsyncFunction, ast.ShapeAsyncExpression:
		return vm.IntrinsicAsyncFunctionPrototype
	}
	return vm.IntrinsicFunctionPrototype
}

// newFunction creates an unnamed closure for fn over scope. Ordinary
// non-arrow functions become constructors unless they are methods;
// generator functions get a prototype object for their instances.
func (ev *evaluator) newFunction(fn *ast.FunctionNode, scope vm.Environment, method bool) *vm.Object {
	a := ev.a
	F := vm.OrdinaryFunctionCreate(a, a.Intrinsic(functionPrototypeFor(fn)), fn.Params, fn, fn.Arrow, scope)
	switch fn.Kind.Shape() {
	case ast.ShapeGenerator:
		proto := vm.ObjectCreate(a.Intrinsic(vm.IntrinsicGeneratorPrototype))
		vm.Must(vm.DefinePropertyOrThrow(a, F, vm.NewStringKey("prototype"), vm.DataDescriptor(vm.ObjectValue(proto), true, false, false)))
	case ast.ShapeAsyncGenerator:
		proto := vm.ObjectCreate(a.Intrinsic(vm.IntrinsicAsyncGeneratorPrototype))
		vm.Must(vm.DefinePropertyOrThrow(a, F, vm.NewStringKey("prototype"), vm.DataDescriptor(vm.ObjectValue(proto), true, false, false)))
	case ast.ShapeFunction:
		if !fn.Arrow && !method {
			vm.MakeConstructor(a, F)
		}
	}
	return F
}

// instantiateFunctionObject creates the closure for a hoisted function
// declaration.
func (ev *evaluator) instantiateFunctionObject(fn *ast.FunctionNode, scope vm.Environment) *vm.Object {
	F := ev.newFunction(fn, scope, false)
	vm.SetFunctionName(ev.a, F, vm.NewStringKey(fn.Name), "")
	return F
}

// functionExpression evaluates a function or arrow expression. A named
// expression binds its own name in an intermediate scope; anonymous ones
// take name from the surrounding named evaluation.
func (ev *evaluator) functionExpression(fn *ast.FunctionNode, name vm.PropertyKey) vm.Completion {
	a := ev.a
	scope := ev.lexicalEnvironment()
	if fn.Arrow || fn.Name == "" {
		F := ev.newFunction(fn, scope, false)
		vm.SetFunctionName(a, F, name, "")
		return vm.NormalCompletion(vm.ObjectValue(F))
	}
	funcEnv := vm.NewDeclarativeEnvironment(scope)
	vm.Must(funcEnv.CreateImmutableBinding(a, fn.Name, false))
	F := ev.newFunction(fn, funcEnv, false)
	vm.SetFunctionName(a, F, vm.NewStringKey(fn.Name), "")
	vm.Must(funcEnv.InitializeBinding(a, fn.Name, vm.ObjectValue(F)))
	return vm.NormalCompletion(vm.ObjectValue(F))
}

// defineMethodProperty creates a method, getter or setter with home object
// home and defines it on home under key.
func (ev *evaluator) defineMethodProperty(home *vm.Object, key vm.PropertyKey, fn *ast.FunctionNode, kind ast.MethodKind, enumerable bool) vm.Completion {
	a := ev.a
	closure := ev.newFunction(fn, ev.lexicalEnvironment(), true)
	vm.MakeMethod(closure, home)
	var desc vm.PropertyDescriptor
	switch kind {
	case ast.MethodGetter:
		vm.SetFunctionName(a, closure, key, "get")
		desc = vm.PropertyDescriptor{Get: vm.ObjectValue(closure), HasGet: true}
	case ast.MethodSetter:
		vm.SetFunctionName(a, closure, key, "set")
		desc = vm.PropertyDescriptor{Set: vm.ObjectValue(closure), HasSet: true}
	default:
		vm.SetFunctionName(a, closure, key, "")
		desc = vm.PropertyDescriptor{Value: vm.ObjectValue(closure), HasValue: true, Writable: vm.FlagTrue}
	}
	desc.Enumerable = vm.ToFlag(enumerable)
	desc.Configurable = vm.FlagTrue
	return vm.DefinePropertyOrThrow(a, home, key, desc)
}
