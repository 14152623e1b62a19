package interp

import (
	"github.com/j-f1/forked-engine262/pkg/ast"
	"github.com/j-f1/forked-engine262/pkg/vm"
)

// defaultConstructor returns the synthesized constructor of a class
// without one.
func defaultConstructor(derived bool) *ast.FunctionNode {
	if !derived {
		return &ast.FunctionNode{
			Params:     &ast.FormalParameters{},
			Kind:       ast.FunctionBody,
			Strict:     true,
			SourceText: "constructor() {}",
		}
	}
	return &ast.FunctionNode{
		Params: &ast.FormalParameters{Params: []*ast.Parameter{
			{Target: &ast.BindingIdentifier{Name: "args"}, Rest: true},
		}},
		Kind: ast.FunctionBody,
		Body: []ast.Statement{&ast.ExpressionStatement{Expression: &ast.SuperCall{
			Arguments: []ast.Expression{&ast.SpreadElement{Argument: &ast.Identifier{Name: "args"}}},
		}}},
		Strict:     true,
		SourceText: "constructor(...args) { super(...args); }",
	}
}

// classDefinitionEvaluation creates a class constructor and its prototype.
// binding is the inner name visible to the class body, empty for anonymous
// classes; name becomes the constructor's name property.
func (ev *evaluator) classDefinitionEvaluation(cls *ast.ClassNode, binding string, name vm.PropertyKey) vm.Completion {
	a := ev.a
	cev := ev
	if !ev.strict {
		cev = ev.evaluator(a, true)
	}
	classScope := vm.NewDeclarativeEnvironment(ev.lexicalEnvironment())
	if binding != "" {
		vm.Must(classScope.CreateImmutableBinding(a, binding, true))
	}

	protoParent := a.Intrinsic(vm.IntrinsicObjectPrototype)
	constructorParent := a.Intrinsic(vm.IntrinsicFunctionPrototype)
	if cls.Extends != nil {
		superclass := cev.withLexicalEnvironment(classScope, func() vm.Completion {
			return cev.value(cls.Extends)
		})
		if superclass.IsAbrupt() {
			return superclass
		}
		switch {
		case superclass.Value.IsNull():
			protoParent = nil
		case !superclass.Value.IsConstructor():
			return a.Throw(vm.ErrorKindTypeError, vm.MsgSuperclassNotConstructor, vm.Inspect(superclass.Value))
		default:
			pp := vm.Get(a, superclass.Value.AsObject(), vm.NewStringKey("prototype"))
			if pp.IsAbrupt() {
				return pp
			}
			if !pp.Value.IsObject() && !pp.Value.IsNull() {
				return a.Throw(vm.ErrorKindTypeError, vm.MsgSuperclassPrototypeInvalid, vm.Inspect(pp.Value))
			}
			protoParent = protoOf(pp.Value)
			constructorParent = superclass.Value.AsObject()
		}
	}
	proto := vm.ObjectCreate(protoParent)

	ctor := cls.Constructor
	if ctor == nil {
		ctor = defaultConstructor(cls.Extends != nil)
	}
	return cev.withLexicalEnvironment(classScope, func() vm.Completion {
		F := vm.OrdinaryFunctionCreate(a, constructorParent, ctor.Params, ctor, false, classScope)
		vm.MakeMethod(F, proto)
		vm.MakeClassConstructor(F)
		vm.SetFunctionName(a, F, name, "")
		vm.MakeConstructorWithPrototype(a, F, false, proto)
		if cls.Extends != nil {
			F.Function().ConstructorKind = vm.ConstructorDerived
		}
		vm.CreateMethodProperty(a, proto, vm.NewStringKey("constructor"), vm.ObjectValue(F))

		for _, m := range cls.Methods {
			target := proto
			if m.Static {
				target = F
			}
			if c := cev.defineMethodProperty(target, vm.NewStringKey(m.Key), m.Function, m.Kind, false); c.IsAbrupt() {
				return c
			}
		}
		if binding != "" {
			vm.Must(classScope.InitializeBinding(a, binding, vm.ObjectValue(F)))
		}
		return vm.NormalCompletion(vm.ObjectValue(F))
	})
}
