package interp

import (
	"strings"

	"github.com/j-f1/forked-engine262/pkg/ast"
	"github.com/j-f1/forked-engine262/pkg/errors"
	"github.com/j-f1/forked-engine262/pkg/vm"
)

// value evaluates e and dereferences the result.
func (ev *evaluator) value(e ast.Expression) vm.Completion {
	a := ev.a
	switch e := e.(type) {
	case *ast.NumberLiteral:
		return vm.NormalCompletion(vm.NumberValue(e.Value))
	case *ast.StringLiteral:
		return vm.NormalCompletion(vm.NewString(e.Value))
	case *ast.BooleanLiteral:
		return vm.NormalCompletion(vm.BooleanValue(e.Value))
	case *ast.NullLiteral:
		return vm.NormalCompletion(vm.Null)
	case *ast.UndefinedLiteral:
		return vm.NormalCompletion(vm.Undefined)
	case *ast.Identifier, *ast.MemberExpression, *ast.SuperMember:
		ref, c := ev.reference(e)
		if c.IsAbrupt() {
			return c
		}
		return vm.GetValue(a, ref)
	case *ast.ThisExpression:
		return a.ResolveThisBinding()
	case *ast.NewTargetExpression:
		if _, ok := a.GetThisEnvironment().(*vm.FunctionEnvironment); !ok {
			return a.Throw(vm.ErrorKindSyntaxError, vm.MsgSuperOutsideMethod)
		}
		return vm.NormalCompletion(a.GetNewTarget())
	case *ast.ObjectLiteral:
		return ev.objectLiteral(e)
	case *ast.FunctionExpression:
		return ev.functionExpression(e.Function, vm.NewStringKey(""))
	case *ast.ClassExpression:
		return ev.classDefinitionEvaluation(e.Class, e.Class.Name, vm.NewStringKey(e.Class.Name))
	case *ast.CallExpression:
		return ev.call(e)
	case *ast.SuperCall:
		return ev.superCall(e)
	case *ast.NewExpression:
		return ev.newExpression(e)
	case *ast.AssignmentExpression:
		return ev.assignment(e)
	case *ast.BinaryExpression:
		return ev.binary(e)
	case *ast.LogicalExpression:
		return ev.logical(e)
	case *ast.UnaryExpression:
		return ev.unary(e)
	case *ast.ConditionalExpression:
		test := ev.value(e.Test)
		if test.IsAbrupt() {
			return test
		}
		if vm.ToBoolean(test.Value) {
			return ev.value(e.Consequent)
		}
		return ev.value(e.Alternate)
	case *ast.YieldExpression:
		return ev.yield(e)
	case *ast.AwaitExpression:
		v := ev.value(e.Argument)
		if v.IsAbrupt() {
			return v
		}
		return ev.await(v.Value)
	}
	errors.Unreachable("value", "unknown expression %T", e)
	return vm.Completion{}
}

// reference evaluates an identifier or member expression to a reference
// without reading it.
func (ev *evaluator) reference(e ast.Expression) (vm.Reference, vm.Completion) {
	a := ev.a
	switch e := e.(type) {
	case *ast.Identifier:
		return a.ResolveBinding(e.Name, nil, ev.strict), vm.NormalCompletion(vm.Empty)
	case *ast.MemberExpression:
		base := ev.value(e.Object)
		if base.IsAbrupt() {
			return vm.Reference{}, base
		}
		key, c := ev.memberKey(e.Property, e.Computed)
		if c.IsAbrupt() {
			return vm.Reference{}, c
		}
		if base.Value.IsNullish() {
			return vm.Reference{}, a.Throw(vm.ErrorKindTypeError, vm.MsgCannotConvertToObject, base.Value.String())
		}
		return vm.PropertyReference(base.Value, key, ev.strict), c
	case *ast.SuperMember:
		env, ok := a.GetThisEnvironment().(*vm.FunctionEnvironment)
		if !ok || !env.HasSuperBinding() {
			return vm.Reference{}, a.Throw(vm.ErrorKindSyntaxError, vm.MsgSuperOutsideMethod)
		}
		this := env.GetThisBinding(a)
		if this.IsAbrupt() {
			return vm.Reference{}, this
		}
		key, c := ev.memberKey(e.Property, e.Computed)
		if c.IsAbrupt() {
			return vm.Reference{}, c
		}
		base := env.GetSuperBase()
		if base.IsNullish() {
			return vm.Reference{}, a.Throw(vm.ErrorKindTypeError, vm.MsgCannotConvertToObject, base.String())
		}
		return vm.SuperReference(base, key, this.Value, ev.strict), c
	}
	return vm.Reference{}, a.Throw(vm.ErrorKindSyntaxError, vm.MsgInvalidAssignmentTarget)
}

func (ev *evaluator) memberKey(name string, computed ast.Expression) (vm.PropertyKey, vm.Completion) {
	if computed == nil {
		return vm.NewStringKey(name), vm.NormalCompletion(vm.Empty)
	}
	v := ev.value(computed)
	if v.IsAbrupt() {
		return vm.PropertyKey{}, v
	}
	return vm.ToPropertyKey(ev.a, v.Value)
}

func isAnonymousFunctionDefinition(e ast.Expression) bool {
	switch e := e.(type) {
	case *ast.FunctionExpression:
		return e.Function.Name == ""
	case *ast.ClassExpression:
		return e.Class.Name == ""
	}
	return false
}

// namedEvaluation evaluates an anonymous function or class definition and
// names the result.
func (ev *evaluator) namedEvaluation(e ast.Expression, name vm.PropertyKey) vm.Completion {
	switch e := e.(type) {
	case *ast.FunctionExpression:
		return ev.functionExpression(e.Function, name)
	case *ast.ClassExpression:
		return ev.classDefinitionEvaluation(e.Class, "", name)
	}
	errors.Unreachable("namedEvaluation", "%T is not an anonymous function definition", e)
	return vm.Completion{}
}

// --- Calls ---

func (ev *evaluator) call(e *ast.CallExpression) vm.Completion {
	a := ev.a
	var fn, this vm.Value
	switch callee := e.Callee.(type) {
	case *ast.Identifier, *ast.MemberExpression, *ast.SuperMember:
		ref, c := ev.reference(callee)
		if c.IsAbrupt() {
			return c
		}
		f := vm.GetValue(a, ref)
		if f.IsAbrupt() {
			return f
		}
		fn = f.Value
		switch {
		case ref.IsPropertyReference():
			this = ref.GetThisValue()
		case ref.Env != nil:
			this = ref.Env.WithBaseObject()
		default:
			this = vm.Undefined
		}
	default:
		f := ev.value(callee)
		if f.IsAbrupt() {
			return f
		}
		fn, this = f.Value, vm.Undefined
	}
	args, c := ev.arguments(e.Arguments)
	if c.IsAbrupt() {
		return c
	}
	if !fn.IsCallable() {
		return a.Throw(vm.ErrorKindTypeError, vm.MsgNotAFunction, describeCallee(e.Callee, fn))
	}
	return vm.Call(a, fn, this, args)
}

// arguments evaluates an argument list, expanding spread elements.
func (ev *evaluator) arguments(list []ast.Expression) ([]vm.Value, vm.Completion) {
	args := make([]vm.Value, 0, len(list))
	for _, arg := range list {
		if spread, ok := arg.(*ast.SpreadElement); ok {
			v := ev.value(spread.Argument)
			if v.IsAbrupt() {
				return nil, v
			}
			values, c := iterableToList(ev.a, v.Value)
			if c.IsAbrupt() {
				return nil, c
			}
			args = append(args, values...)
			continue
		}
		v := ev.value(arg)
		if v.IsAbrupt() {
			return nil, v
		}
		args = append(args, v.Value)
	}
	return args, vm.NormalCompletion(vm.Undefined)
}

// describeCallee renders a callee for error messages: the source path for
// names and member chains, the inspected value otherwise.
func describeCallee(e ast.Expression, v vm.Value) string {
	if s, ok := calleePath(e); ok {
		return s
	}
	return vm.Inspect(v)
}

func calleePath(e ast.Expression) (string, bool) {
	switch e := e.(type) {
	case *ast.Identifier:
		return e.Name, true
	case *ast.ThisExpression:
		return "this", true
	case *ast.MemberExpression:
		obj, ok := calleePath(e.Object)
		if !ok {
			return "", false
		}
		if e.Computed != nil {
			return obj + "[...]", true
		}
		return obj + "." + e.Property, true
	case *ast.SuperMember:
		if e.Computed != nil {
			return "super[...]", true
		}
		return "super." + e.Property, true
	}
	return "", false
}

func (ev *evaluator) newExpression(e *ast.NewExpression) vm.Completion {
	a := ev.a
	ctor := ev.value(e.Callee)
	if ctor.IsAbrupt() {
		return ctor
	}
	args, c := ev.arguments(e.Arguments)
	if c.IsAbrupt() {
		return c
	}
	if !ctor.Value.IsConstructor() {
		return a.Throw(vm.ErrorKindTypeError, vm.MsgNotAConstructor, describeCallee(e.Callee, ctor.Value))
	}
	return vm.Construct(a, ctor.Value.AsObject(), args, nil)
}

func (ev *evaluator) superCall(e *ast.SuperCall) vm.Completion {
	a := ev.a
	env, ok := a.GetThisEnvironment().(*vm.FunctionEnvironment)
	if !ok || env.NewTarget.IsUndefined() {
		return a.Throw(vm.ErrorKindSyntaxError, vm.MsgSuperOutsideMethod)
	}
	superCtor := env.FunctionObject.GetPrototypeOf()
	args, c := ev.arguments(e.Arguments)
	if c.IsAbrupt() {
		return c
	}
	if superCtor == nil || !superCtor.IsConstructor() {
		return a.Throw(vm.ErrorKindTypeError, vm.MsgSuperNotConstructor, vm.Inspect(vm.ObjectValue(superCtor)))
	}
	result := vm.Construct(a, superCtor, args, env.NewTarget.AsObject())
	if result.IsAbrupt() {
		return result
	}
	if c := env.BindThisValue(a, result.Value); c.IsAbrupt() {
		return c
	}
	return result
}

// --- Assignment and operators ---

func (ev *evaluator) assignment(e *ast.AssignmentExpression) vm.Completion {
	a := ev.a
	ref, c := ev.reference(e.Target)
	if c.IsAbrupt() {
		return c
	}
	rhs := func() vm.Completion {
		if id, ok := e.Target.(*ast.Identifier); ok && isAnonymousFunctionDefinition(e.Value) {
			return ev.namedEvaluation(e.Value, vm.NewStringKey(id.Name))
		}
		return ev.value(e.Value)
	}

	var v vm.Completion
	switch e.Operator {
	case "=":
		v = rhs()
	case "&&=", "||=", "??=":
		lval := vm.GetValue(a, ref)
		if lval.IsAbrupt() {
			return lval
		}
		var shortCircuit bool
		switch e.Operator {
		case "&&=":
			shortCircuit = !vm.ToBoolean(lval.Value)
		case "||=":
			shortCircuit = vm.ToBoolean(lval.Value)
		default:
			shortCircuit = !lval.Value.IsNullish()
		}
		if shortCircuit {
			return lval
		}
		v = rhs()
	default:
		lval := vm.GetValue(a, ref)
		if lval.IsAbrupt() {
			return lval
		}
		rval := ev.value(e.Value)
		if rval.IsAbrupt() {
			return rval
		}
		v = applyOperator(a, strings.TrimSuffix(e.Operator, "="), lval.Value, rval.Value)
	}
	if v.IsAbrupt() {
		return v
	}
	if c := vm.PutValue(a, ref, v.Value); c.IsAbrupt() {
		return c
	}
	return v
}

func (ev *evaluator) binary(e *ast.BinaryExpression) vm.Completion {
	l := ev.value(e.Left)
	if l.IsAbrupt() {
		return l
	}
	r := ev.value(e.Right)
	if r.IsAbrupt() {
		return r
	}
	return applyOperator(ev.a, e.Operator, l.Value, r.Value)
}

func (ev *evaluator) logical(e *ast.LogicalExpression) vm.Completion {
	l := ev.value(e.Left)
	if l.IsAbrupt() {
		return l
	}
	switch e.Operator {
	case "&&":
		if !vm.ToBoolean(l.Value) {
			return l
		}
	case "||":
		if vm.ToBoolean(l.Value) {
			return l
		}
	case "??":
		if !l.Value.IsNullish() {
			return l
		}
	default:
		return ev.a.Throw(vm.ErrorKindSyntaxError, vm.MsgUnsupportedOperator, e.Operator)
	}
	return ev.value(e.Right)
}

func (ev *evaluator) unary(e *ast.UnaryExpression) vm.Completion {
	a := ev.a
	switch e.Operator {
	case "delete":
		return ev.deleteExpression(e.Argument)
	case "typeof":
		if id, ok := e.Argument.(*ast.Identifier); ok {
			ref := a.ResolveBinding(id.Name, nil, ev.strict)
			if ref.Unresolvable {
				return vm.NormalCompletion(vm.NewString("undefined"))
			}
			v := vm.GetValue(a, ref)
			if v.IsAbrupt() {
				return v
			}
			return vm.NormalCompletion(vm.NewString(v.Value.TypeName()))
		}
	}
	v := ev.value(e.Argument)
	if v.IsAbrupt() {
		return v
	}
	return applyUnary(a, e.Operator, v.Value)
}

func (ev *evaluator) deleteExpression(target ast.Expression) vm.Completion {
	a := ev.a
	switch target.(type) {
	case *ast.Identifier, *ast.MemberExpression, *ast.SuperMember:
	default:
		if c := ev.value(target); c.IsAbrupt() {
			return c
		}
		return vm.NormalCompletion(vm.True)
	}
	ref, c := ev.reference(target)
	if c.IsAbrupt() {
		return c
	}
	switch {
	case ref.Unresolvable:
		return vm.NormalCompletion(vm.True)
	case ref.IsPropertyReference():
		if ref.IsSuperReference() {
			return a.Throw(vm.ErrorKindReferenceError, vm.MsgDeleteSuperProperty)
		}
		base := vm.Must(vm.ToObject(a, ref.Base)).AsObject()
		ok := base.Delete(a, ref.Name)
		if !ok && ref.Strict {
			return a.Throw(vm.ErrorKindTypeError, vm.MsgCannotDeleteProperty, ref.Name)
		}
		return vm.NormalCompletion(vm.BooleanValue(ok))
	}
	return vm.NormalCompletion(vm.BooleanValue(ref.Env.DeleteBinding(a, ref.Name.Name())))
}

// --- Object literals ---

func (ev *evaluator) objectLiteral(e *ast.ObjectLiteral) vm.Completion {
	a := ev.a
	obj := vm.ObjectCreate(a.Intrinsic(vm.IntrinsicObjectPrototype))
	for _, p := range e.Properties {
		if p.Kind == ast.PropertyInit && p.Computed == nil && p.Key == "__proto__" {
			v := ev.value(p.Value)
			if v.IsAbrupt() {
				return v
			}
			if v.Value.IsObject() || v.Value.IsNull() {
				obj.SetPrototypeOf(protoOf(v.Value))
			}
			continue
		}
		key, c := ev.memberKey(p.Key, p.Computed)
		if c.IsAbrupt() {
			return c
		}
		switch p.Kind {
		case ast.PropertyInit:
			var v vm.Completion
			if isAnonymousFunctionDefinition(p.Value) {
				v = ev.namedEvaluation(p.Value, key)
			} else {
				v = ev.value(p.Value)
			}
			if v.IsAbrupt() {
				return v
			}
			vm.CreateDataProperty(a, obj, key, v.Value)
		default:
			if c := ev.defineMethodProperty(obj, key, p.Function, methodKindOf(p.Kind), true); c.IsAbrupt() {
				return c
			}
		}
	}
	return vm.NormalCompletion(vm.ObjectValue(obj))
}

func methodKindOf(k ast.PropertyKind) ast.MethodKind {
	switch k {
	case ast.PropertyGetter:
		return ast.MethodGetter
	case ast.PropertySetter:
		return ast.MethodSetter
	}
	return ast.MethodNormal
}

func protoOf(v vm.Value) *vm.Object {
	if v.IsNull() {
		return nil
	}
	return v.AsObject()
}
