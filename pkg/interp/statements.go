package interp

import (
	"slices"

	"github.com/j-f1/forked-engine262/pkg/ast"
	"github.com/j-f1/forked-engine262/pkg/errors"
	"github.com/j-f1/forked-engine262/pkg/vm"
)

// evaluator walks the statements and expressions of one body. Strictness is
// fixed per body; everything else lives in the running execution context.
type evaluator struct {
	*Interpreter
	a      *vm.Agent
	strict bool
}

func (in *Interpreter) evaluator(a *vm.Agent, strict bool) *evaluator {
	return &evaluator{Interpreter: in, a: a, strict: strict}
}

func (ev *evaluator) context() *vm.ExecutionContext {
	return ev.a.RunningContext()
}

func (ev *evaluator) lexicalEnvironment() vm.Environment {
	return ev.context().LexicalEnvironment
}

// withLexicalEnvironment runs fn with env as the running lexical
// environment and restores the previous one afterwards.
func (ev *evaluator) withLexicalEnvironment(env vm.Environment, fn func() vm.Completion) vm.Completion {
	ctx := ev.context()
	old := ctx.LexicalEnvironment
	ctx.LexicalEnvironment = env
	c := fn()
	ctx.LexicalEnvironment = old
	return c
}

func (ev *evaluator) statementList(body []ast.Statement) vm.Completion {
	last := vm.Empty
	for _, s := range body {
		c := ev.statement(s, nil)
		if c.IsAbrupt() {
			return vm.UpdateEmpty(c, last)
		}
		if !c.Value.IsEmpty() {
			last = c.Value
		}
	}
	return vm.NormalCompletion(last)
}

func (ev *evaluator) statement(s ast.Statement, labels []string) vm.Completion {
	switch s := s.(type) {
	case *ast.ExpressionStatement:
		return ev.value(s.Expression)
	case *ast.VariableDeclaration:
		return ev.variableDeclaration(s)
	case *ast.FunctionDeclaration:
		return vm.NormalCompletion(vm.Empty)
	case *ast.ClassDeclaration:
		return ev.classDeclaration(s)
	case *ast.ReturnStatement:
		return ev.returnStatement(s)
	case *ast.ThrowStatement:
		v := ev.value(s.Argument)
		if v.IsAbrupt() {
			return v
		}
		return vm.ThrowCompletion(v.Value)
	case *ast.IfStatement:
		return ev.ifStatement(s)
	case *ast.BlockStatement:
		return ev.block(s.Body)
	case *ast.WhileStatement:
		return ev.breakable(func() vm.Completion { return ev.whileLoop(s, labels) })
	case *ast.LabeledStatement:
		return ev.labelled(s, labels)
	case *ast.BreakStatement:
		return vm.BreakCompletion(s.Label)
	case *ast.ContinueStatement:
		return vm.ContinueCompletion(s.Label)
	case *ast.TryStatement:
		return ev.tryStatement(s)
	case *ast.EmptyStatement:
		return vm.NormalCompletion(vm.Empty)
	}
	errors.Unreachable("statement", "unknown statement %T", s)
	return vm.Completion{}
}

func (ev *evaluator) variableDeclaration(s *ast.VariableDeclaration) vm.Completion {
	for _, d := range s.Declarations {
		if s.Kind == ast.DeclareVar {
			if d.Init == nil {
				continue
			}
			if c := ev.varDeclarator(d); c.IsAbrupt() {
				return c
			}
			continue
		}
		name, named := boundName(d.Target)
		var v vm.Completion
		switch {
		case d.Init == nil:
			v = vm.NormalCompletion(vm.Undefined)
		case named && isAnonymousFunctionDefinition(d.Init):
			v = ev.namedEvaluation(d.Init, name)
		default:
			v = ev.value(d.Init)
		}
		if v.IsAbrupt() {
			return v
		}
		if c := ev.bindingInitialization(d.Target, v.Value, ev.lexicalEnvironment()); c.IsAbrupt() {
			return c
		}
	}
	return vm.NormalCompletion(vm.Empty)
}

func (ev *evaluator) varDeclarator(d *ast.VariableDeclarator) vm.Completion {
	id, ok := d.Target.(*ast.BindingIdentifier)
	if !ok {
		v := ev.value(d.Init)
		if v.IsAbrupt() {
			return v
		}
		return ev.bindingInitialization(d.Target, v.Value, nil)
	}
	lhs := ev.a.ResolveBinding(id.Name, nil, ev.strict)
	var v vm.Completion
	if isAnonymousFunctionDefinition(d.Init) {
		v = ev.namedEvaluation(d.Init, vm.NewStringKey(id.Name))
	} else {
		v = ev.value(d.Init)
	}
	if v.IsAbrupt() {
		return v
	}
	return vm.PutValue(ev.a, lhs, v.Value)
}

func (ev *evaluator) returnStatement(s *ast.ReturnStatement) vm.Completion {
	if s.Argument == nil {
		return vm.ReturnCompletion(vm.Undefined)
	}
	v := ev.value(s.Argument)
	if v.IsAbrupt() {
		return v
	}
	if _, ok := ev.context().HostDefined.(*asyncGenerator); ok {
		v = ev.await(v.Value)
		if v.IsAbrupt() {
			return v
		}
	}
	return vm.ReturnCompletion(v.Value)
}

func (ev *evaluator) ifStatement(s *ast.IfStatement) vm.Completion {
	test := ev.value(s.Test)
	if test.IsAbrupt() {
		return test
	}
	var c vm.Completion
	switch {
	case vm.ToBoolean(test.Value):
		c = ev.statement(s.Consequent, nil)
	case s.Alternate != nil:
		c = ev.statement(s.Alternate, nil)
	default:
		return vm.NormalCompletion(vm.Undefined)
	}
	return vm.UpdateEmpty(c, vm.Undefined)
}

func (ev *evaluator) block(body []ast.Statement) vm.Completion {
	if len(ast.BlockLexicalDeclarations(body)) == 0 {
		return ev.statementList(body)
	}
	blockEnv := vm.NewDeclarativeEnvironment(ev.lexicalEnvironment())
	ev.blockDeclarationInstantiation(body, blockEnv)
	return ev.withLexicalEnvironment(blockEnv, func() vm.Completion {
		return ev.statementList(body)
	})
}

// breakable turns an unlabelled break out of a loop into a normal
// completion.
func (ev *evaluator) breakable(loop func() vm.Completion) vm.Completion {
	c := loop()
	if c.Type == vm.Break && c.Target == "" {
		if c.Value.IsEmpty() {
			return vm.NormalCompletion(vm.Undefined)
		}
		return vm.NormalCompletion(c.Value)
	}
	return c
}

func (ev *evaluator) whileLoop(s *ast.WhileStatement, labels []string) vm.Completion {
	v := vm.Undefined
	for {
		test := ev.value(s.Test)
		if test.IsAbrupt() {
			return test
		}
		if !vm.ToBoolean(test.Value) {
			return vm.NormalCompletion(v)
		}
		result := ev.statement(s.Body, nil)
		if !loopContinues(result, labels) {
			return vm.UpdateEmpty(result, v)
		}
		if !result.Value.IsEmpty() {
			v = result.Value
		}
	}
}

func loopContinues(c vm.Completion, labels []string) bool {
	switch {
	case c.Type == vm.Normal:
		return true
	case c.Type != vm.Continue:
		return false
	case c.Target == "":
		return true
	}
	return slices.Contains(labels, c.Target)
}

func (ev *evaluator) labelled(s *ast.LabeledStatement, labels []string) vm.Completion {
	labels = append(slices.Clip(labels), s.Label)
	c := ev.statement(s.Body, labels)
	if c.Type == vm.Break && c.Target == s.Label {
		if c.Value.IsEmpty() {
			return vm.NormalCompletion(vm.Undefined)
		}
		return vm.NormalCompletion(c.Value)
	}
	return c
}

func (ev *evaluator) tryStatement(s *ast.TryStatement) vm.Completion {
	c := ev.block(s.Block.Body)
	if c.Type == vm.Throw && s.Handler != nil {
		c = ev.catchClause(s, c.Value)
	}
	if s.Finalizer != nil {
		f := ev.block(s.Finalizer.Body)
		if f.IsAbrupt() {
			c = f
		}
	}
	return vm.UpdateEmpty(c, vm.Undefined)
}

func (ev *evaluator) catchClause(s *ast.TryStatement, thrown vm.Value) vm.Completion {
	if s.Param == nil {
		return ev.block(s.Handler.Body)
	}
	catchEnv := vm.NewDeclarativeEnvironment(ev.lexicalEnvironment())
	for _, name := range s.Param.BoundNames() {
		vm.Must(catchEnv.CreateMutableBinding(ev.a, name, false))
	}
	return ev.withLexicalEnvironment(catchEnv, func() vm.Completion {
		if c := ev.bindingInitialization(s.Param, thrown, catchEnv); c.IsAbrupt() {
			return c
		}
		return ev.block(s.Handler.Body)
	})
}

func (ev *evaluator) classDeclaration(s *ast.ClassDeclaration) vm.Completion {
	c := ev.classDefinitionEvaluation(s.Class, s.Class.Name, vm.NewStringKey(s.Class.Name))
	if c.IsAbrupt() {
		return c
	}
	if init := ev.lexicalEnvironment().InitializeBinding(ev.a, s.Class.Name, c.Value); init.IsAbrupt() {
		return init
	}
	return vm.NormalCompletion(vm.Empty)
}
