package interp

import (
	"slices"

	"github.com/j-f1/forked-engine262/pkg/ast"
	"github.com/j-f1/forked-engine262/pkg/errors"
	"github.com/j-f1/forked-engine262/pkg/vm"
)

// functionDeclarationInstantiation binds parameters, the arguments object,
// hoisted vars and function declarations for a call to F. It runs in the
// callee context pushed by the invocation engine.
func (ev *evaluator) functionDeclarationInstantiation(F *vm.Object, args []vm.Value) vm.Completion {
	a := ev.a
	calleeContext := ev.context()
	fd := F.Function()
	code := fd.ECMAScriptCode
	strict := fd.Strict
	formals := fd.FormalParameters

	parameterNames := formals.BoundNames()
	hasDuplicates := formals.HasDuplicates()
	simpleParameterList := formals.IsSimpleParameterList()
	hasParameterExpressions := formals.ContainsExpression()

	var varNames []string
	var functionNames []string
	var functionsToInitialize []*ast.FunctionDeclaration
	var lexicalNames []string
	if !code.IsExpressionBody() {
		varNames = ast.TopLevelVarDeclaredNames(code.Body)
		lexicalNames = ast.LexicallyDeclaredNames(code.Body)
		decls := ast.TopLevelFunctionDeclarations(code.Body)
		for i := len(decls) - 1; i >= 0; i-- {
			name := decls[i].Function.Name
			if !slices.Contains(functionNames, name) {
				functionNames = append(functionNames, name)
				functionsToInitialize = slices.Insert(functionsToInitialize, 0, decls[i])
			}
		}
	}

	argumentsObjectNeeded := true
	switch {
	case fd.ThisMode == vm.ThisModeLexical:
		argumentsObjectNeeded = false
	case slices.Contains(parameterNames, "arguments"):
		argumentsObjectNeeded = false
	case !hasParameterExpressions && (slices.Contains(functionNames, "arguments") || slices.Contains(lexicalNames, "arguments")):
		argumentsObjectNeeded = false
	}

	var env vm.Environment
	if strict || !hasParameterExpressions {
		env = calleeContext.LexicalEnvironment
	} else {
		env = vm.NewDeclarativeEnvironment(calleeContext.LexicalEnvironment)
		calleeContext.LexicalEnvironment = env
	}

	for _, name := range parameterNames {
		if env.HasBinding(a, name) {
			continue
		}
		vm.Must(env.CreateMutableBinding(a, name, false))
		if hasDuplicates {
			vm.Must(env.InitializeBinding(a, name, vm.Undefined))
		}
	}

	parameterBindings := parameterNames
	if argumentsObjectNeeded {
		var ao *vm.Object
		if strict || !simpleParameterList {
			ao = vm.CreateUnmappedArgumentsObject(a, args)
		} else {
			ao = vm.CreateMappedArgumentsObject(a, F, formals, args, env)
		}
		if strict {
			vm.Must(env.CreateImmutableBinding(a, "arguments", false))
		} else {
			vm.Must(env.CreateMutableBinding(a, "arguments", false))
		}
		vm.Must(env.InitializeBinding(a, "arguments", vm.ObjectValue(ao)))
		parameterBindings = append(slices.Clip(parameterNames), "arguments")
	}

	bindingEnv := env
	if hasDuplicates {
		bindingEnv = nil
	}
	if c := ev.parameterBindingInitialization(formals, args, bindingEnv); c.IsAbrupt() {
		return c
	}

	var varEnv vm.Environment
	if !hasParameterExpressions {
		instantiated := slices.Clone(parameterBindings)
		for _, n := range varNames {
			if slices.Contains(instantiated, n) {
				continue
			}
			instantiated = append(instantiated, n)
			vm.Must(env.CreateMutableBinding(a, n, false))
			vm.Must(env.InitializeBinding(a, n, vm.Undefined))
		}
		varEnv = env
	} else {
		varEnv = vm.NewDeclarativeEnvironment(env)
		calleeContext.VariableEnvironment = varEnv
		var instantiated []string
		for _, n := range varNames {
			if slices.Contains(instantiated, n) {
				continue
			}
			instantiated = append(instantiated, n)
			vm.Must(varEnv.CreateMutableBinding(a, n, false))
			initial := vm.Undefined
			if slices.Contains(parameterBindings, n) && !slices.Contains(functionNames, n) {
				initial = vm.Must(env.GetBindingValue(a, n, false))
			}
			vm.Must(varEnv.InitializeBinding(a, n, initial))
		}
	}

	lexEnv := varEnv
	if !strict {
		lexEnv = vm.NewDeclarativeEnvironment(varEnv)
	}
	calleeContext.LexicalEnvironment = lexEnv

	if !code.IsExpressionBody() {
		for _, d := range ast.TopLevelLexicalDeclarations(code.Body) {
			for _, dn := range ast.DeclarationBoundNames(d) {
				if ast.IsConstantDeclaration(d) {
					vm.Must(lexEnv.CreateImmutableBinding(a, dn, true))
				} else {
					vm.Must(lexEnv.CreateMutableBinding(a, dn, false))
				}
			}
		}
	}

	for _, f := range functionsToInitialize {
		fo := ev.instantiateFunctionObject(f.Function, lexEnv)
		vm.Must(varEnv.SetMutableBinding(a, f.Function.Name, vm.ObjectValue(fo), false))
	}
	return vm.NormalCompletion(vm.Empty)
}

// parameterBindingInitialization binds each formal to its argument. A nil
// env assigns through references, which sloppy functions with duplicate
// parameter names need so the last duplicate wins.
func (ev *evaluator) parameterBindingInitialization(formals *ast.FormalParameters, args []vm.Value, env vm.Environment) vm.Completion {
	if formals == nil {
		return vm.NormalCompletion(vm.Empty)
	}
	next := 0
	for _, p := range formals.Params {
		if p.Rest {
			var rest []vm.Value
			if next < len(args) {
				rest = args[next:]
			}
			next = len(args)
			restObj := vm.CreateArrayLikeObject(ev.a, slices.Clone(rest))
			if c := ev.bindingInitialization(p.Target, vm.ObjectValue(restObj), env); c.IsAbrupt() {
				return c
			}
			continue
		}
		v := vm.Undefined
		if next < len(args) {
			v = args[next]
		}
		next++
		if v.IsUndefined() && p.Default != nil {
			c := ev.initializer(p.Default, p.Target)
			if c.IsAbrupt() {
				return c
			}
			v = c.Value
		}
		if c := ev.bindingInitialization(p.Target, v, env); c.IsAbrupt() {
			return c
		}
	}
	return vm.NormalCompletion(vm.Empty)
}

// initializer evaluates a default value, naming anonymous functions after
// the identifier they initialize.
func (ev *evaluator) initializer(expr ast.Expression, target ast.Pattern) vm.Completion {
	if name, ok := boundName(target); ok && isAnonymousFunctionDefinition(expr) {
		return ev.namedEvaluation(expr, name)
	}
	return ev.value(expr)
}

// bindingInitialization binds pattern to v. With a nil env the names are
// assigned through ResolveBinding and PutValue.
func (ev *evaluator) bindingInitialization(pattern ast.Pattern, v vm.Value, env vm.Environment) vm.Completion {
	switch p := pattern.(type) {
	case *ast.BindingIdentifier:
		return ev.initializeBoundName(p.Name, v, env)
	case *ast.ObjectPattern:
		if c := vm.ToObject(ev.a, v); c.IsAbrupt() {
			return c
		}
		for _, prop := range p.Properties {
			got := vm.GetV(ev.a, v, vm.NewStringKey(prop.Key))
			if got.IsAbrupt() {
				return got
			}
			value := got.Value
			if value.IsUndefined() && prop.Default != nil {
				c := ev.initializer(prop.Default, prop.Target)
				if c.IsAbrupt() {
					return c
				}
				value = c.Value
			}
			if c := ev.bindingInitialization(prop.Target, value, env); c.IsAbrupt() {
				return c
			}
		}
		return vm.NormalCompletion(vm.Empty)
	}
	errors.Unreachable("bindingInitialization", "unknown pattern %T", pattern)
	return vm.Completion{}
}

func (ev *evaluator) initializeBoundName(name string, v vm.Value, env vm.Environment) vm.Completion {
	if env != nil {
		return env.InitializeBinding(ev.a, name, v)
	}
	lhs := ev.a.ResolveBinding(name, nil, ev.strict)
	return vm.PutValue(ev.a, lhs, v)
}

// globalDeclarationInstantiation checks a script's declarations against the
// global environment and creates its bindings.
func (ev *evaluator) globalDeclarationInstantiation(body []ast.Statement, env *vm.GlobalEnvironment) vm.Completion {
	a := ev.a
	lexNames := ast.LexicallyDeclaredNames(body)
	varNames := ast.TopLevelVarDeclaredNames(body)
	for _, name := range lexNames {
		if env.HasVarDeclaration(name) || env.HasLexicalDeclaration(a, name) || env.HasRestrictedGlobalProperty(a, name) {
			return a.Throw(vm.ErrorKindSyntaxError, vm.MsgAlreadyDeclared, name)
		}
	}
	for _, name := range varNames {
		if env.HasLexicalDeclaration(a, name) {
			return a.Throw(vm.ErrorKindSyntaxError, vm.MsgAlreadyDeclared, name)
		}
	}

	var declaredFunctionNames []string
	var functionsToInitialize []*ast.FunctionDeclaration
	decls := ast.TopLevelFunctionDeclarations(body)
	for i := len(decls) - 1; i >= 0; i-- {
		name := decls[i].Function.Name
		if slices.Contains(declaredFunctionNames, name) {
			continue
		}
		if !env.CanDeclareGlobalFunction(a, name) {
			return a.Throw(vm.ErrorKindTypeError, vm.MsgCannotDeclareGlobal, name)
		}
		declaredFunctionNames = append(declaredFunctionNames, name)
		functionsToInitialize = slices.Insert(functionsToInitialize, 0, decls[i])
	}

	var declaredVarNames []string
	for _, name := range ast.VarDeclaredNames(body) {
		if slices.Contains(declaredFunctionNames, name) || slices.Contains(declaredVarNames, name) {
			continue
		}
		if !env.CanDeclareGlobalVar(a, name) {
			return a.Throw(vm.ErrorKindTypeError, vm.MsgCannotDeclareGlobal, name)
		}
		declaredVarNames = append(declaredVarNames, name)
	}

	for _, d := range ast.TopLevelLexicalDeclarations(body) {
		for _, dn := range ast.DeclarationBoundNames(d) {
			var c vm.Completion
			if ast.IsConstantDeclaration(d) {
				c = env.CreateImmutableBinding(a, dn, true)
			} else {
				c = env.CreateMutableBinding(a, dn, false)
			}
			if c.IsAbrupt() {
				return c
			}
		}
	}
	for _, f := range functionsToInitialize {
		fo := ev.instantiateFunctionObject(f.Function, env)
		if c := env.CreateGlobalFunctionBinding(a, f.Function.Name, vm.ObjectValue(fo), false); c.IsAbrupt() {
			return c
		}
	}
	for _, name := range declaredVarNames {
		if c := env.CreateGlobalVarBinding(a, name, false); c.IsAbrupt() {
			return c
		}
	}
	return vm.NormalCompletion(vm.Empty)
}

// blockDeclarationInstantiation creates the lexical bindings of a block and
// initializes its function declarations.
func (ev *evaluator) blockDeclarationInstantiation(body []ast.Statement, env *vm.DeclarativeEnvironment) {
	a := ev.a
	var initialized []string
	for _, d := range ast.BlockLexicalDeclarations(body) {
		for _, dn := range ast.DeclarationBoundNames(d) {
			if env.HasBinding(a, dn) {
				continue
			}
			if ast.IsConstantDeclaration(d) {
				vm.Must(env.CreateImmutableBinding(a, dn, true))
			} else {
				vm.Must(env.CreateMutableBinding(a, dn, false))
			}
		}
		fd, ok := d.(*ast.FunctionDeclaration)
		if !ok {
			continue
		}
		fo := vm.ObjectValue(ev.instantiateFunctionObject(fd.Function, env))
		if slices.Contains(initialized, fd.Function.Name) {
			vm.Must(env.SetMutableBinding(a, fd.Function.Name, fo, false))
			continue
		}
		vm.Must(env.InitializeBinding(a, fd.Function.Name, fo))
		initialized = append(initialized, fd.Function.Name)
	}
}

// boundName returns the property key for a single-identifier pattern.
func boundName(p ast.Pattern) (vm.PropertyKey, bool) {
	if id, ok := p.(*ast.BindingIdentifier); ok {
		return vm.NewStringKey(id.Name), true
	}
	return vm.PropertyKey{}, false
}
