// Package interp evaluates function bodies and scripts on top of the engine
// core in pkg/vm. It registers one evaluator per body shape on an agent, so
// the invocation engine in pkg/vm stays unaware of how bodies run.
//
// Generator and async bodies run as pull coroutines (iter.Pull). A body
// suspends at yield or await and is resumed by a generator method or a
// promise job.
package interp

import (
	"github.com/sirupsen/logrus"

	"github.com/j-f1/forked-engine262/pkg/ast"
	"github.com/j-f1/forked-engine262/pkg/source"
	"github.com/j-f1/forked-engine262/pkg/vm"
)

// Interpreter is the body evaluator installed on one agent.
type Interpreter struct {
	agent  *vm.Agent
	logger logrus.FieldLogger

	live      map[*coroutine]struct{}
	unhandled []*vm.Object // rejected promises without handlers
}

// Install registers evaluators for every body shape on a and returns the
// interpreter. Realms created after Install carry the generator, async
// generator and promise methods.
func Install(a *vm.Agent) *Interpreter {
	in := &Interpreter{
		agent:  a,
		logger: a.Logger().WithField("component", "interp"),
		live:   make(map[*coroutine]struct{}),
	}
	a.RegisterBodyEvaluator(ast.ShapeFunction, in.evaluateFunctionBody)
	a.RegisterBodyEvaluator(ast.ShapeExpression, in.evaluateConciseBody)
	a.RegisterBodyEvaluator(ast.ShapeGenerator, in.evaluateGeneratorBody)
	a.RegisterBodyEvaluator(ast.ShapeAsyncFunction, in.evaluateAsyncFunctionBody)
	a.RegisterBodyEvaluator(ast.ShapeAsyncExpression, in.evaluateAsyncConciseBody)
	a.RegisterBodyEvaluator(ast.ShapeAsyncGenerator, in.evaluateAsyncGeneratorBody)
	a.OnRealmCreated(in.installRealm)
	a.OnClose(in.close)
	return in
}

func (in *Interpreter) installRealm(r *vm.Realm) {
	in.installPromise(r)
	in.installGeneratorPrototype(r)
	in.installAsyncGeneratorPrototype(r)
}

// close abandons every suspended coroutine so none outlives the agent.
func (in *Interpreter) close() {
	if len(in.live) > 0 {
		in.logger.WithField("coroutines", len(in.live)).Debug("closing suspended coroutines")
	}
	for co := range in.live {
		co.close()
	}
}

// Suspended reports how many generator or async bodies are parked at a yield
// or await.
func (in *Interpreter) Suspended() int { return len(in.live) }

// EvaluateScript runs script as a top-level script of realm. The returned
// completion is Normal or Throw.
func (in *Interpreter) EvaluateScript(realm *vm.Realm, script *ast.Script, src *source.SourceFile) vm.Completion {
	a := in.agent
	som := &vm.ScriptOrModule{Realm: realm, Source: src}
	ctx := vm.NewScriptContext(realm, som)
	return a.RunInContext(ctx, func() vm.Completion {
		ev := in.evaluator(a, script.Strict)
		if c := ev.globalDeclarationInstantiation(script.Body, realm.GlobalEnv); c.IsAbrupt() {
			return c
		}
		result := ev.statementList(script.Body)
		if result.Type == vm.Normal && result.Value.IsEmpty() {
			return vm.NormalCompletion(vm.Undefined)
		}
		return result
	})
}

// UnhandledRejections returns and clears the promises rejected without a
// handler since the last call.
func (in *Interpreter) UnhandledRejections() []vm.Value {
	var out []vm.Value
	for _, p := range in.unhandled {
		if state, ok := p.HostData().(*promiseState); ok && !state.handled {
			out = append(out, p.Slot(slotPromiseResult))
		}
	}
	in.unhandled = nil
	return out
}

// --- Body evaluators ---

func (in *Interpreter) evaluateFunctionBody(a *vm.Agent, body *ast.FunctionNode, F *vm.Object, args []vm.Value) vm.Completion {
	ev := in.evaluator(a, body.Strict)
	if c := ev.functionDeclarationInstantiation(F, args); c.IsAbrupt() {
		return c
	}
	return ev.statementList(body.Body)
}

func (in *Interpreter) evaluateConciseBody(a *vm.Agent, body *ast.FunctionNode, F *vm.Object, args []vm.Value) vm.Completion {
	ev := in.evaluator(a, body.Strict)
	if c := ev.functionDeclarationInstantiation(F, args); c.IsAbrupt() {
		return c
	}
	v := ev.value(body.Expression)
	if v.IsAbrupt() {
		return v
	}
	return vm.ReturnCompletion(v.Value)
}
