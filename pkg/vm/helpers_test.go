package vm

import (
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/j-f1/forked-engine262/pkg/ast"
	"github.com/j-f1/forked-engine262/pkg/errors"
)

// bodyFunc stands in for a function body in engine tests.
type bodyFunc func(a *Agent, F *Object, args []Value) Completion

// testEngine is an agent with one realm and a script context on the stack.
// Function bodies are Go closures looked up by their syntax node.
type testEngine struct {
	t      *testing.T
	agent  *Agent
	realm  *Realm
	hook   *logtest.Hook
	bodies map[*ast.FunctionNode]bodyFunc
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	a := NewAgent(Options{Logger: logger})
	e := &testEngine{
		t:      t,
		agent:  a,
		hook:   hook,
		bodies: make(map[*ast.FunctionNode]bodyFunc),
	}
	for _, shape := range []ast.BodyShape{
		ast.ShapeFunction, ast.ShapeExpression, ast.ShapeGenerator,
		ast.ShapeAsyncFunction, ast.ShapeAsyncExpression, ast.ShapeAsyncGenerator,
	} {
		a.RegisterBodyEvaluator(shape, e.evaluate)
	}
	e.realm = NewRealm(a)
	ctx := NewScriptContext(e.realm, &ScriptOrModule{Realm: e.realm})
	a.PushContext(ctx)
	t.Cleanup(func() {
		a.PopContext(ctx)
		a.Close()
	})
	return e
}

func (e *testEngine) evaluate(a *Agent, body *ast.FunctionNode, F *Object, args []Value) Completion {
	fn, ok := e.bodies[body]
	require.True(e.t, ok, "no body registered for %p", body)
	return fn(a, F, args)
}

// function creates a sloppy or strict ECMAScript function closing over the
// global environment.
func (e *testEngine) function(params *ast.FormalParameters, strict bool, fn bodyFunc) *Object {
	return e.functionOfKind(params, ast.FunctionBody, strict, false, fn)
}

func (e *testEngine) functionOfKind(params *ast.FormalParameters, kind ast.BodyKind, strict, lexicalThis bool, fn bodyFunc) *Object {
	body := &ast.FunctionNode{Params: params, Kind: kind, Strict: strict, Arrow: lexicalThis}
	if fn != nil {
		e.bodies[body] = fn
	}
	proto := e.realm.Intrinsic(IntrinsicFunctionPrototype)
	return OrdinaryFunctionCreate(e.agent, proto, params, body, lexicalThis, e.realm.GlobalEnv)
}

func (e *testEngine) object() *Object {
	return ObjectCreate(e.realm.Intrinsic(IntrinsicObjectPrototype))
}

// throwMessage asserts c throws an error of the given constructor name and
// returns its message.
func (e *testEngine) throwMessage(c Completion, name string) string {
	e.t.Helper()
	require.Equal(e.t, Throw, c.Type, "expected a throw, got %s %s", c.Type, Inspect(c.Value))
	require.True(e.t, c.Value.IsObject())
	err := c.Value.AsObject()
	require.True(e.t, err.HasSlot("ErrorData"), "thrown value %s is not an error", Inspect(c.Value))
	n, _ := lookupDataProperty(err, NewStringKey("name"))
	require.Equal(e.t, name, n.AsString())
	msg, _ := lookupDataProperty(err, NewStringKey("message"))
	return msg.AsString()
}

func simpleParams(names ...string) *ast.FormalParameters {
	params := &ast.FormalParameters{}
	for _, n := range names {
		params.Params = append(params.Params, &ast.Parameter{Target: &ast.BindingIdentifier{Name: n}})
	}
	return params
}

func returning(v Value) bodyFunc {
	return func(*Agent, *Object, []Value) Completion { return ReturnCompletion(v) }
}

// requireAssertion asserts fn panics with an engine assertion raised by op.
func requireAssertion(t *testing.T, op string, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		require.NotNil(t, r, "expected %s to fail an assertion", op)
		ae, ok := errors.AsAssertion(r)
		require.True(t, ok, "panic %v is not an assertion", r)
		require.Equal(t, op, ae.Op)
	}()
	fn()
}

func key(s string) PropertyKey { return NewStringKey(s) }
