package interp_test

import (
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/j-f1/forked-engine262/pkg/fixture"
	"github.com/j-f1/forked-engine262/pkg/interp"
	"github.com/j-f1/forked-engine262/pkg/vm"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// harness is an agent with the interpreter installed and one realm.
type harness struct {
	t     *testing.T
	agent *vm.Agent
	realm *vm.Realm
	in    *interp.Interpreter
	hook  *logtest.Hook
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	a := vm.NewAgent(vm.Options{Logger: logger})
	in := interp.Install(a)
	h := &harness{t: t, agent: a, realm: vm.NewRealm(a), in: in, hook: hook}
	t.Cleanup(a.Close)
	return h
}

// run decodes and evaluates a sloppy script. The stack must be empty
// afterwards however the script ends.
func (h *harness) run(text string) vm.Completion {
	h.t.Helper()
	return h.runScript(text, false)
}

func (h *harness) runScript(text string, strict bool) vm.Completion {
	h.t.Helper()
	script, err := fixture.ParseScript(text, strict)
	require.NoError(h.t, err)
	c := h.in.EvaluateScript(h.realm, script, nil)
	require.Zero(h.t, h.agent.StackDepth(), "execution context stack is unbalanced")
	return c
}

// eval runs text, drains the job queue and renders the completion value.
func (h *harness) eval(text string) string {
	h.t.Helper()
	c := h.run(text)
	require.Equal(h.t, vm.Normal, c.Type, "script threw %s", vm.Inspect(c.Value))
	h.agent.RunJobs()
	return vm.Inspect(c.Value)
}

// throws runs text and renders the uncaught exception.
func (h *harness) throws(text string) string {
	h.t.Helper()
	c := h.run(text)
	require.Equal(h.t, vm.Throw, c.Type, "script completed with %s", vm.Inspect(c.Value))
	return vm.Inspect(c.Value)
}

func (h *harness) global(name string) string {
	h.t.Helper()
	return vm.Inspect(vm.Must(vm.Get(h.agent, h.realm.GlobalObject, vm.NewStringKey(name))))
}

func TestEvaluateScript(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"empty script", "[]", "undefined"},
		{"last value", "[1, 2]", "2"},
		{"closure", `
- {type: Function, name: add, params: [a, b], body: [{type: Return, value: {type: Binary, op: "+", left: a, right: b}}]}
- {type: Call, callee: add, args: [1, 2]}
`, "3"},
		{"string concatenation", `[{type: Binary, op: "+", left: "a", right: 1}]`, `"a1"`},
		{"hoisted function", `
- {type: Call, callee: f}
- {type: Function, name: f, body: [{type: Return, value: 7}]}
`, "7"},
		{"typeof undeclared", `[{type: Unary, op: typeof, arg: nope}]`, `"undefined"`},
		{"compound assignment", `
- {type: Var, name: x, init: 2}
- {type: Assign, op: "**=", target: x, value: 10}
`, "1024"},
		{"logical assignment", `
- {type: Var, name: x, init: null}
- {type: Assign, op: "??=", target: x, value: 5}
- {type: Assign, op: "&&=", target: x, value: 6}
`, "6"},
		{"conditional", `[{type: Conditional, test: {type: Binary, op: "<", left: "a", right: "b"}, then: 1, else: 2}]`, "1"},
		{"labelled continue", `
- {type: Var, name: i, init: 0}
- {type: Var, name: n, init: 0}
- type: Labeled
  label: outer
  body:
    type: While
    test: {type: Binary, op: "<", left: i, right: 5}
    body:
      - {type: Assign, op: "+=", target: i, value: 1}
      - {type: If, test: {type: Binary, op: "===", left: {type: Binary, op: "%", left: i, right: 2}, right: 0}, then: {type: Continue, label: outer}}
      - {type: Assign, op: "+=", target: n, value: i}
- n
`, "9"},
		{"finally overrides", `
- type: Function
  name: f
  body:
    - type: Try
      block: [{type: Return, value: 1}]
      finally: [{type: Return, value: 2}]
- {type: Call, callee: f}
`, "2"},
		{"catch binding", `
- type: Try
  block: [{type: Throw, value: {type: Object, properties: [{key: code, value: 42}]}}]
  param: {properties: [code]}
  catch: [code]
`, "42"},
		{"object literal accessors", `
- type: Var
  name: o
  init:
    type: Object
    properties:
      - {key: v, value: 1}
      - {key: double, kind: get, body: [{type: Return, value: {type: Binary, op: "*", left: {type: Member, object: this, property: v}, right: 2}}]}
- {type: Member, object: o, property: double}
`, "2"},
		{"in operator", `[{type: Binary, op: in, left: "a", right: {type: Object, properties: [{key: a, value: 1}]}}]`, "true"},
		{"delete", `
- {type: Var, name: o, init: {type: Object, properties: [{key: a, value: 1}]}}
- {type: Unary, op: delete, arg: {type: Member, object: o, property: a}}
- {type: Binary, op: in, left: "a", right: o}
`, "false"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			assert.Equal(t, tt.want, h.eval(tt.script))
		})
	}
}

func TestScriptErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"unresolvable reference", "[nope]", "ReferenceError: nope is not defined"},
		{"call non-callable", `
- {type: Var, name: o, init: {type: Object}}
- {type: Call, callee: {type: Member, object: o, property: m}}
`, "TypeError: o.m is not a function"},
		{"member of undefined", `[{type: Member, object: undefined, property: x}]`, "TypeError: Cannot convert undefined to object"},
		{"temporal dead zone", `
- {type: Call, callee: {type: Arrow, expression: x}}
- {type: Let, name: x, init: 1}
`, "ReferenceError: Cannot access 'x' before initialization"},
		{"const assignment", `
- {type: Const, name: x, init: 1}
- {type: Assign, target: x, value: 2}
`, "TypeError: Assignment to constant variable 'x'"},
		{"throw primitive", `[{type: Throw, value: "oops"}]`, `"oops"`},
		{"new non-constructor", `[{type: New, callee: {type: Arrow, expression: 1}}]`, "TypeError"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			got := h.throws(tt.script)
			assert.True(t, strings.HasPrefix(got, tt.want), "got %s", got)
		})
	}
}

func TestGlobalDeclarationConflicts(t *testing.T) {
	h := newHarness(t)
	h.eval(`[{type: Let, name: x, init: 1}]`)
	assert.Equal(t, "SyntaxError: Identifier 'x' has already been declared", h.throws(`[{type: Var, name: x}]`))
	assert.Equal(t, "SyntaxError: Identifier 'x' has already been declared", h.throws(`[{type: Let, name: x}]`))

	h.eval(`[{type: Var, name: y, init: 1}]`)
	assert.Equal(t, "SyntaxError: Identifier 'y' has already been declared", h.throws(`[{type: Let, name: y}]`))

	// undefined is a non-configurable global property.
	assert.Equal(t, "TypeError: Cannot declare global binding 'undefined'", h.throws(`[{type: Function, name: undefined}]`))

	// A failed script declares nothing.
	h.throws(`
- {type: Var, name: fresh}
- {type: Let, name: x}
`)
	assert.Equal(t, `"undefined"`, h.eval(`[{type: Unary, op: typeof, arg: fresh}]`))
}

func TestArgumentsObjects(t *testing.T) {
	tests := []struct {
		name   string
		strict bool
		script string
		want   string
	}{
		{"mapped write aliases parameter", false, `
- type: Function
  name: f
  params: [a]
  body:
    - {type: Assign, target: {type: Member, object: arguments, computed: 0}, value: 2}
    - {type: Return, value: a}
- {type: Call, callee: f, args: [1]}
`, "2"},
		{"mapped parameter write shows through", false, `
- type: Function
  name: f
  params: [a]
  body:
    - {type: Assign, target: a, value: 3}
    - {type: Return, value: {type: Member, object: arguments, computed: 0}}
- {type: Call, callee: f, args: [1]}
`, "3"},
		{"unmapped in strict code", true, `
- type: Function
  name: f
  params: [a]
  body:
    - {type: Assign, target: {type: Member, object: arguments, computed: 0}, value: 2}
    - {type: Return, value: a}
- {type: Call, callee: f, args: [1]}
`, "1"},
		{"unmapped with defaults", false, `
- type: Function
  name: f
  params: [{name: a, default: 0}]
  body:
    - {type: Assign, target: a, value: 5}
    - {type: Return, value: {type: Member, object: arguments, computed: 0}}
- {type: Call, callee: f, args: [1]}
`, "1"},
		{"duplicate parameters map the last", false, `
- type: Function
  name: f
  params: [a, a]
  body:
    - {type: Assign, target: {type: Member, object: arguments, computed: 1}, value: 9}
    - {type: Return, value: a}
- {type: Call, callee: f, args: [1, 2]}
`, "9"},
		{"extra arguments are not mapped", false, `
- type: Function
  name: f
  params: [a]
  body: [{type: Return, value: {type: Member, object: arguments, property: length}}]
- {type: Call, callee: f, args: [1, 2, 3]}
`, "3"},
		{"callee", false, `
- type: Function
  name: f
  body: [{type: Return, value: {type: Binary, op: "===", left: {type: Member, object: arguments, property: callee}, right: f}}]
- {type: Call, callee: f}
`, "true"},
		{"strict callee throws", true, `
- type: Function
  name: f
  body:
    - type: Try
      block: [{type: Member, object: arguments, property: callee}]
      param: e
      catch: [{type: Return, value: {type: Member, object: e, property: name}}]
- {type: Call, callee: f}
`, `"TypeError"`},
		{"arrow has no own arguments", false, `
- type: Function
  name: f
  body: [{type: Return, value: {type: Call, callee: {type: Arrow, expression: {type: Member, object: arguments, computed: 0}}}}]
- {type: Call, callee: f, args: ["outer"]}
`, `"outer"`},
		{"rest parameter", false, `
- type: Function
  name: f
  params: [a, {rest: rest}]
  body: [{type: Return, value: {type: Member, object: rest, property: length}}]
- {type: Call, callee: f, args: [1, 2, 3]}
`, "2"},
		{"spread arguments", false, `
- type: Function
  name: f
  params: [a, b, c]
  body: [{type: Return, value: {type: Binary, op: "+", left: a, right: {type: Binary, op: "+", left: b, right: c}}}]
- type: Function
  name: g
  body: [{type: Return, value: {type: Call, callee: f, args: [{type: Spread, arg: arguments}]}}]
- {type: Call, callee: g, args: [1, 2, 3]}
`, "6"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			c := h.runScript(tt.script, tt.strict)
			require.Equal(t, vm.Normal, c.Type, vm.Inspect(c.Value))
			assert.Equal(t, tt.want, vm.Inspect(c.Value))
		})
	}
}

func TestFunctionObjects(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "1", h.eval(`
- {type: Function, name: f, params: [a, {name: b, default: 1}, c]}
- {type: Member, object: f, property: length}
`))
	assert.Equal(t, `"f"`, h.eval(`[{type: Member, object: f, property: name}]`))
	assert.Equal(t, `"g"`, h.eval(`
- {type: Var, name: g, init: {type: Arrow, expression: 1}}
- {type: Member, object: g, property: name}
`))
	assert.Equal(t, "true", h.eval(`
- {type: Binary, op: "===", left: {type: Member, object: {type: Member, object: f, property: prototype}, property: constructor}, right: f}
`))

	// Named function expressions can see their own name, read-only.
	assert.Equal(t, "true", h.eval(`
- type: Var
  name: h
  init:
    type: Function
    name: inner
    body:
      - {type: Assign, target: inner, value: 1}
      - {type: Return, value: {type: Binary, op: "===", left: {type: Unary, op: typeof, arg: inner}, right: "function"}}
- {type: Call, callee: h}
`))
}

func TestThisAndNewTarget(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "true", h.eval(`
- type: Function
  name: sloppy
  body: [{type: Return, value: this}]
- {type: Binary, op: "===", left: {type: Call, callee: sloppy}, right: globalThis}
`))
	assert.Equal(t, "undefined", h.eval(`
- type: Function
  name: strict
  strict: true
  body: [{type: Return, value: this}]
- {type: Call, callee: strict}
`))
	assert.Equal(t, "true", h.eval(`
- type: Function
  name: F
  body: [{type: Assign, target: {type: Member, object: this, property: target}, value: {type: NewTarget}}]
- {type: Binary, op: "===", left: {type: Member, object: {type: New, callee: F}, property: target}, right: F}
`))
	assert.Equal(t, "undefined", h.eval(`
- type: Function
  name: G
  body: [{type: Return, value: {type: NewTarget}}]
- {type: Call, callee: G}
`))
	assert.Equal(t, `"o"`, h.eval(`
- type: Var
  name: o
  init:
    type: Object
    properties:
      - {key: name, value: "o"}
      - {key: m, kind: method, body: [{type: Return, value: {type: Call, callee: {type: Arrow, expression: {type: Member, object: this, property: name}}}}]}
- {type: Call, callee: {type: Member, object: o, property: m}}
`))
}

func TestClasses(t *testing.T) {
	h := newHarness(t)
	h.eval(`
- type: Class
  name: A
  constructor:
    params: [x]
    body: [{type: Assign, target: {type: Member, object: this, property: x}, value: x}]
  methods:
    - {key: value, body: [{type: Return, value: {type: Member, object: this, property: x}}]}
    - {key: kind, static: true, body: [{type: Return, value: "A"}]}
- type: Class
  name: B
  extends: A
  constructor:
    params: [x]
    body: [{type: Super, args: [{type: Binary, op: "*", left: x, right: 2}]}]
  methods:
    - {key: value, body: [{type: Return, value: {type: Binary, op: "+", left: {type: Call, callee: {type: SuperMember, property: value}}, right: 1}}]}
- {type: Class, name: C, extends: A}
`)
	assert.Equal(t, "5", h.eval(`[{type: Call, callee: {type: Member, object: {type: New, callee: B, args: [2]}, property: value}}]`))
	assert.Equal(t, "3", h.eval(`[{type: Call, callee: {type: Member, object: {type: New, callee: C, args: [3]}, property: value}}]`))
	assert.Equal(t, `"A"`, h.eval(`[{type: Call, callee: {type: Member, object: B, property: kind}}]`))
	assert.Equal(t, "true", h.eval(`[{type: Binary, op: instanceof, left: {type: New, callee: B, args: [1]}, right: A}]`))
	assert.Equal(t, "[class B]", h.eval(`[B]`))

	assert.Equal(t, "TypeError: Class constructor A cannot be invoked without 'new'", h.throws(`[{type: Call, callee: A, args: [1]}]`))

	h.eval(`
- type: Class
  name: NoSuper
  extends: A
  constructor: {body: []}
- type: Class
  name: Twice
  extends: A
  constructor: {body: [{type: Super}, {type: Super}]}
`)
	assert.True(t, strings.HasPrefix(h.throws(`[{type: New, callee: NoSuper}]`), "ReferenceError: Must call super constructor"))
	assert.Equal(t, "ReferenceError: Super constructor may only be called once", h.throws(`[{type: New, callee: Twice}]`))
	assert.Equal(t, "TypeError: Class extends value 1 is not a constructor or null", h.throws(`[{type: Class, name: D, extends: 1}]`))

	// Methods are not enumerable.
	assert.Equal(t, "{ x: 1 }", h.eval(`[{type: New, callee: A, args: [1]}]`))
}

func TestSuperProperty(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, `"base derived"`, h.eval(`
- type: Var
  name: base
  init:
    type: Object
    properties:
      - {key: greet, kind: method, body: [{type: Return, value: "base"}]}
- type: Var
  name: derived
  init:
    type: Object
    properties:
      - {key: __proto__, value: base}
      - key: greet
        kind: method
        body: [{type: Return, value: {type: Binary, op: "+", left: {type: Call, callee: {type: SuperMember, property: greet}}, right: " derived"}}]
- {type: Call, callee: {type: Member, object: derived, property: greet}}
`))
	assert.Equal(t, "SyntaxError: 'super' keyword unexpected here", h.throws(`
- {type: Function, name: f, body: [{type: Return, value: {type: SuperMember, property: x}}]}
- {type: Call, callee: f}
`))
}

func TestCallDepthLimit(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	a := vm.NewAgent(vm.Options{Logger: logger, MaxCallDepth: 50})
	in := interp.Install(a)
	realm := vm.NewRealm(a)
	t.Cleanup(a.Close)

	script, err := fixture.ParseScript(`
- {type: Function, name: f, body: [{type: Return, value: {type: Call, callee: f}}]}
- {type: Call, callee: f}
`, false)
	require.NoError(t, err)
	c := in.EvaluateScript(realm, script, nil)
	require.Equal(t, vm.Throw, c.Type)
	assert.Equal(t, "RangeError: Maximum call stack size exceeded", vm.Inspect(c.Value))
	assert.Zero(t, a.StackDepth())
}
