package interp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-f1/forked-engine262/pkg/vm"
)

const countingGenerator = `
- type: Function
  name: g
  generator: true
  body:
    - {type: Yield, arg: 1}
    - {type: Var, name: sent, init: {type: Yield, arg: 2}}
    - {type: Return, value: sent}
- {type: Var, name: it, init: {type: Call, callee: g}}
`

func next(arg string) string {
	if arg == "" {
		return `[{type: Call, callee: {type: Member, object: it, property: next}}]`
	}
	return `[{type: Call, callee: {type: Member, object: it, property: next}, args: [` + arg + `]}]`
}

func TestGeneratorProtocol(t *testing.T) {
	h := newHarness(t)
	h.eval(countingGenerator)
	assert.Equal(t, 1, h.in.Suspended(), "a new generator is parked before its body")

	assert.Equal(t, "{ value: 1, done: false }", h.eval(next("")))
	assert.Equal(t, 1, h.in.Suspended())
	assert.Equal(t, "{ value: 2, done: false }", h.eval(next("")))
	assert.Equal(t, `{ value: "sent", done: true }`, h.eval(next(`"sent"`)))
	assert.Equal(t, 0, h.in.Suspended())
	assert.Equal(t, "{ value: undefined, done: true }", h.eval(next("")))
	assert.Equal(t, "Object [Generator] {}", h.eval(`[it]`))
}

func TestGeneratorReturnAndThrow(t *testing.T) {
	h := newHarness(t)
	h.eval(countingGenerator)

	// Abrupt resumption before the first next completes the generator
	// without running the body.
	assert.Equal(t, "{ value: 5, done: true }", h.eval(`[{type: Call, callee: {type: Member, object: it, property: return}, args: [5]}]`))
	assert.Equal(t, "{ value: undefined, done: true }", h.eval(next("")))

	h.eval(`
- type: Function
  name: guarded
  generator: true
  body:
    - type: Try
      block: [{type: Yield, arg: 1}]
      param: e
      catch: [{type: Yield, arg: {type: Binary, op: "+", left: "caught ", right: e}}]
      finally: [{type: Yield, arg: "cleanup"}]
- {type: Assign, target: it, value: {type: Call, callee: guarded}}
`)
	assert.Equal(t, "{ value: 1, done: false }", h.eval(next("")))
	assert.Equal(t, `{ value: "caught x", done: false }`, h.eval(`[{type: Call, callee: {type: Member, object: it, property: throw}, args: ["x"]}]`))
	assert.Equal(t, `{ value: "cleanup", done: false }`, h.eval(`[{type: Call, callee: {type: Member, object: it, property: return}, args: [9]}]`))
	assert.Equal(t, "{ value: 9, done: true }", h.eval(next("")))

	// A throw into a finished generator rethrows.
	assert.Equal(t, `"again"`, h.throws(`[{type: Call, callee: {type: Member, object: it, property: throw}, args: ["again"]}]`))
}

func TestGeneratorErrors(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "TypeError: Generator is already running", h.throws(`
- type: Function
  name: g
  generator: true
  body: [{type: Call, callee: {type: Member, object: it, property: next}}]
- {type: Var, name: it, init: {type: Call, callee: g}}
- {type: Call, callee: {type: Member, object: it, property: next}}
`))
	assert.Equal(t, 0, h.in.Suspended())

	got := h.throws(`
- {type: Call, callee: {type: Member, object: {type: Member, object: g, property: prototype}, property: next}}
`)
	assert.Contains(t, got, "TypeError: Method Generator.prototype.next called on incompatible receiver")

	assert.Equal(t, "SyntaxError: yield is only valid in generator functions", h.throws(`
- {type: Function, name: f, body: [{type: Yield, arg: 1}]}
- {type: Call, callee: f}
`))
	assert.Equal(t, "TypeError: g is not a constructor", h.throws(`[{type: New, callee: g}]`))
}

func TestYieldDelegation(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "10", h.eval(`
- type: Function
  name: inner
  generator: true
  body:
    - {type: Yield, arg: 1}
    - {type: Yield, arg: 2}
    - {type: Return, value: 4}
- type: Function
  name: outer
  generator: true
  body:
    - {type: Var, name: r, init: {type: Yield, arg: {type: Call, callee: inner}, delegate: true}}
    - {type: Yield, arg: {type: Binary, op: "+", left: r, right: 3}}
- {type: Var, name: it, init: {type: Call, callee: outer}}
- {type: Var, name: sum, init: 0}
- {type: Var, name: step}
- type: While
  test: {type: Unary, op: "!", arg: {type: Member, object: {type: Assign, target: step, value: {type: Call, callee: {type: Member, object: it, property: next}}}, property: done}}
  body: {type: Assign, op: "+=", target: sum, value: {type: Member, object: step, property: value}}
- sum
`))

	// yield* over an array-like iterable uses its @@iterator.
	assert.Equal(t, "{ value: 1, done: false }", h.eval(`
- type: Function
  name: spreadArgs
  generator: true
  body: [{type: Yield, arg: arguments, delegate: true}]
- {type: Call, callee: {type: Member, object: {type: Call, callee: spreadArgs, args: [1, 2]}, property: next}}
`))

	assert.Equal(t, "TypeError: 1 is not iterable", h.throws(`
- {type: Function, name: bad, generator: true, body: [{type: Yield, arg: 1, delegate: true}]}
- {type: Call, callee: {type: Member, object: {type: Call, callee: bad}, property: next}}
`))
}

func TestCloseAbandonsSuspendedGenerators(t *testing.T) {
	h := newHarness(t)
	h.eval(countingGenerator)
	h.eval(next(""))
	h.eval(`
- {type: Var, name: other, init: {type: Call, callee: g}}
- {type: Call, callee: {type: Member, object: other, property: next}}
`)
	require.Equal(t, 2, h.in.Suspended())

	h.hook.Reset()
	h.agent.Close()
	assert.Equal(t, 0, h.in.Suspended())
	entries := h.hook.AllEntries()
	require.NotEmpty(t, entries)
	assert.Equal(t, "closing suspended coroutines", entries[0].Message)
	assert.Equal(t, 2, entries[0].Data["coroutines"])
	assert.Zero(t, h.agent.StackDepth())
	assert.Equal(t, vm.Normal, h.run(`[1]`).Type)
}
