package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompletionKinds(t *testing.T) {
	tests := []struct {
		c      Completion
		abrupt bool
		name   string
	}{
		{NormalCompletion(True), false, "normal"},
		{ReturnCompletion(True), true, "return"},
		{ThrowCompletion(True), true, "throw"},
		{BreakCompletion("outer"), true, "break"},
		{ContinueCompletion(""), true, "continue"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.abrupt, tt.c.IsAbrupt(), tt.name)
		assert.Equal(t, tt.name, tt.c.Type.String())
	}
	assert.Equal(t, "outer", BreakCompletion("outer").Target)
	assert.True(t, BreakCompletion("").Value.IsEmpty())
}

func TestUpdateEmpty(t *testing.T) {
	filled := UpdateEmpty(BreakCompletion(""), NumberValue(1))
	assert.Equal(t, Break, filled.Type)
	assert.Equal(t, 1.0, filled.Value.AsFloat())

	kept := UpdateEmpty(NormalCompletion(NumberValue(2)), NumberValue(1))
	assert.Equal(t, 2.0, kept.Value.AsFloat())
}

func TestMustRejectsAbrupt(t *testing.T) {
	assert.True(t, Must(NormalCompletion(True)).AsBoolean())
	requireAssertion(t, "Must", func() { Must(ThrowCompletion(Undefined)) })
}
