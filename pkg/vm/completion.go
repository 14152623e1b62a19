package vm

import (
	"github.com/j-f1/forked-engine262/pkg/errors"
)

// CompletionType classifies how an evaluation step ended.
type CompletionType uint8

const (
	Normal CompletionType = iota
	Return
	Throw
	Break
	Continue
)

func (t CompletionType) String() string {
	switch t {
	case Normal:
		return "normal"
	case Return:
		return "return"
	case Throw:
		return "throw"
	case Break:
		return "break"
	case Continue:
		return "continue"
	default:
		return "unknown"
	}
}

// Completion is the result of every fallible engine operation. Anything other
// than a Normal completion is abrupt and must be propagated by the caller
// unless the caller is defined to handle it.
type Completion struct {
	Type   CompletionType
	Value  Value
	Target string // label for break/continue; "" when empty
}

func NormalCompletion(v Value) Completion { return Completion{Type: Normal, Value: v} }
func ReturnCompletion(v Value) Completion { return Completion{Type: Return, Value: v} }
func ThrowCompletion(v Value) Completion  { return Completion{Type: Throw, Value: v} }

func BreakCompletion(target string) Completion {
	return Completion{Type: Break, Value: Empty, Target: target}
}

func ContinueCompletion(target string) Completion {
	return Completion{Type: Continue, Value: Empty, Target: target}
}

func (c Completion) IsAbrupt() bool { return c.Type != Normal }
func (c Completion) IsThrow() bool  { return c.Type == Throw }

// UpdateEmpty fills an empty completion value with v.
func UpdateEmpty(c Completion, v Value) Completion {
	if c.Value.IsEmpty() {
		c.Value = v
	}
	return c
}

// Must returns the value of a completion that cannot be abrupt. An abrupt
// completion here is an engine bug.
func Must(c Completion) Value {
	errors.Assert(!c.IsAbrupt(), "Must", "unexpected %s completion", c.Type)
	return c.Value
}
