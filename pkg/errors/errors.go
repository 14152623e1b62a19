package errors

import (
	"fmt"
	"io"
	"strings"
)

// EngineError is the interface implemented by all host-level engine errors.
// Guest exceptions never use this type directly; they travel as throw
// completions and only become an UncaughtError at the host boundary.
type EngineError interface {
	error
	Pos() Position
	Kind() string // e.g., "Assertion", "Uncaught", "Fixture", "Expectation"
	// Message returns the error message without position info.
	Message() string
	Unwrap() error
}

// --- Concrete Error Types ---

// AssertionError reports a broken engine invariant. It is raised with panic
// and is never observable from guest code.
type AssertionError struct {
	Position
	Op    string // the operation whose precondition failed
	Msg   string
	Cause error
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("Assertion failed in %s: %s", e.Op, e.Msg)
}
func (e *AssertionError) Pos() Position   { return e.Position }
func (e *AssertionError) Kind() string    { return "Assertion" }
func (e *AssertionError) Message() string { return e.Msg }
func (e *AssertionError) Unwrap() error   { return e.Cause }
func (e *AssertionError) CausedBy(cause error) *AssertionError {
	e.Cause = cause
	return e
}

// UncaughtError wraps a guest exception that escaped to the host.
type UncaughtError struct {
	Position
	Name     string // error name read from the thrown object, "" for non-error values
	Msg      string
	Rendered string // inspection of the thrown value
	Cause    error
}

func (e *UncaughtError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("Uncaught %s", e.Rendered)
	}
	if e.Msg == "" {
		return fmt.Sprintf("Uncaught %s", e.Name)
	}
	return fmt.Sprintf("Uncaught %s: %s", e.Name, e.Msg)
}
func (e *UncaughtError) Pos() Position   { return e.Position }
func (e *UncaughtError) Kind() string    { return "Uncaught" }
func (e *UncaughtError) Message() string { return e.Msg }
func (e *UncaughtError) Unwrap() error   { return e.Cause }

// FixtureError reports a malformed fixture document.
type FixtureError struct {
	Position
	Msg   string
	Cause error
}

func (e *FixtureError) Error() string {
	return fmt.Sprintf("Fixture Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *FixtureError) Pos() Position   { return e.Position }
func (e *FixtureError) Kind() string    { return "Fixture" }
func (e *FixtureError) Message() string { return e.Msg }
func (e *FixtureError) Unwrap() error   { return e.Cause }
func (e *FixtureError) CausedBy(cause error) *FixtureError {
	e.Cause = cause
	return e
}

// ExpectationError reports a fixture whose outcome differed from its
// declared expectation.
type ExpectationError struct {
	Position
	Msg   string
	Cause error
}

func (e *ExpectationError) Error() string {
	return fmt.Sprintf("Expectation failed at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *ExpectationError) Pos() Position   { return e.Position }
func (e *ExpectationError) Kind() string    { return "Expectation" }
func (e *ExpectationError) Message() string { return e.Msg }
func (e *ExpectationError) Unwrap() error   { return e.Cause }

// --- Assertions ---

// Assert panics with an *AssertionError when cond is false.
func Assert(cond bool, op string, format string, args ...any) {
	if cond {
		return
	}
	panic(&AssertionError{Op: op, Msg: fmt.Sprintf(format, args...)})
}

// Unreachable panics with an *AssertionError unconditionally.
func Unreachable(op string, format string, args ...any) {
	panic(&AssertionError{Op: op, Msg: fmt.Sprintf(format, args...)})
}

// AsAssertion converts a value recovered from a panic into an
// *AssertionError if it is one.
func AsAssertion(recovered any) (*AssertionError, bool) {
	ae, ok := recovered.(*AssertionError)
	return ae, ok
}

// --- Error Reporting ---

// DisplayErrors writes errors to w, including the source line and a marker
// when the error carries a source position.
func DisplayErrors(w io.Writer, errs []EngineError) {
	for _, err := range errs {
		pos := err.Pos()
		if !pos.IsValid() || pos.Source == nil {
			fmt.Fprintf(w, "%s: %s\n", err.Kind(), err.Message())
			continue
		}

		fmt.Fprintf(w, "%s at %s: %s\n", err.Kind(), pos, err.Message())
		line := pos.Source.Line(pos.Line)
		if line == "" {
			continue
		}
		fmt.Fprintf(w, "  %s\n", line)
		col := pos.Column - 1
		if col < 0 {
			col = 0
		}
		fmt.Fprintf(w, "  %s^\n", strings.Repeat(" ", col))
		fmt.Fprintln(w)
	}
}
