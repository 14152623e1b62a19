// Package fixture decodes YAML fixture files into syntax trees and the
// outcome each script is expected to have.
//
// A fixture file holds one or more YAML documents:
//
//	name: mapped arguments alias the parameters
//	strict: false
//	script:
//	  - {type: Function, name: f, params: [a], body: [
//	      {type: Assign, target: {type: Member, object: arguments, computed: 0}, value: 2},
//	      {type: Return, value: a}]}
//	  - {type: Call, callee: f, args: [1]}
//	expect:
//	  value: "2"
//
// Script nodes are mappings keyed by type. Plain scalars are numbers,
// booleans, null, undefined, this or identifiers; quoted scalars are
// strings.
package fixture

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/j-f1/forked-engine262/pkg/ast"
	"github.com/j-f1/forked-engine262/pkg/errors"
	"github.com/j-f1/forked-engine262/pkg/source"
)

// Fixture is one script and its expected outcome.
type Fixture struct {
	Name     string
	Position errors.Position
	Script   *ast.Script
	Expect   Expectation
}

// Expectation describes how running a fixture's script must end.
type Expectation struct {
	// Value is the Inspect rendering of the completion value. Unchecked when
	// HasValue is false.
	Value    string
	HasValue bool

	// Throws names the error constructor of an uncaught exception.
	Throws string
	// Message matches the message of the thrown error (ECMAScript syntax).
	Message *regexp2.Regexp

	// Balanced requires the execution context stack to be back at its
	// starting depth after the run. Defaults to true.
	Balanced bool

	// Jobs is the minimum number of jobs the run must drain.
	Jobs int

	// Rejections is the number of promises left rejected without a handler.
	Rejections int
}

// ErrorList is every problem found in one fixture file.
type ErrorList []*errors.FixtureError

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", l[0].Error(), len(l)-1)
}

// EngineErrors converts the list for errors.DisplayErrors.
func (l ErrorList) EngineErrors() []errors.EngineError {
	out := make([]errors.EngineError, len(l))
	for i, e := range l {
		out[i] = e
	}
	return out
}

// Decode reads every fixture document in src. On failure the error is an
// ErrorList.
func Decode(src *source.SourceFile) ([]*Fixture, error) {
	d := &decoder{src: src}
	dec := yaml.NewDecoder(strings.NewReader(src.Content))
	var fixtures []*Fixture
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			d.errors = append(d.errors, (&errors.FixtureError{
				Position: errors.Position{Source: src},
				Msg:      err.Error(),
			}).CausedBy(err))
			break
		}
		if len(doc.Content) == 0 {
			continue
		}
		if fx := d.fixture(doc.Content[0]); fx != nil {
			fixtures = append(fixtures, fx)
		}
	}
	if len(d.errors) > 0 {
		return nil, ErrorList(d.errors)
	}
	return fixtures, nil
}

// LoadFile reads and decodes the fixture file at path.
func LoadFile(fs afero.Fs, path string) ([]*Fixture, error) {
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	return Decode(source.FromFile(path, string(content)))
}

// ParseScript decodes text, a YAML sequence of statements, as a script.
func ParseScript(text string, strict bool) (*ast.Script, error) {
	src := source.NewInlineSource(text)
	d := &decoder{src: src}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, (&errors.FixtureError{Position: errors.Position{Source: src}, Msg: err.Error()}).CausedBy(err)
	}
	script := &ast.Script{Position: ast.Position{Line: 1, Column: 1}, Strict: strict}
	if len(doc.Content) > 0 {
		script = d.script(doc.Content[0], strict)
	}
	if len(d.errors) > 0 {
		return nil, ErrorList(d.errors)
	}
	return script, nil
}

func (d *decoder) script(n *yaml.Node, strict bool) *ast.Script {
	strict = strict || hasUseStrict(n)
	script := &ast.Script{Position: pos(n), Strict: strict}
	if n.Kind != yaml.SequenceNode {
		d.addError(n, "script must be a sequence of statements")
		return script
	}
	d.withStrict(strict, func() {
		script.Body = d.statementList(n)
	})
	return script
}

func (d *decoder) fixture(n *yaml.Node) *Fixture {
	if !d.mapping(n, "a fixture") {
		return nil
	}
	f := d.fields(n)
	fx := &Fixture{
		Name:     d.str(d.require(f, "name")),
		Position: errors.Position{Line: n.Line, Column: n.Column, Source: d.src},
		Expect:   Expectation{Balanced: true},
	}
	strict := d.flag(f.get("strict"))
	if body := d.require(f, "script"); body != nil {
		fx.Script = d.script(body, strict)
	}
	if expect := f.get("expect"); expect != nil {
		d.expectation(expect, &fx.Expect)
	}
	d.done(f)
	return fx
}

func (d *decoder) expectation(n *yaml.Node, e *Expectation) {
	if !d.mapping(n, "expect") {
		return
	}
	f := d.fields(n)
	if v := f.get("value"); v != nil {
		e.Value = d.str(v)
		e.HasValue = true
	}
	if t := f.get("throws"); t != nil {
		e.Throws = d.name(t)
	}
	if m := f.get("message"); m != nil {
		if e.Throws == "" {
			d.addError(m, "message needs throws")
		}
		re, err := regexp2.Compile(d.str(m), regexp2.ECMAScript)
		if err != nil {
			d.addError(m, "invalid message pattern: %v", err)
		}
		e.Message = re
	}
	if e.HasValue && e.Throws != "" {
		d.addError(n, "expect has both value and throws")
	}
	if b := f.get("balanced"); b != nil {
		e.Balanced = d.flag(b)
	}
	if j := f.get("jobs"); j != nil {
		if err := j.Decode(&e.Jobs); err != nil || e.Jobs < 0 {
			d.addError(j, "jobs must be a non-negative integer")
		}
	}
	if r := f.get("rejections"); r != nil {
		if err := r.Decode(&e.Rejections); err != nil || e.Rejections < 0 {
			d.addError(r, "rejections must be a non-negative integer")
		}
	}
	d.done(f)
}

// MatchMessage reports whether msg satisfies the expected message pattern.
func (e *Expectation) MatchMessage(msg string) (bool, error) {
	if e.Message == nil {
		return true, nil
	}
	return e.Message.MatchString(msg)
}
