package fixture

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/j-f1/forked-engine262/pkg/ast"
	"github.com/j-f1/forked-engine262/pkg/errors"
	"github.com/j-f1/forked-engine262/pkg/source"
)

// decoder turns YAML node trees into syntax trees. Problems are collected
// and the offending node decodes to nil, so one pass reports every error in
// a file.
type decoder struct {
	src    *source.SourceFile
	errors []*errors.FixtureError
	strict bool // strictness of the code being decoded
}

func (d *decoder) addError(n *yaml.Node, format string, args ...any) {
	d.errors = append(d.errors, &errors.FixtureError{
		Position: errors.Position{Line: n.Line, Column: n.Column, Source: d.src},
		Msg:      fmt.Sprintf(format, args...),
	})
}

func pos(n *yaml.Node) ast.Position { return ast.Position{Line: n.Line, Column: n.Column} }

func (d *decoder) withStrict(strict bool, fn func()) {
	saved := d.strict
	d.strict = strict
	fn()
	d.strict = saved
}

// --- Mapping helpers ---

// fields is a mapping node indexed by key. Keys never read are reported as
// unknown by done.
type fields struct {
	node   *yaml.Node
	typ    string
	keys   map[string]*yaml.Node
	values map[string]*yaml.Node
	order  []string
	used   map[string]bool
}

func (d *decoder) fields(n *yaml.Node) *fields {
	f := &fields{
		node:   n,
		keys:   make(map[string]*yaml.Node),
		values: make(map[string]*yaml.Node),
		used:   map[string]bool{"type": true},
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if _, dup := f.values[k.Value]; dup {
			d.addError(k, "duplicate key %q", k.Value)
			continue
		}
		f.keys[k.Value] = k
		f.values[k.Value] = v
		f.order = append(f.order, k.Value)
	}
	if t := f.values["type"]; t != nil {
		f.typ = t.Value
	}
	return f
}

func (f *fields) get(key string) *yaml.Node {
	f.used[key] = true
	return f.values[key]
}

func (d *decoder) done(f *fields) {
	for _, k := range f.order {
		if f.used[k] {
			continue
		}
		if f.typ != "" {
			d.addError(f.keys[k], "unknown key %q in %s node", k, f.typ)
		} else {
			d.addError(f.keys[k], "unknown key %q", k)
		}
	}
}

func (d *decoder) require(f *fields, key string) *yaml.Node {
	n := f.get(key)
	if n == nil {
		what := f.typ
		if what == "" {
			what = "mapping"
		}
		d.addError(f.node, "%s node needs %q", what, key)
	}
	return n
}

func (d *decoder) str(n *yaml.Node) string {
	if n == nil {
		return ""
	}
	if n.Kind != yaml.ScalarNode {
		d.addError(n, "expected a scalar, got %s", kindName(n))
		return ""
	}
	return n.Value
}

func (d *decoder) name(n *yaml.Node) string {
	s := d.str(n)
	if n != nil && n.Kind == yaml.ScalarNode && !isIdentifier(s) {
		d.addError(n, "%q is not an identifier", s)
	}
	return s
}

func (d *decoder) flag(n *yaml.Node) bool {
	if n == nil {
		return false
	}
	var b bool
	if err := n.Decode(&b); err != nil {
		d.addError(n, "expected true or false, got %q", n.Value)
	}
	return b
}

func (d *decoder) mapping(n *yaml.Node, what string) bool {
	if n.Kind != yaml.MappingNode {
		d.addError(n, "%s must be a mapping, got %s", what, kindName(n))
		return false
	}
	return true
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "a mapping"
	case yaml.SequenceNode:
		return "a sequence"
	case yaml.AliasNode:
		return "an alias"
	default:
		return "a scalar"
	}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '$' || r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

// --- Statements ---

// statementList decodes a sequence of statements. A single node stands for
// a one-element list.
func (d *decoder) statementList(n *yaml.Node) []ast.Statement {
	if n == nil {
		return nil
	}
	if n.Kind != yaml.SequenceNode {
		if s := d.statement(n); s != nil {
			return []ast.Statement{s}
		}
		return nil
	}
	var out []ast.Statement
	for _, item := range n.Content {
		if s := d.statement(item); s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (d *decoder) block(n *yaml.Node) *ast.BlockStatement {
	if n == nil {
		return nil
	}
	return &ast.BlockStatement{Position: pos(n), Body: d.statementList(n)}
}

// nested decodes the body of if, while and labelled statements.
func (d *decoder) nested(n *yaml.Node) ast.Statement {
	if n.Kind == yaml.SequenceNode {
		return d.block(n)
	}
	return d.statement(n)
}

func (d *decoder) statement(n *yaml.Node) ast.Statement {
	if n.Kind != yaml.MappingNode {
		return d.expressionStatement(n)
	}
	f := d.fields(n)
	p := pos(n)
	switch f.typ {
	case "Var", "Let", "Const":
		return d.variableDeclaration(f)
	case "Function":
		fn := d.function(f, false)
		if fn.Name == "" {
			d.addError(n, "function declarations need a name")
		}
		d.done(f)
		return &ast.FunctionDeclaration{Position: p, Function: fn}
	case "Class":
		cls := d.class(f)
		if cls.Name == "" {
			d.addError(n, "class declarations need a name")
		}
		d.done(f)
		return &ast.ClassDeclaration{Position: p, Class: cls}
	case "Return":
		s := &ast.ReturnStatement{Position: p}
		if v := f.get("value"); v != nil {
			s.Argument = d.expression(v)
		}
		d.done(f)
		return s
	case "Throw":
		s := &ast.ThrowStatement{Position: p, Argument: d.expression(d.require(f, "value"))}
		d.done(f)
		return s
	case "If":
		s := &ast.IfStatement{Position: p, Test: d.expression(d.require(f, "test"))}
		if then := d.require(f, "then"); then != nil {
			s.Consequent = d.nested(then)
		}
		if alt := f.get("else"); alt != nil {
			s.Alternate = d.nested(alt)
		}
		d.done(f)
		return s
	case "Block":
		s := &ast.BlockStatement{Position: p, Body: d.statementList(f.get("body"))}
		d.done(f)
		return s
	case "While":
		s := &ast.WhileStatement{Position: p, Test: d.expression(d.require(f, "test"))}
		if body := d.require(f, "body"); body != nil {
			s.Body = d.nested(body)
		}
		d.done(f)
		return s
	case "Labeled":
		s := &ast.LabeledStatement{Position: p, Label: d.name(d.require(f, "label"))}
		if body := d.require(f, "body"); body != nil {
			s.Body = d.nested(body)
		}
		d.done(f)
		return s
	case "Break":
		s := &ast.BreakStatement{Position: p}
		if l := f.get("label"); l != nil {
			s.Label = d.name(l)
		}
		d.done(f)
		return s
	case "Continue":
		s := &ast.ContinueStatement{Position: p}
		if l := f.get("label"); l != nil {
			s.Label = d.name(l)
		}
		d.done(f)
		return s
	case "Try":
		return d.tryStatement(f)
	case "Empty":
		d.done(f)
		return &ast.EmptyStatement{Position: p}
	case "Expression":
		s := &ast.ExpressionStatement{Position: p, Expression: d.expression(d.require(f, "value"))}
		d.done(f)
		return s
	}
	return &ast.ExpressionStatement{Position: p, Expression: d.expressionFields(f)}
}

func (d *decoder) expressionStatement(n *yaml.Node) ast.Statement {
	return &ast.ExpressionStatement{Position: pos(n), Expression: d.expression(n)}
}

func (d *decoder) variableDeclaration(f *fields) ast.Statement {
	decl := &ast.VariableDeclaration{Position: pos(f.node)}
	switch f.typ {
	case "Let":
		decl.Kind = ast.DeclareLet
	case "Const":
		decl.Kind = ast.DeclareConst
	}
	if list := f.get("declarations"); list != nil {
		if list.Kind != yaml.SequenceNode {
			d.addError(list, "declarations must be a sequence")
		} else {
			for _, item := range list.Content {
				if !d.mapping(item, "a declarator") {
					continue
				}
				df := d.fields(item)
				decl.Declarations = append(decl.Declarations, d.declarator(decl.Kind, df))
				d.done(df)
			}
		}
	} else {
		decl.Declarations = append(decl.Declarations, d.declarator(decl.Kind, f))
	}
	d.done(f)
	return decl
}

func (d *decoder) declarator(kind ast.DeclarationKind, f *fields) *ast.VariableDeclarator {
	v := &ast.VariableDeclarator{Target: d.bindingTarget(f)}
	if init := f.get("init"); init != nil {
		v.Init = d.expression(init)
	} else if kind == ast.DeclareConst {
		d.addError(f.node, "missing initializer in const declaration")
	}
	return v
}

// bindingTarget reads the name or pattern key of a declarator, parameter or
// catch clause.
func (d *decoder) bindingTarget(f *fields) ast.Pattern {
	if n := f.get("name"); n != nil {
		return &ast.BindingIdentifier{Position: pos(n), Name: d.name(n)}
	}
	if n := f.get("pattern"); n != nil {
		return d.pattern(n)
	}
	d.addError(f.node, "binding needs a name or a pattern")
	return nil
}

// pattern decodes an identifier scalar or an object pattern mapping.
func (d *decoder) pattern(n *yaml.Node) ast.Pattern {
	if n.Kind == yaml.ScalarNode {
		return &ast.BindingIdentifier{Position: pos(n), Name: d.name(n)}
	}
	if !d.mapping(n, "a pattern") {
		return nil
	}
	f := d.fields(n)
	op := &ast.ObjectPattern{Position: pos(n)}
	props := d.require(f, "properties")
	d.done(f)
	if props == nil {
		return op
	}
	if props.Kind != yaml.SequenceNode {
		d.addError(props, "pattern properties must be a sequence")
		return op
	}
	for _, item := range props.Content {
		if item.Kind == yaml.ScalarNode {
			name := d.name(item)
			op.Properties = append(op.Properties, &ast.PatternProperty{
				Key:    name,
				Target: &ast.BindingIdentifier{Position: pos(item), Name: name},
			})
			continue
		}
		if !d.mapping(item, "a pattern property") {
			continue
		}
		pf := d.fields(item)
		prop := &ast.PatternProperty{Key: d.str(d.require(pf, "key"))}
		switch {
		case pf.values["name"] != nil || pf.values["pattern"] != nil:
			prop.Target = d.bindingTarget(pf)
		default:
			prop.Target = &ast.BindingIdentifier{Position: pos(item), Name: prop.Key}
			if !isIdentifier(prop.Key) {
				d.addError(item, "pattern property %q needs a name", prop.Key)
			}
		}
		if def := pf.get("default"); def != nil {
			prop.Default = d.expression(def)
		}
		d.done(pf)
		op.Properties = append(op.Properties, prop)
	}
	return op
}

func (d *decoder) tryStatement(f *fields) ast.Statement {
	s := &ast.TryStatement{Position: pos(f.node), Block: d.block(d.require(f, "block"))}
	if s.Block == nil {
		s.Block = &ast.BlockStatement{Position: pos(f.node)}
	}
	if param := f.get("param"); param != nil {
		s.Param = d.pattern(param)
	}
	s.Handler = d.block(f.get("catch"))
	s.Finalizer = d.block(f.get("finally"))
	switch {
	case s.Handler == nil && s.Finalizer == nil:
		d.addError(f.node, "try statement needs catch or finally")
	case s.Handler == nil && s.Param != nil:
		d.addError(f.node, "catch parameter without a catch block")
	}
	d.done(f)
	return s
}

// --- Functions and classes ---

// function decodes the shared function keys: name, params, body or
// expression, generator, async, strict and an explicit bodyKind. The kind
// key belongs to properties and class methods.
func (d *decoder) function(f *fields, arrow bool) *ast.FunctionNode {
	fn := &ast.FunctionNode{Position: pos(f.node), Arrow: arrow}
	if n := f.get("name"); n != nil {
		fn.Name = d.name(n)
	}
	generator := d.flag(f.get("generator"))
	async := d.flag(f.get("async"))
	body := f.get("body")
	expr := f.get("expression")
	fn.Strict = d.strict || d.flag(f.get("strict")) || hasUseStrict(body)

	d.withStrict(fn.Strict, func() {
		fn.Params = d.parameters(f.get("params"))
		switch {
		case body != nil && expr != nil:
			d.addError(f.node, "function has both a body and an expression")
		case expr != nil:
			if !arrow {
				d.addError(expr, "only arrow functions have expression bodies")
			}
			fn.Expression = d.expression(expr)
		default:
			fn.Body = d.statementList(body)
		}
	})

	if k := f.get("bodyKind"); k != nil {
		kind, ok := ast.ParseBodyKind(d.str(k))
		if !ok {
			d.addError(k, "unknown body kind %q", k.Value)
		}
		fn.Kind = kind
		return fn
	}
	switch {
	case arrow && generator:
		d.addError(f.node, "arrow functions cannot be generators")
	case generator && async:
		fn.Kind = ast.AsyncGeneratorBody
	case generator:
		fn.Kind = ast.GeneratorBody
	case arrow && expr != nil && async:
		fn.Kind = ast.AsyncConciseExpressionBody
	case arrow && expr != nil:
		fn.Kind = ast.ConciseExpressionBody
	case arrow && async:
		fn.Kind = ast.AsyncConciseFunctionBody
	case arrow:
		fn.Kind = ast.ConciseFunctionBody
	case async:
		fn.Kind = ast.AsyncFunctionBody
	default:
		fn.Kind = ast.FunctionBody
	}
	return fn
}

// hasUseStrict reports whether a body starts with a "use strict"
// directive.
func hasUseStrict(body *yaml.Node) bool {
	if body == nil || body.Kind != yaml.SequenceNode || len(body.Content) == 0 {
		return false
	}
	first := body.Content[0]
	return first.Kind == yaml.ScalarNode && isQuoted(first) && first.Value == "use strict"
}

func (d *decoder) parameters(n *yaml.Node) *ast.FormalParameters {
	params := &ast.FormalParameters{}
	if n == nil {
		return params
	}
	if n.Kind != yaml.SequenceNode {
		d.addError(n, "params must be a sequence")
		return params
	}
	for i, item := range n.Content {
		if item.Kind == yaml.ScalarNode {
			params.Params = append(params.Params, &ast.Parameter{
				Position: pos(item),
				Target:   &ast.BindingIdentifier{Position: pos(item), Name: d.name(item)},
			})
			continue
		}
		if !d.mapping(item, "a parameter") {
			continue
		}
		f := d.fields(item)
		p := &ast.Parameter{Position: pos(item)}
		if rest := f.get("rest"); rest != nil {
			p.Rest = true
			p.Target = d.pattern(rest)
			if i != len(n.Content)-1 {
				d.addError(item, "rest parameter must be last")
			}
		} else {
			p.Target = d.bindingTarget(f)
		}
		if def := f.get("default"); def != nil {
			if p.Rest {
				d.addError(def, "rest parameter may not have a default")
			}
			p.Default = d.expression(def)
		}
		d.done(f)
		params.Params = append(params.Params, p)
	}
	return params
}

func (d *decoder) class(f *fields) *ast.ClassNode {
	cls := &ast.ClassNode{Position: pos(f.node)}
	if n := f.get("name"); n != nil {
		cls.Name = d.name(n)
	}
	d.withStrict(true, func() {
		if ext := f.get("extends"); ext != nil {
			cls.Extends = d.expression(ext)
		}
		if ctor := f.get("constructor"); ctor != nil && d.mapping(ctor, "a constructor") {
			cf := d.fields(ctor)
			cls.Constructor = d.function(cf, false)
			cls.Constructor.Name = cls.Name
			if cls.Constructor.Kind != ast.FunctionBody {
				d.addError(ctor, "class constructors must be plain functions")
			}
			d.done(cf)
		}
		methods := f.get("methods")
		if methods == nil {
			return
		}
		if methods.Kind != yaml.SequenceNode {
			d.addError(methods, "methods must be a sequence")
			return
		}
		for _, item := range methods.Content {
			if !d.mapping(item, "a method") {
				continue
			}
			mf := d.fields(item)
			m := &ast.ClassMethod{
				Static: d.flag(mf.get("static")),
				Key:    d.str(d.require(mf, "key")),
				Kind:   d.methodKind(mf),
			}
			m.Function = d.function(mf, false)
			m.Function.Name = m.Key
			d.done(mf)
			cls.Methods = append(cls.Methods, m)
		}
	})
	return cls
}

func (d *decoder) methodKind(f *fields) ast.MethodKind {
	n := f.get("kind")
	if n == nil {
		return ast.MethodNormal
	}
	switch n.Value {
	case "method":
	case "get":
		return ast.MethodGetter
	case "set":
		return ast.MethodSetter
	default:
		d.addError(n, "unknown method kind %q", n.Value)
	}
	return ast.MethodNormal
}

// --- Expressions ---

func (d *decoder) expression(n *yaml.Node) ast.Expression {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case yaml.ScalarNode:
		return d.scalar(n)
	case yaml.AliasNode:
		return d.expression(n.Alias)
	case yaml.MappingNode:
	default:
		d.addError(n, "expected an expression, got %s", kindName(n))
		return nil
	}
	return d.expressionFields(d.fields(n))
}

func (d *decoder) expressionFields(f *fields) ast.Expression {
	if f.typ == "Spread" {
		d.addError(f.node, "spread is only allowed in argument lists")
		return nil
	}
	e := d.expressionNode(f)
	d.done(f)
	return e
}

func (d *decoder) expressionNode(f *fields) ast.Expression {
	n := f.node
	p := pos(n)
	switch f.typ {
	case "":
		d.addError(n, "expression mapping needs a type")
	case "Identifier":
		return &ast.Identifier{Position: p, Name: d.name(d.require(f, "name"))}
	case "String":
		return &ast.StringLiteral{Position: p, Value: d.str(d.require(f, "value"))}
	case "Number":
		v := d.require(f, "value")
		if v == nil {
			return nil
		}
		num, ok := parseNumber(v)
		if !ok {
			d.addError(v, "%q is not a number", v.Value)
		}
		return &ast.NumberLiteral{Position: p, Value: num}
	case "This":
		return &ast.ThisExpression{Position: p}
	case "NewTarget":
		return &ast.NewTargetExpression{Position: p}
	case "Member":
		m := &ast.MemberExpression{Position: p, Object: d.expression(d.require(f, "object"))}
		d.memberKey(f, &m.Property, &m.Computed)
		return m
	case "SuperMember":
		m := &ast.SuperMember{Position: p}
		d.memberKey(f, &m.Property, &m.Computed)
		return m
	case "Call":
		return &ast.CallExpression{Position: p, Callee: d.expression(d.require(f, "callee")), Arguments: d.arguments(f.get("args"))}
	case "New":
		return &ast.NewExpression{Position: p, Callee: d.expression(d.require(f, "callee")), Arguments: d.arguments(f.get("args"))}
	case "Super":
		return &ast.SuperCall{Position: p, Arguments: d.arguments(f.get("args"))}
	case "Assign":
		op := "="
		if o := f.get("op"); o != nil {
			op = d.str(o)
		}
		if !assignmentOperators[op] {
			d.addError(n, "unknown assignment operator %q", op)
		}
		return &ast.AssignmentExpression{
			Position: p,
			Operator: op,
			Target:   d.expression(d.require(f, "target")),
			Value:    d.expression(d.require(f, "value")),
		}
	case "Binary":
		op := d.str(d.require(f, "op"))
		if !binaryOperators[op] {
			d.addError(n, "unknown binary operator %q", op)
		}
		return &ast.BinaryExpression{Position: p, Operator: op, Left: d.expression(d.require(f, "left")), Right: d.expression(d.require(f, "right"))}
	case "Logical":
		op := d.str(d.require(f, "op"))
		if op != "&&" && op != "||" && op != "??" {
			d.addError(n, "unknown logical operator %q", op)
		}
		return &ast.LogicalExpression{Position: p, Operator: op, Left: d.expression(d.require(f, "left")), Right: d.expression(d.require(f, "right"))}
	case "Unary":
		op := d.str(d.require(f, "op"))
		if !unaryOperators[op] {
			d.addError(n, "unknown unary operator %q", op)
		}
		return &ast.UnaryExpression{Position: p, Operator: op, Argument: d.expression(d.require(f, "arg"))}
	case "Conditional":
		return &ast.ConditionalExpression{
			Position:   p,
			Test:       d.expression(d.require(f, "test")),
			Consequent: d.expression(d.require(f, "then")),
			Alternate:  d.expression(d.require(f, "else")),
		}
	case "Object":
		return d.objectLiteral(f)
	case "Function":
		return &ast.FunctionExpression{Position: p, Function: d.function(f, false)}
	case "Arrow":
		return &ast.FunctionExpression{Position: p, Function: d.function(f, true)}
	case "Class":
		return &ast.ClassExpression{Position: p, Class: d.class(f)}
	case "Yield":
		y := &ast.YieldExpression{Position: p, Delegate: d.flag(f.get("delegate"))}
		if arg := f.get("arg"); arg != nil {
			y.Argument = d.expression(arg)
		} else if y.Delegate {
			d.addError(n, "yield* needs an argument")
		}
		return y
	case "Await":
		return &ast.AwaitExpression{Position: p, Argument: d.expression(d.require(f, "arg"))}
	default:
		d.addError(n, "unknown node type %q", f.typ)
		for _, k := range f.order {
			f.used[k] = true
		}
	}
	return nil
}

func (d *decoder) memberKey(f *fields, property *string, computed *ast.Expression) {
	prop, comp := f.get("property"), f.get("computed")
	switch {
	case prop != nil && comp != nil:
		d.addError(f.node, "%s has both property and computed", f.typ)
	case prop != nil:
		*property = d.str(prop)
	case comp != nil:
		*computed = d.expression(comp)
	default:
		d.addError(f.node, "%s needs property or computed", f.typ)
	}
}

// arguments decodes an argument list, the one place spread is allowed.
func (d *decoder) arguments(n *yaml.Node) []ast.Expression {
	if n == nil {
		return nil
	}
	if n.Kind != yaml.SequenceNode {
		d.addError(n, "args must be a sequence")
		return nil
	}
	var out []ast.Expression
	for _, item := range n.Content {
		if item.Kind == yaml.MappingNode {
			f := d.fields(item)
			if f.typ == "Spread" {
				out = append(out, &ast.SpreadElement{Position: pos(item), Argument: d.expression(d.require(f, "arg"))})
				d.done(f)
			} else {
				out = append(out, d.expressionFields(f))
			}
			continue
		}
		out = append(out, d.expression(item))
	}
	return out
}

func (d *decoder) objectLiteral(f *fields) ast.Expression {
	obj := &ast.ObjectLiteral{Position: pos(f.node)}
	props := f.get("properties")
	if props == nil {
		return obj
	}
	if props.Kind != yaml.SequenceNode {
		d.addError(props, "object properties must be a sequence")
		return obj
	}
	for _, item := range props.Content {
		if item.Kind == yaml.ScalarNode {
			name := d.name(item)
			obj.Properties = append(obj.Properties, &ast.Property{
				Key:   name,
				Value: &ast.Identifier{Position: pos(item), Name: name},
			})
			continue
		}
		if !d.mapping(item, "an object property") {
			continue
		}
		pf := d.fields(item)
		prop := &ast.Property{}
		key, computed := pf.get("key"), pf.get("computed")
		switch {
		case key != nil && computed != nil:
			d.addError(item, "property has both key and computed")
		case key != nil:
			prop.Key = d.str(key)
		case computed != nil:
			prop.Computed = d.expression(computed)
		default:
			d.addError(item, "property needs key or computed")
		}
		kind := "init"
		if k := pf.get("kind"); k != nil {
			kind = d.str(k)
		}
		switch kind {
		case "init":
			prop.Kind = ast.PropertyInit
			prop.Value = d.expression(d.require(pf, "value"))
		case "method", "get", "set":
			prop.Kind = map[string]ast.PropertyKind{
				"method": ast.PropertyMethod,
				"get":    ast.PropertyGetter,
				"set":    ast.PropertySetter,
			}[kind]
			prop.Function = d.function(pf, false)
			prop.Function.Name = prop.Key
		default:
			d.addError(item, "unknown property kind %q", kind)
		}
		d.done(pf)
		obj.Properties = append(obj.Properties, prop)
	}
	return obj
}

func isQuoted(n *yaml.Node) bool {
	return n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle|yaml.LiteralStyle|yaml.FoldedStyle) != 0
}

// scalar decodes a literal or identifier. Quoted scalars are strings; plain
// scalars are numbers, booleans, null, undefined, this or identifiers.
func (d *decoder) scalar(n *yaml.Node) ast.Expression {
	p := pos(n)
	if isQuoted(n) {
		return &ast.StringLiteral{Position: p, Value: n.Value}
	}
	switch n.ShortTag() {
	case "!!int", "!!float":
		num, ok := parseNumber(n)
		if !ok {
			d.addError(n, "%q is not a number", n.Value)
		}
		return &ast.NumberLiteral{Position: p, Value: num}
	case "!!bool":
		return &ast.BooleanLiteral{Position: p, Value: d.flag(n)}
	case "!!null":
		return &ast.NullLiteral{Position: p}
	case "!!str":
		switch n.Value {
		case "undefined":
			return &ast.UndefinedLiteral{Position: p}
		case "this":
			return &ast.ThisExpression{Position: p}
		}
		if !isIdentifier(n.Value) {
			d.addError(n, "plain scalar %q is not an identifier; quote it to make a string", n.Value)
			return nil
		}
		return &ast.Identifier{Position: p, Name: n.Value}
	}
	d.addError(n, "unsupported scalar tag %s", n.ShortTag())
	return nil
}

// parseNumber reads a numeric scalar, keeping the sign of -0.
func parseNumber(n *yaml.Node) (float64, bool) {
	if f, err := strconv.ParseFloat(strings.ReplaceAll(n.Value, "_", ""), 64); err == nil {
		return f, true
	}
	var f float64
	if err := n.Decode(&f); err != nil {
		return 0, false
	}
	return f, true
}

var assignmentOperators = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true, "**=": true,
	"<<=": true, ">>=": true, ">>>=": true, "&=": true, "|=": true, "^=": true,
	"&&=": true, "||=": true, "??=": true,
}

var binaryOperators = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true, "**": true,
	"<<": true, ">>": true, ">>>": true, "&": true, "|": true, "^": true,
	"==": true, "!=": true, "===": true, "!==": true,
	"<": true, ">": true, "<=": true, ">=": true, "instanceof": true, "in": true,
}

var unaryOperators = map[string]bool{
	"!": true, "-": true, "+": true, "~": true, "typeof": true, "void": true, "delete": true,
}
